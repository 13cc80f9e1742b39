// internal/capabilities/document-parse/models.go
package documentparse

type Input struct {
	Path string `json:"path"`
}

type Output struct {
	Text string                 `json:"text"`
	Raw  map[string]interface{} `json:"raw"`
	// TextSource names the response key the text was taken from, or
	// "fallback" when the whole payload was used.
	TextSource string `json:"textSource"`
}
