// internal/capabilities/solar-reasoning/models.go
package solarreasoning

type Input struct {
	// Stage labels the call in logs and metrics (plan, final, ...).
	Stage  string `json:"stage"`
	Prompt string `json:"prompt"`
}

type Output struct {
	Content      string `json:"content"`
	FinishReason string `json:"finishReason"`
	Model        string `json:"model"`
	TotalTokens  int64  `json:"totalTokens"`
}
