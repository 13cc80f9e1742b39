// Package console runs the interactive clarification round on a terminal.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	apperrors "policy-navigator/internal/common/errors"
	"policy-navigator/internal/models"
)

// Prompter asks questions on out and reads one line per answer from in.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

type readResult struct {
	line string
	err  error
}

// Answer prints q and blocks until a line is read or ctx is done. A final
// line without a trailing newline is accepted; end of input with nothing
// typed is an error.
func (p *Prompter) Answer(ctx context.Context, q models.Question, total int) (string, error) {
	if q.Index == 0 {
		fmt.Fprintf(p.out, "\n정확한 판단을 위해 %d개의 질문에 답해 주세요.\n", total)
	}
	fmt.Fprintf(p.out, "\n[%d/%d] %s\n> ", q.Index+1, total, q.Text)

	if err := ctx.Err(); err != nil {
		return "", apperrors.NewAnswerUnavailableError(q.Text, err)
	}

	done := make(chan readResult, 1)
	go func() {
		line, err := p.in.ReadString('\n')
		done <- readResult{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", apperrors.NewAnswerUnavailableError(q.Text, ctx.Err())
	case res := <-done:
		answer := strings.TrimSpace(res.line)
		if res.err != nil {
			if errors.Is(res.err, io.EOF) && answer != "" {
				return answer, nil
			}
			return "", apperrors.NewAnswerUnavailableError(q.Text, res.err)
		}
		return answer, nil
	}
}

// ShowProfile prints how the profile was understood, with any parse
// warnings.
func (p *Prompter) ShowProfile(profile *models.Profile) {
	fmt.Fprintf(p.out, "프로필: %s\n", profile.Structured())
	for _, w := range profile.Warnings {
		fmt.Fprintf(p.out, "  주의: %s\n", w)
	}
}
