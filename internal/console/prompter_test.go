package console

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "policy-navigator/internal/common/errors"
	"policy-navigator/internal/models"
)

func TestPrompter_Answer(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("  없습니다 \n연 3,000만원\n"), &out)
	ctx := context.Background()

	first, err := p.Answer(ctx, models.Question{Index: 0, Text: "자녀가 있나요?"}, 2)
	require.NoError(t, err)
	assert.Equal(t, "없습니다", first)

	second, err := p.Answer(ctx, models.Question{Index: 1, Text: "작년 총급여가 얼마인가요?"}, 2)
	require.NoError(t, err)
	assert.Equal(t, "연 3,000만원", second)

	printed := out.String()
	assert.Contains(t, printed, "2개의 질문")
	assert.Contains(t, printed, "[1/2] 자녀가 있나요?")
	assert.Contains(t, printed, "[2/2] 작년 총급여가 얼마인가요?")
}

func TestPrompter_AnswerWithoutTrailingNewline(t *testing.T) {
	p := NewPrompter(strings.NewReader("네"), io.Discard)
	answer, err := p.Answer(context.Background(), models.Question{Text: "q"}, 1)
	require.NoError(t, err)
	assert.Equal(t, "네", answer)
}

func TestPrompter_EmptyLineIsAnAnswer(t *testing.T) {
	p := NewPrompter(strings.NewReader("\n"), io.Discard)
	answer, err := p.Answer(context.Background(), models.Question{Text: "q"}, 1)
	require.NoError(t, err)
	assert.Equal(t, "", answer)
}

func TestPrompter_EOF(t *testing.T) {
	p := NewPrompter(strings.NewReader(""), io.Discard)
	_, err := p.Answer(context.Background(), models.Question{Text: "q"}, 1)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeAnswerUnavailable))
	assert.Equal(t, 3, apperrors.ExitCode(err))
}

func TestPrompter_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewPrompter(strings.NewReader("ignored\n"), io.Discard)
	_, err := p.Answer(ctx, models.Question{Text: "q"}, 1)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeAnswerUnavailable))
}

func TestPrompter_ShowProfile(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader(""), &out)
	p.ShowProfile(&models.Profile{
		Fields:   []models.ProfileField{{Kind: models.FieldAge, Value: "29세"}},
		Warnings: []string{"expected 5 segments, got 1"},
	})
	assert.Equal(t, "프로필: 나이: 29세\n  주의: expected 5 segments, got 1\n", out.String())
}
