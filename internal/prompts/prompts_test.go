package prompts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"policy-navigator/internal/models"
)

const profileLine = "나이: 29세, 지역: 수도권, 직업: 중소기업, 월소득: 월250, 혼인상태: 미혼"

func TestTruncate(t *testing.T) {
	assert.Equal(t, "청년도", Truncate("청년도약계좌", 3))
	assert.Equal(t, "abc", Truncate("abc", 10))
	assert.Equal(t, "abc", Truncate("abc", 0))
}

func TestBuildPlanPrompt(t *testing.T) {
	text := strings.Repeat("가", DefaultPlanTextLimit+50)

	prompt, err := BuildPlanPrompt(PlanInput{Profile: profileLine, PolicyText: text})
	require.NoError(t, err)
	assert.Contains(t, prompt, profileLine)
	assert.Contains(t, prompt, strings.Repeat("가", DefaultPlanTextLimit))
	assert.NotContains(t, prompt, strings.Repeat("가", DefaultPlanTextLimit+1))
	assert.NotContains(t, prompt, "추출된 핵심 정보")
	assert.Contains(t, prompt, `"action_candidates"`)

	withHint, err := BuildPlanPrompt(PlanInput{Profile: profileLine, PolicyText: "ZQXW", SlotHint: `{"benefit": "월 20만원"}`, TextLimit: 1})
	require.NoError(t, err)
	assert.Contains(t, withHint, "추출된 핵심 정보")
	assert.Contains(t, withHint, `{"benefit": "월 20만원"}`)
	assert.NotContains(t, withHint, "ZQ")
}

func TestBuildQuestionFilterPrompt(t *testing.T) {
	prompt, err := BuildQuestionFilterPrompt(profileLine, []models.PlanQuestion{
		{Field: "자녀수", Question: "자녀가 있나요?"},
	})
	require.NoError(t, err)
	assert.Contains(t, prompt, `"question": "자녀가 있나요?"`)
	assert.Contains(t, prompt, "JSON array")

	empty, err := BuildQuestionFilterPrompt(profileLine, nil)
	require.NoError(t, err)
	assert.Contains(t, empty, "[]")
}

func TestBuildAnswerExtractPrompt(t *testing.T) {
	prompt, err := BuildAnswerExtractPrompt(models.Question{Field: "자녀수", Text: "자녀가 있나요?"}, "두 명 있어요")
	require.NoError(t, err)
	assert.Contains(t, prompt, "질문: 자녀가 있나요?")
	assert.Contains(t, prompt, "필드명 힌트: 자녀수")
	assert.Contains(t, prompt, "사용자 답변: 두 명 있어요")

	noField, err := BuildAnswerExtractPrompt(models.Question{Text: "연소득은?"}, "3천")
	require.NoError(t, err)
	assert.NotContains(t, noField, "필드명 힌트")
}

func TestBuildFinalPrompt(t *testing.T) {
	prompt, err := BuildFinalPrompt(FinalInput{
		Profile:        profileLine,
		PolicyText:     SamplePolicyText(),
		PlanJSON:       `{"questions":[]}`,
		AnsweredFields: map[string]string{"연소득": "3000만원"},
		Answers: []models.QAPair{
			{Question: models.Question{Text: "작년 총급여가 얼마인가요?"}, Answer: "3000만원"},
		},
	})
	require.NoError(t, err)

	for _, header := range models.ReportHeaders {
		assert.Contains(t, prompt, header)
	}
	assert.Contains(t, prompt, `"연소득": "3000만원"`)
	assert.Contains(t, prompt, "- Q: 작년 총급여가 얼마인가요?")
	assert.Contains(t, prompt, "청년도약계좌")
	assert.NotContains(t, prompt, "추출된 핵심 정보")

	bare, err := BuildFinalPrompt(FinalInput{Profile: profileLine, PlanJSON: "{}"})
	require.NoError(t, err)
	assert.NotContains(t, bare, "추가 확인된 정보")
	assert.NotContains(t, bare, "질문과 답변")
}

func TestSamplePolicyText(t *testing.T) {
	assert.Contains(t, SamplePolicyText(), "청년월세")
}
