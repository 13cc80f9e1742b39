package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "policy-navigator/internal/common/errors"
	"policy-navigator/internal/models"
)

func values(p *models.Profile) []string {
	out := make([]string, len(p.Fields))
	for i, f := range p.Fields {
		out[i] = f.Value
	}
	return out
}

func TestParse_WellFormed(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{"29세/수도권/중소기업/월250/미혼", []string{"29세", "수도권", "중소기업", "월250", "미혼"}},
		{" 34 / 부산 / 프리랜서 / 월 180만원 / 기혼, 자녀1 ", []string{"34", "부산", "프리랜서", "월 180만원", "기혼, 자녀1"}},
		{"41살/강원/자영업/300만/기혼", []string{"41살", "강원", "자영업", "300만", "기혼"}},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			p, err := Parse(tt.raw)
			require.NoError(t, err)
			require.Len(t, p.Fields, 5)
			assert.Equal(t, tt.want, values(p))
			for i, f := range p.Fields {
				assert.Equal(t, models.ProfileFieldOrder[i], f.Kind)
				assert.True(t, f.Recognized, f.Kind)
			}
			assert.Empty(t, p.Warnings)
		})
	}
}

func TestParse_FreeTextSegments(t *testing.T) {
	p, err := Parse("스물아홉/수도권/중소기업/많음/미혼")
	require.NoError(t, err)

	assert.Equal(t, "스물아홉", p.Field(models.FieldAge).Value)
	assert.False(t, p.Field(models.FieldAge).Recognized)
	assert.False(t, p.Field(models.FieldIncome).Recognized)
	assert.Equal(t, []string{
		`age "스물아홉" not recognised; kept as free text`,
		`monthly_income "많음" not recognised; kept as free text`,
	}, p.Warnings)
}

func TestParse_FewerSegments(t *testing.T) {
	p, err := Parse("29세/수도권")
	require.NoError(t, err)

	assert.Equal(t, []string{"29세", "수도권", "", "", ""}, values(p))
	assert.Equal(t, []string{"expected 5 segments, got 2; missing: occupation, monthly_income, marital_status"}, p.Warnings)
	assert.Equal(t, "나이: 29세, 지역: 수도권", p.Structured())
}

func TestParse_MoreSegments(t *testing.T) {
	p, err := Parse("29세/수도권/중소기업/월250/기혼/자녀2/무주택")
	require.NoError(t, err)

	require.Len(t, p.Fields, 5)
	assert.Equal(t, "기혼/자녀2/무주택", p.Field(models.FieldMarital).Value)
	assert.Equal(t, []string{"expected 5 segments, got 7; extra segments folded into marital_status"}, p.Warnings)
}

func TestParse_Deterministic(t *testing.T) {
	raw := "abc//월250"
	first, err := Parse(raw)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := Parse(raw)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
	assert.Contains(t, first.Warnings, "region is empty")
}

func TestParse_Empty(t *testing.T) {
	for _, raw := range []string{"", "   ", "////", " / / "} {
		_, err := Parse(raw)
		require.Error(t, err)
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeMalformedProfile))
		assert.Equal(t, 3, apperrors.ExitCode(err))
	}
}
