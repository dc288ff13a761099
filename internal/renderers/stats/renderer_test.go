package stats

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/whistle-cli/internal/core/domain"
	"github.com/custodia-labs/whistle-cli/internal/core/ports/driven"
)

func testSummary() *domain.Summary {
	return &domain.Summary{Stats: domain.Stats{
		Total: 5,
		ByCategory: map[domain.Category]int{
			domain.CategoryTechnical:  3,
			domain.CategoryHarassment: 1,
			domain.CategoryFraud:      1,
		},
		ByUrgency:     map[domain.Urgency]int{domain.UrgencyLow: 4, domain.UrgencyHigh: 1},
		ByStatus:      map[domain.Status]int{domain.StatusPending: 5},
		FlaggedSpam:   1,
		AvgConfidence: 0.6,
		AvgSpamScore:  0.25,
		First:         time.Date(2026, 3, 30, 0, 0, 0, 0, time.UTC),
		Last:          time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC),
		PerMonth:      2.5,
	}}
}

func TestRenderer_Render(t *testing.T) {
	out, err := New().Render(nil, driven.RenderOptions{Summary: testSummary()})
	require.NoError(t, err)
	text := string(out)

	assert.Contains(t, text, "=== COMPLAINT STATISTICS ===")
	assert.Contains(t, text, "Total:     5")
	assert.Contains(t, text, "Period:    2026-03-30 to 2026-04-02 (2.5 per month)")
	assert.Contains(t, text, "Flagged as possible spam: 1 (20%)")
	assert.Contains(t, text, "Average spam score:       0.25")

	tech := strings.Index(text, "Technical Issue")
	harass := strings.Index(text, "Workplace Harassment")
	fraud := strings.Index(text, "Fraud/Corruption")
	require.True(t, tech > 0 && harass > 0 && fraud > 0)
	assert.Less(t, tech, harass, "larger counts first")
	assert.Less(t, harass, fraud, "ties keep priority order")
	assert.Contains(t, text, "60.0%")
	assert.NotContains(t, text, "Discrimination")
}

func TestRenderer_Errors(t *testing.T) {
	_, err := New().Render(nil, driven.RenderOptions{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = New().Render(nil, driven.RenderOptions{Summary: &domain.Summary{}})
	assert.ErrorIs(t, err, domain.ErrNoData)
}

func TestRenderer_Metadata(t *testing.T) {
	assert.Equal(t, domain.FormatStats, New().Format())
}
