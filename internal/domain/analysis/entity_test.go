package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIDDistinctWithinSameMillisecond(t *testing.T) {
	now := time.Date(2025, 1, 5, 12, 0, 0, 0, time.UTC)
	seen := map[ID]bool{}
	for i := 0; i < 1000; i++ {
		id := NewID(now)
		require.False(t, seen[id], "id collision within one millisecond")
		seen[id] = true
	}
}

func TestNewIDSortsByRecency(t *testing.T) {
	earlier := NewID(time.Date(2025, 1, 5, 12, 0, 0, 0, time.UTC))
	later := NewID(time.Date(2025, 1, 5, 12, 0, 1, 0, time.UTC))
	assert.True(t, string(later) > string(earlier))
}

func TestValidate(t *testing.T) {
	a := &Analysis{ID: NewID(time.Now()), CreatedAt: time.Now().UnixMilli()}
	assert.NoError(t, a.Validate())

	assert.Error(t, (&Analysis{CreatedAt: 1}).Validate(), "empty id")
	assert.Error(t, (&Analysis{ID: "x"}).Validate(), "missing createdAt")

	a.DetailedAnalysis = []Section{{Title: "", Description: "d"}}
	assert.Error(t, a.Validate(), "untitled section")
}

func TestEnforceSectionContract(t *testing.T) {
	five := make([]Section, 5)
	for i := range five {
		five[i] = Section{Title: "t", Description: "d"}
	}
	a := &Analysis{DetailedAnalysis: five}
	a.EnforceSectionContract()
	assert.Len(t, a.DetailedAnalysis, 5, "exactly five sections survive")

	a = &Analysis{DetailedAnalysis: five[:3]}
	a.EnforceSectionContract()
	assert.Empty(t, a.DetailedAnalysis, "wrong count drops to empty sequence")
	assert.NotNil(t, a.DetailedAnalysis)
}

func TestCloneIsDeep(t *testing.T) {
	trend := "Bullish"
	a := &Analysis{
		ID:               "a-1",
		Trend:            &trend,
		DetailedAnalysis: []Section{{Title: "Daily Bias", Description: "up"}},
		CreatedAt:        42,
	}
	c := a.Clone()
	*c.Trend = "Bearish"
	c.DetailedAnalysis[0].Title = "mutated"

	assert.Equal(t, "Bullish", *a.Trend)
	assert.Equal(t, "Daily Bias", a.DetailedAnalysis[0].Title)
}
