package analysis

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ID tipe untuk Analysis
type ID string

// Section is one titled sub-report inside an Analysis. Order is meaningful:
// sections carry fixed identities, they are never sorted.
type Section struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// SectionCount is how many sections the current prompt contract produces.
const SectionCount = 5

// Aggregate Root: Analysis
//
// One struct represents both historical record shapes so old and new records
// coexist in a single store. Pointer fields mean "absent is unknown": the
// pipeline never synthesizes a value for a field the model did not return,
// and an empty string stays distinguishable from a missing one.
type Analysis struct {
	ID       ID     `json:"id"`
	ImageURI string `json:"imageUri"`

	Symbol          *string `json:"symbol,omitempty"`
	Trend           *string `json:"trend,omitempty"`
	Volatility      *string `json:"volatility,omitempty"`
	Volume          *string `json:"volume,omitempty"`
	MarketSentiment *string `json:"marketSentiment,omitempty"`
	GamePlan        *string `json:"gamePlan,omitempty"`

	// DetailedAnalysis is never nil in a persisted record; wholly absent
	// input defaults to the empty sequence.
	DetailedAnalysis []Section `json:"detailedAnalysis"`

	ImageAnalysisSummary *string `json:"imageAnalysisSummary,omitempty"`

	// CreatedAt is epoch milliseconds, assigned once, immutable afterwards.
	CreatedAt int64 `json:"createdAt"`

	// Legacy shape fields.
	Direction  *string `json:"direction,omitempty"` // bullish | bearish | neutral
	Pattern    *string `json:"pattern,omitempty"`
	Confidence *int    `json:"confidence,omitempty"` // 0-100
	Entry      *string `json:"entry,omitempty"`
	Target     *string `json:"target,omitempty"`
	StopLoss   *string `json:"stopLoss,omitempty"`
	Summary    *string `json:"summary,omitempty"`
	Timestamp  *int64  `json:"timestamp,omitempty"`
}

// NewID builds a recency-sortable identifier: epoch millis plus a uuid
// fragment so two analyses finishing within the same millisecond still get
// distinct ids. A colliding id reaching the store is a defect, not an
// overwrite.
func NewID(t time.Time) ID {
	return ID(fmt.Sprintf("%d-%s", t.UnixMilli(), uuid.New().String()[:8]))
}

// Validate checks the structural invariants a record must satisfy before it
// is persisted. Business-semantic correctness of field values is out of
// scope on purpose.
func (a *Analysis) Validate() error {
	if strings.TrimSpace(string(a.ID)) == "" {
		return fmt.Errorf("analysis id is empty")
	}
	if a.CreatedAt <= 0 {
		return fmt.Errorf("analysis createdAt is not set")
	}
	for i, s := range a.DetailedAnalysis {
		if strings.TrimSpace(s.Title) == "" {
			return fmt.Errorf("detailedAnalysis[%d] has no title", i)
		}
	}
	return nil
}

// EnforceSectionContract applies the strict five-section contract: if the
// parsed sections do not match the expected count the whole field is treated
// as a shape mismatch and dropped to the empty sequence. Recoverable by
// design; the rest of the analysis survives.
func (a *Analysis) EnforceSectionContract() {
	if len(a.DetailedAnalysis) != SectionCount {
		a.DetailedAnalysis = []Section{}
	}
}

// Clone returns a deep copy so store caches can hand out records without
// sharing mutable state with callers.
func (a *Analysis) Clone() *Analysis {
	if a == nil {
		return nil
	}
	c := *a
	c.Symbol = cloneStr(a.Symbol)
	c.Trend = cloneStr(a.Trend)
	c.Volatility = cloneStr(a.Volatility)
	c.Volume = cloneStr(a.Volume)
	c.MarketSentiment = cloneStr(a.MarketSentiment)
	c.GamePlan = cloneStr(a.GamePlan)
	c.ImageAnalysisSummary = cloneStr(a.ImageAnalysisSummary)
	c.Direction = cloneStr(a.Direction)
	c.Pattern = cloneStr(a.Pattern)
	c.Entry = cloneStr(a.Entry)
	c.Target = cloneStr(a.Target)
	c.StopLoss = cloneStr(a.StopLoss)
	c.Summary = cloneStr(a.Summary)
	if a.Confidence != nil {
		v := *a.Confidence
		c.Confidence = &v
	}
	if a.Timestamp != nil {
		v := *a.Timestamp
		c.Timestamp = &v
	}
	c.DetailedAnalysis = make([]Section, len(a.DetailedAnalysis))
	copy(c.DetailedAnalysis, a.DetailedAnalysis)
	return &c
}

func cloneStr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
