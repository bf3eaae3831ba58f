package analysis

import (
	"encoding/json"
	"strings"
	"time"
)

// Normalize turns raw model output into a canonical Analysis record.
//
// The upstream model is not guaranteed to return clean JSON, so parsing is a
// two-stage strategy: strict parse first, then extraction of the largest
// valid JSON object embedded in surrounding prose. When neither stage yields
// an object the raw text is returned inside UnparsableError, verbatim.
//
// Recognized fields are copied; absent fields stay absent. A field whose
// value has the wrong JSON shape is dropped rather than failing the whole
// analysis. Id and createdAt are always assigned here, never taken from the
// model output, even when it emits similarly named keys.
func Normalize(raw string, now time.Time) (*Analysis, error) {
	obj, ok := decodeObject(raw)
	if !ok {
		return nil, &UnparsableError{Raw: raw}
	}

	a := &Analysis{
		ID:               NewID(now),
		CreatedAt:        now.UnixMilli(),
		DetailedAnalysis: []Section{},
	}

	a.Symbol = strField(obj, "symbol")
	if a.Symbol == nil {
		// Legacy prompt contract asked for "ticker".
		a.Symbol = strField(obj, "ticker")
	}
	a.Trend = strField(obj, "trend")
	a.Volatility = strField(obj, "volatility")
	a.Volume = strField(obj, "volume")
	a.MarketSentiment = strField(obj, "marketSentiment")
	a.GamePlan = strField(obj, "gamePlan")
	a.ImageAnalysisSummary = strField(obj, "imageAnalysisSummary")

	a.Direction = strField(obj, "direction")
	a.Pattern = strField(obj, "pattern")
	a.Confidence = intField(obj, "confidence")
	a.Entry = strField(obj, "entry")
	a.Target = strField(obj, "target")
	a.StopLoss = strField(obj, "stopLoss")
	a.Summary = strField(obj, "summary")
	a.Timestamp = int64Field(obj, "timestamp")

	a.DetailedAnalysis = sectionsField(obj, "detailedAnalysis")

	return a, nil
}

// decodeObject runs the two-stage parse. Stage one: the whole text is JSON.
// Stage two: take the first '{' and try every closing '}' after it, longest
// candidate first, until one parses.
func decodeObject(raw string) (map[string]json.RawMessage, bool) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &m); err == nil && m != nil {
		return m, true
	}

	start := strings.IndexByte(raw, '{')
	if start < 0 {
		return nil, false
	}
	for end := len(raw) - 1; end > start; end-- {
		if raw[end] != '}' {
			continue
		}
		cand := raw[start : end+1]
		if !json.Valid([]byte(cand)) {
			continue
		}
		m = nil
		if err := json.Unmarshal([]byte(cand), &m); err == nil && m != nil {
			return m, true
		}
	}
	return nil, false
}

// strField copies a string field; absent or wrong-shaped values yield nil.
func strField(obj map[string]json.RawMessage, key string) *string {
	raw, ok := obj[key]
	if !ok || string(raw) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	return &s
}

func intField(obj map[string]json.RawMessage, key string) *int {
	raw, ok := obj[key]
	if !ok {
		return nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil
	}
	v := int(f)
	return &v
}

func int64Field(obj map[string]json.RawMessage, key string) *int64 {
	raw, ok := obj[key]
	if !ok {
		return nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil
	}
	v := int64(f)
	return &v
}

// sectionsField coerces detailedAnalysis. A value that is not an array of
// title/description pairs is a recoverable shape mismatch: the field is
// dropped to the empty sequence, never to null. Entries without a title are
// skipped; input order of the survivors is preserved.
func sectionsField(obj map[string]json.RawMessage, key string) []Section {
	raw, ok := obj[key]
	if !ok {
		return []Section{}
	}
	var parsed []Section
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return []Section{}
	}
	out := make([]Section, 0, len(parsed))
	for _, s := range parsed {
		if strings.TrimSpace(s.Title) == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}
