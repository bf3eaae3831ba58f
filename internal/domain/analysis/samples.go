package analysis

// Shipped sample analyses, shown beneath user history so the app has content
// before the first real capture. They use the legacy record shape on purpose:
// the store must keep serving records written under the old contract.

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

// Samples returns fresh copies of the seeded records. Sample ids use the
// "sample-" prefix and never collide with generated ids, which start with an
// epoch-millis digit run.
func Samples() []*Analysis {
	src := []*Analysis{
		{
			ID:               "sample-1",
			ImageURI:         "https://images.pexels.com/photos/6801648/pexels-photo-6801648.jpeg",
			Symbol:           strPtr("BTC/USD"),
			Direction:        strPtr("bullish"),
			Pattern:          strPtr("Ascending Triangle"),
			Confidence:       intPtr(82),
			Entry:            strPtr("43,850"),
			Target:           strPtr("46,200"),
			StopLoss:         strPtr("42,900"),
			Summary:          strPtr("Price is compressing under horizontal resistance with rising lows. A breakout above 44,100 confirms continuation."),
			DetailedAnalysis: []Section{},
			CreatedAt:        1735689600000, // 01-Jan-2025
		},
		{
			ID:               "sample-2",
			ImageURI:         "https://images.pexels.com/photos/7567443/pexels-photo-7567443.jpeg",
			Symbol:           strPtr("EUR/USD"),
			Direction:        strPtr("bearish"),
			Pattern:          strPtr("Head and Shoulders"),
			Confidence:       intPtr(74),
			Entry:            strPtr("1.0920"),
			Target:           strPtr("1.0785"),
			StopLoss:         strPtr("1.0975"),
			Summary:          strPtr("Completed head and shoulders with a neckline break on rising volume. Retest of the neckline offers the entry."),
			DetailedAnalysis: []Section{},
			CreatedAt:        1735603200000, // 31-Dec-2024
		},
		{
			ID:       "sample-3",
			ImageURI: "https://images.pexels.com/photos/5980738/pexels-photo-5980738.jpeg",
			Symbol:   strPtr("AAPL"),
			Trend:    strPtr("Bullish"),
			Volatility: strPtr("Moderate"),
			Volume:          strPtr("Above average"),
			MarketSentiment: strPtr("Positive"),
			GamePlan:        strPtr("Wait for a pullback into the order block near 186 before entering long. Invalidate below the prior swing low."),
			DetailedAnalysis: []Section{
				{Title: "Daily Bias", Description: "Higher highs and higher lows on the daily; bias stays bullish above 184."},
				{Title: "Order / Breaker Block", Description: "Bullish order block at 185.80-186.40 from the last impulse leg."},
				{Title: "Fair Value Gap", Description: "Unfilled fair value gap between 187.20 and 188.00 acting as a magnet."},
				{Title: "Economic Data", Description: "CPI print on 12-Jan may add volatility; a cool print supports the long."},
				{Title: "Moon Phase", Description: "Full moon on 13-Jan has historically lined up with short-term tops; trail stops into it."},
			},
			ImageAnalysisSummary: strPtr("Clean bullish continuation structure with a nearby demand zone."),
			CreatedAt:            1735516800000, // 30-Dec-2024
		},
	}
	out := make([]*Analysis, len(src))
	for i, a := range src {
		out[i] = a.Clone()
	}
	return out
}
