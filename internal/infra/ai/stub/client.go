// Package stub provides an offline ai.Client returning a canned, schema-valid
// completion. Used in tests and as a demo mode when no API key is configured.
package stub

import (
	"context"
	"encoding/json"
	"fmt"
)

type Client struct{}

func New() *Client { return &Client{} }

type section struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type completion struct {
	Ticker               string    `json:"ticker"`
	Trend                string    `json:"trend"`
	Volatility           string    `json:"volatility"`
	Volume               string    `json:"volume"`
	MarketSentiment      string    `json:"marketSentiment"`
	GamePlan             string    `json:"gamePlan"`
	DetailedAnalysis     []section `json:"detailedAnalysis"`
	ImageAnalysisSummary string    `json:"imageAnalysisSummary"`
}

// Analyze ignores the image and returns one worked example matching the ICT
// contract schema.
func (c *Client) Analyze(ctx context.Context, prompt, imageDataURI string) (string, error) {
	out := completion{
		Ticker:          "DEMO",
		Trend:           "Bullish",
		Volatility:      "Moderate",
		Volume:          "Average",
		MarketSentiment: "Neutral",
		GamePlan:        "Demo mode: configure OPENAI_API_KEY to analyze real charts. This canned plan waits for a pullback before entering long.",
		DetailedAnalysis: []section{
			{Title: "Daily Bias", Description: "Structure prints higher highs and higher lows; bias is bullish."},
			{Title: "Order / Breaker Block", Description: "Demand block at 100.00 - 101.50 from the last impulse."},
			{Title: "Fair Value Gap", Description: "Unfilled gap between 103.20 and 104.00."},
			{Title: "Economic Data", Description: "No releases considered in demo mode."},
			{Title: "Moon Phase", Description: "Not considered in demo mode."},
		},
		ImageAnalysisSummary: "Canned demo analysis; no image was inspected.",
	}
	b, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("failed to marshal stub completion: %w", err)
	}
	return string(b), nil
}
