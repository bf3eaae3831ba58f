package prompt

import (
	"fmt"
	"time"
)

// Contract selects which instruction text is sent to the model.
type Contract string

const (
	// ContractICT is the canonical contract: five fixed detailed-analysis
	// sections in a fixed order.
	ContractICT Contract = "ict"
	// ContractGeneric is the older free-form contract, kept as a parallel
	// mode so existing clients keep working.
	ContractGeneric Contract = "generic"
)

// SectionTitles are the mandatory detailedAnalysis titles of the ICT
// contract, in their required order.
var SectionTitles = [5]string{
	"Daily Bias",
	"Order / Breaker Block",
	"Fair Value Gap",
	"Economic Data",
	"Moon Phase",
}

// dateLayout renders dates like 05-Jan-2025.
const dateLayout = "02-Jan-2006"

// Valid reports whether c names a known contract. Empty means ICT.
func (c Contract) Valid() bool {
	return c == "" || c == ContractICT || c == ContractGeneric
}

// Build returns the system prompt for the given contract and date. Pure
// function of its inputs: the same date always produces the same string, so
// prompt behavior is testable by snapshot.
func Build(c Contract, now time.Time) string {
	if c == ContractGeneric {
		return Generic()
	}
	return ICT(now)
}

// ICT builds the canonical five-section instruction text. The section
// descriptions and the worked example are the external contract with the
// model; field names here must match what the normalizer recognizes.
func ICT(now time.Time) string {
	return fmt.Sprintf(`You are an ICT financial chart analysis expert. Today's date is %s.
Analyze the uploaded chart image and return a JSON object with the following keys ONLY:
- ticker (string)
- trend (string)
- volatility (string)
- volume (string)
- marketSentiment (string)
- gamePlan (string, paragraph)
- detailedAnalysis (array of 5 objects, each with {title: string, description: string}, see below for exact required titles and order)
- imageAnalysisSummary (string, optional)

For the detailedAnalysis array, always include EXACTLY 5 objects, in this order, with these titles:
1. "Daily Bias" — Analyze why the chart is bullish or bearish.
2. "Order / Breaker Block" — Identify any order or breaker block, specify price points, give a 1 min explicit explanation on how to trade using this Order / Breaker Block in this scenario.
3. "Fair Value Gap" — Identify any fair value gap, specify price points, give a 1 min explicit explanation how to trade using this Fair Value Gap in this scenario.
4. "Economic Data" — List the dates of the most important upcoming US economic data release in the next 7 days from today, these data maybe Non-Farm Payrolls (NFP), Consumer Price Index (CPI), Federal Funds Rate / FOMC Statement, Gross Domestic Product (GDP), Unemployment Rate, Average Hourly Earnings, Core CPI / Core PCE Price Index, ISM Manufacturing and Services PMIs, Retail Sales, Initial Jobless Claims and give a 1 min explicit explanation on how it affects price direction in this scenario, give me the exact dates (DD-MMM), example: higher CPI is bad for risk assets since america is trying to fight inflation.
5. "Moon Phase" — List the date of new moon or full moon in the next month from today and give a 1 min explicit explanation on how it affects price direction in this scenario, give me the exact dates (DD-MMM), example: new moon usually means new beginnings which could lead to more buys in the market.

If any item is not found, set description to "Not detected" or "No significant [item] found."

Return only the JSON object, with all fields present. Do not include any explanation or formatting outside the JSON.

Example:
{
  "ticker": "AAPL",
  "trend": "Bullish",
  "volatility": "High",
  "volume": "Medium",
  "marketSentiment": "Neutral",
  "gamePlan": "Wait for a pullback to the support level before entering long. Set stop loss below recent swing low.",
  "detailedAnalysis": [
    {"title": "Daily Bias", "description": "The chart shows a strong bullish trend with higher highs and higher lows."},
    {"title": "Order / Breaker Block", "description": "Order block detected at $180.50 - $182.00."},
    {"title": "Fair Value Gap", "description": "Fair value gap between $185.00 and $187.00."},
    {"title": "Economic Data", "description": "Upcoming US CPI data could increase volatility in tech stocks."},
    {"title": "Moon Phase", "description": "Next full moon is historically associated with increased volatility."}
  ],
  "imageAnalysisSummary": "The chart indicates a bullish continuation setup."
}`, now.Format(dateLayout))
}

// Generic builds the legacy free-form instruction text.
func Generic() string {
	return `You are a financial chart analysis assistant. Analyze the uploaded chart image and return a JSON object with the following keys: trend (string), volatility (string), volume (string), marketSentiment (string), gamePlan (string, paragraph), detailedAnalysis (array of {title, description}), imageAnalysisSummary (string, optional). Example: {"trend":"Bullish","volatility":"High","volume":"Medium","marketSentiment":"Neutral","gamePlan":"...","detailedAnalysis":[{"title":"Bullish Momentum","description":"..."}],"imageAnalysisSummary":"..."}`
}
