package extract

import (
	"strings"

	"github.com/Aayan-01/CLOT/internal/domain/analysis"
)

// inrToUSD is the fixed conversion rate applied to every INR figure.
const inrToUSD = 0.012

// priceJSON mirrors the keys the price prompt asks for. All amounts
// are INR; USD figures are derived, never requested.
type priceJSON struct {
	RetailINR        *float64 `json:"retail_inr"`
	CurrentLowINR    float64  `json:"current_low_inr"`
	CurrentMedianINR float64  `json:"current_median_inr"`
	CurrentHighINR   float64  `json:"current_high_inr"`
	Confidence       float64  `json:"confidence"`
	Reasoning        string   `json:"reasoning"`
	MarketInsights   string   `json:"market_insights"`
}

// Price parses the price stage output. Band ordering is taken as the
// model produced it; amounts are rounded to whole currency units. A
// missing or unparseable JSON body is fatal for the pipeline.
func Price(raw string) (analysis.PriceEstimate, error) {
	var body priceJSON
	if err := decodeObject(raw, &body); err != nil {
		return analysis.PriceEstimate{}, &analysis.UnparseableError{Stage: "price", Raw: raw, Err: err}
	}
	out := analysis.PriceEstimate{
		CurrentMarketPrice: analysis.MarketPrice{
			INR: analysis.PriceBand{
				Low:    roundInt(body.CurrentLowINR),
				Median: roundInt(body.CurrentMedianINR),
				High:   roundInt(body.CurrentHighINR),
			},
			USD: analysis.PriceBand{
				Low:    usd(body.CurrentLowINR),
				Median: usd(body.CurrentMedianINR),
				High:   usd(body.CurrentHighINR),
			},
		},
		Confidence:     roundInt(body.Confidence),
		Reasoning:      strings.TrimSpace(body.Reasoning),
		MarketInsights: strings.TrimSpace(body.MarketInsights),
	}
	if body.RetailINR != nil {
		out.RetailPrice = &analysis.PricePair{
			INR: roundInt(*body.RetailINR),
			USD: usd(*body.RetailINR),
		}
	}
	return out, nil
}

func usd(inr float64) int {
	return roundInt(inr * inrToUSD)
}
