package analysis

import (
	"fmt"
	"strings"
)

// Verdict tokens the model is asked to pick from. Anything else the
// model answers is kept verbatim.
const (
	VerdictAuthentic       = "AUTHENTIC"
	VerdictLikelyAuthentic = "LIKELY AUTHENTIC"
	VerdictQuestionable    = "QUESTIONABLE"
	VerdictCounterfeit     = "COUNTERFEIT"
)

// Rarity tiers, least to most rare.
var RarityTiers = []string{"common", "uncommon", "rare", "epic", "legendary", "mythic"}

// Authenticity verdict block
type Authenticity struct {
	Score               int      `json:"score"`
	Confidence          int      `json:"confidence"`
	Verdict             string   `json:"verdict"`
	Explanation         []string `json:"explanation"`
	RedFlags            []string `json:"redFlags"`
	AuthenticityMarkers []string `json:"authenticityMarkers"`
	DetectedBrand       string   `json:"detectedBrand,omitempty"`
}

// Brand identification block
type Brand struct {
	Name         string   `json:"name"`
	Confidence   int      `json:"confidence"`
	Alternatives []string `json:"alternatives,omitempty"`
}

// Condition on a 1..5 scale
type Condition struct {
	Score       int      `json:"score"`
	Description string   `json:"description"`
	Tags        []string `json:"tags,omitempty"`
}

// Era classification with optional decade ("1990s")
type Era struct {
	Classification string `json:"classification"`
	Rationale      string `json:"rationale,omitempty"`
	Decade         string `json:"decade,omitempty"`
}

// PricePair holds one amount in both currencies.
type PricePair struct {
	INR int `json:"inr"`
	USD int `json:"usd"`
}

// PriceBand low/median/high in a single currency
type PriceBand struct {
	Low    int `json:"low"`
	Median int `json:"median"`
	High   int `json:"high"`
}

type MarketPrice struct {
	INR PriceBand `json:"inr"`
	USD PriceBand `json:"usd"`
}

type PriceEstimate struct {
	RetailPrice        *PricePair  `json:"retailPrice,omitempty"`
	CurrentMarketPrice MarketPrice `json:"currentMarketPrice"`
	Confidence         int         `json:"confidence"`
	Reasoning          string      `json:"reasoning,omitempty"`
	MarketInsights     string      `json:"marketInsights,omitempty"`
}

type DetailedFeatures struct {
	Material             string `json:"material,omitempty"`
	Color                string `json:"color,omitempty"`
	Pattern              string `json:"pattern,omitempty"`
	Size                 string `json:"size,omitempty"`
	CareInstructions     string `json:"careInstructions,omitempty"`
	CountryOfManufacture string `json:"countryOfManufacture,omitempty"`
}

type AdditionalObservations struct {
	CulturalSignificance string   `json:"culturalSignificance,omitempty"`
	InvestmentPotential  string   `json:"investmentPotential,omitempty"`
	ResalePlatforms      []string `json:"resalePlatforms,omitempty"`
}

// Aggregate Root: Result of one garment submission
type Result struct {
	Authenticity           Authenticity            `json:"authenticity"`
	Brand                  Brand                   `json:"brand"`
	Condition              Condition               `json:"condition"`
	Era                    Era                     `json:"era"`
	PriceEstimate          PriceEstimate           `json:"priceEstimate"`
	Rarity                 string                  `json:"rarity,omitempty"`
	DetailedFeatures       *DetailedFeatures       `json:"detailedFeatures,omitempty"`
	AdditionalObservations *AdditionalObservations `json:"additionalObservations,omitempty"`
	Thumbnails             []string                `json:"thumbnails,omitempty"`
	Warnings               []string                `json:"warnings,omitempty"`
	NeedsMoreImages        bool                    `json:"needsMoreImages"`
}

// ImageInput is one uploaded photo travelling through the pipeline.
type ImageInput struct {
	Filename string
	MIMEType string
	Data     []byte
}

// Summary renders the result as compact prose for follow-up chat context.
func (r Result) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Item: %s", r.Brand.Name)
	if r.Era.Classification != "" {
		fmt.Fprintf(&b, " (%s", r.Era.Classification)
		if r.Era.Decade != "" {
			fmt.Fprintf(&b, ", %s", r.Era.Decade)
		}
		b.WriteString(")")
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Authenticity: %s (score %d/100, confidence %d%%)\n",
		r.Authenticity.Verdict, r.Authenticity.Score, r.Authenticity.Confidence)
	if len(r.Authenticity.RedFlags) > 0 {
		fmt.Fprintf(&b, "Red flags: %s\n", strings.Join(r.Authenticity.RedFlags, "; "))
	}
	fmt.Fprintf(&b, "Condition: %d/5 %s\n", r.Condition.Score, r.Condition.Description)
	if r.Rarity != "" {
		fmt.Fprintf(&b, "Rarity: %s\n", r.Rarity)
	}
	mp := r.PriceEstimate.CurrentMarketPrice
	fmt.Fprintf(&b, "Market price: INR %d-%d (median %d), USD %d-%d (median %d)\n",
		mp.INR.Low, mp.INR.High, mp.INR.Median, mp.USD.Low, mp.USD.High, mp.USD.Median)
	if rp := r.PriceEstimate.RetailPrice; rp != nil {
		fmt.Fprintf(&b, "Estimated retail: INR %d / USD %d\n", rp.INR, rp.USD)
	}
	if r.DetailedFeatures != nil {
		var feats []string
		for _, kv := range [][2]string{
			{"material", r.DetailedFeatures.Material},
			{"color", r.DetailedFeatures.Color},
			{"pattern", r.DetailedFeatures.Pattern},
			{"size", r.DetailedFeatures.Size},
			{"made in", r.DetailedFeatures.CountryOfManufacture},
		} {
			if kv[1] != "" {
				feats = append(feats, kv[0]+": "+kv[1])
			}
		}
		if len(feats) > 0 {
			fmt.Fprintf(&b, "Features: %s\n", strings.Join(feats, ", "))
		}
	}
	if r.AdditionalObservations != nil && len(r.AdditionalObservations.ResalePlatforms) > 0 {
		fmt.Fprintf(&b, "Resale platforms: %s\n", strings.Join(r.AdditionalObservations.ResalePlatforms, ", "))
	}
	return strings.TrimRight(b.String(), "\n")
}
