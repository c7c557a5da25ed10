package domain

import "encoding/json"

// PayloadKind discriminates the variants of a RenderPayload.
type PayloadKind string

const (
	// KindPlainText is a free-form narrative answer
	KindPlainText PayloadKind = "plain_text"
	// KindRecommendation is a structured country recommendation
	KindRecommendation PayloadKind = "recommendation"
	// KindPricePrediction is a price estimate with an attached recommendation
	KindPricePrediction PayloadKind = "price_prediction"
)

// RenderPayload is the typed content of a message. Exactly one of the
// variant fields is set, selected by Kind.
type RenderPayload struct {
	Kind            PayloadKind      `json:"kind"`
	PlainText       *PlainText       `json:"plain_text,omitempty"`
	Recommendation  *Recommendation  `json:"recommendation,omitempty"`
	PricePrediction *PricePrediction `json:"price_prediction,omitempty"`
}

// PlainText carries a raw narrative reply. Block segmentation is derived
// at render time, never stored.
type PlainText struct {
	Raw string `json:"raw"`
}

// Recommendation is a structured advisory result naming candidate export
// destination countries with supporting trade-volume figures.
type Recommendation struct {
	Headline   string         `json:"headline"`
	HSCodeNote string         `json:"hs_code_note"`
	Rationale  string         `json:"rationale"`
	Countries  []CountryEntry `json:"countries"`
}

// PricePrediction is a numeric price estimate returned alongside a
// recommendation for a specific product query.
type PricePrediction struct {
	PredictedPrice float64        `json:"predicted_price"`
	Recommendation Recommendation `json:"recommendation"`
}

// CountryEntry is one candidate destination country.
type CountryEntry struct {
	Name         string  `json:"name"`
	ImportVolume float64 `json:"import_volume"`
	Rationale    string  `json:"rationale"`
}

// VolumeInMillions projects the import volume into millions of currency
// units for display.
func (c CountryEntry) VolumeInMillions() float64 {
	return c.ImportVolume / 1_000_000
}

// NewPlainTextPayload wraps raw narrative text.
func NewPlainTextPayload(raw string) RenderPayload {
	return RenderPayload{Kind: KindPlainText, PlainText: &PlainText{Raw: raw}}
}

// NewRecommendationPayload wraps a structured recommendation.
func NewRecommendationPayload(rec Recommendation) RenderPayload {
	return RenderPayload{Kind: KindRecommendation, Recommendation: &rec}
}

// NewPricePredictionPayload wraps a price prediction.
func NewPricePredictionPayload(price float64, rec Recommendation) RenderPayload {
	return RenderPayload{
		Kind:            KindPricePrediction,
		PricePrediction: &PricePrediction{PredictedPrice: price, Recommendation: rec},
	}
}

// Encode serializes the payload for storage.
func (p RenderPayload) Encode() ([]byte, error) {
	return json.Marshal(p)
}

// DecodePayload deserializes a stored payload.
func DecodePayload(data []byte) (RenderPayload, error) {
	var p RenderPayload
	err := json.Unmarshal(data, &p)
	return p, err
}
