package render

import (
	"encoding/json"
	"fmt"

	"github.com/exportmate/exportmate/internal/domain"
)

// replyEnvelope mirrors the co-located fields of a structured service
// reply. The upstream service answers a free-form question with a bare
// string and a structured query with an object; the object carries the
// recommendation text, reason, HS-code note and country list side by side,
// with the predicted price next to them when the prediction endpoint
// served the turn.
type replyEnvelope struct {
	PredictedPrice *float64     `json:"predictedPrice"`
	Recommendation *string      `json:"recommendation"`
	Reason         string       `json:"reason"`
	HSCodeInfo     string       `json:"hsCodeInfo"`
	Countries      []replyEntry `json:"countries"`
}

type replyEntry struct {
	Name   string  `json:"name"`
	Volume float64 `json:"volume"`
	Reason string  `json:"reason"`
}

// Classify inspects a raw reply payload once and returns exactly one
// RenderPayload variant. The shape is decided structurally, not by a type
// tag: a JSON string is narrative text, an object with a recommendation
// string is a recommendation, and a numeric predictedPrice alongside it
// upgrades the result to a price prediction. Anything else fails with
// ErrMalformedResponse.
func Classify(raw json.RawMessage) (domain.RenderPayload, error) {
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return domain.NewPlainTextPayload(text), nil
	}

	var env replyEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return domain.RenderPayload{}, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	if env.Recommendation == nil {
		return domain.RenderPayload{}, fmt.Errorf("%w: no recognized reply shape", domain.ErrMalformedResponse)
	}

	rec := domain.Recommendation{
		Headline:   *env.Recommendation,
		HSCodeNote: env.HSCodeInfo,
		Rationale:  env.Reason,
		Countries:  make([]domain.CountryEntry, 0, len(env.Countries)),
	}
	for _, c := range env.Countries {
		rec.Countries = append(rec.Countries, domain.CountryEntry{
			Name:         c.Name,
			ImportVolume: c.Volume,
			Rationale:    c.Reason,
		})
	}

	if env.PredictedPrice != nil {
		return domain.NewPricePredictionPayload(*env.PredictedPrice, rec), nil
	}
	return domain.NewRecommendationPayload(rec), nil
}

// RenderedMessage is the view of a message handed to the frontend. Plain
// text payloads additionally carry their derived blocks; deriving them
// here keeps the stored payload untouched and the segmentation re-runnable
// per render.
type RenderedMessage struct {
	domain.Message
	Blocks []Block `json:"blocks,omitempty"`
}

// RenderMessage builds the render view for one message.
func RenderMessage(msg domain.Message) RenderedMessage {
	rm := RenderedMessage{Message: msg}
	if msg.Payload.Kind == domain.KindPlainText && msg.Payload.PlainText != nil {
		rm.Blocks = Blocks(msg.Payload.PlainText.Raw)
	}
	return rm
}

// RenderMessages builds the render view for a message sequence.
func RenderMessages(msgs []domain.Message) []RenderedMessage {
	out := make([]RenderedMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, RenderMessage(m))
	}
	return out
}
