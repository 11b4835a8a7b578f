package analysis

import "context"

// ModelClient port (interface to the vision/chat model provider)
type ModelClient interface {
	// Analyze runs the full garment inspection prompt over the uploaded
	// photos and returns the model's free-text narrative.
	Analyze(ctx context.Context, images []ImageInput) (string, error)

	// ScoreAuthenticity asks for the authenticity verdict as JSON,
	// grounded on the photos and the prior narrative. Returns raw text.
	ScoreAuthenticity(ctx context.Context, images []ImageInput, narrative string) (string, error)

	// EstimatePrice asks for resale pricing as JSON, grounded on the
	// photos, the narrative and the parsed verdict. Returns raw text.
	EstimatePrice(ctx context.Context, images []ImageInput, narrative string, auth Authenticity) (string, error)

	// Chat answers a follow-up question given the rendered session context.
	Chat(ctx context.Context, message, contextSummary string) (string, error)
}

// ImageStore port (interface for image blob persistence)
type ImageStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}
