package analysis

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"

	domain "github.com/Aayan-01/CLOT/internal/domain/analysis"
	"github.com/Aayan-01/CLOT/internal/domain/session"
	"github.com/Aayan-01/CLOT/internal/extract"
	"github.com/Aayan-01/CLOT/internal/imaging"
	"github.com/Aayan-01/CLOT/internal/metrics"
)

var tracer = otel.Tracer("analysis")

// Service implements the garment submission use-case: three model
// calls, field extraction, then a session holding the result.
// Safe for concurrent use.
type Service struct {
	Model        domain.ModelClient
	Images       domain.ImageStore
	ImageBackend string
	Sessions     session.Store
	Metrics      *metrics.Metrics
}

// SubmitCommand carries the uploaded photos of one garment.
type SubmitCommand struct {
	Images []domain.ImageInput
}

// Submit runs the full pipeline. The session is created only after all
// three stages succeed; a failed stage leaves nothing behind.
func (s *Service) Submit(ctx context.Context, cmd SubmitCommand) (*session.Session, error) {
	if s.Model == nil {
		return nil, domain.ErrNotConfigured
	}

	ctx, span := tracer.Start(ctx, "analysis.submit")
	defer span.End()

	imageRefs, thumbs, warnings := s.storeImages(ctx, cmd.Images)

	narrative, err := s.callStage(ctx, "narrative", func(ctx context.Context) (string, error) {
		return s.Model.Analyze(ctx, cmd.Images)
	})
	if err != nil {
		return nil, err
	}

	rawAuth, err := s.callStage(ctx, "authenticity", func(ctx context.Context) (string, error) {
		return s.Model.ScoreAuthenticity(ctx, cmd.Images, narrative)
	})
	if err != nil {
		return nil, err
	}
	auth, err := extract.Authenticity(rawAuth)
	if err != nil {
		logRaw(ctx, "authenticity", rawAuth, err)
		return nil, err
	}

	rawPrice, err := s.callStage(ctx, "price", func(ctx context.Context) (string, error) {
		return s.Model.EstimatePrice(ctx, cmd.Images, narrative, auth)
	})
	if err != nil {
		return nil, err
	}
	price, err := extract.Price(rawPrice)
	if err != nil {
		logRaw(ctx, "price", rawPrice, err)
		return nil, err
	}

	fields := extract.Narrative(narrative)
	result := assemble(fields, auth, price, thumbs, warnings)

	sess, err := s.Sessions.Create(ctx, imageRefs, result)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	if s.Metrics != nil {
		s.Metrics.SessionsCreatedTotal.Inc()
	}

	log.Ctx(ctx).Info().
		Str("session_id", sess.ID).
		Str("brand", result.Brand.Name).
		Str("verdict", result.Authenticity.Verdict).
		Int("images", len(cmd.Images)).
		Msg("analysis completed")

	return sess, nil
}

// callStage runs one model call under its own span and records metrics.
func (s *Service) callStage(ctx context.Context, stage string, call func(context.Context) (string, error)) (string, error) {
	ctx, span := tracer.Start(ctx, "model."+stage)
	defer span.End()

	start := time.Now()
	raw, err := call(ctx)
	duration := time.Since(start)

	status := "success"
	if err != nil {
		status = "error"
		span.RecordError(err)
	}
	if s.Metrics != nil {
		s.Metrics.ModelCallTotal.WithLabelValues(stage, status).Inc()
		s.Metrics.ModelCallDuration.WithLabelValues(stage).Observe(duration.Seconds())
	}
	if err != nil {
		return "", err
	}
	return raw, nil
}

// storeImages persists originals plus thumbnails. Storage problems
// never fail the submission; they come back as warnings.
func (s *Service) storeImages(ctx context.Context, images []domain.ImageInput) (refs, thumbs, warnings []string) {
	if s.Images == nil {
		return nil, nil, nil
	}

	for _, img := range images {
		key := objectKey(img.MIMEType)
		ref, err := s.Images.Put(ctx, key, img.Data, img.MIMEType)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("could not store image %q", img.Filename))
			log.Ctx(ctx).Warn().Err(err).Str("filename", img.Filename).Msg("image store failed")
			s.recordUpload("error")
			continue
		}
		s.recordUpload("success")
		refs = append(refs, ref)

		thumb, err := imaging.Thumbnail(img.Data, imaging.DefaultMaxDim)
		if err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("filename", img.Filename).Msg("thumbnail generation failed")
			continue
		}
		thumbKey := strings.TrimSuffix(key, path.Ext(key)) + "_thumb.jpg"
		thumbRef, err := s.Images.Put(ctx, thumbKey, thumb, "image/jpeg")
		if err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("filename", img.Filename).Msg("thumbnail store failed")
			continue
		}
		thumbs = append(thumbs, thumbRef)
	}
	return refs, thumbs, warnings
}

func (s *Service) recordUpload(status string) {
	if s.Metrics == nil {
		return
	}
	backend := s.ImageBackend
	if backend == "" {
		backend = "unknown"
	}
	s.Metrics.ImageUploadTotal.WithLabelValues(backend, status).Inc()
}

// assemble merges the parsed pieces into one result. The authenticity
// stage's detected brand wins over the narrative's guess when present.
func assemble(fields extract.Fields, auth domain.Authenticity, price domain.PriceEstimate, thumbs, warnings []string) domain.Result {
	result := domain.Result{
		Authenticity:           auth,
		Brand:                  fields.Brand,
		Condition:              fields.Condition,
		Era:                    fields.Era,
		PriceEstimate:          price,
		Rarity:                 fields.Rarity,
		DetailedFeatures:       fields.Features,
		AdditionalObservations: fields.Observations,
		Thumbnails:             thumbs,
		Warnings:               warnings,
		NeedsMoreImages:        fields.NeedsMoreImages,
	}
	if auth.DetectedBrand != "" {
		result.Brand.Name = auth.DetectedBrand
	}
	return result
}

// logRaw keeps unparseable model output in the debug log; it is never
// returned to the client.
func logRaw(ctx context.Context, stage, raw string, err error) {
	log.Ctx(ctx).Debug().Err(err).Str("stage", stage).Str("raw", raw).Msg("model output not parseable")
}

func objectKey(mimeType string) string {
	ext := ".jpg"
	if mimeType == "image/png" {
		ext = ".png"
	}
	return ulid.Make().String() + ext
}
