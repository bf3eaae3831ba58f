package analyses

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/bryanwahyu/chartsight/internal/application"
	"github.com/bryanwahyu/chartsight/internal/domain/ai"
	"github.com/bryanwahyu/chartsight/internal/domain/analysis"
	"github.com/bryanwahyu/chartsight/internal/domain/faults"
	"github.com/bryanwahyu/chartsight/internal/infra/ai/prompt"
)

// Validation failures of the incoming capture payload.
var (
	ErrEmptyImage   = errors.New("image payload is empty")
	ErrBadMediaType = errors.New("unsupported image media type")
	ErrBadContract  = errors.New("unknown prompt contract")
)

// ImageStore uploads the captured chart so the record's imageUri outlives
// the client. Optional; without it the record keeps the caller's URI.
type ImageStore interface {
	Upload(ctx context.Context, data []byte, key, contentType string) (string, error)
}

// Service implements the chart analysis use-cases: run the capture-to-record
// pipeline and serve the history. Safe for concurrent use; write ordering is
// the repository's job.
type Service struct {
	History analysis.Repository
	Samples []*analysis.Analysis
	Vision  ai.Client
	Images  ImageStore        // optional
	Faults  faults.Repository // optional
	Clock   application.Clock
	Log     zerolog.Logger
}

// AnalyzeCommand carries one captured image into the pipeline.
type AnalyzeCommand struct {
	ImageData []byte
	MediaType string // "png" or "image/png" style both accepted
	ImageURI  string // client-side reference, used when no image store is wired
	Contract  prompt.Contract
}

// Analyze runs capture → prompt → model → normalize → persist.
//
// The request suspends at exactly two points: the model call and the durable
// write. If ctx is cancelled while the model call is in flight, the late
// result is discarded and nothing is written on behalf of the abandoned
// request. A durable-write failure still returns the record, wrapped with
// PersistenceError, so the caller can display it and warn that it is unsaved.
func (s *Service) Analyze(ctx context.Context, cmd AnalyzeCommand) (*analysis.Analysis, error) {
	if len(cmd.ImageData) == 0 {
		return nil, ErrEmptyImage
	}
	mediaType, ok := normalizeMediaType(cmd.MediaType)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrBadMediaType, cmd.MediaType)
	}
	if !cmd.Contract.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrBadContract, cmd.Contract)
	}

	now := s.Clock.Now()
	sys := prompt.Build(cmd.Contract, now)
	dataURI := fmt.Sprintf("data:%s;base64,%s", mediaType, base64.StdEncoding.EncodeToString(cmd.ImageData))

	raw, err := s.Vision.Analyze(ctx, sys, dataURI)
	if err != nil {
		s.recordFault("request", err)
		return nil, err
	}

	// Caller may have gone away while the call was in flight.
	if err := ctx.Err(); err != nil {
		s.Log.Debug().Msg("analysis cancelled after model call; result discarded")
		return nil, err
	}

	rec, err := analysis.Normalize(raw, s.Clock.Now())
	if err != nil {
		s.recordFault("normalize", err)
		return nil, err
	}
	if cmd.Contract != prompt.ContractGeneric {
		rec.EnforceSectionContract()
	}

	rec.ImageURI = cmd.ImageURI
	if s.Images != nil {
		key := fmt.Sprintf("charts/%s%s", rec.ID, extFor(mediaType))
		url, upErr := s.Images.Upload(ctx, cmd.ImageData, key, mediaType)
		if upErr != nil {
			// Not fatal: the record keeps the client-side URI.
			s.Log.Warn().Err(upErr).Msg("chart image upload failed")
		} else {
			rec.ImageURI = url
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := s.History.Save(ctx, rec); err != nil {
		s.recordFault("persist", err)
		return rec, &analysis.PersistenceError{Err: err}
	}

	s.Log.Info().Str("id", string(rec.ID)).Msg("analysis persisted")
	return rec, nil
}

// List returns user records first (most-recent-first), then the shipped
// samples in their own order. direction filters on the legacy direction
// field; empty means no filter.
func (s *Service) List(ctx context.Context, direction string) ([]*analysis.Analysis, error) {
	user, err := s.History.History(ctx)
	if err != nil {
		return nil, err
	}
	all := make([]*analysis.Analysis, 0, len(user)+len(s.Samples))
	all = append(all, user...)
	for _, a := range s.Samples {
		all = append(all, a.Clone())
	}
	if direction == "" {
		return all, nil
	}
	filtered := all[:0]
	for _, a := range all {
		if a.Direction != nil && strings.EqualFold(*a.Direction, direction) {
			filtered = append(filtered, a)
		}
	}
	return filtered, nil
}

// Get resolves an id against user history first, then the shipped samples,
// so demo content and real content share one lookup path.
func (s *Service) Get(ctx context.Context, id analysis.ID) (*analysis.Analysis, error) {
	a, err := s.History.Get(ctx, id)
	if err == nil {
		return a, nil
	}
	if !errors.Is(err, analysis.ErrNotFound) {
		return nil, err
	}
	for _, sample := range s.Samples {
		if sample.ID == id {
			return sample.Clone(), nil
		}
	}
	return nil, analysis.ErrNotFound
}

// Clear empties the user history. Samples are untouched.
func (s *Service) Clear(ctx context.Context) error {
	return s.History.Clear(ctx)
}

// LatestFaults exposes the failure log for debugging bad prompt/response
// rounds.
func (s *Service) LatestFaults(ctx context.Context, limit int) ([]*faults.Fault, error) {
	if s.Faults == nil {
		return nil, nil
	}
	return s.Faults.Latest(ctx, limit)
}

// recordFault persists the raw diagnostic payload of a failed attempt. Uses
// a background context so a cancelled request still leaves its evidence.
func (s *Service) recordFault(phase string, cause error) {
	s.Log.Error().Str("phase", phase).Err(cause).Msg("analysis failed")
	if s.Faults == nil {
		return
	}
	f := &faults.Fault{
		Phase:     phase,
		Message:   cause.Error(),
		CreatedAt: s.Clock.Now(),
	}
	var uerr *analysis.UnparsableError
	var rerr *ai.RequestError
	switch {
	case errors.As(cause, &uerr):
		f.Raw = uerr.Raw
	case errors.As(cause, &rerr):
		f.Raw = rerr.Body
	}
	if err := s.Faults.Save(context.Background(), f); err != nil {
		s.Log.Warn().Err(err).Msg("could not record analysis fault")
	}
}

func normalizeMediaType(mt string) (string, bool) {
	mt = strings.ToLower(strings.TrimSpace(mt))
	mt = strings.TrimPrefix(mt, "image/")
	switch mt {
	case "jpg", "jpeg":
		return "image/jpeg", true
	case "png":
		return "image/png", true
	case "webp":
		return "image/webp", true
	case "gif":
		return "image/gif", true
	}
	return "", false
}

func extFor(mediaType string) string {
	switch mediaType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	}
	return ""
}
