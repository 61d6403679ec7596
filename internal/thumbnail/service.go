// Package thumbnail runs the generate, store and record workflow and serves
// the owner-scoped gallery.
package thumbnail

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"thumbgen/internal/domain"
	"thumbgen/internal/providers/image"
	"thumbgen/internal/storage"
)

const (
	defaultGenerationTimeout = 150 * time.Second
	failureWriteTimeout      = 10 * time.Second
)

// ObjectStore holds generated images.
type ObjectStore interface {
	Upload(ctx context.Context, data []byte, opts storage.UploadOptions) (*storage.UploadResult, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Remove(ctx context.Context, key string) error
}

// GenerateInput is the client request. Style, aspect ratio and color scheme
// are checked against their closed sets when the prompt is built.
type GenerateInput struct {
	Title       string `json:"title" validate:"max=200"`
	UserPrompt  string `json:"prompt" validate:"max=2000"`
	Style       string `json:"style"`
	AspectRatio string `json:"aspect_ratio"`
	ColorScheme string `json:"color_scheme"`
	TextOverlay bool   `json:"text_overlay"`
	RequestID   string `json:"-"`
}

// Download is an opened stored image ready to be streamed to the owner.
type Download struct {
	Body        io.ReadCloser
	FileName    string
	ContentType string
}

type Options struct {
	// GenerationTimeout bounds the provider call plus the upload. Both run
	// detached from the request so a client disconnect does not abort them.
	GenerationTimeout time.Duration
}

type Service struct {
	repo      domain.ThumbnailRepository
	generator image.Generator
	store     ObjectStore
	validate  *validator.Validate
	logger    zerolog.Logger
	opts      Options
}

func NewService(repo domain.ThumbnailRepository, generator image.Generator, store ObjectStore, logger zerolog.Logger, opts Options) *Service {
	if opts.GenerationTimeout <= 0 {
		opts.GenerationTimeout = defaultGenerationTimeout
	}
	return &Service{
		repo:      repo,
		generator: generator,
		store:     store,
		validate:  validator.New(),
		logger:    logger,
		opts:      opts,
	}
}

// Generate creates a record, produces the image, stores it and completes the
// record. Invalid input fails before anything is written. When a later step
// fails the record is marked failed and the error is returned.
func (s *Service) Generate(ctx context.Context, userID string, in GenerateInput) (*domain.Thumbnail, error) {
	thumb, err := s.prepare(userID, in)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, thumb)
	if err != nil {
		return nil, err
	}

	log := s.logger.With().
		Str("request_id", in.RequestID).
		Str("thumbnail_id", created.ID).
		Str("user_id", userID).
		Logger()

	done, err := s.produce(ctx, created, in.RequestID)
	if err != nil {
		log.Error().Err(err).Msg("thumbnail generation failed")
		s.markFailed(ctx, created.ID, failureReason(err), log)
		return nil, err
	}

	log.Info().Str("image_key", done.ImageKey).Msg("thumbnail generated")
	return done, nil
}

func (s *Service) prepare(userID string, in GenerateInput) (*domain.Thumbnail, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.ErrUnauthorized
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, inputError(err)
	}

	style := domain.Style(strings.TrimSpace(in.Style))
	colorScheme := domain.ColorScheme(strings.ToLower(strings.TrimSpace(in.ColorScheme)))
	aspect, err := domain.ParseAspectRatio(in.AspectRatio)
	if err != nil {
		return nil, err
	}
	prompt, err := image.BuildThumbnailPrompt(image.PromptInput{
		Title:       in.Title,
		Style:       style,
		AspectRatio: aspect,
		ColorScheme: colorScheme,
		UserPrompt:  in.UserPrompt,
	})
	if err != nil {
		return nil, err
	}

	return &domain.Thumbnail{
		UserID:       userID,
		Title:        strings.TrimSpace(in.Title),
		Style:        style,
		AspectRatio:  aspect,
		ColorScheme:  colorScheme,
		UserPrompt:   strings.TrimSpace(in.UserPrompt),
		TextOverlay:  in.TextOverlay,
		PromptUsed:   prompt,
		IsGenerating: true,
	}, nil
}

func (s *Service) produce(ctx context.Context, thumb *domain.Thumbnail, requestID string) (*domain.Thumbnail, error) {
	workCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.GenerationTimeout)
	defer cancel()

	asset, err := s.generator.Generate(workCtx, image.GenerateRequest{
		Prompt:      thumb.PromptUsed,
		AspectRatio: string(thumb.AspectRatio),
		RequestID:   requestID,
	})
	if err != nil {
		return nil, err
	}
	if asset == nil || len(asset.Data) == 0 {
		return nil, fmt.Errorf("%w: empty image", domain.ErrGenerationFailed)
	}

	uploaded, err := s.store.Upload(workCtx, asset.Data, storage.UploadOptions{
		Prefix:      path.Join("thumbnails", thumb.UserID),
		ContentType: asset.Format,
	})
	if err != nil {
		return nil, err
	}

	done, err := s.repo.AttachResult(workCtx, thumb.ID, uploaded.URL, uploaded.Key)
	if err != nil {
		if rmErr := s.store.Remove(workCtx, uploaded.Key); rmErr != nil {
			s.logger.Warn().Err(rmErr).Str("image_key", uploaded.Key).Msg("orphaned object not removed")
		}
		return nil, err
	}
	return done, nil
}

func (s *Service) markFailed(ctx context.Context, id, reason string, log zerolog.Logger) {
	failCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), failureWriteTimeout)
	defer cancel()
	if err := s.repo.MarkFailed(failCtx, id, reason); err != nil {
		log.Warn().Err(err).Msg("could not mark thumbnail failed")
	}
}

// List returns the owner's thumbnails, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]domain.Thumbnail, error) {
	return s.repo.ListByOwner(ctx, userID)
}

// Get returns ErrNotFound unless userID owns the record.
func (s *Service) Get(ctx context.Context, userID, id string) (*domain.Thumbnail, error) {
	return s.repo.GetByIDForOwner(ctx, id, userID)
}

// Delete removes the owner's record and then, best-effort, its stored image.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	deleted, err := s.repo.DeleteByIDForOwner(ctx, id, userID)
	if err != nil {
		return err
	}
	if deleted.ImageKey != "" {
		if err := s.store.Remove(ctx, deleted.ImageKey); err != nil {
			s.logger.Warn().Err(err).Str("thumbnail_id", id).Str("image_key", deleted.ImageKey).Msg("stored image not removed")
		}
	}
	return nil
}

// Download opens the stored image of a completed thumbnail.
func (s *Service) Download(ctx context.Context, userID, id string) (*Download, error) {
	thumb, err := s.repo.GetByIDForOwner(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if thumb.ImageKey == "" {
		return nil, domain.ErrNotFound
	}
	body, err := s.store.Open(ctx, thumb.ImageKey)
	if err != nil {
		return nil, err
	}
	return &Download{
		Body:        body,
		FileName:    downloadName(thumb),
		ContentType: storage.ContentTypeFor(thumb.ImageKey),
	}, nil
}

func downloadName(t *domain.Thumbnail) string {
	short := t.ID
	if len(short) > 8 {
		short = short[:8]
	}
	ext := path.Ext(t.ImageKey)
	if ext == "" {
		ext = ".png"
	}
	return slug(t.Title) + "-" + short + ext
}

func slug(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(title) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
		if b.Len() >= 60 {
			break
		}
	}
	out := strings.TrimRight(b.String(), "-")
	if out == "" {
		return "thumbnail"
	}
	return out
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrGenerationFailed):
		return "The image model did not return an image"
	case errors.Is(err, domain.ErrProviderFailure):
		return "The image provider rejected the request"
	case errors.Is(err, domain.ErrUpload):
		return "The generated image could not be stored"
	case errors.Is(err, context.DeadlineExceeded):
		return "Image generation timed out"
	default:
		return "Thumbnail generation failed"
	}
}

func inputError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		switch verrs[0].Field() {
		case "Title":
			return domain.NewValidationError("title must be at most 200 characters")
		case "UserPrompt":
			return domain.NewValidationError("prompt must be at most 2000 characters")
		}
	}
	return domain.NewValidationError("Invalid request")
}
