// Package services – PostService
//
// PostService owns the request pipeline for generated posts: normalize the
// tone, build the prompt, call the generation model, normalize its output,
// and persist the record. It also applies the listing policy (user-scoped or
// open) on reads.
//
// Observability: public methods are OpenTelemetry-instrumented.
package services

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"golang.org/x/text/unicode/norm"

	"github.com/tbourn/go-social-posts/internal/domain"
	"github.com/tbourn/go-social-posts/internal/imageproc"
	"github.com/tbourn/go-social-posts/internal/llm"
)

const (
	seedMin = 100000
	seedMax = 999999
)

// PostRepo defines the repository contract required by PostService.
type PostRepo interface {
	// CreatePost inserts a post and returns it with identity assigned.
	CreatePost(ctx context.Context, db *gorm.DB, in domain.NewPost) (*domain.Post, error)

	// ListPostsByUser returns the user's posts newest first.
	ListPostsByUser(ctx context.Context, db *gorm.DB, userID string, limit int) ([]domain.Post, error)

	// ListPosts returns every post in insertion order.
	ListPosts(ctx context.Context, db *gorm.DB, limit int) ([]domain.Post, error)

	// PostsStats returns (count, max id), optionally scoped to a user.
	PostsStats(ctx context.Context, db *gorm.DB, userID string) (int64, uint, error)
}

// Generator is the generation model seen by the service.
type Generator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
	GenerateVision(ctx context.Context, prompt string, image []byte, mimeType string) (string, error)
}

// PostService creates and lists generated posts.
type PostService struct {
	DB   *gorm.DB
	Repo PostRepo

	// Generator is nil when the service runs without credentials; generation
	// operations then fail with ErrNotConfigured.
	Generator Generator

	// UserScoped makes unfiltered listings return nothing.
	UserScoped bool

	DefaultTone  string
	ToneMaxRunes int

	Image imageproc.Options

	// Seed returns the cosmetic image seed for text posts.
	Seed func() int
}

// NewPostService constructs a PostService with defaults: user-scoped
// listing, "Professional" tone, 40-rune tone cap, 800px / q85 images.
func NewPostService(db *gorm.DB, r PostRepo, gen Generator) *PostService {
	return &PostService{
		DB:           db,
		Repo:         r,
		Generator:    gen,
		UserScoped:   true,
		DefaultTone:  llm.DefaultTone,
		ToneMaxRunes: 40,
		Image:        imageproc.DefaultOptions,
		Seed:         randomSeed,
	}
}

// Configured reports whether generation is available.
func (s *PostService) Configured() bool { return s.Generator != nil }

// CreateFromText generates copy for content in tone and stores the post.
//
// Errors: ErrEmptyContent, ErrNotConfigured, *GenerationError (provider
// failure or malformed output), or the storage error.
func (s *PostService) CreateFromText(ctx context.Context, userID *string, content, tone string) (*domain.Post, error) {
	tone = s.NormalizeTone(tone)
	ctx, span := otel.Tracer("services/PostService").Start(ctx, "CreateFromText",
		trace.WithAttributes(
			attribute.String("user.id", deref(userID)),
			attribute.String("post.tone", tone),
			attribute.Int("post.content_runes", utf8.RuneCountInString(content)),
		),
	)
	defer span.End()

	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	if s.Generator == nil {
		return nil, ErrNotConfigured
	}

	raw, err := s.Generator.GenerateText(ctx, llm.TextPrompt(norm.NFC.String(content), tone))
	if err != nil {
		span.RecordError(err)
		return nil, &GenerationError{Err: err}
	}
	caps, err := llm.ParseCaptions(raw)
	if err != nil {
		span.RecordError(err)
		return nil, &GenerationError{Err: err}
	}

	return s.Repo.CreatePost(ctx, s.DB, domain.NewPost{
		UserID:           userID,
		Content:          content,
		Tone:             tone,
		InstagramVersion: caps.InstagramVersion,
		TwitterVersion:   caps.TwitterVersion,
		ImagePrompt:      content,
		ImageSeed:        s.seed(),
	})
}

// CreateFromImage resizes the upload, generates copy for it in tone, and
// stores the post with the processed JPEG as base64.
//
// Errors: ErrNotConfigured, ErrInvalidImage (wrapped), *GenerationError, or
// the storage error.
func (s *PostService) CreateFromImage(ctx context.Context, userID *string, data []byte, tone string) (*domain.Post, error) {
	tone = s.NormalizeTone(tone)
	ctx, span := otel.Tracer("services/PostService").Start(ctx, "CreateFromImage",
		trace.WithAttributes(
			attribute.String("user.id", deref(userID)),
			attribute.String("post.tone", tone),
			attribute.Int("upload.bytes", len(data)),
		),
	)
	defer span.End()

	if s.Generator == nil {
		return nil, ErrNotConfigured
	}

	img, err := imageproc.Process(data, s.Image)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	span.SetAttributes(
		attribute.Int("image.width", img.Width),
		attribute.Int("image.height", img.Height),
	)

	raw, err := s.Generator.GenerateVision(ctx, llm.ImagePrompt(tone), img.JPEG, imageproc.MIMEType)
	if err != nil {
		span.RecordError(err)
		return nil, &GenerationError{Err: err}
	}
	caps, err := llm.ParseCaptions(raw)
	if err != nil {
		span.RecordError(err)
		return nil, &GenerationError{Err: err}
	}

	encoded := img.Base64()
	return s.Repo.CreatePost(ctx, s.DB, domain.NewPost{
		UserID:           userID,
		Content:          domain.ImageContentSentinel,
		Tone:             tone,
		InstagramVersion: caps.InstagramVersion,
		TwitterVersion:   caps.TwitterVersion,
		ImagePrompt:      domain.ImagePromptSentinel,
		ImageSeed:        domain.ImageSeedSentinel,
		IsUpload:         true,
		ImageData:        &encoded,
	})
}

// List returns posts for userID newest first. With no userID it returns an
// empty list in user-scoped mode, otherwise every post in insertion order.
// A limit <= 0 means no limit.
func (s *PostService) List(ctx context.Context, userID string, limit int) ([]domain.Post, error) {
	ctx, span := otel.Tracer("services/PostService").Start(ctx, "List",
		trace.WithAttributes(
			attribute.String("user.id", userID),
			attribute.Bool("list.scoped", s.UserScoped),
			attribute.Int("list.limit", limit),
		),
	)
	defer span.End()

	switch {
	case userID != "":
		return s.Repo.ListPostsByUser(ctx, s.DB, userID, limit)
	case s.UserScoped:
		return []domain.Post{}, nil
	default:
		return s.Repo.ListPosts(ctx, s.DB, limit)
	}
}

// Stats returns (count, max id) for the listing List would produce for
// userID, ignoring the limit. It is zero for a fail-closed listing.
func (s *PostService) Stats(ctx context.Context, userID string) (int64, uint, error) {
	if userID == "" && s.UserScoped {
		return 0, 0, nil
	}
	return s.Repo.PostsStats(ctx, s.DB, userID)
}

// NormalizeTone composes the label to NFC, collapses whitespace, and clips
// it to ToneMaxRunes. Letter case is kept as given. A blank tone becomes
// DefaultTone.
func (s *PostService) NormalizeTone(tone string) string {
	tone = strings.Join(strings.Fields(norm.NFC.String(tone)), " ")
	if s.ToneMaxRunes > 0 && utf8.RuneCountInString(tone) > s.ToneMaxRunes {
		tone = strings.TrimSpace(string([]rune(tone)[:s.ToneMaxRunes]))
	}
	if tone == "" {
		tone = s.DefaultTone
		if tone == "" {
			tone = llm.DefaultTone
		}
	}
	return tone
}

func (s *PostService) seed() int {
	if s.Seed != nil {
		return s.Seed()
	}
	return randomSeed()
}

func randomSeed() int { return seedMin + rand.IntN(seedMax-seedMin+1) }

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
