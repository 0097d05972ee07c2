package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	sqlite "github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-social-posts/internal/domain"
	"github.com/tbourn/go-social-posts/internal/llm"
	"github.com/tbourn/go-social-posts/internal/repo"
)

// ----- Fakes -----

type stubGenerator struct {
	reply      string
	err        error
	prompts    []string
	images     [][]byte
	mimeTypes  []string
	visionCall int
}

func (g *stubGenerator) GenerateText(_ context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	return g.reply, g.err
}

func (g *stubGenerator) GenerateVision(_ context.Context, prompt string, img []byte, mime string) (string, error) {
	g.visionCall++
	g.prompts = append(g.prompts, prompt)
	g.images = append(g.images, img)
	g.mimeTypes = append(g.mimeTypes, mime)
	return g.reply, g.err
}

type fakePostRepo struct {
	created   []domain.NewPost
	createErr error

	byUserID    string
	byUserLimit int
	listAll     bool
	items       []domain.Post
	listErr     error

	statsUserID string
	statsCalls  int
}

func (r *fakePostRepo) CreatePost(_ context.Context, _ *gorm.DB, in domain.NewPost) (*domain.Post, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	r.created = append(r.created, in)
	return &domain.Post{
		ID: uint(len(r.created)), UserID: in.UserID, Content: in.Content, Tone: in.Tone,
		InstagramVersion: in.InstagramVersion, TwitterVersion: in.TwitterVersion,
		ImagePrompt: in.ImagePrompt, ImageSeed: in.ImageSeed, IsUpload: in.IsUpload, ImageData: in.ImageData,
	}, nil
}

func (r *fakePostRepo) ListPostsByUser(_ context.Context, _ *gorm.DB, userID string, limit int) ([]domain.Post, error) {
	r.byUserID, r.byUserLimit = userID, limit
	return r.items, r.listErr
}

func (r *fakePostRepo) ListPosts(_ context.Context, _ *gorm.DB, _ int) ([]domain.Post, error) {
	r.listAll = true
	return r.items, r.listErr
}

func (r *fakePostRepo) PostsStats(_ context.Context, _ *gorm.DB, userID string) (int64, uint, error) {
	r.statsCalls++
	r.statsUserID = userID
	return int64(len(r.items)), 9, nil
}

const okReply = "```json\n{\"instagram_version\":\"IG copy\",\"twitter_version\":\"X copy\"}\n```"

func strPtr(s string) *string { return &s }

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: 30, G: 120, B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// ----- CreateFromText -----

func TestCreateFromText_PersistsNormalizedCaptions(t *testing.T) {
	gen := &stubGenerator{reply: okReply}
	r := &fakePostRepo{}
	s := NewPostService(nil, r, gen)
	s.Seed = func() int { return 123456 }

	content := gofakeit.Sentence(6)
	p, err := s.CreateFromText(context.Background(), strPtr("u1"), content, " casual ")
	require.NoError(t, err)

	assert.Equal(t, "IG copy", p.InstagramVersion)
	assert.Equal(t, "X copy", p.TwitterVersion)
	assert.Equal(t, content, p.Content)
	assert.Equal(t, content, p.ImagePrompt)
	assert.Equal(t, "casual", p.Tone)
	assert.Equal(t, 123456, p.ImageSeed)
	assert.False(t, p.IsUpload)
	assert.Nil(t, p.ImageData)

	require.Len(t, gen.prompts, 1)
	assert.Equal(t, llm.TextPrompt(content, "casual"), gen.prompts[0])
}

func TestCreateFromText_DefaultToneAndSeedRange(t *testing.T) {
	gen := &stubGenerator{reply: okReply}
	s := NewPostService(nil, &fakePostRepo{}, gen)

	for i := 0; i < 50; i++ {
		p, err := s.CreateFromText(context.Background(), nil, "topic", "")
		require.NoError(t, err)
		assert.Equal(t, "Professional", p.Tone)
		assert.GreaterOrEqual(t, p.ImageSeed, seedMin)
		assert.LessOrEqual(t, p.ImageSeed, seedMax)
	}
}

func TestCreateFromText_NotConfigured(t *testing.T) {
	r := &fakePostRepo{}
	s := NewPostService(nil, r, nil)

	_, err := s.CreateFromText(context.Background(), nil, "x", "")
	assert.True(t, errors.Is(err, ErrNotConfigured))
	assert.Empty(t, r.created)
	assert.False(t, s.Configured())
}

func TestCreateFromText_EmptyContent(t *testing.T) {
	gen := &stubGenerator{reply: okReply}
	s := NewPostService(nil, &fakePostRepo{}, gen)

	_, err := s.CreateFromText(context.Background(), nil, "  \n ", "")
	assert.True(t, errors.Is(err, ErrEmptyContent))
	assert.Empty(t, gen.prompts)
}

func TestCreateFromText_GenerationFailuresWriteNothing(t *testing.T) {
	providerErr := errors.New("quota exceeded")
	cases := map[string]*stubGenerator{
		"provider error":   {err: providerErr},
		"malformed output": {reply: "sorry, I can't help with that"},
	}
	for name, gen := range cases {
		t.Run(name, func(t *testing.T) {
			r := &fakePostRepo{}
			s := NewPostService(nil, r, gen)

			_, err := s.CreateFromText(context.Background(), nil, "x", "Casual")
			var ge *GenerationError
			require.True(t, errors.As(err, &ge), "got %v", err)
			assert.NotEmpty(t, ge.Error())
			assert.Empty(t, r.created)
		})
	}

	_, err := NewPostService(nil, &fakePostRepo{}, &stubGenerator{reply: "nope"}).
		CreateFromText(context.Background(), nil, "x", "")
	assert.True(t, errors.Is(err, llm.ErrMalformedOutput))
}

func TestCreateFromText_StorageErrorPropagates(t *testing.T) {
	dbErr := errors.New("disk full")
	s := NewPostService(nil, &fakePostRepo{createErr: dbErr}, &stubGenerator{reply: okReply})

	_, err := s.CreateFromText(context.Background(), nil, "x", "")
	assert.ErrorIs(t, err, dbErr)
	var ge *GenerationError
	assert.False(t, errors.As(err, &ge))
}

// ----- CreateFromImage -----

func TestCreateFromImage_StoresSentinelsAndResizedJPEG(t *testing.T) {
	gen := &stubGenerator{reply: okReply}
	r := &fakePostRepo{}
	s := NewPostService(nil, r, gen)

	p, err := s.CreateFromImage(context.Background(), strPtr("u1"), pngBytes(t, 1600, 400), "funny")
	require.NoError(t, err)

	assert.True(t, p.IsUpload)
	assert.Equal(t, domain.ImageContentSentinel, p.Content)
	assert.Equal(t, domain.ImagePromptSentinel, p.ImagePrompt)
	assert.Equal(t, 0, p.ImageSeed)
	assert.Equal(t, "Funny", p.Tone)
	assert.Equal(t, "IG copy", p.InstagramVersion)
	require.NotNil(t, p.ImageData)

	raw, err := base64.StdEncoding.DecodeString(*p.ImageData)
	require.NoError(t, err)
	img, err := jpeg.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, 800, img.Bounds().Dx())
	assert.Equal(t, 200, img.Bounds().Dy())

	require.Equal(t, 1, gen.visionCall)
	assert.Equal(t, "image/jpeg", gen.mimeTypes[0])
	assert.Equal(t, raw, gen.images[0])
	assert.Equal(t, llm.ImagePrompt("Funny"), gen.prompts[0])
}

func TestCreateFromImage_InvalidImage(t *testing.T) {
	gen := &stubGenerator{reply: okReply}
	r := &fakePostRepo{}
	s := NewPostService(nil, r, gen)

	for _, data := range [][]byte{nil, []byte("GIF89a but not really")} {
		_, err := s.CreateFromImage(context.Background(), nil, data, "")
		assert.True(t, errors.Is(err, ErrInvalidImage), "got %v", err)
	}
	assert.Zero(t, gen.visionCall)
	assert.Empty(t, r.created)
}

func TestCreateFromImage_GenerationErrorSurfaces(t *testing.T) {
	r := &fakePostRepo{}
	s := NewPostService(nil, r, &stubGenerator{err: errors.New("model overloaded")})

	_, err := s.CreateFromImage(context.Background(), nil, pngBytes(t, 20, 20), "")
	var ge *GenerationError
	require.True(t, errors.As(err, &ge))
	assert.Equal(t, "model overloaded", ge.Error())
	assert.Empty(t, r.created)
}

func TestCreateFromImage_NotConfigured(t *testing.T) {
	_, err := NewPostService(nil, &fakePostRepo{}, nil).
		CreateFromImage(context.Background(), nil, pngBytes(t, 4, 4), "")
	assert.True(t, errors.Is(err, ErrNotConfigured))
}

// ----- List / Stats -----

func TestList_ScopingModes(t *testing.T) {
	ctx := context.Background()

	r := &fakePostRepo{items: []domain.Post{{ID: 1}}}
	s := NewPostService(nil, r, nil)

	got, err := s.List(ctx, "", 0)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.False(t, r.listAll)

	got, err = s.List(ctx, "u1", 5)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, "u1", r.byUserID)
	assert.Equal(t, 5, r.byUserLimit)

	s.UserScoped = false
	_, err = s.List(ctx, "", 0)
	require.NoError(t, err)
	assert.True(t, r.listAll)
}

func TestStats_FailClosedSkipsRepo(t *testing.T) {
	r := &fakePostRepo{items: []domain.Post{{ID: 1}}}
	s := NewPostService(nil, r, nil)

	n, maxID, err := s.Stats(context.Background(), "")
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, maxID)
	assert.Zero(t, r.statsCalls)

	n, _, err = s.Stats(context.Background(), "u1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	assert.Equal(t, "u1", r.statsUserID)
}

// ----- Tone -----

func TestNormalizeTone(t *testing.T) {
	s := NewPostService(nil, nil, nil)

	cases := map[string]string{
		"":                       "Professional",
		"   ":                    "Professional",
		"casual":                 "casual",
		"  very \n\t excited  ":  "very excited",
		"LinkedIn":               "LinkedIn",
		"iPhone-fan":             "iPhone-fan",
		"gen-z sarcastic":        "gen-z sarcastic",
		"Cafe\u0301 chic":        "Caf\u00e9 chic",
		strings.Repeat("a", 100): strings.Repeat("a", 40),
	}
	for in, want := range cases {
		assert.Equal(t, want, s.NormalizeTone(in), "NormalizeTone(%q)", in)
	}

	s.DefaultTone = "Witty"
	assert.Equal(t, "Witty", s.NormalizeTone(""))
}

func TestCreateFromText_KeepsToneCaseAndComposesPrompt(t *testing.T) {
	gen := &stubGenerator{reply: okReply}
	s := NewPostService(nil, &fakePostRepo{}, gen)

	content := "Cafe\u0301 opening"
	p, err := s.CreateFromText(context.Background(), nil, content, "iPhone-fan")
	require.NoError(t, err)
	assert.Equal(t, "iPhone-fan", p.Tone)
	assert.Equal(t, content, p.Content)

	require.Len(t, gen.prompts, 1)
	assert.Equal(t, llm.TextPrompt("Caf\u00e9 opening", "iPhone-fan"), gen.prompts[0])
}

func TestGenerationError_NilSafe(t *testing.T) {
	var ge *GenerationError
	assert.Equal(t, "generation failed", ge.Error())
	assert.Nil(t, (&GenerationError{}).Unwrap())
}

// ----- With the real repository -----

type repoAdapter struct{}

func (repoAdapter) CreatePost(ctx context.Context, db *gorm.DB, in domain.NewPost) (*domain.Post, error) {
	return repo.CreatePost(ctx, db, in)
}
func (repoAdapter) ListPostsByUser(ctx context.Context, db *gorm.DB, userID string, limit int) ([]domain.Post, error) {
	return repo.ListPostsByUser(ctx, db, userID, limit)
}
func (repoAdapter) ListPosts(ctx context.Context, db *gorm.DB, limit int) ([]domain.Post, error) {
	return repo.ListPosts(ctx, db, limit)
}
func (repoAdapter) PostsStats(ctx context.Context, db *gorm.DB, userID string) (int64, uint, error) {
	return repo.PostsStats(ctx, db, userID)
}

func TestCreateThenList_RoundTripSQLite(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, repo.AutoMigrate(db))

	s := NewPostService(db, repoAdapter{}, &stubGenerator{reply: okReply})
	ctx := context.Background()

	a, err := s.CreateFromText(ctx, strPtr("u1"), "same", "Casual")
	require.NoError(t, err)
	b, err := s.CreateFromText(ctx, strPtr("u1"), "same", "Casual")
	require.NoError(t, err)
	img, err := s.CreateFromImage(ctx, strPtr("u1"), pngBytes(t, 10, 10), "Casual")
	require.NoError(t, err)
	_, err = s.CreateFromText(ctx, strPtr("u2"), "other", "Casual")
	require.NoError(t, err)

	got, err := s.List(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []uint{img.ID, b.ID, a.ID}, []uint{got[0].ID, got[1].ID, got[2].ID})
	assert.NotEqual(t, a.ID, b.ID)
	for _, p := range got {
		assert.Equal(t, "IG copy", p.InstagramVersion)
		assert.Equal(t, "X copy", p.TwitterVersion)
	}

	n, maxID, err := s.Stats(ctx, "u1")
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
	assert.Equal(t, img.ID, maxID)
}
