// Post HTTP handlers.
//
// This file exposes the public endpoints:
//   - GET  /              (liveness)
//   - GET  /posts         (list, user-scoped, ETag support)
//   - POST /posts         (generate from text)
//   - POST /upload-image  (generate from an uploaded image)
//
// Handlers are transport-thin: they bind input, call the post service, and
// translate results and service errors into HTTP responses.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-social-posts/internal/domain"
	"github.com/tbourn/go-social-posts/internal/http/middleware"
	"github.com/tbourn/go-social-posts/internal/services"
	"github.com/tbourn/go-social-posts/internal/utils"
)

// LiveStatus is the liveness message.
const LiveStatus = "AI Social Media API is Live"

// PostService defines the post operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type PostService interface {
	// Configured reports whether generation is available.
	Configured() bool
	// CreateFromText generates copy for content and stores the post.
	CreateFromText(ctx context.Context, userID *string, content, tone string) (*domain.Post, error)
	// CreateFromImage generates copy for an image and stores the post.
	CreateFromImage(ctx context.Context, userID *string, data []byte, tone string) (*domain.Post, error)
	// List returns posts visible for userID.
	List(ctx context.Context, userID string, limit int) ([]domain.Post, error)
	// Stats returns (count, max id) of the listing for userID.
	Stats(ctx context.Context, userID string) (int64, uint, error)
}

// Handlers groups the HTTP endpoints.
type Handlers struct {
	posts PostService
}

// New constructs and returns a Handlers instance bound to the post service.
func New(posts PostService) *Handlers {
	return &Handlers{posts: posts}
}

//
// DTOs
//

// CreatePostRequest is the JSON payload for POST /posts.
type CreatePostRequest struct {
	// UserID optionally owns the post; posts without it are only listed in open mode.
	UserID *string `json:"user_id" example:"user-42"`
	// Content describes what the posts should be about.
	Content string `json:"content" example:"Grand opening of our new coffee shop downtown"`
	// Tone steers the writing style; defaults to "Professional".
	Tone string `json:"tone" example:"Casual"`
}

//
// Helpers
//

// optionalUserID maps a blank id to nil.
func optionalUserID(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// listETag identifies a listing by owner, size, newest id, and limit. Posts
// are append-only so the tuple changes whenever the listing does.
func listETag(userID string, count int64, maxID uint, limit int) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return fmt.Sprintf(`W/"posts:%08x:%d:%d:%d"`, h.Sum32(), count, maxID, limit)
}

func isTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}

//
// Handlers
//

// Status godoc
// @ID          status
// @Summary     Liveness
// @Description Reports that the API is up.
// @Tags        Health
// @Produce     json
// @Success     200  {object}  handlers.StatusResponse
// @Router      / [get]
func (h *Handlers) Status(c *gin.Context) {
	ok(c, http.StatusOK, StatusResponse{Status: LiveStatus})
}

// ListPosts godoc
// @ID          listPosts
// @Summary     List posts
// @Description Returns the user's posts newest first. Without user_id the list is empty in user-scoped mode, otherwise every post in insertion order. Supports weak ETag via If-None-Match.
// @Tags        Posts
// @Produce     json
//
// @Param       user_id        query   string  false "Owner filter (exact match)"  example(user-42)
// @Param       limit          query   int     false "Maximum items (0 = all)"     minimum(0) default(0)
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"
//
// @Success     200  {array}   domain.Post
// @Header      200  {string}  ETag  "Weak ETag for current result"
// @Success     304  {string}  string "Not Modified"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /posts [get]
func (h *Handlers) ListPosts(c *gin.Context) {
	ctx := c.Request.Context()
	uid := c.Query("user_id")
	limit := utils.AtoiDefault(c.Query("limit"), 0)
	if limit < 0 {
		limit = 0
	}

	// ETag pre-check (best effort).
	if count, maxID, err := h.posts.Stats(ctx, uid); err == nil {
		etag := listETag(uid, count, maxID, limit)
		c.Header("ETag", etag)
		if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
			c.Status(http.StatusNotModified)
			return
		}
	}

	items, err := h.posts.List(ctx, uid, limit)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	if items == nil {
		items = []domain.Post{}
	}
	ok(c, http.StatusOK, items)
}

// CreatePost godoc
// @ID          createPost
// @Summary     Generate a post from text
// @Description Generates an Instagram caption and a Twitter post for the content in the given tone and stores them. Generation failures return HTTP 200 with a degraded payload and store nothing; without model credentials the body is {"error":"API Key missing"}.
// @Tags        Posts
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.CreatePostRequest  true  "Post input"
//
// @Success     200  {object}  domain.Post
// @Success     200  {object}  handlers.DegradedResponse
// @Success     200  {object}  handlers.ConfigErrorResponse
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /posts [post]
func (h *Handlers) CreatePost(c *gin.Context) {
	if !h.posts.Configured() {
		configError(c)
		return
	}

	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if isTooLarge(err) {
			fail(c, http.StatusRequestEntityTooLarge, ErrCodeTooLarge, "request body too large")
			return
		}
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	p, err := h.posts.CreateFromText(c.Request.Context(), optionalUserID(req.UserID), req.Content, req.Tone)
	var genErr *services.GenerationError
	switch {
	case err == nil:
		ok(c, http.StatusOK, p)
	case errors.Is(err, services.ErrNotConfigured):
		configError(c)
	case errors.Is(err, services.ErrEmptyContent):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "content is required")
	case errors.As(err, &genErr):
		middleware.LoggerFrom(c).Warn().Err(genErr.Err).Msg("generation failed; degraded response")
		degraded(c, genErr)
	default:
		fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
	}
}

// UploadImage godoc
// @ID          uploadImage
// @Summary     Generate a post from an image
// @Description Downscales the image to at most 800px, generates copy for it in the given tone, and stores the post with the JPEG as base64 image_data. Generation failures return HTTP 500.
// @Tags        Posts
// @Accept      multipart/form-data
// @Produce     json
//
// @Param       file     formData  file    true   "Image (PNG, JPEG, GIF, WebP, BMP, TIFF)"
// @Param       tone     formData  string  false  "Tone"  default(Professional)
// @Param       user_id  formData  string  false  "Owner"
//
// @Success     200  {object}  domain.Post
// @Success     200  {object}  handlers.ConfigErrorResponse
// @Failure     400  {object}  handlers.ErrorResponse "Missing or invalid image"
// @Failure     413  {object}  handlers.ErrorResponse "Upload too large"
// @Failure     500  {object}  handlers.ErrorResponse "Generation or storage failed"
// @Router      /upload-image [post]
func (h *Handlers) UploadImage(c *gin.Context) {
	if !h.posts.Configured() {
		configError(c)
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		if isTooLarge(err) {
			fail(c, http.StatusRequestEntityTooLarge, ErrCodeTooLarge, "upload too large")
			return
		}
		fail(c, http.StatusBadRequest, ErrCodeInvalidImage, "file is required")
		return
	}
	f, err := fh.Open()
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeInvalidImage, "cannot read file")
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeInvalidImage, "cannot read file")
		return
	}

	uid := c.PostForm("user_id")
	p, err := h.posts.CreateFromImage(c.Request.Context(), optionalUserID(&uid), data, c.PostForm("tone"))
	var genErr *services.GenerationError
	switch {
	case err == nil:
		ok(c, http.StatusOK, p)
	case errors.Is(err, services.ErrNotConfigured):
		configError(c)
	case errors.Is(err, services.ErrInvalidImage):
		fail(c, http.StatusBadRequest, ErrCodeInvalidImage, err.Error())
	case errors.As(err, &genErr):
		fail(c, http.StatusInternalServerError, ErrCodeGenerationFailed, genErr.Error())
	default:
		fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
	}
}
