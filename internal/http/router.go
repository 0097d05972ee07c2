// Package httpapi wires the HTTP transport (Gin) to the post service,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// compression, CORS, and security headers.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/tbourn/go-social-posts/docs"
	"github.com/tbourn/go-social-posts/internal/config"
	"github.com/tbourn/go-social-posts/internal/domain"
	"github.com/tbourn/go-social-posts/internal/http/handlers"
	"github.com/tbourn/go-social-posts/internal/http/middleware"
	"github.com/tbourn/go-social-posts/internal/imageproc"
	"github.com/tbourn/go-social-posts/internal/repo"
	"github.com/tbourn/go-social-posts/internal/services"
)

// multipartSlack covers form boundaries and text fields on top of the file.
const multipartSlack = 64 << 10

// postRepoShim adapts the repository free functions to the services.PostRepo
// interface expected by the PostService.
type postRepoShim struct{}

// CreatePost proxies repo.CreatePost.
func (postRepoShim) CreatePost(ctx context.Context, db *gorm.DB, in domain.NewPost) (*domain.Post, error) {
	return repo.CreatePost(ctx, db, in)
}

// ListPostsByUser proxies repo.ListPostsByUser.
func (postRepoShim) ListPostsByUser(ctx context.Context, db *gorm.DB, userID string, limit int) ([]domain.Post, error) {
	return repo.ListPostsByUser(ctx, db, userID, limit)
}

// ListPosts proxies repo.ListPosts.
func (postRepoShim) ListPosts(ctx context.Context, db *gorm.DB, limit int) ([]domain.Post, error) {
	return repo.ListPosts(ctx, db, limit)
}

// PostsStats proxies repo.PostsStats (list ETags).
func (postRepoShim) PostsStats(ctx context.Context, db *gorm.DB, userID string) (int64, uint, error) {
	return repo.PostsStats(ctx, db, userID)
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. gen may be nil, in which case generation endpoints answer with the
// configuration error.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter (upload cap)
//  6. Metrics
//  7. Gzip (list responses carry base64 images)
//  8. CORS and Security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, gen services.Generator, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{"X-API-Key"},
	}))
	r.Use(middleware.Recovery())

	maxUpload := cfg.Image.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = 10 << 20
	}
	r.Use(limitBody(maxUpload + multipartSlack))

	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	// CORS posture (allow all if none configured)
	allowHeaders := []string{"Origin", "Content-Type", "Accept", "If-None-Match"}
	exposeHeaders := []string{"X-Request-ID", "ETag", "Content-Length"}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even without an Origin header (simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     allowHeaders,
			ExposeHeaders:    exposeHeaders,
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     allowHeaders,
			ExposeHeaders:    exposeHeaders,
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	if cfg.SwaggerEnabled {
		docs.SwaggerInfo.BasePath = cfg.APIBasePath
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: handlers ← service ← repo/db/generator
	svc := services.NewPostService(db, postRepoShim{}, gen)
	svc.UserScoped = cfg.UserScoped
	if cfg.DefaultTone != "" {
		svc.DefaultTone = cfg.DefaultTone
	}
	svc.Image = imageproc.Options{
		MaxDimension: cfg.Image.MaxDimension,
		Quality:      cfg.Image.JPEGQuality,
	}
	h := handlers.New(svc)

	api := groupWithPrefix(r, cfg.APIBasePath)
	{
		api.GET("", h.Status)
		api.GET("/posts", h.ListPosts)
		api.POST("/posts", h.CreatePost)
		api.POST("/upload-image", h.UploadImage)
	}
}

// limitBody caps the request body at maxBytes using http.MaxBytesReader.
// Reads past the cap fail with *http.MaxBytesError.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
