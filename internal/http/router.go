// Package httpapi wires the HTTP transport (Gin) to the application
// services, middleware and route handlers. It owns the cross-cutting
// concerns: tracing, correlation ids, logging with redaction, panic
// recovery, metrics, idempotency, rate limiting, CORS, security headers,
// compression, API docs and the uploaded media files.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/tbourn/go-call-analysis/internal/config"
	"github.com/tbourn/go-call-analysis/internal/http/handlers"
	"github.com/tbourn/go-call-analysis/internal/http/middleware"
	"github.com/tbourn/go-call-analysis/internal/media"
	"github.com/tbourn/go-call-analysis/internal/repo"
)

// multipartSlack is added to MaxUploadBytes for the body cap so the multipart
// framing around a maximum-size file still fits.
const multipartSlack = 1 << 20

// mediaPrefix is where uploaded audio is served; media.Store URLs use it.
const mediaPrefix = "/media"

// mediaCSP keeps a served upload from running anything if a browser opens it
// directly.
const mediaCSP = "default-src 'none'; media-src 'self'; sandbox"

// Deps are the services behind the API. Stats and Media are optional; a nil
// Media disables the /media route.
type Deps struct {
	Pipeline handlers.PipelineService
	Demo     handlers.DemoService
	Results  handlers.ResultService
	Stats    handlers.RecordingStats
	Media    *media.Store
}

// RegisterRoutes attaches all middleware and endpoints to r. db hosts the
// idempotency records and may be nil, which disables Idempotency-Key replay.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter (upload-sized)
//  6. Metrics
//  7. Idempotency validator (before rate limiter to allow bypass on replay)
//  8. Rate limiter (per client IP, pipeline polling exempt)
//  9. CORS, security headers and gzip
func RegisterRoutes(r *gin.Engine, db *gorm.DB, deps Deps, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{"Proxy-Authorization"},
	}))
	r.Use(middleware.Recovery())
	r.Use(limitBody(cfg.MaxUploadBytes + multipartSlack))

	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{MaxLen: 200},
		idempotencyLookup(db),
	))

	apiBase := cfg.APIBasePath
	statusPath := joinPath(apiBase, "/pipeline")
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByClient())
	rl.Skip = func(c *gin.Context) bool {
		p := c.FullPath()
		return c.Request.Method == http.MethodGet && (p == statusPath || p == "/health")
	}
	r.Use(rl.Handler())

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "If-None-Match", middleware.HeaderIdempotencyKey},
		ExposeHeaders:    []string{"X-Request-ID", "Content-Length", "ETag", "Location", "Idempotency-Replayed"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header.
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		corsCfg.AllowAllOrigins = true
	} else {
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		corsCfg.AllowOrigins = cfg.CORS.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Audio is already compressed and /metrics negotiates its own encoding.
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{mediaPrefix, "/metrics"})))

	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
	if deps.Media != nil {
		r.GET(mediaPrefix+"/:name", serveMedia(deps.Media))
		r.HEAD(mediaPrefix+"/:name", serveMedia(deps.Media))
	}

	h := handlers.New(deps.Pipeline, deps.Demo, deps.Results)
	h.Stats = deps.Stats
	h.MaxUploadBytes = cfg.MaxUploadBytes
	h.Remember = idempotencyRecorder(db, cfg.IdempotencyTTL)

	// Result view links returned in Location resolve to the JSON view.
	r.GET("/analysis/:id", func(c *gin.Context) {
		c.Redirect(http.StatusSeeOther, joinPath(apiBase, "/recordings/"+url.PathEscape(c.Param("id"))))
	})

	api := groupWithPrefix(r, apiBase)
	{
		api.POST("/recordings", h.UploadRecording)
		api.GET("/recordings", h.ListRecordings)
		api.DELETE("/recordings", h.ClearRecordings)
		api.GET("/recordings/:id", h.GetRecording)

		api.POST("/demo", h.CreateDemo)

		api.GET("/pipeline", h.GetPipelineStatus)
	}
}

// idempotencyLookup reads replay records from db. A nil db never replays.
func idempotencyLookup(db *gorm.DB) middleware.IdempotencyLookup {
	if db == nil {
		return nil
	}
	return func(ctx context.Context, clientID, scope, key string, now time.Time) (string, bool, error) {
		rec, err := repo.GetIdempotency(ctx, db, clientID, scope, key, now)
		if err != nil || rec == nil {
			return "", false, nil
		}
		return rec.RecordingID, true, nil
	}
}

// idempotencyRecorder stores replay records in db. A duplicate means a
// concurrent request with the same key already stored one.
func idempotencyRecorder(db *gorm.DB, ttl time.Duration) handlers.IdempotencyRecorder {
	if db == nil {
		return nil
	}
	return func(ctx context.Context, clientID, scope, key, recordingID string) error {
		_, err := repo.CreateIdempotency(ctx, db, clientID, scope, key, recordingID, http.StatusCreated, ttl)
		if errors.Is(err, repo.ErrDuplicate) {
			return nil
		}
		return err
	}
}

// serveMedia serves one stored upload with a fixed audio Content-Type, so the
// body is never sniffed, and a CSP that forbids scripts.
func serveMedia(files *media.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("name")
		p, ok := files.Path(name)
		if !ok {
			handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "media not found")
			return
		}
		h := c.Writer.Header()
		h.Set("Content-Type", media.ContentType(name))
		h.Set("Content-Security-Policy", mediaCSP)
		h.Set("X-Content-Type-Options", "nosniff")
		c.File(p)
	}
}

// limitBody caps the request body at maxBytes using http.MaxBytesReader.
// Downstream reads past the cap fail.
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

func joinPath(prefix, p string) string {
	if prefix == "" || prefix == "/" {
		return p
	}
	return prefix + p
}
