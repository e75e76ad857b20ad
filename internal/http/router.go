// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging, panic recovery, metrics, CORS,
// security headers, idempotency, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Production-ready CORS and security header posture
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/skillup-app/go-skillup-backend/internal/config"
	"github.com/skillup-app/go-skillup-backend/internal/domain"
	"github.com/skillup-app/go-skillup-backend/internal/genai"
	"github.com/skillup-app/go-skillup-backend/internal/http/handlers"
	"github.com/skillup-app/go-skillup-backend/internal/http/middleware"
	"github.com/skillup-app/go-skillup-backend/internal/repo"
	"github.com/skillup-app/go-skillup-backend/internal/services"
)

// skillRepoShim adapts the repository free functions to the services.SkillRepo
// interface. This keeps services decoupled from the concrete repo package
// while reusing existing functions.
type skillRepoShim struct{}

func (skillRepoShim) CreateSkill(ctx context.Context, db *gorm.DB, userID, title, description string, stars float64) (*domain.Skill, error) {
	return repo.CreateSkill(ctx, db, userID, title, description, stars)
}

func (skillRepoShim) ListSkills(ctx context.Context, db *gorm.DB, userID string) ([]domain.Skill, error) {
	return repo.ListSkills(ctx, db, userID)
}

func (skillRepoShim) IncrementProgress(ctx context.Context, db *gorm.DB, id, userID string) (int64, error) {
	return repo.IncrementProgress(ctx, db, id, userID)
}

func (skillRepoShim) DeleteSkill(ctx context.Context, db *gorm.DB, id, userID string) (int64, error) {
	return repo.DeleteSkill(ctx, db, id, userID)
}

// personRepoShim adapts the repository free functions to services.PersonRepo.
type personRepoShim struct{}

func (personRepoShim) CreatePerson(ctx context.Context, db *gorm.DB, id, userID, title, subtitle string) (*domain.Person, error) {
	return repo.CreatePerson(ctx, db, id, userID, title, subtitle)
}

func (personRepoShim) ListPeople(ctx context.Context, db *gorm.DB, userID string) ([]domain.Person, error) {
	return repo.ListPeople(ctx, db, userID)
}

func (personRepoShim) PersonNameExists(ctx context.Context, db *gorm.DB, userID, title string) (bool, error) {
	return repo.PersonNameExists(ctx, db, userID, title)
}

// groupRepoShim adapts the repository free functions to services.GroupRepo.
type groupRepoShim struct{}

func (groupRepoShim) CreateGroup(ctx context.Context, db *gorm.DB, userID, name string, memberUIDs, memberNames []string) (*domain.Group, error) {
	return repo.CreateGroup(ctx, db, userID, name, memberUIDs, memberNames)
}

func (groupRepoShim) ListGroups(ctx context.Context, db *gorm.DB, userID string) ([]domain.Group, error) {
	return repo.ListGroups(ctx, db, userID)
}

func (groupRepoShim) GetGroup(ctx context.Context, db *gorm.DB, id, userID string) (*domain.Group, error) {
	return repo.GetGroup(ctx, db, id, userID)
}

// messageRepoShim adapts the repository free functions to services.MessageRepo.
type messageRepoShim struct{}

func (messageRepoShim) CreateMessage(ctx context.Context, db *gorm.DB, threadID, senderID, senderShortID, body, status string) (*domain.ChatMessage, error) {
	return repo.CreateMessage(ctx, db, threadID, senderID, senderShortID, body, status)
}

func (messageRepoShim) ListThreadMessages(ctx context.Context, db *gorm.DB, threadID string) ([]domain.ChatMessage, error) {
	return repo.ListThreadMessages(ctx, db, threadID)
}

func (messageRepoShim) GetMessage(ctx context.Context, db *gorm.DB, id string) (*domain.ChatMessage, error) {
	return repo.GetMessage(ctx, db, id)
}

// scoreRepoShim adapts the repository free functions to services.ScoreRepo.
type scoreRepoShim struct{}

func (scoreRepoShim) ScoresByUserIDs(ctx context.Context, db *gorm.DB, userIDs []string) ([]domain.ScoreRecord, error) {
	return repo.ScoresByUserIDs(ctx, db, userIDs)
}

func (scoreRepoShim) TopScores(ctx context.Context, db *gorm.DB, limit int) ([]domain.ScoreRecord, error) {
	return repo.TopScores(ctx, db, limit)
}

func (scoreRepoShim) GetScore(ctx context.Context, db *gorm.DB, userID string) (*domain.ScoreRecord, error) {
	return repo.GetScore(ctx, db, userID)
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), idempotency and rate
// limiting, CORS and security headers, health and metrics endpoints, and then
// mounts the versioned public API under /api/v*.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Logger: structured request logs
//  4. Recovery: capture panics after logger
//  5. Body size limiter and response compression
//  6. Metrics
//  7. Idempotency validator (before rate limiter to allow bypass on replay)
//  8. Rate limiter (per user/IP, bypass on replay)
//  9. CORS and Security headers, then request identity
//
// The returned function tears down live sessions; call it during server
// shutdown.
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config) func(context.Context) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging
	r.Use(middleware.Logger())

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB) and gzip responses
	r.Use(limitBody(1 << 20))
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Idempotency validation (before rate limiting). The replay lookup
	// resolves the thread scope the same way the send handler does.
	r.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{
			MaxLen:     200,
			ThreadFrom: idempotencyThreadFrom,
		},
		func(ctx context.Context, userID, threadID, key string, now time.Time) (bool, error) {
			rec, err := repo.GetIdempotency(ctx, db, userID, threadID, key, now)
			if err != nil || rec == nil {
				return false, nil
			}
			return true, nil
		},
	))

	// 8) Token-bucket rate limiter per user/IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	r.Use(rl.Handler())

	// 9) CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-User-ID", middleware.HeaderIdempotencyKey},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist (in addition to gin-contrib/cors).
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
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-User-ID", middleware.HeaderIdempotencyKey},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Resolve the acting user for every request
	r.Use(middleware.Identity())

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health; reports the application namespace so probes can tell
	// deployments apart.
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "app_id": cfg.AppID})
	})

	// Dependency injection: services ← repo/db/collaborators
	hub := services.NewThreadHub(db)
	sessions := services.NewSessionManager(db, hub)

	skillSvc := services.NewSkillService(db, skillRepoShim{})
	skillSvc.Changes = sessions

	friendSvc := services.NewFriendService(db, personRepoShim{})
	groupSvc := services.NewGroupService(db, groupRepoShim{}, personRepoShim{})
	boardSvc := services.NewLeaderboardService(db, scoreRepoShim{})

	gen := genai.NewClient(cfg.Assistant.Endpoint, cfg.Assistant.Model, cfg.Assistant.APIKey,
		genai.WithSystemPrompt(services.SystemPrompt))
	assistant := services.NewAssistantResponder(gen)
	assistant.Retry.MaxAttempts = cfg.Assistant.MaxAttempts
	assistant.Retry.BaseDelay = cfg.Assistant.BaseDelay
	assistant.Delay = cfg.Assistant.ReplyDelay
	assistant.Jitter = cfg.Assistant.ReplyJitter

	msgSvc := services.NewMessageService(db, messageRepoShim{}, hub, groupSvc, assistant)

	h := handlers.New(skillSvc, friendSvc, groupSvc, msgSvc, boardSvc, sessions, db, cfg.IdempotencyTTL)

	// Public API
	apiBase := cfg.APIBasePath // e.g. "/api/v1"
	api := groupWithPrefix(r, apiBase)
	{
		// Skills
		api.POST("/skills", h.CreateSkill)
		api.GET("/skills", h.ListSkills)
		api.GET("/skills/suggest", h.SuggestSkills)
		api.POST("/skills/:id/log", h.LogSkillProgress)
		api.DELETE("/skills/:id", h.DeleteSkill)

		// Friends
		api.POST("/friends", h.AddFriend)
		api.GET("/friends", h.ListFriends)

		// Groups
		api.POST("/groups", h.CreateGroup)
		api.GET("/groups", h.ListGroups)

		// Chat
		api.POST("/chat/messages", h.SendMessage)
		api.GET("/chat/messages", h.ListMessages)
		api.POST("/chat/select", h.SelectThread)
		api.POST("/chat/read", h.MarkRead)
		api.GET("/chat/unread", h.UnreadBadge)

		// Leaderboards
		api.GET("/leaderboard/friends", h.FriendsLeaderboard)
		api.GET("/leaderboard/global", h.GlobalLeaderboard)

		// Notifications and stats
		api.GET("/notifications", h.ListNotifications)
		api.DELETE("/notifications", h.ClearNotifications)
		api.GET("/stats", h.GetStats)
	}

	return sessions.Close
}

// idempotencyThreadFrom resolves the thread a replay lookup scopes to. The
// chat send endpoint carries mode and group_id in its JSON body, so the
// middleware peeks the body the same way the handler maps (mode, groupID) to
// a thread, then restores it for downstream binding. Absent a body hint it
// falls back to the thread_id query parameter and finally to the community
// thread. Only called for requests bearing an Idempotency-Key.
func idempotencyThreadFrom(c *gin.Context) string {
	if c.Request.Body != nil && c.Request.Body != http.NoBody {
		raw, err := io.ReadAll(c.Request.Body)
		if err == nil {
			c.Request.Body = io.NopCloser(bytes.NewReader(raw))
			var req struct {
				Mode    string `json:"mode"`
				GroupID string `json:"group_id"`
			}
			if json.Unmarshal(raw, &req) == nil && req.Mode == string(services.ModeGroup) && req.GroupID != "" {
				return req.GroupID
			}
		}
	}
	if tid := c.Query("thread_id"); tid != "" {
		return tid
	}
	return domain.CommunityThreadID
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
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
