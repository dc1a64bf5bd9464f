package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/inkpad/inkpad/internal/auth"
	"github.com/inkpad/inkpad/internal/cache"
	"github.com/inkpad/inkpad/internal/config"
	"github.com/inkpad/inkpad/internal/http/handlers"
	"github.com/inkpad/inkpad/internal/http/middlewares"
	"github.com/inkpad/inkpad/internal/observability"
	"github.com/inkpad/inkpad/internal/redisclient"
	"github.com/inkpad/inkpad/internal/repo/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const serviceName = "inkpad"

func NewRouter(log *slog.Logger, pool *pgxpool.Pool, rdb *redisclient.Client, cfg config.Config, reg *prometheus.Registry) *gin.Engine {
	if cfg.Env != "dev" && cfg.Env != "test" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	var prom *observability.Prom

	if reg != nil {
		prom = observability.NewProm(reg)
	}

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(1 << 20))
	r.Use(middlewares.RequireJSON())
	r.Use(otelgin.Middleware(serviceName))

	if prom != nil {
		r.Use(prom.GinHandleMiddleware())
	}

	// health + metrics

	pings := map[string]func(context.Context) error{}

	if pool != nil {
		pings["db"] = func(ctx context.Context) error {
			pctx, cancel := context.WithTimeout(ctx, 1*time.Second)
			defer cancel()

			return pool.Ping(pctx)
		}
	}

	if rdb != nil {
		pings["redis"] = rdb.Ping
	}

	h := handlers.NewHealthHandler(pings)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if reg != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	}

	// wire up repositories and auth

	usersRepo := postgres.NewUsersRepo(pool, prom)
	notesRepo := postgres.NewNotesRepo(pool, prom)

	jwtManager := auth.NewManager(cfg.JWTSecret, cfg.JWTTTL())
	authMW := middlewares.NewAuthMiddleware(jwtManager)

	// login/register brute-force limiter: shared via redis when configured,
	// per-process otherwise

	var limiter middlewares.Limiter

	if rdb != nil {
		limiter = middlewares.NewRedisLimiter(rdb, cfg.AuthRateLimit, cfg.AuthRateLimitWindow)
	} else {
		limiter = middlewares.NewMemoryLimiter(cfg.AuthRateLimit, cfg.AuthRateLimitWindow)
	}

	authLimit := middlewares.RateLimit(limiter, middlewares.KeyByIP)

	authHandler := handlers.NewAuthHandler(usersRepo, jwtManager, cache.New(30*time.Second))
	notesHandler := handlers.NewNotesHandler(notesRepo)

	r.POST("/create-account", authLimit, authHandler.SignUp)
	r.POST("/login", authLimit, authHandler.Login)

	protected := r.Group("/", authMW.RequireAuth())

	protected.GET("/get-user", authHandler.GetUser)
	protected.POST("/add-note", notesHandler.AddNote)
	protected.PUT("/edit-note/:id", notesHandler.EditNote)
	protected.PUT("/update-note-pinned/:id", notesHandler.UpdateNotePinned)
	protected.DELETE("/delete-note/:id", notesHandler.DeleteNote)
	protected.GET("/get-all-notes", notesHandler.GetAllNotes)
	protected.GET("/search-notes", notesHandler.SearchNotes)

	return r
}
