package http

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	appsvc "devconnector/internal/app"
	"devconnector/internal/bootstrap"
	"devconnector/internal/config"
	"devconnector/internal/guard"
	"devconnector/internal/repository"
	"devconnector/internal/transport/http/handler"
	"devconnector/internal/transport/http/middleware"
)

// Services are the use cases the router exposes.
type Services struct {
	Auth     *appsvc.AuthService
	Profiles *appsvc.ProfileService
	Posts    *appsvc.PostService
}

type EngineOptions struct {
	GinMode   string
	Log       logrus.FieldLogger
	RateLimit config.RateLimitConfig
	Services  Services
	Health    *handler.HealthHandler
	Metrics   *middleware.Metrics
}

func NewRouter(app *bootstrap.App) *gin.Engine {
	cfg := app.Config

	userRepo := repository.NewUserRepository(app.MySQL)
	profileRepo := repository.NewProfileRepository(app.MySQL)
	postRepo := repository.NewPostRepository(app.MySQL)

	var mutationGuard appsvc.MutationGuard
	if app.Redis != nil {
		mutationGuard = guard.NewRedisGuard(app.Redis, time.Duration(cfg.Redis.GuardTTLSeconds)*time.Second)
	}

	services := Services{
		Auth: appsvc.NewAuthService(
			userRepo,
			cfg.Auth.JWTSecret,
			time.Duration(cfg.Auth.JWTExpireMinute)*time.Minute,
		),
		Profiles: appsvc.NewProfileService(profileRepo),
		Posts:    appsvc.NewPostService(postRepo, userRepo, mutationGuard, app.Log),
	}

	deps := map[string]handler.Dependency{
		"mysql": {Check: func(ctx context.Context) error {
			sqlDB, err := app.MySQL.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}},
		"redis": {Optional: true, Check: func(ctx context.Context) error {
			if app.Redis == nil {
				return errors.New("not connected")
			}
			return app.Redis.Ping(ctx).Err()
		}},
	}

	return NewEngine(EngineOptions{
		GinMode:   cfg.App.GinMode,
		Log:       app.Log,
		RateLimit: cfg.RateLimit,
		Services:  services,
		Health:    handler.NewHealthHandler(cfg.App.Name, cfg.App.Env, app.StartedAt, deps),
		Metrics:   middleware.NewMetrics("devconnector"),
	})
}

// NewEngine wires routes and middleware around already built services.
func NewEngine(opts EngineOptions) *gin.Engine {
	if opts.GinMode != "" {
		gin.SetMode(opts.GinMode)
	}
	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(log))
	if opts.Metrics != nil {
		router.Use(opts.Metrics.Handler())
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Metrics.Registry, promhttp.HandlerOpts{})))
	}
	if opts.Health != nil {
		router.GET("/healthz", opts.Health.Check)
	}

	authHandler := handler.NewAuthHandler(opts.Services.Auth, log)
	profileHandler := handler.NewProfileHandler(opts.Services.Profiles, log)
	postHandler := handler.NewPostHandler(opts.Services.Posts, log)

	gate := middleware.AuthJWT(opts.Services.Auth)
	limited := middleware.RateLimit(opts.RateLimit.RPS, opts.RateLimit.Burst)

	api := router.Group("/api")
	api.POST("/users", limited, authHandler.Register)
	api.POST("/auth", limited, authHandler.Login)
	api.GET("/auth", gate, authHandler.Me)

	profiles := api.Group("/profile")
	profiles.GET("", profileHandler.List)
	profiles.GET("/user/:user_id", profileHandler.ByUser)
	profiles.GET("/me", gate, profileHandler.Me)
	profiles.PUT("", gate, profileHandler.Upsert)
	profiles.DELETE("", gate, profileHandler.Delete)
	profiles.PUT("/experience", gate, profileHandler.AddExperience)
	profiles.DELETE("/experience/:exp_id", gate, profileHandler.RemoveExperience)
	profiles.PUT("/education", gate, profileHandler.AddEducation)
	profiles.DELETE("/education/:edu_id", gate, profileHandler.RemoveEducation)

	posts := api.Group("/posts")
	posts.Use(gate)
	posts.POST("", postHandler.Create)
	posts.GET("", postHandler.List)
	posts.GET("/:id", postHandler.Get)
	posts.DELETE("/:id", postHandler.Delete)
	posts.PUT("/like/:id", postHandler.Like)
	posts.PUT("/unlike/:id", postHandler.Unlike)
	posts.POST("/comment/:id", postHandler.AddComment)
	posts.DELETE("/comment/:id/:comment_id", postHandler.RemoveComment)

	return router
}
