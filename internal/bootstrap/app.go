package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"devconnector/internal/config"
	"devconnector/internal/logging"
	"devconnector/internal/model"
	mysqlClient "devconnector/internal/platform/mysql"
	redisClient "devconnector/internal/platform/redis"
)

type App struct {
	Config *config.Config
	Log    *logrus.Logger
	MySQL  *gorm.DB
	// Redis is nil when the guard store was unreachable at startup.
	Redis *redis.Client

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}
	log := logging.New(cfg.Log)

	mysqlDB, err := mysqlClient.New(ctx, cfg.MySQLDSN(), log)
	if err != nil {
		return nil, err
	}
	if err := Migrate(mysqlDB); err != nil {
		return nil, err
	}

	// Likes still hold without Redis through the unique index.
	redisCli, err := redisClient.New(ctx, cfg.Redis)
	if err != nil {
		log.WithError(err).Warn("redis unavailable, mutation guard disabled")
	}

	return &App{
		Config:    cfg,
		Log:       log,
		MySQL:     mysqlDB,
		Redis:     redisCli,
		StartedAt: time.Now(),
	}, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.Profile{},
		&model.Experience{},
		&model.Education{},
		&model.Post{},
		&model.Like{},
		&model.Comment{},
	); err != nil {
		return fmt.Errorf("auto migrate tables failed: %w", err)
	}
	return nil
}

func (a *App) Close() error {
	var closeErr error
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = errors.Join(closeErr, err)
		}
	}
	if a.MySQL != nil {
		sqlDB, err := a.MySQL.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = errors.Join(closeErr, err)
			}
		}
	}
	return closeErr
}
