package app

import (
	"context"
	"log"
	"os"
	"time"

	"equiplend/db"
	"equiplend/lending"
	"equiplend/notify"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type Ctx = gin.Context
type H = gin.H

// App aggregates the service dependencies.
type App struct {
	Router  *gin.Engine
	DB      *gorm.DB
	RDB     *redis.Client
	Repo    *db.Repo
	Lending *lending.Service
	Log     zerolog.Logger
	Config  Config
}

type Config struct {
	RedisAddr    string
	RedisPwd     string
	EventChannel string
	WebOrigin    string
}

func MustNew() *App {
	cfg := loadConfig()
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	dbConn := db.ConnectDB()

	// Redis carries the standing-change events. Optional: without it the
	// service runs with events dropped.
	var (
		rdb  *redis.Client
		sink lending.EventSink
	)
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPwd, DB: 0})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatalf("redis: %v", err)
		}
		sink = notify.NewPublisher(rdb, cfg.EventChannel)
	} else {
		sink = lending.NopSink{}
		logger.Warn().Msg("REDIS_ADDR not set, events disabled")
	}

	repo := db.NewRepo(dbConn)
	svc := lending.NewService(repo, sink, logger)

	r := gin.Default()
	useCORS(r, cfg.WebOrigin)

	return &App{
		Router:  r,
		DB:      dbConn,
		RDB:     rdb,
		Repo:    repo,
		Lending: svc,
		Log:     logger,
		Config:  cfg,
	}
}

func (a *App) Close() {
	if a.RDB != nil {
		_ = a.RDB.Close()
	}
}

func loadConfig() Config {
	get := func(k, def string) string {
		v := os.Getenv(k)
		if v == "" {
			return def
		}
		return v
	}
	return Config{
		RedisAddr:    os.Getenv("REDIS_ADDR"),
		RedisPwd:     os.Getenv("REDIS_PASSWORD"),
		EventChannel: get("EVENT_CHANNEL", notify.DefaultChannel),
		WebOrigin:    get("WEB_ORIGIN", "http://localhost:5173"),
	}
}
