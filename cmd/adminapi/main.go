package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/tendant/chi-demo/app"
	dbutils "github.com/tendant/db-utils/db"

	"github.com/fluxpbx/adminapi/pkg/auth"
	"github.com/fluxpbx/adminapi/pkg/config"
	"github.com/fluxpbx/adminapi/pkg/group"
	"github.com/fluxpbx/adminapi/pkg/notice"
	"github.com/fluxpbx/adminapi/pkg/permission"
	"github.com/fluxpbx/adminapi/pkg/settings"
	"github.com/fluxpbx/adminapi/pkg/user"
)

type Config struct {
	Database config.DatabaseConfig
	Jwt      config.JwtConfig
	Redis    config.RedisConfig
	Email    config.EmailConfig
}

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, using environment")
	}

	cfg := Config{}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		slog.Error("Failed to load config", "err", err)
		os.Exit(1)
	}

	dbConfig := cfg.Database.ToDbConfig()
	pool, err := dbutils.NewDbPool(context.Background(), dbConfig)
	if err != nil {
		slog.Error("Failed creating dbpool", "db", dbConfig.Database, "host", dbConfig.Host, "port", dbConfig.Port, "user", dbConfig.User)
		os.Exit(1)
	}
	defer pool.Close()

	var cache settings.Cache = settings.NewMemoryCache()
	if cfg.Redis.Enabled() {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		cache = settings.NewRedisCache(client, "pbx:settings", 5*time.Minute)
		slog.Info("Using Redis settings cache", "addr", cfg.Redis.Addr)
	}

	settingsService := settings.NewService(settings.NewPostgresRepository(pool), cache)

	permStore := permission.NewInMemoryStore()
	checker := permission.NewChecker(permStore)

	groupService := group.NewService(group.NewPostgresRepository(pool))

	userRepo := user.NewPostgresRepository(pool, checker)

	var opts []user.Option
	if cfg.Email.Enabled {
		notifier, err := notice.NewEmailNotifier(cfg.Email.ToSMTPConfig())
		if err != nil {
			slog.Error("Failed to create email notifier", "err", err)
			os.Exit(1)
		}
		opts = append(opts, user.WithNotifier(notifier))
	}

	userService := user.NewService(userRepo, groupService, settingsService, checker, opts...)
	userHandle := user.NewHandle(userService, checker)

	ja := auth.NewJWTAuth(cfg.Jwt.Secret)

	myApp := app.Default()
	myApp.R.Route("/api", func(r chi.Router) {
		r.Get("/", user.Index)
		r.NotFound(user.NotFoundHandler)
		r.Group(func(r chi.Router) {
			r.Use(auth.Verifier(ja))
			r.Use(auth.Authenticator)
			userHandle.RegisterRoutes(r)
		})
	})

	myApp.Run()
}
