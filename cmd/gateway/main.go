package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	api "github.com/mind-engage/mindengage-trainer/internal/api/http"
	auth "github.com/mind-engage/mindengage-trainer/internal/auth/middleware"
	"github.com/mind-engage/mindengage-trainer/internal/cache"
	"github.com/mind-engage/mindengage-trainer/internal/config"
	"github.com/mind-engage/mindengage-trainer/internal/db"
	"github.com/mind-engage/mindengage-trainer/internal/grading"
	"github.com/mind-engage/mindengage-trainer/internal/logging"
	"github.com/mind-engage/mindengage-trainer/internal/metrics"
	"github.com/mind-engage/mindengage-trainer/internal/quiz"
	"github.com/mind-engage/mindengage-trainer/internal/quizgen"
	"github.com/mind-engage/mindengage-trainer/internal/storage"
	syncx "github.com/mind-engage/mindengage-trainer/internal/sync"
	"github.com/mind-engage/mindengage-trainer/internal/trainer"
)

func main() {
	cfg := config.FromEnv()
	logger := logging.New(cfg)

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		logger.WithError(err).Fatal("db open failed")
	}
	store := quiz.NewSQLStore(dbh, cfg.DBDriver)
	if err := auth.EnsureAdmin(ctx, store, cfg.AdminUser, cfg.AdminPassHash); err != nil {
		logger.WithError(err).Fatal("seed admin")
	}

	// --- Blobs (rendered reports) ---
	var blobs storage.BlobStore
	switch cfg.BlobDriver {
	case "minio":
		blobs, err = storage.NewMinioStore(ctx, storage.MinioOptions{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		})
	default:
		blobs, err = storage.NewFSStore(cfg.BlobBasePath)
	}
	if err != nil {
		logger.WithError(err).Fatal("blob store")
	}

	// --- Preview cache ---
	var previews cache.PreviewCache
	if cfg.CacheDriver == "redis" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.WithError(err).Fatal("redis")
		}
		previews = cache.NewPreviewCache(rdb, cfg.PreviewTTL)
	} else {
		previews = cache.NewMemoryPreviewCache(cfg.PreviewTTL)
	}

	svc := trainer.New(trainer.Deps{
		Store: store,
		Generator: quizgen.New(
			quizgen.WithLimits(quizgen.Limits{Choice: cfg.ChoiceTruncateLimit, Distractor: cfg.DistractorTruncateLimit}),
			quizgen.WithLogger(logger.WithField("component", "quizgen")),
		),
		Batch: grading.NewBatch(
			grading.WithAbortOnError(cfg.AbortOnFirstError),
			grading.WithLogger(logger.WithField("component", "grading")),
		),
		Previews: previews,
		Blobs:    blobs,
		Events:   syncx.NewEventRepo(dbh),
		Logger:   logger.WithField("component", "trainer"),
	})

	authSvc := auth.NewAuthService(cfg.AuthSecret, cfg.SessionTTL)
	sess := auth.Session{Cookie: cfg.SessionCookie, Secure: cfg.CookieSecure, TTL: cfg.SessionTTL}

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	if cfg.MetricsEnabled {
		r.Use(metrics.Middleware)
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins(),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", auth.LoginHandler(authSvc, store, sess))
	r.Post("/auth/logout", auth.LogoutHandler(sess))
	r.Get("/auth/me", auth.MeHandler(authSvc, sess))

	// Protected API (session → stored role → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc, sess))
		pr.Use(auth.AttachRoleFromStore(store, cfg.Mode == config.ModeOffline))
		api.Mount(pr, svc, store)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := dbh.PingContext(r.Context()); err != nil {
			http.Error(w, "db unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(200)
	})
	if cfg.MetricsEnabled {
		r.Handle("/metrics", metrics.Handler())
	}

	logger.WithFields(logrus.Fields{
		"addr":  cfg.HTTPAddr,
		"mode":  cfg.Mode,
		"db":    cfg.DBDriver,
		"blob":  cfg.BlobDriver,
		"cache": cfg.CacheDriver,
	}).Info("listening")
	if err := http.ListenAndServe(cfg.HTTPAddr, r); err != nil {
		logger.WithError(err).Fatal("server stopped")
	}
}
