package main

import (
	"context"
	"net/http"
	"time"

	"chatvault/backend/internal/api/handler"
	"chatvault/backend/internal/blob"
	"chatvault/backend/internal/chathub"
	"chatvault/backend/internal/config"
	"chatvault/backend/internal/logging"
	"chatvault/backend/internal/models"
	"chatvault/backend/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupDependencies(cfg *config.Config, log *zap.Logger) (*gorm.DB, *redis.Client) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect PostgreSQL", zap.Error(err))
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Fatal("failed to connect Redis", zap.Error(err))
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.DirectMessage{},
		&models.Chat{},
		&models.GroupChat{},
		&models.GroupMessage{},
	)
	if err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	log.Info("database and redis connections established, migrations complete")
	return db, rdb
}

func main() {
	log, err := logging.New()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config", zap.Error(err))
	}

	db, rdb := setupDependencies(cfg, log)
	s := storage.NewService(db, rdb)

	blobs, err := blob.NewDiskStore(cfg.UploadDir)
	if err != nil {
		log.Fatal("failed to prepare upload dir", zap.Error(err))
	}

	hub := chathub.NewHub(s, log)
	go hub.Run()

	r := gin.Default()
	r.Static("/uploads", cfg.UploadDir)

	h := handler.NewHandler(hub, s, blobs, cfg.JWTSecret, log)
	h.RegisterRoutes(r)

	server := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	log.Info("chatvault backend listening", zap.String("port", cfg.Port))
	if err := server.ListenAndServe(); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
