package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/waggytrails/walker-scheduler/internal/config"
	dbpkg "github.com/waggytrails/walker-scheduler/internal/db"
	"github.com/waggytrails/walker-scheduler/internal/logging"
	"github.com/waggytrails/walker-scheduler/internal/middleware"
	"github.com/waggytrails/walker-scheduler/internal/routes"
)

func main() {

	cfg := config.Load()
	logging.Init(cfg.IsProduction())
	log := logging.L()

	db := dbpkg.NewDB(cfg)

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	r.Use(middleware.CORSMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	routes.RegisterRoutes(r, db, rdb, cfg)

	log.Info("server starting", zap.String("addr", cfg.Addr()))
	if err := r.Run(cfg.Addr()); err != nil {
		log.Fatal("server failed", zap.Error(err))
	}
}
