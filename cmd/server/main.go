package main

import (
	"context"
	"fmt"
	"log"

	"github.com/wzf2c/automl_go_server/config"
	"github.com/wzf2c/automl_go_server/internal/api"
	"github.com/wzf2c/automl_go_server/internal/api/handler"
	"github.com/wzf2c/automl_go_server/internal/artifact"
	"github.com/wzf2c/automl_go_server/internal/database"
	"github.com/wzf2c/automl_go_server/internal/pkg/pubsub"
	"github.com/wzf2c/automl_go_server/internal/pkg/queue"
	"github.com/wzf2c/automl_go_server/internal/pkg/ws"
	"github.com/wzf2c/automl_go_server/internal/repository"
	"github.com/wzf2c/automl_go_server/internal/service"
	"github.com/wzf2c/automl_go_server/internal/tracking"
)

func main() {
	// 加载配置
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化跟踪存储数据库
	db, err := database.New(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to open tracking database: %v", err)
	}
	log.Println("Tracking database connected")

	// 初始化 Redis
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect redis: %v", err)
	}
	log.Println("Redis connected")

	// 初始化 artifact 存储
	var artifacts artifact.Store
	if cfg.Artifacts.Backend == "oss" {
		artifacts, err = artifact.NewOSSStore(&cfg.Artifacts.OSS)
	} else {
		artifacts, err = artifact.NewLocalStore(cfg.Artifacts.Root)
	}
	if err != nil {
		log.Fatalf("Failed to init artifact store: %v", err)
	}

	// 初始化 Queue
	jobQueue := queue.NewQueue(rdb, cfg.Queue.TrainQueue)

	// 初始化 WebSocket Hub，转发训练进度
	wsHub := ws.NewHub()
	subscriber := pubsub.NewSubscriber(rdb)
	go func() {
		err := subscriber.Subscribe(context.Background(), func(msg *pubsub.ProgressMessage) {
			wsHub.Broadcast(msg.JobID, &ws.Message{Type: msg.Type, Data: msg})
		})
		if err != nil && err != context.Canceled {
			log.Printf("Progress subscriber stopped: %v", err)
		}
	}()
	log.Println("WebSocket hub started")

	// 初始化 Repository
	expRepo := repository.NewExperimentRepository(db)
	runRepo := repository.NewRunRepository(db)
	jobRepo := repository.NewJobRepository(db)

	store := tracking.NewStore(db, artifacts)

	// 初始化 Service
	authService := service.NewAuthService(cfg)
	experimentService := service.NewExperimentService(expRepo, runRepo, store)
	jobService := service.NewJobService(jobRepo, jobQueue, cfg)

	// 初始化 Handler
	authHandler := handler.NewAuthHandler(authService)
	experimentHandler := handler.NewExperimentHandler(experimentService)
	trainHandler := handler.NewTrainHandler(jobService)
	websocketHandler := handler.NewWebSocketHandler(wsHub, cfg.JWT.Secret)

	// 初始化 Router
	router := api.NewRouter(authHandler, experimentHandler, trainHandler, websocketHandler, cfg)
	engine := router.Setup()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Server listening on %s", addr)
	if err := engine.Run(addr); err != nil {
		log.Fatalf("Server exited: %v", err)
	}
}
