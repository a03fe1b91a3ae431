package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wzf2c/automl_go_server/config"
	"github.com/wzf2c/automl_go_server/internal/artifact"
	"github.com/wzf2c/automl_go_server/internal/database"
	"github.com/wzf2c/automl_go_server/internal/engine"
	"github.com/wzf2c/automl_go_server/internal/engine/h2o"
	"github.com/wzf2c/automl_go_server/internal/pkg/pubsub"
	"github.com/wzf2c/automl_go_server/internal/pkg/queue"
	"github.com/wzf2c/automl_go_server/internal/repository"
	"github.com/wzf2c/automl_go_server/internal/service"
	"github.com/wzf2c/automl_go_server/internal/tracking"
	"github.com/wzf2c/automl_go_server/internal/worker"
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

	// 初始化 Queue 和 Pub/Sub
	jobQueue := queue.NewQueue(rdb, cfg.Queue.TrainQueue)
	publisher := pubsub.NewPublisher(rdb)

	jobRepo := repository.NewJobRepository(db)
	store := tracking.NewStore(db, artifacts)

	// 创建 context 用于优雅关闭
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 监听退出信号
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("Received shutdown signal")
		cancel()
	}()

	log.Printf("Worker started, max workers: %d", cfg.Queue.MaxWorkers)

	// 启动 worker 循环，每个 worker 持有独立的 Run 会话
	for i := 0; i < cfg.Queue.MaxWorkers; i++ {
		go func(workerID int) {
			session := tracking.NewSession(store)
			adapter := engine.NewAdapter(h2o.NewClient(&cfg.Engine), engine.Policy{
				Seed:           cfg.Training.Seed,
				BalanceClasses: cfg.Training.BalanceClasses,
				SortMetric:     cfg.Training.SortMetric,
				ExcludedAlgos:  cfg.Training.ExcludedAlgos,
			})
			trainService := service.NewTrainService(session, adapter, service.NewPublishService(store), cfg)
			processor := worker.NewProcessor(jobRepo, trainService, publisher)

			for {
				select {
				case <-ctx.Done():
					log.Printf("Worker %d shutting down", workerID)
					return
				default:
					// 从队列获取任务
					msg, err := jobQueue.Pop(ctx, 5*time.Second)
					if err != nil {
						if ctx.Err() != nil {
							return
						}
						log.Printf("Worker %d: failed to pop job: %v", workerID, err)
						continue
					}

					if msg == nil {
						continue // 超时，继续等待
					}

					log.Printf("Worker %d: processing job %d", workerID, msg.JobID)
					if err := processor.Process(ctx, msg); err != nil {
						log.Printf("Worker %d: job %d failed: %v", workerID, msg.JobID, err)
					}
				}
			}
		}(i)
	}

	// 等待 context 取消
	<-ctx.Done()
	log.Println("Worker shutdown complete")
}
