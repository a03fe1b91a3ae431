package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/wzf2c/automl_go_server/config"
	"github.com/wzf2c/automl_go_server/internal/artifact"
	"github.com/wzf2c/automl_go_server/internal/database"
	"github.com/wzf2c/automl_go_server/internal/engine"
	"github.com/wzf2c/automl_go_server/internal/engine/h2o"
	"github.com/wzf2c/automl_go_server/internal/service"
	"github.com/wzf2c/automl_go_server/internal/tracking"
)

func main() {
	var (
		configPath     = flag.String("config", "config.yaml", "配置文件路径")
		experimentName = flag.String("name", "", "实验名称，缺省取配置中的默认实验")
		target         = flag.String("target", "", "目标列名（必填）")
		models         = flag.Int("models", 0, "训练的候选模型数量上限，缺省取配置默认值")
		input          = flag.String("input", "", "训练数据 CSV 路径（必填）")
	)
	flag.Parse()

	if *target == "" || *input == "" {
		fmt.Fprintln(os.Stderr, "Usage: train --target <column> --input <csv> [--name <experiment>] [--models <n>]")
		os.Exit(2)
	}

	// 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	name := *experimentName
	if name == "" {
		name = cfg.Training.DefaultExperiment
	}
	maxModels := *models
	if maxModels <= 0 {
		maxModels = cfg.Training.DefaultMaxModels
	}

	// 初始化跟踪存储数据库
	db, err := database.New(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to open tracking database: %v", err)
	}

	// 初始化 artifact 存储
	artifacts, err := newArtifactStore(cfg)
	if err != nil {
		log.Fatalf("Failed to init artifact store: %v", err)
	}

	store := tracking.NewStore(db, artifacts)
	session := tracking.NewSession(store)

	adapter := engine.NewAdapter(h2o.NewClient(&cfg.Engine), engine.Policy{
		Seed:           cfg.Training.Seed,
		BalanceClasses: cfg.Training.BalanceClasses,
		SortMetric:     cfg.Training.SortMetric,
		ExcludedAlgos:  cfg.Training.ExcludedAlgos,
	})
	publisher := service.NewPublishService(store)
	trainService := service.NewTrainService(session, adapter, publisher, cfg)

	outcome, err := trainService.Train(context.Background(), service.TrainParams{
		ExperimentName: name,
		TargetColumn:   *target,
		MaxModels:      maxModels,
		InputPath:      *input,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Training failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Name: %s\n", outcome.Experiment.Name)
	fmt.Printf("Experiment_id: %d\n", outcome.Experiment.ID)
	fmt.Printf("Artifact Location: %s\n", outcome.Experiment.ArtifactLocation)
	fmt.Printf("Lifecycle_stage: %s\n", outcome.Experiment.LifecycleStage)
	fmt.Printf("Run: %s (%s)\n", outcome.Run.ID, outcome.Run.Status)
	fmt.Printf("Leader model: %s\n", outcome.LeaderModelID)
	fmt.Printf("log_loss: %.6f  AUC: %.6f\n", outcome.LogLoss, outcome.AUC)
	fmt.Printf("Leaderboard saved in %s\n", store.GetArtifactURI(outcome.Run, "model"))
}

func newArtifactStore(cfg *config.Config) (artifact.Store, error) {
	if cfg.Artifacts.Backend == "oss" {
		return artifact.NewOSSStore(&cfg.Artifacts.OSS)
	}
	return artifact.NewLocalStore(cfg.Artifacts.Root)
}
