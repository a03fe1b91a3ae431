package service

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"github.com/wzf2c/automl_go_server/config"
	"github.com/wzf2c/automl_go_server/internal/engine"
	"github.com/wzf2c/automl_go_server/internal/frame"
	"github.com/wzf2c/automl_go_server/internal/model"
	"github.com/wzf2c/automl_go_server/internal/schema"
	"github.com/wzf2c/automl_go_server/internal/tracking"
)

// 输入文件旁的列类型快照文件名，预测管线按此名加载。
// 并发 Run 对该文件是 last-writer-wins，权威副本在 Run 的 artifact 命名空间里。
const colTypesFileName = "train_col_types.json"

// TrainParams 一次训练的全部输入
type TrainParams struct {
	ExperimentName string
	TargetColumn   string
	MaxModels      int
	InputPath      string
}

// TrainOutcome 训练完成后的结果汇总
type TrainOutcome struct {
	Experiment    *model.Experiment
	Run           *model.Run
	LeaderModelID string
	LogLoss       float64
	AUC           float64
}

// TrainService 编排一次完整的模型选择 Run：
// 实验解析 → 开启 Run → schema 快照 → 训练 → 产物发布 → 关闭 Run。
// 所有失败路径都保证 Run 被关闭为 failed，跟踪存储中不会残留 running 状态。
type TrainService struct {
	session   *tracking.Session
	adapter   *engine.Adapter
	publisher *PublishService
	cfg       *config.Config
}

func NewTrainService(session *tracking.Session, adapter *engine.Adapter, publisher *PublishService, cfg *config.Config) *TrainService {
	return &TrainService{
		session:   session,
		adapter:   adapter,
		publisher: publisher,
		cfg:       cfg,
	}
}

// Train 执行一次训练 Run。输入缺失与目标列缺失在任何跟踪存储、
// 训练引擎调用之前失败，不会产生残留 Run。
func (s *TrainService) Train(ctx context.Context, params TrainParams) (*TrainOutcome, error) {
	// 加载数据帧（文件不存在在此处失败，注册表尚未被访问）
	f, err := frame.Load(params.InputPath)
	if err != nil {
		return nil, err
	}

	// 目标列校验先于 Run 创建与引擎调用
	if !f.HasColumn(params.TargetColumn) {
		return nil, fmt.Errorf("%w: %s", engine.ErrInvalidTarget, params.TargetColumn)
	}

	// schema 快照在目标列因子化之前捕获，反映原始输入 schema
	snap, err := schema.Capture(f)
	if err != nil {
		return nil, err
	}

	snapshotPath := filepath.Join(filepath.Dir(params.InputPath), colTypesFileName)
	if err := snap.Persist(snapshotPath); err != nil {
		return nil, err
	}

	exp, err := s.session.Store().CreateOrGetExperiment(params.ExperimentName)
	if err != nil {
		return nil, err
	}

	run, err := s.session.StartRun(exp)
	if err != nil {
		return nil, err
	}
	log.Printf("Run %s started under experiment %q (id=%d)", run.ID, exp.Name, exp.ID)

	result, err := s.adapter.Train(ctx, f, params.TargetColumn, params.MaxModels)
	if err != nil {
		return nil, s.fail(run, err)
	}

	if err := s.publisher.PublishRun(ctx, run, params.InputPath, snapshotPath, result); err != nil {
		return nil, s.fail(run, err)
	}

	if err := s.session.EndRun(run, model.RunStatusFinished); err != nil {
		return nil, err
	}
	log.Printf("Run %s finished, leader model: %s", run.ID, result.Leader.ModelID())

	logLoss, _ := result.Leader.Metric("logloss")
	auc, _ := result.Leader.Metric("auc")

	return &TrainOutcome{
		Experiment:    exp,
		Run:           run,
		LeaderModelID: result.Leader.ModelID(),
		LogLoss:       logLoss,
		AUC:           auc,
	}, nil
}

// fail 关闭 Run 为 failed 后原样返回导致失败的错误
func (s *TrainService) fail(run *model.Run, cause error) error {
	if err := s.session.EndRun(run, model.RunStatusFailed); err != nil {
		log.Printf("Failed to close run %s after error: %v", run.ID, err)
	}
	return cause
}
