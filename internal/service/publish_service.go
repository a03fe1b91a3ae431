package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/wzf2c/automl_go_server/internal/engine"
	"github.com/wzf2c/automl_go_server/internal/model"
	"github.com/wzf2c/automl_go_server/internal/tracking"
)

// ErrPublish artifact 或指标发布失败，包装底层错误
var ErrPublish = errors.New("Run 产物发布失败")

// 固定的 artifact 子路径
const (
	inputDataSubpath = "input_data"
	modelSubpath     = "model"
	leaderboardFile  = "leaderboard.csv"
)

// 记录到跟踪存储的指标名
const (
	MetricLogLoss = "log_loss"
	MetricAUC     = "AUC"
)

// 引擎排行榜中对应的指标列名
const (
	engineMetricLogLoss = "logloss"
	engineMetricAUC     = "auc"
)

// PublishService 将一次训练的全部产物写入 Run 的 artifact 命名空间：
// 原始输入数据、列类型快照、leader 指标、序列化模型、排行榜导出。
type PublishService struct {
	store *tracking.Store
}

func NewPublishService(store *tracking.Store) *PublishService {
	return &PublishService{store: store}
}

// PublishRun 发布一次完整训练的产物。排行榜必须在模型 artifact 之后写出，
// 其目标位置通过 GetArtifactURI 动态解析而非拼接约定路径。
// 任一步骤失败返回包装后的 ErrPublish，调用方负责将 Run 关闭为 failed。
func (s *PublishService) PublishRun(ctx context.Context, run *model.Run, inputPath, snapshotPath string, result *engine.Result) error {
	// 原始输入数据与列类型快照
	if err := s.store.LogArtifact(run, inputPath, inputDataSubpath); err != nil {
		return fmt.Errorf("%w: %v", ErrPublish, err)
	}
	if err := s.store.LogArtifact(run, snapshotPath, inputDataSubpath); err != nil {
		return fmt.Errorf("%w: %v", ErrPublish, err)
	}

	// leader 的标量指标
	logLoss, err := result.Leader.Metric(engineMetricLogLoss)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPublish, err)
	}
	auc, err := result.Leader.Metric(engineMetricAUC)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPublish, err)
	}
	if err := s.store.LogMetric(run, MetricLogLoss, logLoss); err != nil {
		return fmt.Errorf("%w: %v", ErrPublish, err)
	}
	if err := s.store.LogMetric(run, MetricAUC, auc); err != nil {
		return fmt.Errorf("%w: %v", ErrPublish, err)
	}

	// 序列化 leader 模型并发布
	tmpDir, err := os.MkdirTemp("", "automl-model-")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPublish, err)
	}
	defer os.RemoveAll(tmpDir)

	modelPath, err := result.Leader.Save(ctx, tmpDir)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPublish, err)
	}
	if err := s.store.LogArtifact(run, modelPath, modelSubpath); err != nil {
		return fmt.Errorf("%w: %v", ErrPublish, err)
	}

	// 排行榜写到模型 artifact 的实际位置下（存储可能改写路径，须动态解析）
	if err := s.exportLeaderboard(run, tmpDir, result.Leaderboard); err != nil {
		return fmt.Errorf("%w: %v", ErrPublish, err)
	}

	return nil
}

func (s *PublishService) exportLeaderboard(run *model.Run, tmpDir string, lb *engine.Leaderboard) error {
	modelURI := s.store.GetArtifactURI(run, modelSubpath)

	if dir, ok := strings.CutPrefix(modelURI, "file:"); ok {
		// 本地存储：直接写入模型目录
		return writeLeaderboardCSV(filepath.Join(dir, leaderboardFile), lb)
	}

	// 远端存储：先落盘再发布到 model/ 下
	localPath := filepath.Join(tmpDir, leaderboardFile)
	if err := writeLeaderboardCSV(localPath, lb); err != nil {
		return err
	}
	return s.store.LogArtifact(run, localPath, modelSubpath)
}

// writeLeaderboardCSV 导出排行榜：表头 + 每个候选模型一行，行序即名次
func writeLeaderboardCSV(destPath string, lb *engine.Leaderboard) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fmt.Errorf("failed to create leaderboard directory: %w", err)
	}

	f, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create leaderboard file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	header := append([]string{"model_id"}, lb.MetricColumns...)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write leaderboard header: %w", err)
	}

	for _, row := range lb.Rows {
		record := make([]string, 0, len(row.Metrics)+1)
		record = append(record, row.ModelID)
		for _, v := range row.Metrics {
			record = append(record, strconv.FormatFloat(v, 'g', -1, 64))
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write leaderboard row: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}
