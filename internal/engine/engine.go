package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/wzf2c/automl_go_server/internal/frame"
)

var (
	ErrInvalidTarget = errors.New("目标列不存在于数据帧中")
	// ErrTraining 包装引擎侧训练失败，错误信息原样透传，本层不重试
	ErrTraining = errors.New("训练引擎执行失败")
)

// Policy 训练引擎的完整策略参数，全部显式枚举
type Policy struct {
	MaxModels      int
	Seed           int64
	BalanceClasses bool
	SortMetric     string
	ExcludedAlgos  []string
}

// LeaderboardRow 排行榜中的一个候选模型，Metrics 与 MetricColumns 一一对应
type LeaderboardRow struct {
	ModelID string    `json:"model_id"`
	Metrics []float64 `json:"metrics"`
}

// Leaderboard 引擎返回的完整候选模型排名，行序即名次
type Leaderboard struct {
	MetricColumns []string         `json:"metric_columns"`
	Rows          []LeaderboardRow `json:"rows"`
}

// Leader 排行榜首位模型的引用，序列化格式对本层不透明
type Leader interface {
	ModelID() string
	// Metric 读取引擎报告的标量指标（如 logloss、auc）
	Metric(name string) (float64, error)
	// Save 将模型序列化到目录，返回写入的文件路径
	Save(ctx context.Context, dir string) (string, error)
}

// Result 一次训练的产出
type Result struct {
	Leader      Leader
	Leaderboard *Leaderboard
}

// AutoML 外部训练引擎接口
type AutoML interface {
	Train(ctx context.Context, f *frame.Frame, target string, predictors []string, policy Policy) (*Result, error)
}

// Adapter 以固定策略调用训练引擎：目标列按分类处理（先因子化），
// 其余策略项取配置默认值，仅模型预算由调用方给定。
type Adapter struct {
	engine   AutoML
	defaults Policy
}

func NewAdapter(engine AutoML, defaults Policy) *Adapter {
	return &Adapter{engine: engine, defaults: defaults}
}

// Train 校验目标列、因子化目标、推导预测列后委托给引擎。
// 目标列缺失时在任何引擎调用之前即返回 ErrInvalidTarget。
func (a *Adapter) Train(ctx context.Context, f *frame.Frame, target string, maxModels int) (*Result, error) {
	if !f.HasColumn(target) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTarget, target)
	}

	predictors := make([]string, 0, len(f.Columns())-1)
	for _, col := range f.Columns() {
		if col != target {
			predictors = append(predictors, col)
		}
	}

	// 分类任务：目标列因子化（schema 快照须在此之前捕获）
	if err := f.AsCategorical(target); err != nil {
		return nil, err
	}

	policy := a.defaults
	policy.MaxModels = maxModels

	return a.engine.Train(ctx, f, target, predictors, policy)
}
