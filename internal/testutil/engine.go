package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/wzf2c/automl_go_server/internal/engine"
	"github.com/wzf2c/automl_go_server/internal/frame"
)

// StubEngine 训练引擎的测试替身，记录调用参数并返回预置结果
type StubEngine struct {
	Result *engine.Result
	Err    error

	Called     bool
	GotTarget  string
	GotColumns []string
	GotPolicy  engine.Policy
}

func (e *StubEngine) Train(ctx context.Context, f *frame.Frame, target string, predictors []string, policy engine.Policy) (*engine.Result, error) {
	e.Called = true
	e.GotTarget = target
	e.GotColumns = predictors
	e.GotPolicy = policy

	if e.Err != nil {
		return nil, e.Err
	}
	return e.Result, nil
}

// StubLeader engine.Leader 的测试替身
type StubLeader struct {
	ID      string
	Metrics map[string]float64
}

func (l *StubLeader) ModelID() string {
	return l.ID
}

func (l *StubLeader) Metric(name string) (float64, error) {
	v, ok := l.Metrics[name]
	if !ok {
		return 0, fmt.Errorf("引擎未报告指标: %s", name)
	}
	return v, nil
}

func (l *StubLeader) Save(ctx context.Context, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, l.ID+".bin")
	if err := os.WriteFile(path, []byte("stub model binary"), 0644); err != nil {
		return "", err
	}
	return path, nil
}

// StubResult 构造一个按 logloss 升序排好的两模型训练结果
func StubResult() *engine.Result {
	leader := &StubLeader{
		ID: "GBM_1_AutoML",
		Metrics: map[string]float64{
			"logloss": 0.31,
			"auc":     0.87,
		},
	}
	return &engine.Result{
		Leader: leader,
		Leaderboard: &engine.Leaderboard{
			MetricColumns: []string{"logloss", "auc", "aucpr"},
			Rows: []engine.LeaderboardRow{
				{ModelID: "GBM_1_AutoML", Metrics: []float64{0.31, 0.87, 0.85}},
				{ModelID: "XGBoost_2_AutoML", Metrics: []float64{0.35, 0.84, 0.82}},
			},
		},
	}
}
