package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wzf2c/automl_go_server/internal/model"
)

// TestExperiment 创建测试实验
func TestExperiment(t *testing.T, db *gorm.DB, opts ...func(*model.Experiment)) *model.Experiment {
	t.Helper()

	exp := &model.Experiment{
		Name:             fmt.Sprintf("exp_%d", time.Now().UnixNano()),
		ArtifactLocation: t.TempDir(),
		LifecycleStage:   model.LifecycleActive,
	}

	for _, opt := range opts {
		opt(exp)
	}

	if err := db.Create(exp).Error; err != nil {
		t.Fatalf("Failed to create test experiment: %v", err)
	}

	return exp
}

// WithName 设置实验名
func WithName(name string) func(*model.Experiment) {
	return func(e *model.Experiment) {
		e.Name = name
	}
}

// TestRun 创建测试 Run
func TestRun(t *testing.T, db *gorm.DB, experimentID int64, status string) *model.Run {
	t.Helper()

	run := &model.Run{
		ID:           uuid.NewString(),
		ExperimentID: experimentID,
		Status:       status,
		ArtifactURI:  filepath.Join(t.TempDir(), "artifacts"),
		StartedAt:    time.Now(),
	}

	if err := db.Create(run).Error; err != nil {
		t.Fatalf("Failed to create test run: %v", err)
	}

	return run
}

// TestJob 创建测试训练任务
func TestJob(t *testing.T, db *gorm.DB, status string) *model.TrainingJob {
	t.Helper()

	job := &model.TrainingJob{
		ExperimentName: "test-experiment",
		TargetColumn:   "claim",
		MaxModels:      5,
		InputPath:      "data/train.csv",
		Status:         status,
	}

	if err := db.Create(job).Error; err != nil {
		t.Fatalf("Failed to create test job: %v", err)
	}

	return job
}

// WriteCSV 写一个临时 CSV 文件并返回路径
func WriteCSV(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test csv: %v", err)
	}
	return path
}

// InsuranceCSV 测试用的小数据集：age, income 为数值列，claim 为二分类目标
const InsuranceCSV = `age,income,claim
34,52000,yes
45,61000,no
29,38000,yes
51,72000,no
38,49000,yes
42,55000,no
`
