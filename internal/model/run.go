package model

import (
	"time"
)

// Run 状态
const (
	RunStatusRunning  = "running"
	RunStatusFinished = "finished"
	RunStatusFailed   = "failed"
)

// Run 一次训练执行，归属于一个 Experiment
type Run struct {
	ID             string     `gorm:"primaryKey;size:36" json:"run_id"`
	ExperimentID   int64      `gorm:"not null;index" json:"experiment_id"`
	Status         string     `gorm:"size:20;default:running;index" json:"status"` // running, finished, failed
	ArtifactURI    string     `gorm:"size:500;not null" json:"artifact_uri"`
	StartedAt      time.Time  `json:"started_at"`
	EndedAt        *time.Time `json:"ended_at,omitempty"`
	ElapsedSeconds int        `json:"elapsed_seconds,omitempty"`
}

func (Run) TableName() string {
	return "runs"
}

// RunMetric 单个标量指标，Run 运行期间追加写入
type RunMetric struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	RunID     string    `gorm:"size:36;not null;index:idx_run_metric,unique" json:"run_id"`
	Name      string    `gorm:"size:100;not null;index:idx_run_metric,unique" json:"name"`
	Value     float64   `gorm:"not null" json:"value"`
	CreatedAt time.Time `json:"created_at"`
}

func (RunMetric) TableName() string {
	return "run_metrics"
}
