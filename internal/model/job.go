package model

import (
	"time"
)

// TrainingJob 通过 API 提交的训练任务，由 worker 异步执行
type TrainingJob struct {
	ID             int64      `gorm:"primaryKey" json:"id"`
	ExperimentName string     `gorm:"size:255;not null" json:"experiment_name"`
	TargetColumn   string     `gorm:"size:100;not null" json:"target_column"`
	MaxModels      int        `gorm:"not null" json:"max_models"`
	InputPath      string     `gorm:"size:500;not null" json:"input_path"`
	Status         string     `gorm:"size:20;default:queued;index" json:"status"` // queued, processing, completed, failed
	RunID          string     `gorm:"size:36" json:"run_id,omitempty"`
	CurrentStep    string     `gorm:"size:200" json:"current_step,omitempty"`
	ErrorMessage   string     `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt      time.Time  `gorm:"index" json:"created_at"`
	StartedAt      *time.Time `json:"started_at,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	ElapsedSeconds int        `json:"elapsed_seconds,omitempty"`
}

func (TrainingJob) TableName() string {
	return "training_jobs"
}
