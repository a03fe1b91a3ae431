package model

import (
	"time"
)

// 实验生命周期状态
const (
	LifecycleActive   = "active"
	LifecycleArchived = "archived"
)

// Experiment 一组相关训练 Run 的持久分组，name 全局唯一
type Experiment struct {
	ID               int64     `gorm:"primaryKey" json:"experiment_id"`
	Name             string    `gorm:"size:255;not null;uniqueIndex" json:"name"`
	ArtifactLocation string    `gorm:"size:500;not null" json:"artifact_location"`
	LifecycleStage   string    `gorm:"size:20;default:active" json:"lifecycle_stage"` // active, archived
	CreatedAt        time.Time `json:"created_at"`
}

func (Experiment) TableName() string {
	return "experiments"
}
