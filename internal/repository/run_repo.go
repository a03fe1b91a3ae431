package repository

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wzf2c/automl_go_server/internal/model"
)

type RunRepository struct {
	db *gorm.DB
}

func NewRunRepository(db *gorm.DB) *RunRepository {
	return &RunRepository{db: db}
}

func (r *RunRepository) Create(run *model.Run) error {
	return r.db.Create(run).Error
}

func (r *RunRepository) GetByID(id string) (*model.Run, error) {
	var run model.Run
	err := r.db.Where("id = ?", id).First(&run).Error
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *RunRepository) ListByExperiment(experimentID int64) ([]*model.Run, error) {
	var runs []*model.Run
	err := r.db.Where("experiment_id = ?", experimentID).
		Order("started_at DESC").
		Find(&runs).Error
	return runs, err
}

// End 将 Run 置为终态。只允许 running → finished/failed 一次转换，
// 已关闭的 Run 不会被二次更新。
func (r *RunRepository) End(id string, status string, endedAt time.Time, elapsedSeconds int) (bool, error) {
	res := r.db.Model(&model.Run{}).
		Where("id = ? AND status = ?", id, model.RunStatusRunning).
		Updates(map[string]interface{}{
			"status":          status,
			"ended_at":        endedAt,
			"elapsed_seconds": elapsedSeconds,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// UpsertMetric 写入指标，同名指标覆盖为最新值
func (r *RunRepository) UpsertMetric(runID, name string, value float64) error {
	metric := &model.RunMetric{
		RunID: runID,
		Name:  name,
		Value: value,
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "run_id"}, {Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(metric).Error
}

func (r *RunRepository) GetMetrics(runID string) ([]*model.RunMetric, error) {
	var metrics []*model.RunMetric
	err := r.db.Where("run_id = ?", runID).
		Order("name ASC").
		Find(&metrics).Error
	return metrics, err
}
