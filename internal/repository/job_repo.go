package repository

import (
	"gorm.io/gorm"

	"github.com/wzf2c/automl_go_server/internal/model"
)

type JobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

func (r *JobRepository) Create(job *model.TrainingJob) error {
	return r.db.Create(job).Error
}

func (r *JobRepository) GetByID(id int64) (*model.TrainingJob, error) {
	var job model.TrainingJob
	err := r.db.Where("id = ?", id).First(&job).Error
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *JobRepository) Update(job *model.TrainingJob) error {
	return r.db.Save(job).Error
}

func (r *JobRepository) UpdateStep(id int64, step string) error {
	return r.db.Model(&model.TrainingJob{}).Where("id = ?", id).Update("current_step", step).Error
}

func (r *JobRepository) List(page, pageSize int, status string) ([]*model.TrainingJob, int64, error) {
	query := r.db.Model(&model.TrainingJob{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var jobs []*model.TrainingJob
	err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&jobs).Error
	return jobs, total, err
}
