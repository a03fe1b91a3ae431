package repository

import (
	"errors"
	"fmt"
	"path"
	"strconv"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wzf2c/automl_go_server/internal/model"
)

type ExperimentRepository struct {
	db *gorm.DB
}

func NewExperimentRepository(db *gorm.DB) *ExperimentRepository {
	return &ExperimentRepository{db: db}
}

// CreateOrGet 按名称解析实验，不存在则创建（幂等）。
// name 上有唯一索引，并发创建时冲突方重读胜者的记录，不会产生重复 ID。
func (r *ExperimentRepository) CreateOrGet(name string, artifactRoot string) (*model.Experiment, error) {
	var exp model.Experiment

	err := r.db.Where("name = ?", name).First(&exp).Error
	if err == nil {
		return &exp, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to query experiment: %w", err)
	}

	exp = model.Experiment{
		Name:           name,
		LifecycleStage: model.LifecycleActive,
	}

	err = r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).Create(&exp)
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			// 并发创建竞争失败，读取胜者的记录
			return tx.Where("name = ?", name).First(&exp).Error
		}

		// artifact 位置由实验 ID 派生，插入后回填
		exp.ArtifactLocation = path.Join(artifactRoot, strconv.FormatInt(exp.ID, 10))
		return tx.Model(&model.Experiment{}).Where("id = ?", exp.ID).
			Update("artifact_location", exp.ArtifactLocation).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create experiment: %w", err)
	}

	return &exp, nil
}

func (r *ExperimentRepository) GetByID(id int64) (*model.Experiment, error) {
	var exp model.Experiment
	err := r.db.Where("id = ?", id).First(&exp).Error
	if err != nil {
		return nil, err
	}
	return &exp, nil
}

func (r *ExperimentRepository) GetByName(name string) (*model.Experiment, error) {
	var exp model.Experiment
	err := r.db.Where("name = ?", name).First(&exp).Error
	if err != nil {
		return nil, err
	}
	return &exp, nil
}

func (r *ExperimentRepository) List(page, pageSize int) ([]*model.Experiment, int64, error) {
	var exps []*model.Experiment
	var total int64

	if err := r.db.Model(&model.Experiment{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&exps).Error
	return exps, total, err
}

// Archive 归档实验（本系统从不隐式删除实验）
func (r *ExperimentRepository) Archive(id int64) error {
	return r.db.Model(&model.Experiment{}).Where("id = ?", id).
		Update("lifecycle_stage", model.LifecycleArchived).Error
}
