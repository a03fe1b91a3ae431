package service

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gorm.io/gorm"

	"github.com/wzf2c/automl_go_server/config"
	"github.com/wzf2c/automl_go_server/internal/model"
	"github.com/wzf2c/automl_go_server/internal/model/dto"
	"github.com/wzf2c/automl_go_server/internal/pkg/queue"
	"github.com/wzf2c/automl_go_server/internal/repository"
)

var (
	ErrJobNotFound  = errors.New("训练任务不存在")
	ErrInputMissing = errors.New("训练数据文件不存在")
)

// JobService 训练任务的提交与查询：任务先落库再入队，由 worker 异步执行
type JobService struct {
	jobRepo *repository.JobRepository
	queue   *queue.Queue
	cfg     *config.Config
}

func NewJobService(jobRepo *repository.JobRepository, q *queue.Queue, cfg *config.Config) *JobService {
	return &JobService{
		jobRepo: jobRepo,
		queue:   q,
		cfg:     cfg,
	}
}

// Submit 创建训练任务并入队。输入文件不存在时直接拒绝，不产生任务记录。
func (s *JobService) Submit(ctx context.Context, req *dto.SubmitTrainRequest) (*model.TrainingJob, error) {
	if _, err := os.Stat(req.InputPath); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrInputMissing, req.InputPath)
		}
		return nil, fmt.Errorf("failed to stat input file: %w", err)
	}

	experimentName := req.ExperimentName
	if experimentName == "" {
		experimentName = s.cfg.Training.DefaultExperiment
	}
	maxModels := req.MaxModels
	if maxModels <= 0 {
		maxModels = s.cfg.Training.DefaultMaxModels
	}

	job := &model.TrainingJob{
		ExperimentName: experimentName,
		TargetColumn:   req.TargetColumn,
		MaxModels:      maxModels,
		InputPath:      req.InputPath,
		Status:         "queued",
	}
	if err := s.jobRepo.Create(job); err != nil {
		return nil, fmt.Errorf("failed to create training job: %w", err)
	}

	msg := &queue.TrainMessage{
		JobID:          job.ID,
		ExperimentName: experimentName,
		TargetColumn:   req.TargetColumn,
		MaxModels:      maxModels,
		InputPath:      req.InputPath,
	}
	if err := s.queue.Push(ctx, msg); err != nil {
		// 入队失败的任务立即标记失败，避免永远停留在 queued
		job.Status = "failed"
		job.ErrorMessage = err.Error()
		s.jobRepo.Update(job)
		return nil, fmt.Errorf("failed to enqueue training job: %w", err)
	}

	return job, nil
}

func (s *JobService) Get(id int64) (*model.TrainingJob, error) {
	job, err := s.jobRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}
	return job, nil
}

func (s *JobService) List(page, pageSize int, status string) ([]*model.TrainingJob, int64, error) {
	return s.jobRepo.List(page, pageSize, status)
}
