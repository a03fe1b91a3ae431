package worker

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/wzf2c/automl_go_server/internal/pkg/pubsub"
	"github.com/wzf2c/automl_go_server/internal/pkg/queue"
	"github.com/wzf2c/automl_go_server/internal/repository"
	"github.com/wzf2c/automl_go_server/internal/service"
)

// Processor 训练任务处理器：从队列取任务，驱动 TrainService 执行，
// 推送进度并维护任务状态机 queued → processing → completed/failed
type Processor struct {
	jobRepo      *repository.JobRepository
	trainService *service.TrainService
	publisher    *pubsub.Publisher
}

func NewProcessor(
	jobRepo *repository.JobRepository,
	trainService *service.TrainService,
	publisher *pubsub.Publisher,
) *Processor {
	return &Processor{
		jobRepo:      jobRepo,
		trainService: trainService,
		publisher:    publisher,
	}
}

// Process 处理一个训练任务
func (p *Processor) Process(ctx context.Context, msg *queue.TrainMessage) error {
	job, err := p.jobRepo.GetByID(msg.JobID)
	if err != nil {
		return fmt.Errorf("failed to get job: %w", err)
	}

	// 更新状态为处理中
	now := time.Now()
	job.Status = "processing"
	job.StartedAt = &now
	p.jobRepo.Update(job)

	// 定义进度推送辅助函数
	publishProgress := func(step, status, errMsg string) {
		p.publisher.PublishProgress(ctx, &pubsub.ProgressMessage{
			JobID:          msg.JobID,
			RunID:          job.RunID,
			ExperimentName: msg.ExperimentName,
			Status:         status,
			Step:           step,
			Error:          errMsg,
		})
	}

	// 定义失败处理函数
	handleError := func(step string, err error) error {
		errMsg := err.Error()
		job.Status = "failed"
		job.ErrorMessage = errMsg
		job.CurrentStep = step
		completedAt := time.Now()
		job.CompletedAt = &completedAt
		job.ElapsedSeconds = int(completedAt.Sub(*job.StartedAt).Seconds())
		p.jobRepo.Update(job)
		publishProgress(step, "failed", errMsg)
		return err
	}

	log.Printf("Job %d: training %q target=%s max_models=%d", job.ID, msg.InputPath, msg.TargetColumn, msg.MaxModels)
	job.CurrentStep = pubsub.StepMessages[pubsub.StepLoading]
	p.jobRepo.Update(job)
	publishProgress(pubsub.StepLoading, "processing", "")

	publishProgress(pubsub.StepTraining, "processing", "")

	outcome, err := p.trainService.Train(ctx, service.TrainParams{
		ExperimentName: msg.ExperimentName,
		TargetColumn:   msg.TargetColumn,
		MaxModels:      msg.MaxModels,
		InputPath:      msg.InputPath,
	})
	if err != nil {
		return handleError(pubsub.StepTraining, err)
	}

	publishProgress(pubsub.StepPublishing, "processing", "")

	// 完成
	job.Status = "completed"
	job.RunID = outcome.Run.ID
	job.CurrentStep = pubsub.StepMessages[pubsub.StepDone]
	completedAt := time.Now()
	job.CompletedAt = &completedAt
	job.ElapsedSeconds = int(completedAt.Sub(*job.StartedAt).Seconds())
	if err := p.jobRepo.Update(job); err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}

	publishProgress(pubsub.StepDone, "completed", "")
	log.Printf("Job %d completed: run=%s leader=%s log_loss=%.6f auc=%.6f",
		job.ID, outcome.Run.ID, outcome.LeaderModelID, outcome.LogLoss, outcome.AUC)
	return nil
}
