package service

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wzf2c/automl_go_server/config"
	"github.com/wzf2c/automl_go_server/internal/model/dto"
	"github.com/wzf2c/automl_go_server/internal/pkg/queue"
	"github.com/wzf2c/automl_go_server/internal/repository"
	"github.com/wzf2c/automl_go_server/internal/testutil"
)

func setupJobService(t *testing.T) (*JobService, *queue.Queue) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	q := queue.NewQueue(client, "train_jobs")

	cfg := &config.Config{
		Training: config.TrainingConfig{
			DefaultExperiment: "automl-insurance",
			DefaultMaxModels:  10,
		},
	}

	return NewJobService(repository.NewJobRepository(db), q, cfg), q
}

func TestJobService_Submit(t *testing.T) {
	svc, q := setupJobService(t)
	ctx := context.Background()

	inputPath := testutil.WriteCSV(t, t.TempDir(), "train.csv", testutil.InsuranceCSV)

	job, err := svc.Submit(ctx, &dto.SubmitTrainRequest{
		TargetColumn: "claim",
		InputPath:    inputPath,
		MaxModels:    5,
	})
	require.NoError(t, err)

	assert.NotZero(t, job.ID)
	assert.Equal(t, "queued", job.Status)
	// 未指定实验名时取配置默认值
	assert.Equal(t, "automl-insurance", job.ExperimentName)
	assert.Equal(t, 5, job.MaxModels)

	length, err := q.Length(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), length)

	msg, err := q.Pop(ctx, 0)
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.Equal(t, job.ID, msg.JobID)
	assert.Equal(t, "claim", msg.TargetColumn)
	assert.Equal(t, inputPath, msg.InputPath)
}

func TestJobService_Submit_Defaults(t *testing.T) {
	svc, _ := setupJobService(t)

	inputPath := testutil.WriteCSV(t, t.TempDir(), "train.csv", testutil.InsuranceCSV)

	job, err := svc.Submit(context.Background(), &dto.SubmitTrainRequest{
		TargetColumn: "claim",
		InputPath:    inputPath,
	})
	require.NoError(t, err)

	assert.Equal(t, "automl-insurance", job.ExperimentName)
	assert.Equal(t, 10, job.MaxModels)
}

func TestJobService_Submit_InputMissing(t *testing.T) {
	svc, q := setupJobService(t)
	ctx := context.Background()

	_, err := svc.Submit(ctx, &dto.SubmitTrainRequest{
		TargetColumn: "claim",
		InputPath:    "/no/such/file.csv",
	})

	assert.ErrorIs(t, err, ErrInputMissing)

	// 拒绝的请求不产生任务记录也不入队
	_, total, listErr := svc.List(1, 10, "")
	require.NoError(t, listErr)
	assert.Zero(t, total)

	length, _ := q.Length(ctx)
	assert.Zero(t, length)
}

func TestJobService_Get_NotFound(t *testing.T) {
	svc, _ := setupJobService(t)

	_, err := svc.Get(99999)
	assert.ErrorIs(t, err, ErrJobNotFound)
}
