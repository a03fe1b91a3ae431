package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wzf2c/automl_go_server/internal/model"
	"github.com/wzf2c/automl_go_server/internal/repository"
	"github.com/wzf2c/automl_go_server/internal/testutil"
)

// setupExperimentService 复用训练服务夹具，读侧直接对着同一套存储
func setupExperimentService(t *testing.T, fx *trainFixture) *ExperimentService {
	t.Helper()
	return NewExperimentService(
		repository.NewExperimentRepository(fx.db),
		repository.NewRunRepository(fx.db),
		fx.store,
	)
}

func TestExperimentService_Get_NotFound(t *testing.T) {
	fx := setupTrainService(t, &testutil.StubEngine{Result: testutil.StubResult()})
	svc := setupExperimentService(t, fx)

	_, err := svc.Get(99999)
	assert.ErrorIs(t, err, ErrExperimentNotFound)
}

func TestExperimentService_ListRuns(t *testing.T) {
	fx := setupTrainService(t, &testutil.StubEngine{Result: testutil.StubResult()})
	svc := setupExperimentService(t, fx)

	inputPath := testutil.WriteCSV(t, t.TempDir(), "train.csv", testutil.InsuranceCSV)
	outcome, err := fx.service.Train(context.Background(), defaultParams(inputPath))
	require.NoError(t, err)

	runs, err := svc.ListRuns(outcome.Experiment.ID)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, outcome.Run.ID, runs[0].ID)

	_, err = svc.ListRuns(99999)
	assert.ErrorIs(t, err, ErrExperimentNotFound)
}

func TestExperimentService_GetRun(t *testing.T) {
	fx := setupTrainService(t, &testutil.StubEngine{Result: testutil.StubResult()})
	svc := setupExperimentService(t, fx)

	inputPath := testutil.WriteCSV(t, t.TempDir(), "train.csv", testutil.InsuranceCSV)
	outcome, err := fx.service.Train(context.Background(), defaultParams(inputPath))
	require.NoError(t, err)

	detail, err := svc.GetRun(outcome.Run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusFinished, detail.Run.Status)
	assert.Equal(t, 0.31, detail.Metrics[MetricLogLoss])
	assert.Equal(t, 0.87, detail.Metrics[MetricAUC])

	_, err = svc.GetRun("no-such-run")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestExperimentService_GetLeaderboard(t *testing.T) {
	fx := setupTrainService(t, &testutil.StubEngine{Result: testutil.StubResult()})
	svc := setupExperimentService(t, fx)

	inputPath := testutil.WriteCSV(t, t.TempDir(), "train.csv", testutil.InsuranceCSV)
	outcome, err := fx.service.Train(context.Background(), defaultParams(inputPath))
	require.NoError(t, err)

	view, err := svc.GetLeaderboard(outcome.Run.ID)
	require.NoError(t, err)

	assert.Contains(t, view.Location, "leaderboard.csv")
	assert.Equal(t, []string{"model_id", "logloss", "auc", "aucpr"}, view.Header)
	require.Len(t, view.Rows, 2)
	assert.Equal(t, "GBM_1_AutoML", view.Rows[0][0])
}

func TestExperimentService_GetLeaderboard_NotGenerated(t *testing.T) {
	fx := setupTrainService(t, &testutil.StubEngine{Result: testutil.StubResult()})
	svc := setupExperimentService(t, fx)

	exp := testutil.TestExperiment(t, fx.db)
	run := testutil.TestRun(t, fx.db, exp.ID, model.RunStatusRunning)

	_, err := svc.GetLeaderboard(run.ID)
	assert.ErrorIs(t, err, ErrLeaderboardNotFound)
}
