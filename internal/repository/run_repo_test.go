package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wzf2c/automl_go_server/internal/model"
	"github.com/wzf2c/automl_go_server/internal/testutil"
)

func TestRunRepository_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewRunRepository(db)
	exp := testutil.TestExperiment(t, db)

	run := &model.Run{
		ID:           "run-001",
		ExperimentID: exp.ID,
		Status:       model.RunStatusRunning,
		ArtifactURI:  "/tmp/artifacts/1/run-001/artifacts",
		StartedAt:    time.Now(),
	}

	require.NoError(t, repo.Create(run))

	found, err := repo.GetByID("run-001")
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusRunning, found.Status)
	assert.Equal(t, exp.ID, found.ExperimentID)
}

func TestRunRepository_End(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewRunRepository(db)
	exp := testutil.TestExperiment(t, db)
	run := testutil.TestRun(t, db, exp.ID, model.RunStatusRunning)

	updated, err := repo.End(run.ID, model.RunStatusFinished, time.Now(), 12)
	require.NoError(t, err)
	assert.True(t, updated)

	found, err := repo.GetByID(run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusFinished, found.Status)
	assert.NotNil(t, found.EndedAt)
	assert.Equal(t, 12, found.ElapsedSeconds)
}

func TestRunRepository_End_OnlyOnce(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewRunRepository(db)
	exp := testutil.TestExperiment(t, db)
	run := testutil.TestRun(t, db, exp.ID, model.RunStatusRunning)

	updated, err := repo.End(run.ID, model.RunStatusFailed, time.Now(), 3)
	require.NoError(t, err)
	assert.True(t, updated)

	// 第二次终结不生效，终态不可被改写
	updated, err = repo.End(run.ID, model.RunStatusFinished, time.Now(), 5)
	require.NoError(t, err)
	assert.False(t, updated)

	found, err := repo.GetByID(run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusFailed, found.Status)
}

func TestRunRepository_ListByExperiment(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewRunRepository(db)
	exp1 := testutil.TestExperiment(t, db)
	exp2 := testutil.TestExperiment(t, db)

	testutil.TestRun(t, db, exp1.ID, model.RunStatusFinished)
	testutil.TestRun(t, db, exp1.ID, model.RunStatusRunning)
	testutil.TestRun(t, db, exp2.ID, model.RunStatusRunning)

	runs, err := repo.ListByExperiment(exp1.ID)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestRunRepository_UpsertMetric(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewRunRepository(db)
	exp := testutil.TestExperiment(t, db)
	run := testutil.TestRun(t, db, exp.ID, model.RunStatusRunning)

	require.NoError(t, repo.UpsertMetric(run.ID, "log_loss", 0.42))
	require.NoError(t, repo.UpsertMetric(run.ID, "AUC", 0.88))

	// 同名指标覆盖为最新值
	require.NoError(t, repo.UpsertMetric(run.ID, "log_loss", 0.31))

	metrics, err := repo.GetMetrics(run.ID)
	require.NoError(t, err)
	require.Len(t, metrics, 2)

	byName := make(map[string]float64)
	for _, m := range metrics {
		byName[m.Name] = m.Value
	}
	assert.Equal(t, 0.31, byName["log_loss"])
	assert.Equal(t, 0.88, byName["AUC"])
}
