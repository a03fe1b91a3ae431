package tracking

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wzf2c/automl_go_server/internal/artifact"
	"github.com/wzf2c/automl_go_server/internal/model"
	"github.com/wzf2c/automl_go_server/internal/testutil"
)

func setupStore(t *testing.T) *Store {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	artifacts, err := artifact.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	return NewStore(db, artifacts)
}

func TestStore_CreateOrGetExperiment_Idempotent(t *testing.T) {
	store := setupStore(t)

	first, err := store.CreateOrGetExperiment("exp-A")
	require.NoError(t, err)

	second, err := store.CreateOrGetExperiment("exp-A")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
}

func TestStore_StartRun_NamespaceIsolation(t *testing.T) {
	store := setupStore(t)

	exp, err := store.CreateOrGetExperiment("exp-A")
	require.NoError(t, err)

	run1, err := store.StartRun(exp)
	require.NoError(t, err)
	run2, err := store.StartRun(exp)
	require.NoError(t, err)

	assert.NotEqual(t, run1.ID, run2.ID)
	assert.NotEqual(t, run1.ArtifactURI, run2.ArtifactURI)
	assert.False(t, strings.HasPrefix(run1.ArtifactURI, run2.ArtifactURI))
	assert.False(t, strings.HasPrefix(run2.ArtifactURI, run1.ArtifactURI))
	assert.Equal(t, model.RunStatusRunning, run1.Status)
}

func TestStore_LogMetric(t *testing.T) {
	store := setupStore(t)

	exp, err := store.CreateOrGetExperiment("exp-A")
	require.NoError(t, err)
	run, err := store.StartRun(exp)
	require.NoError(t, err)

	require.NoError(t, store.LogMetric(run, "log_loss", 0.31))
	require.NoError(t, store.LogMetric(run, "AUC", 0.87))

	metrics, err := store.GetMetrics(run.ID)
	require.NoError(t, err)
	assert.Len(t, metrics, 2)
}

func TestStore_LogMetric_AfterEndRun(t *testing.T) {
	store := setupStore(t)

	exp, err := store.CreateOrGetExperiment("exp-A")
	require.NoError(t, err)
	run, err := store.StartRun(exp)
	require.NoError(t, err)

	require.NoError(t, store.EndRun(run, model.RunStatusFinished))

	// 终结后的 Run 指标被冻结
	err = store.LogMetric(run, "log_loss", 0.5)
	assert.ErrorIs(t, err, ErrClosedRun)
}

func TestStore_EndRun_OnlyOnce(t *testing.T) {
	store := setupStore(t)

	exp, err := store.CreateOrGetExperiment("exp-A")
	require.NoError(t, err)
	run, err := store.StartRun(exp)
	require.NoError(t, err)

	require.NoError(t, store.EndRun(run, model.RunStatusFailed))

	err = store.EndRun(run, model.RunStatusFinished)
	assert.ErrorIs(t, err, ErrClosedRun)

	found, err := store.GetRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusFailed, found.Status)
}

func TestStore_EndRun_InvalidStatus(t *testing.T) {
	store := setupStore(t)

	exp, err := store.CreateOrGetExperiment("exp-A")
	require.NoError(t, err)
	run, err := store.StartRun(exp)
	require.NoError(t, err)

	assert.Error(t, store.EndRun(run, "paused"))
}

func TestStore_LogArtifact(t *testing.T) {
	store := setupStore(t)

	exp, err := store.CreateOrGetExperiment("exp-A")
	require.NoError(t, err)
	run, err := store.StartRun(exp)
	require.NoError(t, err)

	src := filepath.Join(t.TempDir(), "train.csv")
	require.NoError(t, os.WriteFile(src, []byte("a\n1\n"), 0644))

	require.NoError(t, store.LogArtifact(run, src, "input_data"))

	_, err = os.Stat(filepath.Join(run.ArtifactURI, "input_data", "train.csv"))
	assert.NoError(t, err)
}

func TestStore_LogArtifact_MissingSource(t *testing.T) {
	store := setupStore(t)

	exp, err := store.CreateOrGetExperiment("exp-A")
	require.NoError(t, err)
	run, err := store.StartRun(exp)
	require.NoError(t, err)

	err = store.LogArtifact(run, filepath.Join(t.TempDir(), "nope.csv"), "input_data")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestStore_LogArtifact_AfterEndRun(t *testing.T) {
	store := setupStore(t)

	exp, err := store.CreateOrGetExperiment("exp-A")
	require.NoError(t, err)
	run, err := store.StartRun(exp)
	require.NoError(t, err)
	require.NoError(t, store.EndRun(run, model.RunStatusFinished))

	src := filepath.Join(t.TempDir(), "late.csv")
	require.NoError(t, os.WriteFile(src, []byte("a\n"), 0644))

	err = store.LogArtifact(run, src, "input_data")
	assert.ErrorIs(t, err, ErrClosedRun)
}

func TestStore_GetArtifactURI(t *testing.T) {
	store := setupStore(t)

	exp, err := store.CreateOrGetExperiment("exp-A")
	require.NoError(t, err)
	run, err := store.StartRun(exp)
	require.NoError(t, err)

	uri := store.GetArtifactURI(run, "model")
	assert.True(t, strings.HasPrefix(uri, "file:"))
	assert.Contains(t, uri, run.ID)
}
