package tracking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wzf2c/automl_go_server/internal/model"
)

func TestSession_StartRun_Nested(t *testing.T) {
	store := setupStore(t)
	session := NewSession(store)

	exp, err := store.CreateOrGetExperiment("exp-A")
	require.NoError(t, err)

	run, err := session.StartRun(exp)
	require.NoError(t, err)
	assert.Equal(t, run.ID, session.Active().ID)

	// 活跃 Run 未关闭时禁止嵌套
	_, err = session.StartRun(exp)
	assert.ErrorIs(t, err, ErrNestedRun)
}

func TestSession_EndRun_FreesSlot(t *testing.T) {
	store := setupStore(t)
	session := NewSession(store)

	exp, err := store.CreateOrGetExperiment("exp-A")
	require.NoError(t, err)

	first, err := session.StartRun(exp)
	require.NoError(t, err)
	require.NoError(t, session.EndRun(first, model.RunStatusFinished))
	assert.Nil(t, session.Active())

	second, err := session.StartRun(exp)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestSession_EndRun_FailedAlsoFreesSlot(t *testing.T) {
	store := setupStore(t)
	session := NewSession(store)

	exp, err := store.CreateOrGetExperiment("exp-A")
	require.NoError(t, err)

	run, err := session.StartRun(exp)
	require.NoError(t, err)
	require.NoError(t, session.EndRun(run, model.RunStatusFailed))

	_, err = session.StartRun(exp)
	assert.NoError(t, err)
}
