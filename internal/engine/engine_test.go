package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wzf2c/automl_go_server/internal/frame"
)

// fakeAutoML 记录一次 Train 调用的全部入参
type fakeAutoML struct {
	called    bool
	gotTarget string
	gotPreds  []string
	gotPolicy Policy
	gotTypes  map[string]string
	result    *Result
	err       error
}

func (f *fakeAutoML) Train(_ context.Context, fr *frame.Frame, target string, predictors []string, policy Policy) (*Result, error) {
	f.called = true
	f.gotTarget = target
	f.gotPreds = predictors
	f.gotPolicy = policy
	f.gotTypes = fr.Types()
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func defaultPolicy() Policy {
	return Policy{
		Seed:           42,
		BalanceClasses: true,
		SortMetric:     "logloss",
		ExcludedAlgos:  []string{"GLM", "DRF"},
	}
}

func testFrame() *frame.Frame {
	return frame.New("train.csv",
		[]string{"age", "income", "claim"},
		map[string]string{"age": frame.TypeInt, "income": frame.TypeReal, "claim": frame.TypeInt})
}

func TestAdapter_Train_InvalidTarget(t *testing.T) {
	fake := &fakeAutoML{}
	adapter := NewAdapter(fake, defaultPolicy())

	_, err := adapter.Train(context.Background(), testFrame(), "no_such_column", 5)

	assert.ErrorIs(t, err, ErrInvalidTarget)
	// 目标列校验失败时不得触达引擎
	assert.False(t, fake.called)
}

func TestAdapter_Train_DerivesPredictors(t *testing.T) {
	fake := &fakeAutoML{result: &Result{}}
	adapter := NewAdapter(fake, defaultPolicy())

	_, err := adapter.Train(context.Background(), testFrame(), "claim", 5)
	require.NoError(t, err)

	assert.Equal(t, "claim", fake.gotTarget)
	assert.Equal(t, []string{"age", "income"}, fake.gotPreds)
}

func TestAdapter_Train_TargetFactorized(t *testing.T) {
	fake := &fakeAutoML{result: &Result{}}
	adapter := NewAdapter(fake, defaultPolicy())

	f := testFrame()
	_, err := adapter.Train(context.Background(), f, "claim", 5)
	require.NoError(t, err)

	// 引擎看到的目标列已因子化为枚举，其余列类型不变
	assert.Equal(t, frame.TypeEnum, fake.gotTypes["claim"])
	assert.Equal(t, frame.TypeInt, fake.gotTypes["age"])
	assert.Equal(t, frame.TypeReal, fake.gotTypes["income"])
}

func TestAdapter_Train_PolicyFromDefaults(t *testing.T) {
	fake := &fakeAutoML{result: &Result{}}
	adapter := NewAdapter(fake, defaultPolicy())

	_, err := adapter.Train(context.Background(), testFrame(), "claim", 8)
	require.NoError(t, err)

	assert.Equal(t, 8, fake.gotPolicy.MaxModels)
	assert.Equal(t, int64(42), fake.gotPolicy.Seed)
	assert.True(t, fake.gotPolicy.BalanceClasses)
	assert.Equal(t, "logloss", fake.gotPolicy.SortMetric)
	assert.Equal(t, []string{"GLM", "DRF"}, fake.gotPolicy.ExcludedAlgos)
}

func TestAdapter_Train_EngineError(t *testing.T) {
	fake := &fakeAutoML{err: ErrTraining}
	adapter := NewAdapter(fake, defaultPolicy())

	_, err := adapter.Train(context.Background(), testFrame(), "claim", 5)
	assert.ErrorIs(t, err, ErrTraining)
}
