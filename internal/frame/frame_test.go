package frame

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "train.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeCSV(t, "age,income,claim\n34,52000.5,yes\n45,61000,no\n29,38000,yes\n")

	f, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"age", "income", "claim"}, f.Columns())
	assert.Equal(t, 3, f.NumRows)
	assert.Equal(t, path, f.SourcePath)

	types := f.Types()
	assert.Equal(t, TypeInt, types["age"])
	assert.Equal(t, TypeReal, types["income"])
	assert.Equal(t, TypeEnum, types["claim"])
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"))

	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoad_EmptyFile(t *testing.T) {
	path := writeCSV(t, "")

	_, err := Load(path)
	assert.ErrorIs(t, err, ErrEmptyFrame)
}

func TestLoad_MissingValuesIgnoredForInference(t *testing.T) {
	path := writeCSV(t, "a,b\n1,\n2,x\n3,y\n")

	f, err := Load(path)
	require.NoError(t, err)

	types := f.Types()
	assert.Equal(t, TypeInt, types["a"])
	assert.Equal(t, TypeEnum, types["b"])
}

func TestLoad_AllDistinctStringsAreFreeText(t *testing.T) {
	path := writeCSV(t, "id,claim\nu-1,yes\nu-2,no\nu-3,yes\n")

	f, err := Load(path)
	require.NoError(t, err)

	types := f.Types()
	assert.Equal(t, TypeString, types["id"])
	assert.Equal(t, TypeEnum, types["claim"])
}

func TestAsCategorical(t *testing.T) {
	path := writeCSV(t, "age,claim\n34,1\n45,0\n")

	f, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, TypeInt, f.Types()["claim"])

	// 数值目标列因子化后类型变为 enum
	require.NoError(t, f.AsCategorical("claim"))
	assert.Equal(t, TypeEnum, f.Types()["claim"])

	err = f.AsCategorical("nonexistent")
	assert.ErrorIs(t, err, ErrColumnUnknown)
}

func TestHasColumn(t *testing.T) {
	f := New("train.csv", []string{"a", "b"}, map[string]string{"a": TypeInt, "b": TypeEnum})

	assert.True(t, f.HasColumn("a"))
	assert.False(t, f.HasColumn("c"))
}

func TestTypes_ReturnsCopy(t *testing.T) {
	f := New("train.csv", []string{"a"}, map[string]string{"a": TypeInt})

	types := f.Types()
	types["a"] = TypeEnum

	assert.Equal(t, TypeInt, f.Types()["a"])
}
