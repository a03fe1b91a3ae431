package schema

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/wzf2c/automl_go_server/internal/frame"
)

var ErrNoColumns = fmt.Errorf("数据帧没有可读取的列")

// Snapshot 训练时刻的输入 schema 快照：列名 → 推断类型。
// 必须在目标列因子化之前捕获，预测管线以它校验新数据。
type Snapshot map[string]string

// Capture 从已加载的数据帧读取列类型映射，不修改数据帧
func Capture(f *frame.Frame) (Snapshot, error) {
	types := f.Types()
	if len(types) == 0 {
		return nil, ErrNoColumns
	}

	snap := make(Snapshot, len(types))
	for name, typ := range types {
		snap[name] = typ
	}
	return snap, nil
}

// Persist 将快照写入 JSON 文件，已存在的文件被覆盖
func (s Snapshot) Persist(destPath string) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal column types: %w", err)
	}

	if err := os.WriteFile(destPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write column types to %s: %w", destPath, err)
	}
	return nil
}

// Load 从 JSON 文件读回快照，与 Persist 构成往返
func Load(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read column types from %s: %w", path, err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse column types file: %w", err)
	}
	return snap, nil
}

// Equal 比较两个快照是否一致
func (s Snapshot) Equal(other Snapshot) bool {
	if len(s) != len(other) {
		return false
	}
	for name, typ := range s {
		if other[name] != typ {
			return false
		}
	}
	return true
}
