package frame

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// 列类型标签，与训练引擎的 schema 约定一致
const (
	TypeInt    = "int"
	TypeReal   = "real"
	TypeEnum   = "enum"
	TypeString = "string"
)

var (
	ErrEmptyFrame    = fmt.Errorf("数据文件没有任何列")
	ErrColumnUnknown = fmt.Errorf("列不存在")
)

// Frame 已加载的训练数据帧：有序列名 + 列类型映射。
// 单元格数据不驻留内存，训练引擎直接消费 SourcePath 指向的原始文件。
type Frame struct {
	SourcePath string
	NumRows    int

	columns []string
	types   map[string]string
}

// New 从已知的列与类型构造数据帧（供引擎适配层与测试使用）
func New(sourcePath string, columns []string, types map[string]string) *Frame {
	t := make(map[string]string, len(types))
	for k, v := range types {
		t[k] = v
	}
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Frame{
		SourcePath: sourcePath,
		columns:    cols,
		types:      t,
	}
}

// Load 读取 CSV 文件并推断每列类型。文件不存在时返回包装了
// os.ErrNotExist 的错误，调用方可用 errors.Is 判断。
func Load(path string) (*Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("training file not found: %s: %w", path, os.ErrNotExist)
		}
		return nil, fmt.Errorf("failed to open training file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, ErrEmptyFrame
		}
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	if len(header) == 0 {
		return nil, ErrEmptyFrame
	}

	columns := make([]string, len(header))
	for i, name := range header {
		columns[i] = strings.TrimSpace(name)
	}

	inferers := make([]*typeInferer, len(columns))
	for i := range inferers {
		inferers[i] = newTypeInferer()
	}

	numRows := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv row: %w", err)
		}
		for i, cell := range record {
			if i < len(inferers) {
				inferers[i].observe(strings.TrimSpace(cell))
			}
		}
		numRows++
	}

	types := make(map[string]string, len(columns))
	for i, name := range columns {
		types[name] = inferers[i].result(numRows)
	}

	return &Frame{
		SourcePath: path,
		NumRows:    numRows,
		columns:    columns,
		types:      types,
	}, nil
}

// Columns 按文件中的出现顺序返回列名
func (f *Frame) Columns() []string {
	out := make([]string, len(f.columns))
	copy(out, f.columns)
	return out
}

// Types 返回列名到类型标签的映射副本
func (f *Frame) Types() map[string]string {
	out := make(map[string]string, len(f.types))
	for k, v := range f.types {
		out[k] = v
	}
	return out
}

func (f *Frame) HasColumn(name string) bool {
	_, ok := f.types[name]
	return ok
}

// AsCategorical 将指定列强制标记为枚举类型（分类任务中目标列的因子化）
func (f *Frame) AsCategorical(name string) error {
	if !f.HasColumn(name) {
		return fmt.Errorf("%w: %s", ErrColumnUnknown, name)
	}
	f.types[name] = TypeEnum
	return nil
}

// typeInferer 扫描单列所有取值并推断类型
type typeInferer struct {
	sawValue bool
	allInt   bool
	allReal  bool
	distinct map[string]struct{}
}

func newTypeInferer() *typeInferer {
	return &typeInferer{
		allInt:   true,
		allReal:  true,
		distinct: make(map[string]struct{}),
	}
}

func (ti *typeInferer) observe(cell string) {
	if cell == "" {
		return // 缺失值不参与推断
	}
	ti.sawValue = true

	if ti.allInt {
		if _, err := strconv.ParseInt(cell, 10, 64); err != nil {
			ti.allInt = false
		}
	}
	if ti.allReal {
		if _, err := strconv.ParseFloat(cell, 64); err != nil {
			ti.allReal = false
		}
	}
	if !ti.allReal && len(ti.distinct) <= maxEnumCardinality {
		ti.distinct[cell] = struct{}{}
	}
}

// 非数值列基数超过该值时视为自由文本而非枚举
const maxEnumCardinality = 1024

func (ti *typeInferer) result(numRows int) string {
	if !ti.sawValue {
		return TypeString
	}
	if ti.allInt {
		return TypeInt
	}
	if ti.allReal {
		return TypeReal
	}
	if len(ti.distinct) > maxEnumCardinality {
		return TypeString
	}
	// 每行取值都不同的非数值列按自由文本处理（如 ID、备注）
	if numRows > 1 && len(ti.distinct) == numRows {
		return TypeString
	}
	return TypeEnum
}
