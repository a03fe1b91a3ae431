package artifact

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
)

// Store Run 级 artifact 存储。每个 Run 独占一个命名空间（前缀），
// 不同 Run 的命名空间互不相交。
type Store interface {
	// Root 存储的基础位置，实验的 artifact 位置由它派生
	Root() string
	// RunNamespace 计算某个 Run 独占的 artifact 命名空间
	RunNamespace(experimentID int64, runID string) string
	// LogArtifact 将 localPath 指向的文件复制到 namespace/subpath/ 下，
	// 内容相同的重复发布是幂等的
	LogArtifact(namespace, localPath, subpath string) error
	// GetArtifactURI 向存储查询 subpath 的实际位置。底层存储可能改写
	// 路径，调用方不得假设固定的命名布局。
	GetArtifactURI(namespace, subpath string) string
}

// LocalStore 本地文件系统 artifact 存储
type LocalStore struct {
	root string
}

func NewLocalStore(root string) (*LocalStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve artifact root: %w", err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("failed to create artifact root: %w", err)
	}
	return &LocalStore{root: abs}, nil
}

func (s *LocalStore) Root() string {
	return s.root
}

func (s *LocalStore) RunNamespace(experimentID int64, runID string) string {
	return filepath.Join(s.root, strconv.FormatInt(experimentID, 10), runID, "artifacts")
}

func (s *LocalStore) LogArtifact(namespace, localPath, subpath string) error {
	src, err := os.Open(localPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("artifact source not found: %s: %w", localPath, os.ErrNotExist)
		}
		return fmt.Errorf("failed to open artifact source: %w", err)
	}
	defer src.Close()

	destDir := filepath.Join(namespace, subpath)
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("failed to create artifact directory: %w", err)
	}

	destPath := filepath.Join(destDir, filepath.Base(localPath))
	dest, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create artifact file: %w", err)
	}
	defer dest.Close()

	if _, err := io.Copy(dest, src); err != nil {
		return fmt.Errorf("failed to copy artifact: %w", err)
	}
	return nil
}

// GetArtifactURI 返回 file: 协议的实际存储位置
func (s *LocalStore) GetArtifactURI(namespace, subpath string) string {
	return "file:" + filepath.Join(namespace, subpath)
}
