package tracking

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wzf2c/automl_go_server/internal/artifact"
	"github.com/wzf2c/automl_go_server/internal/model"
	"github.com/wzf2c/automl_go_server/internal/repository"
)

var (
	// ErrRegistryUnavailable 跟踪存储不可达
	ErrRegistryUnavailable = errors.New("跟踪存储不可用")
	// ErrNestedRun 同一会话中已有未关闭的 Run
	ErrNestedRun = errors.New("当前会话已有运行中的 Run")
	// ErrClosedRun 对已终结的 Run 写入指标或 artifact
	ErrClosedRun = errors.New("Run 已关闭，指标与 artifact 不可再修改")
)

// Store 跟踪存储客户端：实验注册、Run 生命周期、指标与 artifact 记录。
// Experiment/Run 以显式值在调用间传递，没有进程级的隐式当前 Run。
type Store struct {
	expRepo   *repository.ExperimentRepository
	runRepo   *repository.RunRepository
	artifacts artifact.Store
}

func NewStore(db *gorm.DB, artifacts artifact.Store) *Store {
	return &Store{
		expRepo:   repository.NewExperimentRepository(db),
		runRepo:   repository.NewRunRepository(db),
		artifacts: artifacts,
	}
}

// CreateOrGetExperiment 按名称解析实验，首次引用时创建，幂等。
// 同名并发创建时至多一方成功，另一方得到胜者的实验。
func (s *Store) CreateOrGetExperiment(name string) (*model.Experiment, error) {
	exp, err := s.expRepo.CreateOrGet(name, s.artifacts.Root())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrRegistryUnavailable, err)
	}
	return exp, nil
}

// StartRun 在实验下开启新 Run：分配 run_id，计算独占的 artifact 命名空间
func (s *Store) StartRun(exp *model.Experiment) (*model.Run, error) {
	runID := uuid.NewString()
	run := &model.Run{
		ID:           runID,
		ExperimentID: exp.ID,
		Status:       model.RunStatusRunning,
		ArtifactURI:  s.artifacts.RunNamespace(exp.ID, runID),
		StartedAt:    time.Now(),
	}

	if err := s.runRepo.Create(run); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRegistryUnavailable, err)
	}
	return run, nil
}

// LogMetric 记录标量指标，仅在 Run 运行期间有效
func (s *Store) LogMetric(run *model.Run, name string, value float64) error {
	if run.Status != model.RunStatusRunning {
		return ErrClosedRun
	}
	if err := s.runRepo.UpsertMetric(run.ID, name, value); err != nil {
		return fmt.Errorf("%w: %v", ErrRegistryUnavailable, err)
	}
	return nil
}

// LogArtifact 将本地文件发布到 Run 的 artifact 命名空间下
func (s *Store) LogArtifact(run *model.Run, localPath, subpath string) error {
	if run.Status != model.RunStatusRunning {
		return ErrClosedRun
	}
	return s.artifacts.LogArtifact(run.ArtifactURI, localPath, subpath)
}

// GetArtifactURI 查询 Run 内某个 subpath 的实际存储位置
func (s *Store) GetArtifactURI(run *model.Run, subpath string) string {
	return s.artifacts.GetArtifactURI(run.ArtifactURI, subpath)
}

// EndRun 将 Run 置为终态并冻结其指标与 artifact 集合。
// 每个 Run 必须且只能关闭一次；重复关闭返回 ErrClosedRun。
func (s *Store) EndRun(run *model.Run, status string) error {
	if status != model.RunStatusFinished && status != model.RunStatusFailed {
		return fmt.Errorf("invalid terminal status: %s", status)
	}

	endedAt := time.Now()
	elapsed := int(endedAt.Sub(run.StartedAt).Seconds())

	updated, err := s.runRepo.End(run.ID, status, endedAt, elapsed)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRegistryUnavailable, err)
	}
	if !updated {
		return ErrClosedRun
	}

	run.Status = status
	run.EndedAt = &endedAt
	run.ElapsedSeconds = elapsed
	return nil
}

// GetRun 读取 Run
func (s *Store) GetRun(runID string) (*model.Run, error) {
	return s.runRepo.GetByID(runID)
}

// GetMetrics 读取 Run 的全部指标
func (s *Store) GetMetrics(runID string) ([]*model.RunMetric, error) {
	return s.runRepo.GetMetrics(runID)
}
