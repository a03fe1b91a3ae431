package service

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/gorm"

	"github.com/wzf2c/automl_go_server/internal/model"
	"github.com/wzf2c/automl_go_server/internal/repository"
	"github.com/wzf2c/automl_go_server/internal/tracking"
)

var (
	ErrExperimentNotFound  = errors.New("实验不存在")
	ErrRunNotFound         = errors.New("Run 不存在")
	ErrLeaderboardNotFound = errors.New("排行榜尚未生成")
)

// ExperimentService 跟踪存储的读侧：实验、Run、指标、排行榜查询
type ExperimentService struct {
	expRepo *repository.ExperimentRepository
	runRepo *repository.RunRepository
	store   *tracking.Store
}

func NewExperimentService(expRepo *repository.ExperimentRepository, runRepo *repository.RunRepository, store *tracking.Store) *ExperimentService {
	return &ExperimentService{
		expRepo: expRepo,
		runRepo: runRepo,
		store:   store,
	}
}

func (s *ExperimentService) List(page, pageSize int) ([]*model.Experiment, int64, error) {
	return s.expRepo.List(page, pageSize)
}

func (s *ExperimentService) Get(id int64) (*model.Experiment, error) {
	exp, err := s.expRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExperimentNotFound
		}
		return nil, err
	}
	return exp, nil
}

func (s *ExperimentService) ListRuns(experimentID int64) ([]*model.Run, error) {
	if _, err := s.Get(experimentID); err != nil {
		return nil, err
	}
	return s.runRepo.ListByExperiment(experimentID)
}

// RunDetail Run 及其全部指标
type RunDetail struct {
	Run     *model.Run         `json:"run"`
	Metrics map[string]float64 `json:"metrics"`
}

func (s *ExperimentService) GetRun(runID string) (*RunDetail, error) {
	run, err := s.runRepo.GetByID(runID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRunNotFound
		}
		return nil, err
	}

	metrics, err := s.runRepo.GetMetrics(runID)
	if err != nil {
		return nil, err
	}

	detail := &RunDetail{
		Run:     run,
		Metrics: make(map[string]float64, len(metrics)),
	}
	for _, m := range metrics {
		detail.Metrics[m.Name] = m.Value
	}
	return detail, nil
}

// LeaderboardView 排行榜导出的读回结果
type LeaderboardView struct {
	Location string     `json:"location"`
	Header   []string   `json:"header,omitempty"`
	Rows     [][]string `json:"rows,omitempty"`
}

// GetLeaderboard 解析 Run 的排行榜位置；本地存储时顺带读回内容
func (s *ExperimentService) GetLeaderboard(runID string) (*LeaderboardView, error) {
	run, err := s.runRepo.GetByID(runID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRunNotFound
		}
		return nil, err
	}

	modelURI := s.store.GetArtifactURI(run, "model")
	view := &LeaderboardView{Location: modelURI + "/leaderboard.csv"}

	dir, ok := strings.CutPrefix(modelURI, "file:")
	if !ok {
		// 远端存储只返回位置，由客户端自行拉取
		return view, nil
	}

	f, err := os.Open(filepath.Join(dir, "leaderboard.csv"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrLeaderboardNotFound
		}
		return nil, fmt.Errorf("failed to open leaderboard: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse leaderboard: %w", err)
	}
	if len(records) > 0 {
		view.Header = records[0]
		view.Rows = records[1:]
	}
	return view, nil
}
