package tracking

import (
	"github.com/wzf2c/automl_go_server/internal/model"
)

// Session 单个编排线程的 Run 上下文。同一时刻至多持有一个活跃 Run，
// 活跃 Run 未关闭时再次 StartRun 返回 ErrNestedRun。
type Session struct {
	store  *Store
	active *model.Run
}

func NewSession(store *Store) *Session {
	return &Session{store: store}
}

func (s *Session) Store() *Store {
	return s.store
}

// StartRun 开启新 Run 并登记为当前会话的活跃 Run
func (s *Session) StartRun(exp *model.Experiment) (*model.Run, error) {
	if s.active != nil && s.active.Status == model.RunStatusRunning {
		return nil, ErrNestedRun
	}

	run, err := s.store.StartRun(exp)
	if err != nil {
		return nil, err
	}
	s.active = run
	return run, nil
}

// EndRun 关闭 Run 并释放会话的活跃位
func (s *Session) EndRun(run *model.Run, status string) error {
	err := s.store.EndRun(run, status)
	if s.active != nil && s.active.ID == run.ID {
		s.active = nil
	}
	return err
}

// Active 返回当前活跃 Run，无活跃 Run 时为 nil
func (s *Session) Active() *model.Run {
	return s.active
}
