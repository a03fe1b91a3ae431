package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
)

const (
	ChannelTrainProgress = "train_progress"
)

// ProgressMessage 训练进度消息
type ProgressMessage struct {
	Type           string `json:"type"`
	JobID          int64  `json:"job_id"`
	RunID          string `json:"run_id,omitempty"`
	ExperimentName string `json:"experiment_name"`
	Status         string `json:"status"`
	Step           string `json:"step"`
	Progress       int    `json:"progress"`
	Message        string `json:"message,omitempty"`
	Error          string `json:"error,omitempty"`
}

// 进度阶段常量
const (
	StepLoading    = "loading"
	StepTraining   = "training"
	StepPublishing = "publishing"
	StepDone       = "done"
)

// 阶段对应的进度百分比
var StepProgress = map[string]int{
	StepLoading:    10,
	StepTraining:   50,
	StepPublishing: 90,
	StepDone:       100,
}

// 阶段对应的消息
var StepMessages = map[string]string{
	StepLoading:    "正在加载训练数据",
	StepTraining:   "正在训练候选模型",
	StepPublishing: "正在发布模型与排行榜",
	StepDone:       "训练完成",
}

// Publisher Redis 发布者
type Publisher struct {
	client *redis.Client
}

// NewPublisher 创建发布者
func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

// PublishProgress 发布进度消息
func (p *Publisher) PublishProgress(ctx context.Context, msg *ProgressMessage) error {
	msg.Type = "train_progress"

	// 自动填充进度和消息
	if msg.Progress == 0 && msg.Step != "" {
		if progress, ok := StepProgress[msg.Step]; ok {
			msg.Progress = progress
		}
	}
	if msg.Message == "" && msg.Step != "" {
		if message, ok := StepMessages[msg.Step]; ok {
			msg.Message = message
		}
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal progress message: %w", err)
	}

	return p.client.Publish(ctx, ChannelTrainProgress, data).Err()
}

// Subscriber Redis 订阅者
type Subscriber struct {
	client *redis.Client
}

// NewSubscriber 创建订阅者
func NewSubscriber(client *redis.Client) *Subscriber {
	return &Subscriber{client: client}
}

// Subscribe 订阅进度消息
func (s *Subscriber) Subscribe(ctx context.Context, handler func(*ProgressMessage)) error {
	pubsub := s.client.Subscribe(ctx, ChannelTrainProgress)
	defer pubsub.Close()

	ch := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}

			var progressMsg ProgressMessage
			if err := json.Unmarshal([]byte(msg.Payload), &progressMsg); err != nil {
				continue // 忽略解析错误
			}

			handler(&progressMsg)
		}
	}
}
