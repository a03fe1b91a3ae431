package h2o

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/wzf2c/automl_go_server/config"
	"github.com/wzf2c/automl_go_server/internal/engine"
	"github.com/wzf2c/automl_go_server/internal/frame"
)

// Client 通过 HTTP 调用 H2O AutoML 引擎服务。
// 训练流程：上传数据和策略 → 轮询任务状态 → 拉取排行榜 → 下载模型。
type Client struct {
	baseURL      string
	httpClient   *http.Client
	pollInterval time.Duration
	timeout      time.Duration
}

func NewClient(cfg *config.EngineConfig) *Client {
	return &Client{
		baseURL:      cfg.URL,
		httpClient:   &http.Client{},
		pollInterval: time.Duration(cfg.PollIntervalSeconds) * time.Second,
		timeout:      time.Duration(cfg.TimeoutMinutes) * time.Minute,
	}
}

type trainRequest struct {
	Target         string            `json:"target"`
	Predictors     []string          `json:"predictors"`
	ColumnTypes    map[string]string `json:"column_types"`
	MaxModels      int               `json:"max_models"`
	Seed           int64             `json:"seed"`
	BalanceClasses bool              `json:"balance_classes"`
	SortMetric     string            `json:"sort_metric"`
	ExcludeAlgos   []string          `json:"exclude_algos"`
}

type trainResponse struct {
	JobID string `json:"job_id"`
}

type jobStatus struct {
	Status string `json:"status"` // running, done, failed
	Error  string `json:"error,omitempty"`
}

// Train 提交训练任务并阻塞等待完成。引擎报告的失败原样包装为
// engine.ErrTraining 返回，不在本层重试。
func (c *Client) Train(ctx context.Context, f *frame.Frame, target string, predictors []string, policy engine.Policy) (*engine.Result, error) {
	jobID, err := c.submit(ctx, f, target, predictors, policy)
	if err != nil {
		return nil, err
	}

	if err := c.waitForCompletion(ctx, jobID); err != nil {
		return nil, err
	}

	lb, err := c.fetchLeaderboard(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if len(lb.Rows) == 0 {
		return nil, fmt.Errorf("%w: 引擎未产出任何候选模型", engine.ErrTraining)
	}

	leader := &leaderModel{
		client:  c,
		jobID:   jobID,
		row:     lb.Rows[0],
		columns: lb.MetricColumns,
	}

	return &engine.Result{Leader: leader, Leaderboard: lb}, nil
}

// submit 以 multipart 上传原始 CSV 与训练策略
func (c *Client) submit(ctx context.Context, f *frame.Frame, target string, predictors []string, policy engine.Policy) (string, error) {
	src, err := os.Open(f.SourcePath)
	if err != nil {
		return "", fmt.Errorf("failed to open training file: %w", err)
	}
	defer src.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filepath.Base(f.SourcePath))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, src); err != nil {
		return "", fmt.Errorf("failed to buffer training file: %w", err)
	}

	req := trainRequest{
		Target:         target,
		Predictors:     predictors,
		ColumnTypes:    f.Types(),
		MaxModels:      policy.MaxModels,
		Seed:           policy.Seed,
		BalanceClasses: policy.BalanceClasses,
		SortMetric:     policy.SortMetric,
		ExcludeAlgos:   policy.ExcludedAlgos,
	}
	reqJSON, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal train request: %w", err)
	}
	if err := writer.WriteField("request", string(reqJSON)); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/automl", &body)
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to reach training engine: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return "", fmt.Errorf("%w: %s", engine.ErrTraining, readErrorBody(resp))
	}

	var trainResp trainResponse
	if err := json.NewDecoder(resp.Body).Decode(&trainResp); err != nil {
		return "", fmt.Errorf("failed to decode train response: %w", err)
	}
	return trainResp.JobID, nil
}

// waitForCompletion 轮询任务直到 done/failed 或超时
func (c *Client) waitForCompletion(ctx context.Context, jobID string) error {
	deadline := time.Now().Add(c.timeout)
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		status, err := c.getStatus(ctx, jobID)
		if err != nil {
			return err
		}

		switch status.Status {
		case "done":
			return nil
		case "failed":
			return fmt.Errorf("%w: %s", engine.ErrTraining, status.Error)
		}

		if time.Now().After(deadline) {
			return fmt.Errorf("%w: 训练超时（%s）", engine.ErrTraining, c.timeout)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (c *Client) getStatus(ctx context.Context, jobID string) (*jobStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/v1/automl/jobs/%s", c.baseURL, jobID), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach training engine: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s", engine.ErrTraining, readErrorBody(resp))
	}

	var status jobStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("failed to decode job status: %w", err)
	}
	return &status, nil
}

func (c *Client) fetchLeaderboard(ctx context.Context, jobID string) (*engine.Leaderboard, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/v1/automl/jobs/%s/leaderboard", c.baseURL, jobID), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach training engine: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s", engine.ErrTraining, readErrorBody(resp))
	}

	var lb engine.Leaderboard
	if err := json.NewDecoder(resp.Body).Decode(&lb); err != nil {
		return nil, fmt.Errorf("failed to decode leaderboard: %w", err)
	}
	return &lb, nil
}

func readErrorBody(resp *http.Response) string {
	data, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil || len(data) == 0 {
		return fmt.Sprintf("status code %d", resp.StatusCode)
	}
	return string(data)
}

// leaderModel 排行榜首位模型的引用实现
type leaderModel struct {
	client  *Client
	jobID   string
	row     engine.LeaderboardRow
	columns []string
}

func (m *leaderModel) ModelID() string {
	return m.row.ModelID
}

func (m *leaderModel) Metric(name string) (float64, error) {
	for i, col := range m.columns {
		if col == name {
			if i < len(m.row.Metrics) {
				return m.row.Metrics[i], nil
			}
			break
		}
	}
	return 0, fmt.Errorf("引擎未报告指标: %s", name)
}

// Save 下载序列化后的模型二进制到目录
func (m *leaderModel) Save(ctx context.Context, dir string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/v1/automl/jobs/%s/models/%s/download", m.client.baseURL, m.jobID, m.row.ModelID), nil)
	if err != nil {
		return "", err
	}

	resp, err := m.client.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to reach training engine: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to download model: %s", readErrorBody(resp))
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create model directory: %w", err)
	}

	destPath := filepath.Join(dir, m.row.ModelID+".bin")
	dest, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("failed to create model file: %w", err)
	}
	defer dest.Close()

	if _, err := io.Copy(dest, resp.Body); err != nil {
		return "", fmt.Errorf("failed to write model file: %w", err)
	}
	return destPath, nil
}
