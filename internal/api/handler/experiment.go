package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/wzf2c/automl_go_server/internal/pkg/response"
	"github.com/wzf2c/automl_go_server/internal/service"
)

type ExperimentHandler struct {
	experimentService *service.ExperimentService
}

func NewExperimentHandler(experimentService *service.ExperimentService) *ExperimentHandler {
	return &ExperimentHandler{experimentService: experimentService}
}

// List 实验列表
// GET /api/v1/experiments
func (h *ExperimentHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	items, total, err := h.experimentService.List(page, pageSize)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.SuccessPage(c, total, page, pageSize, items)
}

// Get 实验详情
// GET /api/v1/experiments/:id
func (h *ExperimentHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的实验 ID")
		return
	}

	exp, err := h.experimentService.Get(id)
	if err != nil {
		if errors.Is(err, service.ErrExperimentNotFound) {
			response.NotFoundError(c, err.Error())
		} else {
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, exp)
}

// ListRuns 实验下的全部 Run
// GET /api/v1/experiments/:id/runs
func (h *ExperimentHandler) ListRuns(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的实验 ID")
		return
	}

	runs, err := h.experimentService.ListRuns(id)
	if err != nil {
		if errors.Is(err, service.ErrExperimentNotFound) {
			response.NotFoundError(c, err.Error())
		} else {
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, runs)
}

// GetRun Run 详情（含指标）
// GET /api/v1/runs/:run_id
func (h *ExperimentHandler) GetRun(c *gin.Context) {
	detail, err := h.experimentService.GetRun(c.Param("run_id"))
	if err != nil {
		if errors.Is(err, service.ErrRunNotFound) {
			response.NotFoundError(c, err.Error())
		} else {
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, detail)
}

// GetLeaderboard Run 的排行榜
// GET /api/v1/runs/:run_id/leaderboard
func (h *ExperimentHandler) GetLeaderboard(c *gin.Context) {
	view, err := h.experimentService.GetLeaderboard(c.Param("run_id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRunNotFound), errors.Is(err, service.ErrLeaderboardNotFound):
			response.NotFoundError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, view)
}
