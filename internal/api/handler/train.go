package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/wzf2c/automl_go_server/internal/model/dto"
	"github.com/wzf2c/automl_go_server/internal/pkg/response"
	"github.com/wzf2c/automl_go_server/internal/service"
)

type TrainHandler struct {
	jobService *service.JobService
}

func NewTrainHandler(jobService *service.JobService) *TrainHandler {
	return &TrainHandler{jobService: jobService}
}

// Submit 提交训练任务
// POST /api/v1/train
func (h *TrainHandler) Submit(c *gin.Context) {
	var req dto.SubmitTrainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	job, err := h.jobService.Submit(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInputMissing) {
			response.ParamError(c, err.Error())
		} else {
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, job)
}

// Get 训练任务详情
// GET /api/v1/jobs/:id
func (h *TrainHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的任务 ID")
		return
	}

	job, err := h.jobService.Get(id)
	if err != nil {
		if errors.Is(err, service.ErrJobNotFound) {
			response.NotFoundError(c, err.Error())
		} else {
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, job)
}

// List 训练任务列表
// GET /api/v1/jobs
func (h *TrainHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	status := c.Query("status")

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	items, total, err := h.jobService.List(page, pageSize, status)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.SuccessPage(c, total, page, pageSize, items)
}
