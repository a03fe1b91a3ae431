package dto

// SubmitTrainRequest 提交训练任务
type SubmitTrainRequest struct {
	ExperimentName string `json:"experiment_name"`
	TargetColumn   string `json:"target_column" binding:"required"`
	MaxModels      int    `json:"max_models"`
	InputPath      string `json:"input_path" binding:"required"`
}

// LoginRequest 操作员登录
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse 登录结果
type LoginResponse struct {
	Token string `json:"token"`
}
