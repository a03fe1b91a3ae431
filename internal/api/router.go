package api

import (
	"github.com/gin-gonic/gin"

	"github.com/wzf2c/automl_go_server/config"
	"github.com/wzf2c/automl_go_server/internal/api/handler"
	"github.com/wzf2c/automl_go_server/internal/api/middleware"
)

type Router struct {
	authHandler       *handler.AuthHandler
	experimentHandler *handler.ExperimentHandler
	trainHandler      *handler.TrainHandler
	websocketHandler  *handler.WebSocketHandler
	cfg               *config.Config
}

func NewRouter(
	authHandler *handler.AuthHandler,
	experimentHandler *handler.ExperimentHandler,
	trainHandler *handler.TrainHandler,
	websocketHandler *handler.WebSocketHandler,
	cfg *config.Config,
) *Router {
	return &Router{
		authHandler:       authHandler,
		experimentHandler: experimentHandler,
		trainHandler:      trainHandler,
		websocketHandler:  websocketHandler,
		cfg:               cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS(r.cfg.CORS))

	api := engine.Group("/api/v1")
	{
		// WebSocket 进度推送
		api.GET("/ws", r.websocketHandler.Handle)

		// 公开接口 - 认证
		api.POST("/auth/login", r.authHandler.Login)

		// 只读接口 - 实验与 Run
		api.GET("/experiments", r.experimentHandler.List)
		api.GET("/experiments/:id", r.experimentHandler.Get)
		api.GET("/experiments/:id/runs", r.experimentHandler.ListRuns)
		api.GET("/runs/:run_id", r.experimentHandler.GetRun)
		api.GET("/runs/:run_id/leaderboard", r.experimentHandler.GetLeaderboard)

		// 需要认证的接口 - 训练任务
		authenticated := api.Group("")
		authenticated.Use(middleware.Auth(r.cfg.JWT.Secret))
		{
			authenticated.POST("/train", r.trainHandler.Submit)
			authenticated.GET("/jobs", r.trainHandler.List)
			authenticated.GET("/jobs/:id", r.trainHandler.Get)
		}
	}

	return engine
}
