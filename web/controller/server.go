package controller

import (
	"time"

	"x-lotto/logger"
	"x-lotto/web/global"
	"x-lotto/web/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/atomic"
)

type ServerController struct {
	BaseController

	serverService *service.ServerService

	lastStatus        atomic.Pointer[service.Status]
	lastGetStatusTime atomic.Time
}

func NewServerController(g *gin.RouterGroup, serverService *service.ServerService) *ServerController {
	a := &ServerController{
		serverService: serverService,
	}
	a.lastGetStatusTime.Store(time.Now())
	a.initRouter(g)
	a.startTask()
	return a
}

func (a *ServerController) initRouter(g *gin.RouterGroup) {
	g.GET("/status", a.status)
	g.POST("/logs/:count", a.getLogs)
}

func (a *ServerController) refreshStatus() {
	a.lastStatus.Store(a.serverService.GetStatus(a.lastStatus.Load()))
}

// startTask 在有人查看状态时每 2 秒刷新一次，3 分钟无人访问后停止。
func (a *ServerController) startTask() {
	webServer := global.GetWebServer()
	if webServer == nil || webServer.GetCron() == nil {
		return
	}
	ctx := webServer.GetCtx()
	_, err := webServer.GetCron().AddFunc("@every 2s", func() {
		if ctx != nil && ctx.Err() != nil {
			return
		}
		if time.Since(a.lastGetStatusTime.Load()) > time.Minute*3 {
			return
		}
		a.refreshStatus()
	})
	if err != nil {
		logger.Warning("add status refresh task failed:", err)
	}
}

func (a *ServerController) status(c *gin.Context) {
	a.lastGetStatusTime.Store(time.Now())
	if a.lastStatus.Load() == nil {
		a.refreshStatus()
	}
	jsonObj(c, a.lastStatus.Load(), nil)
}

func (a *ServerController) getLogs(c *gin.Context) {
	count := c.Param("count")
	level := c.DefaultPostForm("level", "info")
	logs := a.serverService.GetLogs(count, level)
	jsonObj(c, logs, nil)
}
