package controller

import (
	"net/http"

	"x-lotto/web/locale"
	"x-lotto/web/service"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

type APIController struct {
	BaseController
	drawController    *DrawController
	historyController *HistoryController
	serverController  *ServerController
}

func NewAPIController(g *gin.RouterGroup, drawService *service.DrawService, serverService *service.ServerService, shareService *service.ShareService) *APIController {
	a := &APIController{}
	a.initRouter(g, drawService, serverService, shareService)
	return a
}

func (a *APIController) initRouter(g *gin.RouterGroup, drawService *service.DrawService, serverService *service.ServerService, shareService *service.ShareService) {
	api := g.Group("/panel/api")

	a.drawController = NewDrawController(api.Group("/draw"), drawService)
	a.historyController = NewHistoryController(api.Group("/history"), drawService, shareService)
	a.serverController = NewServerController(api.Group("/server"), serverService)

	api.POST("/lang", a.setLang)
}

// setLang 把用户选择的语言写入 session cookie。
func (a *APIController) setLang(c *gin.Context) {
	lang := c.PostForm("lang")
	if lang == "" {
		pureJsonMsg(c, http.StatusBadRequest, false, I18nWeb(c, "invalidParam"))
		return
	}
	matched := locale.Match(lang)
	s := sessions.Default(c)
	s.Set(locale.SessionKey, matched)
	err := s.Save()
	jsonMsgObj(c, I18nWeb(c, "pages.server.lang"), matched, err)
}
