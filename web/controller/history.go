package controller

import (
	"errors"
	"net/http"
	"strconv"

	"x-lotto/lottery"
	"x-lotto/web/service"

	"github.com/gin-gonic/gin"
)

type HistoryController struct {
	BaseController

	drawService  *service.DrawService
	shareService *service.ShareService
}

func NewHistoryController(g *gin.RouterGroup, drawService *service.DrawService, shareService *service.ShareService) *HistoryController {
	a := &HistoryController{
		drawService:  drawService,
		shareService: shareService,
	}
	a.initRouter(g)
	return a
}

func (a *HistoryController) initRouter(g *gin.RouterGroup) {
	g.GET("", a.list)
	g.GET("/:id/qrcode", a.qrcode)
}

func (a *HistoryController) list(c *gin.Context) {
	jsonObj(c, a.drawService.History(), nil)
}

func (a *HistoryController) qrcode(c *gin.Context) {
	size, _ := strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(service.DefaultQRSize)))
	png, err := a.shareService.QRCode(c.Param("id"), size)
	if errors.Is(err, lottery.ErrEntryNotFound) {
		pureJsonMsg(c, http.StatusNotFound, false, err.Error())
		return
	}
	if err != nil {
		jsonMsg(c, I18nWeb(c, "pages.history.qrcode"), err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", png)
}
