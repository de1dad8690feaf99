package controller

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"x-lotto/lottery"
	"x-lotto/web/locale"
	"x-lotto/web/service"

	"github.com/gin-gonic/gin"
)

type DrawController struct {
	BaseController

	drawService *service.DrawService
}

type noticeView struct {
	Level service.NoticeLevel `json:"level"`
	Title string              `json:"title"`
	Body  string              `json:"body"`
	Time  time.Time           `json:"time"`
}

func NewDrawController(g *gin.RouterGroup, drawService *service.DrawService) *DrawController {
	a := &DrawController{drawService: drawService}
	a.initRouter(g)
	return a
}

func (a *DrawController) initRouter(g *gin.RouterGroup) {
	g.GET("/status", a.status)
	g.GET("/notices", a.notices)

	g.POST("/start", a.start)
	g.POST("/now", a.drawNow)
	g.POST("/reset", a.reset)
	g.POST("/discard", a.discard)
	g.POST("/configure", a.configure)
	g.POST("/clear", a.clear)
}

func (a *DrawController) status(c *gin.Context) {
	jsonObj(c, a.drawService.Status(), nil)
}

func (a *DrawController) start(c *gin.Context) {
	err := a.drawService.StartDraw()
	a.drawResult(c, I18nWeb(c, "pages.draw.start"), a.drawService.Status(), err)
}

func (a *DrawController) drawNow(c *gin.Context) {
	n, err := a.drawService.DrawNow()
	a.drawResult(c, I18nWeb(c, "pages.draw.now"), n, err)
}

// drawResult 把“已全部抽完”作为提示返回，而不是失败。
func (a *DrawController) drawResult(c *gin.Context, msg string, obj any, err error) {
	if errors.Is(err, lottery.ErrDrawComplete) {
		universe := "Universe==" + strconv.Itoa(a.drawService.Status().Session.UniverseSize)
		jsonInfo(c, I18nWeb(c, "notice.complete.title")+" "+I18nWeb(c, "notice.complete.body", universe), obj)
		return
	}
	jsonMsgObj(c, msg, obj, err)
}

func (a *DrawController) reset(c *gin.Context) {
	entry, archived, err := a.drawService.Reset()
	if !archived {
		jsonMsg(c, I18nWeb(c, "pages.draw.reset"), err)
		return
	}
	jsonMsgObj(c, I18nWeb(c, "pages.draw.reset"), entry, err)
}

func (a *DrawController) discard(c *gin.Context) {
	err := a.drawService.Discard()
	jsonMsg(c, I18nWeb(c, "pages.draw.discard"), err)
}

func (a *DrawController) configure(c *gin.Context) {
	// 非数字的输入按 0 处理，由服务层拒绝并给出提示
	n, err := strconv.Atoi(strings.TrimSpace(c.PostForm("universeSize")))
	if err != nil {
		n = 0
	}
	err = a.drawService.Configure(n)
	jsonMsgObj(c, I18nWeb(c, "pages.draw.configure"), a.drawService.Status(), err)
}

func (a *DrawController) clear(c *gin.Context) {
	err := a.drawService.ClearAll()
	jsonMsg(c, I18nWeb(c, "pages.draw.clear"), err)
}

func (a *DrawController) notices(c *gin.Context) {
	lang := locale.Lang(c)
	pending := a.drawService.Notices()
	views := make([]noticeView, 0, len(pending))
	for _, n := range pending {
		views = append(views, noticeView{
			Level: n.Level,
			Title: locale.I18n(lang, n.Key+".title", n.Params...),
			Body:  locale.I18n(lang, n.Key+".body", n.Params...),
			Time:  n.Time,
		})
	}
	jsonObj(c, views, nil)
}
