package controller

import (
	"net/http"

	"x-lotto/logger"
	"x-lotto/web/entity"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
)

func jsonMsg(c *gin.Context, msg string, err error) {
	jsonMsgObj(c, msg, nil, err)
}

func jsonObj(c *gin.Context, obj any, err error) {
	jsonMsgObj(c, "", obj, err)
}

func jsonMsgObj(c *gin.Context, msg string, obj any, err error) {
	m := entity.Msg{
		Obj: obj,
	}
	if err == nil {
		m.Success = true
		if msg != "" {
			m.Msg = msg + I18nWeb(c, "success")
		}
	} else {
		m.Success = false
		m.Msg = msg + I18nWeb(c, "fail") + ": " + err.Error()
		logger.Warning(msg+I18nWeb(c, "fail")+": ", err)
	}
	writeJSON(c, http.StatusOK, m)
}

// jsonInfo 返回成功的响应，msg 原样作为提示文本。
func jsonInfo(c *gin.Context, msg string, obj any) {
	writeJSON(c, http.StatusOK, entity.Msg{
		Success: true,
		Msg:     msg,
		Obj:     obj,
	})
}

func pureJsonMsg(c *gin.Context, statusCode int, success bool, msg string) {
	writeJSON(c, statusCode, entity.Msg{
		Success: success,
		Msg:     msg,
	})
}

func writeJSON(c *gin.Context, statusCode int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		logger.Error("encode response failed:", err)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.Data(statusCode, "application/json; charset=utf-8", data)
}
