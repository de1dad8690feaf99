package controller

import (
	"x-lotto/web/locale"

	"github.com/gin-gonic/gin"
)

type BaseController struct{}

func I18nWeb(c *gin.Context, name string, params ...string) string {
	return locale.I18n(locale.Lang(c), name, params...)
}
