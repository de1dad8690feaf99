package locale

import (
	"io/fs"
	"strings"

	"x-lotto/logger"
	"x-lotto/util/common"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"
)

const (
	// SessionKey 保存用户在面板里选择的语言。
	SessionKey = "lang"
	contextKey = "lang"
)

var (
	i18nBundle  *i18n.Bundle
	defaultLang = "en-US"
	supported   []language.Tag
	matcher     language.Matcher
)

// InitLocalizer 从 fsys 中加载 translation/ 下所有 .toml 翻译文件。
func InitLocalizer(fsys fs.FS, defaultLanguage string) error {
	if defaultLanguage != "" {
		defaultLang = defaultLanguage
	}
	tag, err := language.Parse(defaultLang)
	if err != nil {
		return err
	}

	bundle := i18n.NewBundle(tag)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	var tags []language.Tag
	err = fs.WalkDir(fsys, "translation", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".toml") {
			return nil
		}
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return err
		}
		mf, err := bundle.ParseMessageFileBytes(data, path)
		if err != nil {
			return err
		}
		tags = append(tags, mf.Tag)
		return nil
	})
	if err != nil {
		return err
	}
	if len(tags) == 0 {
		return common.NewError("no translation files found")
	}

	// 默认语言放在首位，matcher 无法匹配时会退回到它。
	ordered := []language.Tag{tag}
	for _, t := range tags {
		if t != tag {
			ordered = append(ordered, t)
		}
	}
	i18nBundle = bundle
	supported = ordered
	matcher = language.NewMatcher(ordered)
	return nil
}

// SupportedLanguages 返回已加载的语言标签，默认语言在前。
func SupportedLanguages() []string {
	out := make([]string, len(supported))
	for i, t := range supported {
		out[i] = t.String()
	}
	return out
}

// Match 把任意语言偏好（Accept-Language 或单个标签）映射到已加载的语言。
func Match(prefs ...string) string {
	if matcher == nil {
		return defaultLang
	}
	var tags []language.Tag
	for _, p := range prefs {
		if p == "" {
			continue
		}
		parsed, _, err := language.ParseAcceptLanguage(p)
		if err != nil {
			continue
		}
		tags = append(tags, parsed...)
	}
	if len(tags) == 0 {
		return defaultLang
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return defaultLang
	}
	return supported[idx].String()
}

func createTemplateData(params []string, seperator ...string) map[string]any {
	var sep string = "=="
	if len(seperator) > 0 {
		sep = seperator[0]
	}

	templateData := make(map[string]any)
	for _, param := range params {
		parts := strings.SplitN(param, sep, 2)
		if len(parts) == 2 {
			templateData[parts[0]] = parts[1]
		}
	}
	return templateData
}

// I18n 翻译 key，params 形如 "Number==42"。找不到翻译时返回 key 本身。
func I18n(lang string, key string, params ...string) string {
	if i18nBundle == nil {
		return key
	}
	localizer := i18n.NewLocalizer(i18nBundle, lang, defaultLang)
	msg, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: createTemplateData(params),
	})
	if err != nil {
		logger.Warning("Failed to localize", key, ":", err)
		return key
	}
	return msg
}

// LocalizerMiddleware 为每个请求确定语言：session 中的选择优先，其次是 Accept-Language。
// 必须注册在 sessions 中间件之后。
func LocalizerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		var chosen string
		if s := sessions.Default(c); s != nil {
			if v, ok := s.Get(SessionKey).(string); ok {
				chosen = v
			}
		}
		c.Set(contextKey, Match(chosen, c.GetHeader("Accept-Language")))
		c.Next()
	}
}

// Lang 返回中间件为当前请求选定的语言。
func Lang(c *gin.Context) string {
	if v, ok := c.Get(contextKey); ok {
		if lang, ok := v.(string); ok {
			return lang
		}
	}
	return defaultLang
}
