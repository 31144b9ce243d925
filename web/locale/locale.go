// Package locale resolves user-facing messages from the embedded TOML translation files.
package locale

import (
	"io/fs"
	"strings"

	"github.com/apextelemetry/apextelemetry/logger"

	"github.com/gin-gonic/gin"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"
)

const localizerKey = "localizer"

var (
	i18nBundle       *i18n.Bundle
	defaultLocalizer *i18n.Localizer
)

// InitLocalizer parses every file under translation/ in fsys.
func InitLocalizer(fsys fs.FS) error {
	bundle := i18n.NewBundle(language.MustParse("en-US"))
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	if err := parseTranslationFiles(fsys, bundle); err != nil {
		return err
	}

	i18nBundle = bundle
	defaultLocalizer = i18n.NewLocalizer(bundle, "en-US")
	return nil
}

func createTemplateData(params []string, separator ...string) map[string]any {
	sep := "=="
	if len(separator) > 0 {
		sep = separator[0]
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

func localize(localizer *i18n.Localizer, key string, params ...string) string {
	if localizer == nil {
		return key
	}
	msg, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: createTemplateData(params),
	})
	if err != nil {
		logger.Errorf("Failed to localize message %q: %v", key, err)
		return key
	}
	return msg
}

// I18n resolves key with the default language. Params are "name==value" pairs.
func I18n(key string, params ...string) string {
	return localize(defaultLocalizer, key, params...)
}

// I18nWeb resolves key with the language chosen for the request.
func I18nWeb(c *gin.Context, key string, params ...string) string {
	if v, ok := c.Get(localizerKey); ok {
		if localizer, ok := v.(*i18n.Localizer); ok {
			return localize(localizer, key, params...)
		}
	}
	return I18n(key, params...)
}

// LocalizerMiddleware picks the request language from the "lang" cookie or Accept-Language.
func LocalizerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if i18nBundle == nil {
			c.Next()
			return
		}
		var lang string
		if cookie, err := c.Request.Cookie("lang"); err == nil {
			lang = cookie.Value
		} else {
			lang = c.GetHeader("Accept-Language")
		}

		c.Set(localizerKey, i18n.NewLocalizer(i18nBundle, lang))
		c.Next()
	}
}

func parseTranslationFiles(fsys fs.FS, bundle *i18n.Bundle) error {
	return fs.WalkDir(fsys, "translation",
		func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}

			data, err := fs.ReadFile(fsys, path)
			if err != nil {
				return err
			}

			_, err = bundle.ParseMessageFileBytes(data, path)
			return err
		})
}
