// Package templates holds the CULTFACE page components.
package templates

import (
	"net/http"
	"net/url"

	"github.com/louisbranch/cultface/internal/platform/assets/catalog"
	"github.com/louisbranch/cultface/internal/services/web/i18n"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// PageContext carries per-request rendering inputs.
type PageContext struct {
	Lang language.Tag
	Loc  *message.Printer
}

// NewPageContext builds a context for the given language.
func NewPageContext(tag language.Tag) PageContext {
	return PageContext{Lang: tag, Loc: i18n.Printer(tag)}
}

// T localizes a message key for the page.
func T(page PageContext, key string, args ...any) string {
	loc := page.Loc
	if loc == nil {
		loc = i18n.Printer(i18n.Default())
	}
	return loc.Sprintf(key, args...)
}

// LanguageOption is one entry of the language switcher.
type LanguageOption struct {
	Tag     string
	Name    string
	Href    string
	Current bool
}

// LanguageOptions lists the supported languages, marking the active one.
func LanguageOptions(page PageContext) []LanguageOption {
	tags := i18n.Supported()
	options := make([]LanguageOption, 0, len(tags))
	for _, tag := range tags {
		query := url.Values{i18n.LangParam: {tag.String()}}
		options = append(options, LanguageOption{
			Tag:     tag.String(),
			Name:    i18n.LanguageName(tag),
			Href:    "/?" + query.Encode(),
			Current: tag == page.Lang,
		})
	}
	return options
}

// SceneView is the data behind the scene picker.
type SceneView struct {
	Scenes    []catalog.Scene
	Endpoint  string
	Languages []LanguageOption
}

// DefaultURL is the clip preselected on load.
func (v SceneView) DefaultURL() string {
	if len(v.Scenes) == 0 {
		return ""
	}
	return v.Scenes[0].VideoURL
}

// ErrorDetail picks the error page body for an HTTP status.
func ErrorDetail(page PageContext, status int) string {
	switch {
	case status == http.StatusNotFound:
		return T(page, i18n.KeyErrorNotFound)
	case status >= http.StatusInternalServerError:
		return T(page, i18n.KeyErrorServer, status)
	default:
		return T(page, i18n.KeyErrorClient)
	}
}
