// Package i18n localizes user-facing strings from embedded message files.
package i18n

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"net/http"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"

	"github.com/lehigh-university-libraries/scanview/internal/upload"
)

//go:embed locales/*.json
var localesFS embed.FS

// Locales bundled with the binary.
var Locales = []string{"en", "zh-CN"}

type localizerKey struct{}

// Translator owns the message bundle and the fallback locale.
type Translator struct {
	bundle   *goi18n.Bundle
	fallback string
}

// New loads the embedded locales. fallback is used when a request
// expresses no supported preference.
func New(fallback string) (*Translator, error) {
	if _, err := language.Parse(fallback); err != nil {
		return nil, fmt.Errorf("invalid locale %q: %w", fallback, err)
	}

	bundle := goi18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)
	for _, locale := range Locales {
		data, err := localesFS.ReadFile("locales/" + locale + ".json")
		if err != nil {
			return nil, fmt.Errorf("failed to read locale file %s: %w", locale, err)
		}
		if _, err := bundle.ParseMessageFileBytes(data, locale+".json"); err != nil {
			return nil, fmt.Errorf("failed to parse locale file %s: %w", locale, err)
		}
	}
	return &Translator{bundle: bundle, fallback: fallback}, nil
}

// Localizer returns a localizer preferring langs, then the fallback.
func (t *Translator) Localizer(langs ...string) *goi18n.Localizer {
	return goi18n.NewLocalizer(t.bundle, append(langs, t.fallback)...)
}

// FromRequest builds a localizer from the Accept-Language header. A
// "lang" query parameter takes precedence.
func (t *Translator) FromRequest(r *http.Request) *goi18n.Localizer {
	var langs []string
	if lang := r.URL.Query().Get("lang"); lang != "" {
		langs = append(langs, lang)
	}
	tags, _, err := language.ParseAcceptLanguage(r.Header.Get("Accept-Language"))
	if err == nil {
		for _, tag := range tags {
			langs = append(langs, tag.String())
		}
	}
	return t.Localizer(langs...)
}

// Middleware stores the request localizer on the request context.
func (t *Translator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := WithLocalizer(r.Context(), t.FromRequest(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// WithLocalizer adds a localizer to the context.
func WithLocalizer(ctx context.Context, localizer *goi18n.Localizer) context.Context {
	return context.WithValue(ctx, localizerKey{}, localizer)
}

// FromContext returns the context localizer, or nil.
func FromContext(ctx context.Context) *goi18n.Localizer {
	localizer, _ := ctx.Value(localizerKey{}).(*goi18n.Localizer)
	return localizer
}

// Localize translates messageID with the context localizer. The ID itself
// is returned when no translation exists.
func Localize(ctx context.Context, messageID string, data ...map[string]any) string {
	localizer := FromContext(ctx)
	if localizer == nil {
		return messageID
	}
	cfg := &goi18n.LocalizeConfig{MessageID: messageID}
	if len(data) > 0 {
		cfg.TemplateData = data[0]
	}
	msg, err := localizer.Localize(cfg)
	if err != nil {
		return messageID
	}
	return msg
}

// Language returns the locale the context localizer resolves to.
func Language(ctx context.Context) string {
	localizer := FromContext(ctx)
	if localizer == nil {
		return "en"
	}
	_, tag, err := localizer.LocalizeWithTag(&goi18n.LocalizeConfig{MessageID: "app_title"})
	if err != nil {
		return "en"
	}
	return tag.String()
}

// MessageID maps a session error code to its message.
func MessageID(code upload.ErrorCode) string {
	switch code {
	case upload.CodeNoFileSelected:
		return "no_file_selected"
	case upload.CodeTransferFailed:
		return "upload_failed"
	default:
		return ""
	}
}
