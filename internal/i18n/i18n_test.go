package i18n

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lehigh-university-libraries/scanview/internal/upload"
)

func TestLocalizeFromRequest(t *testing.T) {
	tr, err := New("en")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	tests := []struct {
		name     string
		header   string
		query    string
		id       string
		expected string
	}{
		{name: "default english", id: "upload_failed", expected: upload.MessageTransferFailed},
		{name: "chinese header", header: "zh-CN,zh;q=0.9", id: "upload_failed", expected: "上传失败，请稍后重试。"},
		{name: "chinese no file", header: "zh-CN", id: "no_file_selected", expected: "请选择一个文件"},
		{name: "unsupported falls back", header: "fr-FR", id: "no_file_selected", expected: upload.MessageNoFileSelected},
		{name: "query wins", header: "en-US", query: "?lang=zh-CN", id: "zoom_in", expected: "放大"},
		{name: "unknown id", id: "nope", expected: "nope"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Accept-Language", tt.header)
			}
			var got string
			h := tr.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = Localize(r.Context(), tt.id)
			}))
			h.ServeHTTP(httptest.NewRecorder(), req)
			if got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestLocalizeTemplateData(t *testing.T) {
	tr, err := New("zh-CN")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx := WithLocalizer(context.Background(), tr.Localizer())
	got := Localize(ctx, "progress", map[string]any{"Percent": 40})
	if got != "已上传 40%" {
		t.Errorf("Expected fallback locale progress text, got %q", got)
	}
}

func TestLocalizeWithoutLocalizer(t *testing.T) {
	if got := Localize(context.Background(), "upload_failed"); got != "upload_failed" {
		t.Errorf("Expected message ID, got %q", got)
	}
}

func TestNewInvalidLocale(t *testing.T) {
	if _, err := New("???"); err == nil {
		t.Error("Expected error for invalid locale")
	}
}

func TestMessageID(t *testing.T) {
	if MessageID(upload.CodeNoFileSelected) != "no_file_selected" {
		t.Error("Expected no_file_selected")
	}
	if MessageID(upload.CodeTransferFailed) != "upload_failed" {
		t.Error("Expected upload_failed")
	}
	if MessageID("") != "" {
		t.Error("Expected empty ID for no error")
	}
}

func TestLanguage(t *testing.T) {
	tr, err := New("en")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	tests := []struct {
		name     string
		langs    []string
		expected string
	}{
		{name: "fallback", expected: "en"},
		{name: "chinese", langs: []string{"zh-CN"}, expected: "zh-CN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := WithLocalizer(context.Background(), tr.Localizer(tt.langs...))
			if got := Language(ctx); got != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, got)
			}
		})
	}
	if got := Language(context.Background()); got != "en" {
		t.Errorf("Expected en without localizer, got %s", got)
	}
}
