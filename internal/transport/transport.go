// Package transport sends selected files to the image processing service.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/lehigh-university-libraries/scanview/internal/blob"
	"github.com/lehigh-university-libraries/scanview/internal/upload"
)

// FieldName is the multipart field carrying the image. The processing
// service reads request.files['image'].
const FieldName = "image"

// DefaultBaseURL is where the processing service listens in development.
const DefaultBaseURL = "http://localhost:5000"

// HTTP uploads files with a multipart POST to <BaseURL>/upload.
type HTTP struct {
	BaseURL    string
	HTTPClient *http.Client
}

// New returns an HTTP transport for baseURL. No client timeout is set;
// a transfer runs until the service answers or the connection drops.
func New(baseURL string) *HTTP {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &HTTP{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{},
	}
}

// Endpoint is the upload URL.
func (t *HTTP) Endpoint() string {
	return t.BaseURL + "/upload"
}

// response is the processing service's success body.
type response struct {
	Message        string `json:"message"`
	OriginalImage  string `json:"original_image"`
	ProcessedImage string `json:"processed_image"`
	Error          string `json:"error"`
}

// Upload implements upload.Transport.
func (t *HTTP) Upload(ctx context.Context, file upload.File, progress upload.ProgressFunc) (upload.Result, error) {
	if file.Open == nil {
		return upload.Result{}, fmt.Errorf("%w: file %s has no content", upload.ErrTransferFailed, file.Name)
	}
	content, err := file.Open()
	if err != nil {
		return upload.Result{}, fmt.Errorf("%w: failed to open %s: %v", upload.ErrTransferFailed, file.Name, err)
	}
	defer content.Close()

	body, contentType, total, err := multipartBody(file.Name, file.Size, content)
	if err != nil {
		return upload.Result{}, fmt.Errorf("%w: failed to build request body: %v", upload.ErrTransferFailed, err)
	}
	if progress == nil {
		progress = func(int64, int64) {}
	}
	body = &progressReader{r: body, total: total, report: progress}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.Endpoint(), body)
	if err != nil {
		return upload.Result{}, fmt.Errorf("%w: failed to create request: %v", upload.ErrTransferFailed, err)
	}
	req.Header.Set("Content-Type", contentType)
	if total >= 0 {
		req.ContentLength = total
	}

	slog.Debug("Sending image to processing service", "endpoint", t.Endpoint(), "name", file.Name, "bytes", total)
	resp, err := t.client().Do(req)
	if err != nil {
		return upload.Result{}, fmt.Errorf("%w: failed to send request: %v", upload.ErrTransferFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return upload.Result{}, fmt.Errorf("%w: received status code %d - %s", upload.ErrTransferFailed, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var payload response
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return upload.Result{}, fmt.Errorf("%w: failed to decode response body: %v", upload.ErrMalformedResponse, err)
	}
	if err := validReference(payload.ProcessedImage); err != nil {
		return upload.Result{}, err
	}

	return upload.Result{
		Resource:  blob.Remote(t.BaseURL, payload.ProcessedImage),
		Reference: payload.ProcessedImage,
		Original:  payload.OriginalImage,
		Message:   payload.Message,
	}, nil
}

func (t *HTTP) client() *http.Client {
	if t.HTTPClient != nil {
		return t.HTTPClient
	}
	return http.DefaultClient
}

func validReference(ref string) error {
	switch {
	case ref == "":
		return fmt.Errorf("%w: processed_image missing", upload.ErrMalformedResponse)
	case ref == "." || ref == "..", strings.ContainsAny(ref, `/\`):
		return fmt.Errorf("%w: processed_image %q is not a file name", upload.ErrMalformedResponse, ref)
	}
	return nil
}

// multipartBody frames content as a single-file form. When size is known
// the full body length is computed up front so progress has a total.
func multipartBody(name string, size int64, content io.Reader) (io.Reader, string, int64, error) {
	var head bytes.Buffer
	w := multipart.NewWriter(&head)
	if _, err := w.CreateFormFile(FieldName, name); err != nil {
		return nil, "", 0, err
	}
	prefix := append([]byte(nil), head.Bytes()...)
	head.Reset()
	if err := w.Close(); err != nil {
		return nil, "", 0, err
	}
	trailer := append([]byte(nil), head.Bytes()...)

	total := int64(-1)
	if size >= 0 {
		total = int64(len(prefix)) + size + int64(len(trailer))
	}
	body := io.MultiReader(bytes.NewReader(prefix), content, bytes.NewReader(trailer))
	return body, w.FormDataContentType(), total, nil
}

// progressReader reports cumulative bytes read by the HTTP client.
type progressReader struct {
	r      io.Reader
	sent   int64
	total  int64
	report upload.ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.sent += int64(n)
		p.report(p.sent, p.total)
	}
	return n, err
}
