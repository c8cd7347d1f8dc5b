package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mvaldez/genstudio-backend/pkg/config"
	pkgerrors "github.com/mvaldez/genstudio-backend/pkg/errors"
	"github.com/mvaldez/genstudio-backend/pkg/logger"
)

const apiKeyHeader = "x-goog-api-key"

// Client is a thin REST facade over the generativelanguage API. Providers
// upstream translate domain requests into these calls.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	log        *logger.Logger
}

// New builds a client from configuration.
func New(cfg config.GeminiConfig, log *logger.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}, nil
}

// GenerateContent calls models/{model}:generateContent. Image, edit and
// speech requests all go through here; the caller shapes the request.
func (c *Client) GenerateContent(ctx context.Context, model string, req *GenerateContentRequest) (*GenerateContentResponse, error) {
	var resp GenerateContentResponse
	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, model)
	if err := c.postJSON(ctx, url, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Predict calls the legacy models/{model}:predict surface used by Imagen
// models.
func (c *Client) Predict(ctx context.Context, model string, req *PredictRequest) (*PredictResponse, error) {
	var resp PredictResponse
	url := fmt.Sprintf("%s/models/%s:predict", c.baseURL, model)
	if err := c.postJSON(ctx, url, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// PredictLongRunning starts a Veo video operation and returns its handle.
func (c *Client) PredictLongRunning(ctx context.Context, model string, req *PredictLongRunningRequest) (string, error) {
	var resp PredictLongRunningResponse
	url := fmt.Sprintf("%s/models/%s:predictLongRunning", c.baseURL, model)
	if err := c.postJSON(ctx, url, req, &resp); err != nil {
		return "", err
	}
	if resp.Name == "" {
		return "", pkgerrors.New(pkgerrors.CodeProvider, "operation submit returned no operation name")
	}
	return resp.Name, nil
}

// GetOperation polls a long-running operation by its handle. The handle is
// the full resource name, e.g. "models/veo-.../operations/abc".
func (c *Client) GetOperation(ctx context.Context, handle string) (*Operation, error) {
	url := fmt.Sprintf("%s/%s", c.baseURL, strings.TrimLeft(handle, "/"))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build operation request")
	}
	httpReq.Header.Set(apiKeyHeader, c.apiKey)

	var op Operation
	if err := c.do(httpReq, &op); err != nil {
		return nil, err
	}
	return &op, nil
}

// Download fetches a result URI with the API key header; Veo result URIs
// require the same key as the API call that produced them.
func (c *Client) Download(ctx context.Context, uri string) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build download request")
	}
	httpReq.Header.Set(apiKeyHeader, c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "download result")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp.StatusCode, fmt.Sprintf("download %s returned %d", uri, resp.StatusCode))
	}
	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read download body")
	}
	return content, nil
}

func (c *Client) postJSON(ctx context.Context, url string, body, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode request")
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set(apiKeyHeader, c.apiKey)
	return c.do(httpReq, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "call provider")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read provider response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := fmt.Sprintf("provider returned %d", resp.StatusCode)
		var envelope apiErrorEnvelope
		if json.Unmarshal(raw, &envelope) == nil && envelope.Error.Message != "" {
			message = envelope.Error.Message
		}
		return statusError(resp.StatusCode, message)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeProvider, err, "decode provider response")
	}
	return nil
}

// statusError maps HTTP failures onto the error taxonomy: throttling and
// server-side faults are retryable dependency errors, everything else is a
// terminal provider error.
func statusError(status int, message string) error {
	if status == http.StatusTooManyRequests || status >= 500 {
		return pkgerrors.New(pkgerrors.CodeDependency, message)
	}
	return pkgerrors.New(pkgerrors.CodeProvider, message)
}

// IsTransient reports whether err is worth retrying against the provider.
func IsTransient(err error) bool {
	appErr := pkgerrors.As(err)
	if appErr == nil {
		return false
	}
	return pkgerrors.MetadataFor(appErr.Code()).Retryable
}
