package vapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	apperrors "github.com/envisage-infotech/hr-interview-desk/errors"
	"github.com/envisage-infotech/hr-interview-desk/pkg/config"
)

// Client wraps the voice platform REST API.
type Client interface {
	ListCalls(ctx context.Context, cursor string) (CallsPage, error)
	GetCall(ctx context.Context, id string) (*CallLog, error)
	CreateOutboundCall(ctx context.Context, req OutboundCallRequest) (*OutboundCallResponse, error)
	ListPhoneNumbers(ctx context.Context) ([]PhoneNumber, error)
	ImportTwilioNumber(ctx context.Context, req ImportTwilioRequest) (*PhoneNumber, error)
	DeletePhoneNumber(ctx context.Context, id string) error
}

type restClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewClient creates a REST client for the voice platform API.
func NewClient(cfg *config.VapiConfig, logger *zap.Logger) Client {
	return &restClient{
		apiKey:  cfg.APIKey,
		baseURL: cfg.APIBaseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
	}
}

// do performs one authenticated request and decodes a 2xx body into out.
// Transient transport errors are retried with exponential backoff; HTTP
// status errors are permanent.
func (c *restClient) do(ctx context.Context, method, endpoint string, body any, out any) error {
	if c.apiKey == "" || c.apiKey == config.PlaceholderAPIKey {
		return apperrors.ErrKeyNotConfigured()
	}

	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		payload = b
	}

	attempt := func() error {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			// Network-level failure, worth a retry.
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			text, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			c.logger.Error("voice platform API error",
				zap.String("endpoint", endpoint),
				zap.Int("status", resp.StatusCode),
				zap.ByteString("body", text))
			if resp.StatusCode == http.StatusUnauthorized {
				return backoff.Permanent(apperrors.ErrUnauthorizedKey())
			}
			return backoff.Permanent(fmt.Errorf("voice platform API error: %d - %s", resp.StatusCode, string(text)))
		}

		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return backoff.Permanent(fmt.Errorf("decode response: %w", err))
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 200 * time.Millisecond
	bo.MaxElapsedTime = 10 * time.Second
	return backoff.Retry(attempt, backoff.WithContext(backoff.WithMaxRetries(bo, 2), ctx))
}

// ListCalls fetches one page of call logs. The remote may answer with a
// bare array or a {data, hasMore, nextCursor} envelope; an unrecognized
// shape yields an empty final page rather than an error so callers keep
// whatever they collected so far.
func (c *restClient) ListCalls(ctx context.Context, cursor string) (CallsPage, error) {
	endpoint := "/call?limit=100"
	if cursor != "" {
		endpoint += "&cursor=" + url.QueryEscape(cursor)
	}

	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &raw); err != nil {
		return CallsPage{}, err
	}
	return decodeCallsPage(raw, c.logger)
}

func decodeCallsPage(raw json.RawMessage, logger *zap.Logger) (CallsPage, error) {
	var calls []CallLog
	if err := json.Unmarshal(raw, &calls); err == nil {
		return CallsPage{Calls: calls}, nil
	}

	var envelope struct {
		Data       []CallLog `json:"data"`
		HasMore    bool      `json:"hasMore"`
		NextCursor string    `json:"nextCursor"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Data != nil {
		return CallsPage{Calls: envelope.Data, HasMore: envelope.HasMore, NextCursor: envelope.NextCursor}, nil
	}

	logger.Warn("unrecognized call logs response shape", zap.ByteString("body", truncate(raw, 512)))
	return CallsPage{}, nil
}

func (c *restClient) GetCall(ctx context.Context, id string) (*CallLog, error) {
	var call CallLog
	if err := c.do(ctx, http.MethodGet, "/call/"+url.PathEscape(id), nil, &call); err != nil {
		return nil, err
	}
	return &call, nil
}

func (c *restClient) CreateOutboundCall(ctx context.Context, req OutboundCallRequest) (*OutboundCallResponse, error) {
	var resp OutboundCallResponse
	if err := c.do(ctx, http.MethodPost, "/call/phone", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListPhoneNumbers tolerates both a bare array and a {data: [...]} wrapper.
func (c *restClient) ListPhoneNumbers(ctx context.Context) ([]PhoneNumber, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/phone-number", nil, &raw); err != nil {
		return nil, err
	}

	var numbers []PhoneNumber
	if err := json.Unmarshal(raw, &numbers); err == nil {
		return numbers, nil
	}
	var envelope struct {
		Data []PhoneNumber `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Data != nil {
		return envelope.Data, nil
	}

	c.logger.Warn("unrecognized phone numbers response shape", zap.ByteString("body", truncate(raw, 512)))
	return nil, nil
}

func (c *restClient) ImportTwilioNumber(ctx context.Context, req ImportTwilioRequest) (*PhoneNumber, error) {
	var number PhoneNumber
	if err := c.do(ctx, http.MethodPost, "/phone-number/import/twilio", req, &number); err != nil {
		return nil, err
	}
	return &number, nil
}

func (c *restClient) DeletePhoneNumber(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/phone-number/"+url.PathEscape(id), nil, nil)
}

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}
