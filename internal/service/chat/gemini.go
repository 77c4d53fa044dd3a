package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/elokman/health-api/pkg/circuitbreaker"
	apperrors "github.com/elokman/health-api/pkg/errors"
	"github.com/elokman/health-api/pkg/metrics"
)

// User-facing messages for upstream failures.
const (
	MsgNotJSON       = "AI servisinden beklenmedik bir yanıt alındı."
	MsgRegion        = "Üzgünüz, bulunduğunuz bölgeden bu AI servisine erişim kısıtlanmış olabilir."
	MsgBusy          = "AI servisi şu an çok yoğun, lütfen biraz sonra tekrar deneyin."
	MsgInvalidKey    = "AI servis anahtarı geçersiz veya yetersiz. Lütfen sistem yöneticisi ile iletişime geçin."
	MsgBilling       = "AI servisi için faturalandırma hesabı yapılandırılmamış veya etkinleştirilmemiş. Lütfen sistem yöneticisi ile iletişime geçin."
	MsgGeneric       = "AI servisinden yanıt alınamadı, lütfen daha sonra tekrar deneyin."
	MsgBlockedSafety = "Üzgünüm, bu konuda yardımcı olamam çünkü yanıtım güvenlik politikalarımızla çelişiyor."
	MsgBlockedOther  = "Üzgünüm, isteğiniz beklenmedik bir nedenle işlenemedi."
	MsgBlocked       = "İsteğiniz işlenemedi çünkü güvenlik politikalarımızı ihlal ediyor olabilir."
	MsgBadShape      = "AI servisinden anlaşılamayan bir yanıt formatı alındı."
	MsgUnreachable   = "AI servisine bağlanırken bir sorun oluştu. Lütfen daha sonra tekrar deneyin."
	MsgConfig        = "AI servis konfigürasyon hatası. Lütfen sistem yöneticisine başvurun."
)

// Error is a chat failure that is safe to show to the caller. The embedded
// AppError decides the status.
type Error struct {
	*apperrors.AppError
	BlockReason string
}

func (e *Error) Unwrap() error { return e.AppError }

func chatError(app *apperrors.AppError) *Error {
	return &Error{AppError: app}
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []Part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// upstreamStatusError marks responses that count against the breaker.
type upstreamStatusError struct {
	status int
}

func (e *upstreamStatusError) Error() string {
	return fmt.Sprintf("upstream returned status %d", e.status)
}

// ClientConfig configures the generateContent client.
type ClientConfig struct {
	BaseURL string
	Model   string
	APIKey  string
	Timeout time.Duration
}

// Client calls the Gemini generateContent endpoint.
type Client struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	breaker    *circuitbreaker.CircuitBreaker
	metrics    *metrics.Metrics
}

func NewClient(cfg ClientConfig, m *metrics.Metrics) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		endpoint:   fmt.Sprintf("%s/models/%s:generateContent", strings.TrimRight(cfg.BaseURL, "/"), cfg.Model),
		apiKey:     cfg.APIKey,
		breaker: circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
			Name:        "gemini",
			MaxFailures: 5,
			Timeout:     30 * time.Second,
			IsFailure: func(err error) bool {
				if errors.Is(err, context.Canceled) {
					return false
				}
				var se *upstreamStatusError
				if errors.As(err, &se) {
					return se.status >= 500
				}
				return true
			},
		}),
		metrics: m,
	}
}

// Generate sends req and returns the first candidate's text.
func (c *Client) Generate(ctx context.Context, req *GenerateRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	var (
		status int
		data   []byte
	)
	start := time.Now()
	err = c.breaker.Execute(func() error {
		var postErr error
		status, data, postErr = c.post(ctx, body)
		if postErr != nil {
			return postErr
		}
		if status < 200 || status > 299 {
			return &upstreamStatusError{status: status}
		}
		return nil
	})
	if c.metrics != nil {
		c.metrics.AILatency.Observe(time.Since(start).Seconds())
	}

	var se *upstreamStatusError
	switch {
	case errors.Is(err, circuitbreaker.ErrOpen):
		return "", chatError(apperrors.NewUnavailable(MsgUnreachable, err))
	case err != nil && !errors.As(err, &se):
		return "", chatError(apperrors.NewUpstream(MsgUnreachable, err))
	}

	return interpret(ctx, status, data)
}

func (c *Client) post(ctx context.Context, body []byte) (int, []byte, error) {
	u := c.endpoint + "?key=" + url.QueryEscape(c.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		// the URL carries the key
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, data, nil
}

// interpret maps a raw upstream response onto a reply or a safe Error.
func interpret(ctx context.Context, status int, data []byte) (string, error) {
	logger := log.Ctx(ctx)

	var resp generateResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		logger.Error().Int("status", status).Int("bytes", len(data)).Msg("AI response is not JSON")
		return "", chatError(apperrors.NewUpstream(MsgNotJSON, err))
	}

	if status < 200 || status > 299 {
		detail := ""
		if resp.Error != nil {
			detail = resp.Error.Message
		}
		logger.Error().Int("status", status).Str("detail", detail).Msg("AI request failed")
		return "", chatError(upstreamFailure(status, detail))
	}

	if len(resp.Candidates) > 0 && len(resp.Candidates[0].Content.Parts) > 0 && resp.Candidates[0].Content.Parts[0].Text != "" {
		return resp.Candidates[0].Content.Parts[0].Text, nil
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		reason := resp.PromptFeedback.BlockReason
		logger.Warn().Str("block_reason", reason).Msg("AI response blocked")
		msg := MsgBlocked
		switch reason {
		case "SAFETY":
			msg = MsgBlockedSafety
		case "OTHER":
			msg = MsgBlockedOther
		}
		return "", &Error{AppError: apperrors.NewBadRequest(msg, nil), BlockReason: reason}
	}

	logger.Error().Int("bytes", len(data)).Msg("AI response has an unexpected shape")
	return "", chatError(apperrors.NewInternal(MsgBadShape, nil))
}

func failureMessage(status int, detail string) string {
	d := strings.ToLower(detail)
	switch {
	case status == http.StatusBadRequest && strings.Contains(d, "user location is not supported"):
		return MsgRegion
	case status == http.StatusTooManyRequests:
		return MsgBusy
	case status >= 400 && status < 500 && (strings.Contains(d, "api key not valid") ||
		strings.Contains(d, "permission denied") || strings.Contains(d, "api_key_invalid")):
		return MsgInvalidKey
	case strings.Contains(d, "billing account") || strings.Contains(d, "enable billing"):
		return MsgBilling
	}
	return MsgGeneric
}

// upstreamFailure keeps 429 so clients back off; everything else is a 502.
func upstreamFailure(status int, detail string) *apperrors.AppError {
	cause := &upstreamStatusError{status: status}
	if status == http.StatusTooManyRequests {
		return apperrors.NewRateLimited(MsgBusy, cause)
	}
	return apperrors.NewUpstream(failureMessage(status, detail), cause)
}
