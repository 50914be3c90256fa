package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// telegramAPIBase is the Bot API host; the token is appended per request.
const telegramAPIBase = "https://api.telegram.org"

// AnnouncementMessage is the fixed template posted when a pipeline run
// leaves new articles ready for review.
const AnnouncementMessage = "📰 New articles are ready!\nUse /label to begin reviewing."

// TelegramConfig contains configuration for Telegram announcements.
type TelegramConfig struct {
	// BotToken is the Telegram Bot API token
	BotToken string

	// ChatID is the destination chat for announcements. Channel chat
	// ids are negative and exceed 32 bits.
	ChatID int64

	// Timeout is the HTTP request timeout for Telegram API calls
	Timeout time.Duration

	// APIBase overrides the Telegram API host (tests only)
	APIBase string
}

// TelegramNotifier posts announcements to a Telegram chat via sendMessage.
type TelegramNotifier struct {
	config      TelegramConfig
	httpClient  *http.Client
	rateLimiter *RateLimiter
}

// NewTelegramNotifier creates a TelegramNotifier with the specified
// configuration. The rate limiter is set to 1 request/second with burst
// of 1 (Telegram allows ~1 msg/s per chat).
func NewTelegramNotifier(config TelegramConfig) *TelegramNotifier {
	if config.APIBase == "" {
		config.APIBase = telegramAPIBase
	}
	return &TelegramNotifier{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		rateLimiter: NewRateLimiter(1.0, 1),
	}
}

// telegramResponse is the envelope every Bot API call returns.
type telegramResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
	Parameters  struct {
		RetryAfter int `json:"retry_after"`
	} `json:"parameters"`
}

// Announce sends the message to the configured chat.
//
// It performs the following steps:
//  1. Generate unique request_id for tracing
//  2. Apply rate limiting
//  3. POST sendMessage with Markdown parse mode
//
// Delivery is single-shot: failures are classified and returned for the
// caller to log, never retried.
func (t *TelegramNotifier) Announce(ctx context.Context, message string) error {
	requestID := uuid.New().String()
	ctx = context.WithValue(ctx, requestIDKey, requestID)

	slog.Info("sending Telegram announcement",
		slog.String("request_id", requestID),
		slog.Int64("chat_id", t.config.ChatID))

	if err := t.rateLimiter.Allow(ctx); err != nil {
		return fmt.Errorf("rate limiter error: %w", err)
	}

	if err := t.sendMessage(ctx, message); err != nil {
		slog.Warn("Telegram announcement failed",
			slog.String("request_id", requestID),
			slog.Int64("chat_id", t.config.ChatID),
			slog.Any("error", err))
		return err
	}

	slog.Info("Telegram announcement sent",
		slog.String("request_id", requestID),
		slog.Int64("chat_id", t.config.ChatID))
	return nil
}

func (t *TelegramNotifier) sendMessage(ctx context.Context, message string) error {
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", t.config.APIBase, t.config.BotToken)

	form := url.Values{}
	form.Set("chat_id", strconv.FormatInt(t.config.ChatID, 10))
	form.Set("text", message)
	form.Set("parse_mode", "Markdown")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(resp.Body)

	var parsed telegramResponse
	_ = json.Unmarshal(body, &parsed)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 && parsed.OK {
		return nil
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return &RateLimitError{
			Message:    "Telegram rate limit exceeded",
			RetryAfter: extractRetryAfter(resp, parsed.Parameters.RetryAfter),
		}
	}

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return &ClientError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("Telegram API client error: %s", parsed.Description),
		}
	}

	if resp.StatusCode >= 500 {
		return &ServerError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("Telegram API server error: %s", string(body)),
		}
	}

	return fmt.Errorf("unexpected Telegram response (status %d): %s", resp.StatusCode, string(body))
}

// extractRetryAfter derives the backoff hint from the response, preferring
// the API's retry_after parameter over the Retry-After header.
func extractRetryAfter(resp *http.Response, retryAfterSec int) time.Duration {
	if retryAfterSec > 0 {
		return time.Duration(retryAfterSec) * time.Second
	}
	if header := resp.Header.Get("Retry-After"); header != "" {
		if sec, err := strconv.Atoi(header); err == nil && sec > 0 {
			return time.Duration(sec) * time.Second
		}
	}
	return 5 * time.Second
}
