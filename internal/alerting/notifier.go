package alerting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Notification 描述一个被标记为高波动的交易日。
type Notification struct {
	AssetID       int
	Timeframe     string
	Date          string
	Price         decimal.Decimal
	DailyAverage  float64
	DailyVariance float64
	DailyStdDev   float64
	WindowSize    int
	AdditionalMsg string
}

// Band returns the two-sigma envelope around the daily mean.
func (n Notification) Band() (low, high float64) {
	return n.DailyAverage - 2*n.DailyStdDev, n.DailyAverage + 2*n.DailyStdDev
}

// Notifier 定义告警输送接口。
type Notifier interface {
	Notify(ctx context.Context, notification Notification) error
}

// LogNotifier writes notifications to the structured log only.
type LogNotifier struct {
	logger zerolog.Logger
}

// NewLogNotifier constructs a notifier that never leaves the process.
func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With().Str("component", "alert_log").Logger()}
}

// Notify logs the volatile day at warn level.
func (n *LogNotifier) Notify(_ context.Context, note Notification) error {
	low, high := note.Band()
	n.logger.Warn().
		Int("asset_id", note.AssetID).
		Str("date", note.Date).
		Str("price", note.Price.StringFixed(2)).
		Float64("band_low", low).
		Float64("band_high", high).
		Int("window_size", note.WindowSize).
		Msg("volatile day detected")
	return nil
}

// TelegramNotifier 通过 Telegram Bot API 推送消息。
type TelegramNotifier struct {
	botToken string
	chatID   string
	baseURL  string
	client   *http.Client
	logger   zerolog.Logger
}

// NewTelegramNotifier 构造 Telegram 告警器。
func NewTelegramNotifier(botToken, chatID, baseURL string, timeout time.Duration, logger zerolog.Logger) *TelegramNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if baseURL == "" {
		baseURL = "https://api.telegram.org"
	}

	return &TelegramNotifier{
		botToken: botToken,
		chatID:   chatID,
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   &http.Client{Timeout: timeout},
		logger:   logger.With().Str("component", "alert_telegram").Logger(),
	}
}

// Notify 调用 sendMessage API 推送文本。
func (n *TelegramNotifier) Notify(ctx context.Context, note Notification) error {
	body, err := json.Marshal(map[string]string{
		"chat_id": n.chatID,
		"text":    renderMessage(note),
	})
	if err != nil {
		return fmt.Errorf("marshal telegram payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send telegram request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("telegram 响应码异常: %d", resp.StatusCode)
	}

	var result struct {
		OK bool `json:"ok"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err == nil && !result.OK {
		return fmt.Errorf("telegram 返回 ok=false")
	}

	n.logger.Info().Str("date", note.Date).Int("asset_id", note.AssetID).Msg("告警已发送 (Telegram)")
	return nil
}

func renderMessage(note Notification) string {
	low, high := note.Band()

	var b strings.Builder
	b.WriteString("[BTC Volatility Alert]\n")
	fmt.Fprintf(&b, "Asset: %d (%s)\n", note.AssetID, note.Timeframe)
	fmt.Fprintf(&b, "Day: %s UTC\n", note.Date)
	fmt.Fprintf(&b, "Opening price: %s\n", note.Price.StringFixed(2))
	fmt.Fprintf(&b, "Daily mean: %.2f over %d samples\n", note.DailyAverage, note.WindowSize)
	fmt.Fprintf(&b, "Daily std dev: %.2f\n", note.DailyStdDev)
	fmt.Fprintf(&b, "Band: %.2f .. %.2f\n", low, high)
	if note.AdditionalMsg != "" {
		b.WriteString(note.AdditionalMsg)
	}
	return b.String()
}

var (
	_ Notifier = (*TelegramNotifier)(nil)
	_ Notifier = (*LogNotifier)(nil)
)
