package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/admpjgj/yxip/internal/model"
)

// Notifier posts run summaries to a Telegram chat. A nil Notifier is a
// no-op so callers never branch on whether notification is configured.
type Notifier struct {
	apiBase  string
	botToken string
	chatID   string
	client   *http.Client
	limiter  *rate.Limiter
}

func New(botToken, chatID string) *Notifier {
	if botToken == "" || chatID == "" {
		return nil
	}
	return &Notifier{
		apiBase:  "https://api.telegram.org",
		botToken: botToken,
		chatID:   chatID,
		client:   &http.Client{Timeout: 10 * time.Second},
		limiter:  rate.NewLimiter(rate.Every(time.Second/30), 1), // Telegram caps ~30 msg/s
	}
}

// SendMessage sends a text message to the configured chat
func (n *Notifier) SendMessage(ctx context.Context, text string) error {
	if n == nil {
		return nil
	}
	if err := n.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter error: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", n.apiBase, n.botToken)
	body, err := json.Marshal(map[string]string{
		"chat_id": n.chatID,
		"text":    text,
	})
	if err != nil {
		return fmt.Errorf("error marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("telegram API error: %s - %s", resp.Status, string(data))
	}
	return nil
}

// Summary renders the end-of-run report sent to the chat.
func Summary(stats []model.SourceStats, total int, regionCounts map[model.Region]int) string {
	ok, failed := 0, 0
	for _, st := range stats {
		if st.Err != nil {
			failed++
		} else {
			ok++
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "yxip run finished\nsources: %d ok, %d failed\nendpoints: %d\n", ok, failed, total)
	if len(regionCounts) > 0 {
		b.WriteString("regions:")
		for _, r := range []model.Region{model.RegionHongKong, model.RegionJapan, model.RegionSingapore} {
			if c, present := regionCounts[r]; present {
				fmt.Fprintf(&b, " %s=%d", r, c)
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}
