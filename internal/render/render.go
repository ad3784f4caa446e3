package render

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Renderer is the narrow contract the fetcher escalates through: load a
// page in a controlled rendering environment, wait for it to settle,
// return the rendered markup. Anti-detection configuration of the
// rendering engine itself is the collaborator's concern.
type Renderer interface {
	Load(ctx context.Context, url string, settle time.Duration) (string, error)
}

// Service talks to a browserless-style rendering HTTP service. One
// Service is created per run and reused across High-tier sources to
// amortize browser startup; the scheduler's sequential discipline for
// that tier keeps access serial.
type Service struct {
	endpoint string
	client   *http.Client
}

func NewService(endpoint string, timeout time.Duration) *Service {
	return &Service{
		endpoint: strings.TrimRight(endpoint, "/"),
		client:   &http.Client{Timeout: timeout},
	}
}

type contentRequest struct {
	URL            string `json:"url"`
	WaitForTimeout int64  `json:"waitForTimeout"`
}

// Load renders the page and returns its markup after the settle period.
func (s *Service) Load(ctx context.Context, url string, settle time.Duration) (string, error) {
	body, err := json.Marshal(contentRequest{
		URL:            url,
		WaitForTimeout: settle.Milliseconds(),
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint+"/content", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("rendering request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("rendering service status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("rendering response: %w", err)
	}
	return string(data), nil
}

// Close releases the kept-alive connections of the rendering session.
func (s *Service) Close() {
	s.client.CloseIdleConnections()
}
