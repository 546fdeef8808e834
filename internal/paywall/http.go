package paywall

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"

	"github.com/julianstephens/sleepr/internal/keyring"
	"github.com/julianstephens/sleepr/internal/logger"
)

var getAPIKeyFunc = keyring.GetPaywallAPIKey

// HTTPService is a Service backed by the subscription HTTP API.
type HTTPService struct {
	baseURL string
	client  *http.Client
	out     io.Writer

	mu     sync.Mutex
	apiKey string
}

func NewHTTPService(baseURL string) *HTTPService {
	return &HTTPService{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
		out:     os.Stdout,
	}
}

// SetOutput changes where PresentPaywall prints the paywall link.
func (s *HTTPService) SetOutput(w io.Writer) {
	s.out = w
}

// Initialize loads the API key from the OS keyring. Calling it again after success is a no-op.
func (s *HTTPService) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.apiKey != "" {
		return nil
	}
	if s.baseURL == "" {
		return ErrNotConfigured
	}
	key, err := getAPIKeyFunc()
	if err != nil {
		logger.Warn("No subscription API key available", "error", err)
		return fmt.Errorf("loading subscription API key: %w", err)
	}
	s.apiKey = key
	logger.Debug("Subscription service initialized", "base_url", s.baseURL)
	return nil
}

type statusResponse struct {
	Status string `json:"status"`
}

func (s *HTTPService) SubscriptionStatus(ctx context.Context) (Status, error) {
	var resp statusResponse
	if err := s.do(ctx, http.MethodGet, "/v1/subscription", nil, &resp); err != nil {
		return StatusInactive, err
	}
	if Status(resp.Status) == StatusActive {
		return StatusActive, nil
	}
	return StatusInactive, nil
}

type paywallRequest struct {
	Placement string `json:"placement"`
}

type paywallResponse struct {
	URL string `json:"url"`
}

func (s *HTTPService) PresentPaywall(ctx context.Context, trigger string) error {
	var resp paywallResponse
	if err := s.do(ctx, http.MethodPost, "/v1/paywall", paywallRequest{Placement: trigger}, &resp); err != nil {
		return fmt.Errorf("presenting paywall %q: %w", trigger, err)
	}
	if _, err := url.ParseRequestURI(resp.URL); err != nil {
		return fmt.Errorf("paywall %q returned an invalid URL", trigger)
	}
	fmt.Fprintf(s.out, "Subscribe at %s\n", resp.URL)
	return nil
}

func (s *HTTPService) do(ctx context.Context, method, path string, body, dst any) error {
	s.mu.Lock()
	key := s.apiKey
	s.mu.Unlock()
	if key == "" {
		return ErrNotInitialized
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+key)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
		return fmt.Errorf("subscription service returned %d: %s", res.StatusCode, strings.TrimSpace(string(msg)))
	}
	if err := json.NewDecoder(res.Body).Decode(dst); err != nil {
		return fmt.Errorf("decoding subscription response: %w", err)
	}
	return nil
}
