package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"smarthotel/model"
)

// Classifier labels review text as positive, negative or neutral.
type Classifier interface {
	Classify(ctx context.Context, text string) (string, error)
}

// HTTPClassifier posts {"review": text} to an external model and expects
// {"sentiment": label} back.
type HTTPClassifier struct {
	url    string
	client *http.Client
}

func NewHTTPClassifier(url string, timeout time.Duration) *HTTPClassifier {
	return &HTTPClassifier{url: url, client: &http.Client{Timeout: timeout}}
}

func (h *HTTPClassifier) Classify(ctx context.Context, text string) (string, error) {
	body, err := json.Marshal(map[string]string{"review": text})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("sentiment request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("sentiment service returned %d", resp.StatusCode)
	}

	var out struct {
		Sentiment string `json:"sentiment"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode sentiment response: %w", err)
	}
	if strings.TrimSpace(out.Sentiment) == "" {
		return "", fmt.Errorf("empty sentiment label")
	}
	return model.NormalizeSentiment(out.Sentiment), nil
}
