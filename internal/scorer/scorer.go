// Package scorer is the client for the external fuzzy-match scoring service.
package scorer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxResponseBytes caps how much of a scorer response is read.
const maxResponseBytes = 1 << 20

// Match is one candidate found item and its similarity score in [0, 1].
type Match struct {
	ItemID int64   `json:"item_id"`
	Score  float64 `json:"score"`
}

// Scorer ranks found items against a lost ticket.
type Scorer interface {
	Score(ctx context.Context, ticketID int64) ([]Match, error)
}

// Func adapts a plain function to the Scorer interface.
type Func func(ctx context.Context, ticketID int64) ([]Match, error)

func (f Func) Score(ctx context.Context, ticketID int64) ([]Match, error) {
	return f(ctx, ticketID)
}

// Nop never returns candidates. It is used when no scoring service is configured.
type Nop struct{}

func (Nop) Score(context.Context, int64) ([]Match, error) {
	return nil, nil
}

// HTTPScorer calls GET {BaseURL}/tickets/{id}/matches.
type HTTPScorer struct {
	BaseURL string
	Client  *http.Client
}

// NewHTTP returns an HTTPScorer. A nil client uses http.DefaultClient;
// deadlines come from the caller's context.
func NewHTTP(baseURL string, client *http.Client) *HTTPScorer {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPScorer{BaseURL: strings.TrimRight(baseURL, "/"), Client: client}
}

func (s *HTTPScorer) Score(ctx context.Context, ticketID int64) ([]Match, error) {
	url := fmt.Sprintf("%s/tickets/%d/matches", s.BaseURL, ticketID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building scorer request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling scorer: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return nil, fmt.Errorf("scorer returned %s", resp.Status)
	}

	var matches []Match
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&matches); err != nil {
		return nil, fmt.Errorf("decoding scorer response: %w", err)
	}
	return matches, nil
}
