package scryfall

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"gocombo/domain/card"
	"gocombo/internal/errors"
	"gocombo/ports"
)

const maxAttempts = 3

// Client fetches cards from a Scryfall-compatible search API, following
// next_page links until the query is exhausted. Requests are sequential with
// a polite delay between pages.
type Client struct {
	BaseURL    string
	Query      string
	PageDelay  time.Duration
	HTTPClient *http.Client
}

// Config holds client settings.
type Config struct {
	BaseURL   string
	Query     string
	PageDelay time.Duration
	Timeout   time.Duration
}

// NewClient creates a card source for the configured search query.
func NewClient(cfg Config) *Client {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = "https://api.scryfall.com"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Query:      cfg.Query,
		PageDelay:  cfg.PageDelay,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

// scryfallCard is the wire shape; only the fields this pipeline consumes.
type scryfallCard struct {
	Name          string            `json:"name"`
	ManaCost      string            `json:"mana_cost"`
	CMC           float64           `json:"cmc"`
	TypeLine      string            `json:"type_line"`
	OracleText    string            `json:"oracle_text"`
	Colors        []string          `json:"colors"`
	ColorIdentity []string          `json:"color_identity"`
	Keywords      []string          `json:"keywords"`
	Power         string            `json:"power"`
	Toughness     string            `json:"toughness"`
	Rarity        string            `json:"rarity"`
	Legalities    map[string]string `json:"legalities"`
}

type searchPage struct {
	Data     []scryfallCard `json:"data"`
	HasMore  bool           `json:"has_more"`
	NextPage string         `json:"next_page"`
}

// FetchAll walks the paginated search. Network failures are retried with
// backoff up to maxAttempts per page; a page that still fails aborts the
// fetch. Malformed card objects are skipped and counted, never fatal.
func (c *Client) FetchAll(ctx context.Context) ([]card.Record, ports.FetchReport, error) {
	var report ports.FetchReport
	var records []card.Record

	next := fmt.Sprintf("%s/cards/search?q=%s&unique=cards&format=json", c.BaseURL, url.QueryEscape(c.Query))
	for next != "" {
		page, err := c.fetchPage(ctx, next)
		if err != nil {
			return nil, report, errors.Wrapf(err, "fetch page %d", report.Pages+1)
		}
		report.Pages++

		for _, sc := range page.Data {
			rec, ok := c.toRecord(sc)
			if !ok {
				report.Skipped++
				continue
			}
			records = append(records, rec)
		}
		report.Fetched = len(records)
		log.Printf("[Scryfall] fetched %d cards (%d pages)", report.Fetched, report.Pages)

		if !page.HasMore {
			break
		}
		next = page.NextPage

		if c.PageDelay > 0 {
			select {
			case <-time.After(c.PageDelay):
			case <-ctx.Done():
				return nil, report, errors.NetworkError("fetch cancelled", ctx.Err())
			}
		}
	}

	return records, report, nil
}

// fetchPage retrieves one page with bounded retry on transient failures.
func (c *Client) fetchPage(ctx context.Context, pageURL string) (*searchPage, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		page, err := c.doFetch(ctx, pageURL)
		if err == nil {
			return page, nil
		}
		lastErr = err
		if !errors.Retryable(err) || ctx.Err() != nil {
			return nil, err
		}
		backoff := time.Duration(attempt) * 500 * time.Millisecond
		log.Printf("[Scryfall] attempt %d/%d failed (%v), retrying in %s", attempt, maxAttempts, err, backoff)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return nil, errors.NetworkError("fetch cancelled", ctx.Err())
		}
	}
	return nil, lastErr
}

func (c *Client) doFetch(ctx context.Context, pageURL string) (*searchPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, errors.NetworkError("card search request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NetworkError("read card search response", err)
	}
	if resp.StatusCode >= 500 {
		return nil, errors.NetworkError(fmt.Sprintf("card search http %d", resp.StatusCode), nil)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.ParseError(fmt.Sprintf("card search http %d: %s", resp.StatusCode, strings.TrimSpace(string(raw))), nil)
	}

	var page searchPage
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, errors.ParseError("unmarshal card search page", err)
	}
	return &page, nil
}

// toRecord maps a wire card to the domain record. Cards without a name are
// malformed and dropped.
func (c *Client) toRecord(sc scryfallCard) (card.Record, bool) {
	if strings.TrimSpace(sc.Name) == "" {
		log.Printf("[Scryfall] skipping card with missing name")
		return card.Record{}, false
	}
	return card.Record{
		Name:          sc.Name,
		ManaCost:      sc.ManaCost,
		CMC:           sc.CMC,
		TypeLine:      sc.TypeLine,
		OracleText:    sc.OracleText,
		Colors:        sc.Colors,
		ColorIdentity: sc.ColorIdentity,
		Keywords:      sc.Keywords,
		Power:         sc.Power,
		Toughness:     sc.Toughness,
		Rarity:        sc.Rarity,
		Legal:         sc.Legalities["pauper"] == "legal" || sc.Legalities == nil,
	}, true
}
