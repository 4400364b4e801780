// Package fliq is the REST client for the Fliq exchange API: the
// question catalog and the aggregated price-level feed it serves for
// each question's Yes and No outcome markets.
package fliq

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ad714/bookmirror/internal/domain"
)

const (
	// questionPageSize is the page size used when walking the catalog.
	questionPageSize = 100

	// maxQuestionPages bounds a catalog walk so a misbehaving upstream
	// cannot make Questions loop forever.
	maxQuestionPages = 50

	// priceLevelLimit caps levels per side per request. The book view
	// never renders more than this.
	priceLevelLimit = 60

	questionSelect = "questionId,lotSize,tickSize,decimal,isSettled,settlementPrice," +
		"contractAddress,yesTokenMarketId,noTokenMarketId,blockchainMetadata,category"
)

// questionsResponse is the envelope the questions endpoint returns.
type questionsResponse struct {
	Questions []APIQuestion `json:"questions"`
}

// Client is the REST client for the Fliq API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new Fliq API client.
//
// baseURL is the API root. apiKey may be empty for public endpoints.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Questions walks the unsettled question catalog, sorted by end time,
// and returns every page mapped to the domain model. Filtering and
// dedup happen in the catalog service, not here.
func (c *Client) Questions(ctx context.Context) ([]domain.Market, error) {
	var out []domain.Market

	for page := 0; page < maxQuestionPages; page++ {
		params := url.Values{}
		params.Set("select", questionSelect)
		params.Set("sortBy", "questionEndTime")
		params.Set("sortOrder", "asc")
		params.Set("isSettled", "false")
		params.Set("limit", strconv.Itoa(questionPageSize))
		params.Set("offset", strconv.Itoa(page*questionPageSize))

		path := "/questions?" + params.Encode()

		body, err := c.doGet(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("fliq: get questions page %d: %w", page, err)
		}

		var resp questionsResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("fliq: decode questions: %w", err)
		}

		for i := range resp.Questions {
			out = append(out, resp.Questions[i].ToDomainMarket())
		}

		if len(resp.Questions) < questionPageSize {
			break
		}
	}

	return out, nil
}

// Question returns a single question by its ID.
func (c *Client) Question(ctx context.Context, id string) (domain.Market, error) {
	params := url.Values{}
	params.Set("select", questionSelect)

	path := fmt.Sprintf("/questions/%s?%s", url.PathEscape(id), params.Encode())

	body, err := c.doGet(ctx, path)
	if err != nil {
		return domain.Market{}, fmt.Errorf("fliq: get question %s: %w", id, err)
	}

	var apiQuestion APIQuestion
	if err := json.Unmarshal(body, &apiQuestion); err != nil {
		return domain.Market{}, fmt.Errorf("fliq: decode question: %w", err)
	}

	return apiQuestion.ToDomainMarket(), nil
}

// PriceLevels fetches both sides of one outcome market's book: bids
// best-first (descending price) and asks best-first (ascending price).
// Zero-size levels are dropped and ticks are clamped at the boundary so
// nothing downstream has to re-validate.
func (c *Client) PriceLevels(ctx context.Context, marketID string, outcome domain.Outcome) (domain.OutcomeBook, error) {
	bids, err := c.levelSide(ctx, marketID, outcome, "bid", "price.desc")
	if err != nil {
		return domain.OutcomeBook{}, err
	}
	asks, err := c.levelSide(ctx, marketID, outcome, "ask", "price.asc")
	if err != nil {
		return domain.OutcomeBook{}, err
	}

	return domain.OutcomeBook{
		MarketID:  marketID,
		Outcome:   outcome,
		Bids:      bids,
		Asks:      asks,
		FetchedAt: time.Now().UTC(),
	}, nil
}

func (c *Client) levelSide(ctx context.Context, marketID string, outcome domain.Outcome, direction, order string) ([]domain.PriceLevel, error) {
	params := url.Values{}
	params.Set("market_id", marketID)
	params.Set("direction", direction)
	params.Set("order", order)
	params.Set("limit", strconv.Itoa(priceLevelLimit))

	path := "/price_levels?" + params.Encode()

	body, err := c.doGet(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("fliq: get %s levels for %s: %w", direction, marketID, err)
	}

	var apiLevels []APIPriceLevel
	if err := json.Unmarshal(body, &apiLevels); err != nil {
		return nil, fmt.Errorf("fliq: decode %s levels: %w", direction, err)
	}

	levels := make([]domain.PriceLevel, 0, len(apiLevels))
	for i := range apiLevels {
		if lvl, ok := apiLevels[i].ToDomainLevel(outcome); ok {
			levels = append(levels, lvl)
		}
	}

	return levels, nil
}

// doGet sends a GET request to the Fliq API.
func (c *Client) doGet(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if err := checkHTTPStatus(resp.StatusCode, body); err != nil {
		return nil, err
	}

	return body, nil
}

func checkHTTPStatus(statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}

	bodyStr := string(body)
	switch statusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, bodyStr)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", domain.ErrUnauthorized, bodyStr)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", domain.ErrRateLimited, bodyStr)
	default:
		return fmt.Errorf("%w: HTTP %d: %s", domain.ErrFetchFailed, statusCode, bodyStr)
	}
}
