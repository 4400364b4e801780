package fliq

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/ad714/bookmirror/internal/domain"
)

func TestPriceLevelsFetchesBothSides(t *testing.T) {
	var gotOrders []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/price_levels" {
			t.Errorf("path = %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("market_id") != "m-yes" {
			t.Errorf("market_id = %q", q.Get("market_id"))
		}
		if q.Get("limit") != "60" {
			t.Errorf("limit = %q", q.Get("limit"))
		}
		gotOrders = append(gotOrders, q.Get("direction")+"/"+q.Get("order"))

		var levels []APIPriceLevel
		switch q.Get("direction") {
		case "bid":
			levels = []APIPriceLevel{
				{MarketID: 41, Direction: "bid", Price: 620, TotalSize: 40},
				{MarketID: 41, Direction: "bid", Price: 600, TotalSize: 0}, // dropped
			}
		case "ask":
			levels = []APIPriceLevel{
				{MarketID: 41, Direction: "ask", Price: 660, TotalSize: 12},
			}
		}
		json.NewEncoder(w).Encode(levels)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	book, err := c.PriceLevels(context.Background(), "m-yes", domain.OutcomeYes)
	if err != nil {
		t.Fatalf("PriceLevels: %v", err)
	}

	if len(gotOrders) != 2 || gotOrders[0] != "bid/price.desc" || gotOrders[1] != "ask/price.asc" {
		t.Fatalf("request order params = %v", gotOrders)
	}
	if len(book.Bids) != 1 || book.Bids[0].PriceTicks != 620 {
		t.Fatalf("bids = %+v", book.Bids)
	}
	if len(book.Asks) != 1 || book.Asks[0].PriceTicks != 660 {
		t.Fatalf("asks = %+v", book.Asks)
	}
	if book.MarketID != "m-yes" || book.Outcome != domain.OutcomeYes {
		t.Fatalf("book identity = %q/%q", book.MarketID, book.Outcome)
	}
}

func TestQuestionsPaginates(t *testing.T) {
	total := questionPageSize + 3
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("isSettled") != "false" {
			t.Errorf("isSettled = %q", q.Get("isSettled"))
		}
		if q.Get("sortBy") != "questionEndTime" || q.Get("sortOrder") != "asc" {
			t.Errorf("sort params = %q/%q", q.Get("sortBy"), q.Get("sortOrder"))
		}
		wantSelect := "questionId,lotSize,tickSize,decimal,isSettled,settlementPrice," +
			"contractAddress,yesTokenMarketId,noTokenMarketId,blockchainMetadata,category"
		if q.Get("select") != wantSelect {
			t.Errorf("select = %q", q.Get("select"))
		}
		offset, _ := strconv.Atoi(q.Get("offset"))

		var page []APIQuestion
		for i := offset; i < total && i < offset+questionPageSize; i++ {
			page = append(page, APIQuestion{
				QuestionID:         "q-" + strconv.Itoa(i),
				BlockchainMetadata: APIBlockchainMetadata{QuestionHeader: "question"},
			})
		}
		json.NewEncoder(w).Encode(questionsResponse{Questions: page})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	markets, err := c.Questions(context.Background())
	if err != nil {
		t.Fatalf("Questions: %v", err)
	}
	if len(markets) != total {
		t.Fatalf("got %d markets, want %d", len(markets), total)
	}
	if markets[0].QuestionID != "q-0" || markets[total-1].QuestionID != "q-"+strconv.Itoa(total-1) {
		t.Fatalf("pagination order broken: first=%q last=%q", markets[0].QuestionID, markets[total-1].QuestionID)
	}
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusNotFound, domain.ErrNotFound},
		{http.StatusUnauthorized, domain.ErrUnauthorized},
		{http.StatusForbidden, domain.ErrUnauthorized},
		{http.StatusTooManyRequests, domain.ErrRateLimited},
		{http.StatusBadGateway, domain.ErrFetchFailed},
	}

	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		}))

		c := NewClient(srv.URL, "key")
		_, err := c.Question(context.Background(), "q-1")
		if !errors.Is(err, tt.want) {
			t.Errorf("status %d: err = %v, want %v", tt.status, err, tt.want)
		}
		srv.Close()
	}
}
