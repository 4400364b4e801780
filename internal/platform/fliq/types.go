package fliq

import (
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/ad714/bookmirror/internal/domain"
)

// APIQuestion is the upstream question record. On-chain identifiers and
// sizing parameters sit at the top level; the display metadata nests
// under blockchainMetadata. Numeric fields arrive as strings and are
// parsed leniently: a question with a malformed lot size is still
// listable, it just falls back to a neutral scale.
type APIQuestion struct {
	QuestionID       string `json:"questionId"`
	LotSize          string `json:"lotSize"`
	TickSize         string `json:"tickSize"`
	Decimals         string `json:"decimal"`
	IsSettled        bool   `json:"isSettled"`
	SettlementPrice  string `json:"settlementPrice"`
	ContractAddress  string `json:"contractAddress"`
	YesTokenMarketID string `json:"yesTokenMarketId"`
	NoTokenMarketID  string `json:"noTokenMarketId"`

	BlockchainMetadata APIBlockchainMetadata `json:"blockchainMetadata"`
}

// APIBlockchainMetadata carries a question's display metadata: headers,
// grouping, category, tags, end time, and image.
type APIBlockchainMetadata struct {
	ParentQuestionID       string   `json:"parentQuestionId"`
	QuestionHeader         string   `json:"questionHeader"`
	ParentQuestionHeader   string   `json:"parentQuestionHeader"`
	QuestionHeaderExpanded string   `json:"questionHeaderExpanded"`
	Category               string   `json:"category"`
	Tags                   []string `json:"tags"`
	QuestionEndTime        string   `json:"questionEndTime"` // unix seconds as string
	ImgURL                 string   `json:"imgUrl"`
}

// APIPriceLevel is one aggregated level of an outcome market's book.
type APIPriceLevel struct {
	MarketID  int64   `json:"market_id"`
	Direction string  `json:"direction"` // "bid" or "ask"
	Price     int     `json:"price"`     // integer ticks, 0..1000
	TotalSize float64 `json:"total_size"`
	Version   int64   `json:"version"`
}

// ToDomainMarket maps an API question onto the domain market, applying
// sizing defaults and normalizing the contract address to its EIP-55
// checksummed form. Addresses that do not parse as hex are kept empty
// rather than failing the whole catalog page.
func (q APIQuestion) ToDomainMarket() domain.Market {
	bm := q.BlockchainMetadata

	m := domain.Market{
		QuestionID:   q.QuestionID,
		Header:       strings.TrimSpace(bm.QuestionHeader),
		ParentID:     bm.ParentQuestionID,
		ParentHeader: strings.TrimSpace(bm.ParentQuestionHeader),
		Category:     bm.Category,
		Tags:         bm.Tags,
		IsSettled:    q.IsSettled,
		YesMarketID:  q.YesTokenMarketID,
		NoMarketID:   q.NoTokenMarketID,
		ImageURL:     bm.ImgURL,
		LotSize:      parseFloatOr(q.LotSize, 1),
		TickSize:     parseFloatOr(q.TickSize, 1),
		Decimals:     parseIntOr(q.Decimals, 0),
		UpdatedAt:    time.Now().UTC(),
	}

	if m.Header == "" {
		m.Header = strings.TrimSpace(bm.QuestionHeaderExpanded)
	}

	if p, err := strconv.ParseFloat(q.SettlementPrice, 64); err == nil {
		m.SettlementPrice = p
	}
	if secs, err := strconv.ParseInt(bm.QuestionEndTime, 10, 64); err == nil && secs > 0 {
		m.EndTime = time.Unix(secs, 0).UTC()
	}
	if common.IsHexAddress(q.ContractAddress) {
		m.ContractAddress = common.HexToAddress(q.ContractAddress).Hex()
	}

	return m
}

// ToDomainLevel maps one API level to the domain representation,
// clamping the tick to the valid band. Levels with no size are
// meaningless and reported as ok=false.
func (l APIPriceLevel) ToDomainLevel(outcome domain.Outcome) (domain.PriceLevel, bool) {
	if l.TotalSize <= 0 {
		return domain.PriceLevel{}, false
	}

	side := domain.SideBid
	if strings.EqualFold(l.Direction, "ask") {
		side = domain.SideAsk
	}

	ticks := l.Price
	if ticks < domain.MinPriceTicks {
		ticks = domain.MinPriceTicks
	}
	if ticks > domain.MaxPriceTicks {
		ticks = domain.MaxPriceTicks
	}

	return domain.PriceLevel{
		Side:          side,
		PriceTicks:    ticks,
		Size:          l.TotalSize,
		SourceOutcome: outcome,
	}, true
}

func parseFloatOr(s string, def float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func parseIntOr(s string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v < 0 {
		return def
	}
	return v
}
