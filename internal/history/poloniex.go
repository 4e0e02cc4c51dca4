package history

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yanun0323/errors"

	"polotrader/internal/model/enum"
)

const defaultPublicURL = "https://poloniex.com/public"

// Client fetches historical trades from the poloniex public API.
type Client struct {
	url    string
	client *http.Client
}

func NewClient(apiURL string) *Client {
	if apiURL == "" {
		apiURL = defaultPublicURL
	}
	return &Client{
		url:    apiURL,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

type tradeRow struct {
	GlobalTradeID int64  `json:"globalTradeID"`
	Date          string `json:"date"`
	Type          string `json:"type"`
	Rate          string `json:"rate"`
	Amount        string `json:"amount"`
	Total         string `json:"total"`
}

// TradesBetween requests one window. Network and server failures are
// transient; a malformed payload is permanent.
func (c *Client) TradesBetween(ctx context.Context, pair string, from, to time.Time) ([]Trade, error) {
	url := fmt.Sprintf("%s?command=returnTradeHistory&currencyPair=%s&start=%d&end=%d",
		c.url, pair, from.Unix(), to.Unix())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build history request")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(ErrTransient, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Wrap(ErrTransient, resp.Status)
	}

	var rows []tradeRow
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, errors.Wrap(err, "decode history payload")
	}

	trades := make([]Trade, 0, len(rows))
	for _, row := range rows {
		trade, err := row.parse()
		if err != nil {
			return nil, errors.Wrap(err, "parse history row")
		}
		trades = append(trades, trade)
	}

	// the exchange returns newest first, ingestion needs ascending time
	sort.Slice(trades, func(i, j int) bool {
		return trades[i].Time.Before(trades[j].Time)
	})
	return trades, nil
}

func (r tradeRow) parse() (Trade, error) {
	t, err := time.ParseInLocation("2006-01-02 15:04:05", r.Date, time.UTC)
	if err != nil {
		return Trade{}, errors.Wrap(err, "date")
	}
	side, err := enum.ParseOrderSide(r.Type)
	if err != nil {
		return Trade{}, err
	}
	rate, err := decimal.NewFromString(r.Rate)
	if err != nil {
		return Trade{}, errors.Wrap(err, "rate")
	}
	amount, err := decimal.NewFromString(r.Amount)
	if err != nil {
		return Trade{}, errors.Wrap(err, "amount")
	}
	total, err := decimal.NewFromString(r.Total)
	if err != nil {
		return Trade{}, errors.Wrap(err, "total")
	}
	return Trade{
		TradeID: r.GlobalTradeID,
		Time:    t,
		Side:    side,
		Rate:    rate,
		Amount:  amount,
		Total:   total,
	}, nil
}
