package trade

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yanun0323/errors"

	"polotrader/internal/model"
)

const defaultTradingURL = "https://poloniex.com/tradingApi"

var (
	ErrPoloniexResponse = errors.New("poloniex: response error")
	ErrPoloniexStatus   = errors.New("poloniex: unexpected http status")
)

// PoloniexClient submits signed orders to the poloniex trading API.
type PoloniexClient struct {
	url    string
	key    string
	secret string
	client *http.Client
}

func NewPoloniexClient(apiURL, key, secret string) *PoloniexClient {
	if apiURL == "" {
		apiURL = defaultTradingURL
	}
	return &PoloniexClient{
		url:    apiURL,
		key:    key,
		secret: secret,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

type poloniexOrderResponse struct {
	OrderNumber string `json:"orderNumber"`
	Error       string `json:"error"`
}

func (c *PoloniexClient) Submit(ctx context.Context, req SubmitRequest) (model.Order, error) {
	now := time.Now()

	form := url.Values{}
	form.Set("command", req.Side.String())
	form.Set("currencyPair", req.Pair)
	form.Set("rate", req.Price.StringFixed(model.MoneyScale))
	form.Set("amount", req.Amount.StringFixed(model.MoneyScale))
	form.Set("clientOrderId", uuid.NewString())
	form.Set("nonce", strconv.FormatInt(now.UnixNano(), 10))
	body := form.Encode()

	mac := hmac.New(sha512.New, []byte(c.secret))
	mac.Write([]byte(body))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, strings.NewReader(body))
	if err != nil {
		return model.Order{}, errors.Wrap(err, "build order request")
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("Key", c.key)
	httpReq.Header.Set("Sign", hex.EncodeToString(mac.Sum(nil)))

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return model.Order{}, errors.Wrap(err, "post order")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return model.Order{}, errors.Wrap(ErrPoloniexStatus, resp.Status)
	}

	var payload poloniexOrderResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return model.Order{}, errors.Wrap(err, "decode order response")
	}
	if payload.Error != "" {
		return model.Order{}, errors.Wrap(ErrPoloniexResponse, payload.Error)
	}
	id, err := strconv.ParseInt(payload.OrderNumber, 10, 64)
	if err != nil {
		return model.Order{}, errors.Wrap(err, "parse order number")
	}

	return model.Order{
		ID:          id,
		RequestTime: now,
		Price:       req.Price,
		Amount:      req.Amount,
		Side:        req.Side,
		Action:      req.Action,
		Index:       req.Index,
	}, nil
}
