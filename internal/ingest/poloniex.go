package ingest

import (
	"context"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
	"github.com/yanun0323/pkg/sys"
	"github.com/yanun0323/pkg/ws"

	"polotrader/internal/model"
	"polotrader/internal/model/enum"
)

const _poloniexBaseWsUrl = "wss://ws.poloniex.com/ws/public"

const _keepAliveInterval = 20 * time.Second

type PoloniexPub struct {
	wss *ws.WebSocket
}

func NewPoloniexPub(ctx context.Context, wsURL string) *PoloniexPub {
	if wsURL == "" {
		wsURL = _poloniexBaseWsUrl
	}
	return &PoloniexPub{
		wss: ws.New(ctx, wsURL),
	}
}

func (repo *PoloniexPub) Len() int {
	return repo.wss.Len()
}

func (repo *PoloniexPub) Close() {
	repo.wss.Close()
}

func (repo *PoloniexPub) CloseWhenEmpty() bool {
	if repo.Len() == 0 {
		repo.Close()
		logs.Info("close websocket. reason: empty")
		return true
	}

	return false
}

func (repo *PoloniexPub) StartWebsocket(ctx context.Context) error {
	if err := repo.wss.Start(ctx); err != nil {
		return errors.Wrap(err, "start wss")
	}

	return nil
}

type PoloniexSubscribeRequest struct {
	Event   string   `json:"event"`
	Channel []string `json:"channel"`
	Symbols []string `json:"symbols"`
}

type PoloniexSubscribeResponse struct {
	Event   string   `json:"event"`
	Channel string   `json:"channel"`
	Symbols []string `json:"symbols"`
}

// SubscribeTrades subscribes the public trades channel for the given symbols.
func (repo *PoloniexPub) SubscribeTrades(ctx context.Context, symbols []string) error {
	appendIntoRegister := true
	if err := repo.wss.SendAndWait(ctx, ws.Sidecar{
		Sender: func(ctx context.Context, ws *ws.WebSocket) error {
			payload := PoloniexSubscribeRequest{
				Event:   "subscribe",
				Channel: []string{"trades"},
				Symbols: symbols,
			}

			if err := ws.WriteJSON(payload); err != nil {
				return errors.Wrap(err, "write subscribe payload").With("payload", payload)
			}

			return nil
		},
		Waiter: func(ctx context.Context, m ws.Message) (bool, error) {
			var resp PoloniexSubscribeResponse
			if err := m.Unmarshal(&resp); err != nil {
				return false, nil
			}
			if resp.Event == "error" {
				return false, errors.Errorf("subscribe and wait, channel: %s", resp.Channel)
			}
			return resp.Event == "subscribe" && resp.Channel == "trades", nil
		},
	}, appendIntoRegister); err != nil {
		return errors.Wrap(err, "send and wait")
	}

	return nil
}

type PoloniexTrade struct {
	Symbol     string `json:"symbol"`
	Amount     string `json:"amount"`
	Quantity   string `json:"quantity"`
	TakerSide  string `json:"takerSide"`
	CreateTime int64  `json:"createTime"`
	Price      string `json:"price"`
	ID         string `json:"id"`
	Ts         int64  `json:"ts"`
}

type poloniexTradeMessage struct {
	Channel string          `json:"channel"`
	Data    []PoloniexTrade `json:"data"`
}

// Tick converts the payload for candle ingestion.
func (t PoloniexTrade) Tick() (model.Tick, error) {
	price, err := decimal.NewFromString(t.Price)
	if err != nil {
		return model.Tick{}, errors.Wrap(err, "price")
	}
	quantity, err := decimal.NewFromString(t.Quantity)
	if err != nil {
		return model.Tick{}, errors.Wrap(err, "quantity")
	}
	side, err := enum.ParseOrderSide(t.TakerSide)
	if err != nil {
		return model.Tick{}, err
	}
	return model.Tick{
		Time:   time.UnixMilli(t.CreateTime),
		Price:  price,
		Amount: quantity,
		Side:   side,
	}, nil
}

// TradeID parses the exchange trade id.
func (t PoloniexTrade) TradeID() int64 {
	id, err := strconv.ParseInt(t.ID, 10, 64)
	if err != nil {
		return 0
	}
	return id
}

func (repo *PoloniexPub) ObserveTrades(ctx context.Context, handler func(t PoloniexTrade)) (unsubscribe func()) {
	ch, cancel := repo.wss.Subscribe()

	go func() {
		defer cancel()
		for {
			select {
			case <-sys.Shutdown():
				return
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok {
					return
				}

				resp, ok := ws.ReadMessage[poloniexTradeMessage](m)
				if !ok || resp.Channel != "trades" {
					continue
				}

				for _, trade := range resp.Data {
					handler(trade)
				}
			}
		}
	}()

	return cancel
}

// KeepAlive pings the endpoint so it keeps the connection open.
func (repo *PoloniexPub) KeepAlive(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(_keepAliveInterval)
		defer ticker.Stop()
		for {
			select {
			case <-sys.Shutdown():
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := repo.wss.WriteJSON(map[string]string{"event": "ping"}); err != nil {
					logs.Errorf("write ping, err: %+v", err)
				}
			}
		}
	}()
}
