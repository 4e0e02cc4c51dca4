package trade

import (
	"context"
	"sync/atomic"
	"time"

	"polotrader/internal/model"
)

// SimulatedSubmitter confirms every order locally at the requested price.
// Used by paper trading and the backtest tool.
type SimulatedSubmitter struct {
	nextID atomic.Int64
}

func NewSimulatedSubmitter() *SimulatedSubmitter {
	return &SimulatedSubmitter{}
}

func (s *SimulatedSubmitter) Submit(_ context.Context, req SubmitRequest) (model.Order, error) {
	return model.Order{
		ID:          s.nextID.Add(1),
		RequestTime: time.Now(),
		Price:       req.Price,
		Amount:      req.Amount,
		Side:        req.Side,
		Action:      req.Action,
		Index:       req.Index,
	}, nil
}
