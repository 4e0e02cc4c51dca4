package enum

import "github.com/yanun0323/errors"

var ErrUnknownOrderSide = errors.New("unknown order side")

// OrderSide buy, sell
type OrderSide uint8

const (
	_order_side_beg OrderSide = iota
	OrderSideBuy
	OrderSideSell
	_order_side_end
)

func (s OrderSide) IsAvailable() bool {
	return s > _order_side_beg && s < _order_side_end
}

func (s OrderSide) String() string {
	switch s {
	case OrderSideBuy:
		return "buy"
	case OrderSideSell:
		return "sell"
	default:
		return "unknown"
	}
}

// Opposite returns the side an exit order takes against the entry side.
func (s OrderSide) Opposite() OrderSide {
	switch s {
	case OrderSideBuy:
		return OrderSideSell
	case OrderSideSell:
		return OrderSideBuy
	default:
		return s
	}
}

// ParseOrderSide parses the lowercase form used in configs and exchange payloads.
func ParseOrderSide(s string) (OrderSide, error) {
	switch s {
	case "buy":
		return OrderSideBuy, nil
	case "sell":
		return OrderSideSell, nil
	default:
		return _order_side_beg, errors.Wrap(ErrUnknownOrderSide, s)
	}
}
