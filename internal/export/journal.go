package export

import (
	"time"

	"github.com/yanun0323/errors"
	"gorm.io/gorm"

	"polotrader/internal/model"
)

// OrderRow is one journaled order placement. The journal is append-only and
// never read back by the trader.
type OrderRow struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	Pair        string `gorm:"index"`
	Record      string `gorm:"index"`
	OrderID     int64
	RequestTime time.Time
	Side        string
	Action      string
	Price       string
	Amount      string
	CandleIndex int
	CreatedAt   time.Time
}

func (OrderRow) TableName() string {
	return "order_journal"
}

// Journal persists every confirmed order placement into PostgreSQL.
type Journal struct {
	db *gorm.DB
}

func NewJournal(db *gorm.DB) (*Journal, error) {
	if err := db.AutoMigrate(&OrderRow{}); err != nil {
		return nil, errors.Wrap(err, "migrate order journal")
	}
	return &Journal{db: db}, nil
}

// Record appends one order row.
func (j *Journal) Record(pair, record string, order model.Order) error {
	row := OrderRow{
		Pair:        pair,
		Record:      record,
		OrderID:     order.ID,
		RequestTime: order.RequestTime,
		Side:        order.Side.String(),
		Action:      order.Action.String(),
		Price:       order.Price.StringFixed(model.MoneyScale),
		Amount:      order.Amount.StringFixed(model.MoneyScale),
		CandleIndex: order.Index,
	}

	if err := j.db.Create(&row).Error; err != nil {
		return errors.Wrap(err, "insert order journal row")
	}

	return nil
}
