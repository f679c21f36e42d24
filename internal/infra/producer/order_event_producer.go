package producer

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/RoyceAzure/lab/elshop/internal/domain/model"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

const OrderPaidEventName = "order.paid"

// OrderPaidEvent 結帳 commit 後對外發佈的事件
type OrderPaidEvent struct {
	EventName  string          `json:"event_name"`
	OrderID    uint            `json:"order_id"`
	CustomerID *uint           `json:"customer_id"`
	Currency   string          `json:"currency"`
	Total      decimal.Decimal `json:"total"`
	ItemCount  int             `json:"item_count"`
	OccurredAt time.Time       `json:"occurred_at"`
}

type IOrderEventProducer interface {
	PublishOrderPaid(ctx context.Context, order *model.Order) error
	Close() error
}

// 以 order id 作為 partition key，同一訂單的事件保序
type OrderEventProducer struct {
	writer *kafka.Writer
}

func NewOrderEventProducer(brokers []string, topic string) *OrderEventProducer {
	return &OrderEventProducer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		},
	}
}

func (p *OrderEventProducer) PublishOrderPaid(ctx context.Context, order *model.Order) error {
	event := OrderPaidEvent{
		EventName:  OrderPaidEventName,
		OrderID:    order.OrderID,
		CustomerID: order.CustomerID,
		Currency:   order.Currency,
		Total:      order.Total,
		ItemCount:  len(order.OrderItems),
		OccurredAt: time.Now().UTC(),
	}

	value, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatUint(uint64(order.OrderID), 10)),
		Value: value,
		Time:  event.OccurredAt,
	})
}

func (p *OrderEventProducer) Close() error {
	return p.writer.Close()
}

var _ IOrderEventProducer = (*OrderEventProducer)(nil)
