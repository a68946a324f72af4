package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/grandnode/mobile-api/internal/core/domain"
)

const collectionOrders = "orders"

type OrderRepository struct {
	col *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) *OrderRepository {
	return &OrderRepository{col: db.Collection(collectionOrders)}
}

type totalsDoc struct {
	Subtotal       primitive.Decimal128 `bson:"subtotal"`
	DiscountAmount primitive.Decimal128 `bson:"discount_amount"`
	ShippingCost   primitive.Decimal128 `bson:"shipping_cost"`
	TaxAmount      primitive.Decimal128 `bson:"tax_amount"`
	PaymentFee     primitive.Decimal128 `bson:"payment_fee"`
	Total          primitive.Decimal128 `bson:"total"`
	Currency       string               `bson:"currency"`
}

type orderDoc struct {
	ID                string          `bson:"_id"`
	OrderNumber       string          `bson:"order_number"`
	CustomerGUID      string          `bson:"customer_guid"`
	Lines             []cartLineDoc   `bson:"lines"`
	BillingAddress    *domain.Address `bson:"billing_address,omitempty"`
	ShippingAddress   *domain.Address `bson:"shipping_address,omitempty"`
	ShippingMethodID  string          `bson:"shipping_method_id,omitempty"`
	PaymentMethodID   string          `bson:"payment_method_id,omitempty"`
	Notes             string          `bson:"notes,omitempty"`
	Totals            totalsDoc       `bson:"totals"`
	OrderStatus       string          `bson:"order_status"`
	PaymentStatus     string          `bson:"payment_status"`
	RequiresPayment   bool            `bson:"requires_payment"`
	OrderDate         time.Time       `bson:"order_date"`
	EstimatedDelivery time.Time       `bson:"estimated_delivery"`
}

func toOrderDoc(o *domain.OrderConfirmation) orderDoc {
	lines := make([]cartLineDoc, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, toCartLineDoc(l))
	}
	return orderDoc{
		ID:               o.OrderID,
		OrderNumber:      o.OrderNumber,
		CustomerGUID:     o.CustomerGUID.String(),
		Lines:            lines,
		BillingAddress:   o.BillingAddress,
		ShippingAddress:  o.ShippingAddress,
		ShippingMethodID: o.ShippingMethodID,
		PaymentMethodID:  o.PaymentMethodID,
		Notes:            o.Notes,
		Totals: totalsDoc{
			Subtotal:       toDecimal128(o.Totals.Subtotal),
			DiscountAmount: toDecimal128(o.Totals.DiscountAmount),
			ShippingCost:   toDecimal128(o.Totals.ShippingCost),
			TaxAmount:      toDecimal128(o.Totals.TaxAmount),
			PaymentFee:     toDecimal128(o.Totals.PaymentFee),
			Total:          toDecimal128(o.Totals.Total),
			Currency:       o.Totals.Currency,
		},
		OrderStatus:       o.OrderStatus,
		PaymentStatus:     o.PaymentStatus,
		RequiresPayment:   o.RequiresPayment,
		OrderDate:         o.OrderDate,
		EstimatedDelivery: o.EstimatedDelivery,
	}
}

func (r *OrderRepository) Insert(ctx context.Context, o *domain.OrderConfirmation) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, toOrderDoc(o)); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (r *OrderRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "order_number", Value: 1}}},
		{Keys: bson.D{{Key: "customer_guid", Value: 1}, {Key: "order_date", Value: -1}}},
	}
	if _, err := r.col.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("order indexes: %w", err)
	}
	return nil
}
