package orders

import (
	"time"

	"github.com/angelmondragon/bookstore/pkg/db/models"
	"github.com/angelmondragon/bookstore/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const placedMessage = "Order placed successfully!"

// CheckoutInput is the checkout body: the buyer plus the ship-to block.
type CheckoutInput struct {
	UserID uuid.UUID `json:"userId" validate:"required"`
	types.ShippingAddress
}

type CheckoutResult struct {
	OrderID     uuid.UUID       `json:"orderId"`
	OrderNumber string          `json:"orderNumber"`
	Total       decimal.Decimal `json:"total"`
	Message     string          `json:"message"`
}

type OrderItemDTO struct {
	ID         uuid.UUID       `json:"id"`
	Title      string          `json:"title"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	GrandTotal decimal.Decimal `json:"grandTotal"`
}

type OrderDTO struct {
	ID          uuid.UUID       `json:"id"`
	OrderNumber string          `json:"orderNumber"`
	Status      string          `json:"status"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Tax         decimal.Decimal `json:"tax"`
	Shipping    decimal.Decimal `json:"shipping"`
	Total       decimal.Decimal `json:"total"`
	PlacedAt    time.Time       `json:"placedAt"`
	Items       []OrderItemDTO  `json:"items"`
}

func FromModel(o *models.Order) OrderDTO {
	items := make([]OrderItemDTO, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemDTO{
			ID:         item.ID,
			Title:      item.Title,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			GrandTotal: item.LineTotal,
		})
	}
	return OrderDTO{
		ID:          o.ID,
		OrderNumber: o.OrderNumber,
		Status:      o.Status,
		Subtotal:    o.Subtotal,
		Tax:         o.Tax,
		Shipping:    o.Shipping,
		Total:       o.Total,
		PlacedAt:    o.CreatedAt,
		Items:       items,
	}
}
