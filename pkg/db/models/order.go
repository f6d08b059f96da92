package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const OrderStatusPlaced = "PLACED"

// Order is a placed checkout with its priced totals and ship-to block.
type Order struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	UserID       uuid.UUID       `gorm:"column:user_id;type:uuid;not null;index"`
	OrderNumber  string          `gorm:"column:order_number;not null;uniqueIndex"`
	Status       string          `gorm:"column:status;not null"`
	Subtotal     decimal.Decimal `gorm:"column:subtotal;type:numeric(10,2);not null"`
	Tax          decimal.Decimal `gorm:"column:tax;type:numeric(10,2);not null"`
	Shipping     decimal.Decimal `gorm:"column:shipping;type:numeric(10,2);not null"`
	Total        decimal.Decimal `gorm:"column:total;type:numeric(10,2);not null"`
	ShipName     string          `gorm:"column:ship_name;not null"`
	ShipAddress1 string          `gorm:"column:ship_address1;not null"`
	ShipAddress2 string          `gorm:"column:ship_address2;not null"`
	ShipCity     string          `gorm:"column:ship_city;not null"`
	ShipRegion   string          `gorm:"column:ship_region;not null"`
	ShipPostal   string          `gorm:"column:ship_postal;not null"`
	ShipCountry  string          `gorm:"column:ship_country;not null"`
	Items        []OrderItem     `gorm:"foreignKey:OrderID"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// OrderItem snapshots a cart line at checkout time.
type OrderItem struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	OrderID   uuid.UUID       `gorm:"column:order_id;type:uuid;not null"`
	BookID    uuid.UUID       `gorm:"column:book_id;type:uuid;not null"`
	Title     string          `gorm:"column:title;not null"`
	Author    string          `gorm:"column:author;not null"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(10,2);not null"`
	Quantity  int             `gorm:"column:quantity;not null"`
	LineTotal decimal.Decimal `gorm:"column:line_total;type:numeric(10,2);not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}
