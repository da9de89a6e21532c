package entities

import (
	"time"

	"github.com/google/uuid"
)

type Receipt struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	ClientID   uuid.UUID `json:"client_id"`
	ReceiptURL string    `gorm:"type:varchar(2000)" json:"receipt_url"`
	Amount     float64   `json:"amount"`
	Date       time.Time `json:"date"`

	Client       *Client        `gorm:"foreignKey:ClientID"`
	ReceiptItems []*ReceiptItem `gorm:"foreignKey:ReceiptID"`
	Timestamp
}

type Item struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	Name        string    `gorm:"uniqueIndex" json:"name"`
	Description string    `json:"description"` // carries "GTIN: <gtin>" from the fiscal receipt
	Price       float64   `json:"price"`

	Timestamp
}

// ReceiptItem links a receipt to an item. One row is written per unit
// of quantity, so consumers count units by counting rows.
type ReceiptItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	ReceiptID uuid.UUID `json:"receipt_id"`
	ItemID    uuid.UUID `json:"item_id"`
	CreatedAt time.Time `gorm:"type:timestamp" json:"created_at"`

	Receipt *Receipt `gorm:"foreignKey:ReceiptID"`
	Item    *Item    `gorm:"foreignKey:ItemID"`
}

type StarTransaction struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	ClientID    uuid.UUID `json:"client_id"`
	Amount      int       `json:"amount"` // negative for purchases
	Type        string    `json:"type"`   // "Award", "Purchase"
	Description string    `json:"description"`
	Balance     int       `json:"balance"`

	Client *Client `gorm:"foreignKey:ClientID"`
	Timestamp
}
