package entities

import (
	"github.com/google/uuid"
)

type ShopItem struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	ItemName    string    `json:"item_name"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url,omitempty"`
	StarPrice   int       `json:"star_price"`
	Quantity    int       `json:"quantity"`

	Timestamp
}

type ShopPurchase struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	ClientID   uuid.UUID `json:"client_id"`
	ShopItemID uuid.UUID `json:"shop_item_id"`
	StarPrice  int       `json:"star_price"`

	Client   *Client   `gorm:"foreignKey:ClientID"`
	ShopItem *ShopItem `gorm:"foreignKey:ShopItemID"`
	Timestamp
}
