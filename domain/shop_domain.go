package domain

import (
	"errors"
	"mime/multipart"
)

var (
	MessageSuccessGetShopItems    = "shop items retrieved successfully"
	MessageSuccessAddShopItem     = "shop item added successfully"
	MessageSuccessUpdateShopItem  = "shop item updated successfully"
	MessageSuccessDeleteShopItem  = "shop item deleted successfully"
	MessageSuccessUploadItemImage = "shop item image uploaded successfully"
	MessageSuccessPurchaseItem    = "item purchased successfully"

	MessageFailedGetShopItems    = "failed to retrieve shop items"
	MessageFailedAddShopItem     = "failed to add shop item"
	MessageFailedUpdateShopItem  = "failed to update shop item"
	MessageFailedDeleteShopItem  = "failed to delete shop item"
	MessageFailedUploadItemImage = "failed to upload shop item image"
	MessageFailedPurchaseItem    = "failed to purchase item"

	// Purchase failures surface to the client app verbatim.
	ErrShopItemNotFound    = errors.New("Artikal nije pronađen")
	ErrClientNotRegistered = errors.New("Korisnički nalog nije pronađen")
	ErrInsufficientStars   = errors.New("Nemate dovoljno Stars poena")
	ErrItemOutOfStock      = errors.New("Artikal trenutno nije dostupan")
)

type (
	ShopItemResponse struct {
		ID          string `json:"id"`
		ItemName    string `json:"item_name"`
		Description string `json:"description"`
		ImageURL    string `json:"image_url,omitempty"`
		StarPrice   int    `json:"star_price"`
		Quantity    int    `json:"quantity"`
	}

	AddShopItemRequest struct {
		ItemName    string `json:"item_name" validate:"required"`
		Description string `json:"description" validate:"omitempty"`
		StarPrice   int    `json:"star_price" validate:"required,min=1"`
		Quantity    int    `json:"quantity" validate:"required,min=0"`
	}

	UpdateShopItemRequest struct {
		ItemName    string `json:"item_name" validate:"omitempty"`
		Description string `json:"description" validate:"omitempty"`
		StarPrice   int    `json:"star_price" validate:"omitempty,min=1"`
		Quantity    *int   `json:"quantity" validate:"omitempty,min=0"`
	}

	UploadShopItemImageRequest struct {
		ShopItemID string                `form:"shop_item_id" validate:"required"`
		Image      *multipart.FileHeader `form:"image" validate:"required"`
	}

	PurchaseItemRequest struct {
		ItemID string `json:"item_id" validate:"required"`
	}

	PurchaseItemResponse struct {
		ItemName      string `json:"item_name"`
		StarPrice     int    `json:"star_price"`
		NewStarsTotal int    `json:"new_stars_total"`
	}
)
