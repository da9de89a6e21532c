package shop

import (
	"Apoteka-Backend/domain"
	"Apoteka-Backend/entities"
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	ShopRepository interface {
		CreateShopItem(ctx context.Context, item *entities.ShopItem) error
		GetShopItems(ctx context.Context) ([]*entities.ShopItem, error)
		GetShopItemByID(ctx context.Context, id string) (*entities.ShopItem, error)
		UpdateShopItem(ctx context.Context, item *entities.ShopItem) error
		DeleteShopItem(ctx context.Context, id string) error

		GetClientByUserID(ctx context.Context, userID string) (*entities.Client, error)

		// PurchaseShopItem is the balance-check-and-decrement: inside
		// one transaction it verifies stock and stars, decrements both
		// and records the purchase. Returns the item and the client's
		// new balance.
		PurchaseShopItem(ctx context.Context, clientID, shopItemID uuid.UUID) (*entities.ShopItem, int, error)
	}

	shopRepository struct {
		db *gorm.DB
	}
)

func NewShopRepository(db *gorm.DB) ShopRepository {
	return &shopRepository{db: db}
}

func (r *shopRepository) CreateShopItem(ctx context.Context, item *entities.ShopItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *shopRepository) GetShopItems(ctx context.Context) ([]*entities.ShopItem, error) {
	var items []*entities.ShopItem
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *shopRepository) GetShopItemByID(ctx context.Context, id string) (*entities.ShopItem, error) {
	var item entities.ShopItem
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *shopRepository) UpdateShopItem(ctx context.Context, item *entities.ShopItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *shopRepository) DeleteShopItem(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&entities.ShopItem{}).Error
}

func (r *shopRepository) GetClientByUserID(ctx context.Context, userID string) (*entities.Client, error) {
	var client entities.Client
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&client).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *shopRepository) PurchaseShopItem(ctx context.Context, clientID, shopItemID uuid.UUID) (*entities.ShopItem, int, error) {
	var item entities.ShopItem
	var newBalance int

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", shopItemID).First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrShopItemNotFound
			}
			return err
		}

		if item.Quantity < 1 {
			return domain.ErrItemOutOfStock
		}

		var client entities.Client
		if err := tx.Where("id = ?", clientID).First(&client).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrClientNotRegistered
			}
			return err
		}

		if client.Stars < item.StarPrice {
			return domain.ErrInsufficientStars
		}

		// Conditional updates so concurrent purchases cannot drive
		// stock or stars negative.
		res := tx.Model(&entities.ShopItem{}).
			Where("id = ? AND quantity >= 1", item.ID).
			Update("quantity", gorm.Expr("quantity - 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrItemOutOfStock
		}

		res = tx.Model(&entities.Client{}).
			Where("id = ? AND stars >= ?", client.ID, item.StarPrice).
			Update("stars", gorm.Expr("stars - ?", item.StarPrice))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrInsufficientStars
		}

		if err := tx.Where("id = ?", client.ID).First(&client).Error; err != nil {
			return err
		}
		newBalance = client.Stars

		purchase := &entities.ShopPurchase{
			ID:         uuid.New(),
			ClientID:   client.ID,
			ShopItemID: item.ID,
			StarPrice:  item.StarPrice,
		}
		if err := tx.Create(purchase).Error; err != nil {
			return err
		}

		starTx := &entities.StarTransaction{
			ID:          uuid.New(),
			ClientID:    client.ID,
			Amount:      -item.StarPrice,
			Type:        "Purchase",
			Description: fmt.Sprintf("Kupovina: %s", item.ItemName),
			Balance:     newBalance,
		}
		return tx.Create(starTx).Error
	})
	if err != nil {
		return nil, 0, err
	}

	return &item, newBalance, nil
}
