package receipt

import (
	"Apoteka-Backend/entities"
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	ReceiptRepository interface {
		GetClientByUserID(ctx context.Context, userID string) (*entities.Client, error)
		CreateReceipt(ctx context.Context, receipt *entities.Receipt) error
		GetItemByName(ctx context.Context, name string) (*entities.Item, error)
		CreateItem(ctx context.Context, item *entities.Item) error
		CreateReceiptItem(ctx context.Context, link *entities.ReceiptItem) error

		// AddClientStars atomically increments the client's balance and
		// returns the new total. Concurrent scans for the same client
		// must not lose awards, so the increment happens in a single
		// statement rather than a read-modify-write.
		AddClientStars(ctx context.Context, clientID uuid.UUID, stars int) (int, error)

		CreateStarTransaction(ctx context.Context, tx *entities.StarTransaction) error
		GetReceiptsByClientID(ctx context.Context, clientID uuid.UUID, page, limit int) ([]*entities.Receipt, int64, error)
		FindOrphanReceipts(ctx context.Context, before time.Time) ([]*entities.Receipt, error)
	}

	receiptRepository struct {
		db *gorm.DB
	}
)

func NewReceiptRepository(db *gorm.DB) ReceiptRepository {
	return &receiptRepository{db: db}
}

func (r *receiptRepository) GetClientByUserID(ctx context.Context, userID string) (*entities.Client, error) {
	var client entities.Client
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&client).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *receiptRepository) CreateReceipt(ctx context.Context, receipt *entities.Receipt) error {
	return r.db.WithContext(ctx).Create(receipt).Error
}

func (r *receiptRepository) GetItemByName(ctx context.Context, name string) (*entities.Item, error) {
	var item entities.Item
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *receiptRepository) CreateItem(ctx context.Context, item *entities.Item) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *receiptRepository) CreateReceiptItem(ctx context.Context, link *entities.ReceiptItem) error {
	return r.db.WithContext(ctx).Create(link).Error
}

func (r *receiptRepository) AddClientStars(ctx context.Context, clientID uuid.UUID, stars int) (int, error) {
	var newTotal int
	err := r.db.WithContext(ctx).
		Raw("UPDATE clients SET stars = stars + ?, updated_at = NOW() WHERE id = ? RETURNING stars", stars, clientID).
		Scan(&newTotal).Error
	if err != nil {
		return 0, err
	}
	return newTotal, nil
}

func (r *receiptRepository) CreateStarTransaction(ctx context.Context, tx *entities.StarTransaction) error {
	return r.db.WithContext(ctx).Create(tx).Error
}

func (r *receiptRepository) GetReceiptsByClientID(ctx context.Context, clientID uuid.UUID, page, limit int) ([]*entities.Receipt, int64, error) {
	var receipts []*entities.Receipt
	var count int64

	offset := (page - 1) * limit

	if err := r.db.WithContext(ctx).
		Model(&entities.Receipt{}).
		Where("client_id = ?", clientID).
		Count(&count).Error; err != nil {
		return nil, 0, err
	}

	if err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Preload("ReceiptItems").
		Order("date DESC").
		Offset(offset).
		Limit(limit).
		Find(&receipts).Error; err != nil {
		return nil, 0, err
	}

	return receipts, count, nil
}

// FindOrphanReceipts returns receipts past the cutoff with no linked
// items. A failed reconciliation leaves such rows behind (there is no
// compensating rollback); this query makes that debris visible for
// manual cleanup.
func (r *receiptRepository) FindOrphanReceipts(ctx context.Context, before time.Time) ([]*entities.Receipt, error) {
	var receipts []*entities.Receipt
	if err := r.db.WithContext(ctx).
		Joins("LEFT JOIN receipt_items ON receipt_items.receipt_id = receipts.id").
		Where("receipt_items.id IS NULL AND receipts.date < ?", before).
		Find(&receipts).Error; err != nil {
		return nil, err
	}
	return receipts, nil
}
