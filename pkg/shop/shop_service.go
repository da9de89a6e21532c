package shop

import (
	"Apoteka-Backend/domain"
	"Apoteka-Backend/entities"
	"Apoteka-Backend/internal/utils/storage"
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	ShopService interface {
		GetShopItems(ctx context.Context) ([]domain.ShopItemResponse, error)
		AddShopItem(ctx context.Context, req domain.AddShopItemRequest) (domain.ShopItemResponse, error)
		UpdateShopItem(ctx context.Context, id string, req domain.UpdateShopItemRequest) error
		DeleteShopItem(ctx context.Context, id string) error
		UploadShopItemImage(ctx context.Context, req domain.UploadShopItemImageRequest) error
		PurchaseItem(ctx context.Context, req domain.PurchaseItemRequest, userID string) (domain.PurchaseItemResponse, error)
	}

	shopService struct {
		shopRepository ShopRepository
		s3             storage.AwsS3
	}
)

func NewShopService(shopRepository ShopRepository, s3 storage.AwsS3) ShopService {
	return &shopService{
		shopRepository: shopRepository,
		s3:             s3,
	}
}

func (s *shopService) GetShopItems(ctx context.Context) ([]domain.ShopItemResponse, error) {
	items, err := s.shopRepository.GetShopItems(ctx)
	if err != nil {
		return nil, err
	}

	response := make([]domain.ShopItemResponse, 0, len(items))
	for _, item := range items {
		response = append(response, domain.ShopItemResponse{
			ID:          item.ID.String(),
			ItemName:    item.ItemName,
			Description: item.Description,
			ImageURL:    item.ImageURL,
			StarPrice:   item.StarPrice,
			Quantity:    item.Quantity,
		})
	}

	return response, nil
}

func (s *shopService) AddShopItem(ctx context.Context, req domain.AddShopItemRequest) (domain.ShopItemResponse, error) {
	item := &entities.ShopItem{
		ID:          uuid.New(),
		ItemName:    req.ItemName,
		Description: req.Description,
		StarPrice:   req.StarPrice,
		Quantity:    req.Quantity,
	}

	if err := s.shopRepository.CreateShopItem(ctx, item); err != nil {
		return domain.ShopItemResponse{}, err
	}

	return domain.ShopItemResponse{
		ID:          item.ID.String(),
		ItemName:    item.ItemName,
		Description: item.Description,
		StarPrice:   item.StarPrice,
		Quantity:    item.Quantity,
	}, nil
}

func (s *shopService) UpdateShopItem(ctx context.Context, id string, req domain.UpdateShopItemRequest) error {
	item, err := s.shopRepository.GetShopItemByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrShopItemNotFound
		}
		return err
	}

	if req.ItemName != "" {
		item.ItemName = req.ItemName
	}
	if req.Description != "" {
		item.Description = req.Description
	}
	if req.StarPrice > 0 {
		item.StarPrice = req.StarPrice
	}
	if req.Quantity != nil {
		item.Quantity = *req.Quantity
	}

	return s.shopRepository.UpdateShopItem(ctx, item)
}

func (s *shopService) DeleteShopItem(ctx context.Context, id string) error {
	item, err := s.shopRepository.GetShopItemByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrShopItemNotFound
		}
		return err
	}

	if item.ImageURL != "" {
		objectKey := s.s3.GetObjectKeyFromLink(item.ImageURL)
		if objectKey != "" {
			_ = s.s3.DeleteFile(objectKey)
		}
	}

	return s.shopRepository.DeleteShopItem(ctx, id)
}

func (s *shopService) UploadShopItemImage(ctx context.Context, req domain.UploadShopItemImageRequest) error {
	item, err := s.shopRepository.GetShopItemByID(ctx, req.ShopItemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrShopItemNotFound
		}
		return err
	}

	fileName := fmt.Sprintf("shop-item-%s", item.ID.String())
	var objectKey string
	var uploadErr error

	if item.ImageURL != "" {
		existingKey := s.s3.GetObjectKeyFromLink(item.ImageURL)
		if existingKey != "" {
			objectKey, uploadErr = s.s3.UpdateFile(existingKey, req.Image, storage.AllowImage...)
		} else {
			objectKey, uploadErr = s.s3.UploadFile(fileName, req.Image, "shop-items", storage.AllowImage...)
		}
	} else {
		objectKey, uploadErr = s.s3.UploadFile(fileName, req.Image, "shop-items", storage.AllowImage...)
	}

	if uploadErr != nil {
		return uploadErr
	}

	item.ImageURL = s.s3.GetPublicLinkKey(objectKey)
	return s.shopRepository.UpdateShopItem(ctx, item)
}

func (s *shopService) PurchaseItem(ctx context.Context, req domain.PurchaseItemRequest, userID string) (domain.PurchaseItemResponse, error) {
	client, err := s.shopRepository.GetClientByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.PurchaseItemResponse{}, domain.ErrClientNotRegistered
		}
		return domain.PurchaseItemResponse{}, err
	}

	itemID, err := uuid.Parse(req.ItemID)
	if err != nil {
		return domain.PurchaseItemResponse{}, domain.ErrShopItemNotFound
	}

	item, newBalance, err := s.shopRepository.PurchaseShopItem(ctx, client.ID, itemID)
	if err != nil {
		return domain.PurchaseItemResponse{}, err
	}

	return domain.PurchaseItemResponse{
		ItemName:      item.ItemName,
		StarPrice:     item.StarPrice,
		NewStarsTotal: newBalance,
	}, nil
}
