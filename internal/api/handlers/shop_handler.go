package handlers

import (
	"Apoteka-Backend/domain"
	"Apoteka-Backend/internal/api/presenters"
	"Apoteka-Backend/pkg/shop"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	ShopHandler interface {
		GetShopItems(c *fiber.Ctx) error
		AddShopItem(c *fiber.Ctx) error
		UpdateShopItem(c *fiber.Ctx) error
		DeleteShopItem(c *fiber.Ctx) error
		UploadShopItemImage(c *fiber.Ctx) error
		PurchaseItem(c *fiber.Ctx) error
	}

	shopHandler struct {
		shopService shop.ShopService
		validator   *validator.Validate
	}
)

func NewShopHandler(shopService shop.ShopService, validator *validator.Validate) ShopHandler {
	return &shopHandler{
		shopService: shopService,
		validator:   validator,
	}
}

func (h *shopHandler) GetShopItems(c *fiber.Ctx) error {
	items, err := h.shopService.GetShopItems(c.Context())
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedGetShopItems, err)
	}

	return presenters.SuccessResponse(c, items, fiber.StatusOK, domain.MessageSuccessGetShopItems)
}

func (h *shopHandler) AddShopItem(c *fiber.Ctx) error {
	req := new(domain.AddShopItemRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedAddShopItem, err)
	}

	res, err := h.shopService.AddShopItem(c.Context(), *req)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedAddShopItem, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessAddShopItem)
}

func (h *shopHandler) UpdateShopItem(c *fiber.Ctx) error {
	itemID := c.Params("id")

	req := new(domain.UpdateShopItemRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedUpdateShopItem, err)
	}

	if err := h.shopService.UpdateShopItem(c.Context(), itemID, *req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedUpdateShopItem, err)
	}

	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessUpdateShopItem)
}

func (h *shopHandler) DeleteShopItem(c *fiber.Ctx) error {
	itemID := c.Params("id")

	if err := h.shopService.DeleteShopItem(c.Context(), itemID); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedDeleteShopItem, err)
	}

	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessDeleteShopItem)
}

func (h *shopHandler) UploadShopItemImage(c *fiber.Ctx) error {
	image, err := c.FormFile("image")
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	req := domain.UploadShopItemImageRequest{
		ShopItemID: c.FormValue("shop_item_id"),
		Image:      image,
	}

	if err := h.validator.Struct(&req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedUploadItemImage, err)
	}

	if err := h.shopService.UploadShopItemImage(c.Context(), req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedUploadItemImage, err)
	}

	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessUploadItemImage)
}

func (h *shopHandler) PurchaseItem(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	req := new(domain.PurchaseItemRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedPurchaseItem, err)
	}

	res, err := h.shopService.PurchaseItem(c.Context(), *req, userID)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedPurchaseItem, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessPurchaseItem)
}
