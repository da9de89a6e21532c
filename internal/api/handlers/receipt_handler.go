package handlers

import (
	"Apoteka-Backend/domain"
	"Apoteka-Backend/internal/api/presenters"
	"Apoteka-Backend/pkg/receipt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	ReceiptHandler interface {
		ScanReceipt(c *fiber.Ctx) error
		GetMyReceipts(c *fiber.Ctx) error
		GetOrphanReceipts(c *fiber.Ctx) error
	}

	receiptHandler struct {
		receiptService receipt.ReceiptService
		validator      *validator.Validate
	}
)

func NewReceiptHandler(receiptService receipt.ReceiptService, validator *validator.Validate) ReceiptHandler {
	return &receiptHandler{
		receiptService: receiptService,
		validator:      validator,
	}
}

// ScanReceipt is called by the pharmacist app after scanning a client
// QR and a fiscal receipt QR. The pipeline never errors out of its own
// boundary, so the handler always answers 200 with the scan result.
func (h *receiptHandler) ScanReceipt(c *fiber.Ctx) error {
	req := new(domain.ScanReceiptRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedScanReceipt, err)
	}

	result := h.receiptService.ProcessReceiptScan(c.Context(), req.ReceiptURL, req.UserID)

	return presenters.SuccessResponse(c, result, fiber.StatusOK, domain.MessageSuccessScanReceipt)
}

func (h *receiptHandler) GetMyReceipts(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	page, err := strconv.Atoi(c.Query("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	limit, err := strconv.Atoi(c.Query("limit", "20"))
	if err != nil || limit < 1 {
		limit = 20
	}

	receipts, count, err := h.receiptService.GetClientReceipts(c.Context(), userID, page, limit)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedGetReceipts, err)
	}

	return presenters.SuccessResponse(c, fiber.Map{
		"receipts": receipts,
		"pagination": fiber.Map{
			"page":        page,
			"limit":       limit,
			"total":       count,
			"total_pages": (count + int64(limit) - 1) / int64(limit),
		},
	}, fiber.StatusOK, domain.MessageSuccessGetReceipts)
}

func (h *receiptHandler) GetOrphanReceipts(c *fiber.Ctx) error {
	hours, err := strconv.Atoi(c.Query("older_than_hours", "24"))
	if err != nil || hours < 0 {
		hours = 24
	}

	receipts, err := h.receiptService.GetOrphanReceipts(c.Context(), time.Duration(hours)*time.Hour)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedGetOrphanReceipts, err)
	}

	return presenters.SuccessResponse(c, receipts, fiber.StatusOK, domain.MessageSuccessGetOrphanReceipts)
}
