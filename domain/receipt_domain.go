package domain

import (
	"errors"
	"time"
)

var (
	MessageSuccessScanReceipt       = "receipt scanned successfully"
	MessageSuccessGetReceipts       = "receipts retrieved successfully"
	MessageSuccessGetOrphanReceipts = "orphan receipts retrieved successfully"

	MessageFailedScanReceipt       = "failed to scan receipt"
	MessageFailedGetReceipts       = "failed to retrieve receipts"
	MessageFailedGetOrphanReceipts = "failed to retrieve orphan receipts"

	// User-facing scan messages. The portal-facing pipeline keeps its
	// diagnostics in the log; the client only ever sees one of these.
	MessageScanAwarded = "Uspešno dodato %d zvezdica!"
	MessageScanFailed  = "Skeniranje računa nije uspelo. Pokušajte ponovo sa novim kodom."

	ErrInvalidReceiptURL = errors.New("invalid receipt url")
	ErrNetworkFailure    = errors.New("portal network failure")
	ErrPortalFetchFailed = errors.New("portal fetch failed")
	ErrExtractionFailed  = errors.New("invoice data extraction failed")
	ErrMalformedResponse = errors.New("malformed specifications response")
	ErrUpstreamRejected  = errors.New("portal rejected invoice specification request")
	ErrClientNotFound    = errors.New("client not found")
	ErrPersistenceFailed = errors.New("failed to persist receipt data")
)

const (
	// StarsExchangeRate is how many RSD of receipt total buy one star.
	StarsExchangeRate = 100

	// ReceiptURLMaxLength bounds the stored copy of the scanned URL.
	ReceiptURLMaxLength = 2000
)

type (
	InvoiceReference struct {
		InvoiceNumber string
		Token         string
	}

	ReceiptLineItem struct {
		GTIN          string  `json:"gtin"`
		Name          string  `json:"name"`
		Quantity      int     `json:"quantity"`
		Total         float64 `json:"total"`
		UnitPrice     float64 `json:"unitPrice"`
		Label         string  `json:"label"`
		LabelRate     float64 `json:"labelRate"`
		TaxBaseAmount float64 `json:"taxBaseAmount"`
		VATAmount     float64 `json:"vatAmount"`
	}

	ReceiptSpecifications struct {
		Success bool              `json:"success"`
		Items   []ReceiptLineItem `json:"items,omitempty"`
	}

	ScanReceiptRequest struct {
		ReceiptURL string `json:"receipt_url" validate:"required"`
		UserID     string `json:"user_id" validate:"required"`
	}

	ScanReceiptData struct {
		InvoiceNumber string  `json:"invoice_number"`
		TotalAmount   float64 `json:"total_amount"`
		ItemCount     int     `json:"item_count"`
		StarsAwarded  int     `json:"stars_awarded"`
		NewStarsTotal int     `json:"new_stars_total"`
		ReceiptID     string  `json:"receipt_id"`
	}

	ScanReceiptResult struct {
		Success bool             `json:"success"`
		Message string           `json:"message"`
		Data    *ScanReceiptData `json:"data,omitempty"`
	}

	ReceiptResponse struct {
		ID        string    `json:"id"`
		Amount    float64   `json:"amount"`
		Date      time.Time `json:"date"`
		ItemCount int       `json:"item_count"`
	}

	OrphanReceiptResponse struct {
		ID       string    `json:"id"`
		ClientID string    `json:"client_id"`
		Amount   float64   `json:"amount"`
		Date     time.Time `json:"date"`
	}
)
