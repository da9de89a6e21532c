package receipt

import (
	"Apoteka-Backend/domain"
	"Apoteka-Backend/entities"
	"Apoteka-Backend/pkg/portal"
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	ReceiptService interface {
		// ProcessReceiptScan runs the whole pipeline for one scanned
		// fiscal receipt URL. It never returns an error: every failure
		// is folded into the result so the scanning UI only ever deals
		// with a success flag and a message.
		ProcessReceiptScan(ctx context.Context, receiptURL string, userID string) domain.ScanReceiptResult

		GetClientReceipts(ctx context.Context, userID string, page, limit int) ([]domain.ReceiptResponse, int64, error)
		GetOrphanReceipts(ctx context.Context, olderThan time.Duration) ([]domain.OrphanReceiptResponse, error)
	}

	receiptService struct {
		receiptRepository ReceiptRepository
		portalClient      portal.Client
	}
)

func NewReceiptService(receiptRepository ReceiptRepository, portalClient portal.Client) ReceiptService {
	return &receiptService{
		receiptRepository: receiptRepository,
		portalClient:      portalClient,
	}
}

func (s *receiptService) ProcessReceiptScan(ctx context.Context, receiptURL string, userID string) domain.ScanReceiptResult {
	data, err := s.processScan(ctx, receiptURL, userID)
	if err != nil {
		log.Printf("receipt scan failed for user %s: %v", userID, err)
		return domain.ScanReceiptResult{
			Success: false,
			Message: domain.MessageScanFailed,
		}
	}

	return domain.ScanReceiptResult{
		Success: true,
		Message: fmt.Sprintf(domain.MessageScanAwarded, data.StarsAwarded),
		Data:    data,
	}
}

func (s *receiptService) processScan(ctx context.Context, receiptURL string, userID string) (*domain.ScanReceiptData, error) {
	if receiptURL == "" || !strings.Contains(receiptURL, s.portalClient.Host()) {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidReceiptURL, receiptURL)
	}

	jar := portal.NewCookieJar()

	ref, err := s.portalClient.FetchInvoice(ctx, receiptURL, jar)
	if err != nil {
		return nil, err
	}

	specs, err := s.portalClient.FetchSpecifications(ctx, receiptURL, ref, jar)
	if err != nil {
		return nil, err
	}

	return s.reconcile(ctx, receiptURL, userID, ref, specs.Items)
}

// reconcile turns fetched line items into durable rows and a star
// award. A failure up to the receipt insert aborts with nothing
// written; after that, per-item failures are logged and skipped so a
// partial item ledger does not cost the client the award. There is no
// rollback: a receipt whose items all failed stays behind as an orphan
// (see FindOrphanReceipts).
func (s *receiptService) reconcile(ctx context.Context, receiptURL string, userID string, ref *domain.InvoiceReference, items []domain.ReceiptLineItem) (*domain.ScanReceiptData, error) {
	var totalAmount float64
	for _, li := range items {
		// The scraped per-item total is authoritative; quantity times
		// unit price drifts once tax and label adjustments apply.
		totalAmount += li.Total
	}

	starsToAward := int(math.Floor(totalAmount / float64(domain.StarsExchangeRate)))

	client, err := s.receiptRepository.GetClientByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %s", domain.ErrClientNotFound, userID)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistenceFailed, err)
	}

	storedURL := receiptURL
	if len(storedURL) > domain.ReceiptURLMaxLength {
		storedURL = storedURL[:domain.ReceiptURLMaxLength]
	}

	receipt := &entities.Receipt{
		ID:         uuid.New(),
		ClientID:   client.ID,
		ReceiptURL: storedURL,
		Amount:     totalAmount,
		Date:       time.Now(),
	}
	if err := s.receiptRepository.CreateReceipt(ctx, receipt); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistenceFailed, err)
	}

	for _, li := range items {
		item, err := s.findOrCreateItem(ctx, li)
		if err != nil {
			log.Printf("skipping item %q on receipt %s: %v", li.Name, receipt.ID, err)
			continue
		}

		// One link row per unit, so unit counts can be read back by
		// counting rows.
		quantity := li.Quantity
		if quantity < 1 {
			quantity = 1
		}
		for unit := 0; unit < quantity; unit++ {
			link := &entities.ReceiptItem{
				ID:        uuid.New(),
				ReceiptID: receipt.ID,
				ItemID:    item.ID,
				CreatedAt: time.Now(),
			}
			if err := s.receiptRepository.CreateReceiptItem(ctx, link); err != nil {
				log.Printf("failed to link item %q to receipt %s: %v", li.Name, receipt.ID, err)
			}
		}
	}

	newStarsTotal, err := s.receiptRepository.AddClientStars(ctx, client.ID, starsToAward)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistenceFailed, err)
	}

	starTx := &entities.StarTransaction{
		ID:          uuid.New(),
		ClientID:    client.ID,
		Amount:      starsToAward,
		Type:        "Award",
		Description: fmt.Sprintf("Fiskalni račun %s", ref.InvoiceNumber),
		Balance:     newStarsTotal,
	}
	if err := s.receiptRepository.CreateStarTransaction(ctx, starTx); err != nil {
		// The ledger is advisory; the balance already moved.
		log.Printf("failed to record star transaction for client %s: %v", client.ID, err)
	}

	return &domain.ScanReceiptData{
		InvoiceNumber: ref.InvoiceNumber,
		TotalAmount:   totalAmount,
		ItemCount:     len(items),
		StarsAwarded:  starsToAward,
		NewStarsTotal: newStarsTotal,
		ReceiptID:     receipt.ID.String(),
	}, nil
}

func (s *receiptService) findOrCreateItem(ctx context.Context, li domain.ReceiptLineItem) (*entities.Item, error) {
	item, err := s.receiptRepository.GetItemByName(ctx, li.Name)
	if err == nil {
		return item, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	item = &entities.Item{
		ID:          uuid.New(),
		Name:        li.Name,
		Description: fmt.Sprintf("GTIN: %s", li.GTIN),
		Price:       li.UnitPrice,
	}
	if err := s.receiptRepository.CreateItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *receiptService) GetClientReceipts(ctx context.Context, userID string, page, limit int) ([]domain.ReceiptResponse, int64, error) {
	client, err := s.receiptRepository.GetClientByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, domain.ErrClientNotFound
		}
		return nil, 0, err
	}

	receipts, count, err := s.receiptRepository.GetReceiptsByClientID(ctx, client.ID, page, limit)
	if err != nil {
		return nil, 0, err
	}

	response := make([]domain.ReceiptResponse, 0, len(receipts))
	for _, r := range receipts {
		response = append(response, domain.ReceiptResponse{
			ID:        r.ID.String(),
			Amount:    r.Amount,
			Date:      r.Date,
			ItemCount: len(r.ReceiptItems),
		})
	}

	return response, count, nil
}

func (s *receiptService) GetOrphanReceipts(ctx context.Context, olderThan time.Duration) ([]domain.OrphanReceiptResponse, error) {
	receipts, err := s.receiptRepository.FindOrphanReceipts(ctx, time.Now().Add(-olderThan))
	if err != nil {
		return nil, err
	}

	response := make([]domain.OrphanReceiptResponse, 0, len(receipts))
	for _, r := range receipts {
		response = append(response, domain.OrphanReceiptResponse{
			ID:       r.ID.String(),
			ClientID: r.ClientID.String(),
			Amount:   r.Amount,
			Date:     r.Date,
		})
	}

	return response, nil
}
