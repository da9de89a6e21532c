package receipt

import (
	"Apoteka-Backend/domain"
	"Apoteka-Backend/entities"
	"Apoteka-Backend/pkg/portal"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type fakePortal struct {
	ref      *domain.InvoiceReference
	items    []domain.ReceiptLineItem
	specsErr error
	calls    int
}

func (f *fakePortal) Host() string {
	return "suf.purs.gov.rs"
}

func (f *fakePortal) FetchInvoice(ctx context.Context, receiptURL string, jar *portal.CookieJar) (*domain.InvoiceReference, error) {
	f.calls++
	return f.ref, nil
}

func (f *fakePortal) FetchSpecifications(ctx context.Context, receiptURL string, ref *domain.InvoiceReference, jar *portal.CookieJar) (*domain.ReceiptSpecifications, error) {
	f.calls++
	if f.specsErr != nil {
		return nil, f.specsErr
	}
	return &domain.ReceiptSpecifications{Success: true, Items: f.items}, nil
}

type fakeRepository struct {
	clients  map[string]*entities.Client
	receipts []*entities.Receipt
	items    []*entities.Item
	links    []*entities.ReceiptItem
	starTxs  []*entities.StarTransaction

	createItemErr error
	createLinkErr error
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{clients: make(map[string]*entities.Client)}
}

func (f *fakeRepository) addClient(userID string, stars int) *entities.Client {
	client := &entities.Client{ID: uuid.New(), UserID: uuid.New(), Stars: stars}
	f.clients[userID] = client
	return client
}

func (f *fakeRepository) GetClientByUserID(ctx context.Context, userID string) (*entities.Client, error) {
	client, ok := f.clients[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return client, nil
}

func (f *fakeRepository) CreateReceipt(ctx context.Context, receipt *entities.Receipt) error {
	f.receipts = append(f.receipts, receipt)
	return nil
}

func (f *fakeRepository) GetItemByName(ctx context.Context, name string) (*entities.Item, error) {
	for _, item := range f.items {
		if item.Name == name {
			return item, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) CreateItem(ctx context.Context, item *entities.Item) error {
	if f.createItemErr != nil {
		return f.createItemErr
	}
	f.items = append(f.items, item)
	return nil
}

func (f *fakeRepository) CreateReceiptItem(ctx context.Context, link *entities.ReceiptItem) error {
	if f.createLinkErr != nil {
		return f.createLinkErr
	}
	f.links = append(f.links, link)
	return nil
}

func (f *fakeRepository) AddClientStars(ctx context.Context, clientID uuid.UUID, stars int) (int, error) {
	for _, client := range f.clients {
		if client.ID == clientID {
			client.Stars += stars
			return client.Stars, nil
		}
	}
	return 0, gorm.ErrRecordNotFound
}

func (f *fakeRepository) CreateStarTransaction(ctx context.Context, tx *entities.StarTransaction) error {
	f.starTxs = append(f.starTxs, tx)
	return nil
}

func (f *fakeRepository) GetReceiptsByClientID(ctx context.Context, clientID uuid.UUID, page, limit int) ([]*entities.Receipt, int64, error) {
	var receipts []*entities.Receipt
	for _, r := range f.receipts {
		if r.ClientID == clientID {
			receipts = append(receipts, r)
		}
	}
	return receipts, int64(len(receipts)), nil
}

func (f *fakeRepository) FindOrphanReceipts(ctx context.Context, before time.Time) ([]*entities.Receipt, error) {
	linked := make(map[uuid.UUID]bool)
	for _, link := range f.links {
		linked[link.ReceiptID] = true
	}
	var orphans []*entities.Receipt
	for _, r := range f.receipts {
		if !linked[r.ID] && r.Date.Before(before) {
			orphans = append(orphans, r)
		}
	}
	return orphans, nil
}

const scanURL = "https://suf.purs.gov.rs/v/?vl=A1B2C3"

func lineItem(name, gtin string, quantity int, unitPrice, total float64) domain.ReceiptLineItem {
	return domain.ReceiptLineItem{
		GTIN:      gtin,
		Name:      name,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		Total:     total,
	}
}

func TestProcessReceiptScanAwardsStars(t *testing.T) {
	repo := newFakeRepository()
	client := repo.addClient("user-1", 5)

	p := &fakePortal{
		ref:   &domain.InvoiceReference{InvoiceNumber: "INV1", Token: "TOK1"},
		items: []domain.ReceiptLineItem{lineItem("Lek A", "123", 2, 150, 300)},
	}
	service := NewReceiptService(repo, p)

	result := service.ProcessReceiptScan(context.Background(), scanURL, "user-1")

	if !result.Success {
		t.Fatalf("scan failed: %s", result.Message)
	}
	if result.Data == nil {
		t.Fatal("expected scan data")
	}
	if result.Data.InvoiceNumber != "INV1" {
		t.Errorf("InvoiceNumber = %q, expected INV1", result.Data.InvoiceNumber)
	}
	if result.Data.TotalAmount != 300 {
		t.Errorf("TotalAmount = %v, expected 300", result.Data.TotalAmount)
	}
	if result.Data.StarsAwarded != 3 {
		t.Errorf("StarsAwarded = %d, expected 3", result.Data.StarsAwarded)
	}
	if result.Data.NewStarsTotal != 8 {
		t.Errorf("NewStarsTotal = %d, expected 8", result.Data.NewStarsTotal)
	}
	if result.Data.ItemCount != 1 {
		t.Errorf("ItemCount = %d, expected 1", result.Data.ItemCount)
	}
	if result.Message != fmt.Sprintf(domain.MessageScanAwarded, 3) {
		t.Errorf("Message = %q", result.Message)
	}

	if len(repo.receipts) != 1 {
		t.Fatalf("len(receipts) = %d, expected 1", len(repo.receipts))
	}
	receipt := repo.receipts[0]
	if receipt.ClientID != client.ID || receipt.Amount != 300 || receipt.ReceiptURL != scanURL {
		t.Errorf("unexpected receipt: %+v", receipt)
	}

	if len(repo.items) != 1 {
		t.Fatalf("len(items) = %d, expected 1", len(repo.items))
	}
	item := repo.items[0]
	if item.Name != "Lek A" || item.Description != "GTIN: 123" || item.Price != 150 {
		t.Errorf("unexpected item: %+v", item)
	}

	// quantity 2 fans out into two link rows against the same item
	if len(repo.links) != 2 {
		t.Fatalf("len(links) = %d, expected 2", len(repo.links))
	}
	for _, link := range repo.links {
		if link.ReceiptID != receipt.ID || link.ItemID != item.ID {
			t.Errorf("unexpected link: %+v", link)
		}
	}

	if len(repo.starTxs) != 1 {
		t.Fatalf("len(starTxs) = %d, expected 1", len(repo.starTxs))
	}
	if repo.starTxs[0].Amount != 3 || repo.starTxs[0].Balance != 8 || repo.starTxs[0].Type != "Award" {
		t.Errorf("unexpected star transaction: %+v", repo.starTxs[0])
	}

	if client.Stars != 8 {
		t.Errorf("client stars = %d, expected 8", client.Stars)
	}
}

func TestStarAwardBoundaries(t *testing.T) {
	tests := []struct {
		total    float64
		expected int
	}{
		{0, 0},
		{99, 0},
		{100, 1},
		{199, 1},
		{250, 2},
		{1050, 10},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("total_%v", tt.total), func(t *testing.T) {
			repo := newFakeRepository()
			repo.addClient("user-1", 0)

			p := &fakePortal{
				ref:   &domain.InvoiceReference{InvoiceNumber: "INV1", Token: "TOK1"},
				items: []domain.ReceiptLineItem{lineItem("Lek A", "123", 1, tt.total, tt.total)},
			}
			service := NewReceiptService(repo, p)

			result := service.ProcessReceiptScan(context.Background(), scanURL, "user-1")
			if !result.Success {
				t.Fatalf("scan failed: %s", result.Message)
			}
			if result.Data.StarsAwarded != tt.expected {
				t.Errorf("StarsAwarded = %d, expected %d", result.Data.StarsAwarded, tt.expected)
			}
		})
	}
}

func TestQuantityFanOut(t *testing.T) {
	repo := newFakeRepository()
	repo.addClient("user-1", 0)

	p := &fakePortal{
		ref:   &domain.InvoiceReference{InvoiceNumber: "INV1", Token: "TOK1"},
		items: []domain.ReceiptLineItem{lineItem("Lek B", "456", 3, 100, 300)},
	}
	service := NewReceiptService(repo, p)

	result := service.ProcessReceiptScan(context.Background(), scanURL, "user-1")
	if !result.Success {
		t.Fatalf("scan failed: %s", result.Message)
	}

	if len(repo.items) != 1 {
		t.Fatalf("len(items) = %d, expected 1", len(repo.items))
	}
	if len(repo.links) != 3 {
		t.Fatalf("len(links) = %d, expected 3", len(repo.links))
	}
	for _, link := range repo.links {
		if link.ItemID != repo.items[0].ID {
			t.Errorf("link references item %s, expected %s", link.ItemID, repo.items[0].ID)
		}
	}
}

func TestItemReusedAcrossScans(t *testing.T) {
	repo := newFakeRepository()
	repo.addClient("user-1", 0)

	p := &fakePortal{
		ref:   &domain.InvoiceReference{InvoiceNumber: "INV1", Token: "TOK1"},
		items: []domain.ReceiptLineItem{lineItem("Lek A", "123", 1, 100, 100)},
	}
	service := NewReceiptService(repo, p)

	if result := service.ProcessReceiptScan(context.Background(), scanURL, "user-1"); !result.Success {
		t.Fatalf("first scan failed: %s", result.Message)
	}
	if result := service.ProcessReceiptScan(context.Background(), scanURL, "user-1"); !result.Success {
		t.Fatalf("second scan failed: %s", result.Message)
	}

	if len(repo.items) != 1 {
		t.Errorf("len(items) = %d, expected the catalog row to be reused", len(repo.items))
	}
	if len(repo.receipts) != 2 {
		t.Errorf("len(receipts) = %d, expected 2", len(repo.receipts))
	}

	p.items = []domain.ReceiptLineItem{lineItem("Lek C", "789", 1, 50, 50)}
	if result := service.ProcessReceiptScan(context.Background(), scanURL, "user-1"); !result.Success {
		t.Fatalf("third scan failed: %s", result.Message)
	}
	if len(repo.items) != 2 {
		t.Errorf("len(items) = %d, expected a new catalog row for the new name", len(repo.items))
	}
}

func TestItemInsertFailureKeepsAward(t *testing.T) {
	repo := newFakeRepository()
	repo.addClient("user-1", 0)
	repo.createItemErr = errors.New("duplicate key value violates unique constraint")

	p := &fakePortal{
		ref:   &domain.InvoiceReference{InvoiceNumber: "INV1", Token: "TOK1"},
		items: []domain.ReceiptLineItem{lineItem("Lek A", "123", 2, 150, 300)},
	}
	service := NewReceiptService(repo, p)

	result := service.ProcessReceiptScan(context.Background(), scanURL, "user-1")
	if !result.Success {
		t.Fatalf("scan failed: %s", result.Message)
	}
	if result.Data.StarsAwarded != 3 {
		t.Errorf("StarsAwarded = %d, expected the full award 3", result.Data.StarsAwarded)
	}

	if len(repo.items) != 0 || len(repo.links) != 0 {
		t.Errorf("items = %d, links = %d, expected the failing item to be skipped", len(repo.items), len(repo.links))
	}
	if len(repo.receipts) != 1 {
		t.Fatalf("len(receipts) = %d, expected the receipt row to stay", len(repo.receipts))
	}
	if len(repo.starTxs) != 1 || repo.starTxs[0].Balance != 3 {
		t.Errorf("unexpected star transactions: %+v", repo.starTxs)
	}

	// With no item links landed, the receipt must surface as an orphan.
	orphans, err := repo.FindOrphanReceipts(context.Background(), time.Now().Add(time.Second))
	if err != nil {
		t.Fatalf("FindOrphanReceipts returned error: %v", err)
	}
	if len(orphans) != 1 || orphans[0].ID != repo.receipts[0].ID {
		t.Errorf("unexpected orphans: %+v", orphans)
	}
}

func TestLinkInsertFailureKeepsAward(t *testing.T) {
	repo := newFakeRepository()
	client := repo.addClient("user-1", 1)
	repo.createLinkErr = errors.New("connection reset by peer")

	p := &fakePortal{
		ref:   &domain.InvoiceReference{InvoiceNumber: "INV1", Token: "TOK1"},
		items: []domain.ReceiptLineItem{lineItem("Lek B", "456", 3, 100, 300)},
	}
	service := NewReceiptService(repo, p)

	result := service.ProcessReceiptScan(context.Background(), scanURL, "user-1")
	if !result.Success {
		t.Fatalf("scan failed: %s", result.Message)
	}
	if result.Data.StarsAwarded != 3 {
		t.Errorf("StarsAwarded = %d, expected 3", result.Data.StarsAwarded)
	}
	if client.Stars != 4 {
		t.Errorf("client stars = %d, expected 4", client.Stars)
	}

	if len(repo.items) != 1 {
		t.Errorf("len(items) = %d, expected the catalog row to land", len(repo.items))
	}
	if len(repo.links) != 0 {
		t.Errorf("len(links) = %d, expected none", len(repo.links))
	}

	orphans, err := repo.FindOrphanReceipts(context.Background(), time.Now().Add(time.Second))
	if err != nil {
		t.Fatalf("FindOrphanReceipts returned error: %v", err)
	}
	if len(orphans) != 1 {
		t.Errorf("len(orphans) = %d, expected the linkless receipt listed", len(orphans))
	}
}

func TestUpstreamRejectedWritesNothing(t *testing.T) {
	repo := newFakeRepository()
	client := repo.addClient("user-1", 5)

	p := &fakePortal{
		ref:      &domain.InvoiceReference{InvoiceNumber: "INV1", Token: "TOK1"},
		specsErr: domain.ErrUpstreamRejected,
	}
	service := NewReceiptService(repo, p)

	result := service.ProcessReceiptScan(context.Background(), scanURL, "user-1")
	if result.Success {
		t.Fatal("expected scan to fail")
	}
	if result.Message != domain.MessageScanFailed {
		t.Errorf("Message = %q, expected the generic failure message", result.Message)
	}

	if len(repo.receipts) != 0 {
		t.Errorf("len(receipts) = %d, expected no receipt row", len(repo.receipts))
	}
	if client.Stars != 5 {
		t.Errorf("client stars = %d, expected unchanged 5", client.Stars)
	}
}

func TestInvalidReceiptURLSkipsPortal(t *testing.T) {
	repo := newFakeRepository()
	repo.addClient("user-1", 0)

	p := &fakePortal{ref: &domain.InvoiceReference{InvoiceNumber: "INV1", Token: "TOK1"}}
	service := NewReceiptService(repo, p)

	result := service.ProcessReceiptScan(context.Background(), "https://example.com/not-a-fiscal-receipt", "user-1")
	if result.Success {
		t.Fatal("expected scan to fail")
	}
	if p.calls != 0 {
		t.Errorf("portal calls = %d, expected 0 before the URL precondition", p.calls)
	}
}

func TestClientNotFound(t *testing.T) {
	repo := newFakeRepository()

	p := &fakePortal{
		ref:   &domain.InvoiceReference{InvoiceNumber: "INV1", Token: "TOK1"},
		items: []domain.ReceiptLineItem{lineItem("Lek A", "123", 1, 100, 100)},
	}
	service := NewReceiptService(repo, p)

	result := service.ProcessReceiptScan(context.Background(), scanURL, "missing-user")
	if result.Success {
		t.Fatal("expected scan to fail")
	}
	// The client lookup precedes the receipt insert, so this failure
	// path leaves no orphan behind.
	if len(repo.receipts) != 0 {
		t.Errorf("len(receipts) = %d, expected 0", len(repo.receipts))
	}
}

func TestReceiptURLTruncation(t *testing.T) {
	repo := newFakeRepository()
	repo.addClient("user-1", 0)

	p := &fakePortal{
		ref:   &domain.InvoiceReference{InvoiceNumber: "INV1", Token: "TOK1"},
		items: []domain.ReceiptLineItem{lineItem("Lek A", "123", 1, 100, 100)},
	}
	service := NewReceiptService(repo, p)

	longURL := "https://suf.purs.gov.rs/v/?vl=" + strings.Repeat("a", 3000)
	result := service.ProcessReceiptScan(context.Background(), longURL, "user-1")
	if !result.Success {
		t.Fatalf("scan failed: %s", result.Message)
	}

	if got := len(repo.receipts[0].ReceiptURL); got != domain.ReceiptURLMaxLength {
		t.Errorf("stored URL length = %d, expected %d", got, domain.ReceiptURLMaxLength)
	}
}

func TestGetOrphanReceipts(t *testing.T) {
	repo := newFakeRepository()
	client := repo.addClient("user-1", 0)

	orphan := &entities.Receipt{ID: uuid.New(), ClientID: client.ID, Amount: 100, Date: time.Now().Add(-48 * time.Hour)}
	linked := &entities.Receipt{ID: uuid.New(), ClientID: client.ID, Amount: 200, Date: time.Now().Add(-48 * time.Hour)}
	fresh := &entities.Receipt{ID: uuid.New(), ClientID: client.ID, Amount: 300, Date: time.Now()}
	repo.receipts = append(repo.receipts, orphan, linked, fresh)
	repo.links = append(repo.links, &entities.ReceiptItem{ID: uuid.New(), ReceiptID: linked.ID, ItemID: uuid.New()})

	service := NewReceiptService(repo, &fakePortal{})

	orphans, err := service.GetOrphanReceipts(context.Background(), 24*time.Hour)
	if err != nil {
		t.Fatalf("GetOrphanReceipts returned error: %v", err)
	}
	if len(orphans) != 1 {
		t.Fatalf("len(orphans) = %d, expected 1", len(orphans))
	}
	if orphans[0].ID != orphan.ID.String() {
		t.Errorf("orphan ID = %s, expected %s", orphans[0].ID, orphan.ID)
	}
}
