// File: internal/usecase/mocks_test.go
package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"whatsapp-commerce-billing/internal/domain"
	"whatsapp-commerce-billing/internal/domain/model"
	"whatsapp-commerce-billing/internal/domain/ports/repository"
)

func testLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// fakeTxManager runs the callback without a real database transaction.
type fakeTxManager struct{}

func (m *fakeTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	return fn(ctx, nil)
}

// --- catalog ---

type memCatalogRepo struct {
	mu       sync.RWMutex
	products map[string]*model.Product
	addons   map[string]*model.Addon
	packages map[string]*model.WhatsAppPackage
}

func newMemCatalogRepo() *memCatalogRepo {
	return &memCatalogRepo{
		products: make(map[string]*model.Product),
		addons:   make(map[string]*model.Addon),
		packages: make(map[string]*model.WhatsAppPackage),
	}
}

func (m *memCatalogRepo) FindProduct(ctx context.Context, id string) (*model.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.products[id]
	if !ok || !p.Active {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memCatalogRepo) FindAddon(ctx context.Context, id string) (*model.Addon, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.addons[id]
	if !ok || !a.Active {
		return nil, domain.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memCatalogRepo) FindPackage(ctx context.Context, id string) (*model.WhatsAppPackage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	w, ok := m.packages[id]
	if !ok || !w.Active {
		return nil, domain.ErrNotFound
	}
	cp := *w
	return &cp, nil
}

// --- vouchers ---

type memVoucherRepo struct {
	mu       sync.RWMutex
	byID     map[string]*model.Voucher
	usages   []*model.VoucherUsage
	saveErr  error
	usageErr error
}

func newMemVoucherRepo() *memVoucherRepo {
	return &memVoucherRepo{byID: make(map[string]*model.Voucher)}
}

func (m *memVoucherRepo) Save(ctx context.Context, _ repository.Tx, v *model.Voucher) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *v
	m.byID[v.ID] = &cp
	return nil
}

func (m *memVoucherRepo) FindByID(ctx context.Context, _ repository.Tx, id string) (*model.Voucher, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (m *memVoucherRepo) FindByCode(ctx context.Context, _ repository.Tx, code string) (*model.Voucher, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, v := range m.byID {
		if v.Code == code {
			cp := *v
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memVoucherRepo) List(ctx context.Context, activeOnly bool) ([]*model.Voucher, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Voucher
	for _, v := range m.byID {
		if activeOnly && !v.IsActive {
			continue
		}
		cp := *v
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (m *memVoucherRepo) CountUsage(ctx context.Context, _ repository.Tx, voucherID string) (int, error) {
	if m.usageErr != nil {
		return 0, m.usageErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, u := range m.usages {
		if u.VoucherID == voucherID {
			n++
		}
	}
	return n, nil
}

func (m *memVoucherRepo) HasUsageByUser(ctx context.Context, _ repository.Tx, voucherID, userID string) (bool, error) {
	if m.usageErr != nil {
		return false, m.usageErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.usages {
		if u.VoucherID == voucherID && u.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memVoucherRepo) HasUsageByTransaction(ctx context.Context, _ repository.Tx, voucherID, transactionID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.usages {
		if u.VoucherID == voucherID && u.TransactionID == transactionID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memVoucherRepo) SaveUsage(ctx context.Context, _ repository.Tx, u *model.VoucherUsage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.usages = append(m.usages, &cp)
	return nil
}

// --- transactions ---

type memTransactionRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Transaction
}

func newMemTransactionRepo() *memTransactionRepo {
	return &memTransactionRepo{store: make(map[string]*model.Transaction)}
}

func cloneTransaction(t *model.Transaction) *model.Transaction {
	cp := *t
	cp.Products = append([]model.ProductTransaction(nil), t.Products...)
	cp.Addons = append([]model.AddonTransaction(nil), t.Addons...)
	if t.WhatsappService != nil {
		ws := *t.WhatsappService
		cp.WhatsappService = &ws
	}
	return &cp
}

func (m *memTransactionRepo) Save(ctx context.Context, _ repository.Tx, t *model.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store[t.ID] = cloneTransaction(t)
	return nil
}

func (m *memTransactionRepo) FindByID(ctx context.Context, _ repository.Tx, id string) (*model.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneTransaction(t), nil
}

func (m *memTransactionRepo) UpdateStatus(ctx context.Context, _ repository.Tx, id string, status model.TransactionStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	t.Status = status
	t.UpdatedAt = time.Now()
	return nil
}

func (m *memTransactionRepo) UpdateServiceStatus(ctx context.Context, _ repository.Tx, transactionID string, status model.ChildStatus, start, end *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.store[transactionID]
	if !ok || t.WhatsappService == nil {
		return domain.ErrNotFound
	}
	t.WhatsappService.Status = status
	if start != nil {
		t.WhatsappService.StartDate = start
	}
	if end != nil {
		t.WhatsappService.EndDate = end
	}
	return nil
}

func (m *memTransactionRepo) UpdateProductDates(ctx context.Context, _ repository.Tx, transactionID string, status model.ChildStatus, start, end time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.store[transactionID]
	if !ok {
		return domain.ErrNotFound
	}
	for i := range t.Products {
		t.Products[i].Status = status
		s, e := start, end
		t.Products[i].StartDate = &s
		t.Products[i].EndDate = &e
	}
	return nil
}

func (m *memTransactionRepo) CascadeChildren(ctx context.Context, _ repository.Tx, transactionID string, status model.ChildStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.store[transactionID]
	if !ok {
		return domain.ErrNotFound
	}
	for i := range t.Products {
		if t.Products[i].Status == model.ChildStatusPending {
			t.Products[i].Status = status
		}
	}
	for i := range t.Addons {
		if t.Addons[i].Status == model.ChildStatusPending {
			t.Addons[i].Status = status
		}
	}
	if t.WhatsappService != nil && t.WhatsappService.Status == model.ChildStatusPending {
		t.WhatsappService.Status = status
	}
	return nil
}

func (m *memTransactionRepo) ListExpirable(ctx context.Context, _ repository.Tx, now time.Time, limit int) ([]*model.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Transaction
	for _, t := range m.store {
		if (t.Status == model.TransactionStatusCreated || t.Status == model.TransactionStatusPending) && t.ExpiresAt.Before(now) {
			out = append(out, cloneTransaction(t))
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (m *memTransactionRepo) ListPaidUnactivated(ctx context.Context, _ repository.Tx, limit int) ([]*model.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Transaction
	for _, t := range m.store {
		if t.Type != model.TransactionTypeWhatsapp || t.WhatsappService == nil {
			continue
		}
		if t.WhatsappService.Status == model.ChildStatusSuccess {
			continue
		}
		if t.Status != model.TransactionStatusPending && t.Status != model.TransactionStatusInProgress {
			continue
		}
		out = append(out, cloneTransaction(t))
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memTransactionRepo) HasNewerPaid(ctx context.Context, _ repository.Tx, userID, packageID string, after time.Time) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.store {
		if t.UserID != userID || t.WhatsappService == nil || t.WhatsappService.PackageID != packageID {
			continue
		}
		if t.Status != model.TransactionStatusInProgress && t.Status != model.TransactionStatusSuccess {
			continue
		}
		if t.CreatedAt.After(after) {
			return true, nil
		}
	}
	return false, nil
}

// --- payments ---

type memPaymentRepo struct {
	mu      sync.RWMutex
	store   map[string]*model.Payment
	history []*model.PaymentStatusEntry
}

func newMemPaymentRepo() *memPaymentRepo {
	return &memPaymentRepo{store: make(map[string]*model.Payment)}
}

func (m *memPaymentRepo) Save(ctx context.Context, _ repository.Tx, p *model.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.store[p.ID] = &cp
	return nil
}

func (m *memPaymentRepo) FindByID(ctx context.Context, _ repository.Tx, id string) (*model.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memPaymentRepo) FindByTransactionID(ctx context.Context, _ repository.Tx, transactionID string) (*model.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var latest *model.Payment
	for _, p := range m.store {
		if p.TransactionID != transactionID {
			continue
		}
		if latest == nil || p.CreatedAt.After(latest.CreatedAt) {
			latest = p
		}
	}
	if latest == nil {
		return nil, domain.ErrNotFound
	}
	cp := *latest
	return &cp, nil
}

func (m *memPaymentRepo) UpdateStatus(ctx context.Context, _ repository.Tx, id string, status model.PaymentStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Status = status
	p.UpdatedAt = time.Now()
	return nil
}

func (m *memPaymentRepo) AppendHistory(ctx context.Context, _ repository.Tx, entry *model.PaymentStatusEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *entry
	m.history = append(m.history, &cp)
	return nil
}

func (m *memPaymentRepo) historyFor(paymentID string) []*model.PaymentStatusEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.PaymentStatusEntry
	for _, e := range m.history {
		if e.PaymentID == paymentID {
			out = append(out, e)
		}
	}
	return out
}

// --- entitlements ---

type memEntitlementRepo struct {
	mu        sync.RWMutex
	store     map[string]*model.Entitlement // key customerID|packageID
	upsertErr error
}

func newMemEntitlementRepo() *memEntitlementRepo {
	return &memEntitlementRepo{store: make(map[string]*model.Entitlement)}
}

func entKey(customerID, packageID string) string { return customerID + "|" + packageID }

func (m *memEntitlementRepo) FindByCustomerAndPackage(ctx context.Context, _ repository.Tx, customerID, packageID string) (*model.Entitlement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.store[entKey(customerID, packageID)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (m *memEntitlementRepo) Upsert(ctx context.Context, _ repository.Tx, e *model.Entitlement) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *e
	m.store[entKey(e.CustomerID, e.PackageID)] = &cp
	return nil
}

// --- gateway ---

type fakeGateway struct {
	mu      sync.Mutex
	charges []string
	err     error
}

func (g *fakeGateway) Name() string { return "fake" }

func (g *fakeGateway) CreateCharge(ctx context.Context, paymentID string, amount decimal.Decimal, currency model.Currency, method string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return "", g.err
	}
	g.charges = append(g.charges, paymentID)
	return "ref-" + paymentID, nil
}

// --- sweep lock ---

type fakeLocker struct {
	mu    sync.Mutex
	held  map[string]string
	busy  bool
	locks int
}

func newFakeLocker() *fakeLocker { return &fakeLocker{held: make(map[string]string)} }

func (l *fakeLocker) TryLock(ctx context.Context, key string, _ time.Duration) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.busy {
		return "", domain.ErrLockBusy
	}
	l.locks++
	l.held[key] = "token"
	return "token", nil
}

func (l *fakeLocker) Unlock(ctx context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, key)
	return nil
}
