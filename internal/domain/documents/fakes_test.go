package documents

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"salesdocs/internal/core/apperror"
	"salesdocs/internal/core/id"
	"salesdocs/internal/core/numerator"
	"salesdocs/internal/core/tx"
	"salesdocs/internal/core/types"
	"salesdocs/internal/domain"
	"salesdocs/internal/domain/catalog"
	"salesdocs/internal/domain/warranty"
)

// --- transactions ---

type undoKey struct{}

type undoLog struct {
	steps []func()
}

// onRollback registers step to run if the enclosing memTx transaction fails.
func onRollback(ctx context.Context, step func()) {
	if log, ok := ctx.Value(undoKey{}).(*undoLog); ok {
		log.steps = append(log.steps, step)
	}
}

// memTx runs fn and, when it fails, undoes the fake writes it made in reverse order.
var memTx = tx.ManagerFunc(func(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, nested := ctx.Value(undoKey{}).(*undoLog); nested {
		return fn(ctx)
	}
	log := &undoLog{}
	if err := fn(context.WithValue(ctx, undoKey{}, log)); err != nil {
		for i := len(log.steps) - 1; i >= 0; i-- {
			log.steps[i]()
		}
		return err
	}
	return nil
})

// --- repository ---

type memRepo struct {
	mu        sync.Mutex
	docs      map[id.ID]Document
	createErr error
}

func newMemRepo() *memRepo {
	return &memRepo{docs: make(map[id.ID]Document)}
}

func (r *memRepo) Create(ctx context.Context, doc *Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	for _, d := range r.docs {
		if doc.Code != "" && d.Code == doc.Code {
			return apperror.NewDuplicate("document", "code", doc.Code)
		}
	}
	doc.Version = 1
	r.docs[doc.ID] = *doc
	docID := doc.ID
	onRollback(ctx, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.docs, docID)
	})
	return nil
}

func (r *memRepo) Update(ctx context.Context, doc *Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.docs[doc.ID]
	if !ok {
		return apperror.NewNotFound("document", doc.ID)
	}
	if stored.Version != doc.Version {
		return apperror.NewConcurrentModification("document", doc.ID)
	}
	doc.Version++
	r.docs[doc.ID] = *doc
	onRollback(ctx, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.docs[stored.ID] = stored
	})
	return nil
}

func (r *memRepo) has(docID id.ID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.docs[docID]
	return ok
}

func (r *memRepo) GetByID(_ context.Context, docID id.ID) (*Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.docs[docID]
	if !ok {
		return nil, apperror.NewNotFound("document", docID)
	}
	return &d, nil
}

func (r *memRepo) List(_ context.Context, filter ListFilter) (domain.ListResult[*Document], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []*Document
	for _, d := range r.docs {
		if filter.Status != nil && d.Status != *filter.Status {
			continue
		}
		if filter.CodePrefix != "" && !strings.HasPrefix(d.Code, filter.CodePrefix) {
			continue
		}
		doc := d
		items = append(items, &doc)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID.String() > items[j].ID.String() })
	return domain.ListResult[*Document]{Items: items, TotalCount: int64(len(items)), Limit: filter.Limit}, nil
}

func (r *memRepo) Delete(_ context.Context, docID id.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[docID]; !ok {
		return apperror.NewNotFound("document", docID)
	}
	delete(r.docs, docID)
	return nil
}

func (r *memRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.docs)
}

// --- resolver ---

type fakeResolver struct {
	suppliers     map[id.ID]catalog.Supplier
	customers     map[id.ID]catalog.Customer
	products      map[id.ID]catalog.Product
	installations map[id.ID]catalog.Installation
}

func (f *fakeResolver) Supplier(_ context.Context, supplierID id.ID) (*catalog.Supplier, error) {
	s, ok := f.suppliers[supplierID]
	if !ok {
		return nil, apperror.NewNotFound("supplier", supplierID)
	}
	return &s, nil
}

func (f *fakeResolver) Customer(_ context.Context, customerID id.ID) (*catalog.Customer, error) {
	c, ok := f.customers[customerID]
	if !ok {
		return nil, apperror.NewNotFound("customer", customerID)
	}
	return &c, nil
}

func (f *fakeResolver) Products(_ context.Context, ids []id.ID) (map[id.ID]catalog.Product, error) {
	out := make(map[id.ID]catalog.Product)
	for _, v := range ids {
		if p, ok := f.products[v]; ok {
			out[v] = p
		}
	}
	return out, nil
}

func (f *fakeResolver) Installations(_ context.Context, ids []id.ID) (map[id.ID]catalog.Installation, error) {
	out := make(map[id.ID]catalog.Installation)
	for _, v := range ids {
		if i, ok := f.installations[v]; ok {
			out[v] = i
		}
	}
	return out, nil
}

// --- renderer and blobs ---

type fakeRenderer struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (r *fakeRenderer) Render(_ context.Context, model RenderModel) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return []byte("%PDF-1.7 " + model.Document.Code), nil
}

type fakeBlobs struct {
	mu        sync.Mutex
	objects   map[string][]byte
	uploadErr error
	signErr   error
}

func newFakeBlobs() *fakeBlobs {
	return &fakeBlobs{objects: make(map[string][]byte)}
}

func (b *fakeBlobs) Upload(_ context.Context, path string, data []byte, _ string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.uploadErr != nil {
		return "", b.uploadErr
	}
	b.objects[path] = data
	return path, nil
}

func (b *fakeBlobs) SignedURL(_ context.Context, ref string, ttl time.Duration) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.signErr != nil {
		return "", b.signErr
	}
	if _, ok := b.objects[ref]; !ok {
		return "", errors.New("object not found")
	}
	return fmt.Sprintf("https://blobs.test/%s?expires=%d", ref, int(ttl.Seconds())), nil
}

func (b *fakeBlobs) Delete(_ context.Context, ref string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.objects, ref)
	return nil
}

func (b *fakeBlobs) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.objects)
}

func (b *fakeBlobs) has(ref string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.objects[ref]
	return ok
}

// --- inventory ---

type fakeInventory struct {
	mu    sync.Mutex
	stock map[id.ID]decimal.Decimal
	sold  map[id.ID]decimal.Decimal
}

func newFakeInventory() *fakeInventory {
	return &fakeInventory{stock: make(map[id.ID]decimal.Decimal), sold: make(map[id.ID]decimal.Decimal)}
}

func (f *fakeInventory) Reserve(ctx context.Context, moves []StockMove) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range moves {
		if f.stock[m.ProductID].LessThan(m.Quantity) {
			return apperror.NewInsufficientStock(m.ProductID.String(), m.Quantity, f.stock[m.ProductID])
		}
	}
	for _, m := range moves {
		f.stock[m.ProductID] = f.stock[m.ProductID].Sub(m.Quantity)
		f.sold[m.ProductID] = f.sold[m.ProductID].Add(m.Quantity)
	}
	onRollback(ctx, func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		for _, m := range moves {
			f.stock[m.ProductID] = f.stock[m.ProductID].Add(m.Quantity)
			f.sold[m.ProductID] = f.sold[m.ProductID].Sub(m.Quantity)
		}
	})
	return nil
}

func (f *fakeInventory) available(productID id.ID) decimal.Decimal {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stock[productID]
}

// --- warranties ---

// txWarranties removes warranties issued by a rolled back transaction.
type txWarranties struct {
	*warranty.MemoryRepository
}

func (w txWarranties) Create(ctx context.Context, wr *warranty.Warranty) error {
	if err := w.MemoryRepository.Create(ctx, wr); err != nil {
		return err
	}
	invoiceID := wr.InvoiceID
	onRollback(ctx, func() {
		_ = w.MemoryRepository.DeleteByInvoice(context.Background(), invoiceID)
	})
	return nil
}

// --- notifier, journal, metrics ---

type fakeNotifier struct {
	mu     sync.Mutex
	events []DocumentIssued
	err    error
}

func (n *fakeNotifier) DocumentIssued(_ context.Context, event DocumentIssued) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.events = append(n.events, event)
	return nil
}

type fakeJournal struct {
	mu        sync.Mutex
	burned    []string
	finalized []string
}

func (j *fakeJournal) SequenceBurned(_ context.Context, _ numerator.Kind, code string, _ error) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.burned = append(j.burned, code)
	return nil
}

func (j *fakeJournal) DocumentFinalized(_ context.Context, doc *Document) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.finalized = append(j.finalized, doc.Code)
	return nil
}

type fakeMetrics struct {
	mu       sync.Mutex
	outcomes map[Outcome]int
	burned   int
}

func (m *fakeMetrics) DocumentComposed(_ Status, outcome Outcome) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.outcomes == nil {
		m.outcomes = make(map[Outcome]int)
	}
	m.outcomes[outcome]++
}

func (m *fakeMetrics) SequenceBurned(numerator.Kind) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.burned++
}

// --- fixture ---

var testNow = time.Date(2025, 6, 15, 9, 30, 0, 0, time.UTC)

type fixture struct {
	svc        *Service
	repo       *memRepo
	resolver   *fakeResolver
	alloc      *numerator.MemoryAllocator
	renderer   *fakeRenderer
	blobs      *fakeBlobs
	inventory  *fakeInventory
	warranties *warranty.MemoryRepository
	notifier   *fakeNotifier
	journal    *fakeJournal
	metrics    *fakeMetrics

	supplierID id.ID
	customerID id.ID
	productID  id.ID
	installID  id.ID
}

func newFixture(policy Policy) *fixture {
	f := &fixture{
		repo:       newMemRepo(),
		alloc:      numerator.NewMemoryAllocator(),
		renderer:   &fakeRenderer{},
		blobs:      newFakeBlobs(),
		inventory:  newFakeInventory(),
		warranties: warranty.NewMemoryRepository(),
		notifier:   &fakeNotifier{},
		journal:    &fakeJournal{},
		metrics:    &fakeMetrics{},
		supplierID: id.New(),
		customerID: id.New(),
		productID:  id.New(),
		installID:  id.New(),
	}

	price := types.MustMoney("121")
	f.resolver = &fakeResolver{
		suppliers: map[id.ID]catalog.Supplier{
			f.supplierID: {ID: f.supplierID, CompanyName: "Solar Stavby s.r.o.", ICO: "12345678", DIC: "CZ12345678", BankAccount: "123456789/0100"},
		},
		customers: map[id.ID]catalog.Customer{
			f.customerID: {ID: f.customerID, FullName: "Petr Svoboda", Email: "petr@example.cz"},
		},
		products: map[id.ID]catalog.Product{
			f.productID: {ID: f.productID, Code: "PV-400", Name: "Panel 400W", Price: &price, TaxRate: types.MustMoney("21"), Quantity: types.MustMoney("10")},
		},
		installations: map[id.ID]catalog.Installation{
			f.installID: {ID: f.installID, Code: "INST-1", Desc: "Mounting", Cost: "1120", TaxRate: types.MustMoney("12")},
		},
	}
	f.inventory.stock[f.productID] = types.MustMoney("10")

	f.warranties.ReferenceInvoices(f.repo.has)
	warrantySvc := warranty.NewService(txWarranties{f.warranties}, warranty.DefaultCoverage)
	f.svc = NewService(ServiceConfig{
		Repo:       f.repo,
		Resolver:   f.resolver,
		Allocator:  f.alloc,
		Renderer:   f.renderer,
		Blobs:      f.blobs,
		Inventory:  f.inventory,
		Warranties: warrantySvc,
		TxManager:  memTx,
		Notifier:   f.notifier,
		Journal:    f.journal,
		Metrics:    f.metrics,
		Policy:     policy,
	})
	f.svc.now = func() time.Time { return testNow }
	return f
}

func (f *fixture) quoteRequest() ComposeRequest {
	return ComposeRequest{
		Status:       StatusQuote,
		SupplierID:   f.supplierID,
		CustomerID:   &f.customerID,
		Products:     []RefLine{{ID: f.productID, Quantity: types.MustMoney("2")}},
		ShippingCost: types.MustMoney("500"),
	}
}
