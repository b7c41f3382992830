package sync

import (
	"context"
	gosync "sync"
	"time"

	"go.uber.org/zap"

	"github.com/ontiuk/eskimo-sync/internal/domain/catalog"
	"github.com/ontiuk/eskimo-sync/internal/domain/shared"
	syncdomain "github.com/ontiuk/eskimo-sync/internal/domain/sync"
	"github.com/ontiuk/eskimo-sync/internal/domain/trade"
	"github.com/ontiuk/eskimo-sync/internal/infrastructure/cache"
)

// ---------------------------------------------------------------------------
// Test fakes
// ---------------------------------------------------------------------------

// fakeGateway implements syncdomain.Gateway with pluggable behaviour. Methods
// without a configured func return empty results.
type fakeGateway struct {
	categories        func(context.Context, syncdomain.BatchRequest) ([]syncdomain.RemoteCategory, error)
	categoryByID      func(context.Context, syncdomain.Ident) (*syncdomain.RemoteCategory, error)
	childCategories   func(context.Context, syncdomain.Ident) ([]syncdomain.RemoteCategory, error)
	products          func(context.Context, syncdomain.BatchRequest) ([]syncdomain.RemoteProduct, error)
	productByID       func(context.Context, syncdomain.Ident) (*syncdomain.RemoteProduct, error)
	skus              func(context.Context, syncdomain.BatchRequest) ([]syncdomain.RemoteSku, error)
	skuByCode         func(context.Context, string) (*syncdomain.RemoteSku, error)
	skusByProduct     func(context.Context, syncdomain.Ident) ([]syncdomain.RemoteSku, error)
	searchCustomers   func(context.Context, syncdomain.CustomerSearch) ([]syncdomain.RemoteCustomer, error)
	customerByID      func(context.Context, string) (*syncdomain.RemoteCustomer, error)
	insertCustomer    func(context.Context, syncdomain.RemoteCustomer) (*syncdomain.RemoteCustomer, error)
	insertOrder       func(context.Context, syncdomain.OrderInsert) (int, error)
	websiteOrder      func(context.Context, string) (*syncdomain.RemoteOrder, error)
	searchOrders      func(context.Context, syncdomain.OrderSearch) ([]syncdomain.RemoteOrder, error)
	categoryWriteBack func(context.Context, []syncdomain.IdentifierMapping) (int, error)
	productWriteBack  func(context.Context, []syncdomain.IdentifierMapping) (int, error)
}

var _ syncdomain.Gateway = (*fakeGateway)(nil)

func (g *fakeGateway) Categories(ctx context.Context, req syncdomain.BatchRequest) ([]syncdomain.RemoteCategory, error) {
	if g.categories == nil {
		return nil, nil
	}
	return g.categories(ctx, req)
}

func (g *fakeGateway) CategoryByID(ctx context.Context, id syncdomain.Ident) (*syncdomain.RemoteCategory, error) {
	if g.categoryByID == nil {
		return nil, syncdomain.ErrNoData
	}
	return g.categoryByID(ctx, id)
}

func (g *fakeGateway) ChildCategories(ctx context.Context, parentID syncdomain.Ident) ([]syncdomain.RemoteCategory, error) {
	if g.childCategories == nil {
		return nil, nil
	}
	return g.childCategories(ctx, parentID)
}

func (g *fakeGateway) UpdateCategoryCartIDs(ctx context.Context, m []syncdomain.IdentifierMapping) (int, error) {
	if g.categoryWriteBack == nil {
		return 200, nil
	}
	return g.categoryWriteBack(ctx, m)
}

func (g *fakeGateway) Products(ctx context.Context, req syncdomain.BatchRequest) ([]syncdomain.RemoteProduct, error) {
	if g.products == nil {
		return nil, nil
	}
	return g.products(ctx, req)
}

func (g *fakeGateway) ProductByID(ctx context.Context, id syncdomain.Ident) (*syncdomain.RemoteProduct, error) {
	if g.productByID == nil {
		return nil, syncdomain.ErrNoData
	}
	return g.productByID(ctx, id)
}

func (g *fakeGateway) UpdateProductCartIDs(ctx context.Context, m []syncdomain.IdentifierMapping) (int, error) {
	if g.productWriteBack == nil {
		return 200, nil
	}
	return g.productWriteBack(ctx, m)
}

func (g *fakeGateway) Skus(ctx context.Context, req syncdomain.BatchRequest) ([]syncdomain.RemoteSku, error) {
	if g.skus == nil {
		return nil, nil
	}
	return g.skus(ctx, req)
}

func (g *fakeGateway) SkuByCode(ctx context.Context, code string) (*syncdomain.RemoteSku, error) {
	if g.skuByCode == nil {
		return &syncdomain.RemoteSku{Code: code}, nil
	}
	return g.skuByCode(ctx, code)
}

func (g *fakeGateway) SkusByProduct(ctx context.Context, productID syncdomain.Ident) ([]syncdomain.RemoteSku, error) {
	if g.skusByProduct == nil {
		return nil, nil
	}
	return g.skusByProduct(ctx, productID)
}

func (g *fakeGateway) CustomerByID(ctx context.Context, id string) (*syncdomain.RemoteCustomer, error) {
	if g.customerByID == nil {
		return &syncdomain.RemoteCustomer{ID: id}, nil
	}
	return g.customerByID(ctx, id)
}

func (g *fakeGateway) SearchCustomers(ctx context.Context, q syncdomain.CustomerSearch) ([]syncdomain.RemoteCustomer, error) {
	if g.searchCustomers == nil {
		return nil, nil
	}
	return g.searchCustomers(ctx, q)
}

func (g *fakeGateway) InsertCustomer(ctx context.Context, c syncdomain.RemoteCustomer) (*syncdomain.RemoteCustomer, error) {
	if g.insertCustomer == nil {
		c.ID = "ESK-C-NEW"
		return &c, nil
	}
	return g.insertCustomer(ctx, c)
}

func (g *fakeGateway) UpdateCustomer(_ context.Context, c syncdomain.RemoteCustomer) (*syncdomain.RemoteCustomer, error) {
	return &c, nil
}

func (g *fakeGateway) InsertOrder(ctx context.Context, o syncdomain.OrderInsert) (int, error) {
	if g.insertOrder == nil {
		return 200, nil
	}
	return g.insertOrder(ctx, o)
}

func (g *fakeGateway) SearchOrders(ctx context.Context, q syncdomain.OrderSearch) ([]syncdomain.RemoteOrder, error) {
	if g.searchOrders == nil {
		return nil, nil
	}
	return g.searchOrders(ctx, q)
}

func (g *fakeGateway) WebsiteOrder(ctx context.Context, externalID string) (*syncdomain.RemoteOrder, error) {
	if g.websiteOrder == nil {
		return &syncdomain.RemoteOrder{ID: "ESK-O-" + externalID, ExternalIdentifier: externalID}, nil
	}
	return g.websiteOrder(ctx, externalID)
}

func (g *fakeGateway) FulfilmentMethods(context.Context) ([]syncdomain.FulfilmentMethod, error) {
	return nil, nil
}

func (g *fakeGateway) TaxCodes(context.Context) ([]syncdomain.TaxCode, error) {
	return nil, nil
}

func (g *fakeGateway) Shops(context.Context) ([]syncdomain.Shop, error) {
	return nil, nil
}

// ---------------------------------------------------------------------------
// In-memory repositories
// ---------------------------------------------------------------------------

type memCategoryRepo struct {
	mu   gosync.Mutex
	rows map[string]*catalog.Category
}

var _ catalog.CategoryRepository = (*memCategoryRepo)(nil)

func newMemCategoryRepo() *memCategoryRepo {
	return &memCategoryRepo{rows: make(map[string]*catalog.Category)}
}

func (r *memCategoryRepo) Save(_ context.Context, c *catalog.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.EskimoID == c.EskimoID {
			return shared.ErrAlreadyExists
		}
	}
	cp := *c
	r.rows[c.ID] = &cp
	return nil
}

func (r *memCategoryRepo) FindByID(_ context.Context, id string) (*catalog.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.rows[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memCategoryRepo) FindByEskimoID(_ context.Context, eskimoID syncdomain.Ident) (*catalog.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.rows {
		if c.EskimoID == eskimoID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memCategoryRepo) FindChildren(_ context.Context, parentID string) ([]*catalog.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*catalog.Category
	for _, c := range r.rows {
		if c.ParentID == parentID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memCategoryRepo) FindAll(_ context.Context, _, _ int) ([]*catalog.Category, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*catalog.Category
	for _, c := range r.rows {
		cp := *c
		out = append(out, &cp)
	}
	return out, int64(len(out)), nil
}

func (r *memCategoryRepo) Update(_ context.Context, c *catalog.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[c.ID]; !ok {
		return shared.ErrNotFound
	}
	cp := *c
	r.rows[c.ID] = &cp
	return nil
}

func (r *memCategoryRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.rows, id)
	return nil
}

type memProductRepo struct {
	mu   gosync.Mutex
	rows map[string]*catalog.Product
}

var _ catalog.ProductRepository = (*memProductRepo)(nil)

func newMemProductRepo() *memProductRepo {
	return &memProductRepo{rows: make(map[string]*catalog.Product)}
}

func (r *memProductRepo) Save(_ context.Context, p *catalog.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.EskimoID == p.EskimoID {
			return shared.ErrAlreadyExists
		}
	}
	cp := *p
	r.rows[p.ID] = &cp
	return nil
}

func (r *memProductRepo) FindByID(_ context.Context, id string) (*catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.rows[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memProductRepo) FindByEskimoID(_ context.Context, eskimoID syncdomain.Ident) (*catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.rows {
		if p.EskimoID == eskimoID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memProductRepo) FindBySkuCode(_ context.Context, code string) (*catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.rows {
		if p.SkuCode == code || p.VariantBySku(code) != nil {
			cp := *p
			return &cp, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memProductRepo) FindByCategory(_ context.Context, categoryID string, _, _ int) ([]*catalog.Product, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*catalog.Product
	for _, p := range r.rows {
		if p.CategoryID == categoryID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, int64(len(out)), nil
}

func (r *memProductRepo) FindAll(_ context.Context, _, _ int) ([]*catalog.Product, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*catalog.Product
	for _, p := range r.rows {
		cp := *p
		out = append(out, &cp)
	}
	return out, int64(len(out)), nil
}

func (r *memProductRepo) Update(_ context.Context, p *catalog.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[p.ID]; !ok {
		return shared.ErrNotFound
	}
	cp := *p
	r.rows[p.ID] = &cp
	return nil
}

func (r *memProductRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.rows, id)
	return nil
}

type memVariantRepo struct {
	products *memProductRepo
}

var _ catalog.VariantRepository = (*memVariantRepo)(nil)

func (r *memVariantRepo) FindBySkuCode(_ context.Context, code string) (*catalog.Variant, error) {
	r.products.mu.Lock()
	defer r.products.mu.Unlock()
	for _, p := range r.products.rows {
		if v := p.VariantBySku(code); v != nil {
			cp := *v
			return &cp, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memVariantRepo) FindByEskimoSkuID(_ context.Context, id syncdomain.Ident) (*catalog.Variant, error) {
	r.products.mu.Lock()
	defer r.products.mu.Unlock()
	for _, p := range r.products.rows {
		for _, v := range p.Variants {
			if v.EskimoSkuID == id {
				cp := *v
				return &cp, nil
			}
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memVariantRepo) Update(_ context.Context, variant *catalog.Variant) error {
	r.products.mu.Lock()
	defer r.products.mu.Unlock()
	for _, p := range r.products.rows {
		for i, v := range p.Variants {
			if v.ID == variant.ID {
				cp := *variant
				p.Variants[i] = &cp
				return nil
			}
		}
	}
	return shared.ErrNotFound
}

type memCustomerRepo struct {
	mu   gosync.Mutex
	rows map[string]*trade.Customer
}

var _ trade.CustomerRepository = (*memCustomerRepo)(nil)

func newMemCustomerRepo() *memCustomerRepo {
	return &memCustomerRepo{rows: make(map[string]*trade.Customer)}
}

func (r *memCustomerRepo) Save(_ context.Context, c *trade.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	r.rows[c.ID] = &cp
	return nil
}

func (r *memCustomerRepo) FindByID(_ context.Context, id string) (*trade.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.rows[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memCustomerRepo) FindByEmail(_ context.Context, email string) (*trade.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.rows {
		if c.Email == email {
			cp := *c
			return &cp, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memCustomerRepo) FindByEskimoID(_ context.Context, eskimoID string) (*trade.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.rows {
		if c.EskimoID == eskimoID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memCustomerRepo) FindAll(_ context.Context, _, _ int) ([]*trade.Customer, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*trade.Customer
	for _, c := range r.rows {
		cp := *c
		out = append(out, &cp)
	}
	return out, int64(len(out)), nil
}

func (r *memCustomerRepo) Update(_ context.Context, c *trade.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[c.ID]; !ok {
		return shared.ErrNotFound
	}
	cp := *c
	r.rows[c.ID] = &cp
	return nil
}

type memOrderRepo struct {
	mu   gosync.Mutex
	rows map[string]*trade.Order
}

var _ trade.OrderRepository = (*memOrderRepo)(nil)

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{rows: make(map[string]*trade.Order)}
}

func (r *memOrderRepo) Save(_ context.Context, o *trade.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *o
	r.rows[o.ID] = &cp
	return nil
}

func (r *memOrderRepo) FindByID(_ context.Context, id string) (*trade.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o, ok := r.rows[id]; ok {
		cp := *o
		return &cp, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memOrderRepo) FindByNumber(_ context.Context, number string) (*trade.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.rows {
		if o.Number == number {
			cp := *o
			return &cp, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memOrderRepo) FindExportable(_ context.Context, limit int) ([]*trade.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*trade.Order
	for _, o := range r.rows {
		if o.Status.Exportable() && !o.Exported() && len(out) < limit {
			cp := *o
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memOrderRepo) FindAll(_ context.Context, _, _ int) ([]*trade.Order, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*trade.Order
	for _, o := range r.rows {
		cp := *o
		out = append(out, &cp)
	}
	return out, int64(len(out)), nil
}

func (r *memOrderRepo) Update(_ context.Context, o *trade.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[o.ID]; !ok {
		return shared.ErrNotFound
	}
	cp := *o
	r.rows[o.ID] = &cp
	return nil
}

// ---------------------------------------------------------------------------
// Service fixture
// ---------------------------------------------------------------------------

type fixture struct {
	svc        *Service
	gateway    *fakeGateway
	categories *memCategoryRepo
	products   *memProductRepo
	customers  *memCustomerRepo
	orders     *memOrderRepo
	lease      syncdomain.Lease
}

func newFixture(gateway *fakeGateway, cfg Config) *fixture {
	categories := newMemCategoryRepo()
	products := newMemProductRepo()
	customers := newMemCustomerRepo()
	orders := newMemOrderRepo()
	lease := cache.NewMemoryLease()

	svc := NewService(
		gateway,
		lease,
		categories,
		products,
		&memVariantRepo{products: products},
		customers,
		orders,
		cfg,
		zap.NewNop(),
	)
	// Tests never wait on write-back pacing
	svc.writeBack.sleep = func(context.Context, time.Duration) error { return nil }

	return &fixture{
		svc:        svc,
		gateway:    gateway,
		categories: categories,
		products:   products,
		customers:  customers,
		orders:     orders,
		lease:      lease,
	}
}
