package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/egannguyen/go-ecommerce-backend/internal/entity"
	"github.com/egannguyen/go-ecommerce-backend/internal/repository"
)

// fakeStore is the shared in-memory state behind the fake repositories.
// fakeTx snapshots it before a unit of work and restores it on error, which
// is what lets the tests assert real rollback behavior.
type fakeStore struct {
	users      map[string]*entity.User
	categories map[string]*entity.Category
	products   map[string]*entity.Product
	carts      map[string]*entity.Cart       // keyed by userID
	cartItems  map[string][]entity.CartItem  // keyed by cartID, insertion order
	orders     map[string]*entity.Order      // items stored separately
	orderItems map[string][]entity.OrderItem // keyed by orderID, insertion order
	orderSeq   []string                      // order IDs, insertion order
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:      make(map[string]*entity.User),
		categories: make(map[string]*entity.Category),
		products:   make(map[string]*entity.Product),
		carts:      make(map[string]*entity.Cart),
		cartItems:  make(map[string][]entity.CartItem),
		orders:     make(map[string]*entity.Order),
		orderItems: make(map[string][]entity.OrderItem),
	}
}

func (s *fakeStore) clone() *fakeStore {
	c := newFakeStore()
	for k, v := range s.users {
		u := *v
		c.users[k] = &u
	}
	for k, v := range s.categories {
		cat := *v
		c.categories[k] = &cat
	}
	for k, v := range s.products {
		p := *v
		c.products[k] = &p
	}
	for k, v := range s.carts {
		cart := *v
		c.carts[k] = &cart
	}
	for k, v := range s.cartItems {
		c.cartItems[k] = append([]entity.CartItem(nil), v...)
	}
	for k, v := range s.orders {
		o := *v
		c.orders[k] = &o
	}
	for k, v := range s.orderItems {
		c.orderItems[k] = append([]entity.OrderItem(nil), v...)
	}
	c.orderSeq = append([]string(nil), s.orderSeq...)
	return c
}

// productCopy returns a detached product with its category joined in, the
// way the SQL repositories materialize rows.
func (s *fakeStore) productCopy(id string) *entity.Product {
	p, ok := s.products[id]
	if !ok {
		return nil
	}
	cp := *p
	if cat, ok := s.categories[p.CategoryID]; ok {
		catCopy := *cat
		cp.Category = &catCopy
	}
	return &cp
}

// fakeTx implements repository.Transactor with copy-on-begin semantics.
type fakeTx struct {
	store *fakeStore
}

func (t *fakeTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	snapshot := t.store.clone()
	if err := fn(ctx); err != nil {
		*t.store = *snapshot
		return err
	}
	return nil
}

// fakeProductRepo implements repository.ProductRepository. beforeDecrement,
// when set, runs just before each decrement so tests can simulate a
// concurrent stock change between validation and commit.
type fakeProductRepo struct {
	store           *fakeStore
	beforeDecrement func(productID string)
}

func (r *fakeProductRepo) Create(ctx context.Context, p *entity.Product) error {
	now := time.Now()
	p.CreatedAt, p.UpdatedAt = now, now
	cp := *p
	r.store.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) FindAll(ctx context.Context) ([]entity.Product, error) {
	var products []entity.Product
	for id := range r.store.products {
		products = append(products, *r.store.productCopy(id))
	}
	return products, nil
}

func (r *fakeProductRepo) FindByID(ctx context.Context, id string) (*entity.Product, error) {
	p := r.store.productCopy(id)
	if p == nil {
		return nil, &entity.NotFoundError{Resource: "product"}
	}
	return p, nil
}

func (r *fakeProductRepo) Update(ctx context.Context, p *entity.Product) error {
	if _, ok := r.store.products[p.ID]; !ok {
		return &entity.NotFoundError{Resource: "product"}
	}
	cp := *p
	r.store.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.store.products[id]; !ok {
		return &entity.NotFoundError{Resource: "product"}
	}
	delete(r.store.products, id)
	return nil
}

func (r *fakeProductRepo) DecrementStock(ctx context.Context, productID string, qty int) error {
	if r.beforeDecrement != nil {
		r.beforeDecrement(productID)
	}
	p, ok := r.store.products[productID]
	if !ok {
		return &entity.NotFoundError{Resource: "product"}
	}
	if p.Stock < qty {
		return &entity.InsufficientStockError{
			ProductID:   productID,
			ProductName: p.Name,
			Requested:   qty,
			Available:   p.Stock,
		}
	}
	p.Stock -= qty
	return nil
}

func (r *fakeProductRepo) IncrementStock(ctx context.Context, productID string, qty int) error {
	p, ok := r.store.products[productID]
	if !ok {
		return &entity.NotFoundError{Resource: "product"}
	}
	p.Stock += qty
	return nil
}

// fakeCartRepo implements repository.CartRepository.
type fakeCartRepo struct {
	store *fakeStore
}

func (r *fakeCartRepo) GetOrCreate(ctx context.Context, userID string) (*entity.Cart, error) {
	if cart, ok := r.store.carts[userID]; ok {
		cp := *cart
		return &cp, nil
	}
	now := time.Now()
	cart := &entity.Cart{ID: uuid.New().String(), UserID: userID, CreatedAt: now, UpdatedAt: now}
	r.store.carts[userID] = cart
	cp := *cart
	return &cp, nil
}

func (r *fakeCartRepo) FindItems(ctx context.Context, cartID string) ([]entity.CartItem, error) {
	var items []entity.CartItem
	for _, item := range r.store.cartItems[cartID] {
		item.Product = r.store.productCopy(item.ProductID)
		items = append(items, item)
	}
	return items, nil
}

func (r *fakeCartRepo) FindItem(ctx context.Context, cartID, itemID string) (*entity.CartItem, error) {
	for _, item := range r.store.cartItems[cartID] {
		if item.ID == itemID {
			item.Product = r.store.productCopy(item.ProductID)
			return &item, nil
		}
	}
	return nil, &entity.NotFoundError{Resource: "cart item"}
}

func (r *fakeCartRepo) FindItemByProduct(ctx context.Context, cartID, productID string) (*entity.CartItem, error) {
	for _, item := range r.store.cartItems[cartID] {
		if item.ProductID == productID {
			item.Product = r.store.productCopy(item.ProductID)
			return &item, nil
		}
	}
	return nil, &entity.NotFoundError{Resource: "cart item"}
}

func (r *fakeCartRepo) InsertItem(ctx context.Context, item *entity.CartItem) error {
	now := time.Now()
	item.CreatedAt, item.UpdatedAt = now, now
	r.store.cartItems[item.CartID] = append(r.store.cartItems[item.CartID], *item)
	return nil
}

func (r *fakeCartRepo) UpdateItemQuantity(ctx context.Context, itemID string, quantity int) error {
	for cartID, items := range r.store.cartItems {
		for i := range items {
			if items[i].ID == itemID {
				r.store.cartItems[cartID][i].Quantity = quantity
				return nil
			}
		}
	}
	return &entity.NotFoundError{Resource: "cart item"}
}

func (r *fakeCartRepo) DeleteItem(ctx context.Context, itemID string) error {
	for cartID, items := range r.store.cartItems {
		for i := range items {
			if items[i].ID == itemID {
				r.store.cartItems[cartID] = append(items[:i], items[i+1:]...)
				return nil
			}
		}
	}
	return &entity.NotFoundError{Resource: "cart item"}
}

func (r *fakeCartRepo) DeleteItems(ctx context.Context, cartID string) error {
	delete(r.store.cartItems, cartID)
	return nil
}

// fakeOrderRepo implements repository.OrderRepository.
type fakeOrderRepo struct {
	store *fakeStore
}

func (r *fakeOrderRepo) Insert(ctx context.Context, o *entity.Order) error {
	now := time.Now()
	o.CreatedAt, o.UpdatedAt = now, now
	cp := *o
	cp.Items = nil
	r.store.orders[o.ID] = &cp
	r.store.orderSeq = append(r.store.orderSeq, o.ID)
	return nil
}

func (r *fakeOrderRepo) InsertItem(ctx context.Context, item *entity.OrderItem) error {
	r.store.orderItems[item.OrderID] = append(r.store.orderItems[item.OrderID], *item)
	return nil
}

func (r *fakeOrderRepo) materialize(o *entity.Order) *entity.Order {
	cp := *o
	cp.Items = []entity.OrderItem{}
	for _, item := range r.store.orderItems[o.ID] {
		item.Product = r.store.productCopy(item.ProductID)
		cp.Items = append(cp.Items, item)
	}
	return &cp
}

func (r *fakeOrderRepo) FindByID(ctx context.Context, orderID string) (*entity.Order, error) {
	o, ok := r.store.orders[orderID]
	if !ok {
		return nil, &entity.NotFoundError{Resource: "order"}
	}
	return r.materialize(o), nil
}

func (r *fakeOrderRepo) FindByIDForUser(ctx context.Context, userID, orderID string) (*entity.Order, error) {
	o, ok := r.store.orders[orderID]
	if !ok || o.UserID != userID {
		return nil, &entity.NotFoundError{Resource: "order"}
	}
	return r.materialize(o), nil
}

func (r *fakeOrderRepo) FindByUserID(ctx context.Context, userID string) ([]entity.Order, error) {
	var orders []entity.Order
	for i := len(r.store.orderSeq) - 1; i >= 0; i-- {
		if o := r.store.orders[r.store.orderSeq[i]]; o != nil && o.UserID == userID {
			orders = append(orders, *r.materialize(o))
		}
	}
	return orders, nil
}

func (r *fakeOrderRepo) FindAll(ctx context.Context) ([]entity.Order, error) {
	var orders []entity.Order
	for i := len(r.store.orderSeq) - 1; i >= 0; i-- {
		if o := r.store.orders[r.store.orderSeq[i]]; o != nil {
			m := r.materialize(o)
			if u, ok := r.store.users[o.UserID]; ok {
				summary := u.Summary()
				m.User = &summary
			}
			orders = append(orders, *m)
		}
	}
	return orders, nil
}

func (r *fakeOrderRepo) UpdateStatus(ctx context.Context, orderID string, status entity.OrderStatus) error {
	o, ok := r.store.orders[orderID]
	if !ok {
		return &entity.NotFoundError{Resource: "order"}
	}
	o.Status = status
	o.UpdatedAt = time.Now()
	return nil
}

// fakeUserRepo implements repository.UserRepository.
type fakeUserRepo struct {
	store *fakeStore
}

func (r *fakeUserRepo) Create(ctx context.Context, u *entity.User) error {
	for _, existing := range r.store.users {
		if existing.Email == u.Email {
			return entity.ErrEmailTaken
		}
	}
	now := time.Now()
	u.CreatedAt, u.UpdatedAt = now, now
	cp := *u
	r.store.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id string) (*entity.User, error) {
	u, ok := r.store.users[id]
	if !ok {
		return nil, &entity.NotFoundError{Resource: "user"}
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	for _, u := range r.store.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, &entity.NotFoundError{Resource: "user"}
}

// fakeCategoryRepo implements repository.CategoryRepository.
type fakeCategoryRepo struct {
	store *fakeStore
}

func (r *fakeCategoryRepo) Create(ctx context.Context, c *entity.Category) error {
	now := time.Now()
	c.CreatedAt, c.UpdatedAt = now, now
	cp := *c
	r.store.categories[c.ID] = &cp
	return nil
}

func (r *fakeCategoryRepo) FindAll(ctx context.Context) ([]entity.Category, error) {
	var categories []entity.Category
	for _, c := range r.store.categories {
		categories = append(categories, *c)
	}
	return categories, nil
}

func (r *fakeCategoryRepo) FindByID(ctx context.Context, id string) (*entity.Category, error) {
	c, ok := r.store.categories[id]
	if !ok {
		return nil, &entity.NotFoundError{Resource: "category"}
	}
	cp := *c
	return &cp, nil
}

// fakePublisher records published events.
type fakePublisher struct {
	mu     sync.Mutex
	topics []string
	events []any
}

func (p *fakePublisher) PublishEvent(ctx context.Context, topic string, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	p.events = append(p.events, event)
	return nil
}

var (
	_ repository.Transactor         = (*fakeTx)(nil)
	_ repository.ProductRepository  = (*fakeProductRepo)(nil)
	_ repository.CartRepository     = (*fakeCartRepo)(nil)
	_ repository.OrderRepository    = (*fakeOrderRepo)(nil)
	_ repository.UserRepository     = (*fakeUserRepo)(nil)
	_ repository.CategoryRepository = (*fakeCategoryRepo)(nil)
)
