package repository

import (
	"context"
	"sync"

	"fsanano/catalog/internal/model"
)

type memoryState struct {
	users  []model.User
	items  []model.Item
	orders []model.Order

	nextUserID  int
	nextItemID  int
	nextOrderID int
}

func (s memoryState) clone() memoryState {
	c := s
	c.users = append([]model.User(nil), s.users...)
	c.items = append([]model.Item(nil), s.items...)
	c.orders = append([]model.Order(nil), s.orders...)
	return c
}

// MemoryRepository keeps users, items and orders in process memory. It mirrors
// ShopRepository's contract, including foreign key checks on orders.user_id.
type MemoryRepository struct {
	mu    sync.RWMutex
	state memoryState
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{state: memoryState{nextUserID: 1, nextItemID: 1, nextOrderID: 1}}
}

type memTxKey struct{}

func (r *MemoryRepository) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(memTxKey{}).(*MemoryRepository)
	return owner == r
}

// RunAtomic holds the write lock for the duration of fn and restores the previous
// state if fn fails.
func (r *MemoryRepository) RunAtomic(ctx context.Context, fn func(ctx context.Context) error) error {
	if r.inTx(ctx) {
		return fn(ctx)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	saved := r.state.clone()
	if err := fn(context.WithValue(ctx, memTxKey{}, r)); err != nil {
		r.state = saved
		return err
	}
	return nil
}

func (r *MemoryRepository) read(ctx context.Context) func() {
	if r.inTx(ctx) {
		return func() {}
	}
	r.mu.RLock()
	return r.mu.RUnlock
}

func (r *MemoryRepository) write(ctx context.Context) func() {
	if r.inTx(ctx) {
		return func() {}
	}
	r.mu.Lock()
	return r.mu.Unlock
}

func (r *MemoryRepository) GetUser(ctx context.Context, id int) (model.User, error) {
	defer r.read(ctx)()
	for _, u := range r.state.users {
		if u.ID == id {
			return u, nil
		}
	}
	return model.User{}, ErrNotFound
}

func (r *MemoryRepository) ListUsers(ctx context.Context) ([]model.User, error) {
	defer r.read(ctx)()
	return append([]model.User{}, r.state.users...), nil
}

func (r *MemoryRepository) CreateUser(ctx context.Context, name, email string) (model.User, error) {
	defer r.write(ctx)()
	u := model.User{ID: r.state.nextUserID, Name: name, Email: email}
	r.state.nextUserID++
	r.state.users = append(r.state.users, u)
	return u, nil
}

func (r *MemoryRepository) GetItem(ctx context.Context, id int) (model.Item, error) {
	defer r.read(ctx)()
	return r.findItem(id)
}

// GetItemForShare is GetItem; inside RunAtomic the write lock already excludes
// concurrent deletes.
func (r *MemoryRepository) GetItemForShare(ctx context.Context, id int) (model.Item, error) {
	return r.GetItem(ctx, id)
}

func (r *MemoryRepository) findItem(id int) (model.Item, error) {
	for _, it := range r.state.items {
		if it.ID == id {
			return it, nil
		}
	}
	return model.Item{}, ErrNotFound
}

func (r *MemoryRepository) ListItems(ctx context.Context) ([]model.Item, error) {
	defer r.read(ctx)()
	return append([]model.Item{}, r.state.items...), nil
}

func (r *MemoryRepository) CreateItem(ctx context.Context, name string, price float64) (model.Item, error) {
	defer r.write(ctx)()
	it := model.Item{ID: r.state.nextItemID, Name: name, Price: price}
	r.state.nextItemID++
	r.state.items = append(r.state.items, it)
	return it, nil
}

func (r *MemoryRepository) UpdateItem(ctx context.Context, id int, name string, price float64) (model.Item, error) {
	defer r.write(ctx)()
	for i, it := range r.state.items {
		if it.ID == id {
			updated := model.Item{ID: id, Name: name, Price: price}
			r.state.items[i] = updated
			return updated, nil
		}
	}
	return model.Item{}, ErrNotFound
}

func (r *MemoryRepository) DeleteItem(ctx context.Context, id int) error {
	defer r.write(ctx)()
	for i, it := range r.state.items {
		if it.ID == id {
			r.state.items = append(r.state.items[:i:i], r.state.items[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (r *MemoryRepository) CreateOrder(ctx context.Context, userID, itemID, quantity int) (model.Order, error) {
	defer r.write(ctx)()
	found := false
	for _, u := range r.state.users {
		if u.ID == userID {
			found = true
			break
		}
	}
	if !found {
		return model.Order{}, ErrNotFound
	}

	o := model.Order{ID: r.state.nextOrderID, UserID: userID, ItemID: itemID, Quantity: quantity}
	r.state.nextOrderID++
	r.state.orders = append(r.state.orders, o)
	return o, nil
}

func (r *MemoryRepository) ListOrdersForUser(ctx context.Context, userID int) ([]model.Order, error) {
	defer r.read(ctx)()
	orders := []model.Order{}
	for _, o := range r.state.orders {
		if o.UserID == userID {
			orders = append(orders, o)
		}
	}
	return orders, nil
}
