package service

import (
	"context"
	"sort"
	"sync"

	"kaiserhaus-checkout-service/internal/model"
	"kaiserhaus-checkout-service/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Fakes en memoria que respetan los contratos atómicos de los repositorios
// Mongo (decremento condicional, settle condicional, secuencia sin
// duplicados). Cada operación toma el lock completo, igual que una operación
// única de Mongo.

type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[int64]*model.Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[int64]*model.Order)}
}

func (f *fakeOrderRepo) Insert(_ context.Context, o *model.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *o
	f.orders[o.OrderID] = &cp
	return nil
}

func (f *fakeOrderRepo) FindByOrderID(_ context.Context, orderID int64) (*model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[orderID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrderRepo) UpdateStatusIf(_ context.Context, orderID int64, from, to string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[orderID]
	if !ok || o.Status != from {
		return false, nil
	}
	o.Status = to
	return true, nil
}

func (f *fakeOrderRepo) FindByUserPage(_ context.Context, userID string, skip, limit int64) ([]*model.Order, int64, error) {
	return f.page(func(o *model.Order) bool { return o.UserID == userID }, skip, limit)
}

func (f *fakeOrderRepo) FindAllPage(_ context.Context, skip, limit int64) ([]*model.Order, int64, error) {
	return f.page(func(*model.Order) bool { return true }, skip, limit)
}

func (f *fakeOrderRepo) page(match func(*model.Order) bool, skip, limit int64) ([]*model.Order, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var all []*model.Order
	for _, o := range f.orders {
		if match(o) {
			cp := *o
			all = append(all, &cp)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].OrderID > all[j].OrderID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	total := int64(len(all))
	if skip >= total {
		return nil, total, nil
	}
	end := skip + limit
	if end > total {
		end = total
	}
	return all[skip:end], total, nil
}

func (f *fakeOrderRepo) CountByStatus(_ context.Context) (map[string]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[string]int64{}
	for _, o := range f.orders {
		out[o.Status]++
		out["total"]++
	}
	return out, nil
}

type fakeProductRepo struct {
	mu         sync.Mutex
	products   map[string]*model.Product
	backfilled int64
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[string]*model.Product)}
}

func (f *fakeProductRepo) put(key string, p model.Product) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products[key] = &p
}

func (f *fakeProductRepo) quantity(key string) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.products[key].Quantity
}

func (f *fakeProductRepo) FindByRef(_ context.Context, ref model.ProductRef) (*model.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[ref.Raw]
	if !ok || !p.Active {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProductRepo) AdjustStock(_ context.Context, ref model.ProductRef, delta int64) (*model.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[ref.Raw]
	if !ok || !p.Active {
		return nil, repository.ErrNotFound
	}
	if delta < 0 && p.Quantity < -delta {
		return nil, repository.ErrInsufficientStock
	}
	p.Quantity += delta
	cp := *p
	return &cp, nil
}

func (f *fakeProductRepo) BackfillQuantity(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := f.backfilled
	f.backfilled = 0
	return n, nil
}

type fakeSequenceRepo struct {
	mu       sync.Mutex
	counters map[string]int64
}

func newFakeSequenceRepo() *fakeSequenceRepo {
	return &fakeSequenceRepo{counters: make(map[string]int64)}
}

func (f *fakeSequenceRepo) Next(_ context.Context, name string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counters[name]++
	return f.counters[name], nil
}

type fakePaymentRepo struct {
	mu       sync.Mutex
	payments []*model.Payment
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{}
}

func (f *fakePaymentRepo) Insert(_ context.Context, p *model.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *p
	f.payments = append(f.payments, &cp)
	return nil
}

func (f *fakePaymentRepo) FindLatestByOrderID(_ context.Context, orderID int64) (*model.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.payments) - 1; i >= 0; i-- {
		if f.payments[i].OrderID == orderID {
			cp := *f.payments[i]
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakePaymentRepo) SettlePending(_ context.Context, orderID int64, method, status string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.payments {
		if p.OrderID == orderID && p.Status == model.PaymentStatusPending && (method == "" || p.Method == method) {
			p.Status = status
			return true, nil
		}
	}
	return false, nil
}

func (f *fakePaymentRepo) ExpirePending(_ context.Context, orderID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, p := range f.payments {
		if p.OrderID == orderID && p.Status == model.PaymentStatusPending {
			p.Status = model.PaymentStatusExpired
			n++
		}
	}
	return n, nil
}

func (f *fakePaymentRepo) byOrder(orderID int64) []*model.Payment {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Payment
	for _, p := range f.payments {
		if p.OrderID == orderID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out
}

type fakeCardRepo struct {
	mu    sync.Mutex
	next  int
	cards map[string]*model.Card
}

func newFakeCardRepo() *fakeCardRepo {
	return &fakeCardRepo{cards: make(map[string]*model.Card)}
}

func (f *fakeCardRepo) Insert(_ context.Context, card *model.Card) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	key := fakeCardKey(f.next)
	oid, err := primitive.ObjectIDFromHex(key)
	if err != nil {
		return err
	}
	card.ID = oid
	cp := *card
	f.cards[key] = &cp
	return nil
}

// fakeCardKey arma un hex de 24 caracteres estable para usar como id.
func fakeCardKey(n int) string {
	const hexdigits = "0123456789abcdef"
	b := make([]byte, 24)
	for i := range b {
		b[i] = hexdigits[n%16]
		n /= 16
	}
	return string(b)
}

func (f *fakeCardRepo) FindByID(_ context.Context, cardID, userID string) (*model.Card, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	card, ok := f.cards[cardID]
	if !ok || card.UserID != userID {
		return nil, repository.ErrNotFound
	}
	cp := *card
	return &cp, nil
}

func (f *fakeCardRepo) FindByUser(_ context.Context, userID string) ([]*model.Card, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Card
	for _, card := range f.cards {
		if card.UserID == userID {
			cp := *card
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeCardRepo) Delete(_ context.Context, cardID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	card, ok := f.cards[cardID]
	if !ok || card.UserID != userID {
		return repository.ErrNotFound
	}
	delete(f.cards, cardID)
	return nil
}

type fakePublisher struct {
	mu        sync.Mutex
	placed    []int64
	confirmed []int64
}

func (f *fakePublisher) OrderPlaced(o *model.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.placed = append(f.placed, o.OrderID)
	return nil
}

func (f *fakePublisher) PaymentConfirmed(orderID int64, _ string, _ float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.confirmed = append(f.confirmed, orderID)
	return nil
}
