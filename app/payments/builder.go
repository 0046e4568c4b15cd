package payments

import (
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"institute-admin/app/models"
)

// Observer is notified after every successful mutation of the staged list.
// The snapshot and total are recomputed before notification, so UI bindings
// never observe a half-applied state.
type Observer func(items []models.PaymentItem, total decimal.Decimal)

// ItemBuilder owns the in-memory staged list of payment lines for one
// staging session. Mutations perform no business validation (the validator is
// a separate pass so the list may hold invalid states while the operator is
// composing); the only invariant enforced here is removal ordering.
type ItemBuilder struct {
	mu        sync.Mutex
	items     []models.PaymentItem
	observers []Observer
}

func NewItemBuilder() *ItemBuilder {
	return &ItemBuilder{}
}

// Subscribe registers an observer for staged-list changes.
func (b *ItemBuilder) Subscribe(fn Observer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.observers = append(b.observers, fn)
}

// AddItem appends a line to the staged list. A missing id is assigned so
// every staged line is addressable for update/remove.
func (b *ItemBuilder) AddItem(item models.PaymentItem) models.PaymentItem {
	b.mu.Lock()
	defer b.mu.Unlock()

	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	b.items = append(b.items, item)
	b.notify()
	return item
}

// UpdateItem replaces the staged line with a matching id.
func (b *ItemBuilder) UpdateItem(item models.PaymentItem) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range b.items {
		if b.items[i].ID == item.ID {
			b.items[i] = item
			b.notify()
			return nil
		}
	}
	return ErrNotFound
}

// RemoveItem un-stages a line. Term-sequenced lines (tuition and term-based
// transport) may only be removed when they hold the highest staged term of
// their purpose: partial payments cannot be un-staged out of order, mirroring
// that they cannot be paid out of order. Book, other, and month-based
// transport lines are unrestricted.
func (b *ItemBuilder) RemoveItem(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	idx := -1
	for i := range b.items {
		if b.items[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrNotFound
	}

	target := b.items[idx]
	if target.UsesTermSequencing() {
		maxTerm := target.Term()
		for i := range b.items {
			if i == idx {
				continue
			}
			if b.items[i].Purpose == target.Purpose && b.items[i].UsesTermSequencing() && b.items[i].Term() > maxTerm {
				maxTerm = b.items[i].Term()
			}
		}
		if target.Term() < maxTerm {
			return &SequenceViolationError{Purpose: target.Purpose, Term: target.Term(), MaxTerm: maxTerm}
		}
	}

	b.items = append(b.items[:idx], b.items[idx+1:]...)
	b.notify()
	return nil
}

// Clear discards every staged line. Called by the coordinator after a
// successful submission and on session cancel.
func (b *ItemBuilder) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.items) == 0 {
		return
	}
	b.items = nil
	b.notify()
}

// Items returns a read-only snapshot of the staged list.
func (b *ItemBuilder) Items() []models.PaymentItem {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshot()
}

// Total returns the sum of staged line amounts. It is recomputed on every
// call rather than cached, so it can never drift from the list.
func (b *ItemBuilder) Total() decimal.Decimal {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.total()
}

func (b *ItemBuilder) snapshot() []models.PaymentItem {
	items := make([]models.PaymentItem, len(b.items))
	copy(items, b.items)
	return items
}

func (b *ItemBuilder) total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range b.items {
		total = total.Add(item.Amount)
	}
	return total
}

// notify is called with the lock held; observers get fresh copies.
func (b *ItemBuilder) notify() {
	if len(b.observers) == 0 {
		return
	}
	items := b.snapshot()
	total := b.total()
	for _, fn := range b.observers {
		fn(items, total)
	}
}
