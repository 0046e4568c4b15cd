package payments

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"institute-admin/app/models"
)

func intPtr(n int) *int { return &n }

func strPtr(s string) *string { return &s }

func tuitionItem(term int, amount int64) models.PaymentItem {
	return models.PaymentItem{
		Purpose:       models.TuitionFee,
		TermNumber:    intPtr(term),
		Amount:        decimal.NewFromInt(amount),
		PaymentMethod: models.MethodCash,
	}
}

func transportTermItem(term int, amount int64) models.PaymentItem {
	return models.PaymentItem{
		Purpose:       models.TransportFee,
		TermNumber:    intPtr(term),
		Amount:        decimal.NewFromInt(amount),
		PaymentMethod: models.MethodCash,
	}
}

func transportMonthItem(month string, amount int64) models.PaymentItem {
	return models.PaymentItem{
		Purpose:       models.TransportFee,
		PaymentMonth:  strPtr(month),
		Amount:        decimal.NewFromInt(amount),
		PaymentMethod: models.MethodCash,
	}
}

func bookItem(amount int64) models.PaymentItem {
	return models.PaymentItem{
		Purpose:       models.BookFee,
		Amount:        decimal.NewFromInt(amount),
		PaymentMethod: models.MethodCash,
	}
}

func TestAddItemAssignsID(t *testing.T) {
	b := NewItemBuilder()

	item := b.AddItem(tuitionItem(1, 10000))
	assert.NotEmpty(t, item.ID)
	assert.Len(t, b.Items(), 1)
}

func TestTotalAlwaysMatchesSum(t *testing.T) {
	b := NewItemBuilder()

	first := b.AddItem(tuitionItem(1, 10000))
	b.AddItem(bookItem(2500))
	assert.True(t, b.Total().Equal(decimal.NewFromInt(12500)))

	first.Amount = decimal.NewFromInt(8000)
	require.NoError(t, b.UpdateItem(first))
	assert.True(t, b.Total().Equal(decimal.NewFromInt(10500)))

	second := b.AddItem(tuitionItem(2, 10000))
	assert.True(t, b.Total().Equal(decimal.NewFromInt(20500)))

	require.NoError(t, b.RemoveItem(second.ID))
	assert.True(t, b.Total().Equal(decimal.NewFromInt(10500)))
}

func TestUpdateItemNotFound(t *testing.T) {
	b := NewItemBuilder()
	b.AddItem(bookItem(1000))

	missing := bookItem(2000)
	missing.ID = "does-not-exist"
	assert.ErrorIs(t, b.UpdateItem(missing), ErrNotFound)
}

func TestRemoveItemNotFound(t *testing.T) {
	b := NewItemBuilder()
	assert.ErrorIs(t, b.RemoveItem("does-not-exist"), ErrNotFound)
}

func TestRemoveTuitionOutOfOrderFails(t *testing.T) {
	b := NewItemBuilder()
	term1 := b.AddItem(tuitionItem(1, 10000))
	term2 := b.AddItem(tuitionItem(2, 10000))

	err := b.RemoveItem(term1.ID)
	var seqErr *SequenceViolationError
	require.ErrorAs(t, err, &seqErr)
	assert.Equal(t, models.TuitionFee, seqErr.Purpose)
	assert.Equal(t, 1, seqErr.Term)
	assert.Equal(t, 2, seqErr.MaxTerm)

	// Removing the highest staged term first unblocks the earlier one.
	require.NoError(t, b.RemoveItem(term2.ID))
	require.NoError(t, b.RemoveItem(term1.ID))
	assert.Empty(t, b.Items())
}

func TestRemoveTermTransportOutOfOrderFails(t *testing.T) {
	b := NewItemBuilder()
	term1 := b.AddItem(transportTermItem(1, 3000))
	b.AddItem(transportTermItem(2, 3000))

	var seqErr *SequenceViolationError
	assert.ErrorAs(t, b.RemoveItem(term1.ID), &seqErr)
}

func TestRemovalOrderingScopedByPurpose(t *testing.T) {
	b := NewItemBuilder()
	tuition1 := b.AddItem(tuitionItem(1, 10000))
	b.AddItem(transportTermItem(2, 3000))

	// A higher transport term does not block removing tuition term 1.
	assert.NoError(t, b.RemoveItem(tuition1.ID))
}

func TestRemoveUnsequencedItemsUnrestricted(t *testing.T) {
	b := NewItemBuilder()
	month := b.AddItem(transportMonthItem("2026-03", 3000))
	b.AddItem(transportMonthItem("2026-04", 3000))
	book := b.AddItem(bookItem(1500))
	b.AddItem(tuitionItem(1, 10000))
	b.AddItem(tuitionItem(2, 10000))

	assert.NoError(t, b.RemoveItem(month.ID))
	assert.NoError(t, b.RemoveItem(book.ID))
}

func TestObserverNotifiedOnEveryMutation(t *testing.T) {
	b := NewItemBuilder()

	var calls int
	var lastTotal decimal.Decimal
	b.Subscribe(func(items []models.PaymentItem, total decimal.Decimal) {
		calls++
		lastTotal = total
	})

	item := b.AddItem(bookItem(1000))
	item.Amount = decimal.NewFromInt(2000)
	require.NoError(t, b.UpdateItem(item))
	require.NoError(t, b.RemoveItem(item.ID))

	assert.Equal(t, 3, calls)
	assert.True(t, lastTotal.IsZero())
}

func TestClearDiscardsStagedList(t *testing.T) {
	b := NewItemBuilder()
	b.AddItem(tuitionItem(1, 10000))
	b.AddItem(tuitionItem(2, 10000))

	b.Clear()
	assert.Empty(t, b.Items())
	assert.True(t, b.Total().IsZero())
}
