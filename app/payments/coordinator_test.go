package payments

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"institute-admin/app/models"
)

// fakePaymentService counts calls and can block or fail on demand.
type fakePaymentService struct {
	mu      sync.Mutex
	calls   int
	started chan struct{}
	release chan struct{}
	err     error
}

func newFakePaymentService() *fakePaymentService {
	return &fakePaymentService{
		started: make(chan struct{}, 1),
		release: nil,
	}
}

func (f *fakePaymentService) Submit(ctx context.Context, data models.MultiplePaymentData) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	select {
	case f.started <- struct{}{}:
	default:
	}

	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	if f.err != nil {
		return "", f.err
	}
	return "RCT-TEST0001", nil
}

func (f *fakePaymentService) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func setupCoordinator(t *testing.T, svc PaymentService) (*Coordinator, *ItemBuilder) {
	t.Helper()
	builder := NewItemBuilder()
	co := NewCoordinator(builder, testBalances(), models.ValidationRules{}, svc)
	return co, builder
}

func stagedData(builder *ItemBuilder) models.MultiplePaymentData {
	return models.MultiplePaymentData{
		StudentID:   "7a0e9d8c-0000-0000-0000-000000000001",
		AdmissionNo: "ADM-001",
		Items:       builder.Items(),
	}
}

func TestSubmitSuccess(t *testing.T) {
	svc := newFakePaymentService()
	co, builder := setupCoordinator(t, svc)
	builder.AddItem(tuitionItem(1, 10000))
	builder.AddItem(tuitionItem(2, 10000))

	var event CompletionEvent
	co.OnSuccess(func(ev CompletionEvent) { event = ev })

	got, err := co.Submit(context.Background(), stagedData(builder))
	require.NoError(t, err)

	assert.Equal(t, StateSuccess, co.State())
	assert.Equal(t, "RCT-TEST0001", got.Reference)
	assert.Equal(t, "ADM-001", got.AdmissionNo)
	assert.Equal(t, []models.PaymentPurpose{models.TuitionFee}, got.Purposes)
	assert.Equal(t, got, event)

	// The staged list is cleared only on success.
	assert.Empty(t, builder.Items())

	co.Acknowledge()
	assert.Equal(t, StateIdle, co.State())
	assert.NoError(t, co.LastError())
}

func TestSubmitRejectsConcurrentCall(t *testing.T) {
	svc := newFakePaymentService()
	svc.release = make(chan struct{})
	co, builder := setupCoordinator(t, svc)
	builder.AddItem(tuitionItem(1, 10000))

	done := make(chan error, 1)
	go func() {
		_, err := co.Submit(context.Background(), stagedData(builder))
		done <- err
	}()

	// Wait until the first submission has reached the payment service.
	select {
	case <-svc.started:
	case <-time.After(2 * time.Second):
		t.Fatal("first submission never reached the payment service")
	}

	_, err := co.Submit(context.Background(), stagedData(builder))
	assert.ErrorIs(t, err, ErrBusy)
	assert.Equal(t, 1, svc.callCount(), "no second network call may be issued")

	close(svc.release)
	require.NoError(t, <-done)
	assert.Equal(t, StateSuccess, co.State())
}

func TestSubmitValidationFailureSkipsService(t *testing.T) {
	svc := newFakePaymentService()
	co, builder := setupCoordinator(t, svc)
	builder.AddItem(tuitionItem(2, 10000)) // skips term 1

	_, err := co.Submit(context.Background(), stagedData(builder))

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.NotEmpty(t, valErr.Messages)
	assert.Equal(t, 0, svc.callCount())
	assert.Equal(t, StateFailed, co.State())
	assert.Equal(t, err, co.LastError())

	// Staged data is retained for correction.
	assert.Len(t, builder.Items(), 1)
}

func TestSubmitServiceFailureRetainsItems(t *testing.T) {
	svc := newFakePaymentService()
	svc.err = errors.New("connection reset")
	co, builder := setupCoordinator(t, svc)
	builder.AddItem(tuitionItem(1, 10000))

	_, err := co.Submit(context.Background(), stagedData(builder))

	var sysErr *SystemError
	require.ErrorAs(t, err, &sysErr)
	assert.Equal(t, StateFailed, co.State())
	assert.Len(t, builder.Items(), 1, "staged list survives a service failure")

	// The operator can retry without re-entering data.
	svc.err = nil
	co.Acknowledge()
	_, err = co.Submit(context.Background(), stagedData(builder))
	require.NoError(t, err)
	assert.Equal(t, 2, svc.callCount())
}

func TestSubmitAbortSurfacesSystemError(t *testing.T) {
	svc := newFakePaymentService()
	svc.release = make(chan struct{}) // never released; only ctx unblocks
	co, builder := setupCoordinator(t, svc)
	builder.AddItem(tuitionItem(1, 10000))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := co.Submit(ctx, stagedData(builder))
		done <- err
	}()

	select {
	case <-svc.started:
	case <-time.After(2 * time.Second):
		t.Fatal("submission never reached the payment service")
	}
	cancel()

	err := <-done
	var sysErr *SystemError
	require.ErrorAs(t, err, &sysErr)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, builder.Items(), 1)
}

func TestAcknowledgeIgnoredMidFlight(t *testing.T) {
	svc := newFakePaymentService()
	svc.release = make(chan struct{})
	co, builder := setupCoordinator(t, svc)
	builder.AddItem(tuitionItem(1, 10000))

	done := make(chan error, 1)
	go func() {
		_, err := co.Submit(context.Background(), stagedData(builder))
		done <- err
	}()

	select {
	case <-svc.started:
	case <-time.After(2 * time.Second):
		t.Fatal("submission never reached the payment service")
	}

	co.Acknowledge()
	assert.Equal(t, StateSubmitting, co.State())

	close(svc.release)
	require.NoError(t, <-done)
}
