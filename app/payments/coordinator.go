package payments

import (
	"context"
	"log"
	"sync"

	"institute-admin/app/models"
)

// State is the submission coordinator's current phase.
type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateSubmitting State = "submitting"
	StateSuccess    State = "success"
	StateFailed     State = "failed"
)

// PaymentService is the external collaborator that records a validated batch.
// It is opaque to the coordinator beyond success (a reference) or failure.
type PaymentService interface {
	Submit(ctx context.Context, data models.MultiplePaymentData) (reference string, err error)
}

// CompletionEvent is emitted once per successful submission.
type CompletionEvent struct {
	AdmissionNo string                    `json:"admission_no"`
	StudentID   string                    `json:"student_id"`
	Context     models.InstitutionContext `json:"context"`
	Purposes    []models.PaymentPurpose   `json:"purposes"`
	Reference   string                    `json:"reference"`
}

// Coordinator drives one staging session's submission lifecycle:
// Idle -> Validating -> Submitting -> Success | Failed, back to Idle on
// acknowledgement. At most one submission is in flight; a concurrent Submit
// is rejected with ErrBusy rather than queued.
type Coordinator struct {
	mu       sync.Mutex
	state    State
	lastErr  error
	inFlight bool

	builder  *ItemBuilder
	balances models.FeeBalance
	rules    models.ValidationRules
	service  PaymentService

	onSuccess []func(CompletionEvent)
}

func NewCoordinator(builder *ItemBuilder, balances models.FeeBalance, rules models.ValidationRules, service PaymentService) *Coordinator {
	return &Coordinator{
		state:    StateIdle,
		builder:  builder,
		balances: balances,
		rules:    rules,
		service:  service,
	}
}

// OnSuccess registers a completion listener. Listeners run after the Success
// transition and must not assume dependent cache refreshes have finished.
func (co *Coordinator) OnSuccess(fn func(CompletionEvent)) {
	co.mu.Lock()
	defer co.mu.Unlock()
	co.onSuccess = append(co.onSuccess, fn)
}

// Submit validates and submits the staged batch. On success the staged list
// is cleared and a completion event is emitted; on any failure the staged
// list is retained so the operator can retry without re-entering data.
func (co *Coordinator) Submit(ctx context.Context, data models.MultiplePaymentData) (CompletionEvent, error) {
	co.mu.Lock()
	if co.inFlight {
		co.mu.Unlock()
		return CompletionEvent{}, ErrBusy
	}
	co.inFlight = true
	co.state = StateValidating
	co.lastErr = nil
	co.mu.Unlock()

	result := ValidateForm(data, co.balances, co.rules)
	if !result.IsValid {
		err := &ValidationError{Messages: result.Errors}
		co.finish(StateFailed, err)
		return CompletionEvent{}, err
	}

	co.setState(StateSubmitting)

	reference, err := co.service.Submit(ctx, data)
	if err != nil {
		sysErr := &SystemError{Err: err}
		co.finish(StateFailed, sysErr)
		return CompletionEvent{}, sysErr
	}

	co.builder.Clear()

	event := CompletionEvent{
		AdmissionNo: data.AdmissionNo,
		StudentID:   data.StudentID,
		Context:     co.balances.Context,
		Purposes:    data.Purposes(),
		Reference:   reference,
	}
	co.finish(StateSuccess, nil)

	log.Printf("Payment %s recorded for admission %s (%d lines)", reference, data.AdmissionNo, len(data.Items))

	for _, fn := range co.listeners() {
		fn(event)
	}
	return event, nil
}

// Acknowledge returns the coordinator to Idle after a terminal state has been
// observed. It is a no-op mid-flight.
func (co *Coordinator) Acknowledge() {
	co.mu.Lock()
	defer co.mu.Unlock()
	if co.state == StateSuccess || co.state == StateFailed {
		co.state = StateIdle
		co.lastErr = nil
	}
}

// State returns the current phase.
func (co *Coordinator) State() State {
	co.mu.Lock()
	defer co.mu.Unlock()
	return co.state
}

// LastError returns the error carried by the most recent Failed transition.
func (co *Coordinator) LastError() error {
	co.mu.Lock()
	defer co.mu.Unlock()
	return co.lastErr
}

func (co *Coordinator) setState(s State) {
	co.mu.Lock()
	co.state = s
	co.mu.Unlock()
}

func (co *Coordinator) finish(s State, err error) {
	co.mu.Lock()
	co.state = s
	co.lastErr = err
	co.inFlight = false
	co.mu.Unlock()
}

func (co *Coordinator) listeners() []func(CompletionEvent) {
	co.mu.Lock()
	defer co.mu.Unlock()
	fns := make([]func(CompletionEvent), len(co.onSuccess))
	copy(fns, co.onSuccess)
	return fns
}
