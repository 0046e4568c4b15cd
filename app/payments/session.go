package payments

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"institute-admin/app/models"
)

// Session holds everything one operator needs to assemble a multi-line
// payment for one student: the staged list, the balance snapshot fetched once
// at session start, the rule set, and the submission coordinator. Sessions
// live only in memory and are discarded on success, cancel, or expiry.
type Session struct {
	ID          string
	Context     models.InstitutionContext
	StudentID   string
	AdmissionNo string
	Rules       models.ValidationRules
	Balances    models.FeeBalance
	Builder     *ItemBuilder
	Coordinator *Coordinator

	mu         sync.Mutex
	createdAt  time.Time
	lastActive time.Time
}

// Touch records operator activity so the session is not expired mid-staging.
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastActive = time.Now()
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// Data assembles the batch handed to the validator and the payment service.
func (s *Session) Data(remarks string) models.MultiplePaymentData {
	return models.MultiplePaymentData{
		StudentID:   s.StudentID,
		AdmissionNo: s.AdmissionNo,
		Items:       s.Builder.Items(),
		Remarks:     remarks,
	}
}

// Validate re-runs the full rule set against the current staged list.
func (s *Session) Validate() ValidationResult {
	return ValidateForm(s.Data(""), s.Balances, s.Rules)
}

// SessionRegistry tracks active staging sessions by id.
type SessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{sessions: make(map[string]*Session)}
}

// Start opens a staging session. The balance snapshot is fetched by the
// caller exactly once; it is never refreshed for the life of the session.
func (r *SessionRegistry) Start(ctx models.InstitutionContext, studentID, admissionNo string,
	balances models.FeeBalance, rules models.ValidationRules, service PaymentService) *Session {

	builder := NewItemBuilder()
	now := time.Now()
	s := &Session{
		ID:          uuid.New().String(),
		Context:     ctx,
		StudentID:   studentID,
		AdmissionNo: admissionNo,
		Rules:       rules,
		Balances:    balances,
		Builder:     builder,
		Coordinator: NewCoordinator(builder, balances, rules, service),
		createdAt:   now,
		lastActive:  now,
	}

	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
	return s
}

// Get looks up an active session.
func (r *SessionRegistry) Get(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Cancel discards a session and its staged list with no side effects.
func (r *SessionRegistry) Cancel(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return false
	}
	s.Builder.Clear()
	delete(r.sessions, id)
	return true
}

// Count returns the number of active sessions.
func (r *SessionRegistry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// ExpireIdle discards sessions with no operator activity for maxIdle and
// returns how many were dropped. Mid-flight submissions are left alone.
func (r *SessionRegistry) ExpireIdle(maxIdle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := time.Now().Add(-maxIdle)
	dropped := 0
	for id, s := range r.sessions {
		if s.idleSince().Before(cutoff) && s.Coordinator.State() != StateSubmitting {
			delete(r.sessions, id)
			dropped++
		}
	}
	return dropped
}
