package payments

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"institute-admin/app/models"
)

func startTestSession(t *testing.T, reg *SessionRegistry) *Session {
	t.Helper()
	return reg.Start(models.SchoolContext, "7a0e9d8c-0000-0000-0000-000000000001", "ADM-001",
		testBalances(), models.ValidationRules{}, newFakePaymentService())
}

func TestSessionStartAndLookup(t *testing.T) {
	reg := NewSessionRegistry()
	sess := startTestSession(t, reg)

	require.NotEmpty(t, sess.ID)
	assert.Equal(t, 1, reg.Count())

	got, ok := reg.Get(sess.ID)
	require.True(t, ok)
	assert.Same(t, sess, got)
}

func TestSessionCancelDiscardsStagedList(t *testing.T) {
	reg := NewSessionRegistry()
	sess := startTestSession(t, reg)
	sess.Builder.AddItem(tuitionItem(1, 10000))

	require.True(t, reg.Cancel(sess.ID))
	assert.Equal(t, 0, reg.Count())
	assert.Empty(t, sess.Builder.Items())

	_, ok := reg.Get(sess.ID)
	assert.False(t, ok)
	assert.False(t, reg.Cancel(sess.ID))
}

func TestSessionValidateUsesSnapshot(t *testing.T) {
	reg := NewSessionRegistry()
	sess := startTestSession(t, reg)

	sess.Builder.AddItem(tuitionItem(2, 10000)) // skips term 1
	result := sess.Validate()
	assert.False(t, result.IsValid)

	sess.Builder.Clear()
	sess.Builder.AddItem(tuitionItem(1, 10000))
	result = sess.Validate()
	assert.True(t, result.IsValid, "errors: %v", result.Errors)
}

func TestSessionDataCarriesRemarks(t *testing.T) {
	reg := NewSessionRegistry()
	sess := startTestSession(t, reg)
	sess.Builder.AddItem(bookItem(1500))

	data := sess.Data("paid at front desk")
	assert.Equal(t, "ADM-001", data.AdmissionNo)
	assert.Equal(t, "paid at front desk", data.Remarks)
	assert.Len(t, data.Items, 1)
}

func TestExpireIdleSweepsInactiveSessions(t *testing.T) {
	reg := NewSessionRegistry()
	stale := startTestSession(t, reg)
	active := startTestSession(t, reg)

	time.Sleep(10 * time.Millisecond)
	active.Touch()

	dropped := reg.ExpireIdle(5 * time.Millisecond)
	assert.Equal(t, 1, dropped)

	_, ok := reg.Get(stale.ID)
	assert.False(t, ok)
	_, ok = reg.Get(active.ID)
	assert.True(t, ok)
}

func TestExpireIdleKeepsFreshSessions(t *testing.T) {
	reg := NewSessionRegistry()
	startTestSession(t, reg)

	assert.Equal(t, 0, reg.ExpireIdle(time.Hour))
	assert.Equal(t, 1, reg.Count())
}
