package invalidation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"institute-admin/app/models"
)

func TestResolveStudentUpdate(t *testing.T) {
	r := NewDefaultResolver()

	keys := r.Resolve(models.SchoolContext, EntityStudent, OpUpdate, "42")

	assert.Contains(t, keys, RegionKey("school:student-detail:42"))
	assert.Contains(t, keys, RegionKey("school:students"))
	assert.Contains(t, keys, RegionKey("school:enrollments"))
	assert.Contains(t, keys, RegionKey("school:attendance"))
	assert.Contains(t, keys, RegionKey("school:reservations"))
	assert.Contains(t, keys, RegionKey("school:admissions"))
}

func TestResolvePaymentCreate(t *testing.T) {
	r := NewDefaultResolver()

	keys := r.Resolve(models.SchoolContext, EntityPayment, OpCreate, "stu-1")

	assert.Contains(t, keys, RegionKey("school:student-balances:stu-1"))
	assert.Contains(t, keys, RegionKey("school:student-payments:stu-1"))
	assert.Contains(t, keys, RegionKey("school:payments"))
	assert.Contains(t, keys, RegionKey("school:fees"))
	assert.Contains(t, keys, RegionKey("school:fee-balances"))
	assert.Contains(t, keys, RegionKey("school:dashboard"))
}

// A generator with no id emits nothing: the detail region stays stale and no
// error is raised. The degradation is best-effort by design; this test pins
// the behavior down so a change to it is a conscious decision.
func TestResolveMissingIDSkipsGenerators(t *testing.T) {
	r := NewDefaultResolver()

	keys := r.Resolve(models.SchoolContext, EntityStudent, OpUpdate, "")

	assert.NotContains(t, keys, RegionKey("school:student-detail:"))
	for _, key := range keys {
		assert.NotContains(t, string(key), "student-detail")
	}
	// Static list-level regions are still refreshed.
	assert.Contains(t, keys, RegionKey("school:students"))
}

func TestResolveUnknownRule(t *testing.T) {
	r := NewDefaultResolver()
	assert.Empty(t, r.Resolve(models.SchoolContext, Entity("unknown"), OpUpdate, "1"))
}

func TestResolveDeduplicates(t *testing.T) {
	rules := map[Rule][]Descriptor{
		{EntityFee, OpUpdate}: {
			Static(RegionFees),
			Static(RegionFees),
			ByIDFunc(func(id string) []RegionKey {
				return []RegionKey{RegionFees, RegionKey("fee-detail:" + id)}
			}),
		},
	}
	r := NewResolver(rules)

	keys := r.Resolve(models.SchoolContext, EntityFee, OpUpdate, "7")
	require.Len(t, keys, 2)
	assert.Contains(t, keys, RegionKey("school:fees"))
	assert.Contains(t, keys, RegionKey("school:fee-detail:7"))
}

// One table serves both deployments; only the namespace differs, so the two
// contexts cannot drift apart.
func TestResolveContextNamespacing(t *testing.T) {
	r := NewDefaultResolver()

	school := r.Resolve(models.SchoolContext, EntityPayment, OpCreate, "stu-1")
	college := r.Resolve(models.CollegeContext, EntityPayment, OpCreate, "stu-1")

	require.Equal(t, len(school), len(college))
	for i := range school {
		assert.NotEqual(t, school[i], college[i])
	}
	assert.Contains(t, college, RegionKey("college:payments"))
	assert.NotContains(t, college, RegionKey("school:payments"))
}

func TestResolveSetSemantics(t *testing.T) {
	r := NewDefaultResolver()

	a := r.Resolve(models.SchoolContext, EntityStudent, OpUpdate, "42")
	b := r.Resolve(models.SchoolContext, EntityStudent, OpUpdate, "42")

	// Order is not significant; set equality is the contract. Resolve sorts
	// its output so two runs compare equal directly.
	assert.Equal(t, a, b)

	seen := make(map[RegionKey]bool)
	for _, key := range a {
		assert.False(t, seen[key], "key %s emitted twice", key)
		seen[key] = true
	}
}
