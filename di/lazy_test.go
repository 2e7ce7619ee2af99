package di

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type telemetry struct {
	events []string
}

func (tm *telemetry) Record(ev string) { tm.events = append(tm.events, ev) }

type worker struct {
	Name string
	Tel  Lazy[*telemetry]
	Cat  OptionalLazy[catalog]
}

//
// -----------------------------------------------------------------------------
// Lazy
// -----------------------------------------------------------------------------

// TestLazy_DefersUntilAccess verifies a Lazy field performs no resolution
// at build time and memoizes the first access per instance.
func TestLazy_DefersUntilAccess(t *testing.T) {
	t.Parallel()

	c := New()
	calls := 0
	require.NoError(t, RegisterValue[string](c, "w1"))
	require.NoError(t, Register[*telemetry](c, func() *telemetry {
		calls++
		return &telemetry{}
	}))

	w, err := Build[worker](c)
	require.NoError(t, err)
	assert.Equal(t, 0, calls, "building must not resolve lazy fields")

	first := w.Tel.Get()
	second := w.Tel.Get()
	assert.Equal(t, 1, calls, "access must memoize")
	assert.Same(t, first, second)

	other, err := Build[worker](c)
	require.NoError(t, err)
	other.Tel.Get()
	assert.Equal(t, 2, calls, "memoization is per instance")
}

// TestLazy_ErrorRetried verifies a failed access is not memoized and a
// later registration is picked up.
func TestLazy_ErrorRetried(t *testing.T) {
	t.Parallel()

	c := New()
	require.NoError(t, RegisterValue[string](c, "w"))

	w, err := Build[worker](c)
	require.NoError(t, err)

	_, err = w.Tel.GetE()
	require.Error(t, err)
	assert.True(t, IsUnregistered(err))

	require.NoError(t, RegisterValue[*telemetry](c, &telemetry{}))
	got, err := w.Tel.GetE()
	require.NoError(t, err)
	assert.NotNil(t, got)
}

// TestLazy_GetPanicsOnFailure verifies the panicking accessor.
func TestLazy_GetPanicsOnFailure(t *testing.T) {
	t.Parallel()

	c := New()
	require.NoError(t, RegisterValue[string](c, "w"))
	w, err := Build[worker](c)
	require.NoError(t, err)

	assert.Panics(t, func() { w.Tel.Get() })
}

// TestLazy_SetAndReset verifies manual values bypass resolution and Reset
// re-arms it.
func TestLazy_SetAndReset(t *testing.T) {
	t.Parallel()

	c := New()
	calls := 0
	require.NoError(t, RegisterValue[string](c, "w"))
	require.NoError(t, Register[*telemetry](c, func() *telemetry {
		calls++
		return &telemetry{events: []string{"resolved"}}
	}))

	w, err := Build[worker](c)
	require.NoError(t, err)

	manual := &telemetry{events: []string{"manual"}}
	w.Tel.Set(manual)
	assert.Same(t, manual, w.Tel.Get())
	assert.Equal(t, 0, calls)

	w.Tel.Reset()
	assert.Equal(t, []string{"resolved"}, w.Tel.Get().events)
	assert.Equal(t, 1, calls)
}

// TestLazy_ZeroValueUnbound verifies the zero wrapper reports a usable
// error instead of resolving.
func TestLazy_ZeroValueUnbound(t *testing.T) {
	t.Parallel()

	var l Lazy[int]
	_, err := l.GetE()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not bound")
}

//
// -----------------------------------------------------------------------------
// OptionalLazy
// -----------------------------------------------------------------------------

// TestOptionalLazy_AbsenceNotMemoized verifies a miss reports false without
// sticking, and a later registration is found; the success then memoizes.
func TestOptionalLazy_AbsenceNotMemoized(t *testing.T) {
	t.Parallel()

	c := New()
	require.NoError(t, RegisterValue[string](c, "w"))

	w, err := Build[worker](c)
	require.NoError(t, err)

	_, ok := w.Cat.Get()
	assert.False(t, ok)

	require.NoError(t, RegisterValue[catalog](c, &memCatalog{prefix: "late-"}))
	got, ok := w.Cat.Get()
	require.True(t, ok, "a later registration must be picked up")
	assert.Equal(t, "late-7", got.Lookup("7"))

	require.NoError(t, Remove[catalog](c))
	got, ok = w.Cat.Get()
	require.True(t, ok, "a successful access memoizes")
	assert.Equal(t, "late-7", got.Lookup("7"))
}

// TestOptionalLazy_ZeroValue verifies the zero wrapper reports missing.
func TestOptionalLazy_ZeroValue(t *testing.T) {
	t.Parallel()

	var o OptionalLazy[int]
	_, ok := o.Get()
	assert.False(t, ok)
}

//
// -----------------------------------------------------------------------------
// Markers on wrappers
// -----------------------------------------------------------------------------

type eagerWrapped struct {
	Tel Lazy[*telemetry] `inject:"eager"`
}

// TestLazy_EagerTagPrefills verifies an eager-tagged wrapper resolves
// during the build and fails the build when it cannot.
func TestLazy_EagerTagPrefills(t *testing.T) {
	t.Parallel()

	c := New()
	calls := 0
	require.NoError(t, Register[*telemetry](c, func() *telemetry {
		calls++
		return &telemetry{}
	}))

	w, err := Build[eagerWrapped](c)
	require.NoError(t, err)
	assert.Equal(t, 1, calls, "eager tag must resolve at build time")
	w.Tel.Get()
	assert.Equal(t, 1, calls)

	empty := New()
	_, err = Build[eagerWrapped](empty)
	require.Error(t, err)
	assert.True(t, IsUnregistered(err))
}

type mismarkedStrict struct {
	Tel Lazy[*telemetry] `inject:"optional"`
}

type mismarkedOptional struct {
	Cat OptionalLazy[catalog] `inject:"lazy"`
}

// TestWrapperMarkerMismatch verifies markers contradicting the wrapper kind
// are validation failures.
func TestWrapperMarkerMismatch(t *testing.T) {
	t.Parallel()

	c := New()
	_, err := Build[mismarkedStrict](c)
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	_, err = Build[mismarkedOptional](c)
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

// TestPopulate_BindsZeroWrappers verifies Populate binds untouched wrapper
// fields and leaves manually set ones alone.
func TestPopulate_BindsZeroWrappers(t *testing.T) {
	t.Parallel()

	c := New()
	require.NoError(t, RegisterValue[string](c, "w"))
	require.NoError(t, RegisterValue[*telemetry](c, &telemetry{events: []string{"bound"}}))

	manual := &telemetry{events: []string{"manual"}}
	w := &worker{}
	w.Tel.Set(manual)
	require.NoError(t, Populate(c, w))

	assert.Same(t, manual, w.Tel.Get(), "pre-set wrapper must be kept")

	fresh := &worker{}
	require.NoError(t, Populate(c, fresh))
	assert.Equal(t, []string{"bound"}, fresh.Tel.Get().events)
}

// TestLazy_WithFieldRejected verifies build overrides cannot target
// deferred fields.
func TestLazy_WithFieldRejected(t *testing.T) {
	t.Parallel()

	c := New()
	require.NoError(t, RegisterValue[string](c, "w"))

	_, err := Build[worker](c, WithField("Tel", &telemetry{}))
	require.Error(t, err)
	assert.True(t, IsConstruction(err))
}
