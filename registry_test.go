package refork

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistrations() *registrations {
	return &registrations{
		fns: make(map[uint32]func()),
		ids: make(map[uintptr]uint32),
	}
}

func TestRegistrationsRoundTrip(t *testing.T) {
	r := newTestRegistrations()

	called := false
	fn := func() { called = true }

	r.add(7, fn)
	r.seal()

	got, ok := r.callback(7)
	require.True(t, ok)
	got()
	assert.True(t, called)

	id, ok := r.idOf(fn)
	require.True(t, ok)
	assert.Equal(t, uint32(7), id)
}

func TestRegistrationsUnknownLookups(t *testing.T) {
	r := newTestRegistrations()
	r.add(1, func() {})
	r.seal()

	_, ok := r.callback(2)
	assert.False(t, ok)

	_, ok = r.idOf(func() {})
	assert.False(t, ok)
}

func TestRegistrationsRejectsNilCallback(t *testing.T) {
	r := newTestRegistrations()

	assert.Panics(t, func() {
		r.add(1, nil)
	})
}

func TestRegistrationsRejectsDuplicateID(t *testing.T) {
	r := newTestRegistrations()
	r.add(1, func() {})

	assert.Panics(t, func() {
		r.add(1, func() {})
	})
}

func TestRegistrationsRejectsDuplicateCallback(t *testing.T) {
	r := newTestRegistrations()

	fn := func() {}
	r.add(1, fn)

	assert.Panics(t, func() {
		r.add(2, fn)
	})
}

func TestRegistrationsRejectsAddAfterSeal(t *testing.T) {
	r := newTestRegistrations()
	r.seal()

	assert.Panics(t, func() {
		r.add(1, func() {})
	})
}
