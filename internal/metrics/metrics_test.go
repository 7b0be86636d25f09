package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRegisterIsIdempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		Register()
		Register()
	})
}

func TestCounters(t *testing.T) {
	Register()

	before := testutil.ToFloat64(bookingsCreated)
	IncBookingCreated()
	assert.Equal(t, before+1, testutil.ToFloat64(bookingsCreated))

	beforeExp := testutil.ToFloat64(expAwarded)
	AddExpAwarded(5)
	assert.Equal(t, beforeExp+5, testutil.ToFloat64(expAwarded))

	beforeRej := testutil.ToFloat64(bookingsRejected.WithLabelValues("capacity"))
	IncBookingRejected("capacity")
	assert.Equal(t, beforeRej+1, testutil.ToFloat64(bookingsRejected.WithLabelValues("capacity")))
}
