package sink

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakySink fails the first n upserts, then succeeds.
type flakySink struct {
	failures int
	calls    int
}

func (s *flakySink) Upsert(context.Context, string, string, any) error {
	s.calls++
	if s.calls <= s.failures {
		return fmt.Errorf("transient failure %d", s.calls)
	}
	return nil
}

func TestRetrySink_RecoversFromTransientFailure(t *testing.T) {
	inner := &flakySink{failures: 2}
	rs := NewRetrySink(inner, 3, 1)

	err := rs.Upsert(context.Background(), "beacons", "poc-1", nil)
	require.NoError(t, err)
	assert.Equal(t, 3, inner.calls)
}

func TestRetrySink_GivesUpAfterAttempts(t *testing.T) {
	inner := &flakySink{failures: 10}
	rs := NewRetrySink(inner, 3, 1)

	err := rs.Upsert(context.Background(), "beacons", "poc-1", nil)
	require.Error(t, err)
	assert.Equal(t, 3, inner.calls)
}

func TestRetrySink_NoRetryOnSuccess(t *testing.T) {
	inner := &flakySink{}
	rs := NewRetrySink(inner, 5, 1)

	require.NoError(t, rs.Upsert(context.Background(), "beacons", "poc-1", nil))
	assert.Equal(t, 1, inner.calls)
}

func TestRetrySink_NilInner(t *testing.T) {
	assert.Nil(t, NewRetrySink(nil, 3, 1))
}
