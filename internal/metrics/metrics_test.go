package metrics

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anthonybtedesco/happyswims-app-sub000/internal/domain"
)

func TestSkipReason(t *testing.T) {
	_, parseErr := domain.ParseTimeRanges("9-10")
	require.Error(t, parseErr)

	assert.Equal(t, "parse", SkipReason(parseErr))
	assert.Equal(t, "parse", SkipReason(fmt.Errorf("window w1: %w", parseErr)))
	assert.Equal(t, "date_span", SkipReason(domain.ErrInvalidDateSpan))
	assert.Equal(t, "other", SkipReason(errors.New("boom")))
}

func TestCounters(t *testing.T) {
	Register()
	Register()

	before := testutil.ToFloat64(windowsSkipped.WithLabelValues("date_span"))
	IncWindowSkipped(domain.ErrInvalidDateSpan)
	assert.Equal(t, before+1, testutil.ToFloat64(windowsSkipped.WithLabelValues("date_span")))

	before = testutil.ToFloat64(slotChecks.WithLabelValues("unknown"))
	IncSlotCheck(domain.VerdictUnknown)
	assert.Equal(t, before+1, testutil.ToFloat64(slotChecks.WithLabelValues("unknown")))

	before = testutil.ToFloat64(bookingCreated.WithLabelValues("conflict"))
	IncBookingCreated("conflict")
	assert.Equal(t, before+1, testutil.ToFloat64(bookingCreated.WithLabelValues("conflict")))

	before = testutil.ToFloat64(bookingCancelled)
	IncBookingCancelled()
	assert.Equal(t, before+1, testutil.ToFloat64(bookingCancelled))

	before = testutil.ToFloat64(freeTimeQueries)
	IncFreeTimeQuery()
	assert.Equal(t, before+1, testutil.ToFloat64(freeTimeQueries))
}

func TestObserveRPC(t *testing.T) {
	ObserveRPC("/happyswims.v1.LessonsService/CheckSlot", "OK", 20*time.Millisecond)
	assert.GreaterOrEqual(t, testutil.CollectAndCount(rpcDuration), 1)
}
