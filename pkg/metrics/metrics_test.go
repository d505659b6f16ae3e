package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRegisterCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NotPanics(t, func() { RegisterCollectors(reg) })

	ContactsSubmitted.Inc()
	RateLimitRejected.WithLabelValues("contact").Inc()
	n, err := testutil.GatherAndCount(reg, "portfolio_contacts_submitted_total", "portfolio_rate_limit_rejected_total")
	require.NoError(t, err)
	require.Equal(t, 2, n)

	require.Panics(t, func() { RegisterCollectors(reg) })
}
