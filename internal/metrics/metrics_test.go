package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserve(t *testing.T) {
	m := New()

	m.ObserveRemote("create_post", nil)
	m.ObserveRemote("create_post", errors.New("boom"))
	m.ObserveRemote("create_post", errors.New("boom"))
	m.ObserveQuota("post")
	m.ObservePost("scheduled")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RemoteCalls.WithLabelValues("create_post", "ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RemoteCalls.WithLabelValues("create_post", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.QuotaCalls.WithLabelValues("post")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Posts.WithLabelValues("scheduled")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRemote("delete_post", nil)
		m.ObserveQuota("post")
		m.ObservePost("posted")
	})
}
