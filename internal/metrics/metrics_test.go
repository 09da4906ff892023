package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorCounts(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())

	c.RecordRegistration(OutcomeSuccess)
	c.RecordRegistration(OutcomeDuplicate)
	c.RecordRegistration(OutcomeSuccess)
	c.RecordLogin(OutcomeInvalid)
	c.RecordListingCreated()
	c.RecordUpload(100)
	c.RecordUpload(50)
	c.RecordDiscard(false)
	c.RecordDiscard(true)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.registrations.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.registrations.WithLabelValues(OutcomeDuplicate)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.logins.WithLabelValues(OutcomeInvalid)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.listingsCreated))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.uploads))
	assert.Equal(t, 150.0, testutil.ToFloat64(c.uploadBytes))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.discards.WithLabelValues("removed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.discards.WithLabelValues("orphaned")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordHTTPRequest(http.StatusCreated, 15*time.Millisecond)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `staynest_http_requests_total{status_code="201"} 1`))
	assert.True(t, strings.Contains(string(body), "staynest_http_request_duration_seconds"))
}

func TestNewCollectorPanicsOnDoubleRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewCollector(reg)
	assert.Panics(t, func() { NewCollector(reg) })
}
