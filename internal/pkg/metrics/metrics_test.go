package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordOrderPriced(t *testing.T) {
	before := testutil.ToFloat64(ordersPriced.WithLabelValues("create"))
	RecordOrderPriced("create", 9.164)
	assert.Equal(t, before+1, testutil.ToFloat64(ordersPriced.WithLabelValues("create")))
}

func TestRecordHTTPRequest(t *testing.T) {
	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/api/v1/orders/:id", "404"))
	RecordHTTPRequest("get", "/api/v1/orders/:id", 404, 3*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/api/v1/orders/:id", "404")))
}

func TestRequestStarted(t *testing.T) {
	done := RequestStarted()
	assert.Equal(t, 1.0, testutil.ToFloat64(httpInFlight))
	done()
	assert.Equal(t, 0.0, testutil.ToFloat64(httpInFlight))
}

func TestHandlerExposesRegistry(t *testing.T) {
	RecordLogin(true)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "orderdesk_auth_login_attempts_total")
}
