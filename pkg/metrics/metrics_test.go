package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNew_IndependentRegistries(t *testing.T) {
	a := New("elokman")
	b := New("elokman")

	a.AIRequests.WithLabelValues("greeting").Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(a.AIRequests.WithLabelValues("greeting")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.AIRequests.WithLabelValues("greeting")))
}

func TestHandler_Exposition(t *testing.T) {
	m := New("elokman")
	m.OrphansRemoved.Add(2)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "elokman_reports_orphan_files_removed_total 2")
}
