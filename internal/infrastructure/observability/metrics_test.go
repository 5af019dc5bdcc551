package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesdocs/internal/core/numerator"
	"salesdocs/internal/domain/documents"
	"salesdocs/internal/infrastructure/storage/postgres"
)

func TestMetrics_DomainCounters(t *testing.T) {
	m := NewMetrics()

	m.DocumentComposed(documents.StatusQuote, documents.OutcomeCreated)
	m.DocumentComposed(documents.StatusQuote, documents.OutcomeCreated)
	m.DocumentComposed(documents.StatusInvoice, documents.OutcomeSequenceBurned)
	m.SequenceBurned(numerator.KindInvoice)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.composed.WithLabelValues("quote", string(documents.OutcomeCreated))))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.composed.WithLabelValues("invoice", string(documents.OutcomeSequenceBurned))))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.burned.WithLabelValues(string(numerator.KindInvoice))))
}

func TestMetrics_MiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics()

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/api/v1/documents/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/metrics", gin.WrapH(m.Handler()))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/documents/abc", nil))
	require.Equal(t, http.StatusNotFound, w.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("/api/v1/documents/:id", "404")))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "salesdocs_http_requests_total"))
}

type staticPool postgres.PoolStats

func (s staticPool) Stats() postgres.PoolStats { return postgres.PoolStats(s) }

func TestMetrics_PoolStats(t *testing.T) {
	m := NewMetrics()
	m.RegisterPoolStats(staticPool{TotalConns: 4, AcquiredConns: 1, IdleConns: 3, MaxConns: 20})

	families, err := m.Gatherer().Gather()
	require.NoError(t, err)

	found := map[string]float64{}
	for _, f := range families {
		if strings.HasPrefix(f.GetName(), "salesdocs_db_pool_") {
			found[f.GetName()] = f.GetMetric()[0].GetGauge().GetValue()
		}
	}
	assert.Equal(t, 20.0, found["salesdocs_db_pool_max_conns"])
	assert.Equal(t, 3.0, found["salesdocs_db_pool_idle_conns"])
}
