package observability

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitMetrics_Disabled(t *testing.T) {
	m, err := InitMetrics(MetricsConfig{Enabled: false})
	require.NoError(t, err)

	// No-op instruments must still be callable.
	m.QueriesTotal.Add(context.Background(), 1)
	m.QueryDuration.Record(context.Background(), 0.25)

	require.NotNil(t, m.Handler())
	assert.NoError(t, m.Shutdown(context.Background()))
}

func TestInitMetrics_EnabledServesExposition(t *testing.T) {
	m, err := InitMetrics(MetricsConfig{Enabled: true})
	require.NoError(t, err)
	defer m.Shutdown(context.Background())

	m.QueriesTotal.Add(context.Background(), 3)
	m.CacheHits.Add(context.Background(), 1)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	m.Handler().ServeHTTP(rec, req)

	assert.Equal(t, 200, rec.Code)
	assert.NotEmpty(t, rec.Body.String())
}
