package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerExposesCounters(t *testing.T) {
	before := testutil.ToFloat64(KnowledgeLookups.WithLabelValues(LookupMatch))
	KnowledgeLookups.WithLabelValues(LookupMatch).Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(KnowledgeLookups.WithLabelValues(LookupMatch)))

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `arlo_knowledge_lookups_total{outcome="match"}`)
}
