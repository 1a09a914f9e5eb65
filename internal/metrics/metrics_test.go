package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/joseph-ayodele/business-dashboard/constants"
)

func TestObserveDocument(t *testing.T) {
	m := New()

	m.ObserveDocument(constants.DocumentStatusProcessed, map[string]int{
		constants.TableStockReports: 3,
		constants.TableInvoices:     0,
	}, false)
	m.ObserveDocument(constants.DocumentStatusNoRows, nil, true)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.DocumentsProcessed.WithLabelValues("PROCESSED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DocumentsProcessed.WithLabelValues("NO_ROWS")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.RowsExtracted.WithLabelValues(constants.TableStockReports)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MissingHeaders))
	assert.Equal(t, 1, testutil.CollectAndCount(m.RowsExtracted))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveDocument(constants.DocumentStatusFailed, nil, true)
		m.ObserveExtractSeconds(1)
		m.RejectUpload("rate_limited")
	})
}
