package metrics_test

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/goliatone/go-polycontent/internal/metrics"
)

func TestMetricsRecordOperations(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg, "")

	m.ObserveOperation("content.create", time.Now(), nil)
	m.ObserveOperation("content.create", time.Now(), errors.New("boom"))
	m.VersionAppended("content")
	m.Resolved(true, "variant", "translation")
	m.Resolved(false)
	m.ObserveEvent("content.created", metrics.OutcomeDropped)
	m.ValidationFailed("article")

	if got := testutil.ToFloat64(m.OperationsTotal.WithLabelValues("content.create", metrics.OutcomeError)); got != 1 {
		t.Fatalf("expected one failed create, got %v", got)
	}
	if got := testutil.ToFloat64(m.VersionsAppended.WithLabelValues("content")); got != 1 {
		t.Fatalf("expected one version, got %v", got)
	}
	if got := testutil.ToFloat64(m.OverlaysApplied.WithLabelValues("translation")); got != 1 {
		t.Fatalf("expected translation overlay count, got %v", got)
	}
	if got := testutil.ToFloat64(m.ResolutionsTotal.WithLabelValues(metrics.OutcomeMiss)); got != 1 {
		t.Fatalf("expected one miss, got %v", got)
	}
	if got := testutil.ToFloat64(m.EventsTotal.WithLabelValues("content.created", metrics.OutcomeDropped)); got != 1 {
		t.Fatalf("expected one dropped event, got %v", got)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(families) == 0 || families[0].GetName()[:len(metrics.DefaultNamespace)] != metrics.DefaultNamespace {
		t.Fatalf("expected namespaced metrics, got %d families", len(families))
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *metrics.Metrics
	m.ObserveOperation("x", time.Now(), nil)
	m.VersionAppended("content")
	m.Resolved(true, "variant")
	m.ObserveEvent("e", metrics.OutcomeSuccess)
	m.ValidationFailed("article")
}
