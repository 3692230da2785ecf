package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestCronJobMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewCronJobMetrics(reg)
	job := "pool-cutoff-sweep"
	metrics.ObserveDuration(job, 250*time.Millisecond)
	metrics.IncSuccess(job)
	metrics.IncFailure(job)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := counterValue(mfs, "quayside_cron_job_success", job); err != nil {
		t.Fatalf("success counter: %v", err)
	} else if got != 1 {
		t.Fatalf("expected success=1, got %f", got)
	}

	if got, err := counterValue(mfs, "quayside_cron_job_failure", job); err != nil {
		t.Fatalf("failure counter: %v", err)
	} else if got != 1 {
		t.Fatalf("expected failure=1, got %f", got)
	}

	if got, err := histogramSum(mfs, "quayside_cron_job_duration_seconds", job); err != nil {
		t.Fatalf("duration histogram: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestCronJobMetricsNilRegistererIsNoOp(t *testing.T) {
	metrics := NewCronJobMetrics(nil)
	metrics.ObserveDuration("pool-cutoff-sweep", time.Second)
	metrics.IncSuccess("pool-cutoff-sweep")
	metrics.IncFailure("pool-cutoff-sweep")
}

func counterValue(mfs []*dto.MetricFamily, name, job string) (float64, error) {
	metric, err := jobMetric(mfs, name, job)
	if err != nil {
		return 0, err
	}
	return metric.GetCounter().GetValue(), nil
}

func histogramSum(mfs []*dto.MetricFamily, name, job string) (float64, error) {
	metric, err := jobMetric(mfs, name, job)
	if err != nil {
		return 0, err
	}
	return metric.GetHistogram().GetSampleSum(), nil
}

func jobMetric(mfs []*dto.MetricFamily, name, job string) (*dto.Metric, error) {
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "job" && label.GetValue() == job {
					return metric, nil
				}
			}
		}
		return nil, fmt.Errorf("metric %q has no sample for job %q", name, job)
	}
	return nil, fmt.Errorf("metric %q not found", name)
}
