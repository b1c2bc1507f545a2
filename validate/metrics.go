package validate

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// runsTotal counts validation runs by verdict.
	//
	// Labels:
	//   - valid: "true" if the report had no error-severity violation, "false" otherwise.
	//
	// Usage example in dashboards:
	//   - sum(rate(tablecheck_runs_total{valid="false"}[5m])) / sum(rate(tablecheck_runs_total[5m])) - Failure rate
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{ //nolint:gochecknoglobals
		Name: "tablecheck_runs_total",
		Help: "The total number of validation runs",
	}, []string{"valid"})

	// violationsTotal counts violations by the rule that raised them, which
	// shows which rules fire most often across pipelines.
	violationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{ //nolint:gochecknoglobals
		Name: "tablecheck_violations_total",
		Help: "The total number of violations found, by check type",
	}, []string{"check_type"})

	// runDuration tracks how long a run takes, in milliseconds. Runs over
	// large tables with custom functions sit in the upper buckets.
	runDuration = promauto.NewHistogram(prometheus.HistogramOpts{ //nolint:gochecknoglobals
		Name: "tablecheck_run_duration_millis",
		Help: "The time it takes to validate a table, in milliseconds",
		Buckets: []float64{
			1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000,
		},
	})

	// rowsValidated counts rows passed through the engine.
	rowsValidated = promauto.NewCounter(prometheus.CounterOpts{ //nolint:gochecknoglobals
		Name: "tablecheck_rows_validated_total",
		Help: "The total number of rows validated",
	})
)

// init creates both verdict series up front so rate queries and alerts see
// zero instead of no data.
func init() {
	runsTotal.WithLabelValues("true").Add(0)
	runsTotal.WithLabelValues("false").Add(0)
}

func recordRun(report *Report, millis float64) {
	if report.Valid {
		runsTotal.WithLabelValues("true").Inc()
	} else {
		runsTotal.WithLabelValues("false").Inc()
	}

	for typ, n := range report.Counts() {
		violationsTotal.WithLabelValues(string(typ)).Add(float64(n))
	}

	runDuration.Observe(millis)
	rowsValidated.Add(float64(report.Rows))
}
