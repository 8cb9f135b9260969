package workers

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

const reportedPrefix = "chat_relay_"

// ReporterWorker logs a snapshot of the relay metrics every interval, and a last
// one when stopped.
type ReporterWorker struct {
	log      *slog.Logger
	gatherer prometheus.Gatherer
	interval time.Duration
}

func NewReporterWorker(log *slog.Logger, gatherer prometheus.Gatherer, interval time.Duration) *ReporterWorker {
	return &ReporterWorker{log: log, gatherer: gatherer, interval: interval}
}

func (w *ReporterWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.report()
			return nil
		case <-ticker.C:
			w.report()
		}
	}
}

func (w *ReporterWorker) report() {
	families, err := w.gatherer.Gather()
	if err != nil {
		w.log.Warn("Unable to gather metrics", "error", err)
		return
	}
	var attrs []any
	for _, family := range families {
		name, found := strings.CutPrefix(family.GetName(), reportedPrefix)
		if !found {
			continue
		}
		attrs = append(attrs, name, total(family))
	}
	w.log.Info("Relay stats", attrs...)
}

// total sums every series of a counter or gauge family, labels ignored.
func total(family *dto.MetricFamily) float64 {
	var sum float64
	for _, metric := range family.GetMetric() {
		switch {
		case metric.GetCounter() != nil:
			sum += metric.GetCounter().GetValue()
		case metric.GetGauge() != nil:
			sum += metric.GetGauge().GetValue()
		}
	}
	return sum
}
