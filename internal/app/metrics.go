package app

import (
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"

	"github.com/blackwell-systems/formwatch/internal/metrics"
)

// newMetrics creates a metrics manager on a private registry.
func newMetrics() (*metrics.Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return metrics.NewManager("formwatch", "", reg), reg
}

// exportMetrics writes reg to the configured metrics file, if any. Export
// failures are logged and never fail the command.
func exportMetrics(reg *prometheus.Registry) {
	if cfg == nil || cfg.Metrics.File == "" {
		return
	}
	if err := metrics.WriteTextfile(cfg.Metrics.File, reg); err != nil {
		log.WithError(err).WithField("file", cfg.Metrics.File).Warn("writing metrics failed")
		return
	}
	log.WithField("file", cfg.Metrics.File).Debug("metrics written")
}
