package observability

import (
	"github.com/prometheus/client_golang/prometheus"

	"salesdocs/internal/infrastructure/storage/postgres"
)

// PoolStatsSource reports connection pool usage.
type PoolStatsSource interface {
	Stats() postgres.PoolStats
}

// RegisterPoolStats exports pool gauges read at scrape time.
func (m *Metrics) RegisterPoolStats(src PoolStatsSource) {
	gauge := func(name, help string, value func(postgres.PoolStats) float64) prometheus.Collector {
		return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "salesdocs_db_pool_" + name,
			Help: help,
		}, func() float64 { return value(src.Stats()) })
	}
	m.registry.MustRegister(
		gauge("total_conns", "Open connections.", func(s postgres.PoolStats) float64 { return float64(s.TotalConns) }),
		gauge("acquired_conns", "Connections in use.", func(s postgres.PoolStats) float64 { return float64(s.AcquiredConns) }),
		gauge("idle_conns", "Idle connections.", func(s postgres.PoolStats) float64 { return float64(s.IdleConns) }),
		gauge("max_conns", "Configured pool size.", func(s postgres.PoolStats) float64 { return float64(s.MaxConns) }),
	)
}
