// Package metrics exposes a pull-based prometheus.Collector over a
// world.World's per-frame performance counters and process memory usage.
// Grounded on the teacher's retrieval-pack siblings that wire
// client_golang directly (bayleafwalker-bindery-core,
// r3e-network-service_layer): a Collector that snapshots gauges on
// Collect() rather than pushing metrics from inside the frame loop,
// keeping the single-threaded cooperative model of the core untouched.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ClockSource is the subset of clock.GameClock metrics reads from.
type ClockSource interface {
	FPS() float64
}

// WorldSource is the subset of world.World metrics reads from.
type WorldSource interface {
	MemoryUsage() (uint64, error)
}

// Collector implements prometheus.Collector over one World's FPS and
// memory usage.
type Collector struct {
	clockSrc ClockSource
	worldSrc WorldSource

	fps       *prometheus.Desc
	memoryRSS *prometheus.Desc
}

// NewCollector builds a Collector bound to clockSrc and worldSrc.
func NewCollector(clockSrc ClockSource, worldSrc WorldSource) *Collector {
	return &Collector{
		clockSrc: clockSrc,
		worldSrc: worldSrc,
		fps: prometheus.NewDesc(
			"purring_game_fps",
			"Current measured frames per second.",
			nil, nil,
		),
		memoryRSS: prometheus.NewDesc(
			"purring_process_memory_rss_bytes",
			"Resident set size of the game process, in bytes.",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.fps
	ch <- c.memoryRSS
}

// Collect implements prometheus.Collector. It queries the live world
// synchronously; a MemoryUsage failure is reported by simply omitting
// the gauge rather than panicking a scrape.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.fps, prometheus.GaugeValue, c.clockSrc.FPS())

	if rss, err := c.worldSrc.MemoryUsage(); err == nil {
		ch <- prometheus.MustNewConstMetric(c.memoryRSS, prometheus.GaugeValue, float64(rss))
	}
}
