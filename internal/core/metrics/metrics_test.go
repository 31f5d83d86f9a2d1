package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"muscle-dreamer/internal/core/metrics"
)

type fakeClock struct{ fps float64 }

func (f fakeClock) FPS() float64 { return f.fps }

type fakeWorld struct {
	rss uint64
	err error
}

func (f fakeWorld) MemoryUsage() (uint64, error) { return f.rss, f.err }

func Test_Collect_ReportsFPSAndMemory(t *testing.T) {
	// Arrange
	c := metrics.NewCollector(fakeClock{fps: 59.9}, fakeWorld{rss: 1024})

	// Act & Assert
	assert.Equal(t, 2, testutil.CollectAndCount(c))
}

func Test_Collect_OmitsMemoryGaugeOnError(t *testing.T) {
	// Arrange
	c := metrics.NewCollector(fakeClock{fps: 60}, fakeWorld{err: assert.AnError})

	// Act & Assert
	assert.Equal(t, 1, testutil.CollectAndCount(c))
}

func Test_Collector_ImplementsPrometheusCollector(t *testing.T) {
	// Arrange
	var _ prometheus.Collector = metrics.NewCollector(fakeClock{}, fakeWorld{})
}
