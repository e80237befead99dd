package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/michjt19/Individual-Critical-Task-Virtual-Simulation/pkg/config"
	"github.com/michjt19/Individual-Critical-Task-Virtual-Simulation/pkg/game"
	"github.com/michjt19/Individual-Critical-Task-Virtual-Simulation/pkg/scene"
	"github.com/michjt19/Individual-Critical-Task-Virtual-Simulation/pkg/trainer"
)

func newTrainerWithMetrics(t *testing.T) (*trainer.Trainer, *Collector, *game.ManualClock) {
	t.Helper()
	cfg, err := config.LoadProcedureConfig("../../data/procedures/ezio_humeral.yaml")
	require.NoError(t, err)

	clock := game.NewManualClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	c := NewCollector(clock)
	tr, err := trainer.New(cfg, trainer.Options{Clock: clock, Hooks: c.Hooks()})
	require.NoError(t, err)
	return tr, c, clock
}

func TestCollector_Gestures(t *testing.T) {
	tr, c, _ := newTrainerWithMetrics(t)

	tr.OnGestureReleased(scene.Item{Type: "io_driver"})
	tr.OnGestureReleased(scene.Item{Type: "gloves", X: 10, Y: 10, Width: 80, Height: 50})
	tr.OnGestureReleased(scene.Item{Type: "gloves", X: 400, Y: 420, Width: 80, Height: 50})

	assert.Equal(t, 1.0, testutil.ToFloat64(c.gestures.WithLabelValues("1", "wrong_tool")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.gestures.WithLabelValues("1", "out_of_range")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.gestures.WithLabelValues("1", "accepted")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.learnerErrors.WithLabelValues("1")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.runsStarted))
}

func TestCollector_StepDurationAndCompletion(t *testing.T) {
	tr, c, clock := newTrainerWithMetrics(t)

	for i := 0; i < 10; i++ {
		clock.Advance(3 * time.Second)
		tr.Advance()
	}
	require.True(t, tr.Complete())

	assert.Equal(t, 1.0, testutil.ToFloat64(c.runsCompleted))
	assert.Equal(t, 10, testutil.CollectAndCount(c.stepDuration))

	tr.ResetRun()
	assert.Equal(t, 2.0, testutil.ToFloat64(c.runsStarted))
}

func TestHandler(t *testing.T) {
	tr, c, _ := newTrainerWithMetrics(t)
	reg := prometheus.NewRegistry()
	require.NoError(t, c.Register(reg))

	tr.OnGestureReleased(scene.Item{Type: "io_driver"})

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body := rec.Body.String()
	assert.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(body, `iotrainer_gestures_total{reason="wrong_tool",step="1"} 1`), body)
	assert.Contains(t, body, "iotrainer_runs_started_total 1")

	// 重复注册报错
	assert.Error(t, c.Register(reg))
}
