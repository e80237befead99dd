// Package metrics 把训练过程导出为 Prometheus 指标
//
// Collector 通过 trainer.Hooks 观察训练器，不持有训练器的任何状态。
package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/michjt19/Individual-Critical-Task-Virtual-Simulation/pkg/game"
	"github.com/michjt19/Individual-Critical-Task-Virtual-Simulation/pkg/trainer"
)

const namespace = "iotrainer"

// Collector 训练指标
type Collector struct {
	clock game.Clock

	gestures      *prometheus.CounterVec
	learnerErrors *prometheus.CounterVec
	stepDuration  *prometheus.HistogramVec
	runsStarted   prometheus.Counter
	runsCompleted prometheus.Counter
	runErrors     prometheus.Histogram

	currentStep int
	stepStart   time.Time
}

// NewCollector 创建指标收集器
func NewCollector(clock game.Clock) *Collector {
	if clock == nil {
		clock = game.SystemClock{}
	}
	return &Collector{
		clock: clock,
		gestures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "gestures_total",
				Help:      "Gestures judged by the trainer, by step and reason.",
			},
			[]string{"step", "reason"},
		),
		learnerErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "learner_errors_total",
				Help:      "Rejected gestures counted against the learner, by step.",
			},
			[]string{"step"},
		),
		stepDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "step_duration_seconds",
				Help:      "Time spent on each step before it completed.",
				Buckets:   []float64{1, 2, 5, 10, 20, 30, 60, 120, 300},
			},
			[]string{"step"},
		),
		runsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_started_total",
			Help:      "Training runs started.",
		}),
		runsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_completed_total",
			Help:      "Training runs completed.",
		}),
		runErrors: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_errors",
			Help:      "Learner errors per completed run.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13},
		}),
	}
}

// Register 把全部指标注册到 reg
func (c *Collector) Register(reg prometheus.Registerer) error {
	for _, m := range []prometheus.Collector{
		c.gestures, c.learnerErrors, c.stepDuration, c.runsStarted, c.runsCompleted, c.runErrors,
	} {
		if err := reg.Register(m); err != nil {
			return err
		}
	}
	return nil
}

// Hooks 返回喂给训练器的回调
func (c *Collector) Hooks() trainer.Hooks {
	return trainer.Hooks{
		OnOutcome:     c.observeOutcome,
		OnStepEnter:   c.observeStepEnter,
		OnRunComplete: c.observeRunComplete,
	}
}

func (c *Collector) observeOutcome(out game.Outcome) {
	step := strconv.Itoa(out.Step)
	c.gestures.WithLabelValues(step, string(out.Reason)).Inc()
	if out.Rejected() {
		c.learnerErrors.WithLabelValues(step).Inc()
	}
}

func (c *Collector) observeStepEnter(step game.Step) {
	now := c.clock.Now()
	if step.Ordinal == 1 {
		// 新的运行：上一次运行未完成的步骤不计时
		c.runsStarted.Inc()
	} else if c.currentStep != 0 {
		c.stepDuration.WithLabelValues(strconv.Itoa(c.currentStep)).Observe(now.Sub(c.stepStart).Seconds())
	}
	c.currentStep = step.Ordinal
	c.stepStart = now
}

func (c *Collector) observeRunComplete(snap game.ProcedureSnapshot) {
	if c.currentStep != 0 {
		c.stepDuration.WithLabelValues(strconv.Itoa(c.currentStep)).Observe(c.clock.Now().Sub(c.stepStart).Seconds())
	}
	c.currentStep = 0
	c.runsCompleted.Inc()
	c.runErrors.Observe(float64(snap.Errors))
}

// Handler 返回导出 g 中指标的 HTTP 处理器
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// Serve 在 addr 上提供 /metrics，直到 ctx 结束
func Serve(ctx context.Context, addr string, g prometheus.Gatherer, logger *log.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(g))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if logger != nil {
		logger.Info("metrics server listening", "addr", addr)
	}
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
