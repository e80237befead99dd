package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/michjt19/Individual-Critical-Task-Virtual-Simulation/pkg/config"
	"github.com/michjt19/Individual-Critical-Task-Virtual-Simulation/pkg/game"
	"github.com/michjt19/Individual-Critical-Task-Virtual-Simulation/pkg/scenes"
)

func newTestApp(t *testing.T, settings *config.Settings) *App {
	t.Helper()
	cfg, err := config.LoadProcedureConfig("../../data/procedures/ezio_humeral.yaml")
	require.NoError(t, err)
	a, err := NewApp(Config{
		Settings:  settings,
		Procedure: cfg,
		Clock:     game.NewManualClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)),
	})
	require.NoError(t, err)
	return a
}

func TestNewApp(t *testing.T) {
	a := newTestApp(t, nil)

	w, h := a.Layout(1920, 1080)
	assert.Equal(t, 1000, w)
	assert.Equal(t, 672, h)

	_, ok := a.GetSceneManager().GetCurrentScene().(*scenes.TrainingScene)
	assert.True(t, ok, "starts in the training scene")
	assert.Equal(t, 1, a.Trainer().CurrentStep().Ordinal)
}

func TestWindowSize(t *testing.T) {
	settings := config.DefaultSettings()
	settings.Window.Scale = 1.5
	a := newTestApp(t, settings)

	w, h := a.WindowSize()
	assert.Equal(t, 1500, w)
	assert.Equal(t, 1008, h)
}

// TestDebriefAndRestart 完成后进入总结界面，重新开始后回到第一步
func TestDebriefAndRestart(t *testing.T) {
	a := newTestApp(t, nil)
	tr := a.Trainer()
	for i := 0; i < tr.Registry().Len(); i++ {
		tr.Advance()
	}
	require.True(t, tr.Complete())

	a.showDebrief(tr.Snapshot())
	_, ok := a.GetSceneManager().GetCurrentScene().(*scenes.DebriefScene)
	require.True(t, ok)

	a.restart()
	_, ok = a.GetSceneManager().GetCurrentScene().(*scenes.TrainingScene)
	assert.True(t, ok)
	assert.False(t, tr.Complete())
	assert.Equal(t, 1, tr.CurrentStep().Ordinal)
	assert.Equal(t, 3, a.GetSceneManager().Switches())
}
