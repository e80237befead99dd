package game

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func newTestScheduler() (*Scheduler, *ManualClock) {
	clock := NewManualClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	return NewScheduler(clock, nil), clock
}

func TestScheduler_RunsWhenDue(t *testing.T) {
	s, clock := newTestScheduler()
	var ran []string

	s.Schedule("b", 800*time.Millisecond, Tag{}, func() { ran = append(ran, "b") })
	s.Schedule("a", 400*time.Millisecond, Tag{}, func() { ran = append(ran, "a") })

	assert.Equal(t, 0, s.Update())

	clock.Advance(400 * time.Millisecond)
	assert.Equal(t, 1, s.Update())
	assert.Equal(t, []string{"a"}, ran)

	clock.Advance(400 * time.Millisecond)
	assert.Equal(t, 1, s.Update())
	assert.Equal(t, []string{"a", "b"}, ran)
	assert.Equal(t, 0, s.Pending())
}

func TestScheduler_OrderByDueThenInsertion(t *testing.T) {
	s, clock := newTestScheduler()
	var ran []int

	s.Schedule("3", 300*time.Millisecond, Tag{}, func() { ran = append(ran, 3) })
	s.Schedule("1", 100*time.Millisecond, Tag{}, func() { ran = append(ran, 1) })
	s.Schedule("2a", 200*time.Millisecond, Tag{}, func() { ran = append(ran, 20) })
	s.Schedule("2b", 200*time.Millisecond, Tag{}, func() { ran = append(ran, 21) })

	clock.Advance(time.Second)
	s.Update()
	assert.Equal(t, []int{1, 20, 21, 3}, ran)
}

// TestScheduler_GuardDropsStaleTasks 运行上下文变化后旧任务被丢弃
func TestScheduler_GuardDropsStaleTasks(t *testing.T) {
	s, clock := newTestScheduler()

	live := Tag{RunID: uuid.New(), Generation: 1, Step: 3}
	s.SetGuard(func(tag Tag) bool {
		return tag.RunID == live.RunID && tag.Generation == live.Generation &&
			(tag.Step == 0 || tag.Step == live.Step)
	})

	fired := map[string]bool{}
	s.Schedule("same step", time.Second, live, func() { fired["same step"] = true })
	s.Schedule("run level", time.Second, Tag{RunID: live.RunID, Generation: 1}, func() { fired["run level"] = true })
	s.Schedule("old step", time.Second, Tag{RunID: live.RunID, Generation: 1, Step: 2}, func() { fired["old step"] = true })
	s.Schedule("old run", time.Second, Tag{RunID: uuid.New(), Generation: 0, Step: 3}, func() { fired["old run"] = true })

	clock.Advance(time.Second)
	assert.Equal(t, 2, s.Update())
	assert.Equal(t, map[string]bool{"same step": true, "run level": true}, fired)
}

// TestScheduler_GuardCheckedPerTask 同一批到期任务中，前一个任务改变上下文后后续任务失效
func TestScheduler_GuardCheckedPerTask(t *testing.T) {
	s, clock := newTestScheduler()

	step := 1
	s.SetGuard(func(tag Tag) bool { return tag.Step == step })

	count := 0
	s.Schedule("advance", time.Second, Tag{Step: 1}, func() { step++; count++ })
	s.Schedule("advance again", time.Second, Tag{Step: 1}, func() { step++; count++ })

	clock.Advance(time.Second)
	s.Update()
	assert.Equal(t, 1, count)
	assert.Equal(t, 2, step)
}

func TestScheduler_TasksAddedDuringUpdateWait(t *testing.T) {
	s, _ := newTestScheduler()

	chained := false
	s.Schedule("first", 0, Tag{}, func() {
		s.Schedule("second", 0, Tag{}, func() { chained = true })
	})

	assert.Equal(t, 1, s.Update())
	assert.False(t, chained, "task scheduled during Update runs on the next Update")
	assert.Equal(t, 1, s.Update())
	assert.True(t, chained)
}

func TestScheduler_CancelAll(t *testing.T) {
	s, clock := newTestScheduler()
	ran := false
	s.Schedule("x", time.Millisecond, Tag{}, func() { ran = true })

	s.CancelAll()
	clock.Advance(time.Second)
	s.Update()
	assert.False(t, ran)
	assert.Equal(t, 0, s.Pending())
}
