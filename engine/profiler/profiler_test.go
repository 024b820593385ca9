package profiler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func TestProfilerReportsPerInterval(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	clock := &fakeClock{t: time.Unix(100, 0)}
	p := NewProfiler(zap.New(core), WithInterval(time.Second), WithClock(clock.now))

	clock.t = clock.t.Add(400 * time.Millisecond)
	assert.False(t, p.Tick(FrameStats{Items: 10, Casters: 1, CasterItems: 4}))
	clock.t = clock.t.Add(400 * time.Millisecond)
	assert.False(t, p.Tick(FrameStats{Items: 20, Casters: 1, CasterItems: 6, Errors: 1}))
	assert.Zero(t, logs.Len())

	clock.t = clock.t.Add(200 * time.Millisecond)
	require.True(t, p.Tick(FrameStats{Items: 30, Casters: 1, CasterItems: 8}))

	report := p.Last()
	assert.Equal(t, 3, report.Frames)
	assert.InDelta(t, 3.0, report.FPS, 1e-9)
	assert.InDelta(t, 20.0, report.AvgItems, 1e-9)
	assert.InDelta(t, 1.0, report.AvgCasters, 1e-9)
	assert.InDelta(t, 6.0, report.AvgShadows, 1e-9)
	assert.Equal(t, 1, report.Errors)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "profiler", entry.LoggerName)
	assert.Equal(t, "frame stats", entry.Message)
	assert.InDelta(t, 3.0, entry.ContextMap()["fps"], 1e-9)

	clock.t = clock.t.Add(100 * time.Millisecond)
	assert.False(t, p.Tick(FrameStats{}), "counters restart after a report")
}

func TestProfilerNilLogger(t *testing.T) {
	p := NewProfiler(nil, WithInterval(-1))
	assert.Equal(t, time.Second, p.updateInterval)
	assert.NotPanics(t, func() { p.Tick(FrameStats{}) })
}
