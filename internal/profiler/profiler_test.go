package profiler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNilProfilerIsNoop(t *testing.T) {
	var p *Profiler
	p.Hit("a")
	p.Miss("a")
	p.Add("a", time.Millisecond)

	assert.False(t, p.Stats().Enabled)
	assert.Equal(t, "profiling is disabled", p.Report(5))
}

func TestHitMissAndTiming(t *testing.T) {
	p := New()
	p.Miss("base")
	p.Add("base", 10*time.Millisecond)
	p.Miss("total")
	p.Add("total", 5*time.Millisecond)
	p.Hit("base")

	stats := p.Stats()
	assert.True(t, stats.Enabled)
	assert.Equal(t, 2, stats.TotalCalls)
	assert.Equal(t, 15*time.Millisecond, stats.TotalTime)
	assert.Equal(t, "base", stats.SlowestNode)

	var baseReport NodeReport
	for _, n := range stats.Nodes {
		if n.Name == "base" {
			baseReport = n
		}
	}
	assert.Equal(t, 1, baseReport.CacheHits)
	assert.Equal(t, 1, baseReport.CacheMisses)
	assert.InDelta(t, 50.0, baseReport.CacheHitRate, 0.001)
}

func TestReportMentionsSlowestNode(t *testing.T) {
	p := New()
	p.Miss("slow")
	p.Add("slow", 20*time.Millisecond)
	p.Miss("fast")
	p.Add("fast", time.Millisecond)

	report := p.Report(10)
	assert.Contains(t, report, "slow")
	assert.Contains(t, report, "Total calls: 2")
}
