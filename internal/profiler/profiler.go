// Package profiler collects per-node timing and cache hit/miss counters
// during a graph evaluation, and renders aggregate and human-readable
// reports. A nil *Profiler is a valid, fully inert receiver: every method
// degrades to a no-op, so a caller that does not want profiling simply
// passes nil and pays no bookkeeping cost beyond that one nil check.
package profiler

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

type nodeStats struct {
	totalTime time.Duration
	calls     int
	hits      int
	misses    int
}

// Profiler accumulates per-node statistics across a single evaluation. It
// is not safe for concurrent use by multiple evaluations; callers running
// a batch in parallel must allocate one Profiler per context.
type Profiler struct {
	enabled bool
	stats   map[string]*nodeStats
	order   []string
}

// New returns an enabled Profiler with no recorded nodes yet.
func New() *Profiler {
	return &Profiler{enabled: true, stats: make(map[string]*nodeStats)}
}

func (p *Profiler) entry(node string) *nodeStats {
	s, ok := p.stats[node]
	if !ok {
		s = &nodeStats{}
		p.stats[node] = s
		p.order = append(p.order, node)
	}
	return s
}

// Hit records a cache hit for node. No-op on a nil or disabled Profiler.
func (p *Profiler) Hit(node string) {
	if p == nil || !p.enabled {
		return
	}
	p.entry(node).hits++
}

// Miss records a cache miss for node. No-op on a nil or disabled Profiler.
func (p *Profiler) Miss(node string) {
	if p == nil || !p.enabled {
		return
	}
	p.entry(node).misses++
}

// Add records one completed call to node, with elapsed being the time
// spent in that node's own kind-compute, exclusive of any descendant's
// time. No-op on a nil or disabled Profiler.
func (p *Profiler) Add(node string, elapsed time.Duration) {
	if p == nil || !p.enabled {
		return
	}
	s := p.entry(node)
	s.totalTime += elapsed
	s.calls++
}

// NodeReport is one row of a Stats snapshot.
type NodeReport struct {
	Name         string
	TotalTime    time.Duration
	Calls        int
	AvgTime      time.Duration
	CacheHits    int
	CacheMisses  int
	CacheHitRate float64
}

// Stats is the aggregate view over everything a Profiler has recorded.
type Stats struct {
	Enabled        bool
	TotalTime      time.Duration
	TotalCalls     int
	CacheHitRate   float64
	SlowestNode    string
	MostCalledNode string
	Nodes          []NodeReport
}

// Stats snapshots the profiler's current counters, sorted by total time
// descending. Returns a zero Stats with Enabled=false for a nil or
// disabled Profiler.
func (p *Profiler) Stats() Stats {
	if p == nil || !p.enabled {
		return Stats{}
	}

	nodes := make([]NodeReport, 0, len(p.order))
	var totalTime time.Duration
	var totalCalls, totalHits, totalMisses int

	for _, name := range p.order {
		s := p.stats[name]
		var avg time.Duration
		if s.calls > 0 {
			avg = s.totalTime / time.Duration(s.calls)
		}
		accesses := s.hits + s.misses
		var hitRate float64
		if accesses > 0 {
			hitRate = float64(s.hits) / float64(accesses) * 100
		}
		nodes = append(nodes, NodeReport{
			Name:         name,
			TotalTime:    s.totalTime,
			Calls:        s.calls,
			AvgTime:      avg,
			CacheHits:    s.hits,
			CacheMisses:  s.misses,
			CacheHitRate: hitRate,
		})
		totalTime += s.totalTime
		totalCalls += s.calls
		totalHits += s.hits
		totalMisses += s.misses
	}

	sort.SliceStable(nodes, func(i, j int) bool {
		return nodes[i].TotalTime > nodes[j].TotalTime
	})

	var overallHitRate float64
	if totalHits+totalMisses > 0 {
		overallHitRate = float64(totalHits) / float64(totalHits+totalMisses) * 100
	}

	var slowest, mostCalled string
	if len(nodes) > 0 {
		slowest = nodes[0].Name
		mc := nodes[0]
		for _, n := range nodes {
			if n.Calls > mc.Calls {
				mc = n
			}
		}
		mostCalled = mc.Name
	}

	return Stats{
		Enabled:        true,
		TotalTime:      totalTime,
		TotalCalls:     totalCalls,
		CacheHitRate:   overallHitRate,
		SlowestNode:    slowest,
		MostCalledNode: mostCalled,
		Nodes:          nodes,
	}
}

// Report renders a human-readable summary of the slowest topN nodes. On a
// nil or disabled Profiler it reports that profiling was off.
func (p *Profiler) Report(topN int) string {
	stats := p.Stats()
	if !stats.Enabled {
		return "profiling is disabled"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Performance Report:\n")
	fmt.Fprintf(&b, "%s\n", strings.Repeat("=", 80))
	fmt.Fprintf(&b, "Total time: %s\n", stats.TotalTime)
	fmt.Fprintf(&b, "Total calls: %d\n", stats.TotalCalls)
	fmt.Fprintf(&b, "Cache hit rate: %.1f%%\n", stats.CacheHitRate)
	fmt.Fprintf(&b, "\nTop %d slowest nodes:\n", topN)
	fmt.Fprintf(&b, "%s\n", strings.Repeat("-", 80))

	n := topN
	if n > len(stats.Nodes) {
		n = len(stats.Nodes)
	}
	for i := 0; i < n; i++ {
		node := stats.Nodes[i]
		fmt.Fprintf(&b, "%2d. %-30s: %10s (%5d calls, %10s avg, cache hit: %5.1f%%)\n",
			i+1, node.Name, node.TotalTime, node.Calls, node.AvgTime, node.CacheHitRate)
	}
	fmt.Fprintf(&b, "%s\n", strings.Repeat("=", 80))
	return b.String()
}
