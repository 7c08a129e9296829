// Package metrics holds an in-memory ports.MetricsCollector.
package metrics

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
)

// Sample is one labelled series.
type Sample struct {
	Name   string
	Labels map[string]string
	// Value is the counter total or the last gauge value.
	Value float64
	// Count, Sum, Min and Max summarise histogram observations.
	Count int
	Sum   float64
	Min   float64
	Max   float64
}

// Key renders the series identity as name{k="v",...}.
func (s Sample) Key() string {
	return seriesKey(s.Name, s.Labels)
}

// Snapshot is a point-in-time copy of every series, sorted by key.
type Snapshot struct {
	Counters   []Sample
	Gauges     []Sample
	Histograms []Sample
}

// Counter returns the value of a counter series, or zero.
func (s Snapshot) Counter(name string, labels map[string]string) float64 {
	key := seriesKey(name, labels)
	for _, sample := range s.Counters {
		if sample.Key() == key {
			return sample.Value
		}
	}
	return 0
}

// CounterTotal sums a counter across all label sets.
func (s Snapshot) CounterTotal(name string) float64 {
	total := 0.0
	for _, sample := range s.Counters {
		if sample.Name == name {
			total += sample.Value
		}
	}
	return total
}

// Histogram returns the histogram series with the given name and labels.
func (s Snapshot) Histogram(name string, labels map[string]string) (Sample, bool) {
	key := seriesKey(name, labels)
	for _, sample := range s.Histograms {
		if sample.Key() == key {
			return sample, true
		}
	}
	return Sample{}, false
}

// WriteText prints the snapshot in a Prometheus-like exposition layout.
func (s Snapshot) WriteText(w io.Writer) error {
	for _, sample := range s.Counters {
		if _, err := fmt.Fprintf(w, "%s %g\n", sample.Key(), sample.Value); err != nil {
			return err
		}
	}
	for _, sample := range s.Gauges {
		if _, err := fmt.Fprintf(w, "%s %g\n", sample.Key(), sample.Value); err != nil {
			return err
		}
	}
	for _, sample := range s.Histograms {
		if _, err := fmt.Fprintf(w, "%s_count %d\n%s_sum %g\n",
			sample.Key(), sample.Count, sample.Key(), sample.Sum); err != nil {
			return err
		}
	}
	return nil
}

// Collector keeps every series in memory.
type Collector struct {
	mu         sync.Mutex
	counters   map[string]*Sample
	gauges     map[string]*Sample
	histograms map[string]*Sample
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{
		counters:   make(map[string]*Sample),
		gauges:     make(map[string]*Sample),
		histograms: make(map[string]*Sample),
	}
}

// IncCounter implements ports.MetricsCollector.
func (c *Collector) IncCounter(_ context.Context, name string, labels map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	series(c.counters, name, labels).Value++
}

// SetGauge implements ports.MetricsCollector.
func (c *Collector) SetGauge(_ context.Context, name string, value float64, labels map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	series(c.gauges, name, labels).Value = value
}

// ObserveHistogram implements ports.MetricsCollector.
func (c *Collector) ObserveHistogram(_ context.Context, name string, value float64, labels map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := series(c.histograms, name, labels)
	if s.Count == 0 || value < s.Min {
		s.Min = value
	}
	if s.Count == 0 || value > s.Max {
		s.Max = value
	}
	s.Count++
	s.Sum += value
}

// Snapshot copies the current series.
func (c *Collector) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		Counters:   collect(c.counters),
		Gauges:     collect(c.gauges),
		Histograms: collect(c.histograms),
	}
}

// Reset drops every series.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counters = make(map[string]*Sample)
	c.gauges = make(map[string]*Sample)
	c.histograms = make(map[string]*Sample)
}

func series(m map[string]*Sample, name string, labels map[string]string) *Sample {
	key := seriesKey(name, labels)
	s, ok := m[key]
	if !ok {
		s = &Sample{Name: name, Labels: copyLabels(labels)}
		m[key] = s
	}
	return s
}

func collect(m map[string]*Sample) []Sample {
	out := make([]Sample, 0, len(m))
	for _, s := range m {
		sample := *s
		sample.Labels = copyLabels(s.Labels)
		out = append(out, sample)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out
}

func copyLabels(labels map[string]string) map[string]string {
	if len(labels) == 0 {
		return nil
	}
	out := make(map[string]string, len(labels))
	for k, v := range labels {
		out[k] = v
	}
	return out
}

func seriesKey(name string, labels map[string]string) string {
	if len(labels) == 0 {
		return name
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(name)
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%s=%q", k, labels[k])
	}
	b.WriteByte('}')
	return b.String()
}
