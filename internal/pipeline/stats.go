package pipeline

import "sync"

// TaskStats counts task outcomes since the runner was created.
type TaskStats struct {
	Started   int
	Renamed   int
	Unchanged int
	Skipped   int
	Failed    int
}

// InFlight is the number of tasks started but not yet finished.
func (s TaskStats) InFlight() int {
	return s.Started - s.Renamed - s.Unchanged - s.Skipped - s.Failed
}

type statsCounter struct {
	mu sync.Mutex
	s  TaskStats
}

func (c *statsCounter) start() {
	c.mu.Lock()
	c.s.Started++
	c.mu.Unlock()
}

func (c *statsCounter) finish(st Status) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch st {
	case StatusRenamed:
		c.s.Renamed++
	case StatusUnchanged:
		c.s.Unchanged++
	case StatusSkipped:
		c.s.Skipped++
	default:
		c.s.Failed++
	}
}

func (c *statsCounter) snapshot() TaskStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.s
}
