package model

import "time"

// HistoryLimit is how many samples the trend window keeps.
const HistoryLimit = 50

// Sample is the click count observed at one tick.
type Sample struct {
	Time   time.Time `json:"time"`
	Clicks int64     `json:"clicks"`
}

// History is a sliding window of the most recent samples, oldest first.
type History struct {
	samples []Sample
}

func NewHistory() *History {
	return &History{samples: make([]Sample, 0, HistoryLimit)}
}

// Append adds s, evicting the oldest sample once the window is full.
func (h *History) Append(s Sample) {
	if len(h.samples) >= HistoryLimit {
		copy(h.samples, h.samples[1:])
		h.samples = h.samples[:HistoryLimit-1]
	}
	h.samples = append(h.samples, s)
}

func (h *History) Len() int { return len(h.samples) }

// Samples returns a copy of the window in insertion order.
func (h *History) Samples() []Sample {
	out := make([]Sample, len(h.samples))
	copy(out, h.samples)
	return out
}

// Max returns the highest click count in the window, or 0 when empty.
func (h *History) Max() int64 {
	var m int64
	for _, s := range h.samples {
		if s.Clicks > m {
			m = s.Clicks
		}
	}
	return m
}

func (h *History) Reset() {
	h.samples = h.samples[:0]
}

func (h *History) Clone() *History {
	c := &History{samples: make([]Sample, len(h.samples), HistoryLimit)}
	copy(c.samples, h.samples)
	return c
}
