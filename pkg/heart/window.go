// Package heart ingests heart-rate samples, maintains a rolling average
// and raises stress alerts on the bus when the average sustains above a
// threshold.
package heart

// window is a fixed-capacity FIFO of recent bpm samples.
// Pushing past capacity evicts the oldest sample.
type window struct {
	samples []int
	cap     int
}

func newWindow(capacity int) *window {
	return &window{cap: capacity}
}

func (w *window) push(bpm int) {
	w.samples = append(w.samples, bpm)
	if len(w.samples) > w.cap {
		w.samples = w.samples[1:]
	}
}

func (w *window) len() int {
	return len(w.samples)
}

// mean returns the arithmetic mean of the current contents.
// Callers must not invoke it on an empty window.
func (w *window) mean() float64 {
	sum := 0
	for _, s := range w.samples {
		sum += s
	}
	return float64(sum) / float64(len(w.samples))
}

func (w *window) snapshot() []int {
	return append([]int(nil), w.samples...)
}
