package core

import (
	"fmt"

	"github.com/guregu/null/v6"
	"gonum.org/v1/gonum/stat"
)

// BasisPoints converts a fractional return into basis points
const BasisPoints = 10_000.0

// RollingWindow holds the trailing observations of a series in a fixed size ring buffer.
// Statistics are recomputed exactly from the buffer, so there is no drift from running sums.
type RollingWindow struct {
	buf     []float64
	next    int
	count   int
	ordered []float64
}

func NewRollingWindow(size int) (*RollingWindow, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidWindow, size)
	}
	return &RollingWindow{
		buf:     make([]float64, size),
		ordered: make([]float64, 0, size),
	}, nil
}

func (w *RollingWindow) Push(v float64) {
	w.buf[w.next] = v
	w.next = (w.next + 1) % len(w.buf)
	if w.count < len(w.buf) {
		w.count++
	}
}

func (w *RollingWindow) Full() bool {
	return w.count == len(w.buf)
}

// Values returns the buffered observations oldest first. The slice is reused between calls.
func (w *RollingWindow) Values() []float64 {
	w.ordered = w.ordered[:0]
	start := 0
	if w.Full() {
		start = w.next
	}
	for i := range w.count {
		w.ordered = append(w.ordered, w.buf[(start+i)%len(w.buf)])
	}
	return w.ordered
}

// MeanStdDev returns the mean and sample (N-1) standard deviation of a full window.
// Both are absent until the window fills, the deviation also needs at least two observations.
func (w *RollingWindow) MeanStdDev() (mean, std null.Float) {
	if !w.Full() {
		return
	}

	m, s := stat.MeanStdDev(w.Values(), nil)
	mean = null.FloatFrom(m)
	if w.count >= 2 {
		std = null.FloatFrom(s)
	}
	return
}

// RollingMeanStdDev evaluates a trailing window at every index of values
func RollingMeanStdDev(values []float64, window int) (means, stds []null.Float, err error) {
	w, err := NewRollingWindow(window)
	if err != nil {
		return nil, nil, err
	}

	means = make([]null.Float, len(values))
	stds = make([]null.Float, len(values))
	for i, v := range values {
		w.Push(v)
		means[i], stds[i] = w.MeanStdDev()
	}
	return means, stds, nil
}
