package strategy

import "math"

// window keeps the last size closes of one symbol, oldest first.
type window struct {
	size int
	vals []float64
}

func newWindow(size int) *window {
	return &window{size: size, vals: make([]float64, 0, size)}
}

func (w *window) push(x float64) {
	if len(w.vals) == w.size {
		copy(w.vals, w.vals[1:])
		w.vals = w.vals[:w.size-1]
	}
	w.vals = append(w.vals, x)
}

func (w *window) full() bool { return len(w.vals) == w.size }

func (w *window) first() float64 { return w.vals[0] }

func (w *window) last() float64 { return w.vals[len(w.vals)-1] }

func (w *window) mean() float64 {
	if len(w.vals) == 0 {
		return 0
	}
	s := 0.0
	for _, v := range w.vals {
		s += v
	}
	return s / float64(len(w.vals))
}

// stdev is the population standard deviation of the window.
func (w *window) stdev() float64 {
	if len(w.vals) < 2 {
		return 0
	}
	m := w.mean()
	ss := 0.0
	for _, v := range w.vals {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(w.vals)))
}

// windows lazily creates one window per symbol.
type windows struct {
	size int
	by   map[string]*window
}

func newWindows(size int) windows {
	return windows{size: size, by: make(map[string]*window)}
}

func (ws windows) push(symbol string, x float64) *window {
	w, ok := ws.by[symbol]
	if !ok {
		w = newWindow(ws.size)
		ws.by[symbol] = w
	}
	w.push(x)
	return w
}
