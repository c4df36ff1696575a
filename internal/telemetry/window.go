package telemetry

// window is a fixed-capacity ring of the most recent records.
type window struct {
	buf   []SampleRecord
	start int
	size  int
}

func newWindow(capacity int) *window {
	return &window{buf: make([]SampleRecord, capacity)}
}

func (w *window) push(r SampleRecord) {
	if w.size < len(w.buf) {
		w.buf[(w.start+w.size)%len(w.buf)] = r
		w.size++
		return
	}
	w.buf[w.start] = r
	w.start = (w.start + 1) % len(w.buf)
}

func (w *window) len() int {
	return w.size
}

// snapshot copies the ring out oldest first.
func (w *window) snapshot() []SampleRecord {
	out := make([]SampleRecord, w.size)
	for i := range out {
		out[i] = w.buf[(w.start+i)%len(w.buf)]
	}
	return out
}
