package pantompkins

// RRCapacity is the number of recent beat-to-beat intervals the detector
// averages over.
const RRCapacity = 8

// RRHistory is a fixed-capacity ring of the most recent RR intervals, in
// samples. Once full, each Push overwrites the oldest entry. Only slots that
// have been written count toward Mean, so an empty slot is never mistaken
// for a zero-length interval.
//
// RRHistory is a value type: copying it copies the ring.
type RRHistory struct {
	slots  [RRCapacity]int
	cursor int // next slot to write
	count  int // populated slots, at most RRCapacity
}

// Push records one interval.
func (h *RRHistory) Push(rr int) {
	h.slots[h.cursor] = rr
	h.cursor = (h.cursor + 1) % RRCapacity
	if h.count < RRCapacity {
		h.count++
	}
}

// Len is the number of populated slots.
func (h RRHistory) Len() int {
	return h.count
}

func (h RRHistory) Cap() int {
	return RRCapacity
}

// Mean averages the populated slots. It is 0 until the first Push.
func (h RRHistory) Mean() float64 {
	if h.count == 0 {
		return 0
	}

	sum := 0
	for _, v := range h.Values() {
		sum += v
	}
	return float64(sum) / float64(h.count)
}

// Values returns the populated intervals, oldest first.
func (h RRHistory) Values() []int {
	out := make([]int, 0, h.count)

	start := 0
	if h.count == RRCapacity {
		start = h.cursor
	}
	for i := 0; i < h.count; i++ {
		out = append(out, h.slots[(start+i)%RRCapacity])
	}

	return out
}
