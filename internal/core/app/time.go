package app

// Time is the shared clock resource, updated by the frame loop before the
// per-frame phases run. Delta is the clamped frame delta in seconds and
// keeps its frame-level value inside the Fixed* phases, where systems
// receive the fixed timestep through their dt argument instead. FrameCount
// is 1 during the first frame.
type Time struct {
	Delta      float64
	Elapsed    float64
	FrameCount uint64
}
