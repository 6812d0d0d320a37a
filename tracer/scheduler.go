package tracer

import "math"

// The BlockScheduler interface is implemented by all block scheduling
// algorithms.
type BlockScheduler interface {
	// Split frame into blocks of variable height and assign to the pool
	// of tracers using feedback collected from previous frames.
	//
	// This function returns the block height assignment for each tracer
	// in the input list.
	Schedule(tracers []Tracer, frameH uint32) []uint32
}

// The perfect scheduler assumes that the volume of tracing work between two
// subsequent frames is approximately the same.
type perfectScheduler struct {
	blockAssignment []uint32
}

// Create a new perfect scheduler instance.
func NewPerfectScheduler() BlockScheduler {
	return &perfectScheduler{}
}

// Split frame into blocks of variable height and assign to the pool of
// tracers. The first schedule distributes rows proportionally to each
// tracer's speed estimate; subsequent schedules use the measured
// rows-per-nanosecond throughput of the previous frame.
func (sch *perfectScheduler) Schedule(tracers []Tracer, frameH uint32) []uint32 {
	var total float64

	// If this is the first time we try to schedule or the number of
	// tracers has changed we need to reset the block assignments.
	if len(sch.blockAssignment) != len(tracers) {
		sch.blockAssignment = make([]uint32, len(tracers))

		for _, tr := range tracers {
			total += float64(tr.SpeedEstimate())
		}
		scaler := float64(frameH) / total

		var scheduledRows uint32
		for idx, tr := range tracers {
			sch.blockAssignment[idx] = uint32(math.Max(1.0, math.Floor(float64(tr.SpeedEstimate())*scaler)))
			scheduledRows += sch.blockAssignment[idx]
		}
		sch.balance(scheduledRows, frameH)

		return sch.blockAssignment
	}

	// Use last frame statistics.
	for _, tr := range tracers {
		stats := tr.Stats()
		if stats.RenderTime <= 0 {
			// No feedback yet for this tracer; fall back to its estimate.
			total += float64(tr.SpeedEstimate())
			continue
		}
		total += float64(stats.BlockH) / float64(stats.RenderTime.Nanoseconds())
	}

	scaler := float64(frameH) / total
	var scheduledRows uint32
	for idx, tr := range tracers {
		stats := tr.Stats()
		throughput := float64(tr.SpeedEstimate())
		if stats.RenderTime > 0 {
			throughput = float64(stats.BlockH) / float64(stats.RenderTime.Nanoseconds())
		}
		sch.blockAssignment[idx] = uint32(math.Max(1.0, math.Floor(throughput*scaler)))
		scheduledRows += sch.blockAssignment[idx]
	}

	sch.balance(scheduledRows, frameH)

	return sch.blockAssignment
}

// balance adjusts the assignment so the rows add up to exactly the frame
// height. Missing rows go to the first tracer; excess rows (the per-tracer
// minimum of 1 can overshoot small frames) are stripped from the tail.
func (sch *perfectScheduler) balance(scheduledRows, frameH uint32) {
	if scheduledRows <= frameH {
		sch.blockAssignment[0] += frameH - scheduledRows
		return
	}

	excess := scheduledRows - frameH
	for idx := len(sch.blockAssignment) - 1; idx >= 0 && excess > 0; idx-- {
		strip := sch.blockAssignment[idx]
		if strip > excess {
			strip = excess
		}
		sch.blockAssignment[idx] -= strip
		excess -= strip
	}
}
