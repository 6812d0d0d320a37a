package tracer

import "time"

type ChangeType uint8

const (
	// SetScene replaces the tracer's scene data (shapes, materials,
	// lights, volumes).
	SetScene ChangeType = iota

	// UpdateCamera replaces only the per-frame camera state.
	UpdateCamera
)

// A unit of work that is processed by a tracer: a horizontal band of the
// output frame.
type BlockRequest struct {
	// Block start row and height.
	BlockY uint32
	BlockH uint32

	// Elapsed scene time in seconds, forwarded to time-dependent shaders.
	Time float32

	// Number of sequentially rendered frames so far.
	FrameCount uint32

	// A channel to signal on block completion with the number of completed
	// rows.
	DoneChan chan<- uint32

	// A channel to signal if an error occurs.
	ErrChan chan<- error
}

// Tracer statistics for the last rendered block.
type Stats struct {
	// The rendered block height.
	BlockH uint32

	// Time spent committing queued scene/camera changes.
	UpdateTime time.Duration

	// Time spent rendering the assigned block.
	RenderTime time.Duration
}

type Tracer interface {
	// Get tracer id.
	Id() string

	// Shutdown and cleanup tracer.
	Close()

	// Get the tracer's computation speed estimate compared to a baseline
	// (cpu) implementation.
	SpeedEstimate() float32

	// Setup the tracer. The frame buffer stores 4 bytes per pixel (RGBA)
	// and is shared between all tracers attached to a renderer; each
	// tracer writes only the rows of its assigned blocks.
	Setup(frameW, frameH uint32, frameBuffer []uint8) error

	// Enqueue block request.
	Enqueue(BlockRequest)

	// Append a change to the tracer's update buffer. Changes are grouped
	// by type and the latest change always overwrites the previous one.
	AppendChange(ChangeType, interface{})

	// Apply all pending changes from the update buffer.
	ApplyPendingChanges() error

	// Retrieve last block statistics.
	Stats() *Stats
}
