package renderer

type Renderer interface {
	// Render frame.
	Render() error

	// Shutdown renderer and any attached tracer.
	Close()

	// Get render statistics.
	Stats() FrameStats

	// Access the rendered RGBA frame buffer. Valid after a successful
	// Render call and until the next one starts.
	FrameBuffer() []uint8
}
