package renderer

type Options struct {
	// Frame dims.
	FrameW uint32
	FrameH uint32

	// Device selection.
	BlackListedDevices []string
	ForcePrimaryDevice string
}
