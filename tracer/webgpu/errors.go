package webgpu

import "errors"

var (
	ErrNoAdapter          = errors.New("webgpu tracer: no compatible adapter found")
	ErrDeviceNotInitiated = errors.New("webgpu tracer: device has not been initialized")
	ErrReadbackTimeout    = errors.New("webgpu tracer: timed out waiting for device to finish")
	ErrNoBindGroup        = errors.New("webgpu tracer: no scene data bound to the pipeline")
)
