package webgpu

import (
	"fmt"
	"reflect"

	"github.com/cogentcore/webgpu/wgpu"
)

// Size of buffer elements in bytes.
const (
	sizeofSphere    = 32
	sizeofEllipsoid = 64
	sizeofLight     = 32
	sizeofVolume    = 64
	sizeofMaterial  = 80
	sizeofUniforms  = 144
)

type bufferSet struct {
	// Output frame buffer; one packed RGBA word per pixel.
	FrameBuffer *Buffer

	// Scene data.
	Spheres    *Buffer
	Ellipsoids *Buffer
	Lights     *Buffer
	Volumes    *Buffer
	VolumeData *Buffer
	Materials  *Buffer

	// Per-dispatch parameters; one buffer per in-flight frame.
	Uniforms [framesInFlight]*Buffer
}

// Allocate new buffer set.
func newBufferSet(dev *Device) *bufferSet {
	bs := &bufferSet{
		FrameBuffer: dev.Buffer("frameBuffer"),
		Spheres:     dev.Buffer("spheres"),
		Ellipsoids:  dev.Buffer("ellipsoids"),
		Lights:      dev.Buffer("lights"),
		Volumes:     dev.Buffer("volumes"),
		VolumeData:  dev.Buffer("volumeData"),
		Materials:   dev.Buffer("materials"),
	}
	for index := 0; index < framesInFlight; index++ {
		bs.Uniforms[index] = dev.Buffer(fmt.Sprintf("uniforms%d", index))
	}
	return bs
}

// Release all buffers.
func (bs *bufferSet) Release() {
	reflVal := reflect.ValueOf(*bs)
	var iface interface{}
	for fieldIndex := 0; fieldIndex < reflVal.NumField(); fieldIndex++ {
		iface = reflVal.Field(fieldIndex).Interface()
		switch val := iface.(type) {
		case *Buffer:
			val.Release()
		case [framesInFlight]*Buffer:
			for _, b := range val {
				b.Release()
			}
		}
	}
}

// Resize frame-related buffers to the given frame dimensions.
func (bs *bufferSet) Resize(frameW, frameH uint32) error {
	var err error
	pixels := frameW * frameH

	err = bs.FrameBuffer.Allocate(int(pixels*4), wgpu.BufferUsageStorage)
	if err != nil {
		return err
	}
	for index := 0; index < framesInFlight; index++ {
		err = bs.Uniforms[index].Allocate(sizeofUniforms, wgpu.BufferUsageUniform)
		if err != nil {
			return err
		}
	}
	return nil
}

// Upload packed scene data to the device buffers.
func (bs *bufferSet) UploadSceneData(ps *packedScene) error {
	var err error

	// WebGPU rejects zero-sized bindings, so empty collections upload a
	// single zeroed element.
	targets := map[*Buffer]interface{}{
		bs.Spheres:    nonEmpty(ps.Spheres, make([]gpuSphere, 1)),
		bs.Ellipsoids: nonEmpty(ps.Ellipsoids, make([]gpuEllipsoid, 1)),
		bs.Lights:     nonEmpty(ps.Lights, make([]gpuLight, 1)),
		bs.Volumes:    nonEmpty(ps.Volumes, make([]gpuVolume, 1)),
		bs.VolumeData: nonEmpty(ps.VolumeData, make([]uint8, 4)),
		bs.Materials:  nonEmpty(ps.Materials, make([]gpuMaterial, 1)),
	}

	for buf, data := range targets {
		err = buf.AllocateAndWriteData(data, wgpu.BufferUsageStorage)
		if err != nil {
			return err
		}
	}

	return nil
}

func nonEmpty(data interface{}, fallback interface{}) interface{} {
	if reflect.ValueOf(data).Len() == 0 {
		return fallback
	}
	return data
}
