package webgpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// Workgroup grid dimensions baked into the kernel entry point.
const workgroupSize = 8

// Number of uniform buffers cycled across consecutive block dispatches so
// writing the parameters for the next block never races a dispatch that
// is still reading the previous ones.
const framesInFlight = 2

// pipeline owns the compiled compute pipeline and the bind groups tying
// it to the buffer set. Bind groups reference buffer handles directly so
// they are rebuilt whenever the scene buffers are reallocated.
type pipeline struct {
	device *Device

	module     *wgpu.ShaderModule
	layout     *wgpu.BindGroupLayout
	handle     *wgpu.ComputePipeline
	bindGroups [framesInFlight]*wgpu.BindGroup
}

// newPipeline compiles the composed kernel source into a compute pipeline.
func newPipeline(dev *Device, kernelSource string) (*pipeline, error) {
	p := &pipeline{device: dev}

	var err error
	p.module, err = dev.handle.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "traceBlock",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: kernelSource},
	})
	if err != nil {
		return nil, fmt.Errorf("webgpu device (%s): could not compile kernel: %v", dev.Name, err)
	}

	storageEntry := func(binding uint32, bindingType wgpu.BufferBindingType) wgpu.BindGroupLayoutEntry {
		return wgpu.BindGroupLayoutEntry{
			Binding:    binding,
			Visibility: wgpu.ShaderStageCompute,
			Buffer:     wgpu.BufferBindingLayout{Type: bindingType},
		}
	}

	p.layout, err = dev.handle.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "traceBlock",
		Entries: []wgpu.BindGroupLayoutEntry{
			storageEntry(0, wgpu.BufferBindingTypeUniform),
			storageEntry(1, wgpu.BufferBindingTypeReadOnlyStorage),
			storageEntry(2, wgpu.BufferBindingTypeReadOnlyStorage),
			storageEntry(3, wgpu.BufferBindingTypeReadOnlyStorage),
			storageEntry(4, wgpu.BufferBindingTypeReadOnlyStorage),
			storageEntry(5, wgpu.BufferBindingTypeReadOnlyStorage),
			storageEntry(6, wgpu.BufferBindingTypeReadOnlyStorage),
			storageEntry(7, wgpu.BufferBindingTypeStorage),
		},
	})
	if err != nil {
		p.Release()
		return nil, fmt.Errorf("webgpu device (%s): could not create bind group layout: %v", dev.Name, err)
	}

	pipelineLayout, err := dev.handle.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "traceBlock",
		BindGroupLayouts: []*wgpu.BindGroupLayout{p.layout},
	})
	if err != nil {
		p.Release()
		return nil, fmt.Errorf("webgpu device (%s): could not create pipeline layout: %v", dev.Name, err)
	}
	defer pipelineLayout.Release()

	p.handle, err = dev.handle.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label:  "traceBlock",
		Layout: pipelineLayout,
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     p.module,
			EntryPoint: "traceBlock",
		},
	})
	if err != nil {
		p.Release()
		return nil, fmt.Errorf("webgpu device (%s): could not create compute pipeline: %v", dev.Name, err)
	}

	return p, nil
}

// Bind attaches the buffer set to the pipeline, one bind group per
// in-flight uniform buffer. Must be called again after any buffer in the
// set is reallocated.
func (p *pipeline) Bind(bs *bufferSet) error {
	bufferEntry := func(binding uint32, buf *Buffer) wgpu.BindGroupEntry {
		return wgpu.BindGroupEntry{
			Binding: binding,
			Buffer:  buf.Handle(),
			Size:    wgpu.WholeSize,
		}
	}

	for index := 0; index < framesInFlight; index++ {
		if p.bindGroups[index] != nil {
			p.bindGroups[index].Release()
			p.bindGroups[index] = nil
		}

		bindGroup, err := p.device.handle.CreateBindGroup(&wgpu.BindGroupDescriptor{
			Label:  fmt.Sprintf("traceBlock%d", index),
			Layout: p.layout,
			Entries: []wgpu.BindGroupEntry{
				bufferEntry(0, bs.Uniforms[index]),
				bufferEntry(1, bs.Spheres),
				bufferEntry(2, bs.Ellipsoids),
				bufferEntry(3, bs.Lights),
				bufferEntry(4, bs.Volumes),
				bufferEntry(5, bs.VolumeData),
				bufferEntry(6, bs.Materials),
				bufferEntry(7, bs.FrameBuffer),
			},
		})
		if err != nil {
			return fmt.Errorf("webgpu device (%s): could not create bind group: %v", p.device.Name, err)
		}
		p.bindGroups[index] = bindGroup
	}

	return nil
}

// Bound reports whether the pipeline has bind groups attached.
func (p *pipeline) Bound() bool {
	return p.bindGroups[0] != nil
}

// Dispatch submits one compute pass covering blockW x blockH pixels using
// the bind group for the given in-flight slot.
func (p *pipeline) Dispatch(slot int, blockW, blockH uint32) error {
	if !p.Bound() {
		return ErrNoBindGroup
	}

	encoder, err := p.device.handle.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("webgpu device (%s): could not create command encoder: %v", p.device.Name, err)
	}
	defer encoder.Release()

	pass := encoder.BeginComputePass(nil)
	pass.SetPipeline(p.handle)
	pass.SetBindGroup(0, p.bindGroups[slot], nil)
	pass.DispatchWorkgroups(
		(blockW+workgroupSize-1)/workgroupSize,
		(blockH+workgroupSize-1)/workgroupSize,
		1,
	)
	pass.End()
	pass.Release()

	cmdBuffer, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("webgpu device (%s): could not finish compute pass: %v", p.device.Name, err)
	}
	p.device.queue.Submit(cmdBuffer)
	cmdBuffer.Release()

	return nil
}

// Release pipeline resources.
func (p *pipeline) Release() {
	for index := 0; index < framesInFlight; index++ {
		if p.bindGroups[index] != nil {
			p.bindGroups[index].Release()
			p.bindGroups[index] = nil
		}
	}
	if p.handle != nil {
		p.handle.Release()
		p.handle = nil
	}
	if p.layout != nil {
		p.layout.Release()
		p.layout = nil
	}
	if p.module != nil {
		p.module.Release()
		p.module = nil
	}
}
