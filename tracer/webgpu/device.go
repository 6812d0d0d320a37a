package webgpu

import (
	"fmt"
	"strings"
	"time"

	"github.com/cogentcore/webgpu/wgpu"
)

type DeviceType uint8

// Supported device types.
const (
	CpuDevice DeviceType = 1 << iota
	GpuDevice
	OtherDevice
	AllDevices = 0xFF
)

func (dt DeviceType) String() string {
	switch dt {
	case CpuDevice:
		return "CPU"
	case GpuDevice:
		return "GPU"
	case OtherDevice:
		return "Other"
	}
	panic("webgpu: unsupported device type")
}

// How long to poll the device for queue completion before giving up.
// WebGPU has no timeline fences, so bounded polling stands in for one.
const waitIdleTimeout = 5 * time.Second

// Wrapper around a WebGPU adapter and its logical device.
type Device struct {
	Name string
	Type DeviceType

	// Speed estimate relative to the host renderer.
	Speed uint32

	// WebGPU handles; allocated when the device is initialized.
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	handle   *wgpu.Device
	queue    *wgpu.Queue
}

// A list of devices.
type DeviceList []*Device

// Implements Stringer.
func (d *Device) String() string {
	return fmt.Sprintf(
		"Name: %s\nType: %s\nSpecs: %dx approximate speed vs host renderer",
		d.Name,
		d.Type.String(),
		d.Speed,
	)
}

// SelectDevices enumerates the adapters the WebGPU runtime exposes and
// returns the ones matching the given type mask whose name contains
// matchName (empty matches everything).
func SelectDevices(typeMask DeviceType, matchName string) (DeviceList, error) {
	all, err := detectDevices()
	if err != nil {
		return nil, err
	}

	list := make(DeviceList, 0, len(all))
	for _, d := range all {
		if d.Type&typeMask != 0 && strings.Contains(strings.ToLower(d.Name), strings.ToLower(matchName)) {
			list = append(list, d)
		}
	}
	return list, nil
}

// detectDevices requests the default high-performance adapter plus the
// fallback (software) adapter if it differs. Each device owns its own
// instance so devices can be closed independently.
func detectDevices() (DeviceList, error) {
	list := make(DeviceList, 0, 2)
	seen := make(map[string]bool)

	opts := []wgpu.RequestAdapterOptions{
		{PowerPreference: wgpu.PowerPreferenceHighPerformance},
		{ForceFallbackAdapter: true},
	}
	for _, opt := range opts {
		instance := wgpu.CreateInstance(nil)
		adapter, err := instance.RequestAdapter(&opt)
		if err != nil || adapter == nil {
			instance.Release()
			continue
		}

		info := adapter.GetInfo()
		if seen[info.Name] {
			adapter.Release()
			instance.Release()
			continue
		}
		seen[info.Name] = true

		list = append(list, &Device{
			Name:     info.Name,
			Type:     deviceTypeFor(info.AdapterType),
			Speed:    speedEstimateFor(info.AdapterType),
			instance: instance,
			adapter:  adapter,
		})
	}

	if len(list) == 0 {
		return nil, ErrNoAdapter
	}
	return list, nil
}

func deviceTypeFor(at wgpu.AdapterType) DeviceType {
	switch at {
	case wgpu.AdapterTypeDiscreteGPU, wgpu.AdapterTypeIntegratedGPU:
		return GpuDevice
	case wgpu.AdapterTypeCPU:
		return CpuDevice
	}
	return OtherDevice
}

func speedEstimateFor(at wgpu.AdapterType) uint32 {
	switch at {
	case wgpu.AdapterTypeDiscreteGPU:
		return 16
	case wgpu.AdapterTypeIntegratedGPU:
		return 8
	}
	return 1
}

// Initialize device.
func (d *Device) Init() error {
	// Already initialized
	if d.handle != nil {
		return nil
	}

	handle, err := d.adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: d.Name,
	})
	if err != nil {
		defer d.Close()
		return fmt.Errorf("webgpu device (%s): could not create logical device: %v", d.Name, err)
	}
	d.handle = handle
	d.queue = handle.GetQueue()

	return nil
}

// Shut down the device.
func (d *Device) Close() {
	if d.queue != nil {
		d.queue.Release()
		d.queue = nil
	}
	if d.handle != nil {
		d.handle.Release()
		d.handle = nil
	}
	if d.adapter != nil {
		d.adapter.Release()
		d.adapter = nil
	}
	if d.instance != nil {
		d.instance.Release()
		d.instance = nil
	}
}

// WaitIdle polls the device until all submitted work has completed, or
// fails with ErrReadbackTimeout after the bounded wait elapses.
func (d *Device) WaitIdle() error {
	if d.handle == nil {
		return ErrDeviceNotInitiated
	}

	deadline := time.Now().Add(waitIdleTimeout)
	for {
		if d.handle.Poll(false, nil) {
			return nil
		}
		if time.Now().After(deadline) {
			return ErrReadbackTimeout
		}
		time.Sleep(time.Millisecond)
	}
}

// Create an empty buffer.
func (d *Device) Buffer(name string) *Buffer {
	return &Buffer{
		device: d,
		name:   name,
	}
}
