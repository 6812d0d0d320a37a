package webgpu

import (
	"fmt"
	"reflect"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
)

type Buffer struct {
	// Handle to the device-side buffer.
	bufHandle *wgpu.Buffer

	// Staging buffer for mapped readback; allocated on first ReadData.
	readHandle *wgpu.Buffer

	// Associated Device.
	device *Device

	// A name for identifying the buffer.
	name string

	// Allocated size.
	size int
}

// Get buffer size.
func (b *Buffer) Size() int {
	return b.size
}

// Allocate a buffer with the given size and usage. CopySrc/CopyDst are
// always added so the buffer can be written with queued writes and read
// back through the staging buffer.
func (b *Buffer) Allocate(size int, usage wgpu.BufferUsage) error {
	// If the buffer is already allocated release it
	b.Release()

	if b.device.handle == nil {
		return ErrDeviceNotInitiated
	}

	bufHandle, err := b.device.handle.CreateBuffer(&wgpu.BufferDescriptor{
		Label: b.name,
		Size:  uint64(size),
		Usage: usage | wgpu.BufferUsageCopySrc | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("webgpu device (%s): could not allocate buffer %s of size %d: %v", b.device.Name, b.name, size, err)
	}

	b.bufHandle = bufHandle
	b.size = size

	return nil
}

// Allocate a buffer with the given usage that is large enough to hold the
// given data and write the data to it. The behavior of this method is
// undefined if a non-slice argument is passed or the argument does not use
// contiguous memory.
func (b *Buffer) AllocateAndWriteData(data interface{}, usage wgpu.BufferUsage) error {
	bytes := getSliceData(data)

	if err := b.Allocate(len(bytes), usage); err != nil {
		return err
	}

	b.device.queue.WriteBuffer(b.bufHandle, 0, bytes)
	return nil
}

// Write data to the device buffer at the given byte offset. The behavior
// of this method is undefined if a non-slice argument is passed or the
// argument does not use contiguous memory.
func (b *Buffer) WriteData(data interface{}, offset int) error {
	bytes := getSliceData(data)

	if offset+len(bytes) > b.size {
		return fmt.Errorf("webgpu device (%s): insufficient buffer space (%d) in %s for copying data of length %d", b.device.Name, b.size, b.name, len(bytes))
	}

	b.device.queue.WriteBuffer(b.bufHandle, uint64(offset), bytes)
	return nil
}

// Read data from the device buffer into the supplied host slice. The copy
// goes through a staging buffer that is mapped once the queued work has
// drained. Both src and dst offsets are specified in bytes; a size <= 0
// reads the entire buffer.
func (b *Buffer) ReadData(srcOffset, dstOffset, size int, hostBuffer interface{}) error {
	if size <= 0 {
		size = b.size
	}

	if err := b.allocateReadHandle(); err != nil {
		return err
	}

	encoder, err := b.device.handle.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("webgpu device (%s): could not create command encoder for %s readback: %v", b.device.Name, b.name, err)
	}
	defer encoder.Release()

	if err = encoder.CopyBufferToBuffer(b.bufHandle, uint64(srcOffset), b.readHandle, 0, uint64(size)); err != nil {
		return fmt.Errorf("webgpu device (%s): could not copy %s to staging buffer: %v", b.device.Name, b.name, err)
	}

	cmdBuffer, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("webgpu device (%s): could not finish %s readback commands: %v", b.device.Name, b.name, err)
	}
	b.device.queue.Submit(cmdBuffer)
	cmdBuffer.Release()

	var mapErr error
	mapped := false
	err = b.readHandle.MapAsync(wgpu.MapModeRead, 0, uint64(size), func(status wgpu.BufferMapAsyncStatus) {
		if status != wgpu.BufferMapAsyncStatusSuccess {
			mapErr = fmt.Errorf("webgpu device (%s): mapping %s staging buffer failed with status %d", b.device.Name, b.name, status)
			return
		}
		mapped = true
	})
	if err != nil {
		return fmt.Errorf("webgpu device (%s): could not map %s staging buffer: %v", b.device.Name, b.name, err)
	}

	if err = b.device.WaitIdle(); err != nil {
		return err
	}
	if mapErr != nil {
		return mapErr
	}
	if !mapped {
		return ErrReadbackTimeout
	}

	dst := getSliceData(hostBuffer)
	copy(dst[dstOffset:], b.readHandle.GetMappedRange(0, uint(size)))
	b.readHandle.Unmap()

	return nil
}

// Release buffer.
func (b *Buffer) Release() {
	if b.bufHandle != nil {
		b.bufHandle.Release()
		b.bufHandle = nil
	}
	if b.readHandle != nil {
		b.readHandle.Release()
		b.readHandle = nil
	}
	b.size = 0
}

// Get the device buffer handle.
func (b *Buffer) Handle() *wgpu.Buffer {
	return b.bufHandle
}

func (b *Buffer) allocateReadHandle() error {
	if b.readHandle != nil {
		return nil
	}

	readHandle, err := b.device.handle.CreateBuffer(&wgpu.BufferDescriptor{
		Label: b.name + "/staging",
		Size:  uint64(b.size),
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("webgpu device (%s): could not allocate staging buffer for %s: %v", b.device.Name, b.name, err)
	}

	b.readHandle = readHandle
	return nil
}

// Given an interface{} containing a slice return a view of its backing
// array as a byte slice.
func getSliceData(data interface{}) []byte {
	reflVal := reflect.ValueOf(data)

	if reflVal.Kind() != reflect.Slice {
		panic("getSliceData: this function only supports slices")
	}

	sliceElemCount := reflVal.Len()
	if sliceElemCount == 0 {
		panic("getSliceData: supplied slice object is empty")
	}

	byteLen := sliceElemCount * int(reflVal.Type().Elem().Size())
	return unsafe.Slice((*byte)(unsafe.Pointer(reflVal.Index(0).Addr().Pointer())), byteLen)
}
