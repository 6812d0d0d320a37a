package webgpu

import (
	"fmt"
	"sync"
	"time"

	"github.com/Pascu-Victor/path-tracer/log"
	"github.com/Pascu-Victor/path-tracer/scene"
	"github.com/Pascu-Victor/path-tracer/tracer"
	"github.com/Pascu-Victor/path-tracer/types"
)

// gpuTracer renders blocks by dispatching the composed compute kernel on a
// WebGPU device and reading the block rows back into the shared frame
// buffer.
type gpuTracer struct {
	logger log.Logger

	sync.Mutex
	wg sync.WaitGroup

	// The device associated with this tracer instance.
	device *Device

	// The allocated device buffers and the compiled pipeline.
	buffers  *bufferSet
	pipeline *pipeline

	// The composed kernel; built once from the shader directory.
	kernel *ComposedKernel

	id        string
	shaderDir string

	frameW, frameH uint32
	frameBuffer    []uint8

	// A buffer for queuing updates. Updates are grouped by type and
	// latest updates always overwrite the previous ones.
	updateBuffer map[tracer.ChangeType]interface{}

	// A channel for receiving block requests from the renderer.
	blockReqChan chan tracer.BlockRequest

	// A channel for signaling the worker to exit.
	closeChan chan struct{}

	stats *tracer.Stats

	// The uploaded packed scene.
	sceneData *packedScene

	camera *scene.Camera
	invVP  types.Mat4
}

// NewTracer creates a tracer that renders on the given WebGPU device. The
// shader directory is scanned for surface shader fragments when the tracer
// is set up; it may be empty.
func NewTracer(id string, dev *Device, shaderDir string) tracer.Tracer {
	return &gpuTracer{
		logger:       log.New(fmt.Sprintf("webgpu tracer (%s)", dev.Name)),
		device:       dev,
		id:           id,
		shaderDir:    shaderDir,
		updateBuffer: make(map[tracer.ChangeType]interface{}),
		blockReqChan: make(chan tracer.BlockRequest),
		stats:        &tracer.Stats{},
	}
}

// Get tracer id.
func (tr *gpuTracer) Id() string {
	return tr.id
}

// Get the computation speed estimate relative to the host renderer.
func (tr *gpuTracer) SpeedEstimate() float32 {
	return float32(tr.device.Speed)
}

// Setup the tracer: initialize the device, compose and compile the kernel
// and start the worker.
func (tr *gpuTracer) Setup(frameW, frameH uint32, frameBuffer []uint8) error {
	var err error
	tr.Lock()
	defer tr.Unlock()

	if err = tr.device.Init(); err != nil {
		return err
	}

	if tr.kernel == nil {
		tr.kernel, err = ComposeKernel(tr.shaderDir, tr.logger)
		if err != nil {
			tr.cleanup()
			return err
		}
	}

	if tr.buffers == nil {
		tr.buffers = newBufferSet(tr.device)
	}
	if tr.pipeline == nil {
		tr.pipeline, err = newPipeline(tr.device, tr.kernel.Source)
		if err != nil {
			tr.cleanup()
			return err
		}
	}

	tr.frameW = frameW
	tr.frameH = frameH
	tr.frameBuffer = frameBuffer

	if err = tr.buffers.Resize(frameW, frameH); err != nil {
		tr.cleanup()
		return err
	}

	// A resize reallocates buffers referenced by the bind groups.
	if tr.sceneData != nil {
		if err = tr.pipeline.Bind(tr.buffers); err != nil {
			tr.cleanup()
			return err
		}
	}

	if tr.closeChan == nil {
		tr.startWorker()
	}

	return nil
}

// Shutdown and cleanup tracer.
func (tr *gpuTracer) Close() {
	tr.Lock()
	defer tr.Unlock()

	tr.cleanup()
}

// Cleanup tracer. This method is meant to be called while holding tr.Lock()
func (tr *gpuTracer) cleanup() {
	// If the worker is running shut it down
	if tr.closeChan != nil {
		tr.closeChan <- struct{}{}

		// wait for worker to ack close and shutdown channel
		<-tr.closeChan
		close(tr.closeChan)
		tr.closeChan = nil
	}

	if tr.pipeline != nil {
		tr.pipeline.Release()
		tr.pipeline = nil
	}
	if tr.buffers != nil {
		tr.buffers.Release()
		tr.buffers = nil
	}
	tr.device.Close()

	tr.sceneData = nil
	tr.camera = nil
}

// Enqueue block request.
func (tr *gpuTracer) Enqueue(blockReq tracer.BlockRequest) {
	select {
	case tr.blockReqChan <- blockReq:
	default:
		// drop the request if worker is not listening
		tr.logger.Error("request processor did not receive block request")
	}
}

// Append a change to the tracer's update buffer.
func (tr *gpuTracer) AppendChange(changeType tracer.ChangeType, data interface{}) {
	tr.updateBuffer[changeType] = data
}

// Apply all pending changes from the update buffer.
func (tr *gpuTracer) ApplyPendingChanges() error {
	for changeType, data := range tr.updateBuffer {
		switch changeType {
		case tracer.SetScene:
			if err := tr.uploadScene(data.(*scene.Scene)); err != nil {
				return err
			}
		case tracer.UpdateCamera:
			tr.camera = data.(*scene.Camera)
			tr.invVP = tr.camera.InvViewProjMat()
		default:
			return tracer.ErrInvalidChange
		}
	}

	tr.updateBuffer = make(map[tracer.ChangeType]interface{})
	return nil
}

// Retrieve last block statistics.
func (tr *gpuTracer) Stats() *tracer.Stats {
	return tr.stats
}

// uploadScene packs the scene into the device layouts, uploads it and
// rebinds the pipeline to the reallocated buffers.
func (tr *gpuTracer) uploadScene(sc *scene.Scene) error {
	ps, err := packScene(sc, tr.kernel.Index, tr.logger)
	if err != nil {
		return err
	}

	if err = tr.buffers.UploadSceneData(ps); err != nil {
		return err
	}
	if err = tr.pipeline.Bind(tr.buffers); err != nil {
		return err
	}

	tr.sceneData = ps
	return nil
}

// Spawn a go-routine to process block render requests.
func (tr *gpuTracer) startWorker() {
	tr.closeChan = make(chan struct{})

	readyChan := make(chan struct{})
	tr.wg.Add(1)
	go func() {
		defer tr.wg.Done()
		close(readyChan)
		for {
			select {
			case blockReq := <-tr.blockReqChan:
				// Apply any pending changes
				if len(tr.updateBuffer) != 0 {
					startTime := time.Now()
					if err := tr.ApplyPendingChanges(); err != nil {
						blockReq.ErrChan <- err
						continue
					}
					tr.stats.UpdateTime = time.Since(startTime)
				}

				startTime := time.Now()
				if err := tr.renderBlock(&blockReq); err != nil {
					blockReq.ErrChan <- err
					continue
				}

				tr.stats.BlockH = blockReq.BlockH
				tr.stats.RenderTime = time.Since(startTime)

				blockReq.DoneChan <- blockReq.BlockH
			case <-tr.closeChan:
				// Ack close
				tr.closeChan <- struct{}{}
				return
			}
		}
	}()

	// Wait for go-routine to start
	<-readyChan
}

// renderBlock dispatches the kernel for the assigned band, waits for the
// device to drain and reads the rendered rows back into the shared frame
// buffer.
func (tr *gpuTracer) renderBlock(blockReq *tracer.BlockRequest) error {
	if tr.sceneData == nil {
		return tracer.ErrNoSceneData
	}
	if tr.camera == nil {
		return tracer.ErrNoCameraData
	}
	if blockReq.BlockY+blockReq.BlockH > tr.frameH {
		return tracer.ErrBlockOutOfRange
	}

	slot := int(blockReq.FrameCount) % framesInFlight

	uniforms := []gpuUniforms{{
		CameraMatrix:  tr.invVP,
		CameraPos:     tr.camera.Position,
		Time:          blockReq.Time,
		NumSpheres:    tr.sceneData.NumSpheres,
		NumEllipsoids: tr.sceneData.NumEllipsoids,
		NumLights:     tr.sceneData.NumLights,
		NumVolumes:    tr.sceneData.NumVolumes,
		MaxDepth:      tr.sceneData.MaxDepth,
		BlockY:        blockReq.BlockY,
		FrameW:        tr.frameW,
		FrameH:        tr.frameH,
		BgColorTop:    tr.sceneData.BgColorTop,
		BlockH:        blockReq.BlockH,
		BgColorBottom: tr.sceneData.BgColorBottom,
	}}
	if err := tr.buffers.Uniforms[slot].WriteData(uniforms, 0); err != nil {
		return err
	}

	if err := tr.pipeline.Dispatch(slot, tr.frameW, blockReq.BlockH); err != nil {
		return err
	}
	if err := tr.device.WaitIdle(); err != nil {
		return err
	}

	blockOffset := int(blockReq.BlockY * tr.frameW * 4)
	blockSize := int(blockReq.BlockH * tr.frameW * 4)
	return tr.buffers.FrameBuffer.ReadData(blockOffset, blockOffset, blockSize, tr.frameBuffer)
}
