package tracer

import (
	"sync"
	"time"

	"github.com/Pascu-Victor/path-tracer/log"
	"github.com/Pascu-Victor/path-tracer/scene"
	"github.com/Pascu-Victor/path-tracer/types"
)

// cpuTracer renders blocks on the host using the reference illumination
// engine. It doubles as the baseline for device speed estimates and as the
// fallback when no GPU adapter is available.
type cpuTracer struct {
	logger log.Logger

	sync.Mutex
	wg sync.WaitGroup

	id string

	frameW, frameH uint32
	frameBuffer    []uint8

	// A buffer for queuing updates. Updates are grouped by type and
	// latest updates always overwrite the previous ones.
	updateBuffer map[ChangeType]interface{}

	// A channel for receiving block requests from the renderer.
	blockReqChan chan BlockRequest

	// A channel for signaling the worker to exit.
	closeChan chan struct{}

	stats *Stats

	sceneData *scene.Scene
	camera    *scene.Camera
	invVP     types.Mat4
}

// NewCPUTracer creates a tracer that renders on the host.
func NewCPUTracer(id string) Tracer {
	return &cpuTracer{
		logger:       log.New("cpu tracer"),
		id:           id,
		updateBuffer: make(map[ChangeType]interface{}),
		blockReqChan: make(chan BlockRequest),
		stats:        &Stats{},
	}
}

// Get tracer id.
func (tr *cpuTracer) Id() string {
	return tr.id
}

// Get the computation speed estimate. The cpu implementation is the
// baseline.
func (tr *cpuTracer) SpeedEstimate() float32 {
	return 1.0
}

// Setup the tracer and start its worker.
func (tr *cpuTracer) Setup(frameW, frameH uint32, frameBuffer []uint8) error {
	tr.Lock()
	defer tr.Unlock()

	tr.frameW = frameW
	tr.frameH = frameH
	tr.frameBuffer = frameBuffer

	if tr.closeChan == nil {
		tr.startWorker()
	}

	return nil
}

// Shutdown and cleanup tracer.
func (tr *cpuTracer) Close() {
	tr.Lock()
	defer tr.Unlock()

	if tr.closeChan != nil {
		tr.closeChan <- struct{}{}

		// wait for worker to ack close and shutdown channel
		<-tr.closeChan
		close(tr.closeChan)
		tr.closeChan = nil
	}

	tr.sceneData = nil
	tr.camera = nil
}

// Enqueue block request.
func (tr *cpuTracer) Enqueue(blockReq BlockRequest) {
	select {
	case tr.blockReqChan <- blockReq:
	default:
		// drop the request if worker is not listening
		tr.logger.Error("request processor did not receive block request")
	}
}

// Append a change to the tracer's update buffer.
func (tr *cpuTracer) AppendChange(changeType ChangeType, data interface{}) {
	tr.updateBuffer[changeType] = data
}

// Apply all pending changes from the update buffer.
func (tr *cpuTracer) ApplyPendingChanges() error {
	for changeType, data := range tr.updateBuffer {
		switch changeType {
		case SetScene:
			sc := data.(*scene.Scene)
			// The scene is shared read-only between tracer workers; the
			// interning pass must have run before fan-out.
			if !sc.Prepared() {
				return ErrSceneNotPrepared
			}
			tr.sceneData = sc
		case UpdateCamera:
			tr.camera = data.(*scene.Camera)
			tr.invVP = tr.camera.InvViewProjMat()
		default:
			return ErrInvalidChange
		}
	}

	tr.updateBuffer = make(map[ChangeType]interface{})
	return nil
}

// Retrieve last block statistics.
func (tr *cpuTracer) Stats() *Stats {
	return tr.stats
}

// Spawn a go-routine to process block render requests.
func (tr *cpuTracer) startWorker() {
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

// renderBlock traces every pixel of the assigned band and writes RGBA
// bytes into the shared frame buffer.
func (tr *cpuTracer) renderBlock(blockReq *BlockRequest) error {
	if tr.sceneData == nil {
		return ErrNoSceneData
	}
	if tr.camera == nil {
		return ErrNoCameraData
	}
	if blockReq.BlockY+blockReq.BlockH > tr.frameH {
		return ErrBlockOutOfRange
	}

	camPos := tr.camera.Position
	maxDepth := tr.sceneData.MaxDepth

	for y := blockReq.BlockY; y < blockReq.BlockY+blockReq.BlockH; y++ {
		ndcY := 1 - 2*(float32(y)+0.5)/float32(tr.frameH)
		for x := uint32(0); x < tr.frameW; x++ {
			ndcX := 2*(float32(x)+0.5)/float32(tr.frameW) - 1

			ray := Ray{Origin: camPos, Dir: tr.unproject(ndcX, ndcY, camPos)}
			color := TraceRay(tr.sceneData, ray, maxDepth)

			offset := (y*tr.frameW + x) * 4
			tr.frameBuffer[offset] = colorByte(color[0])
			tr.frameBuffer[offset+1] = colorByte(color[1])
			tr.frameBuffer[offset+2] = colorByte(color[2])
			tr.frameBuffer[offset+3] = 255
		}
	}

	return nil
}

// unproject maps normalized device coordinates through the inverse
// view-projection matrix to a world-space ray direction.
func (tr *cpuTracer) unproject(ndcX, ndcY float32, camPos types.Vec3) types.Vec3 {
	v := tr.invVP.Mul4x1(types.XYZW(ndcX, ndcY, 0.5, 1))
	world := v.Vec3().Mul(1 / v[3])
	return world.Sub(camPos).Normalize()
}

// colorByte clamps an unclamped color channel to [0,1] and converts it to
// a byte.
func colorByte(c float32) uint8 {
	if c < 0 {
		c = 0
	} else if c > 1 {
		c = 1
	}
	return uint8(c * 255.99)
}
