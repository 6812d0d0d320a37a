package renderer

import (
	"strings"
	"time"

	"github.com/Pascu-Victor/path-tracer/log"
	"github.com/Pascu-Victor/path-tracer/scene"
	"github.com/Pascu-Victor/path-tracer/tracer"
)

// defaultRenderer splits each frame into horizontal bands, fans them out to
// the attached tracers and blocks until every band completes. Band heights
// come from the block scheduler which rebalances using per-tracer timing
// feedback.
type defaultRenderer struct {
	logger log.Logger

	options Options

	sc     *scene.Scene
	camera *scene.Camera

	// Attached tracers; index 0 is the primary.
	tracers   []tracer.Tracer
	scheduler tracer.BlockScheduler

	// Shared RGBA frame buffer; each tracer writes only its assigned rows.
	frameBuffer []uint8

	doneChan chan uint32
	errChan  chan error

	frameCount uint32
	startTime  time.Time

	stats FrameStats
}

// NewDefault creates a renderer that drives the given tracers. Tracers
// whose id contains a blacklisted device name are dropped; a tracer whose
// id contains the forced primary name is moved to the front.
func NewDefault(sc *scene.Scene, scheduler tracer.BlockScheduler, tracers []tracer.Tracer, opts Options) (Renderer, error) {
	if sc == nil {
		return nil, ErrSceneNotDefined
	}
	if sc.Camera == nil {
		return nil, ErrCameraNotDefined
	}

	// Intern the materials once, up front. The tracers share the scene
	// read-only from here on, so the pass must not run inside their
	// workers.
	if err := sc.Prepare(); err != nil {
		return nil, err
	}

	r := &defaultRenderer{
		logger:      log.New("renderer"),
		options:     opts,
		sc:          sc,
		camera:      sc.Camera,
		scheduler:   scheduler,
		frameBuffer: make([]uint8, opts.FrameW*opts.FrameH*4),
		doneChan:    make(chan uint32, len(tracers)),
		errChan:     make(chan error, len(tracers)),
		startTime:   time.Now(),
	}

	r.tracers = selectTracers(tracers, opts, r.logger)
	if len(r.tracers) == 0 {
		return nil, ErrNoTracers
	}

	sc.Camera.SetupProjection(float32(opts.FrameW) / float32(opts.FrameH))

	for _, tr := range r.tracers {
		if err := tr.Setup(opts.FrameW, opts.FrameH, r.frameBuffer); err != nil {
			r.Close()
			return nil, err
		}
		tr.AppendChange(tracer.SetScene, sc)
		tr.AppendChange(tracer.UpdateCamera, sc.Camera)
		r.logger.Noticef("attached tracer %s (speed estimate %.1fx)", tr.Id(), tr.SpeedEstimate())
	}

	return r, nil
}

func selectTracers(tracers []tracer.Tracer, opts Options, logger log.Logger) []tracer.Tracer {
	kept := make([]tracer.Tracer, 0, len(tracers))
	for _, tr := range tracers {
		if blacklisted(tr.Id(), opts.BlackListedDevices) {
			logger.Noticef("skipping blacklisted device: %s", tr.Id())
			tr.Close()
			continue
		}
		kept = append(kept, tr)
	}

	if opts.ForcePrimaryDevice != "" {
		for idx, tr := range kept {
			if strings.Contains(strings.ToLower(tr.Id()), strings.ToLower(opts.ForcePrimaryDevice)) {
				kept[0], kept[idx] = kept[idx], kept[0]
				break
			}
		}
	}

	return kept
}

func blacklisted(id string, blackList []string) bool {
	for _, name := range blackList {
		if name != "" && strings.Contains(strings.ToLower(id), strings.ToLower(name)) {
			return true
		}
	}
	return false
}

// Render frame.
func (r *defaultRenderer) Render() error {
	blockHeights := r.scheduler.Schedule(r.tracers, r.options.FrameH)

	// The camera may have been mutated between frames.
	for _, tr := range r.tracers {
		tr.AppendChange(tracer.UpdateCamera, r.camera)
	}

	start := time.Now()
	elapsed := float32(time.Since(r.startTime).Seconds())

	var blockY uint32
	pending := 0
	for idx, tr := range r.tracers {
		tr.Enqueue(tracer.BlockRequest{
			BlockY:     blockY,
			BlockH:     blockHeights[idx],
			Time:       elapsed,
			FrameCount: r.frameCount,
			DoneChan:   r.doneChan,
			ErrChan:    r.errChan,
		})
		blockY += blockHeights[idx]
		pending++
	}

	var renderErr error
	for ; pending > 0; pending-- {
		select {
		case <-r.doneChan:
		case err := <-r.errChan:
			renderErr = err
		}
	}
	if renderErr != nil {
		return renderErr
	}

	r.frameCount++
	r.collectStats(time.Since(start))
	return nil
}

func (r *defaultRenderer) collectStats(frameTime time.Duration) {
	r.stats.RenderTime = frameTime
	r.stats.Tracers = r.stats.Tracers[:0]
	for idx, tr := range r.tracers {
		st := tr.Stats()
		r.stats.Tracers = append(r.stats.Tracers, TracerStat{
			Id:           tr.Id(),
			IsPrimary:    idx == 0,
			BlockH:       st.BlockH,
			FramePercent: float32(st.BlockH) * 100.0 / float32(r.options.FrameH),
			RenderTime:   st.RenderTime,
		})
	}
}

// Shutdown renderer and any attached tracer.
func (r *defaultRenderer) Close() {
	for _, tr := range r.tracers {
		tr.Close()
	}
	r.tracers = nil
}

// Get render statistics.
func (r *defaultRenderer) Stats() FrameStats {
	return r.stats
}

// Access the rendered RGBA frame buffer.
func (r *defaultRenderer) FrameBuffer() []uint8 {
	return r.frameBuffer
}
