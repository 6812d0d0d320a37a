package cmd

import (
	"bytes"
	"fmt"

	"github.com/Pascu-Victor/path-tracer/renderer"
	"github.com/Pascu-Victor/path-tracer/tracer"
	"github.com/Pascu-Victor/path-tracer/tracer/webgpu"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// Render the demo scene to a PPM file, orbiting the camera one step per
// frame.
func RenderFrame(ctx *cli.Context) error {
	setupLogging(ctx)

	opts := renderer.Options{
		FrameW: uint32(ctx.Int("width")),
		FrameH: uint32(ctx.Int("height")),
		//
		BlackListedDevices: ctx.StringSlice("blacklist"),
		ForcePrimaryDevice: ctx.String("force-primary"),
	}

	sc := demoScene(ctx.String("volume-dat"), ctx.String("volume-raw"), ctx.String("emissive-shader"))
	if depth := ctx.Int("max-depth"); depth > 0 {
		sc.MaxDepth = int32(depth)
	}

	tracers, err := buildTracers(ctx)
	if err != nil {
		return err
	}

	r, err := renderer.NewDefault(sc, tracer.NewPerfectScheduler(), tracers, opts)
	if err != nil {
		return err
	}
	defer r.Close()

	frames := ctx.Int("frames")
	if frames < 1 {
		frames = 1
	}

	angle := 0.0
	for frame := 0; frame < frames; frame++ {
		orbitCamera(sc.Camera, angle)
		if err = r.Render(); err != nil {
			return err
		}
		angle += orbitStep
	}

	out := ctx.String("out")
	if err = renderer.SavePPM(out, opts.FrameW, opts.FrameH, r.FrameBuffer()); err != nil {
		return err
	}
	logger.Noticef("rendered %d frame(s) to %s", frames, out)

	displayFrameStats(r.Stats())
	return nil
}

// buildTracers creates one tracer per detected WebGPU device, falling back
// to the host implementation when requested or when no adapter is found.
func buildTracers(ctx *cli.Context) ([]tracer.Tracer, error) {
	if ctx.Bool("cpu") {
		return []tracer.Tracer{tracer.NewCPUTracer("cpu")}, nil
	}

	devices, err := webgpu.SelectDevices(webgpu.AllDevices, ctx.String("device"))
	if err == webgpu.ErrNoAdapter {
		logger.Notice("no WebGPU adapter found; falling back to the host tracer")
		return []tracer.Tracer{tracer.NewCPUTracer("cpu")}, nil
	}
	if err != nil {
		return nil, err
	}

	shaderDir := ctx.String("shader-dir")
	tracers := make([]tracer.Tracer, 0, len(devices))
	for _, device := range devices {
		tracers = append(tracers, webgpu.NewTracer(device.Name, device, shaderDir))
	}
	return tracers, nil
}

func displayFrameStats(stats renderer.FrameStats) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Device", "Primary", "Block height", "% of frame", "Render time"})
	for _, stat := range stats.Tracers {
		table.Append([]string{
			stat.Id,
			fmt.Sprintf("%t", stat.IsPrimary),
			fmt.Sprintf("%d", stat.BlockH),
			fmt.Sprintf("%02.1f %%", stat.FramePercent),
			stat.RenderTime.String(),
		})
	}
	table.SetFooter([]string{"", "", "", "TOTAL", stats.RenderTime.String()})

	table.Render()
	logger.Noticef("frame statistics\n%s", buf.String())
}
