package cmd

import (
	"bytes"
	"fmt"

	"github.com/Pascu-Victor/path-tracer/tracer/webgpu"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// List the compute devices exposed by the WebGPU runtime.
func ListDevices(ctx *cli.Context) error {
	setupLogging(ctx)

	devices, err := webgpu.SelectDevices(webgpu.AllDevices, "")
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Device", "Type", "Speed estimate"})
	for _, device := range devices {
		table.Append([]string{
			device.Name,
			device.Type.String(),
			fmt.Sprintf("%dx", device.Speed),
		})
		device.Close()
	}
	table.Render()

	logger.Noticef("available devices\n%s", buf.String())
	return nil
}
