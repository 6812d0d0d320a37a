package main

import (
	"os"

	"github.com/Pascu-Victor/path-tracer/cmd"
	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "path-tracer"
	app.Usage = "render scenes using gpu compute ray tracing"
	app.Version = "0.0.1"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:   "list-devices",
			Usage:  "list available webgpu devices",
			Action: cmd.ListDevices,
		},
		{
			Name:  "render",
			Usage: "render the demo scene",
			Description: `
Render the demo scene with the camera orbiting the volumetric block, one
orbit step per frame, and write the last frame to a PPM file.`,
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "width",
					Value: 512,
					Usage: "frame width",
				},
				cli.IntFlag{
					Name:  "height",
					Value: 512,
					Usage: "frame height",
				},
				cli.IntFlag{
					Name:  "frames",
					Value: 1,
					Usage: "number of frames to render along the camera orbit",
				},
				cli.IntFlag{
					Name:  "max-depth",
					Value: 0,
					Usage: "reflection bounce budget (0 keeps the scene default)",
				},
				cli.StringFlag{
					Name:  "shader-dir",
					Value: "shaders",
					Usage: "directory scanned for surface shader fragments",
				},
				cli.StringFlag{
					Name:  "emissive-shader",
					Usage: "surface shader entry function to apply to the emissive sphere",
				},
				cli.StringFlag{
					Name:  "volume-dat",
					Usage: "volume metadata file",
				},
				cli.StringFlag{
					Name:  "volume-raw",
					Usage: "volume raw density file",
				},
				cli.BoolFlag{
					Name:  "cpu",
					Usage: "render on the host instead of a webgpu device",
				},
				cli.StringFlag{
					Name:  "device, d",
					Usage: "only use webgpu devices whose names contain this value",
				},
				cli.StringSliceFlag{
					Name:  "blacklist, b",
					Value: &cli.StringSlice{},
					Usage: "blacklist webgpu devices whose names contain this value",
				},
				cli.StringFlag{
					Name:  "force-primary",
					Usage: "promote the device whose name contains this value to primary",
				},
				cli.StringFlag{
					Name:  "out, o",
					Value: "frame.ppm",
					Usage: "image filename for the rendered frame",
				},
			},
			Action: cmd.RenderFrame,
		},
	}

	app.Run(os.Args)
}
