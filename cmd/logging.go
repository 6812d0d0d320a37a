package cmd

import (
	"github.com/Pascu-Victor/path-tracer/log"
	"github.com/urfave/cli"
)

var logger = log.New("path-tracer")

func setupLogging(ctx *cli.Context) {
	if ctx.GlobalBool("v") {
		log.SetLevel(log.Info)
	}

	if ctx.GlobalBool("vv") {
		log.SetLevel(log.Debug)
	}
}
