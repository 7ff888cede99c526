package cmd

import (
	"github.com/achilleasa/prism/log"
	"github.com/urfave/cli"
)

var logger = log.New("prism")

func setupLogging(ctx *cli.Context) error {
	if ctx.GlobalIsSet("log-level") {
		log.SetVerbosity(ctx.GlobalInt("log-level"))
	}

	if ctx.GlobalBool("v") {
		log.SetLevel(log.Info)
	}

	if ctx.GlobalBool("vv") {
		log.SetLevel(log.Debug)
	}

	if logFile := ctx.GlobalString("log-file"); logFile != "" {
		if err := log.SetLogFile(logFile); err != nil {
			return err
		}
	}
	return nil
}
