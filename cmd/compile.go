package cmd

import (
	"strings"

	"github.com/achilleasa/prism/scene/writer"
	"github.com/urfave/cli"
)

// Compile scene to binary format.
func CompileScene(ctx *cli.Context) error {
	if err := setupLogging(ctx); err != nil {
		return err
	}

	for idx := 0; idx < ctx.NArg(); idx++ {
		sceneFile := ctx.Args().Get(idx)
		if !strings.HasSuffix(sceneFile, ".json") {
			logger.Warningf("skipping unsupported file %s", sceneFile)
			continue
		}

		logger.Noticef("parsing and compiling scene: %s", sceneFile)
		desc, comp, err := compileScene(ctx, sceneFile)
		if err != nil {
			return err
		}

		sc, err := comp.Compile(desc.Registry)
		if err != nil {
			return err
		}

		// Display compiled scene info
		logger.Noticef("scene information:\n%s", sc.Stats())

		zipFile := strings.TrimSuffix(sceneFile, ".json") + ".zip"
		if err = writer.WriteFile(zipFile, sc, desc.Camera); err != nil {
			return err
		}
	}

	return nil
}
