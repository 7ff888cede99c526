package cmd

import (
	"errors"
	"os"

	"github.com/achilleasa/prism/renderer"
	"github.com/urfave/cli"
)

// Export BVH bounds and vertex normals of a scene as OBJ line elements.
func Debug(ctx *cli.Context) error {
	if err := setupLogging(ctx); err != nil {
		return err
	}

	if ctx.NArg() != 1 {
		return errors.New("missing scene file argument")
	}

	desc, comp, err := compileScene(ctx, ctx.Args().First())
	if err != nil {
		return err
	}

	sc, err := comp.Compile(desc.Registry)
	if err != nil {
		return err
	}

	var lines []renderer.Line
	if !ctx.Bool("no-bvh") {
		lines = append(lines, renderer.BvhLines(sc.MeshBvh)...)
		lines = append(lines, renderer.BvhLines(sc.SphereBvh)...)
	}
	if length := float32(ctx.Float64("normal-length")); length > 0 {
		lines = append(lines, renderer.MeshNormalLines(sc, length)...)
	}

	outFile := ctx.String("out")
	f, err := os.Create(outFile)
	if err != nil {
		return err
	}
	defer f.Close()

	if err = renderer.WriteOBJ(f, lines); err != nil {
		return err
	}

	logger.Noticef("wrote %d debug lines to %s", len(lines), outFile)
	return f.Close()
}
