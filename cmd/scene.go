package cmd

import (
	"errors"
	"strings"

	"github.com/achilleasa/prism/scene/bvh"
	"github.com/achilleasa/prism/scene/compiler"
	"github.com/achilleasa/prism/scene/reader"
	"github.com/urfave/cli"
)

// Load a scene description and compile it using the strategy and
// verification flags of the current command.
func compileScene(ctx *cli.Context, sceneFile string) (*reader.Description, *compiler.Compiler, error) {
	strategy, err := bvh.ParseStrategy(ctx.String("strategy"))
	if err != nil {
		return nil, nil, err
	}

	desc, err := reader.ReadScene(sceneFile)
	if err != nil {
		return nil, nil, err
	}

	comp := compiler.New(strategy)
	comp.Verify = ctx.Bool("verify")
	if ctx.IsSet("weld-epsilon") {
		comp.SetWeldEpsilon(float32(ctx.Float64("weld-epsilon")))
	}
	return desc, comp, nil
}

// Build the BVH trees for a scene and display build statistics.
func BuildBvh(ctx *cli.Context) error {
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

	logger.Noticef("scene information:\n%s", sc.Stats())
	logger.Noticef("mesh BVH statistics:\n%s", comp.MeshStats)
	logger.Noticef("sphere BVH statistics:\n%s", comp.SphereStats)
	if ctx.Bool("dump") {
		logger.Noticef("mesh BVH:\n%s", sc.MeshBvh)
		logger.Noticef("sphere BVH:\n%s", sc.SphereBvh)
	}
	return nil
}

// Display compiled scene info.
func ShowSceneInfo(ctx *cli.Context) error {
	if err := setupLogging(ctx); err != nil {
		return err
	}

	if ctx.NArg() != 1 {
		return errors.New("missing compiled scene zip file")
	}

	sceneFile := ctx.Args().First()
	if !strings.HasSuffix(sceneFile, ".zip") {
		return errors.New("only compiled scene files with a .zip extension are supported")
	}

	sc, _, err := reader.ReadCompiled(sceneFile)
	if err != nil {
		return err
	}

	// Display compiled scene info
	logger.Noticef("scene information:\n%s", sc.Stats())
	if !bvh.RootEnclosesLeaves(sc.MeshBvh) || !bvh.RootEnclosesLeaves(sc.SphereBvh) {
		logger.Warning("BVH root does not enclose all leaves")
	}

	return nil
}
