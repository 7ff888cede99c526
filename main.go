package main

import (
	"os"

	"github.com/achilleasa/prism/cmd"
	"github.com/achilleasa/prism/log"
	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	buildFlags := []cli.Flag{
		cli.StringFlag{
			Name:  "strategy, s",
			Value: "bottom-up",
			Usage: "BVH build strategy (bottom-up or top-down)",
		},
		cli.BoolFlag{
			Name:  "verify",
			Usage: "validate the generated BVH trees",
		},
		cli.Float64Flag{
			Name:  "weld-epsilon",
			Value: 1e-5,
			Usage: "distance under which vertices share normals; 0 matches exact positions only",
		},
	}

	app := cli.NewApp()
	app.Name = "prism"
	app.Usage = "build BVH trees and render scenes with a GPU ray tracer"
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
		cli.IntFlag{
			Name:  "log-level",
			Value: 2,
			Usage: "log verbosity from 0 (errors only) to 3 (debug)",
		},
		cli.StringFlag{
			Name:  "log-file",
			Usage: "append log output to this file",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "build",
			Usage: "build the BVH trees for a scene and display statistics",
			Description: `
Parse a JSON scene description, collect its geometry and build a BVH tree
for its meshes and its spheres using the selected strategy.`,
			ArgsUsage: "scene.json",
			Flags: append([]cli.Flag{
				cli.BoolFlag{
					Name:  "dump",
					Usage: "print the flattened BVH nodes",
				},
			}, buildFlags...),
			Action: cmd.BuildBvh,
		},
		{
			Name:  "compile",
			Usage: "compile text scene representation into a binary compressed format",
			Description: `
Parse a JSON scene description, build the BVH trees and encode all scene
buffers using the fixed-stride layouts expected by the compute kernel.

The encoded buffers are then written to a zip archive next to the scene file.`,
			ArgsUsage: "scene_file1.json scene_file2.json ...",
			Flags:     buildFlags,
			Action:    cmd.CompileScene,
		},
		{
			Name:      "info",
			Usage:     "display information about a compiled scene",
			ArgsUsage: "scene.zip",
			Action:    cmd.ShowSceneInfo,
		},
		{
			Name:      "render",
			Usage:     "render progressive samples of a scene",
			ArgsUsage: "scene.json",
			Flags: append([]cli.Flag{
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
					Value: 16,
					Usage: "number of progressive samples to render",
				},
				cli.IntFlag{
					Name:  "num-bounces",
					Value: 8,
					Usage: "number of indirect ray bounces",
				},
				cli.IntFlag{
					Name:  "rays",
					Value: 1,
					Usage: "rays per pixel and sample",
				},
				cli.Int64Flag{
					Name:  "seed",
					Usage: "random seed; 0 seeds from the current time",
				},
				cli.StringFlag{
					Name:  "kernel, k",
					Usage: "load the compute kernel from a WGSL file",
				},
				cli.BoolFlag{
					Name:  "fallback",
					Usage: "use a software adapter",
				},
				cli.BoolFlag{
					Name:  "screenshot",
					Usage: "save a screenshot after the last sample",
				},
				cli.StringFlag{
					Name:  "out, o",
					Value: ".",
					Usage: "screenshot directory; send SIGUSR1 to capture while rendering",
				},
			}, buildFlags...),
			Action: cmd.RenderFrames,
		},
		{
			Name:      "debug",
			Usage:     "export BVH bounds and vertex normals as OBJ line elements",
			ArgsUsage: "scene.json",
			Flags: append([]cli.Flag{
				cli.StringFlag{
					Name:  "out, o",
					Value: "debug.obj",
					Usage: "output OBJ file",
				},
				cli.Float64Flag{
					Name:  "normal-length",
					Value: 0.1,
					Usage: "length of normal segments; 0 disables them",
				},
				cli.BoolFlag{
					Name:  "no-bvh",
					Usage: "skip BVH bounds",
				},
			}, buildFlags...),
			Action: cmd.Debug,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.New("prism").Error(err)
		os.Exit(1)
	}
}
