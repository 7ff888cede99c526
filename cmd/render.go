package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/achilleasa/prism/renderer"
	"github.com/achilleasa/prism/tracer/webgpu"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// Render progressive samples of a scene.
func RenderFrames(ctx *cli.Context) error {
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

	opts := renderer.Options{
		FrameW:        uint32(ctx.Int("width")),
		FrameH:        uint32(ctx.Int("height")),
		NumBounces:    uint32(ctx.Int("num-bounces")),
		RaysPerPixel:  uint32(ctx.Int("rays")),
		Strategy:      comp.Strategy,
		Verify:        comp.Verify,
		ScreenshotDir: ctx.String("out"),
		Seed:          ctx.Int64("seed"),
	}

	// Setup device and kernel
	dev, err := webgpu.NewDevice("prism", ctx.Bool("fallback"))
	if err != nil {
		return err
	}
	defer dev.Close()

	var source string
	if kernelFile := ctx.String("kernel"); kernelFile != "" {
		data, err := os.ReadFile(kernelFile)
		if err != nil {
			return err
		}
		source = string(data)
	}

	kernel, err := webgpu.NewKernel("tr-0", dev, source)
	if err != nil {
		return err
	}

	r, err := renderer.NewDriver(desc.Registry, desc.Camera, kernel, dev, opts)
	if err != nil {
		kernel.Close()
		return err
	}
	defer r.Close()

	// SIGUSR1 captures the converged image
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGUSR1)
	defer signal.Stop(sigChan)
	go func() {
		for range sigChan {
			r.RequestScreenshot()
		}
	}()

	frames := ctx.Int("frames")
	for frame := 0; frame < frames; frame++ {
		if frame == frames-1 && ctx.Bool("screenshot") {
			r.RequestScreenshot()
		}
		if err = r.Render(); err != nil {
			return err
		}
		logger.Debugf("rendered sample %d in %s", r.Stats().Sample, r.Stats().RenderTime)
	}

	// Display stats
	displayFrameStats(r.Stats())

	return nil
}

func displayFrameStats(stats renderer.FrameStats) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Kernel", "Sample", "Rebuilt", "Scene size", "Rebuild time", "Dispatch time"})
	table.Append([]string{
		stats.Kernel,
		fmt.Sprintf("%d", stats.Sample),
		fmt.Sprintf("%t", stats.Rebuilt),
		fmt.Sprintf("%d", stats.SceneBytes),
		stats.RebuildTime.String(),
		stats.DispatchTime.String(),
	})
	table.SetFooter([]string{"", "", "", "", "TOTAL", stats.RenderTime.String()})

	table.Render()
	logger.Noticef("frame statistics\n%s", buf.String())
}
