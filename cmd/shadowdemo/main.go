package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"

	"github.com/gekko3d/shadows"
	"github.com/gekko3d/shadows/rt/app"
	"github.com/gekko3d/shadows/rt/core"
	"github.com/go-gl/glfw/v3.3/glfw"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	def := shadows.DefaultConfig()
	resolution := flag.Int("resolution", def.Resolution, "Shadow map resolution (16-8192)")
	technique := flag.String("technique", "hard", "Shadow technique: none, hard, pcf, variance, mv")
	filter := flag.String("filter", def.Filter.String(), "Shadow texture filter: point, bilinear, trilinear")
	blur := flag.Int("blur", def.BlurIterations, "Variance blur iterations (0-100)")
	intensity := flag.Float64("intensity", float64(def.MaxShadowIntensity), "Max shadow intensity (0-1)")
	expansion := flag.Float64("expansion", float64(def.VarianceExpansion), "Variance shadow expansion (0-1)")
	transparent := flag.Bool("transparent", def.DrawTransparent, "Let transparent objects cast shadows")
	snapshots := flag.String("snapshots", ".", "Directory for PNG snapshots (P key)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	cfg := def
	var err error
	cfg.Technique, cfg.Sampling, err = core.ParseTechnique(*technique)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	cfg.Filter, err = core.ParseFilter(*filter)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	cfg.Resolution = *resolution
	cfg.BlurIterations = *blur
	cfg.MaxShadowIntensity = float32(*intensity)
	cfg.VarianceExpansion = float32(*expansion)
	cfg.DrawTransparent = *transparent

	logger := shadows.NewDefaultLogger("shadowdemo", *debug)

	if err := glfw.Init(); err != nil {
		panic(err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	window, err := glfw.CreateWindow(1024, 1024, "Shadows", nil, nil)
	if err != nil {
		panic(err)
	}
	defer window.Destroy()

	application := app.NewApp(window, cfg, logger)
	application.SnapshotDir = *snapshots
	if err := application.Init(); err != nil {
		panic(err)
	}
	defer application.Release()

	window.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		application.Resize(width, height)
	})
	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		application.HandleKey(key, action)
	})

	last := glfw.GetTime()
	for !window.ShouldClose() {
		glfw.PollEvents()
		now := glfw.GetTime()
		if err := application.Update(now - last); err != nil {
			logger.Errorf("shadow frame failed: %v", err)
			window.SetShouldClose(true)
		}
		last = now
		application.Render()
	}
}
