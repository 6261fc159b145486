// Package app is a windowed viewer for the shadow pipeline: it animates a small
// scene, runs one pipeline tick per frame and shows the published shadow map.
package app

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/gekko3d/shadows"
	"github.com/gekko3d/shadows/rt/core"
	"github.com/gekko3d/shadows/rt/debugview"
	"github.com/gekko3d/shadows/rt/gpu"
	"github.com/gekko3d/shadows/rt/pipeline"
	"github.com/go-gl/glfw/v3.3/glfw"
)

type App struct {
	Window   *glfw.Window
	Instance *wgpu.Instance
	Adapter  *wgpu.Adapter
	Device   *wgpu.Device
	Queue    *wgpu.Queue
	Surface  *wgpu.Surface
	Config   *wgpu.SurfaceConfiguration

	Logger   shadows.Logger
	Profiler *Profiler
	Keywords *core.Keywords
	Scene    *DemoScene
	Backend  *gpu.Backend
	Pipeline *pipeline.Pipeline

	ShadowConfig  shadows.Config
	SnapshotDir   string
	SnapshotSize  int
	Paused        bool
	snapshotQueue bool

	preview *preview

	simTime        float64
	LastRenderTime float64
	FPS            float64
	FrameCount     int
	FPSTime        float64
	lastTitle      float64
}

func NewApp(window *glfw.Window, cfg shadows.Config, logger shadows.Logger) *App {
	if logger == nil {
		logger = shadows.NewNopLogger()
	}
	return &App{
		Window:       window,
		Logger:       logger,
		Profiler:     NewProfiler(),
		Keywords:     core.NewKeywords(),
		Scene:        NewDemoScene(),
		ShadowConfig: cfg.Normalize(),
		SnapshotDir:  ".",
		SnapshotSize: debugview.DefaultThumbnail,
	}
}

func (a *App) Init() error {
	a.Instance = wgpu.CreateInstance(nil)

	surface := a.Instance.CreateSurface(GetSurfaceDescriptor(a.Window))
	a.Surface = surface

	adapter, err := a.Instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return err
	}
	a.Adapter = adapter

	a.Device, err = adapter.RequestDevice(nil)
	if err != nil {
		return err
	}
	a.Queue = a.Device.GetQueue()

	width, height := a.Window.GetFramebufferSize()
	caps := surface.GetCapabilities(adapter)
	if len(caps.Formats) == 0 || len(caps.AlphaModes) == 0 {
		return errors.New("surface reports no formats")
	}
	format := caps.Formats[0]

	a.Config = &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      format,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: wgpu.PresentModeFifo,
		AlphaMode:   caps.AlphaModes[0],
	}
	surface.Configure(adapter, a.Device, a.Config)

	a.Backend, err = gpu.New(a.Device, a.Keywords, a.Logger)
	if err != nil {
		return fmt.Errorf("shadow backend: %w", err)
	}
	a.Pipeline, err = pipeline.New(a.ShadowConfig, a.Scene, a.Backend, a.Keywords,
		pipeline.WithLogger(a.Logger),
		pipeline.WithProfiler(a.Profiler),
	)
	if err != nil {
		return fmt.Errorf("shadow pipeline: %w", err)
	}
	a.preview = newPreview(a.Device, format)

	a.Logger.Infof("shadow demo ready: %s, %d casters", a.ShadowConfig.TargetDesc(), len(a.Scene.Casters))
	return nil
}

func (a *App) Resize(w, h int) {
	if w > 0 && h > 0 {
		a.Config.Width = uint32(w)
		a.Config.Height = uint32(h)
		a.Surface.Configure(a.Adapter, a.Device, a.Config)
	}
}

// Update advances the scene by dt seconds and runs one shadow tick.
func (a *App) Update(dt float64) error {
	a.Profiler.Reset()
	if !a.Paused {
		a.simTime += dt
		a.Scene.Animate(a.simTime)
	}
	a.Scene.Commit()
	if err := a.Backend.SetCasters(a.Scene.Casters); err != nil {
		return err
	}
	if err := a.Pipeline.Tick(); err != nil {
		return err
	}
	if a.snapshotQueue {
		a.snapshotQueue = false
		path, err := a.Snapshot()
		if err != nil {
			a.Logger.Warnf("snapshot failed: %v", err)
		} else {
			a.Logger.Infof("snapshot written to %s", path)
		}
	}
	return nil
}

func (a *App) Render() {
	nextTexture, err := a.Surface.GetCurrentTexture()
	if err != nil {
		a.Logger.Errorf("GetCurrentTexture failed: %v", err)
		return
	}
	defer nextTexture.Release()

	view, err := nextTexture.CreateView(nil)
	if err != nil {
		a.Logger.Errorf("CreateView failed: %v", err)
		return
	}
	defer view.Release()

	encoder, err := a.Device.CreateCommandEncoder(nil)
	if err != nil {
		a.Logger.Errorf("CreateCommandEncoder failed: %v", err)
		return
	}
	defer encoder.Release()

	rPass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: wgpu.Color{R: 0.1, G: 0.05, B: 0.1, A: 1},
		}},
	})
	if state, ok := a.Pipeline.Published(); ok && !state.Texture.IsZero() {
		shadowView, _, found := a.Backend.View(state.Texture)
		desc, _ := a.Backend.Desc(state.Texture)
		if found {
			rp, bg, err := a.preview.bind(state.Texture, shadowView, desc.Format.IsDepth())
			if err != nil {
				a.Logger.Errorf("preview: %v", err)
			} else {
				rPass.SetPipeline(rp)
				rPass.SetBindGroup(0, bg, nil)
				rPass.Draw(3, 1, 0, 0)
			}
		}
	}
	if err := rPass.End(); err != nil {
		a.Logger.Errorf("Render pass End failed: %v", err)
	}

	cmd, err := encoder.Finish(nil)
	if err != nil {
		a.Logger.Errorf("Encoder Finish failed: %v", err)
		return
	}
	a.Queue.Submit(cmd)
	a.Surface.Present()

	a.updateFPS(glfw.GetTime())
}

func (a *App) updateFPS(now float64) {
	if a.LastRenderTime > 0 {
		a.FrameCount++
		a.FPSTime += now - a.LastRenderTime
		if a.FPSTime >= 1.0 {
			a.FPS = float64(a.FrameCount) / a.FPSTime
			a.FrameCount = 0
			a.FPSTime = 0
		}
	}
	a.LastRenderTime = now

	if now-a.lastTitle >= 0.5 {
		a.lastTitle = now
		a.Window.SetTitle(a.Title())
	}
}

// Title is the window caption: technique, target, fps and profiler summary.
func (a *App) Title() string {
	cfg := a.ShadowConfig
	return fmt.Sprintf("Shadows | %s %s blur %d | %.0f fps | %s",
		cfg.Technique, cfg.TargetDesc(), cfg.BlurPasses(), a.FPS, a.Profiler.Summary())
}

// HandleKey applies one key press to the shadow config and app state.
func (a *App) HandleKey(key glfw.Key, action glfw.Action) {
	if action != glfw.Press && action != glfw.Repeat {
		return
	}
	switch Command(key) {
	case CommandQuit:
		a.Window.SetShouldClose(true)
		return
	case CommandPause:
		a.Paused = !a.Paused
		return
	case CommandSnapshot:
		a.snapshotQueue = true
		return
	case CommandDebug:
		a.Logger.SetDebug(!a.Logger.DebugEnabled())
		return
	}
	cfg, changed := ApplyKey(a.ShadowConfig, key)
	if !changed {
		return
	}
	a.ShadowConfig = cfg
	a.Pipeline.SetConfig(cfg)
	a.Logger.Infof("shadow config: %s %s blur %d transparent %v",
		cfg.Technique, cfg.TargetDesc(), cfg.BlurIterations, cfg.DrawTransparent)
}

// Snapshot reads back the published texture and writes a labelled PNG.
func (a *App) Snapshot() (string, error) {
	state, ok := a.Pipeline.Published()
	if !ok || state.Texture.IsZero() {
		return "", errors.New("no shadow texture published")
	}
	rb, err := a.Backend.ReadbackTarget(state.Texture)
	if err != nil {
		return "", err
	}
	img, err := debugview.Render(rb, state, a.SnapshotSize)
	if err != nil {
		return "", err
	}
	name := fmt.Sprintf("shadow_%s_%s.png", state.Technique, time.Now().Format("20060102_150405"))
	path := filepath.Join(a.SnapshotDir, name)
	if err := debugview.Save(path, img); err != nil {
		return "", err
	}
	return path, nil
}

// Release tears down in reverse bring-up order.
func (a *App) Release() {
	if a.Pipeline != nil {
		a.Pipeline.Shutdown()
	}
	if a.preview != nil {
		a.preview.release()
	}
	if a.Backend != nil {
		a.Backend.Release()
	}
	if a.Device != nil {
		a.Device.Release()
	}
	if a.Adapter != nil {
		a.Adapter.Release()
	}
	if a.Surface != nil {
		a.Surface.Release()
	}
	if a.Instance != nil {
		a.Instance.Release()
	}
}

func GetSurfaceDescriptor(w *glfw.Window) *wgpu.SurfaceDescriptor {
	return wgpuglfw.GetSurfaceDescriptor(w)
}
