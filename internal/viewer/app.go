// Package viewer is the interactive shell: window, input, camera, the frame
// loop, and the chunk streamer driven by the camera.
package viewer

import (
	"log"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"

	"voxelview/internal/config"
	"voxelview/internal/graphics"
	"voxelview/internal/input"
	"voxelview/internal/player"
	"voxelview/internal/profiling"
	"voxelview/internal/scene"
	"voxelview/internal/streaming"
)

const statsInterval = 5 * time.Second

type App struct {
	log    *log.Logger
	window *glfw.Window

	keys   *input.KeyState
	lock   *input.PointerLock
	camera *player.Camera
	proj   *graphics.Projection

	device   *graphics.Device
	renderer *graphics.Renderer
	scene    *scene.Context
	streamer *streaming.Streamer

	limiter   *FPSLimiter
	lastTime  time.Time
	lastStats time.Time
	disposed  bool
}

// New builds the viewer on window, whose GL context must be current.
func New(window *glfw.Window, cfg config.Config, logger *log.Logger) (*App, error) {
	device, err := graphics.NewDevice()
	if err != nil {
		return nil, err
	}
	renderer, err := graphics.NewRenderer(device)
	if err != nil {
		return nil, err
	}
	sc, err := scene.NewContext(device, scene.DefaultMaterials())
	if err != nil {
		renderer.Dispose()
		return nil, err
	}
	streamer, err := streaming.New(cfg, sc, streaming.WithLogger(logger))
	if err != nil {
		sc.Close()
		renderer.Dispose()
		return nil, err
	}

	camera := player.NewCamera(mgl32.Vec3(cfg.CameraInitial), cfg.MoveSpeed, cfg.MaxFrameDelta)
	keys := input.NewKeyState()
	lock := input.NewPointerLock(window, camera.Look)
	lock.Attach(window, keys)

	width, height := window.GetFramebufferSize()
	proj := graphics.NewProjection(width, height)
	renderer.SetViewport(width, height)
	window.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		proj.SetViewport(width, height)
		renderer.SetViewport(width, height)
	})

	now := time.Now()
	return &App{
		log:       logger,
		window:    window,
		keys:      keys,
		lock:      lock,
		camera:    camera,
		proj:      proj,
		device:    device,
		renderer:  renderer,
		scene:     sc,
		streamer:  streamer,
		limiter:   NewFPSLimiter(cfg.FPSLimit),
		lastTime:  now,
		lastStats: now,
	}, nil
}

func (a *App) Run() {
	for !a.window.ShouldClose() {
		a.tick()
	}
}

func (a *App) tick() {
	profiling.ResetFrame()
	startTick := time.Now()
	dt := startTick.Sub(a.lastTime).Seconds()
	a.lastTime = startTick

	glfw.PollEvents()

	if a.lock.IsLocked() {
		a.camera.Step(a.keys, dt)
	}
	a.streamer.Update(a.camera.Position)
	a.streamer.Pump()

	a.renderer.Render(a.scene.Scene, a.camera.ViewMatrix(), a.proj.Matrix())
	a.window.SwapBuffers()

	if d := time.Since(startTick); d > 16*time.Millisecond {
		a.log.Printf("Slow frame: %v. Top tasks: %s", d, profiling.TopN(5))
	}
	if startTick.Sub(a.lastStats) >= statsInterval {
		a.lastStats = startTick
		st := a.streamer.Stats()
		a.log.Printf("chunks: %d live, %d loading, %d remote, %d local, %d failed, %d evicted, %d gpu objects",
			st.Live, st.InFlight, st.RemoteLoads, st.LocalLoads, st.Failures, st.Evictions, a.device.Live())
	}

	a.limiter.Wait()
}

// Dispose stops streaming, releases input and frees GPU resources. It must
// run on the render thread; later calls do nothing.
func (a *App) Dispose() {
	if a.disposed {
		return
	}
	a.disposed = true

	a.streamer.Dispose()
	a.lock.Release(a.window)
	a.keys.Release(a.window)
	a.window.SetFramebufferSizeCallback(nil)
	a.scene.Close()
	a.renderer.Dispose()
	a.log.Printf("disposed; %d gpu objects left", a.device.Live())
}
