package main

import (
	"log"
	"os"
	"runtime"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/xlab/closer"

	"voxelview/internal/config"
	"voxelview/internal/viewer"
)

const configPath = "voxelview.yaml"

func init() {
	runtime.LockOSThread()
}

func main() {
	logger := log.New(os.Stdout, "[voxelview] ", log.LstdFlags|log.Lmicroseconds)

	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		logger.Fatalf("config: %v", err)
	}

	if err := glfw.Init(); err != nil {
		logger.Fatalf("glfw: %v", err)
	}

	window, err := setupWindow()
	if err != nil {
		glfw.Terminate()
		logger.Fatalf("window: %v", err)
	}

	app, err := viewer.New(window, cfg, logger)
	if err != nil {
		glfw.Terminate()
		logger.Fatalf("viewer: %v", err)
	}

	// GL state may only be touched from this thread, so a signal just asks
	// the frame loop to stop and waits for it to dispose.
	done := make(chan struct{})
	closer.Bind(func() {
		window.SetShouldClose(true)
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			logger.Printf("frame loop did not stop; exiting without cleanup")
		}
	})

	logger.Printf("streaming from %s, view radius %d, chunk size %d", cfg.Endpoint, cfg.ViewRadius, cfg.ChunkSize)
	app.Run()
	app.Dispose()
	glfw.Terminate()
	close(done)
	closer.Close()
}

func setupWindow() (*glfw.Window, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)

	window, err := glfw.CreateWindow(1280, 720, "voxelview", nil, nil)
	if err != nil {
		return nil, err
	}
	window.MakeContextCurrent()
	glfw.SwapInterval(0) // frame rate is capped by viewer.FPSLimiter
	return window, nil
}
