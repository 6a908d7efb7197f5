// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Command carbon opens a window and draws a spinning quad with Vulkan
package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"runtime/pprof"
	"runtime/trace"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	log "github.com/sirupsen/logrus"
	vk "github.com/vulkan-go/vulkan"

	"github.com/devblok/carbon/core"
	"github.com/devblok/carbon/core/renderer"
	"github.com/devblok/carbon/platform"
)

func init() {
	runtime.LockOSThread()
}

// Profiling
var (
	cpuProfile   = flag.String("cpuprof", "", "Profile CPU usage to file")
	memProfile   = flag.String("memprof", "", "Profile memory usage into a file")
	traceProfile = flag.String("trace", "", "Trace output for profiling")
)

// Settings, these override the environment
var (
	validation = flag.Bool("validation", false, "Load Vulkan validation layers")
	envFile    = flag.String("env", "", "Load settings from a .env file")
	backend    = flag.String("window", "", "Window backend, sdl or glfw")
	shaders    = flag.String("shaders", "", "Directory or .kar archive holding vert.spv and frag.spv")
	fps        = flag.Int("fps", -1, "Frames per second cap, 0 is unlimited")
)

func main() {
	flag.Parse()

	if err := run(); err != nil {
		log.WithError(err).Fatal("carbon stopped")
	}
}

func configure() (core.Configuration, error) {
	var files []string
	if *envFile != "" {
		files = append(files, *envFile)
	}

	configuration, err := core.LoadEnvironment(core.DefaultConfiguration(), files...)
	if err != nil {
		return configuration, err
	}

	if *validation {
		configuration.Instance.EnableValidationLayers = true
	}
	if *backend != "" {
		configuration.Window.Backend = *backend
	}
	if *shaders != "" {
		configuration.Renderer.ShaderDirectory = *shaders
	}
	if *fps >= 0 {
		configuration.Time.FramesPerSecond = *fps
	}
	return configuration, configuration.Validate()
}

func run() error {
	configuration, err := configure()
	if err != nil {
		return err
	}
	logger := core.NewLogger(configuration.Log, os.Stderr)

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			return errors.Wrap(err, "cpu profile")
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return errors.Wrap(err, "cpu profile")
		}
		defer pprof.StopCPUProfile()
	}

	if *traceProfile != "" {
		f, err := os.Create(*traceProfile)
		if err != nil {
			return errors.Wrap(err, "trace")
		}
		defer f.Close()
		if err := trace.Start(f); err != nil {
			return errors.Wrap(err, "trace")
		}
		defer trace.Stop()
	}

	if *memProfile != "" {
		defer writeHeapProfile(*memProfile, logger)
	}

	window, err := platform.Open(configuration.Window)
	if err != nil {
		return err
	}
	defer window.Destroy()

	instanceConfiguration := configuration.Instance
	instanceConfiguration.Extensions = append(window.RequiredInstanceExtensions(), instanceConfiguration.Extensions...)
	instance, err := core.NewVulkanInstance(core.DefaultVulkanApplicationInfo, window.ProcAddr(), instanceConfiguration, logger)
	if err != nil {
		return err
	}
	defer instance.Destroy()

	surface, err := window.CreateSurface(instance.Handle())
	if err != nil {
		return err
	}
	defer vk.DestroySurface(instance.Handle(), surface, nil)

	shaderSource, releaseShaders, err := renderer.OpenShaderSource(configuration.Renderer.ShaderDirectory)
	if err != nil {
		return err
	}
	defer releaseShaders()

	vkRenderer := renderer.NewVulkanRenderer(instance, surface, window, shaderSource, configuration.Renderer, logger)
	if err := vkRenderer.Initialise(); err != nil {
		return err
	}
	defer vkRenderer.Destroy()

	pacer, err := vkRenderer.NewFramePacer(window)
	if err != nil {
		return err
	}
	window.OnFramebufferResize(func(width, height int) {
		pacer.FramebufferResized()
	})

	timeService := core.NewTime(configuration.Time)
	defer timeService.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	programSync := sync.WaitGroup{}

	/* Frame rate reporting */
	if interval := timeService.ReportInterval(); interval > 0 {
		programSync.Add(1)
		go func() {
			defer programSync.Done()
			reportFrameRate(ctx, pacer, interval, logger)
		}()
	}

	/* Event and draw loop */
	err = pacer.Run(window, timeService.Limiter())
	cancel()
	programSync.Wait()
	return err
}

func reportFrameRate(ctx context.Context, pacer *renderer.FramePacer, interval time.Duration, logger log.FieldLogger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := pacer.Presented()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			current := pacer.Presented()
			logger.WithFields(log.Fields{
				"fps":       float64(current-last) / interval.Seconds(),
				"cgo_calls": runtime.NumCgoCall(),
			}).Info("frame rate")
			last = current
		}
	}
}

func writeHeapProfile(path string, logger log.FieldLogger) {
	f, err := os.Create(path)
	if err != nil {
		logger.WithError(err).Error("memory profile")
		return
	}
	defer f.Close()
	if err := pprof.WriteHeapProfile(f); err != nil {
		logger.WithError(err).Error("memory profile")
	}
}
