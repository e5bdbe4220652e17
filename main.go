package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/pkg/errors"

	"bms-hero/internal/chartapi"
	"bms-hero/internal/chartmidi"
	"bms-hero/internal/chartprint"
	"bms-hero/internal/cbms"
)

func main() {
	var (
		chartPath  = flag.String("chart", "", "chart file to load (defaults to the config's chart)")
		configPath = flag.String("config", "config.yaml", "path to the YAML config")
		debug      = flag.Bool("debug", false, "enable debug logging")
		bar        = flag.Int("bar", -1, "print the slot grid of one bar and exit")
		timed      = flag.Bool("timed", false, "print every command with its absolute time and exit")
		resources  = flag.Bool("resources", false, "print the chart's resource table and exit")
		export     = flag.String("export", "", "write the chart as a standard MIDI file and exit")
		serve      = flag.Bool("serve", false, "serve the chart over HTTP")
		scan       = flag.String("scan", "", "compile every chart in a directory and exit")
	)
	flag.Parse()

	setupLogging(*debug)

	cfg, err := LoadConfig(*configPath)
	if errors.Is(err, os.ErrNotExist) {
		logWarn("%v, using defaults", err)
	} else if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if *scan != "" {
		failed, err := scanCharts(*scan)
		if err != nil {
			log.Fatalf("Failed to scan %s: %v", *scan, err)
		}
		if failed > 0 {
			os.Exit(1)
		}
		return
	}

	if *chartPath == "" {
		*chartPath = cfg.Chart
	}
	chartProcessor := NewChartProcessor()
	if err := chartProcessor.LoadChart(*chartPath); err != nil {
		log.Fatalf("Failed to load chart: %v", err)
	}

	switch {
	case *bar >= 0:
		err := chartprint.PrintBar(os.Stdout, chartProcessor.Chart(), *bar, cfg.Printer.FirstChannel, cfg.Printer.Channels)
		if errors.Is(err, cbms.ErrBarIsEmpty) {
			fmt.Printf("Bar %d is empty\n", *bar)
			return
		}
		if err != nil {
			log.Fatalf("Failed to print bar %d: %v", *bar, err)
		}
		return
	case *timed:
		if err := chartprint.PrintTimed(os.Stdout, chartProcessor.Chart(), chartProcessor.Timings()); err != nil {
			log.Fatalf("Failed to print timed commands: %v", err)
		}
		return
	case *resources:
		fmt.Println("Printing current resource table:")
		if err := chartprint.PrintResources(os.Stdout, chartProcessor.Resources()); err != nil {
			log.Fatalf("Failed to print resources: %v", err)
		}
		return
	case *export != "":
		if err := exportMIDI(*export, chartProcessor, cfg); err != nil {
			log.Fatalf("Failed to export MIDI: %v", err)
		}
		fmt.Printf("Wrote %s\n", *export)
		return
	case *serve:
		server := chartapi.NewServer(chartProcessor.Meta(), chartProcessor.Chart(), chartProcessor.Timings(), chartProcessor.Resources())
		fmt.Printf("Serving chart on %s\n", cfg.Server.Addr)
		if err := server.Run(cfg.Server.Addr); err != nil {
			log.Fatalf("Server stopped: %v", err)
		}
		return
	}

	runGame(cfg, chartProcessor)
}

func exportMIDI(path string, cp *ChartProcessor, cfg Config) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return chartmidi.Export(f, cp.Chart(), cp.Timings(), chartmidi.Options{
		Resolution: cfg.MIDI.Resolution,
		Channel:    cfg.MIDI.Channel,
		Name:       cp.Meta().Title,
	})
}

func runGame(cfg Config, chartProcessor *ChartProcessor) {
	fmt.Println("BMS Hero - Starting...")

	rl.InitWindow(cfg.Window.Width, cfg.Window.Height, "BMS Hero")
	defer rl.CloseWindow()

	rl.SetTargetFPS(cfg.Window.FPS)
	rl.SetExitKey(rl.KeyEscape)

	game := NewGame(cfg)
	if err := game.LoadChart(chartProcessor); err != nil {
		log.Fatalf("Failed to load chart notes: %v", err)
	}

	defer func() {
		if game.audioManager != nil {
			game.audioManager.Cleanup()
		}
	}()

	renderer := NewRenderer(game)

	fmt.Println("BMS Hero - Ready to start!")

	for !rl.WindowShouldClose() {
		if rl.IsKeyPressed(rl.KeyEnter) {
			switch {
			case game.IsGameOver():
				game.state = StateMenu
			case !game.IsPlaying() && !game.IsPaused():
				game.StartGame()
			}
		}
		if rl.IsKeyPressed(rl.KeyP) {
			game.TogglePause()
		}

		game.Update(rl.GetFrameTime())
		renderer.Draw()
	}

	fmt.Println("BMS Hero - Goodbye!")
}
