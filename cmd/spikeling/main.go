package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"

	"github.com/OpenSourceNeuro/Spikeling/pkg/command"
	"github.com/OpenSourceNeuro/Spikeling/pkg/config"
	"github.com/OpenSourceNeuro/Spikeling/pkg/engine"
	"github.com/OpenSourceNeuro/Spikeling/pkg/hal"
	"github.com/OpenSourceNeuro/Spikeling/pkg/neuron"
	"github.com/OpenSourceNeuro/Spikeling/pkg/telemetry"
	"github.com/OpenSourceNeuro/Spikeling/pkg/transport"
)

func main() {
	var (
		portFlag   = flag.String("p", "", "Serial port override (e.g., COM3 or /dev/ttyACM0)")
		configFlag = flag.String("config", "config.yaml", "Configuration file path")
		wsFlag     = flag.String("ws", "", "WebSocket listen address override (e.g., :81)")
		presetFlag = flag.Int("preset", -1, "Firing pattern preset index override (0-19)")
		stepFlag   = flag.Int64("step", 0, "Tick period override in microseconds")
		listFlag   = flag.Bool("list", false, "List available serial ports and exit")
	)
	flag.Parse()

	if *listFlag {
		ports, err := transport.Ports()
		if err != nil {
			log.Fatalf("Failed to list serial ports: %v", err)
		}
		for _, p := range ports {
			fmt.Println(p)
		}
		return
	}

	// Load configuration
	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Command line overrides
	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}
	if *wsFlag != "" {
		cfg.WebSocket.Addr = *wsFlag
	}
	if *presetFlag >= 0 {
		cfg.Loop.Preset = *presetFlag
	}
	if *stepFlag > 0 {
		cfg.Loop.StepMicros = *stepFlag
	}

	board := hal.NewSimBoard()
	loop := engine.New(board, neuron.ClampPreset(cfg.Loop.Preset), cfg.Loop.StepMicros,
		rand.New(rand.NewSource(rand.Int63())))

	dispatcher, err := command.NewDispatcher(loop)
	if err != nil {
		log.Fatalf("Failed to build command table: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if cfg.Serial.Port != "" {
		stream := telemetry.NewStream(cfg.Serial.Decimation)
		stream.SetEnabled(true)
		link := transport.NewSerial(cfg.Serial.Port, cfg.Serial.BaudRate,
			transport.DefaultBufferSize, dispatcher, stream)
		if err := link.Connect(); err != nil {
			log.Fatalf("Failed to connect to %s: %v", cfg.Serial.Port, err)
		}
		defer link.Close()
		loop.AddSink(link)
		fmt.Printf("Connected to serial port: %s\n", cfg.Serial.Port)
	}

	if cfg.WebSocket.Addr != "" {
		server := transport.NewWSServer(cfg.WebSocket.Addr, dispatcher)
		loop.AddSink(server)
		go func() {
			if err := server.Serve(ctx); err != nil {
				log.Printf("WebSocket server: %v", err)
				cancel()
			}
		}()
		fmt.Printf("WebSocket server listening on %s\n", cfg.WebSocket.Addr)
	}

	loop.Run(ctx)
}
