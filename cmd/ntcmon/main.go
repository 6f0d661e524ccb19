// Command ntcmon monitors an NTC sensing node. By default it attaches to the
// node's serial debug stream; with -sim it runs a fully simulated node
// in-process instead, which is handy for exercising the loop without
// hardware.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/itohio/ntcnode/pkg/afe"
	"github.com/itohio/ntcnode/pkg/config"
	"github.com/itohio/ntcnode/pkg/gpio"
	"github.com/itohio/ntcnode/pkg/link"
	"github.com/itohio/ntcnode/pkg/node"
	"github.com/itohio/ntcnode/pkg/ntc"
	"github.com/itohio/ntcnode/pkg/transport"
)

func main() {
	var (
		portFlag   = flag.String("p", "", "Serial port override (e.g., /dev/ttyACM0)")
		configFlag = flag.String("config", "config.yaml", "Configuration file path")
		simFlag    = flag.Bool("sim", false, "Run a simulated node instead of attaching to a serial port")
		listFlag   = flag.Bool("list", false, "List available serial ports and exit")
	)
	flag.Parse()

	if *listFlag {
		ports, err := link.Ports()
		if err != nil {
			log.Fatalf("Failed to list ports: %v", err)
		}
		for _, p := range ports {
			fmt.Println(p.Name)
		}
		return
	}

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *simFlag {
		runSim(ctx, cfg)
		return
	}
	runLink(ctx, cfg)
}

// runLink attaches to the node's serial stream and prints every reading,
// smoothed over a short window for display.
func runLink(ctx context.Context, cfg *config.Config) {
	l := link.New(cfg.Serial.Port, cfg.Serial.BaudRate, 0)
	if err := l.Connect(); err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer l.Close()

	convert := link.NewSmoothingConverter(ntc.Default(), cfg.ADC.Resolution, 5, 0)
	measurements := convert(l.Readings())
	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-measurements:
			if !ok {
				log.Printf("Stream ended")
				return
			}
			fmt.Printf("NTC1: %.1f°C  NTC2: %.1f°C\n", m.NTC1, m.NTC2)
		}
	}
}

// runSim runs the full sampling loop against the simulated front end. Pin
// transitions are logged so the latch is visible.
func runSim(ctx context.Context, cfg *config.Config) {
	sim := afe.NewSim(afe.SimConfig{Excitation: cfg.Sim.Excitation})
	pins := node.Pins{
		LED:       gpio.NewOutput(&logPin{name: "led", quiet: true}),
		Reset:     gpio.NewOutput(&logPin{name: "reset"}),
		NTCEnable: gpio.NewOutput(&logPin{name: "ntc_en"}),
	}

	sink := &printSink{params: ntc.Default(), resolution: cfg.ADC.Resolution}
	n := node.New(sim, pins, sink, node.Options{
		Tick:           cfg.Node.Tick,
		LEDDivisor:     cfg.Node.LEDDivisor,
		SampleDivisor:  cfg.Node.SampleDivisor,
		SessionDivisor: cfg.Node.SessionDivisor,
		Resolution:     cfg.ADC.Resolution,
		Heuristic:      cfg.Node.Heuristic,
		Button:         cfg.Node.Button,
	})
	if err := n.Init(); err != nil {
		log.Fatalf("Failed to initialize node: %v", err)
	}

	log.Printf("Simulated node running (tick %v); Ctrl-C to stop", cfg.Node.Tick)
	_ = n.Run(ctx)
	log.Printf("Stopped after %d ticks in state %v, %d readings dropped",
		n.Ticks(), n.State(), n.Dropped())
}

// printSink decodes the node's notify payloads and prints them like link
// readings.
type printSink struct {
	params     ntc.Params
	resolution int
}

func (s *printSink) Notify(data []byte) error {
	ch1, ch2, err := transport.DecodeBinary(data)
	if err != nil {
		return err
	}
	printReading(s.params, s.resolution, ch1, ch2)
	return nil
}

func printReading(params ntc.Params, resolution int, ch1, ch2 int16) {
	fmt.Printf("NTC1: %4d (%s)  NTC2: %4d (%s)\n",
		ch1, formatTemp(params, resolution, ch1),
		ch2, formatTemp(params, resolution, ch2))
}

func formatTemp(params ntc.Params, resolution int, raw int16) string {
	t, err := params.Temperature(raw, resolution)
	if err != nil {
		return "---"
	}
	return fmt.Sprintf("%.1f°C", t)
}

// logPin is a host-side stand-in for a GPIO pin that logs level changes.
type logPin struct {
	name  string
	quiet bool // suppress per-toggle logging (the LED is noisy)
	level bool
	input bool
}

var _ gpio.Pin = (*logPin)(nil)

func (p *logPin) ConfigureOutput()      { p.input = false }
func (p *logPin) ConfigureInputPullup() { p.input = true }
func (p *logPin) Set()                  { p.transition(true) }
func (p *logPin) Clear()                { p.transition(false) }
func (p *logPin) Toggle()               { p.transition(!p.level) }
func (p *logPin) Read() bool            { return p.level }

func (p *logPin) transition(level bool) {
	if level != p.level && !p.quiet {
		log.Printf("pin %s -> %v", p.name, level)
	}
	p.level = level
}
