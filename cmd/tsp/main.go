// cmd/tsp/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/gunass/terminal-space-program/pkg/config"
	"github.com/gunass/terminal-space-program/pkg/event"
	"github.com/gunass/terminal-space-program/pkg/flight"
	"github.com/gunass/terminal-space-program/pkg/logging"
	"github.com/gunass/terminal-space-program/pkg/metrics"
	"github.com/gunass/terminal-space-program/pkg/mission"
	"github.com/gunass/terminal-space-program/pkg/playfield"
	"github.com/gunass/terminal-space-program/pkg/render"
	"github.com/gunass/terminal-space-program/pkg/validation"
)

const recommended = "Recommended: M=10, T=550, F=1, G=0.1"

type options struct {
	mass, thrust, fuel, angle string
	headless                  bool
	noPace                    bool
	metricsFile               string
}

func main() {
	configPath := flag.String("config", "", "Path to a JSON, TOML or YAML configuration file")
	writeConfig := flag.String("write-config", "", "Write the effective configuration to this path and exit")
	var opts options
	flag.StringVar(&opts.mass, "mass", "", "Rocket mass (skips the prompts when all four parameters are set)")
	flag.StringVar(&opts.thrust, "thrust", "", "Rocket thrust")
	flag.StringVar(&opts.fuel, "fuel", "", "Rocket fuel")
	flag.StringVar(&opts.angle, "angle", "", "Launch gradient")
	flag.BoolVar(&opts.headless, "headless", false, "Do not draw frames, only report the outcome")
	flag.BoolVar(&opts.noPace, "no-pace", false, "Run ticks back to back instead of in real time")
	flag.StringVar(&opts.metricsFile, "metrics-file", "", "Write flight metrics to this file when the flight ends")
	flag.Parse()

	logger := logging.NewLogger()
	ctx := logging.WithFlightID(context.Background(), "")
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Error(ctx, "failed to load configuration", err, "path", *configPath)
		os.Exit(1)
	}
	if opts.noPace {
		cfg.Display.Pace = false
	}

	if *writeConfig != "" {
		if err := config.SaveConfig(cfg, *writeConfig); err != nil {
			logger.Error(ctx, "failed to write configuration", err)
			os.Exit(1)
		}
		return
	}

	if err := run(ctx, cfg, opts, os.Stdin, os.Stdout, logger); err != nil {
		logger.Error(ctx, "flight failed", err)
		os.Exit(1)
	}
}

// run collects the launch parameters, flies the rocket and prints the summary.
func run(ctx context.Context, cfg *config.Config, opts options, in io.Reader, out io.Writer, logger *logging.Logger) error {
	entered, err := launchParameters(cfg, opts, in, out)
	if err != nil {
		return err
	}

	engine := entered
	engine.Thrust = cfg.EngineThrust(entered.Thrust)
	settings := cfg.FlightSettings()
	sim := flight.NewSimulator(engine, settings, logger)

	field := playfield.New(cfg.Field.Width, cfg.Field.Height, settings.Glyphs.Vertical)
	field.SetFooter(cfg.Field.Footer)

	var sink mission.Sink = render.NewTerminalSink(out, render.SinkOptions{
		ClearScreen: cfg.Display.ClearScreen,
		Separator:   cfg.Display.Separator,
	}, logger)
	if opts.headless {
		sink = render.NewNullSink(logger)
	}

	bus := event.NewEventBus()
	flightMetrics := metrics.New()
	defer flightMetrics.Attach(bus)()

	logger.Info(ctx, "launching",
		"mass", entered.Mass,
		"thrust", entered.Thrust,
		"fuel", entered.Fuel,
		"angle", entered.Heading,
	)
	summary, err := mission.New(sim, field, sink, bus, logger, cfg.FrameInterval()).Run(ctx)
	if err != nil {
		return err
	}

	if opts.headless {
		fmt.Fprintln(out, summary.Reason.Message())
	}
	fmt.Fprintf(out, "Mass=%g Thrust=%g Fuel=%g Angle=%g\n",
		entered.Mass, entered.Thrust, entered.Fuel, entered.Heading)
	logger.Info(ctx, "flight summary",
		"reason", summary.Reason.String(),
		"ticks", summary.Ticks,
		"liftoff", summary.Liftoff,
		"max_altitude", summary.MaxAltitude,
	)

	if opts.metricsFile != "" {
		if err := flightMetrics.WriteTextfile(opts.metricsFile); err != nil {
			return err
		}
	}
	return nil
}

// launchParameters takes the rocket from flags when all four are given and
// prompts for it otherwise.
func launchParameters(cfg *config.Config, opts options, in io.Reader, out io.Writer) (flight.Rocket, error) {
	if opts.mass != "" && opts.thrust != "" && opts.fuel != "" && opts.angle != "" {
		return validation.ParseRocket(opts.mass, opts.thrust, opts.fuel, opts.angle)
	}

	p := newPrompter(in, out)
	resize := fmt.Sprintf("Resize your terminal to %dx%d and press enter >", cfg.Field.Width, cfg.Field.Height+4)
	if err := p.waitForEnter(resize); err != nil {
		return flight.Rocket{}, err
	}
	fmt.Fprintln(out, recommended)
	return p.askRocket()
}
