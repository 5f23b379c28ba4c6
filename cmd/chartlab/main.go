package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pawelknorps/chord-lab-sub001/analysis"
	"github.com/pawelknorps/chord-lab-sub001/analysis/config"
	"github.com/pawelknorps/chord-lab-sub001/live"
	"github.com/pawelknorps/chord-lab-sub001/logging"
)

const usage = `Usage: %s <command> [options]

Commands:
  analyze   Analyze a YAML chart and print the result as JSON
  live      Replay a YAML pitch log against a chart chord
`

var errUsage = errors.New("invalid usage")

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "chartlab: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprintf(stderr, usage, filepath.Base(os.Args[0]))
		return errUsage
	}

	switch args[0] {
	case "analyze":
		return runAnalyze(args[1:], stdout, stderr)
	case "live":
		return runLive(args[1:], stdout, stderr)
	case "-h", "--help", "help":
		fmt.Fprintf(stdout, usage, filepath.Base(os.Args[0]))
		return nil
	default:
		fmt.Fprintf(stderr, usage, filepath.Base(os.Args[0]))
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}
}

type commonOptions struct {
	configPath string
	envPrefix  string
	logLevel   string
	dev        bool
}

func (o *commonOptions) register(fs *flag.FlagSet) {
	fs.StringVar(&o.configPath, "config", "", "YAML config file (environment variables override it)")
	fs.StringVar(&o.envPrefix, "env-prefix", config.DefaultEnvPrefix, "Environment variable prefix")
	fs.StringVar(&o.logLevel, "log-level", "", "Log level override (debug, info, warn, error)")
	fs.BoolVar(&o.dev, "dev", false, "Human readable development logging")
}

// setup loads configuration and installs the zap logger as the global logger
func (o *commonOptions) setup() (config.Config, *logging.ZapLogger, error) {
	cfg, err := config.Load(strings.TrimSpace(o.configPath), o.envPrefix)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	if o.logLevel != "" {
		if _, err := logging.ParseLevel(o.logLevel); err != nil {
			return config.Config{}, nil, err
		}
		cfg.LogLevel = o.logLevel
	}

	logger, err := logging.NewZapLogger(o.dev)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger.SetLevel(cfg.Level())
	logging.SetGlobalLogger(logger)
	return cfg, logger, nil
}

func runAnalyze(args []string, stdout, stderr io.Writer) error {
	var opts commonOptions
	var chartPath string
	var conceptsOnly bool

	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	fs.SetOutput(stderr)
	opts.register(fs)
	fs.StringVar(&chartPath, "chart", "", "YAML chart file (required)")
	fs.BoolVar(&conceptsOnly, "concepts", false, "Print only the concept list")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if chartPath == "" && fs.NArg() > 0 {
		chartPath = fs.Arg(0)
	}
	if strings.TrimSpace(chartPath) == "" {
		fs.Usage()
		return fmt.Errorf("%w: missing required --chart file", errUsage)
	}

	cfg, logger, err := opts.setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	chart, err := analysis.LoadChart(chartPath)
	if err != nil {
		return err
	}

	pipeline := analysis.NewPipeline(cfg)
	pipeline.SetLogger(logger.WithFields(logging.Fields{"chart": chartPath}))
	result := pipeline.Analyze(chart)

	logger.Info("Chart analyzed", logging.Fields{
		"chart":    chartPath,
		"home_key": result.HomeKey,
		"concepts": len(result.Concepts),
	})

	if conceptsOnly {
		return writeJSON(stdout, result.Concepts)
	}
	return writeJSON(stdout, result)
}

// pitchLog is a recorded performance over a single chart chord
type pitchLog struct {
	Chord   string             `yaml:"chord"`
	Samples []live.PitchSample `yaml:"samples"`
}

// replayStep is emitted whenever the overrides change during a replay
type replayStep struct {
	Sample    int            `json:"sample"`
	Overrides live.Overrides `json:"overrides"`
}

type replayReport struct {
	Chord     string         `json:"chord"`
	Steps     []replayStep   `json:"steps"`
	Overrides live.Overrides `json:"overrides"`
}

func runLive(args []string, stdout, stderr io.Writer) error {
	var opts commonOptions
	var logPath, chordOverride string

	fs := flag.NewFlagSet("live", flag.ContinueOnError)
	fs.SetOutput(stderr)
	opts.register(fs)
	fs.StringVar(&logPath, "log", "", "YAML pitch log file (required)")
	fs.StringVar(&chordOverride, "chord", "", "Chart chord, overrides the one in the log")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if logPath == "" && fs.NArg() > 0 {
		logPath = fs.Arg(0)
	}
	if strings.TrimSpace(logPath) == "" {
		fs.Usage()
		return fmt.Errorf("%w: missing required --log file", errUsage)
	}

	cfg, logger, err := opts.setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	record, err := loadPitchLog(logPath)
	if err != nil {
		return err
	}
	if chordOverride != "" {
		record.Chord = chordOverride
	}

	report := replay(cfg.Live.Params(), record, logger)
	logger.Info("Pitch log replayed", logging.Fields{
		"chord":   report.Chord,
		"samples": len(record.Samples),
		"changes": len(report.Steps),
	})
	return writeJSON(stdout, report)
}

// replay feeds the samples one at a time through a bounded buffer and polls a
// monitor after each, recording every change of overrides
func replay(params live.Params, record pitchLog, logger logging.Logger) replayReport {
	grounder := live.NewGrounder(params)
	grounder.SetLogger(logger.WithFields(logging.Fields{"component": "grounding"}))
	buffer := live.NewSyncBuffer(params.BufferSize)

	report := replayReport{Chord: record.Chord, Steps: []replayStep{}}
	sample := 0
	var last live.Overrides
	monitor := live.NewMonitor(grounder, buffer, func() string { return record.Chord },
		func(_ string, overrides live.Overrides) {
			if overrides != last {
				report.Steps = append(report.Steps, replayStep{Sample: sample, Overrides: overrides})
				last = overrides
			}
		})

	for i, s := range record.Samples {
		sample = i
		buffer.Push(s)
		monitor.Poll()
	}
	report.Overrides = last
	return report
}

func loadPitchLog(path string) (pitchLog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return pitchLog{}, fmt.Errorf("failed to read pitch log %s: %w", path, err)
	}
	var record pitchLog
	if err := yaml.Unmarshal(data, &record); err != nil {
		return pitchLog{}, fmt.Errorf("failed to parse pitch log %s: %w", path, err)
	}
	if strings.TrimSpace(record.Chord) == "" {
		return pitchLog{}, fmt.Errorf("pitch log %s has no chord", path)
	}
	return record, nil
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
