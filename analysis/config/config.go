package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/pawelknorps/chord-lab-sub001/algorithms/functional"
	"github.com/pawelknorps/chord-lab-sub001/algorithms/tonal"
	"github.com/pawelknorps/chord-lab-sub001/live"
	"github.com/pawelknorps/chord-lab-sub001/logging"
)

// DefaultEnvPrefix prefixes every environment variable, e.g. CHARTLAB_LIVE_MIN_SAMPLES
const DefaultEnvPrefix = "chartlab"

// SegmentationConfig configures key-center segmentation
type SegmentationConfig struct {
	Diatonic        float64 `json:"diatonic" yaml:"diatonic" split_words:"true"`
	Secondary       float64 `json:"secondary" yaml:"secondary" split_words:"true"`
	Chromatic       float64 `json:"chromatic" yaml:"chromatic" split_words:"true"`
	Base            float64 `json:"base" yaml:"base" split_words:"true"`
	RelativeBonus   float64 `json:"relative_bonus" yaml:"relative_bonus" split_words:"true"`
	DetectSentinels bool    `json:"detect_sentinels" yaml:"detect_sentinels" split_words:"true"`
	MinRun          int     `json:"min_run" yaml:"min_run" split_words:"true"`
}

// LabelingConfig toggles the optional idiom detectors
type LabelingConfig struct {
	DetectSecondaryDominants bool `json:"detect_secondary_dominants" yaml:"detect_secondary_dominants" split_words:"true"`
	DetectColtrane           bool `json:"detect_coltrane" yaml:"detect_coltrane" split_words:"true"`
}

// LiveConfig configures live grounding and the polling monitor
type LiveConfig struct {
	MinSamples      int           `json:"min_samples" yaml:"min_samples" split_words:"true"`
	BufferSize      int           `json:"buffer_size" yaml:"buffer_size" split_words:"true"`
	SubstituteShare float64       `json:"substitute_share" yaml:"substitute_share" split_words:"true"`
	BassCutoffHz    float64       `json:"bass_cutoff_hz" yaml:"bass_cutoff_hz" split_words:"true"`
	PedalShare      float64       `json:"pedal_share" yaml:"pedal_share" split_words:"true"`
	PollInterval    time.Duration `json:"poll_interval" yaml:"poll_interval" split_words:"true"`
	ReferencePitch  float64       `json:"reference_pitch" yaml:"reference_pitch" split_words:"true"`
}

// Config aggregates every tunable of the analysis core
type Config struct {
	Segmentation SegmentationConfig `json:"segmentation" yaml:"segmentation"`
	Labeling     LabelingConfig     `json:"labeling" yaml:"labeling"`
	Live         LiveConfig         `json:"live" yaml:"live"`
	LogLevel     string             `json:"log_level" yaml:"log_level" split_words:"true"`
}

// DefaultSegmentationConfig returns the standard cost weights
func DefaultSegmentationConfig() SegmentationConfig {
	costs := tonal.DefaultCostModel()
	params := tonal.DefaultSegmentationParams()
	return SegmentationConfig{
		Diatonic:        costs.Diatonic,
		Secondary:       costs.Secondary,
		Chromatic:       costs.Chromatic,
		Base:            costs.Base,
		RelativeBonus:   costs.RelativeBonus,
		DetectSentinels: params.DetectSentinels,
		MinRun:          params.MinRun,
	}
}

// DefaultLabelingConfig enables every detector
func DefaultLabelingConfig() LabelingConfig {
	params := functional.DefaultParams()
	return LabelingConfig{
		DetectSecondaryDominants: params.DetectSecondaryDominants,
		DetectColtrane:           params.DetectColtrane,
	}
}

// DefaultLiveConfig returns the standard live grounding thresholds
func DefaultLiveConfig() LiveConfig {
	params := live.DefaultParams()
	return LiveConfig{
		MinSamples:      params.MinSamples,
		BufferSize:      params.BufferSize,
		SubstituteShare: params.SubstituteShare,
		BassCutoffHz:    params.BassCutoffHz,
		PedalShare:      params.PedalShare,
		PollInterval:    params.PollInterval,
		ReferencePitch:  params.ReferencePitch,
	}
}

// DefaultConfig returns the full default configuration
func DefaultConfig() Config {
	return Config{
		Segmentation: DefaultSegmentationConfig(),
		Labeling:     DefaultLabelingConfig(),
		Live:         DefaultLiveConfig(),
		LogLevel:     "info",
	}
}

// FromEnv overlays environment variables on the defaults. Variables that are
// not set leave the default in place.
func FromEnv(prefix string) (Config, error) {
	cfg := DefaultConfig()
	if err := applyEnv(prefix, &cfg); err != nil {
		return Config{}, err
	}
	return cfg.Sanitize(), nil
}

// FromYAML reads a YAML file over the defaults
func FromYAML(path string) (Config, error) {
	cfg := DefaultConfig()
	if err := applyYAML(path, &cfg); err != nil {
		return Config{}, err
	}
	return cfg.Sanitize(), nil
}

// Load applies an optional YAML file and then the environment, so
// environment variables win
func Load(path, prefix string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		if err := applyYAML(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := applyEnv(prefix, &cfg); err != nil {
		return Config{}, err
	}
	return cfg.Sanitize(), nil
}

func applyEnv(prefix string, cfg *Config) error {
	if prefix == "" {
		prefix = DefaultEnvPrefix
	}
	if err := envconfig.Process(prefix, cfg); err != nil {
		return fmt.Errorf("failed to read %s environment: %w", prefix, err)
	}
	return nil
}

func applyYAML(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

// Sanitize replaces out-of-range values with their defaults
func (c Config) Sanitize() Config {
	seg, defSeg := &c.Segmentation, DefaultSegmentationConfig()
	if seg.Diatonic < 0 {
		seg.Diatonic = defSeg.Diatonic
	}
	if seg.Secondary < seg.Diatonic {
		seg.Secondary = defSeg.Secondary
	}
	if seg.Chromatic < seg.Secondary {
		seg.Chromatic = defSeg.Chromatic
	}
	if seg.Base <= 0 {
		seg.Base = defSeg.Base
	}
	if seg.RelativeBonus < 0 || seg.RelativeBonus > seg.Base {
		seg.RelativeBonus = defSeg.RelativeBonus
	}
	if seg.MinRun < 2 {
		seg.MinRun = defSeg.MinRun
	}

	lc, defLive := &c.Live, DefaultLiveConfig()
	if lc.MinSamples < 1 {
		lc.MinSamples = defLive.MinSamples
	}
	if lc.BufferSize < lc.MinSamples {
		lc.BufferSize = max(defLive.BufferSize, lc.MinSamples)
	}
	if lc.SubstituteShare <= 0 || lc.SubstituteShare > 1 {
		lc.SubstituteShare = defLive.SubstituteShare
	}
	if lc.BassCutoffHz <= 0 {
		lc.BassCutoffHz = defLive.BassCutoffHz
	}
	if lc.PedalShare <= 0 || lc.PedalShare > 1 {
		lc.PedalShare = defLive.PedalShare
	}
	if lc.PollInterval <= 0 {
		lc.PollInterval = defLive.PollInterval
	}
	if lc.ReferencePitch <= 0 {
		lc.ReferencePitch = defLive.ReferencePitch
	}

	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		c.LogLevel = "info"
	}
	return c
}

// Level returns the configured log level
func (c Config) Level() logging.Level {
	level, _ := logging.ParseLevel(c.LogLevel)
	return level
}

// Params converts to segmentation parameters
func (c SegmentationConfig) Params() tonal.SegmentationParams {
	return tonal.SegmentationParams{
		Costs: tonal.CostModel{
			Diatonic:      c.Diatonic,
			Secondary:     c.Secondary,
			Chromatic:     c.Chromatic,
			Base:          c.Base,
			RelativeBonus: c.RelativeBonus,
		},
		DetectSentinels: c.DetectSentinels,
		MinRun:          c.MinRun,
	}
}

// Params converts to labeling parameters
func (c LabelingConfig) Params() functional.Params {
	return functional.Params{
		DetectSecondaryDominants: c.DetectSecondaryDominants,
		DetectColtrane:           c.DetectColtrane,
	}
}

// Params converts to live grounding parameters
func (c LiveConfig) Params() live.Params {
	return live.Params{
		MinSamples:      c.MinSamples,
		SubstituteShare: c.SubstituteShare,
		BassCutoffHz:    c.BassCutoffHz,
		PedalShare:      c.PedalShare,
		ReferencePitch:  c.ReferencePitch,
		BufferSize:      c.BufferSize,
		PollInterval:    c.PollInterval,
	}
}
