package analysis

import (
	"github.com/pawelknorps/chord-lab-sub001/algorithms/functional"
	"github.com/pawelknorps/chord-lab-sub001/algorithms/tonal"
	"github.com/pawelknorps/chord-lab-sub001/analysis/config"
	"github.com/pawelknorps/chord-lab-sub001/logging"
)

// Result is the complete static analysis of a chart
type Result struct {
	Title    string              `json:"title,omitempty"`
	HomeKey  string              `json:"home_key"`
	Slots    []tonal.Slot        `json:"slots"`
	KeyPath  []string            `json:"key_path"`
	Segments []tonal.Segment     `json:"segments"`
	Labels   []functional.Result `json:"labels"`
	Concepts []Concept           `json:"concepts"`
}

// Pipeline runs segmentation, labeling and concept folding over charts. It
// holds no per-chart state and is safe for concurrent use.
type Pipeline struct {
	segmenter *tonal.Segmenter
	labeler   *functional.Labeler
	estimator *tonal.KeyEstimator
	logger    logging.Logger
}

// NewPipeline creates a pipeline from configuration
func NewPipeline(cfg config.Config) *Pipeline {
	return &Pipeline{
		segmenter: tonal.NewSegmenter(cfg.Segmentation.Params()),
		labeler:   functional.NewLabeler(cfg.Labeling.Params()),
		estimator: tonal.NewKeyEstimator(),
		logger:    logging.WithFields(logging.Fields{"component": "pipeline"}),
	}
}

// NewDefaultPipeline creates a pipeline with default configuration
func NewDefaultPipeline() *Pipeline {
	return NewPipeline(config.DefaultConfig())
}

// SetLogger replaces the logger of the pipeline and its stages
func (p *Pipeline) SetLogger(logger logging.Logger) {
	if logger == nil {
		return
	}
	p.logger = logger
	p.segmenter.SetLogger(logger.WithFields(logging.Fields{"component": "segmentation"}))
	p.labeler.SetLogger(logger.WithFields(logging.Fields{"component": "labeling"}))
}

// Analyze runs the full analysis. An empty chart yields an empty result.
func (p *Pipeline) Analyze(chart Chart) Result {
	result := Result{
		Title:    chart.Title,
		Slots:    chart.Slots(),
		KeyPath:  []string{},
		Segments: []tonal.Segment{},
		Labels:   []functional.Result{},
		Concepts: []Concept{},
	}
	if len(result.Slots) == 0 {
		return result
	}

	result.HomeKey = p.homeKey(chart, result.Slots)

	seg := p.segmenter.Segment(result.Slots)
	result.KeyPath = seg.Path
	result.Segments = seg.Segments
	result.Labels = p.labeler.Label(result.Slots, seg.Segments, result.HomeKey)
	result.Concepts = BuildConcepts(result.Labels)

	p.logger.Debug("Analyzed chart", logging.Fields{
		"title":    chart.Title,
		"slots":    len(result.Slots),
		"segments": len(result.Segments),
		"concepts": len(result.Concepts),
		"home_key": result.HomeKey,
	})
	return result
}

// homeKey prefers the declared key and otherwise estimates one from the
// chart's chord tones
func (p *Pipeline) homeKey(chart Chart, slots []tonal.Slot) string {
	if key, ok := tonal.ParseKey(chart.Key); ok {
		return key.Label()
	}
	symbols := make([]string, len(slots))
	for i, slot := range slots {
		symbols[i] = slot.Symbol
	}
	if estimate, ok := p.estimator.EstimateFromChords(symbols); ok {
		return estimate.Label
	}
	return "C"
}
