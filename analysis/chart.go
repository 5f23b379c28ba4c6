package analysis

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pawelknorps/chord-lab-sub001/algorithms/tonal"
)

// Chart is a lead sheet: ordered bars of chord symbols and an optional
// declared key. Blank cells mean no new chord.
type Chart struct {
	Title string     `json:"title,omitempty" yaml:"title,omitempty"`
	Key   string     `json:"key,omitempty" yaml:"key,omitempty"`
	Bars  [][]string `json:"bars" yaml:"bars"`
}

// Slots flattens the bars into chord slots, skipping blank cells
func (c Chart) Slots() []tonal.Slot {
	slots := make([]tonal.Slot, 0)
	for bar, chords := range c.Bars {
		for _, symbol := range chords {
			symbol = strings.TrimSpace(symbol)
			if symbol == "" {
				continue
			}
			slots = append(slots, tonal.Slot{Bar: bar, Symbol: symbol})
		}
	}
	return slots
}

// ParseChart decodes a YAML chart. Bars may be written as lists or as
// whitespace separated strings.
func ParseChart(data []byte) (Chart, error) {
	var raw struct {
		Title string      `yaml:"title"`
		Key   string      `yaml:"key"`
		Bars  []yaml.Node `yaml:"bars"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Chart{}, fmt.Errorf("failed to parse chart: %w", err)
	}

	chart := Chart{Title: raw.Title, Key: raw.Key, Bars: make([][]string, 0, len(raw.Bars))}
	for i, node := range raw.Bars {
		switch node.Kind {
		case yaml.ScalarNode:
			chart.Bars = append(chart.Bars, strings.Fields(node.Value))
		case yaml.SequenceNode:
			var bar []string
			if err := node.Decode(&bar); err != nil {
				return Chart{}, fmt.Errorf("failed to parse bar %d: %w", i+1, err)
			}
			chart.Bars = append(chart.Bars, bar)
		default:
			return Chart{}, fmt.Errorf("failed to parse bar %d: unexpected %s", i+1, node.Tag)
		}
	}
	return chart, nil
}

// LoadChart reads a YAML chart from disk
func LoadChart(path string) (Chart, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Chart{}, fmt.Errorf("failed to read chart %s: %w", path, err)
	}
	return ParseChart(data)
}
