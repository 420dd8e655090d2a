package engine

import (
	"math"
	"strconv"
)

// ============================================================================
// LAYOUT: Control declarations for a dashboard front end
// ============================================================================
// Describes the heading, site dropdown, payload range slider and the two
// output ids. Front ends build their widgets from this; the engine never
// renders them.
// ============================================================================

// SliderConfig is the payload slider's display domain.
type SliderConfig struct {
	Min  float64 `json:"min" yaml:"min"`
	Max  float64 `json:"max" yaml:"max"`
	Step float64 `json:"step" yaml:"step"`
}

// DefaultSlider is a 0–10000 kg slider stepped by 1000.
var DefaultSlider = SliderConfig{Min: 0, Max: 10000, Step: 1000}

// DropdownOption is one selectable site.
type DropdownOption struct {
	Label string `json:"label" yaml:"label"`
	Value string `json:"value" yaml:"value"`
}

// Dropdown declares the site selector.
type Dropdown struct {
	ID          string           `json:"id" yaml:"id"`
	Options     []DropdownOption `json:"options" yaml:"options"`
	Value       SiteSelector     `json:"value" yaml:"value"`
	Placeholder string           `json:"placeholder" yaml:"placeholder"`
	Searchable  bool             `json:"searchable" yaml:"searchable"`
}

// SliderMark labels one slider position.
type SliderMark struct {
	Value float64 `json:"value" yaml:"value"`
	Label string  `json:"label" yaml:"label"`
}

// RangeSlider declares the payload range selector.
type RangeSlider struct {
	ID    string       `json:"id" yaml:"id"`
	Min   float64      `json:"min" yaml:"min"`
	Max   float64      `json:"max" yaml:"max"`
	Step  float64      `json:"step" yaml:"step"`
	Marks []SliderMark `json:"marks" yaml:"marks"`
	Value [2]float64   `json:"value" yaml:"value"`
}

// Layout is the full control declaration.
type Layout struct {
	Heading  string      `json:"heading" yaml:"heading"`
	Dropdown Dropdown    `json:"dropdown" yaml:"dropdown"`
	Slider   RangeSlider `json:"slider" yaml:"slider"`
	Outputs  []Output    `json:"outputs" yaml:"outputs"`
}

// BuildLayout declares the controls for table. The slider's default value is
// the dataset's payload bounds.
func BuildLayout(table Table, slider SliderConfig) Layout {
	options := []DropdownOption{{Label: "All Sites", Value: string(AllSites)}}
	for _, site := range table.Sites() {
		options = append(options, DropdownOption{Label: site, Value: site})
	}

	return Layout{
		Heading: "SpaceX Launch Records Dashboard",
		Dropdown: Dropdown{
			ID:          "site-dropdown",
			Options:     options,
			Value:       AllSites,
			Placeholder: "Select a Launch Site here",
			Searchable:  true,
		},
		Slider: RangeSlider{
			ID:    "payload-slider",
			Min:   slider.Min,
			Max:   slider.Max,
			Step:  slider.Step,
			Marks: SliderMarks(slider),
			Value: [2]float64{table.MinPayload(), table.MaxPayload()},
		},
		Outputs: Outputs(),
	}
}

// MaxSliderMarks bounds the number of labelled steps on the slider.
const MaxSliderMarks = 101

// SliderMarks labels every step from Min to Max inclusive. A non-positive
// step, or one so small it would exceed MaxSliderMarks, marks only the ends.
func SliderMarks(s SliderConfig) []SliderMark {
	if s.Max < s.Min || !isFinite(s.Min) || !isFinite(s.Max) {
		return nil
	}
	if s.Step <= 0 || (s.Max-s.Min)/s.Step >= MaxSliderMarks {
		marks := []SliderMark{markAt(s.Min)}
		if s.Max != s.Min {
			marks = append(marks, markAt(s.Max))
		}
		return marks
	}

	marks := make([]SliderMark, 0, MaxSliderMarks)
	for i := 0; i < MaxSliderMarks; i++ {
		v := s.Min + float64(i)*s.Step
		if v > s.Max {
			break
		}
		marks = append(marks, markAt(v))
	}
	return marks
}

// StepCount is the number of marks s would produce without the
// MaxSliderMarks cap, or -1 when it cannot be computed.
func (s SliderConfig) StepCount() float64 {
	if s.Step <= 0 || s.Max < s.Min || !isFinite(s.Min) || !isFinite(s.Max) {
		return -1
	}
	return math.Floor((s.Max-s.Min)/s.Step) + 1
}

func isFinite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func markAt(v float64) SliderMark {
	return SliderMark{Value: v, Label: strconv.FormatFloat(v, 'f', -1, 64) + " kg"}
}
