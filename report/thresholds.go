package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
)

// Rating labels a measurement against its threshold table.
type Rating string

const (
	RatingGood       Rating = "good"
	RatingAcceptable Rating = "acceptable"
	RatingPoor       Rating = "poor"
)

// Band maps a half-open value range [Min, Max) to a rating. A nil
// bound is unbounded, which keeps the table JSON-serializable without
// infinity sentinels.
type Band struct {
	Min    *float64 `json:"min,omitempty"`
	Max    *float64 `json:"max,omitempty"`
	Rating Rating   `json:"rating"`
}

func (b Band) contains(value float64) bool {
	if b.Min != nil && value < *b.Min {
		return false
	}

	if b.Max != nil && value >= *b.Max {
		return false
	}

	return true
}

// Table is a named, ordered list of rating bands. The first band
// containing the value wins.
type Table struct {
	Name  string `json:"name"`
	Unit  string `json:"unit"`
	Bands []Band `json:"bands"`
}

// Rate looks the value up in the table. Values outside every band rate
// as poor, as does an unmeasurable (NaN) value.
func (t Table) Rate(value float64) Rating {
	if math.IsNaN(value) {
		return RatingPoor
	}

	for _, b := range t.Bands {
		if b.contains(value) {
			return b.Rating
		}
	}

	return RatingPoor
}

// Standard table names used by the diagnostic quality tests.
const (
	TableNoiseFloor    = "noise_floor"
	TableVoiceLoudness = "voice_loudness"
	TablePeak          = "peak"
	TableSNR           = "snr"
)

func bound(v float64) *float64 { return &v }

// DefaultTables returns the built-in rating policy for the four core
// measurements. Noise floor and peak are in dBFS, voice loudness in
// LUFS, SNR in dB.
func DefaultTables() map[string]Table {
	return map[string]Table{
		TableNoiseFloor: {
			Name: TableNoiseFloor,
			Unit: "dBFS",
			Bands: []Band{
				{Max: bound(-60), Rating: RatingGood},
				{Min: bound(-60), Max: bound(-45), Rating: RatingAcceptable},
				{Min: bound(-45), Rating: RatingPoor},
			},
		},
		TableVoiceLoudness: {
			Name: TableVoiceLoudness,
			Unit: "LUFS",
			Bands: []Band{
				{Min: bound(-30), Max: bound(-10), Rating: RatingGood},
				{Min: bound(-40), Max: bound(-30), Rating: RatingAcceptable},
				{Min: bound(-10), Max: bound(-5), Rating: RatingAcceptable},
			},
		},
		TablePeak: {
			Name: TablePeak,
			Unit: "dBFS",
			Bands: []Band{
				{Max: bound(-3), Rating: RatingGood},
				{Min: bound(-3), Max: bound(-1), Rating: RatingAcceptable},
				{Min: bound(-1), Rating: RatingPoor},
			},
		},
		TableSNR: {
			Name: TableSNR,
			Unit: "dB",
			Bands: []Band{
				{Min: bound(40), Rating: RatingGood},
				{Min: bound(25), Max: bound(40), Rating: RatingAcceptable},
				{Max: bound(25), Rating: RatingPoor},
			},
		},
	}
}

// LoadTables reads a JSON table set, e.g. from a policy file. Tables
// not present fall back to the defaults at the call site.
func LoadTables(r io.Reader) (map[string]Table, error) {
	var tables map[string]Table

	if err := json.NewDecoder(r).Decode(&tables); err != nil {
		return nil, fmt.Errorf("report: decode threshold tables: %w", err)
	}

	for name, t := range tables {
		if len(t.Bands) == 0 {
			return nil, fmt.Errorf("report: table %q has no bands", name)
		}
	}

	return tables, nil
}
