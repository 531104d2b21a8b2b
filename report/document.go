package report

import (
	"time"
)

// SchemaVersion is the current report schema version. Bumped only for
// breaking changes, which the schema is designed to avoid.
const SchemaVersion = 1

// RatedMeasurement pairs a measured value with its rating and the
// thresholds that produced it, so consumers can re-derive or display
// the policy.
type RatedMeasurement struct {
	Value      float64 `json:"value"`
	Unit       string  `json:"unit"`
	Rating     Rating  `json:"rating"`
	Thresholds Table   `json:"thresholds"`
}

// Processing records which transforms were requested and applied.
type Processing struct {
	ExpansionApplied     bool `json:"expansionApplied"`
	NormalizationApplied bool `json:"normalizationApplied"`
	LimitingApplied      bool `json:"limitingApplied"`
}

// StereoChannel mirrors one channel of the balance analysis.
type StereoChannel struct {
	AverageDB float64 `json:"averageDb"`
	PeakDB    float64 `json:"peakDb"`
}

// Stereo is the optional stereo-analysis block.
type Stereo struct {
	Channels       []StereoChannel `json:"channels"`
	ImbalanceDB    float64         `json:"imbalanceDb"`
	HasDeadChannel bool            `json:"hasDeadChannel"`
	DeadSide       *int            `json:"deadSide,omitempty"`
	Diagnosis      string          `json:"diagnosis,omitempty"`
}

// Overall is the aggregated verdict with its issue list.
type Overall struct {
	Pass   bool     `json:"pass"`
	Issues []string `json:"issues,omitempty"`
}

// Document is the versioned diagnostic report. New fields must be
// optional; existing fields never change meaning.
type Document struct {
	Version     int               `json:"version"`
	GeneratedAt time.Time         `json:"generatedAt"`
	Environment map[string]string `json:"environment,omitempty"`
	Processing  Processing        `json:"processing"`

	NoiseFloor    RatedMeasurement `json:"noiseFloor"`
	VoiceLoudness RatedMeasurement `json:"voiceLoudness"`
	Peak          RatedMeasurement `json:"peak"`
	SNR           RatedMeasurement `json:"snr"`

	Overall Overall `json:"overall"`

	Stereo *Stereo `json:"stereo,omitempty"`
}

// Measurements groups the four raw values a document is built from.
type Measurements struct {
	NoiseFloorDB float64
	VoiceLUFS    float64
	PeakDB       float64
	SNRDB        float64
}

// New assembles a rated document from raw measurements using the given
// threshold tables; missing tables fall back to the defaults.
func New(m Measurements, tables map[string]Table) *Document {
	defaults := DefaultTables()

	pick := func(name string) Table {
		if t, ok := tables[name]; ok {
			return t
		}

		return defaults[name]
	}

	rate := func(name string, value float64) RatedMeasurement {
		t := pick(name)

		return RatedMeasurement{
			Value:      value,
			Unit:       t.Unit,
			Rating:     t.Rate(value),
			Thresholds: t,
		}
	}

	doc := &Document{
		Version:     SchemaVersion,
		GeneratedAt: time.Now().UTC(),

		NoiseFloor:    rate(TableNoiseFloor, m.NoiseFloorDB),
		VoiceLoudness: rate(TableVoiceLoudness, m.VoiceLUFS),
		Peak:          rate(TablePeak, m.PeakDB),
		SNR:           rate(TableSNR, m.SNRDB),
	}

	doc.Overall = aggregate(doc)

	return doc
}

func aggregate(doc *Document) Overall {
	o := Overall{Pass: true}

	check := func(name string, m RatedMeasurement) {
		switch m.Rating {
		case RatingPoor:
			o.Pass = false
			o.Issues = append(o.Issues, name+" is poor")
		case RatingAcceptable:
			o.Issues = append(o.Issues, name+" is only acceptable")
		}
	}

	check("noise floor", doc.NoiseFloor)
	check("voice loudness", doc.VoiceLoudness)
	check("peak level", doc.Peak)
	check("signal-to-noise ratio", doc.SNR)

	return o
}
