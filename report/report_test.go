package report

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
)

func TestTable_Rate(t *testing.T) {
	tables := DefaultTables()

	cases := []struct {
		table string
		value float64
		want  Rating
	}{
		{TableNoiseFloor, -70, RatingGood},
		{TableNoiseFloor, -60, RatingAcceptable},
		{TableNoiseFloor, -50, RatingAcceptable},
		{TableNoiseFloor, -30, RatingPoor},
		{TableVoiceLoudness, -20, RatingGood},
		{TableVoiceLoudness, -35, RatingAcceptable},
		{TableVoiceLoudness, -55, RatingPoor},
		{TableVoiceLoudness, 0, RatingPoor},
		{TablePeak, -6, RatingGood},
		{TablePeak, -2, RatingAcceptable},
		{TablePeak, -0.5, RatingPoor},
		{TableSNR, 50, RatingGood},
		{TableSNR, 30, RatingAcceptable},
		{TableSNR, 10, RatingPoor},
	}

	for _, c := range cases {
		if got := tables[c.table].Rate(c.value); got != c.want {
			t.Errorf("%s.Rate(%v) = %q, want %q", c.table, c.value, got, c.want)
		}
	}
}

func TestTable_RateUnmeasurable(t *testing.T) {
	tables := DefaultTables()

	if got := tables[TableVoiceLoudness].Rate(math.NaN()); got != RatingPoor {
		t.Errorf("NaN rated %q, want poor", got)
	}

	if got := tables[TableVoiceLoudness].Rate(math.Inf(-1)); got != RatingPoor {
		t.Errorf("-Inf loudness rated %q, want poor", got)
	}
}

func TestNew_AllGood(t *testing.T) {
	doc := New(Measurements{
		NoiseFloorDB: -65,
		VoiceLUFS:    -18,
		PeakDB:       -6,
		SNRDB:        47,
	}, nil)

	if !doc.Overall.Pass {
		t.Errorf("expected overall pass, issues: %v", doc.Overall.Issues)
	}

	if doc.Version != SchemaVersion {
		t.Errorf("version = %d, want %d", doc.Version, SchemaVersion)
	}

	if doc.NoiseFloor.Rating != RatingGood || doc.SNR.Rating != RatingGood {
		t.Error("expected good ratings throughout")
	}
}

func TestNew_PoorMeasurementFailsOverall(t *testing.T) {
	doc := New(Measurements{
		NoiseFloorDB: -30, // poor
		VoiceLUFS:    -18,
		PeakDB:       -6,
		SNRDB:        47,
	}, nil)

	if doc.Overall.Pass {
		t.Error("poor noise floor must fail the overall verdict")
	}

	if len(doc.Overall.Issues) == 0 || !strings.Contains(doc.Overall.Issues[0], "noise floor") {
		t.Errorf("expected a noise-floor issue, got %v", doc.Overall.Issues)
	}
}

func TestNew_AcceptableWarnsButPasses(t *testing.T) {
	doc := New(Measurements{
		NoiseFloorDB: -50, // acceptable
		VoiceLUFS:    -18,
		PeakDB:       -6,
		SNRDB:        47,
	}, nil)

	if !doc.Overall.Pass {
		t.Error("acceptable ratings should still pass overall")
	}

	if len(doc.Overall.Issues) != 1 {
		t.Errorf("expected one issue, got %v", doc.Overall.Issues)
	}
}

func TestNew_CustomTableOverride(t *testing.T) {
	strict := Table{
		Name: TableSNR,
		Unit: "dB",
		Bands: []Band{
			{Min: bound(60), Rating: RatingGood},
			{Max: bound(60), Rating: RatingPoor},
		},
	}

	doc := New(Measurements{SNRDB: 50, NoiseFloorDB: -65, VoiceLUFS: -18, PeakDB: -6},
		map[string]Table{TableSNR: strict})

	if doc.SNR.Rating != RatingPoor {
		t.Errorf("custom table ignored: rating %q", doc.SNR.Rating)
	}
}

func TestDocument_JSONRoundTrip(t *testing.T) {
	doc := New(Measurements{
		NoiseFloorDB: -65,
		VoiceLUFS:    -18,
		PeakDB:       -6,
		SNRDB:        47,
	}, nil)

	side := 1
	doc.Stereo = &Stereo{
		Channels:       []StereoChannel{{AverageDB: -20, PeakDB: -12}, {AverageDB: -48, PeakDB: -40}},
		ImbalanceDB:    28,
		HasDeadChannel: true,
		DeadSide:       &side,
		Diagnosis:      "channel 1 appears dead",
	}

	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var back Document
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if back.Stereo == nil || !back.Stereo.HasDeadChannel || *back.Stereo.DeadSide != 1 {
		t.Errorf("stereo block lost in round trip: %+v", back.Stereo)
	}

	if back.NoiseFloor.Rating != RatingGood {
		t.Errorf("rating lost in round trip: %q", back.NoiseFloor.Rating)
	}
}

func TestLoadTables(t *testing.T) {
	src := `{
		"snr": {
			"name": "snr",
			"unit": "dB",
			"bands": [
				{"min": 35, "rating": "good"},
				{"max": 35, "rating": "poor"}
			]
		}
	}`

	tables, err := LoadTables(strings.NewReader(src))
	if err != nil {
		t.Fatalf("LoadTables: %v", err)
	}

	if got := tables["snr"].Rate(40); got != RatingGood {
		t.Errorf("loaded table Rate(40) = %q, want good", got)
	}

	if got := tables["snr"].Rate(30); got != RatingPoor {
		t.Errorf("loaded table Rate(30) = %q, want poor", got)
	}
}

func TestLoadTables_EmptyBands(t *testing.T) {
	if _, err := LoadTables(strings.NewReader(`{"x": {"name": "x"}}`)); err == nil {
		t.Fatal("expected error for table without bands")
	}
}
