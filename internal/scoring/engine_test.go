package scoring

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func fp(v float64) *float64 { return &v }
func ip(v int) *int         { return &v }

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New(Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return e
}

// baseline: young, healthy, no risk factors.
func baselineFeatures() Features {
	return Features{
		Age:              fp(24),
		BMI:              fp(21),
		SystolicBP:       fp(110),
		DiastolicBP:      fp(70),
		PregnanciesCount: ip(1),
	}
}

// every risk factor present.
func highRiskFeatures() Features {
	return Features{
		Age:                   fp(36),
		BMI:                   fp(31),
		SystolicBP:            fp(145),
		DiastolicBP:           fp(95),
		Hemoglobin:            fp(10),
		HDLCholesterol:        fp(35),
		PregnanciesCount:      ip(4),
		FamilyHistoryDiabetes: true,
		SedentaryLifestyle:    true,
		PrediabetesHistory:    true,
	}
}

func TestNew_DefaultThresholds(t *testing.T) {
	e := newTestEngine(t)
	th := e.Thresholds()
	if th.Low != DefaultThresholdLow || th.High != DefaultThresholdHigh {
		t.Errorf("expected defaults 0.33/0.66, got %v/%v", th.Low, th.High)
	}
}

func TestNew_MisorderedThresholds(t *testing.T) {
	cases := []struct {
		name      string
		low, high float64
	}{
		{"low equals high", 0.5, 0.5},
		{"low above high", 0.7, 0.3},
		{"high above one", 0.5, 1.5},
		{"low negative", -0.1, 0.5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(Config{ThresholdLow: tc.low, ThresholdHigh: tc.high}); err == nil {
				t.Errorf("expected error for thresholds %v/%v", tc.low, tc.high)
			}
		})
	}
}

func TestValidate_RequiredFields(t *testing.T) {
	e := newTestEngine(t)

	f := baselineFeatures()
	f.BMI = nil
	ok, errs := e.Validate(f)
	if ok {
		t.Fatal("expected invalid for missing bmi")
	}
	found := false
	for _, msg := range errs {
		if strings.Contains(msg, "bmi") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an error mentioning bmi, got %v", errs)
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	e := newTestEngine(t)

	// Missing everything: five required-field errors, no early return.
	ok, errs := e.Validate(Features{})
	if ok {
		t.Fatal("expected invalid")
	}
	if len(errs) != 5 {
		t.Errorf("expected 5 errors, got %d: %v", len(errs), errs)
	}
}

func TestValidate_Ranges(t *testing.T) {
	e := newTestEngine(t)

	cases := []struct {
		name   string
		mutate func(*Features)
		valid  bool
	}{
		{"age lower bound", func(f *Features) { f.Age = fp(12) }, true},
		{"age upper bound", func(f *Features) { f.Age = fp(60) }, true},
		{"age below range", func(f *Features) { f.Age = fp(11) }, false},
		{"age above range", func(f *Features) { f.Age = fp(61) }, false},
		{"bmi lower bound", func(f *Features) { f.BMI = fp(10) }, true},
		{"bmi above range", func(f *Features) { f.BMI = fp(61) }, false},
		{"systolic below range", func(f *Features) { f.SystolicBP = fp(69) }, false},
		{"systolic upper bound", func(f *Features) { f.SystolicBP = fp(250) }, true},
		{"diastolic below range", func(f *Features) { f.DiastolicBP = fp(39) }, false},
		{"pregnancies zero", func(f *Features) { f.PregnanciesCount = ip(0) }, false},
		{"pregnancies upper bound", func(f *Features) { f.PregnanciesCount = ip(20) }, true},
		{"pregnancies above range", func(f *Features) { f.PregnanciesCount = ip(21) }, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := baselineFeatures()
			tc.mutate(&f)
			ok, errs := e.Validate(f)
			if ok != tc.valid {
				t.Errorf("valid=%v, want %v (errors: %v)", ok, tc.valid, errs)
			}
		})
	}
}

func TestPredict_RejectsInvalidInput(t *testing.T) {
	e := newTestEngine(t)
	f := baselineFeatures()
	f.Age = fp(99)

	_, err := e.Predict(f)
	if err == nil {
		t.Fatal("expected validation error")
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if len(verr.Errors) == 0 {
		t.Error("expected at least one validation message")
	}
}

func TestPredict_ScoreWithinBounds(t *testing.T) {
	e := newTestEngine(t)

	inputs := []Features{
		baselineFeatures(),
		highRiskFeatures(),
		{Age: fp(60), BMI: fp(60), SystolicBP: fp(250), DiastolicBP: fp(150),
			PregnanciesCount: ip(20), FamilyHistoryDiabetes: true,
			SedentaryLifestyle: true, PrediabetesHistory: true,
			Hemoglobin: fp(5), HDLCholesterol: fp(10)},
		{Age: fp(12), BMI: fp(10), SystolicBP: fp(70), DiastolicBP: fp(40), PregnanciesCount: ip(1)},
	}
	for _, f := range inputs {
		p, err := e.Predict(f)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.RiskScore < 0 || p.RiskScore > 1 {
			t.Errorf("score %v out of [0,1]", p.RiskScore)
		}
	}
}

func TestPredict_Deterministic(t *testing.T) {
	e := newTestEngine(t)

	for _, f := range []Features{baselineFeatures(), highRiskFeatures()} {
		first, err := e.Predict(f)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for i := 0; i < 10; i++ {
			p, err := e.Predict(f)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.RiskScore != first.RiskScore {
				t.Fatalf("score changed between calls: %v vs %v", first.RiskScore, p.RiskScore)
			}
		}
	}
}

func TestPredict_OptionalFieldsChangeSeed(t *testing.T) {
	e := newTestEngine(t)

	withHb := baselineFeatures()
	withHb.Hemoglobin = fp(13) // in normal range: no score adjustment

	a, err := e.Predict(baselineFeatures())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := e.Predict(withHb)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The rule contribution is identical but the canonical serialization
	// differs, so the perturbation seed (and usually the score) differs.
	// Both must still be deterministic and near base risk.
	if math.Abs(a.RiskScore-baseRisk) > 0.05+1e-9 {
		t.Errorf("baseline score %v not within base±0.05", a.RiskScore)
	}
	if math.Abs(b.RiskScore-baseRisk) > 0.05+1e-9 {
		t.Errorf("score with hemoglobin %v not within base±0.05", b.RiskScore)
	}
}

func TestPredict_HighRiskExample(t *testing.T) {
	e := newTestEngine(t)

	p, err := e.Predict(highRiskFeatures())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Rule sum: 0.15 base + 0.15 age + 0.15 bmi + 0.15 bp + 0.20 family
	// + 0.10 pregnancies + 0.08 sedentary + 0.15 prediabetes + 0.05 hgb
	// + 0.05 hdl = 1.23, clamped to 1.0 regardless of perturbation.
	if p.RiskScore != 1.0 {
		t.Errorf("expected clamped score 1.0, got %v", p.RiskScore)
	}
	if p.RiskLabel != LabelHigh {
		t.Errorf("expected HIGH, got %s", p.RiskLabel)
	}
	if p.RiskPercentage != 100.0 {
		t.Errorf("expected 100.0%%, got %v", p.RiskPercentage)
	}
}

func TestPredict_BaselineExample(t *testing.T) {
	e := newTestEngine(t)

	p, err := e.Predict(baselineFeatures())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(p.RiskScore-baseRisk) > 0.05+1e-9 {
		t.Errorf("expected score within 0.15±0.05, got %v", p.RiskScore)
	}
	if p.RiskLabel != LabelLow {
		t.Errorf("expected LOW, got %s", p.RiskLabel)
	}
}

func TestClassify_PiecewiseRule(t *testing.T) {
	e, err := New(Config{ThresholdLow: 0.2, ThresholdHigh: 0.8})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cases := []struct {
		score float64
		want  string
	}{
		{0.0, LabelLow},
		{0.19, LabelLow},
		{0.2, LabelModerate}, // boundary belongs to the upper bucket
		{0.5, LabelModerate},
		{0.79, LabelModerate},
		{0.8, LabelHigh},
		{1.0, LabelHigh},
	}
	for _, tc := range cases {
		if got := e.Classify(tc.score); got != tc.want {
			t.Errorf("Classify(%v) = %s, want %s", tc.score, got, tc.want)
		}
	}
}

func TestPredict_PercentageOneDecimal(t *testing.T) {
	e := newTestEngine(t)
	p, err := e.Predict(baselineFeatures())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	scaled := p.RiskPercentage * 10
	if math.Abs(scaled-math.Round(scaled)) > 1e-9 {
		t.Errorf("percentage %v has more than one decimal", p.RiskPercentage)
	}
}

func TestRecommendations_Counts(t *testing.T) {
	cases := []struct {
		label string
		want  int
	}{
		{LabelLow, 3},
		{LabelModerate, 5},
		{LabelHigh, 6},
		{"UNKNOWN", 0},
	}
	for _, tc := range cases {
		if got := len(Recommendations(tc.label)); got != tc.want {
			t.Errorf("Recommendations(%s): %d entries, want %d", tc.label, got, tc.want)
		}
	}
}

func TestRecommendations_ReturnsCopy(t *testing.T) {
	recs := Recommendations(LabelLow)
	recs[0] = "mutated"
	if Recommendations(LabelLow)[0] == "mutated" {
		t.Error("Recommendations must not expose internal state")
	}
}

func TestStatus(t *testing.T) {
	e, err := New(Config{ThresholdLow: 0.25, ThresholdHigh: 0.75, ModelVersion: "2.1.0"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s := e.Status()
	if s.ModelVersion != "2.1.0" {
		t.Errorf("model version %s", s.ModelVersion)
	}
	if s.FeatureCount != 10 {
		t.Errorf("feature count %d, want 10", s.FeatureCount)
	}
	if s.Thresholds.Low != 0.25 || s.Thresholds.High != 0.75 {
		t.Errorf("thresholds %v", s.Thresholds)
	}
}

func TestFeatureImportance_SumsToOne(t *testing.T) {
	var sum float64
	for _, w := range FeatureImportance() {
		sum += w
	}
	if math.Abs(sum-1.0) > 1e-9 {
		t.Errorf("weights sum to %v, want 1.0", sum)
	}
}

func TestCanonical_SortedAndStable(t *testing.T) {
	f := highRiskFeatures()
	s := canonical(f)
	if canonical(f) != s {
		t.Fatal("canonical serialization is not stable")
	}
	fields := strings.Split(s, ",")
	for i := 1; i < len(fields); i++ {
		if fields[i-1] >= fields[i] {
			t.Fatalf("fields not sorted: %q before %q", fields[i-1], fields[i])
		}
	}
	// Optional fields absent from input are absent from the serialization.
	if strings.Contains(canonical(baselineFeatures()), "hemoglobin") {
		t.Error("absent optional field must be omitted")
	}
}
