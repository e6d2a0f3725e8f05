package scoring

import (
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Risk labels produced by the engine.
const (
	LabelLow      = "LOW"
	LabelModerate = "MODERATE"
	LabelHigh     = "HIGH"
)

// Default classification thresholds.
const (
	DefaultThresholdLow  = 0.33
	DefaultThresholdHigh = 0.66
)

const baseRisk = 0.15

// Thresholds are the two score cut points that partition [0,1] into
// LOW / MODERATE / HIGH.
type Thresholds struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// Config configures a scoring engine.
type Config struct {
	ThresholdLow  float64
	ThresholdHigh float64
	ModelVersion  string
}

// Engine computes GDM risk scores. It holds no mutable state and is safe
// for concurrent use.
type Engine struct {
	thresholds   Thresholds
	modelVersion string
}

// New builds an engine from cfg. Misordered thresholds are a configuration
// error and must abort startup, so they are rejected here rather than at
// prediction time.
func New(cfg Config) (*Engine, error) {
	t := Thresholds{Low: cfg.ThresholdLow, High: cfg.ThresholdHigh}
	if t.Low == 0 && t.High == 0 {
		t = Thresholds{Low: DefaultThresholdLow, High: DefaultThresholdHigh}
	}
	if t.Low >= t.High {
		return nil, fmt.Errorf("scoring: threshold_low (%v) must be less than threshold_high (%v)", t.Low, t.High)
	}
	if t.Low < 0 || t.High > 1 {
		return nil, fmt.Errorf("scoring: thresholds must lie within [0,1], got %v/%v", t.Low, t.High)
	}
	version := cfg.ModelVersion
	if version == "" {
		version = "1.0.0"
	}
	return &Engine{thresholds: t, modelVersion: version}, nil
}

// Thresholds returns the configured cut points.
func (e *Engine) Thresholds() Thresholds { return e.thresholds }

// ModelVersion returns the configured model version string.
func (e *Engine) ModelVersion() string { return e.modelVersion }

// Features is an immutable snapshot of the ten clinical inputs consumed by
// one scoring call. Required fields are pointers so that a missing value is
// distinguishable from a zero.
type Features struct {
	Age                   *float64 `json:"age,omitempty"`
	BMI                   *float64 `json:"bmi,omitempty"`
	SystolicBP            *float64 `json:"systolic_bp,omitempty"`
	DiastolicBP           *float64 `json:"diastolic_bp,omitempty"`
	Hemoglobin            *float64 `json:"hemoglobin,omitempty"`
	HDLCholesterol        *float64 `json:"hdl_cholesterol,omitempty"`
	PregnanciesCount      *int     `json:"pregnancies_count,omitempty"`
	FamilyHistoryDiabetes bool     `json:"family_history_diabetes"`
	SedentaryLifestyle    bool     `json:"sedentary_lifestyle"`
	PrediabetesHistory    bool     `json:"prediabetes_history"`
}

// Prediction is the result of one scoring call. Records built from it are
// never mutated after creation.
type Prediction struct {
	RiskScore      float64    `json:"risk_score"`
	RiskLabel      string     `json:"risk_label"`
	RiskPercentage float64    `json:"risk_percentage"`
	ModelVersion   string     `json:"model_version"`
	Thresholds     Thresholds `json:"thresholds"`
	FeaturesUsed   Features   `json:"features_used"`
	PredictedAt    time.Time  `json:"predicted_at"`
}

// ValidationError carries the full list of field-specific validation
// messages for one rejected input.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "invalid input: " + strings.Join(e.Errors, "; ")
}

// Validate checks presence of the five required features and the numeric
// ranges of every supplied value. All problems are collected before
// returning; the caller gets the complete list in one pass.
func (e *Engine) Validate(f Features) (bool, []string) {
	var errs []string

	required := []struct {
		name    string
		present bool
	}{
		{"age", f.Age != nil},
		{"bmi", f.BMI != nil},
		{"systolic_bp", f.SystolicBP != nil},
		{"diastolic_bp", f.DiastolicBP != nil},
		{"pregnancies_count", f.PregnanciesCount != nil},
	}
	for _, r := range required {
		if !r.present {
			errs = append(errs, fmt.Sprintf("required field '%s' is missing", r.name))
		}
	}

	if f.Age != nil && (*f.Age < 12 || *f.Age > 60) {
		errs = append(errs, "age must be between 12 and 60 years")
	}
	if f.BMI != nil && (*f.BMI < 10 || *f.BMI > 60) {
		errs = append(errs, "bmi must be between 10 and 60")
	}
	if f.SystolicBP != nil && (*f.SystolicBP < 70 || *f.SystolicBP > 250) {
		errs = append(errs, "systolic_bp must be between 70 and 250 mmHg")
	}
	if f.DiastolicBP != nil && (*f.DiastolicBP < 40 || *f.DiastolicBP > 150) {
		errs = append(errs, "diastolic_bp must be between 40 and 150 mmHg")
	}
	if f.PregnanciesCount != nil && (*f.PregnanciesCount < 1 || *f.PregnanciesCount > 20) {
		errs = append(errs, "pregnancies_count must be between 1 and 20")
	}

	return len(errs) == 0, errs
}

// Predict validates f and computes the risk score, label, and percentage.
// Once input is valid the computation is pure arithmetic and cannot fail.
func (e *Engine) Predict(f Features) (*Prediction, error) {
	if ok, errs := e.Validate(f); !ok {
		return nil, &ValidationError{Errors: errs}
	}

	score := e.calculateScore(f)
	label := e.Classify(score)

	return &Prediction{
		RiskScore:      score,
		RiskLabel:      label,
		RiskPercentage: math.Round(score*1000) / 10,
		ModelVersion:   e.modelVersion,
		Thresholds:     e.thresholds,
		FeaturesUsed:   f,
		PredictedAt:    time.Now().UTC(),
	}, nil
}

// calculateScore applies the additive clinical rules. Each adjustment is
// independent; nothing compounds multiplicatively.
func (e *Engine) calculateScore(f Features) float64 {
	risk := baseRisk

	switch age := *f.Age; {
	case age >= 35:
		risk += 0.15
	case age >= 30:
		risk += 0.08
	}

	switch bmi := *f.BMI; {
	case bmi >= 35:
		risk += 0.25
	case bmi >= 30:
		risk += 0.15
	case bmi >= 25:
		risk += 0.08
	}

	sys, dia := *f.SystolicBP, *f.DiastolicBP
	switch {
	case sys >= 140 || dia >= 90:
		risk += 0.15
	case sys >= 130 || dia >= 80:
		risk += 0.08
	}

	if f.FamilyHistoryDiabetes {
		risk += 0.20
	}
	if *f.PregnanciesCount >= 3 {
		risk += 0.10
	}
	if f.SedentaryLifestyle {
		risk += 0.08
	}
	if f.PrediabetesHistory {
		risk += 0.15
	}
	if f.Hemoglobin != nil && *f.Hemoglobin < 11 {
		risk += 0.05
	}
	if f.HDLCholesterol != nil && *f.HDLCholesterol < 40 {
		risk += 0.05
	}

	risk += perturbation(f)

	return math.Max(0.0, math.Min(1.0, risk))
}

// Classify maps a score to a label using the engine's thresholds.
func (e *Engine) Classify(score float64) string {
	switch {
	case score < e.thresholds.Low:
		return LabelLow
	case score < e.thresholds.High:
		return LabelModerate
	default:
		return LabelHigh
	}
}

// perturbation derives a bounded pseudo-random adjustment in [-0.05,+0.05]
// from the input content itself. The seed comes from a stable hash of the
// canonical serialization, so identical input always yields an identical
// score regardless of process or platform.
func perturbation(f Features) float64 {
	h := fnv.New64a()
	h.Write([]byte(canonical(f)))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))
	return rng.Float64()*0.10 - 0.05
}

// canonical serializes the features as sorted key=value pairs. Absent
// optional fields are omitted; booleans encode as 0/1.
func canonical(f Features) string {
	pairs := map[string]string{
		"family_history_diabetes": boolField(f.FamilyHistoryDiabetes),
		"sedentary_lifestyle":     boolField(f.SedentaryLifestyle),
		"prediabetes_history":     boolField(f.PrediabetesHistory),
	}
	floatField := func(name string, v *float64) {
		if v != nil {
			pairs[name] = strconv.FormatFloat(*v, 'g', -1, 64)
		}
	}
	floatField("age", f.Age)
	floatField("bmi", f.BMI)
	floatField("systolic_bp", f.SystolicBP)
	floatField("diastolic_bp", f.DiastolicBP)
	floatField("hemoglobin", f.Hemoglobin)
	floatField("hdl_cholesterol", f.HDLCholesterol)
	if f.PregnanciesCount != nil {
		pairs["pregnancies_count"] = strconv.Itoa(*f.PregnanciesCount)
	}

	keys := make([]string, 0, len(pairs))
	for k := range pairs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(pairs[k])
	}
	return b.String()
}

func boolField(v bool) string {
	if v {
		return "1"
	}
	return "0"
}
