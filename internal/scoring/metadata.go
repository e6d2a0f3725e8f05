package scoring

// Status reports the engine configuration for the model-status endpoint.
type Status struct {
	ModelVersion string     `json:"model_version"`
	FeatureCount int        `json:"feature_count"`
	Thresholds   Thresholds `json:"thresholds"`
}

// FeatureNames lists the ten clinical inputs in their canonical order.
var FeatureNames = []string{
	"age", "bmi", "systolic_bp", "diastolic_bp", "hemoglobin",
	"hdl_cholesterol", "pregnancies_count", "family_history_diabetes",
	"sedentary_lifestyle", "prediabetes_history",
}

// Status returns the engine's runtime configuration.
func (e *Engine) Status() Status {
	return Status{
		ModelVersion: e.modelVersion,
		FeatureCount: len(FeatureNames),
		Thresholds:   e.thresholds,
	}
}

// FeatureImportance returns the relative weight of each input in the
// scoring rules, normalized to sum to 1.
func FeatureImportance() map[string]float64 {
	return map[string]float64{
		"age":                     0.15,
		"bmi":                     0.20,
		"systolic_bp":             0.10,
		"diastolic_bp":            0.08,
		"hemoglobin":              0.07,
		"hdl_cholesterol":         0.08,
		"pregnancies_count":       0.12,
		"family_history_diabetes": 0.10,
		"sedentary_lifestyle":     0.05,
		"prediabetes_history":     0.05,
	}
}

// ReferenceRange describes the expected clinical range for one parameter.
type ReferenceRange struct {
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Unit    string  `json:"unit"`
	Optimal string  `json:"optimal,omitempty"`
}

// ReferenceRanges returns normal clinical ranges for display alongside
// assessment inputs.
func ReferenceRanges() map[string]ReferenceRange {
	return map[string]ReferenceRange{
		"age":               {Min: 12, Max: 60, Unit: "years"},
		"bmi":               {Min: 18.5, Max: 24.9, Unit: "kg/m2", Optimal: "18.5-24.9"},
		"systolic_bp":       {Min: 90, Max: 120, Unit: "mmHg", Optimal: "90-120"},
		"diastolic_bp":      {Min: 60, Max: 80, Unit: "mmHg", Optimal: "60-80"},
		"hemoglobin":        {Min: 11.5, Max: 15.0, Unit: "g/dL", Optimal: "11.5-15.0"},
		"hdl_cholesterol":   {Min: 40, Max: 100, Unit: "mg/dL", Optimal: ">40"},
		"pregnancies_count": {Min: 1, Max: 20, Unit: "count"},
	}
}
