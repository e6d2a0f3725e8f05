package scoring

// Clinical recommendation text by risk label. Fixed domain content reviewed
// with the clinical team; order matters for report rendering.
var recommendationsByLabel = map[string][]string{
	LabelLow: {
		"Continue routine prenatal care",
		"Maintain healthy diet and regular exercise",
		"Follow standard glucose screening schedule",
	},
	LabelModerate: {
		"Enhanced dietary counseling recommended",
		"Increased physical activity as appropriate",
		"Consider earlier glucose screening",
		"More frequent monitoring of weight gain",
		"Discuss family history and risk factors",
	},
	LabelHigh: {
		"Immediate dietary consultation recommended",
		"Consider early glucose tolerance testing",
		"Enhanced prenatal monitoring",
		"Lifestyle intervention program enrollment",
		"Close collaboration with endocrinology if needed",
		"Weekly weight monitoring",
	},
}

// Descriptions of each label for reports and API responses.
var descriptionsByLabel = map[string]string{
	LabelLow:      "Low risk of developing gestational diabetes",
	LabelModerate: "Moderate risk of developing gestational diabetes",
	LabelHigh:     "High risk of developing gestational diabetes",
}

// Recommendations returns the fixed, ordered recommendation list for a
// label. Unknown labels yield an empty slice.
func Recommendations(label string) []string {
	recs := recommendationsByLabel[label]
	out := make([]string, len(recs))
	copy(out, recs)
	return out
}

// Describe returns the human-readable description for a label.
func Describe(label string) string {
	if d, ok := descriptionsByLabel[label]; ok {
		return d
	}
	return "Unknown risk level"
}
