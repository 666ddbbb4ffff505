// Package classify buckets analysis results by text length.
//
// The analysis body is an opaque mapping produced by the downstream
// analyze service; only its numeric "length" field participates in
// classification. The threshold is exclusive on the short side:
// lengths below 20 are "short", everything else is "long".
package classify

// Classification labels
const (
	Short = "short"
	Long  = "long"
)

// shortThreshold is the first length classified as Long
const shortThreshold = 20

// FromAnalysis classifies a decoded analysis body. A missing or
// non-numeric length counts as zero.
func FromAnalysis(analysis map[string]interface{}) string {
	return FromLength(lengthOf(analysis))
}

// FromLength classifies a raw length value.
func FromLength(length int) string {
	if length < shortThreshold {
		return Short
	}
	return Long
}

func lengthOf(analysis map[string]interface{}) int {
	switch v := analysis["length"].(type) {
	case float64: // encoding/json decodes numbers as float64
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	default:
		return 0
	}
}
