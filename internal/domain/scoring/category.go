package scoring

import "strings"

// Category is the performance rating derived from a final score.
type Category string

// Categories from best to worst.
const (
	CategoryIstimewa   Category = "ISTIMEWA"
	CategorySangatBaik Category = "SANGAT_BAIK"
	CategoryBaik       Category = "BAIK"
	CategoryCukup      Category = "CUKUP"
	CategoryKurang     Category = "KURANG"
)

// Category thresholds. The first two are exclusive, the last two inclusive.
const (
	thresholdIstimewa   = 110.0
	thresholdSangatBaik = 105.0
	thresholdBaik       = 90.0
	thresholdCukup      = 80.0
)

// Categories lists every category from best to worst.
var Categories = []Category{CategoryIstimewa, CategorySangatBaik, CategoryBaik, CategoryCukup, CategoryKurang}

// Label returns the human-readable form used in exports, e.g. "SANGAT BAIK".
func (c Category) Label() string {
	return strings.ReplaceAll(string(c), "_", " ")
}

// Classify maps a final score onto a Category. First match wins.
func Classify(finalScore float64) Category {
	switch {
	case finalScore > thresholdIstimewa:
		return CategoryIstimewa
	case finalScore > thresholdSangatBaik:
		return CategorySangatBaik
	case finalScore >= thresholdBaik:
		return CategoryBaik
	case finalScore >= thresholdCukup:
		return CategoryCukup
	default:
		return CategoryKurang
	}
}
