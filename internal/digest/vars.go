package digest

import (
	"strconv"
	"strings"
	"time"
)

// ExpandVars performs simple placeholder substitutions for template strings
// used in config-provided text fields (e.g., title, subject, preface, postscript).
//
// Supported variables:
// - {.CurrentDate} => formatted as YYYY-MM-DD (local time of now)
// - {.Count}       => number of memes in the digest
func ExpandVars(s string, now time.Time, count int) string {
	if strings.TrimSpace(s) == "" {
		return s
	}
	r := strings.NewReplacer(
		"{.CurrentDate}", now.Format("2006-01-02"),
		"{.Count}", strconv.Itoa(count),
	)
	return r.Replace(s)
}
