package parser

import "strings"

// Sentinel is a formula error value stored in a cell.
type Sentinel string

// Recognized formula error sentinels.
const (
	SentinelDivZero Sentinel = "#DIV/0!"
	SentinelRef     Sentinel = "#REF!"
	SentinelName    Sentinel = "#NAME?"
	SentinelValue   Sentinel = "#VALUE!"
	SentinelNA      Sentinel = "#N/A"
	SentinelNull    Sentinel = "#NULL!"
	SentinelNum     Sentinel = "#NUM!"
)

var sentinelMeanings = map[Sentinel]string{
	SentinelDivZero: "division by zero",
	SentinelRef:     "invalid cell reference",
	SentinelName:    "unrecognized function or name",
	SentinelValue:   "wrong data type for operation",
	SentinelNA:      "value not available",
	SentinelNull:    "incorrect range intersection",
	SentinelNum:     "invalid numeric value",
}

// Meaning returns a short description of the sentinel.
func (s Sentinel) Meaning() string {
	return sentinelMeanings[s]
}

// LookupSentinel reports whether a raw cell value is a formula error.
// Only strings equal to a known sentinel (ignoring surrounding space and
// case) match; text that merely contains one is data.
func LookupSentinel(raw any) (Sentinel, bool) {
	s, ok := raw.(string)
	if !ok {
		return "", false
	}
	candidate := Sentinel(strings.ToUpper(strings.TrimSpace(s)))
	if _, known := sentinelMeanings[candidate]; known {
		return candidate, true
	}
	return "", false
}
