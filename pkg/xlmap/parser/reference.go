package parser

import (
	"strings"
)

// SplitReference splits a qualified reference into its sheet and address.
// Format: 'Sheet Name'!$A$1 or SheetName!A1. An unqualified reference
// returns an empty sheet name.
func SplitReference(ref string) (sheet, address string) {
	ref = strings.TrimSpace(ref)

	idx := strings.LastIndex(ref, "!")
	if idx < 0 {
		return "", ref
	}

	sheet = strings.TrimSpace(ref[:idx])
	address = strings.TrimSpace(ref[idx+1:])

	// Remove quotes from sheet name; '' escapes a literal quote
	if len(sheet) >= 2 && strings.HasPrefix(sheet, "'") && strings.HasSuffix(sheet, "'") {
		sheet = sheet[1 : len(sheet)-1]
		sheet = strings.ReplaceAll(sheet, "''", "'")
	}

	return sheet, address
}
