package mapping

import "strings"

var fieldNameReplacer = strings.NewReplacer(
	" ", "_",
	"-", "_",
	"/", "_",
	"(", "",
	")", "",
	".", "",
)

// CleanFieldName turns a free-form description into a field key:
// "Units - Total (Net)" becomes "UNITS_TOTAL_NET".
func CleanFieldName(description string) string {
	name := fieldNameReplacer.Replace(strings.TrimSpace(description))
	name = strings.ToUpper(name)
	for strings.Contains(name, "__") {
		name = strings.ReplaceAll(name, "__", "_")
	}
	return name
}

var headerAliases = map[string]string{
	"field":    colFieldName,
	"sheet":    colSheetName,
	"cell":     colCellAddress,
	"address":  colCellAddress,
	"expected": colExpectedValue,
}

// canonicalHeader maps "Field Name", "field-name" and aliases to field_name.
func canonicalHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.NewReplacer(" ", "_", "-", "_").Replace(h)
	for strings.Contains(h, "__") {
		h = strings.ReplaceAll(h, "__", "_")
	}
	if alias, ok := headerAliases[h]; ok {
		return alias
	}
	return h
}
