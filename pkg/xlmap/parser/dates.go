package parser

import "strings"

// isBuiltInDateFormat reports whether a built-in number format id is one of
// Excel's date, time or locale date formats.
func isBuiltInDateFormat(id int) bool {
	switch {
	case id >= 14 && id <= 22:
		return true
	case id >= 27 && id <= 36:
		return true
	case id >= 45 && id <= 47:
		return true
	case id >= 50 && id <= 58:
		return true
	}
	return false
}

// IsDateFormat reports whether a custom number format code renders a date
// or a time. Quoted literals, escaped characters and bracketed sections
// such as colors and locales are ignored.
func IsDateFormat(code string) bool {
	// Only the positive section decides.
	if i := strings.IndexByte(code, ';'); i >= 0 {
		code = code[:i]
	}

	var b strings.Builder
	inQuote, inBracket := false, false
	for i := 0; i < len(code); i++ {
		c := code[i]
		switch {
		case inQuote:
			inQuote = c != '"'
		case inBracket:
			if c == ']' {
				inBracket = false
			}
		case c == '"':
			inQuote = true
		case c == '[':
			inBracket = true
		case c == '\\' || c == '_' || c == '*':
			i++
		default:
			b.WriteByte(c)
		}
	}

	stripped := strings.ToLower(b.String())
	if stripped == "general" || stripped == "@" {
		return false
	}
	return strings.ContainsAny(stripped, "ymdhs")
}
