package resolver

import (
	"strings"
	"unicode"
)

const (
	// ManifestExt is the file extension of module manifests.
	ManifestExt = ".hcl"
	// BaseModule is the module name of the base contract manifest that must
	// be colocated with every parser manifest.
	BaseModule = "base_parser"
)

// ModuleName converts a CamelCase parser type name into its conventional
// snake_case module name, e.g. "XmlToCsvParser" -> "xml_to_csv_parser" and
// "HTTPLogParser" -> "http_log_parser".
func ModuleName(typeName string) string {
	runes := []rune(typeName)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) && i > 0 {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
