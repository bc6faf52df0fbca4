package output

import "strings"

// OutputFormat specifies the output format.
type OutputFormat string

const (
	// FormatText outputs human-readable summaries.
	FormatText OutputFormat = "text"

	// FormatTable outputs a styled table.
	FormatTable OutputFormat = "table"

	// FormatJSON outputs JSON.
	FormatJSON OutputFormat = "json"

	// FormatYAML outputs YAML.
	FormatYAML OutputFormat = "yaml"
)

// String returns the string representation of the output format.
func (f OutputFormat) String() string {
	return string(f)
}

// Valid checks if the output format is valid.
func (f OutputFormat) Valid() bool {
	switch f {
	case FormatText, FormatTable, FormatJSON, FormatYAML:
		return true
	default:
		return false
	}
}

// ParseOutputFormat parses a string into an OutputFormat.
// The second return value is false when s does not name a known format.
func ParseOutputFormat(s string) (OutputFormat, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return FormatText, true
	case "table":
		return FormatTable, true
	case "json":
		return FormatJSON, true
	case "yaml", "yml":
		return FormatYAML, true
	default:
		return OutputFormat(s), false
	}
}

// ValidFormats returns a slice of valid output format strings.
func ValidFormats() []string {
	return []string{"text", "table", "json", "yaml"}
}

// ValidDocumentFormats returns valid formats for single-document commands (show).
func ValidDocumentFormats() []string {
	return []string{"yaml", "json"}
}
