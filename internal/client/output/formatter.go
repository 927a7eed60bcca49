// Package output renders user records for the authdash CLI as a table, JSON
// or YAML.
package output

import (
	"fmt"
	"io"
	"strings"
)

type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// DateLayout is how account creation dates are shown to people.
const DateLayout = "2 January 2006 at 15:04"

// Formatter writes data to w.
type Formatter interface {
	Format(w io.Writer, data any) error
}

// ParseFormat accepts "table", "json" or "yaml", case-insensitively. The
// empty string means table.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatTable, nil
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want table, json or yaml)", s)
	}
}

func NewFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{}
	case FormatYAML:
		return &YAMLFormatter{}
	default:
		return &TableFormatter{}
	}
}
