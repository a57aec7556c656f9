package demo

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"gopkg.in/yaml.v3"
)

// Report formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Formats lists the formats Render accepts.
var Formats = []string{FormatText, FormatJSON, FormatYAML}

// IsValidFormat reports whether format is one of Formats.
func IsValidFormat(format string) bool {
	return slices.Contains(Formats, format)
}

// Render writes res to w in the given format.
func Render(w io.Writer, format string, res *Result) error {
	switch format {
	case FormatText:
		return renderText(w, res)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(res); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("invalid format %q: must be one of %v", format, Formats)
}

func renderText(w io.Writer, res *Result) error {
	ew := &errWriter{w: w}

	section(ew, "stores", res.Stores)
	section(ew, "articles", res.Articles)
	section(ew, "users", res.Users)

	ew.printf("operations: %d, failed: %d\n", res.Operations, len(res.Failures))
	for _, f := range res.Failures {
		if f.ID != nil {
			ew.printf("  %s %s id=%d: %s\n", f.Entity, f.Operation, *f.ID, f.Kind)
			continue
		}
		ew.printf("  %s %s: %s\n", f.Entity, f.Operation, f.Kind)
	}
	return ew.err
}

func section[T fmt.Stringer](ew *errWriter, title string, rows []T) {
	ew.printf("%s (%d):\n", title, len(rows))
	for _, row := range rows {
		ew.printf("  %s\n", row)
	}
}

// errWriter keeps the first write error so the text report can be written
// without checking every line.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}
