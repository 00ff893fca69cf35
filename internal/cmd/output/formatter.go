// Package output renders command results as a table, JSON, YAML or plain
// text lines.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"
	"unicode"

	"github.com/goccy/go-yaml"
	"github.com/mattn/go-isatty"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/helgo/places/internal/cmd/table"
	"github.com/helgo/places/pkg/errors"
)

// Format names an output encoding, as given to --output.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	// FormatText prints one item per line through fmt, so types such as
	// merge.Change control their own rendering.
	FormatText Format = "text"
)

// Formatter writes data to w in one encoding.
type Formatter interface {
	Format(w io.Writer, data any) error
}

// NewFormatter returns the formatter for format. Unknown formats render a
// table.
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Indent: "  "}
	case FormatYAML:
		return &YAMLFormatter{}
	case FormatText:
		return &TextFormatter{}
	}
	return &TableFormatter{}
}

// ParseFormat validates an --output value. Empty means auto-detect.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(s))
	switch f {
	case "", FormatTable, FormatJSON, FormatYAML, FormatText:
		return f, nil
	}
	return "", errors.NewValidationError("output", s, "want table, json, yaml or text")
}

// DetectFormat honours an explicit format, else picks a table for a
// terminal and JSON for pipes.
func DetectFormat(explicit string) Format {
	if explicit != "" {
		return Format(strings.ToLower(explicit))
	}
	fd := os.Stdout.Fd()
	if isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
		return FormatTable
	}
	return FormatJSON
}

// JSONFormatter leaves &, < and > unescaped so place names stay readable.
type JSONFormatter struct {
	Indent string
}

func (f *JSONFormatter) Format(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", f.Indent)
	return enc.Encode(data)
}

type YAMLFormatter struct{}

func (YAMLFormatter) Format(w io.Writer, data any) error {
	b, err := yaml.MarshalWithOptions(data, yaml.Indent(2), yaml.IndentSequence(false))
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// TextFormatter prints each element of a slice on its own line, or data
// itself when it is not a slice.
type TextFormatter struct{}

func (TextFormatter) Format(w io.Writer, data any) error {
	v := reflect.ValueOf(data)
	if v.Kind() != reflect.Slice {
		_, err := fmt.Fprintln(w, data)
		return err
	}
	for i := range v.Len() {
		if _, err := fmt.Fprintln(w, v.Index(i).Interface()); err != nil {
			return err
		}
	}
	return nil
}

// TableFormatter renders table.Data as is. Structs become a two-column
// property table and struct slices get one column per exported field.
// Anything else falls back to JSON.
type TableFormatter struct{}

func (TableFormatter) Format(w io.Writer, data any) error {
	if d, ok := data.(table.Data); ok {
		return render(w, d)
	}
	if d, ok := reflectTable(data); ok {
		return render(w, d)
	}
	return (&JSONFormatter{Indent: "  "}).Format(w, data)
}

var alignments = map[table.Align]tw.Align{
	table.AlignLeft:   tw.AlignLeft,
	table.AlignCenter: tw.AlignCenter,
	table.AlignRight:  tw.AlignRight,
}

func render(w io.Writer, d table.Data) error {
	var cfg tablewriter.Config
	if len(d.ColumnAlignment) > 0 {
		per := make([]tw.Align, len(d.ColumnAlignment))
		for i, a := range d.ColumnAlignment {
			al, ok := alignments[a]
			if !ok {
				al = tw.Skip
			}
			per[i] = al
		}
		cfg.Header.Alignment = tw.CellAlignment{PerColumn: per}
		cfg.Row.Alignment = tw.CellAlignment{PerColumn: per}
	}

	tbl := tablewriter.NewTable(w, tablewriter.WithConfig(cfg))
	if len(d.Headers) > 0 {
		tbl.Header(cells(d.Headers)...)
	}
	for _, row := range d.Rows {
		if err := tbl.Append(cells(row)...); err != nil {
			return err
		}
	}
	return tbl.Render()
}

func cells(row []string) []any {
	out := make([]any, len(row))
	for i, c := range row {
		out[i] = c
	}
	return out
}

func reflectTable(data any) (table.Data, bool) {
	v := reflect.Indirect(reflect.ValueOf(data))
	switch {
	case v.Kind() == reflect.Struct:
		var d table.Data
		d.Headers = []string{"Property", "Value"}
		for _, f := range columns(v.Type()) {
			d.Rows = append(d.Rows, []string{headerName(f), fmt.Sprint(v.FieldByIndex(f.Index).Interface())})
		}
		return d, true
	case v.Kind() == reflect.Slice && v.Len() > 0 && reflect.Indirect(v.Index(0)).Kind() == reflect.Struct:
		fields := columns(reflect.Indirect(v.Index(0)).Type())
		d := table.Data{Rows: make([][]string, v.Len())}
		for _, f := range fields {
			d.Headers = append(d.Headers, headerName(f))
		}
		for i := range v.Len() {
			elem := reflect.Indirect(v.Index(i))
			row := make([]string, len(fields))
			for j, f := range fields {
				row[j] = fmt.Sprint(elem.FieldByIndex(f.Index).Interface())
			}
			d.Rows[i] = row
		}
		return d, true
	}
	return table.Data{}, false
}

// columns lists the exported fields of t that JSON output would show.
func columns(t reflect.Type) []reflect.StructField {
	var out []reflect.StructField
	for _, f := range reflect.VisibleFields(t) {
		if f.IsExported() && !f.Anonymous && f.Tag.Get("json") != "-" {
			out = append(out, f)
		}
	}
	return out
}

// headerName title-cases the json name of f: "withPhoto" and "with_photo"
// both become "With Photo".
func headerName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" {
		name = f.Name
	}
	var b strings.Builder
	for i, r := range name {
		if r == '_' {
			r = ' '
		} else if i > 0 && unicode.IsUpper(r) {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return cases.Title(language.English).String(b.String())
}
