package output

import (
	"io"

	"github.com/helgo/places/internal/cmd/table"
)

// Print writes data in format. Table output renders rows; every other
// format renders data itself.
func Print(w io.Writer, format Format, data any, rows table.Data) error {
	if format == FormatTable || format == "" {
		return NewFormatter(FormatTable).Format(w, rows)
	}
	return NewFormatter(format).Format(w, data)
}
