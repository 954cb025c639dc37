package output

import (
	"encoding/json"
	"io"
)

// JSONFormatter writes two-space indented JSON. HTML characters are left
// unescaped so URLs print as-is.
type JSONFormatter struct{}

func (f *JSONFormatter) Format(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
