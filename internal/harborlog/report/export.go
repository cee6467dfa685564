package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/harborlog/server/internal/harborlog/types"
)

// Fielder is anything that can be flattened into named export columns.
type Fielder interface {
	Fields() []types.Field
}

// Table flattens rows into a header and string cells. The header is the first
// row's field names in its own order; later rows are projected onto it, so
// extra fields are dropped and missing ones come out empty.
func Table[T Fielder](rows []T) (header []string, cells [][]string) {
	if len(rows) == 0 {
		return nil, nil
	}

	for _, f := range rows[0].Fields() {
		header = append(header, f.Name)
	}

	cells = make([][]string, 0, len(rows))
	for _, r := range rows {
		values := make(map[string]string, len(header))
		for _, f := range r.Fields() {
			values[f.Name] = Stringify(f.Value)
		}
		line := make([]string, len(header))
		for i, h := range header {
			line[i] = values[h]
		}
		cells = append(cells, line)
	}
	return header, cells
}

// Stringify renders a field value; nil is the empty string.
func Stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.Format(types.TimestampLayout)
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}

// EscapeCell quotes a value iff it contains a comma, a double quote or a
// newline, doubling any embedded quotes.
func EscapeCell(s string) string {
	if !strings.ContainsAny(s, ",\"\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// EncodeCSV renders rows as comma-delimited text: header first, lines joined
// by "\n" with no trailing newline. It returns "" for an empty set.
func EncodeCSV[T Fielder](rows []T) string {
	header, cells := Table(rows)
	if header == nil {
		return ""
	}

	lines := make([]string, 0, len(cells)+1)
	lines = append(lines, joinCells(header))
	for _, c := range cells {
		lines = append(lines, joinCells(c))
	}
	return strings.Join(lines, "\n")
}

// WriteCSV writes EncodeCSV(rows) to w. An empty set writes nothing and
// reports false.
func WriteCSV[T Fielder](w io.Writer, rows []T) (bool, error) {
	if len(rows) == 0 {
		return false, nil
	}
	if _, err := io.WriteString(w, EncodeCSV(rows)); err != nil {
		return false, fmt.Errorf("write csv: %w", err)
	}
	return true, nil
}

func joinCells(cells []string) string {
	escaped := make([]string, len(cells))
	for i, c := range cells {
		escaped[i] = EscapeCell(c)
	}
	return strings.Join(escaped, ",")
}
