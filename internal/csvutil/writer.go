// Package csvutil writes CSV where every field is wrapped in double quotes.
// encoding/csv only quotes fields that need it, and spreadsheet imports of
// the portal exports expect uniform quoting.
package csvutil

import (
	"bufio"
	"io"
	"strings"
)

// Escape doubles embedded quotes and wraps the value in quotes.
func Escape(field string) string {
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}

// WriteAll writes every record as one quoted line terminated by a newline.
func WriteAll(w io.Writer, records [][]string) error {
	bw := bufio.NewWriter(w)
	for _, record := range records {
		for i, field := range record {
			if i > 0 {
				if err := bw.WriteByte(','); err != nil {
					return err
				}
			}
			if _, err := bw.WriteString(Escape(field)); err != nil {
				return err
			}
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}
