// internal/layout/columns.go
package layout

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidColumnName is returned for labels outside A..Z+.
var ErrInvalidColumnName = errors.New("invalid column name")

// ColumnNameFromNumber returns the spreadsheet label of a zero-based
// column: 0 is "A", 25 is "Z", 26 is "AA".
func ColumnNameFromNumber(n uint64) string {
	var buf [16]byte
	i := len(buf)
	for {
		i--
		buf[i] = byte('A' + n%26)
		if n < 26 {
			break
		}
		n = n/26 - 1
	}
	return string(buf[i:])
}

// ColumnNumberFromName is the inverse of ColumnNameFromNumber. Lowercase
// letters are accepted.
func ColumnNumberFromName(name string) (uint64, error) {
	if name == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidColumnName)
	}
	var n uint64
	for _, c := range name {
		switch {
		case c >= 'A' && c <= 'Z':
		case c >= 'a' && c <= 'z':
			c -= 'a' - 'A'
		default:
			return 0, fmt.Errorf("%w: %q", ErrInvalidColumnName, name)
		}
		digit := uint64(c-'A') + 1
		if n > (math.MaxUint64-digit)/26 {
			return 0, fmt.Errorf("%w: %q overflows", ErrInvalidColumnName, name)
		}
		n = n*26 + digit
	}
	return n - 1, nil
}
