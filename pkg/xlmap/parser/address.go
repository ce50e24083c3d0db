package parser

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/ukaji3/xlmap-go/pkg/xlmap/models"
	"github.com/xuri/excelize/v2"
)

// ErrInvalidAddress indicates a cell address outside the A1 grammar.
var ErrInvalidAddress = errors.New("invalid cell address")

// addressPattern accepts A1, $A1, A$1 and $A$1 forms.
var addressPattern = regexp.MustCompile(`^\$?([A-Z]+)\$?([0-9]+)$`)

// AddressError reports why an address could not be translated.
type AddressError struct {
	Address string
	Reason  string
}

func (e *AddressError) Error() string {
	return fmt.Sprintf("invalid cell address %q: %s", e.Address, e.Reason)
}

func (e *AddressError) Unwrap() error {
	return ErrInvalidAddress
}

// Translate converts an A1-style address into a zero-based coordinate.
//
// Absolute markers are ignored, so "$G$10" yields (9, 6). The column letters
// form a bijective base-26 numeral (A=1 .. Z=26, AA=27) and addresses past
// the sheet limits are rejected.
func Translate(address string) (models.Coordinate, error) {
	m := addressPattern.FindStringSubmatch(address)
	if m == nil {
		return models.Coordinate{}, &AddressError{Address: address, Reason: "expected a form like 'A1', 'B10' or '$C$5'"}
	}

	col, ok := columnNumber(m[1])
	if !ok {
		return models.Coordinate{}, &AddressError{Address: address, Reason: fmt.Sprintf("column %s is beyond the last column XFD", m[1])}
	}

	row, err := strconv.Atoi(m[2])
	if err != nil || row < 1 || row > MaxRows {
		return models.Coordinate{}, &AddressError{Address: address, Reason: fmt.Sprintf("row %s is outside 1..%d", m[2], MaxRows)}
	}

	return models.Coordinate{Row: row - 1, Col: col - 1}, nil
}

// columnNumber converts column letters to a 1-based column number.
func columnNumber(letters string) (int, bool) {
	n := 0
	for _, ch := range letters {
		n = n*26 + int(ch-'A'+1)
		if n > MaxColumns {
			return 0, false
		}
	}
	return n, true
}

// CellName renders a coordinate back to its canonical A1 address.
func CellName(c models.Coordinate) (string, error) {
	return excelize.CoordinatesToCellName(c.Col+1, c.Row+1)
}
