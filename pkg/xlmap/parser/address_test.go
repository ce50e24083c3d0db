package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukaji3/xlmap-go/pkg/xlmap/models"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		address string
		row     int
		col     int
	}{
		{"A1", 0, 0},
		{"D6", 5, 3},
		{"$G$10", 9, 6},
		{"AA27", 26, 26},
		{"Z1", 0, 25},
		{"AZ3", 2, 51},
		{"$C5", 4, 2},
		{"F$5", 4, 5},
		{"XFD1048576", 1048575, 16383},
	}

	for _, tt := range tests {
		got, err := Translate(tt.address)
		require.NoError(t, err, tt.address)
		assert.Equal(t, models.Coordinate{Row: tt.row, Col: tt.col}, got, tt.address)
	}
}

func TestTranslateRejectsMalformed(t *testing.T) {
	tests := []string{
		"INVALID123",
		"",
		"A",
		"12",
		"A0",
		"a1",
		"1A",
		"A1B",
		"A$$1",
		"XFE1",
		"A1048577",
		"A99999999999999999999",
		"Sheet1!A1",
	}

	for _, address := range tests {
		_, err := Translate(address)
		require.Error(t, err, address)
		assert.ErrorIs(t, err, ErrInvalidAddress, address)

		var addrErr *AddressError
		require.ErrorAs(t, err, &addrErr)
		assert.Equal(t, address, addrErr.Address)
	}
}

func TestCellNameRoundTrip(t *testing.T) {
	for _, address := range []string{"A1", "D6", "AA27", "XFD1048576"} {
		c, err := Translate(address)
		require.NoError(t, err)
		name, err := CellName(c)
		require.NoError(t, err)
		assert.Equal(t, address, name)
	}
}

func TestSplitReference(t *testing.T) {
	tests := []struct {
		ref     string
		sheet   string
		address string
	}{
		{"'Rent Roll'!$C$5", "Rent Roll", "$C$5"},
		{"Sheet1!A1", "Sheet1", "A1"},
		{"'Owner''s Sheet'!B2", "Owner's Sheet", "B2"},
		{"  D6 ", "", "D6"},
	}

	for _, tt := range tests {
		sheet, address := SplitReference(tt.ref)
		assert.Equal(t, tt.sheet, sheet, tt.ref)
		assert.Equal(t, tt.address, address, tt.ref)
	}
}
