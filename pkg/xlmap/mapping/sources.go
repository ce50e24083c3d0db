package mapping

import (
	"encoding/csv"
	"io"
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

func readCSV(r io.Reader) (*table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	// encoding/csv drops blank lines, so source lines come from FieldPos.
	var (
		records [][]string
		lines   []int
	)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "parse csv")
		}
		line, _ := reader.FieldPos(0)
		records = append(records, record)
		lines = append(lines, line)
	}

	t := tableFromRows(records)
	if len(t.header) > 0 {
		t.lines = lines[len(lines)-len(t.rows):]
	}
	return t, nil
}

func readXLSX(r io.Reader, sheet string) (*table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "open xlsx")
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.New("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.Wrapf(err, "read sheet %q", sheet)
	}
	return tableFromRows(rows), nil
}

// tableFromRows takes the first non-blank row as the header.
func tableFromRows(rows [][]string) *table {
	for i, row := range rows {
		if isBlankRow(row) {
			continue
		}
		return &table{header: row, rows: rows[i+1:], firstLine: i + 2}
	}
	return &table{}
}

// yamlDocument is the YAML mapping layout:
//
//	fields:
//	  - category: Property
//	    field_name: PROPERTY_NAME
//	    sheet_name: Assumptions
//	    cell_address: $C$5
type yamlDocument struct {
	Fields []map[string]string `yaml:"fields"`
}

func readYAML(r io.Reader) (*table, error) {
	var doc yamlDocument
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrap(err, "parse yaml")
	}

	t := &table{firstLine: 1}
	index := make(map[string]int)
	for _, rec := range doc.Fields {
		for _, key := range sortedKeys(rec) {
			if _, ok := index[key]; !ok {
				index[key] = len(t.header)
				t.header = append(t.header, key)
			}
		}
	}
	for _, rec := range doc.Fields {
		row := make([]string, len(t.header))
		for k, v := range rec {
			row[index[k]] = v
		}
		t.rows = append(t.rows, row)
	}
	return t, nil
}

// sortedKeys puts the canonical columns first so headers are stable.
func sortedKeys(rec map[string]string) []string {
	order := append(append([]string{}, requiredColumns...), colExpectedValue)
	var keys []string
	seen := make(map[string]bool)
	for _, k := range order {
		if _, ok := rec[k]; ok {
			keys = append(keys, k)
			seen[k] = true
		}
	}
	var rest []string
	for k := range rec {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}
