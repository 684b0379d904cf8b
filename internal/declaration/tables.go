package declaration

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/specialistvlad/tariffgraph/internal/dag"
	"github.com/specialistvlad/tariffgraph/internal/decimal"
	"github.com/specialistvlad/tariffgraph/internal/table"
)

// defaultSentinel is the key row that supplies an ExactMatchTable's
// default value, matching the convention used across the rest of the
// declaration format's tabulated data.
const defaultSentinel = "__DEFAULT__"

// LoadRangeTable reads an ordered-range lookup table from a CSV file with
// "min", "max", "value" columns. A row whose min column equals
// defaultSentinel supplies the table's default instead of an interval.
func LoadRangeTable(path string) (*table.OrderedRangeTable, error) {
	records, header, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	minIdx, err := columnIndex(header, "min")
	if err != nil {
		return nil, err
	}
	maxIdx, err := columnIndex(header, "max")
	if err != nil {
		return nil, err
	}
	valIdx, err := columnIndex(header, "value")
	if err != nil {
		return nil, err
	}

	var rows []table.Interval
	var def *decimal.Decimal
	for i, rec := range records {
		v, err := decimal.NewFromString(rec[valIdx])
		if err != nil {
			return nil, fmt.Errorf("%s: row %d: value %q: %w", path, i, rec[valIdx], err)
		}
		if rec[minIdx] == defaultSentinel {
			def = &v
			continue
		}
		lo, err := decimal.NewFromString(rec[minIdx])
		if err != nil {
			return nil, fmt.Errorf("%s: row %d: min %q: %w", path, i, rec[minIdx], err)
		}
		hi, err := decimal.NewFromString(rec[maxIdx])
		if err != nil {
			return nil, fmt.Errorf("%s: row %d: max %q: %w", path, i, rec[maxIdx], err)
		}
		rows = append(rows, table.Interval{Lo: lo, Hi: hi, Value: v})
	}
	return table.NewOrderedRangeTable(rows, def), nil
}

// LoadExactTextTable reads a text-keyed exact-match table from a CSV
// file. keyColumn and valueColumn name the columns holding the key and
// the decimal value; a row keyed defaultSentinel supplies the default.
func LoadExactTextTable(path, keyColumn, valueColumn string) (*table.ExactMatchTable, error) {
	records, header, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	keyIdx, err := columnIndex(header, keyColumn)
	if err != nil {
		return nil, err
	}
	valIdx, err := columnIndex(header, valueColumn)
	if err != nil {
		return nil, err
	}

	rows := make(map[string]decimal.Decimal)
	var def *decimal.Decimal
	for i, rec := range records {
		v, err := decimal.NewFromString(rec[valIdx])
		if err != nil {
			return nil, fmt.Errorf("%s: row %d: value %q: %w", path, i, rec[valIdx], err)
		}
		if rec[keyIdx] == defaultSentinel {
			def = &v
			continue
		}
		rows[rec[keyIdx]] = v
	}
	return table.NewExactMatchTextTable(rows, def), nil
}

// LoadExactIntTable reads an integer-keyed exact-match table from a CSV
// file, following the same column and default-sentinel conventions as
// LoadExactTextTable.
func LoadExactIntTable(path, keyColumn, valueColumn string) (*table.ExactMatchTable, error) {
	records, header, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	keyIdx, err := columnIndex(header, keyColumn)
	if err != nil {
		return nil, err
	}
	valIdx, err := columnIndex(header, valueColumn)
	if err != nil {
		return nil, err
	}

	rows := make(map[int64]decimal.Decimal)
	var def *decimal.Decimal
	for i, rec := range records {
		v, err := decimal.NewFromString(rec[valIdx])
		if err != nil {
			return nil, fmt.Errorf("%s: row %d: value %q: %w", path, i, rec[valIdx], err)
		}
		if rec[keyIdx] == defaultSentinel {
			def = &v
			continue
		}
		k, err := decimal.NewFromString(rec[keyIdx])
		if err != nil {
			return nil, fmt.Errorf("%s: row %d: key %q: %w", path, i, rec[keyIdx], err)
		}
		rows[k.IntPart()] = v
	}
	return table.NewExactMatchIntTable(rows, def), nil
}

func readCSV(path string) (records [][]string, header []string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening table file %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	all, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("reading table file %s: %w", path, err)
	}
	if len(all) == 0 {
		return nil, nil, fmt.Errorf("table file %s has no header row", path)
	}
	return all[1:], all[0], nil
}

func columnIndex(header []string, name string) (int, error) {
	for i, h := range header {
		if h == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("missing column %q", name)
}

// TableSpec names one lookup table a declaration's Tables registry
// should load, mirroring the mode/column choices a LOOKUP node needs.
type TableSpec struct {
	Name        string
	Path        string
	Mode        dag.LookupMode
	KeyType     table.KeyType
	KeyColumn   string
	ValueColumn string
}

// LoadTables builds a Tables registry from a list of table specs,
// dispatching on Mode and KeyType to pick the right loader and column
// defaults.
func LoadTables(specs []TableSpec) (*dag.Tables, error) {
	tables := dag.NewTables()
	for _, spec := range specs {
		keyColumn := spec.KeyColumn
		if keyColumn == "" {
			keyColumn = "key"
		}
		valueColumn := spec.ValueColumn
		if valueColumn == "" {
			valueColumn = "value"
		}

		switch spec.Mode {
		case dag.RangeMode:
			t, err := LoadRangeTable(spec.Path)
			if err != nil {
				return nil, fmt.Errorf("table %q: %w", spec.Name, err)
			}
			if err := tables.AddRange(spec.Name, t); err != nil {
				return nil, err
			}
		case dag.ExactMode:
			var (
				t   *table.ExactMatchTable
				err error
			)
			if spec.KeyType == table.IntKey {
				t, err = LoadExactIntTable(spec.Path, keyColumn, valueColumn)
			} else {
				t, err = LoadExactTextTable(spec.Path, keyColumn, valueColumn)
			}
			if err != nil {
				return nil, fmt.Errorf("table %q: %w", spec.Name, err)
			}
			if err := tables.AddExact(spec.Name, t); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("table %q: unknown lookup mode", spec.Name)
		}
	}
	return tables, nil
}
