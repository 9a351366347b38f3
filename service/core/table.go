package core

import (
	"fmt"
	"slices"
	"time"
)

// Table is a date indexed set of named float64 columns. Rows are strictly ascending by date
// and every column has exactly one value per row.
type Table struct {
	dates   []time.Time
	names   []string
	columns map[string][]float64
}

func NewTable(dates []time.Time) (*Table, error) {
	for i := 1; i < len(dates); i++ {
		if !dates[i].After(dates[i-1]) {
			return nil, fmt.Errorf("table dates must be strictly ascending, %v does not follow %v", dates[i], dates[i-1])
		}
	}

	return &Table{
		dates:   slices.Clone(dates),
		columns: make(map[string][]float64),
	}, nil
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.dates)
}

func (t *Table) Dates() []time.Time {
	return slices.Clone(t.dates)
}

func (t *Table) Date(i int) time.Time {
	return t.dates[i]
}

// Columns returns the column names in insertion order
func (t *Table) Columns() []string {
	return slices.Clone(t.names)
}

func (t *Table) Column(name string) ([]float64, bool) {
	values, ok := t.columns[name]
	if !ok {
		return nil, false
	}
	return slices.Clone(values), true
}

func (t *Table) Value(name string, i int) float64 {
	return t.columns[name][i]
}

// SetColumn adds or replaces a column, values must line up with the table dates
func (t *Table) SetColumn(name string, values []float64) error {
	if len(values) != len(t.dates) {
		return fmt.Errorf("column %s has %d values, table has %d rows", name, len(values), len(t.dates))
	}
	if _, ok := t.columns[name]; !ok {
		t.names = append(t.names, name)
	}
	t.columns[name] = slices.Clone(values)
	return nil
}

func (t *Table) Clone() *Table {
	res := &Table{
		dates:   slices.Clone(t.dates),
		names:   slices.Clone(t.names),
		columns: make(map[string][]float64, len(t.columns)),
	}
	for name, values := range t.columns {
		res.columns[name] = slices.Clone(values)
	}
	return res
}
