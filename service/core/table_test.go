package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTableRejectsUnorderedDates(t *testing.T) {
	_, err := NewTable([]time.Time{day(1), day(0)})
	require.Error(t, err)

	_, err = NewTable([]time.Time{day(0), day(0)})
	require.Error(t, err, "duplicate dates")
}

func TestTableColumns(t *testing.T) {
	table, err := NewTable([]time.Time{day(0), day(1)})
	require.NoError(t, err)

	require.NoError(t, table.SetColumn("b", []float64{1, 2}))
	require.NoError(t, table.SetColumn("a", []float64{3, 4}))
	require.Error(t, table.SetColumn("c", []float64{1}))

	assert.Equal(t, []string{"b", "a"}, table.Columns())
	assert.Equal(t, 4.0, table.Value("a", 1))

	values, ok := table.Column("b")
	require.True(t, ok)
	values[0] = 99
	assert.Equal(t, 1.0, table.Value("b", 0), "column returns a copy")

	_, ok = table.Column("missing")
	assert.False(t, ok)
}

func TestTableClone(t *testing.T) {
	table, err := NewTable([]time.Time{day(0)})
	require.NoError(t, err)
	require.NoError(t, table.SetColumn("a", []float64{1}))

	clone := table.Clone()
	require.NoError(t, clone.SetColumn("a", []float64{2}))
	require.NoError(t, clone.SetColumn("b", []float64{3}))

	assert.Equal(t, 1.0, table.Value("a", 0))
	assert.Equal(t, []string{"a"}, table.Columns())
	assert.Equal(t, []string{"a", "b"}, clone.Columns())
}

func TestNilTableLen(t *testing.T) {
	var table *Table
	assert.Equal(t, 0, table.Len())
}
