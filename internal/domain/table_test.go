package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, csv string) *Table {
	t.Helper()
	tbl, err := ParseTable(strings.NewReader(csv), ParseOptions{})
	require.NoError(t, err)
	return tbl
}

func TestParseTable(t *testing.T) {
	t.Run("header and rows", func(t *testing.T) {
		tbl := parse(t, "ID,Weather,Lat\n1,Rain,40.1\n2,Clear,40.2\n")

		assert.Equal(t, []string{"ID", "Weather", "Lat"}, tbl.Columns)
		assert.Equal(t, 2, tbl.Len())
		weather, ok := tbl.Column("Weather")
		require.True(t, ok)
		assert.Equal(t, []string{"Rain", "Clear"}, weather)
	})

	t.Run("header only", func(t *testing.T) {
		tbl := parse(t, "a,b,c\n")
		assert.Equal(t, 0, tbl.Len())
		assert.Len(t, tbl.Columns, 3)
	})

	t.Run("short rows are padded", func(t *testing.T) {
		tbl := parse(t, "a,b,c\n1\n")
		c, ok := tbl.Column("c")
		require.True(t, ok)
		assert.Equal(t, []string{""}, c)
	})

	t.Run("quoted fields with delimiters", func(t *testing.T) {
		tbl := parse(t, "Weather,Road\n\"Rain, heavy\",Wet\n")
		w, _ := tbl.Column("Weather")
		assert.Equal(t, []string{"Rain, heavy"}, w)
	})

	t.Run("byte order mark is stripped", func(t *testing.T) {
		tbl := parse(t, "\xEF\xBB\xBFWeather,Road\nRain,Wet\n")
		assert.Equal(t, "Weather", tbl.Columns[0])
	})

	t.Run("windows-1252 input is decoded", func(t *testing.T) {
		tbl := parse(t, "Weather\nFr\xEDo\n")
		w, _ := tbl.Column("Weather")
		assert.Equal(t, []string{"Frío"}, w)
	})

	t.Run("semicolon delimiter is sniffed", func(t *testing.T) {
		tbl := parse(t, "Weather;Road;Lat\nRain;Wet;1.5\n")
		assert.Equal(t, []string{"Weather", "Road", "Lat"}, tbl.Columns)
	})

	t.Run("forced delimiter", func(t *testing.T) {
		tbl, err := ParseTable(strings.NewReader("a|b\n1|2\n"), ParseOptions{Delimiter: '|'})
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, tbl.Columns)
	})

	t.Run("duplicate and blank headers", func(t *testing.T) {
		tbl := parse(t, "hour,hour,,hour\n1,2,3,4\n")
		assert.Equal(t, []string{"hour", "hour.1", "Unnamed: 2", "hour.2"}, tbl.Columns)
	})

	t.Run("header whitespace is preserved", func(t *testing.T) {
		tbl := parse(t, " hour ,x,  \n5,a,\n6,b,\n")
		assert.Equal(t, []string{" hour ", "x", "Unnamed: 2"}, tbl.Columns)
		assert.False(t, tbl.HasColumn("hour"))
	})
}

func TestParseTable_Unparsable(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"whitespace only", "  \n\n"},
		{"unterminated quote", "Weather,Road\n\"Rain,Wet\n"},
		{"bare quote", "Weather,Road\nRa\"in,Wet\n"},
		{"too many fields", "a,b\n1,2,3\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, err := ParseTable(strings.NewReader(tt.input), ParseOptions{})
			require.Error(t, err)
			assert.Nil(t, tbl)
			assert.True(t, errors.Is(err, ErrUnparsableInput))
		})
	}
}

func TestIsMissing(t *testing.T) {
	for _, v := range []string{"", "  ", "NA", "N/A", "NaN", "nan", "NULL", "null", "None", "#N/A", "<NA>"} {
		assert.True(t, IsMissing(v), "%q should be missing", v)
	}
	for _, v := range []string{"0", "Rain", "none at all", "Unknown"} {
		assert.False(t, IsMissing(v), "%q should not be missing", v)
	}
}
