package currency

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ecbSample = `Date, USD, JPY, BGN, RUB, 
18 November 2021, 1.1319, 129.47, 1.9558, 82.5000, 
19 November 2021, 1.1271, 128.22, 1.9558, 82.8124, 
`

func TestParseRates_KeepsLastRow(t *testing.T) {
	table, err := ParseRates(strings.NewReader(ecbSample))
	require.NoError(t, err)

	assert.Equal(t, "2021-11-19", table.Date())
	assert.Equal(t, 4, table.Len())

	rub, ok := table.Rate("RUB")
	assert.True(t, ok)
	assert.Equal(t, 82.8124, rub)
}

func TestParseRates_BlankLineEndsData(t *testing.T) {
	data := "Date, USD\n18 November 2021, 1.10\n\n19 November 2021, 1.20\n"
	table, err := ParseRates(strings.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, "2021-11-18", table.Date())
	usd, _ := table.Rate("USD")
	assert.Equal(t, 1.10, usd)
}

func TestParseRates_Errors(t *testing.T) {
	cases := map[string]string{
		"header only": "Date, USD\n",
		"bad date":    "Date, USD\nyesterday, 1.1\n",
		"bad rate":    "Date, USD\n19 November 2021, abc\n",
		"empty":       "",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseRates(strings.NewReader(data))
			assert.Error(t, err)
		})
	}
}

func TestLoadRates_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eurofxref.csv")
	require.NoError(t, os.WriteFile(path, []byte(ecbSample), 0o600))

	table, err := LoadRates(path)
	require.NoError(t, err)
	assert.Equal(t, "2021-11-19", table.Date())

	_, err = LoadRates(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestToEuros_IdentityForEUR(t *testing.T) {
	table := NewRateTable("2021-11-19", nil)
	for _, amount := range []float64{0, 1, 123.456789, -42.5, 1e9} {
		got, err := table.ToEuros(amount, EUR)
		require.NoError(t, err)
		assert.Equal(t, amount, got)
	}
}

func TestToEuros_Converts(t *testing.T) {
	table := NewRateTable("2021-11-19", map[string]float64{"RUB": 82.8124, "USD": 1.1271})

	got, err := table.ToEuros(10000, "RUB")
	require.NoError(t, err)
	assert.Equal(t, 120.75, got)

	got, err = table.ToEuros(100, "USD")
	require.NoError(t, err)
	assert.Equal(t, 88.72, got)
}

func TestToEuros_HalfCentTiesRoundToEven(t *testing.T) {
	table := NewRateTable("2021-11-19", map[string]float64{"USD": 2})

	cases := map[float64]float64{
		2.25: 1.12,
		0.25: 0.12,
		2.75: 1.38,
		0.05: 0.03,
	}
	for amount, want := range cases {
		got, err := table.ToEuros(amount, "USD")
		require.NoError(t, err)
		assert.Equal(t, want, got, "ToEuros(%v, USD)", amount)
	}
}

func TestToEuros_UnknownCurrency(t *testing.T) {
	table := NewRateTable("2021-11-19", map[string]float64{"USD": 1.1})
	_, err := table.ToEuros(10, "XXX")
	assert.ErrorIs(t, err, ErrUnknownCurrency)
}
