package currency

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// EUR is the pivot currency of the rate table.
const EUR = "EUR"

const rateDateLayout = "2 January 2006"

// ErrUnknownCurrency is returned when no rate exists for a currency.
var ErrUnknownCurrency = errors.New("unknown currency")

// RateTable maps a currency code to units per EUR for one dated snapshot.
// It is never modified after loading.
type RateTable struct {
	date  string
	rates map[string]float64
}

// NewRateTable builds a table from explicit rates. date is YYYY-MM-DD.
func NewRateTable(date string, rates map[string]float64) *RateTable {
	copied := make(map[string]float64, len(rates))
	for k, v := range rates {
		copied[k] = v
	}
	return &RateTable{date: date, rates: copied}
}

// LoadRates reads an ECB reference-rate CSV file and keeps its last row.
func LoadRates(path string) (*RateTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open rates file: %w", err)
	}
	defer f.Close()

	return ParseRates(f)
}

// ParseRates decodes ECB-shaped rate data:
//
//	Date, USD, JPY, BGN, ...
//	19 November 2021, 1.1271, 128.22, 1.9558, ...
//
// Reading stops at the first line holding at most one field.
func ParseRates(r io.Reader) (*RateTable, error) {
	var header []string
	var last *RateTable

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		raw := strings.Split(strings.TrimRightFunc(scanner.Text(), isSpace), ",")
		if len(raw) <= 1 {
			break
		}

		fields := make([]string, 0, len(raw))
		for _, field := range raw {
			field = strings.TrimSpace(field)
			if field != "" {
				fields = append(fields, field)
			}
		}

		if header == nil {
			header = fields
			continue
		}

		table, err := parseRateRow(header, fields)
		if err != nil {
			return nil, err
		}
		last = table
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read rates: %w", err)
	}
	if last == nil {
		return nil, errors.New("rates file holds no dated row")
	}

	return last, nil
}

func parseRateRow(header, fields []string) (*RateTable, error) {
	if len(fields) == 0 {
		return nil, errors.New("empty rate row")
	}

	day, err := time.Parse(rateDateLayout, fields[0])
	if err != nil {
		return nil, fmt.Errorf("parse rate date %q: %w", fields[0], err)
	}

	rates := make(map[string]float64, len(header))
	for i := 1; i < len(fields) && i < len(header); i++ {
		rate, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil, fmt.Errorf("parse rate for %s: %w", header[i], err)
		}
		rates[header[i]] = rate
	}

	return &RateTable{date: day.Format("2006-01-02"), rates: rates}, nil
}

// Date returns the snapshot date as YYYY-MM-DD.
func (t *RateTable) Date() string {
	return t.date
}

// Rate returns the units of currency per EUR.
func (t *RateTable) Rate(currency string) (float64, bool) {
	rate, ok := t.rates[currency]
	return rate, ok
}

// Len returns the number of currencies in the table.
func (t *RateTable) Len() int {
	return len(t.rates)
}

// ToEuros converts amount to EUR, rounded to cents. EUR amounts are returned as is.
func (t *RateTable) ToEuros(amount float64, currency string) (float64, error) {
	if currency == EUR {
		return amount, nil
	}

	rate, ok := t.rates[currency]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCurrency, currency)
	}
	if rate == 0 {
		return 0, fmt.Errorf("zero rate for %s", currency)
	}

	return roundCents(amount / rate), nil
}

// roundCents rounds the exact binary value to two decimals, half to even.
func roundCents(x float64) float64 {
	r, _ := strconv.ParseFloat(strconv.FormatFloat(x, 'f', 2, 64), 64)
	return r
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r' || r == '\n'
}
