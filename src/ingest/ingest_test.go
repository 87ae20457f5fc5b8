package ingest

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"25/12/2024", time.Date(2024, 12, 25, 0, 0, 0, 0, time.UTC), true},
		{"01/02/2025", time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), true},
		{"5/1/2025", time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC), true},
		{"03/04/25", time.Date(2025, 4, 3, 0, 0, 0, 0, time.UTC), true},
		{"12/13/2024", time.Time{}, false},
		{"31/02/2025", time.Time{}, false},
		{"2024-12-25", time.Date(2024, 12, 25, 0, 0, 0, 0, time.UTC), true},
		{" 2024-12-25 ", time.Date(2024, 12, 25, 0, 0, 0, 0, time.UTC), true},
		{"not-a-date", time.Time{}, false},
		{"", time.Time{}, false},
	}
	for _, tt := range tests {
		got, ok := ParseDate(tt.in)
		assert.Equal(t, tt.ok, ok, "ParseDate(%q) ok", tt.in)
		if tt.ok {
			assert.True(t, tt.want.Equal(got), "ParseDate(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"£1,234.56", "1234.56", true},
		{"-45.00", "-45.00", true},
		{"45", "45", true},
		{" $ 1,000 ", "1000", true},
		{"€12.50", "12.50", true},
		{"Â£9.99", "9.99", true},
		{"(45.00)", "-45.00", true},
		{"+3.10", "3.10", true},
		{"abc", "", false},
		{"12abc", "", false},
		{"Infinity", "", false},
		{"", "", false},
		{"£", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseAmount(tt.in)
		assert.Equal(t, tt.ok, ok, "ParseAmount(%q) ok", tt.in)
		if tt.ok {
			assert.True(t, dec(tt.want).Equal(got), "ParseAmount(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestParse_Basic(t *testing.T) {
	csv := "Date,Description,Amount\n25/12/2024,Office supplies,-45.00\n"
	res, err := Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, 0, res.Skipped)

	row := res.Rows[0]
	assert.Equal(t, 2, row.Line)
	assert.Equal(t, "Office supplies", row.Description)
	assert.True(t, row.Amount.Equal(dec("-45")))
	assert.Equal(t, 2024, row.Date.Year())
	assert.Equal(t, time.December, row.Date.Month())
	assert.Equal(t, 25, row.Date.Day())
	assert.Equal(t, "-45.00", row.Raw["amount"])
	assert.Equal(t, "25/12/2024", row.Raw["date"])
}

func TestParse_DropsBadRows(t *testing.T) {
	csv := strings.Join([]string{
		"Date,Description,Amount",
		"25/12/2024,Good one,-45.00",
		"not-a-date,Bad date,-1.00",
		"2024-12-24,Fallback date,£1,234.56",
		"24/12/2024,Bad amount,abc",
		"23/12/2024,Missing amount,",
	}, "\n")

	res, err := Parse(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 3, res.Skipped)
	require.Len(t, res.Rows, 2)
	assert.Equal(t, "Good one", res.Rows[0].Description)
	assert.Equal(t, "Fallback date", res.Rows[1].Description)
	// unquoted "£1,234.56" spills into a 4th field; the amount column holds "£1"
	assert.True(t, res.Rows[1].Amount.Equal(dec("1")))
}

func TestParse_QuotedThousands(t *testing.T) {
	csv := "Date,Description,Amount\n2024-12-24,Laptop,\"£1,234.56\"\n"
	res, err := Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.True(t, res.Rows[0].Amount.Equal(dec("1234.56")))
}

func TestParse_HeaderNormalization(t *testing.T) {
	csv := "\ufeff  DATE , Narrative ,AMOUNT\n01/03/2025,Coffee,-2.50\n"
	res, err := Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "Coffee", res.Rows[0].Description)
	assert.Equal(t, time.March, res.Rows[0].Date.Month())
}

func TestParse_AlternateColumns(t *testing.T) {
	csv := strings.Join([]string{
		"Transaction Date,Narrative,Debit,Credit",
		"01/03/2025,Train ticket,12.40,",
		"02/03/2025,Client payment,,500.00",
	}, "\n")

	res, err := Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)
	assert.True(t, res.Rows[0].Amount.Equal(dec("12.40")), "amounts keep the sign they were exported with")
	assert.True(t, res.Rows[1].Amount.Equal(dec("500")))
}

func TestParse_TolerantRows(t *testing.T) {
	csv := strings.Join([]string{
		"Date,Description,Amount,Balance",
		"",
		"25/12/2024,Short row,-1.00",
		"26/12/2024,Long row,-2.00,100.00,extra",
		",,,",
		"",
	}, "\n")

	res, err := Parse(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 0, res.Skipped)
	require.Len(t, res.Rows, 2)
	assert.Equal(t, "", res.Rows[0].Raw["balance"])
	assert.Equal(t, "100.00", res.Rows[1].Raw["balance"])
}

func TestParse_MissingDescription(t *testing.T) {
	csv := "Date,Amount\n25/12/2024,-3.00\n"
	res, err := Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "", res.Rows[0].Description)
}

func TestParse_Empty(t *testing.T) {
	res, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, res.Rows)
	assert.Equal(t, 0, res.Skipped)

	res, err = Parse(strings.NewReader("Date,Description,Amount\n"))
	require.NoError(t, err)
	assert.Empty(t, res.Rows)
}

func TestParse_CreatedCountMatchesParseableRows(t *testing.T) {
	lines := []string{"Date,Description,Amount"}
	valid := 0
	for i := 1; i <= 20; i++ {
		switch i % 4 {
		case 0:
			lines = append(lines, "garbage,Row,1.00")
		case 1:
			lines = append(lines, "10/01/2025,Row,nope")
		default:
			lines = append(lines, "10/01/2025,Row,-1.00")
			valid++
		}
	}
	res, err := Parse(strings.NewReader(strings.Join(lines, "\n")))
	require.NoError(t, err)
	assert.Len(t, res.Rows, valid)
	assert.Equal(t, 20-valid, res.Skipped)
}
