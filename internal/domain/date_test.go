package domain

import (
	"fmt"
	"testing"
	"time"

	"github.com/HendryAvila/foreman/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate_RoundTrip(t *testing.T) {
	// Every day of a leap year and a common year plus the range edges.
	var inputs []string
	for _, year := range []int{2023, 2024} {
		d := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
		for d.Year() == year {
			inputs = append(inputs, d.Format("02.01.2006"))
			d = d.AddDate(0, 0, 1)
		}
	}
	inputs = append(inputs, "01.01.1900", "31.12.2100")

	for _, in := range inputs {
		parsed, err := ParseDate(in)
		require.NoError(t, err, in)
		assert.Equal(t, in, FormatDate(parsed))
	}
}

func TestParseDate_Rejects(t *testing.T) {
	cases := []string{
		"",
		"1.1.2024",
		"01-01-2024",
		"2024-01-01",
		"01.01.24",
		"00.01.2024",
		"32.01.2024",
		"01.13.2024",
		"01.00.2024",
		"31.12.1899",
		"01.01.2101",
		"31.02.2024",
		"29.02.2023",
		"31.04.2024",
		" 01.01.2024",
		"01.01.2024x",
	}
	for _, in := range cases {
		t.Run(fmt.Sprintf("%q", in), func(t *testing.T) {
			_, err := ParseDate(in)
			require.Error(t, err)
			assert.Equal(t, apperr.KindInvalidFormat, apperr.KindOf(err))
			assert.Contains(t, apperr.Text(err), "dd.mm.yyyy")
		})
	}
}

func TestParseDate_LeapDay(t *testing.T) {
	d, err := ParseDate("29.02.2024")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", StoreDate(d))
}

func TestValidateRange(t *testing.T) {
	jan := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	assert.NoError(t, ValidateRange(nil, nil))
	assert.NoError(t, ValidateRange(&jan, nil))
	assert.NoError(t, ValidateRange(nil, &jan))
	assert.NoError(t, ValidateRange(&jan, &feb))
	assert.NoError(t, ValidateRange(&jan, &jan))

	err := ValidateRange(&feb, &jan)
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvertedRange, apperr.KindOf(err))
}

func TestStoredDate_RoundTrip(t *testing.T) {
	d, err := ParseDate("05.03.2025")
	require.NoError(t, err)

	back, err := ParseStoredDate(StoreDate(d))
	require.NoError(t, err)
	assert.True(t, d.Equal(back))
}

func TestParseProjectStatus(t *testing.T) {
	st, err := ParseProjectStatus(" Paused ")
	require.NoError(t, err)
	assert.Equal(t, ProjectPaused, st)

	_, err = ParseProjectStatus("done")
	assert.Error(t, err)
}

func TestUserLabel(t *testing.T) {
	u := User{FirstName: "Anna", LastName: "Ivanova", Email: "anna@example.com", Position: "Engineer"}
	assert.Equal(t, "Anna Ivanova <anna@example.com>, Engineer", u.Label())
}
