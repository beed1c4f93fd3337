package apperr

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestText(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "not found with scope",
			err:  NotFound("stage", "Roof", `in project "Tower A"`),
			want: `Stage "Roof" not found in project "Tower A".` + "\nCheck the spelling or search for the stage first.",
		},
		{
			name: "ambiguous lists candidates",
			err:  Ambiguous("project", "Tower", "", []string{"Tower A (active)", "Tower B (active)"}),
			want: `Found 2 projects matching "Tower":` +
				"\n\n1. Tower A (active)\n2. Tower B (active)\n" +
				"\nPlease repeat the request with the exact project name.",
		},
		{
			name: "store failure shows the cause",
			err:  StoreFailure("search notes", errors.New("disk full")),
			want: "Database error while trying to search notes: disk full",
		},
		{
			name: "invalid input has no fix",
			err:  InvalidInput("object_name", "'object_name' requires 'project_name'."),
			want: "'object_name' requires 'project_name'.",
		},
		{
			name: "wrapped error is found in the chain",
			err:  fmt.Errorf("create stage: %w", InvertedRange()),
			want: "The start date cannot be later than the end date.",
		},
		{
			name: "foreign error becomes a store failure",
			err:  errors.New("boom"),
			want: "Database error while trying to complete the request: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Text(tt.err))
		})
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "message only",
			err:  InvalidInput("file", "Cannot read people.yaml."),
			want: "Error: Cannot read people.yaml.\n",
		},
		{
			name: "with fix",
			err:  Conflict("project", "Tower A", ""),
			want: "Error: A project named \"Tower A\" already exists.\nFix:   Choose a different project name.\n",
		},
		{
			name: "with cause",
			err:  StoreFailure("open the database", errors.New("database is locked")),
			want: "Error: Database error while trying to open the database\nCause: database is locked\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Format(false))
		})
	}
}

func TestFormat_Colored(t *testing.T) {
	orig := color.NoColor
	t.Cleanup(func() { color.NoColor = orig })
	color.NoColor = false

	out := Conflict("stage", "Foundation", "").Format(true)
	assert.Contains(t, out, "\x1b[")
	assert.Contains(t, out, "Foundation")

	plain := Conflict("stage", "Foundation", "").Format(false)
	assert.False(t, strings.Contains(plain, "\x1b["))
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want int
	}{
		{"store failure", StoreFailure("migrate", errors.New("locked")), ExitDatabase},
		{"invalid input", InvalidInput("file", "bad"), ExitInput},
		{"invalid format", InvalidFormat("start_date", "1.1.2025", "dd.mm.yyyy"), ExitInput},
		{"not found", NotFound("project", "Tower", ""), ExitInternal},
		{"dependent records", DependentRecords("project", "Tower A", 3), ExitInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.ExitCode())
		})
	}
}

func TestWrap(t *testing.T) {
	assert.NoError(t, Wrap(nil, "load"))

	conflict := Conflict("object", "Block 1", `in stage "Foundation"`)
	assert.Same(t, conflict, Wrap(conflict, "create the object"))

	wrapped := fmt.Errorf("tx: %w", conflict)
	assert.Equal(t, wrapped, Wrap(wrapped, "create the object"))

	cause := errors.New("connection reset")
	err := Wrap(cause, "load stages")
	e, ok := As(err)
	require.True(t, ok)
	assert.Equal(t, KindStoreFailure, e.Kind)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Database error while trying to load stages: connection reset", Text(err))
}

func TestKindOfAndIs(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"direct", Ambiguous("person", "Ivan", "", []string{"a", "b"}), KindAmbiguous},
		{"wrapped", fmt.Errorf("resolve: %w", NotFound("project", "X", "")), KindNotFound},
		{"reference", InvalidReference("responsible_id", "u-1"), KindInvalidReference},
		{"foreign", errors.New("io"), KindStoreFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}

	assert.True(t, Is(fmt.Errorf("x: %w", InvertedRange()), KindInvertedRange))
	assert.False(t, Is(errors.New("io"), KindStoreFailure), "foreign errors carry no kind")
}

func TestDependentRecords_CarriesCount(t *testing.T) {
	e := DependentRecords("stage", "Foundation", 4)
	assert.Equal(t, 4, e.Count)
	assert.Contains(t, e.Text(), "4 dependent record(s)")
	assert.Contains(t, e.Text(), "cascade=true")
}

func TestInvalidReference_HumanisesField(t *testing.T) {
	e := InvalidReference("lead_engineer_id", "u-9")
	assert.Equal(t, "lead_engineer_id", e.Field)
	assert.Equal(t, "The referenced lead engineer id (u-9) does not exist.", e.Text())
}
