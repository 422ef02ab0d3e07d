package validate

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskdesk/internal/models"
	"taskdesk/internal/monitor"
)

func newTestValidator() *Validator {
	return New(zerolog.Nop())
}

func TestSanitizeTextRejectsInjection(t *testing.T) {
	v := newTestValidator()

	inputs := []string{
		"DROP TABLE tasks",
		"select id from users",
		"1 OR 1=1",
		"1 or 1 = 1",
		"it's fine",
		`say "hi"`,
		"a; b",
		"back\\slash",
		"comment -- here",
		"block /* comment */",
		"<script>alert(1)</script>",
		"javascript:void(0)",
		"x onerror=boom",
	}
	for _, input := range inputs {
		_, err := v.SanitizeText(input, 200)
		require.Error(t, err, "input %q", input)

		var vErr *Error
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "invalid input detected, please check your data", vErr.Reason)
	}
}

func TestSanitizeTextStripsMarkup(t *testing.T) {
	v := newTestValidator()

	cases := map[string]string{
		"<b>hello</b> world":       "hello world",
		"<iframe src=x></iframe>":  "",
		"<div onclick=bad>hi</div>": "hi",
		"plain text":               "plain text",
		"  padded  ":               "padded",
	}
	for input, want := range cases {
		got, err := v.SanitizeText(input, 200)
		require.NoError(t, err, "input %q", input)
		assert.Equal(t, want, got, "input %q", input)
	}
}

func TestSanitizeTextEnforcesMaxLength(t *testing.T) {
	v := newTestValidator()

	_, err := v.SanitizeText(strings.Repeat("a", 201), 200)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "200")

	got, err := v.SanitizeText(strings.Repeat("a", 200), 200)
	require.NoError(t, err)
	assert.Len(t, got, 200)
}

func TestSanitizeTextCountsCharactersNotBytes(t *testing.T) {
	v := newTestValidator()

	got, err := v.SanitizeText(strings.Repeat("é", 200), 200)
	require.NoError(t, err)
	assert.Equal(t, 200, len([]rune(got)))

	got, err = v.SanitizeText(strings.Repeat("日", 200), 200)
	require.NoError(t, err)
	assert.Equal(t, 200, len([]rune(got)))

	_, err = v.SanitizeText(strings.Repeat("é", 201), 200)
	require.Error(t, err)
}

func TestSanitizeTextRecordsSecurityEvents(t *testing.T) {
	v := newTestValidator()
	recorder := monitor.NewRecorder(10)
	v.AttachRecorder(recorder)

	_, err := v.SanitizeText("DROP TABLE tasks", 200)
	require.Error(t, err)

	entries := recorder.Snapshot()
	require.Len(t, entries, 1)
	assert.Equal(t, "security", entries[0].Kind)
}

func TestTaskTitle(t *testing.T) {
	v := newTestValidator()

	got, err := v.TaskTitle("  Buy milk  ")
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", got)

	_, err = v.TaskTitle("   ")
	require.Error(t, err)

	_, err = v.TaskTitle("<b></b>")
	require.Error(t, err)
}

func TestTaskDescriptionAndNotesAllowEmpty(t *testing.T) {
	v := newTestValidator()

	got, err := v.TaskDescription("")
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = v.TaskNotes("")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = v.TaskNotes(strings.Repeat("n", MaxNotesLength+1))
	require.Error(t, err)
}

func TestEmail(t *testing.T) {
	v := newTestValidator()

	got, err := v.Email("User@Example.COM")
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", got)

	for _, input := range []string{"", "no-at-sign", "user@domain", "a b@c.d"} {
		_, err := v.Email(input)
		require.Error(t, err, "input %q", input)
	}
}

func TestPassword(t *testing.T) {
	v := newTestValidator()

	got, err := v.Password("s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, "s3cret-pass", got)

	// Quotes and other sanitizer-hostile characters are fine in a password.
	_, err = v.Password(`pa'ss"word`)
	require.NoError(t, err)

	_, err = v.Password("short")
	require.Error(t, err)

	_, err = v.Password(strings.Repeat("p", MaxPasswordLength+1))
	require.Error(t, err)

	got, err = v.Password(strings.Repeat("ñ", MinPasswordLength))
	require.NoError(t, err)
	assert.Equal(t, MinPasswordLength, len([]rune(got)))
}

func TestUUID(t *testing.T) {
	v := newTestValidator()

	valid := []string{
		"3f2c67a0-9f2e-4d3a-8b1c-1a2b3c4d5e6f",
		"018f6d2e-1c3a-7b4d-8e5f-0a1b2c3d4e5f",
	}
	for _, id := range valid {
		got, err := v.UUID(id)
		require.NoError(t, err, "id %q", id)
		assert.Equal(t, id, got)
	}

	invalid := []string{
		"",
		"not-a-uuid",
		"3f2c67a0-9f2e-0d3a-8b1c-1a2b3c4d5e6f",
		"3f2c67a0-9f2e-4d3a-cb1c-1a2b3c4d5e6f",
		"3f2c67a09f2e4d3a8b1c1a2b3c4d5e6f",
	}
	for _, id := range invalid {
		_, err := v.UUID(id)
		require.Error(t, err, "id %q", id)
	}
}

func TestDateAcceptsKnownLayouts(t *testing.T) {
	v := newTestValidator()

	year := time.Now().Year()
	inputs := []string{
		fmt.Sprintf("%d-06-15T10:30:00Z", year),
		fmt.Sprintf("%d-06-15T10:30:00", year),
		fmt.Sprintf("%d-06-15 10:30:00", year),
		fmt.Sprintf("%d-06-15", year),
	}
	for _, input := range inputs {
		got, err := v.Date(input)
		require.NoError(t, err, "input %q", input)

		parsed, err := time.Parse(time.RFC3339, got)
		require.NoError(t, err, "normalized %q", got)
		assert.Equal(t, time.UTC, parsed.Location())
	}
}

func TestDateRejectsOutOfRange(t *testing.T) {
	v := newTestValidator()
	year := time.Now().Year()

	_, err := v.Date(fmt.Sprintf("%d-01-01", year-11))
	require.Error(t, err)

	_, err = v.Date(fmt.Sprintf("%d-01-01", year+11))
	require.Error(t, err)

	_, err = v.Date("15/06/2024")
	require.Error(t, err)

	got, err := v.Date("")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestParsedDate(t *testing.T) {
	v := newTestValidator()

	got, err := v.ParsedDate("")
	require.NoError(t, err)
	assert.Nil(t, got)

	year := time.Now().Year()
	got, err = v.ParsedDate(fmt.Sprintf("%d-06-15", year))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, year, got.Year())
}

func TestStatusAndPriority(t *testing.T) {
	v := newTestValidator()

	for _, status := range []string{models.StatusToDo, models.StatusInProgress, models.StatusDone} {
		got, err := v.Status(status)
		require.NoError(t, err)
		assert.Equal(t, status, got)
	}
	_, err := v.Status("Archived")
	require.Error(t, err)

	for _, priority := range []string{models.PriorityUrgent, models.PriorityImportant, models.PriorityRoutine} {
		got, err := v.Priority(priority)
		require.NoError(t, err)
		assert.Equal(t, priority, got)
	}
	_, err = v.Priority("Low")
	require.Error(t, err)
}
