package validate

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"taskdesk/internal/models"
	"taskdesk/internal/monitor"
)

const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 1000
	MaxNotesLength       = 2000
	MaxEmailLength       = 254
	MinPasswordLength    = 6
	MaxPasswordLength    = 255
	maxEnumLength        = 50
)

// Error is a validation failure with a human-readable reason. It is never
// retried and is safe to surface to the user verbatim.
type Error struct {
	Reason string
}

func (e *Error) Error() string {
	return e.Reason
}

func newError(format string, args ...any) *Error {
	return &Error{Reason: fmt.Sprintf(format, args...)}
}

// Injection signatures that reject the input outright.
var injectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(SELECT|INSERT|UPDATE|DELETE|DROP|UNION|ALTER|CREATE|EXEC|EXECUTE)\b`),
	regexp.MustCompile(`--|/\*|\*/`),
	regexp.MustCompile(`(?i)\b(OR|AND)\s+\d+\s*=\s*\d+`),
	regexp.MustCompile("['\";\\\\]"),
	regexp.MustCompile(`(?i)\b(SCRIPT|JAVASCRIPT|VBSCRIPT|ONLOAD|ONERROR)\b`),
}

// Markup signatures that are stripped from the input rather than fatal.
// The bare-tag pattern comes last so block patterns match whole elements first.
var markupPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)<script\b.*?</script\s*>`),
	regexp.MustCompile(`(?is)<iframe\b.*?</iframe\s*>`),
	regexp.MustCompile(`(?i)javascript:`),
	regexp.MustCompile(`(?i)\bon\w+\s*=`),
	regexp.MustCompile(`<[^>]*>`),
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var uuidPattern = regexp.MustCompile(
	`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[1-7][0-9a-fA-F]{3}-[89abAB][0-9a-fA-F]{3}-[0-9a-fA-F]{12}$`)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Validator sanitizes and constrains user-supplied fields before they
// reach persistence. Suspicious input is logged as a security event and,
// when a recorder is attached, kept for diagnostics.
type Validator struct {
	logger   zerolog.Logger
	recorder *monitor.Recorder
}

func New(logger zerolog.Logger) *Validator {
	return &Validator{logger: logger}
}

// AttachRecorder forwards security events to the given recorder.
func (v *Validator) AttachRecorder(recorder *monitor.Recorder) {
	v.recorder = recorder
}

// SanitizeText trims the input, enforces maxLength, rejects injection
// signatures and strips markup. The returned text contains no tags.
// maxLength counts characters, not encoded bytes.
func (v *Validator) SanitizeText(input string, maxLength int) (string, error) {
	sanitized := strings.TrimSpace(input)

	if utf8.RuneCountInString(sanitized) > maxLength {
		return "", newError("input too long, maximum %d characters allowed", maxLength)
	}

	for _, pattern := range injectionPatterns {
		if pattern.MatchString(sanitized) {
			v.logger.Warn().
				Str("pattern", pattern.String()).
				Msg("potential injection attempt detected")
			v.recorder.Record("security", "potential injection attempt detected", pattern.String())
			return "", newError("invalid input detected, please check your data")
		}
	}

	for _, pattern := range markupPatterns {
		if pattern.MatchString(sanitized) {
			v.logger.Warn().
				Str("pattern", pattern.String()).
				Msg("markup stripped from input")
			v.recorder.Record("security", "markup stripped from input", pattern.String())
			sanitized = pattern.ReplaceAllString(sanitized, "")
		}
	}

	return sanitized, nil
}

// TaskTitle sanitizes a title and requires it to be non-empty.
func (v *Validator) TaskTitle(title string) (string, error) {
	sanitized, err := v.SanitizeText(title, MaxTitleLength)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(sanitized) == "" {
		return "", newError("task title is required and cannot be empty")
	}
	return sanitized, nil
}

// TaskDescription passes empty input through unchanged.
func (v *Validator) TaskDescription(description string) (string, error) {
	if description == "" {
		return "", nil
	}
	return v.SanitizeText(description, MaxDescriptionLength)
}

// TaskNotes passes empty input through unchanged.
func (v *Validator) TaskNotes(notes string) (string, error) {
	if notes == "" {
		return "", nil
	}
	return v.SanitizeText(notes, MaxNotesLength)
}

// Email sanitizes, validates the local@domain.tld shape and lowercases.
func (v *Validator) Email(email string) (string, error) {
	sanitized, err := v.SanitizeText(email, MaxEmailLength)
	if err != nil {
		return "", err
	}
	if !emailPattern.MatchString(sanitized) {
		return "", newError("invalid email format")
	}
	return strings.ToLower(sanitized), nil
}

// Password enforces the password length policy. The password itself is
// never sanitized: any character is legal inside a credential.
func (v *Validator) Password(password string) (string, error) {
	length := utf8.RuneCountInString(password)
	if length < MinPasswordLength {
		return "", newError("password must be at least %d characters", MinPasswordLength)
	}
	if length > MaxPasswordLength {
		return "", newError("password must be at most %d characters", MaxPasswordLength)
	}
	return password, nil
}

// UUID validates the canonical textual format, including the version and
// variant nibbles.
func (v *Validator) UUID(id string) (string, error) {
	if !uuidPattern.MatchString(id) {
		return "", newError("invalid uuid format")
	}
	return id, nil
}

// Date parses the input against the accepted layouts and normalizes it to
// RFC 3339 UTC. Empty input passes through as empty. Dates outside a
// window of ten calendar years either side of the current year fail.
func (v *Validator) Date(raw string) (string, error) {
	if raw == "" {
		return "", nil
	}

	var parsed time.Time
	var err error
	for _, layout := range dateLayouts {
		parsed, err = time.Parse(layout, raw)
		if err == nil {
			break
		}
	}
	if err != nil {
		return "", newError("invalid date format")
	}

	year := time.Now().Year()
	minDate := time.Date(year-10, time.January, 1, 0, 0, 0, 0, time.UTC)
	maxDate := time.Date(year+10, time.December, 31, 23, 59, 59, 0, time.UTC)
	if parsed.Before(minDate) || parsed.After(maxDate) {
		return "", newError("date must be within reasonable range")
	}

	return parsed.UTC().Format(time.RFC3339), nil
}

// ParsedDate is Date for callers that want the normalized time itself.
// Empty input yields a nil time.
func (v *Validator) ParsedDate(raw string) (*time.Time, error) {
	normalized, err := v.Date(raw)
	if err != nil {
		return nil, err
	}
	if normalized == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, normalized)
	if err != nil {
		return nil, newError("invalid date format")
	}
	return &t, nil
}

// Status accepts exactly one of the fixed task statuses.
func (v *Validator) Status(status string) (string, error) {
	allowed := []string{models.StatusToDo, models.StatusInProgress, models.StatusDone}
	return v.oneOf(status, allowed, "status")
}

// Priority accepts exactly one of the fixed priority levels.
func (v *Validator) Priority(priority string) (string, error) {
	allowed := []string{models.PriorityUrgent, models.PriorityImportant, models.PriorityRoutine}
	return v.oneOf(priority, allowed, "priority")
}

func (v *Validator) oneOf(value string, allowed []string, field string) (string, error) {
	sanitized, err := v.SanitizeText(value, maxEnumLength)
	if err != nil {
		return "", err
	}
	for _, a := range allowed {
		if sanitized == a {
			return sanitized, nil
		}
	}
	return "", newError("invalid %s, must be one of: %s", field, strings.Join(allowed, ", "))
}
