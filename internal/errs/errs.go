// Package errs implements the error taxonomy of spec.md §7: a closed set of
// kinds grouped by subsystem, a Record carrying file/line/key-path context,
// and a Handler that accumulates Config-scope records without aborting
// parsing (the propagation policy spec.md §7 requires).
package errs

import (
	"fmt"
	"strings"
)

// Kind is one error kind from the §7 taxonomy.
type Kind string

const (
	// Config
	InvalidValueType Kind = "InvalidValueType"
	InvalidValue     Kind = "InvalidValue"
	InvalidRange     Kind = "InvalidRange"
	MissingKey       Kind = "MissingKey"
	UnknownKey       Kind = "UnknownKey"
	ParseError       Kind = "ParseError"

	// Metadata header
	MissingHelp                 Kind = "MissingHelp"
	MissingSyntax                Kind = "MissingSyntax"
	MissingSubkey                Kind = "MissingSubkey"
	DuplicateKey                 Kind = "DuplicateKey"
	GroupEmptyPart               Kind = "GroupEmptyPart"
	GroupUnknownConfigKey        Kind = "GroupUnknownConfigKey"
	GroupMissingParameters       Kind = "GroupMissingParameters"
	ParameterEmptyPart           Kind = "ParameterEmptyPart"
	ParameterInvalidKeyValue     Kind = "ParameterInvalidKeyValue"
	ParameterUnknownConfigKey    Kind = "ParameterUnknownConfigKey"
	ParameterMissingDescription  Kind = "ParameterMissingDescription"
	ContinueWithoutKey           Kind = "ContinueWithoutKey"
	MetadataHeaderMissingHelp    Kind = "MetadataHeaderMissingHelp"
	MetadataHeaderMissingSyntax  Kind = "MetadataHeaderMissingSyntax"

	// Arg parse
	ParserBuildError      Kind = "ParserBuildError"
	ArgumentParsingError  Kind = "ArgumentParsingError"

	// Provisioning
	Exec           Kind = "Exec"
	Cache          Kind = "Cache"
	VersionNotFound Kind = "VersionNotFound"
	InstallFailed   Kind = "InstallFailed"

	// Sync
	Timeout       Kind = "Timeout"
	MismatchedInit Kind = "MismatchedInit"
	IoError        Kind = "IoError"
)

// Record is one accumulated or immediate error occurrence.
type Record struct {
	Kind     Kind
	File     string
	Line     int
	KeyPath  []string
	Expected string
	Actual   string
	Extra    map[string]string
}

func (r Record) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s", r.Kind)
	if len(r.KeyPath) > 0 {
		fmt.Fprintf(&b, " at %s", strings.Join(r.KeyPath, "."))
	}
	if r.File != "" {
		if r.Line > 0 {
			fmt.Fprintf(&b, " (%s:%d)", r.File, r.Line)
		} else {
			fmt.Fprintf(&b, " (%s)", r.File)
		}
	}
	if r.Expected != "" || r.Actual != "" {
		fmt.Fprintf(&b, ": expected %s, got %s", r.Expected, r.Actual)
	}
	for k, v := range r.Extra {
		fmt.Fprintf(&b, " [%s=%s]", k, v)
	}
	return b.String()
}

// Error wraps a single Record as an error value, used for the abort-style
// kinds (arg-parse, sync).
type Error struct {
	Record Record
}

func (e *Error) Error() string { return e.Record.String() }

// New constructs an abort-style *Error from a Kind and context.
func New(kind Kind, msg string) *Error {
	return &Error{Record{Kind: kind, Extra: map[string]string{"message": msg}}}
}

// Handler accumulates Config-scope Records without short-circuiting, per the
// §7 propagation policy: "Config-scope errors are accumulated ... and do not
// short-circuit parsing; a single accumulated error set is surfaced at the
// end of the command that requested parsing."
type Handler struct {
	records []Record
}

// NewHandler returns an empty accumulator.
func NewHandler() *Handler { return &Handler{} }

// Add records one error without aborting.
func (h *Handler) Add(r Record) { h.records = append(h.records, r) }

// Records returns all accumulated records in order.
func (h *Handler) Records() []Record { return h.records }

// HasErrors reports whether any record has been accumulated.
func (h *Handler) HasErrors() bool { return len(h.records) > 0 }

// Err turns the accumulated records into one error, or nil if none were
// recorded. Callers decide whether to treat the result as fatal, matching
// §7: "callers decide whether to treat any recorded error as fatal."
func (h *Handler) Err() error {
	if len(h.records) == 0 {
		return nil
	}
	lines := make([]string, len(h.records))
	for i, r := range h.records {
		lines[i] = r.String()
	}
	return fmt.Errorf("%d configuration error(s):\n%s", len(h.records), strings.Join(lines, "\n"))
}
