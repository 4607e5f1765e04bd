package concat

import (
	"fmt"

	"github.com/pkg/errors"
)

// Error kinds. Every validation failure unwraps to exactly one of them.
var (
	// ErrInvalidArgument marks plans that violate the concatenation contract.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnimplemented marks legal plans the engine has no copy path for.
	ErrUnimplemented = errors.New("unimplemented")
)

// Rule identifies which compatibility rule a plan violated.
type Rule int

// Compatibility rules, in the order they are checked.
const (
	RuleNoSources Rule = iota + 1
	RuleExtent
	RuleRank
	RuleFormat
	RuleAxis
	RuleDataType
	RuleShape
	RuleAxisSum
	RuleBlocking
	RuleBuffer
)

var ruleNames = map[Rule]string{
	RuleNoSources: "no_sources",
	RuleExtent:    "bad_extent",
	RuleRank:      "rank_mismatch",
	RuleFormat:    "format_mismatch",
	RuleAxis:      "axis_out_of_range",
	RuleDataType:  "dtype_mismatch",
	RuleShape:     "shape_mismatch",
	RuleAxisSum:   "axis_sum_mismatch",
	RuleBlocking:  "unsupported_blocking",
	RuleBuffer:    "buffer_size_mismatch",
}

// String returns the rule name.
func (r Rule) String() string {
	if name, ok := ruleNames[r]; ok {
		return name
	}
	return fmt.Sprintf("rule(%d)", int(r))
}

// Kind returns the error kind the rule reports under.
func (r Rule) Kind() error {
	if r == RuleBlocking {
		return ErrUnimplemented
	}
	return ErrInvalidArgument
}

// Destination is the Source index used when the destination is at fault.
const Destination = -1

// ValidationError provides detailed information about a rejected plan.
type ValidationError struct {
	Rule    Rule   // Rule that failed
	Source  int    // Offending source index, Destination, or -2 when not tied to one tensor
	Details string // Human-readable details
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	switch {
	case e.Source == Destination:
		return fmt.Sprintf("%s: %s: destination: %s", e.Rule.Kind(), e.Rule, e.Details)
	case e.Source >= 0:
		return fmt.Sprintf("%s: %s: source %d: %s", e.Rule.Kind(), e.Rule, e.Source, e.Details)
	default:
		return fmt.Sprintf("%s: %s: %s", e.Rule.Kind(), e.Rule, e.Details)
	}
}

// Unwrap returns the error kind, so errors.Is(err, ErrUnimplemented) works.
func (e *ValidationError) Unwrap() error {
	return e.Rule.Kind()
}

const noTensor = -2

func fail(rule Rule, source int, format string, args ...any) error {
	return &ValidationError{Rule: rule, Source: source, Details: fmt.Sprintf(format, args...)}
}

// RuleOf extracts the failed rule from err, or 0 if err is not a validation error.
func RuleOf(err error) Rule {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Rule
	}
	return 0
}

// BufferSizeError reports a buffer whose byte length does not match its
// descriptor. source is the source index or Destination.
func BufferSizeError(source, got, want int) error {
	return fail(RuleBuffer, source, "buffer holds %d bytes, descriptor needs %d", got, want)
}

// BufferCountError reports a buffer list whose length differs from the
// number of source descriptors.
func BufferCountError(got, want int) error {
	return fail(RuleBuffer, noTensor, "%d source buffers for %d source descriptors", got, want)
}
