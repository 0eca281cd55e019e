// Package rterror implements the evaluator's error model (spec.md §7):
// abrupt failure, thrown, and raised/definitional errors all carry the
// same RuntimeError payload — an error type tag, a near field (source
// position), a where field (action label chain), and free-form arguments
// — generalizing the teacher's internal/errors.SentraError (type tag +
// location + call stack + Error() string rendering).
package rterror

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// Category distinguishes which of the three propagation paths (spec.md
// §7) a RuntimeError is currently following. A single RuntimeError value
// can change Category through Promote (Raised to Failure).
type Category string

const (
	CategoryFailure Category = "failure" // abrupt failure: unwinds running rollback
	CategoryThrown  Category = "thrown"  // non-local exit (RETURN/BREAK/THROW/HALT)
	CategoryRaised  Category = "raised"  // value-level, propagates past silent operators
)

// Tag names a specific error condition, mirroring the *_Raw identifiers
// spec.md §7 calls out by name.
type Tag string

const (
	TagBadBranchType      Tag = "Error_Bad_Branch_Type_Raw"
	TagIndexOutOfRange     Tag = "Error_Index_Out_Of_Range_Raw"
	TagSeriesDataFreed     Tag = "Error_Series_Data_Freed_Raw"
	TagIllegalCr           Tag = "Error_Illegal_Cr_Raw"
	TagNoMemory            Tag = "Error_No_Memory"
	TagBadReturnType       Tag = "Error_Bad_Return_Type"
	TagProtectedWrite      Tag = "Error_Protected_Write"
	TagUnboundWord         Tag = "Error_Not_Bound_Raw"
	TagBadRefinement       Tag = "Error_Bad_Refinement_Raw"
	TagArgTypeMismatch     Tag = "Error_Arg_Type_Raw"
	TagRelativeUnspecified Tag = "Error_Unspecified_Relative_Raw"
	TagWrongFlavor         Tag = "Error_Wrong_Series_Flavor_Raw"
	TagFixedCapacity       Tag = "Error_Fixed_Size_Series_Raw"
	TagUncaughtThrow       Tag = "Error_No_Catch_Raw"
	TagStackImbalance      Tag = "Error_Level_Imbalance_Raw"
)

// Where identifies one link of the action label chain attached to a
// RuntimeError, e.g. the running action's label at the point of failure.
type Where struct {
	Label string
	Near  string
}

// RuntimeError is the payload shared by all three error categories.
type RuntimeError struct {
	Category Category
	Tag      Tag
	Message  string
	Near     string
	Where    []Where
	Args     []any

	// ThrowLabel is set only for CategoryThrown: the symbol a CATCH
	// construct matches against (spec.md §4.4, §7).
	ThrowLabel string
	ThrowValue any
}

func (e *RuntimeError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s: %s", e.Tag, e.Message))
	if e.Near != "" {
		sb.WriteString(fmt.Sprintf(" (near %s)", e.Near))
	}
	if len(e.Where) > 0 {
		sb.WriteString("\nwhere:")
		for _, w := range e.Where {
			if w.Label != "" {
				sb.WriteString(fmt.Sprintf("\n  %s (%s)", w.Label, w.Near))
			} else {
				sb.WriteString(fmt.Sprintf("\n  %s", w.Near))
			}
		}
	}
	return sb.String()
}

// WithWhere appends one action-label-chain frame and returns e for
// chaining, mirroring the teacher's AddStackFrame builder style.
func (e *RuntimeError) WithWhere(label, near string) *RuntimeError {
	e.Where = append(e.Where, Where{Label: label, Near: near})
	return e
}

// New constructs an abrupt-failure RuntimeError.
func New(tag Tag, message string, args ...any) *RuntimeError {
	return &RuntimeError{Category: CategoryFailure, Tag: tag, Message: message, Args: args}
}

// Raised constructs a raised/definitional error: it propagates silently
// until the first operator that does not opt into meta-handling it.
func Raised(tag Tag, message string, args ...any) *RuntimeError {
	return &RuntimeError{Category: CategoryRaised, Tag: tag, Message: message, Args: args}
}

// Thrown constructs a non-local exit token with the given catch label.
func Thrown(label string, value any) *RuntimeError {
	return &RuntimeError{Category: CategoryThrown, Tag: TagUncaughtThrow,
		Message: fmt.Sprintf("thrown to %q", label), ThrowLabel: label, ThrowValue: value}
}

// Promote turns a raised error into an abrupt failure (spec.md §7).
// Nothing in this module calls it: the Action_Executor passes a raised
// error to the trampoline unchanged, and the trampoline ends the run with
// it whether its category is raised or failure.
func (e *RuntimeError) Promote() *RuntimeError {
	e.Category = CategoryFailure
	return e
}

// --- constructors used directly by internal/series and internal/ctx ---

func IndexOutOfRange(index, length int) *RuntimeError {
	return New(TagIndexOutOfRange,
		fmt.Sprintf("index %d out of range (length %d)", index, length), index, length)
}

func IsotopeInArray(h fmt.Stringer) *RuntimeError {
	return New(TagBadBranchType,
		fmt.Sprintf("attempt to store isotope of %s into an array cell", h), h)
}

func WrongFlavor(got, want string) *RuntimeError {
	return New(TagWrongFlavor, fmt.Sprintf("series flavor %s is not %s", got, want), got, want)
}

func FixedCapacity(flavor string) *RuntimeError {
	return New(TagFixedCapacity, fmt.Sprintf("%s series has fixed capacity", flavor), flavor)
}

func NoMemory(requested uint64) *RuntimeError {
	return New(TagNoMemory, fmt.Sprintf("allocation of %s failed", humanize.Bytes(requested)), requested)
}

func SeriesDataFreed(size uint64) *RuntimeError {
	return New(TagSeriesDataFreed,
		fmt.Sprintf("series of %s freed while still referenced", humanize.Bytes(size)), size)
}

func UnboundWord(name string) *RuntimeError {
	return New(TagUnboundWord, fmt.Sprintf("%s has no binding", name), name)
}

func BadRefinement(name string) *RuntimeError {
	return New(TagBadRefinement, fmt.Sprintf("refinement %s filled incorrectly", name), name)
}

func ArgTypeMismatch(param, got string) *RuntimeError {
	return New(TagArgTypeMismatch, fmt.Sprintf("argument to %s has disallowed type %s", param, got), param, got)
}

func RelativeUnspecified(word string) *RuntimeError {
	return New(TagRelativeUnspecified,
		fmt.Sprintf("relative word %s evaluated without a specifier", word), word)
}

func BadReturnType(label string) *RuntimeError {
	return New(TagBadReturnType, fmt.Sprintf("%s must return none per its []  return spec", label), label)
}

func LevelImbalance(pushed, dropped int) *RuntimeError {
	return New(TagStackImbalance,
		fmt.Sprintf("level push/drop imbalance: %d pushed, %d dropped", pushed, dropped), pushed, dropped)
}
