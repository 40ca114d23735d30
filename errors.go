// Package metagen holds the error taxonomy shared by the model-graph engine
// and the packages built on top of it.
package metagen

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a model-graph violation. The set is closed: every error
// the engine reports carries exactly one of these kinds.
type Kind uint8

const (
	// KindDuplicate is the registration of a name or id twice in one scope.
	KindDuplicate Kind = iota + 1
	// KindRelationMismatch is a relation name reused with an incompatible
	// cardinality or role.
	KindRelationMismatch
	// KindUnresolved is a relation target that does not resolve.
	KindUnresolved
	// KindAmbiguous is a resolution with many targets where one is required.
	KindAmbiguous
	// KindTraversal is a corrupted or cyclic walk over the graph.
	KindTraversal
	// KindBinding is an entity bound twice, or bound to the wrong type.
	KindBinding
)

var kindNames = [...]string{
	KindDuplicate:        "duplicate registration",
	KindRelationMismatch: "relation mismatch",
	KindUnresolved:       "unresolvable target",
	KindAmbiguous:        "ambiguous target",
	KindTraversal:        "traversal corruption",
	KindBinding:          "invalid binding",
}

// String returns the human readable name of the kind.
func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

// Sentinel errors, one per Kind. A *Error matches the sentinel of its kind
// with errors.Is.
var (
	ErrDuplicate        = errors.New("metagen: duplicate registration")
	ErrRelationMismatch = errors.New("metagen: relation mismatch")
	ErrUnresolved       = errors.New("metagen: unresolvable target")
	ErrAmbiguous        = errors.New("metagen: ambiguous target")
	ErrTraversal        = errors.New("metagen: traversal corruption")
	ErrBinding          = errors.New("metagen: invalid binding")
)

func (k Kind) sentinel() error {
	switch k {
	case KindDuplicate:
		return ErrDuplicate
	case KindRelationMismatch:
		return ErrRelationMismatch
	case KindUnresolved:
		return ErrUnresolved
	case KindAmbiguous:
		return ErrAmbiguous
	case KindTraversal:
		return ErrTraversal
	case KindBinding:
		return ErrBinding
	}
	return nil
}

// Error is a model-graph violation with the context it was detected in.
type Error struct {
	Kind     Kind
	Category string // Category of the offending vertex (if known)
	Name     string // Global or local name of the offending vertex
	Message  string
	Cause    error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("metagen: ")
	b.WriteString(e.Kind.String())
	if e.Category != "" {
		b.WriteString(" in ")
		b.WriteString(e.Category)
	}
	if e.Name != "" {
		fmt.Fprintf(&b, " %q", e.Name)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether the target is the sentinel error of e's kind.
func (e *Error) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

// NewError returns a new Error of the given kind.
func NewError(kind Kind, category, name, message string) *Error {
	return &Error{Kind: kind, Category: category, Name: name, Message: message}
}

// Errorf returns a new Error of the given kind with a formatted message.
func Errorf(kind Kind, category, name, format string, args ...any) *Error {
	return NewError(kind, category, name, fmt.Sprintf(format, args...))
}

// KindOf returns the kind of the first *Error in err's chain, and false if
// there is none.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// IsDuplicate reports whether err is a duplicate registration.
func IsDuplicate(err error) bool { return errors.Is(err, ErrDuplicate) }

// IsRelationMismatch reports whether err is a relation shape mismatch.
func IsRelationMismatch(err error) bool { return errors.Is(err, ErrRelationMismatch) }

// IsUnresolved reports whether err is an unresolvable target.
func IsUnresolved(err error) bool { return errors.Is(err, ErrUnresolved) }

// IsAmbiguous reports whether err is an ambiguous resolution.
func IsAmbiguous(err error) bool { return errors.Is(err, ErrAmbiguous) }

// IsTraversal reports whether err is a corrupted or cyclic traversal.
func IsTraversal(err error) bool { return errors.Is(err, ErrTraversal) }

// AggregateError represents multiple errors collected during an operation.
type AggregateError struct {
	Errors []error
}

// Error returns the error string.
func (e *AggregateError) Error() string {
	if len(e.Errors) == 0 {
		return "metagen: no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "metagen: %d errors:", len(e.Errors))
	for i, err := range e.Errors {
		fmt.Fprintf(&sb, "\n  [%d] %v", i+1, err)
	}
	return sb.String()
}

// Unwrap returns the collected errors, so errors.Is and errors.As look
// into every one of them.
func (e *AggregateError) Unwrap() []error {
	return e.Errors
}

// NewAggregateError returns a new AggregateError if there are errors,
// otherwise returns nil.
func NewAggregateError(errs ...error) error {
	var filtered []error
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return &AggregateError{Errors: filtered}
}
