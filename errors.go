package prefs

import (
	"errors"
	"fmt"
	"strings"

	pkgerrors "github.com/pkg/errors"

	"github.com/goliatone/go-prefs/internal/document"
)

var (
	// ErrKindMismatch reports a value whose kind differs from the declared
	// property kind, or that does not fit the backing field.
	ErrKindMismatch = errors.New("prefs: kind mismatch")
	// ErrUnsupportedKind reports an operation on a property that is not
	// persisted by kind.
	ErrUnsupportedKind = errors.New("prefs: unsupported kind")
	// ErrDuplicateProperty reports two properties declared under one name.
	ErrDuplicateProperty = errors.New("prefs: duplicate property")
	// ErrUnknownProperty reports a name that is not in the schema.
	ErrUnknownProperty = errors.New("prefs: unknown property")
	// ErrMalformedDocument reports a persisted document that is not a single
	// JSON object.
	ErrMalformedDocument = document.ErrMalformed
	// ErrRuleViolation reports restored settings rejected by Validate or by a
	// configured rule.
	ErrRuleViolation = errors.New("prefs: rule violation")
	// ErrNoEvaluator reports that no rule evaluator could be resolved.
	ErrNoEvaluator = errors.New("prefs: evaluator not configured")
)

// Op names the persistence step that failed.
type Op string

const (
	OpExists   Op = "exists"
	OpRead     Op = "read"
	OpDecode   Op = "decode"
	OpValidate Op = "validate"
	OpEncode   Op = "encode"
	OpWrite    Op = "write"
)

// PersistError describes a failed load or save step. Err carries a stack
// trace captured where the error was created.
type PersistError struct {
	Op       Op
	Location string
	Property string
	Err      error
}

func newPersistError(op Op, location, property string, err error) *PersistError {
	return &PersistError{
		Op:       op,
		Location: location,
		Property: property,
		Err:      pkgerrors.WithStack(err),
	}
}

func (e *PersistError) Error() string {
	if e == nil {
		return "<nil>"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "prefs: %s %s", e.Op, e.Location)
	if e.Property != "" {
		fmt.Fprintf(&b, " property=%s", e.Property)
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	return b.String()
}

func (e *PersistError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

type stackTracer interface {
	StackTrace() pkgerrors.StackTrace
}

// stackOf renders the innermost captured stack trace of err, if any.
func stackOf(err error) string {
	var tracer stackTracer
	if !errors.As(err, &tracer) {
		return ""
	}
	return strings.TrimSpace(fmt.Sprintf("%+v", tracer.StackTrace()))
}

// EvaluationError captures evaluator metadata alongside the originating error.
type EvaluationError struct {
	Engine string
	Expr   string
	Err    error
}

func (e *EvaluationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("prefs: %s evaluator %s: %v", e.Engine, describeExpression(e.Expr), e.Err)
}

func (e *EvaluationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func describeExpression(expr string) string {
	if expr == "" {
		return "expr=<empty>"
	}
	return fmt.Sprintf("expr=%q", expr)
}

func wrapEvaluatorError(engine string, err error) error {
	if err == nil {
		return nil
	}

	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		return err
	}

	if strings.HasPrefix(err.Error(), "prefs:") {
		return err
	}
	return fmt.Errorf("prefs: %s evaluator: %w", engine, err)
}

func wrapEvaluationError(engine, expr string, err error) error {
	if err == nil {
		return nil
	}

	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		if evalErr.Engine == "" {
			evalErr.Engine = engine
		}
		if evalErr.Expr == "" {
			evalErr.Expr = expr
		}
		return evalErr
	}

	return &EvaluationError{
		Engine: engine,
		Expr:   expr,
		Err:    err,
	}
}
