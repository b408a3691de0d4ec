// Package op defines the operation protocol shared by state queries,
// actions and getters: a unit of behavior that can be applied to a target
// and can describe itself for that target.
package op

import (
	"fmt"
	"strings"

	"github.com/devicelab-dev/sirius/pkg/core"
)

// Operation is applied to a target of type T and yields R.
// Implementations are stateless values.
type Operation[T, R any] interface {
	Apply(target T) (R, error)
	Describe(target T) string
}

// Predicate is a boolean operation.
type Predicate[T any] interface {
	Operation[T, bool]
}

// Action is an operation run for its side effect.
type Action[T any] interface {
	Operation[T, struct{}]
}

// Func adapts plain functions to Operation.
type Func[T, R any] struct {
	Fn   func(target T) (R, error)
	Desc func(target T) string
}

// Apply implements Operation.
func (f Func[T, R]) Apply(target T) (R, error) {
	return f.Fn(target)
}

// Describe implements Operation.
func (f Func[T, R]) Describe(target T) string {
	if f.Desc == nil {
		return ""
	}
	return f.Desc(target)
}

// New builds an operation from a function and a description function.
func New[T, R any](desc func(T) string, fn func(T) (R, error)) Func[T, R] {
	return Func[T, R]{Fn: fn, Desc: desc}
}

// Check builds a predicate from an error-free boolean function.
func Check[T any](desc func(T) string, fn func(T) bool) Predicate[T] {
	return Func[T, bool]{
		Fn:   func(target T) (bool, error) { return fn(target), nil },
		Desc: desc,
	}
}

// Do builds an action from a function returning only an error.
func Do[T any](desc func(T) string, fn func(T) error) Action[T] {
	return Func[T, struct{}]{
		Fn:   func(target T) (struct{}, error) { return struct{}{}, fn(target) },
		Desc: desc,
	}
}

// Describef returns a description function that formats target with format.
func Describef[T any](format string, args ...func(T) interface{}) func(T) string {
	return func(target T) string {
		vals := make([]interface{}, len(args))
		for i, a := range args {
			vals[i] = a(target)
		}
		return fmt.Sprintf(format, vals...)
	}
}

type all[T any] struct{ preds []Predicate[T] }

func (a all[T]) Apply(target T) (bool, error) {
	for _, p := range a.preds {
		ok, err := p.Apply(target)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func (a all[T]) Describe(target T) string {
	return join(target, a.preds, " and ")
}

// All holds when every predicate holds. It stops at the first failure.
func All[T any](preds ...Predicate[T]) Predicate[T] {
	return all[T]{preds: preds}
}

type anyOf[T any] struct{ preds []Predicate[T] }

func (a anyOf[T]) Apply(target T) (bool, error) {
	for _, p := range a.preds {
		ok, err := p.Apply(target)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func (a anyOf[T]) Describe(target T) string {
	return join(target, a.preds, " or ")
}

// Any holds when at least one predicate holds.
func Any[T any](preds ...Predicate[T]) Predicate[T] {
	return anyOf[T]{preds: preds}
}

type not[T any] struct{ pred Predicate[T] }

func (n not[T]) Apply(target T) (bool, error) {
	ok, err := n.pred.Apply(target)
	if err != nil {
		return false, err
	}
	return !ok, nil
}

func (n not[T]) Describe(target T) string {
	return "NOT " + n.pred.Describe(target)
}

// Not inverts a predicate.
func Not[T any](pred Predicate[T]) Predicate[T] {
	return not[T]{pred: pred}
}

func join[T any](target T, preds []Predicate[T], sep string) string {
	parts := make([]string, len(preds))
	for i, p := range preds {
		parts[i] = p.Describe(target)
	}
	return strings.Join(parts, sep)
}

// Verify applies pred to target and turns a false result into an assertion
// error whose message is the predicate's description. A failed assertion
// inside Apply, such as a missing element, is reported the same way with
// that failure as the cause; other errors are returned unchanged.
func Verify[T any](target T, pred Predicate[T]) error {
	ok, err := pred.Apply(target)
	if err != nil {
		if core.IsAssertionError(err) {
			return core.ErrVerificationFailed.WithMessage(pred.Describe(target)).WithCause(err)
		}
		return err
	}
	if !ok {
		return core.ErrVerificationFailed.WithMessage(pred.Describe(target))
	}
	return nil
}

// VerifyAll applies every predicate and reports all failures in one
// assertion error, one description per line.
func VerifyAll[T any](target T, preds ...Predicate[T]) error {
	var failed []string
	for _, p := range preds {
		ok, err := p.Apply(target)
		if err != nil && !core.IsAssertionError(err) {
			return err
		}
		if !ok {
			failed = append(failed, p.Describe(target))
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return core.ErrVerificationFailed.
		WithMessage(strings.Join(failed, "\n")).
		WithDetails(map[string]interface{}{"failed": len(failed), "total": len(preds)})
}

// AllOf reports whether pred holds for every target. Errors count as false.
func AllOf[T any](targets []T, pred Predicate[T]) bool {
	for _, t := range targets {
		ok, err := pred.Apply(t)
		if err != nil || !ok {
			return false
		}
	}
	return true
}

// AnyOf reports whether pred holds for at least one target. Errors count as false.
func AnyOf[T any](targets []T, pred Predicate[T]) bool {
	for _, t := range targets {
		if ok, err := pred.Apply(t); err == nil && ok {
			return true
		}
	}
	return false
}

// Run applies actions in order and stops at the first error, wrapping it
// with the failing action's description.
func Run[T any](target T, actions ...Action[T]) error {
	for _, a := range actions {
		if _, err := a.Apply(target); err != nil {
			return fmt.Errorf("%s: %w", a.Describe(target), err)
		}
	}
	return nil
}

// Get applies a getter and wraps its error with the getter's description.
func Get[T, R any](target T, getter Operation[T, R]) (R, error) {
	v, err := getter.Apply(target)
	if err != nil {
		return v, fmt.Errorf("%s: %w", getter.Describe(target), err)
	}
	return v, nil
}
