// Package expr evaluates JavaScript formulas for assertions, such as
// "Number(text) > 3" checked against an element's text.
package expr

import (
	"fmt"
	"sync"

	"github.com/dop251/goja"
)

// Engine wraps a goja runtime. It is safe for concurrent use, but
// evaluations are serialized.
type Engine struct {
	runtime   *goja.Runtime
	variables map[string]interface{}
	platform  string
	mu        sync.Mutex
}

// New creates an engine with the json() helper and the sirius global.
func New() *Engine {
	e := &Engine{
		runtime:   goja.New(),
		variables: make(map[string]interface{}),
	}
	e.runtime.Set("json", e.jsonFunc())
	e.runtime.Set("sirius", e.siriusObject())
	return e
}

// jsonFunc returns the json() helper, a JSON.parse that panics with a
// TypeError the script can catch.
func (e *Engine) jsonFunc() func(call goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 1 {
			panic(e.runtime.NewTypeError("json requires 1 argument"))
		}
		result, err := e.runtime.RunString(fmt.Sprintf("JSON.parse(%q)", call.Arguments[0].String()))
		if err != nil {
			panic(e.runtime.NewTypeError(fmt.Sprintf("invalid JSON: %v", err)))
		}
		return result
	}
}

func (e *Engine) siriusObject() *goja.Object {
	obj := e.runtime.NewObject()

	// sirius.platform is the active platform name
	_ = obj.DefineAccessorProperty("platform", e.runtime.ToValue(func() string {
		return e.platform
	}), nil, goja.FLAG_FALSE, goja.FLAG_TRUE)

	return obj
}

// SetVariable sets a global visible to scripts.
func (e *Engine) SetVariable(name string, value interface{}) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.variables[name] = value
	e.runtime.Set(name, value)
}

// SetVariables sets multiple globals.
func (e *Engine) SetVariables(vars map[string]interface{}) {
	for k, v := range vars {
		e.SetVariable(k, v)
	}
}

// Variable returns a value set with SetVariable.
func (e *Engine) Variable(name string) (interface{}, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, ok := e.variables[name]
	return v, ok
}

// SetPlatform sets sirius.platform.
func (e *Engine) SetPlatform(platform string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.platform = platform
}

// Eval evaluates a JavaScript expression and returns the exported result.
func (e *Engine) Eval(script string) (interface{}, error) {
	v, err := e.run(script)
	if err != nil {
		return nil, err
	}
	return v.Export(), nil
}

// EvalString evaluates script and formats the result. Null and undefined
// give "".
func (e *Engine) EvalString(script string) (string, error) {
	result, err := e.Eval(script)
	if err != nil {
		return "", err
	}
	if result == nil {
		return "", nil
	}
	return fmt.Sprintf("%v", result), nil
}

// EvalBool evaluates script and reports whether the result is truthy.
func (e *Engine) EvalBool(script string) (bool, error) {
	v, err := e.run(script)
	if err != nil {
		return false, err
	}
	return v.ToBoolean(), nil
}

func (e *Engine) run(script string) (goja.Value, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	v, err := e.runtime.RunString(script)
	if err != nil {
		return nil, fmt.Errorf("JS eval error: %w", err)
	}
	return v, nil
}
