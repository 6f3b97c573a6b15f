package prefs

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-prefs/pkg/state"
)

var evaluatorFactories = []struct {
	name string
	call string
	new  func(cache ProgramCache, registry *FunctionRegistry) Evaluator
}{
	{
		name: "expr",
		call: "between(Volume, 0, 100)",
		new: func(cache ProgramCache, registry *FunctionRegistry) Evaluator {
			opts := []ExprEvaluatorOption{}
			if cache != nil {
				opts = append(opts, ExprWithProgramCache(cache))
			}
			if registry != nil {
				opts = append(opts, ExprWithFunctionRegistry(registry))
			}
			return NewExprEvaluator(opts...)
		},
	},
	{
		name: "cel",
		call: `call("between", [Volume, 0, 100])`,
		new: func(cache ProgramCache, registry *FunctionRegistry) Evaluator {
			opts := []CELEvaluatorOption{}
			if cache != nil {
				opts = append(opts, CELWithProgramCache(cache))
			}
			if registry != nil {
				opts = append(opts, CELWithFunctionRegistry(registry))
			}
			return NewCELEvaluator(opts...)
		},
	},
	{
		name: "js",
		call: "between(Volume, 0, 100)",
		new: func(cache ProgramCache, registry *FunctionRegistry) Evaluator {
			opts := []JSEvaluatorOption{}
			if cache != nil {
				opts = append(opts, JSWithProgramCache(cache))
			}
			if registry != nil {
				opts = append(opts, JSWithFunctionRegistry(registry))
			}
			return NewJSEvaluator(opts...)
		},
	},
}

func TestEvaluatorsAgainstSettings(t *testing.T) {
	for _, factory := range evaluatorFactories {
		t.Run(factory.name, func(t *testing.T) {
			evaluator := factory.new(nil, nil)
			if evaluator == nil {
				t.Skipf("%s evaluator not built in", factory.name)
			}
			p := newGamePrefs(state.NewMemoryTarget(""), WithEvaluator(evaluator))

			cases := []struct {
				expr string
				want any
			}{
				{expr: `Volume > 50 && PlayerName == "Player"`, want: true},
				{expr: `MovementSpeed >= 200.0`, want: true},
				{expr: `settings["Volume"] == 80`, want: true},
				{expr: `Volume < 10`, want: false},
			}
			for _, tc := range cases {
				got, err := p.Evaluate(tc.expr)
				if err != nil {
					t.Fatalf("%s: Evaluate returned error: %v", tc.expr, err)
				}
				if got != tc.want {
					t.Fatalf("%s: expected %v, got %v", tc.expr, tc.want, got)
				}
			}
		})
	}
}

func TestEvaluatorsCallRegisteredFunctions(t *testing.T) {
	for _, factory := range evaluatorFactories {
		t.Run(factory.name, func(t *testing.T) {
			evaluator := factory.new(nil, DefaultFunctions())
			if evaluator == nil {
				t.Skipf("%s evaluator not built in", factory.name)
			}
			ctx := RuleContext{Snapshot: map[string]any{"Volume": int64(40)}}
			got, err := evaluator.Evaluate(ctx, factory.call)
			if err != nil {
				t.Fatalf("Evaluate returned error: %v", err)
			}
			if got != true {
				t.Fatalf("expected true, got %v", got)
			}
		})
	}
}

func TestEvaluatorsShareProgramCache(t *testing.T) {
	for _, factory := range evaluatorFactories {
		t.Run(factory.name, func(t *testing.T) {
			cache := &countingCache{inner: NewMapProgramCache()}
			evaluator := factory.new(cache, nil)
			if evaluator == nil {
				t.Skipf("%s evaluator not built in", factory.name)
			}
			ctx := RuleContext{Snapshot: map[string]any{"Volume": int64(40)}}
			for i := 0; i < 3; i++ {
				if _, err := evaluator.Evaluate(ctx, "Volume > 1"); err != nil {
					t.Fatalf("Evaluate returned error: %v", err)
				}
			}
			if cache.sets != 1 {
				t.Fatalf("expected one compiled program, got %d", cache.sets)
			}
		})
	}
}

func TestCompiledRulesReuseProgram(t *testing.T) {
	for _, factory := range evaluatorFactories {
		t.Run(factory.name, func(t *testing.T) {
			evaluator := factory.new(nil, nil)
			if evaluator == nil {
				t.Skipf("%s evaluator not built in", factory.name)
			}
			rule, err := evaluator.Compile("Volume * 2")
			if err != nil {
				t.Fatalf("Compile returned error: %v", err)
			}
			for _, volume := range []int64{1, 5} {
				got, err := rule.Evaluate(RuleContext{Snapshot: map[string]any{"Volume": volume}})
				if err != nil {
					t.Fatalf("Evaluate returned error: %v", err)
				}
				if toNumber(got) != float64(volume*2) {
					t.Fatalf("expected %d, got %v", volume*2, got)
				}
			}
		})
	}
}

func TestEvaluateReportsEngineErrors(t *testing.T) {
	p := newGamePrefs(state.NewMemoryTarget(""))

	_, err := p.Evaluate("Volume >")
	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) {
		t.Fatalf("expected EvaluationError, got %T (%v)", err, err)
	}
	if evalErr.Engine != "expr" || evalErr.Expr != "Volume >" {
		t.Fatalf("unexpected metadata %+v", evalErr)
	}
	if _, err := p.Evaluate(""); err == nil {
		t.Fatalf("expected error for empty expression")
	}
}

func TestEvaluateWithArgsAndClock(t *testing.T) {
	p := newGamePrefs(state.NewMemoryTarget(""))
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	got, err := p.EvaluateWith(RuleContext{Now: &now, Args: map[string]any{"limit": 90}}, "Volume < args.limit && now.Year() == 2026")
	if err != nil {
		t.Fatalf("EvaluateWith returned error: %v", err)
	}
	if got != true {
		t.Fatalf("expected true, got %v", got)
	}
}

func TestExprReadsClockFromRuleContext(t *testing.T) {
	now := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	rule, err := NewExprEvaluator().Compile("now.Year() * 100 + now.Day()")
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}
	got, err := rule.Evaluate(RuleContext{Snapshot: map[string]any{}, Now: &now})
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if got != 203002 {
		t.Fatalf("expected 203002, got %v (%T)", got, got)
	}
}

func TestEvaluatorEngineName(t *testing.T) {
	if got := evaluatorEngineName(NewExprEvaluator()); got != "expr" {
		t.Fatalf("expected expr, got %q", got)
	}
	if got := evaluatorEngineName(NewCELEvaluator()); got != "cel" {
		t.Fatalf("expected cel, got %q", got)
	}
	if got := evaluatorEngineName(nil); got != "unknown" {
		t.Fatalf("expected unknown, got %q", got)
	}
}

func TestFunctionRegistry(t *testing.T) {
	registry := NewFunctionRegistry()
	if err := registry.Register("Double", func(args ...any) (any, error) {
		return toNumber(args[0]) * 2, nil
	}); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if err := registry.Register("double", func(...any) (any, error) { return nil, nil }); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
	if err := registry.Register("nil", nil); err == nil {
		t.Fatalf("expected nil function error")
	}
	got, err := registry.Call("DOUBLE", 4)
	if err != nil || got != float64(8) {
		t.Fatalf("expected 8, got %v (%v)", got, err)
	}
	if _, err := registry.Call("missing"); err == nil || !strings.Contains(err.Error(), "not registered") {
		t.Fatalf("expected missing function error, got %v", err)
	}

	clone := registry.Clone()
	_ = clone.Register("extra", func(...any) (any, error) { return nil, nil })
	if len(registry.Names()) != 1 || len(clone.Names()) != 2 {
		t.Fatalf("clone should not share storage")
	}
}

func TestDefaultFunctions(t *testing.T) {
	registry := DefaultFunctions()
	if got, _ := registry.Call("between", 5, 1, 10); got != true {
		t.Fatalf("expected 5 within [1, 10]")
	}
	if got, _ := registry.Call("between", float32(10.5), 1, 10); got != false {
		t.Fatalf("expected 10.5 outside [1, 10]")
	}
	if _, err := registry.Call("between", "x", 1, 10); err == nil {
		t.Fatalf("expected type error")
	}
	if got, _ := registry.Call("nonblank", " \t"); got != false {
		t.Fatalf("expected blank string to fail")
	}
}

func TestWrapEvaluationErrorCreatesMetadata(t *testing.T) {
	base := errors.New("boom")
	err := wrapEvaluationError("expr", "Volume && missing", base)

	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) {
		t.Fatalf("expected EvaluationError, got %T", err)
	}
	if evalErr.Engine != "expr" || evalErr.Expr != "Volume && missing" {
		t.Fatalf("unexpected metadata %+v", evalErr)
	}
	if !errors.Is(err, base) {
		t.Fatalf("wrapped error should unwrap to base error")
	}
}

func TestWrapEvaluationErrorAugmentsExisting(t *testing.T) {
	base := errors.New("compile failure")
	existing := &EvaluationError{Engine: "expr", Err: base}

	err := wrapEvaluationError("cel", "rule", existing)
	if !errors.Is(err, base) {
		t.Fatalf("expected base error to unwrap")
	}
	if existing.Engine != "expr" {
		t.Fatalf("existing engine should not be overwritten, got %q", existing.Engine)
	}
	if existing.Expr != "rule" {
		t.Fatalf("expression should be filled, got %q", existing.Expr)
	}
	if wrapEvaluationError("expr", "x", nil) != nil {
		t.Fatalf("nil error should stay nil")
	}
}

type countingCache struct {
	inner ProgramCache
	sets  int
}

func (c *countingCache) Get(key string) (any, bool) {
	return c.inner.Get(key)
}

func (c *countingCache) Set(key string, value any) {
	c.sets++
	c.inner.Set(key, value)
}

func toNumber(v any) float64 {
	f, _ := toFloat(v)
	return f
}
