package prefs

import (
	"fmt"
	"time"
)

// Evaluate runs expr against the persisted properties of the live settings.
// Each property is bound by name; `settings` holds the same values as a map.
func (p *Prefs[S]) Evaluate(expr string) (any, error) {
	return p.EvaluateWith(RuleContext{}, expr)
}

// EvaluateWith runs expr using ctx, binding the live settings when
// ctx.Snapshot is nil.
func (p *Prefs[S]) EvaluateWith(ctx RuleContext, expr string) (any, error) {
	if expr == "" {
		return nil, fmt.Errorf("prefs: expression must not be empty")
	}
	evaluator, err := p.resolveEvaluator()
	if err != nil {
		return nil, err
	}
	if ctx.Snapshot == nil {
		ctx.Snapshot = p.ruleSnapshot(&p.value)
	}
	return p.runEvaluation(evaluator, ctx.withDefaults(), expr)
}

func (p *Prefs[S]) runEvaluation(evaluator Evaluator, ctx RuleContext, expr string) (any, error) {
	engine := evaluatorEngineName(evaluator)
	start := time.Now()
	value, err := evaluator.Evaluate(ctx, expr)
	err = wrapEvaluationError(engine, expr, err)
	p.logEvaluation(engine, expr, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return value, nil
}

// ruleSnapshot widens persisted values to string, int64 and float64 so every
// engine compares them the same way.
func (p *Prefs[S]) ruleSnapshot(s *S) map[string]any {
	props := p.schema.Supported()
	out := make(map[string]any, len(props))
	for _, prop := range props {
		v := prop.Get(s)
		switch v.Kind() {
		case KindFloat:
			f, _ := v.Float()
			out[prop.Name] = f
		default:
			out[prop.Name] = v.Interface()
		}
	}
	return out
}

func (p *Prefs[S]) resolveEvaluator() (Evaluator, error) {
	if evaluator := p.evaluator(); evaluator != nil {
		return evaluator, nil
	}
	var exprOpts []ExprEvaluatorOption
	if cache := p.programCache(); cache != nil {
		exprOpts = append(exprOpts, ExprWithProgramCache(cache))
	}
	if registry := p.functionRegistry(); registry != nil {
		exprOpts = append(exprOpts, ExprWithFunctionRegistry(registry))
	}
	defaultEvaluator := NewExprEvaluator(exprOpts...)
	if defaultEvaluator == nil {
		return nil, ErrNoEvaluator
	}
	p.withEvaluator(defaultEvaluator)
	return defaultEvaluator, nil
}

func evaluatorEngineName(e Evaluator) string {
	switch e.(type) {
	case nil:
		return "unknown"
	case *exprEvaluator:
		return "expr"
	case *celEvaluator:
		return "cel"
	default:
		if jsEvaluatorAvailable() && fmt.Sprintf("%T", e) == "*prefs.jsEvaluator" {
			return "js"
		}
		return "custom"
	}
}
