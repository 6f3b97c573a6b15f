package prefs

import (
	"fmt"
	"time"
)

type validator interface {
	Validate() error
}

// validateSettings runs Validate when S, or *S, implements it.
func validateSettings[S any](s *S) error {
	if v, ok := any(s).(validator); ok {
		return v.Validate()
	}
	return nil
}

// checkRules evaluates every configured rule against candidate. A rule passes
// only when it yields boolean true.
func (p *Prefs[S]) checkRules(candidate *S) error {
	if len(p.cfg.rules) == 0 {
		return nil
	}
	evaluator, err := p.resolveEvaluator()
	if err != nil {
		return err
	}
	now := time.Now()
	ctx := RuleContext{Snapshot: p.ruleSnapshot(candidate), Now: &now}
	for _, rule := range p.cfg.rules {
		result, err := p.runEvaluation(evaluator, ctx.withDefaults(), rule)
		if err != nil {
			return fmt.Errorf("%w: %q: %w", ErrRuleViolation, rule, err)
		}
		if ok, isBool := result.(bool); !isBool || !ok {
			return fmt.Errorf("%w: %q evaluated to %v", ErrRuleViolation, rule, result)
		}
	}
	return nil
}
