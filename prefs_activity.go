package prefs

import (
	"context"
	"time"

	"github.com/goliatone/go-prefs/pkg/activity"
)

// WithActivityHooks attaches activity hooks notified on load, reset, save and
// by-name updates. Hooks are cloned and nil entries dropped.
func WithActivityHooks(hooks activity.Hooks) Option {
	normalized := cloneActivityHooks(hooks)
	return func(cfg *prefsConfig) {
		cfg.activityHooks = normalized
	}
}

// WithActivityChannel overrides the channel stamped on emitted events.
func WithActivityChannel(channel string) Option {
	return func(cfg *prefsConfig) {
		cfg.activityChannel = channel
	}
}

// WithActivityVerbs limits emitted events to verbs, for example
// activity.VerbSaved only. No verbs means every event is emitted.
func WithActivityVerbs(verbs ...string) Option {
	selected := append([]string(nil), verbs...)
	return func(cfg *prefsConfig) {
		cfg.activityVerbs = selected
	}
}

// WithActivityActor stamps actorID and tenantID on emitted events.
func WithActivityActor(actorID, tenantID string) Option {
	return func(cfg *prefsConfig) {
		cfg.activityActor = actorID
		cfg.activityTenant = tenantID
	}
}

// ActivityHooks returns a cloned slice of the configured activity hooks. The
// returned slice can be safely mutated by the caller.
func (p *Prefs[S]) ActivityHooks() activity.Hooks {
	if p == nil {
		return nil
	}
	return cloneActivityHooks(p.cfg.activityHooks)
}

func cloneActivityHooks(hooks activity.Hooks) activity.Hooks {
	if len(hooks) == 0 {
		return nil
	}
	normalized := make([]activity.ActivityHook, 0, len(hooks))
	for _, hook := range hooks {
		if hook == nil {
			continue
		}
		normalized = append(normalized, hook)
	}
	if len(normalized) == 0 {
		return nil
	}
	return activity.Hooks(normalized)
}

// emit forwards event to the hooks. Hook failures are logged and never affect
// persistence.
func (p *Prefs[S]) emit(ctx context.Context, event activity.Event) {
	if !p.emitter.Allows(event.Verb) {
		return
	}
	if err := p.emitter.Emit(ctx, event); err != nil {
		p.logger().WithError(err).WithField("verb", event.Verb).Warn("prefs: activity hook failed")
	}
}

func (p *Prefs[S]) eventInput() activity.PrefsEventInput {
	return activity.PrefsEventInput{
		ActorID:    p.cfg.activityActor,
		TenantID:   p.cfg.activityTenant,
		Location:   p.cfg.target.Location(),
		OccurredAt: time.Now(),
	}
}
