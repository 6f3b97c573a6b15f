package activity

import (
	"context"
	"strings"
)

// DefaultChannel is stamped on settings events emitted without a channel.
const DefaultChannel = "prefs"

// Config controls activity emission defaults. An empty Verbs emits every
// settings verb; otherwise only the listed ones reach the hooks.
type Config struct {
	Enabled bool
	Channel string
	Verbs   []string
}

// Emitter fans out settings events to hooks.
type Emitter struct {
	hooks   Hooks
	enabled bool
	channel string
	verbs   map[string]struct{}
}

// NewEmitter constructs an emitter from hooks and configuration.
func NewEmitter(hooks Hooks, cfg Config) *Emitter {
	channel := strings.TrimSpace(cfg.Channel)
	if channel == "" {
		channel = DefaultChannel
	}
	normalizedHooks := cloneHooks(hooks)
	return &Emitter{
		hooks:   normalizedHooks,
		enabled: cfg.Enabled && len(normalizedHooks) > 0,
		channel: channel,
		verbs:   verbSet(cfg.Verbs),
	}
}

// Enabled reports whether emissions should be attempted.
func (e *Emitter) Enabled() bool {
	return e != nil && e.enabled && len(e.hooks) > 0
}

// Allows reports whether events with verb are forwarded.
func (e *Emitter) Allows(verb string) bool {
	if !e.Enabled() {
		return false
	}
	if len(e.verbs) == 0 {
		return true
	}
	_, ok := e.verbs[strings.TrimSpace(verb)]
	return ok
}

// Emit forwards the event to all hooks, applying the default channel when
// missing. Filtered verbs are dropped silently.
func (e *Emitter) Emit(ctx context.Context, event Event) error {
	if !e.Allows(event.Verb) {
		return nil
	}
	if strings.TrimSpace(event.Channel) == "" && e.channel != "" {
		event.Channel = e.channel
	}
	return e.hooks.Notify(ctx, event)
}

func cloneHooks(hooks Hooks) Hooks {
	if len(hooks) == 0 {
		return nil
	}
	normalized := make([]ActivityHook, 0, len(hooks))
	for _, hook := range hooks {
		if hook == nil {
			continue
		}
		normalized = append(normalized, hook)
	}
	return Hooks(normalized)
}

func verbSet(verbs []string) map[string]struct{} {
	if len(verbs) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(verbs))
	for _, verb := range verbs {
		if verb = strings.TrimSpace(verb); verb != "" {
			set[verb] = struct{}{}
		}
	}
	return set
}
