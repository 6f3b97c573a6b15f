package activity

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNormalizeEventTrimsClonesAndDefaults(t *testing.T) {
	meta := map[string]any{"k": "v"}
	evt := Event{
		Verb:       " prefs.saved ",
		ActorID:    " actor ",
		UserID:     " user ",
		TenantID:   " tenant ",
		ObjectType: " prefs.document ",
		ObjectID:   " settings.json ",
		Channel:    " prefs ",
		Metadata:   meta,
	}

	got := NormalizeEvent(evt)

	if got.Verb != "prefs.saved" || got.ObjectType != "prefs.document" || got.ObjectID != "settings.json" {
		t.Fatalf("unexpected normalized fields: %+v", got)
	}
	if got.ActorID != "actor" || got.UserID != "user" || got.TenantID != "tenant" || got.Channel != "prefs" {
		t.Fatalf("unexpected trimming: %+v", got)
	}
	if got.OccurredAt.IsZero() {
		t.Fatalf("expected OccurredAt to be set")
	}
	got.Metadata["k"] = "changed"
	if evt.Metadata["k"] != "v" {
		t.Fatalf("expected original metadata untouched: %+v", evt.Metadata)
	}
}

func TestHooksNotifyShortCircuitsMissingRequired(t *testing.T) {
	capture := &CaptureHook{}
	hooks := Hooks{capture}
	if err := hooks.Notify(context.Background(), Event{Verb: "prefs.saved"}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(capture.Events) != 0 {
		t.Fatalf("expected no events captured, got %d", len(capture.Events))
	}
}

func TestHooksNotifyJoinsErrorsAndSkipsNil(t *testing.T) {
	errA := errors.New("a failed")
	errB := errors.New("b failed")
	first := &CaptureHook{Err: errA}
	second := &CaptureHook{Err: errB}
	hooks := Hooks{first, nil, second}

	err := hooks.Notify(nil, Event{Verb: "prefs.saved", ObjectType: "prefs.document", ObjectID: "settings.json"})
	if !errors.Is(err, errA) || !errors.Is(err, errB) {
		t.Fatalf("expected joined error, got %v", err)
	}
	if len(first.Events) != 1 || len(second.Events) != 1 {
		t.Fatalf("expected both hooks notified, got %d and %d", len(first.Events), len(second.Events))
	}
}

func TestHookFuncNilIsNoop(t *testing.T) {
	var fn HookFunc
	if err := fn.Notify(context.Background(), Event{}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestEmitterAppliesDefaultChannel(t *testing.T) {
	capture := &CaptureHook{}
	emitter := NewEmitter(Hooks{capture}, Config{Enabled: true})
	if !emitter.Enabled() {
		t.Fatalf("expected emitter enabled")
	}

	occurred := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	err := emitter.Emit(context.Background(), Event{
		Verb:       "prefs.reset",
		ObjectType: "prefs.document",
		ObjectID:   "settings.json",
		OccurredAt: occurred,
	})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	if len(capture.Events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(capture.Events))
	}
	if capture.Events[0].Channel != DefaultChannel {
		t.Fatalf("expected default channel, got %q", capture.Events[0].Channel)
	}
	if !capture.Events[0].OccurredAt.Equal(occurred) {
		t.Fatalf("expected timestamp preserved, got %v", capture.Events[0].OccurredAt)
	}
}

func TestEmitterDisabledWithoutHooks(t *testing.T) {
	if NewEmitter(nil, Config{Enabled: true}).Enabled() {
		t.Fatalf("expected emitter without hooks to be disabled")
	}
	if NewEmitter(Hooks{&CaptureHook{}}, Config{}).Enabled() {
		t.Fatalf("expected emitter with Enabled=false to be disabled")
	}
	var nilEmitter *Emitter
	if err := nilEmitter.Emit(context.Background(), Event{}); err != nil {
		t.Fatalf("nil emitter should be a no-op, got %v", err)
	}
}

func TestEmitterFiltersVerbs(t *testing.T) {
	capture := &CaptureHook{}
	emitter := NewEmitter(Hooks{capture}, Config{Enabled: true, Verbs: []string{VerbSaved, " "}})

	for _, verb := range []string{VerbLoaded, VerbSaved, VerbUpdated} {
		event := Event{Verb: verb, ObjectType: ObjectDocument, ObjectID: "settings.json"}
		if err := emitter.Emit(context.Background(), event); err != nil {
			t.Fatalf("emit %s: %v", verb, err)
		}
	}

	if got := capture.Verbs(); len(got) != 1 || got[0] != VerbSaved {
		t.Fatalf("expected only %s, got %v", VerbSaved, got)
	}
	if emitter.Allows(VerbReset) {
		t.Fatalf("reset should be filtered")
	}
	if _, ok := capture.Last(VerbLoaded); ok {
		t.Fatalf("filtered verb should not be captured")
	}
	if event, ok := capture.Last(VerbSaved); !ok || event.Channel != DefaultChannel {
		t.Fatalf("unexpected saved event %+v", event)
	}
}
