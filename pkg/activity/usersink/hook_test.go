package usersink_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-prefs/pkg/activity"
	"github.com/goliatone/go-prefs/pkg/activity/usersink"
	usertypes "github.com/goliatone/go-users/pkg/types"
)

type recordingSink struct {
	records []usertypes.ActivityRecord
	err     error
}

func (s *recordingSink) Log(_ context.Context, record usertypes.ActivityRecord) error {
	s.records = append(s.records, record)
	return s.err
}

func TestHookNotifyMapsEvent(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	actorID := uuid.New()
	userID := uuid.New()

	event := activity.BuildPrefsUpdatedEvent(activity.PrefsEventInput{
		ActorID:    actorID.String(),
		UserID:     userID.String(),
		TenantID:   "not-a-uuid",
		Channel:    "prefs",
		Location:   "settings.json",
		Property:   "PlayerName",
		OldValue:   "Player",
		NewValue:   "Ada",
		OccurredAt: now,
	})

	if err := hook.Notify(context.Background(), event); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(sink.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(sink.records))
	}

	record := sink.records[0]
	if record.ActorID != actorID || record.UserID != userID {
		t.Fatalf("unexpected identity: %+v", record)
	}
	if record.TenantID != uuid.Nil {
		t.Fatalf("expected invalid tenant to map to uuid.Nil, got %s", record.TenantID)
	}
	if record.Verb != activity.VerbUpdated || record.ObjectType != activity.ObjectProperty || record.ObjectID != "PlayerName" {
		t.Fatalf("unexpected record payload: %+v", record)
	}
	if record.Channel != "prefs" {
		t.Fatalf("expected channel prefs got %q", record.Channel)
	}
	if !record.OccurredAt.Equal(now) {
		t.Fatalf("expected occurred_at %v got %v", now, record.OccurredAt)
	}
	if record.Data["old_value"] != "Player" || record.Data["new_value"] != "Ada" {
		t.Fatalf("expected metadata passthrough got %+v", record.Data)
	}
}

func TestHookNotifyFiltersVerbs(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink, Verbs: []string{activity.VerbReset}}

	saved := activity.BuildPrefsSavedEvent(activity.PrefsEventInput{Location: "settings.json"})
	reset := activity.BuildPrefsResetEvent(activity.PrefsEventInput{Location: "settings.json"})

	if err := hook.Notify(context.Background(), saved); err != nil {
		t.Fatalf("notify saved: %v", err)
	}
	if err := hook.Notify(context.Background(), reset); err != nil {
		t.Fatalf("notify reset: %v", err)
	}
	if len(sink.records) != 1 || sink.records[0].Verb != activity.VerbReset {
		t.Fatalf("expected only the reset record, got %+v", sink.records)
	}
}

func TestHookNotifySkipsIncompleteEvents(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	_ = hook.Notify(context.Background(), activity.Event{})

	if len(sink.records) != 0 {
		t.Fatalf("expected no records for empty event, got %d", len(sink.records))
	}
}

func TestHookNotifyReturnsSinkError(t *testing.T) {
	boom := errors.New("sink down")
	hook := usersink.Hook{Sink: &recordingSink{err: boom}}

	err := hook.Notify(context.Background(), activity.BuildPrefsSavedEvent(activity.PrefsEventInput{Location: "x.json"}))
	if !errors.Is(err, boom) {
		t.Fatalf("expected sink error, got %v", err)
	}
}

func TestHookWithoutSinkIsNoop(t *testing.T) {
	if err := (usersink.Hook{}).Notify(context.Background(), activity.Event{Verb: "x", ObjectType: "y", ObjectID: "z"}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}
