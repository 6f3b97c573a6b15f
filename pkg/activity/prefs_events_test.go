package activity

import "testing"

func TestBuildPrefsUpdatedEventUsesPropertyAsObject(t *testing.T) {
	meta := map[string]any{"source": "cli"}
	event := BuildPrefsUpdatedEvent(PrefsEventInput{
		ActorID:  " actor ",
		Location: "settings.json",
		Property: "MovementSpeed",
		OldValue: float32(200),
		NewValue: float32(250),
		Metadata: meta,
	})

	if event.Verb != VerbUpdated || event.ObjectType != ObjectProperty {
		t.Fatalf("unexpected verb/object type: %+v", event)
	}
	if event.ObjectID != "MovementSpeed" {
		t.Fatalf("expected property as object id, got %q", event.ObjectID)
	}
	if event.ActorID != "actor" {
		t.Fatalf("expected trimmed actor, got %q", event.ActorID)
	}
	if event.Metadata["old_value"] != float32(200) || event.Metadata["new_value"] != float32(250) {
		t.Fatalf("expected old/new values, got %+v", event.Metadata)
	}
	if event.Metadata["location"] != "settings.json" || event.Metadata["source"] != "cli" {
		t.Fatalf("expected location and custom metadata, got %+v", event.Metadata)
	}
	event.Metadata["source"] = "changed"
	if meta["source"] != "cli" {
		t.Fatalf("expected input metadata untouched")
	}
}

func TestBuildPrefsLoadedEventCarriesOutcome(t *testing.T) {
	event := BuildPrefsLoadedEvent(PrefsEventInput{
		Location:   "/tmp/settings.json",
		Outcome:    "recovered",
		SnapshotID: "snap-1",
	})

	if event.Verb != VerbLoaded || event.ObjectType != ObjectDocument {
		t.Fatalf("unexpected verb/object type: %+v", event)
	}
	if event.ObjectID != "/tmp/settings.json" {
		t.Fatalf("expected location as object id, got %q", event.ObjectID)
	}
	if event.Metadata["outcome"] != "recovered" || event.Metadata["snapshot_id"] != "snap-1" {
		t.Fatalf("unexpected metadata: %+v", event.Metadata)
	}
}

func TestBuildPrefsEventFallsBackToObjectType(t *testing.T) {
	event := BuildPrefsResetEvent(PrefsEventInput{})
	if event.ObjectID != ObjectDocument {
		t.Fatalf("expected object type fallback, got %q", event.ObjectID)
	}
	if event.Metadata != nil {
		t.Fatalf("expected nil metadata, got %+v", event.Metadata)
	}

	saved := BuildPrefsSavedEvent(PrefsEventInput{Location: "a.json"})
	if saved.Verb != VerbSaved || saved.ObjectID != "a.json" {
		t.Fatalf("unexpected saved event: %+v", saved)
	}
}
