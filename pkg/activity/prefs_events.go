package activity

import (
	"strings"
	"time"
)

const (
	VerbLoaded  = "prefs.loaded"
	VerbReset   = "prefs.reset"
	VerbSaved   = "prefs.saved"
	VerbUpdated = "prefs.updated"

	ObjectDocument = "prefs.document"
	ObjectProperty = "prefs.property"
)

// PrefsEventInput describes the common fields for settings lifecycle events.
type PrefsEventInput struct {
	ActorID    string
	UserID     string
	TenantID   string
	Channel    string
	Location   string
	SnapshotID string
	Outcome    string
	Property   string
	OldValue   any
	NewValue   any
	Metadata   map[string]any
	OccurredAt time.Time
}

// BuildPrefsLoadedEvent describes a completed load and how it ended.
func BuildPrefsLoadedEvent(input PrefsEventInput) Event {
	return buildPrefsEvent(VerbLoaded, ObjectDocument, input)
}

// BuildPrefsResetEvent describes defaults being applied.
func BuildPrefsResetEvent(input PrefsEventInput) Event {
	return buildPrefsEvent(VerbReset, ObjectDocument, input)
}

// BuildPrefsSavedEvent describes a document written to its target.
func BuildPrefsSavedEvent(input PrefsEventInput) Event {
	return buildPrefsEvent(VerbSaved, ObjectDocument, input)
}

// BuildPrefsUpdatedEvent describes one property changed by name.
func BuildPrefsUpdatedEvent(input PrefsEventInput) Event {
	return buildPrefsEvent(VerbUpdated, ObjectProperty, input)
}

func buildPrefsEvent(verb, objectType string, input PrefsEventInput) Event {
	metadata := cloneMap(input.Metadata)
	set := func(key string, value any) {
		if metadata == nil {
			metadata = map[string]any{}
		}
		metadata[key] = value
	}
	if location := strings.TrimSpace(input.Location); location != "" {
		set("location", location)
	}
	if input.SnapshotID != "" {
		set("snapshot_id", input.SnapshotID)
	}
	if input.Outcome != "" {
		set("outcome", input.Outcome)
	}
	if input.Property != "" {
		set("property", input.Property)
	}
	if input.OldValue != nil {
		set("old_value", input.OldValue)
	}
	if input.NewValue != nil {
		set("new_value", input.NewValue)
	}

	objectID := strings.TrimSpace(input.Location)
	if objectType == ObjectProperty && strings.TrimSpace(input.Property) != "" {
		objectID = strings.TrimSpace(input.Property)
	}
	if objectID == "" {
		objectID = objectType
	}

	return Event{
		Verb:       verb,
		ActorID:    strings.TrimSpace(input.ActorID),
		UserID:     strings.TrimSpace(input.UserID),
		TenantID:   strings.TrimSpace(input.TenantID),
		ObjectType: objectType,
		ObjectID:   objectID,
		Channel:    strings.TrimSpace(input.Channel),
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}
