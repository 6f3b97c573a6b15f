package prefs

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/goliatone/go-prefs/internal/document"
	"github.com/goliatone/go-prefs/pkg/activity"
)

// New returns an owner for a settings value of type S with defaults applied.
// A nil schema is derived from S, and New panics if S is not a struct.
// defaults fills a fresh value; it is applied again on every Reset.
func New[S any](schema *Schema[S], defaults func(*S), opts ...Option) *Prefs[S] {
	if schema == nil {
		derived, err := Derive[S]()
		if err != nil {
			panic(err)
		}
		schema = derived
	}
	cfg := applyOptions(opts)
	p := &Prefs[S]{
		schema:   schema,
		defaults: defaults,
		cfg:      cfg,
		emitter: activity.NewEmitter(cfg.activityHooks, activity.Config{
			Enabled: true,
			Channel: cfg.activityChannel,
			Verbs:   cfg.activityVerbs,
		}),
	}
	p.applyDefaults(&p.value)
	return p
}

// Settings returns the live settings value. Changes made through it are
// persisted by the next Save or Close.
func (p *Prefs[S]) Settings() *S {
	return &p.value
}

// Properties returns every declared property, persisted or not.
func (p *Prefs[S]) Properties() []Property[S] {
	return p.schema.Properties()
}

// Property returns the declared property called name.
func (p *Prefs[S]) Property(name string) (Property[S], bool) {
	return p.schema.Lookup(name)
}

// Location reports where the document is persisted.
func (p *Prefs[S]) Location() string {
	return p.cfg.target.Location()
}

// Get returns the current value of the named property. ok is false for
// unknown names and for properties of an unsupported kind.
func (p *Prefs[S]) Get(name string) (Value, bool) {
	prop, ok := p.schema.Lookup(name)
	if !ok || !prop.Kind.Supported() {
		return Value{}, false
	}
	return prop.Get(&p.value), true
}

// Set assigns v to the named property and emits a prefs.updated event. It does
// not save.
func (p *Prefs[S]) Set(ctx context.Context, name string, v Value) error {
	ctx = contextOrBackground(ctx)
	prop, ok := p.schema.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownProperty, name)
	}
	old := prop.Get(&p.value)
	if err := prop.Set(&p.value, v); err != nil {
		return err
	}
	input := p.eventInput()
	input.Property = name
	input.OldValue = old.Interface()
	input.NewValue = prop.Get(&p.value).Interface()
	p.emit(ctx, activity.BuildPrefsUpdatedEvent(input))
	return nil
}

// Snapshot returns the persisted properties keyed by name.
func (p *Prefs[S]) Snapshot() map[string]any {
	props := p.schema.Supported()
	out := make(map[string]any, len(props))
	for _, prop := range props {
		out[prop.Name] = prop.Get(&p.value).Interface()
	}
	return out
}

// Load restores the settings from the target. A missing document is created
// from defaults; an unreadable, malformed, mistyped or invalid document is
// replaced with defaults. Failures are logged, never returned.
func (p *Prefs[S]) Load(ctx context.Context) Outcome {
	ctx = contextOrBackground(ctx)
	exists, err := p.exists(ctx)
	if err != nil {
		return p.fallback(ctx, err)
	}
	if !exists {
		p.logger().Info("prefs: no settings document, writing defaults")
		p.Reset(ctx)
		p.emitLoaded(ctx, OutcomeBootstrapped)
		return OutcomeBootstrapped
	}

	next, err := p.restore(ctx)
	if err != nil {
		return p.fallback(ctx, err)
	}
	p.value = next
	p.logger().Debug("prefs: settings restored")
	p.emitLoaded(ctx, OutcomeRestored)
	return OutcomeRestored
}

// Save writes the persisted properties to the target. Failures are logged and
// leave the in-memory settings untouched. It reports whether the document was
// written.
func (p *Prefs[S]) Save(ctx context.Context) bool {
	ctx = contextOrBackground(ctx)
	payload, err := p.encode(&p.value)
	if err != nil {
		p.logFailure("prefs: save failed", err)
		return false
	}
	if err := ctx.Err(); err != nil {
		p.logFailure("prefs: save failed", newPersistError(OpWrite, p.Location(), "", err))
		return false
	}
	meta, err := p.cfg.target.Write(ctx, payload)
	if err != nil {
		p.logFailure("prefs: save failed", newPersistError(OpWrite, p.Location(), "", err))
		return false
	}

	p.logger().WithFields(logrus.Fields{
		"snapshot_id": meta.SnapshotID,
		"size":        meta.Size,
	}).Debug("prefs: settings saved")

	input := p.eventInput()
	input.SnapshotID = meta.SnapshotID
	p.emit(ctx, activity.BuildPrefsSavedEvent(input))
	return true
}

// Reset applies the defaults to the live settings and saves them. It reports
// whether the document was written.
func (p *Prefs[S]) Reset(ctx context.Context) bool {
	ctx = contextOrBackground(ctx)
	p.applyDefaults(&p.value)
	p.logger().Info("prefs: defaults applied")
	p.emit(ctx, activity.BuildPrefsResetEvent(p.eventInput()))
	return p.Save(ctx)
}

// Close performs the final save when the host leaves service.
func (p *Prefs[S]) Close(ctx context.Context) bool {
	ok := p.Save(ctx)
	if !ok {
		p.logger().Warn("prefs: settings not saved on close")
	}
	return ok
}

// contextOrBackground lets callers pass a nil ctx, as the state targets do.
func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

func (p *Prefs[S]) applyDefaults(s *S) {
	if p.defaults != nil {
		p.defaults(s)
		return
	}
	for _, prop := range p.schema.Supported() {
		_ = prop.Set(s, zeroValue(prop.Kind))
	}
}

func (p *Prefs[S]) exists(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, newPersistError(OpExists, p.Location(), "", err)
	}
	exists, err := p.cfg.target.Exists(ctx)
	if err != nil {
		return false, newPersistError(OpExists, p.Location(), "", err)
	}
	return exists, nil
}

// restore decodes the document onto a copy of the live settings. Every present
// key is coerced before any is assigned, and the copy is returned only when it
// passes validation.
func (p *Prefs[S]) restore(ctx context.Context) (S, error) {
	var zero S
	location := p.Location()

	payload, err := p.cfg.target.Read(ctx)
	if err != nil {
		return zero, newPersistError(OpRead, location, "", err)
	}
	doc, err := document.Decode(payload)
	if err != nil {
		return zero, newPersistError(OpDecode, location, "", err)
	}

	props := p.schema.Supported()
	pending := make([]assignment[S], 0, len(props))
	for _, prop := range props {
		element, ok := doc.Lookup(prop.Name)
		if !ok {
			continue
		}
		v, err := coerce(prop.Kind, element)
		if err != nil {
			return zero, newPersistError(OpDecode, location, prop.Name, err)
		}
		pending = append(pending, assignment[S]{prop: prop, value: v})
	}

	next := p.value
	for _, a := range pending {
		if err := a.prop.Set(&next, a.value); err != nil {
			return zero, newPersistError(OpDecode, location, a.prop.Name, err)
		}
	}

	if err := validateSettings(&next); err != nil {
		return zero, newPersistError(OpValidate, location, "", fmt.Errorf("%w: %w", ErrRuleViolation, err))
	}
	if err := p.checkRules(&next); err != nil {
		return zero, newPersistError(OpValidate, location, "", err)
	}
	return next, nil
}

type assignment[S any] struct {
	prop  Property[S]
	value Value
}

func (p *Prefs[S]) fallback(ctx context.Context, err error) Outcome {
	p.logFailure("prefs: settings document unusable, restoring defaults", err)
	p.Reset(ctx)
	p.emitLoaded(ctx, OutcomeRecovered)
	return OutcomeRecovered
}

func (p *Prefs[S]) emitLoaded(ctx context.Context, outcome Outcome) {
	input := p.eventInput()
	input.Outcome = outcome.String()
	p.emit(ctx, activity.BuildPrefsLoadedEvent(input))
}

func (p *Prefs[S]) encode(s *S) ([]byte, error) {
	props := p.schema.Supported()
	fields := make([]document.Field, 0, len(props))
	for _, prop := range props {
		fields = append(fields, document.Field{Name: prop.Name, Value: prop.Get(s).Interface()})
	}
	payload, err := document.Encode(fields)
	if err != nil {
		return nil, newPersistError(OpEncode, p.Location(), "", err)
	}
	return payload, nil
}

// coerce converts element into a value of kind. Numbers restored into int
// properties must be integral literals.
func coerce(kind Kind, element document.Element) (Value, error) {
	var (
		v   Value
		err error
	)
	switch kind {
	case KindString:
		var text string
		text, err = element.Text()
		v = StringValue(text)
	case KindInt:
		var i int64
		i, err = element.Int64()
		v = IntValue(i)
	case KindFloat:
		var f float64
		f, err = element.Float64()
		v = FloatValue(f)
	default:
		return Value{}, fmt.Errorf("%w: kind %s", ErrUnsupportedKind, kind)
	}
	if err != nil {
		return Value{}, fmt.Errorf("%w: expected %s: %w", ErrKindMismatch, kind, err)
	}
	return v, nil
}

// IsKindMismatch reports whether err was caused by a value of the wrong kind.
func IsKindMismatch(err error) bool {
	return errors.Is(err, ErrKindMismatch)
}
