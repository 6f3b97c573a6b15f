package prefs

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/goliatone/go-prefs/pkg/activity"
	"github.com/goliatone/go-prefs/pkg/state"
)

// DefaultLocation is the document path used when no target is configured.
const DefaultLocation = "settings.json"

// Prefs owns the live settings value S and keeps it in sync with one
// persisted document. It is not safe for concurrent use.
type Prefs[S any] struct {
	value    S
	schema   *Schema[S]
	defaults func(*S)

	cfg     prefsConfig
	emitter *activity.Emitter
}

// Outcome reports how Load left the settings.
type Outcome uint8

const (
	// OutcomeRestored means the document was read and applied.
	OutcomeRestored Outcome = iota + 1
	// OutcomeBootstrapped means no document existed and defaults were written.
	OutcomeBootstrapped
	// OutcomeRecovered means the document could not be used and defaults
	// replaced it.
	OutcomeRecovered
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRestored:
		return "restored"
	case OutcomeBootstrapped:
		return "bootstrapped"
	case OutcomeRecovered:
		return "recovered"
	default:
		return "unknown"
	}
}

// RuleContext carries inputs needed when evaluating an expression.
type RuleContext struct {
	Snapshot any
	Now      *time.Time
	Args     map[string]any
}

func (ctx RuleContext) withDefaults() RuleContext {
	if ctx.Now == nil {
		now := time.Now()
		ctx.Now = &now
	}
	if ctx.Args == nil {
		ctx.Args = map[string]any{}
	}
	return ctx
}

func (ctx RuleContext) timestamp() time.Time {
	ctx = ctx.withDefaults()
	return *ctx.Now
}

// Evaluator executes expressions against a rule context.
type Evaluator interface {
	Evaluate(ctx RuleContext, expr string) (any, error)
	Compile(expr string, opts ...CompileOption) (CompiledRule, error)
}

// CompiledRule represents a reusable expression program.
type CompiledRule interface {
	Evaluate(ctx RuleContext) (any, error)
}

// CompileOption configures evaluator compile behaviour.
type CompileOption interface {
	applyCompileOption(*compileConfig)
}

type compileConfig struct{}

type Option func(*prefsConfig)

type prefsConfig struct {
	target          state.Target
	logger          logrus.FieldLogger
	evaluator       Evaluator
	programCache    ProgramCache
	functions       *FunctionRegistry
	rules           []string
	schemaGenerator SchemaGenerator
	activityHooks   activity.Hooks
	activityChannel string
	activityVerbs   []string
	activityActor   string
	activityTenant  string
}

func applyOptions(opts []Option) prefsConfig {
	cfg := prefsConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.target == nil {
		cfg.target = state.NewOSFileTarget(DefaultLocation)
	}
	if cfg.logger == nil {
		cfg.logger = logrus.StandardLogger()
	}
	return cfg
}

// WithTarget persists the document through target.
func WithTarget(target state.Target) Option {
	return func(cfg *prefsConfig) {
		cfg.target = target
	}
}

// WithPath persists the document at path on the operating system file system.
func WithPath(path string) Option {
	return func(cfg *prefsConfig) {
		cfg.target = state.NewOSFileTarget(path)
	}
}

// WithFs persists the document at path on fs.
func WithFs(fs afero.Fs, path string) Option {
	return func(cfg *prefsConfig) {
		cfg.target = state.NewFileTarget(fs, path)
	}
}

// WithEvaluator configures the evaluator used for rules and Evaluate.
func WithEvaluator(e Evaluator) Option {
	return func(cfg *prefsConfig) {
		cfg.evaluator = e
	}
}

// WithRule adds expressions that must evaluate to true against the restored
// settings for a load to succeed.
func WithRule(exprs ...string) Option {
	return func(cfg *prefsConfig) {
		for _, expr := range exprs {
			if expr != "" {
				cfg.rules = append(cfg.rules, expr)
			}
		}
	}
}

// WithSchemaGenerator configures a custom schema generator implementation.
func WithSchemaGenerator(generator SchemaGenerator) Option {
	return func(cfg *prefsConfig) {
		cfg.schemaGenerator = generator
	}
}

func (p *Prefs[S]) evaluator() Evaluator {
	return p.cfg.evaluator
}

func (p *Prefs[S]) withEvaluator(e Evaluator) {
	p.cfg.evaluator = e
}

func (p *Prefs[S]) programCache() ProgramCache {
	return p.cfg.programCache
}

func (p *Prefs[S]) functionRegistry() *FunctionRegistry {
	return p.cfg.functions
}

func (p *Prefs[S]) schemaGenerator() SchemaGenerator {
	if p == nil || p.cfg.schemaGenerator == nil {
		return DefaultSchemaGenerator()
	}
	return p.cfg.schemaGenerator
}
