// Package factory builds capability configs from mode descriptors. It
// validates every parameter before a mode is constructed and applies the
// caller's chosen policy to invalid ones.
package factory

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/tasklines/pkg/capability"
	"github.com/arthur-debert/tasklines/pkg/errors"
	"github.com/arthur-debert/tasklines/pkg/logging"
	"github.com/arthur-debert/tasklines/pkg/modes"
)

// Params is what a Rule receives once validation has passed
type Params struct {
	Size      int
	TotalJobs int
	Title     string
	Sink      modes.PassthroughSink
}

// Rule constructs a mode for one kind
type Rule struct {
	Build func(p Params) (modes.Mode, error)
	// MinSize is zero for kinds that take no size
	MinSize int
}

func (r Rule) sized() bool { return r.MinSize > 0 }

// Factory creates modes. Construct it once and hand it to the display.
type Factory struct {
	policy         Policy
	rules          map[string]Rule
	terminalHeight func() int
	logger         zerolog.Logger
}

// Option customises a Factory
type Option func(*Factory)

// WithRule registers or replaces the rule for kind
func WithRule(kind string, r Rule) Option {
	return func(f *Factory) { f.rules[kind] = r }
}

// WithTerminalHeight supplies the current terminal height; a result of
// zero or less means unknown
func WithTerminalHeight(h func() int) Option {
	return func(f *Factory) { f.terminalHeight = h }
}

// WithLogger overrides the factory logger
func WithLogger(l zerolog.Logger) Option {
	return func(f *Factory) { f.logger = l }
}

// DefaultRules returns the rules for the built-in modes
func DefaultRules() map[string]Rule {
	return map[string]Rule{
		modes.NameCapturing: {Build: func(p Params) (modes.Mode, error) {
			return modes.NewCapturing(p.TotalJobs), nil
		}},
		modes.NameLimited: {Build: func(p Params) (modes.Mode, error) {
			return modes.NewLimited(p.TotalJobs, p.Sink), nil
		}},
		modes.NameWindow: {MinSize: modes.MinWindowSize, Build: func(p Params) (modes.Mode, error) {
			return modes.NewWindow(p.Size, p.TotalJobs)
		}},
		modes.NameWindowWithTitle: {MinSize: modes.MinWindowWithTitleSize, Build: func(p Params) (modes.Mode, error) {
			return modes.NewWindowWithTitle(p.Size, p.TotalJobs, p.Title)
		}},
	}
}

// New creates a factory. The policy must be chosen explicitly.
func New(policy Policy, opts ...Option) (*Factory, error) {
	if policy != Strict && policy != Lenient {
		return nil, errors.Validation("factory policy must be strict or lenient, got %d", int(policy))
	}
	f := &Factory{
		policy:         policy,
		rules:          DefaultRules(),
		terminalHeight: func() int { return 0 },
		logger:         logging.GetLogger("factory"),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Policy returns the factory's policy
func (f *Factory) Policy() Policy { return f.policy }

// Create validates d and builds the mode it describes. It never panics: a
// panicking rule is reported as an Implementation error.
func (f *Factory) Create(d Descriptor, totalJobs int) (cfg *capability.Config, err error) {
	defer func() {
		if r := recover(); r != nil {
			cfg = nil
			err = errors.Implementation(fmt.Sprintf("creating %s mode panicked: %v", d.Kind, r)).
				WithDetail("descriptor", d.String())
			f.logger.Error().Interface("panic", r).Str("mode", d.Kind).Msg("Mode rule panicked")
		}
	}()

	rule, ok := f.rules[d.Kind]
	if !ok || rule.Build == nil {
		return nil, errors.Validation("unknown mode %q", d.Kind).WithDetail("mode_name", d.Kind)
	}
	if totalJobs < 0 {
		if f.policy == Strict {
			return nil, errors.Validation("total jobs must not be negative, got %d", totalJobs).
				WithDetail("mode_name", d.Kind)
		}
		totalJobs = 0
	}
	if d.MaxRetries < 0 {
		return nil, errors.Validation("max retries must not be negative, got %d", d.MaxRetries)
	}

	size, adjustments, err := f.validateSize(d, rule)
	if err != nil {
		return nil, err
	}

	mode, err := rule.Build(Params{Size: size, TotalJobs: totalJobs, Title: d.Title, Sink: d.Sink})
	if err != nil {
		if errors.GetCategory(err) == errors.CategoryModeCreation {
			return nil, err
		}
		return nil, errors.Wrapf(err, errors.ErrImplementation, "creating %s mode", d.Kind)
	}
	if mode == nil || mode.Base() == nil {
		return nil, errors.Implementation(fmt.Sprintf("rule for %s returned an incomplete mode", d.Kind))
	}

	base := mode.Base()
	if d.MaxRetries > 0 {
		base.SetMaxRetries(d.MaxRetries)
	}
	base.Priority = d.Priority
	base.PersistenceID = d.PersistenceID

	for _, a := range adjustments {
		f.logger.Info().
			Str("mode", d.Kind).
			Str("field", a.Field).
			Int("requested", a.Requested).
			Int("applied", a.Applied).
			Str("reason", a.Reason).
			Msg("Substituted mode parameter")
	}
	return capability.New(mode, adjustments...), nil
}

func (f *Factory) validateSize(d Descriptor, rule Rule) (int, []capability.Adjustment, error) {
	if !rule.sized() {
		return d.Size, nil, nil
	}
	if !d.SizeSet {
		if f.policy == Strict {
			return 0, nil, errors.MissingParameter(d.Kind, "size")
		}
		return rule.MinSize, []capability.Adjustment{{
			Field: "size", Requested: 0, Applied: rule.MinSize, Reason: "size not given",
		}}, nil
	}

	size := d.Size
	var adjustments []capability.Adjustment
	if size < rule.MinSize {
		if f.policy == Strict {
			return 0, nil, errors.InvalidWindowSize(size, rule.MinSize, d.Kind)
		}
		adjustments = append(adjustments, capability.Adjustment{
			Field: "size", Requested: size, Applied: rule.MinSize, Reason: "below minimum",
		})
		size = rule.MinSize
	}

	if h := f.terminalHeight(); h > 0 && size > h {
		if f.policy == Strict {
			return 0, nil, errors.Validation("%s of %d lines does not fit a terminal of %d lines", d.Kind, size, h).
				WithDetails(map[string]interface{}{"requested": size, "terminal_height": h, "mode_name": d.Kind})
		}
		clamped := max(h, rule.MinSize)
		if clamped != size {
			adjustments = append(adjustments, capability.Adjustment{
				Field: "size", Requested: size, Applied: clamped, Reason: "clamped to terminal height",
			})
			size = clamped
		}
	}
	return size, adjustments, nil
}
