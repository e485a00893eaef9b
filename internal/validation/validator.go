package validation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/sandeepkv93/catalog-console/internal/observability"
)

var ErrUnknownField = errors.New("unknown form field")

// Result is the outcome of validating one field. An empty Message means
// the field is valid. Stale results were overtaken by a newer validation of
// the same field and must not be displayed.
type Result struct {
	Field      string
	Message    string
	Generation uint64
	Stale      bool
}

func (r Result) Invalid() bool {
	return r.Message != ""
}

// FormResult aggregates a sequential validation of every form field.
type FormResult struct {
	Results      []Result
	FirstInvalid string
}

func (f FormResult) Valid() bool {
	return f.FirstInvalid == ""
}

func (f FormResult) Message(field string) string {
	for _, r := range f.Results {
		if r.Field == field {
			return r.Message
		}
	}
	return ""
}

type Validator struct {
	fields      []Field
	messages    map[string]Messages
	prober      ImageProber
	generations *Generations
	logger      *slog.Logger
}

type Option func(*Validator)

func WithFields(fields []Field) Option {
	return func(v *Validator) { v.fields = fields }
}

func WithMessages(messages map[string]Messages) Option {
	return func(v *Validator) { v.messages = messages }
}

func New(prober ImageProber, logger *slog.Logger, opts ...Option) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	v := &Validator{
		fields:      DefaultFields(),
		messages:    DefaultMessages(),
		prober:      prober,
		generations: NewGenerations(),
		logger:      logger,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Fields returns the form fields in display order.
func (v *Validator) Fields() []Field {
	return append([]Field(nil), v.fields...)
}

func (v *Validator) field(name string) (Field, bool) {
	for _, f := range v.fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Validate recomputes the message for one field. Each call starts a new
// generation for the field within the context's scope; a call that finishes
// after a newer one started comes back with Stale set.
func (v *Validator) Validate(ctx context.Context, field, value string) (Result, error) {
	f, ok := v.field(field)
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	key := generationKey(ctx, field)
	gen := v.generations.Start(key)
	msg := v.message(ctx, f, value)
	res := Result{
		Field:      field,
		Message:    msg,
		Generation: gen,
		Stale:      !v.generations.Finish(key, gen),
	}

	outcome := "valid"
	switch {
	case res.Stale:
		outcome = "stale"
	case res.Invalid():
		outcome = "invalid"
	}
	observability.RecordValidationEvent(ctx, field, outcome)
	return res, nil
}

// ValidateForm validates every field one after another, awaiting each
// before starting the next. Missing values are validated as empty.
func (v *Validator) ValidateForm(ctx context.Context, values map[string]string) FormResult {
	var out FormResult
	for _, f := range v.fields {
		res, err := v.Validate(ctx, f.Name, values[f.Name])
		if err != nil {
			continue
		}
		out.Results = append(out.Results, res)
		if res.Invalid() && out.FirstInvalid == "" {
			out.FirstInvalid = f.Name
		}
	}
	return out
}

func (v *Validator) message(ctx context.Context, f Field, value string) string {
	if f.StrictLength {
		if n := utf8.RuneCountInString(value); n < f.MinLength || (f.MaxLength > 0 && n > f.MaxLength) {
			return v.lookup(f.Name, FlagTooShort, fallbackNameLength)
		}
	} else if f.Type == TypeURL && !v.imageURLValid(ctx, value) {
		return v.lookup(f.Name, FlagTypeMismatch, fallbackImageURL)
	}

	validity := CheckValidity(f, value)
	for _, flag := range Flags {
		if validity.Has(flag) {
			if msg := v.messages[f.Name][flag]; msg != "" {
				return msg
			}
			break
		}
	}
	if validity.ValueMissing {
		return v.lookup(f.Name, FlagValueMissing, fallbackRequired)
	}
	return ""
}

func (v *Validator) lookup(field string, flag Flag, fallback string) string {
	if msg := v.messages[field][flag]; msg != "" {
		return msg
	}
	return fallback
}

// imageURLValid checks syntax and extension, then that the address serves
// an image. Values without a scheme never reach the network since the
// absolute URL check rejects them anyway.
func (v *Validator) imageURLValid(ctx context.Context, value string) bool {
	if !LooksLikeWebURL(value) || !HasImageExtension(value) || !isAbsoluteURL(value) {
		return false
	}
	if v.prober == nil {
		return true
	}
	if err := v.prober.Probe(ctx, value); err != nil {
		v.logger.DebugContext(ctx, "image url rejected", "url", value, "error", err)
		return false
	}
	return true
}
