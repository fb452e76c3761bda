package binding

import (
	"errors"
	"fmt"
	"reflect"

	"go.uber.org/zap"

	"accessor-compiler/expr"
	"accessor-compiler/internal/diagnostic"
	"accessor-compiler/metadata"
	"accessor-compiler/resolve"
)

// ErrInvalidSet is returned by Build when any binding was rejected.
var ErrInvalidSet = errors.New("binding set has errors")

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger used while building. The default discards
// everything.
func WithLogger(log *zap.Logger) Option {
	return func(b *Builder) {
		if log != nil {
			b.log = log
		}
	}
}

// WithParseOptions sets the options used by PropertySource and
// ExpressionSource to parse expressions.
func WithParseOptions(opts ...expr.Option) Option {
	return func(b *Builder) {
		b.parseOpts = append(b.parseOpts, opts...)
	}
}

// WithResolveOptions sets the options passed to resolve.Permissive.
func WithResolveOptions(opts ...resolve.Option) Option {
	return func(b *Builder) {
		b.resolveOpts = append(b.resolveOpts, opts...)
	}
}

type key struct {
	object reflect.Type
	name   string
}

// Builder collects bindings. It is not safe for concurrent use.
type Builder struct {
	log         *zap.Logger
	parseOpts   []expr.Option
	resolveOpts []resolve.Option

	entries []metadata.Expression
	named   map[key]metadata.Expression
	diags   diagnostic.Diagnostics
}

// NewBuilder creates an empty Builder.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		log:   zap.NewNop(),
		named: make(map[key]metadata.Expression),
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Property binds l strictly. It returns nil when l is rejected; the reason
// is recorded as a diagnostic.
func (b *Builder) Property(l *expr.Lambda) *metadata.PropertyMetadata {
	meta, err := resolve.Strict(l)
	if err != nil {
		b.reject(l.Root(), l.String(), err)

		return nil
	}

	if !b.add(meta, l.String()) {
		return nil
	}

	if !meta.IsWritable() {
		b.note(diagnostic.CodeReadOnly, "property is read-only", meta, l.String())
	}

	return meta
}

// Expression binds l permissively. It returns nil when l is rejected.
func (b *Builder) Expression(l *expr.Lambda) *metadata.ExpressionMetadata {
	meta, err := resolve.Permissive(l, b.resolveOpts...)
	if err != nil {
		b.reject(l.Root(), l.String(), err)

		return nil
	}

	if !b.add(meta, l.String()) {
		return nil
	}

	if !meta.HasStringGetter() {
		b.warn(diagnostic.CodeNoText, "expression has no textual projection", meta, l.String())
	}

	return meta
}

// PropertySource parses src against root and binds it strictly.
func (b *Builder) PropertySource(root reflect.Type, src string) *metadata.PropertyMetadata {
	l, err := expr.Parse(root, src, b.parseOpts...)
	if err != nil {
		b.reject(root, src, err)

		return nil
	}

	return b.Property(l)
}

// ExpressionSource parses src against root and binds it permissively.
func (b *Builder) ExpressionSource(root reflect.Type, src string) *metadata.ExpressionMetadata {
	l, err := expr.Parse(root, src, b.parseOpts...)
	if err != nil {
		b.reject(root, src, err)

		return nil
	}

	return b.Expression(l)
}

// Add registers a binding built elsewhere, for example with resolve.Pair.
// It reports whether meta was accepted; nil records are rejected.
func (b *Builder) Add(meta metadata.Expression) bool {
	if isNil(meta) {
		b.diags.AddError(diagnostic.CodeCompile, "nil binding", "", "")
		b.log.Warn("binding rejected", zap.String("reason", "nil binding"))

		return false
	}

	return b.add(meta, "")
}

// Diagnostics returns everything recorded so far.
func (b *Builder) Diagnostics() diagnostic.Diagnostics {
	return b.diags
}

// Build returns the Set of every accepted binding, or ErrInvalidSet joined
// with the recorded errors when any binding was rejected. The Builder may
// be used further; later additions do not affect a built Set.
func (b *Builder) Build() (*Set, error) {
	if b.diags.HasErrors() {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSet, b.diags.Error())
	}

	s := newSet(b.entries)
	b.log.Debug("binding set built", zap.Int("bindings", s.Len()), zap.Int("types", len(s.types)))

	return s, nil
}

func (b *Builder) add(meta metadata.Expression, src string) bool {
	if name := meta.PropertyName(); name != "" {
		k := key{object: meta.ObjectType(), name: name}
		if _, dup := b.named[k]; dup {
			b.diags.AddError(diagnostic.CodeDuplicate,
				fmt.Sprintf("%s is bound twice", name), typeString(meta.ObjectType()), src)
			b.log.Warn("duplicate binding",
				zap.Stringer("object", meta.ObjectType()),
				zap.String("property", name),
			)

			return false
		}

		b.named[k] = meta
	}

	b.entries = append(b.entries, meta)

	b.log.Debug("binding compiled",
		zap.Stringer("object", meta.ObjectType()),
		zap.String("property", meta.PropertyName()),
		zap.Stringer("type", meta.PropertyType()),
		zap.Bool("writable", writable(meta)),
		zap.Bool("text", meta.HasStringGetter()),
	)

	return true
}

func (b *Builder) reject(root reflect.Type, src string, err error) {
	code := diagnostic.CodeCompile

	var shapeErr *resolve.ExpressionShapeError
	if errors.As(err, &shapeErr) {
		code = diagnostic.CodeShape
	}

	var suggestions []string

	var memberErr *expr.MemberError
	if errors.As(err, &memberErr) {
		code = diagnostic.CodeType
		suggestions = memberErr.Suggestions
	}

	b.diags.Errors = append(b.diags.Errors, diagnostic.Diagnostic{
		Severity:    diagnostic.DiagnosticError,
		Code:        code,
		Message:     err.Error(),
		Entity:      typeString(root),
		Expr:        src,
		Suggestions: suggestions,
	})

	b.log.Warn("binding rejected",
		zap.Stringer("object", root),
		zap.String("expr", src),
		zap.Error(err),
	)
}

func (b *Builder) warn(code, msg string, meta metadata.Expression, src string) {
	b.diags.AddWarning(code, msg, typeString(meta.ObjectType()), src)
	b.log.Warn(msg, zap.Stringer("object", meta.ObjectType()), zap.String("expr", src))
}

func (b *Builder) note(code, msg string, meta metadata.Expression, src string) {
	b.diags.AddInfo(code, msg, typeString(meta.ObjectType()), src)
	b.log.Debug(msg, zap.Stringer("object", meta.ObjectType()), zap.String("expr", src))
}

// isNil also catches a nil record held in a non-nil interface, as returned
// by resolve.Pair on error.
func isNil(meta metadata.Expression) bool {
	if meta == nil {
		return true
	}

	v := reflect.ValueOf(meta)

	return v.Kind() == reflect.Pointer && v.IsNil()
}

func writable(meta metadata.Expression) bool {
	w, ok := meta.(interface{ IsWritable() bool })

	return ok && w.IsWritable()
}

func typeString(t reflect.Type) string {
	if t == nil {
		return ""
	}

	return t.String()
}
