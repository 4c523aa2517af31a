package oracle

import "context"

// ContextOracle is implemented by oracles whose calls can be cancelled.
type ContextOracle interface {
	ValidContext(ctx context.Context, src string) (bool, error)
}

// ContextExplainer is the cancellable form of Explainer.
type ContextExplainer interface {
	CheckContext(ctx context.Context, src string) (Report, error)
}

// ValidContext asks o under ctx. A done ctx fails the call with a *Failure
// without reaching o; otherwise ctx is passed down when o accepts one.
func ValidContext(ctx context.Context, o Oracle, src string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, &Failure{Oracle: "context", Err: err}
	}
	if co, ok := o.(ContextOracle); ok {
		return co.ValidContext(ctx, src)
	}
	return o.Valid(src)
}

// CheckContext is ValidContext for explanations. Oracles that cannot explain
// return a bare verdict.
func CheckContext(ctx context.Context, o Oracle, src string) (Report, error) {
	if err := ctx.Err(); err != nil {
		return Report{}, &Failure{Oracle: "context", Err: err}
	}
	switch x := o.(type) {
	case ContextExplainer:
		return x.CheckContext(ctx, src)
	case Explainer:
		return x.Check(src)
	}
	v, err := ValidContext(ctx, o, src)
	return Report{Valid: v}, err
}

// Bind ties o to ctx: once ctx is done every call fails with a *Failure.
// A search running on a bound oracle stops at its next oracle call.
func Bind(ctx context.Context, o Oracle) Oracle {
	return &bound{ctx: ctx, next: o}
}

type bound struct {
	ctx  context.Context
	next Oracle
}

func (b *bound) Valid(src string) (bool, error) { return ValidContext(b.ctx, b.next, src) }

func (b *bound) Check(src string) (Report, error) { return CheckContext(b.ctx, b.next, src) }
