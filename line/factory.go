package line

import (
	"context"
	"errors"
	"slices"
)

// Factory turns the payload of a directive into a [Source].
//
// Resolve returns (nil, nil) when the payload is not meant for this factory,
// so that the next factory in a [Chain] can try it. Any non-nil error aborts
// resolution.
type Factory interface {
	Resolve(ctx context.Context, payload string, relativeTo Source) (Source, error)
}

// FactoryFunc adapts an ordinary function to the [Factory] interface.
type FactoryFunc func(ctx context.Context, payload string, relativeTo Source) (Source, error)

// Resolve calls f.
func (f FactoryFunc) Resolve(
	ctx context.Context,
	payload string,
	relativeTo Source,
) (Source, error) {
	return f(ctx, payload, relativeTo)
}

// Hinter is implemented by factories that can suggest alternatives for a
// payload no factory resolved.
type Hinter interface {
	Hints(payload string, relativeTo Source) []string
}

// Chain is an ordered list of factories. The first to return a non-nil
// source wins.
type Chain []Factory

// Resolve offers payload to each factory of c in order.
// Errors not already derived from [ErrResolution] are wrapped with it.
func (c Chain) Resolve(
	ctx context.Context,
	payload string,
	relativeTo Source,
) (Source, error) {
	for _, f := range c {
		if f == nil {
			continue
		}

		if err := ctx.Err(); err != nil {
			return nil, err
		}

		src, err := f.Resolve(ctx, payload, relativeTo)
		if err != nil {
			if errors.Is(err, ErrResolution) {
				return nil, err
			}

			return nil, ErrResolution.Wrap(err).With(attrPayload(payload))
		}

		if src != nil {
			return src, nil
		}
	}

	return nil, nil //nolint:nilnil
}

// Hints collects the suggestions of every [Hinter] in c, without duplicates.
func (c Chain) Hints(payload string, relativeTo Source) []string {
	var hints []string

	for _, f := range c {
		h, ok := f.(Hinter)
		if !ok {
			continue
		}

		for _, s := range h.Hints(payload, relativeTo) {
			if !slices.Contains(hints, s) {
				hints = append(hints, s)
			}
		}
	}

	return hints
}
