package breaker

import "context"

// Do runs an operation that returns a value under the breaker's
// protection. The value and error are passed through unchanged; when the
// circuit rejects the call the zero value and ErrOpen are returned.
func Do[T any](ctx context.Context, b *Breaker, op func(ctx context.Context) (T, error)) (T, error) {
	var out T
	err := b.Execute(ctx, func(ctx context.Context) error {
		var opErr error
		out, opErr = op(ctx)
		return opErr
	})
	return out, err
}
