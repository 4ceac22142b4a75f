package notify

import "context"

// Notifier delivers an opaque, already-formatted payload to a sink. The
// pipeline neither knows nor cares about delivery mechanics.
type Notifier interface {
	Notify(ctx context.Context, payload string) error
}

// Noop discards every payload. Used when no sink is configured.
type Noop struct{}

// Notify implements Notifier.
func (Noop) Notify(context.Context, string) error { return nil }

// Fanout delivers to every sink, returning the first error after trying all.
type Fanout []Notifier

// Notify implements Notifier.
func (f Fanout) Notify(ctx context.Context, payload string) error {
	var firstErr error
	for _, n := range f {
		if err := n.Notify(ctx, payload); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
