package session

import "context"

// Effects are the outbound requests the session triggers on the host. They
// are always invoked after the session lock is released.
type Effects interface {
	RequestInventory(ctx context.Context, shopID string) error
	HideFrame(ctx context.Context) error
	StartRobbery(ctx context.Context, shopID string) error
}

type effect struct {
	name string
	run  func(ctx context.Context) error
}

func (s *Session) inventoryEffect(shopID string) effect {
	return effect{
		name: "getInventory",
		run: func(ctx context.Context) error {
			return s.effects.RequestInventory(ctx, shopID)
		},
	}
}

// runEffects executes queued effects in order. Failures are logged and
// surfaced as the session notice; they never roll state back.
func (s *Session) runEffects(ctx context.Context, queued []effect) {
	for _, e := range queued {
		if err := e.run(ctx); err != nil {
			ctx := s.logg.WithField(ctx, "effect", e.name)
			s.logg.Error(ctx, "session.effect_failed", err)
			s.setNotice("Request to the game client failed: " + e.name)
		}
	}
}
