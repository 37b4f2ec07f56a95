package session

import (
	"context"

	pkgerrors "github.com/angelmondragon/shopoverlay/pkg/errors"
)

// KeyAction is what a key press resolved to.
type KeyAction string

const (
	KeyIgnored    KeyAction = "ignored"
	KeyClearCart  KeyAction = "clear_cart"
	KeyToggleMode KeyAction = "toggle_mode"
	KeyDismiss    KeyAction = "dismiss"
)

// HandleKey applies a keyboard shortcut. Keys are ignored while the overlay
// is hidden or a text input has focus. Toggling only happens on shops that
// both buy and sell; otherwise the key is ignored.
func (s *Session) HandleKey(ctx context.Context, code string, inputFocused bool) (KeyAction, error) {
	s.mu.Lock()
	visible := s.visible
	toggleable := s.shop != nil && s.shop.Toggleable()
	keys := s.keys
	s.mu.Unlock()

	if !visible || inputFocused {
		return KeyIgnored, nil
	}

	switch code {
	case keys.Dismiss:
		return KeyDismiss, s.Hide(ctx)
	case keys.ClearCart:
		return KeyClearCart, s.ClearActive()
	case keys.ToggleMode:
		if !toggleable {
			return KeyIgnored, nil
		}
		_, err := s.ToggleMode(ctx)
		return KeyToggleMode, err
	}
	return KeyIgnored, nil
}

// Hide asks the host to close the overlay. Visibility itself changes only
// when the host pushes setVisible.
func (s *Session) Hide(ctx context.Context) error {
	if err := s.effects.HideFrame(ctx); err != nil {
		s.logg.Error(ctx, "session.hide_failed", err)
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "hide request failed")
	}
	return nil
}

// StartRobbery asks the host to start robbing the current shop.
func (s *Session) StartRobbery(ctx context.Context) error {
	s.mu.Lock()
	if s.shop == nil || !s.shop.Robbable() {
		s.mu.Unlock()
		return pkgerrors.New(pkgerrors.CodeStateConflict, "this shop cannot be robbed")
	}
	shopID := s.shop.ID
	s.mu.Unlock()

	ctx = s.logg.WithShopID(ctx, shopID)
	if err := s.effects.StartRobbery(ctx, shopID); err != nil {
		s.logg.Error(ctx, "session.robbery_failed", err)
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "robbery request failed")
	}
	s.logg.Info(ctx, "session.robbery_started")
	return nil
}
