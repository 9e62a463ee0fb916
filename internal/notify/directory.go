package notify

import (
	"context"
	"errors"

	"github.com/roomie-match/matchcore/internal/domain"
)

// ErrRecipientNotFound is returned by RecipientDirectory.Lookup when a
// UserID has no resolvable contact record.
var ErrRecipientNotFound = errors.New("notify: recipient not found")

// Recipient is the contact information needed to address a notification.
// The profile/account data it's drawn from lives in an external service
// (spec §1 "out of scope"); the core only reads it at this one surface.
type Recipient struct {
	Email    string
	Nickname string
}

// RecipientDirectory resolves a UserID to its contact info.
type RecipientDirectory interface {
	Lookup(ctx context.Context, userID domain.UserID) (Recipient, error)
}

// StaticDirectory is a fixed in-memory RecipientDirectory, used in tests
// and as a placeholder until a real account-service client is wired.
type StaticDirectory map[domain.UserID]Recipient

func (d StaticDirectory) Lookup(ctx context.Context, userID domain.UserID) (Recipient, error) {
	r, ok := d[userID]
	if !ok {
		return Recipient{}, ErrRecipientNotFound
	}
	return r, nil
}
