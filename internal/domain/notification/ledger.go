package notification

import "context"

// Ledger records which reminders were already sent.
//
// Claim returns false when the key is already sent or is pending under another
// worker. A failed delivery can be claimed again.
type Ledger interface {
	Claim(ctx context.Context, delivery Delivery) (bool, error)
	MarkSent(ctx context.Context, key, messageID string) error
	Release(ctx context.Context, key, reason string) error
}
