package snapshot

import (
	"context"
	"errors"
	"time"

	"github.com/batcstore/batc-storefront/internal/domain"
)

// Window is how long a persisted cart stays valid. Snapshots older than
// this are discarded on load.
const Window = 2 * time.Hour

// ErrSnapshotMiss is returned by Load when no valid snapshot exists:
// never saved, expired, or unreadable.
var ErrSnapshotMiss = errors.New("snapshot miss")

// Store persists cart snapshots per session.
type Store interface {
	// Load returns the persisted lines, or ErrSnapshotMiss. Staleness is
	// checked lazily here, not by a background timer.
	Load(ctx context.Context, sessionID string) ([]domain.CartLine, error)
	// Save writes a snapshot stamped with the current time, or deletes
	// the key entirely when lines is empty.
	Save(ctx context.Context, sessionID string, lines []domain.CartLine) error
	Delete(ctx context.Context, sessionID string) error
}
