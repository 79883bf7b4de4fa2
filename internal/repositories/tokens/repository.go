// Package tokens persists ephemeral single-use tokens in the key-value store.
//
// Every token is written as two coupled entries: the primary record under
// "{prefix}:{token}" and a reverse index under "idx:token_id:{id}" that allows
// deletion by numeric id. The pair is best-effort, not transactional: the
// primary write must succeed, a failed reverse-index write after it only
// degrades delete-by-id and is tolerated.
package tokens

import (
	"context"
	"errors"

	"github.com/psergee/authd/internal/models"
)

// ErrNotFound marks an absent (or already consumed / expired) token entry.
var ErrNotFound = errors.New("token not found")

// Repository is the ephemeral token store.
type Repository interface {
	// Insert mints a numeric id from the shared sequence and writes the
	// primary record plus the reverse index, both with a TTL slightly past
	// the record's logical expiry. Returns the minted token id.
	Insert(ctx context.Context, token string, typ models.TokenType, record *models.TokenRecord) (int64, error)

	// Select reads the primary record without consuming it.
	Select(ctx context.Context, token string, typ models.TokenType) (*models.TokenRecord, error)

	// Consume atomically reads and removes the primary record; of two
	// concurrent consumers of the same token exactly one succeeds. The
	// reverse index is removed best-effort afterwards.
	Consume(ctx context.Context, token string, typ models.TokenType) (*models.TokenRecord, error)

	// DeleteByID resolves the reverse index and removes both entries.
	// A missing reverse index makes this a no-op, so retries are idempotent.
	DeleteByID(ctx context.Context, tokenID int64) error
}
