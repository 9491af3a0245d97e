package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/huddle-api/internal/domain"
	"github.com/phrazzld/huddle-api/internal/platform/logger"
	"github.com/phrazzld/huddle-api/internal/redact"
	"github.com/phrazzld/huddle-api/internal/store"
)

// PostgresMembershipStore implements store.MembershipStore.
type PostgresMembershipStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresMembershipStore creates a membership store. If logger is nil,
// a default logger will be used.
func NewPostgresMembershipStore(db store.DBTX, logger *slog.Logger) *PostgresMembershipStore {
	if db == nil {
		// ALLOW-PANIC: constructor misuse
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresMembershipStore{
		db:     db,
		logger: logger.With(slog.String("component", "membership_store")),
	}
}

var _ store.MembershipStore = (*PostgresMembershipStore)(nil)

// Get implements store.MembershipStore.Get.
func (s *PostgresMembershipStore) Get(ctx context.Context, groupID, userID uuid.UUID) (*domain.GroupMembership, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT group_id, user_id, accepted, created_at
		FROM group_members
		WHERE group_id = $1 AND user_id = $2
	`
	var m domain.GroupMembership
	err := s.db.QueryRowContext(ctx, query, groupID, userID).Scan(
		&m.GroupID,
		&m.UserID,
		&m.Accepted,
		&m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrMembershipNotFound
		}
		log.Error("failed to get membership",
			redact.ErrorAttr(err),
			slog.String("group_id", groupID.String()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}

	m.CreatedAt = m.CreatedAt.UTC()
	return &m, nil
}
