package user

import (
	"database/sql"
	"time"

	"github.com/AtRiskMedia/sunset-go/internal/domain/user"
	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/persistence/database"
	"github.com/AtRiskMedia/sunset-go/pkg/config"
)

// SQLDismissalRepository is the SQL-based implementation of the DismissalRepository.
// Dismissal rows are the persisted seen flags: they carry no expiry and the
// application never deletes them.
type SQLDismissalRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewSQLDismissalRepository creates a new instance of the repository.
func NewSQLDismissalRepository(db *database.DB, logger *logging.ChanneledLogger) *SQLDismissalRepository {
	return &SQLDismissalRepository{
		db:     db,
		logger: logger,
	}
}

// Find retrieves the seen marker for a fingerprint and notice, or nil when
// the client has never dismissed that notice.
func (r *SQLDismissalRepository) Find(fingerprintID, noticeID string) (*user.Dismissal, error) {
	const query = `
		SELECT fingerprint_id, notice_id, dismissed_at
		FROM dismissals
		WHERE fingerprint_id = ? AND notice_id = ?`

	start := time.Now()
	r.logger.Database().Debug("Loading dismissal", "fingerprintId", fingerprintID, "noticeId", noticeID)

	row := r.db.QueryRow(query, fingerprintID, noticeID)

	var dismissal user.Dismissal
	var dismissedAtStr string
	err := row.Scan(&dismissal.FingerprintID, &dismissal.NoticeID, &dismissedAtStr)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.Database().Error("Failed to load dismissal", "error", err.Error(), "fingerprintId", fingerprintID, "noticeId", noticeID)
		return nil, err
	}

	dismissal.DismissedAt, err = parseTimestamp(dismissedAtStr)
	if err != nil {
		return nil, err
	}

	duration := time.Since(start)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration, "system")
	}
	return &dismissal, nil
}

// Record saves a seen marker. The insert is idempotent: re-recording an
// existing dismissal succeeds without error and keeps the original timestamp,
// so the seen flag stays monotonic.
func (r *SQLDismissalRepository) Record(dismissal *user.Dismissal) error {
	const query = `
		INSERT INTO dismissals (fingerprint_id, notice_id, dismissed_at)
		VALUES (?, ?, ?)
		ON CONFLICT (fingerprint_id, notice_id) DO NOTHING`

	start := time.Now()
	r.logger.Database().Debug("Executing dismissal insert", "fingerprintId", dismissal.FingerprintID, "noticeId", dismissal.NoticeID)

	_, err := r.db.Exec(
		query,
		dismissal.FingerprintID,
		dismissal.NoticeID,
		dismissal.DismissedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		r.logger.Database().Error("Dismissal insert failed", "error", err.Error(), "fingerprintId", dismissal.FingerprintID, "noticeId", dismissal.NoticeID)
		return err
	}

	duration := time.Since(start)
	r.logger.Database().Info("Dismissal recorded", "fingerprintId", dismissal.FingerprintID, "noticeId", dismissal.NoticeID, "duration", duration)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration, "system")
	}
	return nil
}
