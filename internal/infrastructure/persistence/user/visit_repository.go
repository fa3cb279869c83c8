package user

import (
	"database/sql"
	"time"

	"github.com/AtRiskMedia/sunset-go/internal/domain/user"
	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/persistence/database"
	"github.com/AtRiskMedia/sunset-go/pkg/config"
)

// SQLVisitRepository is the SQL-based implementation of the VisitRepository.
type SQLVisitRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewSQLVisitRepository creates a new instance of the repository.
func NewSQLVisitRepository(db *database.DB, logger *logging.ChanneledLogger) *SQLVisitRepository {
	return &SQLVisitRepository{
		db:     db,
		logger: logger,
	}
}

// FindLatestByFingerprint retrieves the most recent visit for a fingerprint.
func (r *SQLVisitRepository) FindLatestByFingerprint(fingerprintID string) (*user.Visit, error) {
	const query = `
		SELECT id, fingerprint_id, created_at
		FROM visits
		WHERE fingerprint_id = ?
		ORDER BY created_at DESC
		LIMIT 1`

	start := time.Now()
	r.logger.Database().Debug("Loading latest visit", "fingerprintId", fingerprintID)

	row := r.db.QueryRow(query, fingerprintID)

	var visit user.Visit
	var createdAtStr string
	err := row.Scan(&visit.ID, &visit.FingerprintID, &createdAtStr)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.Database().Error("Failed to load latest visit", "error", err.Error(), "fingerprintId", fingerprintID)
		return nil, err
	}

	visit.CreatedAt, err = parseTimestamp(createdAtStr)
	if err != nil {
		return nil, err
	}

	duration := time.Since(start)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration, "system")
	}
	return &visit, nil
}

// Create saves a new Visit to the database.
func (r *SQLVisitRepository) Create(visit *user.Visit) error {
	const query = `
		INSERT INTO visits (id, fingerprint_id, created_at)
		VALUES (?, ?, ?)`

	start := time.Now()
	r.logger.Database().Debug("Executing visit insert", "id", visit.ID, "fingerprintId", visit.FingerprintID)

	_, err := r.db.Exec(query, visit.ID, visit.FingerprintID, visit.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		r.logger.Database().Error("Visit insert failed", "error", err.Error(), "id", visit.ID)
		return err
	}

	duration := time.Since(start)
	r.logger.Database().Info("Visit insert completed", "id", visit.ID, "duration", duration)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration, "system")
	}
	return nil
}
