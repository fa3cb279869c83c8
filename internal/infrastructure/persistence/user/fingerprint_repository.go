// Package user provides the concrete SQL-based implementations of
// the user domain repositories (Fingerprint, Visit, Dismissal, Operator).
package user

import (
	"database/sql"
	"time"

	"github.com/AtRiskMedia/sunset-go/internal/domain/user"
	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/persistence/database"
	"github.com/AtRiskMedia/sunset-go/pkg/config"
)

// SQLFingerprintRepository is the SQL-based implementation of the FingerprintRepository.
type SQLFingerprintRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewSQLFingerprintRepository creates a new instance of the repository.
func NewSQLFingerprintRepository(db *database.DB, logger *logging.ChanneledLogger) *SQLFingerprintRepository {
	return &SQLFingerprintRepository{
		db:     db,
		logger: logger,
	}
}

// FindByID retrieves a Fingerprint by its unique identifier.
func (r *SQLFingerprintRepository) FindByID(id string) (*user.Fingerprint, error) {
	const query = `
		SELECT id, created_at
		FROM fingerprints
		WHERE id = ?`

	start := time.Now()
	r.logger.Database().Debug("Loading fingerprint by ID", "id", id)

	row := r.db.QueryRow(query, id)
	fingerprint, err := scanFingerprint(row)
	if err != nil {
		r.logger.Database().Error("Failed to load fingerprint by ID", "error", err.Error(), "id", id)
		return nil, err
	}

	duration := time.Since(start)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration, "system")
	}
	return fingerprint, nil
}

// Create saves a new Fingerprint to the database.
func (r *SQLFingerprintRepository) Create(fingerprint *user.Fingerprint) error {
	const query = `
		INSERT INTO fingerprints (id, created_at)
		VALUES (?, ?)`

	start := time.Now()
	r.logger.Database().Debug("Executing fingerprint insert", "id", fingerprint.ID)

	_, err := r.db.Exec(query, fingerprint.ID, fingerprint.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		r.logger.Database().Error("Fingerprint insert failed", "error", err.Error(), "id", fingerprint.ID)
		return err
	}

	duration := time.Since(start)
	r.logger.Database().Info("Fingerprint insert completed", "id", fingerprint.ID, "duration", duration)
	if duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration, "system")
	}
	return nil
}

// Exists checks if a Fingerprint with the given ID exists.
func (r *SQLFingerprintRepository) Exists(fingerprintID string) (bool, error) {
	const query = `
		SELECT 1 FROM fingerprints
		WHERE id = ?
		LIMIT 1`

	var exists int
	err := r.db.QueryRow(query, fingerprintID).Scan(&exists)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		r.logger.Database().Error("Failed to check fingerprint existence", "error", err.Error(), "fingerprintId", fingerprintID)
		return false, err
	}
	return true, nil
}

// scanFingerprint is a helper function to scan a sql.Row into a Fingerprint struct.
func scanFingerprint(row *sql.Row) (*user.Fingerprint, error) {
	var fingerprint user.Fingerprint
	var createdAtStr string

	err := row.Scan(&fingerprint.ID, &createdAtStr)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found
		}
		return nil, err
	}

	fingerprint.CreatedAt, err = parseTimestamp(createdAtStr)
	if err != nil {
		return nil, err
	}

	return &fingerprint, nil
}

// parseTimestamp handles the timestamp formats SQLite and libsql emit.
func parseTimestamp(value string) (time.Time, error) {
	ts, err := time.Parse(time.RFC3339, value)
	if err == nil {
		return ts, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
