// Package content provides the SQL-based implementation of the notice catalog.
package content

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/AtRiskMedia/sunset-go/internal/domain/entities/notice"
	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/persistence/database"
	"github.com/AtRiskMedia/sunset-go/pkg/config"
)

// SQLNoticeRepository is the SQL-based implementation of notice.Repository.
type SQLNoticeRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewSQLNoticeRepository creates a new instance of the repository.
func NewSQLNoticeRepository(db *database.DB, logger *logging.ChanneledLogger) *SQLNoticeRepository {
	return &SQLNoticeRepository{
		db:     db,
		logger: logger,
	}
}

const noticeColumns = `id, title, body, sunset_date, learn_more_url, new_interface_url, image_src, is_active, created_at, changed`

// FindByID retrieves a Notice by its unique identifier.
func (r *SQLNoticeRepository) FindByID(id string) (*notice.Notice, error) {
	query := `SELECT ` + noticeColumns + ` FROM notices WHERE id = ?`

	start := time.Now()
	r.logger.Database().Debug("Loading notice by ID", "id", id)

	row := r.db.QueryRow(query, id)
	n, err := scanNotice(row)
	if err != nil {
		r.logger.Database().Error("Failed to load notice by ID", "error", err.Error(), "id", id)
		return nil, err
	}

	if duration := time.Since(start); duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration, "system")
	}
	return n, nil
}

// FindActive retrieves the single active notice, or nil when no notice is live.
func (r *SQLNoticeRepository) FindActive() (*notice.Notice, error) {
	query := `SELECT ` + noticeColumns + ` FROM notices WHERE is_active = 1 LIMIT 1`

	start := time.Now()
	row := r.db.QueryRow(query)
	n, err := scanNotice(row)
	if err != nil {
		r.logger.Database().Error("Failed to load active notice", "error", err.Error())
		return nil, err
	}

	if duration := time.Since(start); duration > config.SlowQueryThreshold {
		r.logger.LogSlowQuery(query, duration, "system")
	}
	return n, nil
}

// FindAll retrieves every notice, newest first.
func (r *SQLNoticeRepository) FindAll() ([]*notice.Notice, error) {
	query := `SELECT ` + noticeColumns + ` FROM notices ORDER BY created_at DESC`

	rows, err := r.db.Query(query)
	if err != nil {
		r.logger.Database().Error("Failed to load notices", "error", err.Error())
		return nil, err
	}
	defer rows.Close()

	var notices []*notice.Notice
	for rows.Next() {
		n, err := scanNoticeRows(rows)
		if err != nil {
			return nil, err
		}
		notices = append(notices, n)
	}
	return notices, rows.Err()
}

// Create saves a new Notice to the database.
func (r *SQLNoticeRepository) Create(n *notice.Notice) error {
	const query = `
		INSERT INTO notices (id, title, body, sunset_date, learn_more_url, new_interface_url, image_src, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	start := time.Now()
	r.logger.Database().Debug("Executing notice insert", "id", n.ID)

	active := 0
	if n.IsActive {
		active = 1
	}

	_, err := r.db.Exec(
		query,
		n.ID, n.Title, n.Body,
		n.SunsetDate.UTC().Format(time.RFC3339),
		n.LearnMoreURL, n.NewInterfaceURL, n.ImageSrc,
		active,
		n.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		r.logger.Database().Error("Notice insert failed", "error", err.Error(), "id", n.ID)
		return err
	}

	r.logger.Database().Info("Notice insert completed", "id", n.ID, "duration", time.Since(start))
	return nil
}

// Update rewrites a Notice's content fields. The ID is immutable: changed
// copy that should re-show the popup for everyone gets a new notice instead.
func (r *SQLNoticeRepository) Update(n *notice.Notice) error {
	const query = `
		UPDATE notices
		SET title = ?, body = ?, sunset_date = ?, learn_more_url = ?, new_interface_url = ?, image_src = ?, changed = ?
		WHERE id = ?`

	now := time.Now().UTC()
	_, err := r.db.Exec(
		query,
		n.Title, n.Body,
		n.SunsetDate.UTC().Format(time.RFC3339),
		n.LearnMoreURL, n.NewInterfaceURL, n.ImageSrc,
		now.Format(time.RFC3339),
		n.ID,
	)
	if err != nil {
		r.logger.Database().Error("Notice update failed", "error", err.Error(), "id", n.ID)
		return err
	}

	n.Changed = &now
	return nil
}

// SetActive activates one notice and deactivates every other, inside a
// transaction so at most one notice is ever live.
func (r *SQLNoticeRepository) SetActive(id string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin activation transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`UPDATE notices SET is_active = 0 WHERE is_active = 1`); err != nil {
		return fmt.Errorf("failed to deactivate notices: %w", err)
	}

	result, err := tx.Exec(`UPDATE notices SET is_active = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to activate notice %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("notice %s not found", id)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit activation: %w", err)
	}

	r.logger.Database().Info("Notice activated", "id", id)
	return nil
}

// Delete removes a notice and its dismissal rows in one transaction.
// Callers are expected to refuse deleting the active notice first; the
// repository only guarantees the row existed.
func (r *SQLNoticeRepository) Delete(id string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin delete transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM dismissals WHERE notice_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete dismissals for notice %s: %w", id, err)
	}

	result, err := tx.Exec(`DELETE FROM notices WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete notice %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("notice %s not found", id)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete: %w", err)
	}

	r.logger.Database().Info("Notice deleted", "id", id)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNotice(row *sql.Row) (*notice.Notice, error) {
	n, err := scanNoticeFrom(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return n, err
}

func scanNoticeRows(rows *sql.Rows) (*notice.Notice, error) {
	return scanNoticeFrom(rows)
}

func scanNoticeFrom(scanner rowScanner) (*notice.Notice, error) {
	var n notice.Notice
	var sunsetStr, createdStr string
	var imageSrc sql.NullString
	var changedStr sql.NullString
	var active int

	err := scanner.Scan(
		&n.ID, &n.Title, &n.Body,
		&sunsetStr,
		&n.LearnMoreURL, &n.NewInterfaceURL,
		&imageSrc,
		&active,
		&createdStr,
		&changedStr,
	)
	if err != nil {
		return nil, err
	}

	n.IsActive = active != 0
	if imageSrc.Valid {
		n.ImageSrc = &imageSrc.String
	}

	if n.SunsetDate, err = parseTimestamp(sunsetStr); err != nil {
		return nil, err
	}
	if n.CreatedAt, err = parseTimestamp(createdStr); err != nil {
		return nil, err
	}
	if changedStr.Valid {
		changed, err := parseTimestamp(changedStr.String)
		if err != nil {
			return nil, err
		}
		n.Changed = &changed
	}

	return &n, nil
}

// parseTimestamp handles the timestamp formats SQLite and libsql emit.
func parseTimestamp(value string) (time.Time, error) {
	ts, err := time.Parse(time.RFC3339, value)
	if err == nil {
		return ts, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
