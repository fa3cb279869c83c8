package user

import (
	"database/sql"
	"time"

	"github.com/AtRiskMedia/sunset-go/internal/domain/user"
	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/persistence/database"
)

// SQLOperatorRepository is the SQL-based implementation of the OperatorRepository.
type SQLOperatorRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewSQLOperatorRepository creates a new instance of the repository.
func NewSQLOperatorRepository(db *database.DB, logger *logging.ChanneledLogger) *SQLOperatorRepository {
	return &SQLOperatorRepository{
		db:     db,
		logger: logger,
	}
}

// FindByEmail retrieves an Operator by email address.
func (r *SQLOperatorRepository) FindByEmail(email string) (*user.Operator, error) {
	const query = `
		SELECT id, email, password_hash, subscribed, created_at
		FROM operators
		WHERE email = ?
		LIMIT 1`

	row := r.db.QueryRow(query, email)

	var op user.Operator
	var subscribed int
	var createdAtStr string
	err := row.Scan(&op.ID, &op.Email, &op.PasswordHash, &subscribed, &createdAtStr)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.Database().Error("Failed to load operator by email", "error", err.Error())
		return nil, err
	}

	op.Subscribed = subscribed != 0
	op.CreatedAt, err = parseTimestamp(createdAtStr)
	if err != nil {
		return nil, err
	}

	return &op, nil
}

// FindSubscribed retrieves all operators who receive reminder email.
func (r *SQLOperatorRepository) FindSubscribed() ([]*user.Operator, error) {
	const query = `
		SELECT id, email, password_hash, subscribed, created_at
		FROM operators
		WHERE subscribed = 1`

	rows, err := r.db.Query(query)
	if err != nil {
		r.logger.Database().Error("Failed to load subscribed operators", "error", err.Error())
		return nil, err
	}
	defer rows.Close()

	var operators []*user.Operator
	for rows.Next() {
		var op user.Operator
		var subscribed int
		var createdAtStr string
		if err := rows.Scan(&op.ID, &op.Email, &op.PasswordHash, &subscribed, &createdAtStr); err != nil {
			return nil, err
		}
		op.Subscribed = subscribed != 0
		if op.CreatedAt, err = parseTimestamp(createdAtStr); err != nil {
			return nil, err
		}
		operators = append(operators, &op)
	}
	return operators, rows.Err()
}

// Create saves a new Operator to the database.
func (r *SQLOperatorRepository) Create(op *user.Operator) error {
	const query = `
		INSERT INTO operators (id, email, password_hash, subscribed, created_at)
		VALUES (?, ?, ?, ?, ?)`

	subscribed := 0
	if op.Subscribed {
		subscribed = 1
	}

	_, err := r.db.Exec(query, op.ID, op.Email, op.PasswordHash, subscribed, op.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		r.logger.Database().Error("Operator insert failed", "error", err.Error(), "id", op.ID)
		return err
	}

	r.logger.Database().Info("Operator insert completed", "id", op.ID)
	return nil
}
