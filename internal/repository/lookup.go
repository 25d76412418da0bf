package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/templui/calldesk/internal/model"
)

var (
	ErrLookupExists   = errors.New("lookup entry already exists")
	ErrLookupNotFound = errors.New("lookup entry not found")
)

// lookupTables maps a lookup kind to its table. Only these names are ever
// interpolated into SQL.
var lookupTables = map[string]string{
	model.LookupContactPerson: "contact_persons",
	model.LookupOperator:      "operators",
}

// LookupRepository manages one per-user list of names (contact persons or operators).
type LookupRepository interface {
	Add(userID, name string) (*model.LookupEntry, error)
	Delete(userID, name string) error
	Names(userID string) ([]string, error)
}

type lookupRepository struct {
	db    *sqlx.DB
	table string
}

func NewLookupRepository(db *sqlx.DB, kind string) (LookupRepository, error) {
	table, ok := lookupTables[kind]
	if !ok {
		return nil, fmt.Errorf("unknown lookup kind %q", kind)
	}
	return &lookupRepository{db: db, table: table}, nil
}

func (r *lookupRepository) Add(userID, name string) (*model.LookupEntry, error) {
	entry := &model.LookupEntry{
		ID:        uuid.New().String(),
		UserID:    userID,
		Name:      name,
		CreatedAt: time.Now(),
	}

	query := `INSERT INTO ` + r.table + ` (id, user_id, name, created_at) VALUES ($1, $2, $3, $4)`

	_, err := r.db.Exec(query, entry.ID, entry.UserID, entry.Name, entry.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrLookupExists
		}
		return nil, err
	}

	return entry, nil
}

func (r *lookupRepository) Delete(userID, name string) error {
	query := `DELETE FROM ` + r.table + ` WHERE user_id = $1 AND name = $2`

	result, err := r.db.Exec(query, userID, name)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrLookupNotFound
	}

	return nil
}

func (r *lookupRepository) Names(userID string) ([]string, error) {
	names := []string{}
	query := `SELECT name FROM ` + r.table + ` WHERE user_id = $1 ORDER BY name`

	err := r.db.Select(&names, query, userID)
	if err != nil {
		return nil, err
	}

	return names, nil
}
