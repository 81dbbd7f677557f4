package limits

import (
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteSource serves limits from a sqlite database. The expected
// schema matches the CSV layout:
//
//	CREATE TABLE joint_limits (
//	    joint_name  TEXT PRIMARY KEY,
//	    lower_limit DOUBLE,
//	    upper_limit DOUBLE,
//	    damping     DOUBLE,
//	    friction    DOUBLE
//	);
type SQLiteSource struct {
	db *sql.DB
}

// OpenSQLite opens a limits database at path. The caller owns the
// returned source and must Close it.
func OpenSQLite(path string) (*SQLiteSource, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open limits database: %w", err)
	}
	// Fail early on an unreadable or schema-less database rather than
	// at the first joint lookup.
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM joint_limits`).Scan(&n); err != nil {
		db.Close()
		return nil, fmt.Errorf("limits database %s: %w", path, err)
	}
	return &SQLiteSource{db: db}, nil
}

// NewSQLiteSource wraps an existing database handle.
func NewSQLiteSource(db *sql.DB) *SQLiteSource { return &SQLiteSource{db: db} }

// Limits returns the row for jointName.
func (s *SQLiteSource) Limits(jointName string) (JointLimits, error) {
	var row JointLimits
	err := s.db.QueryRow(
		`SELECT lower_limit, upper_limit, damping, friction FROM joint_limits WHERE joint_name = ?`,
		jointName,
	).Scan(&row.Lower, &row.Upper, &row.Damping, &row.Friction)
	if errors.Is(err, sql.ErrNoRows) {
		return JointLimits{}, fmt.Errorf("%w: %s", ErrJointNotFound, jointName)
	}
	if err != nil {
		return JointLimits{}, fmt.Errorf("limits lookup %s: %w", jointName, err)
	}
	return row, nil
}

// Close releases the underlying database handle.
func (s *SQLiteSource) Close() error { return s.db.Close() }
