package history

import (
	"database/sql"

	"codeberg.org/mutker/gamectl/internal/errors"
	"codeberg.org/mutker/gamectl/internal/logger"
)

const (
	SchemaVersion = 1

	createTablesSQL = `
	   CREATE TABLE IF NOT EXISTS schema_versions (
	       version     INTEGER PRIMARY KEY,
	       applied_at  TEXT NOT NULL
	   );
	   CREATE TABLE IF NOT EXISTS sessions (
	       token       TEXT PRIMARY KEY,
	       profile     TEXT NOT NULL,
	       command     TEXT NOT NULL,
	       started_at  INTEGER NOT NULL,
	       ended_at    INTEGER,
	       exit_code   INTEGER,
	       cancelled   INTEGER NOT NULL DEFAULT 0 CHECK (cancelled IN (0, 1))
	   );`

	insertSessionSQL = `
    INSERT INTO sessions (token, profile, command, started_at)
    VALUES (?, ?, ?, ?)`

	finishSessionSQL = `
    UPDATE sessions
    SET ended_at = ?, exit_code = ?, cancelled = ?
    WHERE token = ?`

	recentSessionsSQL = `
    SELECT token, profile, command, started_at, ended_at, exit_code, cancelled
    FROM sessions
    ORDER BY started_at DESC
    LIMIT ?`
)

// InitSchema creates the journal schema and records its version.
func InitSchema(db *sql.DB, log logger.Logger) error {
	errFactory := errors.New()

	tx, err := db.Begin()
	if err != nil {
		return errFactory.Wrap(errors.ErrInitFailed, err)
	}

	committed := false
	defer func() {
		if !committed {
			if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
				log.Debug().Err(err).Msg("Failed to rollback transaction")
			}
		}
	}()

	if _, err := tx.Exec(createTablesSQL); err != nil {
		return errFactory.Wrap(errors.ErrInitFailed, err)
	}

	if _, err := tx.Exec(`
        INSERT INTO schema_versions (version, applied_at)
        VALUES (?, datetime('now'))
    `, SchemaVersion); err != nil {
		return errFactory.Wrap(errors.ErrInitFailed, err)
	}

	if err := tx.Commit(); err != nil {
		return errFactory.Wrap(errors.ErrInitFailed, err)
	}
	committed = true

	log.Debug().Int("version", SchemaVersion).Msg("History schema initialized")

	return nil
}

// GetSchemaVersion returns the stored schema version, 0 when the
// database is fresh.
func GetSchemaVersion(db *sql.DB) (int, error) {
	errFactory := errors.New()

	exists, err := tableExists(db, "schema_versions")
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, nil
	}

	var version int
	err = db.QueryRow(`
        SELECT version
        FROM schema_versions
        ORDER BY version DESC
        LIMIT 1
    `).Scan(&version)

	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, errFactory.Wrap(errors.ErrOperationFailed, err)
	}

	return version, nil
}

func tableExists(db *sql.DB, tableName string) (bool, error) {
	var exists bool
	err := db.QueryRow(`
        SELECT EXISTS (
            SELECT 1 FROM sqlite_master
            WHERE type='table' AND name=?
        )
    `, tableName).Scan(&exists)
	if err != nil {
		return false, errors.New().Wrap(errors.ErrOperationFailed, err)
	}

	return exists, nil
}
