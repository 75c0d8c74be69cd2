// Package history keeps a sqlite journal of launch sessions: when each
// one started, how it ended, and whether it was cancelled.
package history

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"time"

	"codeberg.org/mutker/gamectl/internal/errors"
	"codeberg.org/mutker/gamectl/internal/logger"
	_ "github.com/mattn/go-sqlite3"
)

const defaultDirPerm = 0o755

// Entry is one recorded session.
type Entry struct {
	Token     string
	Profile   string
	Command   string
	StartedAt time.Time
	EndedAt   *time.Time
	ExitCode  *int
	Cancelled bool
}

// Journal is a sqlite-backed session log. It satisfies the supervisor's
// journal contract.
type Journal struct {
	db  *sql.DB
	log logger.Logger
}

// Open opens or creates the journal database at path.
func Open(path string, log logger.Logger) (*Journal, error) {
	errFactory := errors.New()

	if path == "" {
		return nil, errFactory.WithMessage(errors.ErrInvalidConfig, "history database path not set")
	}

	if err := os.MkdirAll(filepath.Dir(path), defaultDirPerm); err != nil {
		return nil, errFactory.Wrap(errors.ErrInitFailed, err)
	}

	dsn := path + "?_journal=WAL&_auto_vacuum=2"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errFactory.Wrap(errors.ErrInitFailed, err)
	}

	version, err := GetSchemaVersion(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	if version == 0 {
		if err := InitSchema(db, log); err != nil {
			db.Close()
			return nil, err
		}
	}

	log.Debug().
		Str("path", path).
		Int("schema_version", SchemaVersion).
		Msg("History journal opened")

	return &Journal{db: db, log: log}, nil
}

// Begin records the start of a session.
func (j *Journal) Begin(token, profileName string, command []string, startedAt time.Time) error {
	_, err := j.db.Exec(insertSessionSQL, token, profileName, strings.Join(command, " "), startedAt.Unix())
	if err != nil {
		return errors.New().Wrap(errors.ErrOperationFailed, err)
	}

	return nil
}

// Finish records the end of a session.
func (j *Journal) Finish(token string, endedAt time.Time, exitCode int, cancelled bool) error {
	_, err := j.db.Exec(finishSessionSQL, endedAt.Unix(), exitCode, boolToInt(cancelled), token)
	if err != nil {
		return errors.New().Wrap(errors.ErrOperationFailed, err)
	}

	return nil
}

// Recent returns up to limit sessions, newest first.
func (j *Journal) Recent(limit int) ([]Entry, error) {
	errFactory := errors.New()

	rows, err := j.db.Query(recentSessionsSQL, limit)
	if err != nil {
		return nil, errFactory.Wrap(errors.ErrOperationFailed, err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e         Entry
			startedAt int64
			endedAt   sql.NullInt64
			exitCode  sql.NullInt64
			cancelled int
		)
		if err := rows.Scan(&e.Token, &e.Profile, &e.Command, &startedAt, &endedAt, &exitCode, &cancelled); err != nil {
			return nil, errFactory.Wrap(errors.ErrOperationFailed, err)
		}
		e.StartedAt = time.Unix(startedAt, 0)
		if endedAt.Valid {
			t := time.Unix(endedAt.Int64, 0)
			e.EndedAt = &t
		}
		if exitCode.Valid {
			code := int(exitCode.Int64)
			e.ExitCode = &code
		}
		e.Cancelled = cancelled == 1
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errFactory.Wrap(errors.ErrOperationFailed, err)
	}

	return entries, nil
}

// Close checkpoints the WAL and closes the database.
func (j *Journal) Close() error {
	errFactory := errors.New()

	if _, err := j.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return errFactory.Wrap(errors.ErrShutdownFailed, err)
	}
	if err := j.db.Close(); err != nil {
		return errFactory.Wrap(errors.ErrShutdownFailed, err)
	}

	j.log.Debug().Msg("History journal closed")

	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}

	return 0
}
