// Package sqlite stores the song catalog in SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3" // Import the driver anonymously

	"github.com/sairamandadi/emotion-based-Music-Recommender/internal/core/domain"
	"github.com/sairamandadi/emotion-based-Music-Recommender/internal/logger"
)

// Adapter implements ports.CatalogRepository for SQLite.
type Adapter struct {
	db *sql.DB
}

// NewAdapter opens storagePath and runs the schema migration.
func NewAdapter(storagePath string) (*Adapter, error) {
	db, err := sql.Open("sqlite3", storagePath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open db: %w", err)
	}
	if storagePath == ":memory:" {
		// Each pooled connection would get its own empty database.
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ping db: %w", err)
	}

	adapter := &Adapter{db: db}
	if err := adapter.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: migration failed: %w", err)
	}
	return adapter, nil
}

func (a *Adapter) Close() error {
	return a.db.Close()
}

// Load reads the whole catalog in ranking order.
func (a *Adapter) Load(ctx context.Context) (*domain.Catalog, error) {
	version, err := a.meta(ctx, "version", "sqlite")
	if err != nil {
		return nil, err
	}
	defaultLanguage, err := a.meta(ctx, "default_language", domain.DefaultLanguage)
	if err != nil {
		return nil, err
	}

	rows, err := a.db.QueryContext(ctx, `
		SELECT language, emotion, song_id, title, artist,
			IFNULL(album_art_ref, ''), IFNULL(play_ref, ''),
			IFNULL(popularity, 0), IFNULL(duration_ms, 0)
		FROM songs
		ORDER BY language ASC, emotion ASC, position ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query songs: %w", err)
	}
	defer rows.Close()

	builder := domain.NewCatalogBuilder(defaultLanguage)
	for rows.Next() {
		var language, emotionName string
		var song domain.Song
		if err := rows.Scan(
			&language,
			&emotionName,
			&song.ID,
			&song.Title,
			&song.Artist,
			&song.AlbumArtRef,
			&song.PlayRef,
			&song.Popularity,
			&song.DurationMs,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scan song: %w", err)
		}
		emotion, err := domain.ParseEmotion(emotionName)
		if err != nil {
			logger.Warn("sqlite: skipping song with unknown emotion",
				logger.String("emotion", emotionName),
				logger.String("title", song.Title),
			)
			continue
		}
		if err := builder.Add(language, emotion, song); err != nil {
			return nil, fmt.Errorf("sqlite: song %q: %w", song.Title, err)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterate songs: %w", err)
	}

	return builder.Build(version), nil
}

// Import replaces the stored catalog with c in a single transaction.
func (a *Adapter) Import(ctx context.Context, c *domain.Catalog) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM songs"); err != nil {
		return fmt.Errorf("sqlite: clear songs: %w", err)
	}

	stmtMeta, err := tx.PrepareContext(ctx, `
		INSERT INTO catalog_meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value=excluded.value
	`)
	if err != nil {
		return fmt.Errorf("sqlite: prepare meta: %w", err)
	}
	defer stmtMeta.Close()
	if _, err := stmtMeta.ExecContext(ctx, "version", c.Version()); err != nil {
		return fmt.Errorf("sqlite: save version: %w", err)
	}
	if _, err := stmtMeta.ExecContext(ctx, "default_language", c.DefaultLanguage()); err != nil {
		return fmt.Errorf("sqlite: save default language: %w", err)
	}

	stmtSong, err := tx.PrepareContext(ctx, `
		INSERT INTO songs (
			language, emotion, position, song_id, title, artist,
			album_art_ref, play_ref, popularity, duration_ms
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("sqlite: prepare songs: %w", err)
	}
	defer stmtSong.Close()

	var insertErr error
	c.Each(func(language string, e domain.Emotion, songs []domain.Song) {
		for pos, s := range songs {
			if insertErr != nil {
				return
			}
			if _, err := stmtSong.ExecContext(ctx,
				language,
				e.String(),
				pos,
				s.ID,
				s.Title,
				s.Artist,
				s.AlbumArtRef,
				s.PlayRef,
				s.Popularity,
				s.DurationMs,
			); err != nil {
				insertErr = fmt.Errorf("sqlite: save song %q: %w", s.Title, err)
			}
		}
	})
	if insertErr != nil {
		return insertErr
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", err)
	}
	return nil
}

func (a *Adapter) meta(ctx context.Context, key, fallback string) (string, error) {
	var value string
	err := a.db.QueryRowContext(ctx, "SELECT value FROM catalog_meta WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return fallback, nil
	}
	if err != nil {
		return "", fmt.Errorf("sqlite: load %s: %w", key, err)
	}
	return value, nil
}

func (a *Adapter) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS catalog_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS songs (
		language TEXT NOT NULL,
		emotion TEXT NOT NULL,
		position INTEGER NOT NULL,
		song_id TEXT NOT NULL DEFAULT '',
		title TEXT NOT NULL,
		artist TEXT NOT NULL,
		album_art_ref TEXT,
		play_ref TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (language, emotion, position)
	);
	`
	if _, err := a.db.Exec(query); err != nil {
		return err
	}

	for _, column := range []string{"popularity INTEGER", "duration_ms INTEGER"} {
		if _, err := a.db.Exec("ALTER TABLE songs ADD COLUMN " + column); err != nil {
			if !isDuplicateColumnError(err) {
				return err
			}
		}
	}
	return nil
}

func isDuplicateColumnError(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "duplicate column") || strings.Contains(err.Error(), "already exists"))
}
