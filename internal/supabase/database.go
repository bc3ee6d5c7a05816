package supabase

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/lib/pq"

	"derender-backend/internal/models"
)

type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(connectionString string) (*DatabaseClient, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

func (d *DatabaseClient) SessionExists(sessionID string) (bool, error) {
	var exists bool
	err := d.db.QueryRow(`
		SELECT EXISTS (SELECT 1 FROM sessions WHERE id = $1)
	`, sessionID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check session %s: %w", sessionID, err)
	}

	return exists, nil
}

// CreateSession inserts a backfilled session record. ON CONFLICT DO NOTHING
// keeps a lost race between concurrent syncs from surfacing as an error; the
// first writer wins and the record is never overwritten.
func (d *DatabaseClient) CreateSession(record *models.SessionRecord) error {
	tryons, err := json.Marshal(record.FoundationTryons)
	if err != nil {
		return fmt.Errorf("failed to marshal foundation tryons: %w", err)
	}

	_, err = d.db.Exec(`
		INSERT INTO sessions (
			id, created_at, original_image_url, derendered_image_url,
			original_mime_type, derendered_mime_type, model, derender_prompt,
			foundation_tryons, status, completed_at, synced_from_storage, synced_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO NOTHING
	`,
		record.ID, record.CreatedAt, record.OriginalImageURL, record.DerenderedImageURL,
		record.OriginalMimeType, record.DerenderedMimeType, record.Model, record.DerenderPrompt,
		tryons, record.Status, record.CompletedAt, record.SyncedFromStorage, record.SyncedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create session %s: %w", record.ID, err)
	}

	return nil
}

func (d *DatabaseClient) CreateGeneration(record *models.GenerationRecord) error {
	_, err := d.db.Exec(`
		INSERT INTO generations (
			id, timestamp, original_image_url, original_mime_type,
			processed_image_url, processed_mime_type, model, prompt
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		record.ID, record.Timestamp, record.OriginalImageURL, record.OriginalMimeType,
		record.ProcessedImageURL, record.ProcessedMimeType, record.Model, record.Prompt,
	)
	if err != nil {
		return fmt.Errorf("failed to create generation %s: %w", record.ID, err)
	}

	return nil
}

func (d *DatabaseClient) Close() error {
	return d.db.Close()
}
