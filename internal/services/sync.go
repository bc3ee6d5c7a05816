package services

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"derender-backend/internal/models"
)

const (
	// SessionsPrefix is the storage namespace holding one folder per session.
	SessionsPrefix = "sessions/"

	originalFilename   = "original.jpg"
	derenderedFilename = "derendered.jpg"

	defaultMimeType = "image/jpeg"
	backfillPrompt  = "Backfilled from storage; original prompt not recorded."
	unknownSKU      = "unknown"
)

var foundationPattern = regexp.MustCompile(`^foundation-([^-]+)-(\d+)\.jpg$`)

// ObjectStore is the slice of the storage adapter the sync needs.
type ObjectStore interface {
	ListObjects(prefix string) ([]string, error)
	PublicURL(path string) string
}

// SessionStore is the slice of the database adapter the sync needs.
type SessionStore interface {
	SessionExists(sessionID string) (bool, error)
	CreateSession(record *models.SessionRecord) error
}

// SyncService reconciles session folders in object storage with session
// records in the database. It only fills gaps: existing records are never
// touched, so re-running after a partial sweep is safe.
type SyncService struct {
	storage ObjectStore
	db      SessionStore
	model   string
}

func NewSyncService(storage ObjectStore, db SessionStore, model string) *SyncService {
	return &SyncService{
		storage: storage,
		db:      db,
		model:   model,
	}
}

// Sweep backfills a session record for every storage folder missing one.
// A failure on one session is recorded in its detail entry and the sweep
// moves on; a single broken folder must not block the rest.
//
// Nothing guards two sweeps running at once: both can observe a missing
// record and both attempt the create. The insert's conflict clause makes the
// loser a no-op, but no lock is taken.
func (s *SyncService) Sweep() (*models.SyncResponse, error) {
	folders, err := s.listSessionFolders()
	if err != nil {
		return nil, err
	}

	resp := &models.SyncResponse{
		TotalFolders: len(folders),
		Details:      []models.SyncDetail{},
	}

	for _, sessionID := range sortedIDs(folders) {
		exists, err := s.db.SessionExists(sessionID)
		if err != nil {
			resp.Failed++
			resp.Details = append(resp.Details, models.SyncDetail{
				SessionID: sessionID,
				Status:    "failed",
				Error:     err.Error(),
			})
			continue
		}
		if exists {
			resp.AlreadySynced++
			resp.Details = append(resp.Details, models.SyncDetail{
				SessionID: sessionID,
				Status:    "already_synced",
			})
			continue
		}

		record := s.synthesizeRecord(sessionID, folders[sessionID])
		if err := s.db.CreateSession(record); err != nil {
			resp.Failed++
			resp.Details = append(resp.Details, models.SyncDetail{
				SessionID: sessionID,
				Status:    "failed",
				Error:     err.Error(),
			})
			continue
		}

		resp.NewlyCreated++
		resp.Details = append(resp.Details, models.SyncDetail{
			SessionID: sessionID,
			Status:    "created",
		})
	}

	return resp, nil
}

// DryRun reports which session folders lack a database record without
// writing anything.
func (s *SyncService) DryRun() (*models.SyncStatusResponse, error) {
	folders, err := s.listSessionFolders()
	if err != nil {
		return nil, err
	}

	resp := &models.SyncStatusResponse{
		TotalFolders: len(folders),
		Missing:      []string{},
	}

	for _, sessionID := range sortedIDs(folders) {
		exists, err := s.db.SessionExists(sessionID)
		if err != nil {
			return nil, fmt.Errorf("failed to check session %s: %w", sessionID, err)
		}
		if exists {
			resp.InFirestore++
		} else {
			resp.MissingFromFirestore++
			resp.Missing = append(resp.Missing, sessionID)
		}
	}

	resp.Message = fmt.Sprintf("%d session folders in storage, %d missing from the database",
		resp.TotalFolders, resp.MissingFromFirestore)

	return resp, nil
}

// listSessionFolders groups storage objects by session. The session id is
// the first path segment after the sessions/ prefix; only files directly
// under the session folder count as its files.
func (s *SyncService) listSessionFolders() (map[string][]string, error) {
	paths, err := s.storage.ListObjects(SessionsPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list storage objects: %w", err)
	}

	folders := make(map[string][]string)
	for _, path := range paths {
		rel := strings.TrimPrefix(path, SessionsPrefix)
		if rel == path || rel == "" {
			continue
		}

		segments := strings.Split(rel, "/")
		sessionID := segments[0]
		if sessionID == "" {
			continue
		}

		if _, ok := folders[sessionID]; !ok {
			folders[sessionID] = []string{}
		}
		if len(segments) == 2 && segments[1] != "" {
			folders[sessionID] = append(folders[sessionID], segments[1])
		}
	}

	return folders, nil
}

// synthesizeRecord derives a session record from the files found in the
// session's folder. Storage does not retain the prompt, MIME types or model,
// so those get placeholder values.
func (s *SyncService) synthesizeRecord(sessionID string, files []string) *models.SessionRecord {
	nowMillis := time.Now().UnixMilli()

	createdAt := nowMillis
	if isAllDigits(sessionID) {
		if parsed, err := strconv.ParseInt(sessionID, 10, 64); err == nil {
			createdAt = parsed
		}
	}

	record := &models.SessionRecord{
		ID:                 sessionID,
		CreatedAt:          createdAt,
		OriginalMimeType:   defaultMimeType,
		DerenderedMimeType: defaultMimeType,
		Model:              s.model,
		DerenderPrompt:     backfillPrompt,
		FoundationTryons:   []models.FoundationTryon{},
		Status:             models.SessionStatusActive,
		SyncedFromStorage:  true,
		SyncedAt:           nowMillis,
	}

	sort.Strings(files)
	for _, name := range files {
		path := SessionsPrefix + sessionID + "/" + name
		switch {
		case name == originalFilename:
			url := s.storage.PublicURL(path)
			record.OriginalImageURL = &url
		case name == derenderedFilename:
			url := s.storage.PublicURL(path)
			record.DerenderedImageURL = &url
		case strings.Contains(name, "foundation-") && strings.HasSuffix(name, ".jpg"):
			record.FoundationTryons = append(record.FoundationTryons,
				s.parseFoundationTryon(name, path, nowMillis))
		}
	}

	return record
}

// parseFoundationTryon matches foundation-<sku>-<timestamp>.jpg. Names that
// don't fit still yield an entry with placeholder sku and timestamp; a badly
// named file must never fail the sweep.
func (s *SyncService) parseFoundationTryon(name, path string, nowMillis int64) models.FoundationTryon {
	tryon := models.FoundationTryon{
		SKU:       unknownSKU,
		Timestamp: nowMillis,
		ImageURL:  s.storage.PublicURL(path),
	}

	if m := foundationPattern.FindStringSubmatch(name); m != nil {
		if ts, err := strconv.ParseInt(m[2], 10, 64); err == nil {
			tryon.SKU = m[1]
			tryon.Timestamp = ts
		}
	}

	return tryon
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func sortedIDs(folders map[string][]string) []string {
	ids := make([]string, 0, len(folders))
	for id := range folders {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
