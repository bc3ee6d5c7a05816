package services_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"derender-backend/internal/models"
	"derender-backend/internal/services"
)

type fakeStorage struct {
	paths []string
	err   error
}

func (f *fakeStorage) ListObjects(prefix string) ([]string, error) {
	return f.paths, f.err
}

func (f *fakeStorage) PublicURL(path string) string {
	return "https://example.supabase.co/storage/v1/object/public/makeup-images/" + path
}

type fakeSessionStore struct {
	existing  map[string]bool
	created   []*models.SessionRecord
	createErr map[string]error
	existsErr map[string]error
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{
		existing:  map[string]bool{},
		createErr: map[string]error{},
		existsErr: map[string]error{},
	}
}

func (f *fakeSessionStore) SessionExists(sessionID string) (bool, error) {
	if err := f.existsErr[sessionID]; err != nil {
		return false, err
	}
	return f.existing[sessionID], nil
}

func (f *fakeSessionStore) CreateSession(record *models.SessionRecord) error {
	if err := f.createErr[record.ID]; err != nil {
		return err
	}
	f.existing[record.ID] = true
	f.created = append(f.created, record)
	return nil
}

func (f *fakeSessionStore) recordFor(sessionID string) *models.SessionRecord {
	for _, r := range f.created {
		if r.ID == sessionID {
			return r
		}
	}
	return nil
}

func TestSweep_TallyCoversEveryFolder(t *testing.T) {
	storage := &fakeStorage{paths: []string{
		"sessions/s1/original.jpg",
		"sessions/s1/derendered.jpg",
		"sessions/s2/original.jpg",
		"sessions/s3/nested/deep.jpg", // still counts as a folder
	}}
	db := newFakeSessionStore()
	db.existing["s2"] = true

	svc := services.NewSyncService(storage, db, "gemini-test")
	resp, err := svc.Sweep()
	require.NoError(t, err)

	assert.Equal(t, 3, resp.TotalFolders)
	assert.Equal(t, 1, resp.AlreadySynced)
	assert.Equal(t, 2, resp.NewlyCreated)
	assert.Equal(t, 0, resp.Failed)
	assert.Equal(t, resp.TotalFolders, resp.AlreadySynced+resp.NewlyCreated+resp.Failed)
	assert.Len(t, resp.Details, 3)
}

func TestSweep_SecondRunCreatesNothing(t *testing.T) {
	storage := &fakeStorage{paths: []string{
		"sessions/s1/original.jpg",
		"sessions/s2/original.jpg",
		"sessions/s3/original.jpg",
	}}
	db := newFakeSessionStore()
	svc := services.NewSyncService(storage, db, "gemini-test")

	first, err := svc.Sweep()
	require.NoError(t, err)
	assert.Equal(t, 3, first.NewlyCreated)

	second, err := svc.Sweep()
	require.NoError(t, err)
	assert.Equal(t, 0, second.NewlyCreated)
	assert.Equal(t, 3, second.AlreadySynced)
	assert.Equal(t, 0, second.Failed)
}

func TestSweep_NumericIDBecomesCreatedAt(t *testing.T) {
	storage := &fakeStorage{paths: []string{"sessions/1700000000000/original.jpg"}}
	db := newFakeSessionStore()
	svc := services.NewSyncService(storage, db, "gemini-test")

	_, err := svc.Sweep()
	require.NoError(t, err)

	record := db.recordFor("1700000000000")
	require.NotNil(t, record)
	assert.Equal(t, int64(1700000000000), record.CreatedAt)
	assert.True(t, record.SyncedFromStorage)
	assert.Equal(t, models.SessionStatusActive, record.Status)
	assert.Nil(t, record.CompletedAt)
}

func TestSweep_NonNumericIDUsesSyncTime(t *testing.T) {
	storage := &fakeStorage{paths: []string{"sessions/abc123/original.jpg"}}
	db := newFakeSessionStore()
	svc := services.NewSyncService(storage, db, "gemini-test")

	_, err := svc.Sweep()
	require.NoError(t, err)

	record := db.recordFor("abc123")
	require.NotNil(t, record)
	assert.InDelta(t, time.Now().UnixMilli(), record.CreatedAt, 5000)
}

func TestSweep_MissingDerenderedLeavesURLNil(t *testing.T) {
	storage := &fakeStorage{paths: []string{"sessions/s1/original.jpg"}}
	db := newFakeSessionStore()
	svc := services.NewSyncService(storage, db, "gemini-test")

	_, err := svc.Sweep()
	require.NoError(t, err)

	record := db.recordFor("s1")
	require.NotNil(t, record)
	require.NotNil(t, record.OriginalImageURL)
	assert.Contains(t, *record.OriginalImageURL, "sessions/s1/original.jpg")
	assert.Nil(t, record.DerenderedImageURL)
}

func TestSweep_FoundationTryonParsing(t *testing.T) {
	storage := &fakeStorage{paths: []string{
		"sessions/s1/foundation-SKU42-1690000000000.jpg",
		"sessions/s1/foundation-badname.jpg",
	}}
	db := newFakeSessionStore()
	svc := services.NewSyncService(storage, db, "gemini-test")

	resp, err := svc.Sweep()
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Failed)

	record := db.recordFor("s1")
	require.NotNil(t, record)
	require.Len(t, record.FoundationTryons, 2)

	// Files are processed in name order: badname sorts before SKU42's name.
	bad := record.FoundationTryons[0]
	assert.Equal(t, "unknown", bad.SKU)
	assert.InDelta(t, time.Now().UnixMilli(), bad.Timestamp, 5000)
	assert.Contains(t, bad.ImageURL, "foundation-badname.jpg")

	good := record.FoundationTryons[1]
	assert.Equal(t, "SKU42", good.SKU)
	assert.Equal(t, int64(1690000000000), good.Timestamp)
	assert.Contains(t, good.ImageURL, "sessions/s1/foundation-SKU42-1690000000000.jpg")
}

func TestSweep_OneFailureDoesNotStopTheRest(t *testing.T) {
	storage := &fakeStorage{paths: []string{
		"sessions/bad/original.jpg",
		"sessions/good/original.jpg",
	}}
	db := newFakeSessionStore()
	db.createErr["bad"] = errors.New("write refused")
	svc := services.NewSyncService(storage, db, "gemini-test")

	resp, err := svc.Sweep()
	require.NoError(t, err)

	assert.Equal(t, 2, resp.TotalFolders)
	assert.Equal(t, 1, resp.NewlyCreated)
	assert.Equal(t, 1, resp.Failed)

	var failed *models.SyncDetail
	for i := range resp.Details {
		if resp.Details[i].SessionID == "bad" {
			failed = &resp.Details[i]
		}
	}
	require.NotNil(t, failed)
	assert.Equal(t, "failed", failed.Status)
	assert.Contains(t, failed.Error, "write refused")

	require.NotNil(t, db.recordFor("good"))
}

func TestSweep_ExistenceCheckFailureIsIsolatedToo(t *testing.T) {
	storage := &fakeStorage{paths: []string{
		"sessions/s1/original.jpg",
		"sessions/s2/original.jpg",
	}}
	db := newFakeSessionStore()
	db.existsErr["s1"] = errors.New("connection reset")
	svc := services.NewSyncService(storage, db, "gemini-test")

	resp, err := svc.Sweep()
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Failed)
	assert.Equal(t, 1, resp.NewlyCreated)
}

func TestSweep_ListErrorFailsTheSweep(t *testing.T) {
	storage := &fakeStorage{err: errors.New("storage down")}
	db := newFakeSessionStore()
	svc := services.NewSyncService(storage, db, "gemini-test")

	_, err := svc.Sweep()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage down")
}

func TestDryRun_ReportsDriftWithoutWriting(t *testing.T) {
	storage := &fakeStorage{paths: []string{
		"sessions/s1/original.jpg",
		"sessions/s2/original.jpg",
		"sessions/s3/original.jpg",
	}}
	db := newFakeSessionStore()
	db.existing["s2"] = true
	svc := services.NewSyncService(storage, db, "gemini-test")

	resp, err := svc.DryRun()
	require.NoError(t, err)

	assert.Equal(t, 3, resp.TotalFolders)
	assert.Equal(t, 1, resp.InFirestore)
	assert.Equal(t, 2, resp.MissingFromFirestore)
	assert.Equal(t, []string{"s1", "s3"}, resp.Missing)
	assert.NotEmpty(t, resp.Message)
	assert.Empty(t, db.created)
}
