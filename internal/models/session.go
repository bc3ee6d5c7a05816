package models

// SessionStatusActive is the status assigned to records created by the
// storage sync; the web flow moves sessions through further states.
const SessionStatusActive = "active"

// FoundationTryon is one auxiliary try-on image attached to a session,
// derived from a foundation-<sku>-<timestamp>.jpg object name.
type FoundationTryon struct {
	SKU       string `json:"sku"`
	Timestamp int64  `json:"timestamp"`
	ImageURL  string `json:"imageUrl"`
}

// SessionRecord is one user's before/after pair plus optional try-on images.
// Timestamps are milliseconds since epoch. URL fields are nil when the
// corresponding object is absent from storage.
type SessionRecord struct {
	ID                 string            `json:"sessionId"`
	CreatedAt          int64             `json:"createdAt"`
	OriginalImageURL   *string           `json:"originalImageUrl"`
	DerenderedImageURL *string           `json:"derenderedImageUrl"`
	OriginalMimeType   string            `json:"originalMimeType"`
	DerenderedMimeType string            `json:"derenderedMimeType"`
	Model              string            `json:"model"`
	DerenderPrompt     string            `json:"derenderPrompt"`
	FoundationTryons   []FoundationTryon `json:"foundationTryons"`
	Status             string            `json:"status"`
	CompletedAt        *int64            `json:"completedAt"`
	SyncedFromStorage  bool              `json:"syncedFromStorage"`
	SyncedAt           int64             `json:"syncedAt"`
}
