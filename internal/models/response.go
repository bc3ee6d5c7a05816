package models

type DerenderResponse struct {
	Image    string `json:"image"`
	MimeType string `json:"mimeType"`
}

// NoImageResponse is returned with HTTP 200 when the model answered but
// produced no inline image. RawText carries any text the model returned,
// for diagnostics only.
type NoImageResponse struct {
	Error   string `json:"error"`
	RawText string `json:"rawText,omitempty"`
}

type SyncDetail struct {
	SessionID string `json:"sessionId"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
}

type SyncResponse struct {
	TotalFolders  int          `json:"totalFolders"`
	AlreadySynced int          `json:"alreadySynced"`
	NewlyCreated  int          `json:"newlyCreated"`
	Failed        int          `json:"failed"`
	Details       []SyncDetail `json:"details"`
}

// SyncStatusResponse reports storage/database drift without writing
// anything. The Firestore field names predate the move to Postgres and are
// kept because the web client still reads them.
type SyncStatusResponse struct {
	TotalFolders         int      `json:"totalFolders"`
	InFirestore          int      `json:"inFirestore"`
	MissingFromFirestore int      `json:"missingFromFirestore"`
	Missing              []string `json:"missing"`
	Message              string   `json:"message"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
