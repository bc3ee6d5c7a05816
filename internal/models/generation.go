package models

// GenerationRecord is the metadata written once per successful derender.
// Records are insert-only; nothing in this service mutates or deletes them.
type GenerationRecord struct {
	ID                string `json:"id"`
	Timestamp         int64  `json:"timestamp"`
	OriginalImageURL  string `json:"originalImageUrl"`
	OriginalMimeType  string `json:"originalMimeType"`
	ProcessedImageURL string `json:"processedImageUrl"`
	ProcessedMimeType string `json:"processedMimeType"`
	Model             string `json:"model"`
	Prompt            string `json:"prompt"`
}
