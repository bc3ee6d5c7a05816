package models

type DerenderRequest struct {
	// Image is the base64-encoded portrait to process.
	Image string `json:"image"`
	// MimeType of the uploaded image. Defaults to image/jpeg.
	MimeType string `json:"mimeType,omitempty" example:"image/jpeg"`
}

type SyncRequest struct {
	// Secret must match SYNC_SECRET when one is configured.
	Secret string `json:"secret,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
