package models

import "time"

// Upload status values.
const (
	FileStatusUploaded = "uploaded"
	FileStatusScanned  = "scanned"
	FileStatusFailed   = "failed"
)

// FileInfo describes a document received on the upload endpoint.
type FileInfo struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploadedAt"`
	Status     string    `json:"status"`
}
