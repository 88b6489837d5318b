package models

// UploadedDocument is the file received by the upload endpoint. It only lives
// for the duration of one analysis and is never written to disk.
type UploadedDocument struct {
	Data      []byte
	FileName  string
	MediaType string
}
