package types

// ImageUploadRequest asks for a presigned product image upload.
type ImageUploadRequest struct {
	ContentType string `json:"contentType"`
}
