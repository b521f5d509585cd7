package backend

import "fmt"

// ValidationError rejects a batch before any request is issued.
type ValidationError struct {
	File      string
	MediaType string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("only PDF files can be uploaded: %s has media type %q", e.File, e.MediaType)
}

// UploadError reports a failed POST /upload. Err is set when the status was
// successful but the body could not be decoded.
type UploadError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *UploadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upload failed: status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("upload failed: status %d, response: %s", e.StatusCode, e.Body)
}

func (e *UploadError) Unwrap() error { return e.Err }

// AskError reports a failed POST /ask.
type AskError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *AskError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ask failed: status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("ask failed: status %d, response: %s", e.StatusCode, e.Body)
}

func (e *AskError) Unwrap() error { return e.Err }

// NetworkError means the request never produced an HTTP response.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }
