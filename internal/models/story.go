package models

import "time"

// Categories a story can be recorded for.
const (
	CategoryNina  = "nina"
	CategoryDani  = "dani"
	CategoryBeide = "beide"
)

// Categories is the closed set of valid recording categories.
var Categories = []string{CategoryNina, CategoryDani, CategoryBeide}

// ValidCategory reports whether c is one of the known categories.
func ValidCategory(c string) bool {
	for _, cat := range Categories {
		if c == cat {
			return true
		}
	}
	return false
}

// Story represents one recorded audio story.
type Story struct {
	ID         string    `json:"id"`          // zero-padded counter value, e.g. "001"
	Author     string    `json:"author"`      // display name supplied by the uploader
	Timestamp  time.Time `json:"timestamp"`   // server-assigned creation time (UTC)
	RecordedBy string    `json:"recorded_by"` // one of Categories
	Duration   float64   `json:"duration"`    // seconds
	Liked      bool      `json:"liked"`
	AudioPath  string    `json:"audio_path"` // relative path, e.g. "audios/001_dani.webm"
}

// UploadRequest defines the multipart form fields of an upload.
// The audio blob itself is read separately from the "audio" form file.
type UploadRequest struct {
	Author   string  `form:"author" validate:"required"`
	Category string  `form:"category" validate:"required,oneof=nina dani beide"`
	Duration float64 `form:"duration"`
}

// UploadResponse is the success payload of an upload.
type UploadResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	StoryID  string `json:"storyId"`
	Category string `json:"category"`
}

// ErrorResponse carries a user-facing error message.
type ErrorResponse struct {
	Error string `json:"error"`
}
