package types

// AddToQueueRequest is the body of POST /api/queue
type AddToQueueRequest struct {
	URL string `json:"url" binding:"required"`
}

// QueueResponse is the payload of GET /api/queue
type QueueResponse struct {
	Jobs       []*Job `json:"jobs"`
	Total      int    `json:"total"`
	Processing bool   `json:"processing"`
}

// LibraryFile describes one artifact discovered in the download directory
type LibraryFile struct {
	Filename string         `json:"filename"`
	Path     string         `json:"path"`
	Size     int64          `json:"size"`
	Metadata *MediaMetadata `json:"metadata,omitempty"`
}

// MediaMetadata holds embedded tags extracted from an artifact, when readable
type MediaMetadata struct {
	Title  string `json:"title,omitempty"`
	Artist string `json:"artist,omitempty"`
	Album  string `json:"album,omitempty"`
}
