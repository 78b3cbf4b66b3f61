package types

// DownloadStatus represents the current status of a queued download
type DownloadStatus string

const (
	StatusQueued      DownloadStatus = "queued"
	StatusDownloading DownloadStatus = "downloading"
	StatusCompleted   DownloadStatus = "completed"
	StatusFailed      DownloadStatus = "failed"
)

// DefaultTitle is the placeholder used until the fetcher resolves a real title
const DefaultTitle = "Unknown"

// Job represents one download task in the queue. The JSON field names are the
// on-disk queue format and must stay stable across releases.
type Job struct {
	ID           string         `json:"id"`
	URL          string         `json:"url"`
	Title        string         `json:"title"`
	Status       DownloadStatus `json:"status"`
	Progress     float64        `json:"progress"`
	ErrorMessage string         `json:"error_message"`
	Filename     string         `json:"filename"`
}

// IsTerminal reports whether the job has reached a final state
func (j *Job) IsTerminal() bool {
	return j.Status == StatusCompleted || j.Status == StatusFailed
}

// Clone returns a copy of the job, safe to hand out while the original keeps
// being mutated by the processing loop
func (j *Job) Clone() *Job {
	c := *j
	return &c
}
