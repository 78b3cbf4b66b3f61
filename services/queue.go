package services

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/glisignoli/ai-yt-dlp-web/logging"
	"github.com/glisignoli/ai-yt-dlp-web/types"
	"github.com/glisignoli/ai-yt-dlp-web/websocket"
)

// Manager owns the ordered download queue and drives the sequential
// processing loop. All operations are safe to call while a download is in
// flight.
type Manager interface {
	// Add enqueues the URL, expanding playlists into one job per entry.
	// The created jobs are returned in entry order.
	Add(url string) []*types.Job
	// Remove deletes the job's artifact (best effort) and drops the job.
	// Unknown ids are a no-op.
	Remove(id string)
	// ClearCompleted removes all completed and failed jobs along with their
	// artifacts and returns how many jobs were dropped
	ClearCompleted() int
	// Jobs returns a snapshot of the queue in insertion order
	Jobs() []*types.Job
	// Job returns a snapshot of a single job by id
	Job(id string) (*types.Job, bool)
	// IsProcessing reports whether the worker loop is currently active
	IsProcessing() bool
}

// Options tune a Manager. Zero values fall back to sensible defaults.
type Options struct {
	// OutputTemplate is handed to the fetcher as the artifact destination
	OutputTemplate string
	// WatchURLTemplate synthesizes a single-item URL from a playlist entry
	// id when the entry carries no URL of its own
	WatchURLTemplate string
	// JobPause is the delay between consecutive download attempts
	JobPause time.Duration
	// MetadataTimeout bounds playlist metadata lookups; the transfer itself
	// has no timeout
	MetadataTimeout time.Duration
}

const (
	defaultJobPause        = 500 * time.Millisecond
	defaultMetadataTimeout = 60 * time.Second
	defaultWatchTemplate   = "https://www.youtube.com/watch?v=%s"
)

type manager struct {
	mu         sync.Mutex
	jobs       []*types.Job
	processing bool

	store   QueueStore
	fetcher Fetcher
	hub     websocket.Hub

	outputTemplate string
	watchTemplate  string
	jobPause       time.Duration
	metaTimeout    time.Duration

	logger zerolog.Logger
}

// NewManager creates a queue manager, restores any persisted queue, and
// resumes processing if queued jobs survived the restart. Interrupted
// downloads are requeued from scratch. hub may be nil.
func NewManager(store QueueStore, fetcher Fetcher, hub websocket.Hub, opts Options) Manager {
	if opts.JobPause <= 0 {
		opts.JobPause = defaultJobPause
	}
	if opts.MetadataTimeout <= 0 {
		opts.MetadataTimeout = defaultMetadataTimeout
	}
	if opts.WatchURLTemplate == "" {
		opts.WatchURLTemplate = defaultWatchTemplate
	}

	m := &manager{
		store:          store,
		fetcher:        fetcher,
		hub:            hub,
		outputTemplate: opts.OutputTemplate,
		watchTemplate:  opts.WatchURLTemplate,
		jobPause:       opts.JobPause,
		metaTimeout:    opts.MetadataTimeout,
		logger:         logging.Component("queue"),
	}
	m.restore()
	return m
}

// restore loads the persisted queue and applies restart recovery: a job that
// was mid-download when the process died left no reliable partial state, so
// it goes back to queued with progress reset.
func (m *manager) restore() {
	jobs, err := m.store.Load()
	if err != nil {
		m.logger.Error().Err(err).Msg("Failed to load queue, starting empty")
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.jobs = jobs
	hasQueued := false
	for _, job := range m.jobs {
		if job.Status == types.StatusDownloading {
			job.Status = types.StatusQueued
			job.Progress = 0
		}
		if job.Status == types.StatusQueued {
			hasQueued = true
		}
	}

	if hasQueued {
		m.startProcessingLocked()
	}
}

// Add enqueues a URL. A playlist URL fans out into one job per entry; when
// the playlist cannot be resolved, the URL is enqueued as a single item so
// submission never fails on a metadata error.
func (m *manager) Add(url string) []*types.Job {
	jobs := m.expand(url)

	m.mu.Lock()
	m.jobs = append(m.jobs, jobs...)
	m.saveLocked()
	created := make([]*types.Job, 0, len(jobs))
	for _, job := range jobs {
		created = append(created, job.Clone())
	}
	m.startProcessingLocked()
	m.mu.Unlock()

	return created
}

// expand turns a submitted URL into the jobs it stands for
func (m *manager) expand(url string) []*types.Job {
	if !IsPlaylistURL(url) {
		return []*types.Job{newJob(url, "")}
	}

	ctx, cancel := context.WithTimeout(context.Background(), m.metaTimeout)
	defer cancel()

	meta, err := m.fetcher.ResolveMetadata(ctx, url)
	if err != nil {
		m.logger.Warn().Err(err).Str("url", url).Msg("Playlist resolution failed, enqueueing as single item")
		return []*types.Job{newJob(url, "")}
	}
	if meta.Entries == nil {
		return []*types.Job{newJob(url, "")}
	}

	jobs := make([]*types.Job, 0, len(meta.Entries))
	for _, entry := range meta.Entries {
		// nil entries are removed or private items
		if entry == nil {
			continue
		}
		entryURL := entry.URL
		if entryURL == "" {
			if entry.ID == "" {
				m.logger.Warn().Str("playlist", url).Msg("Skipping playlist entry with no url or id")
				continue
			}
			entryURL = fmt.Sprintf(m.watchTemplate, entry.ID)
		}
		jobs = append(jobs, newJob(entryURL, entry.Title))
	}
	m.logger.Info().Str("url", url).Int("entries", len(jobs)).Msg("Expanded playlist")
	return jobs
}

func newJob(url, title string) *types.Job {
	if title == "" {
		title = types.DefaultTitle
	}
	return &types.Job{
		ID:     uuid.New().String(),
		URL:    url,
		Title:  title,
		Status: types.StatusQueued,
	}
}

// Remove drops a job from the queue, deleting its artifact first when one
// was recorded. Unknown ids are silently ignored.
func (m *manager) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, job := range m.jobs {
		if job.ID != id {
			continue
		}
		m.deleteArtifact(job)
		m.jobs = append(m.jobs[:i], m.jobs[i+1:]...)
		m.saveLocked()
		return
	}
}

// ClearCompleted removes every completed and failed job, deleting their
// artifacts, and persists the queue once
func (m *manager) ClearCompleted() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.jobs[:0:0]
	removed := 0
	for _, job := range m.jobs {
		if job.IsTerminal() {
			m.deleteArtifact(job)
			removed++
			continue
		}
		kept = append(kept, job)
	}
	if removed == 0 {
		return 0
	}

	m.jobs = kept
	m.saveLocked()
	return removed
}

// deleteArtifact best-effort deletes a job's file from disk. Failures are
// logged, never raised.
func (m *manager) deleteArtifact(job *types.Job) {
	if job.Filename == "" {
		return
	}
	if _, err := os.Stat(job.Filename); err != nil {
		return
	}
	if err := os.Remove(job.Filename); err != nil {
		m.logger.Warn().Err(err).Str("file", job.Filename).Msg("Failed to delete artifact")
		return
	}
	m.logger.Info().Str("file", job.Filename).Msg("Deleted artifact")
}

// Jobs returns the queue in insertion order as independent copies
func (m *manager) Jobs() []*types.Job {
	m.mu.Lock()
	defer m.mu.Unlock()

	jobs := make([]*types.Job, 0, len(m.jobs))
	for _, job := range m.jobs {
		jobs = append(jobs, job.Clone())
	}
	return jobs
}

func (m *manager) Job(id string) (*types.Job, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, job := range m.jobs {
		if job.ID == id {
			return job.Clone(), true
		}
	}
	return nil, false
}

func (m *manager) IsProcessing() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.processing
}

// startProcessingLocked launches the worker loop unless one is already
// running. Caller holds the mutex.
func (m *manager) startProcessingLocked() {
	if m.processing {
		return
	}
	m.processing = true
	go m.processQueue()
}

// processQueue is the single worker loop: it serves the oldest queued job,
// runs its download attempt to a terminal state, pauses briefly, and repeats
// until no queued job remains
func (m *manager) processQueue() {
	for {
		m.mu.Lock()
		job := m.firstQueuedLocked()
		if job == nil {
			m.processing = false
			m.mu.Unlock()
			return
		}
		m.mu.Unlock()

		m.download(job)
		time.Sleep(m.jobPause)
	}
}

func (m *manager) firstQueuedLocked() *types.Job {
	for _, job := range m.jobs {
		if job.Status == types.StatusQueued {
			return job
		}
	}
	return nil
}

// download runs one download attempt for the job, leaving it completed or
// failed. A failed attempt never stops the loop.
func (m *manager) download(job *types.Job) {
	m.mu.Lock()
	job.Status = types.StatusDownloading
	job.Progress = 0
	m.saveLocked()
	m.mu.Unlock()
	m.broadcast(job, "status", fmt.Sprintf("Started downloading %s", job.URL))

	m.resolveTitle(job)

	path, err := m.fetcher.Fetch(context.Background(), job.URL, m.outputTemplate, func(p Progress) {
		m.applyProgress(job, p)
	})

	m.mu.Lock()
	if err != nil {
		job.Status = types.StatusFailed
		job.ErrorMessage = err.Error()
		m.logger.Error().Err(err).Str("job", job.ID).Str("url", job.URL).Msg("Download failed")
	} else {
		job.Status = types.StatusCompleted
		job.Filename = path
		job.Progress = 100
		m.logger.Info().Str("job", job.ID).Str("file", path).Msg("Download completed")
	}
	m.saveLocked()
	m.mu.Unlock()

	if err != nil {
		m.broadcast(job, "error", err.Error())
	} else {
		m.broadcast(job, "complete", fmt.Sprintf("%s download completed", job.Title))
	}
}

// resolveTitle asks the fetcher for the item's title before the transfer
// begins. The placeholder stays when the lookup yields nothing usable.
func (m *manager) resolveTitle(job *types.Job) {
	ctx, cancel := context.WithTimeout(context.Background(), m.metaTimeout)
	defer cancel()

	meta, err := m.fetcher.ResolveMetadata(ctx, job.URL)
	if err != nil || meta.Title == "" {
		return
	}

	m.mu.Lock()
	job.Title = meta.Title
	m.mu.Unlock()
}

// applyProgress folds one fetcher report into the active job. Progress only
// ever moves forward within an attempt; a report with no usable total is
// dropped for that tick.
func (m *manager) applyProgress(job *types.Job, p Progress) {
	m.mu.Lock()
	if p.Finished {
		job.Progress = 100
		if p.Filename != "" {
			job.Filename = p.Filename
		}
	} else {
		total := p.TotalBytes
		if total == 0 {
			total = p.TotalBytesEstimate
		}
		if total > 0 {
			pct := float64(p.DownloadedBytes) / float64(total) * 100
			if pct > job.Progress {
				job.Progress = pct
			}
		}
	}
	m.mu.Unlock()

	m.broadcast(job, "progress", "")
}

// saveLocked persists the queue snapshot. Caller holds the mutex. A write
// failure is logged and the operation continues.
func (m *manager) saveLocked() {
	if err := m.store.Save(m.jobs); err != nil {
		m.logger.Error().Err(err).Msg("Failed to save queue")
	}
}

// broadcast pushes a job update to WebSocket clients when a hub is attached
func (m *manager) broadcast(job *types.Job, msgType, message string) {
	if m.hub == nil {
		return
	}
	m.mu.Lock()
	status := string(job.Status)
	title := job.Title
	progress := job.Progress
	m.mu.Unlock()

	m.hub.BroadcastProgress(job.ID, msgType, status, title, message, progress)
}
