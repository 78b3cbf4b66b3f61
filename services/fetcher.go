package services

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/schollz/progressbar/v3"

	"github.com/glisignoli/ai-yt-dlp-web/logging"
)

// Metadata is the result of a metadata-only lookup. Entries is non-nil only
// when the URL resolved to a playlist; individual entries may be nil for
// removed or private items and callers must skip those.
type Metadata struct {
	Title   string
	Entries []*MetadataEntry
}

// MetadataEntry is one item of a resolved playlist. URL may be empty, in
// which case the entry ID is the only handle on the item.
type MetadataEntry struct {
	ID    string
	Title string
	URL   string
}

// Progress is one progress report from an in-flight transfer. Totals are zero
// when the extractor does not know them.
type Progress struct {
	DownloadedBytes    int64
	TotalBytes         int64
	TotalBytesEstimate int64
	Finished           bool
	Filename           string
}

// ProgressFunc receives progress reports during a fetch. It is invoked from
// the fetcher's own goroutine, zero or more times before Fetch returns.
type ProgressFunc func(Progress)

// Fetcher abstracts the media extraction engine
type Fetcher interface {
	// ResolveMetadata looks up title and playlist entries without downloading
	ResolveMetadata(ctx context.Context, url string) (*Metadata, error)
	// Fetch downloads the media behind url into outputTemplate and returns
	// the final path of the artifact on disk
	Fetch(ctx context.Context, url, outputTemplate string, onProgress ProgressFunc) (string, error)
}

const progressPrefix = "PROGRESS"

// ytdlpFetcher shells out to the yt-dlp binary. Metadata lookups use the
// single-JSON dump with flat playlists; transfers emit a newline progress
// template that is parsed into Progress reports.
type ytdlpFetcher struct {
	binPath      string
	showProgress bool
}

// NewYTDLPFetcher creates a fetcher backed by the yt-dlp binary at binPath.
// When showProgress is set, transfers render a console progress bar.
func NewYTDLPFetcher(binPath string, showProgress bool) Fetcher {
	return &ytdlpFetcher{binPath: binPath, showProgress: showProgress}
}

// flatMetadata mirrors the subset of yt-dlp's JSON dump the queue needs. The
// dump is loosely shaped, so every field is optional.
type flatMetadata struct {
	Title   string       `json:"title"`
	Entries []*flatEntry `json:"entries"`
}

type flatEntry struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

func (f *ytdlpFetcher) ResolveMetadata(ctx context.Context, url string) (*Metadata, error) {
	cmd := exec.CommandContext(ctx, f.binPath,
		"--dump-single-json",
		"--flat-playlist",
		"--no-warnings",
		url,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("metadata lookup failed: %w: %s", err, stderrTail(&stderr))
	}

	var raw flatMetadata
	if err := json.Unmarshal(stdout.Bytes(), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse metadata: %w", err)
	}

	meta := &Metadata{Title: raw.Title}
	if raw.Entries != nil {
		meta.Entries = make([]*MetadataEntry, 0, len(raw.Entries))
		for _, e := range raw.Entries {
			if e == nil {
				meta.Entries = append(meta.Entries, nil)
				continue
			}
			meta.Entries = append(meta.Entries, &MetadataEntry{
				ID:    e.ID,
				Title: e.Title,
				URL:   e.URL,
			})
		}
	}
	return meta, nil
}

func (f *ytdlpFetcher) Fetch(ctx context.Context, url, outputTemplate string, onProgress ProgressFunc) (string, error) {
	logger := logging.Component("fetcher")

	tmpl := progressPrefix + " %(progress.downloaded_bytes)s %(progress.total_bytes)s %(progress.total_bytes_estimate)s"
	cmd := exec.CommandContext(ctx, f.binPath,
		"--newline",
		"--no-warnings",
		"--no-playlist",
		"-f", "best",
		"-o", outputTemplate,
		"--progress-template", "download:"+tmpl,
		"--print", "after_move:filepath",
		url,
	)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", fmt.Errorf("failed to open extractor output: %w", err)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("failed to start extractor: %w", err)
	}

	var bar *progressbar.ProgressBar
	var outputPath string

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if update, ok := parseProgressLine(line); ok {
			if f.showProgress {
				bar = renderProgress(bar, update)
			}
			if onProgress != nil {
				onProgress(update)
			}
			continue
		}

		// Any non-progress line is the printed artifact path. yt-dlp emits
		// it once the file reaches its final location.
		outputPath = line
	}
	if err := scanner.Err(); err != nil {
		logger.Warn().Err(err).Msg("Error reading extractor output")
	}

	if err := cmd.Wait(); err != nil {
		return "", fmt.Errorf("download failed: %w: %s", err, stderrTail(&stderr))
	}
	if outputPath == "" {
		return "", fmt.Errorf("extractor finished without reporting an output file")
	}

	if bar != nil {
		bar.Finish()
	}
	if onProgress != nil {
		onProgress(Progress{Finished: true, Filename: outputPath})
	}
	return outputPath, nil
}

// parseProgressLine decodes one progress-template line. Missing totals come
// through as the literal "NA" and are reported as zero.
func parseProgressLine(line string) (Progress, bool) {
	if !strings.HasPrefix(line, progressPrefix+" ") {
		return Progress{}, false
	}

	fields := strings.Fields(strings.TrimPrefix(line, progressPrefix+" "))
	if len(fields) < 3 {
		return Progress{}, false
	}

	return Progress{
		DownloadedBytes:    parseByteCount(fields[0]),
		TotalBytes:         parseByteCount(fields[1]),
		TotalBytesEstimate: parseByteCount(fields[2]),
	}, true
}

// parseByteCount tolerates integer and float renderings of byte counts
func parseByteCount(s string) int64 {
	if s == "" || s == "NA" || s == "None" {
		return 0
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil && v > 0 {
		return int64(v)
	}
	return 0
}

// renderProgress keeps a console byte bar in sync with a progress report
func renderProgress(bar *progressbar.ProgressBar, update Progress) *progressbar.ProgressBar {
	total := update.TotalBytes
	if total == 0 {
		total = update.TotalBytesEstimate
	}
	if bar == nil {
		if total == 0 {
			return nil
		}
		bar = progressbar.DefaultBytes(total, "downloading")
	}
	bar.Set64(update.DownloadedBytes)
	return bar
}

// stderrTail returns the last line of captured stderr, which is where yt-dlp
// puts its actual error message
func stderrTail(buf *bytes.Buffer) string {
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) == 0 {
		return ""
	}
	return strings.TrimSpace(lines[len(lines)-1])
}
