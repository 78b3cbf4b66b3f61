package services

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"

	"github.com/glisignoli/ai-yt-dlp-web/logging"
	"github.com/glisignoli/ai-yt-dlp-web/types"
)

// LibraryService lists the artifacts sitting in the download directory
type LibraryService interface {
	ScanFiles(rootPath string) ([]types.LibraryFile, error)
	GetContentType(filePath string) string
}

type libraryService struct{}

// NewLibraryService creates a new library service
func NewLibraryService() LibraryService {
	return &libraryService{}
}

// media extensions yt-dlp commonly produces
var mediaExtensions = map[string]string{
	".mp4":  "video/mp4",
	".mkv":  "video/x-matroska",
	".webm": "video/webm",
	".m4a":  "audio/mp4",
	".mp3":  "audio/mpeg",
	".opus": "audio/opus",
	".flac": "audio/flac",
}

// ScanFiles walks the download directory and returns every media artifact
// with whatever embedded metadata can be read from it
func (ls *libraryService) ScanFiles(rootPath string) ([]types.LibraryFile, error) {
	logger := logging.Component("library")
	var files []types.LibraryFile

	err := filepath.Walk(rootPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			logger.Warn().Err(err).Str("path", path).Msg("Error accessing path")
			return nil // keep walking
		}

		ext := strings.ToLower(filepath.Ext(path))
		if info.IsDir() {
			return nil
		}
		if _, ok := mediaExtensions[ext]; !ok {
			return nil
		}

		relativePath, err := filepath.Rel(rootPath, path)
		if err != nil {
			relativePath = path
		}

		files = append(files, types.LibraryFile{
			Filename: info.Name(),
			Path:     relativePath,
			Size:     info.Size(),
			Metadata: ls.extractMetadata(path),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return files, nil
}

// extractMetadata reads embedded tags from an artifact. Video containers and
// untagged files fall back to the filename as title.
func (ls *libraryService) extractMetadata(filePath string) *types.MediaMetadata {
	file, err := os.Open(filePath)
	if err != nil {
		return metadataFromFilename(filePath)
	}
	defer file.Close()

	meta, err := tag.ReadFrom(file)
	if err != nil {
		return metadataFromFilename(filePath)
	}

	result := &types.MediaMetadata{
		Title:  meta.Title(),
		Artist: meta.Artist(),
		Album:  meta.Album(),
	}
	if result.Title == "" {
		result.Title = metadataFromFilename(filePath).Title
	}
	return result
}

// metadataFromFilename derives a title from the file name alone
func metadataFromFilename(filePath string) *types.MediaMetadata {
	name := filepath.Base(filePath)
	return &types.MediaMetadata{
		Title: strings.TrimSuffix(name, filepath.Ext(name)),
	}
}

// GetContentType returns the MIME type for an artifact path
func (ls *libraryService) GetContentType(filePath string) string {
	ext := strings.ToLower(filepath.Ext(filePath))
	if mime, ok := mediaExtensions[ext]; ok {
		return mime
	}
	return "application/octet-stream"
}
