package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glisignoli/ai-yt-dlp-web/services"
	"github.com/glisignoli/ai-yt-dlp-web/types"
)

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t, &stubFetcher{})

	var response map[string]interface{}
	w := env.doJSON(t, "GET", "/health", nil, &response)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", response["status"])
}

func TestAddToQueue(t *testing.T) {
	env := newTestEnv(t, &stubFetcher{})

	var response struct {
		Jobs  []*types.Job `json:"jobs"`
		Total int          `json:"total"`
	}
	w := env.doJSON(t, "POST", "/api/queue", types.AddToQueueRequest{URL: "https://example.com/watch?v=abc"}, &response)

	require.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, response.Jobs, 1)
	assert.Equal(t, 1, response.Total)
	assert.NotEmpty(t, response.Jobs[0].ID)
	assert.Equal(t, "https://example.com/watch?v=abc", response.Jobs[0].URL)
}

func TestAddToQueueRejectsMissingURL(t *testing.T) {
	env := newTestEnv(t, &stubFetcher{})

	w := env.do(t, "POST", "/api/queue", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAddPlaylistReturnsAllJobs(t *testing.T) {
	playlistURL := "https://example.com/watch?v=xxx&list=PLxxx"
	env := newTestEnv(t, &stubFetcher{
		metadata: map[string]*services.Metadata{
			playlistURL: {
				Title: "My Playlist",
				Entries: []*services.MetadataEntry{
					{ID: "abc123", Title: "Entry One"},
					{ID: "def456", Title: "Entry Two"},
				},
			},
		},
	})

	var response struct {
		Jobs  []*types.Job `json:"jobs"`
		Total int          `json:"total"`
	}
	w := env.doJSON(t, "POST", "/api/queue", types.AddToQueueRequest{URL: playlistURL}, &response)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 2, response.Total)
	require.Len(t, response.Jobs, 2)
	assert.Equal(t, "Entry One", response.Jobs[0].Title)
	assert.Equal(t, "Entry Two", response.Jobs[1].Title)
}

func TestListQueue(t *testing.T) {
	env := newTestEnv(t, &stubFetcher{})

	var added struct {
		Jobs []*types.Job `json:"jobs"`
	}
	env.doJSON(t, "POST", "/api/queue", types.AddToQueueRequest{URL: "https://example.com/watch?v=abc"}, &added)
	require.Len(t, added.Jobs, 1)
	env.waitForTerminal(t, added.Jobs[0].ID)

	var response types.QueueResponse
	w := env.doJSON(t, "GET", "/api/queue", nil, &response)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, response.Total)
	require.Len(t, response.Jobs, 1)
	assert.Equal(t, types.StatusCompleted, response.Jobs[0].Status)
}

func TestGetJob(t *testing.T) {
	env := newTestEnv(t, &stubFetcher{})

	var added struct {
		Jobs []*types.Job `json:"jobs"`
	}
	env.doJSON(t, "POST", "/api/queue", types.AddToQueueRequest{URL: "https://example.com/watch?v=abc"}, &added)
	require.Len(t, added.Jobs, 1)

	var response struct {
		Job *types.Job `json:"job"`
	}
	w := env.doJSON(t, "GET", "/api/queue/"+added.Jobs[0].ID, nil, &response)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, response.Job)
	assert.Equal(t, added.Jobs[0].ID, response.Job.ID)
}

func TestGetJobNotFound(t *testing.T) {
	env := newTestEnv(t, &stubFetcher{})

	var response map[string]interface{}
	w := env.doJSON(t, "GET", "/api/queue/no-such-job", nil, &response)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "job not found", response["error"])
}

func TestRemoveFromQueue(t *testing.T) {
	env := newTestEnv(t, &stubFetcher{})

	var added struct {
		Jobs []*types.Job `json:"jobs"`
	}
	env.doJSON(t, "POST", "/api/queue", types.AddToQueueRequest{URL: "https://example.com/watch?v=abc"}, &added)
	require.Len(t, added.Jobs, 1)
	env.waitForTerminal(t, added.Jobs[0].ID)

	w := env.do(t, "DELETE", "/api/queue/"+added.Jobs[0].ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	assert.Empty(t, env.manager.Jobs())
}

func TestRemoveUnknownJobIsOK(t *testing.T) {
	env := newTestEnv(t, &stubFetcher{})

	w := env.do(t, "DELETE", "/api/queue/no-such-job", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestClearCompleted(t *testing.T) {
	env := newTestEnv(t, &stubFetcher{})

	var added struct {
		Jobs []*types.Job `json:"jobs"`
	}
	env.doJSON(t, "POST", "/api/queue", types.AddToQueueRequest{URL: "https://example.com/watch?v=abc"}, &added)
	require.Len(t, added.Jobs, 1)
	env.waitForTerminal(t, added.Jobs[0].ID)

	var response struct {
		Removed int `json:"removed"`
	}
	w := env.doJSON(t, "POST", "/api/queue/completed/clear", nil, &response)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, response.Removed)
	assert.Empty(t, env.manager.Jobs())
}
