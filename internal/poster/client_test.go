package poster

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itsiBahar/IMRS-V2/internal/log"
)

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Heat (1995)", "Heat"},
		{"Heat", "Heat"},
		{"Blade Runner 2049 (2017)", "Blade Runner 2049"},
		{"  Heat (1995)  ", "Heat"},
		{"(500) Days of Summer", "(500) Days of Summer"},
		// Only a trailing year marker is stripped
		{"Blade Runner (1982) Final Cut", "Blade Runner (1982) Final Cut"},
		{"2001: A Space Odyssey (1968)", "2001: A Space Odyssey"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeTitle(tt.in), "input %q", tt.in)
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, "tmdb-key", "https://image.example/w500", log.NullLogger())
}

func TestFindPosterURL(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/movie", r.URL.Path)
		assert.Equal(t, "tmdb-key", r.URL.Query().Get("api_key"))
		// The year suffix is stripped before the query goes out
		assert.Equal(t, "Heat", r.URL.Query().Get("query"))
		w.Write([]byte(`{"results": [
			{"title": "Heat", "poster_path": ""},
			{"title": "Heat", "poster_path": "/abc123.jpg"}
		]}`))
	})

	url, err := client.FindPosterURL(context.Background(), "Heat (1995)")
	require.NoError(t, err)
	assert.Equal(t, "https://image.example/w500/abc123.jpg", url)
}

func TestFindPosterURLNoResults(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results": []}`))
	})

	url, err := client.FindPosterURL(context.Background(), "Obscure Title")
	require.NoError(t, err)
	assert.Empty(t, url)
}

func TestFindPosterURLServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.FindPosterURL(context.Background(), "Heat")
	assert.Error(t, err)
}
