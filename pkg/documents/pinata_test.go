package documents

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/smartlands/landregistry/internal/config"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *PinataClient {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	var cfg config.Config
	cfg.Documents.PinataBaseURL = server.URL
	cfg.Documents.PinataAPIKey = "test-key"
	cfg.Documents.PinataSecretKey = "test-secret"

	return NewPinataClient(cfg)
}

func TestUpload(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/pinning/pinFileToIPFS", r.URL.Path)
		require.Equal(t, "test-key", r.Header.Get("pinata_api_key"))
		require.Equal(t, "test-secret", r.Header.Get("pinata_secret_api_key"))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()

		require.Equal(t, "deed.pdf", header.Filename)

		contents, err := io.ReadAll(file)
		require.NoError(t, err)
		require.Equal(t, "deed contents", string(contents))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"IpfsHash": "QmPinnedDocument"}`))
	})

	cid, err := client.Upload(context.Background(), "deed.pdf", strings.NewReader("deed contents"))
	require.NoError(t, err)
	require.Equal(t, "QmPinnedDocument", cid)
}

func TestUploadServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
	})

	_, err := client.Upload(context.Background(), "deed.pdf", strings.NewReader("deed contents"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "401")
}

func TestUploadMissingHash(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	})

	_, err := client.Upload(context.Background(), "deed.pdf", strings.NewReader("deed contents"))
	require.Error(t, err)
}
