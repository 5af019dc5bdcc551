package render

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_RenderHTML(t *testing.T) {
	var gotHTML string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/forms/chromium/convert/html", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "true", r.FormValue("printBackground"))
		f, hdr, err := r.FormFile("files")
		require.NoError(t, err)
		assert.Equal(t, "index.html", hdr.Filename)
		b, _ := io.ReadAll(f)
		gotHTML = string(b)

		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.7 fake"))
	}))
	defer srv.Close()

	pdf, err := NewClient(srv.URL+"/", time.Second).RenderHTML(context.Background(), "<p>hello</p>")

	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7 fake", string(pdf))
	assert.Equal(t, "<p>hello</p>", gotHTML)
}

func TestClient_RenderHTML_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "chromium crashed", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).RenderHTML(context.Background(), "<p/>")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
	assert.Contains(t, err.Error(), "chromium crashed")
}

func TestClient_Ping(t *testing.T) {
	healthy := true
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		if !healthy {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"status":"up"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	assert.NoError(t, c.Ping(context.Background()))

	healthy = false
	assert.Error(t, c.Ping(context.Background()))
}
