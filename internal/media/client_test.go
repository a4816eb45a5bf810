package media

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Upload(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		status  int
		wantID  int64
		wantErr bool
	}{
		{"numeric id", `{"id": 17}`, http.StatusOK, 17, false},
		{"string id", `{"id": "23"}`, http.StatusCreated, 23, false},
		{"missing id", `{}`, http.StatusOK, 0, true},
		{"non numeric id", `{"id": "abc"}`, http.StatusOK, 0, true},
		{"server error", `boom`, http.StatusInternalServerError, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotFile, gotName string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/api/media/upload", r.URL.Path)

				file, header, err := r.FormFile("file")
				if assert.NoError(t, err) {
					data, _ := io.ReadAll(file)
					gotFile = string(data)
					gotName = header.Filename
				}
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := NewClient(srv.URL+"/", time.Second)
			id, err := client.Upload(context.Background(), "cat.png", strings.NewReader("image-bytes"))

			assert.Equal(t, "image-bytes", gotFile)
			assert.Equal(t, "cat.png", gotName)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestClient_Resolve(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{"absolute url", "https://cdn.example.com/a.png", "https://cdn.example.com/a.png", false},
		{"relative url", "/files/a.png", "BASE/files/a.png", false},
		{"plain http url", "http://cdn.example.com/a.png", "http://cdn.example.com/a.png", false},
		{"path without leading slash", "files/a.png", "files/a.png", false},
		{"protocol relative url", "//cdn.example.com/a.png", "//cdn.example.com/a.png", false},
		{"other scheme", "data:image/png;base64,AAAA", "data:image/png;base64,AAAA", false},
		{"empty url", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/media/9", r.URL.Path)
				_ = json.NewEncoder(w).Encode(map[string]string{"url": tt.url})
			}))
			defer srv.Close()

			client := NewClient(srv.URL+"/", time.Second)
			got, err := client.Resolve(context.Background(), 9)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, strings.Replace(tt.want, "BASE", srv.URL, 1), got)
		})
	}
}

func TestClient_BaseURL(t *testing.T) {
	assert.Equal(t, "http://media:8000", NewClient("http://media:8000/", time.Second).BaseURL())
	assert.Equal(t, "http://media:8000", NewClient("http://media:8000", time.Second).BaseURL())
}

func TestClient_ResolveNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).Resolve(context.Background(), 1)
	assert.ErrorContains(t, err, "status 404")
}

func TestClient_Unreachable(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", 200*time.Millisecond)

	_, err := client.Resolve(context.Background(), 1)
	assert.Error(t, err)

	_, err = client.Upload(context.Background(), "a.txt", strings.NewReader("x"))
	assert.Error(t, err)
}
