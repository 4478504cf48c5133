package github

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, mux *http.ServeMux) *Client {
	t.Helper()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	c, err := NewClient("test-token", server.URL, "acme", "web", server.Client())
	require.NoError(t, err)
	return c
}

func TestClient_HeadSHAAndFiles(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/acme/web/pulls/5", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-token" {
			t.Errorf("Authorization = %q", r.Header.Get("Authorization"))
		}
		w.Write([]byte(`{"number":5,"head":{"sha":"deadbeef"}}`))
	})
	mux.HandleFunc("GET /repos/acme/web/pulls/5/files", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"filename":"a.go","status":"modified","patch":"@@ -1 +1 @@\n-x\n+y"}]`))
	})
	c := newTestClient(t, mux)

	sha, err := c.HeadSHA(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "deadbeef", sha)

	files, err := c.ListFiles(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, []ChangedFile{{Filename: "a.go", Status: "modified", Patch: "@@ -1 +1 @@\n-x\n+y"}}, files)
}

func TestClient_CreateReview(t *testing.T) {
	var got map[string]any
	mux := http.NewServeMux()
	mux.HandleFunc("POST /repos/acme/web/pulls/5/reviews", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &got)
		w.Write([]byte(`{"id":99}`))
	})
	c := newTestClient(t, mux)

	id, err := c.CreateReview(context.Background(), 5, "sha1", EventRequestChanges, "body",
		[]InlineComment{{Path: "a.go", Line: 3, Body: "fix"}})
	require.NoError(t, err)
	assert.Equal(t, int64(99), id)
	assert.Equal(t, "REQUEST_CHANGES", got["event"])
	assert.Equal(t, "sha1", got["commit_id"])
	comments := got["comments"].([]any)
	require.Len(t, comments, 1)
	assert.Equal(t, float64(3), comments[0].(map[string]any)["line"])
}

func TestClient_CreateReviewError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /repos/acme/web/pulls/5/reviews", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":"Validation Failed"}`))
	})
	c := newTestClient(t, mux)

	_, err := c.CreateReview(context.Background(), 5, "sha1", EventComment, "body", nil)
	assert.Error(t, err)
}

func TestClient_CreateReviewComment(t *testing.T) {
	var got map[string]any
	mux := http.NewServeMux()
	mux.HandleFunc("POST /repos/acme/web/pulls/5/comments", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &got)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":1}`))
	})
	c := newTestClient(t, mux)

	err := c.CreateReviewComment(context.Background(), 5, "sha1", InlineComment{Path: "a.go", Line: 4, Body: "x"})
	require.NoError(t, err)
	assert.Equal(t, "RIGHT", got["side"])
	assert.Equal(t, "a.go", got["path"])
}

func TestClient_CreateIssueComment(t *testing.T) {
	var got map[string]any
	mux := http.NewServeMux()
	mux.HandleFunc("POST /repos/acme/web/issues/5/comments", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &got)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":1}`))
	})
	c := newTestClient(t, mux)

	require.NoError(t, c.CreateIssueComment(context.Background(), 5, "## QA"))
	assert.Equal(t, "## QA", got["body"])
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient("", "", "a", "b", nil)
	assert.Error(t, err)
	_, err = NewClient("tok", "", "", "b", nil)
	assert.Error(t, err)
}
