package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/starford/othala/internal/kb"
	"github.com/starford/othala/internal/models"
	"github.com/starford/othala/internal/testutil"
)

// testEnv sets up a temp DB, blob store, service, and router for testing.
// authToken="" means disabled mode; a non-empty token enables token mode.
func testEnv(t *testing.T, authToken string) (*kb.Service, http.Handler) {
	t.Helper()
	return testEnvFull(t, authToken != "", authToken, nil)
}

func testEnvFull(t *testing.T, authEnabled bool, authToken string, sseHandler http.Handler) (*kb.Service, http.Handler) {
	t.Helper()
	db := testutil.TestDB(t)
	_, blobs := testutil.TestBlobs(t)
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	svc := kb.NewService(db, blobs, nil, logger)
	router := NewRouter(svc, authEnabled, authToken, sseHandler)
	return svc, router
}

func doJSON(t *testing.T, router http.Handler, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatal(err)
		}
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateAndGetNote(t *testing.T) {
	_, router := testEnv(t, "")

	w := doJSON(t, router, http.MethodPost, "/notes", map[string]string{"body": "# Hello\nWorld"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}
	var created kb.NoteDetail
	_ = json.Unmarshal(w.Body.Bytes(), &created)
	if created.ID == "" {
		t.Fatal("missing id")
	}
	if created.Title == nil || *created.Title != "Hello" {
		t.Errorf("title = %v, want Hello", created.Title)
	}

	w = doJSON(t, router, http.MethodGet, "/notes/"+created.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	var got kb.NoteDetail
	_ = json.Unmarshal(w.Body.Bytes(), &got)
	if got.ID != created.ID || got.Body != "# Hello\nWorld" {
		t.Errorf("roundtrip mismatch: %+v", got)
	}
}

func TestCreateNote_MissingBody(t *testing.T) {
	_, router := testEnv(t, "")
	w := doJSON(t, router, http.MethodPost, "/notes", map[string]string{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestPatchNote(t *testing.T) {
	_, router := testEnv(t, "")

	w := doJSON(t, router, http.MethodPost, "/notes", map[string]string{"body": "v1"})
	var created kb.NoteDetail
	_ = json.Unmarshal(w.Body.Bytes(), &created)

	w = doJSON(t, router, http.MethodPatch, "/notes/"+created.ID, map[string]string{"title": "Renamed"})
	if w.Code != http.StatusOK {
		t.Fatalf("patch = %d, body = %s", w.Code, w.Body.String())
	}
	var updated kb.NoteDetail
	_ = json.Unmarshal(w.Body.Bytes(), &updated)
	if updated.Title == nil || *updated.Title != "Renamed" {
		t.Errorf("title = %v", updated.Title)
	}
	if updated.Body != "v1" {
		t.Errorf("body = %q, should be untouched", updated.Body)
	}
}

func TestDeleteNote(t *testing.T) {
	_, router := testEnv(t, "")

	w := doJSON(t, router, http.MethodPost, "/notes", map[string]string{"body": "gone"})
	var created kb.NoteDetail
	_ = json.Unmarshal(w.Body.Bytes(), &created)

	w = doJSON(t, router, http.MethodDelete, "/notes/"+created.ID, nil)
	if w.Code != http.StatusOK {
		t.Errorf("delete = %d, want 200 with deleted row", w.Code)
	}

	w = doJSON(t, router, http.MethodGet, "/notes/"+created.ID, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("get after delete = %d, want 404", w.Code)
	}
}

func TestNoteBacklinksEndpoint(t *testing.T) {
	_, router := testEnv(t, "")

	w := doJSON(t, router, http.MethodPost, "/notes", map[string]string{"title": "Hub", "body": "x"})
	var hub kb.NoteDetail
	_ = json.Unmarshal(w.Body.Bytes(), &hub)

	doJSON(t, router, http.MethodPost, "/notes", map[string]string{"body": "see [[Hub]]"})

	w = doJSON(t, router, http.MethodGet, "/notes/"+hub.ID+"/backlinks", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("backlinks = %d", w.Code)
	}
	var resp map[string][]models.Link
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp["backlinks"]) != 1 {
		t.Errorf("backlinks = %d, want 1", len(resp["backlinks"]))
	}
}

func TestTaskLifecycle(t *testing.T) {
	_, router := testEnv(t, "")

	w := doJSON(t, router, http.MethodPost, "/tasks", map[string]any{"title": "File taxes", "priority": 1})
	if w.Code != http.StatusCreated {
		t.Fatalf("create = %d, body = %s", w.Code, w.Body.String())
	}
	var task models.Task
	_ = json.Unmarshal(w.Body.Bytes(), &task)

	w = doJSON(t, router, http.MethodPatch, "/tasks/"+task.ID, map[string]string{"status": "done"})
	if w.Code != http.StatusOK {
		t.Fatalf("patch = %d, body = %s", w.Code, w.Body.String())
	}

	w = doJSON(t, router, http.MethodGet, "/tasks?status=done", nil)
	var resp map[string][]models.Task
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp["tasks"]) != 1 {
		t.Errorf("done tasks = %d, want 1", len(resp["tasks"]))
	}

	w = doJSON(t, router, http.MethodGet, "/tasks?status=nonsense", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad status filter = %d, want 400", w.Code)
	}
}

func TestEventWindowEndpoint(t *testing.T) {
	_, router := testEnv(t, "")

	w := doJSON(t, router, http.MethodPost, "/events", map[string]any{
		"title":     "Dentist",
		"starts_at": "2026-04-01T09:00:00Z",
		"ends_at":   "2026-04-01T10:00:00Z",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create = %d, body = %s", w.Code, w.Body.String())
	}

	w = doJSON(t, router, http.MethodGet, "/events?start=2026-04-01T00:00:00Z&end=2026-04-02T00:00:00Z", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list = %d", w.Code)
	}
	var resp map[string][]models.Event
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp["events"]) != 1 {
		t.Errorf("events = %d, want 1", len(resp["events"]))
	}

	w = doJSON(t, router, http.MethodGet, "/events?start=bogus&end=2026-04-02T00:00:00Z", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad start = %d, want 400", w.Code)
	}
}

func TestJournalEndpoints(t *testing.T) {
	_, router := testEnv(t, "")

	w := doJSON(t, router, http.MethodPost, "/journal", map[string]any{"entry_date": "2026-05-10", "mood": 8})
	if w.Code != http.StatusCreated {
		t.Fatalf("create = %d, body = %s", w.Code, w.Body.String())
	}

	w = doJSON(t, router, http.MethodGet, "/journal?start=2026-05-01&end=2026-05-31", nil)
	var resp map[string][]models.JournalEntry
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp["entries"]) != 1 {
		t.Errorf("entries = %d, want 1", len(resp["entries"]))
	}
}

func TestTagEndpoints(t *testing.T) {
	_, router := testEnv(t, "")

	w := doJSON(t, router, http.MethodPut, "/tags", map[string]string{"slug": "reading", "label": "Reading"})
	if w.Code != http.StatusOK {
		t.Fatalf("upsert = %d, body = %s", w.Code, w.Body.String())
	}
	var tag models.Tag
	_ = json.Unmarshal(w.Body.Bytes(), &tag)

	w = doJSON(t, router, http.MethodPost, "/tags/attach", map[string]string{
		"tag_id": tag.ID, "entity_type": "task", "entity_id": "t1",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("attach = %d, body = %s", w.Code, w.Body.String())
	}

	w = doJSON(t, router, http.MethodGet, "/entities/task/t1/tags", nil)
	var resp map[string][]models.Tag
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp["tags"]) != 1 || resp["tags"][0].Slug != "reading" {
		t.Errorf("tags = %v", resp["tags"])
	}

	w = doJSON(t, router, http.MethodPost, "/tags/detach", map[string]string{
		"tag_id": tag.ID, "entity_type": "task", "entity_id": "t1",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("detach = %d", w.Code)
	}
	// Detaching again is a 404.
	w = doJSON(t, router, http.MethodPost, "/tags/detach", map[string]string{
		"tag_id": tag.ID, "entity_type": "task", "entity_id": "t1",
	})
	if w.Code != http.StatusNotFound {
		t.Errorf("second detach = %d, want 404", w.Code)
	}
}

func TestPropAndEmbeddingEndpoints(t *testing.T) {
	_, router := testEnv(t, "")

	w := doJSON(t, router, http.MethodPut, "/props", map[string]any{
		"entity_type": "note", "entity_id": "n1", "name": "rating", "value_type": "number", "value": "5",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("set prop = %d, body = %s", w.Code, w.Body.String())
	}

	w = doJSON(t, router, http.MethodPut, "/embeddings", map[string]any{
		"entity_type": "note", "entity_id": "n1",
		"provider": "openai", "model": "small", "vector": []float32{1, 0, 0},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("upsert embedding = %d, body = %s", w.Code, w.Body.String())
	}

	w = doJSON(t, router, http.MethodPost, "/search/similar", map[string]any{
		"provider": "openai", "model": "small", "vector": []float32{1, 0, 0},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("similar = %d, body = %s", w.Code, w.Body.String())
	}
	var resp map[string][]json.RawMessage
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp["matches"]) != 1 {
		t.Errorf("matches = %d, want 1", len(resp["matches"]))
	}

	w = doJSON(t, router, http.MethodGet, "/entities/note/n1/props", nil)
	if w.Code != http.StatusOK {
		t.Errorf("entity props = %d", w.Code)
	}
	w = doJSON(t, router, http.MethodGet, "/entities/note/n1/embeddings", nil)
	if w.Code != http.StatusOK {
		t.Errorf("entity embeddings = %d", w.Code)
	}
}

func TestLinkEndpoints(t *testing.T) {
	_, router := testEnv(t, "")

	w := doJSON(t, router, http.MethodPost, "/links", map[string]string{
		"src_type": "note", "src_id": "n1", "tgt_type": "task", "tgt_id": "t1",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create link = %d, body = %s", w.Code, w.Body.String())
	}

	w = doJSON(t, router, http.MethodGet, "/links/from/note/n1", nil)
	var resp map[string][]models.Link
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp["links"]) != 1 {
		t.Errorf("links from = %d, want 1", len(resp["links"]))
	}

	w = doJSON(t, router, http.MethodGet, "/links/to/gadget/t1", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad tgt type = %d, want 400", w.Code)
	}
}

func TestEntityExistsEndpoint(t *testing.T) {
	svc, router := testEnv(t, "")

	note, err := svc.CreateNote(context.Background(), models.NewNote{Body: "here"})
	if err != nil {
		t.Fatal(err)
	}

	w := doJSON(t, router, http.MethodGet, "/entities/note/"+note.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp map[string]bool
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp["exists"] {
		t.Error("existing note reported as absent")
	}

	w = doJSON(t, router, http.MethodGet, "/entities/note/missing", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	resp = nil
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["exists"] {
		t.Error("missing note reported as present")
	}

	w = doJSON(t, router, http.MethodGet, "/entities/widget/x", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown kind status = %d, want 400", w.Code)
	}
}

func TestSearchEndpoint(t *testing.T) {
	_, router := testEnv(t, "")

	doJSON(t, router, http.MethodPost, "/notes", map[string]string{"body": "uniquetoken here"})

	w := doJSON(t, router, http.MethodGet, "/search?q=uniquetoken", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("search = %d, body = %s", w.Code, w.Body.String())
	}
	var resp map[string][]json.RawMessage
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp["results"]) != 1 {
		t.Errorf("results = %d, want 1", len(resp["results"]))
	}
}

func TestSearchMissingQuery(t *testing.T) {
	_, router := testEnv(t, "")

	w := doJSON(t, router, http.MethodGet, "/search", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("search no query = %d, want 400", w.Code)
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	_, router := testEnv(t, "secret123")

	raw, _ := json.Marshal(map[string]string{"body": "test"})
	req := httptest.NewRequest(http.MethodPost, "/notes", bytes.NewReader(raw))
	req.Header.Set("Authorization", "Bearer secret123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Errorf("authed create = %d, want 201", w.Code)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	_, router := testEnv(t, "secret123")

	w := doJSON(t, router, http.MethodGet, "/tasks", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unauthed = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_WrongToken(t *testing.T) {
	_, router := testEnv(t, "secret123")

	req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	_, router := testEnv(t, "")

	w := doJSON(t, router, http.MethodGet, "/tasks", nil)
	if w.Code != http.StatusOK {
		t.Errorf("no auth = %d, want 200", w.Code)
	}
}

// SSE endpoint auth tests.

func sseStub() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		<-r.Context().Done()
	})
}

func TestSSEStream_AuthProtected(t *testing.T) {
	_, router := testEnvFull(t, true, "secret", sseStub())

	w := doJSON(t, router, http.MethodGet, "/stream", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("SSE no auth = %d, want 401", w.Code)
	}
}

func TestSSEStream_AuthDisabled(t *testing.T) {
	_, router := testEnvFull(t, false, "", sseStub())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/stream", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code == http.StatusUnauthorized {
		t.Error("SSE should not require auth when disabled")
	}
}

// File and attachment tests.

func uploadFile(t *testing.T, router http.Handler, filename, contentType string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	hdr := make(map[string][]string)
	hdr["Content-Disposition"] = []string{`form-data; name="file"; filename="` + filename + `"`}
	if contentType != "" {
		hdr["Content-Type"] = []string{contentType}
	}
	part, err := mw.CreatePart(hdr)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = io.Copy(part, bytes.NewReader(content))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/files", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestUploadAndDownloadFile(t *testing.T) {
	_, router := testEnv(t, "")

	w := uploadFile(t, router, "test.png", "image/png", []byte("fake-png-data"))
	if w.Code != http.StatusCreated {
		t.Fatalf("upload = %d, body = %s", w.Code, w.Body.String())
	}
	var file models.File
	_ = json.Unmarshal(w.Body.Bytes(), &file)
	if file.Filename != "test.png" || file.SizeBytes != int64(len("fake-png-data")) {
		t.Errorf("file = %+v", file)
	}

	w = doJSON(t, router, http.MethodGet, "/files/"+file.ID+"/content", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("download = %d", w.Code)
	}
	if w.Body.String() != "fake-png-data" {
		t.Errorf("content mismatch: %q", w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("content type = %q", ct)
	}
}

func TestUploadFile_MissingFileField(t *testing.T) {
	_, router := testEnv(t, "")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("wrong", "data")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/files", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing field = %d, want 400", w.Code)
	}
}

func TestAttachmentEndpoints(t *testing.T) {
	_, router := testEnv(t, "")

	w := uploadFile(t, router, "pic.jpg", "image/jpeg", []byte{0xff, 0xd8})
	var file models.File
	_ = json.Unmarshal(w.Body.Bytes(), &file)

	w = doJSON(t, router, http.MethodPost, "/attachments", map[string]string{
		"file_id": file.ID, "entity_type": "journal", "entity_id": "j1",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create attachment = %d, body = %s", w.Code, w.Body.String())
	}

	w = doJSON(t, router, http.MethodGet, "/entities/journal/j1/attachments", nil)
	var resp map[string][]models.Attachment
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp["attachments"]) != 1 {
		t.Errorf("attachments = %d, want 1", len(resp["attachments"]))
	}

	// Dangling file reference conflicts.
	w = doJSON(t, router, http.MethodPost, "/attachments", map[string]string{
		"file_id": "missing", "entity_type": "journal", "entity_id": "j1",
	})
	if w.Code != http.StatusConflict {
		t.Errorf("dangling file = %d, want 409", w.Code)
	}
}
