package mcpserver

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/othala/internal/kb"
	"github.com/starford/othala/internal/testutil"
)

func testServer(t *testing.T) (*Server, *kb.Service) {
	t.Helper()

	db := testutil.TestDB(t)
	_, blobs := testutil.TestBlobs(t)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := kb.NewService(db, blobs, nil, logger)
	return New(svc), svc
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" test helper, so dispatch to the
	// handler functions directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "search_notes":
		result, err = srv.searchNotes(ctx, req)
	case "read_note":
		result, err = srv.readNote(ctx, req)
	case "create_note":
		result, err = srv.createNote(ctx, req)
	case "get_backlinks":
		result, err = srv.getBacklinks(ctx, req)
	case "list_tasks":
		result, err = srv.listTasks(ctx, req)
	case "create_task":
		result, err = srv.createTask(ctx, req)
	case "tag_entity":
		result, err = srv.tagEntity(ctx, req)
	case "list_entity_tags":
		result, err = srv.listEntityTags(ctx, req)
	case "set_property":
		result, err = srv.setProperty(ctx, req)
	case "upload_file":
		result, err = srv.uploadFile(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestCreateAndReadNote(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "create_note", map[string]interface{}{
		"body": "# Test\nHello",
	})
	text := resultText(r)
	if !strings.HasPrefix(text, "created: ") {
		t.Fatalf("create result = %q", text)
	}
	id := strings.TrimPrefix(text, "created: ")

	r = callTool(t, srv, "read_note", map[string]interface{}{"id": id})
	text = resultText(r)
	if !strings.Contains(text, "Hello") {
		t.Errorf("read result = %q, want body content", text)
	}
	if !strings.Contains(text, "Test") {
		t.Errorf("read result = %q, want derived title", text)
	}
}

func TestReadNoteMissing(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "read_note", map[string]interface{}{"id": "nope"})
	if !r.IsError {
		t.Error("expected error for missing note")
	}
}

func TestSearchNotes(t *testing.T) {
	srv, _ := testServer(t)
	callTool(t, srv, "create_note", map[string]interface{}{
		"title": "Gardening",
		"body":  "tomato seedlings need hardening off",
	})

	r := callTool(t, srv, "search_notes", map[string]interface{}{"query": "tomato"})
	if !strings.Contains(resultText(r), "Gardening") {
		t.Errorf("search result = %q, want match", resultText(r))
	}
}

func TestGetBacklinks(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "create_note", map[string]interface{}{
		"title": "Target",
		"body":  "the destination",
	})
	targetID := strings.TrimPrefix(resultText(r), "created: ")

	r = callTool(t, srv, "create_note", map[string]interface{}{
		"title": "Source",
		"body":  "links to [[Target]]",
	})
	srcID := strings.TrimPrefix(resultText(r), "created: ")

	r = callTool(t, srv, "get_backlinks", map[string]interface{}{"id": targetID})
	text := resultText(r)
	if text != "note/"+srcID {
		t.Errorf("backlinks = %q, want note/%s", text, srcID)
	}
}

func TestTaskLifecycle(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "create_task", map[string]interface{}{
		"title":  "water plants",
		"due_at": "2026-09-01T08:00:00Z",
	})
	if r.IsError {
		t.Fatalf("create_task failed: %s", resultText(r))
	}

	r = callTool(t, srv, "list_tasks", map[string]interface{}{"status": "todo"})
	if !strings.Contains(resultText(r), "water plants") {
		t.Errorf("list_tasks = %q, want created task", resultText(r))
	}

	r = callTool(t, srv, "list_tasks", map[string]interface{}{"status": "done"})
	if strings.Contains(resultText(r), "water plants") {
		t.Error("done filter should not include a todo task")
	}
}

func TestCreateTaskBadDueAt(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "create_task", map[string]interface{}{
		"title":  "x",
		"due_at": "tomorrow",
	})
	if !r.IsError {
		t.Error("expected error for non-RFC3339 due_at")
	}
}

func TestTagEntityAndList(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "create_note", map[string]interface{}{"body": "plain"})
	id := strings.TrimPrefix(resultText(r), "created: ")

	r = callTool(t, srv, "tag_entity", map[string]interface{}{
		"slug":        "projects/othala",
		"entity_type": "note",
		"entity_id":   id,
	})
	if r.IsError {
		t.Fatalf("tag_entity failed: %s", resultText(r))
	}

	r = callTool(t, srv, "list_entity_tags", map[string]interface{}{
		"entity_type": "note",
		"entity_id":   id,
	})
	if resultText(r) != "projects/othala" {
		t.Errorf("tags = %q, want projects/othala", resultText(r))
	}
}

func TestSetProperty(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "create_note", map[string]interface{}{"body": "plain"})
	id := strings.TrimPrefix(resultText(r), "created: ")

	r = callTool(t, srv, "set_property", map[string]interface{}{
		"entity_type": "note",
		"entity_id":   id,
		"name":        "rating",
		"value_type":  "number",
		"value":       "5",
	})
	if r.IsError {
		t.Fatalf("set_property failed: %s", resultText(r))
	}
	if !strings.Contains(resultText(r), "rating=5") {
		t.Errorf("set result = %q", resultText(r))
	}
}

func TestSetPropertyBadValueType(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "set_property", map[string]interface{}{
		"entity_type": "note",
		"entity_id":   "x",
		"name":        "rating",
		"value_type":  "decimal",
		"value":       "5",
	})
	if !r.IsError {
		t.Error("expected error for unknown value_type")
	}
}

// Minimal valid 1x1 PNG.
var pngBytes = []byte{
	0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A,
	0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1F, 0x15, 0xC4,
	0x89, 0x00, 0x00, 0x00, 0x0A, 0x49, 0x44, 0x41,
	0x54, 0x78, 0x9C, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0D, 0x0A, 0x2D, 0xB4, 0x00,
	0x00, 0x00, 0x00, 0x49, 0x45, 0x4E, 0x44, 0xAE,
	0x42, 0x60, 0x82,
}

func TestUploadFileDataURI(t *testing.T) {
	srv, _ := testServer(t)

	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes)
	r := callTool(t, srv, "upload_file", map[string]interface{}{
		"url":      uri,
		"filename": "pixel.png",
	})
	if r.IsError {
		t.Fatalf("upload_file failed: %s", resultText(r))
	}

	var res uploadResult
	if err := json.Unmarshal([]byte(resultText(r)), &res); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
	if res.FileID == "" {
		t.Error("missing file id")
	}
	if res.Filename != "pixel.png" {
		t.Errorf("filename = %q", res.Filename)
	}
	if res.SizeBytes != int64(len(pngBytes)) {
		t.Errorf("size = %d, want %d", res.SizeBytes, len(pngBytes))
	}
}

func TestUploadFileWithAttachment(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "create_note", map[string]interface{}{"body": "host note"})
	noteID := strings.TrimPrefix(resultText(r), "created: ")

	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes)
	r = callTool(t, srv, "upload_file", map[string]interface{}{
		"url":         uri,
		"filename":    "pixel.png",
		"entity_type": "note",
		"entity_id":   noteID,
	})
	if r.IsError {
		t.Fatalf("upload_file failed: %s", resultText(r))
	}

	var res uploadResult
	if err := json.Unmarshal([]byte(resultText(r)), &res); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
	if res.AttachmentID == "" {
		t.Error("missing attachment id")
	}
}

func TestUploadFileBadExtension(t *testing.T) {
	srv, _ := testServer(t)
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes)
	r := callTool(t, srv, "upload_file", map[string]interface{}{
		"url":      uri,
		"filename": "script.sh",
	})
	if !r.IsError {
		t.Error("expected error for disallowed extension")
	}
}

func TestUploadFileMagicMismatch(t *testing.T) {
	srv, _ := testServer(t)
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("not a png"))
	r := callTool(t, srv, "upload_file", map[string]interface{}{
		"url":      uri,
		"filename": "fake.png",
	})
	if !r.IsError {
		t.Error("expected error for mismatched content")
	}
}

func TestDecodeDataURI(t *testing.T) {
	data, ext, err := decodeDataURI("data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("hi")))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "hi" {
		t.Errorf("data = %q", data)
	}
	if ext != ".png" {
		t.Errorf("ext = %q", ext)
	}

	if _, _, err := decodeDataURI("data:image/png,plain"); err == nil {
		t.Error("expected error for non-base64 data URI")
	}
	if _, _, err := decodeDataURI("data:text/plain;base64,aGk="); err == nil {
		t.Error("expected error for unsupported mime")
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"../../etc/passwd": "passwd",
		"hello world.png":  "hello_world.png",
		"ok-file_1.pdf":    "ok-file_1.pdf",
	}
	for in, want := range cases {
		if got := sanitizeFilename(in); got != want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCheckBlockedHost(t *testing.T) {
	if err := checkBlockedHost("127.0.0.1"); err == nil {
		t.Error("loopback should be blocked")
	}
	if err := checkBlockedHost("169.254.169.254"); err == nil {
		t.Error("metadata address should be blocked")
	}
	if err := checkBlockedHost("metadata.google.internal"); err == nil {
		t.Error("gcp metadata host should be blocked")
	}
}
