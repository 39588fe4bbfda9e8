package lsp

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log"
	"strings"
	"testing"
)

type errWriter struct{}

func (errWriter) Write([]byte) (int, error) { return 0, errors.New("boom") }

// splitErrWriter succeeds once (header), then fails (body).
type splitErrWriter struct{ calls int }

func (w *splitErrWriter) Write(p []byte) (int, error) {
	w.calls++
	if w.calls == 1 {
		return len(p), nil
	}
	return 0, errors.New("body write failed")
}

func TestHandle_InitializedAndExitWithoutShutdown(t *testing.T) {
	s := NewServer(strings.NewReader(""), io.Discard, log.New(io.Discard, "", 0))

	if err := s.handle(inboundMessage{JSONRPC: "2.0", Method: "initialized"}); err != nil {
		t.Fatalf("initialized should be no-op: %v", err)
	}
	if err := s.handle(inboundMessage{JSONRPC: "2.0", Method: "exit"}); !errors.Is(err, io.EOF) {
		t.Fatalf("exit should return EOF, got: %v", err)
	}
}

func TestHandle_UnknownMethod(t *testing.T) {
	var out bytes.Buffer
	s := NewServer(strings.NewReader(""), &out, log.New(io.Discard, "", 0))

	// With ID -> reply with result:null
	rawID := json.RawMessage("10")
	if err := s.handle(inboundMessage{JSONRPC: "2.0", ID: &rawID, Method: "custom/method"}); err != nil {
		t.Fatalf("handle unknown with id: %v", err)
	}
	msgs := readAllLSPMessages(t, out.Bytes())
	if len(msgs) != 1 {
		t.Fatalf("expected one reply for unknown request, got %d", len(msgs))
	}
	if _, ok := msgs[0]["result"]; !ok {
		t.Fatalf("expected result field for unknown request: %+v", msgs[0])
	}

	// Without ID -> notification style, no output.
	out.Reset()
	if err := s.handle(inboundMessage{JSONRPC: "2.0", Method: "custom/notify"}); err != nil {
		t.Fatalf("handle unknown notify: %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("expected no output for unknown notification, got %d bytes", out.Len())
	}
}

func TestHandle_DidChangeBranches(t *testing.T) {
	var out bytes.Buffer
	s := NewServer(strings.NewReader(""), &out, log.New(io.Discard, "", 0))

	if err := s.handle(inboundMessage{JSONRPC: "2.0", Method: "textDocument/didChange", Params: json.RawMessage(`{"oops":`)}); err == nil {
		t.Fatalf("expected unmarshal error for malformed didChange params")
	}

	uri := "file:///tmp/change.go"
	openDoc(t, s, uri, "func f() {}")

	params, err := json.Marshal(didChangeParams{
		TextDocument: textDocumentIdentifier{URI: uri},
	})
	if err != nil {
		t.Fatalf("marshal didChange empty: %v", err)
	}
	if err := s.handle(inboundMessage{JSONRPC: "2.0", Method: "textDocument/didChange", Params: params}); err != nil {
		t.Fatalf("didChange with empty changes should be no-op: %v", err)
	}
	if got := s.docs[uri].String(); got != "func f() {}" {
		t.Fatalf("expected doc unchanged, got: %q", got)
	}

	params, err = json.Marshal(didChangeParams{
		TextDocument: textDocumentIdentifier{URI: uri},
		ContentChanges: []textDocumentContentChangeEvent{
			{Text: "first"},
			{Text: "func g() {\n}"},
		},
	})
	if err != nil {
		t.Fatalf("marshal didChange: %v", err)
	}
	if err := s.handle(inboundMessage{JSONRPC: "2.0", Method: "textDocument/didChange", Params: params}); err != nil {
		t.Fatalf("didChange: %v", err)
	}
	if got := s.docs[uri].String(); got != "func g() {\n}" {
		t.Fatalf("expected doc updated from last content change, got: %q", got)
	}
	if out.Len() != 0 {
		t.Fatalf("expected no output for document sync, got %d bytes", out.Len())
	}
}

func TestHandle_DidClose(t *testing.T) {
	s := NewServer(strings.NewReader(""), io.Discard, log.New(io.Discard, "", 0))
	uri := "file:///tmp/close.go"
	openDoc(t, s, uri, "x")

	params, _ := json.Marshal(didCloseParams{TextDocument: textDocumentIdentifier{URI: uri}})
	if err := s.handle(inboundMessage{JSONRPC: "2.0", Method: "textDocument/didClose", Params: params}); err != nil {
		t.Fatalf("didClose: %v", err)
	}
	if _, ok := s.docs[uri]; ok {
		t.Fatalf("expected document to be dropped on didClose")
	}
}

func TestRun_InvalidJSONPayloadContinues(t *testing.T) {
	var in bytes.Buffer
	writeLSPMessage(&in, json.RawMessage(`{`)) // malformed JSON payload
	writeLSPMessage(&in, map[string]any{
		"jsonrpc": "2.0",
		"id":      11,
		"method":  "initialize",
		"params":  map[string]any{},
	})

	var out bytes.Buffer
	s := NewServer(&in, &out, log.New(io.Discard, "", 0))
	if err := s.Run(); err != nil {
		t.Fatalf("Run should ignore invalid JSON and continue, got: %v", err)
	}
	msgs := readAllLSPMessages(t, out.Bytes())
	if len(msgs) != 1 || msgs[0]["id"] == nil {
		t.Fatalf("expected initialize response after malformed payload, got: %+v", msgs)
	}
}

func TestReplyAndReplyError_NilIDNoOutput(t *testing.T) {
	var out bytes.Buffer
	s := NewServer(strings.NewReader(""), &out, nil)
	if err := s.reply(nil, map[string]any{"ok": true}); err != nil {
		t.Fatalf("reply nil id should no-op: %v", err)
	}
	if err := s.replyError(nil, -32600, "bad request"); err != nil {
		t.Fatalf("replyError nil id should no-op: %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("expected no output when id is nil, got %d bytes", out.Len())
	}
}

func TestWriteMessage_ErrorPaths(t *testing.T) {
	if err := writeMessage(io.Discard, map[string]any{"bad": func() {}}); err == nil {
		t.Fatalf("expected marshal error")
	}

	if err := writeMessage(errWriter{}, map[string]any{"ok": true}); err == nil {
		t.Fatalf("expected header write error")
	}

	w := &splitErrWriter{}
	if err := writeMessage(w, map[string]any{"ok": true}); err == nil {
		t.Fatalf("expected body write error")
	}
}

func TestReadMessage_HeaderErrors(t *testing.T) {
	if _, err := readMessage(bufioReader("X-Other: 1\r\n\r\n{}")); err == nil || !strings.Contains(err.Error(), "missing Content-Length") {
		t.Fatalf("expected missing Content-Length error, got: %v", err)
	}
	if _, err := readMessage(bufioReader("Content-Length: abc\r\n\r\n{}")); err == nil || !strings.Contains(err.Error(), "invalid Content-Length") {
		t.Fatalf("expected invalid Content-Length error, got: %v", err)
	}
}

func TestHandle_RejectsRequestsAfterShutdown(t *testing.T) {
	var out bytes.Buffer
	s := NewServer(strings.NewReader(""), &out, log.New(io.Discard, "", 0))
	openDoc(t, s, "file:///tmp/late.go", "x {\n")

	shutdownID := json.RawMessage("1")
	if err := s.handle(inboundMessage{JSONRPC: "2.0", ID: &shutdownID, Method: "shutdown"}); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	out.Reset()
	rawID := json.RawMessage("2")
	params, _ := json.Marshal(documentFormattingParams{
		TextDocument: textDocumentIdentifier{URI: "file:///tmp/late.go"},
		Options:      formattingOptions{TabSize: 4, InsertSpaces: true},
	})
	if err := s.handle(inboundMessage{JSONRPC: "2.0", ID: &rawID, Method: "textDocument/formatting", Params: params}); err != nil {
		t.Fatalf("handle after shutdown should reply, not fail: %v", err)
	}
	msgs := readAllLSPMessages(t, out.Bytes())
	if len(msgs) != 1 {
		t.Fatalf("expected one response, got %d", len(msgs))
	}
	errObj, ok := msgs[0]["error"].(map[string]any)
	if !ok || errObj["code"] != float64(codeInvalidRequest) {
		t.Fatalf("expected invalid request error after shutdown, got: %+v", msgs[0])
	}

	out.Reset()
	if err := s.handle(inboundMessage{JSONRPC: "2.0", Method: "textDocument/didClose", Params: json.RawMessage(`{}`)}); err != nil {
		t.Fatalf("notification after shutdown: %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("expected notifications to be dropped silently, got %d bytes", out.Len())
	}

	if err := s.handle(inboundMessage{JSONRPC: "2.0", Method: "exit"}); !errors.Is(err, io.EOF) {
		t.Fatalf("exit after shutdown should return EOF, got: %v", err)
	}
}
