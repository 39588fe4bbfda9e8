package lsp

import (
	"bufio"
	"encoding/json"
	"errors"
	"io"
	"log"

	"github.com/r9s-ai/smart-indent/indent"
	"github.com/r9s-ai/smart-indent/internal/policy"
	"github.com/r9s-ai/smart-indent/internal/text"
)

// ServerVersion is reported in the initialize response.
var ServerVersion = "dev"

type Server struct {
	in     *bufio.Reader
	out    io.Writer
	logger *log.Logger

	docs         map[string]*text.Source
	shuttingDown bool
}

func NewServer(in io.Reader, out io.Writer, logger *log.Logger) *Server {
	return &Server{
		in:     bufio.NewReader(in),
		out:    out,
		logger: logger,
		docs:   map[string]*text.Source{},
	}
}

type initializeResult struct {
	Capabilities serverCapabilities `json:"capabilities"`
	ServerInfo   serverInfo         `json:"serverInfo"`
}

type serverInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type serverCapabilities struct {
	TextDocumentSync                 int                       `json:"textDocumentSync"`
	DocumentFormattingProvider       bool                      `json:"documentFormattingProvider"`
	DocumentOnTypeFormattingProvider *onTypeFormattingProvider `json:"documentOnTypeFormattingProvider,omitempty"`
}

type onTypeFormattingProvider struct {
	FirstTriggerCharacter string   `json:"firstTriggerCharacter"`
	MoreTriggerCharacter  []string `json:"moreTriggerCharacter,omitempty"`
}

type textDocumentIdentifier struct {
	URI string `json:"uri"`
}

type textDocumentItem struct {
	URI  string `json:"uri"`
	Text string `json:"text"`
}

type didOpenParams struct {
	TextDocument textDocumentItem `json:"textDocument"`
}

type textDocumentContentChangeEvent struct {
	Text string `json:"text"`
}

type didChangeParams struct {
	TextDocument   textDocumentIdentifier           `json:"textDocument"`
	ContentChanges []textDocumentContentChangeEvent `json:"contentChanges"`
}

type didCloseParams struct {
	TextDocument textDocumentIdentifier `json:"textDocument"`
}

type formattingOptions struct {
	TabSize      int  `json:"tabSize"`
	InsertSpaces bool `json:"insertSpaces"`
}

func (o formattingOptions) indentOptions() indent.Options {
	return indent.Options{UseTabs: !o.InsertSpaces, TabSize: o.TabSize}
}

type documentFormattingParams struct {
	TextDocument textDocumentIdentifier `json:"textDocument"`
	Options      formattingOptions      `json:"options"`
}

type onTypeFormattingParams struct {
	TextDocument textDocumentIdentifier `json:"textDocument"`
	Position     Position               `json:"position"`
	Ch           string                 `json:"ch"`
	Options      formattingOptions      `json:"options"`
}

type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

type TextEdit struct {
	Range   Range  `json:"range"`
	NewText string `json:"newText"`
}

func (s *Server) Run() error {
	for {
		raw, err := readMessage(s.in)
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}

		var msg inboundMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			s.logger.Printf("invalid JSON-RPC payload: %v", err)
			continue
		}

		if msg.Method == "" {
			continue
		}
		if err := s.handle(msg); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			s.logger.Printf("handle method=%s error: %v", msg.Method, err)
		}
	}
}

func (s *Server) handle(msg inboundMessage) error {
	if s.shuttingDown && msg.Method != "exit" {
		return s.replyError(msg.ID, codeInvalidRequest, "server is shutting down")
	}
	switch msg.Method {
	case "initialize":
		return s.handleInitialize(msg.ID)
	case "initialized":
		return nil
	case "shutdown":
		s.shuttingDown = true
		return s.reply(msg.ID, map[string]any{})
	case "exit":
		return io.EOF
	case "textDocument/didOpen":
		var p didOpenParams
		if err := json.Unmarshal(msg.Params, &p); err != nil {
			return err
		}
		s.docs[p.TextDocument.URI] = text.NewSource(p.TextDocument.Text)
		return nil
	case "textDocument/didChange":
		var p didChangeParams
		if err := json.Unmarshal(msg.Params, &p); err != nil {
			return err
		}
		if len(p.ContentChanges) == 0 {
			return nil
		}
		s.docs[p.TextDocument.URI] = text.NewSource(p.ContentChanges[len(p.ContentChanges)-1].Text)
		return nil
	case "textDocument/didClose":
		var p didCloseParams
		if err := json.Unmarshal(msg.Params, &p); err != nil {
			return err
		}
		delete(s.docs, p.TextDocument.URI)
		return nil
	case "textDocument/formatting":
		return s.handleFormatting(msg.ID, msg.Params)
	case "textDocument/onTypeFormatting":
		return s.handleOnTypeFormatting(msg.ID, msg.Params)
	default:
		if msg.ID != nil {
			return s.reply(msg.ID, nil)
		}
		return nil
	}
}

func (s *Server) handleInitialize(id *json.RawMessage) error {
	res := initializeResult{
		Capabilities: serverCapabilities{
			TextDocumentSync:           1,
			DocumentFormattingProvider: true,
			DocumentOnTypeFormattingProvider: &onTypeFormattingProvider{
				FirstTriggerCharacter: "\n",
				MoreTriggerCharacter:  []string{"}", ")", "]"},
			},
		},
		ServerInfo: serverInfo{
			Name:    "smart-indent",
			Version: ServerVersion,
		},
	}
	return s.reply(id, res)
}

func (s *Server) handleFormatting(id *json.RawMessage, params json.RawMessage) error {
	var p documentFormattingParams
	if err := json.Unmarshal(params, &p); err != nil {
		return s.replyError(id, codeInvalidParams, "invalid params for formatting")
	}
	src, ok := s.docs[p.TextDocument.URI]
	if !ok {
		return s.reply(id, nil)
	}
	if err := p.Options.indentOptions().Validate(); err != nil {
		return s.replyError(id, codeInvalidParams, err.Error())
	}

	original := src.String()
	formatted := FormatText(original, FormatOptions(p.Options))
	if formatted == original {
		return s.reply(id, []TextEdit{})
	}
	return s.reply(id, []TextEdit{{
		Range:   Range{End: endPosition(original)},
		NewText: formatted,
	}})
}

func (s *Server) handleOnTypeFormatting(id *json.RawMessage, params json.RawMessage) error {
	var p onTypeFormattingParams
	if err := json.Unmarshal(params, &p); err != nil {
		return s.replyError(id, codeInvalidParams, "invalid params for onTypeFormatting")
	}
	src, ok := s.docs[p.TextDocument.URI]
	if !ok {
		return s.reply(id, nil)
	}

	edit, err := reindentLine(src, p.Position.Line, p.Options.indentOptions())
	if err != nil {
		if errors.Is(err, indent.ErrInvalidConfiguration) || errors.Is(err, text.ErrOutOfRange) {
			return s.replyError(id, codeInvalidParams, err.Error())
		}
		return s.replyError(id, codeInternalError, err.Error())
	}
	if edit == nil {
		return s.reply(id, []TextEdit{})
	}
	return s.reply(id, []TextEdit{*edit})
}

// reindentLine computes the edit that replaces the leading whitespace of
// line with the brace policy's indentation. It returns nil when the line is
// already indented correctly.
func reindentLine(src *text.Source, line int, opts indent.Options) (*TextEdit, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	ln, err := src.Line(line)
	if err != nil {
		return nil, err
	}
	result, err := policy.Braces{TabSize: opts.TabSize}.NewLine(src, ln.Start)
	if err != nil {
		return nil, err
	}
	want, err := indent.String(result, src, opts)
	if err != nil {
		return nil, err
	}

	have := indent.LeadingWhitespace(src.Text(ln))
	if have == want {
		return nil, nil
	}
	return &TextEdit{
		Range: Range{
			Start: Position{Line: line},
			End:   Position{Line: line, Character: len(have)},
		},
		NewText: want,
	}, nil
}

func (s *Server) reply(id *json.RawMessage, result interface{}) error {
	if id == nil {
		return nil
	}
	return writeMessage(s.out, responseMessage{
		JSONRPC: "2.0",
		ID:      decodeID(id),
		Result:  result,
	})
}

func (s *Server) replyError(id *json.RawMessage, code int, msg string) error {
	if id == nil {
		return nil
	}
	return writeMessage(s.out, errorMessage{
		JSONRPC: "2.0",
		ID:      decodeID(id),
		Error: respError{
			Code:    code,
			Message: msg,
		},
	})
}
