// ABOUTME: RPC mode for editor integrations feeding the intent engine
// ABOUTME: JSONL-based protocol over an injected reader/writer (stdin/stdout in production)

package rpc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
)

// Server handles RPC requests from an external client. Responses and
// notifications share the writer, so writes are serialised.
type Server struct {
	reader  *bufio.Scanner
	handler func(Request) Response

	mu     sync.Mutex
	writer io.Writer
}

// NewServer creates an RPC server reading requests from r and writing
// responses and notifications to w.
func NewServer(r io.Reader, w io.Writer, handler func(Request) Response) *Server {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	return &Server{
		reader:  scanner,
		writer:  w,
		handler: handler,
	}
}

// Run serves requests until the reader is exhausted or ctx is cancelled.
// Cancellation is observed between lines; a blocked read returns only when
// the reader is closed.
func (s *Server) Run(ctx context.Context) error {
	for s.reader.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := s.reader.Bytes()
		if len(line) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			s.sendError("", NewParseError(fmt.Sprintf("parse error: %v", err)))
			continue
		}
		if req.Method == "" {
			s.sendError(req.ID, NewInvalidRequestError("missing method"))
			continue
		}

		resp := s.handler(req)
		resp.ID = req.ID

		data, err := json.Marshal(resp)
		if err != nil {
			s.sendError(req.ID, NewInternalError(fmt.Sprintf("internal error: %v", err)))
			continue
		}
		if err := s.writeLine(data); err != nil {
			return fmt.Errorf("writing response: %w", err)
		}
	}

	return s.reader.Err()
}

// Notify writes a notification line, a message with a method and no id.
func (s *Server) Notify(method string, params any) error {
	data, err := json.Marshal(Notification{Method: method, Params: params})
	if err != nil {
		return fmt.Errorf("marshal notification %s: %w", method, err)
	}
	if err := s.writeLine(data); err != nil {
		return fmt.Errorf("writing notification %s: %w", method, err)
	}
	return nil
}

func (s *Server) sendError(id string, e *Error) {
	data, _ := json.Marshal(Response{ID: id, Error: e})
	_ = s.writeLine(data)
}

func (s *Server) writeLine(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data = append(data, '\n')
	_, err := s.writer.Write(data)
	return err
}
