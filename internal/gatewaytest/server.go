// Package gatewaytest provides a mock TensorZero gateway for package tests.
// It serves configurable responses per path, speaks SSE for streaming
// inference, captures requests for assertions, and ships canned fixtures
// that mirror real gateway payloads.
package gatewaytest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// Server is a mock gateway backed by httptest.
type Server struct {
	server   *httptest.Server
	mu       sync.Mutex
	routes   map[string]*route
	requests []CapturedRequest
}

// route holds the reply sequence for one path.
type route struct {
	seq  []Response
	next int
}

// Response defines the reply for one path.
type Response struct {
	StatusCode int
	Body       any
	Delay      time.Duration
	Headers    map[string]string

	// StreamChunks, when non-empty, turns the reply into an SSE stream:
	// each entry becomes one data event, followed by [DONE].
	StreamChunks []string

	// StreamDelay is the pause between stream events.
	StreamDelay time.Duration

	// OmitDone suppresses the trailing [DONE] sentinel.
	OmitDone bool
}

// CapturedRequest records one request the server received.
type CapturedRequest struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

// JSON decodes the captured body into v.
func (r *CapturedRequest) JSON(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decoding captured request body: %w", err)
	}
	return nil
}

// NewServer starts a mock gateway. Callers must Close it.
func NewServer() *Server {
	s := &Server{
		routes: make(map[string]*route),
	}
	s.server = httptest.NewServer(http.HandlerFunc(s.handler))
	return s
}

// URL returns the mock gateway's base URL.
func (s *Server) URL() string {
	return s.server.URL
}

// Close shuts the server down.
func (s *Server) Close() {
	s.server.Close()
}

// SetResponse configures the reply for a path.
func (s *Server) SetResponse(path string, response Response) {
	s.SetResponseSequence(path, response)
}

// SetResponseSequence configures consecutive replies for a path, one per
// request; the last entry repeats once the sequence is exhausted.
func (s *Server) SetResponseSequence(path string, responses ...Response) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.routes[path] = &route{seq: responses}
}

// Requests returns a copy of all captured requests in arrival order.
func (s *Server) Requests() []CapturedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]CapturedRequest, len(s.requests))
	copy(out, s.requests)
	return out
}

// LastRequest returns the most recent captured request, or nil.
func (s *Server) LastRequest() *CapturedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.requests) == 0 {
		return nil
	}
	req := s.requests[len(s.requests)-1]
	return &req
}

// RequestCount returns the number of requests received.
func (s *Server) RequestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.requests)
}

// Reset drops captured requests and configured responses.
func (s *Server) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = nil
	s.routes = make(map[string]*route)
}

func (s *Server) handler(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	s.mu.Lock()
	s.requests = append(s.requests, CapturedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Header: r.Header.Clone(),
		Body:   body,
	})
	var response Response
	rt, ok := s.routes[r.URL.Path]
	if ok {
		response = rt.seq[rt.next]
		if rt.next < len(rt.seq)-1 {
			rt.next++
		}
	}
	s.mu.Unlock()

	if !ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprintf(w, `{"error":"no route for %s"}`, r.URL.Path)
		return
	}

	if response.Delay > 0 {
		time.Sleep(response.Delay)
	}

	for key, value := range response.Headers {
		w.Header().Set(key, value)
	}

	if len(response.StreamChunks) > 0 {
		s.handleStream(w, response)
		return
	}

	statusCode := response.StatusCode
	if statusCode == 0 {
		statusCode = http.StatusOK
	}
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(statusCode)

	if response.Body != nil {
		switch v := response.Body.(type) {
		case string:
			_, _ = w.Write([]byte(v))
		case []byte:
			_, _ = w.Write(v)
		default:
			_ = json.NewEncoder(w).Encode(response.Body)
		}
	}
}

// handleStream writes the configured chunks as server-sent events.
func (s *Server) handleStream(w http.ResponseWriter, response Response) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	delay := response.StreamDelay
	if delay == 0 {
		delay = 10 * time.Millisecond
	}

	for _, chunk := range response.StreamChunks {
		fmt.Fprintf(w, "data: %s\n\n", chunk)
		flusher.Flush()
		time.Sleep(delay)
	}

	if !response.OmitDone {
		fmt.Fprintf(w, "data: [DONE]\n\n")
		flusher.Flush()
	}
}
