package server

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// IPCServer answers msgpack completion requests read from a stream.
type IPCServer struct {
	svc    *Service
	dec    *msgpack.Decoder
	enc    *msgpack.Encoder
	served int
}

// NewIPCServer reads requests from r and writes replies to w.
// cmd/tagserve passes os.Stdin and os.Stdout.
func NewIPCServer(svc *Service, r io.Reader, w io.Writer) *IPCServer {
	return &IPCServer{
		svc: svc,
		dec: msgpack.NewDecoder(r),
		enc: msgpack.NewEncoder(w),
	}
}

// Start announces readiness and serves until the input stream ends.
// A clean EOF returns nil.
func (s *IPCServer) Start() error {
	log.Debug("Starting IPC server")

	if err := s.enc.Encode(StatusMessage{Status: "ready"}); err != nil {
		return err
	}

	for {
		var req CompletionRequest
		if err := s.dec.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) {
				log.Debugf("IPC input closed after %d requests", s.served)
				return nil
			}
			log.Errorf("Decoding request: %v", err)
			return err
		}
		if err := s.handleRequest(req); err != nil {
			log.Errorf("Writing response: %v", err)
			return err
		}
	}
}

func (s *IPCServer) handleRequest(req CompletionRequest) error {
	s.served++
	if req.ID == "" {
		return s.enc.Encode(CompletionError{Error: "missing 'id'", Status: http.StatusBadRequest})
	}

	start := time.Now()
	tags, err := s.svc.Complete(req.Term, req.Limit)
	if err != nil {
		log.Debugf("Rejected request %s: %v", req.ID, err)
		return s.enc.Encode(CompletionError{ID: req.ID, Error: err.Error(), Status: http.StatusBadRequest})
	}
	elapsed := time.Since(start)

	suggestions := make([]CompletionSuggestion, 0, len(tags))
	for _, t := range tags {
		suggestions = append(suggestions, CompletionSuggestion{Label: t.Name, Value: t.Name})
	}
	log.Debugf("Took [ %v ] for term '%s'", elapsed, req.Term)

	return s.enc.Encode(CompletionResponse{
		ID:          req.ID,
		Suggestions: suggestions,
		Count:       len(suggestions),
		TimeTaken:   elapsed.Microseconds(),
	})
}
