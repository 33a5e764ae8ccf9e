package suggest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"

	"github.com/bastiangx/tagcomplete/pkg/server"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
)

// ipcReply decodes both CompletionResponse and CompletionError messages.
type ipcReply struct {
	ID          string                        `msgpack:"id"`
	Suggestions []server.CompletionSuggestion `msgpack:"r"`
	Error       string                        `msgpack:"e"`
	Status      int                           `msgpack:"s"`
}

// IPCSource talks to a tag server running in IPC mode. Requests may overlap;
// replies are matched to callers by request id.
type IPCSource struct {
	limit int

	wmu sync.Mutex
	enc *msgpack.Encoder

	mu      sync.Mutex
	pending map[string]chan ipcReply
	err     error

	closer io.Closer
	cmd    *exec.Cmd
	done   chan struct{}
}

// NewIPCSource starts reading replies from r and writes requests to w.
func NewIPCSource(r io.Reader, w io.Writer, limit int) *IPCSource {
	s := &IPCSource{
		limit:   limit,
		enc:     msgpack.NewEncoder(w),
		pending: make(map[string]chan ipcReply),
		done:    make(chan struct{}),
	}
	go s.readLoop(msgpack.NewDecoder(r))
	return s
}

// SpawnIPC starts "path -ipc args..." and connects to its stdin/stdout.
func SpawnIPC(path string, limit int, args ...string) (*IPCSource, error) {
	cmd := exec.Command(path, append([]string{"-ipc"}, args...)...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to get stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to get stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", path, err)
	}
	log.Debugf("Spawned IPC server %s (pid %d)", path, cmd.Process.Pid)

	s := NewIPCSource(stdout, stdin, limit)
	s.closer = stdin
	s.cmd = cmd
	return s, nil
}

func (s *IPCSource) readLoop(dec *msgpack.Decoder) {
	defer close(s.done)
	for {
		var reply ipcReply
		if err := dec.Decode(&reply); err != nil {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			s.fail(err)
			return
		}
		if reply.ID == "" {
			continue
		}

		s.mu.Lock()
		ch, ok := s.pending[reply.ID]
		delete(s.pending, reply.ID)
		s.mu.Unlock()

		if ok {
			ch <- reply
		} else {
			log.Debugf("Dropping IPC reply for unknown request %s", reply.ID)
		}
	}
}

// fail records the stream error and releases every waiting caller.
func (s *IPCSource) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err == nil {
		s.err = err
	}
	for id, ch := range s.pending {
		close(ch)
		delete(s.pending, id)
	}
}

// Suggest implements Source.
func (s *IPCSource) Suggest(ctx context.Context, term string) ([]Item, error) {
	id := uuid.NewString()
	ch := make(chan ipcReply, 1)

	s.mu.Lock()
	if s.err != nil {
		err := s.err
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	s.pending[id] = ch
	s.mu.Unlock()

	s.wmu.Lock()
	err := s.enc.Encode(server.CompletionRequest{ID: id, Term: term, Limit: s.limit})
	s.wmu.Unlock()
	if err != nil {
		s.forget(id)
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}

	select {
	case <-ctx.Done():
		s.forget(id)
		return nil, ctx.Err()
	case reply, ok := <-ch:
		if !ok {
			return nil, fmt.Errorf("%w: ipc stream closed", ErrTransport)
		}
		if reply.Error != "" {
			return nil, fmt.Errorf("%w: server error %d: %s", ErrTransport, reply.Status, reply.Error)
		}
		items := make([]Item, 0, len(reply.Suggestions))
		for _, sg := range reply.Suggestions {
			items = append(items, Item{Label: sg.Label, Value: sg.Value})
		}
		return Normalize(items), nil
	}
}

func (s *IPCSource) forget(id string) {
	s.mu.Lock()
	delete(s.pending, id)
	s.mu.Unlock()
}

// Close closes the request stream and, for spawned servers, waits for the
// process to exit.
func (s *IPCSource) Close() error {
	var err error
	if s.closer != nil {
		err = s.closer.Close()
	}
	if s.cmd != nil {
		<-s.done
		if werr := s.cmd.Wait(); werr != nil && err == nil {
			err = werr
		}
	}
	return err
}
