// Package cli holds the terminal front ends: the interactive tag field and a
// line based query prompt for debugging the suggestion server.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bastiangx/tagcomplete/pkg/server"
	"github.com/bastiangx/tagcomplete/pkg/terms"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

var tagStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))

// InputHandler reads field values line by line and prints the suggestions
// the server would return for the fragment being typed. Lines starting with
// "+" are recorded as submitted tags instead.
type InputHandler struct {
	svc          *server.Service
	limit        int
	out          io.Writer
	requestCount int
}

// NewInputHandler creates a prompt that writes to out.
func NewInputHandler(svc *server.Service, limit int, out io.Writer) *InputHandler {
	return &InputHandler{svc: svc, limit: limit, out: out}
}

// Start runs the prompt until in is exhausted.
func (h *InputHandler) Start(in io.Reader) error {
	fmt.Fprintln(h.out, "tagserve prompt: type a tag list, '+a, b' to record tags (Ctrl+D to exit)")
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(h.out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(h.out)
			return scanner.Err()
		}
		h.handleInput(scanner.Text())
	}
}

func (h *InputHandler) handleInput(line string) {
	h.requestCount++

	if rest, ok := strings.CutPrefix(line, "+"); ok {
		tags, err := h.svc.Record(context.Background(), rest)
		if err != nil {
			log.Errorf("Recording tags: %v", err)
			return
		}
		fmt.Fprintf(h.out, "recorded %d tags\n", len(tags))
		return
	}

	fragment := terms.ExtractLast(line)
	start := time.Now()
	tags, err := h.svc.Complete(fragment, h.limit)
	if err != nil {
		log.Errorf("Rejected '%s': %v", fragment, err)
		return
	}
	log.Debugf("Took [ %v ] for fragment '%s'", time.Since(start), fragment)

	if len(tags) == 0 {
		fmt.Fprintf(h.out, "no suggestions for '%s'\n", fragment)
		return
	}
	fmt.Fprintf(h.out, "%d suggestions for '%s':\n", len(tags), fragment)
	for i, t := range tags {
		fmt.Fprintf(h.out, "%2d. %-32s (uses: %d)\n", i+1, tagStyle.Render(t.Name), t.Uses)
		fmt.Fprintf(h.out, "    %s\n", terms.Merge(line, t.Name))
	}
}
