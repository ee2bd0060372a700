// Package cli handles cmd line input for DBG and testing the ranking live
package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bastiangx/histrank/pkg/suggest"
	"github.com/charmbracelet/log"
)

// InputHandler processes queries from stdin against one ranked corpus.
// It accepts bounds for query length, a cap on printed results, and
// the match mode to run under.
type InputHandler struct {
	sug         *suggest.Suggester
	minQueryLen int
	maxQueryLen int
	limit       int
	mode        suggest.Mode
}

// NewInputHandler handles initialization of the InputHandler with basic parameters
func NewInputHandler(sug *suggest.Suggester, minLength, maxLength, limit int, mode suggest.Mode) *InputHandler {
	return &InputHandler{
		sug:         sug,
		minQueryLen: minLength,
		maxQueryLen: maxLength,
		limit:       limit,
		mode:        mode,
	}
}

// Start begins the interface loop.
// It continuously prompts for input, reads a line from stdin,
// and passes the trimmed query to handleInput() for processing.
// Loop terminates if an error occurs while reading from stdin
func (h *InputHandler) Start() error {
	log.Print("histrank CLI [BETA]")
	log.Printf("%d commands ranked. type a query and press Enter (Ctrl+C to exit):", h.sug.Len())
	reader := bufio.NewReader(os.Stdin)

	for {
		log.Print("> ")
		query, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		query = strings.TrimSpace(query)
		if query == "" {
			continue
		}
		h.handleInput(query)
	}
}

// handleInput processes a single query. It validates the query's
// length, then asks the suggester for matching commands. Results are
// formatted and printed to the log, best rank first.
func (h *InputHandler) handleInput(query string) {
	if len(query) < h.minQueryLen {
		log.Errorf("Query too short: %s", query)
		return
	}

	if len(query) > h.maxQueryLen {
		log.Errorf("Query too long: %s", query)
		return
	}

	start := time.Now()
	log.Debug("Processing request for", "query", query)

	found := h.sug.Query(query, h.limit, h.mode)

	elapsed := time.Since(start)
	log.Debugf("Took [ %v ] for query '%s'", elapsed, query)

	if len(found) == 0 {
		log.Warnf("No commands found for query: '%s'", query)
		return
	}

	log.Printf("Found %d commands for query '%s' (%s):", len(found), query, h.mode)
	for i, s := range found {
		clCmd := fmt.Sprintf("\033[38;5;75m%s\033[0m", s.Text)
		log.Printf("%2d. %-50s (rank: %4d)", i+1, clCmd, s.Pos)
	}
}
