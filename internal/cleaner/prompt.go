package cleaner

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fenilsonani/stalesweep/internal/audit"
	"github.com/fenilsonani/stalesweep/internal/classifier"
	"github.com/fenilsonani/stalesweep/pkg/utils"
)

// Prompter asks the operator about each candidate.
// Answers: y(es), n(o), a(ll remaining), q(uit, decline the rest).
type Prompter struct {
	in  *bufio.Reader
	out io.Writer

	mu   sync.Mutex
	all  bool
	quit bool
}

// NewPrompter creates a Prompter reading answers from in
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{
		in:  bufio.NewReader(in),
		out: out,
	}
}

// Confirm implements ConfirmFunc
func (p *Prompter) Confirm(c classifier.Candidate) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.all {
		return true
	}
	if p.quit {
		return false
	}

	for {
		fmt.Fprintf(p.out, "Delete %s (%s, last written %s)? [y/n/a/q]: ",
			c.FullPath,
			utils.FormatBytes(c.SizeBytes),
			c.LastWriteTime.Format(audit.TimestampLayout))

		line, err := p.in.ReadString('\n')
		answer := strings.ToLower(strings.TrimSpace(line))

		switch answer {
		case "y", "yes":
			return true
		case "n", "no":
			return false
		case "a", "all":
			p.all = true
			return true
		case "q", "quit":
			p.quit = true
			return false
		}

		// End of input declines everything that is left
		if err != nil {
			fmt.Fprintln(p.out)
			p.quit = true
			return false
		}

		fmt.Fprintln(p.out, "Please answer y, n, a or q.")
	}
}
