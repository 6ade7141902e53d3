// internal/service/resolution/confirm.go

package resolution

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"playerpulse/internal/domain/player"
)

// AcceptAll confirms every candidate. It is the policy for API-triggered resolution.
var AcceptAll player.Confirmer = player.ConfirmFunc(func(context.Context, player.Player) (bool, error) {
	return true, nil
})

// PromptConfirmer asks a human to confirm each candidate on a terminal
type PromptConfirmer struct {
	mu  sync.Mutex
	in  *bufio.Reader
	out io.Writer
}

// NewPromptConfirmer creates a confirmer reading answers from in and writing prompts to out
func NewPromptConfirmer(in io.Reader, out io.Writer) *PromptConfirmer {
	return &PromptConfirmer{
		in:  bufio.NewReader(in),
		out: out,
	}
}

// Confirm prints the candidate and accepts it only on a "y" answer
func (c *PromptConfirmer) Confirm(ctx context.Context, candidate player.Player) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Fprintf(c.out, "\nFound: %s\n", candidate.Name)
	fmt.Fprintf(c.out, "  Team: %s\n", candidate.Team)
	fmt.Fprintf(c.out, "  Position: %s\n", candidate.Position)
	fmt.Fprint(c.out, "\nIs this the player? (y/n): ")

	answer, err := c.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("error reading confirmation: %w", err)
	}

	return strings.ToLower(strings.TrimSpace(answer)) == "y", nil
}
