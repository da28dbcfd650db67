package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// Approver confirms destructive operations.
type Approver interface {
	// RequestApproval asks the operator to confirm an action on subject.
	RequestApproval(ctx context.Context, action, subject string) (bool, error)
}

// InteractiveApprover asks the operator to type the subject back.
type InteractiveApprover struct {
	in  io.Reader
	out io.Writer
}

// NewInteractiveApprover reads answers from in and writes prompts to out.
func NewInteractiveApprover(in io.Reader, out io.Writer) *InteractiveApprover {
	return &InteractiveApprover{in: in, out: out}
}

// RequestApproval prompts for subject and approves only an exact match.
func (a *InteractiveApprover) RequestApproval(ctx context.Context, action, subject string) (bool, error) {
	fmt.Fprintf(a.out, "\nWARNING: about to %s %s\n", action, subject)
	fmt.Fprintln(a.out, "All rows in it will be permanently deleted.")
	fmt.Fprintf(a.out, "\nTo confirm, type '%s' and press Enter: ", subject)

	inputChan := make(chan string, 1)
	errChan := make(chan error, 1)
	go func() {
		input, err := bufio.NewReader(a.in).ReadString('\n')
		if err != nil && input == "" {
			errChan <- err
			return
		}
		inputChan <- strings.TrimSpace(input)
	}()

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case err := <-errChan:
		return false, fmt.Errorf("failed to read input: %w", err)
	case input := <-inputChan:
		if input == subject {
			fmt.Fprintf(a.out, "%s Confirmed.\n", SymbolCheck)
			return true, nil
		}
		fmt.Fprintf(a.out, "%s Input '%s' does not match '%s'. Operation cancelled.\n", SymbolCross, input, subject)
		return false, nil
	}
}

// ForcedApprover approves everything; it backs --force.
type ForcedApprover struct {
	out io.Writer
}

func NewForcedApprover(out io.Writer) *ForcedApprover {
	return &ForcedApprover{out: out}
}

func (a *ForcedApprover) RequestApproval(ctx context.Context, action, subject string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	fmt.Fprintf(a.out, "--force given, proceeding to %s %s\n", action, subject)
	return true, nil
}

var (
	_ Approver = (*InteractiveApprover)(nil)
	_ Approver = (*ForcedApprover)(nil)
)
