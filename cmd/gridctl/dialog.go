package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/okian/medalgrid/internal/grid"
)

// createInteractive runs the creation dialog on the terminal and creates the
// record it closes with.
func (c *cli) createInteractive(ctx context.Context, in io.Reader) error {
	ref := grid.NewDialogRef(grid.NewCreateForm())
	go promptDialog(in, c.out, ref)

	rec, ok := <-ref.AfterClosed()
	if !ok || rec == nil {
		return errCanceled
	}
	return c.submitCreate(ctx, *rec)
}

// promptDialog asks for every field, then again for each field in error,
// until the form submits. End of input cancels the dialog.
func promptDialog(in io.Reader, out io.Writer, ref *grid.DialogRef) {
	form := ref.Form()
	scanner := bufio.NewScanner(in)

	pending := form.Fields()
	for {
		for _, f := range pending {
			fmt.Fprintf(out, "%s: ", f.Label)
			if !scanner.Scan() {
				fmt.Fprintln(out)
				ref.Cancel()
				return
			}
			_ = form.Set(f.Name, strings.TrimSpace(scanner.Text()))
		}

		err := ref.Submit()
		if err == nil || !errors.Is(err, grid.ErrFormInvalid) {
			return
		}

		errs := form.Errors()
		pending = pending[:0]
		for _, f := range form.Fields() {
			if ferr, bad := errs[f.Name]; bad {
				fmt.Fprintf(out, "  %s: %v\n", f.Name, ferr)
				pending = append(pending, f)
			}
		}
	}
}
