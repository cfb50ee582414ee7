package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/platinummonkey/signup/pkg/catalog"
	"github.com/platinummonkey/signup/pkg/form"
	"github.com/platinummonkey/signup/pkg/submission"
	"github.com/platinummonkey/signup/pkg/wizard"
)

const prompt = "> "

// Session runs one wizard in a line oriented terminal
type Session struct {
	wizard *wizard.Wizard
	in     *bufio.Scanner
	out    io.Writer
}

// NewSession creates a Session reading commands from in
func NewSession(w *wizard.Wizard, in io.Reader, out io.Writer) *Session {
	return &Session{
		wizard: w,
		in:     bufio.NewScanner(in),
		out:    out,
	}
}

// Run loads the catalog and processes commands until the sign-up is
// confirmed, the user quits or the input ends. A failed load is returned.
func (s *Session) Run(ctx context.Context, loader catalog.Loader, gateway submission.Gateway) error {
	fmt.Fprintln(s.out, wizard.LoadingMessage)
	if err := s.wizard.Load(ctx, loader); err != nil {
		fmt.Fprintln(s.out, wizard.LoadFailedMessage)
		return err
	}

	for {
		view := s.wizard.View()
		render(s.out, view)
		if view.State == wizard.StateSubmitted {
			return nil
		}

		fmt.Fprint(s.out, prompt)
		if !s.in.Scan() {
			fmt.Fprintln(s.out)
			return s.in.Err()
		}

		quit, err := s.exec(ctx, gateway, strings.TrimSpace(s.in.Text()))
		if err != nil {
			fmt.Fprintf(s.out, "Error: %v\n", err)
		}
		if quit {
			return nil
		}
	}
}

// exec applies one command line
func (s *Session) exec(ctx context.Context, gateway submission.Gateway, line string) (bool, error) {
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	w := s.wizard

	switch strings.ToLower(name) {
	case "":
		return false, nil
	case "quit", "exit":
		return true, nil
	case "help":
		fmt.Fprint(s.out, helpText)
		return false, nil
	case "name":
		w.Touch(form.FieldName)
		return false, w.SetName(arg)
	case "email":
		w.Touch(form.FieldEmail)
		return false, w.SetEmail(arg)
	case "phone":
		w.Touch(form.FieldPhone)
		return false, w.SetPhone(arg)
	case "plan":
		return false, w.SelectPlan(catalog.ParseID(arg))
	case "yearly":
		return false, w.SetYearly(true)
	case "monthly":
		return false, w.SetYearly(false)
	case "toggle":
		return false, w.ToggleYearly()
	case "addon":
		return false, w.ToggleAddOn(catalog.ParseID(arg))
	case "back":
		return false, w.Back()
	case "change":
		return false, w.JumpTo(2)
	case "next", "confirm":
		if w.Step() == form.TotalSteps {
			fmt.Fprintln(s.out, wizard.ProcessingLabel)
			_, err := w.Submit(ctx, gateway)
			// Gateway failures are shown as the view message
			if err != nil && !isGatewayError(err) {
				return false, err
			}
			return false, nil
		}
		_, err := w.Next()
		return false, err
	default:
		return false, fmt.Errorf("unknown command %q, type help", name)
	}
}

func isGatewayError(err error) bool {
	var failure *submission.SubmissionError
	return submission.IsConflict(err) || errors.As(err, &failure)
}

const helpText = `Commands:
  name <value>    set your name
  email <value>   set your email address
  phone <value>   set your phone number
  plan <id>       select a plan
  yearly|monthly  choose the billing cycle
  toggle          switch the billing cycle
  addon <id>      select or deselect an add-on
  next|confirm    go to the next step, or confirm on the summary
  back            go to the previous step
  change          change the plan from the summary
  quit            leave without signing up
`
