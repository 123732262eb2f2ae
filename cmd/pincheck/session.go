package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"

	"pincheck/internal/pincode/widget"
)

const promptMessage = "Enter pincode"

// errQuit ends the interactive loop without reporting a failure.
var errQuit = errors.New("quit")

// prompter asks the user for one pincode.
type prompter interface {
	Ask(ctx context.Context) (string, error)
}

// surveyPrompter reads pincodes from the terminal. validate runs on every
// answer so invalid input is rejected before it reaches the widget.
type surveyPrompter struct {
	validate func(raw string) error
}

func (p surveyPrompter) Ask(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var out string
	prompt := &survey.Input{
		Message: promptMessage,
		Help:    "Six numerical digits. Press Ctrl+C to quit.",
	}
	validator := func(ans interface{}) error {
		s, _ := ans.(string)
		return p.validate(s)
	}
	if err := survey.AskOne(prompt, &out, survey.WithValidator(validator)); err != nil {
		if errors.Is(err, terminal.InterruptErr) || errors.Is(err, io.EOF) {
			return "", errQuit
		}
		return "", err
	}
	return out, nil
}

// session drives one widget from a terminal.
type session struct {
	widget *widget.Widget
	out    io.Writer
}

// lookup types raw into the widget, submits it and waits for the outcome.
func (s *session) lookup(ctx context.Context, raw string) (widget.View, error) {
	s.widget.Input(raw)
	v := s.widget.Submit(ctx)
	if !v.Loading {
		return v, nil
	}
	fmt.Fprintln(s.out, v.Status)
	if err := s.widget.Await(ctx); err != nil {
		return widget.View{}, err
	}
	return s.widget.View(), nil
}

// run prompts until the user quits or ctx ends.
func (s *session) run(ctx context.Context, p prompter) error {
	for {
		raw, err := p.Ask(ctx)
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			return err
		}
		v, err := s.lookup(ctx, raw)
		if err != nil {
			return err
		}
		printView(s.out, v)
	}
}

// printView writes the non-empty view regions, one per line.
func printView(out io.Writer, v widget.View) {
	var b strings.Builder
	if v.ErrorMessage != "" {
		fmt.Fprintf(&b, "error: %s\n", v.ErrorMessage)
	}
	if v.Status != "" {
		fmt.Fprintln(&b, v.Status)
	}
	if v.Results != "" {
		fmt.Fprintln(&b, v.Results)
	}
	if v.Delivery != "" {
		fmt.Fprintln(&b, v.Delivery)
	}
	for _, po := range v.PostOffices {
		fmt.Fprintf(&b, "  %-30s %-15s %-12s %s, %s\n", po.Name, po.BranchType, po.DeliveryStatus, po.District, po.State)
	}
	_, _ = io.WriteString(out, b.String())
}
