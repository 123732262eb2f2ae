// Command pincheck is a terminal front-end for the pincode widget.
//
// Without flags it prompts for pincodes until interrupted. With -pincode it
// performs a single lookup and exits non-zero when the lookup did not succeed.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pincheck/internal/pincode/client"
	"pincheck/internal/pincode/service"
	"pincheck/internal/pincode/validation"
	"pincheck/internal/pincode/widget"
	"pincheck/internal/platform/config"
	"pincheck/internal/platform/logger"
	"pincheck/pkg/domain"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("pincheck", flag.ContinueOnError)
	pincode := fs.String("pincode", "", "look up a single pincode and exit")
	baseURL := fs.String("base-url", cfg.PostalAPIBaseURL, "postal API base URL")
	timeout := fs.Duration("timeout", cfg.PostalAPITimeout, "lookup timeout")
	logLevel := fs.String("log-level", "warn", "log level written to stderr")
	if err := fs.Parse(args); err != nil {
		return err
	}

	log := logger.NewWithWriter(os.Stderr, *logLevel)
	svc := service.New(client.New(*baseURL, *timeout), service.WithLogger(log))
	s := &session{
		widget: widget.New(domain.NewWidgetID(), svc,
			widget.WithLogger(log),
			widget.WithLookupTimeout(lookupBudget(*timeout)),
		),
		out: out,
	}

	if *pincode != "" {
		return single(ctx, s, *pincode)
	}
	return s.run(ctx, surveyPrompter{validate: validatePincode})
}

// single performs one lookup and reports any outcome other than success as an error.
func single(ctx context.Context, s *session, raw string) error {
	v, err := s.lookup(ctx, raw)
	if err != nil {
		return err
	}
	printView(s.out, v)
	if v.Invalid || v.Status != "" {
		return errors.New("lookup did not succeed")
	}
	return nil
}

func validatePincode(raw string) error {
	if res := validation.Validate(raw); !res.IsValid {
		return errors.New(res.Message)
	}
	return nil
}

// lookupBudget leaves the client timeout in charge and only guards against
// a lookup that never returns.
func lookupBudget(clientTimeout time.Duration) time.Duration {
	if clientTimeout <= 0 {
		return 0
	}
	return clientTimeout + time.Second
}
