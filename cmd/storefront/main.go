// Package main contains the storefront command line client.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/pomerium/storefront/internal/log"
	"github.com/pomerium/storefront/pkg/apierror"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	c := newCLI(stdin, stdout, stderr)
	defer func() {
		if err := c.Close(); err != nil {
			log.Error().Err(err).Msg("cmd/storefront: shutdown")
		}
	}()

	root := c.command()
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, errorMessage(err))
		return 1
	}
	return 0
}

var errNotLoggedIn = errors.New("not logged in")

func errorMessage(err error) string {
	switch {
	case errors.Is(err, errNotLoggedIn):
		return "not logged in, run `storefront login`"
	case apierror.RequiresReauthentication(err):
		return "session expired, run `storefront login`"
	case apierror.KindOf(err) == apierror.KindServerError && apierror.StatusCode(err) == http.StatusUnauthorized:
		return "authentication required, run `storefront login`"
	}

	msg := "error: " + err.Error()
	var apiErr *apierror.Error
	if errors.As(err, &apiErr) {
		if s := apierror.Suggestion(err); s != "" {
			msg += "\n" + s
		}
	}
	return msg
}
