// Command contactform serves and renders the サンプル株式会社 contact form.
//
// Configuration is read from .contactform.yml (or --config), CONTACTFORM_*
// environment variables and flags, in increasing order of precedence.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(newApp()).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
