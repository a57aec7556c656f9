// Command tienda runs the data access objects of the tienda database.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/vasari/tienda/internal/cli"
	"github.com/vasari/tienda/internal/redact"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := cli.NewRootCommand().ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", redact.Error(err))
	}
	stop()
	os.Exit(cli.GetExitCode(err))
}
