// Command stockroom browses and manages warehouse records from the terminal.
//
// Usage:
//
//	stockroom                       Interactive tables (same as "stockroom tui")
//	stockroom login --token T ...   Store a session
//	stockroom logout                Forget the session
//	stockroom list <resource>       Print one page of a resource
//	stockroom export <resource>...  Export filtered records as CSV
//	stockroom delete <resource>     Batch delete by id
//	stockroom edit <resource> <id>  Patch one record
//	stockroom events                Show the activity journal
//	stockroom devserver             Run the fixture API locally
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "stockroom: %v\n", err)
		os.Exit(1)
	}
}

// run builds the command tree and executes it with args.
func run(ctx context.Context, args []string) error {
	c := &cli{}
	defer c.close()

	root := rootCmd(c)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}
