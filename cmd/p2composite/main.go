package main

import (
	"context"
	"os"
	"os/signal"

	"p2composite/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := cli.Execute(ctx, cli.DefaultEnv(), os.Args[1:])
	stop()
	os.Exit(exitStatus(code))
}

// exitStatus maps codes above 255 to 1; POSIX keeps only the low byte, so
// 256 would otherwise report success.
func exitStatus(code int) int {
	if code > 255 {
		return 1
	}
	return code
}
