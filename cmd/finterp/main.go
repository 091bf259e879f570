// Command finterp reads finite interpretations and filters, canonicalizes,
// profiles, evaluates and prints them.
//
// Usage:
//
//	finterp isofilter [flags] [files...]
//	finterp canon [flags] [files...]
//	finterp filter -e 'all x (x * x = x)' [files...]
//
// Interpretations are read as a YAML (or JSON) document stream from the
// named files, or from stdin when no file is given.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
