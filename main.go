package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"fjacquet/extracto-ofx/cmd/batch"
	"fjacquet/extracto-ofx/cmd/convert"
	"fjacquet/extracto-ofx/cmd/preview"
	"fjacquet/extracto-ofx/cmd/profiles"
	"fjacquet/extracto-ofx/cmd/root"
	"fjacquet/extracto-ofx/cmd/serve"
	"fjacquet/extracto-ofx/internal/profile"
)

func init() {
	root.Init()

	root.Cmd.AddCommand(convert.NewSourceCmd(profile.BBVA, "BBVA"))
	root.Cmd.AddCommand(convert.NewSourceCmd(profile.Santander, "Santander"))
	root.Cmd.AddCommand(convert.NewSourceCmd(profile.Inversis, "Inversis"))
	root.Cmd.AddCommand(convert.Cmd)
	root.Cmd.AddCommand(preview.Cmd)
	root.Cmd.AddCommand(batch.Cmd)
	root.Cmd.AddCommand(profiles.Cmd)
	root.Cmd.AddCommand(serve.Cmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.Cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
