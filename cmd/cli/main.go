package main

import (
	"context"
	"os"

	"github.com/dmitrijs2005/entrelibros-auth/internal/client/cli"
)

func main() {
	app := cli.NewApp(os.Stdin, os.Stdout)
	os.Exit(app.Run(context.Background(), os.Args[1:]))
}
