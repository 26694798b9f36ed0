package main

import (
	"context"
	"os"

	"github.com/dalemusser/aboutadmin/internal/cli"
)

func main() {
	if err := cli.Run(context.Background(), cli.NewRootCmd()); err != nil {
		os.Exit(1)
	}
}
