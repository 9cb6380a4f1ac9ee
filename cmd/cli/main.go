package main

import (
	"context"
	"log"
	"os"

	"github.com/cipherdrop/cipherdrop/internal/buildinfo"
	"github.com/cipherdrop/cipherdrop/internal/client/cli"
	"github.com/cipherdrop/cipherdrop/internal/client/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := cli.NewApp(ctx, cfg)

	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}
