package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/dmitrijs2005/otpsteward/internal/client/cli"
	"github.com/dmitrijs2005/otpsteward/internal/client/config"
)

func main() {

	args := os.Args[1:]
	cfg, err := config.LoadConfig(args)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app, err := cli.NewApp(cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	err = app.Run(context.Background(), args)
	_ = app.Close()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

}
