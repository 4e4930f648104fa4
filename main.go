package main

import (
	"context"
	"os"

	"github.com/ardnew/recline/cli"
	"github.com/ardnew/recline/log"
)

func main() {
	err := cli.Run(context.Background(), os.Exit, os.Args[1:]...)
	if err != nil {
		log.Error("run failed", log.Err(err)) // expanded through LogValue
		os.Exit(1)
	}
}
