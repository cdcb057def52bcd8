package main

import (
	"context"
	"log"
	"os"

	"github.com/eduflexsms/eduflex/core"
	logsvc "github.com/eduflexsms/eduflex/services/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	conf := core.NewConfig()

	zl, err := logsvc.NewZap(conf)
	if err != nil {
		log.Printf("setting up zap: %v", err)
		return 1
	}
	logger := logsvc.NewRollbarLogger(zl.Named("console"), conf)
	defer logger.Close()

	cli := newConsole(conf, logger, os.Stdin, os.Stdout)
	if err := cli.execute(context.Background(), os.Args[1:]); err != nil {
		return 1
	}
	return 0
}
