package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/tyler180/ff-weekly-stats/internal/app/statsload"
)

func main() {
	if os.Getenv("AWS_LAMBDA_RUNTIME_API") != "" {
		log.SetFlags(0)
		lambda.Start(statsload.LambdaEntrypoint)
		return
	}

	// local run: tuples on stdout, logs on stderr
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts, err := statsload.OptionsFromEnv()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if _, err := statsload.Run(ctx, opts, os.Stdout); err != nil {
		stop()
		log.Fatalf("ff-weekly-stats: %v", err)
	}
}
