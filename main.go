package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/erikmagkekse/eks-manifest-resource/handler"
	"github.com/erikmagkekse/eks-manifest-resource/model"
	"github.com/erikmagkekse/eks-manifest-resource/server"

	"github.com/aws/aws-lambda-go/cfn"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	cmd := &cli.Command{
		Name:    model.AppName,
		Usage:   "CloudFormation custom resource that deploys a manifest to an EKS cluster",
		Version: version + " (" + commit + ")",
		Action:  runLambda,
		Commands: []*cli.Command{
			{
				Name:   "lambda",
				Usage:  "Start the AWS Lambda runtime loop (default)",
				Action: runLambda,
			},
			{
				Name:  "invoke",
				Usage: "Run a single CloudFormation event read from a JSON file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "event",
						Aliases:  []string{"e"},
						Usage:    "path to the event JSON, - for stdin",
						Required: true,
					},
				},
				Action: runInvoke,
			},
			{
				Name:  "serve",
				Usage: "Serve POST /invoke for local testing",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "addr",
						Value:   ":8080",
						Usage:   "listen address",
						Sources: cli.EnvVars("SERVE_ADDR"),
					},
				},
				Action: runServe,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal().Err(err).Msg("command failed")
	}
}

func loadConfig() (model.Config, error) {
	cfg, err := env.ParseAs[model.Config]()
	if err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}
	setupLogging(cfg)
	return cfg, nil
}

func setupLogging(cfg model.Config) {
	level := zerolog.InfoLevel
	if parsed, err := zerolog.ParseLevel(cfg.LogLevel); err == nil && cfg.LogLevel != "" {
		level = parsed
	}
	zerolog.SetGlobalLevel(level)

	if cfg.LogFormat == "console" {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Logger()
		return
	}
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
}

func runLambda(_ context.Context, _ *cli.Command) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log.Info().Str("version", version).Str("commit", commit).Msg("starting lambda runtime")

	lambda.Start(handler.LambdaFunction(handler.New(cfg, handler.Deps{}), cfg))
	return nil
}

func runInvoke(ctx context.Context, c *cli.Command) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	event, err := readEvent(c.String("event"))
	if err != nil {
		return err
	}

	// Without a ResponseURL the status report is captured locally and printed.
	var captured chan []byte
	if event.ResponseURL == "" {
		url, ch, stop, err := captureResponse()
		if err != nil {
			return err
		}
		defer stop()
		event.ResponseURL = url
		captured = ch
	}

	fn := handler.LambdaFunction(handler.New(cfg, handler.Deps{}), cfg)
	if _, err := fn(ctx, event); err != nil {
		return fmt.Errorf("send response: %w", err)
	}

	if captured != nil {
		_, err := os.Stdout.Write(append(<-captured, '\n'))
		return err
	}
	return nil
}

func runServe(ctx context.Context, c *cli.Command) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log.Info().Str("version", version).Str("commit", commit).Msg("starting local invoke server")

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fn := handler.LambdaFunction(handler.New(cfg, handler.Deps{}), cfg)
	return server.New(fn, version, commit).Run(ctx, c.String("addr"))
}

func readEvent(path string) (cfn.Event, error) {
	var event cfn.Event

	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return event, fmt.Errorf("open event: %w", err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	if err := json.NewDecoder(r).Decode(&event); err != nil {
		return event, fmt.Errorf("decode event: %w", err)
	}
	return event, nil
}

// captureResponse listens on loopback for the single PUT that cfn.LambdaWrap
// sends and hands its body back.
func captureResponse() (string, chan []byte, func(), error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, nil, fmt.Errorf("listen for response: %w", err)
	}

	ch := make(chan []byte, 1)
	srv := &http.Server{
		ReadHeaderTimeout: 5 * time.Second,
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			select {
			case ch <- body:
			default:
			}
			w.WriteHeader(http.StatusOK)
		}),
	}
	go func() { _ = srv.Serve(ln) }()

	return "http://" + ln.Addr().String() + "/response", ch, func() { _ = srv.Close() }, nil
}
