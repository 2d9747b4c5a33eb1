package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vango-dev/wcdk/internal/publish"
)

func (a *app) publishCmd() *cobra.Command {
	var (
		bucket   string
		prefix   string
		endpoint string
		compile  bool
	)

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Upload the compiled bundle to S3",
		Long: `Upload bundle.cbor and manifest.json from the output directory to
an S3 bucket. Credentials are read from AWS_ACCESS_KEY_ID,
AWS_SECRET_ACCESS_KEY and AWS_SESSION_TOKEN.

Examples:
  wcdk publish --bucket=my-components
  wcdk publish --compile --prefix=v1.2.0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			if compile {
				if err := a.runCompile(ctx, "", "", false); err != nil {
					return err
				}
			}

			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			if bucket != "" {
				cfg.Publish.Bucket = bucket
			}
			if prefix != "" {
				cfg.Publish.Prefix = prefix
			}
			if endpoint != "" {
				cfg.Publish.Endpoint = endpoint
			}

			p, err := publish.New(publish.NewClient(cfg.Publish), cfg.Publish, a.logger(cfg))
			if err != nil {
				return err
			}
			result, err := p.Publish(ctx, cfg.OutputPath())
			if err != nil {
				return err
			}

			a.success("Published %d object(s) to s3://%s", len(result.Objects), result.Bucket)
			for _, o := range result.Objects {
				a.info("%-32s %8d bytes", o.Key, o.Size)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&bucket, "bucket", "b", "", "Destination bucket (default from wcdk.yaml)")
	cmd.Flags().StringVar(&prefix, "prefix", "", "Key prefix (default from wcdk.yaml)")
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "Custom S3 endpoint, for S3-compatible stores")
	cmd.Flags().BoolVar(&compile, "compile", false, "Compile before publishing")

	return cmd
}
