package main

import (
	"context"
	"os"
	"time"

	"github.com/whitekid/goxp/fx"
	"github.com/whitekid/goxp/log"

	"cryptohub"
	"cryptohub/inventory/normalizer"
	"cryptohub/pkg/helper"
)

const (
	submitRetries = 3
	submitBackoff = time.Second
)

// submit report normalization diagnostics and post the batch, or print it on dry run
func submit(ctx context.Context, cfg *cryptohub.Config, result *normalizer.Result, dryRun bool) error {
	fx.ForEach(result.Diagnostics, func(_ int, d *normalizer.Diagnostic) { log.Infof("%s", d.Error()) })

	batch := result.Batch()
	log.Infof("normalized %d keys and %d certificates, %d skipped", len(batch.Keys), len(batch.Certificates), len(result.Skipped()))

	if dryRun {
		return helper.WriteJSON(os.Stdout, batch)
	}

	resp, err := newClient(cfg).WithRetry(submitRetries, submitBackoff).Ingest(ctx, batch)
	if err != nil {
		return err
	}

	return helper.WriteJSON(os.Stdout, resp)
}
