package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"cryptohub/collector/tlsscan"
	"cryptohub/inventory/normalizer"
	"cryptohub/pkg/helper"
)

var scanCmd *cobra.Command

func init() {
	scanCmd = &cobra.Command{
		Use:   "scan",
		Short: "discover on-premises certificates and keys",
	}
	rootCmd.AddCommand(scanCmd)
}

func init() {
	var dryRun bool
	var asset string

	cmd := &cobra.Command{
		Use:   "pem files...",
		Short: "normalize PEM encoded certificates and keys",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			n := normalizer.New()
			for _, filename := range args {
				bundle, err := readPEMBundle(filename, asset)
				if err != nil {
					return err
				}
				n.PEM(bundle)
			}

			return submit(cmd.Context(), cfg, n.Result(), dryRun)
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&asset, "asset", "", "asset the certificates are installed on (default file name)")
	fs.BoolVar(&dryRun, "dry-run", false, "print the batch instead of posting it")

	scanCmd.AddCommand(cmd)
}

// readPEMBundle the file modification time stands in for the key creation date
func readPEMBundle(filename string, asset string) (*normalizer.PEMBundle, error) {
	data, err := helper.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	bundle := &normalizer.PEMBundle{
		PEM:   data,
		Asset: asset,
	}
	if bundle.Asset == "" {
		bundle.Asset = filename
	}

	if fi, err := os.Stat(filename); err == nil {
		modified := fi.ModTime()
		bundle.CreationDate = &modified
	}

	return bundle, nil
}

func init() {
	var dryRun bool
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "tls host:port...",
		Short: "capture the certificates served by TLS endpoints",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			n := normalizer.New()
			if err := tlsscan.New(timeout).ScanAll(cmd.Context(), n, args...); err != nil && len(n.Result().Certificates) == 0 {
				return err
			}

			return submit(cmd.Context(), cfg, n.Result(), dryRun)
		},
	}

	fs := cmd.Flags()
	fs.DurationVar(&timeout, "timeout", tlsscan.DefaultTimeout, "connect and handshake timeout")
	fs.BoolVar(&dryRun, "dry-run", false, "print the batch instead of posting it")

	scanCmd.AddCommand(cmd)
}
