package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"cryptohub/inventory/types"
	"cryptohub/pkg/helper"
)

func init() {
	var format string

	cmd := &cobra.Command{
		Use:   "ingest file|-",
		Short: "post a batch of canonical records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			batch, err := readBatch(args[0], format)
			if err != nil {
				return err
			}

			resp, err := newClient(cfg).Ingest(cmd.Context(), batch)
			if err != nil {
				return err
			}

			return helper.WriteJSON(os.Stdout, resp)
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "json or yaml (default by file extension, json for stdin)")
	rootCmd.AddCommand(cmd)
}

// readBatch read a JSON or YAML batch from filename, "-" for stdin
func readBatch(filename string, format string) (*types.Batch, error) {
	var r io.Reader = os.Stdin
	if filename != "-" {
		f, err := os.Open(filename)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	if format == "" {
		switch strings.ToLower(filepath.Ext(filename)) {
		case ".yaml", ".yml":
			format = "yaml"
		default:
			format = "json"
		}
	}

	var batch types.Batch
	switch format {
	case "json":
		if err := helper.ReadJSON(r, &batch); err != nil {
			return nil, errors.Wrapf(err, "invalid batch: %s", filename)
		}
	case "yaml":
		if err := helper.ReadYAML(r, &batch); err != nil {
			return nil, errors.Wrapf(err, "invalid batch: %s", filename)
		}
	default:
		return nil, errors.Errorf("unsupported format: %s", format)
	}

	return &batch, nil
}
