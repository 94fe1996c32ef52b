package main

import (
	"bytes"
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	v1 "cryptohub/client/v1"
	"cryptohub/pkg/helper"
	"cryptohub/workbook"
)

func init() {
	var format string
	var output string
	var horizon int

	cmd := &cobra.Command{
		Use:   "report",
		Short: "classify the inventory and print the report",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			client := newClient(cfg)

			var report *v1.Report
			if cmd.Flags().Changed("horizon") {
				report, err = client.Classify(cmd.Context(), &v1.ClassifyRequest{ExpiryHorizonDays: &horizon})
			} else {
				report, err = client.Report(cmd.Context())
			}
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			if err := writeReport(&buf, report, format); err != nil {
				return err
			}

			return helper.WriteFile(output, buf.Bytes(), 0644)
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&format, "format", "json", "json, yaml or xlsx")
	fs.StringVarP(&output, "output", "o", "-", "output file, - for stdout")
	fs.IntVar(&horizon, "horizon", 0, "expiry horizon in days (default server configuration)")

	rootCmd.AddCommand(cmd)
}

func writeReport(w io.Writer, report *v1.Report, format string) error {
	switch format {
	case "json":
		return helper.WriteJSON(w, report)
	case "yaml":
		return helper.WriteYAML(w, report)
	case "xlsx":
		return workbook.Write(w, report)
	default:
		return errors.Errorf("unsupported format: %s", format)
	}
}
