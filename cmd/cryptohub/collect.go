package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"cryptohub/collector/aws"
	"cryptohub/collector/azure"
	"cryptohub/collector/gcp"
	"cryptohub/inventory/normalizer"
)

var collectCmd *cobra.Command

func init() {
	collectCmd = &cobra.Command{
		Use:   "collect",
		Short: "discover keys and certificates in cloud providers",
	}
	rootCmd.AddCommand(collectCmd)
}

func init() {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "aws",
		Short: "collect KMS keys and ACM certificates",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			collector, err := aws.New(cmd.Context(), aws.Options{Region: cfg.AWSRegion, Profile: cfg.AWSProfile})
			if err != nil {
				return err
			}

			n := normalizer.New()
			if err := collector.Collect(cmd.Context(), n); err != nil {
				return err
			}

			return submit(cmd.Context(), cfg, n.Result(), dryRun)
		},
	}

	fs := cmd.Flags()
	fs.String(keyAWSRegion, aws.DefaultRegion, "aws region")
	fs.String(keyAWSProfile, "", "aws shared config profile")
	fs.BoolVar(&dryRun, "dry-run", false, "print the batch instead of posting it")
	viper.BindPFlag(keyAWSRegion, fs.Lookup(keyAWSRegion))
	viper.BindPFlag(keyAWSProfile, fs.Lookup(keyAWSProfile))

	collectCmd.AddCommand(cmd)
}

func init() {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "azure",
		Short: "collect Key Vault keys and certificates",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			collector, err := azure.New(cfg.AzureVaultURL)
			if err != nil {
				return err
			}

			n := normalizer.New()
			if err := collector.Collect(cmd.Context(), n); err != nil {
				return err
			}

			return submit(cmd.Context(), cfg, n.Result(), dryRun)
		},
	}

	fs := cmd.Flags()
	fs.String(keyAzureVaultURL, "", "key vault url, https://<vault>.vault.azure.net")
	fs.BoolVar(&dryRun, "dry-run", false, "print the batch instead of posting it")
	viper.BindPFlag(keyAzureVaultURL, fs.Lookup(keyAzureVaultURL))

	collectCmd.AddCommand(cmd)
}

func init() {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "gcp",
		Short: "collect Cloud KMS crypto keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			collector, closer, err := gcp.New(cmd.Context(), gcp.Options{
				Project:         cfg.GCPProject,
				Location:        cfg.GCPLocation,
				CredentialsFile: cfg.GCPCredentialsFile,
			})
			if err != nil {
				return err
			}
			defer closer()

			n := normalizer.New()
			if err := collector.Collect(cmd.Context(), n); err != nil {
				return err
			}

			return submit(cmd.Context(), cfg, n.Result(), dryRun)
		},
	}

	fs := cmd.Flags()
	fs.String(keyGCPProject, "", "gcp project id")
	fs.String(keyGCPLocation, gcp.DefaultLocation, "kms location")
	fs.String(keyGCPCredentialsFile, "", "service account key file (default application credentials)")
	fs.BoolVar(&dryRun, "dry-run", false, "print the batch instead of posting it")
	viper.BindPFlag(keyGCPProject, fs.Lookup(keyGCPProject))
	viper.BindPFlag(keyGCPLocation, fs.Lookup(keyGCPLocation))
	viper.BindPFlag(keyGCPCredentialsFile, fs.Lookup(keyGCPCredentialsFile))

	collectCmd.AddCommand(cmd)
}
