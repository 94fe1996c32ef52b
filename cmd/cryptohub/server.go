package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"cryptohub"
)

func init() {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "start cryptohub server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return cryptohub.Run(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()
	fs.String(keyListen, cryptohub.DefaultConfig().ListenAddr, "listen address")
	fs.String(keyDatabaseURL, cryptohub.DefaultConfig().DatabaseURL, "sqlite://, mysql:// or postgres:// url; empty for in-memory inventory")
	viper.BindPFlag(keyListen, fs.Lookup(keyListen))
	viper.BindPFlag(keyDatabaseURL, fs.Lookup(keyDatabaseURL))

	rootCmd.AddCommand(cmd)
}
