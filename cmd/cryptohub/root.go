package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/whitekid/goxp/fx"
	"github.com/whitekid/goxp/log"

	"cryptohub"
	"cryptohub/client"
	v1 "cryptohub/client/v1"
	"cryptohub/inventory/types"
)

const (
	keyConfig               = "config"
	keyListen               = "listen"
	keyDatabaseURL          = "database_url"
	keyEndpoint             = "endpoint"
	keyExpiryHorizonDays    = "expiry_horizon_days"
	keyWeakPatterns         = "weak_algorithm_patterns"
	keyRotationEnvironments = "rotation_expected_environments"
	keyAWSRegion            = "aws_region"
	keyAWSProfile           = "aws_profile"
	keyAzureVaultURL        = "azure_vault_url"
	keyGCPProject           = "gcp_project"
	keyGCPLocation          = "gcp_location"
	keyGCPCredentialsFile   = "gcp_credentials_file"
)

var rootCmd = &cobra.Command{
	Use:           "cryptohub",
	Short:         "cryptographic key and certificate inventory",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	defaults := cryptohub.DefaultConfig()

	fs := rootCmd.PersistentFlags()
	fs.String(keyConfig, "", "config file (default ./cryptohub.yaml)")
	viper.BindPFlag(keyConfig, fs.Lookup(keyConfig))
	fs.String(keyEndpoint, defaults.Endpoint, "cryptohub server url")
	viper.BindPFlag(keyEndpoint, fs.Lookup(keyEndpoint))

	viper.SetDefault(keyListen, defaults.ListenAddr)
	viper.SetDefault(keyDatabaseURL, defaults.DatabaseURL)
	viper.SetDefault(keyExpiryHorizonDays, defaults.Classifier.ExpiryHorizonDays)
	viper.SetDefault(keyWeakPatterns, defaults.Classifier.WeakAlgorithmPatterns)
	viper.SetDefault(keyRotationEnvironments, fx.Map(defaults.Classifier.RotationExpectedEnvironments, func(e types.Environment) string { return e.String() }))
}

func initConfig() {
	viper.SetEnvPrefix("CRYPTOHUB")
	viper.AutomaticEnv()

	if name := viper.GetString(keyConfig); name != "" {
		viper.SetConfigFile(name)
	} else {
		viper.SetConfigName("cryptohub")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Errorf("fail to read config: %v", err)
		}
	}
}

// loadConfig config from flags, CRYPTOHUB_* environment and the config file, in that order
func loadConfig() (*cryptohub.Config, error) {
	cfg := cryptohub.DefaultConfig()
	cfg.ListenAddr = viper.GetString(keyListen)
	cfg.DatabaseURL = viper.GetString(keyDatabaseURL)
	cfg.Endpoint = viper.GetString(keyEndpoint)
	cfg.AWSRegion = viper.GetString(keyAWSRegion)
	cfg.AWSProfile = viper.GetString(keyAWSProfile)
	cfg.AzureVaultURL = viper.GetString(keyAzureVaultURL)
	cfg.GCPProject = viper.GetString(keyGCPProject)
	cfg.GCPLocation = viper.GetString(keyGCPLocation)
	cfg.GCPCredentialsFile = viper.GetString(keyGCPCredentialsFile)

	cfg.Classifier.ExpiryHorizonDays = viper.GetInt(keyExpiryHorizonDays)
	cfg.Classifier.WeakAlgorithmPatterns = viper.GetStringSlice(keyWeakPatterns)

	envs, err := parseEnvironments(viper.GetStringSlice(keyRotationEnvironments))
	if err != nil {
		return nil, err
	}
	cfg.Classifier.RotationExpectedEnvironments = envs

	return cfg, nil
}

func parseEnvironments(names []string) ([]types.Environment, error) {
	envs := make([]types.Environment, 0, len(names))
	for _, name := range names {
		env := types.StrToEnvironment(name)
		if env == types.EnvironmentNone {
			return nil, errors.Errorf("unknown environment: %s", name)
		}
		envs = append(envs, env)
	}
	return envs, nil
}

func newClient(cfg *cryptohub.Config) *v1.Client {
	return client.New(cfg.Endpoint).V1()
}
