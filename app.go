package cryptohub

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
	"github.com/whitekid/goxp/log"

	"cryptohub/api/endpoints"
	v1 "cryptohub/api/v1"
	_ "cryptohub/docs"
	"cryptohub/inventory"
	"cryptohub/inventory/classifier"
	"cryptohub/pkg/helper"
	"cryptohub/pkg/metrics"
)

// Config hub and command line settings
type Config struct {
	ListenAddr  string `yaml:"listen"`
	DatabaseURL string `yaml:"database_url"` // empty keeps the inventory in memory
	Endpoint    string `yaml:"endpoint"`     // hub url used by the command line tools

	Classifier classifier.Config `yaml:"classifier"`

	AWSRegion  string `yaml:"aws_region"`
	AWSProfile string `yaml:"aws_profile"`

	AzureVaultURL string `yaml:"azure_vault_url"`

	GCPProject         string `yaml:"gcp_project"`
	GCPLocation        string `yaml:"gcp_location"`
	GCPCredentialsFile string `yaml:"gcp_credentials_file"`
}

func DefaultConfig() *Config {
	return &Config{
		ListenAddr:  "127.0.0.1:8000",
		DatabaseURL: "sqlite://cryptohub.db",
		Endpoint:    "http://127.0.0.1:8000",
		Classifier:  classifier.DefaultConfig(),
	}
}

// Run start the hub and block until ctx is done
func Run(ctx context.Context, cfg *Config) error {
	if _, err := classifier.New(cfg.Classifier); err != nil {
		return err
	}

	s, err := newStore(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer s.Close()

	e := newApp(inventory.New(s), cfg)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	log.Infof("cryptohub listening on %s", cfg.ListenAddr)
	return helper.StartEcho(ctx, e, cfg.ListenAddr)
}

func newStore(dburl string) (inventory.Store, error) {
	if dburl == "" {
		log.Infof("no database configured, inventory is kept in memory")
		return inventory.MemoryStore(), nil
	}

	return inventory.SQLStore(dburl)
}

func newApp(inv inventory.Interface, cfg *Config) *helper.Echo {
	e := helper.NewEcho()
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/metrics", metrics.Handler())

	endpoints.Route(e, v1.New(inv, cfg.Classifier))
	return e
}
