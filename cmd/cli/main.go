package main

import (
	"context"
	"fmt"
	"os"
	"os/user"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/srivatsav-tech/hubspot-data/pkg/runtime/terminal"
	"github.com/srivatsav-tech/hubspot-data/pkg/services/analysis"
	"github.com/srivatsav-tech/hubspot-data/pkg/services/config"
	"github.com/srivatsav-tech/hubspot-data/pkg/services/hubspot"
	"github.com/srivatsav-tech/hubspot-data/pkg/services/pipeline"
	"github.com/srivatsav-tech/hubspot-data/pkg/store/csvfile"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("HUBSPOT")
	v.AutomaticEnv()
	v.SetDefault("snapshot_dir", "snapshots")
	v.SetDefault("profile", "default")

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	ctx := logger.WithContext(context.Background())

	catalog := pipeline.DefaultCatalog()

	columns := append(hubspot.ExtractionProperties(catalog),
		"last_contact_name", "last_contact_campaign")
	csvStore, err := csvfile.NewStore(v.GetString("snapshot_dir"), columns)
	if err != nil {
		return err
	}

	opts := terminal.Options{
		Catalog:   catalog,
		Analyzer:  analysis.NewService(catalog, csvStore),
		Snapshots: csvStore,
		Output:    os.Stdout,
	}

	if token := resolveToken(ctx, v); token != "" {
		client, err := hubspot.NewClient(token)
		if err != nil {
			return err
		}
		opts.Checker = client
		opts.Extractor = hubspot.NewExtractor(client, catalog, csvStore)
	}

	return terminal.NewCLI(opts).ExecuteContext(ctx)
}

// resolveToken prefers the HUBSPOT_TOKEN environment variable, then falls back
// to the selected profile of ~/.hubspotcfg. An empty result means the CLI runs
// in offline mode against persisted snapshots.
func resolveToken(ctx context.Context, v *viper.Viper) string {
	if token := v.GetString("token"); token != "" {
		return token
	}

	usr, err := user.Current()
	if err != nil {
		return ""
	}
	registry, err := config.NewRegistry(filepath.Join(usr.HomeDir, ".hubspotcfg"))
	if err != nil {
		return ""
	}
	creds, err := registry.GetCredentials(ctx, v.GetString("profile"))
	if err != nil {
		return ""
	}
	return creds.Token
}
