package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/user"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/srivatsav-tech/hubspot-data/pkg/server"
	"github.com/srivatsav-tech/hubspot-data/pkg/services/analysis"
	"github.com/srivatsav-tech/hubspot-data/pkg/services/config"
	"github.com/srivatsav-tech/hubspot-data/pkg/services/hubspot"
	"github.com/srivatsav-tech/hubspot-data/pkg/services/pipeline"
	"github.com/srivatsav-tech/hubspot-data/pkg/services/scheduler"
	"github.com/srivatsav-tech/hubspot-data/pkg/store/duckdb"
	"github.com/srivatsav-tech/hubspot-data/pkg/store/duckdb/snapshot"
)

var (
	cfgPath string
	profile string
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the deal dashboard API server",
		RunE:  runServer,
	}

	usr, _ := user.Current()
	defaultPath := fmt.Sprintf("%s/.hubspotcfg", usr.HomeDir)

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", defaultPath,
		"Path to the .hubspotcfg file (default is $HOME/.hubspotcfg)")
	rootCmd.Flags().StringVarP(&profile, "profile", "p", "default",
		"Profile to read from the .hubspotcfg file")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("db_path", "hubspot-data.db")

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())

	catalog := pipeline.DefaultCatalog()

	db, err := duckdb.NewDB(duckdb.Settings{
		DbPath: v.GetString("db_path"),
	})
	if err != nil {
		return fmt.Errorf("failed to create DuckDB instance: %w", err)
	}

	snapshotStore, err := snapshot.NewStore(db)
	if err != nil {
		return fmt.Errorf("failed to create snapshot store: %w", err)
	}
	source := snapshot.NewSource(db, snapshotStore)

	analysisSvc := analysis.NewService(catalog, source)
	deps := server.Dependencies{
		Catalog:   catalog,
		Analysis:  analysisSvc,
		Snapshots: snapshotStore,
		Logger:    logger,
	}

	if token := resolveToken(ctx, v); token != "" {
		client, err := hubspot.NewClient(token)
		if err != nil {
			return fmt.Errorf("failed to create HubSpot client: %w", err)
		}
		extractor := hubspot.NewExtractor(client, catalog, source)
		deps.Refresher = extractor
		logger.Info().Msg("HubSpot credentials loaded, refresh endpoint enabled")

		if interval := v.GetDuration("REFRESH_INTERVAL"); interval > 0 {
			sched, err := scheduler.New(extractor, analysisSvc.InvalidateSnapshot, interval)
			if err != nil {
				return fmt.Errorf("failed to create refresh scheduler: %w", err)
			}
			if err := sched.Start(ctx); err != nil {
				return fmt.Errorf("failed to start refresh scheduler: %w", err)
			}
			defer sched.Stop()
			logger.Info().Dur("interval", interval).Msg("periodic snapshot refresh enabled")
		}
	} else {
		logger.Warn().Msg("no HubSpot credentials found, serving persisted snapshots only")
	}

	host := v.GetString("SERVER_HOST")
	port := v.GetString("SERVER_PORT")

	if host == "" || port == "" {
		logger.Error().Msgf("Missing server configuration from .env file")
		os.Exit(1)
	}

	api := server.NewWebAPI(server.Config{
		Addr:            net.JoinHostPort(host, port),
		ShutdownTimeout: 10 * time.Second,
		Dependencies:    deps,
	})

	return api.Start()
}

func resolveToken(ctx context.Context, v *viper.Viper) string {
	if token := v.GetString("HUBSPOT_TOKEN"); token != "" {
		return token
	}

	registry, err := config.NewRegistry(cfgPath)
	if err != nil {
		return ""
	}
	creds, err := registry.GetCredentials(ctx, profile)
	if err != nil {
		return ""
	}
	return creds.Token
}
