// Package main provides the tablectl CLI, a small operational tool for
// single-entity operations against a table storage account.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/stratostore/go-tables/cache"
	"github.com/stratostore/go-tables/cache/redis"
	"github.com/stratostore/go-tables/config"
	"github.com/stratostore/go-tables/table"
	"github.com/stratostore/go-tables/transport"
)

var (
	// configFile is set by the --config flag.
	configFile string

	// jsonOutput switches get output to raw JSON.
	jsonOutput bool

	// client is the table client, initialized on startup.
	client *table.Client

	// cacheStore holds the retrieve cache when one is configured, so the
	// CLI can close it on exit.
	cacheStore cache.Cache

	// opTimeout bounds one operation including retries.
	opTimeout time.Duration
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "tablectl",
	Short: "tablectl operates on table storage entities",
	Long: `tablectl performs single-entity operations (insert, merge, replace,
delete, get) and table management against a table storage account.
Configuration comes from a YAML file and TABLES_-prefixed environment
variables.`,
	PersistentPreRunE: initClient,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeClient()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: environment only)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(insertCmd)
	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(replaceCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(createTableCmd)
	rootCmd.AddCommand(deleteTableCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("tablectl v0.1.0")
	},
}

// initClient loads configuration and wires the table client.
func initClient(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "version" {
		return nil
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := cfg.Log.NewLogger()

	signer, err := cfg.Account.Credential()
	if err != nil {
		return fmt.Errorf("build credential: %w", err)
	}

	engine := transport.NewEngine(cfg.Account.Endpoints(), signer, transport.WithLogger(log))

	opts := []table.ClientOption{
		table.WithLogger(log),
		table.WithDefaultOptions(table.RequestOptions{
			PayloadFormat: cfg.Client.PayloadFormat(),
			RetryPolicy:   cfg.Retry.RetryPolicy(),
			LocationMode:  table.Location(cfg.Client.LocationMode()),
		}),
	}

	if rc := cfg.Cache.RedisConfig(); rc != nil {
		store, err := redis.NewClient(rc)
		if err != nil {
			return fmt.Errorf("connect cache: %w", err)
		}
		cacheStore = store
		opts = append(opts, table.WithRetrieveCache(store, cfg.Cache.TTL))
	}

	client = table.NewClient(engine, opts...)
	opTimeout = cfg.Client.Timeout
	return nil
}

// closeClient releases the cache connection if one was opened.
func closeClient() error {
	if cacheStore != nil {
		return cacheStore.Close()
	}
	return nil
}

// opContext returns the bounded context for one operation.
func opContext() (context.Context, context.CancelFunc) {
	if opTimeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), opTimeout)
}
