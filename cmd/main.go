package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ochronus/gopuush/internal/app"
	"github.com/ochronus/gopuush/internal/config"
	"github.com/spf13/cobra"
)

const version = "0.3.0"

var (
	configPath string
	email      string
	password   string
	baseURL    string
)

func main() {
	// Get default config path
	defaultConfigPath, err := config.DefaultConfigPath()
	if err != nil {
		defaultConfigPath = "./config.toml"
	}

	rootCmd := &cobra.Command{
		Use:           "gopuush",
		Short:         "puush client",
		Long:          "Command line client for the puush file hosting API: upload files, list history, fetch thumbnails and delete uploads.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath, "Path to config file")

	uploadCmd := &cobra.Command{
		Use:   "upload <path|uri>...",
		Short: "Upload local files or VFS URIs (file://, s3://, gs://, ...)",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runUpload,
	}

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List the most recent uploads",
		Args:  cobra.NoArgs,
		RunE:  runHistory,
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete uploads by id",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runDelete,
	}

	thumbnailCmd := &cobra.Command{
		Use:   "thumbnail <id>",
		Short: "Save the 100x100 PNG thumbnail of an upload",
		Args:  cobra.ExactArgs(1),
		RunE:  runThumbnail,
	}
	thumbnailCmd.Flags().StringVarP(&thumbnailOutput, "output", "o", "", "Output file (default <id>.png)")

	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with e-mail and password and print the API key",
		Args:  cobra.NoArgs,
		RunE:  runLogin,
	}
	addLoginFlags(loginCmd)

	generateConfigCmd := &cobra.Command{
		Use:   "generate-config",
		Short: "Log in and write a config file with the API key",
		Args:  cobra.NoArgs,
		RunE:  runGenerateConfig,
	}
	addLoginFlags(generateConfigCmd)

	fakeServerCmd := &cobra.Command{
		Use:   "fake-server",
		Short: "Run an in-memory puush API for local testing",
		Args:  cobra.NoArgs,
		RunE:  runFakeServer,
	}
	fakeServerCmd.Flags().StringVar(&email, "email", "test@example.com", "E-mail of the seeded account")
	fakeServerCmd.Flags().StringVar(&password, "password", "password", "Password of the seeded account")
	fakeServerCmd.Flags().StringVar(&fakeAPIKey, "api-key", "", "API key of the seeded account (generated if empty)")
	fakeServerCmd.Flags().BoolVar(&fakePremium, "premium", false, "Seed a premium account")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("gopuush version %s\n", version)
		},
	}

	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(thumbnailCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(generateConfigCmd)
	rootCmd.AddCommand(fakeServerCmd)
	rootCmd.AddCommand(versionCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func addLoginFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&email, "email", "", "Account e-mail")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "API root (default https://puush.me/api/)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
}

// loadContainer loads and validates the config, then authenticates.
func loadContainer(ctx context.Context) (*app.Container, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	container, err := app.NewContainer(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build container: %w", err)
	}
	return container, nil
}
