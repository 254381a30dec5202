package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/ochronus/gopuush/internal/app"
	"github.com/ochronus/gopuush/internal/config"
	"github.com/ochronus/gopuush/internal/fakepuush"
	"github.com/ochronus/gopuush/internal/services/puush"
	"github.com/ochronus/gopuush/internal/source"
	"github.com/ochronus/gopuush/internal/utils"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	thumbnailOutput string
	fakeAPIKey      string
	fakePremium     bool
)

var (
	idColor   = color.New(color.FgCyan, color.Bold)
	urlColor  = color.New(color.FgGreen)
	dimColor  = color.New(color.Faint)
	failColor = color.New(color.FgRed)
)

func runUpload(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	container, err := loadContainer(ctx)
	if err != nil {
		return err
	}

	failed := 0
	for _, ref := range args {
		src, err := source.Open(ref)
		if err != nil {
			failColor.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", ref, err)
			failed++
			continue
		}

		f, err := container.Account.Upload(ctx, src, src.Name())
		src.Close()
		if err != nil {
			failColor.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", ref, err)
			failed++
			continue
		}

		container.Logger.WithFields(logrus.Fields{"id": f.ID, "source": ref}).Info("Uploaded")
		urlColor.Fprintln(cmd.OutOrStdout(), f.URL)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d uploads failed", failed, len(args))
	}
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	container, err := loadContainer(ctx)
	if err != nil {
		return err
	}

	files, err := container.Account.History(ctx)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No uploads.")
		return nil
	}

	out := cmd.OutOrStdout()
	for _, f := range files {
		idColor.Fprintf(out, "%-8s", f.ID)
		dimColor.Fprintf(out, " %s ", f.UploadTime)
		fmt.Fprintf(out, "%5d views  ", f.Views)
		urlColor.Fprint(out, f.URL)
		fmt.Fprintf(out, "  %s\n", f.Filename)
	}
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	container, err := loadContainer(ctx)
	if err != nil {
		return err
	}

	var errs []error
	for _, id := range args {
		if err := container.Account.Delete(ctx, id); err != nil {
			failColor.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", id, err)
			errs = append(errs, err)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id)
	}
	return errors.Join(errs...)
}

func runThumbnail(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	container, err := loadContainer(ctx)
	if err != nil {
		return err
	}

	id := args[0]
	data, err := container.Account.Thumbnail(ctx, id)
	if err != nil {
		return err
	}

	output := thumbnailOutput
	if output == "" {
		output = id + ".png"
	}
	if err := os.WriteFile(output, data, 0644); err != nil {
		return fmt.Errorf("failed to write thumbnail: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d bytes)\n", output, len(data))
	return nil
}

func runLogin(cmd *cobra.Command, args []string) error {
	var opts []puush.Option
	if baseURL != "" {
		opts = append(opts, puush.WithBaseURL(baseURL))
	}
	_, err := utils.GetAPIKey(cmd.Context(), cmd.OutOrStdout(), email, password, opts...)
	return err
}

func runGenerateConfig(cmd *cobra.Command, args []string) error {
	return utils.GenerateConfig(cmd.Context(), cmd.OutOrStdout(), configPath, email, password, baseURL)
}

func runFakeServer(cmd *cobra.Command, args []string) error {
	cfg := config.DefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		loaded, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if err := cfg.FakeServer.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := app.BuildLogger(cfg.Loglevel)
	store := fakepuush.NewStore()
	key := store.AddUser(fakepuush.User{
		Email:    email,
		Password: password,
		APIKey:   fakeAPIKey,
		Premium:  fakePremium,
	})
	logger.Infof("Seeded account %s with API key %s", email, key)

	return fakepuush.NewServer(cfg.FakeServer, store, logger).StartWithContext(cmd.Context())
}
