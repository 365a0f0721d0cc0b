package cmd

import (
	"fmt"
	"os"

	"github.com/nguyentranbao-ct/swipe-preview/internal/app"
	"github.com/nguyentranbao-ct/swipe-preview/internal/kafka"
	"github.com/nguyentranbao-ct/swipe-preview/internal/models"
	"github.com/nguyentranbao-ct/swipe-preview/internal/server"
	"github.com/nguyentranbao-ct/swipe-preview/pkg/logger"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "swipe-preview",
	Short:         "Swipe deck with AI product preview videos",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the deck API, the inference proxy and the snapshot consumer",
	RunE:  runServe,
}

var preloadFeed string

var preloadCmd = &cobra.Command{
	Use:   "preload",
	Short: "Generate a video for every product in a feed and print the result",
	RunE: func(cmd *cobra.Command, args []string) error {
		feed := models.Feed(preloadFeed)
		if !feed.Valid() {
			return fmt.Errorf("unknown feed %q", preloadFeed)
		}
		app.Invoke(app.Preload(feed, cmd.OutOrStdout())).Run()
		return nil
	},
}

var (
	generateFeed string
	generateID   string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the preview video of one product and print the outcome",
	RunE: func(cmd *cobra.Command, args []string) error {
		feed := models.Feed(generateFeed)
		if !feed.Valid() {
			return fmt.Errorf("unknown feed %q", generateFeed)
		}
		app.Invoke(app.Generate(feed, generateID, cmd.OutOrStdout())).Run()
		return nil
	},
}

func runServe(cmd *cobra.Command, args []string) error {
	app.Invoke(
		server.StartServer,
		kafka.StartConsumer,
	).Run()
	return nil
}

func init() {
	preloadCmd.Flags().StringVar(&preloadFeed, "feed", string(models.FeedPopular), "product feed to preload (popular|saved)")
	generateCmd.Flags().StringVar(&generateFeed, "feed", string(models.FeedPopular), "product feed holding the product (popular|saved)")
	generateCmd.Flags().StringVar(&generateID, "id", "", "product id")
	_ = generateCmd.MarkFlagRequired("id")
	rootCmd.AddCommand(serveCmd, preloadCmd, generateCmd)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logger.MustNamed("cmd").Errorw("command failed", "error", err)
		os.Exit(1)
	}
}
