// Command shopsheet manages the shop photo register: an HTTP server for the
// upload UI, plus put/list subcommands for direct use from the shell.
package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/javajack/shopsheet"
	"github.com/javajack/shopsheet/internal/webapp"
)

var (
	filePath    string
	widthPolicy string
	listFilter  string
	serveAddr   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "shopsheet",
		Short: "Maintain an xlsx register of shop photos",
		Long: `shopsheet keeps one row per (shop, region) in an xlsx file, with the
shop's photo embedded in the row and the cell sized to fit it.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&filePath, "file", "f",
		getEnv("SHOPSHEET_FILE", shopsheet.DefaultPath), "Backing xlsx file")
	rootCmd.PersistentFlags().StringVar(&widthPolicy, "width-policy", "grow",
		"Image column width policy: grow or matchLatest")

	putCmd := &cobra.Command{
		Use:   "put <shop-id> <region> <image-file>",
		Short: "Upsert one shop photo",
		Args:  cobra.ExactArgs(3),
		RunE:  runPut,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List persisted records",
		Args:  cobra.NoArgs,
		RunE:  runList,
	}
	listCmd.Flags().StringVar(&listFilter, "filter", "",
		`Filter expression, e.g. 'Region == "North"'`)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the upload and data-view API",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	serveCmd.Flags().StringVar(&serveAddr, "addr",
		getEnv("SHOPSHEET_ADDR", ":8080"), "Listen address")

	rootCmd.AddCommand(putCmd, listCmd, serveCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func engineOptions(logger *zap.Logger) ([]shopsheet.Option, error) {
	opts := []shopsheet.Option{
		shopsheet.WithPath(filePath),
		shopsheet.WithLogger(logger),
	}
	switch widthPolicy {
	case "grow":
		opts = append(opts, shopsheet.WithColumnWidthPolicy(shopsheet.WidthGrow))
	case "matchLatest":
		opts = append(opts, shopsheet.WithColumnWidthPolicy(shopsheet.WidthMatchLatest))
	default:
		return nil, fmt.Errorf("invalid width policy: %s (must be grow or matchLatest)", widthPolicy)
	}
	return opts, nil
}

func runPut(cmd *cobra.Command, args []string) error {
	logger, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer logger.Sync()

	opts, err := engineOptions(logger)
	if err != nil {
		return err
	}

	img, err := os.Open(args[2])
	if err != nil {
		return fmt.Errorf("open image: %w", err)
	}
	defer img.Close()

	res := shopsheet.Upsert(args[0], args[1], img, opts...)
	if !res.OK {
		return fmt.Errorf("upsert failed: %s", res.Message)
	}
	fmt.Printf("saved %s/%s at row %d (%dx%d, column width %.1f)\n",
		args[0], args[1], res.Row, res.Width, res.Height, res.ColumnWidth)
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	records, err := shopsheet.ListRecords(shopsheet.WithPath(filePath))
	if err != nil {
		return err
	}
	if listFilter != "" {
		records, err = shopsheet.FilterRecords(records, listFilter)
		if err != nil {
			return err
		}
	}
	for _, rec := range records {
		fmt.Printf("%s\t%s\t%s\n", rec.ShopID, rec.Region, rec.LastUpdated)
	}
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	logger, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer logger.Sync()

	opts, err := engineOptions(logger)
	if err != nil {
		return err
	}

	engine := shopsheet.NewEngine(opts...)
	server := webapp.NewServer(engine, logger)

	logger.Info("server starting",
		zap.String("addr", serveAddr), zap.String("file", filePath))
	return http.ListenAndServe(serveAddr, server.Handler())
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
