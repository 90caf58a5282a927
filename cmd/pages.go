package cmd

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dealerlot/lotposter/config"
	"github.com/dealerlot/lotposter/graph"
	"github.com/dealerlot/lotposter/service"
)

func init() {
	rootCmd.AddCommand(pagesCmd)
}

var pagesCmd = &cobra.Command{
	Use:   "pages",
	Short: "Lists the pages the configured credential can post to",
	Long:  `Lists the pages the configured credential can post to`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.FromEnvfile()

		log.SetLevel(cfg.LogLevel)
		switch cfg.LogFormat {
		case config.LogFormatJSON:
			log.SetFormatter(&log.JSONFormatter{})
		default:
			log.SetFormatter(&log.TextFormatter{})
		}

		awsConfig, err := awsconfig.LoadDefaultConfig(context.Background())
		if err != nil {
			log.Panic(err)
		}
		secretsManagerClient := secretsmanager.NewFromConfig(awsConfig)

		credential, err := service.ResolvePlatformCredential(context.Background(), cfg, secretsManagerClient)
		if err != nil {
			log.Fatalf("error resolving platform credential: %v", err)
		}
		if credential == "" {
			log.Fatal("no platform credential configured")
		}

		client := graph.NewClient(cfg.Graph.ApiURL)
		pages, err := client.ListPages(context.Background(), credential)
		if err != nil {
			log.Fatalf("error listing pages: %v", err)
		}

		fmt.Printf("The credential can post to %d page(s):\n", len(pages))
		for _, page := range pages {
			fmt.Printf("id: %s\nname: %s\n", page.ID, page.Name)
		}
	},
}
