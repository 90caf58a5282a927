package cmd

import (
	"context"
	"encoding/json"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dealerlot/lotposter/config"
	"github.com/dealerlot/lotposter/database"
	"github.com/dealerlot/lotposter/display"
	"github.com/dealerlot/lotposter/handles"
	"github.com/dealerlot/lotposter/pipeline"
	"github.com/dealerlot/lotposter/publisher"
	"github.com/dealerlot/lotposter/service"
	"github.com/dealerlot/lotposter/storage"
	"github.com/dealerlot/lotposter/uploader"
)

func init() {
	rootCmd.AddCommand(serverCmd)
}

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Runs the lotposter media server",
	Long:  `Runs the lotposter media server`,
	Run: func(cmd *cobra.Command, args []string) {

		cfg := config.FromEnvfile()

		log.SetLevel(cfg.LogLevel)

		switch cfg.LogFormat {
		case config.LogFormatJSON:
			log.SetFormatter(&log.JSONFormatter{})
		default:
			log.SetFormatter(&log.TextFormatter{})
		}

		if cfg.TestModeEnabled {
			log.Info("TEST MODE ENABLED")
		}

		awsConfig, err := awsconfig.LoadDefaultConfig(context.Background())
		if err != nil {
			log.Fatal(err)
		}
		secretsManagerClient := secretsmanager.NewFromConfig(awsConfig)

		databaseURL := cfg.PostgresURL
		if databaseURL == "" {
			// Get the DB secrets from AWS Secrets Manager
			result, err := secretsManagerClient.GetSecretValue(context.Background(), &secretsmanager.GetSecretValueInput{SecretId: aws.String(cfg.PostgresSecretPath)})
			if err != nil {
				log.Fatal(err.Error())
			}
			var pgSecrets config.PostgresSecretData
			err = json.Unmarshal([]byte(*result.SecretString), &pgSecrets)
			if err != nil {
				log.Fatalf("postgres secrets read error: %v", err)
			}
			databaseURL = pgSecrets.ConnectionString
		}

		/*
			Graceful shutdown is possible with errgroup + signal.NotifyContext
			NotifyContext returns a context that will close on OS signals to terminate the process
			errgroup uses that context, and also closes it in case a goroutine errors out
		*/
		ctx, done := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGKILL)
		defer done()
		g, gCtx := errgroup.WithContext(ctx)

		db := database.NewDatabase(databaseURL)
		if err = db.Connect(gCtx); err != nil {
			log.Fatalf("error connecting to database: %v", err)
		}
		defer db.Disconnect()

		storageClient := storage.NewClient(
			s3.NewFromConfig(awsConfig),
			http.DefaultClient,
			cfg.Storage.Bucket,
			cfg.Storage.PublicBaseURL,
			cfg.Storage.UploadEndpoint,
		)

		tracker := handles.NewTracker(cfg.HandleReleaseGrace)
		defer tracker.Close()

		up := uploader.NewUploader(storageClient, db)

		credential, err := service.ResolvePlatformCredential(gCtx, cfg, secretsManagerClient)
		if err != nil {
			log.Fatalf("error resolving platform credential: %v", err)
		}
		backend := service.SelectBackend(cfg, credential)

		pub := publisher.NewPublisher(backend, db)

		resolver := display.NewResolver(http.DefaultClient, display.NewCache(), func(url string, err error) {
			log.WithField("url", url).Warnf("display fetch failed: %v", err)
		})

		mediaPipeline := pipeline.New(tracker, up, resolver, pub)

		var captionerService *service.CaptionerService
		if cfg.Captioner.SecretPath != "" {
			captionerService = service.NewCaptionerService(cfg, secretsManagerClient)
		}

		api := service.NewMediaAPI(8081, mediaPipeline, db, captionerService)

		healthchecker := service.NewHealthchecker(8080)

		g.Go(func() error {
			defer log.Info("exiting uploader")
			return up.Run(gCtx)
		})

		g.Go(func() error {
			if err := api.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gCtx.Done()
			defer log.Info("exiting media api")
			return api.Server.Shutdown(context.Background())
		})

		// For deployed instances, provide a basic healthcheck endpoint to show it's online
		g.Go(func() error {
			if err := healthchecker.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		})
		// ...and shut down the server if the service needs to terminate
		g.Go(func() error {
			<-gCtx.Done()
			defer log.Info("exiting healthchecker")
			return healthchecker.Server.Shutdown(context.Background())
		})

		err = g.Wait()
		if err != nil {
			log.Errorf("caught error: %v", err)
		}
	},
}
