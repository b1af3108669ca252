package main

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/bbernstein/chargeway/backend-go/internal/store"
)

const (
	targetS3     = "s3"
	targetDynamo = "dynamo"
)

func newSeedCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Manage the sample vehicle and station data",
	}

	var target string
	upload := &cobra.Command{
		Use:   "upload",
		Short: "Write the built-in sample dataset to S3 or DynamoDB",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}

			data := store.DefaultDataset(time.Now().UTC())
			ctx := cmd.Context()

			switch target {
			case targetS3:
				client, err := store.NewS3Client(ctx)
				if err != nil {
					return fmt.Errorf("s3 client: %w", err)
				}
				seed := store.NewS3Seed(client, cfg.SeedBucket, cfg.SeedKey, cfg.Cache.GetSeedTTL())
				if err := seed.Upload(ctx, data); err != nil {
					return err
				}
				log.Info().Str("bucket", cfg.SeedBucket).Str("key", cfg.SeedKey).Msg("Uploaded seed snapshot")

			case targetDynamo:
				client, err := store.NewDynamoClient(ctx)
				if err != nil {
					return fmt.Errorf("dynamodb client: %w", err)
				}
				st := store.NewDynamoStore(client, cfg.VehicleTable, cfg.StationTable, cfg.CurrentVehicleID)
				if err := st.Seed(ctx, data); err != nil {
					return err
				}
				log.Info().Str("vehicleTable", cfg.VehicleTable).Str("stationTable", cfg.StationTable).Msg("Seeded DynamoDB tables")

			default:
				return fmt.Errorf("unknown seed target %q (want %s or %s)", target, targetS3, targetDynamo)
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "seeded %d vehicle(s) and %d station(s) to %s\n", len(data.Vehicles), len(data.Stations), target)
			return err
		},
	}
	upload.Flags().StringVar(&target, "to", targetS3, "destination: s3 or dynamo")

	cmd.AddCommand(upload)
	return cmd
}
