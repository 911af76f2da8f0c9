package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/thomaswlyons-a11y/Chestpain28012026/internal/cloudwriter"
	"github.com/thomaswlyons-a11y/Chestpain28012026/internal/models"
	"github.com/thomaswlyons-a11y/Chestpain28012026/internal/repositories/postgres"
	"github.com/thomaswlyons-a11y/Chestpain28012026/internal/simulator"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "chestpainsim",
	Short: "Simulates a biomarker-based chest pain triage pathway",
	Long: `chestpainsim is a CLI tool that simulates an emergency department
processing chest-pain patients through a troponin-based triage protocol, so a
planner can compare staffing and testing strategies by projected cost,
bed-blocking, and missed-diagnosis risk.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := models.LoadConfig(cfgFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		sim := simulator.NewSimulator(cfg)
		result, err := sim.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Simulation failed: %v\n", err)
			os.Exit(1)
		}

		report := simulator.GenerateCapacityPlan(cfg, result)
		fmt.Println(report)

		if cfg.Database.Enabled {
			persistRun(cfg, result)
		}
		if cfg.OutputDestination == "s3" && cfg.CloudStorage.BucketName != "" {
			uploadReport(cfg, result, report)
		}
	},
}

func persistRun(cfg *models.Config, result models.RunResult) {
	ctx := context.Background()
	repo, err := postgres.NewRunRepository(ctx, cfg.Database.DSN)
	if err != nil {
		log.Printf("Failed to connect to Postgres: %v", err)
		return
	}
	defer repo.Close()

	if err := repo.SaveRun(ctx, result); err != nil {
		log.Printf("Failed to persist run %s: %v", result.RunID, err)
		return
	}
	log.Printf("Run %s persisted to Postgres", result.RunID)
}

func uploadReport(cfg *models.Config, result models.RunResult, report string) {
	factory, err := cloudwriter.NewS3WriterFactory(cfg.CloudStorage.Region)
	if err != nil {
		log.Printf("Failed to create S3 writer: %v", err)
		return
	}
	objectPath := filepath.Join(cfg.OutputFolder, "reports", fmt.Sprintf("capacity_plan_%s.txt", result.RunID))
	if err := factory.UploadReport(cfg.CloudStorage.BucketName, objectPath, []byte(report)); err != nil {
		log.Printf("Failed to upload report: %v", err)
		return
	}
	log.Printf("Capacity plan uploaded to s3://%s/%s", cfg.CloudStorage.BucketName, objectPath)
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is examples/config.json)")

	rootCmd.Flags().Int64("seed", 42, "Random seed for simulation")
	rootCmd.Flags().Int("daily-census", 250, "Average daily ED attendances")
	rootCmd.Flags().Float64("chest-pain-pct", 10, "Percentage of attendances presenting with chest pain")
	rootCmd.Flags().Float64("acs-prevalence", 15, "Percentage of chest pain patients with true ACS")
	rootCmd.Flags().String("platform", models.PlatformCentralLab, "Troponin modality: central_lab or point_of_care")
	rootCmd.Flags().String("protocol", models.ProtocolESC, "Decision algorithm: esc or waterfall")
	rootCmd.Flags().Bool("use-single-sample", false, "Allow single-sample early discharge (waterfall only)")
	rootCmd.Flags().Int("rule-out-threshold", 5, "Rule out cutoff (ng/L)")
	rootCmd.Flags().Int("rule-in-threshold", 52, "Rule in cutoff (ng/L)")
	rootCmd.Flags().String("discharge-destination", "GP Surgery", "Low risk discharge destination")
	rootCmd.Flags().Float64("consultant-rate", 135, "Consultant cost (£/hr)")
	rootCmd.Flags().Float64("nurse-rate", 30, "Nurse cost (£/hr)")
	rootCmd.Flags().Bool("kafka-enabled", false, "Enable Kafka output")
	rootCmd.Flags().String("kafka-broker-list", "localhost:9092", "Kafka broker list")
	rootCmd.Flags().String("output-format", "", "Output format: csv, json or parquet")
	rootCmd.Flags().String("output-path", "", "Output base path (console output when empty)")
	rootCmd.Flags().String("output-folder", "output", "Output folder name")

	// flag names use dashes, config keys use underscores
	flagKeys := map[string]string{
		"seed":                  "seed",
		"daily-census":          "daily_census",
		"chest-pain-pct":        "chest_pain_pct",
		"acs-prevalence":        "acs_prevalence",
		"platform":              "platform",
		"protocol":              "protocol",
		"use-single-sample":     "use_single_sample",
		"rule-out-threshold":    "rule_out_threshold",
		"rule-in-threshold":     "rule_in_threshold",
		"discharge-destination": "discharge_destination",
		"consultant-rate":       "consultant_rate",
		"nurse-rate":            "nurse_rate",
		"kafka-enabled":         "kafka_enabled",
		"kafka-broker-list":     "kafka_broker_list",
		"output-format":         "output_format",
		"output-path":           "output_path",
		"output-folder":         "output_folder",
	}
	for flag, key := range flagKeys {
		viper.BindPFlag(key, rootCmd.Flags().Lookup(flag))
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
