package models

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Platform describes a troponin testing modality: what one test costs, how
// long the result takes, and how often a clinician is free when it lands.
type Platform struct {
	Name               string  `mapstructure:"name" json:"name"`
	UnitCost           float64 `mapstructure:"unit_cost" json:"unitCost"`
	TurnaroundTime     int     `mapstructure:"turnaround_time" json:"turnaroundTime"` // minutes
	AvailabilityChance float64 `mapstructure:"availability_chance" json:"availabilityChance"`
}

// Platforms holds the built-in modality presets.
var Platforms = map[string]Platform{
	PlatformCentralLab: {
		Name:               "Central Lab (High Sensitivity)",
		UnitCost:           5.00,
		TurnaroundTime:     90,
		AvailabilityChance: 0.35,
	},
	PlatformPointOfCare: {
		Name:               "Point of Care (POC)",
		UnitCost:           30.00,
		TurnaroundTime:     20,
		AvailabilityChance: 0.85,
	},
}

type CloudStorageConfig struct {
	Provider   string `mapstructure:"provider"`
	BucketName string `mapstructure:"bucket_name"`
	Region     string `mapstructure:"region"`
}

type DatabaseConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DSN     string `mapstructure:"dsn"`
}

type Config struct {
	Seed int64 `mapstructure:"seed"`

	// Department volume
	DailyCensus   int     `mapstructure:"daily_census"`
	ChestPainPct  float64 `mapstructure:"chest_pain_pct"`
	ACSPrevalence float64 `mapstructure:"acs_prevalence"`

	// Diagnostics strategy
	Platform        string `mapstructure:"platform"`
	Protocol        string `mapstructure:"protocol"`
	UseSingleSample bool   `mapstructure:"use_single_sample"`

	// Clinical thresholds (ng/L)
	RuleOutThreshold     int    `mapstructure:"rule_out_threshold"`
	RuleInThreshold      int    `mapstructure:"rule_in_threshold"`
	DischargeDestination string `mapstructure:"discharge_destination"`

	// Staff costs (£/hr)
	ConsultantRate float64 `mapstructure:"consultant_rate"`
	NurseRate      float64 `mapstructure:"nurse_rate"`

	// Output surface
	KafkaEnabled      bool               `mapstructure:"kafka_enabled"`
	KafkaBrokerList   string             `mapstructure:"kafka_broker_list"`
	OutputFormat      string             `mapstructure:"output_format"`
	OutputPath        string             `mapstructure:"output_path"`
	OutputFolder      string             `mapstructure:"output_folder"`
	OutputDestination string             `mapstructure:"output_destination"` // local | s3
	CloudStorage      CloudStorageConfig `mapstructure:"cloud_storage"`
	Database          DatabaseConfig     `mapstructure:"database"`
}

// LoadConfig initializes and reads the configuration using Viper
func LoadConfig(cfgFile string) (*Config, error) {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Default config location
		viper.AddConfigPath("examples")
		viper.SetConfigName("config")
		viper.SetConfigType("json")
	}

	viper.AutomaticEnv() // Read in environment variables that match

	if err := viper.ReadInConfig(); err != nil {
		// flags and env can fully describe a run; only a named file is required
		if cfgFile != "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	decoderConfigOption := viper.DecoderConfigOption(func(config *mapstructure.DecoderConfig) {
		config.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			config.DecodeHook,
			mapstructure.StringToSliceHookFunc(","),
		)
	})
	if err := viper.Unmarshal(&config, decoderConfigOption); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}

	config.Clamp()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Clamp forces the percentage inputs into [0,100]. The band partition then
// shrinks the Non-Cardiac band to zero width on its own when the prevalence
// pushes past 85; it never goes negative.
func (cfg *Config) Clamp() {
	cfg.ChestPainPct = clampPct(cfg.ChestPainPct)
	cfg.ACSPrevalence = clampPct(cfg.ACSPrevalence)
	if cfg.DailyCensus < 0 {
		cfg.DailyCensus = 0
	}
}

func clampPct(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func (cfg *Config) Validate() error {
	if _, ok := Platforms[cfg.Platform]; !ok {
		return fmt.Errorf("unknown platform %q", cfg.Platform)
	}
	switch cfg.Protocol {
	case ProtocolESC, ProtocolWaterfall:
	default:
		return fmt.Errorf("unknown protocol %q", cfg.Protocol)
	}
	return nil
}

// PlatformSettings resolves the configured modality preset.
func (cfg *Config) PlatformSettings() (Platform, error) {
	p, ok := Platforms[cfg.Platform]
	if !ok {
		return Platform{}, fmt.Errorf("unknown platform %q", cfg.Platform)
	}
	return p, nil
}

// DailyPatientCount is the expected chest-pain caseload for one 24h shift.
func (cfg *Config) DailyPatientCount() int {
	return int(float64(cfg.DailyCensus) * cfg.ChestPainPct / 100)
}

// Fingerprint hashes every setting that can change a run's outcome. Cached
// results carry it so a collaborator can refuse to present stale output.
func (cfg *Config) Fingerprint() string {
	payload := struct {
		Seed            int64   `json:"seed"`
		DailyCensus     int     `json:"dailyCensus"`
		ChestPainPct    float64 `json:"chestPainPct"`
		ACSPrevalence   float64 `json:"acsPrevalence"`
		Platform        string  `json:"platform"`
		Protocol        string  `json:"protocol"`
		UseSingleSample bool    `json:"useSingleSample"`
		RuleOut         int     `json:"ruleOut"`
		RuleIn          int     `json:"ruleIn"`
		Destination     string  `json:"destination"`
		ConsultantRate  float64 `json:"consultantRate"`
		NurseRate       float64 `json:"nurseRate"`
	}{
		cfg.Seed, cfg.DailyCensus, cfg.ChestPainPct, cfg.ACSPrevalence,
		cfg.Platform, cfg.Protocol, cfg.UseSingleSample,
		cfg.RuleOutThreshold, cfg.RuleInThreshold, cfg.DischargeDestination,
		cfg.ConsultantRate, cfg.NurseRate,
	}
	b, _ := json.Marshal(payload)
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
