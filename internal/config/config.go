package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

const (
	MinListCount = 1
	MaxListCount = 10

	PhoneParserLib       = "libphonenumber"
	PhoneParserHeuristic = "heuristic"
)

// Stages enumerates the optional pipeline stages.
type Stages struct {
	NormalizeNames    bool `yaml:"normalize_names"`
	NormalizeCompany  bool `yaml:"normalize_company"`
	ValidateEmail     bool `yaml:"validate_email"`
	NormalizePhone    bool `yaml:"normalize_phone"`
	ExpandTitles      bool `yaml:"expand_titles"`
	InferLastName     bool `yaml:"infer_last_name"`
	DetectDuplicates  bool `yaml:"detect_duplicates"`
	SplitLists        bool `yaml:"split_lists"`
	ListCount         int  `yaml:"list_count"`
	ExcludeDuplicates bool `yaml:"exclude_duplicates"`
}

// AllStages enables every stage with the given list count.
func AllStages(listCount int) Stages {
	return Stages{
		NormalizeNames:   true,
		NormalizeCompany: true,
		ValidateEmail:    true,
		NormalizePhone:   true,
		ExpandTitles:     true,
		InferLastName:    true,
		DetectDuplicates: true,
		SplitLists:       true,
		ListCount:        listCount,
	}
}

type Config struct {
	LookupPath          string
	LookupFuzzyDistance int
	OutputDir           string
	PipelineConfigPath  string
	LogLevel            string

	WatchDir         string
	WatchIntervalSec int
	DropDuplicates   bool

	PhoneRegion string
	PhoneParser string

	Stages Stages

	// Extra entries merged over the built-in tables.
	Abbreviations     map[string]string
	DisposableDomains []string
}

// overlay is the YAML shape of PIPELINE_CONFIG. Absent keys keep env values.
type overlay struct {
	Stages            yaml.Node         `yaml:"stages"`
	PhoneRegion       string            `yaml:"phone_region"`
	PhoneParser       string            `yaml:"phone_parser"`
	LookupPath        string            `yaml:"lookup_path"`
	Abbreviations     map[string]string `yaml:"abbreviations"`
	DisposableDomains []string          `yaml:"disposable_domains"`
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		LookupPath:          getEnv("LOOKUP_PATH", ""),
		LookupFuzzyDistance: getEnvInt("LOOKUP_FUZZY_DISTANCE", 0),
		OutputDir:           getEnv("OUTPUT_DIR", filepath.Join(cwd, "out")),
		PipelineConfigPath:  getEnv("PIPELINE_CONFIG", ""),
		LogLevel:            getEnv("LOG_LEVEL", "info"),

		WatchDir:         getEnv("WATCH_DIR", filepath.Join(cwd, "inbox")),
		WatchIntervalSec: getEnvInt("WATCH_INTERVAL_SEC", 30),
		DropDuplicates:   getEnvBool("DROP_DUPLICATES", false),

		PhoneRegion: strings.ToUpper(getEnv("PHONE_REGION", "US")),
		PhoneParser: strings.ToLower(getEnv("PHONE_PARSER", PhoneParserLib)),

		Stages: Stages{
			NormalizeNames:    getEnvBool("NORMALIZE_NAMES", true),
			NormalizeCompany:  getEnvBool("NORMALIZE_COMPANY", true),
			ValidateEmail:     getEnvBool("VALIDATE_EMAIL", true),
			NormalizePhone:    getEnvBool("NORMALIZE_PHONE", true),
			ExpandTitles:      getEnvBool("EXPAND_TITLES", true),
			InferLastName:     getEnvBool("INFER_LAST_NAME", true),
			DetectDuplicates:  getEnvBool("DETECT_DUPLICATES", true),
			SplitLists:        getEnvBool("SPLIT_LISTS", true),
			ListCount:         getEnvInt("LIST_COUNT", 3),
			ExcludeDuplicates: getEnvBool("EXCLUDE_DUPLICATES", false),
		},
	}

	if cfg.PipelineConfigPath != "" {
		if err := cfg.applyFile(cfg.PipelineConfigPath); err != nil {
			return Config{}, err
		}
	}

	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	blob, err := os.ReadFile(path)
	if err != nil {
		return eris.Wrapf(err, "config: read %s", path)
	}
	var o overlay
	if err := yaml.Unmarshal(blob, &o); err != nil {
		return eris.Wrapf(err, "config: parse %s", path)
	}

	// Decoding into the populated struct keeps env values for absent keys.
	if o.Stages.Kind == yaml.MappingNode {
		if err := o.Stages.Decode(&c.Stages); err != nil {
			return eris.Wrapf(err, "config: stages in %s", path)
		}
	}

	if o.PhoneRegion != "" {
		c.PhoneRegion = strings.ToUpper(o.PhoneRegion)
	}
	if o.PhoneParser != "" {
		c.PhoneParser = strings.ToLower(o.PhoneParser)
	}
	if o.LookupPath != "" && c.LookupPath == "" {
		c.LookupPath = o.LookupPath
	}
	if len(o.Abbreviations) > 0 {
		c.Abbreviations = o.Abbreviations
	}
	c.DisposableDomains = append(c.DisposableDomains, o.DisposableDomains...)
	return nil
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env var: %s", name)
	}
	return nil
}

// ClampListCount forces n into the supported [1,10] range.
func ClampListCount(n int) int {
	if n < MinListCount {
		return MinListCount
	}
	if n > MaxListCount {
		return MaxListCount
	}
	return n
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(key, "")))
	if value == "" {
		return fallback
	}
	if value == "1" || value == "true" || value == "yes" || value == "on" {
		return true
	}
	if value == "0" || value == "false" || value == "no" || value == "off" {
		return false
	}
	return fallback
}
