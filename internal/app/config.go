package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vk/rulegridgo/internal/gate"
	"github.com/vk/rulegridgo/internal/rule"
)

// Output formats for validation reports.
const (
	OutputText = "text"
	OutputYAML = "yaml"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	DocumentPaths []string // entity documents, hcl files or directories
	RulesPath     string   // extra rule manifests on top of the built-in modules

	Task     string
	Policy   string
	Entities []string // ids to validate; all entities when empty

	WorkerCount int
	UnitTimeout time.Duration

	RuleGraphPath string // precomputed rule graph artifact to load
	EmitRuleGraph string // write the rule graph artifact here and exit; "-" is the output writer

	Output          string
	LogFormat       string
	LogLevel        string
	HealthcheckPort int
}

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.DocumentPaths) == 0 && cfg.EmitRuleGraph == "" {
		return nil, errors.New("at least one document path is required")
	}
	if cfg.RuleGraphPath != "" && cfg.EmitRuleGraph != "" {
		return nil, errors.New("a precomputed rule graph cannot be emitted again; drop one of the two options")
	}

	if cfg.Task == "" {
		cfg.Task = string(rule.TaskValidate)
	}
	task, err := rule.ParseTask(cfg.Task)
	if err != nil {
		return nil, err
	}
	cfg.Task = string(task)

	if cfg.Policy == "" {
		cfg.Policy = string(gate.Strict)
	}
	policy, err := gate.ParsePolicy(cfg.Policy)
	if err != nil {
		return nil, err
	}
	cfg.Policy = string(policy)

	cfg.Output = strings.ToLower(cfg.Output)
	switch cfg.Output {
	case "":
		cfg.Output = OutputText
	case OutputText, OutputYAML:
	default:
		return nil, fmt.Errorf("invalid output format '%s': must be '%s' or '%s'", cfg.Output, OutputText, OutputYAML)
	}

	if cfg.WorkerCount < 0 {
		return nil, fmt.Errorf("worker count must not be negative, got %d", cfg.WorkerCount)
	}
	if cfg.UnitTimeout < 0 {
		return nil, fmt.Errorf("unit timeout must not be negative, got %s", cfg.UnitTimeout)
	}
	return &cfg, nil
}
