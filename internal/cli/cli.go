package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/rulegridgo/internal/app"
	"github.com/vk/rulegridgo/internal/scheduler"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// stringList is a repeatable flag. Each value may also hold a comma-separated
// list.
type stringList []string

func (l *stringList) String() string {
	return strings.Join(*l, ",")
}

func (l *stringList) Set(v string) error {
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			*l = append(*l, part)
		}
	}
	return nil
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("rulegrid", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
RuleGrid - A rule-based validation engine for entity models.

Usage:
  rulegrid [options] [DOCUMENT_PATH...]

Arguments:
  DOCUMENT_PATH
    Path to a single .hcl file or a directory containing .hcl entity documents.

Options:
`)
		flagSet.PrintDefaults()
	}

	var documents, entities stringList
	flagSet.Var(&documents, "documents", "Path to an entity document file or directory. Repeatable.")
	flagSet.Var(&documents, "d", "Path to an entity document file or directory (shorthand).")
	flagSet.Var(&entities, "entity", "Identifier of an entity to validate. Repeatable; all entities when omitted.")
	rulesPathFlag := flagSet.String("rules-path", "", "Path to additional rule manifests.")
	taskFlag := flagSet.String("task", "VALIDATE", "Task whose rule units are run.")
	policyFlag := flagSet.String("policy", "strict", "Validation policy. Options: 'strict' (fail on warnings) or 'lax' (fail on errors).")
	workersFlag := flagSet.Int("workers", scheduler.DefaultWorkers, "Maximum number of rule units running at the same time for one entity.")
	unitTimeoutFlag := flagSet.Duration("unit-timeout", 0, "Time limit for a single rule unit, e.g. '2s'. 0 is unlimited.")
	ruleGraphFlag := flagSet.String("rule-graph", "", "Load a precomputed rule graph artifact instead of building it.")
	emitRuleGraphFlag := flagSet.String("emit-rule-graph", "", "Write the rule graph artifact to this path ('-' for stdout) and exit.")
	outputFlag := flagSet.String("output", "text", "Report format. Options: 'text' or 'yaml'.")
	healthPortFlag := flagSet.Int("healthcheck-port", 0, "Port for the HTTP health check and metrics server. 0 is disabled.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	paths := append([]string(nil), documents...)
	paths = append(paths, flagSet.Args()...)
	slog.Debug("Document paths determined.", "paths", paths)

	if len(paths) == 0 && *emitRuleGraphFlag == "" {
		slog.Debug("No document path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		DocumentPaths:   paths,
		RulesPath:       *rulesPathFlag,
		Task:            *taskFlag,
		Policy:          *policyFlag,
		Entities:        entities,
		WorkerCount:     *workersFlag,
		UnitTimeout:     *unitTimeoutFlag,
		RuleGraphPath:   *ruleGraphFlag,
		EmitRuleGraph:   *emitRuleGraphFlag,
		Output:          *outputFlag,
		LogFormat:       logFormat,
		LogLevel:        logLevel,
		HealthcheckPort: *healthPortFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
