package cli

import (
	goerrors "errors"
	"fmt"
	"os"
	"strings"

	"github.com/AndreyAkinshin/testtask/internal/config"
	"github.com/AndreyAkinshin/testtask/internal/errors"
)

// cmdConfig handles configuration subcommands.
func cmdConfig(args []string, opts *GlobalOptions) int {
	if len(args) == 0 {
		out.ErrorPrefix("config: subcommand required (validate)")
		return errors.ExitConfigError
	}

	switch args[0] {
	case "validate":
		return cmdConfigValidate(opts)
	case "-h", "--help":
		printConfigUsage()
		return 0
	default:
		out.ErrorPrefix("config: unknown subcommand %q", args[0])
		return errors.ExitConfigError
	}
}

// cmdConfigValidate validates the --config file, or the discovered one.
// A missing file is an error here, unlike for runs where defaults apply.
func cmdConfigValidate(opts *GlobalOptions) int {
	path := opts.ConfigPath
	if path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			out.ErrorPrefix("%v", errors.Environment("cannot determine working directory", err))
			return errors.ExitEnvironmentError
		}
		path, err = config.Find(cwd)
		if goerrors.Is(err, config.ErrNotFound) {
			out.ErrorPrefix("config: no %s found in %s or its parents", strings.Join(config.FileNames, " or "), cwd)
			return errors.ExitConfigError
		}
		if err != nil {
			out.ErrorPrefix("%v", err)
			return errors.ExitConfigError
		}
	}

	cfg, warnings, err := config.LoadAndValidate(path)
	if err != nil {
		out.ErrorPrefix("%v", err)
		return errors.ExitConfigError
	}
	for _, w := range warnings {
		out.WarningSimple("%s", w)
	}

	out.ValidationSuccess("Configuration is valid.")
	out.SummaryItem("File", cfg.Path)
	out.SummaryItem("Packages", strings.Join(cfg.Packages, " "))
	out.SummaryItem("Summary", cfg.Summary)
	out.SummaryItem("Timeout", cfg.TimeoutDuration().String())
	if len(warnings) > 0 {
		out.SummaryItem("Warnings", fmt.Sprintf("%d", len(warnings)))
	}
	return 0
}

func printConfigUsage() {
	out.HelpTitle("testtask config - configuration utilities")
	out.HelpSection("Usage:")
	out.HelpUsage("testtask config validate [--config=<path>]")
	out.HelpSection("Commands:")
	out.HelpCommand("validate", "Check the config file against the schema and semantic rules", helpCommandWidth)
	out.HelpSection("Description:")
	out.Println("  Without --config, the nearest %s above the working", strings.Join(config.FileNames, ", "))
	out.Println("  directory is validated.")
	out.Println("")
}
