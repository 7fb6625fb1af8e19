package cli

import (
	"fmt"
	"strings"

	"github.com/AndreyAkinshin/testtask/internal/diag"
	"github.com/AndreyAkinshin/testtask/internal/errors"
	"github.com/AndreyAkinshin/testtask/internal/summary"
)

// cmdCompletion generates shell completion scripts.
func cmdCompletion(args []string) int {
	shell := ""
	alias := ""

	// Parse arguments
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "-h" || arg == "--help":
			printCompletionUsage()
			return 0
		case strings.HasPrefix(arg, "--alias="):
			alias = strings.TrimPrefix(arg, "--alias=")
		case arg == "--alias":
			out.ErrorPrefix("completion: --alias requires a value (--alias=<name>)")
			return errors.ExitConfigError
		case strings.HasPrefix(arg, "-"):
			out.ErrorPrefix("completion: unknown flag: %s", arg)
			printCompletionUsage()
			return errors.ExitConfigError
		default:
			if shell != "" {
				out.ErrorPrefix("completion: unexpected argument: %s", arg)
				return errors.ExitConfigError
			}
			shell = arg
		}
	}

	if shell == "" {
		out.ErrorPrefix("completion: shell required (bash, zsh, fish)")
		printCompletionUsage()
		return errors.ExitConfigError
	}

	cmdName := "testtask"
	if alias != "" {
		cmdName = alias
	}

	switch shell {
	case "bash":
		out.Print("%s", generateBashCompletion(cmdName))
	case "zsh":
		out.Print("%s", generateZshCompletion(cmdName))
	case "fish":
		out.Print("%s", generateFishCompletion(cmdName))
	default:
		out.ErrorPrefix("completion: unsupported shell %q (use bash, zsh, or fish)", shell)
		return errors.ExitConfigError
	}

	return 0
}

// printCompletionUsage prints the help text for the completion command.
func printCompletionUsage() {
	out.HelpTitle("testtask completion - generate shell completion scripts")

	out.HelpSection("Usage:")
	out.HelpUsage("testtask completion <shell> [--alias=<name>]")

	out.HelpSection("Arguments:")
	out.HelpFlag("<shell>", "Shell type: bash, zsh, or fish", 10)

	out.HelpSection("Options:")
	out.HelpFlag("--alias=<name>", "Generate completion for command alias", 14)
	out.HelpFlag("-h, --help", "Show this help", 14)

	out.HelpSection("Examples:")
	out.HelpExample("testtask completion bash", "Generate bash completion")
	out.HelpExample("testtask completion zsh", "Generate zsh completion")
	out.HelpExample("testtask completion fish", "Generate fish completion")
	out.HelpExample("testtask completion bash --alias=tt", "Generate bash completion for alias 'tt'")

	out.HelpSection("Installation:")
	out.Println("  Bash:  eval \"$(testtask completion bash)\"")
	out.Println("  Zsh:   eval \"$(testtask completion zsh)\"")
	out.Println("  Fish:  testtask completion fish | source")
	out.Println("")
}

type completionItem struct {
	name string
	desc string
}

// builtinCommands returns the CLI commands with their descriptions.
func builtinCommands() []completionItem {
	return []completionItem{
		{"run", "Run tests"},
		{"replay", "Replay recorded go test -json output"},
		{"config", "Configuration utilities"},
		{"completion", "Generate shell completion"},
		{"version", "Show version information"},
		{"help", "Show help"},
	}
}

// globalFlags returns the long global CLI flags.
func globalFlags() []completionItem {
	return []completionItem{
		{"--list", "List matching tests"},
		{"--summary", "Itemize results"},
		{"--timeout", "Maximum wait for the run"},
		{"--package", "Package pattern to test"},
		{"--config", "Config file path"},
		{"--report", "Write a run report"},
		{"--log-level", "Diagnostics level"},
		{"--log-json", "JSON diagnostics"},
		{"--quiet", "Warnings and errors only"},
		{"--verbose", "Trace every test event"},
		{"--help", "Show help"},
		{"--version", "Show version"},
	}
}

func names(items []completionItem) []string {
	result := make([]string, 0, len(items))
	for _, item := range items {
		result = append(result, item.name)
	}
	return result
}

func aliasNote(cmdName, hint string) string {
	if cmdName == "testtask" {
		return fmt.Sprintf(`
# Alias support:
# If you use an alias (e.g., alias tt="testtask"), add completion for it:
#   %s
`, hint)
	}
	return fmt.Sprintf(`
# This completion is generated for the alias "%s"
# Make sure you have the alias defined: alias %s="testtask"
`, cmdName, cmdName)
}

func generateBashCompletion(cmdName string) string {
	// Generate function name from command (replace - with _)
	funcName := "_" + strings.ReplaceAll(cmdName, "-", "_") + "_completions"

	return fmt.Sprintf(`# testtask bash completion
# Add to ~/.bashrc: eval "$(testtask completion bash)"
%s
%s() {
    local cur prev words cword
    _init_completion || return

    local commands="%s"
    local flags="%s"

    case "${prev}" in
        config)
            COMPREPLY=($(compgen -W "validate" -- "${cur}"))
            return
            ;;
        completion)
            COMPREPLY=($(compgen -W "bash zsh fish" -- "${cur}"))
            return
            ;;
        -s|--summary)
            COMPREPLY=($(compgen -W "%s" -- "${cur}"))
            return
            ;;
        --log-level)
            COMPREPLY=($(compgen -W "%s" -- "${cur}"))
            return
            ;;
        --config|--report|replay)
            _filedir
            return
            ;;
        -t|--timeout|-p|--package)
            return
            ;;
    esac

    if [[ "${cur}" == -* ]]; then
        COMPREPLY=($(compgen -W "${flags}" -- "${cur}"))
        return
    fi

    if [[ ${cword} -eq 1 ]]; then
        COMPREPLY=($(compgen -W "${commands}" -- "${cur}"))
    fi
}

complete -F %s %s
`, aliasNote(cmdName, "complete -F _testtask_completions tt"), funcName,
		strings.Join(names(builtinCommands()), " "), strings.Join(names(globalFlags()), " "),
		strings.Join(summary.ModeNames(), " "), strings.Join(diag.LevelNames(), " "),
		funcName, cmdName)
}

func generateZshCompletion(cmdName string) string {
	// Generate function name from command (replace - with _)
	funcName := "_" + strings.ReplaceAll(cmdName, "-", "_")

	var commands strings.Builder
	for _, c := range builtinCommands() {
		fmt.Fprintf(&commands, "        '%s:%s'\n", c.name, c.desc)
	}

	return fmt.Sprintf(`#compdef %s
# testtask zsh completion
# Add to ~/.zshrc: eval "$(testtask completion zsh)"
%s
%s() {
    local -a commands flags

    commands=(
%s    )

    flags=(
        '(-l --list)'{-l,--list}'[List matching tests]'
        '(-s --summary)'{-s,--summary=}'[Itemize results]:mode:(%s)'
        '(-t --timeout)'{-t,--timeout=}'[Maximum wait for the run]:duration:'
        '*'{-p,--package=}'[Package pattern to test]:pattern:'
        '--config=[Config file path]:file:_files'
        '--report=[Write a run report]:file:_files'
        '--log-level=[Diagnostics level]:level:(%s)'
        '--log-json[JSON diagnostics]'
        '(-q --quiet -v --verbose)'{-q,--quiet}'[Warnings and errors only]'
        '(-q --quiet -v --verbose)'{-v,--verbose}'[Trace every test event]'
        '--help[Show help]'
        '--version[Show version]'
    )

    if (( CURRENT == 2 )); then
        _describe -t commands 'command' commands
        _arguments -s $flags[@]
        return
    fi

    case "${words[2]}" in
        config)
            _values 'config subcommand' 'validate[Validate configuration]'
            ;;
        completion)
            _values 'shell' bash zsh fish
            ;;
        replay)
            _arguments -s $flags[@] '--counts[Print result counts]' '*:file:_files'
            ;;
        *)
            _arguments -s $flags[@]
            ;;
    esac
}

compdef %s %s
`, cmdName, aliasNote(cmdName, "compdef _testtask tt"), funcName, commands.String(),
		strings.Join(summary.ModeNames(), " "), strings.Join(diag.LevelNames(), " "),
		funcName, cmdName)
}

func generateFishCompletion(cmdName string) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`# testtask fish completion
# Add to config: testtask completion fish | source
%s
# Disable file completion by default
complete -c %s -f

`, aliasNote(cmdName, "complete -c tt -w testtask"), cmdName))

	for _, c := range builtinCommands() {
		sb.WriteString(fmt.Sprintf("complete -c %s -n '__fish_use_subcommand' -a '%s' -d '%s'\n", cmdName, c.name, c.desc))
	}

	sb.WriteString("\n# Global flags\n")
	sb.WriteString(fmt.Sprintf("complete -c %s -s l -l list -d 'List matching tests'\n", cmdName))
	sb.WriteString(fmt.Sprintf("complete -c %s -s s -l summary -d 'Itemize results' -xa '%s'\n", cmdName, strings.Join(summary.ModeNames(), " ")))
	sb.WriteString(fmt.Sprintf("complete -c %s -s t -l timeout -d 'Maximum wait for the run' -x\n", cmdName))
	sb.WriteString(fmt.Sprintf("complete -c %s -s p -l package -d 'Package pattern to test' -x\n", cmdName))
	sb.WriteString(fmt.Sprintf("complete -c %s -l config -d 'Config file path' -r -F\n", cmdName))
	sb.WriteString(fmt.Sprintf("complete -c %s -l report -d 'Write a run report' -r -F\n", cmdName))
	sb.WriteString(fmt.Sprintf("complete -c %s -l log-level -d 'Diagnostics level' -xa '%s'\n", cmdName, strings.Join(diag.LevelNames(), " ")))
	sb.WriteString(fmt.Sprintf("complete -c %s -l log-json -d 'JSON diagnostics'\n", cmdName))
	sb.WriteString(fmt.Sprintf("complete -c %s -s q -l quiet -d 'Warnings and errors only'\n", cmdName))
	sb.WriteString(fmt.Sprintf("complete -c %s -s v -l verbose -d 'Trace every test event'\n", cmdName))
	sb.WriteString(fmt.Sprintf("complete -c %s -l help -d 'Show help'\n", cmdName))
	sb.WriteString(fmt.Sprintf("complete -c %s -l version -d 'Show version'\n", cmdName))

	sb.WriteString("\n# replay\n")
	sb.WriteString(fmt.Sprintf("complete -c %s -n '__fish_seen_subcommand_from replay' -l counts -d 'Print result counts'\n", cmdName))
	sb.WriteString(fmt.Sprintf("complete -c %s -n '__fish_seen_subcommand_from replay' -F\n", cmdName))

	sb.WriteString("\n# config subcommands\n")
	sb.WriteString(fmt.Sprintf("complete -c %s -n '__fish_seen_subcommand_from config' -a 'validate' -d 'Validate configuration'\n", cmdName))

	sb.WriteString("\n# completion subcommands\n")
	for _, shell := range []string{"bash", "zsh", "fish"} {
		sb.WriteString(fmt.Sprintf("complete -c %s -n '__fish_seen_subcommand_from completion' -a '%s' -d 'Generate %s completion'\n", cmdName, shell, shell))
	}

	return sb.String()
}
