// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/yeetrun/argparse/pkg/argparse"
)

type CommandInfo struct {
	Name        string
	Description string
	Usage       string
	Examples    []string
	Hidden      bool
	Aliases     []string
	// Flags is the tagged flag struct of the command, if any.
	Flags any
}

type GlobalFlags struct {
	NoColor bool
	Verbose bool
	Help    bool
}

type ParseFlags struct {
	Table        string
	Format       string
	CollectAll   bool
	AllowUnknown bool
	Help         bool
}

type TokensFlags struct {
	Table string
	Help  bool
}

type TableFlags struct {
	Table  string
	Format string
	Help   bool
}

type CheckFlags struct {
	Table  string
	Jobs   int
	Format string
	Help   bool
}

type globalFlagsParsed struct {
	NoColor bool `flag:"no-color" help:"Disable colored output"`
	Verbose bool `flag:"verbose" short:"v" help:"Trace matching decisions to stderr"`
	Help    bool `flag:"help" short:"h" help:"Show help"`
}

type parseFlagsParsed struct {
	Table        string `flag:"table" short:"t" kind:"path" nonempty:"true" help:"Table file (default: nearest argparse.toml/.yaml)"`
	Format       string `flag:"format" short:"f" choices:"text,json,yaml" default:"text" help:"Output format"`
	CollectAll   bool   `flag:"collect-all" help:"Report every problem instead of the first"`
	AllowUnknown bool   `flag:"allow-unknown" help:"Pass unknown options through as positionals"`
	Help         bool   `flag:"help" short:"h" help:"Show help"`
}

type tokensFlagsParsed struct {
	Table string `flag:"table" short:"t" kind:"path" nonempty:"true" help:"Table file used to detect digit aliases"`
	Help  bool   `flag:"help" short:"h" help:"Show help"`
}

type tableFlagsParsed struct {
	Table  string `flag:"table" short:"t" kind:"path" nonempty:"true" help:"Table file (default: nearest argparse.toml/.yaml)"`
	Format string `flag:"format" short:"f" choices:"text,toml,yaml" default:"text" help:"Output format"`
	Help   bool   `flag:"help" short:"h" help:"Show help"`
}

type checkFlagsParsed struct {
	Table  string `flag:"table" short:"t" kind:"path" nonempty:"true" help:"Table file (default: nearest argparse.toml/.yaml)"`
	Jobs   int    `flag:"jobs" short:"j" default:"0" help:"Cases to run at once (0: unlimited)"`
	Format string `flag:"format" short:"f" choices:"text,json,yaml" default:"text" help:"Output format"`
	Help   bool   `flag:"help" short:"h" help:"Show help"`
}

const (
	CommandParse  = "parse"
	CommandTokens = "tokens"
	CommandTable  = "table"
	CommandCheck  = "check"
)

var commandInfos = map[string]CommandInfo{
	CommandParse: {Name: CommandParse, Description: "Parse arguments against a table and print the result", Usage: "[--table=FILE] [--format=text|json|yaml] [--collect-all] [--allow-unknown] -- ARGS...", Examples: []string{
		"argcheck parse -- -v --count 3 file.txt",
		"argcheck parse --table=cli.yaml --format=json -- --mode fast",
		"argcheck parse --collect-all -- -c abc --nope",
	}, Aliases: []string{"p"}, Flags: parseFlagsParsed{}},
	CommandTokens: {Name: CommandTokens, Description: "Show how arguments are classified", Usage: "[--table=FILE] -- ARGS...", Examples: []string{
		"argcheck tokens -- -vc=5 --name value -- -x",
	}, Aliases: []string{"tok"}, Flags: tokensFlagsParsed{}},
	CommandTable: {Name: CommandTable, Description: "Validate a table file and list its options", Usage: "[--table=FILE] [--format=text|toml|yaml]", Examples: []string{
		"argcheck table",
		"argcheck table --table=argparse.yaml --format=toml",
	}, Flags: tableFlagsParsed{}},
	CommandCheck: {Name: CommandCheck, Description: "Run the cases of a table file", Usage: "[--table=FILE] [--jobs=N] [--format=text|json|yaml]", Examples: []string{
		"argcheck check",
		"argcheck check --table=argparse.toml --jobs=4",
	}, Flags: checkFlagsParsed{}},
}

// CommandNames returns the visible command names, sorted.
func CommandNames() []string {
	names := make([]string, 0, len(commandInfos))
	for name, info := range commandInfos {
		if !info.Hidden {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

func CommandInfos() map[string]CommandInfo {
	return commandInfos
}

// LookupCommand resolves a command name or alias.
func LookupCommand(name string) (CommandInfo, bool) {
	if info, ok := commandInfos[name]; ok {
		return info, true
	}
	for _, info := range commandInfos {
		if slices.Contains(info.Aliases, name) {
			return info, true
		}
	}
	return CommandInfo{}, false
}

// SplitCommand separates leading global flags from the command name and its
// arguments. The command is the first argument that does not start with a
// dash.
func SplitCommand(args []string) (globals []string, cmd string, rest []string) {
	for i, arg := range args {
		if arg == "--" {
			return args[:i], "", args[i+1:]
		}
		if !strings.HasPrefix(arg, "-") || arg == "-" {
			return args[:i], arg, args[i+1:]
		}
	}
	return args, "", nil
}

func ParseGlobal(args []string) (GlobalFlags, error) {
	parsed, err := parseFlags[globalFlagsParsed](args)
	if err != nil {
		return GlobalFlags{}, err
	}
	if err := RequireArgsAtMost("argcheck", parsed.Args, 0); err != nil {
		return GlobalFlags{}, err
	}
	return GlobalFlags{
		NoColor: parsed.Flags.NoColor,
		Verbose: parsed.Flags.Verbose,
		Help:    parsed.Flags.Help,
	}, nil
}

// ParseParse parses the flags of the parse command. Everything after "--" is
// returned untouched as the arguments to parse.
func ParseParse(args []string) (ParseFlags, []string, error) {
	parseArgs, extraArgs := splitArgsAtDoubleDash(args)
	parsed, err := parseFlags[parseFlagsParsed](parseArgs)
	if err != nil {
		return ParseFlags{}, nil, err
	}
	if err := RequireArgsAtMost(CommandParse, parsed.Args, 0); err != nil {
		return ParseFlags{}, nil, err
	}
	flags := ParseFlags{
		Table:        parsed.Flags.Table,
		Format:       parsed.Flags.Format,
		CollectAll:   parsed.Flags.CollectAll,
		AllowUnknown: parsed.Flags.AllowUnknown,
		Help:         parsed.Flags.Help,
	}
	return flags, nonNil(extraArgs), nil
}

func ParseTokens(args []string) (TokensFlags, []string, error) {
	parseArgs, extraArgs := splitArgsAtDoubleDash(args)
	parsed, err := parseFlags[tokensFlagsParsed](parseArgs)
	if err != nil {
		return TokensFlags{}, nil, err
	}
	if err := RequireArgsAtMost(CommandTokens, parsed.Args, 0); err != nil {
		return TokensFlags{}, nil, err
	}
	flags := TokensFlags{Table: parsed.Flags.Table, Help: parsed.Flags.Help}
	return flags, nonNil(extraArgs), nil
}

func ParseTable(args []string) (TableFlags, error) {
	parsed, err := parseFlags[tableFlagsParsed](args)
	if err != nil {
		return TableFlags{}, err
	}
	if err := RequireArgsAtMost(CommandTable, parsed.Args, 0); err != nil {
		return TableFlags{}, err
	}
	return TableFlags{
		Table:  parsed.Flags.Table,
		Format: parsed.Flags.Format,
		Help:   parsed.Flags.Help,
	}, nil
}

func ParseCheck(args []string) (CheckFlags, error) {
	parsed, err := parseFlags[checkFlagsParsed](args)
	if err != nil {
		return CheckFlags{}, err
	}
	if err := RequireArgsAtMost(CommandCheck, parsed.Args, 0); err != nil {
		return CheckFlags{}, err
	}
	if parsed.Flags.Jobs < 0 {
		return CheckFlags{}, fmt.Errorf("--jobs must not be negative, got %d", parsed.Flags.Jobs)
	}
	return CheckFlags{
		Table:  parsed.Flags.Table,
		Jobs:   parsed.Flags.Jobs,
		Format: parsed.Flags.Format,
		Help:   parsed.Flags.Help,
	}, nil
}

type parsedFlags[T any] struct {
	Flags T
	Args  []string
}

func parseFlags[T any](args []string) (parsedFlags[T], error) {
	result, err := argparse.ParseInto[T](args)
	if err != nil {
		return parsedFlags[T]{}, err
	}
	return parsedFlags[T]{Flags: result.Flags, Args: result.Args}, nil
}

func splitArgsAtDoubleDash(args []string) ([]string, []string) {
	for i, arg := range args {
		if arg == "--" {
			if i+1 < len(args) {
				return args[:i], args[i+1:]
			}
			return args[:i], nil
		}
	}
	return args, nil
}

func nonNil(args []string) []string {
	if args == nil {
		return []string{}
	}
	return args
}

// FlagTable returns the option table of a command's flags, or of the global
// flags when name is empty.
func FlagTable(name string) (*argparse.Table, error) {
	var flags any = globalFlagsParsed{}
	if name != "" {
		info, ok := LookupCommand(name)
		if !ok {
			return nil, fmt.Errorf("unknown command %q", name)
		}
		flags = info.Flags
	}
	descs, err := argparse.DescriptorsFromStruct(flags)
	if err != nil {
		return nil, err
	}
	return argparse.NewTable(descs)
}

// Help renders the help text of a command, or the top-level help when name
// is empty.
func Help(name string) (string, error) {
	var b strings.Builder
	t, err := FlagTable(name)
	if err != nil {
		return "", err
	}
	if name == "" {
		fmt.Fprintf(&b, "%s <command> [flags]\n\nCommands:\n", t.Usage("argcheck"))
		for _, cmd := range CommandNames() {
			fmt.Fprintf(&b, "  %-8s %s\n", cmd, commandInfos[cmd].Description)
		}
	} else {
		info, _ := LookupCommand(name)
		fmt.Fprintf(&b, "%s\n\nUsage: argcheck %s %s\n", info.Description, info.Name, info.Usage)
		if len(info.Aliases) > 0 {
			fmt.Fprintf(&b, "Aliases: %s\n", strings.Join(info.Aliases, ", "))
		}
	}
	b.WriteString("\nFlags:\n")
	for _, d := range t.Descriptors() {
		left := d.Display()
		if d.TakesValue() {
			left += "=" + strings.ToUpper(d.Kind.String())
		}
		line := fmt.Sprintf("  %-28s %s", left, d.Help)
		if d.Kind == argparse.KindChoice {
			line += fmt.Sprintf(" (%s)", strings.Join(d.Choices, "|"))
		}
		fmt.Fprintln(&b, strings.TrimRight(line, " "))
	}
	if name != "" {
		info, _ := LookupCommand(name)
		if len(info.Examples) > 0 {
			b.WriteString("\nExamples:\n")
			for _, ex := range info.Examples {
				fmt.Fprintf(&b, "  %s\n", ex)
			}
		}
	}
	return b.String(), nil
}

func RequireArgsAtMost(subcmd string, args []string, count int) error {
	if len(args) > count {
		if count == 0 {
			return fmt.Errorf("'%s' takes no arguments, got %q (put arguments to parse after --)", subcmd, args)
		}
		return fmt.Errorf("'%s' takes at most %d argument(s), got %d", subcmd, count, len(args))
	}
	return nil
}
