package cli

import (
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/swiftbench/swiftbench/internal/bmerrors"
	"github.com/swiftbench/swiftbench/internal/export"
	"github.com/swiftbench/swiftbench/internal/model"
	"github.com/swiftbench/swiftbench/internal/params"
	"github.com/swiftbench/swiftbench/internal/progress"
	"github.com/swiftbench/swiftbench/internal/runner"
	"github.com/swiftbench/swiftbench/internal/scheduler"
	"github.com/swiftbench/swiftbench/internal/stats"
)

// Plan is everything Execute needs after flags have been parsed and
// validated: the expanded job list plus the Scheduler configuration that
// will run them.
type Plan struct {
	Jobs          []model.BenchmarkJob
	SchedulerCfg  scheduler.Config
	Style         progress.Style
	StdoutExports []scheduler.ExportTarget
	CommandCount  int
}

// flags mirrors the command's registered pflag values. It exists so
// buildPlan can be unit tested without going through cobra at all.
type flags struct {
	warmup          int
	minRuns         int
	maxRuns         int
	runs            int
	minBenchTime    float64
	prepare         []string
	conclude        []string
	setup           string
	cleanup         string
	parameterScan   []string
	parameterStep   []float64
	parameterList   []string
	commandNameTmpl string
	shell           string
	noShell         bool
	input           string
	output          []string
	timeUnit        string
	ignoreFailure   bool
	style           string
	sort            string
	reference       string
	exportCSV       string
	exportJSON      string
	exportMarkdown  string
	exportAsciiDoc  string
	exportOrgMode   string
	exportHTML      string
}

func readFlags(cmd *cobra.Command) flags {
	f := cmd.Flags()
	var fl flags
	fl.warmup, _ = f.GetInt("warmup")
	fl.minRuns, _ = f.GetInt("min-runs")
	fl.maxRuns, _ = f.GetInt("max-runs")
	fl.runs, _ = f.GetInt("runs")
	fl.minBenchTime, _ = f.GetFloat64("min-benchmarking-time")
	fl.prepare, _ = f.GetStringArray("prepare")
	fl.conclude, _ = f.GetStringArray("conclude")
	fl.setup, _ = f.GetString("setup")
	fl.cleanup, _ = f.GetString("cleanup")
	fl.parameterScan, _ = f.GetStringArray("parameter-scan")
	fl.parameterStep, _ = f.GetFloat64Slice("parameter-step-size")
	fl.parameterList, _ = f.GetStringArray("parameter-list")
	fl.commandNameTmpl, _ = f.GetString("command-name")
	fl.shell, _ = f.GetString("shell")
	fl.noShell, _ = f.GetBool("no-shell")
	fl.input, _ = f.GetString("input")
	fl.output, _ = f.GetStringArray("output")
	fl.timeUnit, _ = f.GetString("time-unit")
	fl.ignoreFailure, _ = f.GetBool("ignore-failure")
	fl.style, _ = f.GetString("style")
	fl.sort, _ = f.GetString("sort")
	fl.reference, _ = f.GetString("reference")
	fl.exportCSV, _ = f.GetString("export-csv")
	fl.exportJSON, _ = f.GetString("export-json")
	fl.exportMarkdown, _ = f.GetString("export-markdown")
	fl.exportAsciiDoc, _ = f.GetString("export-asciidoc")
	fl.exportOrgMode, _ = f.GetString("export-orgmode")
	fl.exportHTML, _ = f.GetString("export-html")

	// Viper overlays config-file/env values for anything the user did not
	// pass explicitly on the command line, following the same
	// flag-then-config precedence the upstream config layer already used.
	if !f.Changed("warmup") && viper.IsSet("warmup") {
		fl.warmup = viper.GetInt("warmup")
	}
	if !f.Changed("shell") && viper.IsSet("shell") {
		fl.shell = viper.GetString("shell")
	}
	return fl
}

// buildPlan validates flags against the positional commands and produces a
// Plan, or a *bmerrors.ConfigError describing the first invalid combination
// found.
func buildPlan(fl flags, commandArgs []string) (*Plan, error) {
	if len(commandArgs) == 0 {
		return nil, bmerrors.NewConfigError("at least one command is required")
	}
	if fl.runs < 0 || fl.warmup < 0 || fl.minRuns < 0 || fl.maxRuns < 0 {
		return nil, bmerrors.NewConfigError("run counts must not be negative")
	}
	if fl.maxRuns > 0 && fl.minRuns > fl.maxRuns {
		return nil, bmerrors.NewConfigError("--min-runs (%d) must not exceed --max-runs (%d)", fl.minRuns, fl.maxRuns)
	}

	commands := make([]model.CommandTemplate, len(commandArgs))
	for i, c := range commandArgs {
		commands[i] = model.CommandTemplate{Raw: c}
	}

	sources, err := buildSources(fl)
	if err != nil {
		return nil, err
	}
	if err := params.ValidateUniqueNames(sources); err != nil {
		return nil, err
	}

	jobs := params.Expand(commands, sources, fl.commandNameTmpl)

	prepareByCommand, err := resolveHookList(fl.prepare, len(commands), "--prepare")
	if err != nil {
		return nil, err
	}
	concludeByCommand, err := resolveHookList(fl.conclude, len(commands), "--conclude")
	if err != nil {
		return nil, err
	}
	outputByCommand, err := resolveOutputList(fl.output, len(commands))
	if err != nil {
		return nil, err
	}
	inputPolicy := inputPolicyFromFlag(fl.input)

	for i := range jobs {
		jobs[i].Prepare = prepareByCommand[jobs[i].CommandIndex]
		jobs[i].Conclude = concludeByCommand[jobs[i].CommandIndex]
		jobs[i].Input = inputPolicy
		jobs[i].Output = outputByCommand[jobs[i].CommandIndex]
	}

	timeUnit, err := timeUnitFromFlag(fl.timeUnit)
	if err != nil {
		return nil, err
	}
	sortOrder, err := sortOrderFromFlag(fl.sort)
	if err != nil {
		return nil, err
	}
	style, err := styleFromFlag(fl.style)
	if err != nil {
		return nil, err
	}

	shell := fl.shell
	if shell == "" {
		shell = "sh"
	}
	noShell := fl.noShell || shell == "none"

	exportTargets, stdoutExports, err := buildExportTargets(fl)
	if err != nil {
		return nil, err
	}

	schedulerCfg := scheduler.Config{
		SetupCommand:   fl.setup,
		CleanupCommand: fl.cleanup,
		Shell:          shell,
		ShellFlag:      "-c",
		NoShell:        noShell,
		RunnerConfig: runner.Config{
			WarmupCount:         fl.warmup,
			MinRuns:             fl.minRuns,
			MaxRuns:             fl.maxRuns,
			ExactRuns:           fl.runs,
			MinBenchmarkingTime: secondsToDuration(fl.minBenchTime),
			IgnoreFailure:       fl.ignoreFailure,
			Shell:               shell,
			ShellFlag:           "-c",
			NoShell:             noShell,
			OutlierThresholds:   stats.DefaultOutlierThresholds(),
		},
		Metadata: model.RunMetadata{
			TimeUnit:      timeUnit,
			ReferenceName: fl.reference,
			SortOrder:     sortOrder,
		},
		ExportTargets: exportTargets,
	}

	return &Plan{
		Jobs:          jobs,
		SchedulerCfg:  schedulerCfg,
		Style:         style,
		StdoutExports: stdoutExports,
		CommandCount:  len(commands),
	}, nil
}

func buildSources(fl flags) ([]params.Source, error) {
	var sources []params.Source

	for _, raw := range fl.parameterList {
		name, values, ok := strings.Cut(strings.TrimSpace(raw), " ")
		if !ok {
			return nil, bmerrors.NewConfigError("--parameter-list %q: expected \"NAME VALUES\"", raw)
		}
		sources = append(sources, params.ListSource(name, values))
	}

	for i, raw := range fl.parameterScan {
		fields := strings.Fields(raw)
		if len(fields) != 3 {
			return nil, bmerrors.NewConfigError("--parameter-scan %q: expected \"NAME MIN MAX\"", raw)
		}
		min, err1 := strconv.ParseFloat(fields[1], 64)
		max, err2 := strconv.ParseFloat(fields[2], 64)
		if err1 != nil || err2 != nil {
			return nil, bmerrors.NewConfigError("--parameter-scan %q: min/max must be numeric", raw)
		}
		step := 1.0
		if i < len(fl.parameterStep) {
			step = fl.parameterStep[i]
		}
		src, err := params.ScanSource(fields[0], min, max, step)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}

	return sources, nil
}

func resolveHookList(values []string, numCommands int, flagName string) ([]string, error) {
	out := make([]string, numCommands)
	switch len(values) {
	case 0:
		return out, nil
	case 1:
		for i := range out {
			out[i] = values[0]
		}
		return out, nil
	default:
		if len(values) != numCommands {
			return nil, bmerrors.NewConfigError(
				"%s given %d times but there are %d commands (must be given once or once per command)",
				flagName, len(values), numCommands)
		}
		return values, nil
	}
}

func resolveOutputList(values []string, numCommands int) ([]model.OutputPolicy, error) {
	out := make([]model.OutputPolicy, numCommands)
	for i := range out {
		out[i] = model.OutputPolicy{Kind: model.OutputDiscard}
	}
	if len(values) == 0 {
		return out, nil
	}
	if len(values) == 1 {
		p, err := outputPolicyFromString(values[0])
		if err != nil {
			return nil, err
		}
		for i := range out {
			out[i] = p
		}
		return out, nil
	}
	if len(values) != numCommands {
		return nil, bmerrors.NewConfigError(
			"--output given %d times but there are %d commands (must be given once or once per command)",
			len(values), numCommands)
	}
	for i, v := range values {
		p, err := outputPolicyFromString(v)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

func outputPolicyFromString(s string) (model.OutputPolicy, error) {
	switch s {
	case "null":
		return model.OutputPolicy{Kind: model.OutputDiscard}, nil
	case "pipe":
		return model.OutputPolicy{Kind: model.OutputPipe}, nil
	case "inherit":
		return model.OutputPolicy{Kind: model.OutputInherit}, nil
	case "":
		return model.OutputPolicy{Kind: model.OutputDiscard}, nil
	default:
		return model.OutputPolicy{Kind: model.OutputFile, Path: s}, nil
	}
}

// inputPolicyFromFlag defaults to the null device, since a benchmarked
// command reading from the terminal would stall a repeated-measurement loop.
func inputPolicyFromFlag(s string) model.InputPolicy {
	switch s {
	case "", "null":
		return model.InputPolicy{Kind: model.InputNull}
	default:
		return model.InputPolicy{Kind: model.InputFile, Path: s}
	}
}

func timeUnitFromFlag(s string) (model.TimeUnit, error) {
	switch s {
	case "", "auto":
		return model.UnitAuto, nil
	case "second":
		return model.UnitSecond, nil
	case "millisecond":
		return model.UnitMillisecond, nil
	case "microsecond":
		return model.UnitMicrosecond, nil
	default:
		return "", bmerrors.NewConfigError("--time-unit %q: must be one of second, millisecond, microsecond", s)
	}
}

func sortOrderFromFlag(s string) (model.SortOrder, error) {
	switch s {
	case "", "auto", "mean-time":
		return model.SortMeanTime, nil
	case "command":
		return model.SortCommand, nil
	default:
		return "", bmerrors.NewConfigError("--sort %q: must be one of mean-time, command", s)
	}
}

func styleFromFlag(s string) (progress.Style, error) {
	switch s {
	case "":
		return progress.StyleAuto, nil
	case string(progress.StyleAuto), string(progress.StyleBasic), string(progress.StyleFull),
		string(progress.StyleColor), string(progress.StyleNone):
		return progress.Style(s), nil
	default:
		return "", bmerrors.NewConfigError("--style %q: must be one of auto, basic, full, color, none", s)
	}
}

func buildExportTargets(fl flags) ([]scheduler.ExportTarget, []scheduler.ExportTarget, error) {
	type entry struct {
		format export.Format
		path   string
	}
	entries := []entry{
		{export.FormatCSV, fl.exportCSV},
		{export.FormatJSON, fl.exportJSON},
		{export.FormatMarkdown, fl.exportMarkdown},
		{export.FormatAsciiDoc, fl.exportAsciiDoc},
		{export.FormatOrgMode, fl.exportOrgMode},
		{export.FormatHTML, fl.exportHTML},
	}

	var fileTargets, stdoutTargets []scheduler.ExportTarget
	for _, e := range entries {
		if e.path == "" {
			continue
		}
		exporter := export.ForFormat(e.format)
		target := scheduler.ExportTarget{Exporter: exporter, Path: e.path}
		if e.path == "-" {
			stdoutTargets = append(stdoutTargets, target)
			continue
		}
		fileTargets = append(fileTargets, target)
	}
	return fileTargets, stdoutTargets, nil
}

func secondsToDuration(s float64) time.Duration {
	if s <= 0 {
		return 0
	}
	return time.Duration(s * float64(time.Second))
}
