package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/doeshing/bugsqa/internal/application/parser"
	"github.com/doeshing/bugsqa/internal/application/session"
	"github.com/doeshing/bugsqa/internal/domain"
	"github.com/doeshing/bugsqa/internal/ports"
)

const (
	shellPrompt     = "bugsqa> "
	pastePrompt     = "...     "
	pasteTerminator = "."
)

var errExit = errors.New("exit")

// ShellConfig holds the collaborators of an interactive session.
type ShellConfig struct {
	Session   *session.Session
	Reader    ports.LineReader
	Out       io.Writer
	Markdown  ports.MarkdownRenderer
	Reports   ports.ReportWriter
	ReportDir string
	// Exporters picks the archive format for an export destination.
	Exporters func(dest string) (ports.HistoryExporter, error)
	// Spinner animates while waiting on the analysis service.
	Spinner bool
}

type shellCommand struct {
	usage string
	help  string
	run   func(ctx context.Context, arg string) error
}

// Shell reads commands line by line and drives one session.
type Shell struct {
	cfg      ShellConfig
	render   *Renderer
	commands map[string]shellCommand
	order    []string
}

// NewShell creates a shell over cfg.Session.
func NewShell(cfg ShellConfig) *Shell {
	s := &Shell{
		cfg:      cfg,
		render:   NewRenderer(cfg.Out, cfg.Markdown),
		commands: make(map[string]shellCommand),
	}
	s.register("text", "text <description>", "Analyze an error message or bug description", s.analyzeText)
	s.alias("analyze", "text")
	s.register("paste", "paste", "Analyze a multi-line report, ended by a line with a single '.'", s.paste)
	s.register("image", "image <path>", "Analyze a PNG or JPEG screenshot", s.analyzeImage)
	s.register("file", "file <path>", "Analyze a source file", s.analyzeFile)
	s.register("set", "set <severity|language|complexity|depth> <value>", "Change a preference for new reports", s.set)
	s.register("prefs", "prefs", "Show current preferences", s.prefs)
	s.register("history", "history [n|all]", "List recent bugs, newest first", s.history)
	s.register("show", "show <n> [section]", "Show bug #n in full, or one section of its analysis", s.show)
	s.register("stats", "stats", "Show session statistics", s.stats)
	s.register("report", "report [dir]", "Write a markdown report of this session", s.report)
	s.register("export", "export <path.jsonl|path.db>", "Archive this session's history", s.export)
	s.register("clear", "clear", "Forget all analyzed bugs", s.clear)
	s.register("help", "help", "Show this help", s.help)
	s.register("exit", "exit", "Leave the session", func(context.Context, string) error { return errExit })
	s.alias("quit", "exit")
	return s
}

func (s *Shell) register(name, usage, help string, run func(context.Context, string) error) {
	s.commands[name] = shellCommand{usage: usage, help: help, run: run}
	s.order = append(s.order, name)
}

func (s *Shell) alias(name, target string) {
	s.commands[name] = s.commands[target]
}

// Run loops until exit, EOF, Ctrl-C on an empty line, or ctx is done.
func (s *Shell) Run(ctx context.Context) error {
	headerColor.Fprintln(s.cfg.Out, "🐛 Bugs.qa - AI bug analysis")
	s.render.Info("Type 'help' for commands, 'exit' to leave.")
	for ctx.Err() == nil {
		line, err := s.cfg.Reader.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if line == "" {
				return nil
			}
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := s.Execute(ctx, line); err != nil {
			if errors.Is(err, errExit) {
				return nil
			}
			s.fail(err)
		}
	}
	return nil
}

// Execute runs a single command line.
func (s *Shell) Execute(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	name, arg, _ := strings.Cut(line, " ")
	cmd, ok := s.commands[strings.ToLower(name)]
	if !ok {
		return fmt.Errorf("%w: unknown command %q, type 'help' for a list", domain.ErrValidation, name)
	}
	return cmd.run(ctx, strings.TrimSpace(arg))
}

func (s *Shell) fail(err error) {
	switch {
	case errors.Is(err, domain.ErrNoData):
		s.render.Warn("No bugs analyzed yet. Analyze something first.")
	case errors.Is(err, domain.ErrValidation):
		s.render.Warn("%v", err)
	default:
		s.render.Error(err)
	}
}

func (s *Shell) analyzeText(ctx context.Context, arg string) error {
	if arg == "" {
		return fmt.Errorf("%w: usage: text <description>", domain.ErrValidation)
	}
	return s.submit(ctx, session.Submission{Kind: domain.KindText, Text: arg})
}

func (s *Shell) paste(ctx context.Context, _ string) error {
	s.render.Info("Paste the report, then a line with a single '.' to analyze it.")
	s.cfg.Reader.SetPrompt(pastePrompt)
	defer s.cfg.Reader.SetPrompt(shellPrompt)

	var lines []string
	for {
		line, err := s.cfg.Reader.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			s.render.Info("Paste cancelled.")
			return nil
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		if strings.TrimSpace(line) == pasteTerminator {
			break
		}
		lines = append(lines, line)
	}
	return s.submit(ctx, session.Submission{Kind: domain.KindText, Text: strings.Join(lines, "\n")})
}

func (s *Shell) analyzeImage(ctx context.Context, arg string) error {
	sub, err := LoadImage(arg)
	if err != nil {
		return err
	}
	return s.submit(ctx, sub)
}

func (s *Shell) analyzeFile(ctx context.Context, arg string) error {
	sub, err := LoadSourceFile(arg)
	if err != nil {
		return err
	}
	return s.submit(ctx, sub)
}

func (s *Shell) submit(ctx context.Context, sub session.Submission) error {
	outcome, err := Submit(ctx, s.cfg.Session, sub, s.spinnerOut())
	if err != nil {
		return err
	}
	s.render.Outcome(outcome)
	return nil
}

func (s *Shell) spinnerOut() io.Writer {
	if !s.cfg.Spinner {
		return nil
	}
	return s.cfg.Out
}

func (s *Shell) set(_ context.Context, arg string) error {
	field, value, ok := strings.Cut(arg, " ")
	if !ok || strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: usage: set <severity|language|complexity|depth> <value>", domain.ErrValidation)
	}
	if err := s.cfg.Session.Set(field, strings.TrimSpace(value)); err != nil {
		return err
	}
	s.render.Success("Preferences updated.")
	s.render.Preferences(s.cfg.Session.Preferences())
	return nil
}

func (s *Shell) prefs(context.Context, string) error {
	s.render.Preferences(s.cfg.Session.Preferences())
	return nil
}

func (s *Shell) history(_ context.Context, arg string) error {
	n := domain.RecentHistoryLimit
	switch {
	case arg == "":
	case strings.EqualFold(arg, "all"):
		n = 0
	default:
		parsed, err := strconv.Atoi(arg)
		if err != nil || parsed < 1 {
			return fmt.Errorf("%w: history takes a positive count or 'all', got %q", domain.ErrValidation, arg)
		}
		n = parsed
	}
	s.render.Recent(s.cfg.Session.History().Recent(n))
	return nil
}

func (s *Shell) show(_ context.Context, arg string) error {
	num, section, _ := strings.Cut(arg, " ")
	seq, err := strconv.Atoi(strings.TrimPrefix(num, "#"))
	if err != nil {
		return fmt.Errorf("%w: usage: show <n> [section]", domain.ErrValidation)
	}
	rec, ok := s.cfg.Session.History().Get(seq)
	if !ok {
		return fmt.Errorf("%w: no bug #%d in this session", domain.ErrValidation, seq)
	}

	section = strings.TrimSpace(section)
	if section == "" {
		s.render.Record(rec)
		return nil
	}
	found, ok := parser.FindSection(rec.Result, section)
	if !ok {
		titles := make([]string, 0)
		for _, sec := range parser.Sections(rec.Result) {
			titles = append(titles, sec.Title)
		}
		if len(titles) == 0 {
			return fmt.Errorf("%w: bug #%d has no sections", domain.ErrValidation, seq)
		}
		return fmt.Errorf("%w: no section matching %q in bug #%d (have: %s)",
			domain.ErrValidation, section, seq, strings.Join(titles, ", "))
	}
	s.render.Markdown("## " + found.Title + "\n\n" + found.Body)
	return nil
}

func (s *Shell) stats(context.Context, string) error {
	dashboard, err := s.cfg.Session.Dashboard()
	if err != nil {
		return err
	}
	s.render.Dashboard(dashboard, s.cfg.Session.Snapshot())
	return nil
}

func (s *Shell) report(_ context.Context, arg string) error {
	dir := arg
	if dir == "" {
		dir = s.cfg.ReportDir
	}
	path, err := SaveReport(s.cfg.Session, s.cfg.Reports, dir)
	if err != nil {
		return err
	}
	s.render.Success("Report saved to %s", path)
	return nil
}

func (s *Shell) export(ctx context.Context, arg string) error {
	if arg == "" {
		return fmt.Errorf("%w: usage: export <path.jsonl|path.db>", domain.ErrValidation)
	}
	exporter, err := s.cfg.Exporters(arg)
	if err != nil {
		return err
	}
	snapshot := s.cfg.Session.Snapshot()
	if err := exporter.Export(ctx, snapshot, arg); err != nil {
		return err
	}
	s.render.Success("Exported %d bug(s) to %s", len(snapshot.Records), arg)
	return nil
}

func (s *Shell) clear(context.Context, string) error {
	s.cfg.Session.Clear()
	s.render.Success("History cleared!")
	return nil
}

func (s *Shell) help(context.Context, string) error {
	for _, name := range s.order {
		cmd := s.commands[name]
		fmt.Fprintf(s.cfg.Out, "  %-52s %s\n", cmd.usage, mutedColor.Sprint(cmd.help))
	}
	return nil
}

// shellCompleter offers command names and enumerated preference values.
func shellCompleter() *readline.PrefixCompleter {
	values := func(items []string) []readline.PrefixCompleterInterface {
		out := make([]readline.PrefixCompleterInterface, 0, len(items))
		for _, item := range items {
			out = append(out, readline.PcItem(item))
		}
		return out
	}
	return readline.NewPrefixCompleter(
		readline.PcItem("text"),
		readline.PcItem("paste"),
		readline.PcItem("image"),
		readline.PcItem("file"),
		readline.PcItem("set",
			readline.PcItem("severity", values(enumStrings(domain.Severities))...),
			readline.PcItem("language", values(enumStrings(domain.Languages))...),
			readline.PcItem("complexity", values(enumStrings(domain.Complexities))...),
			readline.PcItem("depth", values([]string{"1", "2", "3", "4", "5"})...),
		),
		readline.PcItem("prefs"),
		readline.PcItem("history", readline.PcItem("all")),
		readline.PcItem("show"),
		readline.PcItem("stats"),
		readline.PcItem("report"),
		readline.PcItem("export"),
		readline.PcItem("clear"),
		readline.PcItem("help"),
		readline.PcItem("exit"),
	)
}

func enumStrings[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

var _ ports.LineReader = (*readline.Instance)(nil)
