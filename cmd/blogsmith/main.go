package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/jayden9889/blogsmith/internal/brand"
	"github.com/jayden9889/blogsmith/internal/config"
	"github.com/jayden9889/blogsmith/internal/generator"
	"github.com/jayden9889/blogsmith/internal/health"
	"github.com/jayden9889/blogsmith/internal/limiter"
	"github.com/jayden9889/blogsmith/internal/mcp"
	"github.com/jayden9889/blogsmith/internal/provider"
	"github.com/jayden9889/blogsmith/internal/refs"
	"github.com/jayden9889/blogsmith/internal/store"
	"github.com/jayden9889/blogsmith/internal/tui"
	"github.com/jayden9889/blogsmith/pkg/version"
)

func main() {
	providerFlag := flag.String("provider", "", "Provider name (anthropic, ollama, ...)")
	modelFlag := flag.String("model", "", "Model name override")
	versionFlag := flag.Bool("version", false, "Print version")
	helpFlag := flag.Bool("help", false, "Show help")
	flag.BoolVar(helpFlag, "h", false, "Show help")
	strictFlag := flag.Bool("strict-duplicates", false, "Reject drafts that duplicate earlier posts")
	jsonFlag := flag.Bool("json", false, "Print machine-readable JSON output")

	flag.Usage = showHelp
	flag.Parse()

	if *helpFlag {
		showHelp()
		os.Exit(0)
	}
	if *versionFlag {
		fmt.Printf("blogsmith %s (%s)\n", version.Version, version.Commit)
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fatal("config error: %s", err)
	}

	args := flag.Args()
	if len(args) == 0 {
		if !isTerminal() {
			fatal("no command given and stdin is not a terminal; run 'blogsmith help'")
		}
		app := buildApp(cfg, *providerFlag, *modelFlag)
		if err := tui.Run(app.tuiDeps()); err != nil {
			fatal("%s", err)
		}
		return
	}

	switch args[0] {
	case "generate":
		if len(args) < 2 {
			fatal("usage: blogsmith generate <topic>")
		}
		app := buildApp(cfg, *providerFlag, *modelFlag)
		cmdGenerate(app, strings.Join(args[1:], " "), *strictFlag, *jsonFlag)
	case "tweak":
		if len(args) < 3 {
			fatal("usage: blogsmith tweak <id> <instruction>")
		}
		app := buildApp(cfg, *providerFlag, *modelFlag)
		cmdTweak(app, args[1], strings.Join(args[2:], " "), *jsonFlag)
	case "rules":
		cmdRules(openStore(cfg), args[1:])
	case "drafts":
		status := ""
		if len(args) > 1 {
			status = args[1]
		}
		cmdDrafts(openStore(cfg), status, *jsonFlag)
	case "show":
		if len(args) < 2 {
			fatal("usage: blogsmith show <id>")
		}
		cmdShow(openStore(cfg), args[1])
	case "approve":
		if len(args) < 2 {
			fatal("usage: blogsmith approve <id> [status]")
		}
		status := "approved"
		if len(args) > 2 {
			status = args[2]
		}
		cmdApprove(openStore(cfg), args[1], status)
	case "feedback":
		if len(args) < 2 {
			fatal("usage: blogsmith feedback [--type <type>] <text>")
		}
		cmdFeedback(openStore(cfg), args[1:])
	case "validate":
		cmdValidate(openStore(cfg), args[1:])
	case "stats":
		cmdStats(cfg, *jsonFlag)
	case "usage":
		sub := "status"
		if len(args) > 1 {
			sub = args[1]
		}
		cmdUsage(cfg, sub, *jsonFlag)
	case "brand":
		if len(args) < 2 || args[1] != "init" {
			fatal("usage: blogsmith brand init [path]")
		}
		path := "brand.yaml"
		if len(args) > 2 {
			path = args[2]
		}
		cmdBrandInit(path)
	case "doctor":
		cmdDoctor(cfg)
	case "mcp":
		app := buildApp(cfg, *providerFlag, *modelFlag)
		cmdMCP(app)
	case "help":
		showHelp()
	default:
		fatal("unknown command %q — run 'blogsmith help'", args[0])
	}
}

// app bundles the wired components a command needs.
type app struct {
	cfg          *config.Config
	store        *store.Store
	limiter      *limiter.FileLimiter
	generator    *generator.Generator
	providerName string
	modelName    string
}

func buildApp(cfg *config.Config, providerName, modelName string) *app {
	if providerName == "" {
		providerName = cfg.DefaultProvider
	}
	p, err := makeProvider(cfg, providerName, modelName)
	if err != nil {
		fatal("%s", err)
	}

	s := openStore(cfg)
	lim := limiter.New(cfg.DataDir, cfg.Usage.MaxPosts, cfg.Usage.WindowHours)

	profile := brand.Default()
	if cfg.BrandProfile != "" {
		profile, err = brand.Load(cfg.BrandProfile)
		if err != nil {
			fatal("%s", err)
		}
	}
	library, err := refs.Load(cfg.ReferencePosts)
	if err != nil {
		fatal("%s", err)
	}

	return &app{
		cfg:          cfg,
		store:        s,
		limiter:      lim,
		generator:    generator.New(p, s, lim, profile, library, cfg.Generation),
		providerName: p.Name(),
		modelName:    p.ModelName(),
	}
}

func (a *app) tuiDeps() tui.Deps {
	return tui.Deps{
		Store:     a.store,
		Generator: a.generator,
		Limiter:   a.limiter,
		Provider:  a.providerName,
		Model:     a.modelName,
		Version:   version.Version,
	}
}

func openStore(cfg *config.Config) *store.Store {
	s, err := store.Open(cfg.DataDir)
	if err != nil {
		fatal("%s", err)
	}
	return s
}

func makeProvider(cfg *config.Config, name, modelName string) (provider.Provider, error) {
	if baseURL := os.Getenv("BLOGSMITH_BASE_URL"); baseURL != "" {
		return provider.NewOpenAI(name, baseURL, os.Getenv("BLOGSMITH_API_KEY"), modelName), nil
	}

	pcfg, ok := cfg.ProviderFor(name)
	if !ok {
		return nil, fmt.Errorf("unknown provider %q — configure it in ~/.config/blogsmith/config.yaml", name)
	}

	model := modelName
	if model == "" {
		model = pcfg.Model
	}

	switch pcfg.Type {
	case "openai":
		return provider.NewOpenAI(name, pcfg.BaseURL, pcfg.APIKey, model), nil
	case "anthropic":
		if pcfg.APIKey == "" {
			return nil, fmt.Errorf("anthropic requires api_key (set ANTHROPIC_API_KEY)")
		}
		return provider.NewAnthropic(pcfg.APIKey, model), nil
	default:
		return nil, fmt.Errorf("unknown provider type %q", pcfg.Type)
	}
}

func signalContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx
}

func cmdGenerate(a *app, topic string, strict, asJSON bool) {
	res, err := a.generator.Generate(signalContext(), topic, generator.Options{
		AllowDuplicates: !strict,
	})
	if err != nil {
		fatal("%s", err)
	}

	if asJSON {
		printJSON(res)
		if res.State == generator.StateRejected {
			os.Exit(1)
		}
		return
	}

	switch res.State {
	case generator.StateRejected:
		fmt.Fprintf(os.Stderr, "rejected after %d attempts:\n", res.Attempts)
		for _, issue := range res.Issues {
			fmt.Fprintf(os.Stderr, "  - %s\n", issue)
		}
		fmt.Fprintln(os.Stderr, "\nlast draft:")
		fmt.Printf("# %s\n\n%s\n", res.Title, res.Body)
		os.Exit(1)
	case generator.StateWithWarnings:
		for _, w := range res.Warnings {
			fmt.Fprintf(os.Stderr, "warning: %s\n", w)
		}
		fallthrough
	default:
		fmt.Fprintf(os.Stderr, "accepted (%d attempts, %d words) — saved as %s\n",
			res.Attempts, res.Item.WordCount, res.Item.ID)
		fmt.Printf("# %s\n\n%s\n", res.Item.Title, res.Item.Body)
	}
}

func cmdTweak(a *app, id, instruction string, asJSON bool) {
	item, ok := a.store.ItemByID(id)
	if !ok {
		fatal("no item %q", id)
	}
	res, err := a.generator.Tweak(signalContext(), item.Title, item.Body, instruction)
	if err != nil {
		fatal("%s", err)
	}
	updated, err := a.store.UpdateItemContent(item.ID, res.Title, res.Body)
	if err != nil {
		fatal("%s", err)
	}

	if asJSON {
		printJSON(map[string]any{"item": updated, "method": res.Method, "change_ratio": res.ChangeRatio})
		return
	}
	fmt.Fprintf(os.Stderr, "applied via %s edit (%.1f%% changed)\n", res.Method, res.ChangeRatio*100)
	fmt.Println(res.Diff)
}

func cmdRules(s *store.Store, args []string) {
	if len(args) == 0 || args[0] == "list" {
		for t, rules := range s.AllActiveRules() {
			fmt.Printf("%s:\n", t)
			for _, r := range rules {
				line := "  " + r.Value
				if r.Reason != "" {
					line += "  (" + r.Reason + ")"
				}
				fmt.Println(line)
			}
		}
		return
	}

	switch args[0] {
	case "add":
		if len(args) < 3 {
			fatal("usage: blogsmith rules add <type> <value> [reason]")
		}
		t, err := store.ParseRuleType(args[1])
		if err != nil {
			fatal("%s", err)
		}
		reason := ""
		if len(args) > 3 {
			reason = strings.Join(args[3:], " ")
		}
		rule, err := s.AddRule(t, args[2], reason)
		if err != nil {
			fatal("%s", err)
		}
		fmt.Printf("added %s: %s\n", t, rule.Value)
	case "remove":
		if len(args) < 3 {
			fatal("usage: blogsmith rules remove <type> <value>")
		}
		t, err := store.ParseRuleType(args[1])
		if err != nil {
			fatal("%s", err)
		}
		n, err := s.RemoveRule(t, strings.Join(args[2:], " "))
		if err != nil {
			fatal("%s", err)
		}
		fmt.Printf("deactivated %d rule(s)\n", n)
	default:
		fatal("usage: blogsmith rules [list|add|remove]")
	}
}

func cmdDrafts(s *store.Store, status string, asJSON bool) {
	var items []store.Item
	if status == "" {
		items = s.Items()
	} else {
		st, err := store.ParseStatus(status)
		if err != nil {
			fatal("%s", err)
		}
		items = s.ItemsByStatus(st)
	}

	if asJSON {
		printJSON(items)
		return
	}
	if len(items) == 0 {
		fmt.Println("no posts yet")
		return
	}
	for _, it := range items {
		fmt.Printf("%s  %-8s  %4d words  %s\n",
			it.ID, it.Status, it.WordCount, it.Title)
	}
}

func cmdShow(s *store.Store, id string) {
	item, ok := s.ItemByID(id)
	if !ok {
		fatal("no item %q", id)
	}
	fmt.Printf("# %s\n\n%s\n", item.Title, item.Body)
}

func cmdApprove(s *store.Store, id, statusName string) {
	status, err := store.ParseStatus(statusName)
	if err != nil {
		fatal("%s", err)
	}
	item, err := s.UpdateItemStatus(id, status)
	if err != nil {
		fatal("%s", err)
	}
	fmt.Printf("%s is now %s\n", item.ID, item.Status)
}

func cmdFeedback(s *store.Store, args []string) {
	feedbackType := ""
	if len(args) >= 2 && args[0] == "--type" {
		feedbackType = args[1]
		args = args[2:]
	}
	text := strings.Join(args, " ")
	learned, err := s.LearnFromFeedback(feedbackType, text)
	if err != nil {
		fatal("%s", err)
	}
	for _, r := range learned {
		fmt.Printf("learned %s: %s\n", r.Type, r.Value)
	}
}

func cmdValidate(s *store.Store, args []string) {
	var body string
	if len(args) > 0 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			fatal("%s", err)
		}
		body = string(data)
	} else {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			fatal("reading stdin: %s", err)
		}
		body = string(data)
	}

	res := s.ValidateContent(body)
	fmt.Printf("words: %d\n", res.WordCount)
	for _, issue := range res.Issues {
		fmt.Printf("issue: %s\n", issue)
	}
	for _, w := range res.Warnings {
		fmt.Printf("warning: %s\n", w)
	}
	if res.Passed {
		fmt.Println("passed")
		return
	}
	os.Exit(1)
}

func cmdStats(cfg *config.Config, asJSON bool) {
	s := openStore(cfg)
	st := s.StoreStats()

	if asJSON {
		printJSON(st)
		return
	}
	fmt.Printf("posts: %d\n", st.TotalItems)
	for status, n := range st.ItemsByStatus {
		fmt.Printf("  %s: %d\n", status, n)
	}
	fmt.Println("active rules:")
	for t, n := range st.ActiveRules {
		fmt.Printf("  %s: %d\n", t, n)
	}
	fmt.Printf("learning events: %d\n", st.LearningEvents)
	for _, kw := range st.TopKeywords {
		fmt.Printf("  keyword %q used %d times\n", kw.Value, kw.TimesUsed)
	}
}

func cmdUsage(cfg *config.Config, sub string, asJSON bool) {
	lim := limiter.New(cfg.DataDir, cfg.Usage.MaxPosts, cfg.Usage.WindowHours)
	switch sub {
	case "status":
		stats, err := lim.Stats()
		if err != nil {
			fatal("%s", err)
		}
		if asJSON {
			printJSON(stats)
			return
		}
		fmt.Printf("window: %d used, %d remaining (resets %s)\n",
			stats.Current.Used, stats.Current.Remaining,
			stats.Current.ResetAt.Format("15:04"))
		fmt.Printf("all time: %d posts across %d windows\n", stats.TotalPosts, stats.WindowsSeen)
	case "reset":
		if err := lim.Reset(); err != nil {
			fatal("%s", err)
		}
		fmt.Println("usage counter reset for the current window")
	default:
		fatal("usage: blogsmith usage [status|reset]")
	}
}

func cmdBrandInit(path string) {
	if _, err := os.Stat(path); err == nil {
		fatal("%s already exists", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil && filepath.Dir(path) != "." {
		fatal("%s", err)
	}
	if err := brand.Save(brand.Default(), path); err != nil {
		fatal("%s", err)
	}
	fmt.Printf("wrote starter profile to %s — edit it and set brand_profile in your config\n", path)
}

func cmdDoctor(cfg *config.Config) {
	fmt.Println(tui.TitleStyle.Render("blogsmith doctor"))
	fmt.Println()

	issues := 0
	for name, pcfg := range cfg.Providers {
		label := name
		if name == cfg.DefaultProvider {
			label = name + " (default)"
		}
		fmt.Printf("  %s ... ", label)
		status := health.Check(context.Background(), pcfg.Type, pcfg.BaseURL, pcfg.APIKey)
		if status.Reachable {
			extra := ""
			if len(status.Models) > 0 {
				extra = fmt.Sprintf(" (%d models)", len(status.Models))
			}
			fmt.Printf("ok%s [%s]\n", extra, status.Latency.Round(10*time.Millisecond))
		} else {
			fmt.Printf("FAIL: %s\n", status.Error)
			issues++
		}
	}

	fmt.Println()
	for _, check := range health.CheckData(cfg.DataDir) {
		if check.OK {
			fmt.Printf("  %s ... ok\n", check.Name)
		} else {
			fmt.Printf("  %s ... FAIL: %s\n", check.Name, check.Error)
			issues++
		}
	}

	if issues > 0 {
		fmt.Fprintf(os.Stderr, "\n%d problem(s) found\n", issues)
		os.Exit(1)
	}
	fmt.Println("\nall good")
}

func cmdMCP(a *app) {
	h := mcp.NewHandlers(a.store, a.generator, a.limiter)
	if err := mcp.Run(h, version.Version); err != nil {
		fatal("mcp server: %s", err)
	}
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fatal("%s", err)
	}
}

// isTerminal checks if stdin is a terminal
func isTerminal() bool {
	fi, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

func fatal(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, tui.ErrorStyle.Render("error: "+msg))
	os.Exit(1)
}

func showHelp() {
	help := `
` + tui.TitleStyle.Render("Blogsmith") + ` - brand-voiced blog writer with a memory

` + tui.LabelStyle.Render("USAGE:") + `
  blogsmith                         Interactive mode
  blogsmith <command> [args]        Run a command

` + tui.LabelStyle.Render("COMMANDS:") + `
  generate <topic>                  Write a post, review it, retry until it passes
  tweak <id> <instruction>          Apply a small edit to a stored post
  rules [list|add|remove]           Manage content preferences
  drafts [status]                   List stored posts
  show <id>                         Print a post
  approve <id> [status]             Move a post to approved (or another status)
  feedback [--type <type>] <text>   Teach the writer from free-text feedback
  validate [file]                   Check text (or stdin) against the rules
  stats                             Memory overview
  usage [status|reset]              Generation budget for the current window
  brand init [path]                 Write a starter brand profile to edit
  doctor                            Check providers and data files
  mcp                               Serve the tools over MCP stdio
  help                              Show this help

` + tui.LabelStyle.Render("FLAGS:") + `
  --provider <name>                 Use a specific provider
  --model <name>                    Use a specific model
  --strict-duplicates               Reject drafts that duplicate earlier posts
  --json                            Machine-readable output where supported
  --version                         Show version
  --help, -h                        Show this help

` + tui.LabelStyle.Render("EXAMPLES:") + `
  blogsmith generate "the history of club ties"
  blogsmith tweak 01J8 "change silk to wool"
  blogsmith rules add banned_word cheap "sounds low-end"
  blogsmith feedback "never use corporate jargon"
`
	fmt.Println(help)
}
