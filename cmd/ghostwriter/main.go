// Package main is a one-shot driver for the ghostwriter completion engine:
// it completes a file at a cursor position and prints the suggestion. The
// editor integration uses the same packages; this entry point exists for
// debugging prompts, models, and configs from a shell.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dshills/ghostwriter/internal/accept"
	"github.com/dshills/ghostwriter/internal/cache"
	"github.com/dshills/ghostwriter/internal/config"
	"github.com/dshills/ghostwriter/internal/logging"
	"github.com/dshills/ghostwriter/internal/request"
	"github.com/dshills/ghostwriter/internal/suggest"
	"github.com/dshills/ghostwriter/internal/transport"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

type options struct {
	configPath string
	file       string
	row        int
	col        int
	filetype   string
	logLevel   string
	timeout    time.Duration
}

func run() int {
	opts, ok := parseFlags()
	if !ok {
		return 1
	}

	logging.SetLevel(opts.logLevel)

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if opts.logLevel == "" {
		logging.SetLevel(cfg.LogLevel)
	}

	apiKey := cfg.APIKey()
	if apiKey == "" {
		fmt.Fprintf(os.Stderr, "Error: no API key in $%s\n", cfg.APIKeyEnv)
		return 1
	}

	data, err := os.ReadFile(opts.file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	before, after, err := splitAt(string(data), opts.row, opts.col)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	lines := strings.Split(string(data), "\n")
	engine := accept.NewEngine(staticSource(lines), accept.WithRadius(cfg.LocateRadius))
	sink := &waitSink{engine: engine, done: make(chan struct{}, 1)}

	client := transport.NewClient(apiKey,
		transport.WithEndpoint(cfg.Endpoint),
		transport.WithMaxResponseBytes(cfg.MaxResponseBytes))

	store := cache.New(cfg.CacheSize,
		cache.WithTTL(time.Duration(cfg.CacheTTLSeconds)*time.Second))

	view := staticView{buffer: 1, row: opts.row - 1, col: opts.col - 1}
	coordOpts := []request.Option{
		request.WithModel(cfg.Model),
		request.WithMaxTokens(cfg.MaxTokens),
	}
	if cfg.SystemPrompt != "" {
		coordOpts = append(coordOpts, request.WithSystemPrompt(cfg.SystemPrompt))
	}
	coord := request.NewCoordinator(store, client, view, sink, coordOpts...)

	cancel := coord.Request(request.Context{
		BufferID: 1,
		Row:      opts.row - 1,
		Col:      opts.col - 1,
		Filetype: opts.filetype,
		Before:   before,
		After:    after,
		Prefix:   linePrefix(before),
	})

	select {
	case <-sink.done:
	case <-time.After(opts.timeout):
		cancel()
		fmt.Fprintln(os.Stderr, "Error: timed out waiting for completion")
		return 1
	}

	acc, err := engine.AcceptFull()
	if err != nil {
		fmt.Fprintln(os.Stderr, "No suggestion available")
		return 1
	}
	if acc.Delete != nil {
		fmt.Printf("--- delete %d line(s) starting at line %d\n", acc.Delete.Count, acc.Delete.Line+1)
	}
	fmt.Println(acc.Insert)
	return 0
}

func parseFlags() (options, bool) {
	var opts options
	var showVersion bool

	flag.StringVar(&opts.configPath, "config", config.DefaultPath(), "Path to configuration file")
	flag.StringVar(&opts.file, "file", "", "File to complete")
	flag.IntVar(&opts.row, "row", 1, "Cursor line (1-based)")
	flag.IntVar(&opts.col, "col", 1, "Cursor column (1-based)")
	flag.StringVar(&opts.filetype, "filetype", "", "Language tag (defaults from file extension)")
	flag.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.DurationVar(&opts.timeout, "timeout", 30*time.Second, "How long to wait for a completion")
	flag.BoolVar(&showVersion, "version", false, "Show version information")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Ghostwriter - inline AI code completion\n\n")
		fmt.Fprintf(os.Stderr, "Usage: ghostwriter -file main.go -row 10 -col 5\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if showVersion {
		fmt.Printf("Ghostwriter %s (%s)\n", version, commit)
		os.Exit(0)
	}
	if opts.file == "" {
		flag.Usage()
		return opts, false
	}
	if opts.filetype == "" {
		opts.filetype = filetypeFromName(opts.file)
	}
	return opts, true
}

// splitAt divides text into before/after at a 1-based row and column.
func splitAt(text string, row, col int) (string, string, error) {
	if row < 1 || col < 1 {
		return "", "", fmt.Errorf("row and col are 1-based, got %d:%d", row, col)
	}
	lines := strings.SplitAfter(text, "\n")
	if row > len(lines) {
		return "", "", fmt.Errorf("row %d beyond end of file (%d lines)", row, len(lines))
	}
	offset := 0
	for _, line := range lines[:row-1] {
		offset += len(line)
	}
	line := lines[row-1]
	cut := col - 1
	if cut > len(line) {
		cut = len(line)
	}
	offset += cut
	return text[:offset], text[offset:], nil
}

// linePrefix returns the final line of before-cursor text.
func linePrefix(before string) string {
	if i := strings.LastIndexByte(before, '\n'); i >= 0 {
		return before[i+1:]
	}
	return before
}

func filetypeFromName(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 && i < len(name)-1 {
		return name[i+1:]
	}
	return "text"
}

// staticView reports the fixed one-shot cursor position.
type staticView struct {
	buffer, row, col int
}

func (v staticView) Position() (int, int, int) {
	return v.buffer, v.row, v.col
}

// staticSource serves the file's lines for edit-span resolution.
type staticSource []string

func (s staticSource) Lines(bufferID int) []string {
	return s
}

// waitSink forwards deliveries to the engine and signals completion.
type waitSink struct {
	engine *accept.Engine
	done   chan struct{}
}

func (s *waitSink) Show(anchor accept.Anchor, sg suggest.Suggestion) {
	s.engine.Show(anchor, sg)
	select {
	case s.done <- struct{}{}:
	default:
	}
}

func (s *waitSink) Update(anchor accept.Anchor, sg suggest.Suggestion) {
	s.engine.Update(anchor, sg)
}
