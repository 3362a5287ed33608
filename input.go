package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/modgen/internal/clangjson"
	"github.com/phobologic/modgen/internal/config"
	"github.com/phobologic/modgen/internal/decl"
	"github.com/phobologic/modgen/internal/discover"
	"github.com/phobologic/modgen/internal/lang"
	"github.com/phobologic/modgen/internal/parse"
)

const stdinName = "<stdin>"

// loadTree reads input with the configured parser and returns its translation
// unit. input is a file, a directory of headers, or - for stdin.
func loadTree(ctx context.Context, input string, cfg *config.Config, stdin io.Reader, log *logger) (*decl.Decl, error) {
	parser := strings.ToLower(cfg.Parser)

	if input == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		if parser == config.ParserClang {
			return nil, fmt.Errorf("%w: the clang parser needs a file, not stdin", errUsage)
		}
		return parseBytes(ctx, parser, data, stdinName, log)
	}

	info, err := os.Stat(input)
	if err != nil {
		return nil, fmt.Errorf("input: %w", err)
	}
	if info.IsDir() {
		if parser == config.ParserJSON || parser == config.ParserClang {
			return nil, fmt.Errorf("%w: a directory can only be parsed as source", errUsage)
		}
		return parseDir(ctx, input, cfg, log)
	}

	if parser == config.ParserClang {
		log.Debugf("running %s on %s", cfg.Clang.Command, input)
		data, err := clangjson.Dump(ctx, cfg.Clang, input)
		if err != nil {
			return nil, err
		}
		return parseJSON(data, input)
	}

	data, err := os.ReadFile(input)
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	if parser == config.ParserAuto && strings.EqualFold(filepath.Ext(input), ".json") {
		parser = config.ParserJSON
	}
	return parseBytes(ctx, parser, data, input, log)
}

// parseBytes parses one in-memory input. In auto mode a document whose first
// non-space byte is { is a clang JSON AST; anything else is source.
func parseBytes(ctx context.Context, parser string, data []byte, name string, log *logger) (*decl.Decl, error) {
	if parser == config.ParserJSON || (parser == config.ParserAuto && looksLikeJSON(data)) {
		log.Debugf("reading %s as a clang JSON AST", name)
		return parseJSON(data, name)
	}

	l := lang.ForPath(name)
	log.Debugf("parsing %s as %s source", name, l.Name)
	unit, err := parse.File(ctx, l, l.NewParser(), data, name)
	if err != nil {
		return nil, err
	}
	if unit.HasErrors {
		log.Warnf("%s: syntax errors, some declarations may be missing", name)
	}
	return parse.Merge([]*parse.Unit{unit}), nil
}

func parseJSON(data []byte, name string) (*decl.Decl, error) {
	tu, err := clangjson.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return tu, nil
}

func looksLikeJSON(data []byte) bool {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == '{'
}

func parseDir(ctx context.Context, root string, cfg *config.Config, log *logger) (*decl.Decl, error) {
	found, err := discover.Files(root, discover.Options{
		Headers:     cfg.Paths.Headers,
		Ignore:      cfg.Paths.Ignore,
		MaxFileSize: cfg.MaxFileSize,
	})
	if err != nil {
		return nil, fmt.Errorf("discovering headers: %w", err)
	}
	for _, f := range found.Oversized {
		log.Warnf("%s: skipped (>%d bytes)", f.Path, cfg.MaxFileSize)
	}
	if len(found.Files) == 0 {
		return nil, fmt.Errorf("no headers found in %s", root)
	}
	log.Debugf("parsing %d headers", len(found.Files))

	units := parseFilesConcurrent(ctx, root, found.Files, cfg.Jobs, log)
	if len(units) == 0 {
		return nil, fmt.Errorf("no headers could be parsed")
	}
	return parse.Merge(units), nil
}

// parseFilesConcurrent parses files on a worker pool and returns the units in
// the order of files.
func parseFilesConcurrent(ctx context.Context, root string, files []discover.FileEntry, jobs int, log *logger) []*parse.Unit {
	type result struct {
		index int
		unit  *parse.Unit
	}

	numWorkers := jobs
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}
	if numWorkers > len(files) {
		numWorkers = len(files)
	}

	work := make(chan int, len(files))
	results := make(chan result, len(files))

	var wg sync.WaitGroup
	for range numWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()

			// Each goroutine gets its own parsers
			parsers := make(map[string]*sitter.Parser)

			for idx := range work {
				f := files[idx]
				l := lang.Languages[f.Language]
				p, ok := parsers[f.Language]
				if !ok {
					p = l.NewParser()
					parsers[f.Language] = p
				}

				source, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(f.Path)))
				if err != nil {
					log.Warnf("failed to read %s: %v", f.Path, err)
					continue
				}

				unit, err := parse.File(ctx, l, p, source, f.Path)
				if err != nil {
					log.Warnf("failed to parse %s: %v", f.Path, err)
					continue
				}
				if unit.HasErrors {
					log.Debugf("%s: syntax errors, some declarations may be missing", f.Path)
				}
				results <- result{index: idx, unit: unit}
			}
		}()
	}

	for i := range files {
		work <- i
	}
	close(work)

	go func() {
		wg.Wait()
		close(results)
	}()

	// Collect results in original order
	indexed := make([]*parse.Unit, len(files))
	for r := range results {
		indexed[r.index] = r.unit
	}

	var units []*parse.Unit
	for _, u := range indexed {
		if u != nil {
			units = append(units, u)
		}
	}
	return units
}
