package clangjson

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/phobologic/modgen/internal/config"
)

// Dump runs clang on file and returns the JSON AST it prints.
func Dump(ctx context.Context, cfg config.ClangConfig, file string) ([]byte, error) {
	args := append([]string{}, cfg.Args...)
	args = append(args, "-Xclang", "-ast-dump=json", "-fsyntax-only", file)

	cmd := exec.CommandContext(ctx, cfg.Command, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return nil, fmt.Errorf("running %s: %w", cfg.Command, err)
		}
		return nil, fmt.Errorf("running %s: %w: %s", cfg.Command, err, msg)
	}
	return stdout.Bytes(), nil
}
