package signer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
)

const defaultCommandTimeout = 10 * time.Second

// Command runs an external executable per signature. The Input is written
// as JSON to stdin and the token is read from stdout.
type Command struct {
	Path    string
	Args    []string
	Timeout time.Duration
	logger  *zap.Logger
}

// NewCommand creates a command signer
func NewCommand(path string, args []string, timeout time.Duration, logger *zap.Logger) *Command {
	if timeout <= 0 {
		timeout = defaultCommandTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Command{Path: path, Args: args, Timeout: timeout, logger: logger}
}

// Sign implements Signer
func (c *Command) Sign(ctx context.Context, in Input) (string, error) {
	payload, err := json.Marshal(in)
	if err != nil {
		return "", fmt.Errorf("signer: marshal input: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.Path, c.Args...)
	cmd.Stdin = bytes.NewReader(payload)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		c.logger.Warn("Signer command failed",
			zap.String("path", c.Path),
			zap.String("stderr", strings.TrimSpace(stderr.String())),
			zap.Error(err),
		)
		return "", fmt.Errorf("signer: run %s: %w", c.Path, err)
	}

	token := strings.TrimSpace(stdout.String())
	if token == "" {
		return "", ErrEmptyToken
	}
	return token, nil
}

var _ Signer = (*Command)(nil)
