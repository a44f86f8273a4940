// Package process runs an external scanner engine as a subprocess.
//
// Every operation is one invocation of the engine command with the operation
// name as its last argument:
//
//	<command> [args...] rules|parse|scan|fix
//
// The request is written to stdin as JSON and the response is read from stdout
// as JSON. A non-zero exit status fails the operation; stderr is attached to
// the returned error.
package process

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"flowscanner/internal/rules"
	"flowscanner/internal/scanner"
)

// DefaultCommand is used when neither --engine nor FLOWSCANNER_ENGINE is set.
const DefaultCommand = "flow-scanner-engine"

const (
	opRules = "rules"
	opParse = "parse"
	opScan  = "scan"
	opFix   = "fix"
)

// maxStderr bounds how much engine stderr is copied into errors.
const maxStderr = 2048

type Engine struct {
	Command string
	Args    []string
	// Env is appended to the current process environment.
	Env    []string
	Logger *slog.Logger
}

var _ scanner.Engine = (*Engine)(nil)

func New(command string, args ...string) *Engine {
	if strings.TrimSpace(command) == "" {
		command = DefaultCommand
	}
	return &Engine{Command: command, Args: args}
}

type rulesResponse struct {
	Rules []rules.CatalogEntry `json:"rules"`
}

type parseRequest struct {
	Paths []string `json:"paths"`
}

type parseResponse struct {
	Flows []*scanner.Artifact `json:"flows"`
}

type ruleConfig struct {
	Rules map[string]rules.Entry `json:"rules"`
}

type scanRequest struct {
	Flows  []*scanner.Artifact `json:"flows"`
	Config ruleConfig          `json:"config"`
}

type resultsPayload struct {
	Results []scanner.Result `json:"results"`
}

func (e *Engine) RuleCatalog(ctx context.Context) ([]rules.CatalogEntry, error) {
	var resp rulesResponse
	if err := e.call(ctx, opRules, struct{}{}, &resp); err != nil {
		return nil, err
	}
	return resp.Rules, nil
}

func (e *Engine) Parse(ctx context.Context, paths []string) ([]*scanner.Artifact, error) {
	var resp parseResponse
	if err := e.call(ctx, opParse, parseRequest{Paths: paths}, &resp); err != nil {
		return nil, err
	}
	return resp.Flows, nil
}

func (e *Engine) Scan(ctx context.Context, parsed []*scanner.Artifact, doc *rules.Document) ([]scanner.Result, error) {
	cfg := ruleConfig{Rules: make(map[string]rules.Entry, doc.Len())}
	for _, name := range doc.Names() {
		entry, _ := doc.Get(name)
		cfg.Rules[name] = entry
	}
	var resp resultsPayload
	if err := e.call(ctx, opScan, scanRequest{Flows: parsed, Config: cfg}, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

func (e *Engine) Fix(ctx context.Context, results []scanner.Result) ([]scanner.Result, error) {
	var resp resultsPayload
	if err := e.call(ctx, opFix, resultsPayload{Results: results}, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

func (e *Engine) call(ctx context.Context, op string, req any, resp any) error {
	if ctx == nil {
		return errors.New("engine call: nil context")
	}
	if e == nil {
		return errors.New("engine call: nil Engine")
	}
	command := e.Command
	if command == "" {
		command = DefaultCommand
	}
	if _, err := exec.LookPath(command); err != nil {
		return fmt.Errorf("scanner engine %q not found (set --engine or FLOWSCANNER_ENGINE): %w", command, err)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", op, err)
	}

	args := append(append([]string{}, e.Args...), op)
	cmd := exec.CommandContext(ctx, command, args...)
	if len(e.Env) > 0 {
		cmd.Env = append(os.Environ(), e.Env...)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdin = bytes.NewReader(body)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if e.Logger != nil {
		e.Logger.Debug("engine call", "op", op, "command", command, "request_bytes", len(body))
	}

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		msg := strings.TrimSpace(stderr.String())
		if len(msg) > maxStderr {
			msg = msg[:maxStderr] + "..."
		}
		if msg == "" {
			return fmt.Errorf("engine %s failed: %w", op, err)
		}
		return fmt.Errorf("engine %s failed: %w: %s", op, err, msg)
	}

	if err := json.Unmarshal(stdout.Bytes(), resp); err != nil {
		return fmt.Errorf("decode %s response: %w", op, err)
	}
	return nil
}
