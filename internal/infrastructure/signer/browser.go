package signer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

const defaultEvalTimeout = 10 * time.Second

// Vendor script entry points
const (
	FunctionBogus  = "signBogus"
	FunctionGnarly = "signGnarly"
)

// BrowserConfig configures the headless Chrome runtime
type BrowserConfig struct {
	// ScriptPath is a bundled script defining the signing functions as globals
	ScriptPath string
	// RemoteURL points at a running Chrome DevTools endpoint; empty launches a local browser
	RemoteURL   string
	NoSandbox   bool
	EvalTimeout time.Duration
	Logger      *zap.Logger
}

// BrowserRuntime keeps one headless tab with the vendor script loaded and
// evaluates signing functions inside it. Calls are serialized on the tab.
type BrowserRuntime struct {
	config      BrowserConfig
	logger      *zap.Logger
	allocCtx    context.Context
	allocCancel context.CancelFunc
	tabCtx      context.Context
	tabCancel   context.CancelFunc
	mu          sync.Mutex
}

// NewBrowserRuntime starts the browser and loads the script.
func NewBrowserRuntime(config BrowserConfig) (*BrowserRuntime, error) {
	if config.EvalTimeout <= 0 {
		config.EvalTimeout = defaultEvalTimeout
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	source, err := os.ReadFile(config.ScriptPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrScriptMissing, config.ScriptPath, err)
	}

	r := &BrowserRuntime{config: config, logger: logger}
	r.initAllocator()

	r.tabCtx, r.tabCancel = chromedp.NewContext(r.allocCtx,
		chromedp.WithLogf(func(format string, args ...interface{}) {
			r.logger.Debug(fmt.Sprintf(format, args...))
		}),
	)

	if err := chromedp.Run(r.tabCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, scriptDocument(string(source))).Do(ctx)
		}),
	); err != nil {
		r.Close()
		return nil, fmt.Errorf("signer: load script: %w", err)
	}

	logger.Info("Signer browser runtime ready",
		zap.String("script", config.ScriptPath),
		zap.Bool("remote", config.RemoteURL != ""),
	)
	return r, nil
}

func (r *BrowserRuntime) initAllocator() {
	if r.config.RemoteURL != "" {
		r.allocCtx, r.allocCancel = chromedp.NewRemoteAllocator(context.Background(), r.config.RemoteURL)
		return
	}
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-background-networking", true),
	)
	if r.config.NoSandbox {
		opts = append(opts, chromedp.Flag("no-sandbox", true))
	}
	r.allocCtx, r.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
}

// Call evaluates fn(args...) in the tab and returns the string result.
func (r *BrowserRuntime) Call(ctx context.Context, fn string, args ...any) (string, error) {
	expr, err := callExpression(fn, args...)
	if err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	evalCtx, cancel := context.WithTimeout(r.tabCtx, r.config.EvalTimeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var out string
	if err := chromedp.Run(evalCtx, chromedp.Evaluate(expr, &out)); err != nil {
		return "", fmt.Errorf("signer: evaluate %s: %w", fn, err)
	}
	return out, nil
}

// Close shuts the tab and the browser
func (r *BrowserRuntime) Close() error {
	if r.tabCancel != nil {
		r.tabCancel()
	}
	if r.allocCancel != nil {
		r.allocCancel()
	}
	return nil
}

// Script is a Signer backed by one function of the loaded vendor script.
type Script struct {
	Runtime  *BrowserRuntime
	Function string
}

// Sign implements Signer. The version argument is passed only when set.
func (s Script) Sign(ctx context.Context, in Input) (string, error) {
	args := []any{in.Query, in.Body, in.UserAgent, in.Timestamp}
	if in.Version != "" {
		args = append(args, in.Version)
	}
	token, err := s.Runtime.Call(ctx, s.Function, args...)
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", ErrEmptyToken
	}
	return token, nil
}

var _ Signer = Script{}

// callExpression renders fn(args...) with JSON-encoded arguments.
func callExpression(fn string, args ...any) (string, error) {
	parts := make([]string, 0, len(args))
	for _, a := range args {
		b, err := json.Marshal(a)
		if err != nil {
			return "", fmt.Errorf("signer: encode argument: %w", err)
		}
		parts = append(parts, string(b))
	}
	return fmt.Sprintf("String(%s(%s))", fn, strings.Join(parts, ", ")), nil
}

func scriptDocument(source string) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html><html><head><meta charset=\"UTF-8\"><script>")
	b.WriteString(strings.ReplaceAll(source, "</script", "<\\/script"))
	b.WriteString("</script></head><body></body></html>")
	return b.String()
}
