package cms

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/buger/jsonparser"
	"go.uber.org/zap"
)

// DefaultPHPBinary is used when no interpreter is configured
const DefaultPHPBinary = "php"

var (
	// ErrNoDocumentRoot is returned when the client has no site to work on
	ErrNoDocumentRoot = errors.New("bitrix document root is not set")
	// ErrNoStatus is returned when a script exits without a status line
	ErrNoStatus = errors.New("php script did not report a status")
)

var moduleCodePattern = regexp.MustCompile(`^[A-Za-z0-9_.]+$`)

// Executor runs a program in dir and returns what it printed
type Executor func(ctx context.Context, dir, name string, args ...string) (stdout, stderr []byte, err error)

// ExecCommand is the Executor backed by os/exec
func ExecCommand(ctx context.Context, dir, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// PHPClient drives the CMS by running scripts through the php binary.
// It implements Facade and ModuleInstaller.
type PHPClient struct {
	DocumentRoot string
	Binary       string
	Exec         Executor
	Logger       *zap.Logger
}

// NewPHPClient creates a client for the site at documentRoot
func NewPHPClient(documentRoot, binary string, logger *zap.Logger) *PHPClient {
	if binary == "" {
		binary = DefaultPHPBinary
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PHPClient{
		DocumentRoot: documentRoot,
		Binary:       binary,
		Exec:         ExecCommand,
		Logger:       logger,
	}
}

// CheckAgents runs due agents
func (c *PHPClient) CheckAgents(ctx context.Context) error {
	_, err := c.run(ctx, "check-agents", checkAgentsBody)
	return err
}

// CheckEvents sends queued mail events in cron mode
func (c *PHPClient) CheckEvents(ctx context.Context) error {
	_, err := c.run(ctx, "check-events", checkEventsBody)
	return err
}

// SetOption stores a module option
func (c *PHPClient) SetOption(ctx context.Context, module, name, value string) error {
	body := fmt.Sprintf(setOptionBody, phpString(module), phpString(name), phpString(value))
	_, err := c.run(ctx, "set-option", body)
	return err
}

// Load downloads the module from the marketplace
func (c *PHPClient) Load(ctx context.Context, code string) error {
	return c.install(ctx, "load", code, loadBody)
}

// Register installs the downloaded module
func (c *PHPClient) Register(ctx context.Context, code string) error {
	return c.install(ctx, "register", code, registerBody)
}

// Remove uninstalls the module and deletes its files
func (c *PHPClient) Remove(ctx context.Context, code string) error {
	return c.install(ctx, "remove", code, removeBody)
}

func (c *PHPClient) install(ctx context.Context, op, code, body string) error {
	if !moduleCodePattern.MatchString(code) {
		return &InstallError{Kind: ModuleNotFound, Code: code, Message: "invalid module code"}
	}

	_, err := c.run(ctx, op, fmt.Sprintf(body, phpString(code)))
	if err == nil {
		return nil
	}

	var se *ScriptError
	if errors.As(err, &se) {
		return &InstallError{Kind: ParseKind(se.Category), Code: code, Message: se.Message, Err: err}
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	kind := Unexpected
	if errors.Is(err, context.DeadlineExceeded) {
		kind = Timeout
	}
	return &InstallError{Kind: kind, Code: code, Err: err}
}

// ScriptError is a failure reported by the script itself
type ScriptError struct {
	Op       string
	Category string
	Message  string
}

func (e *ScriptError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("php %s: %s", e.Op, e.Category)
	}
	return fmt.Sprintf("php %s: %s: %s", e.Op, e.Category, e.Message)
}

// status is the outcome reported by a script
type status struct {
	OK       bool
	Category string
	Message  string
}

func (c *PHPClient) run(ctx context.Context, op, body string) (*status, error) {
	if c.DocumentRoot == "" {
		return nil, ErrNoDocumentRoot
	}

	script := buildScript(c.DocumentRoot, body)
	args := []string{"-d", "display_errors=stderr", "-d", "memory_limit=-1", "-r", script}

	start := time.Now()
	stdout, stderr, err := c.Exec(ctx, c.DocumentRoot, c.Binary, args...)
	c.Logger.Debug("php script finished",
		zap.String("op", op),
		zap.Duration("elapsed", time.Since(start)),
		zap.Error(err),
	)
	if len(stderr) > 0 {
		c.Logger.Debug("php stderr", zap.String("op", op), zap.ByteString("stderr", bytes.TrimSpace(stderr)))
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("php %s: %w", op, ctxErr)
	}

	st, parseErr := parseStatus(stdout)
	if parseErr != nil {
		if err != nil {
			return nil, fmt.Errorf("php %s failed: %w: %s", op, err, strings.TrimSpace(string(stderr)))
		}
		return nil, fmt.Errorf("php %s: %w", op, parseErr)
	}

	if !st.OK {
		return st, &ScriptError{Op: op, Category: st.Category, Message: st.Message}
	}
	return st, nil
}

// parseStatus finds the last status line in the script output
func parseStatus(stdout []byte) (*status, error) {
	var line []byte
	scanner := bufio.NewScanner(bytes.NewReader(stdout))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		text := bytes.TrimSpace(scanner.Bytes())
		if bytes.HasPrefix(text, []byte(statusMarker)) {
			line = append(line[:0], text[len(statusMarker):]...)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if line == nil {
		return nil, ErrNoStatus
	}

	ok, err := jsonparser.GetBoolean(line, "ok")
	if err != nil {
		return nil, fmt.Errorf("malformed status line: %w", err)
	}
	st := &status{OK: ok}
	if v, err := jsonparser.GetString(line, "category"); err == nil {
		st.Category = v
	}
	if v, err := jsonparser.GetString(line, "message"); err == nil {
		st.Message = v
	}
	return st, nil
}
