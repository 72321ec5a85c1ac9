package tools

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"runtime"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
)

const defaultExecTimeout = 60 * time.Second

// ExecInput parameters for exec tool
type ExecInput struct {
	Command    string `json:"command" jsonschema:"required,description=Shell command to execute"`
	WorkingDir string `json:"working_dir,omitempty" jsonschema:"description=Working directory for the command"`
}

// ExecOutput result of exec tool
type ExecOutput struct {
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
	ExitCode int    `json:"exit_code"`
}

// rmForceRecursive matches -r -f, -f -r, -rf and -fr flag spellings.
const rmForceRecursive = `(-[a-z]*r[a-z]*\s+-[a-z]*f[a-z]*|-[a-z]*f[a-z]*\s+-[a-z]*r[a-z]*|-[a-z]*rf[a-z]*|-[a-z]*fr[a-z]*)`

// Commands that are refused even after approval.
var dangerousPatterns = []*regexp.Regexp{
	// recursive force delete of root or anything under home
	regexp.MustCompile(`(?i)\brm\s+` + rmForceRecursive + `\s+/\s*$`),
	regexp.MustCompile(`(?i)\brm\s+` + rmForceRecursive + `\s+~`),
	regexp.MustCompile(`(?i)\bsudo\s+rm\s+` + rmForceRecursive + `\s+/\s*$`),
	regexp.MustCompile(`(?i)--no-preserve-root`),
	regexp.MustCompile(`(?i)\bmkfs\b`),
	regexp.MustCompile(`(?i)\bdd\s+if=`),
	// fork bomb
	regexp.MustCompile(`:\(\)\s*\{.*\|.*&\s*\}\s*;`),
	regexp.MustCompile(`(?i)\bformat\s+[a-z]:`),
	regexp.MustCompile(`(?i)\bdel\s+/[a-z]\s+/[a-z]\s+/[a-z]`),
}

func isDangerous(cmd string) (bool, string) {
	for _, pat := range dangerousPatterns {
		if pat.MatchString(cmd) {
			return true, pat.String()
		}
	}
	return false, ""
}

type execToolImpl struct {
	timeout    time.Duration
	workingDir string
}

func (e *execToolImpl) execute(ctx context.Context, input *ExecInput) (*ExecOutput, error) {
	command := strings.TrimSpace(input.Command)
	if command == "" {
		return nil, fmt.Errorf("command is required")
	}
	if dangerous, pattern := isDangerous(command); dangerous {
		return &ExecOutput{
			Stderr:   fmt.Sprintf("Blocked dangerous command matching pattern: %s", pattern),
			ExitCode: 1,
		}, nil
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.CommandContext(timeoutCtx, "cmd", "/C", command)
	} else {
		cmd = exec.CommandContext(timeoutCtx, "sh", "-c", command)
	}

	cmd.Dir = e.workingDir
	if input.WorkingDir != "" {
		cmd.Dir = input.WorkingDir
	}

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	exitCode := 0
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, fmt.Errorf("run command: %w", err)
		}
		exitCode = exitErr.ExitCode()
	}

	return &ExecOutput{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: exitCode,
	}, nil
}

// NewExecTool creates the exec tool. A non-positive timeout uses 60s.
func NewExecTool(timeout time.Duration, workingDir string) (tool.InvokableTool, error) {
	if timeout <= 0 {
		timeout = defaultExecTimeout
	}
	impl := &execToolImpl{timeout: timeout, workingDir: workingDir}
	return utils.InferTool("exec", "Execute a shell command", impl.execute)
}

// EchoInput parameters for echo tool
type EchoInput struct {
	Text string `json:"text" jsonschema:"required,description=Text to return"`
}

// NewEchoTool creates a tool that returns its input text.
func NewEchoTool() (tool.InvokableTool, error) {
	return utils.InferTool("echo", "Return the given text unchanged",
		func(ctx context.Context, input *EchoInput) (string, error) {
			return input.Text, nil
		})
}

// DefaultTools builds the built-in tools.
func DefaultTools(execTimeout time.Duration, workingDir string) ([]tool.InvokableTool, error) {
	echo, err := NewEchoTool()
	if err != nil {
		return nil, fmt.Errorf("create echo tool: %w", err)
	}
	execTool, err := NewExecTool(execTimeout, workingDir)
	if err != nil {
		return nil, fmt.Errorf("create exec tool: %w", err)
	}
	return []tool.InvokableTool{echo, execTool}, nil
}
