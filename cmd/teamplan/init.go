package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/teamplan/internal/config"
	"github.com/ShayCichocki/teamplan/internal/request"
)

var (
	initForce       bool
	initRequestName string
)

var initCmd = &cobra.Command{
	Use:   "init [directory]",
	Short: "Create a project config and an example request",
	Long: `Set up a directory for teamplan.

Creates:
  - .teamplan.yaml   project configuration overrides
  - request.yaml     a commented example planning request
  - .teamplan/logs   the log directory, added to .gitignore

Existing files are kept unless --force is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite existing files")
	initCmd.Flags().StringVar(&initRequestName, "request", "request.yaml", "Name of the example request file")
}

const projectConfigTemplate = `# teamplan project configuration.
# Values here override ~/.config/teamplan/config.yaml.

provider:
  # Set to false to always use template decomposition.
  enabled: true
  timeout: 60s

scheduling:
  buffer: 15m
  deadline_margin: 24h
  utilization_limit: 0.8

defaults:
  parts: 1
  work_hours_per_day: 8
  start_hour: 9
  end_hour: 17
  days_of_week: [1, 2, 3, 4, 5]

logging:
  level: info
  file: .teamplan/logs/teamplan.log
`

func runInit(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolving absolute path: %w", err)
	}
	if err := os.MkdirAll(absPath, 0755); err != nil {
		return fmt.Errorf("creating directory %s: %w", absPath, err)
	}

	fmt.Fprintf(out, "Initializing teamplan in %s...\n\n", absPath)

	files := []struct {
		name    string
		content string
	}{
		{config.ProjectConfigName, projectConfigTemplate},
		{initRequestName, request.Example},
	}
	for _, f := range files {
		written, err := writeFileUnlessExists(filepath.Join(absPath, f.name), f.content, initForce)
		if err != nil {
			return err
		}
		if written {
			printStatus(out, "✓", "Created "+f.name, color.FgGreen)
		} else {
			printStatus(out, "•", f.name+" exists (use --force to overwrite)", color.FgYellow)
		}
	}

	if err := os.MkdirAll(filepath.Join(absPath, ".teamplan", "logs"), 0755); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}
	printStatus(out, "✓", "Created .teamplan/logs", color.FgGreen)

	added, err := ensureGitignore(absPath, ".teamplan/")
	if err != nil {
		return fmt.Errorf("updating .gitignore: %w", err)
	}
	if added {
		printStatus(out, "✓", "Added .teamplan/ to .gitignore", color.FgGreen)
	}

	switch config.GetAPIKeySource(env.cfg) {
	case config.KeySourceNone:
		printStatus(out, "⚠", "No Anthropic credentials; plans will use templates until ANTHROPIC_API_KEY is set", color.FgYellow)
	default:
		printStatus(out, "✓", "Anthropic credentials found", color.FgGreen)
	}

	fmt.Fprintf(out, "\n%s Ready. Next steps:\n", color.GreenString("✓"))
	fmt.Fprintf(out, "  1. Edit %s\n", initRequestName)
	fmt.Fprintf(out, "  2. teamplan plan %s\n", initRequestName)
	return nil
}

// writeFileUnlessExists writes content to path. It reports false without
// writing when the file exists and force is off.
func writeFileUnlessExists(path, content string, force bool) (bool, error) {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return false, nil
		} else if !errors.Is(err, fs.ErrNotExist) {
			return false, fmt.Errorf("checking %s: %w", path, err)
		}
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return false, fmt.Errorf("writing %s: %w", path, err)
	}
	return true, nil
}

// ensureGitignore appends entry to dir/.gitignore unless a line already
// matches it. It reports whether the file changed.
func ensureGitignore(dir, entry string) (bool, error) {
	path := filepath.Join(dir, ".gitignore")
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return false, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	endsWithNewline := true
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == entry || line == strings.TrimSuffix(entry, "/") {
			return false, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return false, err
	}

	info, err := f.Stat()
	if err != nil {
		return false, err
	}
	if info.Size() > 0 {
		last := make([]byte, 1)
		if _, err := f.ReadAt(last, info.Size()-1); err != nil && err != io.EOF {
			return false, err
		}
		endsWithNewline = last[0] == '\n'
	}

	prefix := ""
	if !endsWithNewline {
		prefix = "\n"
	}
	if _, err := f.WriteString(prefix + entry + "\n"); err != nil {
		return false, err
	}
	return true, nil
}

// printStatus prints a status line with color
func printStatus(out io.Writer, symbol, message string, colorAttr color.Attribute) {
	c := color.New(colorAttr)
	fmt.Fprintf(out, "%s %s\n", c.Sprint(symbol), message)
}
