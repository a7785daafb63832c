// Command confwizard runs an interactive configuration wizard from a schema
// document and writes the validated configuration to a file or stdout.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fatih/color"
	kjson "github.com/knadh/koanf/parsers/json"
	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	confwizard "github.com/goliatone/go-confwizard"
	"github.com/goliatone/go-confwizard/pkg/backend"
	"github.com/goliatone/go-confwizard/pkg/backends/prompt"
	"github.com/goliatone/go-confwizard/pkg/backends/tui"
	"github.com/goliatone/go-confwizard/pkg/backends/webform"
	"github.com/goliatone/go-confwizard/pkg/output"
	"github.com/goliatone/go-confwizard/pkg/validate"
	"github.com/goliatone/go-confwizard/pkg/wizard"
)

const envPrefix = "CONFWIZARD_"

type options struct {
	schema  string
	adapter string
	backend string
	format  string
	out     string
	prefill string
}

func main() {
	if err := newRootCmd().ExecuteContext(signalContext()); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "confwizard",
		Short:         "Interactive configuration wizard driven by a schema document",
		Long:          "confwizard reads a JSON Schema or OpenAPI document, asks one question per setting, validates the answers against the schema, and writes the resulting configuration file.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.schema, "schema", "s", "", "schema document: file path or http(s) URL (required)")
	flags.StringVar(&opts.adapter, "adapter", "", "pin a source adapter (jsonschema, openapi); default auto-detect")
	flags.StringVarP(&opts.backend, "backend", "b", "", "rendering backend (prompt, tui, webform); default tui on a terminal, webform otherwise")
	flags.StringVarP(&opts.format, "format", "f", "yaml", "output format (yaml, json, env)")
	flags.StringVarP(&opts.out, "output", "o", "", "output file; default stdout")
	flags.StringVar(&opts.prefill, "prefill", "", "existing configuration file used to seed answers (json or yaml)")
	_ = cmd.MarkFlagRequired("schema")

	return cmd
}

func signalContext() context.Context {
	ctx, _ := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	return ctx
}

func run(ctx context.Context, opts *options, stdout, stderr io.Writer) error {
	applyEnv(opts)

	format, err := output.ParseFormat(opts.format)
	if err != nil {
		return err
	}

	wiz := confwizard.New()
	tree, err := wiz.Tree(ctx, schemaSource(opts.schema), opts.adapter)
	if err != nil {
		return err
	}

	prefill, err := loadPrefill(opts.prefill)
	if err != nil {
		return err
	}

	backendName := opts.backend
	if backendName == "" {
		backendName = defaultBackend()
	}
	b, err := buildBackend(backendName, stderr)
	if err != nil {
		return err
	}

	driver, err := wizard.New(tree, b)
	if err != nil {
		return err
	}
	config, err := driver.RunWithAnswers(ctx, prefill)
	if err != nil {
		return err
	}

	if err := writeConfig(config, format, opts.out, stdout); err != nil {
		return err
	}
	if opts.out != "" {
		color.New(color.FgGreen).Fprintf(stderr, "✓ configuration written to %s\n", opts.out)
	}
	return nil
}

// applyEnv fills unset flags from CONFWIZARD_* variables, so flags always
// win over the environment.
func applyEnv(opts *options) {
	k := koanf.New(".")
	if err := k.Load(env.Provider(envPrefix, ".", func(key string) string {
		return strings.ToLower(strings.TrimPrefix(key, envPrefix))
	}), nil); err != nil {
		return
	}

	if opts.schema == "" {
		opts.schema = k.String("schema")
	}
	if opts.adapter == "" {
		opts.adapter = k.String("adapter")
	}
	if opts.backend == "" {
		opts.backend = k.String("backend")
	}
	if opts.out == "" {
		opts.out = k.String("output")
	}
	if opts.prefill == "" {
		opts.prefill = k.String("prefill")
	}
}

func schemaSource(location string) confwizard.Source {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return confwizard.SourceFromURL(location)
	}
	return confwizard.SourceFromFile(location)
}

func defaultBackend() string {
	if term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd())) {
		return tui.DefaultBackendName
	}
	return webform.DefaultBackendName
}

func buildBackend(name string, stderr io.Writer) (backend.Backend, error) {
	switch name {
	case prompt.DefaultBackendName:
		return prompt.New(prompt.WithOutput(stderr)), nil
	case tui.DefaultBackendName:
		return tui.New(), nil
	case webform.DefaultBackendName:
		return webform.New(webform.WithNotify(func(url string) {
			color.New(color.FgCyan).Fprintf(stderr, "open %s to continue\n", url)
		})), nil
	default:
		return nil, fmt.Errorf("unknown backend %q (have prompt, tui, webform)", name)
	}
}

// loadPrefill reads an existing configuration file and flattens it into the
// dotted answer map the wizard seeds its first pass with.
func loadPrefill(path string) (map[string]any, error) {
	if path == "" {
		return nil, nil
	}

	k := koanf.New(".")
	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		parser = kjson.Parser()
	case ".yaml", ".yml":
		parser = kyaml.Parser()
	default:
		return nil, fmt.Errorf("prefill file %s must be .json or .yaml", path)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, fmt.Errorf("load prefill: %w", err)
	}
	return k.All(), nil
}

func writeConfig(config validate.Config, format output.Format, path string, stdout io.Writer) error {
	if path == "" {
		return output.Write(stdout, config, format)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()
	return output.Write(f, config, format)
}
