package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	j "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/reoring/wrschema"
	"github.com/reoring/wrschema/i18n"
	"github.com/reoring/wrschema/source"
)

type app struct {
	v      *viper.Viper
	cfg    *Config
	log    *zap.Logger
	cfgArg string
}

func newRootCommand() *cobra.Command {
	a := &app{v: viper.New(), log: zap.NewNop()}

	root := &cobra.Command{
		Use:   "wrschema",
		Short: "Load and dump records through declared schemas",
		Long: `wrschema converts records between their wire form and their loaded form
using a schema declared in YAML or JSON.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(a.v, a.cfgArg)
			if err != nil {
				return err
			}
			a.cfg = cfg
			if a.log, err = newLogger(cfg.LogLevel); err != nil {
				return err
			}
			i18n.SetLanguage(cfg.Language)
			a.log.Debug("config loaded", zap.String("schema", cfg.Schema), zap.String("config", a.v.ConfigFileUsed()))
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) { _ = a.log.Sync() },
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgArg, "config", "", "config file (default ./wrschema.yaml)")
	pf.StringP("schema", "s", "", "schema declaration file (.yaml or .json)")
	pf.String("log-level", "warn", "log level (debug, info, warn, error)")
	pf.String("lang", "en", "message language (en, ja)")
	_ = a.v.BindPFlag("schema", pf.Lookup("schema"))
	_ = a.v.BindPFlag("log_level", pf.Lookup("log-level"))
	_ = a.v.BindPFlag("language", pf.Lookup("lang"))

	root.AddCommand(a.newLoadCommand(), a.newDumpCommand(), a.newReverseCommand())
	return root
}

func (a *app) newLoadCommand() *cobra.Command {
	var input string
	var extras []string
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load a wire document and print the record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := readSchema(a.cfg.Schema)
			if err != nil {
				return err
			}
			data, err := readInput(cmd.InOrStdin(), input)
			if err != nil {
				return err
			}
			ex, err := parseExtras(extras)
			if err != nil {
				return err
			}
			rec, err := s.Load(data, ex)
			if err != nil {
				a.logIssues(err)
				return err
			}
			return a.writeJSON(cmd.OutOrStdout(), rec)
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "-", "input document (.json or .yaml, - for JSON on stdin)")
	cmd.Flags().StringArrayVar(&extras, "extra", nil, "highest-precedence value as key=value (repeatable)")
	return cmd
}

func (a *app) newDumpCommand() *cobra.Command {
	var input string
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Dump a loaded record back to its wire form",
		Long: `Dump reads a record as printed by load. Values of date and time fields
are read as RFC 3339 text.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := readSchema(a.cfg.Schema)
			if err != nil {
				return err
			}
			data, err := readInput(cmd.InOrStdin(), input)
			if err != nil {
				return err
			}
			rec, err := recordTimes(s, data)
			if err != nil {
				return err
			}
			out, err := s.Dump(rec)
			if err != nil {
				a.logIssues(err)
				return err
			}
			return a.writeJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "-", "record document (.json or .yaml, - for JSON on stdin)")
	return cmd
}

type fieldRow struct {
	Name        string   `yaml:"name"`
	SourceNames []string `yaml:"source_names,omitempty"`
	Mapping     string   `yaml:"mapping"`
	Formats     []string `yaml:"formats,omitempty"`
}

func (a *app) newReverseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reverse",
		Short: "Print the field table of the reversed schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := readSchema(a.cfg.Schema)
			if err != nil {
				return err
			}
			var rows []fieldRow
			for _, f := range s.Reverse().Fields() {
				rows = append(rows, fieldRow{
					Name:        f.Name(),
					SourceNames: f.SourceNames(),
					Mapping:     f.Mapping().Kind(),
					Formats:     f.Mapping().Formats(),
				})
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(map[string]any{"fields": rows}); err != nil {
				return err
			}
			return enc.Close()
		},
	}
}

func (a *app) logIssues(err error) {
	iss, _ := wrschema.AsIssues(err)
	for _, it := range iss {
		a.log.Info("rejected", zap.String("path", it.Path), zap.String("code", it.Code), zap.String("message", it.Message))
	}
}

func (a *app) writeJSON(w io.Writer, v any) error {
	enc := j.NewEncoder(w)
	if a.cfg.Indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

func readInput(stdin io.Reader, path string) (map[string]any, error) {
	if path == "" || path == "-" {
		return source.JSONReader(stdin)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return source.YAMLBytes(b)
	default:
		return source.JSONBytes(b)
	}
}

func parseExtras(kvs []string) (map[string]any, error) {
	if len(kvs) == 0 {
		return nil, nil
	}
	out := make(map[string]any, len(kvs))
	for _, kv := range kvs {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid --extra %q, want key=value", kv)
		}
		out[k] = v
	}
	return out, nil
}

// recordTimes parses RFC 3339 text held by date and time fields.
func recordTimes(s *wrschema.Schema, data map[string]any) (wrschema.Record, error) {
	rec := wrschema.Record(data)
	for _, f := range s.Fields() {
		switch f.Mapping().Kind() {
		case "date", "datetime", "rfc3339":
		default:
			continue
		}
		text, ok := data[f.Name()].(string)
		if !ok {
			continue
		}
		t, err := time.Parse(time.RFC3339Nano, text)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name(), err)
		}
		rec[f.Name()] = t
	}
	return rec, nil
}
