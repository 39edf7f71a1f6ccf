// Command molrender evaluates a sketch script and writes the diagram as
// SVG or PNG, optionally with a YAML snapshot.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chazu/molsketch/pkg/config"
	"github.com/chazu/molsketch/pkg/diagram"
	"github.com/chazu/molsketch/pkg/render/rastersurface"
	"github.com/chazu/molsketch/pkg/render/svgsurface"
	"github.com/chazu/molsketch/pkg/script"
	"github.com/chazu/molsketch/pkg/store"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type options struct {
	output   string
	format   string
	scale    float64
	margin   float64
	snapshot string
	envFile  string
}

func newRootCmd() *cobra.Command {
	var o options
	cmd := &cobra.Command{
		Use:          "molrender <script>",
		Short:        "Render a molsketch script to SVG or PNG",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0], o)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&o.output, "output", "o", "", "output file (default stdout)")
	f.StringVar(&o.format, "format", "", "svg or png (default from the output extension, else svg)")
	f.Float64Var(&o.scale, "scale", 0, "PNG pixels per canvas unit (default from config)")
	f.Float64Var(&o.margin, "margin", -1, "margin around the diagram (default from config)")
	f.StringVar(&o.snapshot, "snapshot", "", "also write a YAML snapshot to this file")
	f.StringVar(&o.envFile, "env", "", "load settings from this .env file")
	return cmd
}

func run(cmd *cobra.Command, path string, o options) error {
	var files []string
	if o.envFile != "" {
		files = append(files, o.envFile)
	}
	cfg, err := config.Load(files...)
	if err != nil {
		return err
	}
	log := cfg.Logger(cmd.ErrOrStderr())
	if o.scale <= 0 {
		o.scale = cfg.Render.Scale
	}
	if o.margin < 0 {
		o.margin = cfg.Render.Margin
	}
	format, err := outputFormat(o.format, o.output)
	if err != nil {
		return err
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	eng := script.NewEngine()
	eng.Atom = cfg.AtomDefaults()
	d, evalErrs, err := eng.Evaluate(string(src))
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if len(evalErrs) > 0 {
		errs := make([]error, len(evalErrs))
		for i, e := range evalErrs {
			errs[i] = fmt.Errorf("%s: %w", path, e)
		}
		return errors.Join(errs...)
	}
	d.SetSink(diagram.LogSink{Logger: log})
	log.Debug("evaluated", "script", path, "objects", d.Len(), "document", d.UUID)

	if o.snapshot != "" {
		if err := writeFile(o.snapshot, func(w io.Writer) error { return store.Save(d, w) }); err != nil {
			return err
		}
	}

	render := func(w io.Writer) error {
		if format == "png" {
			return rastersurface.Render(d, w, o.scale, o.margin)
		}
		return svgsurface.Render(d, w, o.margin)
	}
	if o.output == "" {
		return render(cmd.OutOrStdout())
	}
	return writeFile(o.output, render)
}

func outputFormat(format, output string) (string, error) {
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(output)), ".")
		if format == "" {
			format = "svg"
		}
	}
	switch format {
	case "svg", "png":
		return format, nil
	}
	return "", fmt.Errorf("unsupported format %q", format)
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return write(f)
}
