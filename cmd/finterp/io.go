package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/gitrdm/gofinite/pkg/interp"
)

// readModels compiles every description in the named files, or in stdin
// when no file (or "-") is given.
func (a *app) readModels(cmd *cobra.Command, args []string) ([]*interp.Interpretation, error) {
	var opts []interp.CompileOption
	if a.cfg.Filter.AllowIncomplete {
		opts = append(opts, interp.AllowIncomplete())
	}
	if len(args) == 0 {
		args = []string{"-"}
	}

	var models []*interp.Interpretation
	for _, name := range args {
		descs, err := readDescriptions(cmd, name)
		if err != nil {
			return nil, err
		}
		for i, d := range descs {
			m, err := interp.Compile(d, opts...)
			if err != nil {
				return nil, fmt.Errorf("%s: interpretation %d: %w", displayName(name), i+1, err)
			}
			models = append(models, m)
		}
	}
	a.logger.Debug("interpretations read", "files", len(args), "models", len(models))
	return models, nil
}

func readDescriptions(cmd *cobra.Command, name string) ([]interp.Description, error) {
	if name == "-" {
		descs, err := interp.ReadDescriptions(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("stdin: %w", err)
		}
		return descs, nil
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	descs, err := interp.ReadDescriptions(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return descs, nil
}

func displayName(name string) string {
	if name == "-" {
		return "stdin"
	}
	return name
}

// readClauseFile parses the clauses in path. An empty path yields none.
func readClauseFile(path string) ([]interp.Clause, error) {
	if path == "" {
		return nil, nil
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cs, err := interp.ParseClauses(string(src))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cs, nil
}

// readFormulas parses formulas from path (if set) followed by the inline
// expressions.
func readFormulas(path string, inline []string) ([]interp.Formula, error) {
	var out []interp.Formula
	if path != "" {
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		fs, err := interp.ParseFormulas(string(src))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		out = append(out, fs...)
	}
	for _, s := range inline {
		f, err := interp.ParseFormula(s)
		if err != nil {
			return nil, fmt.Errorf("formula %q: %w", s, err)
		}
		out = append(out, f)
	}
	return out, nil
}

// parseSymbols parses "name" or "name/arity" entries. Nil in, nil out.
func parseSymbols(list []string) ([]interp.Symbol, error) {
	if list == nil {
		return nil, nil
	}
	out := make([]interp.Symbol, 0, len(list))
	for _, s := range list {
		sym, err := interp.ParseSymbol(s)
		if err != nil {
			return nil, err
		}
		out = append(out, sym)
	}
	return out, nil
}

// outputStyle resolves the -o flag. Without it, terminals get the standard
// text style and everything else gets YAML so that output can be piped
// into another finterp command.
func (a *app) outputStyle(w io.Writer) string {
	if a.flags.output != "" {
		return strings.ToLower(a.flags.output)
	}
	if f, ok := w.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return "standard"
	}
	return "yaml"
}

// writeModels prints models in the selected style, restricted to the
// configured output symbols.
func (a *app) writeModels(w io.Writer, models []*interp.Interpretation) error {
	syms, err := parseSymbols(a.cfg.Filter.OutputSymbols)
	if err != nil {
		return err
	}
	if syms != nil {
		restricted := make([]*interp.Interpretation, len(models))
		for i, m := range models {
			restricted[i] = m.Restrict(syms)
		}
		models = restricted
	}

	style := a.outputStyle(w)
	if style == "yaml" {
		descs := make([]interp.Description, len(models))
		for i, m := range models {
			descs[i] = m.Describe()
		}
		return interp.WriteDescriptions(w, descs...)
	}
	st, err := interp.ParseStyle(style)
	if err != nil {
		return err
	}
	for _, m := range models {
		if err := interp.Format(w, m, st); err != nil {
			return err
		}
	}
	return nil
}
