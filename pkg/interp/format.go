package interp

// format.go: human-readable renderings of an interpretation.

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Style selects a text rendering.
type Style int

const (
	// StyleStandard prints one term-like block per interpretation, one
	// table per line.
	StyleStandard Style = iota
	// StyleTabular prints operation tables as grids.
	StyleTabular
)

// ParseStyle maps "standard" or "tabular" to a Style.
func ParseStyle(s string) (Style, error) {
	switch strings.ToLower(s) {
	case "standard", "":
		return StyleStandard, nil
	case "tabular", "table":
		return StyleTabular, nil
	}
	return 0, fmt.Errorf("unknown format style %q", s)
}

// Format writes in to w in the given style.
func Format(w io.Writer, in *Interpretation, style Style) error {
	bw := bufio.NewWriter(w)
	switch style {
	case StyleTabular:
		formatTabular(bw, in)
	default:
		formatStandard(bw, in)
	}
	return bw.Flush()
}

func formatStandard(w *bufio.Writer, in *Interpretation) {
	fmt.Fprintf(w, "interpretation( %d, [%s], [\n", in.size, in.label)
	for i, s := range in.order {
		t := in.tables[s]
		fmt.Fprintf(w, "    %s(%s, [%s])", t.kind, symbolPattern(s), joinValues(t.values, ","))
		if i < len(in.order)-1 {
			w.WriteString(",")
		}
		w.WriteString("\n")
	}
	w.WriteString("]).\n")
}

func symbolPattern(s Symbol) string {
	if s.Arity == 0 {
		return s.Name
	}
	return s.Name + "(" + strings.Repeat("_,", s.Arity-1) + "_)"
}

func joinValues(vs []int, sep string) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = valueString(v)
	}
	return strings.Join(parts, sep)
}

func formatTabular(w *bufio.Writer, in *Interpretation) {
	if in.label != "" {
		fmt.Fprintf(w, "%% %s\n", in.label)
	}
	width := len(strconv.Itoa(in.size - 1))
	cell := func(v int) string { return fmt.Sprintf("%*s", width, valueString(v)) }
	header := func() string {
		parts := make([]string, in.size)
		for e := range parts {
			parts[e] = cell(e)
		}
		return strings.Join(parts, " ")
	}

	for _, s := range in.order {
		t := in.tables[s]
		switch s.Arity {
		case 0:
			fmt.Fprintf(w, " %s : %s\n", s.Name, valueString(t.values[0]))
		case 1:
			h := header()
			fmt.Fprintf(w, " %s :\n", s.Name)
			fmt.Fprintf(w, "      %s\n", h)
			fmt.Fprintf(w, "    --%s\n", strings.Repeat("-", len(h)))
			row := make([]string, in.size)
			for e := range row {
				row[e] = cell(t.values[e])
			}
			fmt.Fprintf(w, "      %s\n", strings.Join(row, " "))
		case 2:
			h := header()
			fmt.Fprintf(w, " %s :\n", s.Name)
			fmt.Fprintf(w, "    %*s | %s\n", width, "", h)
			fmt.Fprintf(w, "    %s-+-%s\n", strings.Repeat("-", width), strings.Repeat("-", len(h)))
			for i := 0; i < in.size; i++ {
				row := make([]string, in.size)
				for j := range row {
					row[j] = cell(t.values[i*in.size+j])
				}
				fmt.Fprintf(w, "    %s | %s\n", cell(i), strings.Join(row, " "))
			}
		default:
			fmt.Fprintf(w, " %s : [%s]\n", symbolPattern(s), joinValues(t.values, ","))
		}
		w.WriteString("\n")
	}
}
