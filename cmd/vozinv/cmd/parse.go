package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vozinv/vozinv/internal/currency"
	"github.com/vozinv/vozinv/pkg/vozparse"
)

var (
	parseJSON    bool
	parseExplain bool
)

var parseCmd = &cobra.Command{
	Use:   "parse [texto...]",
	Short: "Interpreta frases de inventario",
	Long: `Interpreta una frase dada como argumentos, o una frase por línea
desde la entrada estándar cuando no hay argumentos.

Ejemplos:
  vozinv parse ocho cuarenta y dos mil
  vozinv parse --json "5 20000"
  vozinv parse --explain tres dos mil quinientos cincuenta
  cat frases.txt | vozinv parse --json`,
	RunE: runParse,
}

func init() {
	parseCmd.Flags().BoolVar(&parseJSON, "json", false, "una línea JSON por frase")
	parseCmd.Flags().BoolVar(&parseExplain, "explain", false, "muestra cada etapa del análisis")
	rootCmd.AddCommand(parseCmd)
}

// parseOutput is the JSON shape of one parsed line
type parseOutput struct {
	Input  string          `json:"input"`
	Type   string          `json:"type,omitempty"`
	Result vozparse.Result `json:"result"`
}

func runParse(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	formatter, err := currency.New(cfg.Currency.Locale, cfg.Currency.Symbol)
	if err != nil {
		return err
	}
	parser := vozparse.Parser{Logger: newLogger(cfg, "parse", cmd.ErrOrStderr())}

	out := cmd.OutOrStdout()
	handle := func(input string) error {
		if parseExplain {
			return writeTrace(out, parser.Explain(input), formatter)
		}
		return writeResult(out, input, parser.Parse(input), formatter)
	}

	if len(args) > 0 {
		return handle(strings.Join(args, " "))
	}

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := handle(line); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func writeResult(out io.Writer, input string, result vozparse.Result, f *currency.Formatter) error {
	if parseJSON {
		return json.NewEncoder(out).Encode(parseOutput{Input: input, Type: vozparse.Kind(result), Result: result})
	}
	_, err := fmt.Fprintln(out, describe(result, input, f))
	return err
}

// describe renders a result as one human readable line
func describe(result vozparse.Result, input string, f *currency.Formatter) string {
	switch r := result.(type) {
	case vozparse.Record:
		return fmt.Sprintf("%d x %s = %s  %q", r.Quantity, f.Format(r.UnitPrice), f.Format(r.Subtotal), r.RawText)
	case vozparse.Command:
		return fmt.Sprintf("%s  %q", r.Kind, r.RawText)
	default:
		return fmt.Sprintf("no entendido  %q", input)
	}
}

func writeTrace(out io.Writer, tr vozparse.Trace, f *currency.Formatter) error {
	if parseJSON {
		return json.NewEncoder(out).Encode(tr)
	}

	fmt.Fprintf(out, "input:      %q\n", tr.Input)
	fmt.Fprintf(out, "normalized: %q\n", tr.Normalized)
	if tr.Kind == "COMMAND" {
		fmt.Fprintf(out, "result:     %s\n", describe(tr.Result, tr.Input, f))
		return nil
	}
	fmt.Fprintf(out, "tokens:     %s\n", joinTokens(tr.Tokens))
	fmt.Fprintf(out, "merged:     %s\n", joinTokens(tr.Merged))
	fmt.Fprintf(out, "segments:   %v\n", tr.Segments)
	fmt.Fprintf(out, "numbers:    %v\n", tr.Numbers)
	if tr.Overflow {
		fmt.Fprintln(out, "overflow:   true")
	}
	_, err := fmt.Fprintf(out, "result:     %s\n", describe(tr.Result, tr.Input, f))
	return err
}

func joinTokens(tokens []vozparse.Token) string {
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		parts[i] = t.String()
	}
	return strings.Join(parts, " ")
}
