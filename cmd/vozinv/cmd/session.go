package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	mdwerror "github.com/vozinv/vozinv/foundation/core/error"
	"github.com/vozinv/vozinv/internal/currency"
	"github.com/vozinv/vozinv/internal/inventory"
	"github.com/vozinv/vozinv/pkg/vozparse"
)

var (
	sessionSection string
	sessionExport  string
)

const sessionHelp = `Abre una sesión de conteo. Cada línea se interpreta como una frase
dictada; los registros se acumulan y "borrar" elimina el último.

Comandos de sesión:
  :total                  total y número de registros
  :list                   registros, el más reciente primero
  :edit N CANT PRECIO     corrige el registro N
  :del N                  elimina el registro N
  :section NOMBRE         cambia la sección
  :export [yaml|json]     imprime la sesión
  :help                   esta ayuda
  :quit                   termina`

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Sesión interactiva de conteo",
	Long:  sessionHelp,
	Args:  cobra.NoArgs,
	RunE:  runSession,
}

func init() {
	sessionCmd.Flags().StringVar(&sessionSection, "section", "", "sección del conteo")
	sessionCmd.Flags().StringVar(&sessionExport, "export", "", "guarda la sesión al terminar (.yaml o .json)")
	rootCmd.AddCommand(sessionCmd)
}

func runSession(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	formatter, err := currency.New(cfg.Currency.Locale, cfg.Currency.Symbol)
	if err != nil {
		return err
	}
	logger := newLogger(cfg, "session", cmd.ErrOrStderr())

	session := inventory.NewSession(logger)
	session.SetSection(sessionSection)

	r := &repl{
		session: session,
		parser:  vozparse.Parser{Logger: logger},
		money:   formatter,
		out:     cmd.OutOrStdout(),
	}
	if err := r.run(cmd.InOrStdin()); err != nil {
		return err
	}

	if sessionExport != "" {
		if err := exportFile(session.Snapshot(), sessionExport); err != nil {
			return err
		}
		fmt.Fprintf(r.out, "Sesión guardada en %s\n", sessionExport)
	}
	logger.Info("session finished", "records", session.Len(), "total", session.Total())
	return nil
}

// repl is the line loop behind the session command
type repl struct {
	session *inventory.Session
	parser  vozparse.Parser
	money   *currency.Formatter
	out     io.Writer
}

func (r *repl) run(in io.Reader) error {
	fmt.Fprintf(r.out, "Sesión %s. Escribe :help para ver los comandos.\n", r.session.ID())

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(r.out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(r.out)
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ":") {
			if quit := r.meta(line); quit {
				break
			}
			continue
		}
		r.dictate(line)
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	r.printTotal()
	return nil
}

func (r *repl) dictate(line string) {
	out, err := r.session.Apply(r.parser.Parse(line))
	if err != nil {
		if mdwerror.HasCode(err, mdwerror.CodeInvalidInput) {
			fmt.Fprintf(r.out, "No entendido: no se pudo interpretar %q\n", line)
			return
		}
		r.printErr(err)
		return
	}

	switch out.Kind {
	case inventory.Added:
		fmt.Fprintf(r.out, "+ #%d %s\n", out.Index+1, r.formatItem(out.Item))
	case inventory.Deleted:
		fmt.Fprintf(r.out, "- eliminado %s\n", r.formatItem(out.Item))
	case inventory.Ignored:
		fmt.Fprintln(r.out, "- no hay registros para eliminar")
	}
	r.printTotal()
}

// meta handles a ":" command and reports whether the session should end
func (r *repl) meta(line string) bool {
	fields := strings.Fields(line)
	switch fields[0] {
	case ":quit", ":q", ":salir":
		return true

	case ":help", ":h", ":ayuda":
		fmt.Fprintln(r.out, sessionHelp)

	case ":total":
		r.printTotal()

	case ":list", ":ls":
		items := r.session.Recent()
		if len(items) == 0 {
			fmt.Fprintln(r.out, "(sin registros)")
		}
		for i, item := range items {
			fmt.Fprintf(r.out, "#%d %s\n", len(items)-i, r.formatItem(item))
		}

	case ":edit":
		if len(fields) != 4 {
			fmt.Fprintln(r.out, "uso: :edit N CANTIDAD PRECIO")
			return false
		}
		n, ok := r.index(fields[1])
		if !ok {
			return false
		}
		item, err := r.session.Edit(n, fields[2], fields[3])
		if err != nil {
			r.printErr(err)
			return false
		}
		fmt.Fprintf(r.out, "* #%d %s\n", n+1, r.formatItem(item))
		r.printTotal()

	case ":del", ":rm":
		if len(fields) != 2 {
			fmt.Fprintln(r.out, "uso: :del N")
			return false
		}
		n, ok := r.index(fields[1])
		if !ok {
			return false
		}
		item, err := r.session.DeleteAt(n)
		if err != nil {
			r.printErr(err)
			return false
		}
		fmt.Fprintf(r.out, "- eliminado %s\n", r.formatItem(item))
		r.printTotal()

	case ":section":
		r.session.SetSection(strings.Join(fields[1:], " "))
		fmt.Fprintf(r.out, "Sección: %s\n", r.session.Section())

	case ":export":
		format := "yaml"
		if len(fields) > 1 {
			format = fields[1]
		}
		data, err := encodeSnapshot(r.session.Snapshot(), format)
		if err != nil {
			r.printErr(err)
			return false
		}
		r.out.Write(data)

	default:
		fmt.Fprintf(r.out, "comando desconocido %s, escribe :help\n", fields[0])
	}
	return false
}

// index converts a 1-based record number to a session index
func (r *repl) index(text string) (int, bool) {
	n, err := strconv.Atoi(text)
	if err != nil || n < 1 {
		fmt.Fprintf(r.out, "número de registro inválido: %s\n", text)
		return 0, false
	}
	return n - 1, true
}

func (r *repl) formatItem(item inventory.Item) string {
	return fmt.Sprintf("%d x %s = %s  %q",
		item.Quantity, r.money.Format(item.UnitPrice), r.money.Format(item.Subtotal), item.RawText)
}

func (r *repl) printTotal() {
	count, total := r.session.Totals()
	fmt.Fprintf(r.out, "Total: %s (%d registros)\n", r.money.Format(total), count)
}

func (r *repl) printErr(err error) {
	var e *mdwerror.Error
	msg := err.Error()
	if errors.As(err, &e) {
		msg = e.Message()
	}
	fmt.Fprintf(r.out, "Error [%s]: %s\n", mdwerror.GetCode(err), msg)
}

func encodeSnapshot(snap inventory.Snapshot, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "yaml", "yml":
		return snap.YAML()
	case "json":
		data, err := snap.JSON()
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	default:
		return nil, mdwerror.Newf("formato desconocido: %s", format).
			WithCode(mdwerror.CodeInvalidFormat).
			WithOperation("session.export")
	}
}

func exportFile(snap inventory.Snapshot, path string) error {
	format := strings.TrimPrefix(filepath.Ext(path), ".")
	data, err := encodeSnapshot(snap, format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
