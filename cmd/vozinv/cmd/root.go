package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	mdwerror "github.com/vozinv/vozinv/foundation/core/error"
	"github.com/vozinv/vozinv/pkg/core/config"
	"github.com/vozinv/vozinv/pkg/core/logging"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "vozinv",
	Short: "vozinv - inventario por voz en español",
	Long: `vozinv convierte frases dictadas en registros de inventario.

Cada frase como "ocho cuarenta y dos mil" se interpreta como
cantidad y precio unitario (8 x $ 42.000 = $ 336.000). Palabras
como "borrar" o "deshacer" eliminan el último registro.

Comandos:
  parse    - interpreta frases sueltas
  session  - sesión interactiva de conteo
  serve    - servidor WebSocket y gRPC
  status   - estado de un servidor en ejecución`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		printError(rootCmd.ErrOrStderr(), "vozinv", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "archivo de configuración (default: $"+config.EnvVar+" o ./configs/vozinv.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "salida detallada (nivel debug)")
}

// loadConfig returns the configuration and the file it came from.
// Without --config and without a default file the built-in defaults
// are used and the path is empty.
func loadConfig() (*config.Config, string, error) {
	if cfgFile != "" {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return nil, "", err
		}
		return cfg, cfgFile, nil
	}

	cfg, path, err := config.LoadFromEnv()
	if mdwerror.HasCode(err, mdwerror.CodeMissingConfig) {
		return config.Default(), "", nil
	}
	return cfg, path, err
}

// newLogger builds a component logger from the [general] section;
// --verbose lowers it to debug
func newLogger(cfg *config.Config, name string, out io.Writer) *logging.Logger {
	logger := logging.NewWithConfig(logging.LoggerConfig{
		ServiceName: name,
		Level:       cfg.General.LogLevel,
		Format:      cfg.General.LogFormat,
		Output:      out,
	})
	if verbose {
		logger = logger.WithLevel(logging.LevelDebug)
	}
	return logger
}

func printError(w io.Writer, msg string, err error) {
	fmt.Fprintf(w, "Error: %s: %v\n", msg, err)
}
