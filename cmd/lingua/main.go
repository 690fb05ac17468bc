// Lingua is a formality-aware translation and speech synthesis daemon.
//
// Usage:
//
//	lingua serve [--config lingua.yaml]
//	lingua translate --from English --to Japanese --formality friend "Hello"
//	lingua speak --lang es --out hola.mp3 "¿Qué tal?"
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configFile string
	logLevel   string
	logFormat  string
}

func newRootCmd() *cobra.Command {
	gf := &globalFlags{}

	root := &cobra.Command{
		Use:   "lingua",
		Short: "Formality-aware translation and speech synthesis",
		Long: `lingua translates text with a generative language model, honouring the
requested formality register, dialect and pronouns, and speaks the result
with a text-to-speech backend.

Run "lingua serve" to start the HTTP (and optionally gRPC) API, or use the
translate and speak subcommands for one-off requests.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&gf.configFile, "config", "", "path to config file (default: ./lingua.yaml, ./configs/lingua.yaml, /etc/lingua/lingua.yaml)")
	pf.StringVar(&gf.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	pf.StringVar(&gf.logFormat, "log-format", "json", "log format: json or text")

	root.AddCommand(
		newServeCmd(gf),
		newTranslateCmd(gf),
		newSpeakCmd(gf),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "lingua %s (%s)\n", version, commit)
		},
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
