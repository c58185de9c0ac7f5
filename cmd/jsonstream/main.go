// Command jsonstream is a thin command-line driver over the
// jsonstream, jsonvalidate, and cborevents packages: it never parses
// JSON itself, only wires the library event stream to stdout, a
// schema validator, or a CBOR encoder.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:           "jsonstream",
		Short:         "Stream, validate, and re-emit JSON without building a DOM",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	var debug bool
	root.PersistentFlags().BoolVar(&debug, "debug", false, "validate: pretty-print the decoded value before validating (lex and emit ignore it)")

	root.AddCommand(newLexCmd(&debug))
	root.AddCommand(newValidateCmd(&debug))
	root.AddCommand(newEmitCmd(&debug))

	if err := root.Execute(); err != nil {
		log.SetFlags(0)
		log.SetOutput(os.Stderr)
		log.Printf("jsonstream: %v", err)
		os.Exit(1)
	}
}

func readFileArg(args []string) ([]byte, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("expected exactly one file argument")
	}
	return os.ReadFile(args[0])
}
