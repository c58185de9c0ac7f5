package main

import (
	"fmt"
	"os"

	"github.com/mcvoid/jsonstream"
	"github.com/mcvoid/jsonstream/cborevents"
	"github.com/spf13/cobra"
)

func newEmitCmd(debug *bool) *cobra.Command {
	var cborPath string

	cmd := &cobra.Command{
		Use:   "emit <file> --cbor <out>",
		Short: "Re-emit a JSON file's event stream as a CBOR event log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cborPath == "" {
				return fmt.Errorf("--cbor is required")
			}
			data, err := readFileArg(args)
			if err != nil {
				return err
			}
			return emitFile(data, cborPath)
		},
	}
	cmd.Flags().StringVar(&cborPath, "cbor", "", "path to write the CBOR event log to")
	return cmd
}

func emitFile(data []byte, cborPath string) error {
	rec := cborevents.NewRecorder()
	p := jsonstream.New(rec.Handlers())
	if err := p.Parse(data, true); err != nil {
		return fmt.Errorf("emit: %w", err)
	}

	out, err := rec.Finish()
	if err != nil {
		return fmt.Errorf("emit: %w", err)
	}

	if err := os.WriteFile(cborPath, out, 0o644); err != nil {
		return fmt.Errorf("emit: write %s: %w", cborPath, err)
	}
	fmt.Fprintf(os.Stdout, "wrote %d bytes to %s (%d events)\n", len(out), cborPath, len(rec.Events()))
	return nil
}
