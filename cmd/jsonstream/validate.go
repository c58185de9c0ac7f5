package main

import (
	"fmt"
	"os"

	"github.com/k0kubun/pp/v3"
	"github.com/mcvoid/jsonstream"
	"github.com/mcvoid/jsonstream/jsonvalidate"
	"github.com/spf13/cobra"
)

func newValidateCmd(debug *bool) *cobra.Command {
	var schemaPath string
	var allowComments bool
	var allowTrailingCommas bool

	cmd := &cobra.Command{
		Use:   "validate <file> --schema <schema.json>",
		Short: "Validate a JSON file against a JSON Schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if schemaPath == "" {
				return fmt.Errorf("--schema is required")
			}
			data, err := readFileArg(args)
			if err != nil {
				return err
			}
			return validateFile(data, schemaPath, *debug, allowComments, allowTrailingCommas)
		},
	}
	cmd.Flags().StringVar(&schemaPath, "schema", "", "path to the JSON Schema to validate against")
	cmd.Flags().BoolVar(&allowComments, "allow-comments", false, "permit // and /* */ comments in the input")
	cmd.Flags().BoolVar(&allowTrailingCommas, "allow-trailing-commas", false, "permit a trailing comma before } or ]")
	return cmd
}

func validateFile(data []byte, schemaPath string, debug, allowComments, allowTrailingCommas bool) error {
	v, err := jsonvalidate.Compile(schemaPath)
	if err != nil {
		return err
	}

	var parseOpts []jsonstream.Option
	if allowComments {
		parseOpts = append(parseOpts, jsonstream.WithAllowComments(true))
	}
	if allowTrailingCommas {
		parseOpts = append(parseOpts, jsonstream.WithAllowTrailingCommas(true))
	}

	if debug {
		tree, err := jsonvalidate.BuildTree(data, nil, parseOpts...)
		if err != nil {
			return fmt.Errorf("validate: %w", err)
		}
		pp.Println(tree)
	}

	if err := v.Validate(data, parseOpts...); err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	fmt.Fprintln(os.Stdout, "valid")
	return nil
}
