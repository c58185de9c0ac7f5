package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/mcvoid/jsonstream"
	"github.com/spf13/cobra"
)

func newLexCmd(debug *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "lex <file>",
		Short: "Stream a JSON file's parse events, one line per event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readFileArg(args)
			if err != nil {
				return err
			}
			return lexFile(data, os.Stdout)
		},
	}
}

func lexFile(data []byte, w io.Writer) error {
	out := bufio.NewWriter(w)
	defer out.Flush()

	var p *jsonstream.Parser
	line := func(kind, detail string) {
		loc := p.GetTokenLocation()
		if detail != "" {
			fmt.Fprintf(out, "%s %d %d %d %s\n", kind, loc.Byte, loc.Line, loc.Column, detail)
		} else {
			fmt.Fprintf(out, "%s %d %d %d\n", kind, loc.Byte, loc.Line, loc.Column)
		}
	}

	handlers := jsonstream.Handlers{
		Null: func(p *jsonstream.Parser) jsonstream.HandlerResult {
			line("null", "")
			return jsonstream.ResultContinue
		},
		Bool: func(p *jsonstream.Parser, value bool) jsonstream.HandlerResult {
			line("bool", fmt.Sprint(value))
			return jsonstream.ResultContinue
		},
		String: func(p *jsonstream.Parser, value []byte, attrs jsonstream.StringAttrs) jsonstream.HandlerResult {
			line("string", string(value))
			return jsonstream.ResultContinue
		},
		RawNumber: func(p *jsonstream.Parser, text []byte, decimalPointIndex int) jsonstream.HandlerResult {
			line("number", string(text))
			return jsonstream.ResultContinue
		},
		SpecialNumber: func(p *jsonstream.Parser, kind jsonstream.SpecialNumber) jsonstream.HandlerResult {
			line("number", kind.String())
			return jsonstream.ResultContinue
		},
		StartObject: func(p *jsonstream.Parser) jsonstream.HandlerResult {
			line("{", "")
			return jsonstream.ResultContinue
		},
		EndObject: func(p *jsonstream.Parser) jsonstream.HandlerResult {
			line("}", "")
			return jsonstream.ResultContinue
		},
		ObjectMember: func(p *jsonstream.Parser, name []byte, first bool) jsonstream.HandlerResult {
			line("member", string(name))
			return jsonstream.ResultContinue
		},
		StartArray: func(p *jsonstream.Parser) jsonstream.HandlerResult {
			line("[", "")
			return jsonstream.ResultContinue
		},
		EndArray: func(p *jsonstream.Parser) jsonstream.HandlerResult {
			line("]", "")
			return jsonstream.ResultContinue
		},
	}

	p = jsonstream.New(handlers)
	if err := p.Parse(data, true); err != nil {
		return fmt.Errorf("lex: %w", err)
	}
	return nil
}
