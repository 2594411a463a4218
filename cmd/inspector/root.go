package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/GoPolymarket/econgate/internal/model"
	"github.com/GoPolymarket/econgate/internal/schema"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type options struct {
	strict   bool
	precheck bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "inspector",
		Short: "Inspect and check economy contracts offline",
		Long: `inspector lists the economy contracts and closed enums known to the
gateway and checks payload files against them without a running server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVar(&opts.strict, "strict", false, "reject keys a contract does not declare")
	root.PersistentFlags().BoolVar(&opts.precheck, "precheck", false, "check the raw payload against the JSON Schema first")

	root.AddCommand(
		newListCmd(),
		newEnumsCmd(),
		newValidateCmd(opts),
		newRenderCmd(opts),
		newSchemaCmd(),
	)
	return root
}

func newListCmd() *cobra.Command {
	var family string
	var eventsOnly bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered contracts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CONTRACT\tFAMILY\tEVENT")
			for _, d := range model.Contracts().Descriptors() {
				if family != "" && d.Family != family {
					continue
				}
				if eventsOnly && !d.Event {
					continue
				}
				fmt.Fprintf(tw, "%s\t%s\t%t\n", d.Name, d.Family, d.Event)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&family, "family", "", "only contracts of this family")
	cmd.Flags().BoolVar(&eventsOnly, "events", false, "only event contracts")
	return cmd
}

func newEnumsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "enums [name]",
		Short: "List closed enums, or the labels of one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			enums := schema.Enums()
			if len(args) == 1 {
				labels, ok := enums[args[0]]
				if !ok {
					return reportError(cmd, fmt.Errorf("%w: enum %s", schema.ErrUnknownContract, args[0]))
				}
				for _, l := range labels {
					fmt.Fprintln(out, l)
				}
				return nil
			}
			names := make([]string, 0, len(enums))
			for name := range enums {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintf(out, "%s: %s\n", name, strings.Join(enums[name], ", "))
			}
			return nil
		},
	}
}

func newValidateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <contract> <file|->",
		Short: "Check a payload and print its canonical form",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := decodeInput(cmd, opts, args[0], args[1])
			if err != nil {
				return reportError(cmd, err)
			}
			canonical, err := schema.Canonical(v)
			if err != nil {
				return reportError(cmd, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok %s\n%s\n", args[0], canonical)
			return nil
		},
	}
}

func newRenderCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "render <contract> <file|->",
		Short: "Print the indented text form of a payload",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := decodeInput(cmd, opts, args[0], args[1])
			if err != nil {
				return reportError(cmd, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), schema.Render(v))
			return nil
		},
	}
}

func newSchemaCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "schema <contract>",
		Short: "Print the JSON Schema of a contract",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := model.Contracts().JSONSchema(args[0])
			if err != nil {
				return reportError(cmd, err)
			}
			out := cmd.OutOrStdout()
			switch format {
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(doc)
			case "yaml":
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				defer enc.Close()
				return enc.Encode(doc)
			default:
				return fmt.Errorf("unknown format %q, want json or yaml", format)
			}
		},
	}
	cmd.Flags().StringVar(&format, "format", "json", "output format: json or yaml")
	return cmd
}

func decodeInput(cmd *cobra.Command, opts *options, contract, path string) (any, error) {
	data, err := readInput(cmd.InOrStdin(), path)
	if err != nil {
		return nil, err
	}
	registry := model.Contracts()
	if opts.precheck {
		if err := registry.ValidateRaw(contract, data); err != nil {
			return nil, err
		}
	}
	var decodeOpts []schema.DecodeOption
	if opts.strict {
		decodeOpts = append(decodeOpts, schema.DisallowUnknownFields())
	}
	return registry.Decode(contract, data, decodeOpts...)
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

// reportError prints the error kind and offending fields to stderr and
// returns err so the process exits non-zero.
func reportError(cmd *cobra.Command, err error) error {
	w := cmd.ErrOrStderr()
	var ves schema.ValidationErrors
	var enumErr *schema.UnrecognizedEnumValueError
	var malformed *schema.MalformedPayloadError
	switch {
	case errors.As(err, &ves):
		fmt.Fprintf(w, "validation: %d violation(s)\n", len(ves))
		for _, ve := range ves {
			fmt.Fprintf(w, "  %s\t%s\t%s\n", ve.Field, ve.Rule, ve.Message)
		}
	case errors.As(err, &enumErr):
		fmt.Fprintf(w, "unrecognized_enum: %s %q\n", enumErr.Type, enumErr.Label)
	case errors.As(err, &malformed):
		fmt.Fprintf(w, "malformed: %s\n", malformed.Error())
	case errors.Is(err, schema.ErrUnknownContract):
		fmt.Fprintf(w, "unknown_contract: %v\n", err)
	default:
		fmt.Fprintf(w, "error: %v\n", err)
	}
	return err
}
