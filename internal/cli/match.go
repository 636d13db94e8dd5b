package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/manojoshi/sdborm/codec"
	q "github.com/manojoshi/sdborm/query"
)

type matchOptions struct {
	codecFlags
	every       bool
	null        bool
	notNull     bool
	singleQuote bool
}

// NewMatchCommand creates the match command.
func NewMatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &matchOptions{}
	cmd := &cobra.Command{
		Use:   "match <attribute> [value]...",
		Short: "Render a value matcher as a select-expression fragment",
		Long: `Render a value matcher as a select-expression fragment.

One value renders an equality, several a membership test. Pass --kind to
encode the values as numbers; without it they are used verbatim. Use
itemName() as the attribute to match on the item name.`,
		Example: `  sdbcodec match color blue
  sdbcodec match --kind int32 --padding 3 --offset 0 --every size 5 7
  sdbcodec match deleted_at --null`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			frag, err := runMatch(cmd, rootOpts, opts, args[0], args[1:])
			if err != nil {
				return err
			}
			return writeRows(cmd.OutOrStdout(), rootOpts.Format, []Row{{Input: args[0], Output: frag}})
		},
	}
	opts.register(cmd, "")
	cmd.Flags().BoolVar(&opts.every, "every", false, "match every value of a multi-valued attribute")
	cmd.Flags().BoolVar(&opts.null, "null", false, "match items without the attribute")
	cmd.Flags().BoolVar(&opts.notNull, "not-null", false, "match items with the attribute")
	cmd.Flags().BoolVar(&opts.singleQuote, "single-quote", false, "quote literals with ' instead of \"")
	cmd.MarkFlagsMutuallyExclusive("null", "not-null")
	return cmd
}

func runMatch(cmd *cobra.Command, rootOpts *RootOptions, opts *matchOptions, attr string, raw []string) (string, error) {
	var desc q.Descriptor
	switch {
	case attr == q.ItemNameToken:
		desc = q.ItemName
	case opts.every:
		desc = q.Every(attr)
	default:
		desc = q.Attr(attr)
	}

	var values *q.Values
	switch {
	case opts.null || opts.notNull:
		if len(raw) > 0 {
			return "", WrapExitError(ExitCommandError, "bad arguments", fmt.Errorf("null checks take no values"))
		}
		if opts.null {
			values = q.IsNull()
		} else {
			values = q.IsNotNull()
		}
	case len(raw) == 0:
		return "", WrapExitError(ExitCommandError, "bad arguments", fmt.Errorf("at least one value is required"))
	default:
		vs, enc, err := matchValues(cmd, rootOpts, opts, raw)
		if err != nil {
			return "", err
		}
		if len(vs) == 1 {
			values = q.Eq(vs[0])
		} else {
			values = q.In(vs...)
		}
		if enc != nil {
			values.With(enc)
		}
	}
	if opts.singleQuote {
		values.Quote(q.SingleQuote)
	}

	m, err := values.Build()
	if err != nil {
		return "", WrapExitError(ExitFailure, "build matcher", err)
	}
	return q.Compile(q.Where(desc, m)), nil
}

// matchValues parses raw as numbers when a kind is given.
func matchValues(cmd *cobra.Command, rootOpts *RootOptions, opts *matchOptions, raw []string) ([]any, q.Encoder, error) {
	vs := make([]any, len(raw))
	if opts.kind == "" {
		for i, r := range raw {
			vs[i] = r
		}
		return vs, nil, nil
	}
	cfg, err := opts.resolve(cmd, rootOpts)
	if err != nil {
		return nil, nil, err
	}
	c, err := codec.New(cfg)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "codec config", err)
	}
	for i, r := range raw {
		n, err := parseNumber(cfg.Kind, r)
		if err != nil {
			return nil, nil, WrapExitError(ExitFailure, "parse "+r, err)
		}
		vs[i] = n
	}
	return vs, c, nil
}
