package optionscmder

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/ollamachat/pkg/llm"
)

const optionsShortDesc string = "Print the default sampling options"

func NewOptionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "options",
		Short: optionsShortDesc,
		Long: optionsShortDesc + `.

These are the values the chat surfaces start from. Override them per call
with generate --option key=value.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			options := llm.DefaultOptions()

			keys := make([]string, 0, len(options))
			for key := range options {
				keys = append(keys, key)
			}
			sort.Strings(keys)

			for _, key := range keys {
				fmt.Fprintf(cmd.OutOrStdout(), "%s = %v\n", key, options[key])
			}
			return nil
		},
	}
}
