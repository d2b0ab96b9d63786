package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/rnaviz/pkg/structure"
)

// inspectCommand creates the inspect command, a text report of a structure.
func (c *CLI) inspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect SEQUENCE [PAIRS]",
		Short: "Print the dot-bracket notation and pairings of a structure",
		Long: `Print a text report of an RNA structure: the sequence, its dot-bracket
notation, the pairing indices and the bases on either side of each pairing.

No layout is computed.`,
		Example: `  rnaviz inspect GGGAAAUCC 0,8,1,7,2,6`,
		Args:    cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			seq, pairs, err := parseInput(args)
			if err != nil {
				return err
			}
			s, err := structure.New(seq, pairs)
			if err != nil {
				return err
			}
			c.Logger.Debug("built structure", "nucleotides", s.Len(), "bonds", s.EdgeCount())
			writeReport(cmd.OutOrStdout(), s, args)
			return nil
		},
	}
}

func writeReport(w io.Writer, s *structure.Structure, args []string) {
	indices := make([]string, 0, len(s.Pairings()))
	for _, b := range s.Pairings() {
		indices = append(indices, fmt.Sprintf("{%d,%d}", b.I, b.J))
	}

	printKeyValue(w, "Sequence", s.Sequence())
	printKeyValue(w, "Dot-bracket", s.DotBracket())
	printKeyValue(w, "Nucleotides", strconv.Itoa(s.Len()))
	printKeyValue(w, "Pairings", strconv.Itoa(len(indices)))
	printKeyValue(w, "Pair indices", orNone(strings.Join(indices, " ")))
	printKeyValue(w, "Pairs", orNone(strings.Join(s.PairSummary(), " ")))
	fmt.Fprintln(w)
	printNextStep(w, "Render", appName+" render "+strings.Join(args, " "))
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
