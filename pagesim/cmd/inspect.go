package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/sarchlab/pagesim/datarecording"
	"github.com/sarchlab/pagesim/mem/trace"
	"github.com/sarchlab/pagesim/mem/vm/report"
	"github.com/sarchlab/pagesim/mem/vm/translator"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <database>",
	Short: "Print what a recorded run did.",
	Long: "`inspect pagesim_xxx.sqlite3` prints the summary of a run " +
		"recorded with `run --record`.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, err := cmd.Flags().GetInt("translations")
		if err != nil {
			return err
		}

		replacedOnly, err := cmd.Flags().GetBool("replaced")
		if err != nil {
			return err
		}

		return inspect(cmd.Context(), args[0], limit, replacedOnly,
			cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().Int("translations", 0,
		"Also print the first N recorded translations.")
	inspectCmd.Flags().Bool("replaced", false,
		"Only print the translations that replaced a page.")
}

func inspect(
	ctx context.Context,
	path string,
	limit int,
	replacedOnly bool,
	out io.Writer,
) error {
	if ctx == nil {
		ctx = context.Background()
	}

	reader, err := datarecording.NewReader(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer reader.Close()

	reader.MapTable(trace.SummaryTable, trace.SummaryEntry{})
	reader.MapTable(trace.TranslationTable, trace.TranslationEntry{})

	summaries, _, err := reader.Query(ctx, trace.SummaryTable,
		datarecording.QueryParams{Limit: 1})
	if err != nil {
		return err
	}

	if len(summaries) == 0 {
		return fmt.Errorf("%s has no summary, the run may not have finished",
			path)
	}

	report.NewPrinter(out, report.ModeSummary).
		PrintSummary(toSummary(summaries[0].(*trace.SummaryEntry)))

	if limit <= 0 {
		return nil
	}

	params := datarecording.QueryParams{OrderBy: "Seq", Limit: limit}
	if replacedOnly {
		params.Where = "Replaced = ?"
		params.Args = []any{true}
	}

	entries, total, err := reader.Query(ctx, trace.TranslationTable, params)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Showing %d of %d translations\n", len(entries), total)

	for _, e := range entries {
		printEntry(out, e.(*trace.TranslationEntry))
	}

	return nil
}

func toSummary(e *trace.SummaryEntry) translator.Summary {
	return translator.Summary{
		Statistics: translator.Statistics{
			Accesses:         e.Accesses,
			PageHits:         e.PageHits,
			PageFaults:       e.PageFaults,
			PageReplacements: e.PageReplacements,
			FramesUsed:       e.FramesUsed,
			Entries:          e.Entries,
		},
		PageSize: e.PageSize,
	}
}

func printEntry(out io.Writer, e *trace.TranslationEntry) {
	status := "miss"
	if e.Hit {
		status = "hit"
	}

	fmt.Fprintf(out, "%d: %08X -> %08X, [%s], %s",
		e.Seq, e.VirtualAddress, e.PhysicalAddress, e.Indices, status)

	if e.Replaced {
		fmt.Fprintf(out, ", replaced %08X (bitstring %04X)",
			e.VictimVPN, e.VictimBitstring)
	}

	fmt.Fprintln(out)
}
