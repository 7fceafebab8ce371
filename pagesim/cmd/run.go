package cmd

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/pkg/browser"
	"github.com/sarchlab/pagesim/mem/trace"
	"github.com/sarchlab/pagesim/mem/vm/report"
	"github.com/sarchlab/pagesim/mem/vm/translator"
	"github.com/sarchlab/pagesim/simulation"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run [flags] <trace_file> <level bits>...",
	Short: "Translate the addresses of a trace.",
	Long: "`run trace.txt 4 4 12` translates every address of trace.txt " +
		"through a three-level page table whose levels take 4, 4, and 12 " +
		"bits of the address.",
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveRunConfig(cmd.Flags(), args)
		if err != nil {
			return err
		}

		return runSimulation(cfg, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	addRunFlags(runCmd.Flags())
}

func buildTranslator(cfg runConfig) (*translator.Translator, error) {
	b := translator.MakeBuilder().
		WithLevelBits(cfg.levelBits...).
		WithNumFrames(cfg.numFrames)

	if cfg.noAging {
		b = b.WithoutAging()
	} else {
		b = b.WithNFUInterval(cfg.nfuInterval)
	}

	return b.Build("Translator")
}

func buildSimulation(
	cfg runConfig,
	t *translator.Translator,
	reader trace.Reader,
	printer *report.Printer,
) (*simulation.Simulation, error) {
	b := simulation.MakeBuilder().
		WithTranslator(t).
		WithTrace(reader).
		WithHook(printer).
		WithMaxAddresses(cfg.maxAddresses)

	if cfg.record {
		b = b.WithOutputFileName(cfg.output)
	}

	if cfg.monitor {
		b = b.WithMonitoring().WithMonitorPort(cfg.monitorPort)
	}

	return b.Build()
}

func runSimulation(cfg runConfig, out io.Writer) error {
	t, err := buildTranslator(cfg)
	if err != nil {
		return err
	}

	reader, err := trace.Open(cfg.traceFile)
	if err != nil {
		return err
	}
	defer reader.Close()

	reader.SetLogger(log.New(os.Stderr, "", 0))

	printer := report.NewPrinter(out, cfg.logMode)
	printer.PrintLayout(t.Layout())

	s, err := buildSimulation(cfg, t, reader, printer)
	if err != nil {
		return err
	}

	if cfg.openBrowser {
		err = browser.OpenURL(s.MonitorURL())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open browser: %v\n", err)
		}
	}

	summary, err := s.Run()
	if err != nil {
		_ = s.Terminate()
		return err
	}

	printer.PrintSummary(summary)

	if reader.Malformed() > 0 {
		fmt.Fprintf(os.Stderr, "Skipped %d malformed lines in %s\n",
			reader.Malformed(), cfg.traceFile)
	}

	return s.Terminate()
}
