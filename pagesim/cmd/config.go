package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/sarchlab/pagesim/mem/vm/report"
	"github.com/sarchlab/pagesim/mem/vm/translator"
	"github.com/spf13/pflag"
)

// Environment variables that provide the defaults of the run flags.
const (
	envFrames       = "PAGESIM_FRAMES"
	envNFUInterval  = "PAGESIM_NFU_INTERVAL"
	envMaxAddresses = "PAGESIM_MAX_ADDRESSES"
	envLogMode      = "PAGESIM_LOG_MODE"
	envRecord       = "PAGESIM_RECORD"
)

var (
	// errNotPositive is returned when a count that must be positive is not.
	errNotPositive = errors.New("must be a positive number")

	// errUsage is returned when the positional arguments are wrong.
	errUsage = errors.New("usage: pagesim run [flags] <trace_file> " +
		"<level bits>...")
)

type runConfig struct {
	traceFile    string
	levelBits    []int
	numFrames    int
	nfuInterval  int
	noAging      bool
	maxAddresses uint64
	logMode      report.Mode
	record       bool
	output       string
	monitor      bool
	monitorPort  int
	openBrowser  bool
}

func addRunFlags(flags *pflag.FlagSet) {
	flags.IntP("frames", "f", translator.DefaultNumFrames,
		"Number of physical frames.")
	flags.IntP("nfu-interval", "n", translator.DefaultNFUInterval,
		"Number of accesses between two NFU aging sweeps.")
	flags.Bool("no-aging", false, "Never age the bitstrings.")
	flags.IntP("max-addresses", "a", 0,
		"Stop after this many addresses. All addresses are processed "+
			"if not given.")
	flags.StringP("log-mode", "l", string(report.ModeSummary),
		"What to print: bitmasks, offset, vpns_pfn, va2pa, vpn2pfn_pr, "+
			"summary, or none.")
	flags.Bool("record", false,
		"Record every translation into a SQLite database.")
	flags.String("output", "",
		"Name of the database file without the .sqlite3 extension. "+
			"Implies --record.")
	flags.Bool("monitor", false, "Serve the simulation state over HTTP.")
	flags.Int("monitor-port", 0,
		"Port of the monitoring server. A random port is used if not given.")
	flags.Bool("open-browser", false,
		"Open the monitoring page in a browser. Implies --monitor.")
}

func loadEnvFile(flags *pflag.FlagSet) error {
	path, err := flags.GetString("env-file")
	if err != nil {
		return err
	}

	_, err = os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) && !flags.Changed("env-file") {
			return nil
		}

		return fmt.Errorf("loading %s: %w", path, err)
	}

	err = godotenv.Load(path)
	if err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}

	return nil
}

func resolveRunConfig(flags *pflag.FlagSet, args []string) (runConfig, error) {
	cfg := runConfig{}

	if len(args) < 2 {
		return cfg, errUsage
	}

	cfg.traceFile = args[0]
	for _, arg := range args[1:] {
		bits, err := strconv.Atoi(arg)
		if err != nil {
			return cfg, fmt.Errorf("level bits %q is not a number", arg)
		}

		cfg.levelBits = append(cfg.levelBits, bits)
	}

	err := resolveCounts(flags, &cfg)
	if err != nil {
		return cfg, err
	}

	modeName, err := stringValue(flags, "log-mode", envLogMode)
	if err != nil {
		return cfg, err
	}

	cfg.logMode, err = report.ParseMode(modeName)
	if err != nil {
		return cfg, err
	}

	return cfg, resolveOutputs(flags, &cfg)
}

func resolveCounts(flags *pflag.FlagSet, cfg *runConfig) error {
	var err error

	cfg.numFrames, err = positiveIntValue(flags, "frames", envFrames)
	if err != nil {
		return err
	}

	cfg.noAging, err = flags.GetBool("no-aging")
	if err != nil {
		return err
	}

	if !cfg.noAging {
		cfg.nfuInterval, err = positiveIntValue(
			flags, "nfu-interval", envNFUInterval)
		if err != nil {
			return err
		}
	}

	_, set := os.LookupEnv(envMaxAddresses)
	if flags.Changed("max-addresses") || set {
		n, err := positiveIntValue(flags, "max-addresses", envMaxAddresses)
		if err != nil {
			return err
		}

		cfg.maxAddresses = uint64(n)
	}

	return nil
}

func resolveOutputs(flags *pflag.FlagSet, cfg *runConfig) error {
	var err error

	cfg.record, err = flags.GetBool("record")
	if err != nil {
		return err
	}

	if value, set := os.LookupEnv(envRecord); set && !flags.Changed("record") {
		cfg.record, err = strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s: %w", envRecord, err)
		}
	}

	cfg.output, err = flags.GetString("output")
	if err != nil {
		return err
	}

	if cfg.output != "" {
		cfg.record = true
	}

	cfg.monitor, err = flags.GetBool("monitor")
	if err != nil {
		return err
	}

	cfg.monitorPort, err = flags.GetInt("monitor-port")
	if err != nil {
		return err
	}

	cfg.openBrowser, err = flags.GetBool("open-browser")
	if err != nil {
		return err
	}

	if cfg.openBrowser || cfg.monitorPort != 0 {
		cfg.monitor = true
	}

	return nil
}

// positiveIntValue returns the value of a flag if it is given, the value of
// the environment variable if it is set, or the default of the flag.
func positiveIntValue(
	flags *pflag.FlagSet,
	flagName, envName string,
) (int, error) {
	value, err := flags.GetInt(flagName)
	if err != nil {
		return 0, err
	}

	if envValue, set := os.LookupEnv(envName); set && !flags.Changed(flagName) {
		value, err = strconv.Atoi(envValue)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", envName, err)
		}
	}

	if value <= 0 {
		return 0, fmt.Errorf("--%s %d: %w", flagName, value, errNotPositive)
	}

	return value, nil
}

func stringValue(flags *pflag.FlagSet, flagName, envName string) (string, error) {
	value, err := flags.GetString(flagName)
	if err != nil {
		return "", err
	}

	if envValue, set := os.LookupEnv(envName); set && !flags.Changed(flagName) {
		value = envValue
	}

	return value, nil
}
