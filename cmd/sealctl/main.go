package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/sealchain/sealchain/pkg/client"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is overridden by goreleaser via -ldflags "-X main.version=...".
var version = "dev"

var (
	serverURL string
	cfgFile   string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "sealctl",
	Short: "sealchain ledger CLI",
	Long: `sealctl is the command-line interface for a sealchain ledger service.

It appends payloads to the tamper-evident chain, inspects sealed records,
and runs full-chain integrity checks against a running sealchaind.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if cfgFile != "" {
			viper.SetConfigFile(cfgFile)
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(home + "/.sealchain")
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
		viper.AutomaticEnv()
		_ = viper.ReadInConfig()

		if serverURL == "" {
			serverURL = viper.GetString("server_url")
		}
		if serverURL == "" {
			serverURL = "http://localhost:8080"
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.sealchain/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "sealchaind base URL (default http://localhost:8080)")

	rootCmd.AddCommand(appendCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(payloadsCmd)
	rootCmd.AddCommand(versionCmd)
}

// ── append ───────────────────────────────────────────────────────────────────

var appendTimeout time.Duration

var appendCmd = &cobra.Command{
	Use:   "append <payload> [payload] ...",
	Short: "Seal and append one or more payloads to the chain",
	Long: `Append submits each payload for proof-of-work sealing, in order.

The server blocks per payload until sealing completes, so high difficulties
take correspondingly longer:

  sealctl append "temperature=21.4" "humidity=40"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAppend,
}

func init() {
	appendCmd.Flags().DurationVar(&appendTimeout, "timeout", 2*time.Minute, "Per-payload sealing timeout")
}

func runAppend(cmd *cobra.Command, args []string) error {
	c := client.New(serverURL)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "INDEX\tNONCE\tDIGEST\tPAYLOAD")
	for _, payload := range args {
		ctx, cancel := context.WithTimeout(cmd.Context(), appendTimeout)
		rec, err := c.Append(ctx, payload)
		cancel()
		if err != nil {
			w.Flush() //nolint:errcheck
			return fmt.Errorf("append %q: %w", payload, err)
		}
		fmt.Fprintf(w, "%d\t%d\t%s\t%s\n", rec.Index, rec.Nonce, rec.Digest, rec.Payload)
	}
	return w.Flush()
}

// ── verify ───────────────────────────────────────────────────────────────────

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Run a full-chain integrity check",
	Long: `Verify walks every record on the server, recomputing digests and
checking predecessor linkage. A broken chain exits non-zero and names the
first offending record and failed check.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := client.New(serverURL).Verify(cmd.Context())
		if err != nil {
			return err
		}
		if !res.Valid {
			return fmt.Errorf("chain is BROKEN at record %d: %s", res.Index, res.Check)
		}
		fmt.Println("chain is intact")
		return nil
	},
}

// ── show ─────────────────────────────────────────────────────────────────────

var showFormat string

var showCmd = &cobra.Command{
	Use:   "show [index]",
	Short: "Show the chain overview or a single record",
	Long: `Without arguments, show prints the chain overview. With an index it
prints that record:

  sealctl show
  sealctl show 3 --format json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runShow,
}

func init() {
	showCmd.Flags().StringVar(&showFormat, "format", "text", "Output format: text or json")
}

func runShow(cmd *cobra.Command, args []string) error {
	c := client.New(serverURL)

	if len(args) == 0 {
		ov, err := c.Overview(cmd.Context())
		if err != nil {
			return err
		}
		if showFormat == "json" {
			return printJSON(ov)
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintf(w, "records:\t%d\n", ov.Records)
		fmt.Fprintf(w, "tip:\t%s\n", ov.Tip)
		fmt.Fprintf(w, "difficulty:\t%d\n", ov.Difficulty)
		return w.Flush()
	}

	index, err := parseIndex(args[0])
	if err != nil {
		return err
	}
	rec, err := c.Record(cmd.Context(), index)
	if err != nil {
		return err
	}
	if showFormat == "json" {
		return printJSON(rec)
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "index:\t%d\n", rec.Index)
	fmt.Fprintf(w, "timestamp:\t%s\n", time.Unix(int64(rec.Timestamp), 0).UTC().Format(time.RFC3339))
	fmt.Fprintf(w, "payload:\t%s\n", rec.Payload)
	fmt.Fprintf(w, "prev digest:\t%s\n", rec.PrevDigest)
	fmt.Fprintf(w, "digest:\t%s\n", rec.Digest)
	fmt.Fprintf(w, "nonce:\t%d\n", rec.Nonce)
	return w.Flush()
}

// ── payloads ─────────────────────────────────────────────────────────────────

var payloadsCmd = &cobra.Command{
	Use:   "payloads",
	Short: "Print the chain's payloads in order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		payloads, err := client.New(serverURL).Payloads(cmd.Context())
		if err != nil {
			return err
		}
		for i, p := range payloads {
			fmt.Printf("%d\t%s\n", i, p)
		}
		return nil
	},
}

// ── version ──────────────────────────────────────────────────────────────────

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the sealctl version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("sealctl", version)
	},
}

// parseIndex parses a record index argument, rejecting signs, trailing
// garbage and anything else strconv.ParseUint does not accept.
func parseIndex(arg string) (uint64, error) {
	index, err := strconv.ParseUint(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid index %q: must be a non-negative integer", arg)
	}
	return index, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
