package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"vcproof/internal/platform/logger"
	"vcproof/internal/proof/service"
)

type rootOptions struct {
	logLevel   string
	matchField string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "vcproof",
		Short: "Verify credentials and evaluate predicates offline",
		Long: `vcproof verifies EdDSA-signed verifiable credentials and evaluates predicates
over their claims, printing the ABI-encoded journal a prover would commit.

Request files may be YAML or JSON.

Examples:
  vcproof predicates -f request.yaml             # Evaluate predicates
  vcproof predicates -f data.json -p preds.yaml  # Credential from a wallet export
  vcproof match -f match.yaml                    # Cross-credential subject match
  vcproof decode --kind predicates 0x...         # Decode a committed journal`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level for diagnostics on stderr")
	cmd.PersistentFlags().StringVar(&opts.matchField, "match-field", "", "Default claim compared by match runs (default fingerprint)")

	cmd.AddCommand(newPredicatesCmd(opts))
	cmd.AddCommand(newMatchCmd(opts))
	cmd.AddCommand(newDecodeCmd())
	return cmd
}

// newService builds the same service the HTTP server runs, logging to stderr.
func (o *rootOptions) newService(stderr io.Writer) *service.Service {
	return service.New(
		service.WithLogger(logger.NewWithWriter(stderr, o.logLevel)),
		service.WithMatchField(o.matchField),
	)
}

// readRequestFile decodes a YAML or JSON document into out. The document is
// re-encoded as JSON first so types with JSON decoders (predicate operands)
// keep a single wire format.
func readRequestFile(path string, out any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read request file: %w", err)
	}
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("parse request file: %w", err)
	}
	if doc == nil {
		return fmt.Errorf("request file %s is empty", path)
	}
	asJSON, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("request file must use string keys: %w", err)
	}
	if err := json.Unmarshal(asJSON, out); err != nil {
		return fmt.Errorf("decode request file: %w", err)
	}
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
