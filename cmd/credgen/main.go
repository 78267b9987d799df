// Package main provides a CLI tool for generating development issuer keys and
// signed credentials for the vcproof API.
// Keys printed by this tool are for local development and testing only.
package main

import (
	"bytes"
	"crypto/rand"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"vcproof/internal/issuer"

	"github.com/google/uuid"
)

type keyOutput struct {
	Seed      string `json:"seed"`
	PublicKey string `json:"public_key"`
	DID       string `json:"did"`
}

type credentialOutput struct {
	Credential string         `json:"credential"`
	Subject    string         `json:"subject"`
	Issuer     keyOutput      `json:"issuer"`
	Claims     map[string]any `json:"claims"`
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		printUsage(stderr)
		return 1
	}

	var err error
	switch args[0] {
	case "keygen":
		err = keygen(args[1:], stdout, stderr)
	case "issue":
		err = issue(args[1:], stdout, stderr)
	case "help", "-h", "--help":
		printUsage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n\n", args[0])
		printUsage(stderr)
		return 1
	}
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `credgen - Generate development issuer keys and credentials for vcproof

WARNING: Seeds printed by this tool are private keys. Only use them for local
         development and testing.

Usage:
  credgen <command> [flags]

Commands:
  keygen    Generate an Ed25519 issuer key
  issue     Sign a verifiable credential JWT

Examples:
  # New random issuer key
  credgen keygen

  # Reuse a key and issue a credential
  credgen issue -seed <hex> -subject did:key:zABC -claims '{"date_of_birth":19850101,"nationality":"NO"}'

  # Claims from a file, JSON output
  credgen issue -seed <hex> -claims-file person.json -json

Use "credgen <command> -h" for more information about a command.`)
}

func keygen(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("keygen", flag.ContinueOnError)
	fs.SetOutput(stderr)
	seedHex := fs.String("seed", "", "Hex Ed25519 seed (32 bytes). Random if empty.")
	jsonOutput := fs.Bool("json", false, "Output as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	iss, err := loadIssuer(*seedHex)
	if err != nil {
		return err
	}
	out := describe(iss)

	if *jsonOutput {
		return printJSON(stdout, out)
	}
	fmt.Fprintln(stdout, "Issuer Key (Ed25519)")
	fmt.Fprintln(stdout, "====================")
	fmt.Fprintf(stdout, "Seed:       %s\n", out.Seed)
	fmt.Fprintf(stdout, "Public Key: %s\n", out.PublicKey)
	fmt.Fprintf(stdout, "DID:        %s\n", out.DID)
	return nil
}

func issue(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("issue", flag.ContinueOnError)
	fs.SetOutput(stderr)
	seedHex := fs.String("seed", "", "Hex Ed25519 seed (32 bytes). Random if empty.")
	subject := fs.String("subject", "", "Credential subject (sub). A urn:uuid is generated if empty.")
	claimsJSON := fs.String("claims", "{}", "credentialSubject members as a JSON object")
	claimsFile := fs.String("claims-file", "", "Read credentialSubject members from a JSON file")
	types := fs.String("types", strings.Join(issuer.DefaultTypes, ","), "Comma-separated credential types")
	ttl := fs.Duration("ttl", 0, "Credential lifetime. No exp claim when zero.")
	jsonOutput := fs.Bool("json", false, "Output as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	iss, err := loadIssuer(*seedHex)
	if err != nil {
		return err
	}

	raw := []byte(*claimsJSON)
	if *claimsFile != "" {
		if raw, err = os.ReadFile(*claimsFile); err != nil {
			return fmt.Errorf("read claims file: %w", err)
		}
	}
	credentialSubject, err := parseClaims(raw)
	if err != nil {
		return err
	}

	sub := *subject
	if sub == "" {
		sub = "urn:uuid:" + uuid.NewString()
	}

	opts := []issuer.IssueOption{issuer.WithTypes(splitList(*types)...)}
	if *ttl > 0 {
		now := time.Now()
		opts = append(opts, issuer.WithIssuedAt(now), issuer.WithExpiry(now.Add(*ttl)))
	}

	credential, err := iss.Issue(sub, credentialSubject, opts...)
	if err != nil {
		return err
	}

	if *jsonOutput {
		return printJSON(stdout, credentialOutput{
			Credential: credential,
			Subject:    sub,
			Issuer:     describe(iss),
			Claims:     credentialSubject,
		})
	}
	fmt.Fprintln(stdout, "Verifiable Credential (JWT)")
	fmt.Fprintln(stdout, "===========================")
	fmt.Fprintf(stdout, "Subject:    %s\n", sub)
	fmt.Fprintf(stdout, "Issuer DID: %s\n", iss.DID())
	fmt.Fprintf(stdout, "Public Key: %s\n", iss.PublicKeyHex())
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Credential:")
	fmt.Fprintln(stdout, credential)
	return nil
}

func loadIssuer(seedHex string) (*issuer.Issuer, error) {
	if seedHex == "" {
		return issuer.Generate(rand.Reader)
	}
	return issuer.NewFromSeedHex(seedHex)
}

func describe(iss *issuer.Issuer) keyOutput {
	return keyOutput{Seed: iss.SeedHex(), PublicKey: iss.PublicKeyHex(), DID: iss.DID()}
}

// parseClaims keeps numbers as json.Number so integers are signed exactly as
// written.
func parseClaims(raw []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var claims map[string]any
	if err := dec.Decode(&claims); err != nil {
		return nil, fmt.Errorf("claims must be a JSON object: %w", err)
	}
	if claims == nil {
		claims = map[string]any{}
	}
	return claims, nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
