package main

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"

	"vcproof/internal/attestation"
	"vcproof/internal/credential/predicate"
	"vcproof/internal/proof/models"
)

// predicateFile is a predicate request. The eidIssuer and personCredential
// members accept a wallet export that carries the key and the JWT proof
// alongside the expanded credential.
type predicateFile struct {
	Credential       string                `json:"credential"`
	IssuerPublicKey  string                `json:"issuer_public_key"`
	Predicates       []predicate.Predicate `json:"predicates"`
	EIDIssuer        *keyHolder            `json:"eidIssuer"`
	PersonCredential *walletCredential     `json:"personCredential"`
}

type keyHolder struct {
	PublicKey string `json:"public_key"`
}

type walletCredential struct {
	Proof struct {
		Type string `json:"type"`
		JWT  string `json:"jwt"`
	} `json:"proof"`
}

func (f *predicateFile) toRequest() *models.PredicateRequest {
	req := &models.PredicateRequest{
		Credential:      f.Credential,
		IssuerPublicKey: f.IssuerPublicKey,
		Predicates:      f.Predicates,
	}
	if req.Credential == "" && f.PersonCredential != nil {
		req.Credential = f.PersonCredential.Proof.JWT
	}
	if req.IssuerPublicKey == "" && f.EIDIssuer != nil {
		req.IssuerPublicKey = f.EIDIssuer.PublicKey
	}
	return req
}

type predicateOutput struct {
	RunID         string   `json:"run_id"`
	ResultList    []string `json:"result_list"`
	Journal       string   `json:"journal"`
	JournalDigest string   `json:"journal_digest"`
	Calldata      string   `json:"calldata,omitempty"`
}

func newPredicatesCmd(root *rootOptions) *cobra.Command {
	var (
		file            string
		predicatesFile  string
		withCalldata    bool
		postStateDigest string
		seal            string
	)
	cmd := &cobra.Command{
		Use:   "predicates",
		Short: "Verify a credential and evaluate a predicate list",
		Long: `Verify a credential and evaluate every predicate against its credentialSubject.

The run succeeds only when all predicates hold; the first failing predicate
is reported by index. On success the satisfied return values are printed
together with the ABI-encoded (string[]) journal and its keccak-256 digest.

With --calldata the ledger call set(string[],bytes32,bytes) is also packed,
using the given post-state digest and seal.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var f predicateFile
			if err := readRequestFile(file, &f); err != nil {
				return err
			}
			if predicatesFile != "" {
				var extra predicateFile
				if err := readRequestFile(predicatesFile, &extra); err != nil {
					return err
				}
				f.Predicates = append(f.Predicates, extra.Predicates...)
			}

			svc := root.newService(cmd.ErrOrStderr())
			att, err := svc.ProvePredicates(cmd.Context(), f.toRequest())
			if err != nil {
				return err
			}

			results := att.Results()
			if results == nil {
				results = []string{}
			}
			out := predicateOutput{
				RunID:         att.RunID,
				ResultList:    results,
				Journal:       att.Journal.Hex(),
				JournalDigest: att.Journal.Digest.Hex(),
			}
			if withCalldata {
				calldata, err := packCalldata(att.Journal, postStateDigest, seal)
				if err != nil {
					return err
				}
				out.Calldata = calldata
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Request file (YAML or JSON)")
	cmd.Flags().StringVarP(&predicatesFile, "predicates", "p", "", "Extra file whose predicates list is appended")
	cmd.Flags().BoolVar(&withCalldata, "calldata", false, "Also pack the ledger set() calldata")
	cmd.Flags().StringVar(&postStateDigest, "post-state-digest", common.Hash{}.Hex(), "bytes32 post-state digest for --calldata")
	cmd.Flags().StringVar(&seal, "seal", "0x", "Hex seal for --calldata")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func packCalldata(journal *attestation.Journal, postStateDigest, seal string) (string, error) {
	digestBytes, err := hexutil.Decode(postStateDigest)
	if err != nil || len(digestBytes) != common.HashLength {
		return "", fmt.Errorf("post-state digest must be 0x-prefixed 32-byte hex")
	}
	sealBytes, err := hexutil.Decode(seal)
	if err != nil {
		return "", fmt.Errorf("seal must be 0x-prefixed hex: %w", err)
	}
	calldata, err := attestation.CalldataForJournal(journal, common.BytesToHash(digestBytes), sealBytes)
	if err != nil {
		return "", err
	}
	return hexutil.Encode(calldata), nil
}
