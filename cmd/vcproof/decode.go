package main

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"

	"vcproof/internal/attestation"
)

const kindCalldata = "calldata"

type decodeOutput struct {
	Kind            string   `json:"kind"`
	ResultList      []string `json:"result_list,omitempty"`
	Subject         string   `json:"subject,omitempty"`
	PostStateDigest string   `json:"post_state_digest,omitempty"`
	Seal            string   `json:"seal,omitempty"`
	Digest          string   `json:"digest,omitempty"`
}

func newDecodeCmd() *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "decode <hex>",
		Short: "Decode a committed journal or ledger calldata",
		Long: `Decode a 0x-prefixed journal produced by "predicates" or "match", or the
set(string[],bytes32,bytes) calldata produced with --calldata.

Kinds: predicates, subject_match, calldata.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := hexutil.Decode(args[0])
			if err != nil {
				return fmt.Errorf("input must be 0x-prefixed hex: %w", err)
			}

			out := decodeOutput{Kind: kind}
			switch kind {
			case string(attestation.KindPredicates):
				if out.ResultList, err = attestation.DecodePredicateJournal(data); err != nil {
					return err
				}
				out.Digest = attestation.Digest(data).Hex()
			case string(attestation.KindSubjectMatch):
				if out.Subject, err = attestation.DecodeMatchJournal(data); err != nil {
					return err
				}
				out.Digest = attestation.Digest(data).Hex()
			case kindCalldata:
				call, err := attestation.DecodeSetCalldata(data)
				if err != nil {
					return err
				}
				out.ResultList = call.Results
				out.PostStateDigest = call.PostStateDigest.Hex()
				out.Seal = hexutil.Encode(call.Seal)
			default:
				return fmt.Errorf("unknown kind %q: want predicates, subject_match or calldata", kind)
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVar(&kind, "kind", string(attestation.KindPredicates), "What the input holds")
	return cmd
}
