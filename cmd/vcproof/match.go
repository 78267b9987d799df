package main

import (
	"github.com/spf13/cobra"

	"vcproof/internal/proof/models"
)

type matchFile struct {
	OnboardingCredential     string `json:"onboarding_credential"`
	ChallengeCredential      string `json:"challenge_credential"`
	IssuerPublicKey          string `json:"issuer_public_key"`
	ChallengeIssuerPublicKey string `json:"challenge_issuer_public_key"`
	Field                    string `json:"field"`
}

type matchOutput struct {
	RunID         string `json:"run_id"`
	Subject       string `json:"subject"`
	Journal       string `json:"journal"`
	JournalDigest string `json:"journal_digest"`
}

func newMatchCmd(root *rootOptions) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "match",
		Short: "Check that two credentials belong to the same holder",
		Long: `Verify an onboarding and a challenge credential and check that both name the
same subject and carry the same value for the match field (fingerprint unless
the request or --match-field says otherwise). On success the shared subject is
printed with its ABI-encoded (string) journal.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var f matchFile
			if err := readRequestFile(file, &f); err != nil {
				return err
			}

			svc := root.newService(cmd.ErrOrStderr())
			att, err := svc.ProveSubjectMatch(cmd.Context(), &models.MatchRequest{
				OnboardingCredential:     f.OnboardingCredential,
				ChallengeCredential:      f.ChallengeCredential,
				IssuerPublicKey:          f.IssuerPublicKey,
				ChallengeIssuerPublicKey: f.ChallengeIssuerPublicKey,
				Field:                    f.Field,
			})
			if err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), matchOutput{
				RunID:         att.RunID,
				Subject:       att.Subject(),
				Journal:       att.Journal.Hex(),
				JournalDigest: att.Journal.Digest.Hex(),
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Request file (YAML or JSON)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
