// Package attestation encodes a run's committed output as an ABI journal and
// builds the ledger call that records it.
//
// Predicate runs commit (string[] result_list); match runs commit
// (string subject). The ledger exposes
//
//	set(string[] result_list, bytes32 post_state_digest, bytes seal)
//
// Submitting that call (chain ID, RPC endpoint, signer) happens elsewhere.
package attestation

import (
	"fmt"
	"strings"

	dErrors "vcproof/pkg/domain-errors"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"golang.org/x/crypto/sha3"
)

// Kind names the flow that produced a journal.
type Kind string

const (
	KindPredicates   Kind = "predicates"
	KindSubjectMatch Kind = "subject_match"
)

// SetMethod is the ledger method receiving predicate results.
const SetMethod = "set"

const ledgerABI = `[{
	"type": "function",
	"name": "set",
	"stateMutability": "nonpayable",
	"inputs": [
		{"name": "result_list", "type": "string[]"},
		{"name": "post_state_digest", "type": "bytes32"},
		{"name": "seal", "type": "bytes"}
	],
	"outputs": []
}]`

var (
	stringListArgs abi.Arguments
	stringArgs     abi.Arguments
	ledger         abi.ABI
)

func init() {
	listType, err := abi.NewType("string[]", "", nil)
	if err != nil {
		panic(fmt.Sprintf("attestation: string[] type: %v", err))
	}
	stringType, err := abi.NewType("string", "", nil)
	if err != nil {
		panic(fmt.Sprintf("attestation: string type: %v", err))
	}
	stringListArgs = abi.Arguments{{Name: "result_list", Type: listType}}
	stringArgs = abi.Arguments{{Name: "subject", Type: stringType}}

	ledger, err = abi.JSON(strings.NewReader(ledgerABI))
	if err != nil {
		panic(fmt.Sprintf("attestation: ledger abi: %v", err))
	}
}

// Journal is the committed output of one run in its encoded form.
type Journal struct {
	Kind    Kind
	Results []string
	Subject string
	Encoded []byte
	Digest  common.Hash
}

// Hex returns the 0x-prefixed encoded journal.
func (j *Journal) Hex() string { return hexutil.Encode(j.Encoded) }

// NewPredicateJournal encodes the result list of a predicate run.
func NewPredicateJournal(results []string) (*Journal, error) {
	encoded, err := EncodePredicateJournal(results)
	if err != nil {
		return nil, err
	}
	return &Journal{
		Kind:    KindPredicates,
		Results: append([]string{}, results...),
		Encoded: encoded,
		Digest:  Digest(encoded),
	}, nil
}

// NewMatchJournal encodes the shared subject of a match run.
func NewMatchJournal(subject string) (*Journal, error) {
	encoded, err := EncodeMatchJournal(subject)
	if err != nil {
		return nil, err
	}
	return &Journal{
		Kind:    KindSubjectMatch,
		Subject: subject,
		Encoded: encoded,
		Digest:  Digest(encoded),
	}, nil
}

// EncodePredicateJournal ABI-encodes results as (string[]).
func EncodePredicateJournal(results []string) ([]byte, error) {
	if results == nil {
		results = []string{}
	}
	out, err := stringListArgs.Pack(results)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode predicate journal")
	}
	return out, nil
}

// DecodePredicateJournal reverses EncodePredicateJournal.
func DecodePredicateJournal(journal []byte) ([]string, error) {
	values, err := stringListArgs.Unpack(journal)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "journal is not an abi encoded string[]")
	}
	results, ok := values[0].([]string)
	if !ok {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "journal does not hold a string list")
	}
	return results, nil
}

// EncodeMatchJournal ABI-encodes subject as (string).
func EncodeMatchJournal(subject string) ([]byte, error) {
	out, err := stringArgs.Pack(subject)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode match journal")
	}
	return out, nil
}

// DecodeMatchJournal reverses EncodeMatchJournal.
func DecodeMatchJournal(journal []byte) (string, error) {
	values, err := stringArgs.Unpack(journal)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInvalidInput, "journal is not an abi encoded string")
	}
	subject, ok := values[0].(string)
	if !ok {
		return "", dErrors.New(dErrors.CodeInvalidInput, "journal does not hold a string")
	}
	return subject, nil
}

// Digest returns the keccak-256 hash of a journal.
func Digest(journal []byte) common.Hash {
	h := sha3.NewLegacyKeccak256()
	h.Write(journal)
	var out common.Hash
	copy(out[:], h.Sum(nil))
	return out
}
