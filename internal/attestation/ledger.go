package attestation

import (
	"bytes"

	dErrors "vcproof/pkg/domain-errors"

	"github.com/ethereum/go-ethereum/common"
)

// SetCall is the decoded argument list of the ledger's set method.
type SetCall struct {
	Results         []string
	PostStateDigest common.Hash
	Seal            []byte
}

// Selector returns the 4-byte method ID of set(string[],bytes32,bytes).
func Selector() []byte {
	return append([]byte(nil), ledger.Methods[SetMethod].ID...)
}

// SetCalldata packs a call to the ledger's set method: selector followed by
// the ABI-encoded results, post-state digest and seal.
func SetCalldata(results []string, postStateDigest common.Hash, seal []byte) ([]byte, error) {
	if results == nil {
		results = []string{}
	}
	if seal == nil {
		seal = []byte{}
	}
	data, err := ledger.Pack(SetMethod, results, [32]byte(postStateDigest), seal)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to pack ledger call")
	}
	return data, nil
}

// DecodeSetCalldata reverses SetCalldata.
func DecodeSetCalldata(data []byte) (*SetCall, error) {
	method := ledger.Methods[SetMethod]
	if len(data) < 4 || !bytes.Equal(data[:4], method.ID) {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "calldata does not call set(string[],bytes32,bytes)")
	}
	values, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "calldata arguments are not abi encoded")
	}
	if len(values) != 3 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "calldata must carry three arguments")
	}

	results, ok := values[0].([]string)
	if !ok {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "result_list is not a string list")
	}
	digest, ok := values[1].([32]byte)
	if !ok {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "post_state_digest is not bytes32")
	}
	seal, ok := values[2].([]byte)
	if !ok {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "seal is not bytes")
	}
	return &SetCall{Results: results, PostStateDigest: common.Hash(digest), Seal: seal}, nil
}

// CalldataForJournal builds the ledger call for a predicate journal.
func CalldataForJournal(j *Journal, postStateDigest common.Hash, seal []byte) ([]byte, error) {
	if j == nil || j.Kind != KindPredicates {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "only predicate journals are recorded through set")
	}
	return SetCalldata(j.Results, postStateDigest, seal)
}
