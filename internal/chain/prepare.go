package chain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// ErrNotPrepared is returned while the call is missing a required argument
var ErrNotPrepared = errors.New("contract call is not prepared")

// PreparedCall is a validated, not yet submitted mint transaction
type PreparedCall struct {
	Contract  common.Address
	Function  string
	Recipient common.Address
	TokenURI  string
	Data      []byte
}

// Preparer packs mint calls against a fixed contract
type Preparer struct {
	abi      abi.ABI
	contract common.Address
	function string
}

// NewPreparer parses the contract ABI and checks that function exists on it
func NewPreparer(contractAddress, function string) (*Preparer, error) {
	if !common.IsHexAddress(contractAddress) {
		return nil, fmt.Errorf("invalid contract address %q", contractAddress)
	}
	if function == "" {
		function = DefaultFunctionName
	}

	parsed, err := abi.JSON(strings.NewReader(MintABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse contract abi: %w", err)
	}
	if _, ok := parsed.Methods[function]; !ok {
		return nil, fmt.Errorf("contract abi has no method %q", function)
	}

	return &Preparer{
		abi:      parsed,
		contract: common.HexToAddress(contractAddress),
		function: function,
	}, nil
}

// Prepare builds the call minting tokenURI to recipient. Both arguments must
// be present; the call stays unprepared otherwise.
func (p *Preparer) Prepare(recipient, tokenURI string) (*PreparedCall, error) {
	if recipient == "" || tokenURI == "" {
		return nil, ErrNotPrepared
	}
	if !common.IsHexAddress(recipient) {
		return nil, fmt.Errorf("%w: invalid recipient %q", ErrNotPrepared, recipient)
	}

	to := common.HexToAddress(recipient)
	data, err := p.abi.Pack(p.function, to, tokenURI)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s call: %w", p.function, err)
	}

	return &PreparedCall{
		Contract:  p.contract,
		Function:  p.function,
		Recipient: to,
		TokenURI:  tokenURI,
		Data:      data,
	}, nil
}

// ABI returns the parsed contract ABI
func (p *Preparer) ABI() abi.ABI {
	return p.abi
}

// TxURL links a transaction hash on the block explorer
func TxURL(explorerURL, hash string) string {
	if hash == "" {
		return ""
	}
	if explorerURL == "" {
		explorerURL = DefaultExplorerURL
	}
	return strings.TrimRight(explorerURL, "/") + "/tx/" + hash
}
