package chain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

// Config holds the node and signing settings
type Config struct {
	RPCURL    string
	ChainID   int64
	MinterKey string
}

// Logger interface for logging operations
type Logger interface {
	LogInfo(msg string, fields map[string]interface{})
	LogError(err error, msg string) error
}

// EthWriter submits prepared calls through an Ethereum node
type EthWriter struct {
	backend  bind.ContractBackend
	opts     *bind.TransactOpts
	preparer *Preparer
	closer   func()
	logger   Logger
}

// NewEthWriter dials the configured node
func NewEthWriter(ctx context.Context, cfg *Config, preparer *Preparer, logger Logger) (*EthWriter, error) {
	if cfg.RPCURL == "" {
		return nil, errors.New("chain rpc url is required")
	}
	client, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial chain node: %w", err)
	}

	writer, err := NewEthWriterWithBackend(client, cfg, preparer, logger)
	if err != nil {
		client.Close()
		return nil, err
	}
	writer.closer = client.Close
	return writer, nil
}

// NewEthWriterWithBackend uses an existing contract backend
func NewEthWriterWithBackend(backend bind.ContractBackend, cfg *Config, preparer *Preparer, logger Logger) (*EthWriter, error) {
	key, err := ParseKey(cfg.MinterKey)
	if err != nil {
		return nil, err
	}
	opts, err := bind.NewKeyedTransactorWithChainID(key, big.NewInt(cfg.ChainID))
	if err != nil {
		return nil, fmt.Errorf("failed to create transactor: %w", err)
	}

	return &EthWriter{
		backend:  backend,
		opts:     opts,
		preparer: preparer,
		logger:   logger,
	}, nil
}

// Write signs and sends call, returning the transaction hash
func (w *EthWriter) Write(ctx context.Context, call *PreparedCall) (string, error) {
	if call == nil {
		return "", ErrNotPrepared
	}

	contract := bind.NewBoundContract(call.Contract, w.preparer.ABI(), w.backend, w.backend, w.backend)
	opts := *w.opts
	opts.Context = ctx

	tx, err := contract.RawTransact(&opts, call.Data)
	if err != nil {
		return "", err
	}

	hash := tx.Hash().Hex()
	w.logger.LogInfo("Submitted mint transaction", map[string]interface{}{
		"contract":  call.Contract.Hex(),
		"recipient": call.Recipient.Hex(),
		"token_uri": call.TokenURI,
		"tx_hash":   hash,
	})
	return hash, nil
}

// From returns the signing account
func (w *EthWriter) From() string {
	return w.opts.From.Hex()
}

// Close releases the node connection
func (w *EthWriter) Close() {
	if w.closer != nil {
		w.closer()
	}
}

// ParseKey decodes a hex ECDSA private key with or without 0x prefix
func ParseKey(hexKey string) (*ecdsa.PrivateKey, error) {
	hexKey = strings.TrimPrefix(strings.TrimSpace(hexKey), "0x")
	if hexKey == "" {
		return nil, errors.New("minter key is required")
	}
	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, fmt.Errorf("invalid minter key: %w", err)
	}
	return key, nil
}
