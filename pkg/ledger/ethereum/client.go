package ethereum

import (
	"context"
	"math/big"
	"strings"
	"time"

	goethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/pkg/errors"
	"github.com/smartlands/landregistry/internal/config"
	"github.com/smartlands/landregistry/pkg/ledger"
	"github.com/smartlands/landregistry/pkg/types/land"
	"go.uber.org/zap"
)

// Client talks to the LandRegistry contract over JSON-RPC. It signs
// registration writes with the service's administrative key; transfer
// payments are normally submitted by buyers directly, but SubmitTransfer is
// available for service-mediated sales.
type Client struct {
	logger         *zap.Logger
	eth            *ethclient.Client
	contract       *bind.BoundContract
	contractAddr   common.Address
	signer         *bind.TransactOpts
	confirmTimeout time.Duration
}

var _ ledger.Ledger = (*Client)(nil)

func NewClient(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Client, error) {
	eth, err := ethclient.DialContext(ctx, cfg.Ledger.RPCURL)
	if err != nil {
		return nil, errors.Wrap(ledger.ErrChainUnavailable, err.Error())
	}

	if !common.IsHexAddress(cfg.Ledger.ContractAddress) {
		return nil, errors.New("invalid contract address")
	}
	contractAddr := common.HexToAddress(cfg.Ledger.ContractAddress)

	chainId, err := eth.ChainID(ctx)
	if err != nil {
		return nil, errors.Wrap(ledger.ErrChainUnavailable, err.Error())
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.Ledger.PrivateKey, "0x"))
	if err != nil {
		return nil, errors.Wrap(err, "invalid ledger private key")
	}

	signer, err := bind.NewKeyedTransactorWithChainID(key, chainId)
	if err != nil {
		return nil, err
	}

	return &Client{
		logger:         logger,
		eth:            eth,
		contract:       bind.NewBoundContract(contractAddr, registryABI, eth, eth, eth),
		contractAddr:   contractAddr,
		signer:         signer,
		confirmTimeout: cfg.Ledger.ConfirmTimeout.Duration(),
	}, nil
}

func (c *Client) Close() {
	c.eth.Close()
}

func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.eth.BlockNumber(ctx); err != nil {
		return errors.Wrap(ledger.ErrChainUnavailable, err.Error())
	}

	return nil
}

func (c *Client) LandExists(ctx context.Context, id land.LandID) (bool, error) {
	var out []interface{}
	if err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, "landExists", id.Bytes32()); err != nil {
		return false, classifyError(err)
	}

	exists, ok := out[0].(bool)
	if !ok {
		return false, errors.New("unexpected landExists return type")
	}

	return exists, nil
}

func (c *Client) GetLand(ctx context.Context, id land.LandID) (ledger.ParcelSnapshot, error) {
	var out []interface{}
	if err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, "lands", id.Bytes32()); err != nil {
		return ledger.ParcelSnapshot{}, classifyError(err)
	}

	snapshot, err := snapshotFromStruct(id, out)
	if err != nil {
		return ledger.ParcelSnapshot{}, err
	}

	if !snapshot.Verified && snapshot.OwnerAddress == (common.Address{}).Hex() {
		return ledger.ParcelSnapshot{}, ledger.ErrNotRegistered
	}

	return snapshot, nil
}

func (c *Client) SubmitRegistration(ctx context.Context, parcel land.Parcel) (ledger.TxHandle, error) {
	exists, err := c.LandExists(ctx, parcel.LandId)
	if err != nil {
		return ledger.TxHandle{}, err
	}

	if exists {
		return ledger.TxHandle{}, ledger.ErrAlreadyRegistered
	}

	opts := *c.signer
	opts.Context = ctx

	tx, err := c.contract.Transact(&opts, "verifyAndRegisterLand",
		parcel.OwnerName,
		big.NewInt(parcel.LandArea),
		parcel.District,
		parcel.Taluk,
		parcel.Village,
		big.NewInt(parcel.BlockNumber),
		big.NewInt(parcel.SurveyNumber),
		parcel.DocumentHash,
		parcel.Price.Wei(),
	)
	if err != nil {
		return ledger.TxHandle{}, classifyError(err)
	}

	return c.awaitReceipt(ctx, tx)
}

func (c *Client) SubmitTransfer(ctx context.Context, id land.LandID, newOwnerName string, payment land.Price) (ledger.TxHandle, error) {
	opts := *c.signer
	opts.Context = ctx
	opts.Value = payment.Wei()

	tx, err := c.contract.Transact(&opts, "transferLandOwnership", id.Bytes32(), newOwnerName)
	if err != nil {
		return ledger.TxHandle{}, classifyError(err)
	}

	return c.awaitReceipt(ctx, tx)
}

func (c *Client) QueryRegisteredParcels(ctx context.Context, filter ledger.SnapshotFilter) ([]ledger.ParcelSnapshot, error) {
	registeredTopic := registryABI.Events["LandRegistered"].ID

	logs, err := c.eth.FilterLogs(ctx, goethereum.FilterQuery{
		Addresses: []common.Address{c.contractAddr},
		Topics:    [][]common.Hash{{registeredTopic}},
	})
	if err != nil {
		return nil, classifyError(err)
	}

	snapshots := make([]ledger.ParcelSnapshot, 0, len(logs))
	for _, log := range logs {
		if len(log.Topics) < 3 {
			continue
		}

		id := land.LandID(log.Topics[1].Bytes())

		// The event records the original registration; the struct holds the
		// current owner and verified flag. Read both so callers never see
		// stale ownership.
		snapshot, err := c.GetLand(ctx, id)
		if err != nil {
			if errors.Is(err, ledger.ErrNotRegistered) {
				c.logger.Warn("registration event for unknown land struct", zap.Stringer("land_id", id))
				continue
			}

			return nil, err
		}

		snapshot.RegisteredBy = common.BytesToAddress(log.Topics[2].Bytes()).Hex()
		snapshot.RegistrationTx = log.TxHash.Bytes()

		if filter.Owner != "" && !land.SameWallet(snapshot.OwnerAddress, filter.Owner) {
			continue
		}

		snapshots = append(snapshots, snapshot)
	}

	return snapshots, nil
}

func (c *Client) History(ctx context.Context, id land.LandID) ([]ledger.Event, error) {
	registeredTopic := registryABI.Events["LandRegistered"].ID
	transferredTopic := registryABI.Events["OwnershipTransferred"].ID

	logs, err := c.eth.FilterLogs(ctx, goethereum.FilterQuery{
		Addresses: []common.Address{c.contractAddr},
		Topics: [][]common.Hash{
			{registeredTopic, transferredTopic},
			{common.Hash(id.Bytes32())},
		},
	})
	if err != nil {
		return nil, classifyError(err)
	}

	events := make([]ledger.Event, 0, len(logs))
	for _, log := range logs {
		event, err := c.decodeEvent(log)
		if err != nil {
			c.logger.Warn("failed to decode registry event", zap.Error(err), zap.Stringer("tx_hash", log.TxHash))
			continue
		}

		events = append(events, event)
	}

	return events, nil
}

func (c *Client) decodeEvent(log types.Log) (ledger.Event, error) {
	if len(log.Topics) == 0 {
		return ledger.Event{}, errors.New("log without topics")
	}

	switch log.Topics[0] {
	case registryABI.Events["LandRegistered"].ID:
		if len(log.Topics) < 3 {
			return ledger.Event{}, errors.Errorf("malformed LandRegistered log: %d topics", len(log.Topics))
		}

		unpacked, err := registryABI.Unpack("LandRegistered", log.Data)
		if err != nil {
			return ledger.Event{}, err
		}

		return ledger.Event{
			Type:        ledger.EventRegistered,
			LandId:      log.Topics[1].Bytes(),
			To:          common.BytesToAddress(log.Topics[2].Bytes()).Hex(),
			OwnerName:   unpacked[0].(string),
			Price:       land.PriceFromWei(unpacked[2].(*big.Int)),
			TxHash:      log.TxHash.Bytes(),
			BlockNumber: log.BlockNumber,
		}, nil
	case registryABI.Events["OwnershipTransferred"].ID:
		if len(log.Topics) < 4 {
			return ledger.Event{}, errors.Errorf("malformed OwnershipTransferred log: %d topics", len(log.Topics))
		}

		unpacked, err := registryABI.Unpack("OwnershipTransferred", log.Data)
		if err != nil {
			return ledger.Event{}, err
		}

		return ledger.Event{
			Type:        ledger.EventTransferred,
			LandId:      log.Topics[1].Bytes(),
			From:        common.BytesToAddress(log.Topics[2].Bytes()).Hex(),
			To:          common.BytesToAddress(log.Topics[3].Bytes()).Hex(),
			Price:       land.PriceFromWei(unpacked[0].(*big.Int)),
			TxHash:      log.TxHash.Bytes(),
			BlockNumber: log.BlockNumber,
		}, nil
	default:
		return ledger.Event{}, errors.New("unknown event topic")
	}
}

// awaitReceipt waits for the transaction to be mined, bounded by the
// configured confirmation timeout. The transaction is never re-sent: if the
// deadline passes or the receipt poll fails, ErrConfirmationPending is
// returned together with the handle so the caller can reconcile later.
func (c *Client) awaitReceipt(ctx context.Context, tx *types.Transaction) (ledger.TxHandle, error) {
	handle := ledger.TxHandle{Hash: tx.Hash().Bytes()}

	waitCtx, cancel := context.WithTimeout(ctx, c.confirmTimeout)
	defer cancel()

	receipt, err := bind.WaitMined(waitCtx, c.eth, tx)
	if err != nil {
		// The transaction is already out, so any failure here leaves its
		// status unknown, not failed.
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return handle, ledger.ErrConfirmationPending
		}

		return handle, errors.Wrap(ledger.ErrConfirmationPending, err.Error())
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		return handle, errors.Wrap(ledger.ErrChainRejected, "transaction reverted")
	}

	handle.BlockNumber = receipt.BlockNumber.Uint64()
	return handle, nil
}

// snapshotFromStruct maps the lands(bytes32) tuple to a ParcelSnapshot.
func snapshotFromStruct(id land.LandID, out []interface{}) (ledger.ParcelSnapshot, error) {
	if len(out) != 12 {
		return ledger.ParcelSnapshot{}, errors.Errorf("unexpected lands() output arity %d", len(out))
	}

	exists, _ := out[8].(bool)
	if !exists {
		return ledger.ParcelSnapshot{}, ledger.ErrNotRegistered
	}

	return ledger.ParcelSnapshot{
		LandId:       id,
		OwnerName:    out[0].(string),
		LandArea:     out[1].(*big.Int).Int64(),
		District:     out[2].(string),
		Taluk:        out[3].(string),
		Village:      out[4].(string),
		BlockNumber:  out[5].(*big.Int).Int64(),
		SurveyNumber: out[6].(*big.Int).Int64(),
		OwnerAddress: out[7].(common.Address).Hex(),
		DocumentHash: out[9].(string),
		Verified:     out[10].(bool),
		Price:        land.PriceFromWei(out[11].(*big.Int)),
	}, nil
}

// classifyError maps JSON-RPC failures onto the ledger error taxonomy:
// reverts (with reason where the node provides one) are permanent, transport
// problems are transient and retriable for reads only.
func classifyError(err error) error {
	if err == nil {
		return nil
	}

	var dataErr rpc.DataError
	if errors.As(err, &dataErr) {
		return errors.Wrapf(ledger.ErrChainRejected, "%s", dataErr.Error())
	}

	if strings.Contains(err.Error(), "execution reverted") || strings.Contains(err.Error(), "insufficient funds") {
		return errors.Wrapf(ledger.ErrChainRejected, "%s", err.Error())
	}

	return errors.Wrapf(ledger.ErrChainUnavailable, "%s", err.Error())
}
