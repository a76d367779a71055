package broadcaster

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rpc"

	vaultcommon "github.com/tranvictor/vaultctl/common"
	"github.com/tranvictor/vaultctl/logger"
)

const TIMEOUT = 4 * time.Second

var ErrNoClients = errors.New("no node could be dialled for broadcasting")

// RPCCaller is the part of *rpc.Client the broadcaster needs.
type RPCCaller interface {
	CallContext(ctx context.Context, result interface{}, method string, args ...interface{}) error
}

// Broadcaster takes a signed tx and tries to broadcast it to all nodes it
// manages as fast as possible. The tx counts as broadcasted once at least
// one node accepted it.
type Broadcaster struct {
	clients map[string]RPCCaller
}

func (b *Broadcaster) broadcast(ctx context.Context, name string, client RPCCaller, data string) error {
	if err := client.CallContext(ctx, nil, "eth_sendRawTransaction", data); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// BroadcastTx returns the hash of tx and whether any node accepted it. err
// joins the rejections of every node when none accepted it.
func (b *Broadcaster) BroadcastTx(ctx context.Context, tx *types.Transaction) (common.Hash, bool, error) {
	data, err := tx.MarshalBinary()
	if err != nil {
		return common.Hash{}, false, fmt.Errorf("tx is not valid, couldn't use rlp to encode it: %w", err)
	}
	if err := b.Broadcast(ctx, hexutil.Encode(data)); err != nil {
		return tx.Hash(), false, err
	}
	return tx.Hash(), true, nil
}

// Broadcast sends data, the hex encoded signed tx, to every node.
func (b *Broadcaster) Broadcast(ctx context.Context, data string) error {
	if len(b.clients) == 0 {
		return ErrNoClients
	}
	timeout, cancel := context.WithTimeout(ctx, TIMEOUT)
	defer cancel()

	parallelTasks := []func() error{}
	for name := range b.clients {
		name, cli := name, b.clients[name]
		parallelTasks = append(parallelTasks, func() error {
			return b.broadcast(timeout, name, cli, data)
		})
	}
	numErrs, err := vaultcommon.RunParallel(parallelTasks...)
	if numErrs == len(b.clients) {
		return err
	}
	if err != nil {
		logger.Logger.Debug().Err(err).Msg("some nodes rejected the tx")
	}
	return nil
}

func NewGenericBroadcaster(nodes map[string]string) *Broadcaster {
	log := logger.GetForComponent("broadcaster")
	clients := map[string]RPCCaller{}
	for name, c := range nodes {
		client, err := rpc.Dial(c)
		if err != nil {
			log.Warn().Err(err).Str("node", c).Msg("couldn't connect")
			continue
		}
		clients[name] = client
	}
	return &Broadcaster{clients: clients}
}

func NewBroadcasterWithClients(clients map[string]RPCCaller) *Broadcaster {
	return &Broadcaster{clients: clients}
}
