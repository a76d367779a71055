package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/tranvictor/vaultctl/accounts"
	vaultcommon "github.com/tranvictor/vaultctl/common"
	"github.com/tranvictor/vaultctl/config"
	"github.com/tranvictor/vaultctl/gateway"
	"github.com/tranvictor/vaultctl/logger"
	"github.com/tranvictor/vaultctl/metrics"
	"github.com/tranvictor/vaultctl/networks"
	"github.com/tranvictor/vaultctl/orchestrator"
	"github.com/tranvictor/vaultctl/snapshot"
	"github.com/tranvictor/vaultctl/util/addrbook"
	"github.com/tranvictor/vaultctl/vault"
)

// vaultContext is everything a command needs to talk to the vault.
type vaultContext struct {
	gw       gateway.Gateway
	eth      *gateway.EthGateway
	network  networks.Network
	facade   *vault.Facade
	cache    *snapshot.Cache
	orch     *orchestrator.Orchestrator
	resolver addrbook.AddressResolver
	registry *prometheus.Registry
	store    *accounts.Store
	log      zerolog.Logger
}

type accountMode int

const (
	// noAccount never unlocks anything.
	noAccount accountMode = iota
	// watchAccount uses --from (or the env key) for reads only.
	watchAccount
	// signingAccount unlocks a signer and fails when none can be found.
	signingAccount
)

func newVaultContext(ctx context.Context, mode accountMode) (*vaultContext, error) {
	vc := &vaultContext{
		store: accounts.NewStore(accounts.DefaultDir()),
		log:   logger.GetForComponent("cmd"),
	}
	vc.resolver = addrbook.NewDefault(vc.store)

	var indicators metrics.Indicators = metrics.NoopIndicators{}
	if config.MetricsAddr != "" {
		vc.registry = prometheus.NewRegistry()
		indicators = metrics.NewPromIndicators(vc.registry)
	}

	if config.Simulate {
		vc.gw = newSimulatedGateway()
		vc.network = networks.BaseMainnet
		appUI.Warn("Simulation mode: nothing is sent to a real chain.")
	} else {
		network, err := networks.GetNetwork(config.Network)
		if err != nil {
			return nil, fmt.Errorf("unknown network %q: %w", config.Network, err)
		}
		eth, err := gateway.NewEthGateway(ctx, network, config.Node, gatewayOptions(vc.resolver))
		if err != nil {
			return nil, fmt.Errorf("couldn't connect to %s: %w", network.GetName(), err)
		}
		if err := vc.connect(eth, mode); err != nil {
			return nil, err
		}
		vc.gw, vc.eth, vc.network = eth, eth, network
	}

	vc.facade = vault.NewFacade(vc.gw)
	vc.cache = snapshot.NewCache(vc.facade, vc.gw, indicators)
	vc.orch = orchestrator.New(vc.gw, vc.facade, vc.cache, orchestrator.NewUINotifier(appUI), indicators)
	return vc, nil
}

func (vc *vaultContext) connect(eth *gateway.EthGateway, mode accountMode) error {
	if mode == noAccount {
		return nil
	}
	desc, err := vc.pickAccount()
	if err != nil {
		if mode == watchAccount && errors.Is(err, accounts.ErrNoAccount) {
			return nil
		}
		return err
	}
	if mode == watchAccount {
		eth.ConnectAddress(common.HexToAddress(desc.Address))
		return nil
	}
	acc, err := accounts.UnlockAccount(desc, accounts.TerminalPassword)
	if err != nil {
		vc.log.Warn().Err(err).Str("address", desc.Address).Msg("unlock failed")
		return err
	}
	eth.Connect(acc)
	return nil
}

// pickAccount resolves --from, falling back to VAULTCTL_PRIVATE_KEY.
func (vc *vaultContext) pickAccount() (accounts.AccDesc, error) {
	from := strings.TrimSpace(config.From)
	if from == "" {
		if desc, ok := accounts.EnvAccount(); ok {
			return desc, nil
		}
		return accounts.AccDesc{}, fmt.Errorf("%w: pass --from or set %s", accounts.ErrNoAccount, accounts.PrivateKeyEnv)
	}
	if desc, ok := accounts.EnvAccount(); ok && vaultcommon.SameAddress(desc.Address, from) {
		return desc, nil
	}
	desc, err := vc.store.GetAccount(from)
	if err != nil {
		if addr, aerr := vaultcommon.StringToAddress(from); aerr == nil {
			return accounts.AccDesc{Address: addr.Hex(), Desc: "unregistered"}, nil
		}
		return accounts.AccDesc{}, err
	}
	return desc, nil
}

func gatewayOptions(resolver addrbook.AddressResolver) gateway.Options {
	opts := gateway.Options{
		GasPrice:      config.GasPrice,
		TipGas:        config.TipGas,
		ExtraGasPrice: config.ExtraGasPrice,
		ExtraTipGas:   config.ExtraTipGas,
		GasLimit:      config.GasLimit,
		ExtraGasLimit: config.ExtraGasLimit,
		ForceLegacy:   config.ForceLegacy,
		PollInterval:  config.PollInterval,
	}
	if !config.YesToAllPrompt {
		opts.Confirm = func(s gateway.TxSummary) bool {
			showTxSummary(appUI, resolver, s)
			return appUI.Confirm("Sign and broadcast this transaction?", false)
		}
	}
	return opts
}

// activeNetwork follows the gateway across network switches. vc.network is
// only the network the command started on.
func (vc *vaultContext) activeNetwork() networks.Network {
	if vc.eth != nil {
		return vc.eth.Network()
	}
	if n, err := networks.GetNetworkByID(vc.gw.Session().ChainID); err == nil {
		return n
	}
	return vc.network
}

// txURL links hash on the explorer of the active network.
func (vc *vaultContext) txURL(hash common.Hash) string {
	return networks.TxURL(vc.activeNetwork(), hash.Hex())
}
