package cmd

import (
	"context"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/tranvictor/vaultctl/config"
	"github.com/tranvictor/vaultctl/gateway"
	"github.com/tranvictor/vaultctl/metrics"
	"github.com/tranvictor/vaultctl/networks"
	"github.com/tranvictor/vaultctl/orchestrator"
	"github.com/tranvictor/vaultctl/snapshot"
	"github.com/tranvictor/vaultctl/ui"
	"github.com/tranvictor/vaultctl/vault"
)

func TestTxURLFollowsNetworkSwitch(t *testing.T) {
	g := gateway.NewMemoryGateway(networks.EthereumMainnet.GetChainID())
	g.AddChain(config.TargetChainID)
	facade := vault.NewFacade(g)
	cache := snapshot.NewCache(facade, g, metrics.NoopIndicators{})
	vc := &vaultContext{
		gw:      g,
		network: networks.EthereumMainnet,
		facade:  facade,
		cache:   cache,
		orch:    orchestrator.New(g, facade, cache, orchestrator.NewUINotifier(ui.NewRecordingUI()), metrics.NoopIndicators{}),
	}
	hash := common.HexToHash("0x01")

	if got := vc.txURL(hash); !strings.HasPrefix(got, "https://etherscan.io/tx/") {
		t.Fatalf("before the switch: got %s", got)
	}
	if err := vc.orch.SwitchNetwork(context.Background()); err != nil {
		t.Fatalf("SwitchNetwork: %s", err)
	}
	want := "https://basescan.org/tx/" + hash.Hex()
	if got := vc.txURL(hash); got != want {
		t.Errorf("after the switch: got %s, want %s", got, want)
	}
}

func TestTxURLUnknownChainFallsBack(t *testing.T) {
	g := gateway.NewMemoryGateway(999_999)
	vc := &vaultContext{gw: g, network: networks.BaseMainnet}
	if got := vc.txURL(common.HexToHash("0x02")); !strings.HasPrefix(got, "https://basescan.org/tx/") {
		t.Errorf("got %s", got)
	}
}

func TestNetworkListPutsBaseFirst(t *testing.T) {
	u := ui.NewRecordingUI()
	prev := appUI
	appUI = u
	defer func() { appUI = prev }()

	listNetworkCmd.Run(listNetworkCmd, nil)

	var rows []string
	for _, e := range u.Entries() {
		if e.Method == "Table" {
			rows = append(rows, e.Value)
		}
	}
	if len(rows) < 2 {
		t.Fatalf("got rows %v", rows)
	}
	if !strings.HasPrefix(rows[0], "base | 8453") || !strings.HasSuffix(rows[0], "| vault") {
		t.Errorf("first row should be the vault network, got %q", rows[0])
	}
	for _, r := range rows[1:] {
		if strings.HasSuffix(r, "| vault") {
			t.Errorf("only one vault network expected, got %q", r)
		}
	}
}
