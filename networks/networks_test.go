package networks

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLookupByNameAndID(t *testing.T) {
	n, err := GetNetwork("base")
	if err != nil {
		t.Fatalf("GetNetwork(base): %s", err)
	}
	if n.GetChainID() != 8453 {
		t.Errorf("base chain id: got %d", n.GetChainID())
	}
	alt, err := GetNetwork("base-mainnet")
	if err != nil || alt != n {
		t.Errorf("alternative name should resolve to the same network")
	}
	byID, err := GetNetworkByID(8453)
	if err != nil || byID.GetName() != "base" {
		t.Errorf("GetNetworkByID(8453): got %v, %v", byID, err)
	}
	if _, err := GetNetworkByID(999999); !errors.Is(err, ErrNetworkNotFound) {
		t.Errorf("unknown id: got %v, want ErrNetworkNotFound", err)
	}
}

func TestNodes(t *testing.T) {
	t.Setenv("BASE_MAINNET_NODE", "")
	nodes := Nodes(BaseMainnet, "")
	if nodes["public-base"] != "https://mainnet.base.org" || len(nodes) != 1 {
		t.Errorf("default nodes: got %v", nodes)
	}

	t.Setenv("BASE_MAINNET_NODE", "http://localhost:8545")
	nodes = Nodes(BaseMainnet, "")
	if nodes["custom-node"] != "http://localhost:8545" || len(nodes) != 2 {
		t.Errorf("env node should be added next to defaults: got %v", nodes)
	}

	nodes = Nodes(BaseMainnet, "http://fork:8545")
	if len(nodes) != 1 || nodes["custom-node"] != "http://fork:8545" {
		t.Errorf("override should replace all nodes: got %v", nodes)
	}
}

func TestLoadCustomNetworks(t *testing.T) {
	dir := t.TempDir()
	content := `{"name":"base-fork","chain_id":31337,"native_token_symbol":"ETH","native_token_decimal":18,"block_time":1,"node_variable_name":"BASE_FORK_NODE","default_nodes":{"anvil":"http://127.0.0.1:8545"}}`
	if err := os.WriteFile(filepath.Join(dir, "fork.json"), []byte(content), 0o644); err != nil {
		t.Fatalf("write network file: %s", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "broken.json"), []byte(`{"name":""}`), 0o644); err != nil {
		t.Fatalf("write network file: %s", err)
	}

	loaded, err := LoadCustomNetworks(dir)
	if err == nil {
		t.Errorf("expected the broken config to be reported")
	}
	if len(loaded) != 1 {
		t.Fatalf("loaded networks: got %d, want 1", len(loaded))
	}
	n, err := GetNetworkByID(31337)
	if err != nil {
		t.Fatalf("custom network not registered: %s", err)
	}
	if n.GetBlockTime().Seconds() != 1 {
		t.Errorf("block time: got %s", n.GetBlockTime())
	}
}

func TestTxURL(t *testing.T) {
	if got := TxURL(BaseMainnet, "0xabc"); got != "https://basescan.org/tx/0xabc" {
		t.Errorf("TxURL: got %s", got)
	}
}
