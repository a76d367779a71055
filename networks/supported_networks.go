package networks

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// Insert more Network implementation here to support
// more chains
var supportedNetworks = []Network{
	BaseMainnet,
	BaseSepolia,
	EthereumMainnet,
	OptimismMainnet,
}

var (
	globalSupportedNetworks = newSupportedNetworks()
	ErrNetworkNotFound      = errors.New("network not found")
)

type networks struct {
	mu           sync.RWMutex
	networks     map[string]Network
	networksByID map[uint64]Network
}

func newSupportedNetworks() *networks {
	result := &networks{
		networks:     map[string]Network{},
		networksByID: map[uint64]Network{},
	}
	for _, n := range supportedNetworks {
		if err := result.add(n, false); err != nil {
			panic(err)
		}
	}
	return result
}

func (n *networks) add(network Network, replace bool) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	names := append([]string{network.GetName()}, network.GetAlternativeNames()...)
	if !replace {
		for _, name := range names {
			if _, found := n.networks[name]; found {
				return fmt.Errorf("network with name or alternative name of '%s' already exists", name)
			}
		}
	}
	for _, name := range names {
		n.networks[name] = network
	}
	n.networksByID[network.GetChainID()] = network
	return nil
}

func (n *networks) getNetwork(name string) (Network, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	res, found := n.networks[name]
	if !found {
		return nil, fmt.Errorf("network name '%s': %w", name, ErrNetworkNotFound)
	}
	return res, nil
}

func (n *networks) getNetworkByID(id uint64) (Network, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	res, found := n.networksByID[id]
	if !found {
		return nil, fmt.Errorf("network id %d: %w", id, ErrNetworkNotFound)
	}
	return res, nil
}

func (n *networks) all() []Network {
	n.mu.RLock()
	defer n.mu.RUnlock()
	res := make([]Network, 0, len(n.networksByID))
	for _, network := range n.networksByID {
		res = append(res, network)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].GetName() < res[j].GetName() })
	return res
}

// LoadCustomNetworks registers every *.json network config found in dir.
// Custom networks replace built-in ones with the same name or chain id,
// which is how a local fork of base is pointed at.
func LoadCustomNetworks(dir string) ([]Network, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to glob json files in %s: %w", dir, err)
	}

	loaded := []Network{}
	errs := []error{}
	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to read file %s: %w", file, err))
			continue
		}
		network, err := NewNetworkFromJSON(content)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to parse network from file %s: %w", file, err))
			continue
		}
		if err := globalSupportedNetworks.add(network, true); err != nil {
			errs = append(errs, err)
			continue
		}
		loaded = append(loaded, network)
	}
	return loaded, errors.Join(errs...)
}

func NewNetworkFromJSON(content []byte) (Network, error) {
	networkConfig := GenericNetworkConfig{}
	if err := json.Unmarshal(content, &networkConfig); err != nil {
		return nil, fmt.Errorf("failed to unmarshal network config: %w", err)
	}
	if networkConfig.Name == "" || networkConfig.ChainID == 0 {
		return nil, fmt.Errorf("network config needs both name and chain_id")
	}
	return NewGenericNetwork(networkConfig), nil
}

// AddNetwork registers network and stores it in dir so that later runs pick
// it up through LoadCustomNetworks.
func AddNetwork(network Network, dir string) error {
	if err := globalSupportedNetworks.add(network, true); err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	content, err := network.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal network: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("%s.json", network.GetName()))
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("failed to write the new network to file: %w", err)
	}
	return nil
}

func GetSupportedNetworks() []Network {
	return globalSupportedNetworks.all()
}

func GetNetwork(name string) (Network, error) {
	return globalSupportedNetworks.getNetwork(name)
}

func GetNetworkByID(id uint64) (Network, error) {
	return globalSupportedNetworks.getNetworkByID(id)
}
