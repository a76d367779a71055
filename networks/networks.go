package networks

import (
	"os"
	"strings"
)

// Nodes returns the rpc endpoints to use for n, keyed by node name. An
// explicit override (the --node flag) replaces everything. Otherwise the
// network's node env var, when set, is used next to the default nodes.
func Nodes(n Network, override string) map[string]string {
	override = strings.TrimSpace(override)
	if override != "" {
		return map[string]string{"custom-node": override}
	}
	result := map[string]string{}
	for name, url := range n.GetDefaultNodes() {
		result[name] = url
	}
	if custom := strings.TrimSpace(os.Getenv(n.GetNodeVariableName())); custom != "" {
		result["custom-node"] = custom
	}
	return result
}

func TxURL(n Network, hash string) string {
	if n.GetBlockExplorerURL() == "" {
		return hash
	}
	return strings.TrimRight(n.GetBlockExplorerURL(), "/") + "/tx/" + hash
}
