package accounts

import (
	"fmt"
	"sort"
	"strings"
)

type FuzzySource []AccDesc

func (fs FuzzySource) Len() int {
	return len(fs)
}

func (fs FuzzySource) String(i int) string {
	return fmt.Sprintf("%s_%s", fs[i].Address, strings.ReplaceAll(fs[i].Desc, " ", "_"))
}

// NewFuzzySource lists the store's accounts sorted by address so equal
// scores resolve the same way on every run.
func (s *Store) NewFuzzySource() FuzzySource {
	result := FuzzySource{}
	for _, acc := range s.GetAccounts() {
		result = append(result, acc)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Address < result[j].Address })
	return result
}
