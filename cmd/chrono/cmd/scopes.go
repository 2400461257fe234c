package cmd

import (
	"context"
	"log"

	"github.com/scopelab/chrono/recording"
)

// readScopes loads the scope records of a recording, ordered by start time.
// An empty chain string loads all chains.
func readScopes(dbPath, chain string) []recording.ScopeRecord {
	reader := recording.NewScopeReader(dbPath)
	defer reader.Close()

	params := recording.QueryParams{
		OrderBy: "StartUs ASC, ID ASC",
	}
	if chain != "" {
		params.Where = "ChainID = ?"
		params.Args = []any{chain}
	}

	entries, _, err := reader.Query(
		context.Background(), recording.ScopeTableName, params)
	if err != nil {
		log.Fatalf("Error reading scopes: %v", err)
	}

	records := make([]recording.ScopeRecord, 0, len(entries))
	for _, e := range entries {
		records = append(records, *e.(*recording.ScopeRecord))
	}

	return records
}

// groupByChain splits records by chain ID, keeping the chains in the order
// they first appear.
func groupByChain(records []recording.ScopeRecord) (
	[]string, map[string][]recording.ScopeRecord,
) {
	order := []string{}
	chains := map[string][]recording.ScopeRecord{}

	for _, r := range records {
		if _, ok := chains[r.ChainID]; !ok {
			order = append(order, r.ChainID)
		}

		chains[r.ChainID] = append(chains[r.ChainID], r)
	}

	return order, chains
}
