// Package recording persists completed scope chains into durable storage,
// such as CSV files, JSON files, and SQL databases.
package recording

import (
	"github.com/scopelab/chrono/timeline"
)

// A ScopeRecord is one completed scope, flattened for storage. A record with
// EndUs zero describes a scope that never ended before its chain was stored.
type ScopeRecord struct {
	ChainID    string `json:"chainId"`
	Name       string `json:"name"`
	ID         uint64 `json:"id"`
	Depth      uint32 `json:"depth"`
	StartUs    uint64 `json:"startUs"`
	EndUs      uint64 `json:"endUs"`
	DurationUs uint64 `json:"durationUs"`
}

// A ScopeWriter can persist scope records into one storage backend.
type ScopeWriter interface {
	// Write stores one record. Writers are allowed to buffer.
	Write(record ScopeRecord)

	// Flush forces the buffered records into storage.
	Flush()
}

// PairScopes converts the events of one chain into scope records, matching
// each end event with its begin event. End events without a begin are
// skipped. Begin events without an end are stored with EndUs zero, after all
// the completed scopes.
func PairScopes(chainID string, events []timeline.Event) []ScopeRecord {
	beginEvents := make(map[uint64]timeline.Event)
	records := []ScopeRecord{}

	for _, evt := range events {
		switch evt.Kind {
		case timeline.KindBegin:
			if _, ok := beginEvents[evt.ID]; !ok {
				beginEvents[evt.ID] = evt
			}
		case timeline.KindEnd:
			begin, ok := beginEvents[evt.ID]
			if !ok {
				continue
			}
			delete(beginEvents, evt.ID)

			records = append(records, ScopeRecord{
				ChainID:    chainID,
				Name:       begin.Name,
				ID:         evt.ID,
				Depth:      begin.Depth,
				StartUs:    begin.EpochUs(),
				EndUs:      evt.EpochUs(),
				DurationUs: evt.EpochUs() - begin.EpochUs(),
			})
		}
	}

	for _, evt := range events {
		if evt.Kind != timeline.KindBegin {
			continue
		}

		begin, ok := beginEvents[evt.ID]
		if !ok {
			continue
		}
		delete(beginEvents, evt.ID)

		records = append(records, ScopeRecord{
			ChainID: chainID,
			Name:    begin.Name,
			ID:      begin.ID,
			Depth:   begin.Depth,
			StartUs: begin.EpochUs(),
		})
	}

	return records
}
