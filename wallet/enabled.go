// SPDX-License-Identifier: Apache-2.0

package wallet

import (
	"sort"

	"github.com/lazorkit/wallet-core/layout"
	"github.com/lazorkit/wallet-core/walleterr"
)

// GetEnabledPlugins returns the enabled plugin entries referenced by refs,
// sorted by ascending priority with ties broken by insertion (registry)
// order (spec.md §8 P3, §5 ordering rule: "across plugins for a single
// inner instruction, ascending priority is authoritative; ties broken by
// insertion order in the registry").
func GetEnabledPlugins(buf []byte, refs []layout.PluginRef) ([]PluginRecord, error) {
	all, err := GetPlugins(buf)
	if err != nil {
		return nil, err
	}
	type indexed struct {
		rec      PluginRecord
		priority uint8
	}
	picked := make([]indexed, 0, len(refs))
	for _, ref := range refs {
		if !ref.Enabled {
			continue
		}
		if int(ref.PluginIndex) >= len(all) {
			return nil, walleterr.ErrPluginNotFound
		}
		rec := all[ref.PluginIndex]
		if !rec.Entry.Enabled {
			continue
		}
		picked = append(picked, indexed{rec: rec, priority: ref.Priority})
	}
	sort.SliceStable(picked, func(i, j int) bool {
		if picked[i].priority != picked[j].priority {
			return picked[i].priority < picked[j].priority
		}
		return picked[i].rec.Index < picked[j].rec.Index
	})
	out := make([]PluginRecord, len(picked))
	for i, p := range picked {
		out[i] = p.rec
	}
	return out, nil
}
