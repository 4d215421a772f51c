// SPDX-License-Identifier: Apache-2.0

package instrstream

import (
	"crypto/sha256"

	"github.com/lazorkit/wallet-core/hostio"
)

// ByteRange is a caller-supplied [start, end) exclusion applied to an
// account's data blob before hashing (spec.md §4.G).
type ByteRange struct {
	Start, End int
}

// maxSnapshotAccounts caps how many writable outer accounts a snapshot set
// covers (spec.md §4.E: "capped at 100").
const maxSnapshotAccounts = 100

// Capture hashes (lamports || owner || data) for every writable account in
// the list, honoring per-account exclude ranges, and skips read-only
// accounts entirely (spec.md §4.G: "returns None for read-only accounts").
// The returned slice is indexed identically to accounts; a nil entry marks
// a skipped (read-only or past the cap) account.
func Capture(accounts hostio.AccountList, excludes map[int][]ByteRange) ([][]byte, error) {
	n := accounts.Len()
	out := make([][]byte, n)
	writableSeen := 0
	for i := 0; i < n; i++ {
		acct, err := accounts.At(i)
		if err != nil {
			return nil, err
		}
		if !acct.IsWritable {
			continue
		}
		writableSeen++
		if writableSeen > maxSnapshotAccounts {
			continue
		}
		out[i] = hashAccount(acct, excludes[i])
	}
	return out, nil
}

// Verify re-hashes accounts and reports the index of the first mismatch
// against prior (the snapshot from Capture), or -1 if all match.
func Verify(accounts hostio.AccountList, prior [][]byte, excludes map[int][]ByteRange) (int, error) {
	for i, want := range prior {
		if want == nil {
			continue
		}
		acct, err := accounts.At(i)
		if err != nil {
			return i, err
		}
		got := hashAccount(acct, excludes[i])
		if !bytesEqualSnapshot(got, want) {
			return i, nil
		}
	}
	return -1, nil
}

func hashAccount(acct *hostio.Account, excludes []ByteRange) []byte {
	h := sha256.New()
	var lamportsBuf [8]byte
	putUint64LE(lamportsBuf[:], acct.Lamports)
	h.Write(lamportsBuf[:])
	h.Write(acct.Owner[:])
	h.Write(selectBytes(acct.Data, excludes))
	sum := h.Sum(nil)
	return sum
}

// selectBytes returns data with the caller's exclude ranges removed,
// matching the original data's byte order outside those ranges.
func selectBytes(data []byte, excludes []ByteRange) []byte {
	if len(excludes) == 0 {
		return data
	}
	out := make([]byte, 0, len(data))
	pos := 0
	for _, r := range excludes {
		start, end := r.Start, r.End
		if start < pos {
			start = pos
		}
		if start > len(data) {
			start = len(data)
		}
		if end > len(data) {
			end = len(data)
		}
		out = append(out, data[pos:start]...)
		if end > pos {
			pos = end
		}
	}
	if pos < len(data) {
		out = append(out, data[pos:]...)
	}
	return out
}

func putUint64LE(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * uint(i)))
	}
}

func bytesEqualSnapshot(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
