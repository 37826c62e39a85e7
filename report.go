package entrypool

import (
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Report is a point-in-time snapshot of a registry and its pools. Building
// one never mutates pool state.
type Report struct {
	GeneratedAt     time.Time    `json:"generated_at"`
	RootSize        int          `json:"root_size"`
	PoolCount       int          `json:"pool_count"`
	EntriesPerBlock uint32       `json:"entries_per_block"`
	Pools           []PoolReport `json:"pools"`
}

// PoolReport describes one size class at snapshot time.
//
// EntriesInUse is the carved entries not currently on the reuse list.
// ExtraReusable is non-zero when the reuse list held more entries than were
// ever carved, which means some entry was freed more than once.
type PoolReport struct {
	Instances       uint32 `json:"instances"`
	EntrySize       uint32 `json:"entry_size"`
	BlockArraySize  uint32 `json:"block_array_size"`
	AllocatedBlocks uint32 `json:"allocated_blocks"`
	EntriesInUse    uint64 `json:"entries_in_use"`
	UnusedEntries   uint32 `json:"unused_entries"`
	ReusableEntries uint64 `json:"reusable_entries"`
	ExtraReusable   uint64 `json:"extra_reusable,omitempty"`
}

// Report snapshots the registry and every pool in it.
func (r *Registry) Report() *Report {
	r.mu.Lock()
	defer r.mu.Unlock()

	rep := &Report{
		GeneratedAt:     time.Now(),
		RootSize:        r.maxSizeClasses,
		PoolCount:       len(r.pools),
		EntriesPerBlock: r.entriesPerBlock,
		Pools:           make([]PoolReport, 0, len(r.pools)),
	}
	for _, p := range r.pools {
		rep.Pools = append(rep.Pools, p.snapshot())
	}
	return rep
}

// LogReport renders the current report and sends it through the registry's
// sink as a message.
func (r *Registry) LogReport() {
	r.sink.Message("%s", r.Report().FormatText())
}

// FormatText renders the report for humans. Counts are printed with digit
// grouping.
func (r *Report) FormatText() string {
	p := message.NewPrinter(language.English)
	var b strings.Builder

	b.WriteString("entry pool report\n")
	p.Fprintf(&b, "  size class limit  : %d\n", r.RootSize)
	p.Fprintf(&b, "  registered pools  : %d\n", r.PoolCount)
	p.Fprintf(&b, "  entries per block : %d\n", r.EntriesPerBlock)
	for i := range r.Pools {
		pr := &r.Pools[i]
		p.Fprintf(&b, "  [pool #%d]\n", i)
		p.Fprintf(&b, "    instances        : %d\n", pr.Instances)
		p.Fprintf(&b, "    entry size       : %d\n", pr.EntrySize)
		p.Fprintf(&b, "    block array size : %d\n", pr.BlockArraySize)
		p.Fprintf(&b, "    allocated blocks : %d\n", pr.AllocatedBlocks)
		p.Fprintf(&b, "    entries in use   : %d\n", pr.EntriesInUse)
		p.Fprintf(&b, "    unused entries   : %d\n", pr.UnusedEntries)
		p.Fprintf(&b, "    reusable entries : %d\n", pr.ReusableEntries)
		if pr.ExtraReusable > 0 {
			p.Fprintf(&b, "    WARNING: %d extra reusable entries were found\n", pr.ExtraReusable)
		}
	}
	b.WriteString("end of report\n")
	return b.String()
}

// FormatJSON renders the report as indented JSON.
func (r *Report) FormatJSON() (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
