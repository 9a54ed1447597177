package vm

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

// PerformanceStatistics accumulates per-run execution counters: instruction
// and hot-path frequency trimmed to what an RV32I run loop can observe (no
// call-graph tracking, since the core has no notion of function
// boundaries).
type PerformanceStatistics struct {
	Enabled bool

	TotalInstructions uint64
	InstructionCounts map[string]uint64 // mnemonic -> count
	HotPath           map[uint32]uint64 // pc -> count

	BranchCount      uint64
	BranchTakenCount uint64
}

// NewPerformanceStatistics creates an enabled, empty statistics collector.
func NewPerformanceStatistics() *PerformanceStatistics {
	return &PerformanceStatistics{
		Enabled:           true,
		InstructionCounts: make(map[string]uint64),
		HotPath:           make(map[uint32]uint64),
	}
}

// Record folds one executed instruction's trace record into the running
// totals.
func (s *PerformanceStatistics) Record(rec TraceRecord) {
	if s == nil || !s.Enabled {
		return
	}
	s.TotalInstructions++
	s.InstructionCounts[rec.Mnemonic]++
	s.HotPath[rec.PC]++

	switch rec.Mnemonic {
	case "beq", "bne", "blt", "bge", "bltu", "bgeu":
		s.BranchCount++
		if rec.Taken {
			s.BranchTakenCount++
		}
	}
}

// instructionStatsRow is the JSON/CSV row shape for a per-mnemonic count.
type instructionStatsRow struct {
	Mnemonic string `json:"mnemonic"`
	Count    uint64 `json:"count"`
}

func (s *PerformanceStatistics) sortedCounts() []instructionStatsRow {
	rows := make([]instructionStatsRow, 0, len(s.InstructionCounts))
	for mnemonic, count := range s.InstructionCounts {
		rows = append(rows, instructionStatsRow{Mnemonic: mnemonic, Count: count})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Mnemonic < rows[j].Mnemonic
	})
	return rows
}

// WriteJSON writes the statistics as a JSON document.
func (s *PerformanceStatistics) WriteJSON(w io.Writer) error {
	doc := struct {
		TotalInstructions uint64                `json:"total_instructions"`
		BranchCount       uint64                `json:"branch_count"`
		BranchTakenCount  uint64                `json:"branch_taken_count"`
		Instructions      []instructionStatsRow `json:"instructions"`
	}{
		TotalInstructions: s.TotalInstructions,
		BranchCount:       s.BranchCount,
		BranchTakenCount:  s.BranchTakenCount,
		Instructions:      s.sortedCounts(),
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// WriteCSV writes the per-mnemonic breakdown as CSV, one row per mnemonic.
func (s *PerformanceStatistics) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()
	if err := cw.Write([]string{"mnemonic", "count"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range s.sortedCounts() {
		if err := cw.Write([]string{row.Mnemonic, fmt.Sprintf("%d", row.Count)}); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	return nil
}
