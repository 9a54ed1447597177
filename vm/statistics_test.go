package vm

import (
	"bytes"
	"strings"
	"testing"
)

func TestPerformanceStatisticsRecord(t *testing.T) {
	stats := NewPerformanceStatistics()

	stats.Record(TraceRecord{PC: 0x80000000, Mnemonic: "addi"})
	stats.Record(TraceRecord{PC: 0x80000004, Mnemonic: "beq"})
	stats.Record(TraceRecord{PC: 0x80000000, Mnemonic: "addi"})

	if stats.TotalInstructions != 3 {
		t.Errorf("TotalInstructions = %d, want 3", stats.TotalInstructions)
	}
	if stats.InstructionCounts["addi"] != 2 {
		t.Errorf("addi count = %d, want 2", stats.InstructionCounts["addi"])
	}
	if stats.BranchCount != 1 {
		t.Errorf("BranchCount = %d, want 1", stats.BranchCount)
	}
	if stats.HotPath[0x80000000] != 2 {
		t.Errorf("HotPath[0x80000000] = %d, want 2", stats.HotPath[0x80000000])
	}
}

func TestPerformanceStatisticsBranchTaken(t *testing.T) {
	stats := NewPerformanceStatistics()

	stats.Record(TraceRecord{PC: 0x80000000, Mnemonic: "beq", Taken: true})
	stats.Record(TraceRecord{PC: 0x80000004, Mnemonic: "beq", Taken: false})
	stats.Record(TraceRecord{PC: 0x80000008, Mnemonic: "blt", Taken: true})

	if stats.BranchCount != 3 {
		t.Errorf("BranchCount = %d, want 3", stats.BranchCount)
	}
	if stats.BranchTakenCount != 2 {
		t.Errorf("BranchTakenCount = %d, want 2", stats.BranchTakenCount)
	}
}

func TestPerformanceStatisticsNilReceiver(t *testing.T) {
	var stats *PerformanceStatistics
	stats.Record(TraceRecord{Mnemonic: "addi"}) // must not panic
}

func TestPerformanceStatisticsDisabled(t *testing.T) {
	stats := NewPerformanceStatistics()
	stats.Enabled = false
	stats.Record(TraceRecord{Mnemonic: "addi"})

	if stats.TotalInstructions != 0 {
		t.Errorf("expected disabled collector to ignore records, got %d", stats.TotalInstructions)
	}
}

func TestPerformanceStatisticsWriteJSON(t *testing.T) {
	stats := NewPerformanceStatistics()
	stats.Record(TraceRecord{PC: 0x80000000, Mnemonic: "addi"})

	var buf bytes.Buffer
	if err := stats.WriteJSON(&buf); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}
	if !strings.Contains(buf.String(), "addi") {
		t.Errorf("expected JSON output to mention addi, got %s", buf.String())
	}
}

func TestPerformanceStatisticsWriteCSV(t *testing.T) {
	stats := NewPerformanceStatistics()
	stats.Record(TraceRecord{PC: 0x80000000, Mnemonic: "addi"})
	stats.Record(TraceRecord{PC: 0x80000004, Mnemonic: "addi"})

	var buf bytes.Buffer
	if err := stats.WriteCSV(&buf); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "mnemonic,count") {
		t.Errorf("expected CSV header, got %s", out)
	}
	if !strings.Contains(out, "addi,2") {
		t.Errorf("expected addi,2 row, got %s", out)
	}
}
