package domain

import (
	"testing"
	"time"
)

func TestDecodeSize(t *testing.T) {
	tests := []struct {
		name     string
		in       int64
		wantKind SizeKind
		wantOK   bool
	}{
		{name: "zero", in: 0, wantKind: SizeOK, wantOK: true},
		{name: "positive", in: 4096, wantKind: SizeOK, wantOK: true},
		{name: "sdk unavailable", in: SentinelUnavailable, wantKind: SizeUnavailable},
		{name: "object store error", in: SentinelObjectStore, wantKind: SizeObjectStoreFailed},
		{name: "unknown negative", in: -2, wantKind: SizeInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DecodeSize(tt.in)
			if s.Kind() != tt.wantKind {
				t.Errorf("Kind() = %v, want %v", s.Kind(), tt.wantKind)
			}
			if _, ok := s.Bytes(); ok != tt.wantOK {
				t.Errorf("Bytes() ok = %v, want %v", ok, tt.wantOK)
			}
			if s.Encode() != tt.in {
				t.Errorf("Encode() = %d, want %d", s.Encode(), tt.in)
			}
		})
	}
}

func TestErrorSize_Encode(t *testing.T) {
	if got := ErrorSize(SizeUnavailable).Encode(); got != -1 {
		t.Errorf("unavailable encodes to %d, want -1", got)
	}
	if got := ErrorSize(SizeObjectStoreFailed).Encode(); got != -3 {
		t.Errorf("object store failure encodes to %d, want -3", got)
	}
}

func TestSize_AddKeepsErrors(t *testing.T) {
	if got := BytesSize(100).Add(50); got.Encode() != 150 {
		t.Errorf("Add() = %d, want 150", got.Encode())
	}

	failed := ErrorSize(SizeObjectStoreFailed).Add(50)
	if !failed.IsError() || failed.Encode() != SentinelObjectStore {
		t.Errorf("Add() on error size = %v, want unchanged sentinel", failed.Encode())
	}
}

func TestSize_String(t *testing.T) {
	if got := BytesSize(1536).String(); got != "1.5 KiB" {
		t.Errorf("String() = %q, want %q", got, "1.5 KiB")
	}
	if got := ErrorSize(SizeUnavailable).String(); got != "error(object_store_unavailable)" {
		t.Errorf("String() = %q", got)
	}
}

func TestSizeRecord_IsStale(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	r := &SizeRecord{TenantID: 2, Size: BytesSize(1), LastUpdate: now.Add(-30 * time.Second)}

	if r.IsStale(now, 30*time.Second) {
		t.Error("record exactly at threshold should be fresh")
	}
	if !r.IsStale(now, 29*time.Second) {
		t.Error("record older than threshold should be stale")
	}
}

func TestNewUsageReport(t *testing.T) {
	tests := []struct {
		name         string
		size         Size
		allowed      int64
		wantPercent  int64
		wantReadable string
		wantStatus   string
	}{
		{
			name:         "half used",
			size:         BytesSize(512 * 1024 * 1024),
			allowed:      1024 * 1024 * 1024,
			wantPercent:  50,
			wantReadable: "512 MiB",
			wantStatus:   "ok",
		},
		{
			name:         "rounded percent",
			size:         BytesSize(2),
			allowed:      3,
			wantPercent:  67,
			wantReadable: "2 B",
			wantStatus:   "ok",
		},
		{
			name:         "no quota",
			size:         BytesSize(1024),
			allowed:      0,
			wantPercent:  0,
			wantReadable: "1.0 KiB",
			wantStatus:   "ok",
		},
		{
			name:         "sentinel does not produce a percentage",
			size:         ErrorSize(SizeObjectStoreFailed),
			allowed:      1024,
			wantPercent:  0,
			wantReadable: "object_store_error",
			wantStatus:   "object_store_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewUsageReport(tt.size, tt.allowed)
			if r.UsedPercent != tt.wantPercent {
				t.Errorf("UsedPercent = %d, want %d", r.UsedPercent, tt.wantPercent)
			}
			if r.UsedReadable != tt.wantReadable {
				t.Errorf("UsedReadable = %q, want %q", r.UsedReadable, tt.wantReadable)
			}
			if r.Status != tt.wantStatus {
				t.Errorf("Status = %q, want %q", r.Status, tt.wantStatus)
			}
			if r.UsedBytes != tt.size.Encode() {
				t.Errorf("UsedBytes = %d, want %d", r.UsedBytes, tt.size.Encode())
			}
		})
	}
}
