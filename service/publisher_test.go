package service

import (
	"context"
	"encoding/xml"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Elteys/HackNation-2025-Odnalezione-Zguby-Gitownia/config"
	"github.com/Elteys/HackNation-2025-Odnalezione-Zguby-Gitownia/model"
)

func newTestPublisher(t *testing.T) (*Publisher, *config.Config) {
	t.Helper()

	cfg := &config.Config{
		Office: config.Office{Name: "Urząd Testowy"},
		Public: config.Public{
			BaseURL:       "https://zguby.example.gov.pl",
			ViewerBaseURL: "https://dane.gov.pl/zguby/podglad/",
			OutputDir:     t.TempDir(),
		},
	}

	ledger := NewLedger(cfg.LedgerDir())
	artifacts := NewArtifacts(cfg.MetadataDir(), cfg.QRDir(), cfg.Public.ViewerBaseURL)
	return NewPublisher(cfg, ledger, artifacts, nil), cfg
}

func normalizedReport() model.NormalizedReport {
	return model.NormalizedReport{
		Kategoria:    "INNE",
		Podkategoria: "Telefon",
		Nazwa:        "iPhone",
		Opis:         "a, b\nc",
		Data:         "2024-01-01",
		Miejsce:      "Park",
	}
}

func TestNewReportIDUniqueness(t *testing.T) {
	const n = 10000
	seen := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		id := NewReportID()
		if seen[id] {
			t.Fatalf("Duplicate identity generated: %s", id)
		}
		seen[id] = true
	}
}

func TestNewReportIDIsPathSafe(t *testing.T) {
	id := NewReportID()
	if strings.ContainsAny(id, "/\\ ?#%") {
		t.Errorf("Identity %q contains characters unsafe for URLs or filenames", id)
	}
}

func TestPublishEndToEnd(t *testing.T) {
	p, cfg := newTestPublisher(t)

	record, files, err := p.Publish(context.Background(), normalizedReport())
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if record.ID == "" {
		t.Fatal("Expected assigned identity")
	}

	// Ledger row exists.
	count, err := p.ledger.RowCount(cfg.Office.Name)
	if err != nil {
		t.Fatalf("RowCount failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 ledger row, got %d", count)
	}

	// Metadata artifact references the same identity.
	metaPath := filepath.Join(cfg.MetadataDir(), "zgloszenie-"+record.ID+".xml")
	data, err := os.ReadFile(metaPath)
	if err != nil {
		t.Fatalf("Metadata artifact missing: %v", err)
	}
	var doc model.Metadata
	if err := xml.Unmarshal(data, &doc); err != nil {
		t.Fatalf("Metadata does not parse: %v", err)
	}
	if doc.Naglowek.IdentyfikatorUnikalny != record.ID {
		t.Errorf("Metadata identity %s does not match record %s",
			doc.Naglowek.IdentyfikatorUnikalny, record.ID)
	}

	// QR artifact exists.
	if _, err := os.Stat(filepath.Join(cfg.QRDir(), "qr-"+record.ID+".png")); err != nil {
		t.Errorf("QR artifact missing: %v", err)
	}

	// Response links are durable public URLs sharing the identity.
	if files.ItemLink != "https://dane.gov.pl/zguby/podglad/"+record.ID {
		t.Errorf("Unexpected item link: %s", files.ItemLink)
	}
	if !strings.Contains(files.XML, record.ID) || !strings.Contains(files.QR, record.ID) {
		t.Error("Expected artifact links to embed the record identity")
	}
	if !strings.HasPrefix(files.CSV, "https://zguby.example.gov.pl/public/rejestry/") {
		t.Errorf("Unexpected ledger link: %s", files.CSV)
	}
}

func TestPublishLedgerFailureLeavesNoArtifacts(t *testing.T) {
	p, cfg := newTestPublisher(t)

	// Make the ledger directory unwritable by placing a file there.
	if err := os.WriteFile(cfg.LedgerDir(), []byte("blocker"), 0o644); err != nil {
		t.Fatalf("Failed to block ledger dir: %v", err)
	}

	_, _, err := p.Publish(context.Background(), normalizedReport())
	if err == nil {
		t.Fatal("Expected publish to fail")
	}

	var partial *PartialPublishError
	if errors.As(err, &partial) {
		t.Error("Pre-ledger failure must not be reported as partial publish")
	}

	// No artifacts were written.
	if entries, err := os.ReadDir(cfg.MetadataDir()); err == nil && len(entries) > 0 {
		t.Error("Expected no metadata artifacts after ledger failure")
	}
	if entries, err := os.ReadDir(cfg.QRDir()); err == nil && len(entries) > 0 {
		t.Error("Expected no QR artifacts after ledger failure")
	}
}

func TestPublishArtifactFailureIsPartial(t *testing.T) {
	p, cfg := newTestPublisher(t)

	// Ledger writable, metadata dir blocked by a regular file.
	if err := os.WriteFile(cfg.MetadataDir(), []byte("blocker"), 0o644); err != nil {
		t.Fatalf("Failed to block metadata dir: %v", err)
	}

	_, _, err := p.Publish(context.Background(), normalizedReport())
	if err == nil {
		t.Fatal("Expected publish to fail")
	}

	var partial *PartialPublishError
	if !errors.As(err, &partial) {
		t.Fatalf("Expected PartialPublishError, got %T: %v", err, err)
	}
	if partial.ReportID == "" {
		t.Error("Partial publish error must carry the identity for reconciliation")
	}

	// The ledger row persists: append-only, no rollback.
	count, countErr := p.ledger.RowCount(cfg.Office.Name)
	if countErr != nil {
		t.Fatalf("RowCount failed: %v", countErr)
	}
	if count != 1 {
		t.Errorf("Expected the committed ledger row to persist, got %d rows", count)
	}
}
