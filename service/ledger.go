package service

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Elteys/HackNation-2025-Odnalezione-Zguby-Gitownia/model"
)

// ledgerHeader is the fixed column schema of every office registry.
// Written exactly once, when the file is created.
var ledgerHeader = []string{
	"ID", "Kategoria", "Podkategoria", "Nazwa", "Opis", "Kolor", "Marka",
	"Stan", "DataZnalezienia", "Miejsce", "Lat", "Lon",
}

// Ledger appends published records to one CSV registry per office.
// Rows are only ever appended; existing content is never re-read or
// rewritten. Appends within this process are serialized with a mutex;
// cross-process writers are out of scope and must be serialized by the
// deployment (single instance per office, or a file lock in front).
type Ledger struct {
	dir string

	mu    sync.Mutex
	locks map[string]*sync.Mutex // per ledger file
}

func NewLedger(dir string) *Ledger {
	return &Ledger{
		dir:   dir,
		locks: make(map[string]*sync.Mutex),
	}
}

// FileName derives the registry filename for an office. Deterministic:
// the same office always maps to the same file.
func (l *Ledger) FileName(office string) string {
	return "rejestr_" + slugify(office) + ".csv"
}

// Path returns the on-disk path of the office registry.
func (l *Ledger) Path(office string) string {
	return filepath.Join(l.dir, l.FileName(office))
}

// Append serializes the record as one CSV row and appends it to the
// office registry, creating the file with its header row first when it
// does not exist yet. On error nothing is considered committed.
func (l *Ledger) Append(record *model.PublishedRecord) error {
	path := l.Path(record.Office)

	lock := l.fileLock(path)
	lock.Lock()
	defer lock.Unlock()

	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return &StorageError{Step: "ledger", Err: err}
	}

	_, statErr := os.Stat(path)
	writeHeader := os.IsNotExist(statErr)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return &StorageError{Step: "ledger", Err: err}
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if writeHeader {
		if err := w.Write(ledgerHeader); err != nil {
			return &StorageError{Step: "ledger", Err: err}
		}
	}
	if err := w.Write(ledgerRow(record)); err != nil {
		return &StorageError{Step: "ledger", Err: err}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return &StorageError{Step: "ledger", Err: err}
	}
	if err := f.Sync(); err != nil {
		return &StorageError{Step: "ledger", Err: err}
	}

	slog.Info("ledger row appended",
		"report_id", record.ID,
		"file", l.FileName(record.Office),
		"kategoria", record.Report.Kategoria,
	)
	return nil
}

// ledgerRow flattens a record into the column schema. Every cell goes
// through the spreadsheet-injection guard before the CSV writer applies
// RFC 4180 quoting.
func ledgerRow(record *model.PublishedRecord) []string {
	r := record.Report
	cells := []string{
		record.ID, r.Kategoria, r.Podkategoria, r.Nazwa, r.Opis,
		r.Cechy.Kolor, r.Cechy.Marka, r.Cechy.Stan,
		r.Data, r.Miejsce, r.Lat, r.Lng,
	}
	for i, c := range cells {
		cells[i] = guardCell(c)
	}
	return cells
}

// guardCell defuses spreadsheet formula injection: a cell starting
// with =, +, - or @ would be executed by spreadsheet software opening
// the registry, so it is prefixed with a literal apostrophe.
func guardCell(v string) string {
	if v == "" {
		return v
	}
	switch v[0] {
	case '=', '+', '-', '@':
		return "'" + v
	}
	return v
}

// slugify lowers an office name into a safe filename fragment.
func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	lastUnderscore := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		case polishASCII[r] != 0:
			b.WriteRune(polishASCII[r])
			lastUnderscore = false
		default:
			if !lastUnderscore && b.Len() > 0 {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	slug := strings.TrimSuffix(b.String(), "_")
	if slug == "" {
		return "urzad"
	}
	return slug
}

// polishASCII folds Polish diacritics so office names stay readable in
// the filename.
var polishASCII = map[rune]rune{
	'ą': 'a', 'ć': 'c', 'ę': 'e', 'ł': 'l', 'ń': 'n',
	'ó': 'o', 'ś': 's', 'ż': 'z', 'ź': 'z',
}

func (l *Ledger) fileLock(path string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock, ok := l.locks[path]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[path] = lock
	}
	return lock
}

// RowCount reads back the number of data rows in an office registry.
// Used by tests and the health endpoint, never by the publish path.
func (l *Ledger) RowCount(office string) (int, error) {
	f, err := os.Open(l.Path(office))
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to open ledger: %w", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return 0, fmt.Errorf("failed to parse ledger: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return len(rows) - 1, nil
}
