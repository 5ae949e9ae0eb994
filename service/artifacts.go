package service

import (
	"encoding/xml"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Elteys/HackNation-2025-Odnalezione-Zguby-Gitownia/model"
	qrcode "github.com/skip2/go-qrcode"
)

const qrImageSize = 256

// Artifacts generates the derived outputs of a published record: the
// per-item XML metadata document and the QR code image. Both files are
// named from the record identity so they can be located later without
// an index, and both live under the public output directory.
type Artifacts struct {
	metadataDir   string
	qrDir         string
	viewerBaseURL string
}

func NewArtifacts(metadataDir, qrDir, viewerBaseURL string) *Artifacts {
	return &Artifacts{
		metadataDir:   metadataDir,
		qrDir:         qrDir,
		viewerBaseURL: viewerBaseURL,
	}
}

// MetadataFileName returns the XML filename for a record identity.
func (a *Artifacts) MetadataFileName(id string) string {
	return "zgloszenie-" + id + ".xml"
}

// QRFileName returns the QR image filename for a record identity.
func (a *Artifacts) QRFileName(id string) string {
	return "qr-" + id + ".png"
}

// ViewerURL builds the public viewer address encoded into the QR code.
func (a *Artifacts) ViewerURL(id string) string {
	return a.viewerBaseURL + id
}

// BuildMetadata serializes the record into the ZgloszenieZguby XML
// document. ledgerURL points at the public address of the CSV registry
// holding the authoritative row, so catalog consumers can find it.
func (a *Artifacts) BuildMetadata(record *model.PublishedRecord, ledgerURL string) ([]byte, error) {
	doc := model.Metadata{
		Naglowek: model.Naglowek{
			IdentyfikatorUnikalny: record.ID,
			NazwaUrzedu:           record.Office,
			DataUtworzenia:        record.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
			RejestrCSV:            ledgerURL,
		},
		Przedmiot: model.Przedmiot{
			Kategoria:    record.Report.Kategoria,
			Podkategoria: record.Report.Podkategoria,
			Nazwa:        record.Report.Nazwa,
			Opis:         record.Report.Opis,
			Cechy: model.CechyXML{
				Kolor: record.Report.Cechy.Kolor,
				Marka: record.Report.Cechy.Marka,
				Stan:  record.Report.Cechy.Stan,
			},
			DataZnalezienia: record.Report.Data,
			Miejsce:         record.Report.Miejsce,
			Lat:             record.Report.Lat,
			Lon:             record.Report.Lng,
		},
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), out...), nil
}

// WriteMetadata builds and writes the metadata document, returning the
// written filename.
func (a *Artifacts) WriteMetadata(record *model.PublishedRecord, ledgerURL string) (string, error) {
	data, err := a.BuildMetadata(record, ledgerURL)
	if err != nil {
		return "", &StorageError{Step: "metadata", Err: err}
	}

	if err := os.MkdirAll(a.metadataDir, 0o755); err != nil {
		return "", &StorageError{Step: "metadata", Err: err}
	}

	name := a.MetadataFileName(record.ID)
	if err := os.WriteFile(filepath.Join(a.metadataDir, name), data, 0o644); err != nil {
		return "", &StorageError{Step: "metadata", Err: err}
	}

	slog.Debug("metadata artifact written", "report_id", record.ID, "file", name)
	return name, nil
}

// WriteQR renders the viewer URL for the identity into a PNG QR code
// and writes it, returning the written filename. The encoded payload
// is a deterministic function of the URL.
func (a *Artifacts) WriteQR(id string) (string, error) {
	if err := os.MkdirAll(a.qrDir, 0o755); err != nil {
		return "", &StorageError{Step: "qr", Err: err}
	}

	name := a.QRFileName(id)
	if err := qrcode.WriteFile(a.ViewerURL(id), qrcode.Medium, qrImageSize, filepath.Join(a.qrDir, name)); err != nil {
		return "", &StorageError{Step: "qr", Err: err}
	}

	slog.Debug("qr artifact written", "report_id", id, "file", name)
	return name, nil
}
