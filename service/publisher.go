package service

import (
	"context"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/Elteys/HackNation-2025-Odnalezione-Zguby-Gitownia/config"
	"github.com/Elteys/HackNation-2025-Odnalezione-Zguby-Gitownia/model"
	"github.com/Elteys/HackNation-2025-Odnalezione-Zguby-Gitownia/pkg/logger"
)

// Publisher runs the publish pipeline for an already-normalized
// report: assign identity, append the ledger row, generate artifacts,
// mirror them. Single pass, no retries between steps. A failure before
// the ledger append leaves no state behind; a failure after it is a
// PartialPublishError because the append cannot be undone.
type Publisher struct {
	cfg       *config.Config
	ledger    *Ledger
	artifacts *Artifacts
	mirror    *ArtifactMirror // nil when mirroring is disabled
}

func NewPublisher(cfg *config.Config, ledger *Ledger, artifacts *Artifacts, mirror *ArtifactMirror) *Publisher {
	return &Publisher{
		cfg:       cfg,
		ledger:    ledger,
		artifacts: artifacts,
		mirror:    mirror,
	}
}

// NewReportID assigns the identity of a published record: unique with
// overwhelming probability, URL- and filename-safe, and requiring no
// lookup against the ledger.
func NewReportID() string {
	return uuid.New().String()
}

// Publish commits the report to the office registry and generates its
// artifacts. On success the returned record and files are durable.
func (p *Publisher) Publish(ctx context.Context, report model.NormalizedReport) (*model.PublishedRecord, *model.PublishFiles, error) {
	record := &model.PublishedRecord{
		ID:        NewReportID(),
		Office:    p.cfg.Office.Name,
		CreatedAt: time.Now(),
		Report:    report,
	}

	ctx = context.WithValue(ctx, logger.ReportIDKey, record.ID)
	ctx = context.WithValue(ctx, logger.OfficeKey, record.Office)

	ledgerURL := p.publicURL("rejestry", p.ledger.FileName(record.Office))

	if err := p.ledger.Append(record); err != nil {
		logger.Error(ctx, "ledger append failed", "error", err)
		return nil, nil, err
	}

	// From here on the ledger row exists; any failure is a partial
	// publish that must carry the identity for reconciliation.
	metadataFile, err := p.artifacts.WriteMetadata(record, ledgerURL)
	if err != nil {
		logger.Error(ctx, "metadata artifact failed after ledger append", "error", err)
		return record, nil, &PartialPublishError{ReportID: record.ID, Err: err}
	}

	qrFile, err := p.artifacts.WriteQR(record.ID)
	if err != nil {
		logger.Error(ctx, "qr artifact failed after ledger append", "error", err)
		return record, nil, &PartialPublishError{ReportID: record.ID, Err: err}
	}

	if p.mirror != nil {
		// Best effort: the local files are authoritative, so a mirror
		// failure is a warning, not a failed publish.
		if err := p.mirror.MirrorRecord(ctx, record.ID,
			p.ledger.Path(record.Office),
			filepath.Join(p.artifacts.metadataDir, metadataFile),
			filepath.Join(p.artifacts.qrDir, qrFile),
		); err != nil {
			logger.Warn(ctx, "artifact mirroring incomplete", "error", err)
		}
	}

	files := &model.PublishFiles{
		CSV:      ledgerURL,
		XML:      p.publicURL("zgloszenia", metadataFile),
		QR:       p.publicURL("qr_images", qrFile),
		ItemLink: p.artifacts.ViewerURL(record.ID),
	}

	logger.Info(ctx, "report published",
		"kategoria", report.Kategoria,
		"nazwa", report.Nazwa,
	)
	return record, files, nil
}

func (p *Publisher) publicURL(subdir, file string) string {
	return p.cfg.Public.BaseURL + "/public/" + subdir + "/" + file
}
