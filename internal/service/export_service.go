package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hakwon-ops/roster-api/internal/models"
	appErrors "github.com/hakwon-ops/roster-api/pkg/errors"
	"github.com/hakwon-ops/roster-api/pkg/export"
)

var exportHeaders = []string{"Name", "Slot", "Arrival", "Leave", "Attended", "HW Assigned", "HW Checked"}

// ExportDocument is a rendered day sheet.
type ExportDocument struct {
	ID          string
	Filename    string
	ContentType string
	Body        []byte
}

// ExportService renders the resolved roster as a printable day sheet.
type ExportService struct {
	roster  *RosterService
	csv     *export.CSVExporter
	pdf     *export.PDFExporter
	title   string
	enabled bool
	logger  *zap.Logger
}

// NewExportService instantiates ExportService.
func NewExportService(roster *RosterService, title string, enabled bool, logger *zap.Logger) *ExportService {
	if title == "" {
		title = "Daily Roster"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		roster:  roster,
		csv:     export.NewCSVExporter(),
		pdf:     export.NewPDFExporter(),
		title:   title,
		enabled: enabled,
		logger:  logger,
	}
}

// Enabled reports whether exports are switched on.
func (s *ExportService) Enabled() bool {
	return s != nil && s.enabled
}

// Render produces the day sheet in the requested format ("csv" or "pdf").
func (s *ExportService) Render(ctx context.Context, date models.DateKey, format string) (*ExportDocument, error) {
	if !s.Enabled() {
		return nil, appErrors.ErrUnavailable
	}

	entries := s.roster.Resolve(ctx, date)
	dataset := export.Dataset{Headers: exportHeaders, Rows: make([]map[string]string, 0, len(entries))}
	for _, entry := range entries {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Name":        entry.Student.Name,
			"Slot":        entry.SlotLabel,
			"Arrival":     entry.Arrival,
			"Leave":       entry.Leave,
			"Attended":    yesNo(entry.Attended),
			"HW Assigned": yesNo(entry.HwAssigned),
			"HW Checked":  yesNo(entry.HwChecked),
		})
	}

	doc := &ExportDocument{ID: uuid.NewString()}
	switch format {
	case "csv", "":
		body, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "csv render failed")
		}
		doc.Body = body
		doc.ContentType = "text/csv"
		doc.Filename = fmt.Sprintf("roster-%s.csv", date)
	case "pdf":
		body, err := s.pdf.Render(dataset, s.title, date.String())
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "pdf render failed")
		}
		doc.Body = body
		doc.ContentType = "application/pdf"
		doc.Filename = fmt.Sprintf("roster-%s.pdf", date)
	default:
		return nil, appErrors.New(appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unsupported export format")
	}

	s.logger.Info("day sheet rendered",
		zap.String("date", date.String()),
		zap.String("format", format),
		zap.String("document_id", doc.ID))
	return doc, nil
}

func yesNo(v bool) string {
	if v {
		return "Y"
	}
	return "N"
}
