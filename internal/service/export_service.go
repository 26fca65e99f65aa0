package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/study-planner-api/internal/models"
	appErrors "github.com/noah-isme/study-planner-api/pkg/errors"
	"github.com/noah-isme/study-planner-api/pkg/export"
	"github.com/noah-isme/study-planner-api/pkg/storage"
)

type snapshotProvider interface {
	BuildOwnerSnapshot(ctx context.Context, ownerID string) (models.Snapshot, error)
	BuildTermSnapshot(ctx context.Context, ownerID, termID string) (models.Snapshot, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

type textRenderer interface {
	Render(lines []string) []byte
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix       string
	ResultTTL       time.Duration
	UpcomingHorizon time.Duration
}

// ExportRequest describes which report to render and how.
type ExportRequest struct {
	Type   models.ReportType   `json:"type"`
	Format models.ReportFormat `json:"format"`
	TermID string              `json:"term_id,omitempty"`
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ReportFormat
	ExpiresAt    time.Time
}

// ExportService renders report documents to downloadable files. The text
// format reuses the line-based report contract verbatim; CSV and PDF carry
// the same data as tabular datasets.
type ExportService struct {
	snapshots snapshotProvider
	storage   fileStorage
	csv       csvRenderer
	pdf       pdfRenderer
	text      textRenderer
	signer    *storage.SignedURLSigner
	logger    *zap.Logger
	now       func() time.Time
	cfg       ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(snapshots snapshotProvider, store fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if cfg.UpcomingHorizon <= 0 {
		cfg.UpcomingHorizon = 7 * 24 * time.Hour
	}
	return &ExportService{
		snapshots: snapshots,
		storage:   store,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		text:      export.NewTextExporter(),
		signer:    signer,
		logger:    logger,
		now:       time.Now,
		cfg:       cfg,
	}
}

// Generate builds the requested report document and stores the rendered
// file, returning a signed download token.
func (s *ExportService) Generate(ctx context.Context, ownerID string, req ExportRequest) (*ExportResult, error) {
	snapshot, err := s.loadSnapshot(ctx, ownerID, req)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()

	var payload []byte
	switch req.Format {
	case models.ReportFormatTXT:
		payload = s.text.Render(s.renderLines(snapshot, req, now))
	case models.ReportFormatCSV:
		dataset, _ := s.buildDataset(snapshot, req, now)
		payload, err = s.csv.Render(dataset)
	case models.ReportFormatPDF:
		dataset, title := s.buildDataset(snapshot, req, now)
		payload, err = s.pdf.Render(dataset, title)
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported format %q", req.Format))
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report")
	}

	reportID := uuid.NewString()
	filename := s.buildFilename(req, now)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store report")
	}

	token, expiresAt, err := s.signer.Generate(reportID, relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download token")
	}

	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}

	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          fmt.Sprintf("%s/reports/download/%s", prefix, token),
		Format:       req.Format,
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (reportID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Cleanup removes files older than ttl (defaults to configured ResultTTL).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func (s *ExportService) loadSnapshot(ctx context.Context, ownerID string, req ExportRequest) (models.Snapshot, error) {
	if req.Type == models.ReportTypeTerm {
		if req.TermID == "" {
			return models.Snapshot{}, appErrors.Clone(appErrors.ErrValidation, "term_id is required for term reports")
		}
		return s.snapshots.BuildTermSnapshot(ctx, ownerID, req.TermID)
	}
	return s.snapshots.BuildOwnerSnapshot(ctx, ownerID)
}

func (s *ExportService) renderLines(snapshot models.Snapshot, req ExportRequest, now time.Time) []string {
	switch req.Type {
	case models.ReportTypeTerm:
		return RenderTermReport(snapshot.Terms[0], snapshot, now)
	case models.ReportTypeAssessments:
		return RenderAssessmentsReport(snapshot, now, s.cfg.UpcomingHorizon)
	default:
		return RenderProgressReport(snapshot, now, s.cfg.UpcomingHorizon)
	}
}

func (s *ExportService) buildDataset(snapshot models.Snapshot, req ExportRequest, now time.Time) (export.Dataset, string) {
	switch req.Type {
	case models.ReportTypeTerm:
		return buildCourseDataset(snapshot), fmt.Sprintf("Term Report %s", snapshot.Terms[0].Name)
	case models.ReportTypeAssessments:
		return buildAssessmentDataset(snapshot), "Assessments Report"
	default:
		return buildProgressDataset(snapshot, now, s.cfg.UpcomingHorizon), "Progress Report"
	}
}

func buildProgressDataset(snapshot models.Snapshot, now time.Time, horizon time.Duration) export.Dataset {
	rows := make([]map[string]string, 0, len(snapshot.Terms))
	for _, term := range snapshot.Terms {
		sub := models.Snapshot{
			Terms:               []models.Term{term},
			CoursesByTerm:       snapshot.CoursesByTerm,
			AssessmentsByCourse: snapshot.AssessmentsByCourse,
		}
		stats := ComputeProgress(sub, now, horizon)
		rows = append(rows, map[string]string{
			"Term":           term.Name,
			"Start":          reportDate(term.StartDate),
			"End":            reportDate(term.EndDate),
			"Courses":        fmt.Sprintf("%d", stats.TotalCourses),
			"Assessments":    fmt.Sprintf("%d", stats.TotalAssessments),
			"Completed":      fmt.Sprintf("%d", stats.CompletedAssessments),
			"Completion (%)": fmt.Sprintf("%.1f", stats.CompletionRate),
		})
	}
	return export.Dataset{
		Headers: []string{"Term", "Start", "End", "Courses", "Assessments", "Completed", "Completion (%)"},
		Rows:    rows,
	}
}

func buildCourseDataset(snapshot models.Snapshot) export.Dataset {
	progress := CourseProgressRows(snapshot)
	rows := make([]map[string]string, 0, len(progress))
	for _, row := range progress {
		rows = append(rows, map[string]string{
			"Number":         row.Course.CourseNumber,
			"Title":          row.Course.Title,
			"Status":         string(row.Course.Status),
			"Start":          reportDate(row.Course.StartDate),
			"End":            reportDate(row.Course.EndDate),
			"Credits":        fmt.Sprintf("%d", row.Course.CreditHours),
			"Completion (%)": fmt.Sprintf("%.1f", row.CompletionPercent),
		})
	}
	return export.Dataset{
		Headers: []string{"Number", "Title", "Status", "Start", "End", "Credits", "Completion (%)"},
		Rows:    rows,
	}
}

func buildAssessmentDataset(snapshot models.Snapshot) export.Dataset {
	numberByCourse := make(map[string]string)
	for _, course := range snapshot.Courses() {
		numberByCourse[course.ID] = course.CourseNumber
	}
	assessments := snapshot.Assessments()
	rows := make([]map[string]string, 0, len(assessments))
	for _, a := range assessments {
		rows = append(rows, map[string]string{
			"Course": numberByCourse[a.CourseID],
			"Name":   a.Name,
			"Type":   string(a.Type),
			"Status": string(a.Status),
			"Due":    reportDate(a.DueDate),
			"Score":  formatScore(a.Score, a.MaxPoints),
		})
	}
	return export.Dataset{
		Headers: []string{"Course", "Name", "Type", "Status", "Due", "Score"},
		Rows:    rows,
	}
}

func (s *ExportService) buildFilename(req ExportRequest, now time.Time) string {
	timestamp := now.Format("20060102_150405")
	return fmt.Sprintf("%s_%s.%s", strings.ToLower(string(req.Type)), timestamp, req.Format)
}
