package service

import (
	"context"
	"errors"
	"time"

	"github.com/santechrwanda/broker-sub002/internal/dto"
	"github.com/santechrwanda/broker-sub002/internal/model"
	"github.com/santechrwanda/broker-sub002/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrReportNotFound = errors.New("report not found")
	ErrReportNotReady = errors.New("report not ready")
	ErrBadPeriod      = errors.New("invalid report period")
)

// ReportService accepts commission-report requests and hands generation off
// to the worker pool. The API never blocks on PDF rendering.
type ReportService interface {
	Request(ctx context.Context, requester *model.User, req dto.RequestReportRequest) (*dto.ReportResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.ReportResponse, error)
	List(ctx context.Context) ([]dto.ReportResponse, error)
	FilePath(ctx context.Context, id uuid.UUID) (string, error)
}

type reportService struct {
	repo       repository.ReportRepository
	dispatcher Dispatcher
}

func NewReportService(repo repository.ReportRepository, dispatcher Dispatcher) ReportService {
	return &reportService{repo: repo, dispatcher: dispatcher}
}

// Request validates the period, persists a pending report row, and enqueues
// the generation job. The row id is the job's only payload — the worker
// re-reads everything else from the store.
func (s *reportService) Request(ctx context.Context, requester *model.User, req dto.RequestReportRequest) (*dto.ReportResponse, error) {
	from, err := time.Parse(time.RFC3339, req.From)
	if err != nil {
		return nil, ErrBadPeriod
	}
	to, err := time.Parse(time.RFC3339, req.To)
	if err != nil || !to.After(from) {
		return nil, ErrBadPeriod
	}

	report := &model.Report{
		PeriodFrom:  from,
		PeriodTo:    to,
		Status:      model.ReportPending,
		RequestedBy: requester.ID,
		NotifyEmail: req.NotifyEmail,
	}
	if err := s.repo.Create(ctx, report); err != nil {
		return nil, err
	}

	payload := map[string]string{"report_id": report.ID.String()}
	if err := s.dispatcher.EnqueueReport(ctx, payload); err != nil {
		// The row exists but no job will pick it up — mark it failed so the
		// client sees a terminal state rather than an eternal "pending".
		msg := "failed to enqueue generation job"
		report.Status = model.ReportFailed
		report.LastError = &msg
		_ = s.repo.Update(ctx, report)
		return nil, err
	}

	resp := toReportResponse(report)
	return &resp, nil
}

func (s *reportService) Get(ctx context.Context, id uuid.UUID) (*dto.ReportResponse, error) {
	report, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, err
	}
	resp := toReportResponse(report)
	return &resp, nil
}

func (s *reportService) List(ctx context.Context) ([]dto.ReportResponse, error) {
	reports, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.ReportResponse, len(reports))
	for i := range reports {
		resp[i] = toReportResponse(&reports[i])
	}
	return resp, nil
}

// FilePath returns the rendered PDF location for a ready report.
func (s *reportService) FilePath(ctx context.Context, id uuid.UUID) (string, error) {
	report, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrReportNotFound
		}
		return "", err
	}
	if report.Status != model.ReportReady || report.FilePath == nil {
		return "", ErrReportNotReady
	}
	return *report.FilePath, nil
}

func toReportResponse(r *model.Report) dto.ReportResponse {
	return dto.ReportResponse{
		ID:          r.ID.String(),
		PeriodFrom:  r.PeriodFrom.Format(time.RFC3339),
		PeriodTo:    r.PeriodTo.Format(time.RFC3339),
		Status:      r.Status,
		LastError:   r.LastError,
		RequestedBy: r.RequestedBy.String(),
		CreatedAt:   r.CreatedAt.Format(time.RFC3339),
	}
}
