package worker

// report_worker.go
// Processes commission-report jobs from QueueReports: aggregates per-teller
// commissions for the requested period, renders the PDF, and flips the report
// row to ready/failed. Retries with exponential backoff; exhausted jobs land
// in the DLQ.

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/santechrwanda/broker-sub002/internal/infra"
	"github.com/santechrwanda/broker-sub002/internal/model"
	"github.com/santechrwanda/broker-sub002/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const MaxReportRetries = 3

// ReportJobPayload is the job envelope sent to QueueReports. The row id is
// the only payload — everything else is re-read from the store.
type ReportJobPayload struct {
	ReportID string `json:"report_id"`
}

// ReportWorker renders commission reports.
type ReportWorker struct {
	reportRepo  repository.ReportRepository
	tradeRepo   repository.TradeRepository
	dispatcher  *Dispatcher
	rdb         *redis.Client
	storagePath string
}

// NewReportWorker wires all dependencies for the report worker.
func NewReportWorker(
	reportRepo repository.ReportRepository,
	tradeRepo repository.TradeRepository,
	dispatcher *Dispatcher,
	rdb *redis.Client,
	storagePath string,
) *ReportWorker {
	return &ReportWorker{
		reportRepo:  reportRepo,
		tradeRepo:   tradeRepo,
		dispatcher:  dispatcher,
		rdb:         rdb,
		storagePath: storagePath,
	}
}

// Process handles a single report job:
//  1. Parse ReportJobPayload and fetch the report row
//  2. Aggregate per-teller commissions for the period
//  3. Render the PDF (with retries)
//  4. Flip the row to ready (or failed + DLQ)
//  5. Enqueue a delivery email when the requester asked for one
func (w *ReportWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload ReportJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("report_worker: invalid payload")
		return
	}

	reportID, err := uuid.Parse(payload.ReportID)
	if err != nil {
		log.Error().Str("report_id", payload.ReportID).Msg("report_worker: invalid report_id")
		return
	}

	report, err := w.reportRepo.FindByID(ctx, reportID)
	if err != nil {
		log.Error().Err(err).Str("report_id", payload.ReportID).Msg("report_worker: report not found")
		return
	}
	if report.Status == model.ReportReady {
		log.Warn().Str("report_id", payload.ReportID).Msg("report_worker: already generated — skipping")
		return
	}

	var filePath string
	genErr := withRetry(ctx, MaxReportRetries, func(attempt int) error {
		lines, err := w.tradeRepo.SummarizeCommissions(ctx, report.PeriodFrom, report.PeriodTo)
		if err != nil {
			log.Warn().Err(err).Int("attempt", attempt+1).
				Str("report_id", payload.ReportID).
				Msg("report_worker: aggregation failed, retrying")
			return err
		}
		path, err := infra.GenerateCommissionPDF(report, lines, w.storagePath)
		if err != nil {
			log.Warn().Err(err).Int("attempt", attempt+1).
				Str("report_id", payload.ReportID).
				Msg("report_worker: render failed, retrying")
			return err
		}
		filePath = path
		return nil
	})

	if genErr != nil {
		msg := genErr.Error()
		report.Status = model.ReportFailed
		report.LastError = &msg
		_ = w.reportRepo.Update(ctx, report)

		SendToDLQ(ctx, w.rdb, QueueReports, "report", raw,
			fmt.Sprintf("max retries (%d) exceeded: %s", MaxReportRetries, msg),
			MaxReportRetries)
		return
	}

	now := time.Now()
	report.Status = model.ReportReady
	report.FilePath = &filePath
	report.LastError = nil
	report.CompletedAt = &now
	if err := w.reportRepo.Update(ctx, report); err != nil {
		log.Error().Err(err).Str("report_id", payload.ReportID).Msg("report_worker: failed to mark ready")
		return
	}

	log.Info().Str("report_id", payload.ReportID).Str("file", filePath).Msg("report_worker: report ready")

	if report.NotifyEmail != nil && *report.NotifyEmail != "" {
		emailPayload := EmailJobPayload{
			ToEmail: *report.NotifyEmail,
			Subject: "Commission report ready",
			Body: fmt.Sprintf("The commission report for %s — %s is attached.",
				report.PeriodFrom.Format("02 Jan 2006"),
				report.PeriodTo.Format("02 Jan 2006")),
			Attachment: filePath,
		}
		if err := w.dispatcher.EnqueueEmail(ctx, emailPayload); err != nil {
			log.Error().Err(err).Str("report_id", payload.ReportID).Msg("report_worker: failed to enqueue delivery email")
		}
	}
}
