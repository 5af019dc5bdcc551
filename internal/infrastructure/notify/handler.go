package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hibiken/asynq"

	"salesdocs/internal/domain/documents"
	"salesdocs/pkg/logger"
)

// Handler processes TaskDocumentIssued tasks.
type Handler struct {
	mailer   Mailer
	fallback string
}

// NewHandler creates a handler. fallback receives notifications for
// documents without a customer email; empty means those are skipped.
func NewHandler(mailer Mailer, fallback string) *Handler {
	return &Handler{mailer: mailer, fallback: fallback}
}

// ProcessTask fulfils asynq.Handler.
func (h *Handler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var ev documents.DocumentIssued
	if err := json.Unmarshal(task.Payload(), &ev); err != nil {
		logger.Warn(ctx, "dropping malformed notification", "error", err)
		return fmt.Errorf("decode %s: %v: %w", TaskDocumentIssued, err, asynq.SkipRetry)
	}

	to := ev.CustomerEmail
	if to == "" {
		to = h.fallback
	}
	if to == "" {
		logger.Info(ctx, "notification skipped, no recipient", "code", ev.Code)
		return nil
	}

	if err := h.mailer.Send(ctx, compose(to, ev)); err != nil {
		return err
	}
	logger.Info(ctx, "notification sent", "code", ev.Code, "to", to)
	return nil
}

func compose(to string, ev documents.DocumentIssued) Message {
	kind := "Cenová nabídka"
	if ev.Status == documents.StatusInvoice {
		kind = "Faktura"
	}

	var body strings.Builder
	fmt.Fprintf(&body, "Dobrý den %s,\n\n", ev.CustomerName)
	fmt.Fprintf(&body, "%s %s byla vystavena.\n", kind, ev.Code)
	fmt.Fprintf(&body, "Celková částka: %s Kč\n\n", ev.GrandTotalNet)
	if ev.PDFURL != "" {
		fmt.Fprintf(&body, "Dokument ke stažení:\n%s\n\n", ev.PDFURL)
	}
	body.WriteString("S pozdravem\n")

	return Message{
		To:      to,
		Subject: fmt.Sprintf("%s %s", kind, ev.Code),
		Body:    body.String(),
	}
}
