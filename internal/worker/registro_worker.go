package worker

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"time"

	"github.com/jordan-wright/email"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"odonto/internal/amqp"
	applog "odonto/internal/log"
	"odonto/internal/registro"
	"odonto/internal/services"
	"odonto/internal/storage"
)

// MailConfig carries the SMTP settings for overdue reminder emails.
// An empty Recipient disables mailing.
type MailConfig struct {
	Host      string
	Port      string
	Username  string
	Password  string
	Sender    string
	Recipient string
}

func (c MailConfig) enabled() bool {
	return c.Recipient != "" && c.Host != ""
}

// RegistroWorker keeps the payments register in sync and runs the nightly
// overdue scan. Paid-installment events arrive over AMQP; each one is
// re-read from storage and appended to the register.
type RegistroWorker struct {
	store    storage.Store
	svc      *services.Service
	writer   registro.Writer
	client   *amqp.Client
	cronSpec string
	mail     MailConfig
	sendMail func(ctx context.Context, subject, body string) error
}

func NewRegistroWorker(store storage.Store, svc *services.Service, writer registro.Writer, client *amqp.Client, cronSpec string, mail MailConfig) *RegistroWorker {
	w := &RegistroWorker{
		store:    store,
		svc:      svc,
		writer:   writer,
		client:   client,
		cronSpec: cronSpec,
		mail:     mail,
	}
	w.sendMail = w.sendSMTP
	return w
}

// Run blocks until ctx is cancelled, running the AMQP consumer and the
// cron scheduler side by side.
func (w *RegistroWorker) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	if w.client != nil {
		g.Go(func() error {
			err := w.client.ConsumeRataPagata(ctx, func(msg *amqp.RataPagataMessage) error {
				return w.HandleRataPagata(ctx, msg)
			})
			if err != nil && ctx.Err() != nil {
				return nil // clean shutdown
			}
			return err
		})
	} else {
		slog.WarnContext(ctx, "AMQP client not configured, register sync disabled")
	}

	if w.cronSpec != "" {
		c := cron.New()
		if _, err := c.AddFunc(w.cronSpec, func() {
			if err := w.RunScadenzeScan(ctx); err != nil {
				slog.ErrorContext(ctx, "Overdue scan failed", "error", err)
			}
		}); err != nil {
			return fmt.Errorf("schedule overdue scan %q: %w", w.cronSpec, err)
		}
		c.Start()
		g.Go(func() error {
			<-ctx.Done()
			stopCtx := c.Stop()
			select {
			case <-stopCtx.Done():
			case <-time.After(10 * time.Second):
				slog.Warn("Cron jobs still running at shutdown timeout")
			}
			return nil
		})
		slog.InfoContext(ctx, "Scheduled overdue scan", "cron", w.cronSpec)
	}

	return g.Wait()
}

// HandleRataPagata re-reads the paid installment and appends it to the
// register. Errors propagate so the delivery is nacked and requeued.
func (w *RegistroWorker) HandleRataPagata(ctx context.Context, msg *amqp.RataPagataMessage) error {
	rata, err := w.store.GetRata(ctx, msg.RataID)
	if err != nil {
		return fmt.Errorf("get rata %d: %w", msg.RataID, err)
	}

	ref, err := w.writer.Append(ctx, rata)
	if err != nil {
		return fmt.Errorf("append rata %d to register: %w", msg.RataID, err)
	}

	slog.InfoContext(ctx, "Appended paid installment to register",
		applog.FieldOperation, applog.OpExport,
		applog.FieldRataID, rata.ID,
		applog.FieldPagamentoID, rata.PagamentoID,
		applog.FieldAmountCents, rata.Ammontare.Cents,
		applog.FieldRegistroRef, ref)

	return nil
}

// RunScadenzeScan collects overdue installments and mails the practice
// inbox. An empty report sends nothing.
func (w *RegistroWorker) RunScadenzeScan(ctx context.Context) error {
	report, err := w.svc.ScanScadute(ctx)
	if err != nil {
		return fmt.Errorf("scan scadute: %w", err)
	}

	slog.InfoContext(ctx, "Overdue scan completed",
		applog.FieldOperation, applog.OpScan,
		"oggi", report.Oggi.String(),
		"count", len(report.Rate),
		"total_cents", report.Totale.Cents)

	if report.Empty() {
		return nil
	}
	if !w.mail.enabled() {
		slog.WarnContext(ctx, "Reminder mail not configured, skipping", "count", len(report.Rate))
		return nil
	}

	subject := fmt.Sprintf("Promemoria: %d rate scadute al %s", len(report.Rate), report.Oggi)
	if err := w.sendMail(ctx, subject, report.EmailBody()); err != nil {
		return fmt.Errorf("send reminder mail: %w", err)
	}

	slog.InfoContext(ctx, "Reminder mail sent",
		"recipient", w.mail.Recipient,
		"count", len(report.Rate))
	return nil
}

func (w *RegistroWorker) sendSMTP(_ context.Context, subject, body string) error {
	sender := w.mail.Sender
	if sender == "" {
		sender = w.mail.Username
	}

	e := email.NewEmail()
	e.From = sender
	e.To = []string{w.mail.Recipient}
	e.Subject = subject
	e.Text = []byte(body)

	addr := w.mail.Host + ":" + w.mail.Port
	var auth smtp.Auth
	if w.mail.Username != "" {
		auth = smtp.PlainAuth("", w.mail.Username, w.mail.Password, w.mail.Host)
	}
	return e.Send(addr, auth)
}
