package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesdocs/internal/core/id"
	"salesdocs/internal/domain/documents"
)

type fakeQueue struct {
	tasks []*asynq.Task
	err   error
}

func (q *fakeQueue) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if q.err != nil {
		return nil, q.err
	}
	q.tasks = append(q.tasks, task)
	return &asynq.TaskInfo{ID: "t1", Queue: QueueNotifications, Type: task.Type()}, nil
}

type fakeMailer struct {
	sent []Message
	err  error
}

func (m *fakeMailer) Send(_ context.Context, msg Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func issuedEvent() documents.DocumentIssued {
	return documents.DocumentIssued{
		DocumentID:    id.New(),
		Code:          "VF2025-0003",
		Status:        documents.StatusInvoice,
		PDFURL:        "https://storage.example/invoices/VF2025-0003.pdf",
		CustomerName:  "Jana Nováková",
		CustomerEmail: "jana@example.cz",
		GrandTotalNet: "742",
	}
}

func TestNotifier_Enqueues(t *testing.T) {
	q := &fakeQueue{}
	ev := issuedEvent()

	require.NoError(t, NewNotifier(q).DocumentIssued(context.Background(), ev))

	require.Len(t, q.tasks, 1)
	assert.Equal(t, TaskDocumentIssued, q.tasks[0].Type())
	var got documents.DocumentIssued
	require.NoError(t, json.Unmarshal(q.tasks[0].Payload(), &got))
	assert.Equal(t, ev, got)
}

func TestNotifier_DuplicateIsNotAnError(t *testing.T) {
	q := &fakeQueue{err: asynq.ErrTaskIDConflict}
	assert.NoError(t, NewNotifier(q).DocumentIssued(context.Background(), issuedEvent()))
}

func TestNotifier_QueueDown(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := NewNotifier(&fakeQueue{err: cause}).DocumentIssued(context.Background(), issuedEvent())
	assert.ErrorIs(t, err, cause)
}

func TestHandler_SendsToCustomer(t *testing.T) {
	m := &fakeMailer{}
	task, err := NewDocumentIssuedTask(issuedEvent())
	require.NoError(t, err)

	require.NoError(t, NewHandler(m, "office@example.cz").ProcessTask(context.Background(), task))

	require.Len(t, m.sent, 1)
	assert.Equal(t, "jana@example.cz", m.sent[0].To)
	assert.Equal(t, "Faktura VF2025-0003", m.sent[0].Subject)
	assert.Contains(t, m.sent[0].Body, "742 Kč")
	assert.Contains(t, m.sent[0].Body, "https://storage.example/invoices/VF2025-0003.pdf")
}

func TestHandler_FallbackRecipient(t *testing.T) {
	m := &fakeMailer{}
	ev := issuedEvent()
	ev.CustomerEmail = ""
	ev.Status = documents.StatusQuote
	task, _ := NewDocumentIssuedTask(ev)

	require.NoError(t, NewHandler(m, "office@example.cz").ProcessTask(context.Background(), task))

	require.Len(t, m.sent, 1)
	assert.Equal(t, "office@example.cz", m.sent[0].To)
	assert.True(t, strings.HasPrefix(m.sent[0].Subject, "Cenová nabídka"))
}

func TestHandler_NoRecipientIsSkipped(t *testing.T) {
	m := &fakeMailer{}
	ev := issuedEvent()
	ev.CustomerEmail = ""
	task, _ := NewDocumentIssuedTask(ev)

	require.NoError(t, NewHandler(m, "").ProcessTask(context.Background(), task))
	assert.Empty(t, m.sent)
}

func TestHandler_MalformedPayloadSkipsRetry(t *testing.T) {
	err := NewHandler(&fakeMailer{}, "").ProcessTask(context.Background(), asynq.NewTask(TaskDocumentIssued, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestHandler_MailerFailureRetries(t *testing.T) {
	cause := errors.New("relay unavailable")
	task, _ := NewDocumentIssuedTask(issuedEvent())

	err := NewHandler(&fakeMailer{err: cause}, "").ProcessTask(context.Background(), task)

	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
}

func TestSMTPMailer_Send(t *testing.T) {
	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte

	m := NewSMTPMailer(SMTPConfig{Host: "mail.local", Port: 2525, From: "docs@example.cz"})
	m.now = func() time.Time { return time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC) }
	m.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	err := m.Send(context.Background(), Message{To: "jana@example.cz", Subject: "Faktura VF2025-0003", Body: "a\nb"})
	require.NoError(t, err)

	assert.Equal(t, "mail.local:2525", gotAddr)
	assert.Equal(t, "docs@example.cz", gotFrom)
	assert.Equal(t, []string{"jana@example.cz"}, gotTo)
	assert.Contains(t, string(gotMsg), "To: jana@example.cz\r\n")
	assert.Contains(t, string(gotMsg), "Content-Type: text/plain; charset=utf-8\r\n")
	assert.True(t, strings.HasSuffix(string(gotMsg), "\r\n\r\na\r\nb"))
}

func TestSMTPMailer_NotConfigured(t *testing.T) {
	err := NewSMTPMailer(SMTPConfig{}).Send(context.Background(), Message{To: "x@example.cz"})
	assert.Error(t, err)
}
