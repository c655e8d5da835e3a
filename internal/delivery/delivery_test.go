package delivery

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/mail"
	"strings"
	"testing"
	"time"

	"github.com/jonathan/cv-optimizer/internal/llm/llmtest"
	"github.com/jonathan/cv-optimizer/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

func candidate() *types.CandidateRecord {
	return &types.CandidateRecord{Name: "Ada Lovelace", Skills: []string{"Python", "Docker"}}
}

func job() *types.JobRecord {
	return &types.JobRecord{Title: "ML Engineer", Summary: "Build models", RequiredSkills: []string{"Python"}}
}

func pdfDoc() *types.RenderedDocument {
	return &types.RenderedDocument{Data: []byte("%PDF-1.4 test"), ContentType: types.ContentTypePDF, FileName: "CV_Ada_Lovelace.pdf"}
}

func TestDrafter_Draft(t *testing.T) {
	client := llmtest.New(`{"subject": " Application: ML Engineer ", "body": "Dear Hiring Team, ..."}`)

	draft, err := NewDrafter(client).Draft(context.Background(), candidate(), job())
	require.NoError(t, err)

	assert.Equal(t, "Application: ML Engineer", draft.Subject)
	prompt := client.LastPrompt()
	assert.Contains(t, prompt, "COMPANY: Hiring Team")
	assert.Contains(t, prompt, "TOP SKILLS: Python, Docker")
	assert.Contains(t, prompt, "JOB TITLE: ML Engineer")
}

func TestDrafter_Malformed(t *testing.T) {
	client := llmtest.New(`{"subject": ""}`)
	_, err := NewDrafter(client).Draft(context.Background(), candidate(), job())

	var delivErr *Error
	assert.True(t, errors.As(err, &delivErr))
}

func TestBuildMessage(t *testing.T) {
	raw, err := BuildMessage("recruiter@example.com", &types.EmailDraft{Subject: "Application", Body: "Hello"}, pdfDoc())
	require.NoError(t, err)

	msg, err := mail.ReadMessage(strings.NewReader(string(raw)))
	require.NoError(t, err)
	assert.Equal(t, "recruiter@example.com", msg.Header.Get("To"))

	mediaType, params, err := mime.ParseMediaType(msg.Header.Get("Content-Type"))
	require.NoError(t, err)
	assert.Equal(t, "multipart/mixed", mediaType)

	mr := multipart.NewReader(msg.Body, params["boundary"])

	text, err := mr.NextPart()
	require.NoError(t, err)
	body, _ := io.ReadAll(text)
	decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(string(body), "\r\n", ""))
	require.NoError(t, err)
	assert.Equal(t, "Hello", string(decoded))

	att, err := mr.NextPart()
	require.NoError(t, err)
	assert.Equal(t, "CV_Ada_Lovelace.pdf", att.FileName())
	assert.Equal(t, types.ContentTypePDF, att.Header.Get("Content-Type"))

	_, err = mr.NextPart()
	assert.ErrorIs(t, err, io.EOF)
}

func TestBuildMessage_RejectsHeaderInjection(t *testing.T) {
	_, err := BuildMessage("a@example.com\r\nBcc: x@example.com", &types.EmailDraft{Subject: "s", Body: "b"}, nil)
	assert.Error(t, err)
}

type fakeSender struct {
	raw []byte
	err error
}

func (f *fakeSender) SendRaw(_ context.Context, raw []byte) (string, error) {
	f.raw = raw
	return "msg-1", f.err
}

func TestDeliverer_Send(t *testing.T) {
	sender := &fakeSender{}
	d := NewDeliverer(NewDrafter(llmtest.New(`{"subject": "Application", "body": "Hello"}`)), sender, nil)
	fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	d.now = func() time.Time { return fixed }

	rec, err := d.Send(context.Background(), pdfDoc(), "recruiter@example.com", candidate(), job())
	require.NoError(t, err)

	assert.Equal(t, types.DeliverySent, rec.Status)
	assert.Equal(t, "msg-1", rec.MessageID)
	assert.Equal(t, "Application", rec.Subject)
	assert.Equal(t, fixed, *rec.SentAt)
	assert.Contains(t, string(sender.raw), "To: recruiter@example.com")
}

func TestDeliverer_SkipsWithoutRecipient(t *testing.T) {
	client := llmtest.New()
	rec, err := NewDeliverer(NewDrafter(client), &fakeSender{}, nil).Send(context.Background(), pdfDoc(), "  ", candidate(), job())
	require.NoError(t, err)

	assert.Equal(t, types.DeliverySkipped, rec.Status)
	assert.Equal(t, 0, client.CallCount())
}

func TestDeliverer_DraftOnly(t *testing.T) {
	d := NewDeliverer(NewDrafter(llmtest.New(`{"subject": "Application", "body": "Hello"}`)), nil, nil)

	rec, err := d.Send(context.Background(), pdfDoc(), "recruiter@example.com", candidate(), job())
	require.NoError(t, err)
	assert.Equal(t, types.DeliverySkipped, rec.Status)
	assert.Equal(t, "Hello", rec.Body)
}

func TestDeliverer_SendFailure(t *testing.T) {
	d := NewDeliverer(NewDrafter(llmtest.New(`{"subject": "Application", "body": "Hello"}`)), &fakeSender{err: errors.New("401")}, nil)

	rec, err := d.Send(context.Background(), pdfDoc(), "recruiter@example.com", candidate(), job())
	assert.Error(t, err)
	assert.Equal(t, types.DeliveryFailed, rec.Status)
	assert.Contains(t, rec.Error, "401")
}

func TestGmailSender_SendRaw(t *testing.T) {
	var got struct {
		Raw string `json:"raw"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, "/users/me/messages/send")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "abc123"}`))
	}))
	defer srv.Close()

	sender, err := NewGmailSender(context.Background(),
		GmailConfig{ClientID: "id", ClientSecret: "secret", RefreshToken: "token"},
		option.WithEndpoint(srv.URL+"/"), option.WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	id, err := sender.SendRaw(context.Background(), []byte("To: a@example.com\r\n\r\nhi"))
	require.NoError(t, err)
	assert.Equal(t, "abc123", id)

	decoded, err := base64.URLEncoding.DecodeString(got.Raw)
	require.NoError(t, err)
	assert.Equal(t, "To: a@example.com\r\n\r\nhi", string(decoded))
}

func TestNewGmailSender_RequiresCredentials(t *testing.T) {
	_, err := NewGmailSender(context.Background(), GmailConfig{ClientID: "id"})
	assert.Error(t, err)
}
