package server_test

import (
	"bytes"
	"context"
	"dm-lab/auth"
	"dm-lab/domain/messaging"
	"dm-lab/infrastructure/http/server"
	"dm-lab/infrastructure/search"
	"dm-lab/infrastructure/storage"
	"dm-lab/observability"
	"dm-lab/runtime"
	"dm-lab/runtime/workers"
	"dm-lab/services"
	"dm-lab/sink"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/mama165/sdk-go/database"
	"github.com/mama165/sdk-go/logs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

const testSecret = "integration-secret-long-enough"

// stack is the whole service behind a real HTTP listener.
type stack struct {
	t      *testing.T
	server *httptest.Server
	issuer *auth.TokenIssuer
	tokens map[string]string
}

func setupStack(t *testing.T) *stack {
	t.Helper()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	db, err := database.LoadBadger(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	messages, err := storage.NewMessageRepository(db, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = messages.Close() })

	writer, err := database.LoadBluge(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = writer.Close() })
	index := search.NewMessageIndex(writer, log)

	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)

	orchestrator := runtime.NewOrchestrator(log, workers.NewSupervisor(log, 10*time.Millisecond),
		runtime.NewRegistry(), 64, 2*time.Second, 0, metrics)
	orchestrator.Add(sink.NewSearchSink(index, log))
	orchestrator.Start(context.Background())
	t.Cleanup(orchestrator.Stop)

	service := services.NewMessagingService(log, services.Stores{
		Conversations: storage.NewConversationRepository(db, log),
		Memberships:   storage.NewMembershipRepository(db, log),
		Messages:      messages,
		Attachments:   storage.NewAttachmentRepository(db, log),
		Profiles:      storage.NewProfileRepository(db, log),
	}, index, orchestrator.Registry(), orchestrator.Notifier(), messaging.DefaultAttachmentPolicy(), metrics)

	issuer := auth.NewTokenIssuer(testSecret, "dm-lab")
	srv := server.NewMessagingServer(log, service, issuer, metrics, reg, server.Options{
		DefaultMessageLimit:  30,
		MaxAttachmentBytes:   messaging.MaxAttachmentBytes,
		ConnectionBufferSize: 16,
	})
	httpServer := httptest.NewServer(srv.Routes())
	t.Cleanup(httpServer.Close)

	return &stack{t: t, server: httpServer, issuer: issuer, tokens: map[string]string{}}
}

// as returns a bearer token for a participant, minting it on first use.
func (s *stack) as(participantID string, displayName ...string) string {
	if token, ok := s.tokens[participantID]; ok {
		return token
	}
	identity := auth.Identity{ParticipantID: participantID}
	if len(displayName) > 0 {
		identity.DisplayName = displayName[0]
	}
	token, err := s.issuer.GenerateToken(identity, time.Hour)
	require.NoError(s.t, err)
	s.tokens[participantID] = token
	return token
}

func (s *stack) do(method, path, token string, body io.Reader, contentType string) *http.Response {
	s.t.Helper()
	request, err := http.NewRequest(method, s.server.URL+path, body)
	require.NoError(s.t, err)
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType != "" {
		request.Header.Set("Content-Type", contentType)
	}
	response, err := s.server.Client().Do(request)
	require.NoError(s.t, err)
	s.t.Cleanup(func() { _ = response.Body.Close() })
	return response
}

func (s *stack) direct(me, other string) string {
	s.t.Helper()
	response := s.do(http.MethodPost, "/api/messages/conversations/direct/"+other, s.as(me), nil, "")
	require.Equal(s.t, http.StatusOK, response.StatusCode)
	var view server.DirectConversationView
	decode(s.t, response, &view)
	return view.ConversationID.String()
}

type filePart struct {
	name      string
	mediaType string
	payload   []byte
}

func (s *stack) send(me, conversationID, content string, file *filePart) *http.Response {
	s.t.Helper()
	body := &bytes.Buffer{}
	form := multipart.NewWriter(body)
	if content != "" {
		require.NoError(s.t, form.WriteField("content", content))
	}
	if file != nil {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", `form-data; name="file"; filename="`+escapeQuotes(file.name)+`"`)
		header.Set("Content-Type", file.mediaType)
		part, err := form.CreatePart(header)
		require.NoError(s.t, err)
		_, err = part.Write(file.payload)
		require.NoError(s.t, err)
	}
	require.NoError(s.t, form.Close())
	return s.do(http.MethodPost, "/api/messages/conversations/"+conversationID+"/messages", s.as(me), body, form.FormDataContentType())
}

func (s *stack) messages(me, conversationID string) []server.MessageView {
	s.t.Helper()
	response := s.do(http.MethodGet, "/api/messages/conversations/"+conversationID+"/messages", s.as(me), nil, "")
	require.Equal(s.t, http.StatusOK, response.StatusCode)
	var views []server.MessageView
	decode(s.t, response, &views)
	return views
}

func (s *stack) conversations(me string) []server.ConversationView {
	s.t.Helper()
	response := s.do(http.MethodGet, "/api/messages/conversations", s.as(me), nil, "")
	require.Equal(s.t, http.StatusOK, response.StatusCode)
	var views []server.ConversationView
	decode(s.t, response, &views)
	return views
}

func decode(t *testing.T, response *http.Response, into any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(response.Body).Decode(into))
}

func errorReason(t *testing.T, response *http.Response) string {
	t.Helper()
	var view server.ErrorView
	decode(t, response, &view)
	return view.Error
}

func escapeQuotes(s string) string {
	var b bytes.Buffer
	for _, r := range s {
		if r == '"' || r == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func pdf(size int) []byte {
	payload := make([]byte, size)
	copy(payload, "%PDF-1.7\n")
	return payload
}
