package server

import (
	"dm-lab/auth"
	"dm-lab/domain/messaging"
	"dm-lab/errors"
	"dm-lab/observability"
	"dm-lab/services"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samber/lo"
)

const (
	defaultMessageLimit = 30
	multipartMemory     = 1 << 20
	multipartOverhead   = 2 << 20
)

type Options struct {
	DefaultMessageLimit  int
	MaxAttachmentBytes   int64
	ConnectionBufferSize int
	AllowedOrigins       []string
}

// MessagingServer exposes the messaging service over HTTP and websocket.
type MessagingServer struct {
	log      *slog.Logger
	service  services.IMessagingService
	issuer   *auth.TokenIssuer
	metrics  *observability.Metrics
	gatherer prometheus.Gatherer
	options  Options
	upgrader websocket.Upgrader
}

func NewMessagingServer(
	log *slog.Logger,
	service services.IMessagingService,
	issuer *auth.TokenIssuer,
	metrics *observability.Metrics,
	gatherer prometheus.Gatherer,
	options Options,
) *MessagingServer {
	if options.DefaultMessageLimit <= 0 {
		options.DefaultMessageLimit = defaultMessageLimit
	}
	if options.MaxAttachmentBytes <= 0 {
		options.MaxAttachmentBytes = messaging.MaxAttachmentBytes
	}
	if options.ConnectionBufferSize <= 0 {
		options.ConnectionBufferSize = 64
	}
	s := &MessagingServer{
		log:      log,
		service:  service,
		issuer:   issuer,
		metrics:  metrics,
		gatherer: gatherer,
		options:  options,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

func (s *MessagingServer) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(accessLog(s.log))
	r.Use(chimw.Recoverer)
	r.Use(instrument(s.metrics))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.options.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	r.Get("/health", s.health)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/messages", func(r chi.Router) {
		r.Use(auth.Middleware(s.issuer, s.writeError))
		r.Use(s.registerProfile)

		r.Post("/conversations/direct/{otherID}", s.getOrCreateDirect)
		r.Get("/conversations", s.listConversations)
		r.Get("/conversations/{conversationID}/messages", s.listMessages)
		r.Post("/conversations/{conversationID}/messages", s.sendMessage)
		r.Delete("/conversations/{conversationID}", s.hideConversation)
		r.Get("/conversations/{conversationID}/search", s.searchMessages)
		r.Get("/conversations/{conversationID}/ws", s.subscribe)
		r.Get("/attachments/{attachmentID}", s.downloadAttachment)
	})
	return r
}

func (s *MessagingServer) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *MessagingServer) getOrCreateDirect(w http.ResponseWriter, r *http.Request) {
	me := callerID(r)
	conversationID, err := s.service.GetOrCreateDirect(me, chi.URLParam(r, "otherID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, DirectConversationView{ConversationID: conversationID})
}

func (s *MessagingServer) listConversations(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.service.ListConversations(callerID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toConversationViews(summaries))
}

func (s *MessagingServer) listMessages(w http.ResponseWriter, r *http.Request) {
	conversationID, err := conversationParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	limit, err := s.limitParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	messages, err := s.service.ListMessages(callerID(r), conversationID, limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toMessageViews(messages))
}

// sendMessage accepts multipart/form-data with an optional "content" text
// part and an optional "file" part.
func (s *MessagingServer) sendMessage(w http.ResponseWriter, r *http.Request) {
	conversationID, err := conversationParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	maxBody := s.options.MaxAttachmentBytes + multipartOverhead
	if r.ContentLength > maxBody {
		s.writeError(w, r, errors.ErrAttachmentTooLarge)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		s.writeError(w, r, multipartError(err))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	upload, err := s.readUpload(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	message, err := s.service.SendMessage(messaging.SendMessageCommand{
		ConversationID: conversationID,
		SenderID:       callerID(r),
		Text:           r.PostFormValue("content"),
		Upload:         upload,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toMessageView(message))
}

// readUpload returns nil when no file was chosen. The declared size is
// checked before the payload is copied into memory.
func (s *MessagingServer) readUpload(r *http.Request) (*messaging.Upload, error) {
	file, header, err := r.FormFile("file")
	if stderrors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrReadAttachment, err)
	}
	defer func() { _ = file.Close() }()

	if header.Filename == "" && header.Size == 0 {
		return nil, nil
	}
	if header.Size > s.options.MaxAttachmentBytes {
		return nil, errors.ErrAttachmentTooLarge
	}
	payload, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrReadAttachment, err)
	}
	return &messaging.Upload{
		Payload:           payload,
		DeclaredMediaType: header.Header.Get("Content-Type"),
		OriginalName:      header.Filename,
	}, nil
}

func (s *MessagingServer) hideConversation(w http.ResponseWriter, r *http.Request) {
	conversationID, err := conversationParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.service.HideConversation(callerID(r), conversationID); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *MessagingServer) downloadAttachment(w http.ResponseWriter, r *http.Request) {
	attachmentID, err := strconv.ParseUint(chi.URLParam(r, "attachmentID"), 10, 64)
	if err != nil {
		s.writeError(w, r, errors.ErrInvalidIdentifier)
		return
	}
	attachment, err := s.service.DownloadAttachment(callerID(r), attachmentID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	name := strings.ReplaceAll(attachment.Name, `"`, "")
	if name == "" {
		name = messaging.DefaultAttachmentName
	}
	w.Header().Set("Content-Type", lo.CoalesceOrEmpty(attachment.MediaType, "application/pdf"))
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(attachment.Payload)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(attachment.Payload); err != nil {
		s.log.Debug("Attachment download interrupted", "attachment_id", attachmentID, "error", err)
	}
}

func (s *MessagingServer) searchMessages(w http.ResponseWriter, r *http.Request) {
	conversationID, err := conversationParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	limit, err := s.limitParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	messages, err := s.service.SearchMessages(r.Context(), callerID(r), conversationID, r.URL.Query().Get("q"), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toMessageViews(messages))
}

// writeError renders the reason of a classified error. Internal failures
// are logged and answered with a generic message.
func (s *MessagingServer) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("Request failed", "path", r.URL.Path, "request_id", chimw.GetReqID(r.Context()), "error", err)
	} else {
		s.log.Debug("Request refused", "path", r.URL.Path, "status", status, "error", err)
	}
	writeJSON(w, status, ErrorView{Error: errors.Reason(err)})
}

func (s *MessagingServer) limitParam(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return s.options.DefaultMessageLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: limit must be a number", errors.ErrInvalidRequest)
	}
	return limit, nil
}

func (s *MessagingServer) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(s.options.AllowedOrigins) == 0 {
		return true
	}
	return lo.Contains(s.options.AllowedOrigins, "*") || lo.Contains(s.options.AllowedOrigins, origin)
}

func conversationParam(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "conversationID"))
	if err != nil {
		return uuid.Nil, errors.ErrInvalidIdentifier
	}
	return id, nil
}

// callerID is only used behind auth.Middleware.
func callerID(r *http.Request) string {
	identity, _ := auth.IdentityFrom(r.Context())
	return identity.ParticipantID
}

func multipartError(err error) error {
	var tooLarge *http.MaxBytesError
	switch {
	case stderrors.As(err, &tooLarge):
		return errors.ErrAttachmentTooLarge
	case stderrors.Is(err, http.ErrNotMultipart):
		return fmt.Errorf("%w: multipart/form-data expected", errors.ErrInvalidRequest)
	default:
		return fmt.Errorf("%w: malformed multipart body", errors.ErrInvalidRequest)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
