package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/exportmate/exportmate/internal/advisory"
	"github.com/exportmate/exportmate/internal/domain"
	"github.com/exportmate/exportmate/internal/render"
	"github.com/exportmate/exportmate/internal/store"
)

const maxTitleLen = 40

// FlowStatus reports the in-flight state of the two request flows.
type FlowStatus struct {
	ChatBusy     bool   `json:"chat_busy"`
	PredictBusy  bool   `json:"predict_busy"`
	ChatError    string `json:"chat_error,omitempty"`
	PredictError string `json:"predict_error,omitempty"`
}

// ConversationService wires user input through the advisory boundary, the
// response classifier and the session store. The advisory chat flow and
// the prediction flow are independent: each holds its own mutual-exclusion
// lock, so a flow refuses an overlapping request while the two flows may
// run concurrently with each other.
type ConversationService struct {
	sessions *store.SessionStore
	client   advisory.Client
	logger   *zap.Logger
	defaults domain.PredictionDefaults
	now      func() time.Time

	chatMu    sync.Mutex
	predictMu sync.Mutex

	stateMu sync.Mutex
	status  FlowStatus
	form    domain.PredictionForm
}

// NewConversationService creates a new conversation service
func NewConversationService(
	sessions *store.SessionStore,
	client advisory.Client,
	defaults domain.PredictionDefaults,
	logger *zap.Logger,
) *ConversationService {
	return &ConversationService{
		sessions: sessions,
		client:   client,
		logger:   logger,
		defaults: defaults,
		now:      time.Now,
	}
}

// SendMessage runs one advisory chat turn: append the user message, call
// the service, classify the reply and append the assistant message. Every
// exchange failure degrades to an assistant-authored error message, so the
// conversation is never left without a turn response. The response is
// attached to the session that was active when the request was sent, even
// if the user switched sessions mid-flight.
func (s *ConversationService) SendMessage(ctx context.Context, text string) (*domain.ChatResponse, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: empty message", domain.ErrInvalidRequest)
	}
	if !s.chatMu.TryLock() {
		return nil, domain.ErrRequestInFlight
	}
	defer s.chatMu.Unlock()
	s.setChatBusy(true)
	defer s.setChatBusy(false)

	active := s.sessions.Active()
	sessionID := active.ID

	// A fresh session takes its title from the first user message.
	if active.Seeded() {
		s.sessions.RenameActive(autoTitle(text))
	}
	s.appendOrDrop(sessionID, newMessage(domain.SenderUser, domain.NewPlainTextPayload(text)))

	payload, exchangeErr := s.exchangeChat(ctx, text)
	s.recordChatError(exchangeErr)

	msg := newMessage(domain.SenderAssistant, payload)
	s.appendOrDrop(sessionID, msg)

	return &domain.ChatResponse{SessionID: sessionID, Message: msg}, nil
}

func (s *ConversationService) exchangeChat(ctx context.Context, text string) (domain.RenderPayload, error) {
	raw, err := s.client.Chat(ctx, text)
	if err != nil {
		s.logger.Warn("advisory exchange failed", zap.Error(err))
		return domain.NewPlainTextPayload(fmt.Sprintf(
			"Sorry, something went wrong: %v. Please make sure the advisory service is running.", err)), err
	}
	payload, err := render.Classify(raw)
	if err != nil {
		s.logger.Warn("unrecognized advisory reply", zap.Error(err))
		return domain.NewPlainTextPayload(
			"Sorry, I received a reply I could not understand. Please try again."), err
	}
	return payload, nil
}

// SubmitPrediction runs one price-prediction turn. The submitted form is
// retained while the request is in flight or failing, so the user can
// retry without re-typing; it is cleared only on a successful exchange. An
// incomplete form is rejected before any network call.
func (s *ConversationService) SubmitPrediction(ctx context.Context, form domain.PredictionForm) (*domain.ChatResponse, error) {
	if !s.predictMu.TryLock() {
		return nil, domain.ErrRequestInFlight
	}
	defer s.predictMu.Unlock()
	s.setPredictBusy(true)
	defer s.setPredictBusy(false)

	s.setForm(form)
	if err := form.Validate(); err != nil {
		return nil, err
	}

	req := domain.BuildPredictionRequest(form, domain.CurrentMonth(s.now()), s.defaults)

	sessionID := s.sessions.Active().ID

	payload, exchangeErr := s.exchangePrediction(ctx, &req)
	s.recordPredictError(exchangeErr)
	if exchangeErr == nil {
		s.setForm(domain.PredictionForm{})
	}

	msg := newMessage(domain.SenderAssistant, payload)
	s.appendOrDrop(sessionID, msg)

	return &domain.ChatResponse{SessionID: sessionID, Message: msg}, nil
}

// appendOrDrop appends to the session the message was addressed to. The
// session may have been deleted since its id was captured; the message is
// then dropped, which is only worth a log line.
func (s *ConversationService) appendOrDrop(sessionID string, msg domain.Message) {
	if !s.sessions.AppendMessage(sessionID, msg) {
		s.logger.Warn("dropping message for deleted session",
			zap.String("session_id", sessionID), zap.String("sender", string(msg.Sender)))
	}
}

func (s *ConversationService) exchangePrediction(ctx context.Context, req *domain.PredictionRequest) (domain.RenderPayload, error) {
	raw, err := s.client.Predict(ctx, req)
	if err != nil {
		s.logger.Warn("prediction exchange failed", zap.Error(err))
		return domain.NewPlainTextPayload(fmt.Sprintf(
			"Sorry, the price prediction failed: %v.", err)), err
	}
	payload, err := render.Classify(raw)
	if err != nil {
		s.logger.Warn("unrecognized prediction reply", zap.Error(err))
		return domain.NewPlainTextPayload(
			"Sorry, I received a prediction reply I could not understand. Please try again."), err
	}
	return payload, nil
}

// Form returns the retained prediction form state.
func (s *ConversationService) Form() domain.PredictionForm {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.form
}

// Status returns the in-flight flags and last errors of both flows.
func (s *ConversationService) Status() FlowStatus {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.status
}

// Stats returns totals across every session.
func (s *ConversationService) Stats() domain.Stats {
	return s.sessions.Stats()
}

func (s *ConversationService) setForm(form domain.PredictionForm) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	s.form = form
}

func (s *ConversationService) setChatBusy(busy bool) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	s.status.ChatBusy = busy
}

func (s *ConversationService) setPredictBusy(busy bool) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	s.status.PredictBusy = busy
}

func (s *ConversationService) recordChatError(err error) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	s.status.ChatError = ""
	if err != nil {
		s.status.ChatError = err.Error()
	}
}

func (s *ConversationService) recordPredictError(err error) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	s.status.PredictError = ""
	if err != nil {
		s.status.PredictError = err.Error()
	}
}

func newMessage(sender domain.Sender, payload domain.RenderPayload) domain.Message {
	return domain.Message{
		ID:        uuid.New().String(),
		Sender:    sender,
		Payload:   payload,
		CreatedAt: time.Now(),
	}
}

func autoTitle(text string) string {
	runes := []rune(text)
	if len(runes) > maxTitleLen {
		return string(runes[:maxTitleLen]) + "..."
	}
	return text
}
