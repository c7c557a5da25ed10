package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/exportmate/exportmate/internal/domain"
	"github.com/exportmate/exportmate/internal/store"
)

// fakeClient scripts the advisory boundary.
type fakeClient struct {
	mu          sync.Mutex
	chatReply   json.RawMessage
	chatErr     error
	predReply   json.RawMessage
	predErr     error
	block       chan struct{} // when set, Chat blocks until closed
	lastPredict *domain.PredictionRequest
}

func (f *fakeClient) Chat(ctx context.Context, message string) (json.RawMessage, error) {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.chatReply, f.chatErr
}

func (f *fakeClient) Predict(ctx context.Context, req *domain.PredictionRequest) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastPredict = req
	return f.predReply, f.predErr
}

func newTestService(client *fakeClient) (*ConversationService, *store.SessionStore) {
	sessions := store.NewSessionStore(store.Options{Greeting: "hello", DefaultTitle: "New Chat"})
	svc := NewConversationService(sessions, client,
		domain.PredictionDefaults{Stock: 100, Platform: "E-commerce"}, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC) }
	return svc, sessions
}

func validForm() domain.PredictionForm {
	return domain.PredictionForm{
		ProductName: "Chair", Category: "Furniture", Brand: "Acme", TargetCountry: "Germany",
	}
}

func TestSendMessageAppendsBothTurns(t *testing.T) {
	client := &fakeClient{chatReply: json.RawMessage(`"Try Germany."`)}
	svc, sessions := newTestService(client)

	resp, err := svc.SendMessage(context.Background(), "olive oil")
	if err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	if resp.Message.Sender != domain.SenderAssistant {
		t.Errorf("reply sender = %q", resp.Message.Sender)
	}
	if resp.Message.Payload.Kind != domain.KindPlainText {
		t.Errorf("reply kind = %q", resp.Message.Payload.Kind)
	}

	active := sessions.Active()
	// seed + user + assistant
	if len(active.Messages) != 3 {
		t.Fatalf("len(Messages) = %d, want 3", len(active.Messages))
	}
	if active.Messages[1].Sender != domain.SenderUser {
		t.Errorf("second message sender = %q", active.Messages[1].Sender)
	}
}

func TestSendMessageAutoTitlesFreshSession(t *testing.T) {
	client := &fakeClient{chatReply: json.RawMessage(`"ok"`)}
	svc, sessions := newTestService(client)

	if _, err := svc.SendMessage(context.Background(), "olive oil"); err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	if got := sessions.Active().Title; got != "olive oil" {
		t.Errorf("title = %q, want olive oil", got)
	}

	// A second message does not retitle.
	if _, err := svc.SendMessage(context.Background(), "what about france"); err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	if got := sessions.Active().Title; got != "olive oil" {
		t.Errorf("title changed to %q", got)
	}
}

func TestSendMessageDegradesTransportFailure(t *testing.T) {
	client := &fakeClient{chatErr: domain.ErrServiceUnavailable}
	svc, sessions := newTestService(client)

	resp, err := svc.SendMessage(context.Background(), "olive oil")
	if err != nil {
		t.Fatalf("SendMessage() error = %v, failures must degrade to a message", err)
	}
	if resp.Message.Payload.Kind != domain.KindPlainText {
		t.Fatalf("fallback kind = %q", resp.Message.Payload.Kind)
	}
	if resp.Message.Sender != domain.SenderAssistant {
		t.Errorf("fallback sender = %q", resp.Message.Sender)
	}
	// The conversation always gets its turn response.
	if got := len(sessions.Active().Messages); got != 3 {
		t.Errorf("len(Messages) = %d, want 3", got)
	}
	if svc.Status().ChatError == "" {
		t.Error("chat error not recorded in status")
	}
}

func TestSendMessageDegradesMalformedReply(t *testing.T) {
	client := &fakeClient{chatReply: json.RawMessage(`{"foo": 1}`)}
	svc, _ := newTestService(client)

	resp, err := svc.SendMessage(context.Background(), "x")
	if err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	if resp.Message.Payload.Kind != domain.KindPlainText {
		t.Errorf("fallback kind = %q", resp.Message.Payload.Kind)
	}
}

func TestSendMessageRejectsEmptyInput(t *testing.T) {
	svc, _ := newTestService(&fakeClient{})
	_, err := svc.SendMessage(context.Background(), "")
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Errorf("SendMessage(\"\") error = %v", err)
	}
}

func TestOverlappingChatRequestRefused(t *testing.T) {
	block := make(chan struct{})
	client := &fakeClient{chatReply: json.RawMessage(`"ok"`), block: block}
	svc, _ := newTestService(client)

	done := make(chan struct{})
	go func() {
		defer close(done)
		svc.SendMessage(context.Background(), "first")
	}()

	// Wait for the first request to hold the flow lock.
	deadline := time.After(2 * time.Second)
	for !svc.Status().ChatBusy {
		select {
		case <-deadline:
			t.Fatal("first request never became busy")
		case <-time.After(time.Millisecond):
		}
	}

	_, err := svc.SendMessage(context.Background(), "second")
	if !errors.Is(err, domain.ErrRequestInFlight) {
		t.Errorf("overlapping SendMessage() error = %v, want ErrRequestInFlight", err)
	}

	close(block)
	<-done
	if svc.Status().ChatBusy {
		t.Error("flow still busy after completion")
	}
}

func TestSendMessageAttachesReplyToOriginatingSession(t *testing.T) {
	block := make(chan struct{})
	client := &fakeClient{chatReply: json.RawMessage(`"late reply"`), block: block}
	svc, sessions := newTestService(client)

	origin := sessions.Active().ID
	done := make(chan struct{})
	go func() {
		defer close(done)
		svc.SendMessage(context.Background(), "slow question")
	}()

	deadline := time.After(2 * time.Second)
	for !svc.Status().ChatBusy {
		select {
		case <-deadline:
			t.Fatal("request never became busy")
		case <-time.After(time.Millisecond):
		}
	}

	// User starts a new chat while the reply is in flight.
	sessions.CreateSession()
	nowActive := sessions.Active().ID

	close(block)
	<-done

	originSession := sessions.Get(origin)
	if originSession == nil {
		t.Fatal("originating session gone")
	}
	last := originSession.Messages[len(originSession.Messages)-1]
	if last.Payload.PlainText == nil || last.Payload.PlainText.Raw != "late reply" {
		t.Errorf("originating session last message = %+v", last.Payload)
	}
	if got := len(sessions.Get(nowActive).Messages); got != 1 {
		t.Errorf("new session has %d messages, want only the seed", got)
	}
}

func TestSendMessageDropsReplyForDeletedSession(t *testing.T) {
	block := make(chan struct{})
	client := &fakeClient{chatReply: json.RawMessage(`"late reply"`), block: block}
	core, logs := observer.New(zap.WarnLevel)
	sessions := store.NewSessionStore(store.Options{Greeting: "hello"})
	svc := NewConversationService(sessions, client,
		domain.PredictionDefaults{Stock: 100, Platform: "E-commerce"}, zap.New(core))

	origin := sessions.Active().ID
	done := make(chan struct{})
	go func() {
		defer close(done)
		svc.SendMessage(context.Background(), "slow question")
	}()

	deadline := time.After(2 * time.Second)
	for !svc.Status().ChatBusy {
		select {
		case <-deadline:
			t.Fatal("request never became busy")
		case <-time.After(time.Millisecond):
		}
	}

	// User deletes the conversation while the reply is in flight.
	sessions.DeleteFromHistory(origin)

	close(block)
	<-done

	if sessions.Get(origin) != nil {
		t.Fatal("deleted session still resolvable")
	}
	if got := len(sessions.Active().Messages); got != 1 {
		t.Errorf("fresh session has %d messages, want only the seed", got)
	}
	drops := logs.FilterMessage("dropping message for deleted session").All()
	if len(drops) != 1 {
		t.Fatalf("drop warnings = %d, want 1", len(drops))
	}
	if got := drops[0].ContextMap()["session_id"]; got != origin {
		t.Errorf("logged session_id = %v, want %s", got, origin)
	}
}

func TestSubmitPredictionSuccess(t *testing.T) {
	client := &fakeClient{predReply: json.RawMessage(`{
		"predictedPrice": 42.5,
		"recommendation": "Best countries:",
		"reason": "why",
		"hsCodeInfo": "HS 9401",
		"countries": [{"name": "Germany", "volume": 1000000, "reason": "demand"}]
	}`)}
	svc, sessions := newTestService(client)

	resp, err := svc.SubmitPrediction(context.Background(), validForm())
	if err != nil {
		t.Fatalf("SubmitPrediction() error = %v", err)
	}
	if resp.Message.Payload.Kind != domain.KindPricePrediction {
		t.Fatalf("kind = %q", resp.Message.Payload.Kind)
	}
	if got := resp.Message.Payload.PricePrediction.PredictedPrice; got != 42.5 {
		t.Errorf("price = %v", got)
	}

	// The normalized record reached the boundary with the fixed defaults
	// and the injected month.
	req := client.lastPredict
	if req.Stock != 100 || req.Platform != "E-commerce" || req.Month != 3 {
		t.Errorf("request record = %+v", req)
	}

	// Form cleared on success.
	if form := svc.Form(); !form.Empty() {
		t.Errorf("form retained after success: %+v", form)
	}

	if got := len(sessions.Active().Messages); got != 2 {
		t.Errorf("len(Messages) = %d, want seed + prediction", got)
	}
}

func TestSubmitPredictionIncompleteForm(t *testing.T) {
	client := &fakeClient{}
	svc, _ := newTestService(client)

	form := validForm()
	form.Brand = ""
	_, err := svc.SubmitPrediction(context.Background(), form)
	if !errors.Is(err, domain.ErrIncompleteQuery) {
		t.Fatalf("SubmitPrediction() error = %v, want ErrIncompleteQuery", err)
	}
	// Nothing was sent to the service.
	if client.lastPredict != nil {
		t.Error("incomplete form reached the boundary")
	}
	// The form is retained for a retry.
	if got := svc.Form(); got.ProductName != "Chair" {
		t.Errorf("retained form = %+v", got)
	}
}

func TestSubmitPredictionFailureRetainsForm(t *testing.T) {
	client := &fakeClient{predErr: domain.ErrServiceUnavailable}
	svc, sessions := newTestService(client)

	resp, err := svc.SubmitPrediction(context.Background(), validForm())
	if err != nil {
		t.Fatalf("SubmitPrediction() error = %v, failures must degrade to a message", err)
	}
	if resp.Message.Payload.Kind != domain.KindPlainText {
		t.Errorf("fallback kind = %q", resp.Message.Payload.Kind)
	}
	if form := svc.Form(); form.Empty() {
		t.Error("form cleared on failure")
	}
	if svc.Status().PredictError == "" {
		t.Error("prediction error not recorded")
	}
	if got := len(sessions.Active().Messages); got != 2 {
		t.Errorf("len(Messages) = %d, want seed + error message", got)
	}
}

func TestFlowsAreIndependent(t *testing.T) {
	block := make(chan struct{})
	client := &fakeClient{
		chatReply: json.RawMessage(`"ok"`),
		block:     block,
		predReply: json.RawMessage(`{"predictedPrice": 1, "recommendation": "r", "countries": []}`),
	}
	svc, _ := newTestService(client)

	done := make(chan struct{})
	go func() {
		defer close(done)
		svc.SendMessage(context.Background(), "slow")
	}()

	deadline := time.After(2 * time.Second)
	for !svc.Status().ChatBusy {
		select {
		case <-deadline:
			t.Fatal("chat never became busy")
		case <-time.After(time.Millisecond):
		}
	}

	// The prediction flow is not blocked by the chat flow.
	if _, err := svc.SubmitPrediction(context.Background(), validForm()); err != nil {
		t.Errorf("SubmitPrediction() during chat flight error = %v", err)
	}

	close(block)
	<-done
}

func TestAutoTitleTruncation(t *testing.T) {
	long := "this is a very long product description that goes on and on"
	got := autoTitle(long)
	if len([]rune(got)) != maxTitleLen+3 {
		t.Errorf("autoTitle length = %d", len([]rune(got)))
	}
	if autoTitle("short") != "short" {
		t.Errorf("autoTitle(short) = %q", autoTitle("short"))
	}
}
