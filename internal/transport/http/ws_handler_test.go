package http

import (
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"adaptive-quiz-service/internal/adaptive"
	"adaptive-quiz-service/internal/app"
	"adaptive-quiz-service/internal/domain"
	"adaptive-quiz-service/internal/infra/memory"
	"adaptive-quiz-service/internal/scoring"
)

func TestWebSocketAnswerFlow(t *testing.T) {
	service := newTestService()
	wsHandler := NewWSHandler(service, zap.NewNop())

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	server := httptest.NewServer(mux)
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/ws?userId=u1&bankId=bank-1&count=3"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Expect the attempt with its sanitized questions first.
	msgType, payload := readNext(conn, t, "attemptStarted")
	if msgType != "attemptStarted" {
		t.Fatalf("expected attemptStarted, got %s", msgType)
	}
	questions, ok := payload["questions"].([]any)
	if !ok || len(questions) != 3 {
		t.Fatalf("expected 3 questions, got %v", payload["questions"])
	}
	first, _ := questions[0].(map[string]any)
	questionID, _ := first["id"].(string)
	if questionID == "" {
		t.Fatalf("expected question id, got %v", first)
	}
	// Correctness flags must never reach the client.
	opts, _ := first["options"].([]any)
	for _, raw := range opts {
		opt, _ := raw.(map[string]any)
		if _, leaked := opt["correct"]; leaked {
			t.Fatalf("correctness flag leaked to client: %v", opt)
		}
	}

	answer := map[string]any{
		"type": "answer",
		"payload": map[string]any{
			"questionId":   questionID,
			"optionId":     "a",
			"confidence":   4,
			"timeSpentSec": 5,
		},
	}
	if err := conn.WriteJSON(answer); err != nil {
		t.Fatalf("write answer: %v", err)
	}

	// Expect answerResult and a progress push (order not guaranteed).
	answerSeen := false
	progressSeen := false
	for i := 0; i < 4; i++ {
		typ, _ := readNext(conn, t, "")
		switch typ {
		case "answerResult":
			answerSeen = true
		case "progress":
			progressSeen = true
		}
		if answerSeen && progressSeen {
			break
		}
	}
	if !answerSeen || !progressSeen {
		t.Fatalf("expected answerResult and progress, got answerResult=%v progress=%v", answerSeen, progressSeen)
	}
}

func TestWebSocketRejectsMissingParams(t *testing.T) {
	service := newTestService()
	wsHandler := NewWSHandler(service, zap.NewNop())

	server := httptest.NewServer(http.HandlerFunc(wsHandler.ServeWS))
	defer server.Close()

	resp, err := http.Get(server.URL + "/?userId=u1") // bankId missing
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func readNext(conn *websocket.Conn, t *testing.T, expect string) (string, map[string]any) {
	t.Helper()
	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if expect != "" && msg.Type != expect {
		t.Fatalf("expected type %s, got %s", expect, msg.Type)
	}
	return msg.Type, msg.Payload
}

func newTestService() *app.QuizService {
	banks := memory.NewBankRepository(memory.MustStaticBankLoader(map[string]domain.Bank{
		"bank-1": sampleBank(),
	}), time.Minute)
	return app.NewQuizService(
		memory.NewAttemptStore(),
		banks,
		memory.NewStateStore(),
		scoring.NewDefaultRegistry(),
		adaptive.New(rand.NewSource(1)),
		zap.NewNop(),
		app.Options{},
	)
}

func sampleBank() domain.Bank {
	questions := make([]domain.Question, 0, 4)
	for i := 0; i < 4; i++ {
		questions = append(questions, domain.Question{
			ID:     fmt.Sprintf("q%d", i+1),
			Prompt: "Pick the first option",
			Options: []domain.Option{
				{ID: "a", Text: "right", Correct: true},
				{ID: "b", Text: "close", PartialCreditPct: 40},
				{ID: "c", Text: "wrong"},
			},
			Points:     10,
			Difficulty: 2 + i%3,
		})
	}
	return domain.Bank{ID: "bank-1", Questions: questions}
}
