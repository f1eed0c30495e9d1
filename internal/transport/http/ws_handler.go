package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"adaptive-quiz-service/internal/app"
	"adaptive-quiz-service/internal/domain"
)

const defaultQuestionCount = 5

type WSHandler struct {
	service  *app.QuizService
	log      *zap.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService, log *zap.Logger) *WSHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &WSHandler{
		service: service,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	QuestionID   string   `json:"questionId"`
	OptionID     string   `json:"optionId"`
	Confidence   int      `json:"confidence,omitempty"`
	TimeSpentSec *float64 `json:"timeSpentSec,omitempty"`
	Policy       string   `json:"policy,omitempty"`
}

// optionView and questionView strip correctness and partial-credit data before
// anything reaches the client.
type optionView struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type questionView struct {
	ID         string       `json:"id"`
	Prompt     string       `json:"prompt"`
	Options    []optionView `json:"options"`
	Points     float64      `json:"points"`
	Difficulty int          `json:"difficulty"`
}

type attemptStartedPayload struct {
	AttemptID string         `json:"attemptId"`
	Policy    string         `json:"policy"`
	Questions []questionView `json:"questions"`
}

type leaderboardPayload struct {
	BankID  string                    `json:"bankId"`
	Entries []domain.LeaderboardEntry `json:"entries"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and wires them into the quiz
// use cases: an attempt starts on connect, answers stream in, progress and
// results stream out.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	bankID := r.URL.Query().Get("bankId")
	if userID == "" || bankID == "" {
		http.Error(w, "missing userId or bankId", http.StatusBadRequest)
		return
	}
	count := defaultQuestionCount
	if raw := r.URL.Query().Get("count"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			count = n
		}
	}
	policy := r.URL.Query().Get("policy")

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	attempt, err := h.service.StartAttempt(r.Context(), userID, bankID, count, policy)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}

	updates, cancel, err := h.service.Subscribe(r.Context(), attempt.ID())
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer cancel()
	defer func() {
		if _, err := h.service.Finish(r.Context(), attempt.ID()); err != nil {
			h.log.Debug("finish attempt", zap.Error(err))
		}
	}()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	// Single writer goroutine; gorilla connections do not allow concurrent writes.
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.log.Debug("ws write error", zap.Error(err))
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "progress", Payload: update}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	send <- outboundMessage[any]{Type: "attemptStarted", Payload: attemptStartedPayload{
		AttemptID: attempt.ID(),
		Policy:    attempt.PolicyName(),
		Questions: viewQuestions(attempt.Questions()),
	}}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid answer payload"}}
				continue
			}
			outcome, err := h.service.SubmitAnswer(r.Context(), attempt.ID(), app.AnswerSubmission{
				QuestionID:   payload.QuestionID,
				OptionID:     payload.OptionID,
				Confidence:   payload.Confidence,
				TimeSpentSec: payload.TimeSpentSec,
				Policy:       payload.Policy,
			})
			if err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
				continue
			}
			send <- outboundMessage[any]{Type: "answerResult", Payload: outcome}
		case "leaderboard":
			entries, err := h.service.LeaderboardTop(r.Context(), bankID, 10)
			if err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
				continue
			}
			send <- outboundMessage[any]{Type: "leaderboard", Payload: leaderboardPayload{BankID: bankID, Entries: entries}}
		default:
			send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

func viewQuestions(questions []domain.Question) []questionView {
	views := make([]questionView, 0, len(questions))
	for _, q := range questions {
		opts := make([]optionView, 0, len(q.Options))
		for _, opt := range q.Options {
			opts = append(opts, optionView{ID: opt.ID, Text: opt.Text})
		}
		views = append(views, questionView{
			ID:         q.ID,
			Prompt:     q.Prompt,
			Options:    opts,
			Points:     q.BasePoints(),
			Difficulty: q.Difficulty,
		})
	}
	return views
}
