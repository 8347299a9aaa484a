package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/chatrelay/internal/common"
	"github.com/dmitrijs2005/chatrelay/internal/server/models"
)

type createUserRequest struct {
	Username string `json:"username"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

type sendMessageRequest struct {
	Sender    string `json:"sender"`
	Recipient string `json:"recipient"`
	Message   string `json:"message"`
}

type messageResponse struct {
	ID        string    `json:"id"`
	Sender    string    `json:"sender"`
	Recipient string    `json:"recipient"`
	Message   string    `json:"message"`
	Delivered bool      `json:"delivered"`
	CreatedAt time.Time `json:"created_at"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{ID: u.ID, Username: u.Username, CreatedAt: u.CreatedAt}
}

func toMessageResponse(m *models.Message) messageResponse {
	return messageResponse{
		ID:        m.ID,
		Sender:    m.Sender,
		Recipient: m.Recipient,
		Message:   m.Text,
		Delivered: m.Delivered,
		CreatedAt: m.CreatedAt,
	}
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {

	ctx := r.Context()

	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	user, err := s.users.Register(ctx, req.Username)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorAlreadyExists):
			writeJSON(w, http.StatusConflict, errorResponse{Error: "a user with this username already exists"})
		case errors.Is(err, common.ErrorValidation):
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "username must not be empty"})
		default:
			s.logger.Error(ctx, "create user failed", "error", err)
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		}
		return
	}

	s.logger.Info(ctx, "user registered", "username", user.Username)
	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

func (s *Server) handleGetUsers(w http.ResponseWriter, r *http.Request) {

	ctx := r.Context()

	users, err := s.users.List(ctx)
	if err != nil {
		s.logger.Error(ctx, "list users failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	result := make([]userResponse, 0, len(users))
	for _, u := range users {
		result = append(result, toUserResponse(u))
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleUserExists(w http.ResponseWriter, r *http.Request) {

	ctx := r.Context()
	username := r.PathValue("username")

	exists, err := s.users.Exists(ctx, username)
	if err != nil {
		s.logger.Error(ctx, "exists check failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"exists": exists})
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {

	ctx := r.Context()

	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	msg, err := s.messages.Send(ctx, req.Sender, req.Recipient, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorValidation):
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "sender and recipient must not be empty"})
		default:
			s.logger.Error(ctx, "send message failed", "error", err)
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		}
		return
	}

	writeJSON(w, http.StatusOK, toMessageResponse(msg))
}

func (s *Server) handleGetMessages(w http.ResponseWriter, r *http.Request) {

	ctx := r.Context()
	q := r.URL.Query()

	msgs, err := s.messages.Conversation(ctx, q.Get("sender"), q.Get("recipient"))
	if err != nil {
		s.logger.Error(ctx, "conversation query failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	result := make([]messageResponse, 0, len(msgs))
	for _, m := range msgs {
		result = append(result, toMessageResponse(m))
	}
	writeJSON(w, http.StatusOK, result)
}
