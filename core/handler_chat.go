package core

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pamcare/pamcare/assistant"
	"github.com/pamcare/pamcare/db"

	"golang.org/x/sync/errgroup"
)

const chatTitleMaxLen = 60

type chatSessionResponse struct {
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	Created time.Time `json:"created"`
	Updated time.Time `json:"updated"`
}

func toChatSessionResponse(s *db.ChatSession) chatSessionResponse {
	return chatSessionResponse{
		ID:      s.ID,
		Title:   s.Title,
		Created: s.Created,
		Updated: s.Updated,
	}
}

type chatMessageResponse struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Created   time.Time `json:"created"`
}

func toChatMessageResponse(m *db.ChatMessage) chatMessageResponse {
	return chatMessageResponse{
		ID:        m.ID,
		SessionID: m.SessionID,
		Role:      m.Role,
		Content:   m.Content,
		Created:   m.Created,
	}
}

// chatTitle derives a session title from the first message. Truncation
// backs up to a rune boundary so a multibyte character is never split.
func chatTitle(content string) string {
	title := strings.Join(strings.Fields(content), " ")
	if len(title) > chatTitleMaxLen {
		cut := chatTitleMaxLen
		for cut > 0 && !utf8.RuneStart(title[cut]) {
			cut--
		}
		title = title[:cut]
	}
	return title
}

// ownedChatSession loads a session and enforces ownership.
func (a *App) ownedChatSession(w http.ResponseWriter, id, userID string) *db.ChatSession {
	session, err := a.DbChat().GetChatSessionById(id)
	if err != nil {
		a.Logger().Error("chat session lookup failed", "error", err, "id", id)
		writeJsonError(w, errorDatabaseError)
		return nil
	}
	if session == nil {
		writeJsonError(w, errorNotFound)
		return nil
	}
	if session.UserID != userID {
		writeJsonError(w, errorForbidden)
		return nil
	}
	return session
}

// CreateChatSessionHandler opens a new, empty assistant conversation.
// Endpoint: POST /api/chat/sessions
// Authenticated: Yes
// Allowed Mimetype: application/json
func (a *App) CreateChatSessionHandler(w http.ResponseWriter, r *http.Request) {
	if err, resp := a.Validator().ContentType(r, MimeTypeJSON); err != nil {
		writeJsonError(w, resp)
		return
	}

	user, ok := UserFromContext(r.Context())
	if !ok {
		writeJsonError(w, errorJwtInvalidToken)
		return
	}

	var req struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		req.Title = "New conversation"
	}

	session, err := a.DbChat().CreateChatSession(db.ChatSession{
		UserID: user.ID,
		Title:  req.Title,
	})
	if err != nil {
		a.Logger().Error("chat session insert failed", "error", err, "user_id", user.ID)
		writeJsonError(w, errorDatabaseError)
		return
	}

	writeJsonWithData(w, JsonWithData{
		JsonBasic: JsonBasic{
			Status:  http.StatusCreated,
			Code:    CodeOkCreated,
			Message: "Chat session created",
		},
		Data: toChatSessionResponse(session),
	})
}

// ListChatSessionsHandler lists the current user's conversations, paginated.
// Endpoint: GET /api/chat/sessions
// Authenticated: Yes
func (a *App) ListChatSessionsHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeJsonError(w, errorJwtInvalidToken)
		return
	}

	p := paginationFromRequest(r)

	var (
		sessions []*db.ChatSession
		total    int
	)
	g := new(errgroup.Group)
	g.Go(func() error {
		var err error
		sessions, err = a.DbChat().ListChatSessions(user.ID, p)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = a.DbChat().CountChatSessions(user.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		a.Logger().Error("chat session list failed", "error", err, "user_id", user.ID)
		writeJsonError(w, errorDatabaseError)
		return
	}

	items := make([]chatSessionResponse, 0, len(sessions))
	for _, s := range sessions {
		items = append(items, toChatSessionResponse(s))
	}

	writeJsonList(w, CodeOkList, "Chat sessions", items, ListMeta{
		Total: total,
		Page:  p.Page,
		Limit: p.Limit,
	})
}

// GetChatSessionHandler returns a session together with its messages.
// Endpoint: GET /api/chat/sessions/{id}
// Authenticated: Yes
func (a *App) GetChatSessionHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeJsonError(w, errorJwtInvalidToken)
		return
	}

	id := a.Router().Param(r, "id")
	if id == "" {
		writeJsonError(w, errorInvalidRequest)
		return
	}

	session := a.ownedChatSession(w, id, user.ID)
	if session == nil {
		return
	}

	messages, err := a.DbChat().ListChatMessages(session.ID, a.chatHistoryMax())
	if err != nil {
		a.Logger().Error("chat message list failed", "error", err, "session_id", session.ID)
		writeJsonError(w, errorDatabaseError)
		return
	}

	items := make([]chatMessageResponse, 0, len(messages))
	for _, m := range messages {
		items = append(items, toChatMessageResponse(m))
	}

	writeJsonWithData(w, JsonWithData{
		JsonBasic: JsonBasic{
			Status:  http.StatusOK,
			Code:    CodeOkFound,
			Message: "Chat session",
		},
		Data: struct {
			Session  chatSessionResponse   `json:"session"`
			Messages []chatMessageResponse `json:"messages"`
		}{toChatSessionResponse(session), items},
	})
}

// DeleteChatSessionHandler removes a session and its messages.
// Endpoint: DELETE /api/chat/sessions/{id}
// Authenticated: Yes
func (a *App) DeleteChatSessionHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeJsonError(w, errorJwtInvalidToken)
		return
	}

	id := a.Router().Param(r, "id")
	if id == "" {
		writeJsonError(w, errorInvalidRequest)
		return
	}

	session := a.ownedChatSession(w, id, user.ID)
	if session == nil {
		return
	}

	if err := a.DbChat().DeleteChatSession(session.ID); err != nil {
		a.Logger().Error("chat session delete failed", "error", err, "id", session.ID)
		writeJsonError(w, errorDatabaseError)
		return
	}

	writeJsonOk(w, okDeleted)
}

// SendChatMessageHandler stores a user message, asks the assistant for a
// reply with the session history as context and stores the reply. Without a
// session id a new session is created on demand, titled after the message.
// Endpoint: POST /api/chat/messages
// Authenticated: Yes
// Allowed Mimetype: application/json
func (a *App) SendChatMessageHandler(w http.ResponseWriter, r *http.Request) {
	if err, resp := a.Validator().ContentType(r, MimeTypeJSON); err != nil {
		writeJsonError(w, resp)
		return
	}

	user, ok := UserFromContext(r.Context())
	if !ok {
		writeJsonError(w, errorJwtInvalidToken)
		return
	}

	if a.Assistant() == nil {
		writeJsonError(w, errorAssistantUnavailable)
		return
	}

	var req struct {
		SessionID string `json:"session_id"`
		Content   string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}

	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		writeJsonError(w, errorMissingFields)
		return
	}

	var session *db.ChatSession
	if req.SessionID == "" {
		var err error
		session, err = a.DbChat().CreateChatSession(db.ChatSession{
			UserID: user.ID,
			Title:  chatTitle(req.Content),
		})
		if err != nil {
			a.Logger().Error("chat session insert failed", "error", err, "user_id", user.ID)
			writeJsonError(w, errorDatabaseError)
			return
		}
	} else {
		session = a.ownedChatSession(w, req.SessionID, user.ID)
		if session == nil {
			return
		}
	}

	if _, err := a.DbChat().CreateChatMessage(db.ChatMessage{
		SessionID: session.ID,
		Role:      db.ChatRoleUser,
		Content:   req.Content,
	}); err != nil {
		a.Logger().Error("chat message insert failed", "error", err, "session_id", session.ID)
		writeJsonError(w, errorDatabaseError)
		return
	}

	// History is capped and oldest first, the order the upstream API wants.
	stored, err := a.DbChat().ListChatMessages(session.ID, a.chatHistoryMax())
	if err != nil {
		a.Logger().Error("chat message list failed", "error", err, "session_id", session.ID)
		writeJsonError(w, errorDatabaseError)
		return
	}

	history := make([]assistant.Message, 0, len(stored))
	for _, m := range stored {
		history = append(history, assistant.Message{Role: m.Role, Content: m.Content})
	}

	reply, err := a.Assistant().Complete(r.Context(), history)
	if err != nil {
		if errors.Is(err, assistant.ErrRateLimited) {
			writeJsonError(w, errorTooManyRequests)
			return
		}
		a.Logger().Error("assistant completion failed", "error", err, "session_id", session.ID)
		writeJsonError(w, errorAssistantUnavailable)
		return
	}

	replyMsg, err := a.DbChat().CreateChatMessage(db.ChatMessage{
		SessionID: session.ID,
		Role:      db.ChatRoleAssistant,
		Content:   reply,
	})
	if err != nil {
		a.Logger().Error("chat reply insert failed", "error", err, "session_id", session.ID)
		writeJsonError(w, errorDatabaseError)
		return
	}

	if err := a.DbChat().TouchChatSession(session.ID); err != nil {
		a.Logger().Error("chat session touch failed", "error", err, "session_id", session.ID)
	}

	writeJsonWithData(w, JsonWithData{
		JsonBasic: JsonBasic{
			Status:  http.StatusOK,
			Code:    CodeOkChatReply,
			Message: "Assistant reply",
		},
		Data: struct {
			SessionID string              `json:"session_id"`
			Reply     chatMessageResponse `json:"reply"`
		}{session.ID, toChatMessageResponse(replyMsg)},
	})
}

func (a *App) chatHistoryMax() int {
	if max := a.Config().Assistant.HistoryMax; max > 0 {
		return max
	}
	return 20
}
