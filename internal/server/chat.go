package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/gradscout/gradscout/internal/assistant"
	"github.com/gradscout/gradscout/internal/match"
	"github.com/gradscout/gradscout/internal/runtime"
	"github.com/gradscout/gradscout/internal/store"
)

// ChatHandler answers assistant queries and keeps per-user chat history.
type ChatHandler struct {
	Store *store.Store
	Orch  *assistant.Orchestrator
}

func (h *ChatHandler) Register(g *echo.Group, secret []byte) {
	g.Use(runtime.EchoAuthMiddleware(secret))
	g.POST("", h.ask)
	g.GET("/history", h.history)
	g.GET("/status/:id", h.status)
}

// Ask
//
//	@Summary		Ask the assistant
//	@Description	Runs a query through intent classification, retrieval and scoring
//	@Tags			chat
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		ChatRequest	true	"Chat payload"
//	@Success		200		{object}	assistant.Answer
//	@Failure		400		{object}	HTTPError
//	@Failure		500		{object}	HTTPError
//	@Router			/api/chat [post]
func (h *ChatHandler) ask(c echo.Context) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Message == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "message is required")
	}
	userID, _ := c.Get("user_id").(string)

	var qctx *match.QueryContext
	if len(req.ResearchInterests) > 0 || req.TargetDegree != "" {
		qctx = &match.QueryContext{
			ResearchInterests: req.ResearchInterests,
			TargetDegree:      req.TargetDegree,
		}
	}

	ctx := c.Request().Context()
	answer, err := h.Orch.Answer(ctx, assistant.Query{
		UserID:    userID,
		Text:      req.Message,
		Context:   qctx,
		Timestamp: time.Now(),
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	// History persistence is best-effort; the answer stands either way.
	if h.Store != nil && userID != "" {
		_ = h.Store.SaveChatMessage(ctx, userID, "user", req.Message)
		_ = h.Store.SaveChatMessage(ctx, userID, "assistant", answer.Response)
	}
	return c.JSON(http.StatusOK, answer)
}

// History
//
//	@Summary	Chat history
//	@Tags		chat
//	@Produce	json
//	@Param		limit	query		int	false	"Max messages"
//	@Success	200		{array}		store.ChatMessage
//	@Failure	500		{object}	HTTPError
//	@Router		/api/chat/history [get]
func (h *ChatHandler) history(c echo.Context) error {
	userID, _ := c.Get("user_id").(string)
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	msgs, err := h.Store.ListChatMessages(c.Request().Context(), userID, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if msgs == nil {
		msgs = []store.ChatMessage{}
	}
	return c.JSON(http.StatusOK, msgs)
}

// Status
//
//	@Summary	Query status
//	@Tags		chat
//	@Produce	json
//	@Param		id	path		string	true	"Query ID"
//	@Success	200	{object}	assistant.ProcessingStatus
//	@Failure	404	{object}	HTTPError
//	@Router		/api/chat/status/{id} [get]
func (h *ChatHandler) status(c echo.Context) error {
	st, ok := h.Orch.GetStatus(c.Param("id"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "query not found")
	}
	return c.JSON(http.StatusOK, st)
}
