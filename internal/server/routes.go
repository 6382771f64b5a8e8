package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/guidepro/guidepro/internal/assistant"
	"github.com/guidepro/guidepro/internal/booking"
	"github.com/guidepro/guidepro/internal/conversation"
	"github.com/guidepro/guidepro/internal/document"
)

func (s *Server) registerRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/conversations", s.handleCreateConversation)
		r.Get("/conversations/{id}/messages", s.handleMessages)
		r.Post("/chat", s.handleChat)

		r.Post("/documents", s.handleUpload)
		r.Post("/query", s.handleQuery)

		r.Get("/bookings", s.handleListBookings)
		r.Get("/bookings/export", s.handleExportBookings)
		r.Delete("/bookings/{id}", s.handleDeleteBooking)

		r.Post("/trips", s.handlePlanTrip)
		r.Get("/hotels", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, assistant.Hotels())
		})
	})
}

type createConversationRequest struct {
	UserID string `json:"user_id"`
}

type conversationResponse struct {
	Conversation *conversation.Conversation `json:"conversation"`
	Messages     []conversation.Message     `json:"messages"`
}

func (s *Server) handleCreateConversation(w http.ResponseWriter, r *http.Request) {
	var req createConversationRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	conv, err := s.assistant.StartConversation(r.Context(), req.UserID)
	if err != nil {
		s.logger.Error("creating conversation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not create conversation")
		return
	}
	msgs, err := s.assistant.History(r.Context(), conv.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not load conversation")
		return
	}
	writeJSON(w, http.StatusCreated, conversationResponse{Conversation: conv, Messages: msgs})
}

func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	msgs, err := s.assistant.History(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, conversation.ErrNotFound) {
		writeError(w, http.StatusNotFound, "conversation not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

type chatRequest struct {
	ConversationID string `json:"conversation_id"`
	Message        string `json:"message"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	reply, status, err := s.chat(r, req.ConversationID, req.Message)
	if err != nil {
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

var errMessageRequired = errors.New("message is required")

// chat runs one turn, creating the conversation when id is empty. The
// returned status applies only when err is set.
func (s *Server) chat(r *http.Request, id, message string) (assistant.Reply, int, error) {
	if strings.TrimSpace(message) == "" {
		return assistant.Reply{}, http.StatusBadRequest, errMessageRequired
	}
	if id == "" {
		conv, err := s.assistant.StartConversation(r.Context(), "")
		if err != nil {
			s.logger.Error("creating conversation failed", "error", err)
			return assistant.Reply{}, http.StatusInternalServerError, errors.New("could not create conversation")
		}
		id = conv.ID
	}
	reply, err := s.assistant.HandleMessage(r.Context(), id, message)
	switch {
	case errors.Is(err, assistant.ErrEmptyMessage):
		return reply, http.StatusBadRequest, errMessageRequired
	case errors.Is(err, conversation.ErrNotFound):
		return reply, http.StatusNotFound, errors.New("conversation not found")
	case err != nil:
		s.logger.Error("chat turn failed", "conversation", id, "error", err)
		return reply, http.StatusInternalServerError, errors.New("could not process message")
	}
	return reply, http.StatusOK, nil
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart upload")
		return
	}
	files := r.MultipartForm.File["file"]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "at least one file is required")
		return
	}

	docs := make([]document.RawDocument, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			writeError(w, http.StatusBadRequest, "reading "+fh.Filename)
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			writeError(w, http.StatusBadRequest, "reading "+fh.Filename)
			return
		}
		docs = append(docs, document.RawDocument{Name: fh.Filename, Data: data})
	}

	if replace, _ := strconv.ParseBool(r.FormValue("replace")); replace {
		if err := s.documents.Reset(r.Context()); err != nil {
			writeError(w, http.StatusInternalServerError, "could not reset documents")
			return
		}
	}
	report := s.documents.Ingest(r.Context(), docs)
	writeJSON(w, http.StatusOK, map[string]any{
		"report":       report,
		"total_chunks": s.documents.Len(),
	})
}

type queryRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

type queryResult struct {
	Source     string  `json:"source"`
	Text       string  `json:"text"`
	Similarity float32 `json:"similarity"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}
	results, err := s.documents.Search(r.Context(), req.Query, req.TopK)
	if err != nil {
		s.logger.Warn("document search failed", "error", err)
		writeError(w, http.StatusBadGateway, "document search is unavailable")
		return
	}
	out := make([]queryResult, len(results))
	for i, res := range results {
		out[i] = queryResult{Source: res.Document.Source, Text: res.Document.Text, Similarity: res.Similarity}
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": out})
}

func (s *Server) handleListBookings(w http.ResponseWriter, r *http.Request) {
	recs, err := s.bookings.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not list bookings")
		return
	}
	if recs == nil {
		recs = []booking.Record{}
	}
	writeJSON(w, http.StatusOK, recs)
}

func (s *Server) handleDeleteBooking(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid booking id")
		return
	}
	err = s.bookings.Delete(r.Context(), id)
	if errors.Is(err, booking.ErrNotFound) {
		writeError(w, http.StatusNotFound, "booking not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not delete booking")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExportBookings(w http.ResponseWriter, r *http.Request) {
	recs, err := s.bookings.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not list bookings")
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="bookings_%s.csv"`, time.Now().UTC().Format("20060102")))
	if err := booking.ExportCSV(w, recs); err != nil {
		s.logger.Error("writing bookings export failed", "error", err)
	}
}

func (s *Server) handlePlanTrip(w http.ResponseWriter, r *http.Request) {
	var req assistant.TripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	itinerary, err := s.assistant.PlanTrip(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"itinerary": itinerary})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
