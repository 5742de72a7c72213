package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"docqa/internal/answer"
	"docqa/internal/config"
	"docqa/internal/extract"
	"docqa/internal/harvest"
	"docqa/internal/ingest"
	"docqa/internal/ocr"
	"docqa/internal/providers"
	"docqa/internal/session"
	"docqa/internal/util"
)

var allowedExtensions = map[string]struct{}{
	"pdf":  {},
	"docx": {},
	"pptx": {},
	"png":  {},
	"jpg":  {},
	"jpeg": {},
}

type Server struct {
	cfg       config.Config
	sessions  *session.Store
	pipeline  *ingest.Pipeline
	answerer  *answer.Answerer
	providers *providers.Manager
}

func NewServer(cfg config.Config) *Server {
	return NewServerWithEngine(cfg, ocr.NewTesseract())
}

// NewServerWithEngine lets tests swap the OCR engine; everything else is
// wired from config.
func NewServerWithEngine(cfg config.Config, engine ocr.Engine) *Server {
	if err := util.EnsureDir(cfg.UploadDir); err != nil {
		panic(err)
	}
	pm, err := providers.NewManager(cfg)
	if err != nil {
		panic(err)
	}
	extractor := extract.New(engine)
	harvester := harvest.New(time.Duration(cfg.FetchTimeoutSecs) * time.Second)
	return &Server{
		cfg:       cfg,
		sessions:  session.NewStore(cfg.SessionCookieName, cfg.MaxMessages),
		pipeline:  ingest.NewPipeline(extractor, harvester, pm, cfg.ChunkSize, cfg.ChunkOverlap),
		answerer:  answer.New(pm, cfg.TopK),
		providers: pm,
	}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/upload", s.handleUpload)
	mux.HandleFunc("/ask", s.handleAsk)
	mux.HandleFunc("/clear", s.handleClear)
	mux.HandleFunc("/reset", s.handleReset)
	return withCORS(mux)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeErr(w, http.StatusNotFound, fmt.Errorf("not found"))
		return
	}
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	sess := s.sessions.Get(w, r)
	sess.Lock()
	defer sess.Unlock()

	var document map[string]any
	if sess.Index != nil {
		document = map[string]any{
			"filename":    sess.Filename,
			"chunk_count": sess.ChunkCount,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"has_api_key": s.providers.Configured(),
		"messages":    sess.Conversation.Messages,
		"document":    document,
	})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	if err := r.ParseMultipartForm(64 << 20); err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("parse multipart: %w", err))
		return
	}
	file, fh, err := r.FormFile("file")
	if err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("no file provided"))
		return
	}
	defer file.Close()

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(fh.Filename), "."))
	if _, ok := allowedExtensions[ext]; !ok {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("%w: %q", util.ErrUnsupportedFormat, ext))
		return
	}

	path, err := saveUploadedFile(s.cfg.UploadDir, fh, ext)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	// The temp file only lives for the duration of this ingestion.
	defer func() {
		if err := os.Remove(path); err != nil {
			log.Printf("upload: remove temp file %s: %v", path, err)
		}
	}()

	store, count, err := s.pipeline.Run(r.Context(), path, ext)
	if err != nil {
		log.Printf("upload: ingest %s failed: %v", fh.Filename, err)
		writeErr(w, http.StatusInternalServerError, err)
		return
	}

	sess := s.sessions.Get(w, r)
	sess.Lock()
	defer sess.Unlock()
	sess.Index = store
	sess.Filename = filepath.Base(fh.Filename)
	sess.ChunkCount = count

	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"message":     fmt.Sprintf("Document processed successfully! Created %d text chunks.", count),
		"filename":    sess.Filename,
		"chunk_count": count,
	})
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	var req struct {
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid json: %w", err))
		return
	}
	req.Question = strings.TrimSpace(req.Question)
	if req.Question == "" {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("question is required"))
		return
	}

	sess := s.sessions.Get(w, r)
	sess.Lock()
	defer sess.Unlock()

	answerText, err := s.answerer.Answer(r.Context(), req.Question, sess.Index)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrNoIndex):
			writeErr(w, http.StatusBadRequest, err)
		case errors.Is(err, providers.ErrKeyMissing):
			writeErr(w, http.StatusInternalServerError, err)
		default:
			writeErr(w, http.StatusBadGateway, err)
		}
		return
	}

	sess.Conversation.AddUserMessage(req.Question)
	sess.Conversation.AddAssistantMessage(answerText)

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"answer":   answerText,
		"question": req.Question,
	})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	sess := s.sessions.Get(w, r)
	sess.Lock()
	defer sess.Unlock()
	sess.Conversation.Clear()
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	sess := s.sessions.Get(w, r)
	s.sessions.Drop(sess.ID)
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func saveUploadedFile(dstDir string, fh *multipart.FileHeader, ext string) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp(dstDir, "upload-*."+ext)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.ReadFrom(src); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("write upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, err error) {
	apiErr := toAPIError(code, err)
	writeJSON(w, code, map[string]any{
		"error": map[string]any{
			"code":    apiErr.Code,
			"message": apiErr.Message,
		},
	})
}

type apiError struct {
	Code    string
	Message string
}

func toAPIError(status int, err error) apiError {
	switch {
	case errors.Is(err, util.ErrUnsupportedFormat):
		return apiError{
			Code:    "DQ-API-4002",
			Message: "Invalid file type. Please upload a PDF, Word, PowerPoint, or image file (pdf, docx, pptx, png, jpg, jpeg).",
		}
	case errors.Is(err, util.ErrNoExtractableText):
		return apiError{
			Code:    "DQ-ING-5001",
			Message: "No text could be extracted from the document or its references.",
		}
	case errors.Is(err, providers.ErrKeyMissing):
		return apiError{
			Code:    "DQ-CFG-5001",
			Message: "Model provider credential is not configured.",
		}
	case errors.Is(err, util.ErrEmbeddingUnavailable):
		return apiError{
			Code:    "DQ-ING-5002",
			Message: "Embedding provider unavailable. Please retry shortly.",
		}
	case errors.Is(err, util.ErrNoIndex):
		return apiError{
			Code:    "DQ-API-4003",
			Message: "Please upload a document first.",
		}
	case errors.Is(err, util.ErrAnswerUnavailable):
		return apiError{
			Code:    "DQ-LLM-5020",
			Message: "Error getting answer from the model. Please retry shortly.",
		}
	}

	msg := "Request failed."
	code := "DQ-API-4000"
	switch {
	case status >= 500:
		code = "DQ-API-5000"
		msg = "Internal server error. Please retry or check service logs."
	case status == http.StatusBadRequest:
		code = "DQ-API-4001"
		msg = "Invalid request. Check inputs and retry."
	case status == http.StatusNotFound:
		code = "DQ-API-4004"
		msg = "Requested resource was not found."
	case status == http.StatusMethodNotAllowed:
		code = "DQ-API-4005"
		msg = "This endpoint does not support the requested method."
	case status == http.StatusBadGateway:
		code = "DQ-API-5020"
		msg = "Upstream provider unavailable. Retry shortly."
	}

	// For 4xx, keep user-safe validation context only.
	if status >= 400 && status < 500 && err != nil {
		low := strings.ToLower(err.Error())
		switch {
		case strings.Contains(low, "question is required"):
			msg = "Please enter a question."
		case strings.Contains(low, "no file provided"):
			msg = "No file selected."
		case strings.Contains(low, "invalid json"):
			msg = "Malformed JSON request body."
		}
	}

	return apiError{Code: code, Message: msg}
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
