package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"reelscan/internal/config"
	"reelscan/internal/logging"
	"reelscan/internal/postercache"
	"reelscan/internal/registry"
	"reelscan/internal/services"
)

// FileRecord is the wire representation of a registry record.
type FileRecord struct {
	Filename         string   `json:"filename"`
	Path             string   `json:"path"`
	Format           string   `json:"format"`
	FormatDetail     string   `json:"format_detail,omitempty"`
	DVProfile        int      `json:"dv_profile,omitempty"`
	DVELType         string   `json:"dv_el_type,omitempty"`
	Resolution       string   `json:"resolution"`
	AudioCodec       string   `json:"audio_codec"`
	AudioBitrateKbps int64    `json:"audio_bitrate_kbps"`
	VideoBitrateKbps int64    `json:"video_bitrate_kbps"`
	DurationSeconds  float64  `json:"duration_seconds"`
	FileSizeBytes    int64    `json:"file_size_bytes"`
	TMDBID           int64    `json:"tmdb_id,omitempty"`
	PosterURL        string   `json:"poster_url,omitempty"`
	Title            string   `json:"title,omitempty"`
	Year             string   `json:"year,omitempty"`
	Rating           float64  `json:"rating,omitempty"`
	Plot             string   `json:"plot,omitempty"`
	Directors        []string `json:"directors,omitempty"`
	Cast             []string `json:"cast,omitempty"`
	ScannedAt        string   `json:"scanned_at"`
}

// StatusResponse is the payload for GET /api/status.
type StatusResponse struct {
	Running        bool   `json:"running"`
	FileCount      int    `json:"file_count"`
	MediaDir       string `json:"media_dir"`
	RegistryDBPath string `json:"registry_db_path,omitempty"`
}

// SweepResponse is the payload for POST /api/scan.
type SweepResponse struct {
	Scanned int `json:"scanned"`
	Removed int `json:"removed"`
}

// ScanFileRequest is the body for POST /api/scan/file.
type ScanFileRequest struct {
	Path string `json:"path"`
}

// ScanFileResponse is the payload for POST /api/scan/file.
type ScanFileResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Record  *FileRecord `json:"record,omitempty"`
}

func fromRecord(record registry.Record) FileRecord {
	return FileRecord{
		Filename:         record.Filename,
		Path:             record.Path,
		Format:           record.Format,
		FormatDetail:     record.FormatDetail,
		DVProfile:        record.DVProfile,
		DVELType:         record.DVELType,
		Resolution:       record.Resolution,
		AudioCodec:       record.AudioCodec,
		AudioBitrateKbps: record.AudioBitrateKbps,
		VideoBitrateKbps: record.VideoBitrateKbps,
		DurationSeconds:  record.DurationSeconds,
		FileSizeBytes:    record.FileSizeBytes,
		TMDBID:           record.TMDBID,
		PosterURL:        record.PosterURL,
		Title:            record.Title,
		Year:             record.Year,
		Rating:           record.Rating,
		Plot:             record.Plot,
		Directors:        record.Directors,
		Cast:             record.Cast,
		ScannedAt:        record.ScannedAt.Format(time.RFC3339),
	}
}

type apiServer struct {
	bind   string
	logger *slog.Logger
	daemon *Daemon

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) (*apiServer, error) {
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, nil
	}

	srv := &apiServer{
		bind:   bind,
		logger: logging.WithComponent(logger, "api-server"),
		daemon: d,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", srv.handleStatus)
	mux.HandleFunc("/api/files", srv.handleFiles)
	mux.HandleFunc("/api/scan", srv.handleScan)
	mux.HandleFunc("/api/scan/file", srv.handleScanFile)
	mux.HandleFunc(postercache.URLPrefix, srv.handlePoster)

	srv.server = &http.Server{
		Handler:           srv.withRequestID(mux),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

// withRequestID tags each request context with a correlation identifier.
func (s *apiServer) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		ctx := services.WithRequestID(r.Context(), id)
		s.logger.Debug("api request",
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.String("request_id", id))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *apiServer) start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening",
		logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	status := s.daemon.Status()
	s.writeJSON(w, http.StatusOK, StatusResponse{
		Running:        status.Running,
		FileCount:      status.FileCount,
		MediaDir:       status.MediaDir,
		RegistryDBPath: status.RegistryDBPath,
	})
}

// handleFiles serves the registry contents and record deletion.
func (s *apiServer) handleFiles(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		snapshot := s.daemon.registry.Snapshot()
		files := make([]FileRecord, 0, len(snapshot))
		for _, record := range snapshot {
			files = append(files, fromRecord(record))
		}
		s.writeJSON(w, http.StatusOK, map[string][]FileRecord{"files": files})

	case http.MethodDelete:
		path := strings.TrimSpace(r.URL.Query().Get("path"))
		if path == "" {
			s.writeError(w, http.StatusBadRequest, "path query parameter is required")
			return
		}
		if !s.daemon.registry.Remove(r.Context(), path) {
			s.writeError(w, http.StatusNotFound, "file not recorded")
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]string{"removed": path})

	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleScan triggers a cleanup and sweep of the media directory.
func (s *apiServer) handleScan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	removed := s.daemon.scanner.Cleanup(r.Context())
	scanned, err := s.daemon.scanner.Sweep(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, SweepResponse{Scanned: scanned, Removed: removed})
}

// handleScanFile characterizes one file by absolute path.
func (s *apiServer) handleScanFile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req ScanFileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	path := strings.TrimSpace(req.Path)
	if path == "" {
		s.writeError(w, http.StatusBadRequest, "path is required")
		return
	}
	if !s.daemon.cfg.RecognizedExtension(path) {
		s.writeError(w, http.StatusBadRequest, "unrecognized file extension")
		return
	}

	result := s.daemon.scanner.Characterize(r.Context(), path)
	resp := ScanFileResponse{Success: result.Success, Message: result.Message}
	if result.Record != nil {
		converted := fromRecord(*result.Record)
		resp.Record = &converted
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// handlePoster serves cached poster images from disk.
func (s *apiServer) handlePoster(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.daemon.posters == nil {
		s.writeError(w, http.StatusNotFound, "poster cache disabled")
		return
	}
	path, ok := s.daemon.posters.Resolve(r.URL.Path)
	if !ok {
		s.writeError(w, http.StatusNotFound, "poster not found")
		return
	}
	http.ServeFile(w, r, path)
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
