package serving

import (
	// Go Internal Packages
	"encoding/json"
	"io"
	"net/http"

	// External Packages
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const maxRequestBytes = 10 << 20

type scoreRequest struct {
	Data [][]float64 `json:"data"`
}

type scoreResult struct {
	Result *[]int `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Server hosts a model behind the scoring HTTP contract. The model is loaded
// once by the caller and shared by every request.
type Server struct {
	model  Model
	logger *zap.Logger
	router *mux.Router
}

func NewServer(model Model, logger *zap.Logger) *Server {
	s := &Server{model: model, logger: logger, router: mux.NewRouter()}
	s.router.HandleFunc("/score", s.handleScore).Methods(http.MethodPost)
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// handleScore mirrors the hosted endpoint: the JSON result document is itself
// returned as a JSON string, and failures are reported in an error field.
func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes))
	if err != nil {
		s.writeWrapped(w, scoreResult{Error: err.Error()})
		return
	}

	var req scoreRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.writeWrapped(w, scoreResult{Error: err.Error()})
		return
	}
	if req.Data == nil {
		s.writeWrapped(w, scoreResult{Error: "missing data"})
		return
	}

	predictions, err := s.model.Predict(req.Data)
	if err != nil {
		s.logger.Warn("prediction failed", zap.Int("rows", len(req.Data)), zap.Error(err))
		s.writeWrapped(w, scoreResult{Error: err.Error()})
		return
	}
	if predictions == nil {
		predictions = []int{}
	}

	s.logger.Debug("scored batch", zap.Int("rows", len(req.Data)))
	s.writeWrapped(w, scoreResult{Result: &predictions})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
}

func (s *Server) writeWrapped(w http.ResponseWriter, res scoreResult) {
	inner, err := json.Marshal(res)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(string(inner))
}
