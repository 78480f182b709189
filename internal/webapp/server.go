// Package webapp exposes the shopsheet engine over HTTP: photo upload,
// record listing for pickers and the data view, and download of the backing
// workbook. It is presentation glue; all invariants live in the engine.
package webapp

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/javajack/shopsheet"
)

// maxUploadBytes bounds one multipart photo upload.
const maxUploadBytes = 32 << 20

// Server wires the upsert engine to an HTTP API.
type Server struct {
	engine *shopsheet.Engine
	logger *zap.Logger
}

// NewServer creates a Server around the given engine.
func NewServer(engine *shopsheet.Engine, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{engine: engine, logger: logger}
}

// Handler builds the routed, CORS-wrapped handler.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/api/photos", s.handleUpload).Methods("POST")
	r.HandleFunc("/api/records", s.handleRecords).Methods("GET")
	r.HandleFunc("/api/regions", s.handleRegions).Methods("GET")
	r.HandleFunc("/api/shops", s.handleShops).Methods("GET")
	r.HandleFunc("/api/export", s.handleExport).Methods("GET")
	r.HandleFunc("/api/health", s.handleHealth).Methods("GET")

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	})
	return c.Handler(r)
}

// uploadResponse mirrors the engine result for the UI.
type uploadResponse struct {
	OK          bool    `json:"ok"`
	Row         int     `json:"row,omitempty"`
	Width       int     `json:"width,omitempty"`
	Height      int     `json:"height,omitempty"`
	ColumnWidth float64 `json:"column_width,omitempty"`
	Message     string  `json:"message,omitempty"`
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}

	shopID := r.FormValue("shop_id")
	region := r.FormValue("region")
	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Failed to get file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	res := s.engine.Upsert(shopID, region, file)
	status := http.StatusOK
	if !res.OK {
		status = http.StatusUnprocessableEntity
	}
	s.writeJSON(w, status, uploadResponse{
		OK:          res.OK,
		Row:         res.Row,
		Width:       res.Width,
		Height:      res.Height,
		ColumnWidth: res.ColumnWidth,
		Message:     res.Message,
	})
}

type recordResponse struct {
	ShopID      string `json:"shop_id"`
	Region      string `json:"region"`
	LastUpdated string `json:"last_updated"`
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	records, err := s.engine.ListRecords()
	if err != nil {
		s.logger.Error("list records", zap.Error(err))
		http.Error(w, "Failed to read records", http.StatusInternalServerError)
		return
	}

	if filter := r.URL.Query().Get("filter"); filter != "" {
		records, err = shopsheet.FilterRecords(records, filter)
		if err != nil {
			http.Error(w, fmt.Sprintf("Bad filter: %v", err), http.StatusBadRequest)
			return
		}
	}

	out := make([]recordResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, recordResponse{
			ShopID:      rec.ShopID,
			Region:      rec.Region,
			LastUpdated: rec.LastUpdated,
		})
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleRegions(w http.ResponseWriter, _ *http.Request) {
	records, err := s.engine.ListRecords()
	if err != nil {
		s.logger.Error("list records", zap.Error(err))
		http.Error(w, "Failed to read records", http.StatusInternalServerError)
		return
	}
	regions := shopsheet.Regions(records)
	if regions == nil {
		regions = []string{}
	}
	s.writeJSON(w, http.StatusOK, regions)
}

func (s *Server) handleShops(w http.ResponseWriter, r *http.Request) {
	records, err := s.engine.ListRecords()
	if err != nil {
		s.logger.Error("list records", zap.Error(err))
		http.Error(w, "Failed to read records", http.StatusInternalServerError)
		return
	}
	shops := shopsheet.ShopIDs(records, r.URL.Query().Get("region"))
	if shops == nil {
		shops = []string{}
	}
	s.writeJSON(w, http.StatusOK, shops)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="shops_data.xlsx"`)
	http.ServeFile(w, r, s.engine.Path())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", zap.Error(err))
	}
}
