package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/voxelforge/gdmc-bridge/bridge"
	"github.com/voxelforge/gdmc-bridge/journal"
	"github.com/voxelforge/gdmc-bridge/transport/websocket"
	"github.com/voxelforge/gdmc-bridge/world"
)

// JournalReader is the read side of the operation journal.
type JournalReader interface {
	Recent(ctx context.Context, n int) ([]journal.Entry, error)
}

// Server is the REST surface of the bridge. Every mutating route funnels
// through the dispatcher; reads go through the query layer.
type Server struct {
	dispatcher *bridge.Dispatcher
	queries    *bridge.Queries
	hub        *websocket.Hub
	journal    JournalReader
	router     *mux.Router
}

// NewServer creates a new API server. hub and journalReader may be nil.
func NewServer(dispatcher *bridge.Dispatcher, queries *bridge.Queries, hub *websocket.Hub, journalReader JournalReader) *Server {
	s := &Server{
		dispatcher: dispatcher,
		queries:    queries,
		hub:        hub,
		journal:    journalReader,
		router:     mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	// Mutations
	api.HandleFunc("/blocks", s.dispatchHandler("place_block")).Methods("POST")
	api.HandleFunc("/cuboids", s.dispatchHandler("place_cuboid")).Methods("POST")
	api.HandleFunc("/entities", s.dispatchHandler("place_entities")).Methods("POST")
	api.HandleFunc("/structures", s.dispatchHandler("place_structure")).Methods("POST")
	api.HandleFunc("/commands", s.dispatchHandler("run_command")).Methods("POST")

	// Queries
	api.HandleFunc("/build-area", s.handleBuildArea).Methods("GET")
	api.HandleFunc("/blocks", s.handleBlockAt).Methods("GET")
	api.HandleFunc("/biomes", s.handleBiomeAt).Methods("GET")
	api.HandleFunc("/heightmap", s.handleHeightAt).Methods("GET")
	api.HandleFunc("/heightmap-types", s.handleHeightmapTypes).Methods("GET")
	api.HandleFunc("/players", s.handlePlayers).Methods("GET")
	api.HandleFunc("/entities", s.handleEntities).Methods("GET")
	api.HandleFunc("/version", s.handleVersion).Methods("GET")
	api.HandleFunc("/journal", s.handleJournal).Methods("GET")

	// WebSocket
	if s.hub != nil {
		s.router.HandleFunc("/ws", s.handleWebSocket)
	}
}

// MountMCP attaches an MCP JSON-RPC handler at /mcp.
func (s *Server) MountMCP(handler http.Handler) {
	s.router.Handle("/mcp", handler)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// statusForKind maps the bridge's error taxonomy onto HTTP statuses.
func statusForKind(kind bridge.Kind) int {
	switch kind {
	case bridge.KindValidation:
		return http.StatusBadRequest
	case bridge.KindSessionUnavailable:
		return http.StatusServiceUnavailable
	case bridge.KindConnection:
		return http.StatusBadGateway
	case bridge.KindPrecondition:
		return http.StatusConflict
	case bridge.KindOutOfBounds, bridge.KindUnavailable:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func respondBridgeError(w http.ResponseWriter, err error) {
	kind := bridge.KindOf(err)
	body := map[string]any{
		"kind":    string(kind),
		"message": err.Error(),
	}
	var be *bridge.Error
	if errors.As(err, &be) {
		body["message"] = be.Message
		if be.Op != "" {
			body["operation"] = be.Op
		}
	}
	respondJSON(w, statusForKind(kind), map[string]any{"error": body})
}

// dispatchHandler adapts one named dispatcher operation into a REST handler.
// The request body is the operation's argument object.
func (s *Server) dispatchHandler(op string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var args map[string]any
		if r.Body != nil {
			if err := json.NewDecoder(r.Body).Decode(&args); err != nil {
				respondBridgeError(w, bridge.ValidationError(op, errors.New("request body must be a JSON object")))
				return
			}
		}
		result, err := s.dispatcher.Dispatch(r.Context(), op, args)
		if err != nil {
			respondBridgeError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, result)
	}
}

func (s *Server) handleBuildArea(w http.ResponseWriter, r *http.Request) {
	result, err := s.queries.BuildArea(r.Context())
	if err != nil {
		respondBridgeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// positionQuery reads x, y, z query parameters.
func positionQuery(r *http.Request) (world.Position, error) {
	var pos world.Position
	for _, c := range []struct {
		name string
		dst  *int
	}{
		{"x", &pos.X},
		{"y", &pos.Y},
		{"z", &pos.Z},
	} {
		raw := r.URL.Query().Get(c.name)
		n, err := strconv.Atoi(raw)
		if err != nil {
			return world.Position{}, errors.New("query parameters x, y, z must be integers")
		}
		*c.dst = n
	}
	return pos, nil
}

func (s *Server) handleBlockAt(w http.ResponseWriter, r *http.Request) {
	pos, err := positionQuery(r)
	if err != nil {
		respondBridgeError(w, bridge.ValidationError("block_at", err))
		return
	}
	result, err := s.queries.BlockAt(r.Context(), pos)
	if err != nil {
		respondBridgeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleBiomeAt(w http.ResponseWriter, r *http.Request) {
	pos, err := positionQuery(r)
	if err != nil {
		respondBridgeError(w, bridge.ValidationError("biome_at", err))
		return
	}
	result, err := s.queries.BiomeAt(r.Context(), pos)
	if err != nil {
		respondBridgeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleHeightAt(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	x, errX := strconv.Atoi(query.Get("x"))
	z, errZ := strconv.Atoi(query.Get("z"))
	if errX != nil || errZ != nil {
		respondBridgeError(w, bridge.ValidationError("height_at", errors.New("query parameters x, z must be integers")))
		return
	}
	heightmapType := query.Get("type")
	if heightmapType == "" {
		heightmapType = string(world.WorldSurface)
	}
	result, err := s.queries.HeightAt(r.Context(), x, z, heightmapType)
	if err != nil {
		respondBridgeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleHeightmapTypes(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.queries.HeightmapTypes())
}

func (s *Server) handlePlayers(w http.ResponseWriter, r *http.Request) {
	result, err := s.queries.Players(r.Context())
	if err != nil {
		respondBridgeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleEntities(w http.ResponseWriter, r *http.Request) {
	result, err := s.queries.EntitiesList(r.Context())
	if err != nil {
		respondBridgeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	result, err := s.queries.Version(r.Context())
	if err != nil {
		respondBridgeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleJournal(w http.ResponseWriter, r *http.Request) {
	if s.journal == nil {
		respondJSON(w, http.StatusNotFound, map[string]any{
			"error": map[string]any{"kind": "unavailable", "message": "operation journal is not enabled"},
		})
		return
	}
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	entries, err := s.journal.Recent(r.Context(), limit)
	if err != nil {
		respondBridgeError(w, err)
		return
	}
	if entries == nil {
		entries = []journal.Entry{}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"count":      len(entries),
		"operations": entries,
	})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	s.hub.ServeWS(w, r)
}
