// ABOUTME: HTTP signaling API: health, SDP offer/answer, and invocation stats.
// ABOUTME: Routes under /v1 require a Bearer room token minted by auth.RoomKey.

package gateway

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/cbbisht2004/Yogi/internal/auth"
	"github.com/cbbisht2004/Yogi/internal/tools"
)

// maxOfferBytes bounds the SDP offer body; real offers run a few kilobytes.
const maxOfferBytes = 1 << 20

// ToolStatsResponse is one tool's row in GET /v1/stats.
type ToolStatsResponse struct {
	Tool   string `json:"tool"`
	Calls  int64  `json:"calls"`
	Errors int64  `json:"errors"`
}

// StatsResponse is the JSON response for GET /v1/stats.
type StatsResponse struct {
	Room  string              `json:"room"`
	Packs []tools.PackInfo    `json:"packs"`
	Tools []ToolStatsResponse `json:"tools"`
}

// router builds the signaling routes. /healthz answers unauthenticated;
// everything under /v1 requires a room token.
func (g *Gateway) router(verifier auth.TokenVerifier) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", g.handleHealthz).Methods(http.MethodGet)

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.Use(auth.Middleware(verifier, g.config.Room.Name))
	v1.HandleFunc("/rooms/{room}/offer", g.handleOffer).Methods(http.MethodPost)
	v1.HandleFunc("/stats", g.handleStats).Methods(http.MethodGet)
	return r
}

// handleHealthz returns 200 OK while the server is alive.
func (g *Gateway) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleOffer answers a caller's SDP offer with the gateway's SDP answer
// and starts the bridged call.
func (g *Gateway) handleOffer(w http.ResponseWriter, r *http.Request) {
	room := mux.Vars(r)["room"]
	if room != g.config.Room.Name {
		g.sendJSONError(w, http.StatusNotFound, "unknown room")
		return
	}

	offer, err := io.ReadAll(io.LimitReader(r.Body, maxOfferBytes))
	if err != nil {
		g.sendJSONError(w, http.StatusBadRequest, "reading offer body")
		return
	}
	if len(offer) == 0 {
		g.sendJSONError(w, http.StatusBadRequest, "empty SDP offer")
		return
	}

	identity := ""
	if claims := auth.FromContext(r.Context()); claims != nil {
		identity = claims.Identity
	}
	g.logger.Info("call offer", "room", room, "identity", identity)

	answer, err := g.startCall(r.Context(), string(offer))
	if errors.Is(err, errBadOffer) {
		g.sendJSONError(w, http.StatusBadRequest, "offer is not valid SDP")
		return
	}
	if err != nil {
		g.logger.Error("starting call failed", "error", err)
		g.sendJSONError(w, http.StatusBadGateway, "could not reach the voice model")
		return
	}

	w.Header().Set("Content-Type", "application/sdp")
	_, _ = w.Write([]byte(answer))
}

// handleStats reports per-tool invocation counts and the registered packs.
func (g *Gateway) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := g.audit.Stats(r.Context())
	if err != nil {
		g.logger.Error("reading invocation stats", "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "reading stats")
		return
	}

	rows := make([]ToolStatsResponse, len(stats))
	for i, s := range stats {
		rows[i] = ToolStatsResponse{Tool: s.Tool, Calls: s.Calls, Errors: s.Errors}
	}
	response := StatsResponse{
		Room:  g.config.Room.Name,
		Packs: g.assistant.Registry().ListPacks(),
		Tools: rows,
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(response)
}

// sendJSONError writes a JSON error response.
func (g *Gateway) sendJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
