package server

import (
	"math/rand"
	"net/http"
	"time"

	"avalon/internal/config"

	"gorm.io/gorm"
)

type Server struct {
	store *Store
	db    *gorm.DB
	ws    *wsHub
	cfg   config.Config
}

func New(conn *gorm.DB, cfg config.Config) *Server {
	return &Server{
		store: NewStore(),
		db:    conn,
		ws:    newWSHub(),
		cfg:   cfg,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/games", s.handleCreateGame)
	mux.HandleFunc("GET /api/games/", s.handleGameSubroutes)
	mux.HandleFunc("POST /api/games/", s.handleGameSubroutes)
	mux.HandleFunc("GET /ws/games/", s.handleWebsocket)
	return mux
}

// newRNG seeds a fresh source per deal so concurrent games never share
// generator state.
func (s *Server) newRNG() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}
