package server

import (
	"errors"
	"io"
	"log"
	"net/http"

	"avalon/internal/db"
	"avalon/internal/engine"
)

type createGameRequest struct {
	Config engine.RoleConfig `json:"config"`
}

type joinRequest struct {
	Name string `json:"name"`
}

type startRequest struct {
	PlayerID string `json:"player_id"`
	Token    string `json:"token"`
}

type proposalRequest struct {
	PlayerID string   `json:"player_id"`
	Token    string   `json:"token"`
	Team     []string `json:"team"`
}

type voteRequest struct {
	PlayerID string `json:"player_id"`
	Token    string `json:"token"`
	Choice   string `json:"choice"`
}

type questActionRequest struct {
	PlayerID string `json:"player_id"`
	Token    string `json:"token"`
	Choice   string `json:"choice"`
}

type advanceRequest struct {
	PlayerID string `json:"player_id"`
	Token    string `json:"token"`
}

type investigationRequest struct {
	PlayerID string `json:"player_id"`
	Token    string `json:"token"`
	TargetID string `json:"target_id"`
}

type assassinGuessRequest struct {
	PlayerID string `json:"player_id"`
	Token    string `json:"token"`
	TargetID string `json:"target_id"`
}

type quizVoteRequest struct {
	PlayerID  string `json:"player_id"`
	Token     string `json:"token"`
	SuspectID string `json:"suspect_id"`
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req createGameRequest
	if err := readJSON(r.Body, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid game config")
		return
	}
	cfg := req.Config
	if cfg.Oberon && cfg.OberonMode == "" {
		cfg.OberonMode = engine.OberonStandard
	}
	if cfg.SplitIntel == "" {
		cfg.SplitIntel = engine.SplitIntelNone
	}

	game := s.store.CreateGame(cfg)
	if err := s.persistGame(game); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create game")
		return
	}
	log.Printf("game created game_id=%s join_code=%s", game.ID, game.JoinCode)
	writeJSON(w, http.StatusCreated, map[string]string{
		"game_id":   game.ID,
		"join_code": game.JoinCode,
	})
}

func (s *Server) handleGameSubroutes(w http.ResponseWriter, r *http.Request) {
	gameID, action, ok := parseGamePath(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		switch action {
		case "":
			s.handleGetGame(w, r, gameID)
		case "role":
			s.handleRole(w, r, gameID)
		case "events":
			s.handleEvents(w, r, gameID)
		default:
			http.NotFound(w, r)
		}
	case http.MethodPost:
		switch action {
		case "join":
			s.handleJoinGame(w, r, gameID)
		case "start":
			s.handleStartGame(w, r, gameID)
		case "proposals":
			s.handleProposal(w, r, gameID)
		case "votes":
			s.handleVote(w, r, gameID)
		case "quest-actions":
			s.handleQuestAction(w, r, gameID)
		case "advance":
			s.handleAdvance(w, r, gameID)
		case "investigations":
			s.handleInvestigation(w, r, gameID)
		case "assassin-guess":
			s.handleAssassinGuess(w, r, gameID)
		case "quiz-votes":
			s.handleQuizVote(w, r, gameID)
		default:
			http.NotFound(w, r)
		}
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request, gameID string) {
	now := timeNowUTC()
	changed := false
	game, err := s.store.UpdateGame(gameID, func(game *Game) error {
		var err error
		changed, err = s.progressGame(game, now)
		return err
	})
	if err != nil {
		if errors.Is(err, errGameNotFound) {
			http.NotFound(w, r)
			return
		}
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if changed {
		if err := s.persistState(game, "phase_advanced", EventPayload{Phase: game.Phase()}); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to save game")
			return
		}
		log.Printf("game advanced game_id=%s phase=%s", game.ID, game.Phase())
	}
	writeJSON(w, http.StatusOK, s.snapshot(game))
	if changed {
		s.broadcastGameUpdate(game)
	}
}

func (s *Server) handleRole(w http.ResponseWriter, r *http.Request, gameID string) {
	game, ok := s.store.GetGame(gameID)
	if !ok {
		http.NotFound(w, r)
		return
	}
	player, err := s.authenticatePlayer(game, r.URL.Query().Get("player_id"), r.URL.Query().Get("token"))
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, playerSnapshot(game, player.ID))
}

func (s *Server) handleJoinGame(w http.ResponseWriter, r *http.Request, gameID string) {
	var req joinRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	name, err := validateName(req.Name)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	game, player, err := s.store.AddPlayer(gameID, name)
	if err != nil {
		if errors.Is(err, errGameNotFound) {
			http.NotFound(w, r)
			return
		}
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if err := s.persistPlayer(game, player); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to join game")
		return
	}
	log.Printf("player joined game_id=%s player_id=%s player_name=%s", game.ID, player.ID, name)
	writeJSON(w, http.StatusOK, map[string]any{
		"game_id":   game.ID,
		"join_code": game.JoinCode,
		"player_id": player.ID,
		"token":     player.Token,
		"is_host":   player.IsHost,
	})
	s.broadcastGameUpdate(game)
}

func (s *Server) handleStartGame(w http.ResponseWriter, r *http.Request, gameID string) {
	var req startRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "player_id and token are required")
		return
	}
	game, err := s.store.UpdateGame(gameID, func(game *Game) error {
		if _, err := s.authenticateHost(game, req.PlayerID, req.Token); err != nil {
			return err
		}
		if game.State != nil {
			return errors.New("game already started")
		}
		seating := game.Seating()
		if len(seating) < engine.MinPlayers {
			return errors.New("not enough players")
		}
		assignments, visibility, err := engine.AssignRoles(seating, game.Config, s.newRNG())
		if err != nil {
			return err
		}
		game.State = engine.NewGame(seating, game.Config, assignments, visibility)
		game.PhaseStartedAt = timeNowUTC()
		return nil
	})
	if err != nil {
		if errors.Is(err, errGameNotFound) {
			http.NotFound(w, r)
			return
		}
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if err := s.persistStart(game); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to start game")
		return
	}
	log.Printf("game started game_id=%s players=%d phase=%s", game.ID, len(game.Players), game.Phase())
	writeJSON(w, http.StatusOK, s.snapshot(game))
	s.broadcastGameUpdate(game)
}

func (s *Server) handleProposal(w http.ResponseWriter, r *http.Request, gameID string) {
	var req proposalRequest
	if err := readJSON(r.Body, &req); err != nil || len(req.Team) == 0 {
		writeError(w, http.StatusBadRequest, "team is required")
		return
	}
	game, err := s.store.UpdateGame(gameID, func(game *Game) error {
		player, err := s.authenticatePlayer(game, req.PlayerID, req.Token)
		if err != nil {
			return err
		}
		if game.State == nil {
			return errors.New("game not started")
		}
		if err := engine.ApplyProposal(game.State, req.Team, game.State.QuestNumber, player.ID); err != nil {
			return err
		}
		game.PhaseStartedAt = timeNowUTC()
		return nil
	})
	if err != nil {
		if errors.Is(err, errGameNotFound) {
			http.NotFound(w, r)
			return
		}
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if err := s.persistProposal(game, "team_proposed", req.PlayerID); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save proposal")
		return
	}
	log.Printf("team proposed game_id=%s leader_id=%s quest=%d", game.ID, req.PlayerID, game.State.QuestNumber)
	writeJSON(w, http.StatusOK, s.snapshot(game))
	s.broadcastGameUpdate(game)
}

func (s *Server) handleVote(w http.ResponseWriter, r *http.Request, gameID string) {
	var req voteRequest
	if err := readJSON(r.Body, &req); err != nil || req.Choice == "" {
		writeError(w, http.StatusBadRequest, "choice is required")
		return
	}
	resolved := false
	game, err := s.store.UpdateGame(gameID, func(game *Game) error {
		player, err := s.authenticatePlayer(game, req.PlayerID, req.Token)
		if err != nil {
			return err
		}
		if game.State == nil {
			return errors.New("game not started")
		}
		prev := game.State.Phase
		resolved, err = engine.ApplyVote(game.State, player.ID, engine.VoteChoice(req.Choice))
		if err != nil {
			return err
		}
		if game.State.Phase != prev {
			game.PhaseStartedAt = timeNowUTC()
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, errGameNotFound) {
			http.NotFound(w, r)
			return
		}
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if err := s.persistVote(game, req.PlayerID, req.Choice, resolved); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save vote")
		return
	}
	log.Printf("vote submitted game_id=%s player_id=%s resolved=%t phase=%s", game.ID, req.PlayerID, resolved, game.Phase())
	writeJSON(w, http.StatusOK, s.snapshot(game))
	s.broadcastGameUpdate(game)
}

func (s *Server) handleQuestAction(w http.ResponseWriter, r *http.Request, gameID string) {
	var req questActionRequest
	if err := readJSON(r.Body, &req); err != nil || req.Choice == "" {
		writeError(w, http.StatusBadRequest, "choice is required")
		return
	}
	resolved := false
	game, err := s.store.UpdateGame(gameID, func(game *Game) error {
		player, err := s.authenticatePlayer(game, req.PlayerID, req.Token)
		if err != nil {
			return err
		}
		if game.State == nil {
			return errors.New("game not started")
		}
		prev := game.State.Phase
		resolved, err = engine.ApplyQuestAction(game.State, player.ID, engine.QuestChoice(req.Choice), s.newRNG())
		if err != nil {
			return err
		}
		if game.State.Phase != prev {
			game.PhaseStartedAt = timeNowUTC()
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, errGameNotFound) {
			http.NotFound(w, r)
			return
		}
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if err := s.persistQuestAction(game, req.PlayerID, resolved); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save quest action")
		return
	}
	log.Printf("quest action submitted game_id=%s player_id=%s resolved=%t", game.ID, req.PlayerID, resolved)
	writeJSON(w, http.StatusOK, s.snapshot(game))
	s.broadcastGameUpdate(game)
}

// handleAdvance lets the host leave the quest result phase before the grace
// period runs out on its own.
func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request, gameID string) {
	var req advanceRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "player_id and token are required")
		return
	}
	game, err := s.store.UpdateGame(gameID, func(game *Game) error {
		if _, err := s.authenticateHost(game, req.PlayerID, req.Token); err != nil {
			return err
		}
		if game.State == nil {
			return errors.New("game not started")
		}
		if _, err := engine.AdvanceFromQuestResult(game.State); err != nil {
			return err
		}
		game.PhaseStartedAt = timeNowUTC()
		return nil
	})
	if err != nil {
		if errors.Is(err, errGameNotFound) {
			http.NotFound(w, r)
			return
		}
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if err := s.persistState(game, "phase_advanced", EventPayload{Phase: game.Phase()}); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to advance game")
		return
	}
	log.Printf("game advanced game_id=%s phase=%s", game.ID, game.Phase())
	writeJSON(w, http.StatusOK, s.snapshot(game))
	s.broadcastGameUpdate(game)
}

func (s *Server) handleInvestigation(w http.ResponseWriter, r *http.Request, gameID string) {
	var req investigationRequest
	if err := readJSON(r.Body, &req); err != nil || req.TargetID == "" {
		writeError(w, http.StatusBadRequest, "target_id is required")
		return
	}
	var record engine.Investigation
	game, err := s.store.UpdateGame(gameID, func(game *Game) error {
		player, err := s.authenticatePlayer(game, req.PlayerID, req.Token)
		if err != nil {
			return err
		}
		if game.State == nil {
			return errors.New("game not started")
		}
		record, err = engine.ApplyInvestigation(game.State, player.ID, req.TargetID)
		if err != nil {
			return err
		}
		game.PhaseStartedAt = timeNowUTC()
		return nil
	})
	if err != nil {
		if errors.Is(err, errGameNotFound) {
			http.NotFound(w, r)
			return
		}
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if err := s.persistInvestigation(game, record); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save investigation")
		return
	}
	log.Printf("investigation game_id=%s investigator_id=%s target_id=%s", game.ID, req.PlayerID, req.TargetID)
	// The alignment result goes only to the investigator.
	writeJSON(w, http.StatusOK, map[string]any{
		"game_id":   game.ID,
		"target_id": record.TargetID,
		"result":    record.Result,
	})
	s.broadcastGameUpdate(game)
}

func (s *Server) handleAssassinGuess(w http.ResponseWriter, r *http.Request, gameID string) {
	var req assassinGuessRequest
	if err := readJSON(r.Body, &req); err != nil || req.TargetID == "" {
		writeError(w, http.StatusBadRequest, "target_id is required")
		return
	}
	now := timeNowUTC()
	game, err := s.store.UpdateGame(gameID, func(game *Game) error {
		player, err := s.authenticatePlayer(game, req.PlayerID, req.Token)
		if err != nil {
			return err
		}
		if game.State == nil {
			return errors.New("game not started")
		}
		prev := game.State.Phase
		if err := engine.RecordAssassinGuess(game.State, player.ID, req.TargetID); err != nil {
			return err
		}
		if game.State.Phase == engine.PhaseParallelQuiz {
			if _, err := engine.TryCompleteEndgame(game.State, now); err != nil {
				return err
			}
		}
		if game.State.Phase != prev {
			game.PhaseStartedAt = now
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, errGameNotFound) {
			http.NotFound(w, r)
			return
		}
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if err := s.persistState(game, "assassin_guess", EventPayload{PlayerID: req.PlayerID, TargetID: req.TargetID}); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save guess")
		return
	}
	log.Printf("assassin guess game_id=%s target_id=%s phase=%s", game.ID, req.TargetID, game.Phase())
	writeJSON(w, http.StatusOK, s.snapshot(game))
	s.broadcastGameUpdate(game)
}

func (s *Server) handleQuizVote(w http.ResponseWriter, r *http.Request, gameID string) {
	// An empty suspect_id is a deliberate skip, not a malformed request.
	var req quizVoteRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "player_id and token are required")
		return
	}
	now := timeNowUTC()
	game, err := s.store.UpdateGame(gameID, func(game *Game) error {
		player, err := s.authenticatePlayer(game, req.PlayerID, req.Token)
		if err != nil {
			return err
		}
		if game.State == nil {
			return errors.New("game not started")
		}
		prev := game.State.Phase
		if err := engine.RecordQuizVote(game.State, player.ID, req.SuspectID, now); err != nil {
			return err
		}
		if _, err := engine.TryCompleteEndgame(game.State, now); err != nil {
			return err
		}
		if game.State.Phase != prev {
			game.PhaseStartedAt = now
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, errGameNotFound) {
			http.NotFound(w, r)
			return
		}
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if err := s.persistQuizVote(game, req.PlayerID, req.SuspectID); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save quiz vote")
		return
	}
	log.Printf("quiz vote game_id=%s player_id=%s phase=%s", game.ID, req.PlayerID, game.Phase())
	writeJSON(w, http.StatusOK, s.snapshot(game))
	s.broadcastGameUpdate(game)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request, gameID string) {
	if s.db == nil {
		writeError(w, http.StatusServiceUnavailable, "events not available")
		return
	}
	game, ok := s.store.GetGame(gameID)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if game.DBID == 0 {
		if err := s.ensureGameDBID(game); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to load game")
			return
		}
	}
	var records []db.Event
	if err := s.db.Where("game_id = ?", game.DBID).Order("created_at asc").Find(&records).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load events")
		return
	}
	events := make([]map[string]any, 0, len(records))
	for _, record := range records {
		events = append(events, map[string]any{
			"id":         record.ID,
			"type":       record.Type,
			"player_id":  record.PlayerID,
			"created_at": record.CreatedAt,
			"payload":    record.Payload,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"game_id": game.ID,
		"events":  events,
	})
}
