package server

import (
	"net/http"
	"testing"

	"avalon/internal/engine"
)

func TestJoinRequiresValidName(t *testing.T) {
	srv := newTestServer(t)
	gameID := createGame(t, srv, engine.RoleConfig{Merlin: true, Assassin: true})

	rr := doRequest(t, srv, http.MethodPost, "/api/games/"+gameID+"/join", map[string]any{"name": "   "})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("blank name: status %d", rr.Code)
	}
	rr = doRequest(t, srv, http.MethodPost, "/api/games/"+gameID+"/join", map[string]any{"name": "név£"})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unsafe name: status %d", rr.Code)
	}
	rr = doRequest(t, srv, http.MethodPost, "/api/games/missing/join", map[string]any{"name": "alice"})
	if rr.Code != http.StatusNotFound {
		t.Fatalf("unknown game: status %d", rr.Code)
	}
}

func TestActionOnUnknownGameIsNotFound(t *testing.T) {
	srv := newTestServer(t)
	rr := doRequest(t, srv, http.MethodPost, "/api/games/game-99/votes", map[string]any{
		"player_id": "player-1",
		"token":     "nope",
		"choice":    "approve",
	})
	if rr.Code != http.StatusNotFound {
		t.Fatalf("vote on unknown game: status %d", rr.Code)
	}
	if rr := doRequest(t, srv, http.MethodGet, "/api/games/game-99", nil); rr.Code != http.StatusNotFound {
		t.Fatalf("get unknown game: status %d", rr.Code)
	}
}

func TestRejoinByNameKeepsIdentity(t *testing.T) {
	srv := newTestServer(t)
	gameID := createGame(t, srv, engine.RoleConfig{Merlin: true, Assassin: true})
	first := joinPlayer(t, srv, gameID, "alice")
	second := joinPlayer(t, srv, gameID, "alice")
	if first.ID != second.ID || first.Token != second.Token {
		t.Fatalf("rejoin issued a new identity: %v vs %v", first, second)
	}
}

func TestStartRequiresHostAndQuorum(t *testing.T) {
	srv := newTestServer(t)
	gameID := createGame(t, srv, engine.RoleConfig{Merlin: true, Assassin: true})
	players := joinPlayers(t, srv, gameID, 4)

	rr := doRequest(t, srv, http.MethodPost, "/api/games/"+gameID+"/start", map[string]any{
		"player_id": players[0].ID,
		"token":     players[0].Token,
	})
	if rr.Code != http.StatusConflict {
		t.Fatalf("start with 4 players: status %d", rr.Code)
	}

	fifth := joinPlayer(t, srv, gameID, "player5")
	rr = doRequest(t, srv, http.MethodPost, "/api/games/"+gameID+"/start", map[string]any{
		"player_id": fifth.ID,
		"token":     fifth.Token,
	})
	if rr.Code != http.StatusConflict {
		t.Fatalf("start by non-host: status %d", rr.Code)
	}

	startGame(t, srv, gameID, players[0])
	rr = doRequest(t, srv, http.MethodPost, "/api/games/"+gameID+"/start", map[string]any{
		"player_id": players[0].ID,
		"token":     players[0].Token,
	})
	if rr.Code != http.StatusConflict {
		t.Fatalf("double start: status %d", rr.Code)
	}
}

func TestProposalRejectsNonLeader(t *testing.T) {
	srv := newTestServer(t)
	gameID := createGame(t, srv, engine.RoleConfig{Merlin: true, Assassin: true})
	players := joinPlayers(t, srv, gameID, 5)
	startGame(t, srv, gameID, players[0])

	snapshot := getSnapshot(t, srv, gameID)
	leaderID := snapshot["leader_id"].(string)
	var outsider testPlayer
	for _, player := range players {
		if player.ID != leaderID {
			outsider = player
			break
		}
	}
	rr := doRequest(t, srv, http.MethodPost, "/api/games/"+gameID+"/proposals", map[string]any{
		"player_id": outsider.ID,
		"token":     outsider.Token,
		"team":      []string{players[0].ID, players[1].ID},
	})
	if rr.Code != http.StatusConflict {
		t.Fatalf("non-leader proposal: status %d body %s", rr.Code, rr.Body.String())
	}
}

func TestVoteRejectsBadTokenAndDuplicates(t *testing.T) {
	srv := newTestServer(t)
	gameID := createGame(t, srv, engine.RoleConfig{Merlin: true, Assassin: true})
	players := joinPlayers(t, srv, gameID, 5)
	startGame(t, srv, gameID, players[0])

	snapshot := getSnapshot(t, srv, gameID)
	leaderID := snapshot["leader_id"].(string)
	var leader testPlayer
	for _, player := range players {
		if player.ID == leaderID {
			leader = player
		}
	}
	rr := doRequest(t, srv, http.MethodPost, "/api/games/"+gameID+"/proposals", map[string]any{
		"player_id": leader.ID,
		"token":     leader.Token,
		"team":      []string{players[0].ID, players[1].ID},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("proposal: status %d body %s", rr.Code, rr.Body.String())
	}

	rr = doRequest(t, srv, http.MethodPost, "/api/games/"+gameID+"/votes", map[string]any{
		"player_id": players[1].ID,
		"token":     "not-the-token",
		"choice":    "approve",
	})
	if rr.Code != http.StatusConflict {
		t.Fatalf("bad token vote: status %d", rr.Code)
	}

	vote := map[string]any{
		"player_id": players[1].ID,
		"token":     players[1].Token,
		"choice":    "approve",
	}
	if rr := doRequest(t, srv, http.MethodPost, "/api/games/"+gameID+"/votes", vote); rr.Code != http.StatusOK {
		t.Fatalf("vote: status %d body %s", rr.Code, rr.Body.String())
	}
	if rr := doRequest(t, srv, http.MethodPost, "/api/games/"+gameID+"/votes", vote); rr.Code != http.StatusConflict {
		t.Fatalf("duplicate vote: status %d", rr.Code)
	}
}

func TestSnapshotHidesSecrets(t *testing.T) {
	srv := newTestServer(t)
	gameID := createGame(t, srv, engine.RoleConfig{Merlin: true, Assassin: true})
	players := joinPlayers(t, srv, gameID, 5)
	startGame(t, srv, gameID, players[0])

	snapshot := getSnapshot(t, srv, gameID)
	if _, leaked := snapshot["roles"]; leaked {
		t.Fatalf("snapshot leaked roles before game over")
	}

	leaderID := snapshot["leader_id"].(string)
	var leader testPlayer
	for _, player := range players {
		if player.ID == leaderID {
			leader = player
		}
	}
	doRequest(t, srv, http.MethodPost, "/api/games/"+gameID+"/proposals", map[string]any{
		"player_id": leader.ID,
		"token":     leader.Token,
		"team":      []string{players[0].ID, players[1].ID},
	})
	doRequest(t, srv, http.MethodPost, "/api/games/"+gameID+"/votes", map[string]any{
		"player_id": players[1].ID,
		"token":     players[1].Token,
		"choice":    "reject",
	})

	snapshot = getSnapshot(t, srv, gameID)
	proposals := snapshot["proposals"].([]any)
	pending := proposals[len(proposals)-1].(map[string]any)
	if _, leaked := pending["votes"]; leaked {
		t.Fatalf("pending proposal leaked individual votes")
	}
	voted, ok := pending["voted"].([]any)
	if !ok || len(voted) != 1 {
		t.Fatalf("pending proposal should list who voted, got %v", pending["voted"])
	}
}

func TestQuizVoteAllowsSkip(t *testing.T) {
	srv := newTestServer(t)
	gameID := createGame(t, srv, engine.RoleConfig{Merlin: true, Assassin: true, ParallelQuiz: true})
	players := joinPlayers(t, srv, gameID, 5)
	startGame(t, srv, gameID, players[0])
	roles := collectRoles(t, srv, gameID, players)

	for quest := 1; quest <= 3; quest++ {
		runQuest(t, srv, gameID, players, roles, true)
		getSnapshot(t, srv, gameID)
	}
	snapshot := getSnapshot(t, srv, gameID)
	if snapshot["phase"] != string(engine.PhaseParallelQuiz) {
		t.Fatalf("phase %v, want parallel_quiz", snapshot["phase"])
	}

	var skipper testPlayer
	for _, player := range players {
		role := roles[player.ID].Role
		if role != string(engine.RoleMerlin) && role != string(engine.RoleAssassin) {
			skipper = player
			break
		}
	}
	skip := map[string]any{
		"player_id": skipper.ID,
		"token":     skipper.Token,
	}
	rr := doRequest(t, srv, http.MethodPost, "/api/games/"+gameID+"/quiz-votes", skip)
	if rr.Code != http.StatusOK {
		t.Fatalf("skip vote: status %d body %s", rr.Code, rr.Body.String())
	}

	snapshot = getSnapshot(t, srv, gameID)
	quiz := snapshot["quiz"].(map[string]any)
	if int(quiz["submitted_count"].(float64)) != 1 {
		t.Fatalf("submitted_count %v after skip, want 1", quiz["submitted_count"])
	}
	if rr := doRequest(t, srv, http.MethodPost, "/api/games/"+gameID+"/quiz-votes", skip); rr.Code != http.StatusConflict {
		t.Fatalf("second skip by the same voter: status %d", rr.Code)
	}
}

func TestRoleEndpointRequiresToken(t *testing.T) {
	srv := newTestServer(t)
	gameID := createGame(t, srv, engine.RoleConfig{Merlin: true, Assassin: true})
	players := joinPlayers(t, srv, gameID, 5)
	startGame(t, srv, gameID, players[0])

	rr := doRequest(t, srv, http.MethodGet, "/api/games/"+gameID+"/role?player_id="+players[0].ID, nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("missing token: status %d", rr.Code)
	}
	rr = doRequest(t, srv, http.MethodGet, "/api/games/"+gameID+"/role?player_id="+players[0].ID+"&token=wrong", nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("wrong token: status %d", rr.Code)
	}
}
