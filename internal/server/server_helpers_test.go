package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"avalon/internal/config"
	"avalon/internal/engine"
)

type testPlayer struct {
	ID    string
	Token string
	Name  string
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Default()
	cfg.ResultGraceSeconds = 0
	return New(nil, cfg)
}

func doRequest(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, dest any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), dest); err != nil {
		t.Fatalf("decode response %q: %v", rr.Body.String(), err)
	}
}

func createGame(t *testing.T, srv *Server, cfg engine.RoleConfig) string {
	t.Helper()
	rr := doRequest(t, srv, http.MethodPost, "/api/games", map[string]any{"config": cfg})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create game: status %d body %s", rr.Code, rr.Body.String())
	}
	var resp struct {
		GameID string `json:"game_id"`
	}
	decodeBody(t, rr, &resp)
	return resp.GameID
}

func joinPlayer(t *testing.T, srv *Server, gameID, name string) testPlayer {
	t.Helper()
	rr := doRequest(t, srv, http.MethodPost, "/api/games/"+gameID+"/join", map[string]any{"name": name})
	if rr.Code != http.StatusOK {
		t.Fatalf("join %s: status %d body %s", name, rr.Code, rr.Body.String())
	}
	var resp struct {
		PlayerID string `json:"player_id"`
		Token    string `json:"token"`
	}
	decodeBody(t, rr, &resp)
	return testPlayer{ID: resp.PlayerID, Token: resp.Token, Name: name}
}

func joinPlayers(t *testing.T, srv *Server, gameID string, count int) []testPlayer {
	t.Helper()
	players := make([]testPlayer, 0, count)
	for i := 1; i <= count; i++ {
		players = append(players, joinPlayer(t, srv, gameID, fmt.Sprintf("player%d", i)))
	}
	return players
}

func startGame(t *testing.T, srv *Server, gameID string, host testPlayer) {
	t.Helper()
	rr := doRequest(t, srv, http.MethodPost, "/api/games/"+gameID+"/start", map[string]any{
		"player_id": host.ID,
		"token":     host.Token,
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("start game: status %d body %s", rr.Code, rr.Body.String())
	}
}

func getSnapshot(t *testing.T, srv *Server, gameID string) map[string]any {
	t.Helper()
	rr := doRequest(t, srv, http.MethodGet, "/api/games/"+gameID, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("get game: status %d body %s", rr.Code, rr.Body.String())
	}
	snapshot := map[string]any{}
	decodeBody(t, rr, &snapshot)
	return snapshot
}

type roleResponse struct {
	Alignment  string `json:"alignment"`
	Role       string `json:"role"`
	Visibility []struct {
		PlayerID string `json:"player_id"`
		Label    string `json:"label"`
	} `json:"visibility"`
}

func getRole(t *testing.T, srv *Server, gameID string, player testPlayer) roleResponse {
	t.Helper()
	path := fmt.Sprintf("/api/games/%s/role?player_id=%s&token=%s", gameID, player.ID, player.Token)
	rr := doRequest(t, srv, http.MethodGet, path, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("get role for %s: status %d body %s", player.ID, rr.Code, rr.Body.String())
	}
	var resp roleResponse
	decodeBody(t, rr, &resp)
	return resp
}

// runQuest drives one propose/vote/act cycle over the API and returns once
// the quest has resolved. The team always includes the current leader; when
// the quest should fail, one evil player joins and plays fail.
func runQuest(t *testing.T, srv *Server, gameID string, players []testPlayer, roles map[string]roleResponse, fail bool) {
	t.Helper()
	snapshot := getSnapshot(t, srv, gameID)
	leaderID := snapshot["leader_id"].(string)
	questNumber := int(snapshot["quest_number"].(float64))

	size, err := engine.QuestTeamSize(len(players), questNumber)
	if err != nil {
		t.Fatalf("team size: %v", err)
	}

	var leader testPlayer
	byID := map[string]testPlayer{}
	for _, player := range players {
		byID[player.ID] = player
		if player.ID == leaderID {
			leader = player
		}
	}

	team := make([]string, 0, size)
	failerID := ""
	if fail {
		for _, player := range players {
			if roles[player.ID].Alignment == string(engine.AlignmentEvil) {
				team = append(team, player.ID)
				failerID = player.ID
				break
			}
		}
	}
	for _, player := range players {
		if len(team) == size {
			break
		}
		member := false
		for _, id := range team {
			if id == player.ID {
				member = true
			}
		}
		if !member {
			team = append(team, player.ID)
		}
	}

	rr := doRequest(t, srv, http.MethodPost, "/api/games/"+gameID+"/proposals", map[string]any{
		"player_id": leader.ID,
		"token":     leader.Token,
		"team":      team,
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("quest %d proposal: status %d body %s", questNumber, rr.Code, rr.Body.String())
	}
	for _, player := range players {
		rr := doRequest(t, srv, http.MethodPost, "/api/games/"+gameID+"/votes", map[string]any{
			"player_id": player.ID,
			"token":     player.Token,
			"choice":    "approve",
		})
		if rr.Code != http.StatusOK {
			t.Fatalf("quest %d vote by %s: status %d body %s", questNumber, player.ID, rr.Code, rr.Body.String())
		}
	}
	for _, id := range team {
		choice := "success"
		if fail && id == failerID {
			choice = "fail"
		}
		member := byID[id]
		rr := doRequest(t, srv, http.MethodPost, "/api/games/"+gameID+"/quest-actions", map[string]any{
			"player_id": member.ID,
			"token":     member.Token,
			"choice":    choice,
		})
		if rr.Code != http.StatusOK {
			t.Fatalf("quest %d action by %s: status %d body %s", questNumber, id, rr.Code, rr.Body.String())
		}
	}
}
