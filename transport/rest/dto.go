package rest

import (
	"github.com/rocketscienceinc/tictactoe-program/internal/entity"
)

type playerRequest struct {
	Player string `json:"player"`
}

type timestampRequest struct {
	Player    string `json:"player"`
	Timestamp uint64 `json:"timestamp"`
}

type moveRequest struct {
	Player string `json:"player"`
	Col    int    `json:"col"`
	Row    int    `json:"row"`
}

type keepAliveView struct {
	X uint64 `json:"x"`
	O uint64 `json:"o"`
}

type matchView struct {
	ID        string                   `json:"id"`
	Phase     string                   `json:"phase"`
	PlayerX   string                   `json:"player_x"`
	PlayerO   string                   `json:"player_o,omitempty"`
	Turn      string                   `json:"turn,omitempty"`
	Winner    string                   `json:"winner,omitempty"`
	Board     [entity.BoardSize]string `json:"board"`
	KeepAlive keepAliveView            `json:"keep_alive"`
	Abandoned bool                     `json:"abandoned,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func newMatchView(id string, match *entity.Match) matchView {
	view := matchView{
		ID:      id,
		Phase:   match.Phase.String(),
		PlayerX: match.PlayerX.String(),
		KeepAlive: keepAliveView{
			X: match.LastActive[entity.SideX],
			O: match.LastActive[entity.SideO],
		},
	}

	if match.Phase != entity.Waiting {
		view.PlayerO = match.PlayerO.String()
	}

	if turn, ok := match.Turn(); ok {
		view.Turn = turn.String()
	}

	if winner, ok := match.Winner(); ok {
		view.Winner = winner.String()
	}

	for i, cell := range match.Board {
		view.Board[i] = cell.String()
	}

	return view
}
