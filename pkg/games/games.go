// Package games holds the catalog of morale mini-games. Launching is
// gated on the crew's mood; the games themselves render in the
// dashboard browser, so the catalog only carries identity and routing.
package games

import (
	"errors"
	"fmt"
	"log/slog"
)

// Sentinel errors.
var (
	// ErrUnknownGame is returned for an id not in the catalog.
	ErrUnknownGame = errors.New("games: unknown game")
)

// Game is one entry in the catalog.
type Game struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Path  string `json:"path"`
}

// Authorizer decides whether the gated affordance is open right now.
type Authorizer interface {
	Authorize() error
}

// DefaultCatalog returns the two built-in morale games.
func DefaultCatalog() []Game {
	return []Game{
		{ID: "orbit-runner", Title: "Orbit Runner", Path: "/games/orbit-runner"},
		{ID: "meteor-match", Title: "Meteor Match", Path: "/games/meteor-match"},
	}
}

// Catalog serves and gates the mini-game list.
type Catalog struct {
	games  []Game
	auth   Authorizer
	logger *slog.Logger
}

// NewCatalog creates a catalog gated by auth.
func NewCatalog(auth Authorizer, games []Game) *Catalog {
	if len(games) == 0 {
		games = DefaultCatalog()
	}
	return &Catalog{
		games:  games,
		auth:   auth,
		logger: slog.Default().With("component", "games"),
	}
}

// List returns the catalog.
func (c *Catalog) List() []Game {
	return append([]Game(nil), c.games...)
}

// Launch authorizes a launch of the identified game. A locked gate
// returns the gate's error untouched so the caller can surface the
// unlock-condition message; nothing else changes.
func (c *Catalog) Launch(id string) (Game, error) {
	var game Game
	found := false
	for _, g := range c.games {
		if g.ID == id {
			game, found = g, true
			break
		}
	}
	if !found {
		return Game{}, fmt.Errorf("%w: %s", ErrUnknownGame, id)
	}

	if err := c.auth.Authorize(); err != nil {
		return Game{}, err
	}

	c.logger.Info("game launched", "game", game.ID)
	return game, nil
}
