package games

import (
	"errors"
	"testing"
)

type fakeAuth struct {
	err   error
	calls int
}

func (f *fakeAuth) Authorize() error {
	f.calls++
	return f.err
}

func TestCatalogList(t *testing.T) {
	c := NewCatalog(&fakeAuth{}, nil)

	list := c.List()
	if len(list) != 2 {
		t.Fatalf("expected 2 games, got %d", len(list))
	}
	if list[0].ID != "orbit-runner" || list[1].ID != "meteor-match" {
		t.Errorf("unexpected catalog: %+v", list)
	}

	// Mutating the returned slice must not touch the catalog.
	list[0].ID = "hijacked"
	if c.List()[0].ID != "orbit-runner" {
		t.Error("List returned a live reference to the catalog")
	}
}

func TestCatalogLaunch(t *testing.T) {
	locked := errors.New("gate locked")

	tests := []struct {
		name    string
		id      string
		authErr error
		wantErr error
	}{
		{name: "authorized launch", id: "orbit-runner"},
		{name: "locked gate", id: "orbit-runner", authErr: locked, wantErr: locked},
		{name: "unknown game", id: "poker", wantErr: ErrUnknownGame},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := &fakeAuth{err: tt.authErr}
			c := NewCatalog(auth, nil)

			game, err := c.Launch(tt.id)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if game.ID != tt.id {
				t.Errorf("expected game %q, got %q", tt.id, game.ID)
			}
			if auth.calls != 1 {
				t.Errorf("expected 1 authorize call, got %d", auth.calls)
			}
		})
	}
}

func TestLaunchUnknownGameSkipsAuthorizer(t *testing.T) {
	auth := &fakeAuth{err: errors.New("locked")}
	c := NewCatalog(auth, nil)

	if _, err := c.Launch("nope"); !errors.Is(err, ErrUnknownGame) {
		t.Fatalf("expected ErrUnknownGame, got %v", err)
	}
	if auth.calls != 0 {
		t.Errorf("authorizer consulted for unknown game: %d calls", auth.calls)
	}
}
