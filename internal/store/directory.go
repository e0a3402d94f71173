package store

import (
	"fmt"

	"github.com/iliyamo/cinema-ledger/internal/model"
)

// Directory holds user accounts keyed by username, in registration order.
type Directory struct {
	users map[string]model.User
	order []string
}

func NewDirectory() *Directory {
	return &Directory{users: make(map[string]model.User)}
}

// Add stores a new account. Usernames are unique.
func (d *Directory) Add(u model.User) error {
	if _, exists := d.users[u.Username]; exists {
		return fmt.Errorf("%w: %s", model.ErrUserExists, u.Username)
	}
	d.users[u.Username] = u
	d.order = append(d.order, u.Username)
	return nil
}

func (d *Directory) Get(username string) (model.User, bool) {
	u, ok := d.users[username]
	return u, ok
}

func (d *Directory) List() []model.User {
	out := make([]model.User, 0, len(d.order))
	for _, name := range d.order {
		out = append(out, d.users[name])
	}
	return out
}

// HasAdmin reports whether at least one ADMIN account exists.
func (d *Directory) HasAdmin() bool {
	for _, u := range d.users {
		if u.IsAdmin() {
			return true
		}
	}
	return false
}

func (d *Directory) Clone() *Directory {
	out := &Directory{users: make(map[string]model.User, len(d.users)), order: append([]string(nil), d.order...)}
	for k, v := range d.users {
		out.users[k] = v
	}
	return out
}
