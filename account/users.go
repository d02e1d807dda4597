// Package account holds the credential list and the single-slot session.
//
// Passwords are stored and compared in plaintext.
package account

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/amonks/pv/internal/kv"
)

// UsersKey holds the registered users.
const UsersKey = "pv_users"

var (
	// ErrUserExists is returned when registering a username that is taken.
	ErrUserExists = errors.New("user already exists")

	// ErrMissingFields is returned when a username or password is blank.
	ErrMissingFields = errors.New("username and password are required")
)

// User is a credential pair.
type User struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Builtin lists the users that exist without registration.
var Builtin = []User{
	{Username: "admin", Password: "admin"},
}

// Users reads and writes the registered users.
type Users struct {
	kv kv.Store
}

// NewUsers returns the credential store backed by store.
func NewUsers(store kv.Store) *Users {
	return &Users{kv: store}
}

// Load returns the built-in users followed by registered users in
// registration order.
func (u *Users) Load() ([]User, error) {
	registered, _, err := u.registered()
	if err != nil {
		return nil, err
	}
	all := make([]User, 0, len(Builtin)+len(registered))
	all = append(all, Builtin...)
	return append(all, registered...), nil
}

// Register appends a new user. The username must not match a built-in or
// registered user exactly.
func (u *Users) Register(username, password string) error {
	if username == "" || password == "" {
		return ErrMissingFields
	}
	for _, b := range Builtin {
		if b.Username == username {
			return fmt.Errorf("%w: %s", ErrUserExists, username)
		}
	}

	registered, raw, err := u.registered()
	if err != nil {
		return err
	}
	for _, r := range registered {
		if r.Username == username {
			return fmt.Errorf("%w: %s", ErrUserExists, username)
		}
	}

	entry, err := json.Marshal(User{Username: username, Password: password})
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	raw = append(raw, entry)
	if err := kv.SetJSON(u.kv, UsersKey, raw); err != nil {
		return fmt.Errorf("write users: %w", err)
	}
	return nil
}

// Authenticate returns the user matching both fields exactly.
func (u *Users) Authenticate(username, password string) (User, bool, error) {
	users, err := u.Load()
	if err != nil {
		return User{}, false, err
	}
	for _, user := range users {
		if user.Username == username && user.Password == password {
			return user, true, nil
		}
	}
	return User{}, false, nil
}

// registered returns the users that decode along with every stored element.
// Elements that are not a user are skipped when reading and written back
// unchanged by Register.
func (u *Users) registered() ([]User, []json.RawMessage, error) {
	var raw []json.RawMessage
	_, err := kv.GetJSON(u.kv, UsersKey, &raw)
	if errors.Is(err, kv.ErrMalformed) {
		slog.Debug("user_list_unparsable", "error", err)
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read users: %w", err)
	}

	users := make([]User, 0, len(raw))
	for i, element := range raw {
		var user User
		if err := json.Unmarshal(element, &user); err != nil || user.Username == "" {
			slog.Debug("user_entry_unparsable", "index", i, "error", err)
			continue
		}
		users = append(users, user)
	}
	return users, raw, nil
}

// TrimCredentials trims surrounding whitespace from both fields.
func TrimCredentials(username, password string) (string, string) {
	return strings.TrimSpace(username), strings.TrimSpace(password)
}
