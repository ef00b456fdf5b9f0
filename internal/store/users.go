package store

import (
	"time"

	"github.com/plataforma-eventos/server/internal/domain/ids"
)

// UserPatch is a shallow merge: nil fields keep the stored value.
type UserPatch struct {
	Nombre   *string
	Apellido *string
	Email    *string
	Celular  *string
	Sector   *string
	Rol      *string
	Password *string
	Aprobado *bool
}

func (s *Store) Users() ([]User, error) {
	s.usersMu.Lock()
	defer s.usersMu.Unlock()

	start := time.Now()
	users, err := readAll[User](s.path(usersFile))
	observe("users", "get_all", start, err)
	return users, err
}

func (s *Store) SaveUsers(users []User) error {
	s.usersMu.Lock()
	defer s.usersMu.Unlock()

	start := time.Now()
	err := writeAll(s.path(usersFile), users)
	observe("users", "save_all", start, err)
	return err
}

// CreateUser appends the user with a fresh identifier and timestamps.
func (s *Store) CreateUser(user User) (*User, error) {
	s.usersMu.Lock()
	defer s.usersMu.Unlock()

	start := time.Now()
	users, err := readAll[User](s.path(usersFile))
	if err != nil {
		observe("users", "create", start, err)
		return nil, err
	}

	now := time.Now().UTC()
	user.ID = ids.MustNewULID()
	user.CreatedAt = now
	user.UpdatedAt = now

	users = append(users, user)
	err = writeAll(s.path(usersFile), users)
	observe("users", "create", start, err)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser merges the patch onto the stored record and refreshes
// updatedAt. A missing id returns (nil, nil); the file is left untouched.
func (s *Store) UpdateUser(id string, patch UserPatch) (*User, error) {
	s.usersMu.Lock()
	defer s.usersMu.Unlock()

	start := time.Now()
	users, err := readAll[User](s.path(usersFile))
	if err != nil {
		observe("users", "update", start, err)
		return nil, err
	}

	idx := -1
	for i := range users {
		if users[i].ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		observe("users", "update", start, nil)
		return nil, nil
	}

	user := &users[idx]
	if patch.Nombre != nil {
		user.Nombre = *patch.Nombre
	}
	if patch.Apellido != nil {
		user.Apellido = *patch.Apellido
	}
	if patch.Email != nil {
		user.Email = *patch.Email
	}
	if patch.Celular != nil {
		user.Celular = *patch.Celular
	}
	if patch.Sector != nil {
		user.Sector = *patch.Sector
	}
	if patch.Rol != nil {
		user.Rol = *patch.Rol
	}
	if patch.Password != nil {
		user.Password = *patch.Password
	}
	if patch.Aprobado != nil {
		user.Aprobado = *patch.Aprobado
	}
	user.UpdatedAt = time.Now().UTC()

	err = writeAll(s.path(usersFile), users)
	observe("users", "update", start, err)
	if err != nil {
		return nil, err
	}
	updated := *user
	return &updated, nil
}
