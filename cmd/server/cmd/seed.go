package cmd

import (
	"fmt"

	"github.com/plataforma-eventos/server/internal/auth"
	"github.com/plataforma-eventos/server/internal/store"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create sample users for local development",
	Long: `Seed the record store with sample users for local development.

Creates three accounts when the store has no users yet:
  admin@eventos.com  (admin, approved,   password admin123)
  juan@eventos.com   (colaborador, approved,  password juan123)
  maria@eventos.com  (colaborador, pending,   password maria123)

Does nothing if any user already exists.`,
	RunE: runSeed,
}

type seedUser struct {
	nombre   string
	apellido string
	email    string
	celular  string
	sector   string
	password string
	rol      string
	aprobado bool
}

var seedUsers = []seedUser{
	{"Admin", "Sistema", "admin@eventos.com", "123456789", "Servicios", "admin123", string(auth.RoleAdmin), true},
	{"Juan", "Pérez", "juan@eventos.com", "987654321", "Educación", "juan123", string(auth.RoleColaborador), true},
	{"María", "González", "maria@eventos.com", "555666777", "Salud", "maria123", string(auth.RoleColaborador), false},
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	st, err := store.New(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("open record store: %w", err)
	}

	existing, err := st.Users()
	if err != nil {
		return fmt.Errorf("read users: %w", err)
	}
	if len(existing) > 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "users already exist, nothing to seed")
		return nil
	}

	for _, u := range seedUsers {
		hash, err := auth.HashPassword(u.password)
		if err != nil {
			return fmt.Errorf("hash password for %s: %w", u.email, err)
		}
		created, err := st.CreateUser(store.User{
			Nombre:   u.nombre,
			Apellido: u.apellido,
			Email:    u.email,
			Celular:  u.celular,
			Sector:   u.sector,
			Rol:      u.rol,
			Password: hash,
			Aprobado: u.aprobado,
		})
		if err != nil {
			return fmt.Errorf("create user %s: %w", u.email, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s)\n", created.Email, created.Rol)
	}

	return nil
}
