package seed

import (
	"context"
	"errors"
	"fmt"

	"tutelliv/internal/store"
	"tutelliv/pkg/types"

	"golang.org/x/crypto/bcrypt"
)

type demoUserSeed struct {
	Email    string
	Password string
	Name     string
	Role     types.Role
}

// Demo accounts matching the credentials printed on the login page.
var demoUsers = []demoUserSeed{
	{Email: "mjpm@example.com", Password: "mjpm123", Name: "Marie Dupont", Role: types.RoleMJPM},
	{Email: "livreur@example.com", Password: "livreur123", Name: "Karim Benali", Role: types.RoleDeliverer},
}

func SeedDemoUsers(ctx context.Context, userRepo *store.UserRepository) error {
	seeded := 0
	for _, demo := range demoUsers {
		_, err := userRepo.UserByEmail(ctx, demo.Email)
		if err == nil {
			continue
		}
		if !errors.Is(err, types.ErrUserNotFound) {
			return fmt.Errorf("failed to fetch user %s: %w", demo.Email, err)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(demo.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password for %s: %w", demo.Email, err)
		}

		user := &types.User{
			Email:        demo.Email,
			PasswordHash: string(hash),
			Name:         demo.Name,
			Role:         demo.Role,
		}
		if err := userRepo.CreateUser(ctx, user); err != nil {
			return fmt.Errorf("failed to create user %s: %w", demo.Email, err)
		}
		seeded++
	}

	fmt.Printf("Demo users seeded: %d created\n", seeded)
	return nil
}
