package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/dimitrije/admin-dashboard-api/internal/models"
	"gopkg.in/yaml.v3"
)

type seedFile struct {
	Users []seedUser `yaml:"users"`
}

type seedUser struct {
	Email     string `yaml:"email"`
	FirstName string `yaml:"first_name"`
	LastName  string `yaml:"last_name"`
	Role      string `yaml:"role"`
	Password  string `yaml:"password"`
}

func loadSeeds(path string) ([]models.NewUser, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseSeeds(data)
}

// parseSeeds rejects the whole file on the first invalid entry.
func parseSeeds(data []byte) ([]models.NewUser, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("invalid seed file: %w", err)
	}

	users := make([]models.NewUser, 0, len(f.Users))
	seen := make(map[string]bool, len(f.Users))
	for i, u := range f.Users {
		email := strings.ToLower(strings.TrimSpace(u.Email))
		if email == "" || u.Password == "" {
			return nil, fmt.Errorf("user %d: email and password are required", i+1)
		}
		if seen[email] {
			return nil, fmt.Errorf("user %d: duplicate email %s", i+1, email)
		}
		seen[email] = true

		role := models.Role(u.Role)
		if u.Role == "" {
			role = models.RoleEmployee
		}
		if !role.Valid() {
			return nil, fmt.Errorf("user %d: unknown role %q", i+1, u.Role)
		}

		users = append(users, models.NewUser{
			Email:     email,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Role:      role,
			Password:  u.Password,
		})
	}
	return users, nil
}
