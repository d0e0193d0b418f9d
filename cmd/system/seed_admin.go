package system

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/service/user"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/internal/store"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/pkg/authorize"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/pkg/database"
	"github.com/dentaldiamondhn-bit/diamond-link-sub001/pkg/util/password"
)

// NewSeedAdminCommand creates the first administrator. Every later account
// is created through the API by an admin.
func NewSeedAdminCommand() *cobra.Command {
	var (
		email    string
		fullName string
		pass     string
	)

	cmd := &cobra.Command{
		Use:   "seed-admin",
		Short: "Create an administrator account",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			db, err := database.NewDriver(cfg.Database)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer db.Close()

			generated := pass == ""
			if generated {
				pass = password.Generate(20)
			}

			client := store.NewClient(db.Driver())
			hasher := password.NewHasher(password.FromCentralConfig(cfg.Password))
			svc := user.New(client.User, hasher, nil)

			u, err := svc.Create(context.Background(), user.CreateRequest{
				Email:    email,
				FullName: fullName,
				Password: pass,
				Role:     string(authorize.RoleAdmin),
			})
			if errors.Is(err, user.ErrEmailAlreadyExists) {
				fmt.Printf("User %s already exists, nothing to do.\n", strings.ToLower(email))
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to create admin: %w", err)
			}

			fmt.Printf("Admin %s created (%s).\n", u.Email, u.ID)
			if generated {
				fmt.Printf("Generated password: %s\n", pass)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Admin email")
	cmd.Flags().StringVar(&fullName, "name", "Administrador", "Admin full name")
	cmd.Flags().StringVar(&pass, "password", "", "Admin password (generated when empty)")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}
