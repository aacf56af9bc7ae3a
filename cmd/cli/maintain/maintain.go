package maintain

import (
	"fmt"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"kpssquiz/cmd/cli/root"
	"kpssquiz/internal/auth"
	"kpssquiz/internal/store"
)

// ==========================
// CLI Command Init
// ==========================
func init() {
	maintainCmd := &cobra.Command{
		Use:   "maintain",
		Short: "Maintain the local user store",
		Long:  "Offline maintenance of the JSON user store: password migration, admin bootstrap, seeding.",
	}

	maintainCmd.AddCommand(
		migrateCmd(),
		bootstrapAdminCmd(),
		seedCmd(),
	)
	root.GetRoot().AddCommand(maintainCmd)
}

// ==========================
// Migrate plaintext passwords
// ==========================
func migrateCmd() *cobra.Command {
	var usersFile string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Hash any plaintext passwords in the user store",
		RunE: func(cmd *cobra.Command, args []string) error {
			st := store.NewFileStore(usersFile)
			migration := auth.NewMigrationService(st, auth.BcryptHasher{}, "", "")

			converted, total, err := migration.MigratePlaintext()
			if err != nil {
				return err
			}

			fmt.Printf("Checked %d accounts, converted %d plaintext passwords.\n", total, converted)
			return nil
		},
	}

	cmd.Flags().StringVar(&usersFile, "users-file", "kullanicilar.json", "Path to the JSON user store")
	return cmd
}

// ==========================
// Bootstrap the first admin
// ==========================
func bootstrapAdminCmd() *cobra.Command {
	var usersFile, username, password string

	cmd := &cobra.Command{
		Use:   "bootstrap-admin",
		Short: "Create the first admin account when none exists",
		RunE: func(cmd *cobra.Command, args []string) error {
			st := store.NewFileStore(usersFile)
			migration := auth.NewMigrationService(st, auth.BcryptHasher{}, username, password)

			created, err := migration.BootstrapFirstAdmin()
			if err != nil {
				return err
			}
			if !created {
				fmt.Println("An admin already exists, nothing to do.")
				return nil
			}

			fmt.Printf("Admin account %q created.\n", username)
			return nil
		},
	}

	cmd.Flags().StringVar(&usersFile, "users-file", "kullanicilar.json", "Path to the JSON user store")
	cmd.Flags().StringVar(&username, "username", "admin", "Admin username")
	cmd.Flags().StringVar(&password, "password", "Admin123!", "Admin password")
	return cmd
}

// ==========================
// Seed fake users
// ==========================
func seedCmd() *cobra.Command {
	var usersFile, password string
	var count int

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill the user store with generated accounts for local testing",
		RunE: func(cmd *cobra.Command, args []string) error {
			st := store.NewFileStore(usersFile)
			// MinCost keeps seeding a few hundred accounts fast; these are
			// throwaway local users, not production credentials.
			accounts := auth.NewAccountService(st, auth.BcryptHasher{Cost: bcrypt.MinCost}, nil)

			created := 0
			for i := 0; i < count; i++ {
				username := gofakeit.Username()
				if _, err := accounts.Register(username, gofakeit.Name(), password, false); err != nil {
					// Generated usernames can collide; skip and move on.
					continue
				}
				created++
			}

			fmt.Printf("Seeded %d accounts into %s (password %q).\n", created, usersFile, password)
			return nil
		},
	}

	cmd.Flags().StringVar(&usersFile, "users-file", "kullanicilar.json", "Path to the JSON user store")
	cmd.Flags().StringVar(&password, "password", "Passw0rd", "Password for every seeded account")
	cmd.Flags().IntVar(&count, "count", 20, "How many accounts to create")
	return cmd
}
