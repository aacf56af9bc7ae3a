package users

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"kpssquiz/cmd/cli/config"
	"kpssquiz/cmd/cli/output"
	"kpssquiz/cmd/cli/root"
	"kpssquiz/internal/models"
)

const tokenFileName = ".kpss_token"

// ==========================
// CLI Command Init
// ==========================
func init() {
	usersCmd := &cobra.Command{
		Use:   "users",
		Short: "Manage users and authentication",
		Long: `Register or login a user to the quiz API.
Stores the session token locally for future commands.`,
	}

	usersCmd.AddCommand(
		registerCmd(),
		loginCmd(),
		logoutCmd(),
		listUsersCmd(),
		promoteUserCmd(),
		deleteUserCmd(),
	)
	root.GetRoot().AddCommand(usersCmd)
}

// ==========================
// Register
// ==========================
func registerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register",
		Short: "Register a new user",
		Long:  "Register a new user with username, display name and password.",
		RunE:  runRegister,
	}
}

func runRegister(cmd *cobra.Command, args []string) error {
	var username, displayName, password string
	fmt.Print("Username: ")
	fmt.Scanln(&username)
	fmt.Print("Display name: ")
	fmt.Scanln(&displayName)
	fmt.Print("Password: ")
	fmt.Scanln(&password)

	payload := map[string]string{
		"username":     username,
		"display_name": displayName,
		"password":     password,
	}
	body, _ := json.Marshal(payload)

	resp, err := http.Post(config.APIURL()+"/auth/register", "application/json", bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API error: %s", string(b))
	}

	fmt.Println("User registered successfully! You can now login.")
	return nil
}

// ==========================
// Login
// ==========================
func loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Login an existing user",
		Long:  "Login and save the session token locally for future CLI commands.",
		RunE:  runLogin,
	}
}

func runLogin(cmd *cobra.Command, args []string) error {
	var username, password string
	fmt.Print("Username: ")
	fmt.Scanln(&username)
	fmt.Print("Password: ")
	fmt.Scanln(&password)

	payload := map[string]string{
		"username": username,
		"password": password,
	}
	body, _ := json.Marshal(payload)

	resp, err := http.Post(config.APIURL()+"/auth/login", "application/json", bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API error: %s", string(b))
	}

	var result struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return err
	}
	if result.Token == "" {
		return fmt.Errorf("token not returned by API")
	}

	if err := saveToken(result.Token); err != nil {
		return err
	}

	fmt.Println("Login successful! Session token saved locally.")
	return nil
}

// ==========================
// Logout
// ==========================
func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Logout current user",
		Long:  "Invalidate the session on the server and remove the locally saved token.",
		RunE:  runLogout,
	}
}

func runLogout(cmd *cobra.Command, args []string) error {
	token, err := LoadToken()
	if err != nil {
		fmt.Println("No user logged in.")
		return nil
	}

	// Best effort: the local token is removed even when the server call fails.
	req, _ := http.NewRequest("POST", config.APIURL()+"/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	if resp, err := http.DefaultClient.Do(req); err == nil {
		resp.Body.Close()
	}

	if err := os.Remove(tokenPath()); err != nil {
		return err
	}

	fmt.Println("Logged out successfully.")
	return nil
}

// ==========================
// List (admin)
// ==========================
func listUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users (admin)",
		Run: func(cmd *cobra.Command, args []string) {
			profiles, err := fetchUsers()
			if err != nil {
				fmt.Println(err)
				return
			}

			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				data, _ := json.MarshalIndent(profiles, "", "  ")
				fmt.Println(string(data))
				return
			}

			rows := make([][]interface{}, 0, len(profiles))
			for _, p := range profiles {
				admin := ""
				if p.IsAdmin {
					admin = "yes"
				}
				lastLogin := "-"
				if p.LastLogin != nil {
					lastLogin = p.LastLogin.Format("2006-01-02 15:04")
				}
				rows = append(rows, []interface{}{p.Username, p.DisplayName, admin, lastLogin})
			}
			output.RenderTable([]string{"Username", "Display Name", "Admin", "Last Login"}, rows)
		},
	}
	cmd.Flags().Bool("json", false, "Output raw JSON instead of a table")
	return cmd
}

func fetchUsers() ([]models.Profile, error) {
	token, err := LoadToken()
	if err != nil {
		return nil, fmt.Errorf("please login first")
	}

	req, _ := http.NewRequest("GET", config.APIURL()+"/users", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API error: %s", string(b))
	}

	var profiles []models.Profile
	if err := json.NewDecoder(resp.Body).Decode(&profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

// ==========================
// Promote (admin)
// ==========================
func promoteUserCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "promote <username>",
		Short: "Grant admin rights to a user (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := LoadToken()
			if err != nil {
				return fmt.Errorf("please login first")
			}

			req, _ := http.NewRequest("POST", config.APIURL()+"/users/"+args[0]+"/promote", nil)
			req.Header.Set("Authorization", "Bearer "+token)

			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				b, _ := io.ReadAll(resp.Body)
				return fmt.Errorf("API error: %s", string(b))
			}

			fmt.Printf("User %q is now an admin.\n", args[0])
			return nil
		},
	}
}

// ==========================
// Delete (admin)
// ==========================
func deleteUserCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <username>",
		Short: "Delete a user account (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := LoadToken()
			if err != nil {
				return fmt.Errorf("please login first")
			}

			req, _ := http.NewRequest("DELETE", config.APIURL()+"/users/"+args[0], nil)
			req.Header.Set("Authorization", "Bearer "+token)

			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusNoContent {
				b, _ := io.ReadAll(resp.Body)
				return fmt.Errorf("API error: %s", string(b))
			}

			fmt.Printf("User %q deleted.\n", args[0])
			return nil
		},
	}
}

// ==========================
// Token Storage Helpers
// ==========================
func saveToken(token string) error {
	return os.WriteFile(tokenPath(), []byte(token), 0600)
}

func LoadToken() (string, error) {
	data, err := os.ReadFile(tokenPath())
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func tokenPath() string {
	dir, _ := os.UserHomeDir()
	return filepath.Join(dir, tokenFileName)
}
