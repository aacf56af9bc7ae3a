package quizcmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"

	"github.com/spf13/cobra"

	"kpssquiz/cmd/cli/config"
	"kpssquiz/cmd/cli/output"
	"kpssquiz/cmd/cli/root"
	"kpssquiz/cmd/cli/users"
)

// ==========================
// CLI Command Init
// ==========================
func init() {
	quizCmd := &cobra.Command{
		Use:   "quiz",
		Short: "Browse the question bank and your results",
	}

	quizCmd.AddCommand(
		subjectsCmd(),
		statsCmd(),
	)
	root.GetRoot().AddCommand(quizCmd)
}

// ==========================
// Subjects
// ==========================
func subjectsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "subjects",
		Short: "List available subjects",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := http.Get(config.APIURL() + "/quiz/subjects")
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			var out struct {
				Subjects []string `json:"subjects"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
				return err
			}

			for _, s := range out.Subjects {
				fmt.Println(s)
			}
			return nil
		},
	}
}

// ==========================
// Stats
// ==========================
func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show your overall results",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := users.LoadToken()
			if err != nil {
				return fmt.Errorf("please login first")
			}

			req, _ := http.NewRequest("GET", config.APIURL()+"/quiz/stats", nil)
			req.Header.Set("Authorization", "Bearer "+token)

			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("API error: status %d", resp.StatusCode)
			}

			var stats struct {
				Dogru       int `json:"dogru"`
				Yanlis      int `json:"yanlis"`
				Toplam      int `json:"toplam"`
				BasariYuzde int `json:"basari_yuzde"`
				Dersler     map[string]struct {
					Dogru       int `json:"dogru"`
					Yanlis      int `json:"yanlis"`
					Toplam      int `json:"toplam"`
					BasariYuzde int `json:"basari_yuzde"`
				} `json:"dersler"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
				return err
			}

			subjects := make([]string, 0, len(stats.Dersler))
			for s := range stats.Dersler {
				subjects = append(subjects, s)
			}
			sort.Strings(subjects)

			rows := make([][]interface{}, 0, len(subjects)+1)
			for _, s := range subjects {
				d := stats.Dersler[s]
				rows = append(rows, []interface{}{s, d.Dogru, d.Yanlis, d.Toplam, fmt.Sprintf("%%%d", d.BasariYuzde)})
			}
			rows = append(rows, []interface{}{"TOPLAM", stats.Dogru, stats.Yanlis, stats.Toplam, fmt.Sprintf("%%%d", stats.BasariYuzde)})

			output.RenderTable([]string{"Ders", "Doğru", "Yanlış", "Toplam", "Başarı"}, rows)
			return nil
		},
	}
}
