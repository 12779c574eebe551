package main

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/bwise1/complaint_portal/config"
	"github.com/bwise1/complaint_portal/internal/db"
	api "github.com/bwise1/complaint_portal/internal/http/rest"
	"github.com/bwise1/complaint_portal/internal/model"
	"github.com/bwise1/complaint_portal/util"
	"github.com/spf13/cobra"
)

//go:embed categories.json
var defaultCategories []byte

type seedCategory struct {
	model.Category
	SubCategories []model.SubCategory `json:"sub_categories"`
}

var seedFile string

var seedCategoriesCmd = &cobra.Command{
	Use:   "seed-categories",
	Short: "Insert complaint categories and sub categories",
	RunE:  runSeedCategories,
}

var promoteAdminCmd = &cobra.Command{
	Use:   "promote-admin <email>",
	Short: "Give an existing user the admin role",
	Args:  cobra.ExactArgs(1),
	RunE:  runPromoteAdmin,
}

func init() {
	seedCategoriesCmd.Flags().StringVarP(&seedFile, "file", "f", "", "JSON file with categories (defaults to the built in set)")
}

func openRepo() (*api.Repo, func(), error) {
	cfg := config.New()
	if cfg.Dsn == "" {
		return nil, nil, fmt.Errorf("config: DSN is required")
	}
	database, err := db.New(cfg.Dsn)
	if err != nil {
		return nil, nil, err
	}
	return api.NewRepo(database), database.Close, nil
}

func loadSeed() ([]seedCategory, error) {
	data := defaultCategories
	if seedFile != "" {
		b, err := os.ReadFile(seedFile)
		if err != nil {
			return nil, err
		}
		data = b
	}

	var categories []seedCategory
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&categories); err != nil {
		return nil, fmt.Errorf("parse categories: %w", err)
	}
	return categories, nil
}

func runSeedCategories(cmd *cobra.Command, _ []string) error {
	categories, err := loadSeed()
	if err != nil {
		return err
	}

	repo, closeDB, err := openRepo()
	if err != nil {
		return err
	}
	defer closeDB()

	for _, c := range categories {
		if err := repo.SeedCategory(cmd.Context(), c.Category, c.SubCategories); err != nil {
			return fmt.Errorf("seed %q: %w", c.Title, err)
		}
		log.Printf("[Seed]: %s (%d sub categories)", c.Title, len(c.SubCategories))
	}
	return nil
}

func runPromoteAdmin(cmd *cobra.Command, args []string) error {
	email := util.NormalizeEmail(args[0])
	if !util.IsEmail(email) {
		return fmt.Errorf("%q is not an email address", args[0])
	}

	repo, closeDB, err := openRepo()
	if err != nil {
		return err
	}
	defer closeDB()

	if err := repo.SetUserRole(cmd.Context(), email, model.RoleAdmin); err != nil {
		return fmt.Errorf("promote %s: %w", email, err)
	}
	log.Printf("[Admin]: %s is now an admin", email)
	return nil
}
