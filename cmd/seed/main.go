package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"agritrade-backend/internal/auth"
	"agritrade-backend/internal/blogs"
	"agritrade-backend/internal/config"
	"agritrade-backend/internal/db"
	"agritrade-backend/internal/inquiries"
	"agritrade-backend/internal/products"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type env struct {
	cfg    *config.Config
	client *mongo.Client
	cols   *db.Collections
	log    *slog.Logger
}

func connect(ctx context.Context) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	client, cols, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return nil, fmt.Errorf("mongo: %w", err)
	}
	if err := db.EnsureIndexes(ctx, cols); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("indexes: %w", err)
	}
	return &env{
		cfg:    cfg,
		client: client,
		cols:   cols,
		log:    slog.New(slog.NewTextHandler(os.Stderr, nil)),
	}, nil
}

func (e *env) close() {
	_ = e.client.Disconnect(context.Background())
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "seed",
		Short:        "Maintenance tasks for the agritrade backend",
		SilenceUsage: true,
	}
	cmd.AddCommand(catalogCmd(), adminCmd(), exportCmd())
	return cmd
}

func catalogCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Upsert products and blog posts from a YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := loadCatalog(file)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			e, err := connect(ctx)
			if err != nil {
				return err
			}
			defer e.close()

			productService := products.NewService(products.NewRepository(e.cols.Products), nil, 0, e.cfg.Timezone)
			n, err := productService.Import(ctx, cat.Products)
			if err != nil {
				return fmt.Errorf("products: %w", err)
			}
			e.log.Info("catalog seed: products", slog.Int("count", n))

			blogService := blogs.NewService(blogs.NewRepository(e.cols.Blogs), nil, 0, e.cfg.Timezone)
			n, err = blogService.Import(ctx, cat.Blogs)
			if err != nil {
				return fmt.Errorf("blogs: %w", err)
			}
			e.log.Info("catalog seed: blogs", slog.Int("count", n))
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "catalog.yaml", "catalog YAML file")
	return cmd
}

func adminCmd() *cobra.Command {
	var (
		email       string
		name        string
		passwordEnv string
	)
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Create an admin user or reset its password",
		Long: `Creates the admin user or resets its password. The password is read
from the environment variable named by --password-env so it never appears in
shell history. Signing in also requires the address to be in ADMIN_ALLOWLIST.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			email = strings.TrimSpace(email)
			if email == "" {
				return errors.New("--email is required")
			}
			password := os.Getenv(passwordEnv)
			if len(password) < 8 {
				return fmt.Errorf("%s must hold a password of at least 8 characters", passwordEnv)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
			defer cancel()
			e, err := connect(ctx)
			if err != nil {
				return err
			}
			defer e.close()

			if err := auth.NewUserStore(e.cols.Users).Upsert(ctx, email, name, password, time.Now().In(e.cfg.Timezone)); err != nil {
				return err
			}
			sessions := auth.NewSessions(nil, nil, e.cfg.AdminAllowlist)
			if !sessions.Allowed(email) {
				e.log.Warn("admin seed: address is not in ADMIN_ALLOWLIST, sign-in will be refused", slog.String("email", email))
			}
			e.log.Info("admin seed: ok", slog.String("email", email))
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "admin email address")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&passwordEnv, "password-env", "ADMIN_PASSWORD", "environment variable holding the password")
	return cmd
}

func exportCmd() *cobra.Command {
	var (
		out    string
		status string
		query  string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write inquiries to a CSV file",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
			defer cancel()
			e, err := connect(ctx)
			if err != nil {
				return err
			}
			defer e.close()

			svc := inquiries.NewService(inquiries.NewRepository(e.cols.Inquiries), e.cfg.Timezone, nil, nil, inquiries.ReplyConfig{})
			body, filename, err := svc.Export(ctx, inquiries.ListFilter{Query: query, Status: inquiries.Status(status)})
			if err != nil {
				return err
			}
			if out == "" {
				out = filename
			}
			if out == "-" {
				_, err = os.Stdout.Write(body)
				return err
			}
			if err := os.WriteFile(out, body, 0o644); err != nil {
				return err
			}
			e.log.Info("export: ok", slog.String("file", out))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file, - for stdout (default inquiries_export_<date>.csv)")
	cmd.Flags().StringVar(&status, "status", "", "only export this status")
	cmd.Flags().StringVarP(&query, "query", "q", "", "free-text search")
	return cmd
}
