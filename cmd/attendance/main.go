package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"

	"github.com/pavelanni/attendance/internal/handler"
	appI18n "github.com/pavelanni/attendance/internal/i18n"
	"github.com/pavelanni/attendance/internal/llm"
	"github.com/pavelanni/attendance/internal/llm/prompts"
	"github.com/pavelanni/attendance/internal/model"
	"github.com/pavelanni/attendance/internal/report"
	"github.com/pavelanni/attendance/internal/roster"
	"github.com/pavelanni/attendance/internal/store"
	"github.com/pavelanni/attendance/internal/wizard"
)

func main() {
	// A missing .env is normal outside development.
	_ = godotenv.Load()
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "attendance",
		Short: "Sabbath school attendance and missionary activity recorder",
	}

	serve := serveCmd()
	root.AddCommand(serve, exportCmd(), importCmd())

	// Make "serve" the default when no subcommand is given.
	root.RunE = serve.RunE
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

func addCommonFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("db", "attendance.db", "SQLite database path")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE:  runServe,
	}
	addCommonFlags(cmd)
	f := cmd.Flags()
	f.StringP("addr", "a", ":8080", "HTTP listen address")
	f.StringSliceP("roster", "r", nil, "Roster files (.json or .xlsx) to import at startup (repeatable)")
	f.StringP("lang", "l", "pt", "Default UI language (en, pt)")
	f.String("timezone", "America/Sao_Paulo", "Time zone that decides the recording date")
	f.Int("recent-days", 7, "Days to look back for earlier records of a class")
	f.String("llm-url", "", "OpenAI-compatible API base URL (empty disables summaries)")
	f.String("llm-key", "ollama", "API key for LLM")
	f.String("llm-model", "llama3.2", "LLM model name")
	f.String("summary-tone", string(prompts.ToneStandard), "Report summary tone (brief, standard, detailed)")
	f.String("base-path", "", "URL prefix for sub-path deployments (e.g. /escola)")
	f.Bool("secure-cookies", true, "Set Secure flag on session cookies")
	f.String("admin-password", "", "Initial admin password (or set ATTENDANCE_ADMIN_PASSWORD)")
	f.Duration("session-cleanup", time.Hour, "Interval between expired session sweeps")
	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export an attendance report for a date or trimester",
		RunE:  runExport,
	}
	addCommonFlags(cmd)
	f := cmd.Flags()
	f.String("date", "", "Report date in YYYY-MM-DD format")
	f.String("trimester", "", "Report trimester, e.g. 2026-T3")
	f.String("format", "json", "Output format (json, xlsx)")
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	f.StringP("lang", "l", "pt", "Language for titles and headers (en, pt)")
	cmd.MarkFlagsMutuallyExclusive("date", "trimester")
	cmd.MarkFlagsOneRequired("date", "trimester")
	return cmd
}

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import FILE...",
		Short: "Import class rosters from JSON or XLSX files",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runImport,
	}
	addCommonFlags(cmd)
	cmd.Flags().Bool("force", false, "Import even when the file was imported before")
	return cmd
}

func setupLogging(v *viper.Viper) {
	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("ATTENDANCE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("attendance")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/attendance")
	v.AddConfigPath("/etc/attendance")
	v.AddConfigPath("/data")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

func runServe(cmd *cobra.Command, _ []string) error {
	v := viperForCmd(cmd)
	setupLogging(v)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := seedAdmin(db, v.GetString("admin-password")); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if err := importRosters(cmd.Context(), db, v.GetStringSlice("roster"), false); err != nil {
		return fmt.Errorf("import rosters: %w", err)
	}

	lang := v.GetString("lang")
	if err := appI18n.Init(lang); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}
	if err := prompts.Load(prompts.Templates); err != nil {
		return fmt.Errorf("load prompts: %w", err)
	}

	loc, err := time.LoadLocation(v.GetString("timezone"))
	if err != nil {
		return fmt.Errorf("load timezone: %w", err)
	}

	basePath := strings.TrimRight(v.GetString("base-path"), "/")
	if basePath != "" && !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}

	cfg := model.AppConfig{
		BasePath:      basePath,
		SecureCookies: v.GetBool("secure-cookies"),
		Location:      loc,
		RecentDays:    v.GetInt("recent-days"),
	}

	// A nil *llm.Client must not reach the interface.
	var summarizer handler.Summarizer
	if url := v.GetString("llm-url"); url != "" {
		tone := strings.ToLower(strings.TrimSpace(v.GetString("summary-tone")))
		if !prompts.IsValidTone(tone) {
			slog.Warn("invalid summary-tone, using standard", "tone", tone)
		}
		summarizer = llm.New(url, v.GetString("llm-key"), v.GetString("llm-model"), tone)
		slog.Info("report summaries enabled", "url", url, "model", v.GetString("llm-model"))
	}

	backend := store.NewWizardBackend(db, cfg.RecentDays, cfg.Now)
	wizards := wizard.NewRegistry(backend, cfg.Today, slog.Default())
	h := handler.New(db, wizards, summarizer, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go cleanupSessions(ctx, h, v.GetDuration("session-cleanup"))

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(appI18n.Middleware(lang))

	if basePath != "" {
		r.Route(basePath, h.Routes)
		r.Get(basePath, func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, basePath+"/", http.StatusMovedPermanently)
		})
	} else {
		h.Routes(r)
	}

	addr := v.GetString("addr")
	slog.Info("starting server",
		"addr", addr,
		"lang", lang,
		"timezone", loc.String(),
		"recent_days", cfg.RecentDays,
		"base_path", basePath,
		"summaries", summarizer != nil,
	)
	return http.ListenAndServe(addr, r)
}

func cleanupSessions(ctx context.Context, h *handler.Handler, every time.Duration) {
	if every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := h.SweepExpiredSessions(time.Now())
			if err != nil {
				slog.Error("cleanup expired sessions", "error", err)
				continue
			}
			if n > 0 {
				slog.Info("removed expired sessions", "count", n)
			}
		}
	}
}

func runExport(cmd *cobra.Command, _ []string) error {
	v := viperForCmd(cmd)
	setupLogging(v)

	if err := appI18n.Init(v.GetString("lang")); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	ctx := appI18n.WithLocalizer(cmd.Context(), appI18n.NewLocalizer(v.GetString("lang")))

	var rep model.Report
	if t := v.GetString("trimester"); t != "" {
		tri, err := model.ParseTrimester(t)
		if err != nil {
			return err
		}
		rep, err = report.ByTrimester(ctx, db, tri)
		if err != nil {
			return fmt.Errorf("build report: %w", err)
		}
	} else {
		rep, err = report.ByDate(ctx, db, v.GetString("date"))
		if err != nil {
			return fmt.Errorf("build report: %w", err)
		}
	}

	outPath := v.GetString("output")
	var w io.Writer
	if outPath == "" || outPath == "-" {
		w = os.Stdout
	} else {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	switch strings.ToLower(v.GetString("format")) {
	case "xlsx":
		if err := report.WriteXLSX(ctx, w, rep); err != nil {
			return fmt.Errorf("write xlsx: %w", err)
		}
	case "json":
		data, err := json.MarshalIndent(rep, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal JSON: %w", err)
		}
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		_, _ = fmt.Fprintln(w)
	default:
		return fmt.Errorf("unknown format %q", v.GetString("format"))
	}
	slog.Info("exported report", "title", rep.Title, "classes", len(rep.Classes))
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	v := viperForCmd(cmd)
	setupLogging(v)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	return importRosters(cmd.Context(), db, args, v.GetBool("force"))
}

// importRosters loads roster files, skipping files whose content was
// already imported unless force is set.
func importRosters(ctx context.Context, db *store.Store, paths []string, force bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		key := filepath.Base(path)
		hash := roster.Hash(data)
		storedHash, err := db.GetImportedFileHash(key)
		if err != nil {
			return fmt.Errorf("check import status for %s: %w", path, err)
		}
		if storedHash == hash && !force {
			slog.Info("roster file unchanged, skipping", "path", path)
			continue
		}

		entries, err := roster.Parse(path, data)
		if err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		stats, err := db.ImportRoster(ctx, entries)
		if err != nil {
			return fmt.Errorf("import %s: %w", path, err)
		}
		if err := db.SetImportedFileHash(key, hash); err != nil {
			return fmt.Errorf("record import for %s: %w", path, err)
		}
		slog.Info("imported roster", "path", path,
			"classes_created", stats.ClassesCreated,
			"students_created", stats.StudentsCreated,
			"students_skipped", stats.StudentsSkipped,
		)
	}
	return nil
}

func seedAdmin(db *store.Store, password string) error {
	count, err := db.UserCount()
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	if password == "" {
		return fmt.Errorf("admin password is required: set --admin-password flag or ATTENDANCE_ADMIN_PASSWORD env var")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	_, err = db.CreateUser(model.User{
		Username:     "admin",
		DisplayName:  "Administrator",
		PasswordHash: string(hash),
		Role:         model.UserRoleAdmin,
		Active:       true,
	})
	if err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}

	slog.Info("seeded default admin user", "username", "admin")
	return nil
}
