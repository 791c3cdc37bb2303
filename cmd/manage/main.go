// Command manage runs one-off account and configuration tasks against the database.
//
//	manage create-admin   [--name N] [--email E] [--password P]
//	manage reset-password [--email E] [--password P]
//	manage show-user      [--email E]
//	manage check-config
//
// Values not given as flags are prompted for on stdin.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/curriculum"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/logging"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/services"
	"gorm.io/gorm"
)

const usage = `usage: manage <command> [flags]

commands:
  create-admin     create an admin account or promote an existing one
  reset-password   set a new password and revoke refresh tokens
  show-user        print an account with its profile and progress
  check-config     report missing settings and test the database
`

type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// ask returns value when set, otherwise reads a line from stdin.
func (p *prompter) ask(label, value string) (string, error) {
	if value != "" {
		return value, nil
	}
	fmt.Fprintf(p.out, "%s: ", label)
	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("failed to read %s: %w", strings.ToLower(label), err)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", fmt.Errorf("%s is required", strings.ToLower(label))
	}
	return line, nil
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg := config.Load()
	logging.Setup(cfg.LogLevel)

	p := &prompter{in: bufio.NewReader(os.Stdin), out: os.Stdout}
	ctx := context.Background()

	var err error
	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "create-admin":
		err = createAdmin(ctx, cfg, p, args)
	case "reset-password":
		err = resetPassword(ctx, cfg, p, args)
	case "show-user":
		err = showUser(ctx, cfg, p, args)
	case "check-config":
		err = checkConfig(cfg, os.Stdout)
	case "-h", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}
	if err != nil {
		slog.Error("command failed", "command", os.Args[1], "error", err)
		os.Exit(1)
	}
}

func connect(cfg *config.Config) (*gorm.DB, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.MigrateShared(db); err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("shared migration failed: %w", err)
	}
	return db, nil
}

func createAdmin(ctx context.Context, cfg *config.Config, p *prompter, args []string) error {
	fs := flag.NewFlagSet("create-admin", flag.ExitOnError)
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "login email")
	password := fs.String("password", "", "password (min 8 characters)")
	_ = fs.Parse(args)

	var err error
	if *name, err = p.ask("Name", *name); err != nil {
		return err
	}
	if *email, err = p.ask("Email", *email); err != nil {
		return err
	}
	if *password, err = p.ask("Password", *password); err != nil {
		return err
	}

	db, err := connect(cfg)
	if err != nil {
		return err
	}
	defer database.Close(db)

	auth := services.NewAuthService(db, cfg, nil)
	user, err := auth.CreateAdmin(ctx, *name, *email, *password)
	if err != nil {
		return err
	}
	fmt.Fprintf(p.out, "admin ready: %s <%s> id=%s\n", user.Name, user.Email, user.ID)
	return nil
}

func resetPassword(ctx context.Context, cfg *config.Config, p *prompter, args []string) error {
	fs := flag.NewFlagSet("reset-password", flag.ExitOnError)
	email := fs.String("email", "", "login email")
	password := fs.String("password", "", "new password (min 8 characters)")
	_ = fs.Parse(args)

	var err error
	if *email, err = p.ask("Email", *email); err != nil {
		return err
	}
	if *password, err = p.ask("New password", *password); err != nil {
		return err
	}

	db, err := connect(cfg)
	if err != nil {
		return err
	}
	defer database.Close(db)

	if err := services.NewAuthService(db, cfg, nil).SetPassword(ctx, *email, *password); err != nil {
		return err
	}
	fmt.Fprintf(p.out, "password updated for %s, existing sessions revoked\n", *email)
	return nil
}

func showUser(ctx context.Context, cfg *config.Config, p *prompter, args []string) error {
	fs := flag.NewFlagSet("show-user", flag.ExitOnError)
	email := fs.String("email", "", "login email")
	_ = fs.Parse(args)

	var err error
	if *email, err = p.ask("Email", *email); err != nil {
		return err
	}

	db, err := connect(cfg)
	if err != nil {
		return err
	}
	defer database.Close(db)

	var user models.User
	err = db.WithContext(ctx).Preload("Profile").
		Where("email = ?", strings.ToLower(strings.TrimSpace(*email))).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return services.ErrUserNotFound
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(p.out, "id:         %s\n", user.ID)
	fmt.Fprintf(p.out, "name:       %s\n", user.Name)
	fmt.Fprintf(p.out, "email:      %s\n", user.Email)
	fmt.Fprintf(p.out, "role:       %s\n", user.Role)
	fmt.Fprintf(p.out, "active:     %t\n", user.IsActive)
	fmt.Fprintf(p.out, "created:    %s\n", user.CreatedAt.Format("2006-01-02 15:04"))
	if user.LastLoginAt != nil {
		fmt.Fprintf(p.out, "last login: %s\n", user.LastLoginAt.Format("2006-01-02 15:04"))
	}
	if user.Profile != nil {
		fmt.Fprintf(p.out, "age group:  %s\n", user.Profile.AgeGroup)
		fmt.Fprintf(p.out, "daily goal: %d min\n", user.Profile.DailyGoalMinutes)
	}

	var progress []models.CategoryProgress
	if err := db.WithContext(ctx).Where("user_id = ?", user.ID).Order("category ASC").Find(&progress).Error; err != nil {
		return err
	}
	for _, row := range progress {
		fmt.Fprintf(p.out, "progress:   %-18s level %d, %d points, %d%% complete\n",
			row.Category, row.Level, row.TotalPoints, row.ProgressPercentage)
	}
	return nil
}

func checkConfig(cfg *config.Config, out io.Writer) error {
	ok := true
	if missing := cfg.Validate(); len(missing) > 0 {
		ok = false
		fmt.Fprintf(out, "missing:    %s\n", strings.Join(missing, ", "))
	}
	if cfg.AdminToken == "" && cfg.AdminEmails == "" && cfg.AdminUserIDs == "" {
		fmt.Fprintln(out, "warning:    no ADMIN_TOKEN, ADMIN_EMAILS or ADMIN_USER_IDS; only role=admin users reach /api/admin")
	}

	registry, err := curriculum.Load(cfg.CategoriesConfigPath)
	if err != nil {
		ok = false
		fmt.Fprintf(out, "categories: %v\n", err)
	} else {
		fmt.Fprintf(out, "categories: %d loaded\n", len(registry.All()))
	}

	if cfg.RedisURL != "" {
		client, err := services.NewRedisClient(context.Background(), cfg.RedisURL)
		if err != nil {
			fmt.Fprintf(out, "redis:      %v (leaderboard falls back to the database)\n", err)
		} else {
			_ = client.Close()
			fmt.Fprintln(out, "redis:      ok")
		}
	}

	db, err := database.Connect(cfg)
	if err == nil {
		err = database.Ping(db)
		_ = database.Close(db)
	}
	if err != nil {
		ok = false
		fmt.Fprintf(out, "database:   %v\n", err)
	} else {
		fmt.Fprintln(out, "database:   ok")
	}

	if !ok {
		return errors.New("configuration has problems")
	}
	fmt.Fprintln(out, "config looks good")
	return nil
}
