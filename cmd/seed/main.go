// Seed is the operator CLI for the consultdesk database.
//
//	seed migrate
//	seed create-user --email x@y --password secret --role counselor --name "Sara Ali"
//	APP_ENV=development seed demo --count 25 --confirm
//	seed verify --since 2024-01-01
//
// demo refuses to run unless APP_ENV=development and --confirm is given.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"consultdesk/internal/config"
	"consultdesk/internal/db"
	"consultdesk/internal/logger"
	"consultdesk/internal/models"
	"consultdesk/internal/scheduling"

	"github.com/alecthomas/kong"
	"golang.org/x/crypto/bcrypt"
)

type runContext struct {
	ctx  context.Context
	cfg  *config.Config
	conn *sql.DB
}

type MigrateCmd struct{}

func (c *MigrateCmd) Run(rc *runContext) error {
	if err := db.RunMigrations(rc.ctx, rc.conn); err != nil {
		return err
	}
	logger.Info("Migrations applied")
	return nil
}

type CreateUserCmd struct {
	Email    string `required:"" help:"Login email."`
	Password string `required:"" help:"Plain text password; stored as a bcrypt hash."`
	Role     string `default:"counselor" enum:"admin,counselor,frontdesk" help:"User role."`
	Name     string `required:"" help:"Full name."`
}

func (c *CreateUserCmd) Run(rc *runContext) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(c.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user, err := models.CreateUser(rc.ctx, rc.conn, strings.ToLower(strings.TrimSpace(c.Email)), string(hash), c.Role, c.Name)
	if err != nil {
		return err
	}
	logger.Info("Created user", "id", user.ID, "email", user.Email, "role", user.Role)
	return nil
}

type DemoCmd struct {
	Count   int  `default:"25" help:"Number of demo leads."`
	Confirm bool `help:"Required to write demo data."`
}

var demoCounselors = []models.Counselor{
	{FullName: "Sara Ali", Email: "sara.ali@consultdesk.test"},
	{FullName: "Omar Nasser", Email: "omar.nasser@consultdesk.test"},
	{FullName: "Lina Haddad", Email: "lina.haddad@consultdesk.test"},
}

var demoCountries = []models.Country{
	{Code: "GB", Name: "United Kingdom"},
	{Code: "CA", Name: "Canada"},
	{Code: "AU", Name: "Australia"},
	{Code: "DE", Name: "Germany"},
}

var demoNames = []string{
	"Amina Yusuf", "Karim Haddad", "Noor Saleh", "Yousef Tarek", "Maya Fares",
	"Hassan Odeh", "Rania Khalil", "Ziad Mansour", "Layla Hamdan", "Tariq Jaber",
}

// demoTimes are tried in order per counselor and day; clashes are skipped.
var demoTimes = []string{"09:00", "10:00", "11:30", "13:00", "14:30", "16:00"}

func (c *DemoCmd) Run(rc *runContext) error {
	if os.Getenv("APP_ENV") != "development" {
		return errors.New("demo can only run with APP_ENV=development")
	}
	if !c.Confirm {
		return fmt.Errorf("--confirm is required (seed demo --count %d --confirm)", c.Count)
	}
	if c.Count < 1 {
		return errors.New("--count must be at least 1")
	}

	for i := range demoCountries {
		country := demoCountries[i]
		if err := models.CreateCountry(rc.ctx, rc.conn, &country); err != nil && !models.IsConflict(err) {
			return err
		}
	}

	counselors := make([]*models.Counselor, 0, len(demoCounselors))
	for i := range demoCounselors {
		counselor := demoCounselors[i]
		if err := models.CreateCounselor(rc.ctx, rc.conn, &counselor); err != nil {
			if !models.IsConflict(err) {
				return err
			}
			logger.Warn("Counselor already exists, skipping", "email", counselor.Email)
			continue
		}
		counselors = append(counselors, &counselor)
	}
	if len(counselors) == 0 {
		return errors.New("demo counselors already exist; nothing to assign")
	}

	scheduler := scheduling.NewScheduler(scheduling.NewPostgresStore(rc.conn))
	date := nextWeekday(time.Now().In(rc.cfg.Location())).Format("2006-01-02")
	duration := 45
	booked := 0

	for i := 0; i < c.Count; i++ {
		lead := &models.Lead{
			FullName:          fmt.Sprintf("%s %d", demoNames[i%len(demoNames)], i+1),
			Phone:             fmt.Sprintf("+9627%08d", time.Now().UnixNano()%100000000+int64(i)),
			Source:            models.NullString("demo"),
			InterestedCountry: models.NullString(demoCountries[i%len(demoCountries)].Code),
		}
		if err := models.CreateLead(rc.ctx, rc.conn, lead); err != nil {
			return err
		}

		counselor := counselors[i%len(counselors)]
		subject := models.LeadSubject(lead.ID)
		if _, err := models.AssignCounselor(rc.ctx, rc.conn, counselor.ID, subject); err != nil {
			return err
		}

		start := demoTimes[(i/len(counselors))%len(demoTimes)]
		_, err := scheduler.Schedule(rc.ctx, scheduling.Request{
			CounselorID:     counselor.ID,
			Subject:         subject,
			Date:            date,
			StartTime:       start,
			DurationMinutes: &duration,
			Notes:           "Intro call (demo)",
		})
		switch {
		case err == nil:
			booked++
		case models.IsConflict(err):
			logger.Debug("Demo slot taken", "counselor", counselor.FullName, "start", start)
		default:
			return err
		}
	}

	logger.Info("Demo data seeded", "leads", c.Count, "counselors", len(counselors), "meetings", booked, "date", date)
	return nil
}

// nextWeekday returns the next day after t that is not Friday or Saturday.
func nextWeekday(t time.Time) time.Time {
	d := t.AddDate(0, 0, 1)
	for d.Weekday() == time.Friday || d.Weekday() == time.Saturday {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

type VerifyCmd struct {
	Since string `help:"Only check meetings on or after this date (YYYY-MM-DD). Defaults to today."`
}

// Run re-checks stored meetings for overlaps and out-of-hours bookings and
// fails when any are found.
func (c *VerifyCmd) Run(rc *runContext) error {
	since := c.Since
	if since == "" {
		since = time.Now().In(rc.cfg.Location()).Format("2006-01-02")
	}
	meetings, err := models.ListActiveMeetingsSince(rc.ctx, rc.conn, since)
	if err != nil {
		return err
	}

	violations := scheduling.Audit(meetings)
	for _, v := range violations {
		logger.Warn("Meeting violates booking rules",
			"meeting", v.MeetingID, "counselor", v.CounselorID, "date", v.Date, "reason", v.Reason)
	}
	logger.Info("Verified meetings", "since", since, "checked", len(meetings), "violations", len(violations))
	if len(violations) > 0 {
		return fmt.Errorf("%d meeting(s) violate booking rules", len(violations))
	}
	return nil
}

var CLI struct {
	Debug bool `help:"Verbose logging."`

	Migrate    MigrateCmd    `cmd:"" help:"Apply database migrations."`
	CreateUser CreateUserCmd `cmd:"" help:"Create a staff login."`
	Demo       DemoCmd       `cmd:"" help:"Insert demo counselors, leads and meetings."`
	Verify     VerifyCmd     `cmd:"" help:"Audit stored meetings for overlaps and out-of-hours bookings."`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name("seed"),
		kong.Description("consultdesk database tooling"),
		kong.UsageOnError(),
	)

	cfg := config.Load()
	if err := logger.Init(logger.Config{Debug: CLI.Debug || cfg.Debug, LogDir: cfg.LogDir}); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialise logger: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	conn, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close()

	if err := kctx.Run(&runContext{ctx: ctx, cfg: cfg, conn: conn}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
