// campusctl is the command-line client for the campus backend's CRUD
// screens: login, semesters, bulk user creation, reference uploads, leave
// requests, the notification inbox, course feeds, assignment grading and
// gradebook export.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"campusboard/internal/api"
	"campusboard/internal/cache"
	"campusboard/internal/config"
	"campusboard/internal/credentials"
	"campusboard/internal/gradebook"
	"campusboard/internal/screens"
	"campusboard/internal/validation"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	cfg   *config.Config
	store *credentials.FileStore
}

func main() {
	cli := &commandLine{
		cfg: config.Load(),
	}
	cli.store = credentials.NewFileStore(cli.cfg.StateDir)

	if err := cli.run(os.Args); err != nil && err != errHelp {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  campusctl login -role teacher|student|admin -username NAME  - sign in and store the token")
	fmt.Println("  campusctl logout -role ROLE                                 - drop the stored token")
	fmt.Println("  campusctl semesters list|create|update|delete [flags]       - manage semesters (admin)")
	fmt.Println("  campusctl users list|import [-file FILE.csv]                - list or bulk-create users (admin)")
	fmt.Println("  campusctl refs list|upload|delete [flags]                   - manage reference documents (admin)")
	fmt.Println("  campusctl leave list|submit|cancel [flags]                  - leave requests (student)")
	fmt.Println("  campusctl inbox list|read|read-all [flags]                  - notification inbox (student)")
	fmt.Println("  campusctl feed -course ID                                   - course announcement feed (student)")
	fmt.Println("  campusctl grade -assignment ID [-submission ID -points N]   - list or grade submissions (teacher)")
	fmt.Println("  campusctl gradebook export -course ID [-out FILE]           - export the gradebook as CSV (teacher)")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	switch args[1] {
	case "login":
		return cli.login(args[2:])
	case "logout":
		return cli.logout(args[2:])
	case "semesters":
		return cli.semesters(args[2:])
	case "users":
		return cli.users(args[2:])
	case "refs":
		return cli.refs(args[2:])
	case "leave":
		return cli.leave(args[2:])
	case "inbox":
		return cli.inbox(args[2:])
	case "feed":
		return cli.feed(args[2:])
	case "grade":
		return cli.grade(args[2:])
	case "gradebook":
		return cli.gradebookCmd(args[2:])
	default:
		cli.printUsage()
		return errHelp
	}
}

// client builds an authorized API client for role, with the snapshot cache
// attached when it opens
func (cli *commandLine) client(role string) *api.Client {
	opts := []api.Option{}
	if snapshots, err := cache.Open(cli.cfg.CachePath); err == nil {
		opts = append(opts, api.WithSnapshotCache(snapshots))
	}
	return api.NewClient(cli.cfg.APIBaseURL, role, cli.store, opts...)
}

func (cli *commandLine) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), cli.cfg.RequestTimeout)
}

func (cli *commandLine) login(args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	role := fs.String("role", credentials.RoleTeacher, "account role: teacher, student or admin")
	username := fs.String("username", "", "account username")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *username == "" {
		fs.Usage()
		return errHelp
	}

	fmt.Print("Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return err
	}
	if len(pwd) == 0 {
		fs.Usage()
		return errHelp
	}

	ctx, cancel := cli.ctx()
	defer cancel()
	token, err := cli.client(*role).Login(ctx, *username, string(pwd))
	if err != nil {
		return err
	}
	if err := cli.store.Save(*role, token); err != nil {
		return err
	}

	if exp := credentials.ExpiresAt(token); !exp.IsZero() {
		fmt.Printf("signed in as %s (%s), token valid until %s\n", *username, *role, exp.Format(time.RFC1123))
	} else {
		fmt.Printf("signed in as %s (%s)\n", *username, *role)
	}
	return nil
}

func (cli *commandLine) logout(args []string) error {
	fs := flag.NewFlagSet("logout", flag.ExitOnError)
	role := fs.String("role", credentials.RoleTeacher, "account role")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := cli.store.Clear(*role); err != nil {
		return err
	}
	fmt.Printf("signed out (%s)\n", *role)
	return nil
}

func (cli *commandLine) semesters(args []string) error {
	if len(args) < 1 {
		cli.printUsage()
		return errHelp
	}
	screen := screens.NewSemesterScreen(cli.client(credentials.RoleAdmin))
	ctx, cancel := cli.ctx()
	defer cancel()

	switch args[0] {
	case "list":
		if err := screen.Load(ctx); err != nil {
			return err
		}
		for _, s := range screen.Semesters() {
			active := " "
			if s.Active {
				active = "*"
			}
			fmt.Printf("%s %-20s %s  %s – %s\n", active, s.Name, s.ID,
				s.StartDate.Format("2006-01-02"), s.EndDate.Format("2006-01-02"))
		}
		return nil

	case "create", "update":
		fs := flag.NewFlagSet("semesters "+args[0], flag.ExitOnError)
		id := fs.String("id", "", "semester id (update only)")
		name := fs.String("name", "", "semester name")
		start := fs.String("start", "", "start date (YYYY-MM-DD)")
		end := fs.String("end", "", "end date (YYYY-MM-DD)")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}

		form := validation.SemesterForm{Name: *name, StartDate: *start, EndDate: *end}
		if args[0] == "create" {
			created, fieldErrs, err := screen.Create(ctx, form)
			if err != nil {
				return err
			}
			if len(fieldErrs) > 0 {
				return formError(fieldErrs)
			}
			fmt.Println("created semester", created.ID)
			return nil
		}
		if *id == "" {
			fs.Usage()
			return errHelp
		}
		fieldErrs, err := screen.Update(ctx, *id, form)
		if err != nil {
			return err
		}
		if len(fieldErrs) > 0 {
			return formError(fieldErrs)
		}
		fmt.Println("updated semester", *id)
		return nil

	case "delete":
		fs := flag.NewFlagSet("semesters delete", flag.ExitOnError)
		id := fs.String("id", "", "semester id")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if *id == "" {
			fs.Usage()
			return errHelp
		}
		if err := screen.Delete(ctx, *id); err != nil {
			return err
		}
		fmt.Println("deleted semester", *id)
		return nil
	}
	cli.printUsage()
	return errHelp
}

func (cli *commandLine) users(args []string) error {
	if len(args) < 1 {
		cli.printUsage()
		return errHelp
	}

	if args[0] == "list" {
		ctx, cancel := cli.ctx()
		defer cancel()
		users, err := cli.client(credentials.RoleAdmin).Users(ctx)
		if err != nil {
			return err
		}
		for _, u := range users {
			fmt.Printf("%-20s %-8s %-30s %s\n", u.Username, u.Role, u.Email, u.ID)
		}
		return nil
	}

	if args[0] != "import" {
		cli.printUsage()
		return errHelp
	}
	fs := flag.NewFlagSet("users import", flag.ExitOnError)
	file := fs.String("file", "", "CSV file: username,email,role,password")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	if *file == "" {
		fs.Usage()
		return errHelp
	}

	f, err := os.Open(*file)
	if err != nil {
		return err
	}
	defer f.Close()

	screen := screens.NewBulkUserScreen(cli.client(credentials.RoleAdmin))
	rows, rowErrs, err := screen.ParseCSV(f)
	if err != nil {
		return err
	}
	if len(rowErrs) > 0 {
		for _, re := range rowErrs {
			fmt.Fprintln(os.Stderr, re.Error())
		}
		return fmt.Errorf("%d invalid rows; nothing submitted", len(rowErrs))
	}

	ctx, cancel := cli.ctx()
	defer cancel()
	results, err := screen.Submit(ctx, rows)
	if err != nil {
		return err
	}
	created := 0
	for _, r := range results {
		if r.Created {
			created++
			continue
		}
		fmt.Fprintf(os.Stderr, "%s: %s\n", r.Username, r.Error)
	}
	fmt.Printf("created %d of %d users\n", created, len(results))
	return nil
}

func (cli *commandLine) refs(args []string) error {
	if len(args) < 1 {
		cli.printUsage()
		return errHelp
	}
	screen := screens.NewReferenceScreen(cli.client(credentials.RoleAdmin), cli.cfg.UploadMaxSize)
	ctx, cancel := cli.ctx()
	defer cancel()

	switch args[0] {
	case "list":
		if err := screen.Load(ctx); err != nil {
			return err
		}
		for _, d := range screen.Docs() {
			fmt.Printf("%-30s %s  %8d bytes  %s\n", d.Title, d.ID, d.SizeBytes, d.UploadedAt.Format("2006-01-02"))
		}
		return nil

	case "upload":
		fs := flag.NewFlagSet("refs upload", flag.ExitOnError)
		title := fs.String("title", "", "document title")
		file := fs.String("file", "", "file to upload")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if *file == "" {
			fs.Usage()
			return errHelp
		}
		f, err := os.Open(*file)
		if err != nil {
			return err
		}
		defer f.Close()
		info, err := f.Stat()
		if err != nil {
			return err
		}
		if *title == "" {
			*title = strings.TrimSuffix(filepath.Base(*file), filepath.Ext(*file))
		}

		doc, fieldErrs, err := screen.Upload(ctx, *title, filepath.Base(*file), info.Size(), f)
		if err != nil {
			return err
		}
		if len(fieldErrs) > 0 {
			return formError(fieldErrs)
		}
		fmt.Println("uploaded", doc.ID)
		return nil

	case "delete":
		fs := flag.NewFlagSet("refs delete", flag.ExitOnError)
		id := fs.String("id", "", "document id")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if *id == "" {
			fs.Usage()
			return errHelp
		}
		if err := screen.Delete(ctx, *id); err != nil {
			return err
		}
		fmt.Println("deleted", *id)
		return nil
	}
	cli.printUsage()
	return errHelp
}

func (cli *commandLine) leave(args []string) error {
	if len(args) < 1 {
		cli.printUsage()
		return errHelp
	}
	screen := screens.NewLeaveScreen(cli.client(credentials.RoleStudent))
	ctx, cancel := cli.ctx()
	defer cancel()

	switch args[0] {
	case "list":
		if err := screen.Load(ctx); err != nil {
			return err
		}
		for _, r := range screen.Requests() {
			fmt.Printf("%-10s %s  %s – %s  %s\n", r.Status, r.ID,
				r.FromDate.Format("2006-01-02"), r.ToDate.Format("2006-01-02"), r.Reason)
		}
		return nil

	case "submit":
		fs := flag.NewFlagSet("leave submit", flag.ExitOnError)
		from := fs.String("from", "", "first day away (YYYY-MM-DD)")
		to := fs.String("to", "", "last day away (YYYY-MM-DD)")
		reason := fs.String("reason", "", "reason for the leave")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}

		created, fieldErrs, err := screen.Submit(ctx, validation.LeaveForm{
			FromDate: *from, ToDate: *to, Reason: *reason,
		})
		if err != nil {
			return err
		}
		if len(fieldErrs) > 0 {
			return formError(fieldErrs)
		}
		fmt.Println("submitted leave request", created.ID)
		return nil

	case "cancel":
		fs := flag.NewFlagSet("leave cancel", flag.ExitOnError)
		id := fs.String("id", "", "request id")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if *id == "" {
			fs.Usage()
			return errHelp
		}
		if err := screen.Cancel(ctx, *id); err != nil {
			return err
		}
		fmt.Println("cancelled", *id)
		return nil
	}
	cli.printUsage()
	return errHelp
}

func (cli *commandLine) inbox(args []string) error {
	if len(args) < 1 {
		cli.printUsage()
		return errHelp
	}
	screen := screens.NewInboxScreen(cli.client(credentials.RoleStudent))
	ctx, cancel := cli.ctx()
	defer cancel()

	switch args[0] {
	case "list":
		if err := screen.Load(ctx); err != nil {
			return err
		}
		for _, n := range screen.Items() {
			marker := " "
			if !n.Read {
				marker = "●"
			}
			fmt.Printf("%s %s  %-40s %s\n", marker, n.CreatedAt.Format("01-02 15:04"), n.Title, n.ID)
		}
		fmt.Printf("%d unread\n", screen.Unread())
		return nil

	case "read":
		fs := flag.NewFlagSet("inbox read", flag.ExitOnError)
		id := fs.String("id", "", "notification id")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if *id == "" {
			fs.Usage()
			return errHelp
		}
		return screen.MarkRead(ctx, *id)

	case "read-all":
		return screen.MarkAllRead(ctx)
	}
	cli.printUsage()
	return errHelp
}

func (cli *commandLine) feed(args []string) error {
	fs := flag.NewFlagSet("feed", flag.ExitOnError)
	course := fs.String("course", cli.cfg.DefaultCourseID, "course instance id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *course == "" {
		fs.Usage()
		return errHelp
	}

	screen := screens.NewFeedScreen(cli.client(credentials.RoleStudent), *course)
	ctx, cancel := cli.ctx()
	defer cancel()
	if err := screen.Load(ctx); err != nil {
		return err
	}
	for _, p := range screen.Posts() {
		fmt.Printf("%s  %s — %s\n%s\n\n", p.CreatedAt.Format("2006-01-02 15:04"), p.Author, p.Title, p.Body)
	}
	return nil
}

func (cli *commandLine) grade(args []string) error {
	fs := flag.NewFlagSet("grade", flag.ExitOnError)
	assignment := fs.String("assignment", "", "assignment id")
	submission := fs.String("submission", "", "submission id to grade")
	points := fs.Float64("points", -1, "points to award")
	feedback := fs.String("feedback", "", "feedback text")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *assignment == "" {
		fs.Usage()
		return errHelp
	}

	screen := screens.NewGradingScreen(cli.client(credentials.RoleTeacher), *assignment)
	ctx, cancel := cli.ctx()
	defer cancel()
	if err := screen.Load(ctx); err != nil {
		return err
	}

	if *submission != "" {
		if *points < 0 {
			return fmt.Errorf("grading needs -points")
		}
		if err := screen.Grade(ctx, *submission, *points, *feedback); err != nil {
			return err
		}
		fmt.Println("graded", *submission)
		return nil
	}

	a := screen.Assignment()
	fmt.Printf("%s (max %g points)\n", a.Title, a.MaxPoints)
	for _, s := range screen.Submissions() {
		who := s.StudentID
		if a.Group {
			who = "group " + s.GroupID
		}
		gradeCol := "ungraded"
		if s.Grade != nil {
			gradeCol = fmt.Sprintf("%g", s.Grade.Points)
		}
		when := "not submitted"
		if s.SubmittedAt != nil {
			when = s.SubmittedAt.Format("2006-01-02 15:04")
		}
		fmt.Printf("%-36s %-24s %-16s %s\n", s.ID, who, when, gradeCol)
	}
	return nil
}

func (cli *commandLine) gradebookCmd(args []string) error {
	if len(args) < 1 || args[0] != "export" {
		cli.printUsage()
		return errHelp
	}
	fs := flag.NewFlagSet("gradebook export", flag.ExitOnError)
	course := fs.String("course", cli.cfg.DefaultCourseID, "course instance id")
	out := fs.String("out", "", "output file (default stdout)")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	if *course == "" {
		fs.Usage()
		return errHelp
	}

	client := cli.client(credentials.RoleTeacher)
	vm := gradebook.NewViewModel(client, *course)
	ctx, cancel := cli.ctx()
	defer cancel()
	if err := vm.Load(ctx); err != nil {
		// fall back to the cached snapshot rather than exporting nothing
		snap, fetchedAt, cacheErr := client.CachedGradebook(*course)
		if cacheErr != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "load failed (%v); exporting cached snapshot from %s\n", err, fetchedAt.Format(time.RFC3339))
		vm.UseSnapshot(snap)
	}

	w := os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	return vm.ExportCSV(w)
}

// formError folds field errors into one CLI error
func formError(errs []validation.FieldError) error {
	msgs := make([]string, len(errs))
	for i, fe := range errs {
		msgs[i] = fe.Error()
	}
	return errors.New(strings.Join(msgs, "; "))
}
