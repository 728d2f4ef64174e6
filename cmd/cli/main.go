package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/Vovarama1992/braille_bridge/internal/apperr"
	"github.com/Vovarama1992/braille_bridge/internal/auth"
	"github.com/Vovarama1992/braille_bridge/internal/backend"
	"github.com/Vovarama1992/braille_bridge/internal/config"
	"github.com/Vovarama1992/braille_bridge/internal/export"
	"github.com/Vovarama1992/braille_bridge/internal/files"
	"github.com/Vovarama1992/braille_bridge/internal/ports"
	"github.com/Vovarama1992/braille_bridge/internal/session"
	"github.com/Vovarama1992/braille_bridge/internal/workflow"
)

type app struct {
	client *backend.Client
	auth   *auth.Service
	files  files.Service
	sink   ports.ArtifactSink
	sess   ports.Session
	log    *logger.ZapLogger
}

func main() {
	cmd := flag.String("cmd", "", "Command: login|register|logout|whoami|braille|speech|files|delete|download")
	server := flag.String("server", "", "Override backend base URL")
	name := flag.String("name", "", "Name (register) or file name (download)")
	email := flag.String("email", "", "Email")
	password := flag.String("password", "", "Password")
	confirm := flag.String("confirm", "", "Password confirmation (register)")
	text := flag.String("text", "", "Text to convert")
	file := flag.String("file", "", "Path of a file to convert")
	save := flag.Bool("save", false, "Store the result in the export dir")
	id := flag.String("id", "", "File id (delete)")
	url := flag.String("url", "", "Artifact URL (download)")
	yes := flag.Bool("yes", false, "Skip confirmation (delete)")
	verbose := flag.Bool("v", false, "Log backend calls")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fail(err)
	}
	if *server != "" {
		cfg.BackendURL = *server
	}

	a, err := newApp(cfg, *verbose)
	if err != nil {
		fail(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch *cmd {
	case "login":
		err = a.login(ctx, *email, *password)
	case "register":
		err = a.register(ctx, auth.RegisterForm{Name: *name, Email: *email, Password: *password, ConfirmPassword: *confirm})
	case "logout":
		err = a.auth.Logout()
		if err == nil {
			fmt.Println("Logged out.")
		}
	case "whoami":
		a.whoami()
	case "braille":
		err = a.convert(ctx, ports.TargetBraille, *text, *file, *save)
	case "speech":
		err = a.convert(ctx, ports.TargetTTS, *text, *file, *save)
	case "files":
		err = a.listFiles(ctx)
	case "delete":
		err = a.deleteFile(ctx, *id, *yes)
	case "download":
		err = a.download(ctx, *url, *name)
	default:
		flag.Usage()
		os.Exit(2)
	}

	if err != nil {
		fail(err)
	}
}

func newApp(cfg *config.Config, verbose bool) (*app, error) {
	base := zap.NewNop()
	if verbose {
		base, _ = zap.NewDevelopment()
	}
	zl := logger.NewZapLogger(base.Sugar())

	// read once at startup
	store := session.NewFileStore(cfg.SessionFile)
	sess, err := store.Load()
	if err != nil {
		return nil, err
	}

	client := backend.NewClient(cfg.BackendURL, nil, zl)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	sink, err := export.NewSink(ctx, cfg.ExportDir, cfg.S3)
	if err != nil {
		return nil, fmt.Errorf("export sink: %w", err)
	}

	return &app{
		client: client,
		auth:   auth.NewService(client, store, zl),
		files:  files.NewService(client, sink, zl),
		sink:   sink,
		sess:   sess,
		log:    zl,
	}, nil
}

func (a *app) login(ctx context.Context, email, password string) error {
	sess, err := a.auth.Login(ctx, email, password)
	if err != nil {
		return err
	}
	fmt.Printf("Logged in as %s <%s>\n", sess.User.Name, sess.User.Email)
	return nil
}

func (a *app) register(ctx context.Context, f auth.RegisterForm) error {
	if s := auth.PasswordStrength(f.Password); s != "" {
		fmt.Println("Password strength:", s)
	}
	sess, err := a.auth.Register(ctx, f)
	if err != nil {
		return err
	}
	if !sess.Valid() {
		fmt.Println("Registered. Please log in.")
		return nil
	}
	fmt.Printf("Registered and logged in as %s\n", sess.User.Name)
	return nil
}

func (a *app) whoami() {
	if !a.sess.Valid() {
		fmt.Println("Not logged in.")
		return
	}
	fmt.Printf("%s <%s>\n", a.sess.User.Name, a.sess.User.Email)
}

func (a *app) convert(ctx context.Context, target ports.Target, text, path string, save bool) error {
	page := workflow.NewPage(target, a.client, nil, a.log)
	defer page.Close()

	page.SetObserver(func(s workflow.State) {
		switch s {
		case workflow.StateUploading:
			fmt.Println("Uploading...")
		case workflow.StateConverting:
			fmt.Println("Converting...")
		}
	})

	if path != "" {
		f, err := workflow.OpenFile(path, page.Messages())
		if err != nil {
			return err
		}
		if err := page.SelectFile(f); err != nil {
			return err
		}
		page.SetTab(ports.TabFile)
		fmt.Printf("Selected %s (%s)\n", f.Name, humanize.IBytes(uint64(f.Size())))
	} else {
		page.SetText(text)
	}

	snap, err := page.Convert(ctx, a.sess)
	if err != nil {
		return fmt.Errorf("%s", apperr.Message(err, snap.Error))
	}

	fmt.Println(snap.Result.Value())
	if !save {
		return nil
	}

	var loc string
	if target == ports.TargetBraille {
		loc, err = export.SaveBraille(ctx, a.sink, snap.Result.Text)
	} else {
		loc, err = export.SaveSpeech(ctx, a.client, a.sink, snap.Result.AudioURL)
	}
	if err != nil {
		return err
	}
	fmt.Println("Saved to", loc)
	return nil
}

func (a *app) listFiles(ctx context.Context) error {
	recs, err := a.files.List(ctx, a.sess)
	if err != nil {
		return a.loginHint(err)
	}
	if len(recs) == 0 {
		fmt.Println("No files yet.")
		return nil
	}

	for _, r := range recs {
		fmt.Printf("%s  %-30s  %s\n", r.ID, r.Filename, humanize.Time(r.CreatedAt))
		for _, art := range r.Artifacts() {
			fmt.Printf("    %-5s %s\n", art.Label, art.URL)
		}
	}
	return nil
}

func (a *app) deleteFile(ctx context.Context, id string, yes bool) error {
	if id == "" {
		return fmt.Errorf("--id required")
	}
	if !yes && !confirmPrompt("Are you sure you want to delete this file?") {
		return nil
	}

	msg, err := a.files.Delete(ctx, a.sess, id)
	if err != nil {
		return a.loginHint(err)
	}
	fmt.Println(msg)
	return nil
}

func (a *app) download(ctx context.Context, url, name string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	loc, err := a.files.Download(ctx, a.sess, url, name)
	if err != nil {
		return a.loginHint(err)
	}
	fmt.Println("Saved to", loc)
	return nil
}

func (a *app) loginHint(err error) error {
	if errors.Is(err, files.ErrNotLoggedIn) {
		return fmt.Errorf("not logged in, run -cmd login first")
	}
	return err
}

func confirmPrompt(q string) bool {
	fmt.Printf("%s [y/N] ", q)
	line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	line = strings.ToLower(strings.TrimSpace(line))
	return line == "y" || line == "yes"
}

func fail(err error) {
	fmt.Println("Error:", err)
	os.Exit(1)
}
