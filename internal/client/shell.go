package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/atinyakov/QRKeeper/internal/export"
	"github.com/atinyakov/QRKeeper/internal/models"
	"github.com/atinyakov/QRKeeper/internal/session"
)

const helpText = `Available commands:
  help                  show this help
  new [type]            start a new code (url, text, email, phone, sms, wifi, vcard)
  settings              change colors, size and error correction
  logo <path>           overlay an image at the center
  nologo                remove the logo
  generate              build the payload of the current fields
  show                  print the current fields, settings and payload
  save [title]          store the generated code in the history
  list                  list saved codes
  load <id>             restore a saved code
  delete <id>           remove a saved code
  export png|svg [dir]  write the generated code to a file
  exit                  quit`

// Shell is the interactive command loop over a session.
type Shell struct {
	session *session.Session
	prompt  *Prompter
	out     io.Writer
	log     *zap.Logger
}

// NewShell returns a shell reading commands from in.
func NewShell(s *session.Session, in io.Reader, out io.Writer, log *zap.Logger) *Shell {
	if log == nil {
		log = zap.NewNop()
	}
	return &Shell{session: s, prompt: NewPrompter(in, out), out: out, log: log}
}

// Run executes commands until "exit" or the end of input.
func (sh *Shell) Run(ctx context.Context) error {
	for {
		line, err := sh.prompt.Line("qrkeeper> ")
		if errors.Is(err, ErrInputClosed) {
			return nil
		}
		if err != nil {
			return err
		}
		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}
		if args[0] == "exit" {
			fmt.Fprintln(sh.out, "Bye")
			return nil
		}
		if err := sh.exec(ctx, args); err != nil {
			if errors.Is(err, ErrInputClosed) {
				return nil
			}
			fmt.Fprintf(sh.out, "Error: %v\n", err)
		}
	}
}

func (sh *Shell) exec(ctx context.Context, args []string) error {
	switch args[0] {
	case "help":
		fmt.Fprintln(sh.out, helpText)
	case "new":
		return sh.newRecord(args[1:])
	case "settings":
		next, err := sh.prompt.Settings(sh.session.Settings())
		if err != nil {
			return err
		}
		sh.session.SetSettings(next)
	case "logo":
		if len(args) < 2 {
			fmt.Fprintln(sh.out, "Usage: logo <path>")
			return nil
		}
		return sh.setLogo(args[1])
	case "nologo":
		sh.session.RemoveLogo()
		fmt.Fprintln(sh.out, "Logo removed")
	case "generate":
		p, err := sh.session.Generate()
		if err != nil {
			return err
		}
		fmt.Fprintf(sh.out, "Payload:\n%s\n", p)
	case "show":
		return sh.show()
	case "save":
		entry, err := sh.session.Save(ctx, strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		fmt.Fprintf(sh.out, "Saved %s (%s)\n", entry.ID, entry.Title)
	case "list":
		return sh.list(ctx)
	case "load":
		if len(args) < 2 {
			fmt.Fprintln(sh.out, "Usage: load <id>")
			return nil
		}
		if err := sh.session.Load(ctx, args[1]); err != nil {
			return err
		}
		return sh.show()
	case "delete":
		if len(args) < 2 {
			fmt.Fprintln(sh.out, "Usage: delete <id>")
			return nil
		}
		if err := sh.session.Delete(ctx, args[1]); err != nil {
			return err
		}
		fmt.Fprintln(sh.out, "Deleted")
	case "export":
		if len(args) < 2 {
			fmt.Fprintln(sh.out, "Usage: export png|svg [dir]")
			return nil
		}
		dir := "."
		if len(args) > 2 {
			dir = args[2]
		}
		return sh.export(args[1], dir)
	default:
		fmt.Fprintln(sh.out, "Unknown command. Type 'help' for a list of commands.")
	}
	return nil
}

func (sh *Shell) newRecord(args []string) error {
	var t string
	if len(args) > 0 {
		t = args[0]
	} else {
		var err error
		if t, err = sh.prompt.Line("Type (url/text/email/phone/sms/wifi/vcard): "); err != nil {
			return err
		}
	}
	tag := models.ContentType(strings.ToLower(t))
	if err := sh.session.Select(tag); err != nil {
		return err
	}
	rec, err := sh.prompt.Record(tag)
	if err != nil {
		return err
	}
	return sh.session.SetRecord(rec)
}

func (sh *Shell) setLogo(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := sh.session.SetLogo(f); err != nil {
		return err
	}
	fmt.Fprintln(sh.out, "Logo set")
	return nil
}

func (sh *Shell) show() error {
	rec, err := json.MarshalIndent(sh.session.Record(), "", "  ")
	if err != nil {
		return err
	}
	s := sh.session.Settings()
	fmt.Fprintf(sh.out, "Type: %s\n%s\n", sh.session.Active(), rec)
	fmt.Fprintf(sh.out, "Colors: %s on %s, size %d, level %s, logo: %t\n",
		s.ForegroundColor, s.BackgroundColor, s.Size, s.ErrorCorrectionLevel, len(s.LogoImage) > 0)
	if p, ok := sh.session.Payload(); ok {
		fmt.Fprintf(sh.out, "Payload:\n%s\n", p)
	}
	return nil
}

func (sh *Shell) list(ctx context.Context) error {
	entries, err := sh.session.List(ctx)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(sh.out, "No saved codes")
		return nil
	}
	for _, e := range entries {
		fmt.Fprintf(sh.out, "%s  %s  %-7s %s\n", e.ID, e.CreatedAt.Format("2006-01-02 15:04"), e.Type, e.Title)
	}
	return nil
}

func (sh *Shell) export(format, dir string) error {
	f, err := export.ParseFormat(format)
	if err != nil {
		return err
	}
	file, ok, err := sh.session.Export(f)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(sh.out, "Nothing to export: generate a code first")
		return nil
	}
	path := filepath.Join(dir, file.Name)
	if err := os.WriteFile(path, file.Data, 0o644); err != nil {
		return err
	}
	sh.log.Info("exported qr code", zap.String("path", path), zap.Int("bytes", len(file.Data)))
	fmt.Fprintf(sh.out, "Written %s\n", path)
	return nil
}
