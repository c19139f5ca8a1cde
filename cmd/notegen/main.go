// notegen generates one learning note from the command line and prints it as JSON.
//
//	notegen https://youtu.be/abcDEF12345 --gemini-key=... --out note.json
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/alecthomas/kong"
	"github.com/anatolykoptev/go_note/internal/engine"
	"github.com/anatolykoptev/go_note/internal/engine/notes"
	"github.com/anatolykoptev/go_note/internal/noteserver"
	"github.com/anatolykoptev/go_note/internal/toolutil"
	"github.com/joho/godotenv"
	"github.com/schollz/progressbar/v3"
)

var version = "dev"

// CLI is the notegen command line.
type CLI struct {
	Video      string        `arg:"" help:"YouTube video id or URL."`
	GeminiKey  string        `name:"gemini-key" env:"GEMINI_API_KEY" help:"Gemini API key."`
	YouTubeKey string        `name:"youtube-key" env:"YOUTUBE_API_KEY" help:"YouTube Data API key (optional; page metadata is used without one)."`
	Timeout    time.Duration `default:"5m" help:"Deadline for the whole run."`
	Out        string        `short:"o" type:"path" help:"Write the note to this file instead of stdout."`
	Quiet      bool          `short:"q" help:"Do not render progress."`
	Debug      bool          `help:"Enable debug logging."`
}

func main() {
	for _, f := range []string{".env", "notegen.env"} {
		if _, err := os.Stat(f); err == nil {
			if err := godotenv.Load(f); err != nil {
				slog.Warn("failed to load env file", slog.String("file", f), slog.Any("error", err))
			}
		}
	}

	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("notegen"),
		kong.Description("Generate a structured Korean learning note from a YouTube video."),
		kong.UsageOnError(),
		kong.Vars{"version": version},
	)

	level := slog.LevelWarn
	if cli.Debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	kctx.FatalIfErrorf(cli.Run(ctx, os.Stdout, os.Stderr))
}

// Run generates the note and writes it to Out or stdout.
func (c *CLI) Run(ctx context.Context, stdout, stderr io.Writer) error {
	videoID, err := toolutil.VideoID(c.Video)
	if err != nil {
		return err
	}

	cfg := noteserver.LoadConfig()
	cfg.RunTimeout = c.Timeout
	engine.Init(cfg)

	orch, err := noteserver.NewServices(engine.Cfg).Orchestrator(c.GeminiKey, c.YouTubeKey)
	if err != nil {
		return err
	}

	var sink notes.ProgressSink
	if !c.Quiet {
		sink = newBarSink(stderr)
	}
	note, err := orch.Run(ctx, videoID, sink)
	if err != nil {
		return err
	}
	return writeNote(note, c.Out, stdout)
}

// newBarSink renders pipeline milestones as a progress bar.
func newBarSink(w io.Writer) notes.ProgressSink {
	bar := progressbar.NewOptions(100,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("노트 생성 준비 중..."),
		progressbar.OptionShowBytes(false),
		progressbar.OptionClearOnFinish(),
	)
	return notes.ProgressFunc(func(ev notes.ProgressEvent) {
		bar.Describe(ev.Label)
		if err := bar.Set(ev.Percentage); err != nil {
			slog.Debug("progress bar update failed", slog.Any("error", err))
		}
	})
}

func writeNote(note engine.GeneratedNote, path string, stdout io.Writer) error {
	data, err := json.MarshalIndent(note, "", "  ")
	if err != nil {
		return fmt.Errorf("encode note: %w", err)
	}
	data = append(data, '\n')
	if path == "" {
		_, err = stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write note: %w", err)
	}
	return nil
}
