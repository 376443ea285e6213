package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"

	"voiceup/internal/playback"
	"voiceup/internal/transcript"
	"voiceup/internal/worker"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var editCmd = &cobra.Command{
	Use:   "edit <result.json>",
	Short: "Edit a cleaned transcript word by word and regenerate its audio",
	Long: `Start an edit session over the cleaned transcript of a saved analysis.
Commands, one per line:

  show             print the text and the numbered words
  toggle N [N...]  drop or restore word N
  text <text>      replace the text (word toggles stop editing it)
  resync           re-derive the kept words from the text
  regen            synthesize the current text in the session voice
  play             play the last regenerated audio
  stop             stop playback
  reset            start over from the cleaned transcript
  quit             end the session`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

var editVoiceID string

func init() {
	editCmd.Flags().StringVar(&editVoiceID, "voice-id", "", "voice to regenerate with (default: newest saved voice)")
	rootCmd.AddCommand(editCmd)
}

func runEdit(cmd *cobra.Command, args []string) error {
	result, err := worker.LoadJSON(args[0])
	if err != nil {
		return err
	}
	voiceID, err := resolveVoice(editVoiceID)
	if err != nil {
		return err
	}
	client, err := newClient()
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	player := playback.NewManager(cfg.Player)
	defer player.Stop()

	s := newSession(result.CleanedTranscript, voiceID, client, cmd.OutOrStdout())
	s.render = transcript.RenderOptions{Color: useColor(os.Stdout, "auto"), Width: cfg.WrapWidth}
	s.prompt = isatty.IsTerminal(os.Stdin.Fd())
	s.play = func(ctx context.Context, rel string) error {
		file, err := fetchAudio(ctx, client, rel)
		if err != nil {
			return err
		}
		if err := player.Play(ctx, rel, file); err != nil {
			removeQuietly(file)
			return err
		}
		go func() {
			if err := player.Wait(ctx); err != nil {
				slog.Debug("playback wait", "err", err)
			}
			removeQuietly(file)
		}()
		return nil
	}
	s.stop = player.Stop

	return s.run(ctx, cmd.InOrStdin())
}

// session is one interactive edit over a cleaned transcript.
type session struct {
	initial string
	voiceID string
	editor  *transcript.Editor
	regen   *worker.Regenerator
	render  transcript.RenderOptions
	prompt  bool

	play func(ctx context.Context, rel string) error
	stop func()

	outMu sync.Mutex
	out   io.Writer
	wg    sync.WaitGroup
}

func newSession(initial, voiceID string, svc worker.Synthesizer, out io.Writer) *session {
	return &session{
		initial: initial,
		voiceID: voiceID,
		editor:  transcript.NewEditor(initial),
		regen:   worker.NewRegenerator(svc),
		out:     out,
	}
}

func (s *session) printf(format string, a ...any) {
	s.outMu.Lock()
	defer s.outMu.Unlock()
	fmt.Fprintf(s.out, format, a...)
}

// run reads commands from in until quit or EOF, then waits for any
// regeneration still in flight.
func (s *session) run(ctx context.Context, in io.Reader) error {
	defer s.wg.Wait()

	s.show()
	sc := bufio.NewScanner(in)
	for {
		if s.prompt {
			s.printf("> ")
		}
		if !sc.Scan() {
			break
		}
		quit, err := s.handle(ctx, sc.Text())
		if err != nil {
			s.printf("error: %v\n", err)
		}
		if quit {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return sc.Err()
}

// handle executes one command line.
func (s *session) handle(ctx context.Context, line string) (quit bool, err error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return false, nil
	}
	name, rest, _ := strings.Cut(line, " ")

	switch name {
	case "quit", "exit", "q":
		return true, nil

	case "show":
		s.show()

	case "toggle", "t":
		fields := strings.Fields(rest)
		if len(fields) == 0 {
			return false, errors.New("usage: toggle N [N...]")
		}
		for _, f := range fields {
			n, err := strconv.Atoi(f)
			if err != nil {
				return false, fmt.Errorf("not a word number: %q", f)
			}
			// words are numbered from 1 on screen
			if err := s.editor.Toggle(n - 1); err != nil {
				return false, fmt.Errorf("word %d: %w", n, err)
			}
		}
		s.show()

	case "text":
		s.editor.SetText(rest)
		s.printf("text replaced, word toggles no longer edit it; resync to realign\n")

	case "resync":
		s.editor.Resync()
		s.show()

	case "reset":
		s.regen.Reset()
		s.editor.Reset(s.initial)
		s.show()

	case "regen":
		s.regenerate(ctx)

	case "play":
		rel := s.regen.AudioURL()
		if rel == "" {
			return false, errors.New("nothing regenerated yet")
		}
		if s.play == nil {
			return false, errors.New("playback unavailable")
		}
		return false, s.play(ctx, rel)

	case "stop":
		if s.stop != nil {
			s.stop()
		}

	default:
		return false, fmt.Errorf("unknown command %q", name)
	}
	return false, nil
}

// regenerate starts a synthesis of the current text in the background. A
// later regen supersedes this one.
func (s *session) regenerate(ctx context.Context) {
	text := s.editor.Trimmed()
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		rel, err := s.regen.Regenerate(ctx, text, s.voiceID)
		switch {
		case errors.Is(err, worker.ErrSuperseded):
			slog.Debug("regeneration superseded")
		case err != nil:
			s.printf("regenerate failed: %v\n", err)
		default:
			s.printf("regenerated: %s\n", rel)
		}
	}()
	s.printf("regenerating...\n")
}

func (s *session) show() {
	var b strings.Builder
	b.WriteString("text (" + s.editor.Mode().String() + "):\n")
	b.WriteString(s.editor.Text())
	b.WriteString("\n\nwords:\n")

	kept := s.editor.Kept()
	tokens := make([]transcript.Token, 0, 2*len(kept))
	for i, w := range s.editor.Words() {
		if i > 0 {
			tokens = append(tokens, transcript.Token{Text: " "})
		}
		tokens = append(tokens, transcript.Token{
			Text:     strconv.Itoa(i+1) + ":" + w.Text,
			IsFiller: !kept[i],
		})
	}
	if err := transcript.Render(&b, tokens, s.render); err != nil {
		slog.Debug("render words", "err", err)
	}
	b.WriteString("\n")
	s.printf("%s", b.String())
}

func removeQuietly(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		slog.Debug("remove temp file", "file", path, "err", err)
	}
}
