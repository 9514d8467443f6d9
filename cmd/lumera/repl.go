package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"lumera.app/lumera/internal/core"
	"lumera.app/lumera/internal/store"
)

const replHelp = `Commands:
  /new                  start a new chat
  /voice                speak one message (if a recognizer is configured)
  /history              list saved chats
  /load <id>            continue a saved chat
  /delete <id>          delete a saved chat
  /clear-history        delete all saved chats
  /mood <emotion>       log a mood (Happy, Sad, Anxious, Angry, Calm, Neutral)
  /moods                show the mood log
  /settings [key val]   show settings, or set theme|font|voice|emotions|compact|privacy
  /reset-settings       restore default settings
  /tips                 wellness tips
  /resources            books and podcasts
  /help                 this help
  /quit                 exit`

// repl is a line-oriented front end over the companion. Messages are printed
// from snapshots so voice turns show up the same way typed ones do.
type repl struct {
	companion *core.Companion
	in        io.Reader

	mu         sync.Mutex
	out        io.Writer
	firstID    string
	printed    int
	distressed bool
	waiting    bool
}

func newREPL(c *core.Companion, in io.Reader, out io.Writer) *repl {
	return &repl{companion: c, in: in, out: out}
}

func (r *repl) Run(ctx context.Context) error {
	unsubscribe := r.companion.Subscribe(r.render)
	defer unsubscribe()

	r.render(r.companion.Current().Snapshot())
	r.println("Type /help for commands.")

	scanner := bufio.NewScanner(r.in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "/") {
			quit, err := r.command(line)
			if err != nil {
				r.println("! " + err.Error())
			}
			if quit {
				return nil
			}
			continue
		}
		if _, ok := r.companion.Current().Submit(ctx, line); !ok {
			r.println("! Lumera is still answering, please wait.")
		}
	}
	return scanner.Err()
}

func (r *repl) command(line string) (quit bool, err error) {
	fields := strings.Fields(line)
	name, args := fields[0], fields[1:]

	switch name {
	case "/quit", "/exit":
		return true, nil
	case "/help":
		r.println(replHelp)
	case "/new":
		r.companion.NewChat()
	case "/voice":
		if err := r.companion.Current().StartVoiceInput(); err != nil {
			return false, err
		}
		r.println("(listening...)")
	case "/history":
		r.printHistory()
	case "/load":
		id, err := parseID(args)
		if err != nil {
			return false, err
		}
		if _, err := r.companion.LoadSession(id); err != nil {
			return false, err
		}
	case "/delete":
		id, err := parseID(args)
		if err != nil {
			return false, err
		}
		if err := r.companion.DeleteSession(id); err != nil {
			return false, err
		}
		r.println("Chat deleted.")
	case "/clear-history":
		if err := r.companion.ClearHistory(); err != nil {
			return false, err
		}
		r.println("Chat history cleared.")
	case "/mood":
		if len(args) != 1 {
			return false, errors.New("usage: /mood <emotion>")
		}
		entry, err := r.companion.LogMood(store.Emotion(args[0]))
		if err != nil {
			return false, err
		}
		r.println(fmt.Sprintf("Logged %s.", entry.Emotion))
	case "/moods":
		r.printMoods()
	case "/settings":
		if len(args) == 0 {
			r.printSettings(r.companion.Settings())
			return false, nil
		}
		if len(args) != 2 {
			return false, errors.New("usage: /settings <key> <value>")
		}
		settings, err := applySetting(r.companion.Settings(), args[0], args[1])
		if err != nil {
			return false, err
		}
		if settings, err = r.companion.UpdateSettings(settings); err != nil {
			return false, err
		}
		r.printSettings(settings)
	case "/reset-settings":
		settings, err := r.companion.ResetSettings()
		if err != nil {
			return false, err
		}
		r.println("Preferences reset to default.")
		r.printSettings(settings)
	case "/tips":
		for _, tip := range core.WellnessTips {
			r.println(fmt.Sprintf("%s %s (%s): %s", tip.Icon, tip.Title, tip.Duration, tip.Description))
		}
	case "/resources":
		for _, res := range core.Resources {
			r.println(fmt.Sprintf("[%s] %s by %s (%.1f)", res.Type, res.Title, res.Author, res.Rating))
		}
	default:
		return false, fmt.Errorf("unknown command %s, try /help", name)
	}
	return false, nil
}

// render prints whatever a snapshot adds to what is already on screen.
func (r *repl) render(s core.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(s.Messages) > 0 && s.Messages[0].ID != r.firstID {
		r.firstID = s.Messages[0].ID
		r.printed = 0
		r.distressed = false
		fmt.Fprintln(r.out, "── new conversation ──")
	}
	if r.printed > len(s.Messages) {
		r.printed = len(s.Messages)
	}
	for _, m := range s.Messages[r.printed:] {
		if m.Sender == store.SenderBot {
			fmt.Fprintf(r.out, "Lumera: %s\n", m.Text)
		} else if m.Emotion != "" {
			fmt.Fprintf(r.out, "You: %s  [%s]\n", m.Text, m.Emotion)
		} else {
			fmt.Fprintf(r.out, "You: %s\n", m.Text)
		}
	}
	r.printed = len(s.Messages)

	waiting := s.State == core.StateAwaitingReply.String()
	if waiting && !r.waiting {
		fmt.Fprintln(r.out, "Lumera is typing...")
	}
	r.waiting = waiting

	if s.Distressed && !r.distressed {
		fmt.Fprintln(r.out, "It sounds like you're going through a lot. You are not alone, help is available:")
		for _, h := range core.Helplines {
			fmt.Fprintf(r.out, "  %s, %s: %s\n", h.Country, h.Name, h.Number)
		}
	}
	r.distressed = s.Distressed

	if s.VoiceError != "" && !s.Recording {
		fmt.Fprintf(r.out, "! voice input: %s\n", s.VoiceError)
	}
}

func (r *repl) println(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.out, text)
}

func (r *repl) printHistory() {
	sessions := r.companion.History()
	if len(sessions) == 0 {
		r.println("No saved chats yet.")
		return
	}
	for _, s := range sessions {
		started := time.UnixMilli(s.StartTime).Format("2006-01-02 15:04")
		r.println(fmt.Sprintf("%d  %s  %s", s.ID, started, s.Summary))
	}
}

func (r *repl) printMoods() {
	moods := r.companion.Moods()
	if len(moods) == 0 {
		r.println("No moods logged yet.")
		return
	}
	for _, m := range moods {
		r.println(fmt.Sprintf("%s  %s", time.UnixMilli(m.Timestamp).Format("2006-01-02 15:04"), m.Emotion))
	}
}

func (r *repl) printSettings(s store.Settings) {
	r.println(fmt.Sprintf("theme=%s font=%d voice=%t emotions=%t compact=%t privacy=%t",
		s.Theme, s.FontSize, s.VoiceReply, s.AutoEmotionDetection, s.CompactView, s.PrivacyMode))
}

func applySetting(s store.Settings, key, value string) (store.Settings, error) {
	switch key {
	case "theme":
		s.Theme = store.Theme(value)
		return s, nil
	case "font":
		size, err := strconv.Atoi(value)
		if err != nil {
			return s, fmt.Errorf("font size must be a number: %w", err)
		}
		s.FontSize = size
		return s, nil
	}

	on, err := parseToggle(value)
	if err != nil {
		return s, err
	}
	switch key {
	case "voice":
		s.VoiceReply = on
	case "emotions":
		s.AutoEmotionDetection = on
	case "compact":
		s.CompactView = on
	case "privacy":
		s.PrivacyMode = on
	default:
		return s, fmt.Errorf("unknown setting %q", key)
	}
	return s, nil
}

func parseToggle(value string) (bool, error) {
	switch strings.ToLower(value) {
	case "on", "true", "yes", "1":
		return true, nil
	case "off", "false", "no", "0":
		return false, nil
	}
	return false, fmt.Errorf("expected on or off, got %q", value)
}

func parseID(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, errors.New("expected a chat id, see /history")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid chat id %q", args[0])
	}
	return id, nil
}
