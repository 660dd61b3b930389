package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"pairpad/backend"
	"pairpad/contract"
	"pairpad/domain"
	"pairpad/internal"
	"pairpad/moderation"
	"pairpad/runtime"
	"pairpad/runtime/workers"
	"pairpad/search"
	"pairpad/sink"
	"pairpad/storage"
	"pairpad/transport"
)

// Exit codes to provide meaningful status to the operating system or
// service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	// The main function acts as a thin wrapper.
	// Its only responsibility is to call run() and handle the OS exit code.
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "pairpad terminated with error: %v\n", err)
	}
	os.Exit(code)
}

func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	censorChar, err := internal.CharacterRune(config.CharReplacement)
	if err != nil {
		return exitConfig, err
	}

	logger := logs.GetLoggerFromString(config.LogLevel)

	// 2. Termination signals (Ctrl+C)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Local persistence: chat journal and its search index
	journal, err := storage.Open(config.JournalPath, logger)
	if err != nil {
		return exitRuntime, fmt.Errorf("journal: %w", err)
	}
	defer journal.Close()

	index, err := search.OpenIndex(config.IndexPath, logger)
	if err != nil {
		return exitRuntime, fmt.Errorf("search index: %w", err)
	}
	defer index.Close()

	moderator, err := moderation.NewModerator(config.WordList(), censorChar)
	if err != nil {
		return exitConfig, fmt.Errorf("moderation: %w", err)
	}

	// 4. Backend client and push channel dialer
	client, err := backend.NewClient(logger, config.BackendURL, config.RequestTimeout)
	if err != nil {
		return exitConfig, err
	}
	dial := func(roomID, participantID string) contract.IChannel {
		return transport.NewChannel(logger, client.EventsURL(roomID, participantID), transport.Options{
			ReconnectDelay: config.ReconnectDelay,
			ReadTimeout:    config.ReadTimeout,
		})
	}

	// 5. Display name, prompted until valid when not configured
	reader := bufio.NewScanner(os.Stdin)
	displayName, err := resolveDisplayName(config.DisplayName, reader)
	if err != nil {
		return exitConfig, err
	}

	// 6. Engine and its sinks
	sup := workers.NewSupervisor(logger)
	engine, err := runtime.NewEngine(logger, client, dial, sup, displayName, runtime.Options{
		DebounceInterval: config.DebounceInterval,
	})
	if err != nil {
		return exitConfig, err
	}
	engine.AddSinks(consoleSink{}, sink.NewJournalSink(journal, index, logger))

	// 7. Supervised workers: the engine loop and the self-stats heartbeat
	sup.Add(engine, workers.NewHeartbeatWorker(logger, config.HeartbeatPeriod))
	supDone := make(chan struct{})
	go func() {
		sup.Run(ctx)
		close(supDone)
	}()

	fmt.Printf("pairpad connected to %s as %s. /help for commands.\n", config.BackendURL, displayName)

	// 8. Command loop, until /quit, EOF or a signal
	repl(ctx, reader, engine, journal, index, &moderator)

	stop()
	sup.Stop()
	<-supDone
	return exitOK, nil
}

func resolveDisplayName(configured string, reader *bufio.Scanner) (string, error) {
	if configured != "" {
		if err := domain.ValidateDisplayName(configured); err != nil {
			return "", fmt.Errorf("PAIRPAD_DISPLAY_NAME: %w", err)
		}
		return configured, nil
	}
	for {
		fmt.Print("display name (3-15 letters, digits, underscores): ")
		if !reader.Scan() {
			return "", fmt.Errorf("no display name provided")
		}
		name := strings.TrimSpace(reader.Text())
		if err := domain.ValidateDisplayName(name); err != nil {
			fmt.Println(errorStyle.Render(err.Error()))
			continue
		}
		return name, nil
	}
}

func repl(ctx context.Context, reader *bufio.Scanner, engine *runtime.Engine,
	journal contract.IJournal, index contract.ISearchIndex, moderator *moderation.Moderator) {

	lines := make(chan string)
	go func() {
		defer close(lines)
		for reader.Scan() {
			lines <- reader.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			if quit := dispatch(ctx, line, engine, journal, index, moderator); quit {
				return
			}
		}
	}
}

// dispatch interprets one input line. Lines starting with a slash are
// commands; anything else is chat.
func dispatch(ctx context.Context, line string, engine *runtime.Engine,
	journal contract.IJournal, index contract.ISearchIndex, moderator *moderation.Moderator) bool {

	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}

	if !strings.HasPrefix(trimmed, "/") {
		report(engine.SendChat(moderator.Censor(trimmed)))
		return false
	}

	fields := strings.Fields(trimmed)
	command, args := fields[0], fields[1:]

	switch command {
	case "/help":
		printHelp()
	case "/create":
		if len(args) == 0 {
			fmt.Println(errorStyle.Render("usage: /create <name> [language]"))
			return false
		}
		language := "go"
		if len(args) > 1 {
			language = args[1]
		}
		report(engine.Create(args[0], language))
	case "/join":
		if len(args) != 1 {
			fmt.Println(errorStyle.Render("usage: /join <room-id>"))
			return false
		}
		report(engine.Join(args[0]))
	case "/doc":
		fmt.Println(engine.Status().Room.Document)
	case "/edit":
		report(engine.EditDocument(strings.TrimSpace(strings.TrimPrefix(trimmed, "/edit"))))
	case "/cursor":
		if len(args) != 2 {
			fmt.Println(errorStyle.Render("usage: /cursor <line> <column>"))
			return false
		}
		lineNo, errLine := strconv.Atoi(args[0])
		column, errCol := strconv.Atoi(args[1])
		if errLine != nil || errCol != nil {
			fmt.Println(errorStyle.Render("cursor position must be numeric"))
			return false
		}
		report(engine.MoveCursor(domain.CursorPosition{Line: lineNo, Column: column}))
	case "/who":
		status := engine.Status()
		printRoster(status.Room.Roster, status.Room.Cursors, status.Session.ParticipantID)
	case "/run":
		stdin := strings.TrimPrefix(trimmed, "/run")
		report(engine.RunCode(strings.TrimLeft(stdin, " ")))
	case "/save":
		report(engine.Save())
	case "/history":
		printHistory(engine, journal)
	case "/find":
		runSearch(ctx, trimmed, engine, index)
	case "/leave":
		report(engine.Leave())
	case "/quit":
		_ = engine.Leave()
		return true
	default:
		fmt.Println(errorStyle.Render("unknown command, /help lists them"))
	}
	return false
}

func printHistory(engine *runtime.Engine, journal contract.IJournal) {
	roomID := engine.Status().Session.RoomID
	if roomID == "" {
		fmt.Println(errorStyle.Render("not in a room"))
		return
	}
	messages, err := journal.Recent(roomID, 20)
	if err != nil {
		fmt.Println(errorStyle.Render("history unavailable: " + err.Error()))
		return
	}
	for _, msg := range messages {
		printChat(msg)
	}
}

func runSearch(ctx context.Context, line string, engine *runtime.Engine, index contract.ISearchIndex) {
	query := search.NewQuery(line)
	if query.Terms == "" {
		fmt.Println(errorStyle.Render(`usage: /find <terms> [--limit n] [--room id]`))
		return
	}
	roomID := query.RoomID
	if roomID == "" {
		roomID = engine.Status().Session.RoomID
	}
	if roomID == "" {
		fmt.Println(errorStyle.Render("not in a room, use --room <id>"))
		return
	}
	hits, err := index.Search(ctx, roomID, query.Terms, query.Limit)
	if err != nil {
		fmt.Println(errorStyle.Render("search failed: " + err.Error()))
		return
	}
	printSearchHits(hits)
}

func report(err error) {
	if err != nil {
		fmt.Println(errorStyle.Render(err.Error()))
	}
}

func printHelp() {
	fmt.Print(`commands:
  /create <name> [language]  create a room and join it
  /join <room-id>            join an existing room
  /doc                       print the current document
  /edit <text>               replace the document
  /cursor <line> <column>    move your cursor
  /who                       list participants and cursors
  /run [stdin]               run the current document
  /save                      persist the document server-side
  /history                   last 20 journaled messages
  /find <terms>              search the chat transcript
  /leave                     leave the room
  /quit                      exit
anything else is sent as chat
`)
}
