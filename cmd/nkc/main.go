// Command nkc plays No Kitty Cards from a terminal through the relay.
//
//	nkc -host                 open a room and wait for a guest
//	nkc -join <room-id>       join a room
//	nkc -host -resume latest  continue the last stored match
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/sakan811/no-kitty-cards-game/internal/cache"
	"github.com/sakan811/no-kitty-cards-game/internal/config"
	"github.com/sakan811/no-kitty-cards-game/internal/database"
	"github.com/sakan811/no-kitty-cards-game/internal/game"
	"github.com/sakan811/no-kitty-cards-game/internal/logger"
	"github.com/sakan811/no-kitty-cards-game/internal/protocol"
	"github.com/sakan811/no-kitty-cards-game/internal/transport"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

var errQuit = errors.New("quit")

func main() {
	cfg := config.Load()
	var (
		host     = flag.Bool("host", false, "open a new room as host")
		join     = flag.String("join", "", "room id to join as guest")
		passcode = flag.String("passcode", "", "room passcode")
		relayURL = flag.String("relay", cfg.RelayURL, "relay base URL")
		resume   = flag.String("resume", "", "stored match id to resume as host, or 'latest'")
	)
	flag.Parse()

	logger.Init(cfg.LogLevel, cfg.LogJSON)
	log := logger.Get()

	if *host == (*join != "") {
		fmt.Fprintln(os.Stderr, "use exactly one of -host or -join")
		os.Exit(2)
	}
	if err := cfg.Rules.Validate(); err != nil {
		log.WithError(err).Fatal("invalid house rules")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *host, *join, *passcode, *relayURL, *resume); err != nil && !errors.Is(err, errQuit) {
		log.WithError(err).Fatal("nkc")
	}
}

func run(ctx context.Context, cfg config.Config, host bool, join, passcode, relayURL, resume string) error {
	log := logger.Get()

	if cfg.RedisURL != "" {
		if err := cache.Connect(ctx, cfg.RedisURL); err != nil {
			log.WithError(err).Warn("action log disabled")
		} else {
			defer cache.Close()
		}
	}
	if cfg.DatabaseURL != "" {
		if err := database.Connect(ctx, cfg.DatabaseURL); err != nil {
			log.WithError(err).Warn("match store disabled")
		} else {
			defer database.Close()
		}
	}

	var stored *protocol.Snapshot
	if resume != "" {
		if !host {
			return errors.New("only the host can resume a match")
		}
		snap, err := loadStored(ctx, resume)
		if err != nil {
			return fmt.Errorf("resume %s: %w", resume, err)
		}
		stored = &snap
	}

	rooms := transport.NewClient(relayURL)
	var (
		ticket protocol.RoomTicket
		err    error
	)
	if host {
		ticket, err = rooms.CreateRoom(ctx, passcode)
	} else {
		var id uuid.UUID
		if id, err = uuid.Parse(join); err != nil {
			return fmt.Errorf("room id: %w", err)
		}
		ticket, err = rooms.JoinRoom(ctx, id, passcode)
	}
	if err != nil {
		return err
	}
	if host {
		fmt.Printf("room %s, waiting for a guest\n", ticket.RoomID)
	}

	conn, err := transport.Dial(ctx, relayURL, ticket.Token)
	if err != nil {
		return err
	}
	defer conn.Close()

	ui := &termUI{w: os.Stdout}
	peer := game.NewPeer(ticket.PlayerID, ticket.Host, cfg.Rules, conn.Send, ui)
	defer peer.Close()
	if stored != nil {
		if err := peer.Resume(*stored); err != nil {
			return err
		}
		log.WithField("match", stored.MatchID).Info("resuming stored match")
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := conn.Run(ctx, peer.HandleFrame)
		if err == nil {
			err = errors.New("relay closed the connection")
		}
		return err
	})
	g.Go(func() error {
		defer conn.Close()
		return commandLoop(ctx, os.Stdin, peer, ui)
	})
	return g.Wait()
}

func loadStored(ctx context.Context, which string) (protocol.Snapshot, error) {
	if which == "latest" {
		return database.LatestMatch(ctx)
	}
	id, err := uuid.Parse(which)
	if err != nil {
		return protocol.Snapshot{}, err
	}
	return database.LoadMatchSnapshot(ctx, id)
}

// commandLoop reads commands until quit, end of input or ctx ends.
func commandLoop(ctx context.Context, in io.Reader, peer *game.Peer, ui *termUI) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	ui.show("help", nil, 0)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				peer.Leave()
				return errQuit
			}
			if err := execute(line, peer, ui); err != nil {
				return err
			}
		}
	}
}

func execute(line string, peer *game.Peer, ui *termUI) error {
	cmd, err := parseCommand(line)
	if err != nil {
		ui.Warning(err.Error())
		return nil
	}
	switch {
	case cmd.quit:
		peer.Leave()
		return errQuit
	case cmd.intent != nil:
		if err := peer.HandleIntent(cmd.intent); err != nil {
			logger.With(logrus.Fields{"intent": describeIntent(cmd.intent)}).WithError(err).Debug("intent not applied")
		}
		return nil
	}

	if cmd.view == "help" {
		ui.show("help", nil, 0)
		return nil
	}
	m, ok := peer.View()
	if !ok {
		ui.Warning("no match yet")
		return nil
	}
	ui.show(cmd.view, &m, peer.LocalSeat())
	return nil
}
