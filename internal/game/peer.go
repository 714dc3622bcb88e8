// Package game runs one side of a match: it owns the local engine.Match,
// turns local intents into protocol messages and applies what the other
// peer sends.
package game

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/sakan811/no-kitty-cards-game/engine"
	"github.com/sakan811/no-kitty-cards-game/internal/logger"
	"github.com/sakan811/no-kitty-cards-game/internal/protocol"
	"github.com/sirupsen/logrus"
)

// ErrNoMatch is returned for intents submitted before a match exists.
var ErrNoMatch = errors.New("no match yet")

// maxSkippedWhileResyncing bounds the remote actions and turn ends a peer
// drops while a snapshot is outstanding before it gives the match up.
const maxSkippedWhileResyncing = 32

// UI receives the outputs of a peer. Calls are made with the peer lock held
// and must not call back into the peer.
type UI interface {
	ScoreChanged(total int)
	TurnChanged(isLocal bool)
	GameOver(finalScore int, reason engine.OverReason)
	Warning(message string)
	SelectionOpened(options []engine.ReclaimOption)
	SelectionClosed()
}

// NopUI discards every output.
type NopUI struct{}

func (NopUI) ScoreChanged(int)                       {}
func (NopUI) TurnChanged(bool)                       {}
func (NopUI) GameOver(int, engine.OverReason)        {}
func (NopUI) Warning(string)                         {}
func (NopUI) SelectionOpened([]engine.ReclaimOption) {}
func (NopUI) SelectionClosed()                       {}

// Peer is one client's view of a match.
type Peer struct {
	Mu sync.Mutex

	ID      uuid.UUID
	Host    bool
	MatchID uuid.UUID
	Players [engine.NumSeats]uuid.UUID
	Seat    uint8
	Rules   engine.HouseRules

	Match    engine.Match
	hasMatch bool

	SendFn func(protocol.Message) // delivers a message to the other peer
	UI     UI
	Seed   func() uint64 // match seed source for the host

	awaitingResync bool   // guest: snapshot requested, remote actions ignored
	stateSeq       uint64 // host: number of the last gameState sent
	ackedSeq       uint64 // host: last gameState the guest restored
	skipped        int    // remote frames dropped since the last snapshot
	actionIndex    int

	store     chan storeJob // ordered cache and database writes
	storeDone chan struct{}
	closed    bool

	log *logrus.Entry
}

// NewPeer returns a peer with no match. The host builds the match once the
// guest joins; the guest receives it.
func NewPeer(id uuid.UUID, host bool, rules engine.HouseRules, send func(protocol.Message), ui UI) *Peer {
	if ui == nil {
		ui = NopUI{}
	}
	return &Peer{
		ID:     id,
		Host:   host,
		Rules:  rules,
		SendFn: send,
		UI:     ui,
		Seed:   randomSeed,
		log:    logger.With(logrus.Fields{"player": id, "host": host}),
	}
}

func randomSeed() uint64 {
	id := uuid.New()
	return binary.LittleEndian.Uint64(id[:8])
}

// HasMatch reports whether the peer holds a match.
func (p *Peer) HasMatch() bool {
	p.Mu.Lock()
	defer p.Mu.Unlock()
	return p.hasMatch
}

// View returns a copy of the local match for display.
func (p *Peer) View() (engine.Match, bool) {
	p.Mu.Lock()
	defer p.Mu.Unlock()
	if !p.hasMatch {
		return engine.Match{}, false
	}
	return p.Match.Clone(), true
}

// LocalSeat returns the seat this peer plays.
func (p *Peer) LocalSeat() uint8 {
	p.Mu.Lock()
	defer p.Mu.Unlock()
	return p.Seat
}

func (p *Peer) send(msg protocol.Message) {
	if p.SendFn != nil {
		p.SendFn(msg)
	}
}

func (p *Peer) isLocal(seat uint8) bool { return seat == p.Seat }

func (p *Peer) opponentSeat() uint8 { return p.Match.Opponent(p.Seat) }

// seatOf maps a player ID to a seat of the current match.
func (p *Peer) seatOf(id uuid.UUID) (uint8, bool) {
	for i, pl := range p.Players {
		if pl == id {
			return uint8(i), true
		}
	}
	return 0, false
}

func (p *Peer) snapshot() protocol.Snapshot {
	return protocol.NewSnapshot(p.MatchID, p.Players, &p.Match)
}

// ---------------------------------------------------------------------------
// Local intents
// ---------------------------------------------------------------------------

// HandleIntent applies a local intent. Rule violations are reported to the
// UI as warnings and returned; committed actions are sent to the other peer.
func (p *Peer) HandleIntent(in engine.Intent) error {
	p.Mu.Lock()
	defer p.Mu.Unlock()

	if !p.hasMatch {
		p.UI.Warning(warningText(engine.ErrNotInProgress))
		return ErrNoMatch
	}
	if p.awaitingResync {
		p.UI.Warning("Waiting for the host to resend the match")
		return fmt.Errorf("intent while resyncing: %w", engine.ErrDesync)
	}

	before := p.Match.TotalScore()
	ev, err := p.Match.ApplyIntent(p.Seat, in)
	if err != nil {
		if engine.IsRuleViolation(err) {
			p.UI.Warning(warningText(err))
			p.log.WithError(err).Debug("intent rejected")
		}
		return err
	}

	switch ev.Kind {
	case engine.EventSelectionOpened:
		p.UI.SelectionOpened(ev.Options)
	case engine.EventSelectionCancelled, engine.EventMeowster:
		p.UI.SelectionClosed()
	}

	if !ev.Synced() {
		return nil
	}
	if err := p.broadcast(ev); err != nil {
		return err
	}
	p.logAction(p.ID, ev)
	p.report(ev, before)
	p.persist()
	return nil
}

// broadcast sends the action of a committed local event, followed by the
// turn end when the turn moved.
func (p *Peer) broadcast(ev engine.Event) error {
	action, ok := protocol.ActionFromEvent(&p.Match, ev)
	if !ok {
		return nil
	}
	msg, err := protocol.GameAction(p.ID, action)
	if err != nil {
		return fmt.Errorf("encode %s: %w", ev.Kind, err)
	}
	p.send(msg)
	if ev.TurnEnded && !ev.GameOver {
		p.send(protocol.TurnEnd(p.ID, p.Players[ev.NextPlayer]))
	}
	return nil
}

// report pushes score, turn and game-over outputs after a committed event.
func (p *Peer) report(ev engine.Event, scoreBefore int) {
	if total := p.Match.TotalScore(); total != scoreBefore {
		p.UI.ScoreChanged(total)
	}
	if ev.GameOver {
		p.gameOver()
		return
	}
	if ev.TurnEnded {
		p.UI.TurnChanged(p.isLocal(ev.NextPlayer))
	}
}

func (p *Peer) gameOver() {
	p.log.WithFields(logrus.Fields{
		"match":  p.MatchID,
		"reason": p.Match.Reason,
		"score":  p.Match.TotalScore(),
	}).Info("match over")
	p.UI.GameOver(p.Match.TotalScore(), p.Match.Reason)
}

// ---------------------------------------------------------------------------
// Remote messages
// ---------------------------------------------------------------------------

// HandleFrame decodes one frame and handles it.
func (p *Peer) HandleFrame(frame []byte) error {
	msg, err := protocol.Decode(frame)
	if err != nil {
		p.log.WithError(err).Warn("dropping frame")
		return err
	}
	return p.HandleMessage(msg)
}

// HandleMessage applies one message from the relay or the other peer.
func (p *Peer) HandleMessage(msg protocol.Message) error {
	p.Mu.Lock()
	defer p.Mu.Unlock()

	switch msg.Type {
	case protocol.MsgHello:
		return p.onHello(msg)
	case protocol.MsgPeerJoined:
		return p.onPeerJoined(msg)
	case protocol.MsgGameState:
		return p.onGameState(msg)
	case protocol.MsgGameStart:
		return p.onGameStart(msg)
	case protocol.MsgGameAction:
		return p.onGameAction(msg)
	case protocol.MsgTurnEnd:
		return p.onTurnEnd(msg)
	case protocol.MsgResyncRequest:
		return p.onResyncRequest()
	case protocol.MsgResynced:
		return p.onResynced(msg)
	case protocol.MsgPlayerLeft:
		return p.onPlayerLeft(msg)
	}
	return fmt.Errorf("%q: %w", msg.Type, protocol.ErrUnknownMessage)
}

func (p *Peer) onHello(msg protocol.Message) error {
	if msg.PlayerID == nil {
		return errors.New("hello without playerId")
	}
	p.ID = *msg.PlayerID
	p.Host = msg.Host
	p.log = logger.With(logrus.Fields{"player": p.ID, "host": p.Host})
	return nil
}

// onPeerJoined starts a fresh match, or resends the resumed one, once the
// guest is connected.
func (p *Peer) onPeerJoined(msg protocol.Message) error {
	if !p.Host || msg.PlayerID == nil {
		return nil
	}
	guest := *msg.PlayerID

	if p.hasMatch && !p.Match.IsOver() {
		p.Players[p.opponentSeat()] = guest
		p.log.WithField("match", p.MatchID).Info("resuming match for new guest")
		p.sendState()
		p.UI.TurnChanged(p.Match.CurrentPlayer == p.Seat)
		p.persist()
		return nil
	}

	p.MatchID = uuid.New()
	p.Seat = 0
	p.Players = [engine.NumSeats]uuid.UUID{p.ID, guest}
	p.Match = engine.NewMatch(p.Seed(), p.Rules)
	p.hasMatch = true
	p.awaitingResync = false
	p.actionIndex = 0
	first := p.Match.RandomSeat()

	p.sendState()
	if err := p.Match.Start(first); err != nil {
		return fmt.Errorf("start match: %w", err)
	}
	p.send(protocol.GameStart(p.ID, p.Players[first]))

	p.log.WithFields(logrus.Fields{"match": p.MatchID, "first": first}).Info("match started")
	p.logEvent(uuid.Nil, "match_start", map[string]any{"firstPlayer": p.Players[first]})
	p.UI.ScoreChanged(0)
	p.UI.TurnChanged(p.isLocal(first))
	p.persist()
	return nil
}

func (p *Peer) onGameState(msg protocol.Message) error {
	if p.Host {
		p.log.Warn("host ignores gameState")
		return nil
	}
	if msg.State == nil {
		return p.failResync(errors.New("gameState without state"))
	}
	restored, err := msg.State.Restore()
	if err != nil {
		return p.failResync(err)
	}
	seat, ok := msg.State.SeatOf(p.ID)
	if !ok {
		return p.failResync(fmt.Errorf("player %s is not seated in match %s", p.ID, msg.State.MatchID))
	}

	p.MatchID = msg.State.MatchID
	p.Players = msg.State.Players
	p.Seat = seat
	p.Match = restored
	p.Rules = restored.Rules
	p.hasMatch = true
	p.awaitingResync = false
	p.skipped = 0
	p.log.WithFields(logrus.Fields{
		"match":       p.MatchID,
		"seat":        seat,
		"seq":         msg.Seq,
		"fingerprint": p.Match.Fingerprint(),
	}).Info("match state received")
	p.send(protocol.Resynced(p.ID, msg.Seq))

	p.UI.SelectionClosed()
	p.UI.ScoreChanged(p.Match.TotalScore())
	switch p.Match.Phase {
	case engine.PhaseInProgress:
		p.UI.TurnChanged(p.Match.CurrentPlayer == p.Seat)
	case engine.PhaseGameOver:
		p.gameOver()
	}
	return nil
}

func (p *Peer) onGameStart(msg protocol.Message) error {
	if p.Host {
		return nil
	}
	if !p.hasMatch || msg.FirstPlayer == nil {
		return p.desync(fmt.Errorf("%w: gameStart before gameState", engine.ErrDesync))
	}
	first, ok := p.seatOf(*msg.FirstPlayer)
	if !ok {
		return p.desync(fmt.Errorf("%w: first player %s is not seated", engine.ErrDesync, *msg.FirstPlayer))
	}
	if err := p.Match.Start(first); err != nil {
		return p.desync(fmt.Errorf("start match: %w", err))
	}
	p.UI.TurnChanged(p.isLocal(first))
	return nil
}

func (p *Peer) onGameAction(msg protocol.Message) error {
	if p.resyncing() {
		return p.skip(msg.Type)
	}
	if !p.hasMatch {
		return p.desync(fmt.Errorf("%w: action before match", engine.ErrDesync))
	}
	if p.Match.IsOver() {
		return nil
	}
	action, err := msg.DecodeAction()
	if err != nil {
		return p.desync(fmt.Errorf("%w: %v", engine.ErrDesync, err))
	}

	seat := p.opponentSeat()
	before := p.Match.TotalScore()
	var ev engine.Event
	switch a := action.(type) {
	case protocol.DrawCard:
		ev, err = p.Match.ApplyRemoteDraw(seat, a.Family, a.Card)
	case protocol.PlaceNumber:
		if c, ok := p.Match.Card(a.Card); ok && c.Value != a.Value {
			err = fmt.Errorf("%w: card %d is %s, sender says %d", engine.ErrDesync, a.Card, c.Label(), a.Value)
			break
		}
		ev, err = p.Match.ApplyRemotePlace(seat, a.Card, a.Tile)
	case protocol.PlayByeBye:
		ev, err = p.Match.ApplyRemoteByeBye(seat, a.Card)
	case protocol.PlayMeowster:
		ev, err = p.Match.ApplyRemoteMeowster(seat, a.Card, a.Option, a.NewCard)
	}
	if err != nil {
		return p.desync(err)
	}

	p.logAction(p.Players[seat], ev)
	p.report(ev, before)
	p.persist()
	return nil
}

func (p *Peer) onTurnEnd(msg protocol.Message) error {
	if !p.hasMatch || p.Match.IsOver() {
		return nil
	}
	if p.resyncing() {
		return p.skip(msg.Type)
	}
	if msg.NextPlayer == nil {
		return p.desync(fmt.Errorf("%w: turnEnd without nextPlayer", engine.ErrDesync))
	}
	next, ok := p.seatOf(*msg.NextPlayer)
	if !ok {
		return p.desync(fmt.Errorf("%w: next player %s is not seated", engine.ErrDesync, *msg.NextPlayer))
	}
	prev := p.Match.CurrentPlayer
	if err := p.Match.ApplyTurnEnd(next); err != nil {
		return p.desync(err)
	}
	if !p.Match.IsOver() && prev != p.Match.CurrentPlayer {
		p.UI.TurnChanged(p.isLocal(next))
		p.persist()
	}
	return nil
}

func (p *Peer) onResyncRequest() error {
	if !p.Host || !p.hasMatch {
		return nil
	}
	p.log.WithField("match", p.MatchID).Info("guest requested resync")
	p.sendState()
	return nil
}

func (p *Peer) onResynced(msg protocol.Message) error {
	if !p.Host {
		return nil
	}
	if msg.Seq != p.stateSeq {
		p.log.WithFields(logrus.Fields{"seq": msg.Seq, "want": p.stateSeq}).Debug("stale resync ack")
		return nil
	}
	p.ackedSeq = msg.Seq
	return nil
}

func (p *Peer) onPlayerLeft(msg protocol.Message) error {
	if !p.hasMatch || p.Match.IsOver() {
		return nil
	}
	reason := engine.ReasonDisconnect
	if msg.Reason == protocol.LeftDesync {
		reason = engine.ReasonDesync
	}
	p.log.WithField("reason", msg.Reason).Info("other player left")
	p.Match.ForceGameOver(reason)
	p.logEvent(uuid.Nil, "player_left", map[string]any{"reason": msg.Reason})
	p.gameOver()
	p.forget()
	return nil
}

// ---------------------------------------------------------------------------
// Desync recovery
// ---------------------------------------------------------------------------

// sendState sends the host's match as a new numbered snapshot. Guest actions
// and turn ends are ignored until the guest confirms it restored this one.
func (p *Peer) sendState() {
	p.stateSeq++
	p.skipped = 0
	p.send(protocol.GameState(p.ID, p.stateSeq, p.snapshot()))
}

// resyncing reports whether remote actions are currently ignored: the guest
// waits for a snapshot, the host for the guest's ack of its last one.
func (p *Peer) resyncing() bool {
	if p.Host {
		return p.ackedSeq != p.stateSeq
	}
	return p.awaitingResync
}

// skip drops a remote frame received while resyncing. Too many of them
// means the snapshot is not coming and the match ends.
func (p *Peer) skip(typ protocol.MessageType) error {
	p.skipped++
	if p.skipped > maxSkippedWhileResyncing {
		return p.failResync(fmt.Errorf("no resync after %d frames", maxSkippedWhileResyncing))
	}
	p.log.WithField("type", typ).Debug("ignoring frame while resyncing")
	return nil
}

// desync recovers from a remote message that does not fit local state. The
// host's match is authoritative, so the host resends it; the guest asks for
// it and ignores remote actions until it arrives.
func (p *Peer) desync(err error) error {
	if !p.hasMatch {
		p.log.WithError(err).Warn("desync before match")
		return err
	}
	p.log.WithError(err).WithFields(logrus.Fields{
		"match":       p.MatchID,
		"fingerprint": p.Match.Fingerprint(),
	}).Warn("desync")
	if p.Host {
		p.sendState()
		return err
	}
	p.awaitingResync = true
	p.skipped = 0
	p.Match.Selected = engine.NoCard
	if p.Match.Selection != nil {
		p.Match.Selection = nil
		p.UI.SelectionClosed()
	}
	p.send(protocol.ResyncRequest(p.ID))
	return err
}

// failResync ends the match when the peers cannot be brought back in step.
func (p *Peer) failResync(err error) error {
	p.log.WithError(err).Error("resync failed")
	p.awaitingResync = false
	p.ackedSeq = p.stateSeq
	if p.hasMatch {
		p.Match.ForceGameOver(engine.ReasonDesync)
		p.gameOver()
		p.forget()
	} else {
		p.UI.GameOver(0, engine.ReasonDesync)
	}
	p.send(protocol.PlayerLeft(p.ID, p.ID, protocol.LeftDesync))
	return fmt.Errorf("%w: %v", engine.ErrDesync, err)
}

// ---------------------------------------------------------------------------
// Resume and leave
// ---------------------------------------------------------------------------

// Resume installs a stored snapshot on the host. The host always sits in
// seat 0 and takes it over under its current ID. The match continues once a
// guest joins and receives it.
func (p *Peer) Resume(snap protocol.Snapshot) error {
	p.Mu.Lock()
	defer p.Mu.Unlock()

	if !p.Host {
		return errors.New("only the host resumes a match")
	}
	m, err := snap.Restore()
	if err != nil {
		return err
	}
	if m.IsOver() {
		return fmt.Errorf("match %s is already over", snap.MatchID)
	}
	p.MatchID = snap.MatchID
	p.Players = snap.Players
	p.Seat = 0
	p.Players[p.Seat] = p.ID
	p.Match = m
	p.Rules = m.Rules
	p.hasMatch = true
	p.log.WithField("match", p.MatchID).Info("match resumed from store")
	return nil
}

// Leave ends the match locally and tells the other peer.
func (p *Peer) Leave() {
	p.Mu.Lock()
	defer p.Mu.Unlock()
	p.send(protocol.PlayerLeft(p.ID, p.ID, protocol.LeftQuit))
	if p.hasMatch && !p.Match.IsOver() {
		p.Match.ForceGameOver(engine.ReasonDisconnect)
		p.forget()
	}
}
