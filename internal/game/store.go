package game

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sakan811/no-kitty-cards-game/engine"
	"github.com/sakan811/no-kitty-cards-game/internal/cache"
	"github.com/sakan811/no-kitty-cards-game/internal/database"
	"github.com/sirupsen/logrus"
)

const (
	storeBuffer  = 64
	storeTimeout = 2 * time.Second
)

// storeJob is one cache or database write.
type storeJob struct {
	name string
	run  func(ctx context.Context) error
}

// enqueue hands a write to the peer's store worker, starting it on first
// use. Writes run one at a time in the order they were committed. Caller
// holds p.Mu.
func (p *Peer) enqueue(name string, run func(ctx context.Context) error) {
	if p.closed {
		return
	}
	if p.store == nil {
		p.store = make(chan storeJob, storeBuffer)
		p.storeDone = make(chan struct{})
		go runStore(p.store, p.storeDone, p.log)
	}
	p.store <- storeJob{name: name, run: run}
}

func runStore(jobs <-chan storeJob, done chan<- struct{}, log *logrus.Entry) {
	defer close(done)
	for job := range jobs {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		if err := job.run(ctx); err != nil {
			log.WithError(err).WithField("job", job.name).Warn("store write failed")
		}
		cancel()
	}
}

// Close waits for queued writes to finish. Later writes are dropped.
func (p *Peer) Close() {
	p.Mu.Lock()
	if p.closed {
		p.Mu.Unlock()
		return
	}
	p.closed = true
	jobs, done := p.store, p.storeDone
	p.Mu.Unlock()

	if jobs != nil {
		close(jobs)
		<-done
	}
}

func (p *Peer) logAction(actor uuid.UUID, ev engine.Event) {
	payload := map[string]any{"seat": ev.Seat, "cardId": ev.Card}
	switch ev.Kind {
	case engine.EventCardDrawn:
		payload["family"] = ev.Family.String()
	case engine.EventNumberPlaced:
		payload["tileIndex"] = ev.Tile
		payload["score"] = ev.Score
	case engine.EventByeBye:
		payload["cleared"] = ev.Cleared
	case engine.EventMeowster:
		payload["option"] = ev.Option
		payload["newCardId"] = ev.NewCard
	}
	if ev.GameOver {
		payload["gameOver"] = ev.Reason.String()
	}
	p.logEvent(actor, ev.Kind.String(), payload)
}

// logEvent appends an entry to the match action log in Redis.
func (p *Peer) logEvent(actor uuid.UUID, actionType string, payload map[string]any) {
	p.actionIndex++
	rec := cache.MatchActionRecord{
		MatchID:     p.MatchID,
		ActionIndex: p.actionIndex,
		ActorID:     actor,
		ActionType:  actionType,
		Payload:     payload,
		Timestamp:   time.Now().UnixMilli(),
	}
	if cache.Rdb == nil {
		return
	}
	p.enqueue("action "+actionType, func(ctx context.Context) error {
		return cache.PublishMatchAction(ctx, rec)
	})
}

// persist stores the host's match so it can be resumed after a restart.
func (p *Peer) persist() {
	if !p.Host || database.DB == nil || !p.hasMatch {
		return
	}
	if p.Match.IsOver() {
		p.forget()
		return
	}
	snap, host := p.snapshot(), p.ID
	p.enqueue("store match", func(ctx context.Context) error {
		return database.UpsertMatchSnapshot(ctx, host, snap)
	})
}

// forget drops the stored match once it is over.
func (p *Peer) forget() {
	if !p.Host || database.DB == nil {
		return
	}
	id := p.MatchID
	p.enqueue("delete match", func(ctx context.Context) error {
		return database.DeleteMatch(ctx, id)
	})
}
