package host

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"ulascansenturk/weather-glasses/internal/session"
)

var (
	ErrSessionClosed  = errors.New("session is closed")
	ErrEventQueueFull = errors.New("session event queue is full")
)

const eventBuffer = 16

type Card struct {
	Title   string    `json:"title"`
	Body    string    `json:"body"`
	ShownAt time.Time `json:"shown_at"`
}

// LocalSession is an in-process session.Session fed by the webhook handlers.
type LocalSession struct {
	id          string
	userID      string
	hasLocation bool
	logger      zerolog.Logger

	mu          sync.Mutex
	closed      bool
	card        *Card
	subscribers map[int]func(session.LocationUpdate)
	nextSubID   int

	transcriptions chan session.TranscriptionEvent
	buttons        chan session.ButtonEvent
}

func NewLocalSession(id, userID string, hasLocation bool, logger zerolog.Logger) *LocalSession {
	return &LocalSession{
		id:             id,
		userID:         userID,
		hasLocation:    hasLocation,
		logger:         logger,
		subscribers:    make(map[int]func(session.LocationUpdate)),
		transcriptions: make(chan session.TranscriptionEvent, eventBuffer),
		buttons:        make(chan session.ButtonEvent, eventBuffer),
	}
}

func (s *LocalSession) ID() string        { return s.id }
func (s *LocalSession) UserID() string    { return s.userID }
func (s *LocalSession) HasLocation() bool { return s.hasLocation }

func (s *LocalSession) Logger() zerolog.Logger { return s.logger }

func (s *LocalSession) Transcriptions() <-chan session.TranscriptionEvent { return s.transcriptions }
func (s *LocalSession) ButtonPresses() <-chan session.ButtonEvent         { return s.buttons }

func (s *LocalSession) SubscribeLocation(accuracy session.Accuracy, fn func(session.LocationUpdate)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return func() {}
	}

	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.logger.Debug().Str("accuracy", string(accuracy)).Int("subscription", id).Msg("location stream subscribed")

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers, id)
			s.mu.Unlock()
		})
	}
}

func (s *LocalSession) LocationSubscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subscribers)
}

func (s *LocalSession) ShowReferenceCard(title, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.card = &Card{Title: title, Body: body, ShownAt: time.Now().UTC()}
}

func (s *LocalSession) LastCard() (Card, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.card == nil {
		return Card{}, false
	}
	return *s.card, true
}

// PushLocation hands the update to every current subscriber and returns how many received it.
// Callbacks run outside the session lock.
func (s *LocalSession) PushLocation(u session.LocationUpdate) (int, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return 0, ErrSessionClosed
	}
	fns := make([]func(session.LocationUpdate), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(u)
	}
	return len(fns), nil
}

func (s *LocalSession) PushTranscription(ev session.TranscriptionEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}
	select {
	case s.transcriptions <- ev:
		return nil
	default:
		return ErrEventQueueFull
	}
}

func (s *LocalSession) PushButton(ev session.ButtonEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}
	select {
	case s.buttons <- ev:
		return nil
	default:
		return ErrEventQueueFull
	}
}

// Close ends the event streams and drops location subscribers. Safe to call more than once.
func (s *LocalSession) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	close(s.transcriptions)
	close(s.buttons)
	s.subscribers = make(map[int]func(session.LocationUpdate))
}

var _ session.Session = (*LocalSession)(nil)
