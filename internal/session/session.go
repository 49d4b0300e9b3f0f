package session

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/amchen/gitfolio/internal/github"
	"github.com/amchen/gitfolio/internal/knowledge"
	"github.com/amchen/gitfolio/internal/match"
	"github.com/amchen/gitfolio/internal/pubsub"
)

// Message roles in the chat transcript.
const (
	RoleUser = "user"
	RoleBot  = "bot"
)

// ChatMessage is one transcript entry.
type ChatMessage struct {
	ID      string
	Role    string
	Content string
}

// Session drives one interactive chat: it owns the current search target,
// the knowledge base built for it, and the transcript. A generation counter
// guards against results from superseded builds: any state change that
// invalidates in-flight work bumps the generation, and a build only commits
// if the generation it started under is still current.
type Session struct {
	mu         sync.Mutex
	gen        int
	handle     string
	profile    *github.Profile
	repos      []github.RepoSummary
	kb         *knowledge.KnowledgeBase
	mode       knowledge.ScanMode
	transcript []ChatMessage
	nextMsgID  int

	fetcher *github.Fetcher
	builder *knowledge.Builder
	gate    *github.Gate
	broker  *pubsub.Broker[string]
	logger  *log.Logger

	// Tick intervals, overridable in tests.
	countdownInterval time.Duration
	pollInterval      time.Duration
}

// New creates a session. pollInterval controls how often the quota endpoint
// is polled while the session runs; zero uses the one-minute default.
func New(fetcher *github.Fetcher, builder *knowledge.Builder, gate *github.Gate,
	broker *pubsub.Broker[string], mode knowledge.ScanMode, pollInterval time.Duration,
	logger *log.Logger) *Session {
	if logger == nil {
		logger = log.New(log.Writer(), "[session] ", log.LstdFlags)
	}
	if pollInterval <= 0 {
		pollInterval = time.Minute
	}
	return &Session{
		mode:              mode,
		fetcher:           fetcher,
		builder:           builder,
		gate:              gate,
		broker:            broker,
		logger:            logger,
		countdownInterval: time.Second,
		pollInterval:      pollInterval,
	}
}

// Search switches the session to a new handle. The profile and repo list are
// fetched synchronously; the knowledge base build runs in the background and
// is published when it commits. Any previous knowledge base and transcript
// are discarded before the first network call. While the quota gate is
// limited the search is refused without touching the network.
func (s *Session) Search(ctx context.Context, handle string) (*github.Profile, []github.RepoSummary, error) {
	if s.gate.IsLimited(time.Now()) {
		return nil, nil, &github.RateLimitedError{ResetAt: s.gate.Status().Reset}
	}

	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.handle = handle
	s.profile = nil
	s.repos = nil
	s.kb = nil
	s.transcript = nil
	s.mu.Unlock()

	s.broker.Publish(pubsub.SearchStarted, handle)

	profile, err := s.fetcher.Profile(ctx, handle)
	if err != nil {
		s.noteError(err)
		return nil, nil, fmt.Errorf("fetching profile for %s: %w", handle, err)
	}
	repos, err := s.fetcher.Repos(ctx, handle)
	if err != nil {
		s.noteError(err)
		return nil, nil, fmt.Errorf("fetching repos for %s: %w", handle, err)
	}

	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return profile, repos, nil
	}
	s.profile = profile
	s.repos = repos
	mode := s.mode
	s.mu.Unlock()

	go s.runBuild(ctx, gen, handle, repos, mode)

	return profile, repos, nil
}

// SetMode changes the scan mode. If a search target is loaded, the knowledge
// base is rebuilt from the already-fetched repo list under a new generation,
// which drops any in-flight build.
func (s *Session) SetMode(ctx context.Context, mode knowledge.ScanMode) {
	s.mu.Lock()
	if s.mode == mode {
		s.mu.Unlock()
		return
	}
	s.mode = mode
	s.kb = nil
	s.gen++
	gen := s.gen
	handle := s.handle
	repos := s.repos
	s.mu.Unlock()

	if handle == "" || repos == nil {
		return
	}
	go s.runBuild(ctx, gen, handle, repos, mode)
}

// Ask records a user message and produces the bot's reply from the current
// knowledge base. Both messages are appended to the transcript.
func (s *Session) Ask(query string) ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.appendLocked(RoleUser, query)
	reply := match.Respond(s.kb, query)
	return s.appendLocked(RoleBot, reply)
}

// Transcript returns a copy of the chat transcript.
func (s *Session) Transcript() []ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ChatMessage, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// Knowledge returns the current knowledge base, or nil while a build is
// pending.
func (s *Session) Knowledge() *knowledge.KnowledgeBase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.kb
}

// Handle returns the current search target, or "" before the first search.
func (s *Session) Handle() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handle
}

// Run drives the session's timers until ctx is cancelled: a one-second tick
// that publishes the quota countdown while the gate is limited, and a
// periodic poll of the quota endpoint. Blocks until ctx is done.
func (s *Session) Run(ctx context.Context) {
	countdown := time.NewTicker(s.countdownInterval)
	defer countdown.Stop()
	poll := time.NewTicker(s.pollInterval)
	defer poll.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-countdown.C:
			now := time.Now()
			if s.gate.IsLimited(now) {
				s.broker.Publish(pubsub.CountdownTick, s.gate.Countdown(now))
			}
		case <-poll.C:
			if _, err := s.fetcher.PollRateLimit(ctx); err != nil {
				s.logger.Printf("quota poll failed: %v", err)
			}
		}
	}
}

// runBuild executes one knowledge base build and commits the result only if
// the session generation has not moved on. Superseded results are dropped,
// never shown.
func (s *Session) runBuild(ctx context.Context, gen int, handle string, repos []github.RepoSummary, mode knowledge.ScanMode) {
	kb, err := s.builder.Build(ctx, handle, repos, mode)
	if err != nil {
		s.noteError(err)
		s.logger.Printf("build for %s failed: %v", handle, err)
		return
	}

	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		s.logger.Printf("dropping stale build for %s", handle)
		return
	}
	s.kb = kb
	s.mu.Unlock()

	s.broker.Publish(pubsub.KnowledgeUpdated, handle)
}

// noteError publishes a rate-limit notice when err carries one. The gate
// itself is updated by the fetcher; this only surfaces the transition.
func (s *Session) noteError(err error) {
	if github.IsRateLimited(err) {
		s.broker.Publish(pubsub.RateLimited, s.gate.Countdown(time.Now()))
	}
}

func (s *Session) appendLocked(role, content string) ChatMessage {
	s.nextMsgID++
	msg := ChatMessage{
		ID:      fmt.Sprintf("m%04d", s.nextMsgID),
		Role:    role,
		Content: content,
	}
	s.transcript = append(s.transcript, msg)
	return msg
}
