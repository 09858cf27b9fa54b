// Package session coordinates one tutoring interaction: it owns the session
// state machine, wires connection events through the math pipeline into the
// transcript board, and tracks session health and metrics.
//
// Exactly one Orchestrator exists per running application. It is constructed
// by the composition root with its collaborators injected; all mutation of
// session state goes through its methods.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tutorstack/tutorcore/pkg/archive"
	"github.com/tutorstack/tutorcore/pkg/jsontime"
	"github.com/tutorstack/tutorcore/pkg/mathtex"
	"github.com/tutorstack/tutorcore/pkg/realtime"
	"github.com/tutorstack/tutorcore/pkg/transcript"
)

// Config starts a session.
type Config struct {
	// StudentID identifies the student. Required.
	StudentID string

	// Topic is the tutoring topic (e.g., "Algebra").
	Topic string

	// Profile overrides the converter's education profile for this session
	// (elementary, middle_school, high_school, college). Empty keeps the
	// injected converter.
	Profile string

	// EligibleStatuses overrides the statuses in which ingestion is
	// accepted. Defaults to DefaultEligibleStatuses.
	EligibleStatuses []Status
}

// Deps are the orchestrator's injected collaborators. Board, Converter and
// Renderer are required; Conn, Flags and Archive are optional and degrade
// gracefully when absent.
type Deps struct {
	Conn      *realtime.Manager
	Board     *transcript.Board
	Converter *mathtex.Converter
	Renderer  *mathtex.Renderer
	Flags     FlagSource
	Archive   archive.Store
	Logger    *slog.Logger
}

// Fragment is the inbound payload shape delivered by the voice/AI
// collaborator over the control connection.
type Fragment struct {
	Speaker    string   `json:"speaker"`
	Content    string   `json:"content"`
	Type       string   `json:"type,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// current holds the state of the running session.
type current struct {
	id        string
	studentID string
	topic     string
	startedAt jsontime.Milli
	endedAt   jsontime.Milli
	eligible  map[Status]bool
	firstSeq  int64 // board position at session start

	messages  int64
	mathItems int64
	errors    int64
}

// Orchestrator is the session state machine.
type Orchestrator struct {
	deps   Deps
	logger *slog.Logger

	mu        sync.Mutex
	status    Status
	sess      *current
	conv      *mathtex.Converter
	voice     string // VoiceOK, VoiceDown, VoiceDisabled
	watchStop chan struct{}
}

// New creates an Orchestrator. It panics if a required dependency is
// missing, since that is a composition-root bug, not a runtime condition.
func New(deps Deps) *Orchestrator {
	if deps.Board == nil {
		panic("session: Deps.Board is required")
	}
	if deps.Converter == nil {
		deps.Converter = mathtex.NewConverter(mathtex.MiddleSchool)
	}
	if deps.Renderer == nil {
		deps.Renderer = mathtex.NewRenderer()
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		deps:   deps,
		logger: logger,
		status: Idle,
		conv:   deps.Converter,
		voice:  VoiceDisabled,
	}
}

// Status returns the current session status.
func (o *Orchestrator) Status() Status {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status
}

// SessionID returns the current session id, or "" when none is running.
func (o *Orchestrator) SessionID() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.sess == nil {
		return ""
	}
	return o.sess.id
}

// Start begins a new session. It fails with ErrSessionActive if one is
// already running. The voice channel is wired only when the voice feature
// toggle is enabled and a connection manager was injected; a voice failure
// degrades the session (voice down, text continues) instead of failing it.
func (o *Orchestrator) Start(ctx context.Context, cfg Config) (string, error) {
	if cfg.StudentID == "" {
		return "", fmt.Errorf("session: config: student id is required")
	}

	o.mu.Lock()
	if o.status != Idle && o.status != Ended {
		o.countErrorLocked()
		o.mu.Unlock()
		return "", ErrSessionActive
	}

	eligible := cfg.EligibleStatuses
	if len(eligible) == 0 {
		eligible = DefaultEligibleStatuses
	}
	eligibleSet := make(map[Status]bool, len(eligible))
	for _, st := range eligible {
		eligibleSet[st] = true
	}

	o.conv = o.deps.Converter
	if cfg.Profile != "" {
		o.conv = mathtex.NewConverter(mathtex.ParseProfile(cfg.Profile))
	}

	id := fmt.Sprintf("%s-%d-%s", cfg.StudentID, time.Now().UnixMilli(), uuid.NewString()[:6])
	o.sess = &current{
		id:        id,
		studentID: cfg.StudentID,
		topic:     cfg.Topic,
		startedAt: jsontime.Now(),
		eligible:  eligibleSet,
		firstSeq:  o.deps.Board.NextSeq(),
	}
	o.status = Connecting

	voiceWanted := o.deps.Conn != nil && o.flag(FlagVoice)
	if !voiceWanted {
		// Nothing to wait for: the session is immediately active,
		// text-only.
		o.status = Active
		o.voice = VoiceDisabled
		o.mu.Unlock()
		o.logger.Info("session: started", "session", id, "topic", cfg.Topic, "voice", false)
		return id, nil
	}

	o.voice = VoiceDown // until the channel reports connected
	stop := make(chan struct{})
	o.watchStop = stop
	o.mu.Unlock()

	go o.watch(stop)
	go func() {
		if err := o.deps.Conn.Connect(ctx); err != nil && realtime.IsFatal(err) {
			// Fail open: the session proceeds without voice.
			o.mu.Lock()
			o.voice = VoiceDown
			if o.status == Connecting {
				o.status = Active
			}
			o.mu.Unlock()
			o.logger.Warn("session: voice unavailable, continuing text-only", "err", err)
		}
	}()

	o.logger.Info("session: started", "session", id, "topic", cfg.Topic, "voice", true)
	return id, nil
}

// ItemOption configures one ingested item.
type ItemOption func(*itemOpts)

type itemOpts struct {
	kind       transcript.Kind
	kindSet    bool
	confidence float64
	display    bool
}

// WithKind sets an explicit content kind, bypassing detection for KindText.
func WithKind(k transcript.Kind) ItemOption {
	return func(io *itemOpts) {
		io.kind = k
		io.kindSet = true
	}
}

// WithConfidence sets the speech-recognition confidence.
func WithConfidence(c float64) ItemOption {
	return func(io *itemOpts) { io.confidence = c }
}

// WithDisplay renders math in block (display) mode.
func WithDisplay() ItemOption {
	return func(io *itemOpts) { io.display = true }
}

// AddItem is the single ingestion entry point for transcript content. Items
// are accepted while the session status is in the ingestion-eligible set
// (by default Connecting and Active). Rejections return ErrNotIngesting and
// are counted and logged; they are never silent.
//
// Unless the kind is explicitly text, content flows through the math
// pipeline: embedded notation is detected, spoken phrasing is converted, and
// the result is validated and rendered. AddItem returns the board-assigned
// item id.
func (o *Orchestrator) AddItem(content, speaker string, opts ...ItemOption) (string, error) {
	var io itemOpts
	io.confidence = 1
	for _, opt := range opts {
		opt(&io)
	}

	o.mu.Lock()
	if o.sess == nil || !o.sess.eligible[o.status] {
		st := o.status
		o.countErrorLocked()
		o.mu.Unlock()
		o.logger.Warn("session: transcript item rejected", "status", st.String(), "speaker", speaker)
		return "", fmt.Errorf("session: status %s: %w", st, ErrNotIngesting)
	}
	conv := o.conv
	o.mu.Unlock()

	item := transcript.Item{
		Kind:       transcript.KindText,
		Content:    content,
		Speaker:    speaker,
		Confidence: io.confidence,
	}
	if io.kindSet {
		item.Kind = io.kind
	}

	if !io.kindSet || io.kind == transcript.KindMath {
		if latex, display, isMath := o.classify(conv, content, io); isMath {
			item.Kind = transcript.KindMath
			item.Rendered = o.deps.Renderer.Render(latex, mathtex.Options{Display: display})
		} else {
			item.Kind = transcript.KindText
		}
	}

	stored := o.deps.Board.Add(item)

	o.mu.Lock()
	if o.sess != nil {
		o.sess.messages++
		if stored.Kind == transcript.KindMath {
			o.sess.mathItems++
		}
	}
	o.mu.Unlock()
	return stored.ID, nil
}

// classify runs detection and conversion and reports whether content is
// mathematical, returning the markup to render. It never fails; worst case
// the content is treated as plain text.
func (o *Orchestrator) classify(conv *mathtex.Converter, content string, io itemOpts) (latex string, display, isMath bool) {
	if spans := mathtex.DetectSpans(content); len(spans) > 0 {
		s := spans[0]
		return s.Body, io.display || s.Kind == mathtex.SpanBlock, true
	}
	if converted, changed := conv.Convert(content); changed {
		if corrected, ok := mathtex.AutoCorrect(converted); ok {
			converted = corrected
		}
		return converted, io.display, true
	}
	if io.kindSet && io.kind == transcript.KindMath {
		// Caller says math but nothing was detected or converted: trust
		// the hint and render the content as markup.
		if corrected, ok := mathtex.AutoCorrect(content); ok {
			content = corrected
		}
		return content, io.display, true
	}
	return "", false, false
}

// Pause stops ingestion until Resume. Pausing is deliberate: a paused tutor
// stopped listening, so items arriving while paused are rejected.
func (o *Orchestrator) Pause() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.status != Active {
		o.countErrorLocked()
		return fmt.Errorf("session: pause in status %s: %w", o.status, ErrNotActive)
	}
	o.status = Paused
	return nil
}

// Resume re-enables ingestion after Pause.
func (o *Orchestrator) Resume() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.status != Paused {
		o.countErrorLocked()
		return fmt.Errorf("session: resume in status %s: %w", o.status, ErrNotActive)
	}
	o.status = Active
	return nil
}

// End finalizes the session with the given id: it appends a terminal marker
// item, archives the transcript (fail-open), tears down voice wiring, and
// moves the session to Ended. A mismatched id fails with ErrNotFound.
func (o *Orchestrator) End(id string) error {
	o.mu.Lock()
	if o.sess == nil || o.sess.id != id {
		o.countErrorLocked()
		o.mu.Unlock()
		return fmt.Errorf("session: %q: %w", id, ErrNotFound)
	}
	o.sess.endedAt = jsontime.Now()
	o.status = Ended
	if o.watchStop != nil {
		close(o.watchStop)
		o.watchStop = nil
	}
	sess := o.sess
	o.mu.Unlock()

	o.deps.Board.Add(transcript.Item{
		Kind:    transcript.KindSystem,
		Content: "Session ended",
		Speaker: transcript.SpeakerSystem,
	})

	if o.deps.Conn != nil {
		o.deps.Conn.Disconnect()
	}
	o.archiveSession(sess)

	o.logger.Info("session: ended", "session", id,
		"messages", sess.messages, "math_items", sess.mathItems)
	return nil
}

// archiveSession persists the ended session. Archive failures are logged
// and swallowed: losing the archive must not fail the teardown.
func (o *Orchestrator) archiveSession(sess *current) {
	if o.deps.Archive == nil {
		return
	}
	rec := &archive.Record{
		SessionID: sess.id,
		StudentID: sess.studentID,
		Topic:     sess.topic,
		StartedAt: sess.startedAt,
		EndedAt:   sess.endedAt,
		Messages:  sess.messages,
		MathItems: sess.mathItems,
		Errors:    sess.errors,
	}
	// The board is shared across sessions; snapshot only the items added
	// since this session started.
	for _, it := range o.deps.Board.Items() {
		if it.Seq < sess.firstSeq {
			continue
		}
		ir := archive.ItemRecord{
			Seq:        it.Seq,
			Kind:       it.Kind.String(),
			Speaker:    it.Speaker,
			Content:    it.Content,
			Confidence: it.Confidence,
			Time:       it.Time,
		}
		if it.Rendered != nil {
			ir.Latex = it.Rendered.Source
		}
		rec.Items = append(rec.Items, ir)
	}
	if err := o.deps.Archive.SaveSession(context.Background(), rec); err != nil {
		o.logger.Error("session: archive failed", "session", sess.id, "err", err)
	}
}

// Health aggregates subsystem health into an overall verdict. It never
// returns an error: degraded subsystems are reported, not escalated.
func (o *Orchestrator) Health() Report {
	o.mu.Lock()
	status := o.status
	voice := o.voice
	o.mu.Unlock()

	rep := Report{
		Status: status,
		Board:  o.deps.Board != nil,
		Voice:  voice,
	}
	if o.deps.Conn != nil {
		rep.Conn = o.deps.Conn.Phase()
	}

	switch {
	case !rep.Board:
		rep.Overall = Unhealthy
	case voice == VoiceDown:
		rep.Overall = Degraded
	case voice == VoiceOK && !rep.Conn.Live():
		rep.Overall = Degraded
	default:
		rep.Overall = Healthy
	}
	return rep
}

// Metrics returns a read-only snapshot of the session counters.
func (o *Orchestrator) Metrics() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()

	snap := Snapshot{Status: o.status}
	if o.sess == nil {
		return snap
	}
	snap.SessionID = o.sess.id
	snap.Messages = o.sess.messages
	snap.MathItems = o.sess.mathItems
	snap.Errors = o.sess.errors
	if total := o.sess.messages + o.sess.errors; total > 0 {
		snap.ErrorRate = float64(o.sess.errors) / float64(total)
	}
	switch {
	case !o.sess.endedAt.IsZero():
		snap.Duration = jsontime.Duration(o.sess.endedAt.Sub(o.sess.startedAt))
	default:
		snap.Duration = jsontime.Duration(jsontime.Now().Sub(o.sess.startedAt))
	}
	return snap
}

// countErrorLocked bumps the error counter. Callers hold o.mu.
func (o *Orchestrator) countErrorLocked() {
	if o.sess != nil {
		o.sess.errors++
	}
}

// flag reads a feature toggle, treating an absent source as all-off.
func (o *Orchestrator) flag(name string) bool {
	if o.deps.Flags == nil {
		return false
	}
	return o.deps.Flags.IsEnabled(name)
}

// watch consumes connection events for the life of one session: it moves
// the session to Active on channel establishment, marks voice health, and
// feeds inbound fragments into ingestion.
func (o *Orchestrator) watch(stop chan struct{}) {
	ingest := o.flag(FlagIngest)
	for {
		select {
		case <-stop:
			return
		case ev, ok := <-o.deps.Conn.Events():
			if !ok {
				return
			}
			switch ev.Type {
			case realtime.EventConnected:
				o.mu.Lock()
				o.voice = VoiceOK
				if o.status == Connecting {
					o.status = Active
				}
				o.mu.Unlock()
			case realtime.EventFailed:
				// Fail open: voice is gone for good, the session is not.
				o.mu.Lock()
				o.voice = VoiceDown
				if o.status == Connecting {
					o.status = Active
				}
				o.mu.Unlock()
				o.logger.Warn("session: voice channel failed, continuing text-only")
			case realtime.EventReconnecting, realtime.EventError:
				o.mu.Lock()
				o.voice = VoiceDown
				o.mu.Unlock()
			case realtime.EventMessage:
				if !ingest {
					continue
				}
				o.ingestFragment(ev.Data)
			}
		}
	}
}

// ingestFragment parses an inbound payload and routes it through AddItem.
// Malformed payloads are logged and dropped; they never break the loop.
func (o *Orchestrator) ingestFragment(data []byte) {
	var frag Fragment
	if err := json.Unmarshal(data, &frag); err != nil {
		o.logger.Warn("session: malformed fragment", "err", err)
		return
	}
	if frag.Content == "" {
		return
	}
	speaker := frag.Speaker
	if speaker == "" {
		speaker = transcript.SpeakerTutor
	}

	var opts []ItemOption
	switch frag.Type {
	case "text":
		opts = append(opts, WithKind(transcript.KindText))
	case "math":
		opts = append(opts, WithKind(transcript.KindMath))
	}
	if frag.Confidence != nil {
		opts = append(opts, WithConfidence(*frag.Confidence))
	}
	if _, err := o.AddItem(frag.Content, speaker, opts...); err != nil {
		o.logger.Warn("session: fragment rejected", "err", err)
	}
}
