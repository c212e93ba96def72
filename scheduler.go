package orinctl

import (
	"sync"
	"time"
)

// MaxSequenceTemplates is the registry capacity; one slot per catalog
// sequence kind.
const MaxSequenceTemplates = sequenceKindCount

// TemplateRegistry is a fixed-capacity mapping from sequence kind to
// template. Registering an already-present kind replaces the stored
// template.
type TemplateRegistry struct {
	templates []SequenceTemplate
	capacity  int
}

// NewTemplateRegistry creates an empty registry with the default capacity.
func NewTemplateRegistry() *TemplateRegistry {
	return &TemplateRegistry{capacity: MaxSequenceTemplates}
}

// Register inserts or replaces a template, failing once the registry holds
// its capacity in distinct kinds.
func (r *TemplateRegistry) Register(template SequenceTemplate) error {
	for i := range r.templates {
		if r.templates[i].Kind == template.Kind {
			r.templates[i] = template
			return nil
		}
	}
	if len(r.templates) >= r.capacity {
		return NewSequenceError("register", template.Kind, ErrCodeRegistryFull, "template registry full")
	}
	r.templates = append(r.templates, template)
	return nil
}

// Get looks up a template by kind.
func (r *TemplateRegistry) Get(kind SequenceKind) (SequenceTemplate, bool) {
	for _, t := range r.templates {
		if t.Kind == kind {
			return t, true
		}
	}
	return SequenceTemplate{}, false
}

// Contains reports whether a template exists for the given kind.
func (r *TemplateRegistry) Contains(kind SequenceKind) bool {
	_, ok := r.Get(kind)
	return ok
}

// Len returns the number of registered templates.
func (r *TemplateRegistry) Len() int {
	return len(r.templates)
}

// All returns the registered templates in registration order.
func (r *TemplateRegistry) All() []SequenceTemplate {
	out := make([]SequenceTemplate, len(r.templates))
	copy(out, r.templates)
	return out
}

// CooldownTracker records, per sequence kind, the earliest instant the
// kind may be admitted again. Deadlines only move forward.
type CooldownTracker struct {
	nextAllowed [sequenceKindCount]Instant
	armed       [sequenceKindCount]bool
}

// NextAllowed returns the stored deadline for the kind, if any.
func (c *CooldownTracker) NextAllowed(kind SequenceKind) (Instant, bool) {
	return c.nextAllowed[kind.Index()], c.armed[kind.Index()]
}

// IsReady reports whether the kind may start at now.
func (c *CooldownTracker) IsReady(kind SequenceKind, now Instant) bool {
	deadline, ok := c.NextAllowed(kind)
	return !ok || now >= deadline
}

// Clear drops the cooldown for the given kind.
func (c *CooldownTracker) Clear(kind SequenceKind) {
	c.armed[kind.Index()] = false
	c.nextAllowed[kind.Index()] = 0
}

// Reserve records a cooldown of the given duration starting at start. The
// update is monotonic: an earlier deadline never replaces a later one.
func (c *CooldownTracker) Reserve(kind SequenceKind, start Instant, cooldown time.Duration) {
	deadline := start.Add(cooldown)
	idx := kind.Index()
	if c.armed[idx] && c.nextAllowed[idx] >= deadline {
		return
	}
	c.nextAllowed[idx] = deadline
	c.armed[idx] = true
}

// Scheduler admits sequence commands: it resolves the template, enforces
// per-kind cooldowns, and hands admitted commands to the bounded queue
// consumed by the orchestrator.
type Scheduler struct {
	mu        sync.Mutex
	queue     *CommandQueue
	templates *TemplateRegistry
	cooldowns CooldownTracker
}

// NewScheduler creates a scheduler that produces into the given queue.
// The normal reboot template is always registered; the remaining catalog
// templates are registered by the embedder (or via RegisterDefaults).
func NewScheduler(queue *CommandQueue) *Scheduler {
	s := &Scheduler{queue: queue, templates: NewTemplateRegistry()}
	if err := s.templates.Register(NormalRebootTemplate()); err != nil {
		panic("orinctl: default template registration failed: " + err.Error())
	}
	return s
}

// RegisterDefaults registers every catalog template.
func (s *Scheduler) RegisterDefaults() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, template := range Templates() {
		if err := s.templates.Register(template); err != nil {
			return err
		}
	}
	return nil
}

// Templates returns the scheduler's registry.
func (s *Scheduler) Templates() *TemplateRegistry {
	return s.templates
}

// Queue returns the producer-side queue handle.
func (s *Scheduler) Queue() *CommandQueue {
	return s.queue
}

// NextAllowed reports when the given kind may next be admitted.
func (s *Scheduler) NextAllowed(kind SequenceKind) (Instant, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cooldowns.NextAllowed(kind)
}

// Enqueue admits a command with default flags.
func (s *Scheduler) Enqueue(kind SequenceKind, requestedAt Instant, source CommandSource) error {
	return s.EnqueueWithFlags(kind, requestedAt, source, CommandFlags{})
}

// EnqueueWithFlags admits a command. Admission order: template lookup,
// cooldown check, queue push, cooldown reservation. The cooldown check
// fires before the queue is touched, so a full queue behind an active
// cooldown reports the cooldown.
func (s *Scheduler) EnqueueWithFlags(kind SequenceKind, requestedAt Instant, source CommandSource, flags CommandFlags) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	template, ok := s.templates.Get(kind)
	if !ok {
		return NewSequenceError("enqueue", kind, ErrCodeMissingTemplate, "no template registered")
	}

	if deadline, armed := s.cooldowns.NextAllowed(kind); armed && requestedAt < deadline {
		return NewCooldownError("enqueue", kind, deadline)
	}

	cmd := SequenceCommand{Kind: kind, RequestedAt: requestedAt, Source: source, Flags: flags}
	if err := s.queue.Enqueue(cmd); err != nil {
		return err
	}

	s.cooldowns.Reserve(kind, requestedAt, template.Cooldown)
	return nil
}

// NotifyCompleted re-reserves the cooldown from the completion instant so
// back-to-back runs of a kind stay spaced by the template cooldown.
func (s *Scheduler) NotifyCompleted(kind SequenceKind, completedAt Instant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	template, ok := s.templates.Get(kind)
	if !ok {
		return NewSequenceError("notify-completed", kind, ErrCodeMissingTemplate, "no template registered")
	}
	s.cooldowns.Reserve(kind, completedAt, template.Cooldown)
	return nil
}

// ResetCooldown clears the cooldown entry for the given kind.
func (s *Scheduler) ResetCooldown(kind SequenceKind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cooldowns.Clear(kind)
}
