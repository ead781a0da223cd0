// Package inventory keeps the records captured during one counting
// session and applies parser results to them.
package inventory

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	mdwerror "github.com/vozinv/vozinv/foundation/core/error"
	"github.com/vozinv/vozinv/foundation/core/validation"
	"github.com/vozinv/vozinv/pkg/core/logging"
	"github.com/vozinv/vozinv/pkg/vozparse"
)

// Item is a record together with the time it entered the session
type Item struct {
	vozparse.Record `yaml:",inline"`
	AddedAt         time.Time `json:"added_at" yaml:"added_at"`
}

// OutcomeKind describes what Apply did to the session
type OutcomeKind int

const (
	// Added means a record was appended
	Added OutcomeKind = iota + 1
	// Deleted means the most recent record was removed
	Deleted
	// Ignored means a delete command arrived on an empty session
	Ignored
)

// String returns the wire name of the outcome
func (k OutcomeKind) String() string {
	switch k {
	case Added:
		return "added"
	case Deleted:
		return "deleted"
	case Ignored:
		return "ignored"
	default:
		return "unknown"
	}
}

// Outcome is the result of applying a parser result to a session.
// Index, Count and Total are taken under the same lock as the change;
// Index is the position of an added item, oldest first.
type Outcome struct {
	Kind  OutcomeKind
	Item  Item
	Index int
	Count int
	Total int64
}

// Session is an in-memory, ordered list of inventory items.
// It is safe for concurrent use.
type Session struct {
	mu        sync.RWMutex
	id        string
	section   string
	startedAt time.Time
	items     []Item
	total     int64
	logger    *logging.Logger
	now       func() time.Time
}

// NewSession starts an empty session with a fresh ID
func NewSession(logger *logging.Logger) *Session {
	if logger == nil {
		logger = logging.Discard()
	}
	id := uuid.New().String()
	return &Session{
		id:        id,
		startedAt: time.Now(),
		logger:    logger.With("session_id", id),
		now:       time.Now,
	}
}

// ID returns the session identifier
func (s *Session) ID() string {
	return s.id
}

// StartedAt returns when the session was created
func (s *Session) StartedAt() time.Time {
	return s.startedAt
}

// SetSection labels the part of the store being counted
func (s *Session) SetSection(section string) {
	s.mu.Lock()
	s.section = strings.TrimSpace(section)
	s.mu.Unlock()
}

// Section returns the current section label
func (s *Session) Section() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.section
}

// Apply applies a parser result: records are appended, DeleteLast
// removes the newest item, and nil yields an INVALID_INPUT error.
func (s *Session) Apply(result vozparse.Result) (Outcome, error) {
	switch r := result.(type) {
	case vozparse.Record:
		return s.add(r)

	case vozparse.Command:
		if r.Kind != vozparse.DeleteLast {
			return Outcome{}, mdwerror.Newf("comando no soportado: %s", r.Kind).
				WithCode(mdwerror.CodeInvalidOperation).
				WithOperation("inventory.Apply")
		}
		return s.deleteLast(), nil

	default:
		return Outcome{}, mdwerror.New("no entendido").
			WithCode(mdwerror.CodeInvalidInput).
			WithOperation("inventory.Apply")
	}
}

// Add appends a record and returns it with the index it was stored at.
// Records whose subtotal does not match quantity times unit price are
// rejected, as are totals that would overflow.
func (s *Session) Add(record vozparse.Record) (Item, int, error) {
	out, err := s.add(record)
	if err != nil {
		return Item{}, 0, err
	}
	return out.Item, out.Index, nil
}

func (s *Session) add(record vozparse.Record) (Outcome, error) {
	if record.Quantity < 0 || record.UnitPrice < 0 {
		return Outcome{}, mdwerror.New("cantidad y precio deben ser positivos").
			WithCode(mdwerror.CodeValueOutOfRange).
			WithOperation("inventory.Add")
	}
	want, ok := vozparse.NewRecord(record.Quantity, record.UnitPrice, record.RawText)
	if !ok || want.Subtotal != record.Subtotal {
		return Outcome{}, mdwerror.New("subtotal inconsistente").
			WithCode(mdwerror.CodeValueOutOfRange).
			WithOperation("inventory.Add").
			WithDetail("subtotal", record.Subtotal)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	total, ok := addTotal(s.total, record.Subtotal)
	if !ok {
		return Outcome{}, mdwerror.New("total fuera de rango").
			WithCode(mdwerror.CodeValueOutOfRange).
			WithOperation("inventory.Add")
	}

	item := Item{Record: record, AddedAt: s.now()}
	s.items = append(s.items, item)
	s.total = total
	index := len(s.items) - 1

	s.logger.Debug("record added",
		"quantity", record.Quantity,
		"unit_price", record.UnitPrice,
		"count", len(s.items),
	)
	return Outcome{Kind: Added, Item: item, Index: index, Count: len(s.items), Total: total}, nil
}

// DeleteLast removes the newest item. It reports false on an empty session.
func (s *Session) DeleteLast() (Item, bool) {
	out := s.deleteLast()
	return out.Item, out.Kind == Deleted
}

func (s *Session) deleteLast() Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.items) == 0 {
		return Outcome{Kind: Ignored, Total: s.total}
	}
	index := len(s.items) - 1
	removed := s.removeLocked(index)
	return Outcome{Kind: Deleted, Item: removed, Index: index, Count: len(s.items), Total: s.total}
}

// DeleteAt removes the item at index i (oldest first, zero based)
func (s *Session) DeleteAt(i int) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkIndexLocked(i, "inventory.DeleteAt"); err != nil {
		return Item{}, err
	}
	return s.removeLocked(i), nil
}

func (s *Session) removeLocked(i int) Item {
	removed := s.items[i]
	s.items = append(s.items[:i], s.items[i+1:]...)
	s.total -= removed.Subtotal

	s.logger.Debug("record removed", "index", i, "count", len(s.items))
	return removed
}

// Edit replaces quantity and unit price of the item at index i.
// Both values are decimal integers given as text.
func (s *Session) Edit(i int, quantity, unitPrice string) (Item, error) {
	qty, err := parseAmount("quantity", quantity)
	if err != nil {
		return Item{}, err
	}
	price, err := parseAmount("unit_price", unitPrice)
	if err != nil {
		return Item{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkIndexLocked(i, "inventory.Edit"); err != nil {
		return Item{}, err
	}

	old := s.items[i]
	edited, ok := vozparse.NewRecord(qty, price, old.RawText)
	if !ok {
		return Item{}, mdwerror.New("subtotal fuera de rango").
			WithCode(mdwerror.CodeValueOutOfRange).
			WithOperation("inventory.Edit")
	}
	edited.ProductIdentifier = old.ProductIdentifier

	total, ok := addTotal(s.total-old.Subtotal, edited.Subtotal)
	if !ok {
		return Item{}, mdwerror.New("total fuera de rango").
			WithCode(mdwerror.CodeValueOutOfRange).
			WithOperation("inventory.Edit")
	}

	s.items[i] = Item{Record: edited, AddedAt: old.AddedAt}
	s.total = total

	s.logger.Debug("record edited", "index", i, "quantity", qty, "unit_price", price)
	return s.items[i], nil
}

// parseAmount validates an edited quantity or price: decimal text,
// surrounding space allowed, not negative
func parseAmount(field, text string) (int64, error) {
	result := validation.NewValidatorChain().
		StopOnFirstError(true).
		Add(validation.Integer(field).WithMessage("por favor ingresa números válidos")).
		Add(validation.Min(field, 0).WithMessage(field + " no puede ser negativo")).
		Validate(text)
	if err := result.ToError("inventory.Edit"); err != nil {
		return 0, err
	}
	return validation.ToInt64(text)
}

func (s *Session) checkIndexLocked(i int, op string) error {
	if i < 0 || i >= len(s.items) {
		return mdwerror.Newf("no existe el registro %d", i).
			WithCode(mdwerror.CodeNotFound).
			WithOperation(op).
			WithDetail("count", len(s.items))
	}
	return nil
}

// Reset drops every item and keeps the session ID
func (s *Session) Reset() {
	s.mu.Lock()
	s.items = nil
	s.total = 0
	s.mu.Unlock()

	s.logger.Debug("session reset")
}

// Items returns a copy of the items, oldest first
func (s *Session) Items() []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]Item, len(s.items))
	copy(items, s.items)
	return items
}

// Recent returns a copy of the items, newest first
func (s *Session) Recent() []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]Item, len(s.items))
	for i, item := range s.items {
		items[len(s.items)-1-i] = item
	}
	return items
}

// Last returns the newest item
func (s *Session) Last() (Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.items) == 0 {
		return Item{}, false
	}
	return s.items[len(s.items)-1], true
}

// Len returns the number of items
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Total returns the sum of all subtotals
func (s *Session) Total() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.total
}

// Totals returns count and total under one lock
func (s *Session) Totals() (int, int64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items), s.total
}

func addTotal(a, b int64) (int64, bool) {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return 0, false
	}
	return sum, true
}
