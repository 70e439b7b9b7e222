package ledger

import (
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Event topic hashes, keccak of the event signature as emitted on chain.
var (
	BindTopic     = crypto.Keccak256Hash([]byte("BindTokenBoundToken(address,address,uint256,uint256,string)"))
	UnbindTopic   = crypto.Keccak256Hash([]byte("UnbindTokenBoundToken(address,address,uint256,uint256)"))
	PurchaseTopic = crypto.Keccak256Hash([]byte("PurchaseTokenBoundToken(address,uint256)"))
)

// Event is a domain event emitted by a successful ledger operation.
type Event interface {
	Topic() common.Hash
}

// BindEvent records a successful bind.
type BindEvent struct {
	Operator      common.Address
	Contract      common.Address
	TokenID       *big.Int
	AchievementID *big.Int
	URI           string
}

// Topic returns the bind event topic hash.
func (BindEvent) Topic() common.Hash { return BindTopic }

// UnbindEvent records a successful unbind.
type UnbindEvent struct {
	Operator      common.Address
	Contract      common.Address
	TokenID       *big.Int
	AchievementID *big.Int
}

// Topic returns the unbind event topic hash.
func (UnbindEvent) Topic() common.Hash { return UnbindTopic }

// PurchaseEvent records a successful purchase.
type PurchaseEvent struct {
	Operator      common.Address
	AchievementID *big.Int
}

// Topic returns the purchase event topic hash.
func (PurchaseEvent) Topic() common.Hash { return PurchaseTopic }

// EventSink receives domain events for observability and indexing.
type EventSink interface {
	Send(Event)
}

// RecordingSink is an EventSink that retains every event, for tests and
// in-process indexing.
type RecordingSink struct {
	events []Event
	mu     sync.Mutex
}

// NewRecordingSink creates an empty recording sink.
func NewRecordingSink() *RecordingSink {
	return &RecordingSink{}
}

// Send appends an event to the record.
func (s *RecordingSink) Send(e Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

// Events returns a copy of the recorded events in emission order.
func (s *RecordingSink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}
