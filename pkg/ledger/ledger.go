// Package ledger implements the token-bound achievement ledger: semi-fungible
// achievement units that are minted with a packed price and permanence flag,
// purchased for an exact payment, and bound to externally-owned tokens
// identified only by (contract address, token id).
package ledger

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/CR3Labs/token-bound-token/pkg/key"
	"github.com/CR3Labs/token-bound-token/pkg/word"
)

// Packed word layout: price in the low 255 bits, permanence flag in the most
// significant bit. The two fields never overlap, which implicitly bounds the
// price to 2^255 - 1.
const (
	priceOffset     = 0
	permanentOffset = 255
)

// DefaultCustodyAddress holds bound achievement units when no custody address
// is configured.
var DefaultCustodyAddress = common.HexToAddress("0x0000000000000000000000000000000000007B70")

// maxID is the largest assignable achievement id (96-bit counter).
var maxID = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), key.MaxIDBits), big.NewInt(1))

// BalanceLedger is the external semi-fungible balance ledger collaborator.
type BalanceLedger interface {
	Mint(to common.Address, id *big.Int, amount *big.Int) error
	Transfer(from, to common.Address, id *big.Int, amount *big.Int, data []byte) error
	BalanceOf(account common.Address, id *big.Int) *big.Int
}

// Escrow is the deferred-payment collaborator. Deposits accept exactly the
// value forwarded with the purchase; withdrawal happens elsewhere.
type Escrow interface {
	Deposit(payee common.Address, amount *big.Int) error
}

// OwnershipVerifier resolves and evaluates external token ownership.
type OwnershipVerifier interface {
	OwnsToken(ctx context.Context, contract common.Address, tokenID *big.Int, claimed common.Address) (bool, error)
	SetOwnerOfFunction(contract common.Address, signature string)
}

// binding is the per-(composite key, token id) record.
type binding struct {
	uri string
}

// Config assembles a ledger's collaborators and addresses.
type Config struct {
	Admin   common.Address // ledger administrator, required
	Custody common.Address // holds bound units; DefaultCustodyAddress if zero
	Payee   common.Address // purchase proceeds payee; settable later

	Balances BalanceLedger
	Escrow   Escrow
	Owners   OwnershipVerifier
	Events   EventSink // optional
}

// Ledger is the achievement state machine. Every public operation is
// serialized under one mutex so each either fully applies or has no effect;
// the only external control transfer inside an operation is the verifier's
// read-only call, which cannot re-enter.
type Ledger struct {
	admin   common.Address
	custody common.Address
	payee   common.Address

	balances BalanceLedger
	escrow   Escrow
	owners   OwnershipVerifier
	events   EventSink

	nextID   *big.Int
	packed   map[common.Hash]*uint256.Int
	uris     map[common.Hash]string
	bindings map[common.Hash]map[common.Hash]*binding

	mu sync.Mutex
}

// New creates a ledger from the given configuration. Achievement ids start
// at 1.
func New(cfg Config) (*Ledger, error) {
	if cfg.Admin == (common.Address{}) {
		return nil, fmt.Errorf("%w: admin", ErrZeroAddress)
	}
	if cfg.Balances == nil || cfg.Escrow == nil || cfg.Owners == nil {
		return nil, errors.New("balance ledger, escrow, and ownership verifier are required")
	}

	custody := cfg.Custody
	if custody == (common.Address{}) {
		custody = DefaultCustodyAddress
	}

	return &Ledger{
		admin:    cfg.Admin,
		custody:  custody,
		payee:    cfg.Payee,
		balances: cfg.Balances,
		escrow:   cfg.Escrow,
		owners:   cfg.Owners,
		events:   cfg.Events,
		nextID:   big.NewInt(1),
		packed:   make(map[common.Hash]*uint256.Int),
		uris:     make(map[common.Hash]string),
		bindings: make(map[common.Hash]map[common.Hash]*binding),
	}, nil
}

// Mint creates a new achievement with the given price and permanence flag and
// credits amount units to to. Admin only. Returns the assigned id; ids are
// assigned by a counter that increments by exactly one per achievement.
func (l *Ledger) Mint(caller, to common.Address, amount *big.Int, uri string, price *big.Int, permanent bool) (*big.Int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if caller != l.admin {
		return nil, ErrNotAdmin
	}
	return l.mint(to, amount, uri, price, permanent)
}

// MintBatch mints n achievements atomically with consecutive ids. The four
// per-achievement sequences must have equal length; any invalid entry rejects
// the whole batch before the counter moves.
func (l *Ledger) MintBatch(caller, to common.Address, amounts []*big.Int, uris []string, prices []*big.Int, permanents []bool) ([]*big.Int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if caller != l.admin {
		return nil, ErrNotAdmin
	}
	if to == (common.Address{}) {
		return nil, fmt.Errorf("%w: to", ErrZeroAddress)
	}

	n := len(amounts)
	if len(uris) != n || len(prices) != n || len(permanents) != n {
		return nil, fmt.Errorf("%w: %d amounts, %d uris, %d prices, %d permanents",
			ErrLengthMismatch, n, len(uris), len(prices), len(permanents))
	}

	// Validate every entry and the counter headroom before touching state.
	words := make([]*uint256.Int, n)
	for i := 0; i < n; i++ {
		if amounts[i] == nil || amounts[i].Sign() <= 0 {
			return nil, fmt.Errorf("%w: entry %d", ErrZeroAmount, i)
		}
		w, err := packState(prices[i], permanents[i])
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		words[i] = w
	}
	last := new(big.Int).Add(l.nextID, big.NewInt(int64(n-1)))
	if n > 0 && last.Cmp(maxID) > 0 {
		return nil, ErrIDExhausted
	}

	ids := make([]*big.Int, n)
	for i := 0; i < n; i++ {
		id := new(big.Int).Set(l.nextID)
		if err := l.balances.Mint(to, id, amounts[i]); err != nil {
			return nil, fmt.Errorf("balance mint: %w", err)
		}

		k := common.BigToHash(id)
		l.packed[k] = words[i]
		if uris[i] != "" {
			l.uris[k] = uris[i]
		}
		l.nextID.Add(l.nextID, big.NewInt(1))
		ids[i] = id
	}

	return ids, nil
}

// mint performs a single mint. Caller holds the lock and has been authorized.
func (l *Ledger) mint(to common.Address, amount *big.Int, uri string, price *big.Int, permanent bool) (*big.Int, error) {
	if to == (common.Address{}) {
		return nil, fmt.Errorf("%w: to", ErrZeroAddress)
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, ErrZeroAmount
	}
	if l.nextID.Cmp(maxID) > 0 {
		return nil, ErrIDExhausted
	}

	w, err := packState(price, permanent)
	if err != nil {
		return nil, err
	}

	id := new(big.Int).Set(l.nextID)
	if err := l.balances.Mint(to, id, amount); err != nil {
		return nil, fmt.Errorf("balance mint: %w", err)
	}

	k := common.BigToHash(id)
	l.packed[k] = w
	if uri != "" {
		l.uris[k] = uri
	}
	l.nextID.Add(l.nextID, big.NewInt(1))

	return id, nil
}

// Bind attaches one unit of an achievement held by caller to the external
// token (contract, tokenID), moving the unit into ledger custody. The caller
// must own the external token per the ownership verifier.
func (l *Ledger) Bind(ctx context.Context, caller, contract common.Address, tokenID, achievementID *big.Int, uri string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.bind(ctx, caller, contract, tokenID, achievementID, uri)
}

func (l *Ledger) bind(ctx context.Context, caller, contract common.Address, tokenID, achievementID *big.Int, uri string) error {
	if err := validTokenID(tokenID); err != nil {
		return err
	}
	if _, err := l.packedWord(achievementID); err != nil {
		return err
	}

	bk, err := key.Encode(contract, achievementID)
	if err != nil {
		return err
	}
	tk := common.BigToHash(tokenID)

	if _, ok := l.bindings[bk][tk]; ok {
		return ErrAlreadyBound
	}
	if l.balances.BalanceOf(caller, achievementID).Sign() <= 0 {
		return ErrInsufficientBalance
	}

	owns, err := l.owners.OwnsToken(ctx, contract, tokenID, caller)
	if err != nil {
		return err
	}
	if !owns {
		return ErrNotTokenOwner
	}

	if err := l.balances.Transfer(caller, l.custody, achievementID, big.NewInt(1), nil); err != nil {
		return fmt.Errorf("custody transfer: %w", err)
	}

	if l.bindings[bk] == nil {
		l.bindings[bk] = make(map[common.Hash]*binding)
	}
	l.bindings[bk][tk] = &binding{uri: uri}

	l.emit(BindEvent{
		Operator:      caller,
		Contract:      contract,
		TokenID:       new(big.Int).Set(tokenID),
		AchievementID: new(big.Int).Set(achievementID),
		URI:           uri,
	})
	return nil
}

// Unbind detaches a bound achievement from the external token and returns the
// unit from custody to caller. Disabled forever once the achievement is
// permanent.
func (l *Ledger) Unbind(ctx context.Context, caller, contract common.Address, tokenID, achievementID *big.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := validTokenID(tokenID); err != nil {
		return err
	}
	w, err := l.packedWord(achievementID)
	if err != nil {
		return err
	}

	bk, err := key.Encode(contract, achievementID)
	if err != nil {
		return err
	}
	tk := common.BigToHash(tokenID)

	if _, ok := l.bindings[bk][tk]; !ok {
		return ErrNotBound
	}

	permanent, err := word.ExtractBool(w, permanentOffset)
	if err != nil {
		return err
	}
	if permanent {
		return ErrPermanentlyBound
	}

	owns, err := l.owners.OwnsToken(ctx, contract, tokenID, caller)
	if err != nil {
		return err
	}
	if !owns {
		return ErrNotTokenOwner
	}

	if err := l.balances.Transfer(l.custody, caller, achievementID, big.NewInt(1), nil); err != nil {
		return fmt.Errorf("custody transfer: %w", err)
	}

	delete(l.bindings[bk], tk)
	if len(l.bindings[bk]) == 0 {
		delete(l.bindings, bk)
	}

	l.emit(UnbindEvent{
		Operator:      caller,
		Contract:      contract,
		TokenID:       new(big.Int).Set(tokenID),
		AchievementID: new(big.Int).Set(achievementID),
	})
	return nil
}

// Purchase transfers one unit of an achievement from the admin's stock to
// caller for exactly its configured price. The submitted value is routed to
// the escrow for later withdrawal by the payee; no tolerance is applied in
// either direction.
func (l *Ledger) Purchase(caller common.Address, value, achievementID *big.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.purchase(caller, value, achievementID)
}

func (l *Ledger) purchase(caller common.Address, value, achievementID *big.Int) error {
	w, err := l.packedWord(achievementID)
	if err != nil {
		return err
	}
	if l.payee == (common.Address{}) {
		return ErrNoPayee
	}
	if l.balances.BalanceOf(l.admin, achievementID).Sign() <= 0 {
		return ErrInsufficientBalance
	}

	price, err := word.ExtractUint255(w, priceOffset)
	if err != nil {
		return err
	}
	if value == nil {
		value = big.NewInt(0)
	}
	if value.Sign() < 0 || price.CmpBig(value) != 0 {
		return fmt.Errorf("%w: want %s, got %s", ErrPaymentMismatch, price.Dec(), value)
	}

	if value.Sign() > 0 {
		if err := l.escrow.Deposit(l.payee, value); err != nil {
			return fmt.Errorf("escrow deposit: %w", err)
		}
	}

	if err := l.balances.Transfer(l.admin, caller, achievementID, big.NewInt(1), nil); err != nil {
		return fmt.Errorf("stock transfer: %w", err)
	}

	l.emit(PurchaseEvent{
		Operator:      caller,
		AchievementID: new(big.Int).Set(achievementID),
	})
	return nil
}

// PurchaseAndBind composes Purchase then Bind in one serialized operation.
// The two phases are sequential, not transactional: if the bind phase fails,
// the completed purchase is NOT rolled back and the caller keeps the unbound
// unit. Callers who need atomicity must treat the operations independently.
func (l *Ledger) PurchaseAndBind(ctx context.Context, caller common.Address, value, achievementID *big.Int, contract common.Address, tokenID *big.Int, uri string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.purchase(caller, value, achievementID); err != nil {
		return err
	}
	if err := l.bind(ctx, caller, contract, tokenID, achievementID, uri); err != nil {
		return fmt.Errorf("bind after completed purchase: %w", err)
	}
	return nil
}

// PriceOf returns the purchase price of an achievement.
func (l *Ledger) PriceOf(achievementID *big.Int) (*big.Int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, err := l.packedWord(achievementID)
	if err != nil {
		return nil, err
	}
	price, err := word.ExtractUint255(w, priceOffset)
	if err != nil {
		return nil, err
	}
	return price.ToBig(), nil
}

// IsPermanent reports whether units of an achievement can never be unbound
// once bound.
func (l *Ledger) IsPermanent(achievementID *big.Int) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, err := l.packedWord(achievementID)
	if err != nil {
		return false, err
	}
	return word.ExtractBool(w, permanentOffset)
}

// IsBound reports whether the achievement is bound to the external token.
func (l *Ledger) IsBound(contract common.Address, tokenID, achievementID *big.Int) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if achievementID == nil || achievementID.Sign() <= 0 {
		return false, ErrZeroID
	}
	if err := validTokenID(tokenID); err != nil {
		return false, err
	}

	bk, err := key.Encode(contract, achievementID)
	if err != nil {
		return false, err
	}
	_, ok := l.bindings[bk][common.BigToHash(tokenID)]
	return ok, nil
}

// AchievementURI returns the default URI recorded when the achievement was
// minted, empty if none was set.
func (l *Ledger) AchievementURI(achievementID *big.Int) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, err := l.packedWord(achievementID); err != nil {
		return "", err
	}
	return l.uris[common.BigToHash(achievementID)], nil
}

// BindingURI returns the URI recorded for a specific binding. The binding
// URI is scoped to (contract, tokenID) and independent of the achievement's
// own URI.
func (l *Ledger) BindingURI(contract common.Address, tokenID, achievementID *big.Int) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := validTokenID(tokenID); err != nil {
		return "", err
	}
	bk, err := key.Encode(contract, achievementID)
	if err != nil {
		return "", err
	}

	b, ok := l.bindings[bk][common.BigToHash(tokenID)]
	if !ok {
		return "", ErrNotBound
	}
	return b.uri, nil
}

// NextID returns the id the next mint will assign.
func (l *Ledger) NextID() *big.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return new(big.Int).Set(l.nextID)
}

// Admin returns the ledger administrator address.
func (l *Ledger) Admin() common.Address {
	return l.admin
}

// Payee returns the configured purchase proceeds payee.
func (l *Ledger) Payee() common.Address {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.payee
}

// SetPayee configures the purchase proceeds payee. Admin only. A zero payee
// disables purchases.
func (l *Ledger) SetPayee(caller, payee common.Address) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if caller != l.admin {
		return ErrNotAdmin
	}
	l.payee = payee
	return nil
}

// SetOwnerOfFunction records an overriding ownership function signature for
// an external contract. Admin only.
func (l *Ledger) SetOwnerOfFunction(caller, contract common.Address, signature string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if caller != l.admin {
		return ErrNotAdmin
	}
	if contract == (common.Address{}) {
		return fmt.Errorf("%w: contract", ErrZeroAddress)
	}
	l.owners.SetOwnerOfFunction(contract, signature)
	return nil
}

// packedWord returns the packed price/permanence word for a minted
// achievement. Rejects id 0 and unminted ids.
func (l *Ledger) packedWord(achievementID *big.Int) (*uint256.Int, error) {
	if achievementID == nil || achievementID.Sign() <= 0 {
		return nil, ErrZeroID
	}
	w, ok := l.packed[common.BigToHash(achievementID)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAchievement, achievementID)
	}
	return w, nil
}

// packState packs (price, permanent) into a fresh word.
func packState(price *big.Int, permanent bool) (*uint256.Int, error) {
	if price == nil || price.Sign() < 0 {
		return nil, ErrInvalidPrice
	}
	p, overflow := uint256.FromBig(price)
	if overflow {
		return nil, ErrPriceOverflow
	}

	w, err := word.InsertUint255(uint256.NewInt(0), p, priceOffset)
	if err != nil {
		if errors.Is(err, word.ErrFieldOverflow) {
			return nil, ErrPriceOverflow
		}
		return nil, err
	}
	return word.InsertBool(w, permanent, permanentOffset)
}

func validTokenID(tokenID *big.Int) error {
	if tokenID == nil || tokenID.Sign() < 0 || tokenID.BitLen() > 256 {
		return ErrInvalidTokenID
	}
	return nil
}

func (l *Ledger) emit(e Event) {
	if l.events != nil {
		l.events.Send(e)
	}
}
