package events

import "proptix/core/types"

const (
	// TypeTokenClassIssued is emitted when a new token class is registered.
	TypeTokenClassIssued = "token.class.issued"
	// TypeTokenMinted is emitted when a token is created.
	TypeTokenMinted = "token.minted"
	// TypeTokenBurned is emitted when a token is destroyed. Its identifier is
	// retired and never reassigned.
	TypeTokenBurned = "token.burned"
	// TypeTokenFrozen is emitted when an issuer freezes a token.
	TypeTokenFrozen = "token.frozen"
	// TypeTokenUnfrozen is emitted when an issuer unfreezes a token.
	TypeTokenUnfrozen = "token.unfrozen"
	// TypeTokenTransferred is emitted when token ownership changes.
	TypeTokenTransferred = "token.transferred"
)

type TokenClassIssued struct {
	ClassID string
	Issuer  [20]byte
	Name    string
	Symbol  string
}

func (TokenClassIssued) EventType() string { return TypeTokenClassIssued }

func (e TokenClassIssued) Event() *types.Event {
	return &types.Event{
		Type: TypeTokenClassIssued,
		Attributes: map[string]string{
			"classId": e.ClassID,
			"issuer":  addrString(e.Issuer),
			"name":    e.Name,
			"symbol":  e.Symbol,
		},
	}
}

type TokenMinted struct {
	ClassID string
	TokenID string
	Owner   [20]byte
	URI     string
}

func (TokenMinted) EventType() string { return TypeTokenMinted }

func (e TokenMinted) Event() *types.Event {
	return &types.Event{
		Type: TypeTokenMinted,
		Attributes: map[string]string{
			"classId": e.ClassID,
			"tokenId": e.TokenID,
			"owner":   addrString(e.Owner),
			"uri":     e.URI,
		},
	}
}

type TokenBurned struct {
	ClassID string
	TokenID string
}

func (TokenBurned) EventType() string { return TypeTokenBurned }

func (e TokenBurned) Event() *types.Event {
	return &types.Event{
		Type: TypeTokenBurned,
		Attributes: map[string]string{
			"classId": e.ClassID,
			"tokenId": e.TokenID,
		},
	}
}

type TokenFrozen struct {
	ClassID string
	TokenID string
	Frozen  bool
}

func (e TokenFrozen) EventType() string {
	if e.Frozen {
		return TypeTokenFrozen
	}
	return TypeTokenUnfrozen
}

func (e TokenFrozen) Event() *types.Event {
	return &types.Event{
		Type: e.EventType(),
		Attributes: map[string]string{
			"classId": e.ClassID,
			"tokenId": e.TokenID,
		},
	}
}

type TokenTransferred struct {
	ClassID   string
	TokenID   string
	Sender    [20]byte
	Recipient [20]byte
}

func (TokenTransferred) EventType() string { return TypeTokenTransferred }

func (e TokenTransferred) Event() *types.Event {
	return &types.Event{
		Type: TypeTokenTransferred,
		Attributes: map[string]string{
			"classId":   e.ClassID,
			"tokenId":   e.TokenID,
			"sender":    addrString(e.Sender),
			"recipient": addrString(e.Recipient),
		},
	}
}
