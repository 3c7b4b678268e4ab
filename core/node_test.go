package core

import (
	"errors"
	"testing"

	"github.com/holiman/uint256"

	"proptix/native/registry"
	"proptix/native/sale"
	"proptix/storage"
)

func addrOf(last byte) [20]byte {
	var out [20]byte
	out[19] = last
	return out
}

func newTestNode(t *testing.T) (*Node, *storage.MemDB) {
	t.Helper()
	db := storage.NewMemDB()
	node := NewNode(db, Options{
		ProtocolAddress: addrOf(0xEE),
		NowFn:           func() int64 { return 1500 },
	})
	return node, db
}

func createTestCollection(t *testing.T, node *Node, owner [20]byte) [20]byte {
	t.Helper()
	resp, err := node.ApplyRegistryMsg(owner, registry.MsgCreateCollection{
		Deployment: sale.DeploymentConfig{
			Name:            "Skyline",
			Symbol:          "SKY",
			MaxSupply:       10,
			TreasuryAddress: addrOf(0xDD),
		},
		Runtime: sale.RuntimeConfig{
			BaseTokenURI:      "ipfs://base/",
			PrerevealTokenURI: "ipfs://hidden",
			MintPrice:         uint256.NewInt(100),
			SaleStartTime:     1000,
			SaleEndTime:       2000,
			ProtocolFee:       10,
		},
	})
	if err != nil {
		t.Fatalf("create collection: %v", err)
	}
	if action, _ := resp.Attribute("action"); action != "create_collection" {
		t.Fatalf("response action = %q", action)
	}
	collection, err := node.ResolveCollection("Skyline")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	return collection
}

func TestPurchaseLifecycle(t *testing.T) {
	node, _ := newTestNode(t)
	owner := addrOf(0x01)
	buyer := addrOf(0x02)
	collection := createTestCollection(t, node, owner)

	if _, err := node.ApplySaleMsg(collection, owner, sale.MsgWhitelist{Address: buyer, Status: true}); err != nil {
		t.Fatalf("whitelist: %v", err)
	}
	if err := node.Deposit(collection, buyer, uint256.NewInt(250)); err != nil {
		t.Fatalf("deposit: %v", err)
	}

	resp, err := node.ApplySaleMsg(collection, buyer, sale.MsgPurchase{Count: 2})
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if cost, _ := resp.Attribute("totalCost"); cost != "200" {
		t.Fatalf("total cost attribute = %q", cost)
	}

	balance, err := node.BalanceOf(collection, buyer)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance.Uint64() != 50 {
		t.Fatalf("buyer balance = %s, want 50", balance.Dec())
	}

	treasury, err := node.BalanceOf(collection, addrOf(0xDD))
	if err != nil {
		t.Fatalf("treasury balance: %v", err)
	}
	if treasury.Uint64() != 180 {
		t.Fatalf("treasury balance = %s, want 180", treasury.Dec())
	}
	protocol, err := node.BalanceOf(collection, addrOf(0xEE))
	if err != nil {
		t.Fatalf("protocol balance: %v", err)
	}
	if protocol.Uint64() != 20 {
		t.Fatalf("protocol balance = %s, want 20", protocol.Dec())
	}

	refs, err := node.OwnerTokens(buyer, "", 0)
	if err != nil {
		t.Fatalf("owner tokens: %v", err)
	}
	if len(refs) != 2 {
		t.Fatalf("buyer owns %d tokens, want 2", len(refs))
	}

	col, err := node.Collection(collection)
	if err != nil {
		t.Fatalf("collection: %v", err)
	}
	if col.CurrentTokenID != 2 {
		t.Fatalf("counter = %d, want 2", col.CurrentTokenID)
	}
}

func TestFailedPurchaseLeavesNoTrace(t *testing.T) {
	node, db := newTestNode(t)
	owner := addrOf(0x01)
	buyer := addrOf(0x02)
	collection := createTestCollection(t, node, owner)

	if _, err := node.ApplySaleMsg(collection, owner, sale.MsgWhitelist{Address: buyer, Status: true}); err != nil {
		t.Fatalf("whitelist: %v", err)
	}
	if err := node.Deposit(collection, buyer, uint256.NewInt(1000)); err != nil {
		t.Fatalf("deposit: %v", err)
	}

	// Occupying the counter's next identifier makes the purchase fail in the
	// mint loop, after the ledger movements were already staged.
	col, err := node.Collection(collection)
	if err != nil {
		t.Fatalf("collection: %v", err)
	}
	if _, err := node.ApplySaleMsg(collection, owner, sale.MsgMint{
		ClassID: col.ClassID,
		ID:      "0",
		Owner:   owner,
	}); err != nil {
		t.Fatalf("reserve token 0: %v", err)
	}

	keysBefore := db.Len()
	eventsBefore := len(node.Events(0))
	balanceBefore, err := node.BalanceOf(collection, buyer)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}

	if _, err := node.ApplySaleMsg(collection, buyer, sale.MsgPurchase{Count: 1}); err == nil {
		t.Fatal("purchase over a reserved id must fail")
	}

	if db.Len() != keysBefore {
		t.Fatalf("store grew from %d to %d keys on failed purchase", keysBefore, db.Len())
	}
	if got := len(node.Events(0)); got != eventsBefore {
		t.Fatalf("event log grew from %d to %d on failed purchase", eventsBefore, got)
	}
	balanceAfter, err := node.BalanceOf(collection, buyer)
	if err != nil {
		t.Fatalf("balance after: %v", err)
	}
	if !balanceAfter.Eq(balanceBefore) {
		t.Fatalf("buyer balance moved from %s to %s on failed purchase", balanceBefore.Dec(), balanceAfter.Dec())
	}

	col, err = node.Collection(collection)
	if err != nil {
		t.Fatalf("collection after: %v", err)
	}
	if col.CurrentTokenID != 0 {
		t.Fatalf("counter advanced to %d on failed purchase", col.CurrentTokenID)
	}
}

func TestRejectedPurchaseIsNoOp(t *testing.T) {
	node, _ := newTestNode(t)
	owner := addrOf(0x01)
	buyer := addrOf(0x02)
	collection := createTestCollection(t, node, owner)

	if err := node.Deposit(collection, buyer, uint256.NewInt(500)); err != nil {
		t.Fatalf("deposit: %v", err)
	}

	if _, err := node.ApplySaleMsg(collection, buyer, sale.MsgPurchase{Count: 1}); !errors.Is(err, sale.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	balance, err := node.BalanceOf(collection, buyer)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance.Uint64() != 500 {
		t.Fatalf("buyer balance = %s after rejection, want 500", balance.Dec())
	}
}

func TestCommittedEventsAreRecorded(t *testing.T) {
	node, _ := newTestNode(t)
	owner := addrOf(0x01)
	collection := createTestCollection(t, node, owner)

	if _, err := node.ApplySaleMsg(collection, owner, sale.MsgWhitelist{Address: addrOf(0x02), Status: true}); err != nil {
		t.Fatalf("whitelist: %v", err)
	}

	evts := node.Events(0)
	if len(evts) < 2 {
		t.Fatalf("expected deployment and whitelist events, got %d", len(evts))
	}
	last := evts[len(evts)-1]
	if last.Type != "sale.whitelist.updated" {
		t.Fatalf("last event type = %q", last.Type)
	}
	if last.Attributes["eligible"] != "true" {
		t.Fatalf("whitelist event attributes = %v", last.Attributes)
	}
}

func TestTransferTokenBetweenOwners(t *testing.T) {
	node, _ := newTestNode(t)
	owner := addrOf(0x01)
	buyer := addrOf(0x02)
	recipient := addrOf(0x03)
	collection := createTestCollection(t, node, owner)

	if _, err := node.ApplySaleMsg(collection, owner, sale.MsgWhitelist{Address: buyer, Status: true}); err != nil {
		t.Fatalf("whitelist: %v", err)
	}
	if err := node.Deposit(collection, buyer, uint256.NewInt(100)); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if _, err := node.ApplySaleMsg(collection, buyer, sale.MsgPurchase{Count: 1}); err != nil {
		t.Fatalf("purchase: %v", err)
	}

	col, err := node.Collection(collection)
	if err != nil {
		t.Fatalf("collection: %v", err)
	}
	if err := node.TransferToken(buyer, col.ClassID, "0", recipient); err != nil {
		t.Fatalf("transfer: %v", err)
	}

	tok, ok, err := node.TokenInfo(col.ClassID, "0")
	if err != nil || !ok {
		t.Fatalf("token lookup ok=%v err=%v", ok, err)
	}
	if tok.Owner != recipient {
		t.Fatalf("token owner = %x, want recipient", tok.Owner)
	}
}

func TestPausedModuleBlocksNodeMutations(t *testing.T) {
	db := storage.NewMemDB()
	node := NewNode(db, Options{
		PausedModules: []string{"registry"},
		NowFn:         func() int64 { return 1500 },
	})

	_, err := node.ApplyRegistryMsg(addrOf(0x01), registry.MsgCreateCollection{
		Deployment: sale.DeploymentConfig{Name: "Skyline", Symbol: "SKY", MaxSupply: 10},
		Runtime:    sale.RuntimeConfig{MintPrice: uint256.NewInt(1), SaleStartTime: 1, SaleEndTime: 2},
	})
	if err == nil {
		t.Fatal("expected pause rejection")
	}
}
