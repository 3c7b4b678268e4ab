package registry

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/holiman/uint256"

	"proptix/core/state"
	"proptix/native/sale"
	"proptix/native/token"
	"proptix/storage"
)

type stubEngine struct {
	collections map[[20]byte]*sale.Collection
	whitelist   []string
	baseURIs    []string
}

func newStubEngine() *stubEngine {
	return &stubEngine{collections: make(map[[20]byte]*sale.Collection)}
}

func (s *stubEngine) InitCollection(col *sale.Collection) error {
	if _, ok := s.collections[col.Address]; ok {
		return fmt.Errorf("%w: collection already initialised", sale.ErrInvalidConfig)
	}
	s.collections[col.Address] = col.Clone()
	return nil
}

func (s *stubEngine) SetWhitelist(collection, caller, account [20]byte, eligible bool) error {
	s.whitelist = append(s.whitelist, fmt.Sprintf("%x/%x/%x/%v", collection, caller, account, eligible))
	return nil
}

func (s *stubEngine) SetBaseURI(collection, caller [20]byte, uri string, revealed bool) error {
	s.baseURIs = append(s.baseURIs, fmt.Sprintf("%x/%x/%s/%v", collection, caller, uri, revealed))
	return nil
}

type stubIssuer struct {
	issued []string
}

func (s *stubIssuer) IssueClass(issuer [20]byte, def token.ClassDefinition) (string, error) {
	classID := token.BuildClassID(def.Symbol, issuer)
	s.issued = append(s.issued, classID)
	return classID, nil
}

func addr(last byte) [20]byte {
	var out [20]byte
	out[19] = last
	return out
}

func testConfigs(name string) (sale.DeploymentConfig, sale.RuntimeConfig) {
	dep := sale.DeploymentConfig{
		Name:            name,
		Symbol:          "SKY",
		MaxSupply:       100,
		TreasuryAddress: addr(0xDD),
	}
	run := sale.RuntimeConfig{
		BaseTokenURI:  "ipfs://base/",
		MintPrice:     uint256.NewInt(100),
		SaleStartTime: 1000,
		SaleEndTime:   2000,
		ProtocolFee:   10,
	}
	return dep, run
}

func newTestRegistry(t *testing.T) (*Registry, *stubEngine, *stubIssuer) {
	t.Helper()
	engine := newStubEngine()
	issuer := &stubIssuer{}
	registry := NewRegistry(state.NewManager(storage.NewMemDB()), engine, issuer)
	registry.SetProtocolAddress(addr(0xEE))
	return registry, engine, issuer
}

func TestCreateCollectionDeploysAndIndexes(t *testing.T) {
	registry, engine, issuer := newTestRegistry(t)
	owner := addr(0x01)

	dep, run := testConfigs("Skyline")
	collection, err := registry.CreateCollection(owner, dep, run)
	if err != nil {
		t.Fatalf("create collection: %v", err)
	}

	col, ok := engine.collections[collection]
	if !ok {
		t.Fatal("collection not initialised in engine")
	}
	if col.Owner != owner {
		t.Fatalf("owner = %x", col.Owner)
	}
	if col.ProtocolAddress != addr(0xEE) {
		t.Fatalf("protocol address = %x", col.ProtocolAddress)
	}
	if col.ClassID == "" || len(issuer.issued) != 1 {
		t.Fatalf("class not issued: classID %q, issued %v", col.ClassID, issuer.issued)
	}

	resolved, err := registry.Resolve("Skyline")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved != collection {
		t.Fatalf("resolved %x, deployed %x", resolved, collection)
	}

	deployed, err := registry.Deployed(owner)
	if err != nil {
		t.Fatalf("deployed: %v", err)
	}
	if len(deployed) != 1 || deployed[0] != collection {
		t.Fatalf("deployed list = %v", deployed)
	}
}

func TestCreateCollectionSequencing(t *testing.T) {
	registry, _, _ := newTestRegistry(t)
	owner := addr(0x01)
	other := addr(0x02)

	dep, run := testConfigs("First")
	first, err := registry.CreateCollection(owner, dep, run)
	if err != nil {
		t.Fatalf("first deployment: %v", err)
	}
	dep.Name = "Second"
	second, err := registry.CreateCollection(owner, dep, run)
	if err != nil {
		t.Fatalf("second deployment: %v", err)
	}
	if first == second {
		t.Fatal("deployments share an address")
	}
	dep.Name = "Third"
	third, err := registry.CreateCollection(other, dep, run)
	if err != nil {
		t.Fatalf("third deployment: %v", err)
	}

	deployed, err := registry.Deployed(owner)
	if err != nil {
		t.Fatalf("deployed: %v", err)
	}
	if len(deployed) != 2 || deployed[0] != first || deployed[1] != second {
		t.Fatalf("owner deployments out of order: %v", deployed)
	}

	last, ok, err := registry.LastDeployed(owner)
	if err != nil || !ok {
		t.Fatalf("last deployed ok=%v err=%v", ok, err)
	}
	if last != second {
		t.Fatalf("last deployed = %x, want second deployment", last)
	}

	all, err := registry.AllContracts()
	if err != nil {
		t.Fatalf("all contracts: %v", err)
	}
	if len(all) != 3 || all[0] != first || all[1] != second || all[2] != third {
		t.Fatalf("global sequence = %v", all)
	}
}

func TestLastDeployedEmptyOwner(t *testing.T) {
	registry, _, _ := newTestRegistry(t)
	_, ok, err := registry.LastDeployed(addr(0x42))
	if err != nil {
		t.Fatalf("last deployed: %v", err)
	}
	if ok {
		t.Fatal("expected no deployment for fresh owner")
	}
}

func TestCreateCollectionRejectsDuplicateName(t *testing.T) {
	registry, _, _ := newTestRegistry(t)
	dep, run := testConfigs("Skyline")

	if _, err := registry.CreateCollection(addr(0x01), dep, run); err != nil {
		t.Fatalf("first deployment: %v", err)
	}
	if _, err := registry.CreateCollection(addr(0x02), dep, run); !errors.Is(err, sale.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig on duplicate name, got %v", err)
	}
}

func TestCreateCollectionValidatesConfig(t *testing.T) {
	registry, _, _ := newTestRegistry(t)
	dep, run := testConfigs("Skyline")

	dep.MaxSupply = 0
	if _, err := registry.CreateCollection(addr(0x01), dep, run); !errors.Is(err, sale.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig for zero supply, got %v", err)
	}

	dep.MaxSupply = 100
	run.ProtocolFee = 101
	if _, err := registry.CreateCollection(addr(0x01), dep, run); !errors.Is(err, sale.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig for fee over 100, got %v", err)
	}

	run.ProtocolFee = 10
	run.SaleStartTime = 3000
	if _, err := registry.CreateCollection(addr(0x01), dep, run); !errors.Is(err, sale.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig for inverted window, got %v", err)
	}
}

func TestResolveIsCaseInsensitive(t *testing.T) {
	registry, _, _ := newTestRegistry(t)
	dep, run := testConfigs("Skyline")
	collection, err := registry.CreateCollection(addr(0x01), dep, run)
	if err != nil {
		t.Fatalf("create collection: %v", err)
	}

	for _, name := range []string{"Skyline", "skyline", "SKYLINE", " Skyline "} {
		resolved, err := registry.Resolve(name)
		if err != nil {
			t.Fatalf("resolve %q: %v", name, err)
		}
		if resolved != collection {
			t.Fatalf("resolve %q = %x", name, resolved)
		}
	}

	if _, err := registry.Resolve("Unknown"); !errors.Is(err, ErrCollectionNotFound) {
		t.Fatalf("expected ErrCollectionNotFound, got %v", err)
	}
}

func TestPassThroughOperations(t *testing.T) {
	registry, engine, _ := newTestRegistry(t)
	owner := addr(0x01)
	dep, run := testConfigs("Skyline")
	if _, err := registry.CreateCollection(owner, dep, run); err != nil {
		t.Fatalf("create collection: %v", err)
	}

	if err := registry.SetBaseURI(owner, "skyline", "ipfs://revealed/", true); err != nil {
		t.Fatalf("set base uri: %v", err)
	}
	if len(engine.baseURIs) != 1 || !strings.Contains(engine.baseURIs[0], "ipfs://revealed/") {
		t.Fatalf("base uri not forwarded: %v", engine.baseURIs)
	}

	if err := registry.SetWhitelist(owner, "skyline", addr(0x07), true); err != nil {
		t.Fatalf("set whitelist: %v", err)
	}
	if len(engine.whitelist) != 1 {
		t.Fatalf("whitelist not forwarded: %v", engine.whitelist)
	}

	if err := registry.SetBaseURI(owner, "missing", "uri", false); !errors.Is(err, ErrCollectionNotFound) {
		t.Fatalf("expected ErrCollectionNotFound, got %v", err)
	}
	if err := registry.SetWhitelist(owner, "missing", addr(0x07), true); !errors.Is(err, ErrCollectionNotFound) {
		t.Fatalf("expected ErrCollectionNotFound, got %v", err)
	}
}
