package primitiveset_test

import (
	"errors"
	"strings"
	"testing"

	"xdao.co/keyring/model"
	"xdao.co/keyring/prefix"
	"xdao.co/keyring/primitiveset"
	"xdao.co/keyring/registry"
	"xdao.co/keyring/testkit"
)

const testTypeID = "xdao.co/keyring/testkit/aead"

func register(t *testing.T) {
	t.Helper()
	registry.MustRegister(testkit.KeyManager{ID: testTypeID, Kind: testkit.KindAEAD})
}

func TestNew_ResolvesAllEnabledEntries(t *testing.T) {
	register(t)
	ks := testkit.NewKeyset(testTypeID, model.PrefixTink)

	set, err := primitiveset.New(ks)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if set.Primary == nil || set.Primary.KeyID != 42 {
		t.Fatalf("primary not resolved: %+v", set.Primary)
	}
	if got := len(set.Entries()); got != len(ks.Entries) {
		t.Fatalf("resolved %d entries, want %d", got, len(ks.Entries))
	}
	for i, e := range set.Entries() {
		if e.KeyID != ks.Entries[i].KeyID {
			t.Fatalf("entry order changed at %d: got key %d", i, e.KeyID)
		}
	}
}

func TestNew_PrefixIndex(t *testing.T) {
	register(t)
	ks := testkit.NewKeyset(testTypeID, model.PrefixTink)
	set, err := primitiveset.New(ks)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// 45 is the TINK-prefixed entry; the primary (42) shares its kind
	// but not its id, so their prefixes differ.
	pfx, err := prefix.Compute(model.PrefixTink, 45)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	got := set.ForPrefix(pfx)
	if len(got) != 1 || got[0].KeyID != 45 {
		t.Fatalf("ForPrefix: %+v", got)
	}

	raw := set.Raw()
	if len(raw) != 1 || raw[0].KeyID != 43 {
		t.Fatalf("Raw: %+v", raw)
	}
}

func TestNew_SkipsDisabledAndDestroyed(t *testing.T) {
	register(t)
	ks := testkit.NewKeyset(testTypeID, model.PrefixTink)
	ks.Entry(43).Status = model.StatusDisabled
	e := ks.Entry(44)
	e.Wipe()
	e.Status = model.StatusDestroyed

	set, err := primitiveset.New(ks)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for _, e := range set.Entries() {
		if e.KeyID == 43 || e.KeyID == 44 {
			t.Fatalf("inactive key %d resolved", e.KeyID)
		}
	}
	if len(set.Entries()) != 3 {
		t.Fatalf("resolved %d entries, want 3", len(set.Entries()))
	}
}

func TestNewWithOptions_IncludeDisabled(t *testing.T) {
	register(t)
	ks := testkit.NewKeyset(testTypeID, model.PrefixTink)
	ks.Entry(43).Status = model.StatusDisabled

	set, err := primitiveset.NewWithOptions(ks, primitiveset.Options{IncludeDisabled: true})
	if err != nil {
		t.Fatalf("NewWithOptions: %v", err)
	}
	var found bool
	for _, e := range set.Entries() {
		if e.KeyID == 43 {
			found = true
			if e.Status != model.StatusDisabled {
				t.Fatalf("disabled entry lost its status: %+v", e)
			}
		}
	}
	if !found {
		t.Fatalf("disabled entry not included")
	}
}

func TestNew_InvalidKeysetRejected(t *testing.T) {
	register(t)
	if _, err := primitiveset.New(&model.Keyset{}); !errors.Is(err, model.ErrEmptyKeyset) {
		t.Fatalf("expected ErrEmptyKeyset, got %v", err)
	}

	ks := testkit.NewKeyset(testTypeID, model.PrefixTink)
	ks.Entry(42).Status = model.StatusDisabled
	if _, err := primitiveset.New(ks); !errors.Is(err, model.ErrPrimaryNotEnabled) {
		t.Fatalf("expected ErrPrimaryNotEnabled, got %v", err)
	}
}

func TestNew_InstantiationFailureNamesKey(t *testing.T) {
	register(t)
	ks := testkit.NewKeyset("xdao.co/keyring/testkit/unregistered", model.PrefixTink)

	_, err := primitiveset.New(ks)
	if !errors.Is(err, registry.ErrNotRegistered) {
		t.Fatalf("expected ErrNotRegistered, got %v", err)
	}
	if !strings.Contains(err.Error(), "key 42") {
		t.Fatalf("error does not name the offending key: %v", err)
	}
}
