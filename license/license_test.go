package license_test

import (
	"errors"
	"testing"
	"time"

	"github.com/neurotsdb/tsarc/license"
)

type fakeCache struct {
	text string
}

func (f *fakeCache) Read() (string, error)   { return f.text, nil }
func (f *fakeCache) Write(text string) error { f.text = text; return nil }

type fakeNet struct {
	serverErr error
	reachable bool
	calls     int
}

func (f *fakeNet) CheckServer(productCode, machineCode uint32) (license.Entry, error) {
	f.calls++
	if f.serverErr != nil {
		return license.Entry{}, f.serverErr
	}
	return license.Entry{ProductCode: productCode, MachineCode: machineCode, Timeout: uint32(time.Now().Add(time.Hour).Unix())}, nil
}
func (f *fakeNet) InternetReachable() bool { return f.reachable }

func seedCache(t *testing.T, customerCode uint32, e license.Entry) *fakeCache {
	t.Helper()
	c := &license.Cache{CustomerCode: customerCode, Entries: []license.Entry{e}}
	text, err := c.Format()
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	return &fakeCache{text: text}
}

func TestCheckDegradedExtensionOnUnreachableServer(t *testing.T) {
	now := time.Now()
	stale := license.Entry{
		ProductCode: 7,
		MachineCode: 42,
		Timeout:     uint32(now.Add(-time.Second).Unix()),
	}
	cache := seedCache(t, 1001, stale)
	net := &fakeNet{serverErr: errors.New("socket closed"), reachable: true}

	entry, err := license.Check(7, 42, cache, net, now)
	if err != nil {
		t.Fatalf("Check returned error: %v", err)
	}
	wantTimeout := uint32(now.Add(time.Hour).Unix())
	if entry.Timeout != wantTimeout {
		t.Errorf("Timeout = %d, want %d", entry.Timeout, wantTimeout)
	}
	if net.calls != 1 {
		t.Errorf("server contacted %d times, want 1", net.calls)
	}
}

func TestCheckServerUnreachableAndNoInternet(t *testing.T) {
	now := time.Now()
	stale := license.Entry{ProductCode: 7, MachineCode: 42, Timeout: uint32(now.Add(-time.Second).Unix())}
	cache := seedCache(t, 1001, stale)
	net := &fakeNet{serverErr: errors.New("unreachable"), reachable: false}

	_, err := license.Check(7, 42, cache, net, now)
	if err != license.ErrServerUnreachable {
		t.Fatalf("err = %v, want ErrServerUnreachable", err)
	}
}

func TestCheckWrongMachine(t *testing.T) {
	now := time.Now()
	entry := license.Entry{ProductCode: 7, MachineCode: 42, Timeout: uint32(now.Add(time.Hour).Unix())}
	cache := seedCache(t, 1001, entry)
	net := &fakeNet{reachable: true}

	_, err := license.Check(7, 99, cache, net, now)
	if err != license.ErrWrongMachine {
		t.Fatalf("err = %v, want ErrWrongMachine", err)
	}
}

func TestCheckValidEntrySkipsServer(t *testing.T) {
	now := time.Now()
	entry := license.Entry{ProductCode: 7, MachineCode: 42, Timeout: uint32(now.Add(time.Hour).Unix())}
	cache := seedCache(t, 1001, entry)
	net := &fakeNet{reachable: true}

	got, err := license.Check(7, 42, cache, net, now)
	if err != nil {
		t.Fatalf("Check returned error: %v", err)
	}
	if got.Timeout != entry.Timeout {
		t.Errorf("Timeout = %d, want %d", got.Timeout, entry.Timeout)
	}
	if net.calls != 0 {
		t.Errorf("server contacted %d times, want 0", net.calls)
	}
}

func TestParseCacheRoundTrip(t *testing.T) {
	c := &license.Cache{
		CustomerCode: 555,
		Entries: []license.Entry{
			{ProductCode: 1, ProductVersionMajor: 2, ProductVersionMinor: 3, LicenseType: 1, Timeout: 1000, MachineCode: 9},
			{ProductCode: 1, ProductVersionMajor: 2, ProductVersionMinor: 4, LicenseType: 1, Timeout: 2000, MachineCode: 9},
		},
	}
	text, err := c.Format()
	if err != nil {
		t.Fatalf("Format: %v", err)
	}

	parsed, err := license.ParseCache(text)
	if err != nil {
		t.Fatalf("ParseCache: %v", err)
	}
	if parsed.CustomerCode != 555 {
		t.Errorf("CustomerCode = %d, want 555", parsed.CustomerCode)
	}
	if len(parsed.Entries) != 1 {
		t.Fatalf("duplicate-entry cleaner left %d entries, want 1", len(parsed.Entries))
	}
	if parsed.Entries[0].Timeout != 2000 {
		t.Errorf("surviving entry Timeout = %d, want 2000 (last write wins)", parsed.Entries[0].Timeout)
	}
}
