package storagefakes

import (
	"context"
	"sync"

	"github.com/weighin/weighin-go/session"
)

var _ session.Storage = (*FakeStorage)(nil)

// FakeStorage is an in-memory session.Storage for tests. Errors can be
// injected per operation to exercise failure paths.
type FakeStorage struct {
	lock    sync.RWMutex
	stored  session.Session
	present bool

	LoadErr   error
	SaveErr   error
	DeleteErr error
}

func NewFakeStorage() *FakeStorage {
	return &FakeStorage{}
}

// Seed pre-populates the storage as if a previous process had saved s.
func (f *FakeStorage) Seed(s session.Session) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.stored = s
	f.present = true
}

// Stored returns the persisted value and whether one is present.
func (f *FakeStorage) Stored() (session.Session, bool) {
	f.lock.RLock()
	defer f.lock.RUnlock()
	return f.stored, f.present
}

func (f *FakeStorage) Load(ctx context.Context) (session.Session, bool, error) {
	f.lock.RLock()
	defer f.lock.RUnlock()
	if f.LoadErr != nil {
		return session.Session{}, false, f.LoadErr
	}
	return f.stored, f.present, nil
}

func (f *FakeStorage) Save(ctx context.Context, s session.Session) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	if f.SaveErr != nil {
		return f.SaveErr
	}
	f.stored = s
	f.present = true
	return nil
}

func (f *FakeStorage) Delete(ctx context.Context) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	f.stored = session.Session{}
	f.present = false
	return nil
}
