//go:build js && wasm

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"syscall/js"

	"codeberg.org/snonux/glossa/internal/identity"
)

// chromeStore mirrors chrome.storage.local["currentUser"]. The extension
// storage API is asynchronous, so the record is loaded once and then kept
// current through storage.onChanged, and Get never waits on a promise.
type chromeStore struct {
	area js.Value

	mu     sync.RWMutex
	user   *identity.User
	loaded bool
}

var _ identity.Store = (*chromeStore)(nil)

// newChromeStore returns nil when the extension storage API is missing.
func newChromeStore() *chromeStore {
	storage := js.Global().Get("chrome")
	if storage.Truthy() {
		storage = storage.Get("storage")
	}
	if !storage.Truthy() || !storage.Get("local").Truthy() {
		return nil
	}

	s := &chromeStore{area: storage.Get("local")}

	var loaded js.Func
	loaded = js.FuncOf(func(this js.Value, args []js.Value) any {
		defer loaded.Release()
		if len(args) > 0 && args[0].Truthy() {
			s.apply(args[0].Get(identity.CurrentUserKey))
		} else {
			s.apply(js.Undefined())
		}
		return nil
	})
	s.area.Call("get", []any{identity.CurrentUserKey}, loaded)

	storage.Get("onChanged").Call("addListener", js.FuncOf(func(this js.Value, args []js.Value) any {
		if len(args) < 2 || args[1].String() != "local" {
			return nil
		}
		if change := args[0].Get(identity.CurrentUserKey); change.Truthy() {
			s.apply(change.Get("newValue"))
		}
		return nil
	}))
	return s
}

func (s *chromeStore) apply(v js.Value) {
	var user *identity.User
	if v.Truthy() {
		var u identity.User
		raw := js.Global().Get("JSON").Call("stringify", v).String()
		if err := json.Unmarshal([]byte(raw), &u); err == nil && u.Validate() == nil {
			user = &u
		}
	}

	s.mu.Lock()
	s.user = user
	s.loaded = true
	s.mu.Unlock()
}

func (s *chromeStore) Get(ctx context.Context) (*identity.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.loaded {
		return nil, identity.ErrUnavailable
	}
	if s.user == nil {
		return nil, nil
	}
	u := *s.user
	return &u, nil
}

func (s *chromeStore) Set(ctx context.Context, u identity.User) (err error) {
	defer recoverJS(&err)

	if err := u.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(u)
	if err != nil {
		return err
	}
	obj := js.Global().Get("JSON").Call("parse", string(data))
	s.area.Call("set", map[string]any{identity.CurrentUserKey: obj})

	s.mu.Lock()
	s.user = &u
	s.loaded = true
	s.mu.Unlock()
	return nil
}

func (s *chromeStore) Clear(ctx context.Context) (err error) {
	defer recoverJS(&err)

	s.area.Call("remove", identity.CurrentUserKey)

	s.mu.Lock()
	s.user = nil
	s.loaded = true
	s.mu.Unlock()
	return nil
}

// localStore keeps the current user in the page's localStorage under the
// same record name the other stores use. It serves plain page builds
// without the extension API.
type localStore struct {
	storage js.Value
}

var _ identity.Store = (*localStore)(nil)

func newLocalStore() *localStore {
	return &localStore{storage: js.Global().Get("localStorage")}
}

func (s *localStore) Get(ctx context.Context) (u *identity.User, err error) {
	defer recoverJS(&err)

	if !s.storage.Truthy() {
		return nil, identity.ErrUnavailable
	}
	raw := s.storage.Call("getItem", identity.CurrentUserKey)
	if raw.IsNull() || raw.IsUndefined() {
		return nil, nil
	}

	var user identity.User
	if err := json.Unmarshal([]byte(raw.String()), &user); err != nil {
		return nil, fmt.Errorf("%w: %v", identity.ErrUnavailable, err)
	}
	return &user, nil
}

func (s *localStore) Set(ctx context.Context, u identity.User) (err error) {
	defer recoverJS(&err)

	if err := u.Validate(); err != nil {
		return err
	}
	if !s.storage.Truthy() {
		return identity.ErrUnavailable
	}
	data, err := json.Marshal(u)
	if err != nil {
		return err
	}
	s.storage.Call("setItem", identity.CurrentUserKey, string(data))
	return nil
}

func (s *localStore) Clear(ctx context.Context) (err error) {
	defer recoverJS(&err)

	if !s.storage.Truthy() {
		return identity.ErrUnavailable
	}
	s.storage.Call("removeItem", identity.CurrentUserKey)
	return nil
}

// recoverJS turns a thrown JavaScript exception into an error.
func recoverJS(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%w: %v", identity.ErrUnavailable, r)
	}
}
