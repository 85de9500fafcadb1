// This file contains the implementation of a dependency injector using
// reflection.

package node

import (
	"reflect"
	"sync"

	"golang.org/x/xerrors"
)

// reflectInjector resolves dependencies by type. The actions resolve from the
// daemon routines while controllers can still inject, hence the lock.
//
// - implements node.Injector
type reflectInjector struct {
	sync.RWMutex
	deps []interface{}
}

// NewInjector returns a empty injector.
func NewInjector() Injector {
	return &reflectInjector{}
}

// Resolve implements node.Injector. It populates the pointer with the
// dependency of the same type if any, otherwise with the earliest injected one
// that is assignable.
func (inj *reflectInjector) Resolve(v interface{}) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr {
		return xerrors.New("expect a pointer")
	}

	if !rv.Elem().IsValid() {
		return xerrors.Errorf("reflect value '%v' is invalid", rv)
	}

	target := rv.Elem().Type()

	inj.RLock()
	defer inj.RUnlock()

	var candidate interface{}

	for _, dep := range inj.deps {
		typ := reflect.TypeOf(dep)

		if typ == target {
			candidate = dep
			break
		}

		if candidate == nil && typ.AssignableTo(target) {
			candidate = dep
		}
	}

	if candidate == nil {
		return xerrors.Errorf("couldn't find dependency for '%v'", target)
	}

	rv.Elem().Set(reflect.ValueOf(candidate))

	return nil
}

// Inject implements node.Injector. A dependency replaces a previous one of the
// same type.
func (inj *reflectInjector) Inject(v interface{}) {
	if v == nil {
		return
	}

	inj.Lock()
	defer inj.Unlock()

	for i, dep := range inj.deps {
		if reflect.TypeOf(dep) == reflect.TypeOf(v) {
			inj.deps[i] = v
			return
		}
	}

	inj.deps = append(inj.deps, v)
}
