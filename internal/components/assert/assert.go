package assert

import (
	"fmt"
	"reflect"
)

// NotNil panics when a required dependency is missing. Typed nil pointers,
// funcs, maps and interfaces count as missing.
func NotNil(name string, value any) {
	if value == nil {
		panic(fmt.Sprintf("%s must not be nil", name))
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Pointer, reflect.Func, reflect.Map, reflect.Chan, reflect.Interface, reflect.Slice:
		if v.IsNil() {
			panic(fmt.Sprintf("%s must not be nil", name))
		}
	}
}
