// Copyright © 2025 jackelyj <dreamerlyj@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.
//

package bench

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"runtime"
	"strings"
)

// TestIdentity is the resolved publication key for a benchmark run: the
// declaring package, the test function name and an optional subtest label.
type TestIdentity struct {
	Package  string
	Function string
	Subtest  string
}

// FullName renders the qualified name used as the publication key, e.g.
// "github.com/acme/store.TestLookup - cold cache".
func (id TestIdentity) FullName() string {
	name := id.Function
	if id.Package != "" {
		name = id.Package + "." + id.Function
	}
	if id.Subtest != "" {
		name += " - " + id.Subtest
	}
	return name
}

// WithSubtest returns a copy carrying the given subtest label.
func (id TestIdentity) WithSubtest(subtest string) TestIdentity {
	id.Subtest = subtest
	return id
}

// IdentityFromFunc derives a TestIdentity from a function value. This is the
// statically-typed way to name a run and the recommended escape hatch for
// sites that confuse the stack-based detector (parametrized or dynamically
// dispatched test bodies).
func IdentityFromFunc(fn any) (TestIdentity, error) {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		return TestIdentity{}, fmt.Errorf("test identity requires a function value, got %T", fn)
	}

	rf := runtime.FuncForPC(v.Pointer())
	if rf == nil {
		return TestIdentity{}, errors.New("could not resolve function metadata for test identity")
	}

	return splitQualifiedName(rf.Name()), nil
}

// testFrameworkFunc matches the `go test` naming contract for test,
// benchmark and fuzz entry points.
var testFrameworkFunc = regexp.MustCompile(`^(Test|Benchmark|Fuzz)(\p{Lu}|_|$)`)

// ResolveIdentityFromStack walks the calling goroutine's stack and applies
// two heuristics in order: first a frame whose function follows the go test
// framework naming contract, then a frame whose function name starts with
// "test" in any casing. Resolution failure is fatal; the caller has to name
// the run explicitly instead.
func ResolveIdentityFromStack() (TestIdentity, error) {
	pcs := make([]uintptr, 64)
	// Skip runtime.Callers and this function itself.
	n := runtime.Callers(2, pcs)
	frames := runtime.CallersFrames(pcs[:n])

	var fallback *TestIdentity
	for {
		frame, more := frames.Next()
		if frame.Function != "" {
			id := splitQualifiedName(frame.Function)
			// Publish under the plain function name, closure and
			// receiver qualifiers stripped.
			id.Function = baseFuncName(id.Function)

			if testFrameworkFunc.MatchString(id.Function) {
				return id, nil
			}
			if fallback == nil && strings.HasPrefix(strings.ToLower(id.Function), "test") {
				copied := id
				fallback = &copied
			}
		}
		if !more {
			break
		}
	}

	if fallback != nil {
		return *fallback, nil
	}

	return TestIdentity{}, errors.New(
		"couldn't detect the calling test function from the stack; " +
			"pass the identity explicitly via StartAs or IdentityFromFunc")
}

// splitQualifiedName splits a runtime function name such as
// "github.com/acme/store.(*Suite).TestLookup" into package path and function.
func splitQualifiedName(full string) TestIdentity {
	slash := strings.LastIndex(full, "/")
	dot := strings.Index(full[slash+1:], ".")
	if dot < 0 {
		return TestIdentity{Function: full}
	}
	dot += slash + 1

	return TestIdentity{
		Package:  full[:dot],
		Function: full[dot+1:],
	}
}

// baseFuncName strips receiver and closure qualifiers, leaving the plain
// function name the heuristics inspect: "(*Suite).TestLookup.func1" →
// "func1" is undesirable, so closure suffixes are trimmed first.
func baseFuncName(fn string) string {
	// Drop ".funcN" closure suffixes so a helper closure inside a test
	// still resolves to the test itself.
	for {
		idx := strings.LastIndex(fn, ".")
		if idx < 0 {
			return fn
		}
		last := fn[idx+1:]
		if strings.HasPrefix(last, "func") {
			fn = fn[:idx]
			continue
		}
		return last
	}
}
