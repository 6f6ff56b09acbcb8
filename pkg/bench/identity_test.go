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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFullNameFormats(t *testing.T) {
	tests := []struct {
		name string
		id   TestIdentity
		want string
	}{
		{
			name: "package and function",
			id:   TestIdentity{Package: "example.com/store", Function: "TestLookup"},
			want: "example.com/store.TestLookup",
		},
		{
			name: "with subtest",
			id:   TestIdentity{Package: "example.com/store", Function: "TestLookup", Subtest: "cold cache"},
			want: "example.com/store.TestLookup - cold cache",
		},
		{
			name: "function only",
			id:   TestIdentity{Function: "TestLookup"},
			want: "TestLookup",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.id.FullName())
		})
	}
}

func TestWithSubtestDoesNotMutate(t *testing.T) {
	base := TestIdentity{Package: "example.com/store", Function: "TestLookup"}
	sub := base.WithSubtest("warm cache")

	assert.Empty(t, base.Subtest)
	assert.Equal(t, "warm cache", sub.Subtest)
	assert.Equal(t, base.Function, sub.Function)
}

func identityProbeTarget() {}

func TestIdentityFromFunc(t *testing.T) {
	id, err := IdentityFromFunc(identityProbeTarget)
	require.NoError(t, err)

	assert.Equal(t, "github.com/innovationmech/perfunit/pkg/bench", id.Package)
	assert.Equal(t, "identityProbeTarget", id.Function)
}

func TestIdentityFromFuncRejectsNonFunctions(t *testing.T) {
	_, err := IdentityFromFunc("not a function")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires a function value")
}

func TestResolveIdentityFromStackFindsTestFunction(t *testing.T) {
	id, err := ResolveIdentityFromStack()
	require.NoError(t, err)

	assert.Equal(t, "TestResolveIdentityFromStackFindsTestFunction", id.Function)
	assert.Equal(t, "github.com/innovationmech/perfunit/pkg/bench", id.Package)
}

func TestResolveIdentityFromStackInsideClosure(t *testing.T) {
	// Helper closures inside a test still resolve to the test itself.
	resolve := func() (TestIdentity, error) {
		return ResolveIdentityFromStack()
	}

	id, err := resolve()
	require.NoError(t, err)
	assert.Equal(t, "TestResolveIdentityFromStackInsideClosure", id.Function)
}

type identityResult struct {
	id  TestIdentity
	err error
}

// testStyleProbe is deliberately named outside the go test contract but with
// a lowercase "test" prefix, exercising the fallback heuristic.
func testStyleProbe(ch chan<- identityResult) {
	id, err := ResolveIdentityFromStack()
	ch <- identityResult{id: id, err: err}
}

func plainProbe(ch chan<- identityResult) {
	id, err := ResolveIdentityFromStack()
	ch <- identityResult{id: id, err: err}
}

func TestResolveIdentityFromStackFallback(t *testing.T) {
	// A fresh goroutine has a stack with no TestXxx frame; only the
	// lowercase-"test" fallback can match.
	ch := make(chan identityResult, 1)
	go testStyleProbe(ch)
	res := <-ch

	require.NoError(t, res.err)
	assert.Equal(t, "testStyleProbe", res.id.Function)
}

func TestResolveIdentityFromStackFailsOutsideTests(t *testing.T) {
	ch := make(chan identityResult, 1)
	go plainProbe(ch)
	res := <-ch

	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "StartAs or IdentityFromFunc")
}

func TestSplitQualifiedName(t *testing.T) {
	tests := []struct {
		full         string
		wantPackage  string
		wantFunction string
	}{
		{
			full:         "github.com/acme/store.TestLookup",
			wantPackage:  "github.com/acme/store",
			wantFunction: "TestLookup",
		},
		{
			full:         "github.com/acme/store.(*Suite).TestLookup",
			wantPackage:  "github.com/acme/store",
			wantFunction: "(*Suite).TestLookup",
		},
		{
			full:         "main.main",
			wantPackage:  "main",
			wantFunction: "main",
		},
		{
			full:         "standalone",
			wantPackage:  "",
			wantFunction: "standalone",
		},
	}

	for _, tt := range tests {
		got := splitQualifiedName(tt.full)
		assert.Equal(t, tt.wantPackage, got.Package, "input %q", tt.full)
		assert.Equal(t, tt.wantFunction, got.Function, "input %q", tt.full)
	}
}

func TestBaseFuncName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "TestLookup", want: "TestLookup"},
		{input: "TestLookup.func1", want: "TestLookup"},
		{input: "TestLookup.func1.func2", want: "TestLookup"},
		{input: "(*Suite).TestLookup", want: "TestLookup"},
		{input: "(*Suite).TestLookup.func3", want: "TestLookup"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, baseFuncName(tt.input), "input %q", tt.input)
	}
}
