// Package testifymock adapts stretchr/testify's mock.Mock to cotest's
// hostmock.Entry and hostmock.Verifier contracts (together, a
// hostmock.Chain), so expectations declared with the familiar
// m.On(...).Return(...) fluent API can sit in the same dispatch chain
// as cotest's own watches.
package testifymock

import (
	"fmt"

	"github.com/stretchr/testify/mock"

	"github.com/jgraley/cotest/hostmock"
)

// Adapter wraps a *mock.Mock so it can be registered as a hostmock.Chain
// entry. The embedded Mock stays the normal way to declare expectations
// (adapter.On("Forward", 10).Return()); cotest never calls On itself.
type Adapter struct {
	*mock.Mock
}

// New wraps m. Typically m is embedded in a hand-written mock type
// alongside Adapter, e.g.:
//
//	type Turtle struct {
//		mock.Mock
//		*testifymock.Adapter
//	}
func New(m *mock.Mock) *Adapter {
	return &Adapter{Mock: m}
}

// Try offers call to the underlying mock.Mock. testify's MethodCalled
// panics when nothing matches; that panic is recovered and reported
// back as consumed == false so cotest's dispatch walk can move on to
// the next handler chain entry instead of failing outright.
func (a *Adapter) Try(call hostmock.Call) (result hostmock.Result, consumed bool) {
	defer func() {
		if r := recover(); r != nil {
			consumed = false
		}
	}()
	ret := a.Mock.MethodCalled(call.Method, call.Args...)
	return hostmock.Result{Values: ret}, true
}

// Verify runs testify's own AssertExpectations against the underlying
// mock.Mock.
func (a *Adapter) Verify(t hostmock.TestingT) bool {
	return a.Mock.AssertExpectations(&testingTAdapter{t})
}

// testingTAdapter bridges hostmock.TestingT to testify's mock.TestingT,
// which additionally requires FailNow.
type testingTAdapter struct {
	t hostmock.TestingT
}

func (a *testingTAdapter) Logf(format string, args ...interface{}) { a.t.Logf(format, args...) }
func (a *testingTAdapter) Errorf(format string, args ...interface{}) {
	a.t.Errorf(format, args...)
}
func (a *testingTAdapter) FailNow() {
	panic(fmt.Sprintf("testifymock: expectations not satisfied"))
}
