// Package mocks holds a hand-maintained go.uber.org/mock-style double
// for netpoll.Poller, in the shape mockgen would produce for that
// interface -- written by hand here since the interface is small and
// stable, but following the same Controller/Recorder convention so it
// drops in wherever a generated mock would.
package mocks

import (
	"reflect"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/walkon/netcore/internal/netpoll"
)

// MockPoller is a mock of the netpoll.Poller interface.
type MockPoller struct {
	ctrl     *gomock.Controller
	recorder *MockPollerMockRecorder
}

// MockPollerMockRecorder is the mock recorder for MockPoller.
type MockPollerMockRecorder struct {
	mock *MockPoller
}

// NewMockPoller returns a new mock controlled by ctrl.
func NewMockPoller(ctrl *gomock.Controller) *MockPoller {
	m := &MockPoller{ctrl: ctrl}
	m.recorder = &MockPollerMockRecorder{m}
	return m
}

// EXPECT returns an object that allows the caller to indicate expected
// calls.
func (m *MockPoller) EXPECT() *MockPollerMockRecorder {
	return m.recorder
}

// Add mocks base method.
func (m *MockPoller) Add(fd int, interest netpoll.Interest, tag netpoll.Tag) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Add", fd, interest, tag)
	ret0, _ := ret[0].(error)
	return ret0
}

// Add indicates an expected call of Add.
func (mr *MockPollerMockRecorder) Add(fd, interest, tag interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Add", reflect.TypeOf((*MockPoller)(nil).Add), fd, interest, tag)
}

// Remove mocks base method.
func (m *MockPoller) Remove(fd int) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Remove", fd)
	ret0, _ := ret[0].(error)
	return ret0
}

// Remove indicates an expected call of Remove.
func (mr *MockPollerMockRecorder) Remove(fd interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Remove", reflect.TypeOf((*MockPoller)(nil).Remove), fd)
}

// Poll mocks base method.
func (m *MockPoller) Poll(out []netpoll.Event, max int, timeout time.Duration) (int, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Poll", out, max, timeout)
	ret0, _ := ret[0].(int)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Poll indicates an expected call of Poll.
func (mr *MockPollerMockRecorder) Poll(out, max, timeout interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Poll", reflect.TypeOf((*MockPoller)(nil).Poll), out, max, timeout)
}

// Close mocks base method.
func (m *MockPoller) Close() error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Close")
	ret0, _ := ret[0].(error)
	return ret0
}

// Close indicates an expected call of Close.
func (mr *MockPollerMockRecorder) Close() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Close", reflect.TypeOf((*MockPoller)(nil).Close))
}
