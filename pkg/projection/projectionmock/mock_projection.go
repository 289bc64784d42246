// Package projectionmock provides a gomock double for projection.Projection,
// hand-maintained in the shape mockgen would emit for that interface.
package projectionmock

import (
	"context"
	"reflect"

	"go.uber.org/mock/gomock"

	"github.com/arc-self/git-domain/pkg/events"
)

// MockProjection is a mock of the projection.Projection interface.
type MockProjection struct {
	ctrl     *gomock.Controller
	recorder *MockProjectionMockRecorder
}

// MockProjectionMockRecorder records expected calls on MockProjection.
type MockProjectionMockRecorder struct {
	mock *MockProjection
}

// NewMockProjection constructs a new MockProjection.
func NewMockProjection(ctrl *gomock.Controller) *MockProjection {
	m := &MockProjection{ctrl: ctrl}
	m.recorder = &MockProjectionMockRecorder{m}
	return m
}

// EXPECT returns the recorder used to set expectations.
func (m *MockProjection) EXPECT() *MockProjectionMockRecorder {
	return m.recorder
}

func (m *MockProjection) Name() string {
	ret := m.ctrl.Call(m, "Name")
	return ret[0].(string)
}

func (mr *MockProjectionMockRecorder) Name() *gomock.Call {
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Name", reflect.TypeOf((*MockProjection)(nil).Name))
}

func (m *MockProjection) Position() uint64 {
	ret := m.ctrl.Call(m, "Position")
	return ret[0].(uint64)
}

func (mr *MockProjectionMockRecorder) Position() *gomock.Call {
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Position", reflect.TypeOf((*MockProjection)(nil).Position))
}

func (m *MockProjection) SavePosition(sequence uint64) {
	m.ctrl.Call(m, "SavePosition", sequence)
}

func (mr *MockProjectionMockRecorder) SavePosition(sequence interface{}) *gomock.Call {
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "SavePosition", reflect.TypeOf((*MockProjection)(nil).SavePosition), sequence)
}

func (m *MockProjection) Apply(ctx context.Context, env events.Envelope, sequence uint64) error {
	ret := m.ctrl.Call(m, "Apply", ctx, env, sequence)
	err, _ := ret[0].(error)
	return err
}

func (mr *MockProjectionMockRecorder) Apply(ctx, env, sequence interface{}) *gomock.Call {
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Apply", reflect.TypeOf((*MockProjection)(nil).Apply), ctx, env, sequence)
}

func (m *MockProjection) Reset() {
	m.ctrl.Call(m, "Reset")
}

func (mr *MockProjectionMockRecorder) Reset() *gomock.Call {
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Reset", reflect.TypeOf((*MockProjection)(nil).Reset))
}

func (m *MockProjection) Handles(eventType string) bool {
	ret := m.ctrl.Call(m, "Handles", eventType)
	return ret[0].(bool)
}

func (mr *MockProjectionMockRecorder) Handles(eventType interface{}) *gomock.Call {
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Handles", reflect.TypeOf((*MockProjection)(nil).Handles), eventType)
}
