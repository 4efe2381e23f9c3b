package keyvaluestore

import (
	"github.com/stretchr/testify/mock"
)

type Mock_Service struct {
	mock.Mock
}

func (m *Mock_Service) Close() error {
	ret := m.Called()

	var r0 error
	if rf, ok := ret.Get(0).(func() error); ok {
		r0 = rf()
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

func (m *Mock_Service) Handle(request []byte) (Command, []byte) {
	ret := m.Called(request)
	return m.unpack(ret)
}

func (m *Mock_Service) Process(args [][]byte) (Command, []byte) {
	ret := m.Called(args)
	return m.unpack(ret)
}

func (m *Mock_Service) unpack(ret mock.Arguments) (Command, []byte) {
	var r0 Command
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(Command)
	}

	var r1 []byte
	if ret.Get(1) != nil {
		r1 = ret.Get(1).([]byte)
	}

	return r0, r1
}
