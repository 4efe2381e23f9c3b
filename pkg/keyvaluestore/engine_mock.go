package keyvaluestore

import "github.com/stretchr/testify/mock"

type Mock_Engine struct {
	mock.Mock
}

func (m *Mock_Engine) Close() error {
	ret := m.Called()

	var r0 error
	if rf, ok := ret.Get(0).(func() error); ok {
		r0 = rf()
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

func (m *Mock_Engine) Execute(command Command) []byte {
	ret := m.Called(command)

	var r0 []byte
	if rf, ok := ret.Get(0).(func(command Command) []byte); ok {
		r0 = rf(command)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).([]byte)
		}
	}

	return r0
}
