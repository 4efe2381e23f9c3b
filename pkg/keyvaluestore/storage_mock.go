package keyvaluestore

import (
	"github.com/stretchr/testify/mock"
)

type Mock_Storage struct {
	mock.Mock
}

func (m *Mock_Storage) Close() error {
	ret := m.Called()

	var r0 error
	if rf, ok := ret.Get(0).(func() error); ok {
		r0 = rf()
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

func (m *Mock_Storage) Write(key []byte, value []byte) error {
	ret := m.Called(key, value)

	var r0 error
	if rf, ok := ret.Get(0).(func(key []byte, value []byte) error); ok {
		r0 = rf(key, value)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

func (m *Mock_Storage) Expire(key []byte, expiry Expiry) (int, error) {
	ret := m.Called(key, expiry)

	var r0 int
	if rf, ok := ret.Get(0).(func(key []byte, expiry Expiry) int); ok {
		r0 = rf(key, expiry)
	} else {
		r0 = ret.Int(0)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(key []byte, expiry Expiry) error); ok {
		r1 = rf(key, expiry)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

func (m *Mock_Storage) Read(key []byte) ([]byte, error) {
	ret := m.Called(key)

	var r0 []byte
	if rf, ok := ret.Get(0).(func(key []byte) []byte); ok {
		r0 = rf(key)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).([]byte)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(key []byte) error); ok {
		r1 = rf(key)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

func (m *Mock_Storage) Remove(key []byte) (int, error) {
	ret := m.Called(key)

	var r0 int
	if rf, ok := ret.Get(0).(func(key []byte) int); ok {
		r0 = rf(key)
	} else {
		r0 = ret.Int(0)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(key []byte) error); ok {
		r1 = rf(key)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

func (m *Mock_Storage) Contains(key []byte) (bool, error) {
	ret := m.Called(key)

	var r0 bool
	if rf, ok := ret.Get(0).(func(key []byte) bool); ok {
		r0 = rf(key)
	} else {
		r0 = ret.Get(0).(bool)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(key []byte) error); ok {
		r1 = rf(key)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}
