// Copyright 2021 The nttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestBodyBytes(t *testing.T) {
	shared := []byte("bar")
	testCases := []struct {
		name     string
		body     interface{}
		expected []byte
	}{
		{name: "nil", body: nil, expected: nil},
		{name: "string", body: "foo", expected: []byte("foo")},
		{name: "byte slice", body: shared, expected: shared},
		{name: "reader", body: strings.NewReader("baz"), expected: []byte("baz")},
		{name: "read closer", body: io.NopCloser(bytes.NewReader(shared)), expected: []byte("bar")},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			b, err := BodyBytes(testCase.body)
			require.NoError(t, err)
			assert.Equal(t, testCase.expected, b)
		})
	}
	t.Run("byte slice not copied", func(t *testing.T) {
		b, err := BodyBytes(shared)
		require.NoError(t, err)
		assert.Same(t, &shared[0], &b[0])
	})
	t.Run("bad type", func(t *testing.T) {
		b, err := BodyBytes(10)
		assert.Nil(t, b)
		assert.EqualError(t, err, badBodyTypeMsg)
	})
}

func TestBodyBytes_ReaderErrors(t *testing.T) {
	expectedErr := errors.New("ham")
	t.Run("Read", func(t *testing.T) {
		m := &mockReadCloser{}
		m.Test(t)
		m.On("Read", mock.Anything).Return(10, expectedErr).Once()
		b, err := BodyBytes(m)
		assert.Nil(t, b)
		assert.Same(t, expectedErr, err)
		m.AssertExpectations(t)
	})
	t.Run("Close", func(t *testing.T) {
		m := &mockReadCloser{}
		m.Test(t)
		m.On("Read", mock.Anything).Return(0, io.EOF).Once()
		m.On("Close").Return(expectedErr).Once()
		b, err := BodyBytes(m)
		assert.Nil(t, b)
		assert.Same(t, expectedErr, err)
		m.AssertExpectations(t)
	})
}

type mockReadCloser struct {
	mock.Mock
}

func (m *mockReadCloser) Read(p []byte) (int, error) {
	args := m.Called(p)
	return args.Int(0), args.Error(1)
}

func (m *mockReadCloser) Close() error {
	return m.Called().Error(0)
}
