// Copyright 2021 The nttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"errors"
	"io"
)

const badBodyTypeMsg = "nttp/request: invalid type (for body use nil, " +
	"string, []byte, io.Reader or io.ReadCloser)"

// BodyBytes converts a generic body parameter to the byte slice stored
// in a Plan.
//
// A nil body gives a nil slice. A string is converted and a []byte is
// returned as is, without copying. An io.Reader is read to the end,
// and closed afterwards if it is also an io.Closer; a failure to read
// or to close is returned with a nil slice. Any other type is an error.
func BodyBytes(body interface{}) ([]byte, error) {
	switch x := body.(type) {
	case nil:
		return nil, nil
	case string:
		return []byte(x), nil
	case []byte:
		return x, nil
	case io.Reader:
		return readBody(x)
	default:
		return nil, errors.New(badBodyTypeMsg)
	}
}

func readBody(r io.Reader) ([]byte, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if c, ok := r.(io.Closer); ok {
		if err = c.Close(); err != nil {
			return nil, err
		}
	}
	return b, nil
}
