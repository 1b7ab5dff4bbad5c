// Copyright 2021 The nttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import "github.com/oklog/ulid/v2"

// NewID generates a new ULID string identifying one exchange. IDs sort
// by creation time.
func NewID() string {
	return ulid.Make().String()
}
