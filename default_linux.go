// Copyright 2021 The nttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

//go:build linux

package nttp

import "github.com/wiomoc/nttp/engine"

const defaultBackend = engine.Name
